package catalog

const schemaClients = `
CREATE TABLE IF NOT EXISTS clients (
	internal_id INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL UNIQUE,
	role TEXT NOT NULL,
	api_secret_hash TEXT NOT NULL,
	login_token TEXT NOT NULL UNIQUE
);`

const schemaMedia = `
CREATE TABLE IF NOT EXISTS media (
	internal_id INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	filename TEXT NOT NULL,
	path TEXT NOT NULL,
	media_type TEXT NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}',
	UNIQUE(filename, path)
);`

const schemaTracks = `
CREATE TABLE IF NOT EXISTS tracks (
	internal_id INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	media_id TEXT NOT NULL REFERENCES media(id) ON DELETE CASCADE,
	metadata TEXT NOT NULL DEFAULT '{}',
	UNIQUE(title, media_id)
);`

const schemaAlbums = `
CREATE TABLE IF NOT EXISTS albums (
	internal_id INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	year INTEGER NOT NULL DEFAULT 0,
	metadata TEXT NOT NULL DEFAULT '{}',
	UNIQUE(title, year)
);`

const schemaArtists = `
CREATE TABLE IF NOT EXISTS artists (
	internal_id INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL UNIQUE,
	metadata TEXT NOT NULL DEFAULT '{}'
);`

const schemaArtistTracks = `
CREATE TABLE IF NOT EXISTS artist_tracks (
	internal_id INTEGER PRIMARY KEY AUTOINCREMENT,
	artist_id TEXT NOT NULL REFERENCES artists(id) ON DELETE CASCADE,
	track_id TEXT NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
	is_feature INTEGER NOT NULL DEFAULT 0,
	UNIQUE(artist_id, track_id)
);`

const schemaAlbumTracks = `
CREATE TABLE IF NOT EXISTS album_tracks (
	internal_id INTEGER PRIMARY KEY AUTOINCREMENT,
	album_id TEXT NOT NULL REFERENCES albums(id) ON DELETE CASCADE,
	track_id TEXT NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
	UNIQUE(album_id, track_id)
);`

const schemaAlbumArtists = `
CREATE TABLE IF NOT EXISTS album_artists (
	internal_id INTEGER PRIMARY KEY AUTOINCREMENT,
	album_id TEXT NOT NULL REFERENCES albums(id) ON DELETE CASCADE,
	artist_id TEXT NOT NULL REFERENCES artists(id) ON DELETE CASCADE,
	UNIQUE(album_id, artist_id)
);`

const schemaPlaylists = `
CREATE TABLE IF NOT EXISTS playlists (
	internal_id INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL UNIQUE,
	is_default INTEGER NOT NULL DEFAULT 0,
	description TEXT NOT NULL DEFAULT ''
);`

const schemaPlaylistTracks = `
CREATE TABLE IF NOT EXISTS playlist_tracks (
	internal_id INTEGER PRIMARY KEY AUTOINCREMENT,
	playlist_id TEXT NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
	track_id TEXT NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
	UNIQUE(playlist_id, track_id)
);`

const schemaSearchTerms = `
CREATE TABLE IF NOT EXISTS search_terms (
	internal_id INTEGER PRIMARY KEY AUTOINCREMENT,
	term TEXT NOT NULL UNIQUE
);`

const schemaSearchHits = `
CREATE TABLE IF NOT EXISTS search_hits (
	internal_id INTEGER PRIMARY KEY AUTOINCREMENT,
	entity_kind TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	UNIQUE(entity_kind, entity_id)
);`

const schemaSearchPivot = `
CREATE TABLE IF NOT EXISTS search_pivot (
	internal_id INTEGER PRIMARY KEY AUTOINCREMENT,
	term_id INTEGER NOT NULL REFERENCES search_terms(internal_id) ON DELETE CASCADE,
	hit_id INTEGER NOT NULL REFERENCES search_hits(internal_id) ON DELETE CASCADE,
	UNIQUE(term_id, hit_id)
);`
