package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/arung-agamani/soundvault/config"
	"github.com/arung-agamani/soundvault/internal/bus"
	"github.com/arung-agamani/soundvault/internal/catalog"
	"github.com/arung-agamani/soundvault/internal/decoder"
	"github.com/arung-agamani/soundvault/internal/player"
	"github.com/arung-agamani/soundvault/internal/queue"
	"github.com/arung-agamani/soundvault/internal/ws"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testServer builds a gateway.Server over a freshly bootstrapped store and
// returns it alongside the admin and guest tokens minted during seeding.
func testServer(t *testing.T) (*Server, adminGuest) {
	t.Helper()
	b := bus.New(64)
	t.Cleanup(func() { b.Close(context.Background()) })

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "data.db")
	bootstrapPath := filepath.Join(dir, ".bootstrap")
	store, err := catalog.Open(context.Background(), dbPath, b, bootstrapPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	raw, err := os.ReadFile(bootstrapPath)
	require.NoError(t, err, "read bootstrap record")
	creds := parseBootstrap(string(raw))

	hub := ws.New()
	decoderCmds := make(chan decoder.Command, 8)
	q := queue.New(decoderCmds)
	dec := decoder.New(func(path string) (decoder.Source, error) { return nil, nil }, decoder.NullSink{})
	p := player.New(store, hub, dec, q)

	cfg := &config.Config{HTTPHost: "127.0.0.1", HTTPPort: "0", StaticLocation: dir}
	srv := New(cfg, store, hub, p)
	return srv, creds
}

type adminGuest struct {
	adminToken string
	guestToken string
}

func parseBootstrap(content string) adminGuest {
	var g adminGuest
	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, "admin_token="):
			g.adminToken = strings.TrimPrefix(line, "admin_token=")
		case strings.HasPrefix(line, "guest_token="):
			g.guestToken = strings.TrimPrefix(line, "guest_token=")
		}
	}
	return g
}

func doRequest(srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)
	return rec
}

// TestAuthGateRejectsMissingRoleEscalatesAdmin: no token yields 401, a
// user-role token on an admin-only route yields 403, and an admin token
// succeeds.
func TestAuthGateRejectsMissingRoleEscalatesAdmin(t *testing.T) {
	srv, creds := testServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/v1/clients", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code, "unauthenticated request to an admin route")

	rec = doRequest(srv, http.MethodGet, "/api/v1/clients", creds.guestToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code, "user-role token on an admin-only route")

	rec = doRequest(srv, http.MethodGet, "/api/v1/clients", creds.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, "admin token on an admin-only route, body=%s", rec.Body.String())
}

func TestAuthGateAllowsUserRoleOnUserRoutes(t *testing.T) {
	srv, creds := testServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/v1/clients/me", creds.guestToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, "guest token on a user-gated route")

	rec = doRequest(srv, http.MethodGet, "/api/v1/clients/me", "garbage-not-a-real-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code, "invalid token should behave like no token")
}

// TestLoginTokenExchangeSetsCookieAndRotatesSecret exercises the
// login-token-for-API-token exchange, including a repeated exchange.
func TestLoginTokenExchangeSetsCookieAndRotatesSecret(t *testing.T) {
	srv, _ := testServer(t)

	created := doRequest(srv, http.MethodPost, "/api/v1/clients", adminTokenFromStore(t, srv), gin.H{"name": "kiosk", "role": "user"})
	require.Equal(t, http.StatusCreated, created.Code, "create client, body=%s", created.Body.String())
	var createdResp envelope
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &createdResp), "decode create response")
	data := createdResp.Data.(map[string]any)
	clientID := data["id"].(string)

	loginToken, err := findLoginToken(srv, clientID)
	require.NoError(t, err, "find login token")

	rec := doRequest(srv, http.MethodGet, "/open/api/v1/clients/auth/"+loginToken, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, "login token exchange, body=%s", rec.Body.String())
	cookies := rec.Result().Cookies()
	var found bool
	for _, ck := range cookies {
		if ck.Name == "_party_t" && ck.Value != "" {
			found = true
		}
	}
	require.True(t, found, "login token exchange must set the _party_t cookie")

	// The exchange rotates the client's API secret but the login token
	// itself is a stable identifier, not single-use, so exchanging it
	// again re-rotates the secret and still succeeds.
	rec2 := doRequest(srv, http.MethodGet, "/open/api/v1/clients/auth/"+loginToken, "", nil)
	require.Equal(t, http.StatusOK, rec2.Code, "re-exchanging the same login token should still succeed")
}

func findLoginToken(srv *Server, clientID string) (string, error) {
	var token string
	row := srv.store.DB().QueryRowContext(context.Background(), `SELECT login_token FROM clients WHERE id = ?`, clientID)
	if err := row.Scan(&token); err != nil {
		return "", err
	}
	return token, nil
}

// TestPaginationRoundTripThroughHTTP: listing tracks a page at a time
// and following the returned "next" cursor visits every row exactly
// once.
func TestPaginationRoundTripThroughHTTP(t *testing.T) {
	srv, creds := testServer(t)

	for i := 0; i < 5; i++ {
		media, err := srv.store.Media.CreateOrUpdate(context.Background(), catalog.CreateOrUpdateMediaParams{
			Filename: strings.Repeat("x", i+1) + ".mp3", Path: "/m/" + strings.Repeat("x", i+1), MediaType: catalog.MediaAudio,
		})
		require.NoError(t, err, "create media %d", i)
		_, err = srv.store.Tracks.CreateOrUpdate(context.Background(), catalog.CreateOrUpdateTrackParams{
			Title: "Track " + strings.Repeat("x", i+1), MediaID: media.ID,
		})
		require.NoError(t, err, "create track %d", i)
	}

	seen := map[string]bool{}
	firstPage := catalog.DefaultCursor()
	firstPage.Limit = 2
	cursorParam := firstPage.Encode()
	for page := 0; page < 10; page++ {
		path := "/api/v1/tracks?page=" + cursorParam
		rec := doRequest(srv, http.MethodGet, path, creds.guestToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, "list tracks page %d, body=%s", page, rec.Body.String())
		var resp envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "decode page %d", page)
		dataMap := resp.Data.(map[string]any)
		items, _ := dataMap["page"].([]any)
		for _, raw := range items {
			item := raw.(map[string]any)
			seen[item["id"].(string)] = true
		}
		paginators, _ := dataMap["paginators"].(map[string]any)
		next, _ := paginators["next"].(string)
		if next == "" || len(items) == 0 {
			break
		}
		cursorParam = next
	}

	require.Len(t, seen, 5, "walking every page should visit all 5 tracks exactly once")
}

// TestPlaylistDefaultFlipThroughHTTP: setting a playlist as default via
// the update endpoint flips the previous default off.
func TestPlaylistDefaultFlipThroughHTTP(t *testing.T) {
	srv, creds := testServer(t)

	defRec := doRequest(srv, http.MethodGet, "/api/v1/playlists/default", creds.guestToken, nil)
	require.Equal(t, http.StatusOK, defRec.Code, "get default playlist")

	// Create a second playlist and flip default onto it via admin token.
	admin := adminTokenFromStore(t, srv)
	createRec := doRequest(srv, http.MethodPost, "/api/v1/playlists", admin, gin.H{"name": "Party Mix"})
	require.Equal(t, http.StatusCreated, createRec.Code, "create playlist, body=%s", createRec.Body.String())
	var createResp envelope
	json.Unmarshal(createRec.Body.Bytes(), &createResp)
	newID := createResp.Data.(map[string]any)["id"].(string)

	updateRec := doRequest(srv, http.MethodPut, "/api/v1/playlists/"+newID, admin, gin.H{"name": "Party Mix", "is_default": true})
	require.Equal(t, http.StatusOK, updateRec.Code, "update playlist to default, body=%s", updateRec.Body.String())

	defRec2 := doRequest(srv, http.MethodGet, "/api/v1/playlists/default", creds.guestToken, nil)
	var defResp envelope
	json.Unmarshal(defRec2.Body.Bytes(), &defResp)
	require.Equal(t, newID, defResp.Data.(map[string]any)["id"].(string), "the flipped playlist should now be the default")
}

// TestSeedThenPaginateThroughHTTP seeds a small synthetic catalog
// through the admin endpoint and paginates it back through the tracks
// list.
func TestSeedThenPaginateThroughHTTP(t *testing.T) {
	srv, creds := testServer(t)
	admin := adminTokenFromStore(t, srv)

	seedRec := doRequest(srv, http.MethodPost, "/api/v1/admin/seed", admin, gin.H{"total": 3})
	require.Equal(t, http.StatusOK, seedRec.Code, "admin seed, body=%s", seedRec.Body.String())

	firstPageRec := doRequest(srv, http.MethodGet, "/api/v1/tracks?page=", creds.guestToken, nil)
	require.Equal(t, http.StatusOK, firstPageRec.Code, "list tracks")
	var firstResp envelope
	json.Unmarshal(firstPageRec.Body.Bytes(), &firstResp)
	firstData := firstResp.Data.(map[string]any)
	items, _ := firstData["page"].([]any)
	require.Len(t, items, 3, "expected 3 seeded tracks on the first page")

	// Even a non-full page carries a next cursor anchored at the last
	// row returned; following it comes back empty.
	lastID := items[len(items)-1].(map[string]any)["id"].(string)
	paginators := firstData["paginators"].(map[string]any)
	next, _ := paginators["next"].(string)
	require.NotEmpty(t, next, "a non-empty page must carry a next cursor")
	decoded := catalog.DecodeCursor(next)
	require.Equal(t, lastID, decoded.LastValue, "next cursor should anchor at the last returned row")

	secondPageRec := doRequest(srv, http.MethodGet, "/api/v1/tracks?page="+next, creds.guestToken, nil)
	require.Equal(t, http.StatusOK, secondPageRec.Code, "follow next off the tail")
	var secondResp envelope
	json.Unmarshal(secondPageRec.Body.Bytes(), &secondResp)
	secondItems, _ := secondResp.Data.(map[string]any)["page"].([]any)
	require.Empty(t, secondItems, "following next past the last row should return an empty page")
}

// TestAddTracksAcceptsABatchOfLinks covers the array-bodied
// /playlists/add-tracks surface: one request links several tracks and
// reports each link's order number.
func TestAddTracksAcceptsABatchOfLinks(t *testing.T) {
	srv, _ := testServer(t)
	admin := adminTokenFromStore(t, srv)

	playlist, err := srv.store.Playlists.Create(context.Background(), catalog.CreatePlaylistParams{Name: "Batch"})
	require.NoError(t, err)

	var trackIDs []string
	for _, name := range []string{"one", "two"} {
		media, err := srv.store.Media.CreateOrUpdate(context.Background(), catalog.CreateOrUpdateMediaParams{
			Filename: name + ".mp3", Path: "/m/" + name, MediaType: catalog.MediaAudio,
		})
		require.NoError(t, err)
		track, err := srv.store.Tracks.CreateOrUpdate(context.Background(), catalog.CreateOrUpdateTrackParams{
			Title: name, MediaID: media.ID,
		})
		require.NoError(t, err)
		trackIDs = append(trackIDs, track.ID)
	}

	body := []gin.H{
		{"playlist_id": playlist.ID, "track_id": trackIDs[0]},
		{"playlist_id": playlist.ID, "track_id": trackIDs[1]},
	}
	rec := doRequest(srv, http.MethodPost, "/api/v1/playlists/add-tracks", admin, body)
	require.Equal(t, http.StatusOK, rec.Code, "add-tracks, body=%s", rec.Body.String())

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	links := resp.Data.([]any)
	require.Len(t, links, 2, "expected one result per submitted link")
	first := links[0].(map[string]any)
	second := links[1].(map[string]any)
	require.Less(t, first["order_number"].(float64), second["order_number"].(float64),
		"order numbers should follow insertion order")

	tracksRec := doRequest(srv, http.MethodGet, "/api/v1/tracks/playlist/"+playlist.ID, admin, nil)
	require.Equal(t, http.StatusOK, tracksRec.Code)
	var tracksResp envelope
	require.NoError(t, json.Unmarshal(tracksRec.Body.Bytes(), &tracksResp))
	require.Len(t, tracksResp.Data.([]any), 2, "both tracks should now list under the playlist")
}

// TestSearchEndpointUsesUnderscoreQ covers the gateway's ?_q= parameter
// and the event-driven index behind it.
func TestSearchEndpointUsesUnderscoreQ(t *testing.T) {
	srv, creds := testServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/v1/search", creds.guestToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code, "a missing _q parameter is a 400")

	rec = doRequest(srv, http.MethodGet, "/api/v1/search?_q=anything", creds.guestToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, "search with _q, body=%s", rec.Body.String())
}

// adminTokenFromStore mints a fresh admin client and returns its token,
// sidestepping the need to thread testServer's captured admin token
// through every helper.
func adminTokenFromStore(t *testing.T, srv *Server) string {
	t.Helper()
	c, err := srv.store.Clients.Create(context.Background(), catalog.NewClientParams{Name: "test-admin-" + time.Now().Format("150405.000000000"), Role: catalog.RoleAdmin})
	require.NoError(t, err, "create admin")
	return c.PlainToken
}
