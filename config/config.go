// Package config loads process configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds every environment-derived setting the process needs at
// startup. It is loaded once in main and passed by pointer into every
// component constructor.
type Config struct {
	HTTPHost string
	HTTPPort string

	DBLocation     string
	StaticLocation string

	AudioFormats []string
	VideoFormats []string
	PhotoFormats []string

	AdminID      string
	AdminToken   string
	ClientID     string
	ClientToken  string
	DefaultList  string
	WSEnabled    bool
	LogLevel     string
}

func Load() *Config {
	return &Config{
		HTTPHost: getEnv("HTTP_HOST", "127.0.0.1"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		DBLocation:     getEnv("DB_LOCATION", "./db"),
		StaticLocation: getEnv("STATIC_LOCATION", "./static"),

		AudioFormats: getEnvAsCSV("AUDIO_FORMAT", []string{"mp3", "aac", "m4a", "wav", "ogg", "wma", "webm", "flac"}),
		VideoFormats: getEnvAsCSV("VIDEO_FORMAT", []string{"mp4"}),
		PhotoFormats: getEnvAsCSV("PHOTO_FORMAT", []string{"jpg", "png", "gif"}),

		AdminID:     getEnv("ADMIN_ID", "{{admin_id}}"),
		AdminToken:  getEnv("ADMIN_TOKEN", "{{admin_token}}"),
		ClientID:    getEnv("CLIENT_ID", "{{client_id}}"),
		ClientToken: getEnv("CLIENT_TOKEN", "{{client_token}}"),
		DefaultList: getEnv("DEFAULT_PLAYLIST", "{{default_playlist}}"),

		WSEnabled: getEnvAsBool("WS_ENABLED", true),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}
}

// DBPath returns the path to the sqlite database file under DBLocation.
func (c *Config) DBPath() string {
	return c.DBLocation + "/data.db"
}

// ArtworkDir returns the directory scanned artwork is written to.
func (c *Config) ArtworkDir() string {
	return c.StaticLocation + "/artwork"
}

// BootstrapPath returns the path to the one-time bootstrap credentials
// file written on first boot (see catalog.WriteBootstrapRecord).
func (c *Config) BootstrapPath() string {
	return c.StaticLocation + "/.bootstrap"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultVal bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultVal
}

func getEnvAsCSV(name string, defaultVal []string) []string {
	valueStr, exists := os.LookupEnv(name)
	if !exists || valueStr == "" {
		return defaultVal
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
