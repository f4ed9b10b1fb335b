// Package config resolves the client's environment surface: where the game
// server lives and how patient the handshake is.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envWSEndpoint       = "TRANCA_WS_ENDPOINT"
	envAPIBase          = "TRANCA_API_BASE"
	envHandshakeTimeout = "TRANCA_HANDSHAKE_TIMEOUT"

	defaultAPIBase          = "http://localhost:3000"
	defaultHandshakeTimeout = 5 * time.Second
)

type Config struct {
	// WSEndpoint is the websocket URL the connection manager dials.
	WSEndpoint string
	// APIBase is the HTTP origin; the websocket endpoint is derived from it
	// when no explicit override is set.
	APIBase          string
	HandshakeTimeout time.Duration
}

// Load reads .env if present (real env wins) and resolves the config.
func Load() (Config, error) {
	_ = godotenv.Load() // absent .env is fine

	cfg := Config{
		APIBase:          defaultAPIBase,
		HandshakeTimeout: defaultHandshakeTimeout,
	}
	if v := os.Getenv(envAPIBase); v != "" {
		cfg.APIBase = v
	}
	if v := os.Getenv(envHandshakeTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", envHandshakeTimeout, err)
		}
		cfg.HandshakeTimeout = d
	}

	if v := os.Getenv(envWSEndpoint); v != "" {
		cfg.WSEndpoint = v
		return cfg, nil
	}

	ws, err := deriveWSEndpoint(cfg.APIBase)
	if err != nil {
		return Config{}, err
	}
	cfg.WSEndpoint = ws
	return cfg, nil
}

// deriveWSEndpoint maps the HTTP origin to its websocket sibling:
// http -> ws, https -> wss, path /ws.
func deriveWSEndpoint(apiBase string) (string, error) {
	u, err := url.Parse(apiBase)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("config: invalid API base %q", apiBase)
	}
	scheme := "ws"
	if strings.EqualFold(u.Scheme, "https") {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s/ws", scheme, u.Host), nil
}
