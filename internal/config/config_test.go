package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveWSEndpoint(t *testing.T) {
	cases := []struct {
		name    string
		apiBase string
		want    string
		wantErr bool
	}{
		{name: "http origin", apiBase: "http://localhost:3000", want: "ws://localhost:3000/ws"},
		{name: "https origin", apiBase: "https://tranca.example.com", want: "wss://tranca.example.com/ws"},
		{name: "origin with port", apiBase: "https://play.example.com:8443", want: "wss://play.example.com:8443/ws"},
		{name: "garbage", apiBase: "not a url", wantErr: true},
		{name: "empty", apiBase: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := deriveWSEndpoint(tc.apiBase)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:3000/ws", cfg.WSEndpoint)
	assert.Equal(t, defaultHandshakeTimeout, cfg.HandshakeTimeout)
}

func TestLoadExplicitOverrides(t *testing.T) {
	t.Setenv(envWSEndpoint, "wss://override.example.com/socket")
	t.Setenv(envHandshakeTimeout, "750ms")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "wss://override.example.com/socket", cfg.WSEndpoint)
	assert.Equal(t, 750*time.Millisecond, cfg.HandshakeTimeout)
}

func TestLoadBadTimeout(t *testing.T) {
	t.Setenv(envHandshakeTimeout, "soon")
	_, err := Load()
	assert.Error(t, err)
}
