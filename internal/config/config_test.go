package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"COREADER_SERVER_URL", "COREADER_STREAM_PROTOCOL", "COREADER_HTTP_TIMEOUT",
		"COREADER_STREAM_IDLE_TIMEOUT", "NATS_URL", "DEVSERVER_PORT", "OTEL_ENABLED",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	// t.Setenv with "" still counts as set, so only keys read via
	// getEnvAs* fall back here.
	assert.Equal(t, 30*time.Second, cfg.Client.HTTPTimeout)
	assert.Equal(t, 60*time.Second, cfg.Client.StreamIdleTimeout)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "", cfg.Notify.NatsURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("COREADER_SERVER_URL", "http://example.test:9000")
	t.Setenv("COREADER_STREAM_PROTOCOL", "tagged")
	t.Setenv("COREADER_HTTP_TIMEOUT", "5s")
	t.Setenv("COREADER_STREAM_IDLE_TIMEOUT", "15")
	t.Setenv("DEVSERVER_PORT", "9100")
	t.Setenv("OTEL_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, "http://example.test:9000", cfg.Client.ServerURL)
	assert.Equal(t, "tagged", cfg.Client.StreamProtocol)
	assert.Equal(t, 5*time.Second, cfg.Client.HTTPTimeout)
	assert.Equal(t, 15*time.Second, cfg.Client.StreamIdleTimeout)
	assert.Equal(t, "9100", cfg.DevServer.Port)
	assert.True(t, cfg.Telemetry.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad protocol", mutate: func(c *Config) { c.Client.StreamProtocol = "sse" }, wantErr: true},
		{name: "bad url", mutate: func(c *Config) { c.Client.ServerURL = "not a url" }, wantErr: true},
		{name: "zero http timeout", mutate: func(c *Config) { c.Client.HTTPTimeout = 0 }, wantErr: true},
		{name: "idle timeout disabled", mutate: func(c *Config) { c.Client.StreamIdleTimeout = 0 }},
		{name: "non numeric port", mutate: func(c *Config) { c.DevServer.Port = "http" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				App: AppConfig{Environment: "test", LogFilePath: "test.log"},
				Client: ClientConfig{
					ServerURL:         "http://localhost:8000",
					StreamProtocol:    "sentinel",
					HTTPTimeout:       time.Second,
					DialTimeout:       time.Second,
					StreamIdleTimeout: time.Second,
				},
				Notify:    NotifyConfig{SubjectPrefix: "coreader.notifications"},
				DevServer: DevServerConfig{Port: "8000"},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
