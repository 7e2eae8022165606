package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/speakbright/speakbright/internal/config"
)

const validYAML = `
server:
  listen_addr: ":8080"
  log_level: info
acoustic:
  backend: speechace
  api_key: test-key
  timeout: 5s
  breaker:
    failure_threshold: 3
    cooldown: 30s
safety:
  word_boundary: true
progress:
  store: file
  file_path: /var/lib/speakbright/progress.jsonl
`

func TestLoadFromReader(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("LogLevel = %q", cfg.Server.LogLevel)
	}
	if cfg.Acoustic.Backend != config.BackendSpeechAce {
		t.Errorf("Backend = %q", cfg.Acoustic.Backend)
	}
	if cfg.Acoustic.Timeout != 5*time.Second {
		t.Errorf("Timeout = %s", cfg.Acoustic.Timeout)
	}
	if cfg.Acoustic.Breaker.Cooldown != 30*time.Second {
		t.Errorf("Breaker.Cooldown = %s", cfg.Acoustic.Breaker.Cooldown)
	}
	if !cfg.Safety.WordBoundary {
		t.Error("Safety.WordBoundary = false, want true")
	}
	if cfg.Progress.Store != config.StoreFile {
		t.Errorf("Progress.Store = %q", cfg.Progress.Store)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader("server:\n  listen_adr: \":8080\"\n"))
	if err == nil {
		t.Error("unknown field should fail decoding")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "invalid log level",
			mutate:  func(c *config.Config) { c.Server.LogLevel = "verbose" },
			wantErr: "server.log_level",
		},
		{
			name:    "invalid backend",
			mutate:  func(c *config.Config) { c.Acoustic.Backend = "wav2vec" },
			wantErr: "acoustic.backend",
		},
		{
			name: "speechace without api key",
			mutate: func(c *config.Config) {
				c.Acoustic.Backend = config.BackendSpeechAce
				c.Acoustic.APIKey = ""
			},
			wantErr: "acoustic.api_key",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *config.Config) { c.Acoustic.Timeout = -time.Second },
			wantErr: "acoustic.timeout",
		},
		{
			name:    "invalid store kind",
			mutate:  func(c *config.Config) { c.Progress.Store = "redis" },
			wantErr: "progress.store",
		},
		{
			name: "file store without path",
			mutate: func(c *config.Config) {
				c.Progress.Store = config.StoreFile
				c.Progress.FilePath = ""
			},
			wantErr: "progress.file_path",
		},
		{
			name: "postgres store without dsn",
			mutate: func(c *config.Config) {
				c.Progress.Store = config.StorePostgres
			},
			wantErr: "progress.postgres_dsn",
		},
		{
			name: "tls missing key file",
			mutate: func(c *config.Config) {
				c.Server.TLS = &config.TLSConfig{CertFile: "cert.pem"}
			},
			wantErr: "server.tls",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &config.Config{}
			tt.mutate(cfg)
			err := config.Validate(cfg)
			if err == nil {
				t.Fatal("Validate returned nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_EmptyConfigIsValid(t *testing.T) {
	t.Parallel()

	if err := config.Validate(&config.Config{}); err != nil {
		t.Errorf("empty config should validate with defaults: %v", err)
	}
}
