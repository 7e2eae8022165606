// Package config provides the configuration schema and loader for the
// SpeakBright server.
package config

import "time"

// LogLevel controls log verbosity for the SpeakBright server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// StoreKind selects the progress persistence backend.
type StoreKind string

const (
	// StoreMemory keeps progress in process memory; suitable for demos and
	// tests only.
	StoreMemory StoreKind = "memory"

	// StoreFile appends progress as JSON lines to a local file.
	StoreFile StoreKind = "file"

	// StorePostgres persists progress in a PostgreSQL database.
	StorePostgres StoreKind = "postgres"
)

// IsValid reports whether k is a recognised store kind.
func (k StoreKind) IsValid() bool {
	switch k {
	case StoreMemory, StoreFile, StorePostgres:
		return true
	}
	return false
}

// Backend selects the acoustic scoring backend.
type Backend string

const (
	// BackendHeuristic scores with the built-in difficulty-conditioned
	// generator and needs no external service.
	BackendHeuristic Backend = "heuristic"

	// BackendSpeechAce scores against the SpeechAce pronunciation API, with
	// the heuristic as automatic fallback.
	BackendSpeechAce Backend = "speechace"
)

// IsValid reports whether b is a recognised backend.
func (b Backend) IsValid() bool {
	return b == BackendHeuristic || b == BackendSpeechAce
}

// Config is the root configuration structure for SpeakBright. It is typically
// loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Acoustic AcousticConfig `yaml:"acoustic"`
	Safety   SafetyConfig   `yaml:"safety"`
	Progress ProgressConfig `yaml:"progress"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// TLS configures TLS for the server. When nil, the server runs plain
	// HTTP.
	TLS *TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate paths for enabling HTTPS.
type TLSConfig struct {
	// CertFile is the path to the PEM-encoded TLS certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded TLS private key.
	KeyFile string `yaml:"key_file"`
}

// AcousticConfig selects and tunes the acoustic scoring backend.
type AcousticConfig struct {
	// Backend selects the scorer. Empty defaults to "heuristic".
	Backend Backend `yaml:"backend"`

	// APIKey authenticates against the remote backend's API.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the backend's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds a single backend call. Zero selects the default.
	Timeout time.Duration `yaml:"timeout"`

	// Breaker tunes the circuit breaker in front of the backend.
	Breaker BreakerConfig `yaml:"breaker"`

	// HeuristicSeed fixes the heuristic generator's random seed. Zero seeds
	// from the current time; non-zero values make scoring reproducible for
	// demos.
	HeuristicSeed int64 `yaml:"heuristic_seed"`
}

// BreakerConfig tunes the circuit breaker guarding a remote backend.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that trips the
	// breaker. Zero selects the default.
	FailureThreshold int `yaml:"failure_threshold"`

	// Cooldown is how long the breaker stays open before probing. Zero
	// selects the default.
	Cooldown time.Duration `yaml:"cooldown"`
}

// SafetyConfig tunes the banned-word filter on outgoing text.
type SafetyConfig struct {
	// WordBoundary restricts banned-word matching to whole words. The
	// default substring matching also rewrites banned words embedded inside
	// larger words.
	WordBoundary bool `yaml:"word_boundary"`
}

// ProgressConfig selects and tunes progress persistence.
type ProgressConfig struct {
	// Store selects the backend. Empty defaults to "memory".
	Store StoreKind `yaml:"store"`

	// FilePath is the JSON-lines file used when Store is "file".
	FilePath string `yaml:"file_path"`

	// PostgresDSN is the connection string used when Store is "postgres".
	PostgresDSN string `yaml:"postgres_dsn"`
}
