// Package config holds the application-level configuration for hydrocli:
// the data-service session (API root, key, office), logging, the optional
// run-history state store, and the optional metrics endpoint.
//
// Configuration sources, lowest to highest precedence: built-in defaults,
// an optional YAML file (environment placeholders expanded), environment
// variables, then CLI flags applied by the command layer.
package config

// SessionConfig holds the data-service session settings.
type SessionConfig struct {
	// APIRoot is the root URL of the data-service REST API.
	APIRoot string `yaml:"api_root"`
	// APIKey is the key presented on write operations.
	APIKey string `yaml:"api_key"`
	// Office is the office identifier stamped on stored objects.
	Office string `yaml:"office"`
	// InsecureSkipVerify disables TLS certificate verification. Testing only.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the logging level (e.g., "INFO", "DEBUG").
	Level string `yaml:"level"`
	// File, when set, tees log output to this path in addition to stderr.
	File string `yaml:"file"`
}

// StateConfig holds the optional run-history store settings.
type StateConfig struct {
	// Enabled turns run-history recording on.
	Enabled bool `yaml:"enabled"`
	// Connections maps a connection name to its database settings.
	// Decoded lazily by the history package (mapstructure).
	Connections map[string]interface{} `yaml:"connections"`
	// ConnectionRef names the connection used for the history store.
	ConnectionRef string `yaml:"connection_ref"`
}

// MetricsConfig holds the optional metrics endpoint settings.
type MetricsConfig struct {
	// Listen is the address for the /metrics scrape endpoint (e.g., ":9091").
	// Empty disables the endpoint; counters are still recorded in-process.
	Listen string `yaml:"listen"`
}

// Config is the root application configuration.
type Config struct {
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging"`
	State   StateConfig   `yaml:"state"`
	Metrics MetricsConfig `yaml:"metrics"`
	// LookbackDays is the default lookback, in days, for data retrieval
	// commands when no --lookback flag is given.
	LookbackDays int `yaml:"lookback_days"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Session: SessionConfig{},
		Logging: LoggingConfig{Level: "INFO"},
		State: StateConfig{
			ConnectionRef: "history",
		},
		LookbackDays: 5,
	}
}
