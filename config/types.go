package config

// Ledger names the accounts the ledger is bootstrapped with.
type Ledger struct {
	// Owner controls the creator registry. It is only applied to an empty
	// data directory.
	Owner    string `toml:"Owner" env:"CELEBMINT_OWNER"`
	Platform string `toml:"Platform" env:"CELEBMINT_PLATFORM"`
	// Deployer seeds splitter address derivation. Changing it after the first
	// mint changes the address of every later splitter.
	Deployer string `toml:"Deployer" env:"CELEBMINT_DEPLOYER"`
}

// RPC controls the HTTP API.
type RPC struct {
	ListenAddress     string  `toml:"ListenAddress" env:"CELEBMINT_RPC_ADDRESS"`
	JWTSecret         string  `toml:"JWTSecret" env:"CELEBMINT_JWT_SECRET"`
	JWTIssuer         string  `toml:"JWTIssuer" env:"CELEBMINT_JWT_ISSUER"`
	RateLimitPerSec   float64 `toml:"RateLimitPerSec" env:"CELEBMINT_RATE_LIMIT"`
	RateLimitBurst    int     `toml:"RateLimitBurst" env:"CELEBMINT_RATE_BURST"`
	ReadHeaderTimeout int     `toml:"ReadHeaderTimeout"`
	ReadTimeout       int     `toml:"ReadTimeout"`
	WriteTimeout      int     `toml:"WriteTimeout"`
	IdleTimeout       int     `toml:"IdleTimeout"`
}

// Indexer selects the relational store that keeps committed events.
type Indexer struct {
	// Driver is "sqlite", "postgres" or empty to disable indexing.
	Driver string `toml:"Driver" env:"CELEBMINT_INDEXER_DRIVER"`
	DSN    string `toml:"DSN" env:"CELEBMINT_INDEXER_DSN"`
}

// Logging configures the structured logger.
type Logging struct {
	Level      string `toml:"Level" env:"CELEBMINT_LOG_LEVEL"`
	File       string `toml:"File" env:"CELEBMINT_LOG_FILE"`
	MaxSizeMB  int    `toml:"MaxSizeMB"`
	MaxBackups int    `toml:"MaxBackups"`
	MaxAgeDays int    `toml:"MaxAgeDays"`
}

// Telemetry configures OpenTelemetry export.
type Telemetry struct {
	OTLPEndpoint string `toml:"OTLPEndpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Headers      string `toml:"Headers" env:"OTEL_EXPORTER_OTLP_HEADERS"`
	Insecure     bool   `toml:"Insecure" env:"CELEBMINT_OTLP_INSECURE"`
	Traces       bool   `toml:"Traces" env:"CELEBMINT_OTLP_TRACES"`
	Metrics      bool   `toml:"Metrics" env:"CELEBMINT_OTLP_METRICS"`
}
