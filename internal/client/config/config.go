package config

import "time"

// Config holds runtime settings for the authkeeper CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the HTTP API, including the /api prefix.
//   - RequestTimeout: per-request timeout of the HTTP client.
//   - DataDir: directory for the sealed credential and the local database.
//   - SecretBackend: "file" or "sqlite".
//   - Sealer: "age" or "aes".
//   - KeyFile: sealing key location, outside DataDir; empty means
//     authkeeper/secret.key under the user config directory.
//   - EmbeddedUsersDB: when set, accounts live in this local SQLite file and
//     no server is contacted.
type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration
	DataDir            string
	SecretBackend      string
	Sealer             string
	KeyFile            string
	EmbeddedUsersDB    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://localhost:3000/api"
	c.RequestTimeout = 15 * time.Second
	c.DataDir = ".authkeeper"
	c.SecretBackend = "file"
	c.Sealer = "age"
	c.KeyFile = ""
	c.EmbeddedUsersDB = ""
}

// Embedded reports whether the CLI should run without a server.
func (c *Config) Embedded() bool {
	return c.EmbeddedUsersDB != ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
