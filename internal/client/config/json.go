package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
	"github.com/dmitrijs2005/authkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Timeouts may
// be strings like "15s" or integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	DataDir            string         `json:"data_dir"`
	SecretBackend      string         `json:"secret_backend"`
	Sealer             string         `json:"sealer"`
	KeyFile            string         `json:"key_file"`
	EmbeddedUsersDB    string         `json:"embedded_users_db"`
}

// parseJson overlays Config with the file named by -c / -config. Fields
// absent from the file keep their current value. Panics on read or
// unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFilePath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	for _, f := range []struct {
		dst *string
		v   string
	}{
		{&cfg.ServerEndpointAddr, jc.ServerEndpointAddr},
		{&cfg.DataDir, jc.DataDir},
		{&cfg.SecretBackend, jc.SecretBackend},
		{&cfg.Sealer, jc.Sealer},
		{&cfg.KeyFile, jc.KeyFile},
		{&cfg.EmbeddedUsersDB, jc.EmbeddedUsersDB},
	} {
		if f.v != "" {
			*f.dst = f.v
		}
	}

	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}
