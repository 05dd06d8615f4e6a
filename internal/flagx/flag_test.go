package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{"separate value", []string{"-a", ":3000", "-x", "1"}, []string{"-a"}, []string{"-a", ":3000"}},
		{"equals form", []string{"-k=secret", "-a", ":3000"}, []string{"-k"}, []string{"-k=secret"}},
		{"equals value starting with dash", []string{"--config=--odd.json"}, []string{"--config"}, []string{"--config=--odd.json"}},
		{"unknown flags and positionals dropped", []string{"-x", "1", "--y=2", "positional"}, []string{"-a"}, []string{}},
		{"flag at the end", []string{"-d"}, []string{"-d"}, []string{"-d"}},
		{"next token is a flag", []string{"-d", "-a", ":3000"}, []string{"-d", "-a"}, []string{"-d", "-a", ":3000"}},
		{"repeated flag keeps order", []string{"-s", "memory", "-s", "sqlite"}, []string{"-s"}, []string{"-s", "memory", "-s", "sqlite"}},
		{"empty", nil, []string{"-a"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFilePath(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short", []string{"-c", "/etc/authkeeper.json"}, "/etc/authkeeper.json"},
		{"long", []string{"-config", "conf.json", "-a", ":3000"}, "conf.json"},
		{"double dash equals", []string{"--config=conf.json"}, "conf.json"},
		{"last wins", []string{"-c", "one.json", "-config", "two.json"}, "two.json"},
		{"absent", []string{"-a", ":3000", "-k", "secret"}, ""},
		{"missing value", []string{"-c"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ConfigFilePath(tt.args))
		})
	}
}
