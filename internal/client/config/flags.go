package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the API (e.g., "http://localhost:3000/api")
//	-t int      request timeout in seconds
//	-d string   data directory
//	-s string   secret store backend: file | sqlite
//	-e string   sealer: age | aes
//	-k string   key file
//	-u string   embedded users database (SQLite path)
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-s", "-e", "-k", "-u"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the API")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.SecretBackend, "s", cfg.SecretBackend, "secret store backend (file|sqlite)")
	fs.StringVar(&cfg.Sealer, "e", cfg.Sealer, "sealer (age|aes)")
	fs.StringVar(&cfg.KeyFile, "k", cfg.KeyFile, "key file")
	fs.StringVar(&cfg.EmbeddedUsersDB, "u", cfg.EmbeddedUsersDB, "embedded users database")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
