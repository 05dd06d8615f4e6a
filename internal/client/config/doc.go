// Package config loads runtime configuration for the authkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "http://localhost:3000/api",
//	  "request_timeout": "15s",
//	  "data_dir": ".authkeeper",
//	  "secret_backend": "file",
//	  "sealer": "age",
//	  "key_file": "",
//	  "embedded_users_db": ""
//	}
package config
