// Package migrations embeds the client's local SQLite schema.
package migrations

import "embed"

//go:embed sqlite/*.sql
var SQLite embed.FS
