// Package migrations embeds the goose SQL migrations for the device-local
// SQLite database (local/) and the remote PostgreSQL database (remote/).
package migrations

import "embed"

//go:embed local/*.sql remote/*.sql
var Migrations embed.FS

const (
	LocalDir  = "local"
	RemoteDir = "remote"
)
