// Package db embeds the SQL schema migrations applied at startup.
package db

import "embed"

//go:embed migration/*.sql
var MigrationFS embed.FS
