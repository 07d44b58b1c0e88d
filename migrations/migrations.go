// Package migrations embeds the SQL schema for the students service.
package migrations

import "embed"

// Dir is the directory inside FS holding the migration files.
const Dir = "sql"

// FS holds the numbered up/down migrations.
//
//go:embed sql/*.sql
var FS embed.FS
