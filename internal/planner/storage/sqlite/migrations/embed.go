// Package migrations embeds the planner SQLite schema migrations.
package migrations

import "embed"

// FS holds the embedded migration SQL files.
//
//go:embed *.sql
var FS embed.FS
