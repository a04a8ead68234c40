package migrations

import "embed"

// FS contains embedded SQLite migrations for layout storage.
//
//go:embed *.sql
var FS embed.FS
