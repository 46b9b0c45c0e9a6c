// Package migrations embeds the ledger schema migrations.
package migrations

import "embed"

// FS holds the numbered up and down migration files
//
//go:embed *.sql
var FS embed.FS
