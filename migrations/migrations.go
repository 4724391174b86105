// Package migrations embeds the PostgreSQL schema migrations so the
// migrate tool and the integration tests apply the same files.
package migrations

import "embed"

// FS holds the numbered up and down migrations.
//
//go:embed *.sql
var FS embed.FS
