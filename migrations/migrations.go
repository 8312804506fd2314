// Package migrations embeds the clinic service schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
