// Package migrations embeds the versioned SQL schema so binaries and tests
// can migrate without a checkout on disk.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file of this directory
//
//go:embed *.sql
var FS embed.FS
