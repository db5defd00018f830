// Package migrations holds the SQL schema, embedded so the binary and the tests
// never depend on the working directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
