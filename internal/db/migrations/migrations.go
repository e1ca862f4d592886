// Package migrations holds the versioned schema migrations, one directory of SQL files per
// store driver plus the steps that need to inspect the existing schema first.
package migrations

import "embed"

//go:embed sqlite/*.sql mysql/*.sql
var FS embed.FS
