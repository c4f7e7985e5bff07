// Package postgres holds the agent repository schema as ordered migration files.
package postgres

import "embed"

//go:embed *.sql
var FS embed.FS
