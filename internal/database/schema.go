package database

import _ "embed"

// Schema is the full schema produced by the migrations. Tests apply it
// directly to skip the migration bookkeeping.
//
//go:embed sqlc/schema.sql
var Schema string
