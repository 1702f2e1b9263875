package migrations

import "embed"

// Files holds the forward-only SQL migrations, applied in version order.
//
//go:embed *.sql
var Files embed.FS
