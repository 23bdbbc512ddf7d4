// Package migrations embeds the user-service schema.
package migrations

import "embed"

// VersionTable is the goose bookkeeping table owned by user-service.
const VersionTable = "user_service_db_version"

//go:embed *.sql
var FS embed.FS
