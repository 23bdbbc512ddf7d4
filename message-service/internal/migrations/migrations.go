// Package migrations embeds the message-service schema.
package migrations

import "embed"

// VersionTable is the goose bookkeeping table owned by message-service.
const VersionTable = "message_service_db_version"

//go:embed *.sql
var FS embed.FS
