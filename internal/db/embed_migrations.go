package db

import "embed"

// MigrationFS embeds SQL migration files from internal/db/migrations.
// Used by the migrate runner (cmd/migrate) and the readiness probe.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS

// LatestSchemaVersion is the version the readiness probe expects the
// schema_migrations table to report. Bump together with new migration files.
const LatestSchemaVersion = 2
