package sqlite

import (
	"context"
	"database/sql"
)

// schema holds the overlay table. One row per key; the value is the whole
// JSON document for that key. version increases on every write and is only
// used for diagnostics.
const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    version INTEGER NOT NULL DEFAULT 1,
    updated_at INTEGER NOT NULL
);
`

// runMigrations executes the schema setup.
func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
