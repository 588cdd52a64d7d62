package history

import (
	"database/sql"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/logger"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS polls (
	       id           TEXT PRIMARY KEY,
	       captured_at  INTEGER NOT NULL CHECK (typeof(captured_at) = 'integer'),
	       record_count INTEGER NOT NULL CHECK (record_count >= 0)
	   );
	   CREATE INDEX IF NOT EXISTS polls_captured_at ON polls (captured_at);
	   CREATE TABLE IF NOT EXISTS samples (
	       poll_id   TEXT NOT NULL REFERENCES polls (id) ON DELETE CASCADE,
	       position  INTEGER NOT NULL,
	       name      TEXT NOT NULL,
	       metric_offset TEXT NOT NULL,
	       raw_hex   TEXT NOT NULL,
	       value     REAL,
	       unit      TEXT NOT NULL,
	       PRIMARY KEY (poll_id, name)
	   );
	   CREATE INDEX IF NOT EXISTS samples_name ON samples (name);`

	insertPollSQL = `
    INSERT OR IGNORE INTO polls (id, captured_at, record_count)
    VALUES (?, ?, ?)`

	insertSampleSQL = `
    INSERT OR IGNORE INTO samples (poll_id, position, name, metric_offset, raw_hex, value, unit)
    VALUES (?, ?, ?, ?, ?, ?, ?)`

	recentSQL = `
    SELECT p.id, p.captured_at, s.name, s.metric_offset, s.raw_hex, s.value, s.unit
    FROM polls p
    JOIN samples s ON s.poll_id = p.id
    WHERE p.id IN (SELECT id FROM polls ORDER BY captured_at DESC LIMIT ?)
    ORDER BY p.captured_at DESC, p.id, s.position ASC`

	seriesSQL = `
    SELECT p.id, p.captured_at, s.value, s.unit
    FROM samples s
    JOIN polls p ON p.id = s.poll_id
    WHERE s.name = ?
    ORDER BY p.captured_at DESC
    LIMIT ?`
)

// InitSchema creates a new database schema with the current version
func InitSchema(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	log.Debug().Msg("Creating history database...")

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				log.Debug().Err(err).Msg("Failed to rollback transaction")
			}
		}
	}()

	if _, err := tx.Exec(createTablesSQL); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			SQL   string
		}{
			Error: err.Error(),
			SQL:   createTablesSQL,
		})
	}

	if _, err := tx.Exec(`
        INSERT INTO schema_versions (version, applied_at)
        VALUES (?, datetime('now'))
    `, SchemaVersion); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			Phase string
		}{
			Error: err.Error(),
			Phase: "record_version",
		})
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	committed = true

	log.Info().
		Int("version", SchemaVersion).
		Msg("History schema initialized")

	return nil
}

// GetSchemaVersion returns the current schema version, or 0 for an empty
// database.
func GetSchemaVersion(db *sql.DB) (int, error) {
	errFactory := errors.New()

	exists, err := TableExists(db, "schema_versions")
	if err != nil {
		return 0, errFactory.Wrap(ErrSchemaValidationFailed, err)
	}
	if !exists {
		return 0, nil
	}

	var version int
	err = db.QueryRow(`
        SELECT version
        FROM schema_versions
        ORDER BY version DESC
        LIMIT 1
    `).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errFactory.WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Error string
		}{
			Phase: "get_version",
			Error: err.Error(),
		})
	}

	return version, nil
}

// TableExists checks if a table exists
func TableExists(db *sql.DB, tableName string) (bool, error) {
	var exists bool
	err := db.QueryRow(`
        SELECT EXISTS (
            SELECT 1 FROM sqlite_master
            WHERE type='table' AND name=?
        )
    `, tableName).Scan(&exists)
	if err != nil {
		return false, errors.New().WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Table string
			Error string
		}{
			Phase: "check_table_exists",
			Table: tableName,
			Error: err.Error(),
		})
	}
	return exists, nil
}
