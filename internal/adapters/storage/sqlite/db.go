package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Open abre (o crea) la base embebida. path=":memory:" sirve para tests.
// Una sola conexión: sqlite serializa escrituras y ":memory:" es por conexión.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("database open failed: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return db, nil
}

// Los instantes se guardan como INTEGER (unix nanos UTC) para que >=, <= y ORDER BY sean numéricos.
const schema = `
CREATE TABLE IF NOT EXISTS devices (
	id               TEXT PRIMARY KEY,
	mac_address      TEXT NOT NULL DEFAULT '',
	firmware_version TEXT,
	is_active        INTEGER,
	created_at       INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS user_devices (
	user_id   TEXT NOT NULL,
	device_id TEXT NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
	role      TEXT,
	PRIMARY KEY (user_id, device_id)
);

CREATE TABLE IF NOT EXISTS medical_raw (
	id                TEXT PRIMARY KEY,
	device_id         TEXT NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
	dosage_start_time INTEGER NOT NULL,
	dosage_end_time   INTEGER,
	status_log        TEXT,
	created_at        INTEGER,
	CHECK (dosage_end_time IS NULL OR dosage_end_time >= dosage_start_time)
);

CREATE INDEX IF NOT EXISTS idx_medical_raw_device_start ON medical_raw(device_id, dosage_start_time);

CREATE TABLE IF NOT EXISTS profiles (
	id             TEXT PRIMARY KEY,
	preferred_name TEXT,
	updated_at     INTEGER NOT NULL
);
`

func InitSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
