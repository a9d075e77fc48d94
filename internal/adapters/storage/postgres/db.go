package postgres

import (
	"context"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound = errors.New("not found")
)

// Open abre un pool a Postgres usando pgx (database/sql) envuelto en sqlx.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Schema es el layout mínimo que leen los repos (medical_raw lo escribe el backend de devices).
const Schema = `
CREATE TABLE IF NOT EXISTS devices (
	id               TEXT PRIMARY KEY,
	mac_address      TEXT NOT NULL DEFAULT '',
	firmware_version TEXT,
	is_active        BOOLEAN,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
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
	dosage_start_time TIMESTAMPTZ NOT NULL,
	dosage_end_time   TIMESTAMPTZ,
	status_log        TEXT,
	created_at        TIMESTAMPTZ DEFAULT now(),
	CHECK (dosage_end_time IS NULL OR dosage_end_time >= dosage_start_time)
);

CREATE INDEX IF NOT EXISTS medical_raw_device_start_idx
	ON medical_raw (device_id, dosage_start_time DESC, id);

CREATE TABLE IF NOT EXISTS profiles (
	id             TEXT PRIMARY KEY,
	preferred_name TEXT,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// InitSchema crea las tablas si no existen (dev / tests de integración).
func InitSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}
