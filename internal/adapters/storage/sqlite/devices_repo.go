package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"dosage-dashboard/internal/domain/devices"

	"github.com/jmoiron/sqlx"
)

type DevicesRepo struct {
	db *sqlx.DB
}

func NewDevicesRepo(db *sqlx.DB) *DevicesRepo {
	return &DevicesRepo{db: db}
}

type deviceRow struct {
	ID              string         `db:"id"`
	MACAddress      string         `db:"mac_address"`
	FirmwareVersion sql.NullString `db:"firmware_version"`
	IsActive        sql.NullBool   `db:"is_active"`
	CreatedAt       int64          `db:"created_at"`
}

func (r *DevicesRepo) PutDevice(ctx context.Context, d devices.Device) error {
	created := d.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO devices (id, mac_address, firmware_version, is_active, created_at)
		VALUES (?,?,?,?,?)
		ON CONFLICT (id) DO UPDATE SET
			mac_address = excluded.mac_address,
			firmware_version = excluded.firmware_version,
			is_active = excluded.is_active
	`, d.ID, d.MACAddress, d.FirmwareVersion, d.IsActive, toNanos(created))
	return err
}

func (r *DevicesRepo) Assign(ctx context.Context, a devices.Assignment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_devices (user_id, device_id, role)
		VALUES (?,?,?)
		ON CONFLICT (user_id, device_id) DO UPDATE SET role = excluded.role
	`, a.UserID, a.DeviceID, a.Role)
	return err
}

func (r *DevicesRepo) ListAssignments(ctx context.Context, userID string) ([]devices.Assignment, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return []devices.Assignment{}, nil
	}

	var rows []struct {
		UserID   string         `db:"user_id"`
		DeviceID string         `db:"device_id"`
		Role     sql.NullString `db:"role"`
	}
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT user_id, device_id, role FROM user_devices WHERE user_id = ? ORDER BY device_id`, userID); err != nil {
		return nil, err
	}

	out := make([]devices.Assignment, 0, len(rows))
	for _, row := range rows {
		a := devices.Assignment{UserID: row.UserID, DeviceID: row.DeviceID}
		if row.Role.Valid {
			role := row.Role.String
			a.Role = &role
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *DevicesRepo) ListByIDs(ctx context.Context, ids []string) ([]devices.Device, error) {
	if len(ids) == 0 {
		return []devices.Device{}, nil
	}

	q, args, err := sqlx.In(`
		SELECT id, mac_address, firmware_version, is_active, created_at
		FROM devices WHERE id IN (?) ORDER BY created_at, id`, ids)
	if err != nil {
		return nil, err
	}

	var rows []deviceRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}

	out := make([]devices.Device, 0, len(rows))
	for _, row := range rows {
		d := devices.Device{ID: row.ID, MACAddress: row.MACAddress, CreatedAt: fromNanos(row.CreatedAt)}
		if row.FirmwareVersion.Valid {
			v := row.FirmwareVersion.String
			d.FirmwareVersion = &v
		}
		if row.IsActive.Valid {
			v := row.IsActive.Bool
			d.IsActive = &v
		}
		out = append(out, d)
	}
	return out, nil
}
