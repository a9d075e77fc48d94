package postgres

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
	CreatedAt       time.Time      `db:"created_at"`
}

func (r deviceRow) toDevice() devices.Device {
	d := devices.Device{ID: r.ID, MACAddress: r.MACAddress, CreatedAt: r.CreatedAt}
	if r.FirmwareVersion.Valid {
		v := r.FirmwareVersion.String
		d.FirmwareVersion = &v
	}
	if r.IsActive.Valid {
		v := r.IsActive.Bool
		d.IsActive = &v
	}
	return d
}

type assignmentRow struct {
	UserID   string         `db:"user_id"`
	DeviceID string         `db:"device_id"`
	Role     sql.NullString `db:"role"`
}

func (r *DevicesRepo) PutDevice(ctx context.Context, d devices.Device) error {
	created := d.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO devices (id, mac_address, firmware_version, is_active, created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET
			mac_address = EXCLUDED.mac_address,
			firmware_version = EXCLUDED.firmware_version,
			is_active = EXCLUDED.is_active
	`, d.ID, d.MACAddress, d.FirmwareVersion, d.IsActive, created)
	return err
}

func (r *DevicesRepo) Assign(ctx context.Context, a devices.Assignment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_devices (user_id, device_id, role)
		VALUES ($1,$2,$3)
		ON CONFLICT (user_id, device_id) DO UPDATE SET role = EXCLUDED.role
	`, a.UserID, a.DeviceID, a.Role)
	return err
}

func (r *DevicesRepo) ListAssignments(ctx context.Context, userID string) ([]devices.Assignment, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return []devices.Assignment{}, nil
	}

	var rows []assignmentRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT user_id, device_id, role
		FROM user_devices
		WHERE user_id = $1
		ORDER BY device_id
	`, userID); err != nil {
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
		FROM devices
		WHERE id IN (?)
		ORDER BY created_at, id
	`, ids)
	if err != nil {
		return nil, err
	}

	var rows []deviceRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}

	out := make([]devices.Device, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDevice())
	}
	return out, nil
}
