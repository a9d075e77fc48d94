package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"dosage-dashboard/internal/domain/dosages"

	"github.com/jmoiron/sqlx"
)

type DosagesRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewDosagesRepo(db *sqlx.DB) *DosagesRepo {
	return &DosagesRepo{db: db, now: time.Now}
}

type dosageRow struct {
	ID        string         `db:"id"`
	DeviceID  string         `db:"device_id"`
	StartTime int64          `db:"dosage_start_time"`
	EndTime   sql.NullInt64  `db:"dosage_end_time"`
	Status    sql.NullString `db:"status_log"`
	CreatedAt sql.NullInt64  `db:"created_at"`
}

func (r dosageRow) toEvent() (dosages.DosageEvent, error) {
	e := dosages.DosageEvent{
		ID:        r.ID,
		DeviceID:  r.DeviceID,
		StartTime: fromNanos(r.StartTime),
	}
	if r.EndTime.Valid {
		e.EndTime = dosages.TimePtr(fromNanos(r.EndTime.Int64))
	}
	if r.Status.Valid {
		e.StatusLabel = dosages.StringPtr(r.Status.String)
	}
	if r.CreatedAt.Valid {
		e.CreatedAt = dosages.TimePtr(fromNanos(r.CreatedAt.Int64))
	}
	if err := e.Validate(); err != nil {
		return dosages.DosageEvent{}, fmt.Errorf("medical_raw %s: %w", r.ID, err)
	}
	return e, nil
}

func toNanos(t time.Time) int64 { return t.UTC().UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

func nullNanos(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toNanos(*t), Valid: true}
}

const dosageColumns = `id, device_id, dosage_start_time, dosage_end_time, status_log, created_at`

func whereClause(f dosages.Filter) (string, []any, error) {
	if len(f.DeviceIDs) == 0 {
		return "", nil, dosages.ErrEmptyDeviceFilter
	}

	sb := strings.Builder{}
	sb.WriteString(`device_id IN (?)`)
	args := []any{f.DeviceIDs}

	if !f.From.IsZero() {
		sb.WriteString(` AND dosage_start_time >= ?`)
		args = append(args, toNanos(f.From))
	}
	if !f.To.IsZero() {
		sb.WriteString(` AND dosage_start_time <= ?`)
		args = append(args, toNanos(f.To))
	}
	return sqlx.In(sb.String(), args...)
}

func (r *DosagesRepo) Insert(ctx context.Context, e dosages.DosageEvent) error {
	if err := e.Validate(); err != nil {
		return err
	}
	created := r.now()
	if e.CreatedAt != nil {
		created = *e.CreatedAt
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medical_raw (id, device_id, dosage_start_time, dosage_end_time, status_log, created_at)
		VALUES (?,?,?,?,?,?)
	`, e.ID, e.DeviceID, toNanos(e.StartTime), nullNanos(e.EndTime), e.StatusLabel, toNanos(created))
	return err
}

// ListWindow: count y ventana en la misma transacción.
func (r *DosagesRepo) ListWindow(ctx context.Context, f dosages.Filter, offset, limit int) ([]dosages.DosageEvent, int, error) {
	if offset < 0 || limit < 1 {
		return nil, 0, dosages.ErrInvalidPage
	}
	where, args, err := whereClause(f)
	if err != nil {
		return nil, 0, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var total int
	if err := tx.GetContext(ctx, &total, `SELECT COUNT(*) FROM medical_raw WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	var rows []dosageRow
	q := `SELECT ` + dosageColumns + ` FROM medical_raw WHERE ` + where +
		` ORDER BY dosage_start_time DESC, id ASC LIMIT ? OFFSET ?`
	if err := tx.SelectContext(ctx, &rows, q, append(args, limit, offset)...); err != nil {
		return nil, 0, err
	}
	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}

	out, err := toEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *DosagesRepo) ListOutcomes(ctx context.Context, f dosages.Filter) ([]dosages.Outcome, error) {
	where, args, err := whereClause(f)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		StartTime int64          `db:"dosage_start_time"`
		Status    sql.NullString `db:"status_log"`
	}
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT dosage_start_time, status_log FROM medical_raw WHERE `+where, args...); err != nil {
		return nil, err
	}

	out := make([]dosages.Outcome, 0, len(rows))
	for _, row := range rows {
		o := dosages.Outcome{StartTime: fromNanos(row.StartTime)}
		if row.Status.Valid {
			o.StatusLabel = dosages.StringPtr(row.Status.String)
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *DosagesRepo) Count(ctx context.Context, f dosages.Filter) (int, error) {
	where, args, err := whereClause(f)
	if err != nil {
		return 0, err
	}
	var n int
	err = r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM medical_raw WHERE `+where, args...)
	return n, err
}

func (r *DosagesRepo) Latest(ctx context.Context, deviceIDs []string, limit int) ([]dosages.DosageEvent, error) {
	if limit < 1 {
		return []dosages.DosageEvent{}, nil
	}
	where, args, err := whereClause(dosages.Filter{DeviceIDs: deviceIDs})
	if err != nil {
		return nil, err
	}

	var rows []dosageRow
	q := `SELECT ` + dosageColumns + ` FROM medical_raw WHERE ` + where +
		` ORDER BY dosage_start_time DESC, id ASC LIMIT ?`
	if err := r.db.SelectContext(ctx, &rows, q, append(args, limit)...); err != nil {
		return nil, err
	}
	return toEvents(rows)
}

func toEvents(rows []dosageRow) ([]dosages.DosageEvent, error) {
	out := make([]dosages.DosageEvent, 0, len(rows))
	for _, row := range rows {
		e, err := row.toEvent()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
