package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"dosage-dashboard/internal/domain/dosages"

	"github.com/jmoiron/sqlx"
)

// newestFirst desempata por id con collation "C" (bytes), igual que memory y sqlite.
const newestFirst = `dosage_start_time DESC, id COLLATE "C" ASC`

type DosagesRepo struct {
	db *sqlx.DB
}

func NewDosagesRepo(db *sqlx.DB) *DosagesRepo {
	return &DosagesRepo{db: db}
}

type dosageRow struct {
	ID        string         `db:"id"`
	DeviceID  string         `db:"device_id"`
	StartTime time.Time      `db:"dosage_start_time"`
	EndTime   sql.NullTime   `db:"dosage_end_time"`
	Status    sql.NullString `db:"status_log"`
	CreatedAt sql.NullTime   `db:"created_at"`
}

// toEvent valida la fila: una fila inválida es error, no se descarta en silencio.
func (r dosageRow) toEvent() (dosages.DosageEvent, error) {
	e := dosages.DosageEvent{
		ID:        r.ID,
		DeviceID:  r.DeviceID,
		StartTime: r.StartTime,
	}
	if r.EndTime.Valid {
		e.EndTime = dosages.TimePtr(r.EndTime.Time)
	}
	if r.Status.Valid {
		e.StatusLabel = dosages.StringPtr(r.Status.String)
	}
	if r.CreatedAt.Valid {
		e.CreatedAt = dosages.TimePtr(r.CreatedAt.Time)
	}
	if err := e.Validate(); err != nil {
		return dosages.DosageEvent{}, fmt.Errorf("medical_raw %s: %w", r.ID, err)
	}
	return e, nil
}

type outcomeRow struct {
	StartTime time.Time      `db:"dosage_start_time"`
	Status    sql.NullString `db:"status_log"`
}

const dosageColumns = `id, device_id, dosage_start_time, dosage_end_time, status_log, created_at`

// whereClause arma el WHERE del filtro con placeholders $N.
func whereClause(f dosages.Filter) (string, []any, error) {
	if len(f.DeviceIDs) == 0 {
		return "", nil, dosages.ErrEmptyDeviceFilter
	}

	sb := strings.Builder{}
	sb.WriteString(`device_id IN (?)`)
	args := []any{f.DeviceIDs}

	if !f.From.IsZero() {
		sb.WriteString(` AND dosage_start_time >= ?`)
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		sb.WriteString(` AND dosage_start_time <= ?`)
		args = append(args, f.To)
	}

	q, args, err := sqlx.In(sb.String(), args...)
	if err != nil {
		return "", nil, err
	}
	return sqlx.Rebind(sqlx.DOLLAR, q), args, nil
}

func (r *DosagesRepo) Insert(ctx context.Context, e dosages.DosageEvent) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medical_raw (id, device_id, dosage_start_time, dosage_end_time, status_log)
		VALUES ($1,$2,$3,$4,$5)
	`, e.ID, e.DeviceID, e.StartTime, e.EndTime, e.StatusLabel)
	return err
}

// ListWindow lee count y ventana en una misma transacción read-only repeatable read.
func (r *DosagesRepo) ListWindow(ctx context.Context, f dosages.Filter, offset, limit int) ([]dosages.DosageEvent, int, error) {
	if offset < 0 || limit < 1 {
		return nil, 0, dosages.ErrInvalidPage
	}
	where, args, err := whereClause(f)
	if err != nil {
		return nil, 0, err
	}

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var total int
	if err := tx.GetContext(ctx, &total, `SELECT COUNT(*) FROM medical_raw WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	n := len(args)
	q := fmt.Sprintf(`SELECT %s FROM medical_raw WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`, dosageColumns, where, newestFirst, n+1, n+2)

	var rows []dosageRow
	if err := tx.SelectContext(ctx, &rows, q, append(args, limit, offset)...); err != nil {
		return nil, 0, err
	}
	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}

	out := make([]dosages.DosageEvent, 0, len(rows))
	for _, row := range rows {
		e, err := row.toEvent()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, nil
}

func (r *DosagesRepo) ListOutcomes(ctx context.Context, f dosages.Filter) ([]dosages.Outcome, error) {
	where, args, err := whereClause(f)
	if err != nil {
		return nil, err
	}

	var rows []outcomeRow
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT dosage_start_time, status_log FROM medical_raw WHERE `+where, args...); err != nil {
		return nil, err
	}

	out := make([]dosages.Outcome, 0, len(rows))
	for _, row := range rows {
		o := dosages.Outcome{StartTime: row.StartTime}
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

	q := fmt.Sprintf(`SELECT %s FROM medical_raw WHERE %s
		ORDER BY %s
		LIMIT $%d`, dosageColumns, where, newestFirst, len(args)+1)

	var rows []dosageRow
	if err := r.db.SelectContext(ctx, &rows, q, append(args, limit)...); err != nil {
		return nil, err
	}

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
