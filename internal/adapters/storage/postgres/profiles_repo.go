package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dosage-dashboard/internal/domain/profiles"

	"github.com/jmoiron/sqlx"
)

type ProfilesRepo struct {
	db *sqlx.DB
}

func NewProfilesRepo(db *sqlx.DB) *ProfilesRepo {
	return &ProfilesRepo{db: db}
}

type profileRow struct {
	ID            string         `db:"id"`
	PreferredName sql.NullString `db:"preferred_name"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r *ProfilesRepo) Get(ctx context.Context, userID string) (profiles.Profile, error) {
	var row profileRow
	err := r.db.GetContext(ctx, &row, `SELECT id, preferred_name, updated_at FROM profiles WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return profiles.Profile{}, profiles.ErrNotFound
	}
	if err != nil {
		return profiles.Profile{}, err
	}

	p := profiles.Profile{UserID: row.ID, UpdatedAt: row.UpdatedAt}
	if row.PreferredName.Valid {
		v := row.PreferredName.String
		p.PreferredName = &v
	}
	return p, nil
}

func (r *ProfilesRepo) Upsert(ctx context.Context, p profiles.Profile) error {
	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, preferred_name, updated_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (id) DO UPDATE SET
			preferred_name = EXCLUDED.preferred_name,
			updated_at = EXCLUDED.updated_at
	`, p.UserID, p.PreferredName, updated)
	return err
}
