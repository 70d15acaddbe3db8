package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"cocolabs/internal/domain"
)

type ProfileRepo struct{ db *sqlx.DB }

func NewProfileRepo(db *sqlx.DB) *ProfileRepo { return &ProfileRepo{db: db} }

type profileRow struct {
	domain.Profile
	Updated string `db:"updated_at"`
}

// Get returns sql.ErrNoRows when the user has no profile.
func (r *ProfileRepo) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	var row profileRow
	err := r.db.GetContext(ctx, &row, `
		SELECT user_id, first_name, last_name, phone, address, city, state, zip_code, country, updated_at
		FROM profiles WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, err
	}
	p := row.Profile
	p.UpdatedAt = parseTime(row.Updated)
	return &p, nil
}

// Upsert writes every field of p, creating the row if needed.
func (r *ProfileRepo) Upsert(ctx context.Context, p *domain.Profile) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles(user_id, first_name, last_name, phone, address, city, state, zip_code, country, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
		  first_name = excluded.first_name,
		  last_name  = excluded.last_name,
		  phone      = excluded.phone,
		  address    = excluded.address,
		  city       = excluded.city,
		  state      = excluded.state,
		  zip_code   = excluded.zip_code,
		  country    = excluded.country,
		  updated_at = excluded.updated_at
	`, p.UserID, p.FirstName, p.LastName, p.Phone, p.Address, p.City, p.State, p.ZipCode, p.Country, formatTime(p.UpdatedAt))
	return err
}
