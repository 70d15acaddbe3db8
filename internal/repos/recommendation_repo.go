package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"cocolabs/internal/domain"
)

type RecommendationRepo struct{ db *sqlx.DB }

func NewRecommendationRepo(db *sqlx.DB) *RecommendationRepo { return &RecommendationRepo{db: db} }

type recommendationRow struct {
	ID        string  `db:"id"`
	UserID    string  `db:"user_id"`
	ProductID int64   `db:"product_id"`
	Score     float64 `db:"score"`
	Reason    string  `db:"reason"`
	CreatedAt string  `db:"created_at"`
	UpdatedAt string  `db:"updated_at"`
}

// Top returns up to limit cached recommendations for the user, highest score first.
func (r *RecommendationRepo) Top(ctx context.Context, userID string, limit int) ([]domain.Recommendation, error) {
	var rows []recommendationRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, product_id, score, reason, created_at, updated_at
		FROM recommendations
		WHERE user_id = ?
		ORDER BY score DESC, created_at DESC
		LIMIT ?
	`, userID, limit); err != nil {
		return nil, err
	}
	out := make([]domain.Recommendation, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Recommendation{
			ID: row.ID, UserID: row.UserID, ProductID: row.ProductID,
			Score: row.Score, Reason: row.Reason,
			CreatedAt: parseTime(row.CreatedAt), UpdatedAt: parseTime(row.UpdatedAt),
		})
	}
	return out, nil
}

// Replace swaps the user's whole recommendation set in one transaction.
// Readers observe either the old set or the new one.
func (r *RecommendationRepo) Replace(ctx context.Context, userID string, recs []domain.Recommendation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM recommendations WHERE user_id = ?`, userID); err != nil {
		return err
	}
	for _, rec := range recs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO recommendations(id, user_id, product_id, score, reason, created_at, updated_at)
			VALUES(?, ?, ?, ?, ?, ?, ?)
		`, rec.ID, userID, rec.ProductID, rec.Score, rec.Reason, formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt)); err != nil {
			return err
		}
	}
	return tx.Commit()
}
