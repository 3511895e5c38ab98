package repository

import (
	"context"
	"database/sql"

	"github.com/arisehq/arise-api/internal/model"
)

type ResultRepo struct{ DB *sql.DB }

func NewResultRepo(db *sql.DB) *ResultRepo { return &ResultRepo{DB: db} }

// Insert stores a completed assessment and returns its ID.
func (r *ResultRepo) Insert(ctx context.Context, res model.AssessmentResult) (uint64, error) {
	out, err := r.DB.ExecContext(ctx,
		`INSERT INTO assessment_results (user_id, assessment_id, overall_score, dimension_scores, completed_at)
		 VALUES (?,?,?,?,?)`,
		res.UserID, res.AssessmentID, res.OverallScore, res.DimensionScores, res.CompletedAt)
	if err != nil {
		return 0, err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByUser returns a user's results, newest first.
func (r *ResultRepo) ListByUser(ctx context.Context, userID uint64) ([]model.AssessmentResult, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, assessment_id, overall_score, dimension_scores, completed_at
		 FROM assessment_results WHERE user_id=? ORDER BY completed_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AssessmentResult
	for rows.Next() {
		var res model.AssessmentResult
		if err := rows.Scan(&res.ID, &res.UserID, &res.AssessmentID,
			&res.OverallScore, &res.DimensionScores, &res.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// CountCompleted returns the total number of stored results, used for the
// coach dashboard stats.
func (r *ResultRepo) CountCompleted(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM assessment_results").Scan(&n)
	return n, err
}
