package repository

import (
	"context"
	"database/sql"

	"github.com/arisehq/arise-api/internal/model"
)

type SubscriptionRepo struct{ DB *sql.DB }

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{DB: db} }

// GetByUser returns the user's subscription row. sql.ErrNoRows means the
// user is on the implicit free plan.
func (r *SubscriptionRepo) GetByUser(ctx context.Context, userID uint64) (model.Subscription, error) {
	var s model.Subscription
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, plan, status, coaching_addon, period_end, created_at
		 FROM subscriptions WHERE user_id=? LIMIT 1`, userID).
		Scan(&s.ID, &s.UserID, &s.Plan, &s.Status, &s.CoachingAddon, &s.PeriodEnd, &s.CreatedAt)
	return s, err
}

// SetCoachingAddon toggles the coaching add-on flag on an existing
// subscription. Returns sql.ErrNoRows when the user has no subscription.
func (r *SubscriptionRepo) SetCoachingAddon(ctx context.Context, userID uint64, enabled bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE subscriptions SET coaching_addon=? WHERE user_id=?", enabled, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
