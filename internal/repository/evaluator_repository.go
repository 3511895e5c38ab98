package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/arisehq/arise-api/internal/model"
)

type EvaluatorRepo struct{ DB *sql.DB }

func NewEvaluatorRepo(db *sql.DB) *EvaluatorRepo { return &EvaluatorRepo{DB: db} }

const evaluatorColumns = "id,user_id,email,name,relationship,invite_token,status,invited_at,feedback_answers,feedback_scores,completed_at,created_at"

func scanEvaluator(rows *sql.Rows) (model.Evaluator, error) {
	var ev model.Evaluator
	var invitedAt, completedAt sql.NullTime
	var answers, scores sql.NullString
	err := rows.Scan(&ev.ID, &ev.UserID, &ev.Email, &ev.Name, &ev.Relationship,
		&ev.InviteToken, &ev.Status, &invitedAt, &answers, &scores, &completedAt, &ev.CreatedAt)
	if err != nil {
		return model.Evaluator{}, err
	}
	if invitedAt.Valid {
		t := invitedAt.Time
		ev.InvitedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		ev.CompletedAt = &t
	}
	ev.FeedbackAnswers = answers.String
	ev.FeedbackScores = scores.String
	return ev, nil
}

// Create inserts an evaluator in the pending state and returns its ID.
func (r *EvaluatorRepo) Create(ctx context.Context, ev model.Evaluator) (uint64, error) {
	ev.Email = strings.ToLower(strings.TrimSpace(ev.Email))
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO evaluators (user_id, email, name, relationship, invite_token, status)
		 VALUES (?,?,?,?,?,?)`,
		ev.UserID, ev.Email, ev.Name, ev.Relationship, ev.InviteToken, model.EvaluatorPending)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByUser returns the evaluators a participant has added.
func (r *EvaluatorRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Evaluator, error) {
	return r.queryEvaluators(ctx,
		"SELECT "+evaluatorColumns+" FROM evaluators WHERE user_id=? ORDER BY created_at", userID)
}

// ListPendingByUser returns evaluators whose invite has not been sent yet.
func (r *EvaluatorRepo) ListPendingByUser(ctx context.Context, userID uint64) ([]model.Evaluator, error) {
	return r.queryEvaluators(ctx,
		"SELECT "+evaluatorColumns+" FROM evaluators WHERE user_id=? AND status=? ORDER BY created_at",
		userID, model.EvaluatorPending)
}

func (r *EvaluatorRepo) queryEvaluators(ctx context.Context, q string, args ...any) ([]model.Evaluator, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Evaluator
	for rows.Next() {
		ev, err := scanEvaluator(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// MarkInvited flips an evaluator to the invited state and stamps the time.
func (r *EvaluatorRepo) MarkInvited(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE evaluators SET status=?, invited_at=? WHERE id=? AND status=?",
		model.EvaluatorInvited, at, id, model.EvaluatorPending)
	return err
}

// GetByToken resolves an invite token to its evaluator along with the
// participant's display name for the feedback page. The token is the sole
// credential of the feedback flow; sql.ErrNoRows means the link is not
// valid.
func (r *EvaluatorRepo) GetByToken(ctx context.Context, token string) (model.Evaluator, string, error) {
	var ev model.Evaluator
	var invitedAt, completedAt sql.NullTime
	var answers, scores sql.NullString
	var firstName, lastName string
	err := r.DB.QueryRowContext(ctx,
		`SELECT e.id, e.user_id, e.email, e.name, e.relationship, e.invite_token, e.status,
		        e.invited_at, e.feedback_answers, e.feedback_scores, e.completed_at, e.created_at,
		        u.first_name, u.last_name
		 FROM evaluators e JOIN users u ON u.id = e.user_id
		 WHERE e.invite_token=? LIMIT 1`, token).
		Scan(&ev.ID, &ev.UserID, &ev.Email, &ev.Name, &ev.Relationship,
			&ev.InviteToken, &ev.Status, &invitedAt, &answers, &scores, &completedAt, &ev.CreatedAt,
			&firstName, &lastName)
	if err != nil {
		return model.Evaluator{}, "", err
	}
	if invitedAt.Valid {
		t := invitedAt.Time
		ev.InvitedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		ev.CompletedAt = &t
	}
	ev.FeedbackAnswers = answers.String
	ev.FeedbackScores = scores.String
	return ev, strings.TrimSpace(firstName + " " + lastName), nil
}

// CompleteFeedback stores the submitted answers and derived scores and
// flips the evaluator to completed. The status guard makes the transition
// one-way; sql.ErrNoRows reports an evaluator that is already completed.
func (r *EvaluatorRepo) CompleteFeedback(ctx context.Context, id uint64, answers, scores string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE evaluators SET status=?, feedback_answers=?, feedback_scores=?, completed_at=?
		 WHERE id=? AND status<>?`,
		model.EvaluatorCompleted, answers, scores, at, id, model.EvaluatorCompleted)
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
