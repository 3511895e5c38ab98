package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/arisehq/arise-api/internal/auth"
	"github.com/arisehq/arise-api/internal/model"
)

const userColumns = "id,email,password_hash,role,first_name,last_name,plan,has_coach,is_active,created_at,updated_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FirstName, &u.LastName,
		&u.Plan, &u.HasCoach, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a user and returns its ID. The email is normalized to
// lowercase so lookups stay case-insensitive.
func (r *UserRepo) Create(ctx context.Context, email, password, role, firstName, lastName string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, first_name, last_name) VALUES (?,?,?,?,?)",
		email, hash, role, firstName, lastName)
	if err != nil {
		// MySQL error 1062 = duplicate entry on the unique email index
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// UpdateRole sets the role column. Only the admin endpoints call this;
// role transitions never happen implicitly anywhere else.
func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, role string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=?, updated_at=NOW() WHERE id=?", role, id)
	return err
}

// Deactivate clears the active flag. Outstanding tokens for the user keep
// verifying but fail resolution from the next request on.
func (r *UserRepo) Deactivate(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=0, updated_at=NOW() WHERE id=?", id)
	return err
}

// DeleteCascade removes a user and every resource owned by them inside a
// single transaction: results, evaluators and subscriptions go first so
// foreign keys never dangle.
func (r *UserRepo) DeleteCascade(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		"DELETE FROM assessment_results WHERE user_id=?",
		"DELETE FROM evaluators WHERE user_id=?",
		"DELETE FROM subscriptions WHERE user_id=?",
		"DELETE FROM users WHERE id=?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Search lists active users filtered by a free-text term (matched against
// email and names) and a coach filter: "with_coach", "without_coach" or
// "all".
func (r *UserRepo) Search(ctx context.Context, term, coachFilter string) ([]model.User, error) {
	q := "SELECT " + userColumns + " FROM users WHERE is_active=1"
	args := []any{}
	if term = strings.TrimSpace(term); term != "" {
		like := "%" + term + "%"
		q += " AND (email LIKE ? OR first_name LIKE ? OR last_name LIKE ?)"
		args = append(args, like, like, like)
	}
	switch coachFilter {
	case "with_coach":
		q += " AND has_coach=1"
	case "without_coach":
		q += " AND has_coach=0"
	}
	q += " ORDER BY created_at DESC"
	return r.queryUsers(ctx, q, args...)
}

// ListAll returns every user, active or not, for the admin dashboard.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	return r.queryUsers(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
}

func (r *UserRepo) queryUsers(ctx context.Context, q string, args ...any) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FirstName, &u.LastName,
			&u.Plan, &u.HasCoach, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// CountByRole returns the number of active users holding a role.
func (r *UserRepo) CountByRole(ctx context.Context, role string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE role=? AND is_active=1", role).Scan(&n)
	return n, err
}

// GetSettings loads the preference columns for a user.
func (r *UserRepo) GetSettings(ctx context.Context, id uint64) (model.Settings, error) {
	var s model.Settings
	err := r.DB.QueryRowContext(ctx,
		`SELECT settings_email_notifications, settings_weekly_report, settings_dark_mode,
		        settings_language, settings_data_sharing, settings_analytics_tracking
		 FROM users WHERE id=? LIMIT 1`, id).
		Scan(&s.EmailNotifications, &s.WeeklyReport, &s.DarkMode,
			&s.Language, &s.DataSharing, &s.AnalyticsTracking)
	return s, err
}

// UpdateSettings writes the preference columns for a user.
func (r *UserRepo) UpdateSettings(ctx context.Context, id uint64, s model.Settings) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET settings_email_notifications=?, settings_weekly_report=?,
		        settings_dark_mode=?, settings_language=?, settings_data_sharing=?,
		        settings_analytics_tracking=?, updated_at=NOW()
		 WHERE id=?`,
		s.EmailNotifications, s.WeeklyReport, s.DarkMode,
		s.Language, s.DataSharing, s.AnalyticsTracking, id)
	return err
}
