package repository

import (
	"context"
	"database/sql"

	"github.com/arisehq/arise-api/internal/model"
)

type AssessmentRepo struct{ DB *sql.DB }

func NewAssessmentRepo(db *sql.DB) *AssessmentRepo { return &AssessmentRepo{DB: db} }

const assessmentColumns = "id,slug,title,description,kind,question_count,is_active,created_at"

// ListActive returns the public catalog: active assessments ordered by title.
func (r *AssessmentRepo) ListActive(ctx context.Context) ([]model.Assessment, error) {
	return r.queryAssessments(ctx,
		"SELECT "+assessmentColumns+" FROM assessments WHERE is_active=1 ORDER BY title")
}

// ListAll returns every catalog entry, active or not, for the admin view.
func (r *AssessmentRepo) ListAll(ctx context.Context) ([]model.Assessment, error) {
	return r.queryAssessments(ctx,
		"SELECT "+assessmentColumns+" FROM assessments ORDER BY title")
}

func (r *AssessmentRepo) queryAssessments(ctx context.Context, q string, args ...any) ([]model.Assessment, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Assessment
	for rows.Next() {
		var a model.Assessment
		if err := rows.Scan(&a.ID, &a.Slug, &a.Title, &a.Description, &a.Kind,
			&a.QuestionCount, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetByID fetches one assessment regardless of its active flag; old results
// may reference retired catalog entries.
func (r *AssessmentRepo) GetByID(ctx context.Context, id uint64) (model.Assessment, error) {
	var a model.Assessment
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+assessmentColumns+" FROM assessments WHERE id=? LIMIT 1", id).
		Scan(&a.ID, &a.Slug, &a.Title, &a.Description, &a.Kind,
			&a.QuestionCount, &a.IsActive, &a.CreatedAt)
	return a, err
}

// Create inserts a catalog entry and returns its ID.
func (r *AssessmentRepo) Create(ctx context.Context, a model.Assessment) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO assessments (slug, title, description, kind, question_count, is_active)
		 VALUES (?,?,?,?,?,?)`,
		a.Slug, a.Title, a.Description, a.Kind, a.QuestionCount, a.IsActive)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update overwrites the editable catalog columns of an assessment. Callers
// verify existence first; the slug and kind are fixed at creation.
func (r *AssessmentRepo) Update(ctx context.Context, a model.Assessment) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE assessments SET title=?, description=?, question_count=?, is_active=? WHERE id=?",
		a.Title, a.Description, a.QuestionCount, a.IsActive, a.ID)
	return err
}

const questionColumns = "id,assessment_id,text,category,sort,created_at"

// ListQuestions returns an assessment's questions in sort order.
func (r *AssessmentRepo) ListQuestions(ctx context.Context, assessmentID uint64) ([]model.Question, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+questionColumns+" FROM assessment_questions WHERE assessment_id=? ORDER BY sort, id",
		assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.AssessmentID, &q.Text, &q.Category, &q.Sort, &q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// GetQuestion fetches one question by id.
func (r *AssessmentRepo) GetQuestion(ctx context.Context, id uint64) (model.Question, error) {
	var q model.Question
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+questionColumns+" FROM assessment_questions WHERE id=? LIMIT 1", id).
		Scan(&q.ID, &q.AssessmentID, &q.Text, &q.Category, &q.Sort, &q.CreatedAt)
	return q, err
}

// CreateQuestion appends a question to an assessment and returns its ID.
func (r *AssessmentRepo) CreateQuestion(ctx context.Context, q model.Question) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO assessment_questions (assessment_id, text, category, sort) VALUES (?,?,?,?)",
		q.AssessmentID, q.Text, q.Category, q.Sort)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UpdateQuestion overwrites a question's text, category and sort position.
func (r *AssessmentRepo) UpdateQuestion(ctx context.Context, q model.Question) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE assessment_questions SET text=?, category=?, sort=? WHERE id=?",
		q.Text, q.Category, q.Sort, q.ID)
	return err
}

// DeleteQuestion removes a question. sql.ErrNoRows reports an unknown id.
func (r *AssessmentRepo) DeleteQuestion(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM assessment_questions WHERE id=?", id)
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
