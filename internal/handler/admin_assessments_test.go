package handler

import (
	"context"
	"database/sql"
	"net/http"
	"sort"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arisehq/arise-api/internal/model"
)

// fakeCatalog is an in-memory AssessmentCatalog.
type fakeCatalog struct {
	seq         uint64
	qseq        uint64
	assessments map[uint64]model.Assessment
	questions   map[uint64]model.Question
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		assessments: make(map[uint64]model.Assessment),
		questions:   make(map[uint64]model.Question),
	}
}

func (f *fakeCatalog) ListAll(_ context.Context) ([]model.Assessment, error) {
	out := make([]model.Assessment, 0, len(f.assessments))
	for _, a := range f.assessments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCatalog) GetByID(_ context.Context, id uint64) (model.Assessment, error) {
	a, ok := f.assessments[id]
	if !ok {
		return model.Assessment{}, sql.ErrNoRows
	}
	return a, nil
}

func (f *fakeCatalog) Create(_ context.Context, a model.Assessment) (uint64, error) {
	f.seq++
	a.ID = f.seq
	f.assessments[a.ID] = a
	return a.ID, nil
}

func (f *fakeCatalog) Update(_ context.Context, a model.Assessment) error {
	f.assessments[a.ID] = a
	return nil
}

func (f *fakeCatalog) ListQuestions(_ context.Context, assessmentID uint64) ([]model.Question, error) {
	out := make([]model.Question, 0)
	for _, q := range f.questions {
		if q.AssessmentID == assessmentID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sort < out[j].Sort })
	return out, nil
}

func (f *fakeCatalog) GetQuestion(_ context.Context, id uint64) (model.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return model.Question{}, sql.ErrNoRows
	}
	return q, nil
}

func (f *fakeCatalog) CreateQuestion(_ context.Context, q model.Question) (uint64, error) {
	f.qseq++
	q.ID = f.qseq
	f.questions[q.ID] = q
	return q.ID, nil
}

func (f *fakeCatalog) UpdateQuestion(_ context.Context, q model.Question) error {
	f.questions[q.ID] = q
	return nil
}

func (f *fakeCatalog) DeleteQuestion(_ context.Context, id uint64) error {
	if _, ok := f.questions[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.questions, id)
	return nil
}

func newCatalogApp(catalog *fakeCatalog) *echo.Echo {
	h := NewAdminAssessmentHandler(catalog)
	e := echo.New()
	e.GET("/v1/admin/assessments", h.List)
	e.POST("/v1/admin/assessments", h.Create)
	e.PUT("/v1/admin/assessments/:id", h.Update)
	e.GET("/v1/admin/assessments/:id/questions", h.Questions)
	e.POST("/v1/admin/assessments/:id/questions", h.CreateQuestion)
	e.PUT("/v1/admin/assessments/:id/questions/:qid", h.UpdateQuestion)
	e.DELETE("/v1/admin/assessments/:id/questions/:qid", h.DeleteQuestion)
	return e
}

func seedAssessment(catalog *fakeCatalog) uint64 {
	id, _ := catalog.Create(context.Background(), model.Assessment{
		Slug: "personality-profile", Title: "Personality Profile",
		Kind: model.AssessmentPersonality, QuestionCount: 30, IsActive: true,
	})
	return id
}

func TestCatalogCreate(t *testing.T) {
	catalog := newFakeCatalog()
	e := newCatalogApp(catalog)

	rec := doJSON(e, http.MethodPost, "/v1/admin/assessments",
		`{"slug":"Wellness-Check","title":"Wellness Check","kind":"wellness","question_count":20,"is_active":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	a, err := catalog.GetByID(context.Background(), 1)
	require.NoError(t, err)
	// Slugs are normalized to lower case on the way in.
	assert.Equal(t, "wellness-check", a.Slug)
	assert.Equal(t, model.AssessmentWellness, a.Kind)
}

func TestCatalogCreateValidation(t *testing.T) {
	e := newCatalogApp(newFakeCatalog())

	rec := doJSON(e, http.MethodPost, "/v1/admin/assessments",
		`{"slug":"x","title":"X","kind":"horoscope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid kind")

	rec = doJSON(e, http.MethodPost, "/v1/admin/assessments",
		`{"slug":"","title":"X","kind":"wellness"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogUpdate(t *testing.T) {
	catalog := newFakeCatalog()
	seedAssessment(catalog)
	e := newCatalogApp(catalog)

	rec := doJSON(e, http.MethodPut, "/v1/admin/assessments/1",
		`{"title":"Personality Profile v2","question_count":25,"is_active":false}`)
	require.Equal(t, http.StatusOK, rec.Code)

	a, err := catalog.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Personality Profile v2", a.Title)
	assert.Equal(t, 25, a.QuestionCount)
	assert.False(t, a.IsActive)
	// Slug and kind are immutable through this endpoint.
	assert.Equal(t, "personality-profile", a.Slug)
	assert.Equal(t, model.AssessmentPersonality, a.Kind)
}

func TestCatalogUpdateUnknown(t *testing.T) {
	e := newCatalogApp(newFakeCatalog())

	rec := doJSON(e, http.MethodPut, "/v1/admin/assessments/99", `{"title":"X"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "assessment not found")
}

func TestQuestionLifecycle(t *testing.T) {
	catalog := newFakeCatalog()
	seedAssessment(catalog)
	e := newCatalogApp(catalog)

	rec := doJSON(e, http.MethodPost, "/v1/admin/assessments/1/questions",
		`{"text":"I stay calm under pressure.","category":"Stress Management","sort":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodPut, "/v1/admin/assessments/1/questions/1",
		`{"text":"I remain calm under pressure.","category":"Stress Management","sort":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/v1/admin/assessments/1/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "I remain calm under pressure.")

	rec = doJSON(e, http.MethodDelete, "/v1/admin/assessments/1/questions/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodDelete, "/v1/admin/assessments/1/questions/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuestionValidation(t *testing.T) {
	catalog := newFakeCatalog()
	seedAssessment(catalog)
	e := newCatalogApp(catalog)

	rec := doJSON(e, http.MethodPost, "/v1/admin/assessments/1/questions", `{"text":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "question text is required")

	long := strings.Repeat("a", maxQuestionLen+1)
	rec = doJSON(e, http.MethodPost, "/v1/admin/assessments/1/questions", `{"text":"`+long+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "question text is too long")

	// Questions hang off a real assessment.
	rec = doJSON(e, http.MethodPost, "/v1/admin/assessments/42/questions", `{"text":"Orphan?"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
