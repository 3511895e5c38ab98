package handler

import (
    "context"
    "database/sql"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/arisehq/arise-api/internal/model"
)

// AssessmentCatalog is the slice of the assessment repository the admin
// catalog endpoints need.
type AssessmentCatalog interface {
    ListAll(ctx context.Context) ([]model.Assessment, error)
    GetByID(ctx context.Context, id uint64) (model.Assessment, error)
    Create(ctx context.Context, a model.Assessment) (uint64, error)
    Update(ctx context.Context, a model.Assessment) error
    ListQuestions(ctx context.Context, assessmentID uint64) ([]model.Question, error)
    GetQuestion(ctx context.Context, id uint64) (model.Question, error)
    CreateQuestion(ctx context.Context, q model.Question) (uint64, error)
    UpdateQuestion(ctx context.Context, q model.Question) error
    DeleteQuestion(ctx context.Context, id uint64) error
}

// AdminAssessmentHandler manages the assessment catalog and its questions.
// Retiring an assessment means clearing is_active rather than deleting the
// row, so old results keep a valid reference.
type AdminAssessmentHandler struct {
    Catalog AssessmentCatalog
}

func NewAdminAssessmentHandler(catalog AssessmentCatalog) *AdminAssessmentHandler {
    return &AdminAssessmentHandler{Catalog: catalog}
}

const maxQuestionLen = 1000

type adminAssessmentPart struct {
    ID            uint64 `json:"id"`
    Slug          string `json:"slug"`
    Title         string `json:"title"`
    Description   string `json:"description"`
    Kind          string `json:"kind"`
    QuestionCount int    `json:"question_count"`
    IsActive      bool   `json:"is_active"`
}

func toAdminAssessmentPart(a model.Assessment) adminAssessmentPart {
    return adminAssessmentPart{
        ID: a.ID, Slug: a.Slug, Title: a.Title, Description: a.Description,
        Kind: a.Kind, QuestionCount: a.QuestionCount, IsActive: a.IsActive,
    }
}

// List returns the whole catalog, inactive entries included.
func (h *AdminAssessmentHandler) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    items, err := h.Catalog.ListAll(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]adminAssessmentPart, 0, len(items))
    for _, a := range items {
        out = append(out, toAdminAssessmentPart(a))
    }
    return c.JSON(http.StatusOK, echo.Map{"assessments": out})
}

type createAssessmentReq struct {
    Slug          string `json:"slug"`
    Title         string `json:"title"`
    Description   string `json:"description"`
    Kind          string `json:"kind"`
    QuestionCount int    `json:"question_count"`
    IsActive      bool   `json:"is_active"`
}

// Create adds a catalog entry.
func (h *AdminAssessmentHandler) Create(c echo.Context) error {
    var req createAssessmentReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
    req.Title = strings.TrimSpace(req.Title)
    if req.Slug == "" || req.Title == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "slug/title required"})
    }
    if !model.ValidAssessmentKind(req.Kind) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid kind"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    id, err := h.Catalog.Create(ctx, model.Assessment{
        Slug: req.Slug, Title: req.Title, Description: strings.TrimSpace(req.Description),
        Kind: req.Kind, QuestionCount: req.QuestionCount, IsActive: req.IsActive,
    })
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create assessment failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

type updateAssessmentReq struct {
    Title         string `json:"title"`
    Description   string `json:"description"`
    QuestionCount int    `json:"question_count"`
    IsActive      bool   `json:"is_active"`
}

// Update edits the mutable catalog columns.  Slug and kind are fixed once
// created because results and feedback scoring reference them.
func (h *AdminAssessmentHandler) Update(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid assessment id"})
    }

    var req updateAssessmentReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Title = strings.TrimSpace(req.Title)
    if req.Title == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    current, err := h.Catalog.GetByID(ctx, id)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "assessment not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    current.Title = req.Title
    current.Description = strings.TrimSpace(req.Description)
    current.QuestionCount = req.QuestionCount
    current.IsActive = req.IsActive
    if err := h.Catalog.Update(ctx, current); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update assessment failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}

type questionPart struct {
    ID       uint64 `json:"id"`
    Text     string `json:"text"`
    Category string `json:"category"`
    Sort     int    `json:"sort"`
}

// Questions lists an assessment's questions in sort order.
func (h *AdminAssessmentHandler) Questions(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid assessment id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Catalog.GetByID(ctx, id); err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "assessment not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    questions, err := h.Catalog.ListQuestions(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]questionPart, 0, len(questions))
    for _, q := range questions {
        out = append(out, questionPart{ID: q.ID, Text: q.Text, Category: q.Category, Sort: q.Sort})
    }
    return c.JSON(http.StatusOK, echo.Map{"questions": out})
}

type questionReq struct {
    Text     string `json:"text"`
    Category string `json:"category"`
    Sort     int    `json:"sort"`
}

func (r *questionReq) validate() string {
    r.Text = strings.TrimSpace(r.Text)
    if r.Text == "" {
        return "question text is required"
    }
    if len(r.Text) > maxQuestionLen {
        return "question text is too long"
    }
    return ""
}

// CreateQuestion appends a question to an assessment.
func (h *AdminAssessmentHandler) CreateQuestion(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid assessment id"})
    }

    var req questionReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := req.validate(); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Catalog.GetByID(ctx, id); err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "assessment not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    qid, err := h.Catalog.CreateQuestion(ctx, model.Question{
        AssessmentID: id, Text: req.Text, Category: strings.TrimSpace(req.Category), Sort: req.Sort,
    })
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create question failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": qid})
}

// UpdateQuestion edits a question's text, category and position.
func (h *AdminAssessmentHandler) UpdateQuestion(c echo.Context) error {
    qid, err := strconv.ParseUint(c.Param("qid"), 10, 64)
    if err != nil || qid == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid question id"})
    }

    var req questionReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := req.validate(); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    q, err := h.Catalog.GetQuestion(ctx, qid)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "question not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    q.Text = req.Text
    q.Category = strings.TrimSpace(req.Category)
    q.Sort = req.Sort
    if err := h.Catalog.UpdateQuestion(ctx, q); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update question failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// DeleteQuestion removes a question from an assessment.
func (h *AdminAssessmentHandler) DeleteQuestion(c echo.Context) error {
    qid, err := strconv.ParseUint(c.Param("qid"), 10, 64)
    if err != nil || qid == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid question id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Catalog.DeleteQuestion(ctx, qid); err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "question not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete question failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}
