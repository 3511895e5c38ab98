package handler

import (
    "context"
    "database/sql"
    "encoding/json"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/arisehq/arise-api/internal/middleware"
    "github.com/arisehq/arise-api/internal/model"
    "github.com/arisehq/arise-api/internal/repository"
)

// AssessmentHandler serves the public catalog and the per-user results.
type AssessmentHandler struct {
    Assessments *repository.AssessmentRepo
    Results     *repository.ResultRepo
}

func NewAssessmentHandler(a *repository.AssessmentRepo, r *repository.ResultRepo) *AssessmentHandler {
    return &AssessmentHandler{Assessments: a, Results: r}
}

type catalogPart struct {
    ID            uint64 `json:"id"`
    Slug          string `json:"slug"`
    Title         string `json:"title"`
    Description   string `json:"description"`
    Kind          string `json:"kind"`
    QuestionCount int    `json:"question_count"`
}

// Catalog lists active assessments.  The route is public and sits behind
// the Redis response cache.
func (h *AssessmentHandler) Catalog(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    items, err := h.Assessments.ListActive(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]catalogPart, 0, len(items))
    for _, a := range items {
        out = append(out, catalogPart{
            ID: a.ID, Slug: a.Slug, Title: a.Title,
            Description: a.Description, Kind: a.Kind, QuestionCount: a.QuestionCount,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"assessments": out})
}

type submitResultReq struct {
    OverallScore    float64         `json:"overall_score"`
    DimensionScores json.RawMessage `json:"dimension_scores"`
}

// SubmitResult stores a completed assessment for the caller.
func (h *AssessmentHandler) SubmitResult(c echo.Context) error {
    id, _ := middleware.CurrentIdentity(c)

    assessmentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || assessmentID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid assessment id"})
    }

    var req submitResultReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if len(req.DimensionScores) == 0 {
        req.DimensionScores = json.RawMessage("{}")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Assessments.GetByID(ctx, assessmentID); err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "assessment not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    resID, err := h.Results.Insert(ctx, model.AssessmentResult{
        UserID:          id.ID,
        AssessmentID:    assessmentID,
        OverallScore:    req.OverallScore,
        DimensionScores: string(req.DimensionScores),
        CompletedAt:     time.Now().UTC(),
    })
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save result failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": resID})
}

type resultPart struct {
    ID              uint64          `json:"id"`
    AssessmentID    uint64          `json:"assessment_id"`
    OverallScore    float64         `json:"overall_score"`
    DimensionScores json.RawMessage `json:"dimension_scores"`
    CompletedAt     time.Time       `json:"completed_at"`
}

// ListResults returns the caller's own results, newest first.
func (h *AssessmentHandler) ListResults(c echo.Context) error {
    id, _ := middleware.CurrentIdentity(c)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    results, err := h.Results.ListByUser(ctx, id.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]resultPart, 0, len(results))
    for _, r := range results {
        out = append(out, resultPart{
            ID: r.ID, AssessmentID: r.AssessmentID,
            OverallScore: r.OverallScore,
            DimensionScores: json.RawMessage(r.DimensionScores),
            CompletedAt:  r.CompletedAt,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"results": out})
}
