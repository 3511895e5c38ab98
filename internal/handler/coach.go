package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/arisehq/arise-api/internal/model"
    "github.com/arisehq/arise-api/internal/repository"
)

// CoachHandler serves the coach dashboard: participant browsing and
// aggregate stats.  Both endpoints sit behind the coach gate, so admins can
// use them too.
type CoachHandler struct {
    Users   *repository.UserRepo
    Results *repository.ResultRepo
}

func NewCoachHandler(users *repository.UserRepo, results *repository.ResultRepo) *CoachHandler {
    return &CoachHandler{Users: users, Results: results}
}

type participantPart struct {
    ID        uint64    `json:"id"`
    Email     string    `json:"email"`
    FirstName string    `json:"first_name"`
    LastName  string    `json:"last_name"`
    Plan      string    `json:"plan"`
    HasCoach  bool      `json:"has_coach"`
    CreatedAt time.Time `json:"created_at"`
}

// Participants lists active participants, optionally filtered by a search
// term (?search=) and coach assignment (?filter=with_coach|without_coach).
func (h *CoachHandler) Participants(c echo.Context) error {
    search := c.QueryParam("search")
    filter := c.QueryParam("filter")

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    users, err := h.Users.Search(ctx, search, filter)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    out := make([]participantPart, 0, len(users))
    for _, u := range users {
        if u.Role != model.RoleParticipant {
            continue
        }
        out = append(out, participantPart{
            ID: u.ID, Email: u.Email,
            FirstName: u.FirstName, LastName: u.LastName,
            Plan: u.Plan, HasCoach: u.HasCoach, CreatedAt: u.CreatedAt,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"participants": out})
}

// Stats returns headline numbers for the coach dashboard.
func (h *CoachHandler) Stats(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    participants, err := h.Users.CountByRole(ctx, model.RoleParticipant)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    completed, err := h.Results.CountCompleted(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "participants":          participants,
        "completed_assessments": completed,
    })
}
