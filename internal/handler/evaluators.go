package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/arisehq/arise-api/internal/auth"
    "github.com/arisehq/arise-api/internal/middleware"
    "github.com/arisehq/arise-api/internal/model"
    "github.com/arisehq/arise-api/internal/queue"
    "github.com/arisehq/arise-api/internal/repository"
    queue_publisher "github.com/arisehq/arise-api/internal/service"
)

// EvaluatorHandler manages a participant's 360° evaluators.  Sending
// invites publishes events to RabbitMQ; the HTTP request never waits for
// mail delivery.  The invite links land in handler/feedback.go once an
// evaluator follows them.
type EvaluatorHandler struct {
    Evaluators *repository.EvaluatorRepo
}

func NewEvaluatorHandler(evaluators *repository.EvaluatorRepo) *EvaluatorHandler {
    return &EvaluatorHandler{Evaluators: evaluators}
}

type evaluatorPart struct {
    ID           uint64     `json:"id"`
    Email        string     `json:"email"`
    Name         string     `json:"name"`
    Relationship string     `json:"relationship"`
    Status       string     `json:"status"`
    InvitedAt    *time.Time `json:"invited_at,omitempty"`
    CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// List returns the caller's evaluators.  The invite token is deliberately
// not part of the response; only the invite email carries it.
func (h *EvaluatorHandler) List(c echo.Context) error {
    id, _ := middleware.CurrentIdentity(c)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    evs, err := h.Evaluators.ListByUser(ctx, id.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]evaluatorPart, 0, len(evs))
    for _, ev := range evs {
        out = append(out, evaluatorPart{
            ID: ev.ID, Email: ev.Email, Name: ev.Name,
            Relationship: ev.Relationship, Status: ev.Status,
            InvitedAt: ev.InvitedAt, CompletedAt: ev.CompletedAt,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"evaluators": out})
}

type createEvaluatorReq struct {
    Email        string `json:"email"`
    Name         string `json:"name"`
    Relationship string `json:"relationship"`
}

// Create adds a pending evaluator with a fresh invite token.
func (h *EvaluatorHandler) Create(c echo.Context) error {
    id, _ := middleware.CurrentIdentity(c)

    var req createEvaluatorReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || strings.TrimSpace(req.Name) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/name required"})
    }

    token, err := auth.NewInviteToken()
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token generation failed"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    evID, err := h.Evaluators.Create(ctx, model.Evaluator{
        UserID:       id.ID,
        Email:        req.Email,
        Name:         strings.TrimSpace(req.Name),
        Relationship: strings.TrimSpace(req.Relationship),
        InviteToken:  token,
    })
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create evaluator failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": evID})
}

// SendInvites publishes an invite event for every pending evaluator of the
// caller and marks them invited.  A publish failure leaves the evaluator
// pending so the next send picks it up again.
func (h *EvaluatorHandler) SendInvites(c echo.Context) error {
    id, _ := middleware.CurrentIdentity(c)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    pending, err := h.Evaluators.ListPendingByUser(ctx, id.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    sent := 0
    now := time.Now().UTC()
    for _, ev := range pending {
        event := queue.EvaluatorInvitedEvent{
            EvaluatorID: ev.ID,
            UserID:      ev.UserID,
            Email:       ev.Email,
            Name:        ev.Name,
            InviteToken: ev.InviteToken,
            InvitedAt:   now,
        }
        if err := queue_publisher.PublishEvaluatorInvited(ctx, event); err != nil {
            c.Logger().Warnf("evaluators: publish invite for %d failed: %v", ev.ID, err)
            continue
        }
        if err := h.Evaluators.MarkInvited(ctx, ev.ID, now); err != nil {
            c.Logger().Warnf("evaluators: mark invited for %d failed: %v", ev.ID, err)
            continue
        }
        sent++
    }
    return c.JSON(http.StatusOK, echo.Map{"sent": sent, "pending": len(pending) - sent})
}
