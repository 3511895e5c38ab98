package handler

import (
    "context"
    "database/sql"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/arisehq/arise-api/internal/middleware"
    "github.com/arisehq/arise-api/internal/repository"
)

// SubscriptionHandler exposes the locally stored view of a user's plan.
// Billing state changes arrive from the payment provider out of band; this
// handler only reads the table and toggles the coaching add-on.
type SubscriptionHandler struct {
    Subs *repository.SubscriptionRepo
}

func NewSubscriptionHandler(subs *repository.SubscriptionRepo) *SubscriptionHandler {
    return &SubscriptionHandler{Subs: subs}
}

type subscriptionPart struct {
    Plan          string    `json:"plan"`
    Status        string    `json:"status"`
    CoachingAddon bool      `json:"coaching_addon"`
    PeriodEnd     time.Time `json:"period_end"`
}

// Get returns the caller's subscription; users without a row are reported
// as the free plan.
func (h *SubscriptionHandler) Get(c echo.Context) error {
    id, _ := middleware.CurrentIdentity(c)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    s, err := h.Subs.GetByUser(ctx, id.ID)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusOK, subscriptionPart{Plan: "free", Status: "active"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, subscriptionPart{
        Plan: s.Plan, Status: s.Status, CoachingAddon: s.CoachingAddon, PeriodEnd: s.PeriodEnd,
    })
}

type coachingReq struct {
    Enabled bool `json:"enabled"`
}

// SetCoaching toggles the coaching add-on on an existing subscription.
func (h *SubscriptionHandler) SetCoaching(c echo.Context) error {
    id, _ := middleware.CurrentIdentity(c)

    var req coachingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Subs.SetCoachingAddon(ctx, id.ID, req.Enabled); err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusConflict, echo.Map{"error": "no active subscription"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}
