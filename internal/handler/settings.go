package handler

import (
    "context"
    "database/sql"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/arisehq/arise-api/internal/middleware"
    "github.com/arisehq/arise-api/internal/model"
    "github.com/arisehq/arise-api/internal/repository"
)

// SettingsHandler exposes the per-user preference columns.
type SettingsHandler struct {
    Users *repository.UserRepo
}

func NewSettingsHandler(users *repository.UserRepo) *SettingsHandler {
    return &SettingsHandler{Users: users}
}

type settingsDTO struct {
    EmailNotifications bool   `json:"email_notifications"`
    WeeklyReport       bool   `json:"weekly_report"`
    DarkMode           bool   `json:"dark_mode"`
    Language           string `json:"language"`
    DataSharing        bool   `json:"data_sharing"`
    AnalyticsTracking  bool   `json:"analytics_tracking"`
}

// Get returns the caller's settings.
func (h *SettingsHandler) Get(c echo.Context) error {
    id, _ := middleware.CurrentIdentity(c)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    s, err := h.Users.GetSettings(ctx, id.ID)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, settingsDTO{
        EmailNotifications: s.EmailNotifications,
        WeeklyReport:       s.WeeklyReport,
        DarkMode:           s.DarkMode,
        Language:           s.Language,
        DataSharing:        s.DataSharing,
        AnalyticsTracking:  s.AnalyticsTracking,
    })
}

// Update overwrites the caller's settings.
func (h *SettingsHandler) Update(c echo.Context) error {
    id, _ := middleware.CurrentIdentity(c)

    var req settingsDTO
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    err := h.Users.UpdateSettings(ctx, id.ID, model.Settings{
        EmailNotifications: req.EmailNotifications,
        WeeklyReport:       req.WeeklyReport,
        DarkMode:           req.DarkMode,
        Language:           req.Language,
        DataSharing:        req.DataSharing,
        AnalyticsTracking:  req.AnalyticsTracking,
    })
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}
