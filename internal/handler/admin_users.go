package handler

import (
    "context"
    "database/sql"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/arisehq/arise-api/internal/config"
    "github.com/arisehq/arise-api/internal/middleware"
    "github.com/arisehq/arise-api/internal/model"
    "github.com/arisehq/arise-api/internal/repository"
)

// AdminDirectory is the slice of the user repository the admin user
// endpoints need.
type AdminDirectory interface {
    ListAll(ctx context.Context) ([]model.User, error)
    Create(ctx context.Context, email, password, role, firstName, lastName string, cost int) (uint64, error)
    GetByID(ctx context.Context, id uint64) (model.User, error)
    UpdateRole(ctx context.Context, id uint64, role string) error
    Deactivate(ctx context.Context, id uint64) error
    DeleteCascade(ctx context.Context, id uint64) error
}

// AdminHandler implements the admin user-management endpoints.  These are
// the only code paths that change a user's role; the session resolver
// notices the change on the very next request because it compares the
// token's role claim against the stored record.
type AdminHandler struct {
    Cfg   config.Config
    Users AdminDirectory
}

func NewAdminHandler(cfg config.Config, users AdminDirectory) *AdminHandler {
    return &AdminHandler{Cfg: cfg, Users: users}
}

type adminUserPart struct {
    ID        uint64    `json:"id"`
    Email     string    `json:"email"`
    Role      string    `json:"role"`
    FirstName string    `json:"first_name"`
    LastName  string    `json:"last_name"`
    Plan      string    `json:"plan"`
    HasCoach  bool      `json:"has_coach"`
    IsActive  bool      `json:"is_active"`
    CreatedAt time.Time `json:"created_at"`
}

func toAdminUserPart(u model.User) adminUserPart {
    return adminUserPart{
        ID: u.ID, Email: u.Email, Role: u.Role,
        FirstName: u.FirstName, LastName: u.LastName,
        Plan: u.Plan, HasCoach: u.HasCoach, IsActive: u.IsActive,
        CreatedAt: u.CreatedAt,
    }
}

// ListUsers returns every account for the admin dashboard.
func (h *AdminHandler) ListUsers(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    users, err := h.Users.ListAll(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]adminUserPart, 0, len(users))
    for _, u := range users {
        out = append(out, toAdminUserPart(u))
    }
    return c.JSON(http.StatusOK, echo.Map{"users": out})
}

type createUserReq struct {
    Email     string `json:"email"`
    Password  string `json:"password"`
    Role      string `json:"role"`
    FirstName string `json:"first_name"`
    LastName  string `json:"last_name"`
}

// CreateUser lets an admin provision an account with any role.
func (h *AdminHandler) CreateUser(c echo.Context) error {
    var req createUserReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }
    if !model.ValidRole(req.Role) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    uid, err := h.Users.Create(ctx, req.Email, req.Password, req.Role,
        strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName), h.Cfg.BcryptCost)
    if err != nil {
        if err == repository.ErrEmailExists {
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": uid})
}

type userActionReq struct {
    UserID uint64 `json:"user_id"`
    Action string `json:"action"`
}

// UserAction applies an administrative action to an account: role changes,
// deactivation or deletion with an explicit cascade.  Actions against the
// acting admin's own account are rejected wholesale, so the platform always
// keeps at least the acting admin.  The target is looked up first; an
// unknown user_id is a 404 rather than a silent no-op.
func (h *AdminHandler) UserAction(c echo.Context) error {
    admin, _ := middleware.CurrentIdentity(c)

    var req userActionReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.UserID == 0 || req.Action == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id/action required"})
    }
    if req.UserID == admin.ID {
        return c.JSON(http.StatusConflict, echo.Map{"error": "cannot modify your own admin account"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Users.GetByID(ctx, req.UserID); err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    var err error
    switch req.Action {
    case "make_admin":
        err = h.Users.UpdateRole(ctx, req.UserID, model.RoleAdmin)
    case "make_coach":
        err = h.Users.UpdateRole(ctx, req.UserID, model.RoleCoach)
    case "make_participant":
        err = h.Users.UpdateRole(ctx, req.UserID, model.RoleParticipant)
    case "deactivate":
        err = h.Users.Deactivate(ctx, req.UserID)
    case "delete":
        err = h.Users.DeleteCascade(ctx, req.UserID)
    default:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid action"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "action failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}
