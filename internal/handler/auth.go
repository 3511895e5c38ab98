package handler

import (
    "context"
    "database/sql"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/arisehq/arise-api/internal/auth"
    "github.com/arisehq/arise-api/internal/config"
    "github.com/arisehq/arise-api/internal/middleware"
    "github.com/arisehq/arise-api/internal/model"
    "github.com/arisehq/arise-api/internal/repository"
)

// refreshCookieName is the HttpOnly cookie carrying the refresh token.  The
// cookie is host-only (no Domain attribute), SameSite=Strict and never
// readable by page scripts; the access token by contrast travels in the
// response body and is the client's responsibility to keep in memory.
const refreshCookieName = "refresh_token"

// UserDirectory is the slice of the user repository the auth endpoints
// need.  Tests substitute an in-memory implementation.
type UserDirectory interface {
    Create(ctx context.Context, email, password, role, firstName, lastName string, cost int) (uint64, error)
    GetByEmail(ctx context.Context, email string) (model.User, error)
    GetByID(ctx context.Context, id uint64) (model.User, error)
    DeleteCascade(ctx context.Context, id uint64) error
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
    Cfg   config.Config
    Codec *auth.Codec
    Users UserDirectory
}

func NewAuthHandler(cfg config.Config, codec *auth.Codec, users UserDirectory) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Codec: codec, Users: users}
}

// ----- DTOs -----

type registerReq struct {
    Email     string `json:"email"`
    Password  string `json:"password"`
    FirstName string `json:"first_name"`
    LastName  string `json:"last_name"`
}
type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

type authResp struct {
    User        auth.Identity `json:"user"`
    AccessToken string        `json:"access_token"`
    Expires     time.Time     `json:"expires"`
}
type refreshResp struct {
    AccessToken string    `json:"access_token"`
    Expires     time.Time `json:"expires"`
}

// Register creates a participant account and starts a session right away.
// Public registration always yields the participant role; coach and admin
// accounts are created through the admin endpoints only.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    uid, err := h.Users.Create(ctx, req.Email, req.Password, model.RoleParticipant,
        strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName), h.Cfg.BcryptCost)
    if err != nil {
        if err == repository.ErrEmailExists {
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }

    id := auth.Identity{
        ID:        uid,
        Email:     req.Email,
        Role:      model.RoleParticipant,
        FirstName: strings.TrimSpace(req.FirstName),
        LastName:  strings.TrimSpace(req.LastName),
    }
    return h.startSession(c, http.StatusCreated, id)
}

// Login verifies credentials and starts a session.  Unknown email and wrong
// password produce the same message so accounts cannot be enumerated.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !u.IsActive {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account is deactivated"})
    }
    if !auth.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
    }

    id := auth.Identity{ID: u.ID, Email: u.Email, Role: u.Role, FirstName: u.FirstName, LastName: u.LastName}
    return h.startSession(c, http.StatusOK, id)
}

// startSession mints both token kinds, sets the refresh cookie and writes
// the auth response.
func (h *AuthHandler) startSession(c echo.Context, status int, id auth.Identity) error {
    access, err := h.Codec.IssueAccess(id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    refresh, err := h.Codec.IssueRefresh(id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
    }
    h.setRefreshCookie(c, refresh)
    return c.JSON(status, authResp{User: id, AccessToken: access.Value, Expires: access.Exp})
}

// Refresh trades a valid refresh cookie for a fresh access token.  Every
// use re-checks the credential store, so deactivation or a role change cuts
// a session short even though the tokens themselves are stateless.  The
// refresh cookie is not rotated; it is reused until its own expiry.  Any
// failure clears the cookie so a broken session cannot be retried forever.
func (h *AuthHandler) Refresh(c echo.Context) error {
    cookie, err := c.Cookie(refreshCookieName)
    if err != nil || cookie.Value == "" {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "refresh token not found"})
    }

    claims, err := h.Codec.Verify(cookie.Value, auth.KindRefresh)
    if err != nil {
        c.Logger().Debugf("refresh: %v", err)
        h.clearRefreshCookie(c)
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByID(ctx, claims.UserID)
    if err != nil {
        if err == sql.ErrNoRows {
            h.clearRefreshCookie(c)
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
    }
    if !u.IsActive {
        h.clearRefreshCookie(c)
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
    }
    if u.Role != claims.Role {
        // The role moved under the token; same status as any other refresh
        // failure, but the reason matters for the audit trail.
        c.Logger().Debugf("refresh: user %d role mismatch (token %q, stored %q)", u.ID, claims.Role, u.Role)
        h.clearRefreshCookie(c)
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
    }

    // Mint from the stored record, not the claim set, so the new access
    // token always reflects the current role.
    id := auth.Identity{ID: u.ID, Email: u.Email, Role: u.Role, FirstName: u.FirstName, LastName: u.LastName}
    access, err := h.Codec.IssueAccess(id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    return c.JSON(http.StatusOK, refreshResp{AccessToken: access.Value, Expires: access.Exp})
}

// Logout clears the refresh cookie.  Nothing is invalidated server-side:
// stateless tokens cannot be revoked individually, so a captured refresh
// token stays valid until natural expiry.  The active flag and the role
// re-check on every resolution are the revocation mechanism.
func (h *AuthHandler) Logout(c echo.Context) error {
    h.clearRefreshCookie(c)
    return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the resolved identity view.
func (h *AuthHandler) Me(c echo.Context) error {
    id, _ := middleware.CurrentIdentity(c)
    return c.JSON(http.StatusOK, id)
}

// DeleteAccount removes the caller's account and everything owned by it
// (results, evaluators, subscription) in one cascade, then clears the
// refresh cookie.  Outstanding access tokens stop resolving on the next
// request because the subject no longer exists.
func (h *AuthHandler) DeleteAccount(c echo.Context) error {
    id, _ := middleware.CurrentIdentity(c)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    if err := h.Users.DeleteCascade(ctx, id.ID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete account failed"})
    }
    h.clearRefreshCookie(c)
    return c.JSON(http.StatusOK, echo.Map{"message": "account deleted"})
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, tok auth.Token) {
    c.SetCookie(&http.Cookie{
        Name:     refreshCookieName,
        Value:    tok.Value,
        Path:     "/",
        Expires:  tok.Exp,
        MaxAge:   int(time.Until(tok.Exp).Seconds()),
        HttpOnly: true,
        Secure:   h.Cfg.Env == "prod",
        SameSite: http.SameSiteStrictMode,
    })
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
    c.SetCookie(&http.Cookie{
        Name:     refreshCookieName,
        Value:    "",
        Path:     "/",
        Expires:  time.Unix(0, 0),
        MaxAge:   -1,
        HttpOnly: true,
        Secure:   h.Cfg.Env == "prod",
        SameSite: http.SameSiteStrictMode,
    })
}
