package middleware

// identity.go implements the session resolver: it turns a raw inbound
// request into an authenticated identity stored in the Echo context, or
// into nothing.  Resolution never fails the request by itself; the role
// gates in role.go decide how to react to a missing identity.

import (
    "context"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/arisehq/arise-api/internal/auth"
    "github.com/arisehq/arise-api/internal/config"
    "github.com/arisehq/arise-api/internal/model"
)

// IdentityHeader carries a pre-resolved numeric user id set by an
// authenticating edge layer.  It is only honored when
// Config.TrustIdentityHeader is on; in any deployment where clients can
// reach the service directly the flag must stay off, because the header is
// then attacker-controlled.
const IdentityHeader = "X-User-ID"

const identityKey = "identity"

// UserStore is the slice of the user repository the resolver needs.
// Declaring it here lets tests substitute an in-memory fake.
type UserStore interface {
    GetByID(ctx context.Context, id uint64) (model.User, error)
}

// ResolveIdentity returns middleware that resolves the caller's identity
// and stores it in the context under the identity key.  Two paths exist:
// the trusted-header fast path (when enabled) and the bearer-token path.
// Both re-check the credential store, so a deactivated account or a role
// changed after token issuance stops resolving immediately even while the
// token itself is still unexpired.
func ResolveIdentity(cfg config.Config, codec *auth.Codec, store UserStore) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if id, ok := resolve(c, cfg, codec, store); ok {
                c.Set(identityKey, id)
            }
            return next(c)
        }
    }
}

// CurrentIdentity returns the identity resolved for this request, if any.
func CurrentIdentity(c echo.Context) (auth.Identity, bool) {
    id, ok := c.Get(identityKey).(auth.Identity)
    return id, ok
}

func resolve(c echo.Context, cfg config.Config, codec *auth.Codec, store UserStore) (auth.Identity, bool) {
    ctx := c.Request().Context()

    // Fast path: an edge layer has already authenticated the request and
    // forwarded the user id.  When the header is present the fast path
    // decides on its own; there is no bearer fallback for a failed lookup.
    if cfg.TrustIdentityHeader {
        if raw := c.Request().Header.Get(IdentityHeader); raw != "" {
            uid, err := strconv.ParseUint(raw, 10, 64)
            if err != nil {
                c.Logger().Debugf("identity: bad %s header: %v", IdentityHeader, err)
                return auth.Identity{}, false
            }
            u, err := store.GetByID(ctx, uid)
            if err != nil {
                c.Logger().Debugf("identity: header user %d not found", uid)
                return auth.Identity{}, false
            }
            if !u.IsActive {
                c.Logger().Debugf("identity: header user %d inactive", uid)
                return auth.Identity{}, false
            }
            return identityFromUser(u), true
        }
    }

    hdr := c.Request().Header.Get(echo.HeaderAuthorization)
    if !strings.HasPrefix(hdr, "Bearer ") {
        return auth.Identity{}, false
    }
    claims, err := codec.Verify(strings.TrimPrefix(hdr, "Bearer "), auth.KindAccess)
    if err != nil {
        // ErrInvalidToken vs ErrExpiredToken matters for logs only; the
        // client-visible outcome is identical.
        c.Logger().Debugf("identity: %v", err)
        return auth.Identity{}, false
    }

    u, err := store.GetByID(ctx, claims.UserID)
    if err != nil {
        c.Logger().Debugf("identity: user %d not found", claims.UserID)
        return auth.Identity{}, false
    }
    if !u.IsActive {
        c.Logger().Debugf("identity: user %d inactive", claims.UserID)
        return auth.Identity{}, false
    }
    if u.Role != claims.Role {
        // Role changed after the token was issued; the token is no longer
        // a truthful statement about the caller.
        c.Logger().Debugf("identity: user %d role mismatch (token %q, stored %q)",
            claims.UserID, claims.Role, u.Role)
        return auth.Identity{}, false
    }
    return identityFromUser(u), true
}

func identityFromUser(u model.User) auth.Identity {
    return auth.Identity{
        ID:        u.ID,
        Email:     u.Email,
        Role:      u.Role,
        FirstName: u.FirstName,
        LastName:  u.LastName,
    }
}
