// Package auth implements the token codec: it mints and verifies the two
// stateless token kinds the platform uses.  Access tokens are short-lived
// and travel in the Authorization header; refresh tokens live for days and
// travel only in an HttpOnly cookie.  Verification never touches the
// credential store; re-checking that the subject still exists, is active
// and holds the claimed role is the session resolver's job.
package auth

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// TokenKind discriminates the two token flavors.  The kind is embedded as
// its own claim so an access token can never be replayed against the
// refresh endpoint or vice versa.
type TokenKind string

const (
    KindAccess  TokenKind = "access"
    KindRefresh TokenKind = "refresh"
)

var (
    // ErrInvalidToken covers malformed tokens, signature mismatches and
    // kind mismatches.  Clients only ever see a generic 401; the
    // distinction exists for server-side logging.
    ErrInvalidToken = errors.New("invalid token")
    // ErrExpiredToken means the token was well-formed and correctly
    // signed but its expiry has elapsed.
    ErrExpiredToken = errors.New("expired token")
)

// Identity is the normalized view of an authenticated user that flows
// through the request context and into token claims.
type Identity struct {
    ID        uint64 `json:"id"`
    Email     string `json:"email"`
    Role      string `json:"role"`
    FirstName string `json:"first_name"`
    LastName  string `json:"last_name"`
}

// Claims is the fixed claim set carried by both token kinds.  The original
// design used an open JSON claim bag; a tagged struct decoded by a single
// kind-parameterized verifier replaces it.
type Claims struct {
    jwt.RegisteredClaims
    Kind      TokenKind `json:"kind"`
    UserID    uint64    `json:"uid"`
    Email     string    `json:"email"`
    Role      string    `json:"role"`
    FirstName string    `json:"first_name,omitempty"`
    LastName  string    `json:"last_name,omitempty"`
}

// Identity converts the claim set back into the normalized identity view.
func (c *Claims) Identity() Identity {
    return Identity{
        ID:        c.UserID,
        Email:     c.Email,
        Role:      c.Role,
        FirstName: c.FirstName,
        LastName:  c.LastName,
    }
}

// Token is a signed token along with its expiry, returned to handlers so
// they can report expiration to clients without re-parsing the JWT.
type Token struct {
    Value string
    Exp   time.Time
}

// Codec issues and verifies HS256-signed tokens with a server-held secret.
type Codec struct {
    secret     []byte
    accessTTL  time.Duration
    refreshTTL time.Duration
}

// NewCodec builds a Codec.  TTLs may be negative in tests to mint
// already-expired tokens.
func NewCodec(secret string, accessTTL, refreshTTL time.Duration) *Codec {
    return &Codec{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssueAccess mints a short-lived access token embedding the identity.
func (cd *Codec) IssueAccess(id Identity) (Token, error) {
    return cd.issue(id, KindAccess, cd.accessTTL)
}

// IssueRefresh mints a refresh token with the same identity claims and a
// longer expiry.
func (cd *Codec) IssueRefresh(id Identity) (Token, error) {
    return cd.issue(id, KindRefresh, cd.refreshTTL)
}

func (cd *Codec) issue(id Identity, kind TokenKind, ttl time.Duration) (Token, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := Claims{
        RegisteredClaims: jwt.RegisteredClaims{
            ExpiresAt: jwt.NewNumericDate(exp),
            IssuedAt:  jwt.NewNumericDate(now),
        },
        Kind:      kind,
        UserID:    id.ID,
        Email:     id.Email,
        Role:      id.Role,
        FirstName: id.FirstName,
        LastName:  id.LastName,
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cd.secret)
    if err != nil {
        return Token{}, err
    }
    return Token{Value: signed, Exp: exp}, nil
}

// Verify parses and validates a token of the expected kind.  It returns
// ErrExpiredToken when the expiry has elapsed and ErrInvalidToken for every
// other failure, including a kind mismatch.
func (cd *Codec) Verify(raw string, kind TokenKind) (*Claims, error) {
    claims := &Claims{}
    tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return cd.secret, nil
    })
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return nil, ErrExpiredToken
        }
        return nil, ErrInvalidToken
    }
    if !tok.Valid || claims.Kind != kind {
        return nil, ErrInvalidToken
    }
    return claims, nil
}
