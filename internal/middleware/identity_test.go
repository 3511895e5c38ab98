package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arisehq/arise-api/internal/auth"
	"github.com/arisehq/arise-api/internal/config"
	"github.com/arisehq/arise-api/internal/model"
)

// fakeStore is an in-memory UserStore.
type fakeStore struct {
	users map[uint64]model.User
}

func (s *fakeStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func newFakeStore(users ...model.User) *fakeStore {
	s := &fakeStore{users: make(map[uint64]model.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func activeUser(id uint64, role string) model.User {
	return model.User{
		ID: id, Email: "user@example.com", Role: role,
		FirstName: "Jo", LastName: "Miller", IsActive: true,
	}
}

func testCodec() *auth.Codec {
	return auth.NewCodec("test-secret", 15*time.Minute, 7*24*time.Hour)
}

// newApp builds an Echo instance with one route per gate, all behind the
// resolver, echoing the resolved identity back.
func newApp(cfg config.Config, codec *auth.Codec, store UserStore) *echo.Echo {
	e := echo.New()
	show := func(c echo.Context) error {
		id, _ := CurrentIdentity(c)
		return c.JSON(http.StatusOK, id)
	}
	resolve := ResolveIdentity(cfg, codec, store)
	e.GET("/any", show, resolve, RequireAuth())
	e.GET("/coach", show, resolve, RequireCoach())
	e.GET("/admin", show, resolve, RequireAdmin())
	return e
}

func get(e *echo.Echo, path string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func bearer(t *testing.T, codec *auth.Codec, u model.User) map[string]string {
	t.Helper()
	tok, err := codec.IssueAccess(auth.Identity{
		ID: u.ID, Email: u.Email, Role: u.Role, FirstName: u.FirstName, LastName: u.LastName,
	})
	require.NoError(t, err)
	return map[string]string{echo.HeaderAuthorization: "Bearer " + tok.Value}
}

func TestGatesWithoutCredentials(t *testing.T) {
	e := newApp(config.Config{}, testCodec(), newFakeStore())

	// No identity at all must be 401 on every gate, never 403.
	for _, path := range []string{"/any", "/coach", "/admin"} {
		rec := get(e, path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "path %s", path)
	}
}

func TestResolveValidToken(t *testing.T) {
	codec := testCodec()
	u := activeUser(1, model.RoleParticipant)
	e := newApp(config.Config{}, codec, newFakeStore(u))

	rec := get(e, "/any", bearer(t, codec, u))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"participant"`)
	assert.Contains(t, rec.Body.String(), `"id":1`)
}

func TestRoleGateMatrix(t *testing.T) {
	codec := testCodec()
	participant := activeUser(1, model.RoleParticipant)
	coach := activeUser(2, model.RoleCoach)
	admin := activeUser(3, model.RoleAdmin)
	e := newApp(config.Config{}, codec, newFakeStore(participant, coach, admin))

	cases := []struct {
		name string
		user model.User
		path string
		want int
	}{
		{"participant on any", participant, "/any", http.StatusOK},
		{"participant on coach", participant, "/coach", http.StatusForbidden},
		{"participant on admin", participant, "/admin", http.StatusForbidden},
		{"coach on coach", coach, "/coach", http.StatusOK},
		{"coach on admin", coach, "/admin", http.StatusForbidden},
		{"admin on coach", admin, "/coach", http.StatusOK},
		{"admin on admin", admin, "/admin", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(e, tc.path, bearer(t, codec, tc.user))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestResolveInactiveUser(t *testing.T) {
	codec := testCodec()
	u := activeUser(42, model.RoleCoach)
	hdr := bearer(t, codec, u) // token minted while still active

	u.IsActive = false
	e := newApp(config.Config{}, codec, newFakeStore(u))

	rec := get(e, "/any", hdr)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResolveRoleChangedAfterIssue(t *testing.T) {
	codec := testCodec()
	u := activeUser(7, model.RoleCoach)
	hdr := bearer(t, codec, u) // token claims coach

	u.Role = model.RoleParticipant // admin demoted the user afterwards
	e := newApp(config.Config{}, codec, newFakeStore(u))

	rec := get(e, "/any", hdr)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResolveMissingUser(t *testing.T) {
	codec := testCodec()
	u := activeUser(9, model.RoleParticipant)
	e := newApp(config.Config{}, codec, newFakeStore()) // store is empty

	rec := get(e, "/any", bearer(t, codec, u))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResolveExpiredToken(t *testing.T) {
	expired := auth.NewCodec("test-secret", -time.Second, -time.Second)
	u := activeUser(5, model.RoleParticipant)
	e := newApp(config.Config{}, testCodec(), newFakeStore(u))

	rec := get(e, "/any", bearer(t, expired, u))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTrustedHeaderFastPath(t *testing.T) {
	codec := testCodec()
	u := activeUser(11, model.RoleCoach)
	store := newFakeStore(u)

	t.Run("enabled", func(t *testing.T) {
		e := newApp(config.Config{TrustIdentityHeader: true}, codec, store)
		rec := get(e, "/coach", map[string]string{IdentityHeader: "11"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"role":"coach"`)
	})

	t.Run("disabled header is ignored", func(t *testing.T) {
		e := newApp(config.Config{}, codec, store)
		rec := get(e, "/coach", map[string]string{IdentityHeader: "11"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		e := newApp(config.Config{TrustIdentityHeader: true}, codec, store)
		rec := get(e, "/any", map[string]string{IdentityHeader: "999"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("inactive user", func(t *testing.T) {
		inactive := activeUser(12, model.RoleCoach)
		inactive.IsActive = false
		e := newApp(config.Config{TrustIdentityHeader: true}, codec, newFakeStore(inactive))
		rec := get(e, "/any", map[string]string{IdentityHeader: "12"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
