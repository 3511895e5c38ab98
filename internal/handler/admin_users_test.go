package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arisehq/arise-api/internal/auth"
	"github.com/arisehq/arise-api/internal/config"
	"github.com/arisehq/arise-api/internal/middleware"
	"github.com/arisehq/arise-api/internal/model"
)

// fakeDirectory is an in-memory AdminDirectory; it also satisfies the
// resolver's UserStore so the admin gate runs for real in tests.
type fakeDirectory struct {
	seq  uint64
	byID map[uint64]model.User
}

func newFakeDirectory() *fakeDirectory { return &fakeDirectory{byID: make(map[uint64]model.User)} }

func (f *fakeDirectory) add(u model.User) {
	f.byID[u.ID] = u
	if u.ID > f.seq {
		f.seq = u.ID
	}
}

func (f *fakeDirectory) ListAll(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeDirectory) Create(_ context.Context, email, password, role, firstName, lastName string, cost int) (uint64, error) {
	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	f.seq++
	f.byID[f.seq] = model.User{
		ID: f.seq, Email: email, PasswordHash: hash, Role: role,
		FirstName: firstName, LastName: lastName, IsActive: true,
	}
	return f.seq, nil
}

func (f *fakeDirectory) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeDirectory) UpdateRole(_ context.Context, id uint64, role string) error {
	u := f.byID[id]
	u.Role = role
	f.byID[id] = u
	return nil
}

func (f *fakeDirectory) Deactivate(_ context.Context, id uint64) error {
	u := f.byID[id]
	u.IsActive = false
	f.byID[id] = u
	return nil
}

func (f *fakeDirectory) DeleteCascade(_ context.Context, id uint64) error {
	delete(f.byID, id)
	return nil
}

const (
	testAdminID = uint64(1)
	testUserID  = uint64(2)
)

func newAdminApp(t *testing.T, dir *fakeDirectory) (*echo.Echo, string) {
	t.Helper()
	dir.add(model.User{
		ID: testAdminID, Email: "admin@example.com", Role: model.RoleAdmin,
		FirstName: "Ada", LastName: "Admin", IsActive: true,
	})
	dir.add(model.User{
		ID: testUserID, Email: "pat@example.com", Role: model.RoleParticipant,
		FirstName: "Pat", LastName: "Park", IsActive: true,
	})

	codec := testTokenCodec()
	tok, err := codec.IssueAccess(auth.Identity{ID: testAdminID, Email: "admin@example.com", Role: model.RoleAdmin})
	require.NoError(t, err)

	cfg := config.Config{Env: "test", BcryptCost: 4}
	h := NewAdminHandler(cfg, dir)
	resolve := middleware.ResolveIdentity(cfg, codec, dir)

	e := echo.New()
	g := e.Group("/v1/admin", resolve, middleware.RequireAdmin())
	g.GET("/users", h.ListUsers)
	g.POST("/users", h.CreateUser)
	g.PUT("/users", h.UserAction)
	return e, tok.Value
}

func doBearerJSON(e *echo.Echo, token, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestUserActionRoleChange(t *testing.T) {
	dir := newFakeDirectory()
	e, token := newAdminApp(t, dir)

	rec := doBearerJSON(e, token, http.MethodPut, "/v1/admin/users", `{"user_id":2,"action":"make_coach"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	u, err := dir.GetByID(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleCoach, u.Role)
}

func TestUserActionSelfTargetRejected(t *testing.T) {
	dir := newFakeDirectory()
	e, token := newAdminApp(t, dir)

	for _, action := range []string{"make_admin", "make_coach", "make_participant", "deactivate", "delete"} {
		rec := doBearerJSON(e, token, http.MethodPut, "/v1/admin/users",
			`{"user_id":1,"action":"`+action+`"}`)
		assert.Equal(t, http.StatusConflict, rec.Code, "action %s", action)
	}

	// The acting admin is untouched.
	u, err := dir.GetByID(context.Background(), testAdminID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.True(t, u.IsActive)
}

func TestUserActionUnknownUser(t *testing.T) {
	dir := newFakeDirectory()
	e, token := newAdminApp(t, dir)

	rec := doBearerJSON(e, token, http.MethodPut, "/v1/admin/users", `{"user_id":999,"action":"deactivate"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")
}

func TestUserActionDelete(t *testing.T) {
	dir := newFakeDirectory()
	e, token := newAdminApp(t, dir)

	rec := doBearerJSON(e, token, http.MethodPut, "/v1/admin/users", `{"user_id":2,"action":"delete"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := dir.GetByID(context.Background(), testUserID)
	assert.Equal(t, sql.ErrNoRows, err)
}

func TestUserActionInvalid(t *testing.T) {
	dir := newFakeDirectory()
	e, token := newAdminApp(t, dir)

	rec := doBearerJSON(e, token, http.MethodPut, "/v1/admin/users", `{"user_id":2,"action":"promote"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminGate(t *testing.T) {
	dir := newFakeDirectory()
	e, _ := newAdminApp(t, dir)

	// No token: the gate rejects before the handler runs.
	rec := doJSON(e, http.MethodGet, "/v1/admin/users", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A participant token resolves but does not pass the admin gate.
	codec := testTokenCodec()
	tok, err := codec.IssueAccess(auth.Identity{ID: testUserID, Email: "pat@example.com", Role: model.RoleParticipant})
	require.NoError(t, err)
	rec = doBearerJSON(e, tok.Value, http.MethodGet, "/v1/admin/users", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminCreateUser(t *testing.T) {
	dir := newFakeDirectory()
	e, token := newAdminApp(t, dir)

	rec := doBearerJSON(e, token, http.MethodPost, "/v1/admin/users",
		`{"email":"New@Example.com","password":"s3cret-s3cret","role":"coach","first_name":"Nia","last_name":"Cole"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doBearerJSON(e, token, http.MethodPost, "/v1/admin/users",
		`{"email":"x@example.com","password":"s3cret-s3cret","role":"superuser"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
