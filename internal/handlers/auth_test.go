package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/anonto42/wingit/backend/internal/auth"
	"github.com/anonto42/wingit/backend/internal/handlers"
	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func TestRegisterLoginLogout(t *testing.T) {
	app := testutil.NewApp(t)

	rec := app.Do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice",
		"email":    "Alice@Example.com",
		"password": "correct-horse",
	}, "")
	testutil.RequireStatus(t, rec, http.StatusCreated)
	var registered models.UserDTO
	testutil.DecodeJSON(t, rec, &registered)
	assert.Equal(t, "alice", registered.Username)
	assert.Equal(t, "alice@example.com", registered.Email)
	assert.Equal(t, models.RoleUser, registered.Role)
	assert.Equal(t, "alice", registered.DisplayName)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = app.Do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	}, "")
	testutil.RequireStatus(t, rec, http.StatusUnauthorized)
	var body errorBody
	testutil.DecodeJSON(t, rec, &body)
	assert.Equal(t, "Unauthorized", body.Error)
	assert.Equal(t, "Invalid username or password", body.Message)

	rec = app.Do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice@example.com",
		"password": "correct-horse",
	}, "")
	testutil.RequireStatus(t, rec, http.StatusOK)
	var login handlers.LoginResponse
	testutil.DecodeJSON(t, rec, &login)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "Bearer", login.TokenType)
	assert.True(t, login.ExpiresAt.After(time.Now()))
	assert.Equal(t, registered.ID, login.User.ID)

	rec = app.Do(t, http.MethodGet, "/api/auth/me", nil, login.Token)
	testutil.RequireStatus(t, rec, http.StatusOK)
	var me models.UserDTO
	testutil.DecodeJSON(t, rec, &me)
	assert.Equal(t, "alice", me.Username)

	rec = app.Do(t, http.MethodPost, "/api/auth/logout", nil, login.Token)
	testutil.RequireStatus(t, rec, http.StatusOK)
	assert.JSONEq(t, `{"message":"Logged out successfully"}`, rec.Body.String())

	rec = app.Do(t, http.MethodGet, "/api/auth/me", nil, login.Token)
	testutil.RequireStatus(t, rec, http.StatusUnauthorized)
	testutil.DecodeJSON(t, rec, &body)
	assert.Equal(t, "Token revoked", body.Message)
	assert.Equal(t, 1, app.Blacklist.Len())
}

func TestRegister_Conflicts(t *testing.T) {
	app := testutil.NewApp(t)
	testutil.CreateUser(t, app.DB, "alice")

	rec := app.Do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "correct-horse",
	}, "")
	testutil.RequireStatus(t, rec, http.StatusConflict)

	rec = app.Do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice2",
		"email":    "ALICE@example.com",
		"password": "correct-horse",
	}, "")
	testutil.RequireStatus(t, rec, http.StatusConflict)
}

func TestRegister_Validation(t *testing.T) {
	app := testutil.NewApp(t)

	rec := app.Do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "bad name!",
		"email":    "not-an-email",
		"password": "short",
	}, "")
	testutil.RequireStatus(t, rec, http.StatusBadRequest)
	var body errorBody
	testutil.DecodeJSON(t, rec, &body)
	assert.Equal(t, "Bad Request", body.Error)
	assert.Contains(t, body.Message, "Email must be a valid email address")
	assert.Contains(t, body.Message, "Password must be at least 8 characters")
}

func TestLogout_WithoutToken(t *testing.T) {
	app := testutil.NewApp(t)

	rec := app.Do(t, http.MethodPost, "/api/auth/logout", nil, "")
	testutil.RequireStatus(t, rec, http.StatusOK)
	assert.Equal(t, 0, app.Blacklist.Len())
}

func TestBearerFilter_Rejections(t *testing.T) {
	app := testutil.NewApp(t)
	alice := testutil.CreateUser(t, app.DB, "alice")

	foreign := auth.NewTokenService("another-secret", time.Hour, app.Config.JWT.Issuer, auth.NewMemoryBlacklist())
	forged, _, err := foreign.Generate(alice)
	require.NoError(t, err)

	cases := []struct {
		name    string
		header  string
		message string
	}{
		{"missing", "", "Authentication required"},
		{"wrong scheme", "Basic YWxpY2U6cGFzcw==", "Authentication required"},
		{"garbage", "Bearer not.a.jwt", "Invalid token"},
		{"foreign signature", "Bearer " + forged, "Invalid token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := newRequest(http.MethodGet, "/api/auth/me")
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := serve(app, req)
			testutil.RequireStatus(t, rec, http.StatusUnauthorized)
			var body errorBody
			testutil.DecodeJSON(t, rec, &body)
			assert.Equal(t, "Unauthorized", body.Error)
			assert.Equal(t, tc.message, body.Message)
		})
	}
}

func TestBearerFilter_DeletedUser(t *testing.T) {
	app := testutil.NewApp(t)
	alice := testutil.CreateUser(t, app.DB, "alice")
	token := app.Token(t, alice)

	require.NoError(t, app.Repos.Users.DeleteUser(alice.ID))

	rec := app.Do(t, http.MethodGet, "/api/posts", nil, token)
	testutil.RequireStatus(t, rec, http.StatusUnauthorized)
}

func TestChangePassword(t *testing.T) {
	app := testutil.NewApp(t)
	alice := testutil.CreateUser(t, app.DB, "alice")
	token := app.Token(t, alice)

	rec := app.Do(t, http.MethodPut, "/api/auth/password", map[string]string{
		"currentPassword": "nope-nope",
		"newPassword":     "brand-new-secret",
	}, token)
	testutil.RequireStatus(t, rec, http.StatusUnauthorized)

	rec = app.Do(t, http.MethodPut, "/api/auth/password", map[string]string{
		"currentPassword": testutil.Password,
		"newPassword":     "brand-new-secret",
	}, token)
	testutil.RequireStatus(t, rec, http.StatusOK)

	rec = app.Do(t, http.MethodGet, "/api/auth/me", nil, token)
	testutil.RequireStatus(t, rec, http.StatusUnauthorized)

	rec = app.Do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "brand-new-secret",
	}, "")
	testutil.RequireStatus(t, rec, http.StatusOK)
}

func TestFirebaseLogin_NotConfigured(t *testing.T) {
	app := testutil.NewApp(t)

	rec := app.Do(t, http.MethodPost, "/api/auth/firebase-login", map[string]string{"idToken": "x"}, "")
	testutil.RequireStatus(t, rec, http.StatusServiceUnavailable)
	var body errorBody
	testutil.DecodeJSON(t, rec, &body)
	assert.Equal(t, "Firebase login is not configured", body.Message)
}
