package handlers_test

import (
	"net/http"
	"testing"

	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportsAndModeration(t *testing.T) {
	app := testutil.NewApp(t)
	alice := testutil.CreateUser(t, app.DB, "alice")
	bob := testutil.CreateUser(t, app.DB, "bob")
	admin := testutil.CreateUser(t, app.DB, "root")
	require.NoError(t, app.Repos.Users.UpdateRole(admin.ID, models.RoleAdmin))
	post := testutil.CreatePost(t, app.DB, alice.ID, "questionable")
	bobToken, adminToken := app.Token(t, bob), app.Token(t, admin)

	testutil.RequireStatus(t, app.Do(t, http.MethodPost, "/api/reports",
		map[string]any{"postId": 999, "reason": "spam"}, bobToken), http.StatusNotFound)

	rec := app.Do(t, http.MethodPost, "/api/reports", map[string]any{"postId": post.ID, "reason": "  spam  "}, bobToken)
	testutil.RequireStatus(t, rec, http.StatusCreated)
	var report models.Report
	testutil.DecodeData(t, rec, &report)
	assert.Equal(t, models.ReportPending, report.Status)
	assert.Equal(t, "spam", report.Reason)

	testutil.RequireStatus(t, app.Do(t, http.MethodPost, "/api/reports",
		map[string]any{"postId": post.ID, "reason": "still spam"}, bobToken), http.StatusConflict)

	rec = app.Do(t, http.MethodGet, "/api/reports/mine", nil, bobToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	var mine struct {
		Reports []models.Report `json:"reports"`
	}
	testutil.DecodeData(t, rec, &mine)
	require.Len(t, mine.Reports, 1)

	testutil.RequireStatus(t, app.Do(t, http.MethodGet, "/api/admin/reports", nil, bobToken), http.StatusForbidden)

	rec = app.Do(t, http.MethodGet, "/api/admin/reports?status=pending", nil, adminToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	var pending struct {
		Reports []models.Report `json:"reports"`
	}
	testutil.DecodeData(t, rec, &pending)
	require.Len(t, pending.Reports, 1)
	testutil.RequireStatus(t, app.Do(t, http.MethodGet, "/api/admin/reports?status=LOST", nil, adminToken), http.StatusBadRequest)

	reviewPath := path("/api/admin/reports/%d", report.ID)
	testutil.RequireStatus(t, app.Do(t, http.MethodPut, reviewPath, map[string]any{"status": "PENDING"}, adminToken), http.StatusBadRequest)
	rec = app.Do(t, http.MethodPut, reviewPath, map[string]any{"status": models.ReportDismissed}, adminToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	testutil.DecodeData(t, rec, &report)
	assert.Equal(t, models.ReportDismissed, report.Status)
	require.NotNil(t, report.ReviewedByID)
	assert.Equal(t, admin.ID, *report.ReviewedByID)
	testutil.RequireStatus(t, app.Do(t, http.MethodPut, "/api/admin/reports/999",
		map[string]any{"status": models.ReportDismissed}, adminToken), http.StatusNotFound)
}

func TestAdminUsers(t *testing.T) {
	app := testutil.NewApp(t)
	alice := testutil.CreateUser(t, app.DB, "alice")
	admin := testutil.CreateUser(t, app.DB, "root")
	require.NoError(t, app.Repos.Users.UpdateRole(admin.ID, models.RoleAdmin))
	aliceToken, adminToken := app.Token(t, alice), app.Token(t, admin)

	rec := app.Do(t, http.MethodGet, "/api/admin/users", nil, aliceToken)
	testutil.RequireStatus(t, rec, http.StatusForbidden)
	var body errorBody
	testutil.DecodeJSON(t, rec, &body)
	assert.Equal(t, "Insufficient permissions", body.Message)

	rec = app.Do(t, http.MethodGet, "/api/admin/users?limit=1", nil, adminToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	var users struct {
		Users []models.UserDTO `json:"users"`
	}
	testutil.DecodeData(t, rec, &users)
	assert.Len(t, users.Users, 1)

	testutil.RequireStatus(t, app.Do(t, http.MethodPut, path("/api/admin/users/%d/role", admin.ID),
		map[string]any{"role": models.RoleUser}, adminToken), http.StatusBadRequest)
	testutil.RequireStatus(t, app.Do(t, http.MethodPut, path("/api/admin/users/%d/role", alice.ID),
		map[string]any{"role": "superuser"}, adminToken), http.StatusBadRequest)

	rec = app.Do(t, http.MethodPut, path("/api/admin/users/%d/role", alice.ID), map[string]any{"role": models.RoleAdmin}, adminToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	var promoted models.UserDTO
	testutil.DecodeData(t, rec, &promoted)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	// the existing token picks up the new role on the next request
	testutil.RequireStatus(t, app.Do(t, http.MethodGet, "/api/admin/users", nil, aliceToken), http.StatusOK)
}
