package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pthv11/-pension-fund/internal/model"
)

func TestUserList_Pagination(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.seedUser(t, "admin@pension.ru", "admin123", true)

	for i := 0; i < 12; i++ {
		env.seedUser(t, fmt.Sprintf("user%02d@example.com", i), "secret123", false)
	}

	rec := env.do(t, http.MethodGet, "/api/admin/users?page=1&limit=5", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Users      []model.User `json:"users"`
		Total      int64        `json:"total"`
		TotalPages int64        `json:"totalPages"`
	}
	decode(t, rec, &body)
	require.Len(t, body.Users, 5)
	require.EqualValues(t, 13, body.Total) // 12 users + the admin
	require.EqualValues(t, 3, body.TotalPages)
}

func TestUserGet(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.seedUser(t, "admin@pension.ru", "admin123", true)
	u, _ := env.seedUser(t, "ivan@example.com", "secret123", false)

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/admin/users/%d", u.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.User
	decode(t, rec, &got)
	require.Equal(t, u.Email, got.Email)

	rec = env.do(t, http.MethodGet, "/api/admin/users/9999", adminToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserUpdate_GrantAdmin(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.seedUser(t, "admin@pension.ru", "admin123", true)
	u, _ := env.seedUser(t, "ivan@example.com", "secret123", false)

	rec := env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", u.ID), adminToken, map[string]interface{}{
		"isAdmin":   true,
		"firstName": "Promoted",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		User model.User `json:"user"`
	}
	decode(t, rec, &body)
	require.True(t, body.User.IsAdmin)
	require.Equal(t, "Promoted", body.User.FirstName)
}

func TestUserDelete_SelfDeleteForbidden(t *testing.T) {
	env := newTestEnv(t)
	admin, adminToken := env.seedUser(t, "admin@pension.ru", "admin123", true)

	rec := env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", admin.ID), adminToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// The row must remain
	still, err := env.store.GetUserByID(context.Background(), admin.ID)
	require.NoError(t, err)
	require.NotNil(t, still)
}

func TestUserDelete_OtherUser(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.seedUser(t, "admin@pension.ru", "admin123", true)
	u, _ := env.seedUser(t, "ivan@example.com", "secret123", false)

	rec := env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", u.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", u.ID), adminToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminStats_Endpoint(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.seedUser(t, "admin@pension.ru", "admin123", true)

	require.NoError(t, env.store.CreateClient(context.Background(), &model.Client{
		FirstName: "Anna", LastName: "A", Email: "a@example.com",
		BirthDate: "1980-01-01", Status: model.ClientStatusActive,
	}))
	require.NoError(t, env.store.CreateClient(context.Background(), &model.Client{
		FirstName: "Boris", LastName: "B", Email: "b@example.com",
		BirthDate: "1980-01-01", Status: model.ClientStatusPending,
		RegistrationDate: time.Now(),
	}))

	rec := env.do(t, http.MethodGet, "/api/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		TotalUsers          int64 `json:"totalUsers"`
		TotalClients        int64 `json:"totalClients"`
		NewClientsLast7Days int64 `json:"newClientsLast7Days"`
		ActiveClients       int64 `json:"activeClients"`
	}
	decode(t, rec, &stats)
	require.EqualValues(t, 1, stats.TotalUsers)
	require.EqualValues(t, 2, stats.TotalClients)
	require.EqualValues(t, 2, stats.NewClientsLast7Days)
	require.EqualValues(t, 1, stats.ActiveClients)
}
