package store

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pthv11/-pension-fund/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Client{}))

	return New(db)
}

func mkUser(email, first, last string) *model.User {
	return &model.User{
		Email:     email,
		Password:  "hash",
		FirstName: first,
		LastName:  last,
	}
}

func mkClient(email, first, last, status string) *model.Client {
	return &model.Client{
		FirstName: first,
		LastName:  last,
		Email:     email,
		BirthDate: "1980-01-01",
		Status:    status,
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, mkUser("ivan@example.com", "Ivan", "Petrov")))

	err := s.CreateUser(ctx, mkUser("ivan@example.com", "Other", "Person"))
	require.ErrorIs(t, err, ErrDuplicateEmail)

	_, total, err := s.ListUsers(ctx, ListOptions{Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
}

func TestGetUser_Miss(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.GetUserByID(ctx, 42)
	require.NoError(t, err)
	require.Nil(t, u)

	u, err = s.GetUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestListUsers_SearchAndPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, mkUser("ivan@example.com", "Ivan", "Petrov")))
	require.NoError(t, s.CreateUser(ctx, mkUser("maria@example.com", "Maria", "Ivanova")))
	require.NoError(t, s.CreateUser(ctx, mkUser("pavel@example.com", "Pavel", "Sidorov")))

	// Case-insensitive substring over first name, last name and email
	users, total, err := s.ListUsers(ctx, ListOptions{Search: "IVAN", Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, users, 2)

	// Total counts all matching rows, not just the page
	users, total, err = s.ListUsers(ctx, ListOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, users, 1)

	// Page past the end is empty, not an error
	users, total, err = s.ListUsers(ctx, ListOptions{Limit: 10, Offset: 100})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Empty(t, users)
}

func TestListUsers_SortWhitelist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, mkUser("b@example.com", "Boris", "B")))
	require.NoError(t, s.CreateUser(ctx, mkUser("a@example.com", "Anna", "A")))

	users, _, err := s.ListUsers(ctx, ListOptions{Limit: 10, SortBy: "email", SortOrder: "asc"})
	require.NoError(t, err)
	require.Equal(t, "a@example.com", users[0].Email)

	// Unknown sortBy falls back to the default column instead of erroring
	_, _, err = s.ListUsers(ctx, ListOptions{Limit: 10, SortBy: "password; DROP TABLE users"})
	require.NoError(t, err)
}

func TestUpdateUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mkUser("ivan@example.com", "Ivan", "Petrov")
	require.NoError(t, s.CreateUser(ctx, u))

	updated, err := s.UpdateUser(ctx, u.ID, map[string]interface{}{
		"first_name": "Dmitry",
		"is_admin":   true,
	})
	require.NoError(t, err)
	require.Equal(t, "Dmitry", updated.FirstName)
	require.True(t, updated.IsAdmin)

	_, err = s.UpdateUser(ctx, 999, map[string]interface{}{"first_name": "X"})
	require.ErrorIs(t, err, ErrNotFound)

	// Empty field set is a read
	same, err := s.UpdateUser(ctx, u.ID, nil)
	require.NoError(t, err)
	require.Equal(t, "Dmitry", same.FirstName)
}

func TestDeleteUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mkUser("ivan@example.com", "Ivan", "Petrov")
	require.NoError(t, s.CreateUser(ctx, u))

	removed, err := s.DeleteUser(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = s.DeleteUser(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, removed)
}

func TestListClients_StatusFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateClient(ctx, mkClient("a@example.com", "Anna", "A", model.ClientStatusActive)))
	require.NoError(t, s.CreateClient(ctx, mkClient("b@example.com", "Boris", "B", model.ClientStatusPending)))
	require.NoError(t, s.CreateClient(ctx, mkClient("c@example.com", "Clara", "C", model.ClientStatusActive)))

	clients, total, err := s.ListClients(ctx, ListOptions{Status: model.ClientStatusActive, Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	for _, cl := range clients {
		require.Equal(t, model.ClientStatusActive, cl.Status)
	}

	// Status filter combines with search
	clients, total, err = s.ListClients(ctx, ListOptions{Search: "anna", Status: model.ClientStatusActive, Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Anna", clients[0].FirstName)
}

func TestClientBirthDate_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cl := mkClient("a@example.com", "Anna", "A", model.ClientStatusPending)
	require.NoError(t, s.CreateClient(ctx, cl))

	// The stored value must read back exactly as written, not normalized
	// into a timestamp by the driver
	got, err := s.GetClientByID(ctx, cl.ID)
	require.NoError(t, err)
	require.Equal(t, "1980-01-01", got.BirthDate)

	clients, _, err := s.ListClients(ctx, ListOptions{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, "1980-01-01", clients[0].BirthDate)
}

func TestUpdateClient_RegistrationDateImmutable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cl := mkClient("a@example.com", "Anna", "A", model.ClientStatusPending)
	require.NoError(t, s.CreateClient(ctx, cl))
	created := cl.RegistrationDate

	updated, err := s.UpdateClient(ctx, cl.ID, map[string]interface{}{
		"status": model.ClientStatusActive,
	})
	require.NoError(t, err)
	require.Equal(t, model.ClientStatusActive, updated.Status)
	require.WithinDuration(t, created, updated.RegistrationDate, time.Second)
}

func TestClearClients(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateClient(ctx, mkClient("a@example.com", "Anna", "A", model.ClientStatusActive)))
	require.NoError(t, s.CreateClient(ctx, mkClient("b@example.com", "Boris", "B", model.ClientStatusPending)))

	require.NoError(t, s.ClearClients(ctx))

	_, total, err := s.ListClients(ctx, ListOptions{Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 0, total)
}

func TestGetAdminStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, mkUser("admin@example.com", "Admin", "A")))
	require.NoError(t, s.CreateClient(ctx, mkClient("new@example.com", "New", "N", model.ClientStatusActive)))
	require.NoError(t, s.CreateClient(ctx, mkClient("old@example.com", "Old", "O", model.ClientStatusPending)))

	// Backdate one client past the 7-day window; the count must use a range
	// comparison, so the backdated row falls out while the fresh one stays
	err := s.db.Model(&model.Client{}).
		Where("email = ?", "old@example.com").
		Update("registration_date", time.Now().AddDate(0, 0, -8)).Error
	require.NoError(t, err)

	stats, err := s.GetAdminStats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.TotalUsers)
	require.EqualValues(t, 2, stats.TotalClients)
	require.EqualValues(t, 1, stats.NewClientsLast7d)
	require.EqualValues(t, 1, stats.ActiveClients)
}
