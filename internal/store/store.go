package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pthv11/-pension-fund/internal/model"
)

// Store is the credential store: the persistence layer for User and Client
// records. The backing table is the sole source of truth; there is no
// in-memory cache, so every read reflects the latest committed write.
type Store struct {
	db *gorm.DB
}

// New creates a store backed by the given database handle
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ListOptions controls search, pagination and sorting for list queries.
// Search is a case-insensitive substring match over first name, last name
// and email. Status filters clients by exact match and is ignored for users.
type ListOptions struct {
	Search    string
	Status    string
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

// AdminStats holds point-in-time aggregate counts for the admin dashboard
type AdminStats struct {
	TotalUsers       int64 `json:"totalUsers"`
	TotalClients     int64 `json:"totalClients"`
	NewClientsLast7d int64 `json:"newClientsLast7Days"`
	ActiveClients    int64 `json:"activeClients"`
}

// Accepted sortBy values per entity, mapped to their columns. Unknown values
// fall back to the default column rather than erroring.
var userSortColumns = map[string]string{
	"createdAt": "created_at",
	"firstName": "first_name",
	"lastName":  "last_name",
	"email":     "email",
}

var clientSortColumns = map[string]string{
	"registrationDate": "registration_date",
	"name":             "first_name",
	"firstName":        "first_name",
	"email":            "email",
	"status":           "status",
}

// GetUserByID returns the user or nil when no row matches
func (s *Store) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail returns the user or nil when no row matches
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts the user. The unique index on email is the final
// arbiter for concurrent registrations with the same address.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	err := s.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	return err
}

// ListUsers returns a page of users plus the total count of all matching rows
func (s *Store) ListUsers(ctx context.Context, opts ListOptions) ([]model.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.User{})

	if opts.Search != "" {
		pattern := "%" + strings.ToLower(opts.Search) + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	users := []model.User{}
	err := query.
		Order(orderClause(userSortColumns, opts.SortBy, opts.SortOrder, "created_at")).
		Limit(opts.Limit).
		Offset(opts.Offset).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// UpdateUser applies the partial field set and returns the updated record,
// or ErrNotFound when no row matches
func (s *Store) UpdateUser(ctx context.Context, id uint, fields map[string]interface{}) (*model.User, error) {
	// An empty field set is a read: nothing to write, but the caller still
	// needs the not-found distinction
	if len(fields) == 0 {
		user, err := s.GetUserByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrNotFound
		}
		return user, nil
	}

	result := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes the user and reports whether a row was removed
func (s *Store) DeleteUser(ctx context.Context, id uint) (bool, error) {
	result := s.db.WithContext(ctx).Delete(&model.User{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetClientByID returns the client or nil when no row matches
func (s *Store) GetClientByID(ctx context.Context, id uint) (*model.Client, error) {
	var client model.Client
	err := s.db.WithContext(ctx).First(&client, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// CreateClient inserts the client record
func (s *Store) CreateClient(ctx context.Context, client *model.Client) error {
	err := s.db.WithContext(ctx).Create(client).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	return err
}

// ListClients returns a page of clients plus the total count of all matching
// rows. An empty status means no status filtering.
func (s *Store) ListClients(ctx context.Context, opts ListOptions) ([]model.Client, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Client{})

	if opts.Search != "" {
		pattern := "%" + strings.ToLower(opts.Search) + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	clients := []model.Client{}
	err := query.
		Order(orderClause(clientSortColumns, opts.SortBy, opts.SortOrder, "registration_date")).
		Limit(opts.Limit).
		Offset(opts.Offset).
		Find(&clients).Error
	if err != nil {
		return nil, 0, err
	}

	return clients, total, nil
}

// UpdateClient applies the partial field set and returns the updated record,
// or ErrNotFound when no row matches. The registration date is immutable;
// callers never include it in the field set.
func (s *Store) UpdateClient(ctx context.Context, id uint, fields map[string]interface{}) (*model.Client, error) {
	if len(fields) == 0 {
		client, err := s.GetClientByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, ErrNotFound
		}
		return client, nil
	}

	result := s.db.WithContext(ctx).Model(&model.Client{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var client model.Client
	if err := s.db.WithContext(ctx).First(&client, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// DeleteClient removes the client and reports whether a row was removed
func (s *Store) DeleteClient(ctx context.Context, id uint) (bool, error) {
	result := s.db.WithContext(ctx).Delete(&model.Client{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ClearClients removes every client record. Admin-triggered maintenance
// operation; isolation is whatever the underlying store provides.
func (s *Store) ClearClients(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("1 = 1").Delete(&model.Client{}).Error
}

// GetAdminStats recomputes the dashboard aggregates from the store. The
// 7-day window is a range comparison on the registration date, not an exact
// timestamp match.
func (s *Store) GetAdminStats(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&model.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Client{}).Count(&stats.TotalClients).Error; err != nil {
		return nil, err
	}

	sevenDaysAgo := time.Now().AddDate(0, 0, -7)
	if err := db.Model(&model.Client{}).
		Where("registration_date >= ?", sevenDaysAgo).
		Count(&stats.NewClientsLast7d).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&model.Client{}).
		Where("status = ?", model.ClientStatusActive).
		Count(&stats.ActiveClients).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// orderClause resolves the sortBy/sortOrder pair against the column
// whitelist, falling back to the default column in descending order
func orderClause(columns map[string]string, sortBy, sortOrder, defaultColumn string) string {
	column, ok := columns[sortBy]
	if !ok {
		column = defaultColumn
	}
	direction := "desc"
	if sortOrder == "asc" {
		direction = "asc"
	}
	return column + " " + direction
}
