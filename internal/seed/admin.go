package seed

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pthv11/-pension-fund/internal/model"
	"github.com/pthv11/-pension-fund/internal/store"
	"github.com/pthv11/-pension-fund/pkg/config"
)

// EnsureAdmin creates the bootstrap admin account if it does not exist yet.
// Idempotent: a second run against the same store is a no-op. This is the
// only path that creates an account with the admin flag already set.
func EnsureAdmin(ctx context.Context, st *store.Store, cfg config.AdminConfig, log *zap.Logger) (*model.User, error) {
	existing, err := st.GetUserByEmail(ctx, cfg.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Debug("Bootstrap admin already exists", zap.Uint("user_id", existing.ID))
		return existing, nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin := model.User{
		Email:     cfg.Email,
		Password:  string(hashedPassword),
		FirstName: "System",
		LastName:  "Administrator",
		IsAdmin:   true,
	}

	if err := st.CreateUser(ctx, &admin); err != nil {
		return nil, err
	}

	log.Info("Bootstrap admin created, change the password after first login",
		zap.Uint("user_id", admin.ID))
	return &admin, nil
}
