package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pthv11/-pension-fund/internal/model"
	"github.com/pthv11/-pension-fund/internal/store"
	"github.com/pthv11/-pension-fund/pkg/config"
	"github.com/pthv11/-pension-fund/pkg/jwtutil"
)

type testEnv struct {
	e     *echo.Echo
	store *store.Store
	jwt   *jwtutil.JWT
	cfg   *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Client{}))

	cfg := &config.Config{
		JWT: config.JWTConfig{SigningKey: "test-key", ExpirationHours: 168},
		Admin: config.AdminConfig{
			Email:              "admin@pension.ru",
			Password:           "admin123",
			ContactFallbackUID: 1,
		},
	}

	st := store.New(db)
	jwt := jwtutil.New(&cfg.JWT)

	e := echo.New()
	RegisterRoutes(e, st, jwt, cfg)

	return &testEnv{e: e, store: st, jwt: jwt, cfg: cfg}
}

// seedUser creates an account directly in the store and returns it with a
// valid token
func (env *testEnv) seedUser(t *testing.T, email, password string, isAdmin bool) (*model.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)

	u := &model.User{
		Email:     email,
		Password:  string(hash),
		FirstName: "Test",
		LastName:  "User",
		IsAdmin:   isAdmin,
	}
	require.NoError(t, env.store.CreateUser(context.Background(), u))

	token, err := env.jwt.GenerateToken(u.ID)
	require.NoError(t, err)
	return u, token
}

func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}
