package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pthv11/-pension-fund/internal/middleware"
	"github.com/pthv11/-pension-fund/internal/model"
	"github.com/pthv11/-pension-fund/internal/store"
	"github.com/pthv11/-pension-fund/pkg/jwtutil"
	"github.com/pthv11/-pension-fund/pkg/logger"
	"github.com/pthv11/-pension-fund/prometheus"
)

// AuthHandler serves registration, login and identity resolution
type AuthHandler struct {
	store *store.Store
	jwt   *jwtutil.JWT
}

// NewAuthHandler creates the authentication handler
func NewAuthHandler(st *store.Store, jwt *jwtutil.JWT) *AuthHandler {
	return &AuthHandler{store: st, jwt: jwt}
}

// RegisterRequest is the public registration payload. No admin flag is
// accepted: a registered account is always non-admin.
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
}

// LoginRequest is the credential payload for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates a new non-admin account and returns a fresh token
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RegisterCounter.Inc()

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "registration failed"})
	}

	// IsAdmin is deliberately left at its zero value regardless of payload
	user := model.User{
		Email:     req.Email,
		Password:  string(hashedPassword),
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.store.CreateUser(c.Request().Context(), &user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "user with this email already exists"})
		}
		log.Error("Failed to create user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "registration failed"})
	}

	token, err := h.jwt.GenerateToken(user.ID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "token error"})
	}
	prometheus.IncreaseActiveTokens()

	log.Info("User registered", zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "registration successful",
		"token":   token,
		"user":    user,
	})
}

// Login verifies credentials and returns a fresh token
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	user, err := h.store.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		log.Error("User lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}
	if user == nil {
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid email or password"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid email or password"})
	}

	token, err := h.jwt.GenerateToken(user.ID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "token error"})
	}
	prometheus.IncreaseActiveTokens()

	log.Info("User logged in", zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "login successful",
		"token":   token,
		"user":    user,
	})
}

// Me returns the user resolved from the bearer token
func (h *AuthHandler) Me(c echo.Context) error {
	user := middleware.UserFromContext(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// Logout acknowledges the logout. Tokens are stateless so there is nothing
// to invalidate server-side; the client discards its copy.
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "logout successful"})
}
