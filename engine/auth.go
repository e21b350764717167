package engine

import (
	"errors"
	"net/http"
	"time"

	"github.com/drummonds/goLIMS/database"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register creates a user account
func (serverHandler *ServerHandler) Register(context echo.Context) error {
	var req registerRequest
	if err := context.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed registration payload")
	}
	if err := context.Validate(&req); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		Logger.Error("Unable to hash password", "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to register user",
		})
	}
	user := &database.User{Username: req.Username, Email: req.Email, PasswordHash: string(hash)}
	err = serverHandler.DB.CreateUser(context.Request().Context(), user)
	if errors.Is(err, database.ErrDuplicate) {
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Username or email already exists",
		})
	}
	if err != nil {
		Logger.Error("Unable to create user", "username", req.Username, "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to register user",
		})
	}
	Logger.Info("User registered", "username", user.Username)
	return context.JSON(http.StatusCreated, map[string]interface{}{
		"message": "User created successfully",
	})
}

// Login checks the password and issues an access token
func (serverHandler *ServerHandler) Login(context echo.Context) error {
	var req loginRequest
	if err := context.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed login payload")
	}
	if err := context.Validate(&req); err != nil {
		return err
	}
	ctx := context.Request().Context()
	unauthorized := func() error {
		return context.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error": "Bad username or password",
		})
	}

	user, err := serverHandler.DB.GetUserByUsername(ctx, req.Username)
	if errors.Is(err, database.ErrNotFound) {
		return unauthorized()
	}
	if err != nil {
		Logger.Error("Unable to look up user", "username", req.Username, "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Login failed",
		})
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return unauthorized()
	}

	token := uuid.NewString()
	expires := time.Now().Add(serverHandler.ServerConfig.TokenTTL)
	if err := serverHandler.DB.SaveToken(ctx, token, user.ID, expires); err != nil {
		Logger.Error("Unable to save token", "username", user.Username, "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Login failed",
		})
	}
	return context.JSON(http.StatusOK, map[string]interface{}{
		"access_token": token,
		"expires_at":   expires.UTC(),
	})
}

// RequireToken guards write endpoints with a bearer token when auth is
// switched on in the config; otherwise it passes every request through.
func (serverHandler *ServerHandler) RequireToken() echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Skipper: func(echo.Context) bool {
			return !serverHandler.ServerConfig.AuthRequired
		},
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(key string, c echo.Context) (bool, error) {
			userID, err := serverHandler.DB.TokenUser(c.Request().Context(), key, time.Now())
			if errors.Is(err, database.ErrNotFound) {
				return false, nil
			}
			if err != nil {
				return false, err
			}
			c.Set("user_id", userID)
			return true, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid access token")
		},
	})
}
