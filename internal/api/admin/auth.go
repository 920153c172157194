// Package admin implements the authentication and user management HTTP
// handlers. Authentication is email + password against the users table,
// exchanged for an HS256 JWT; there is no external identity provider.
//
// auth.go implements login and the current-user endpoint.
package admin

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/eastern-erp/eastern-erp/internal/auth"
	"github.com/eastern-erp/eastern-erp/internal/config"
	"github.com/eastern-erp/eastern-erp/internal/db/models"
	"github.com/eastern-erp/eastern-erp/internal/db/repositories"
)

// AuthHandlers handles login and session endpoints.
type AuthHandlers struct {
	cfg      *config.Config
	userRepo *repositories.UserRepository
}

// NewAuthHandlers creates a new AuthHandlers instance.
func NewAuthHandlers(cfg *config.Config, db *sql.DB) *AuthHandlers {
	return &AuthHandlers{
		cfg:      cfg,
		userRepo: repositories.NewUserRepository(db),
	}
}

// LoginRequest is the email/password login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// @Summary      Login
// @Description  Exchange email and password for a JWT session token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body  LoginRequest  true  "Credentials"
// @Success      200  {object}  map[string]interface{}  "token, expires_at, user"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      401  {object}  map[string]interface{}  "Invalid credentials"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/auth/login [post]
// LoginHandler authenticates a user and issues a JWT
// POST /api/v1/auth/login
func (h *AuthHandlers) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: " + err.Error(),
			})
			return
		}

		user, err := h.userRepo.GetUserByEmail(c.Request.Context(), req.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to look up user",
			})
			return
		}

		// Same response for unknown email, wrong password, and deactivated
		// account so the endpoint does not leak which emails exist.
		if user == nil || !user.Active {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid email or password",
			})
			return
		}
		if !auth.CheckPassword(user.PasswordHash, req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid email or password",
			})
			return
		}

		ttl := h.cfg.Auth.SessionTTL
		token, err := auth.GenerateJWT(user.ID, user.Email, user.Role, ttl)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to issue session token",
			})
			return
		}
		if ttl <= 0 {
			ttl = 12 * time.Hour
		}

		c.JSON(http.StatusOK, gin.H{
			"token":      token,
			"expires_at": time.Now().Add(ttl).UTC().Format(time.RFC3339),
			"user":       user,
		})
	}
}

// @Summary      Current user
// @Description  Return the authenticated user's account.
// @Tags         Auth
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "user: models.User"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Router       /api/v1/auth/me [get]
// MeHandler returns the current authenticated user
// GET /api/v1/auth/me
func (h *AuthHandlers) MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userVal, exists := c.Get("user")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "User not authenticated",
			})
			return
		}

		user, ok := userVal.(*models.User)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Invalid user in context",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user": user,
		})
	}
}
