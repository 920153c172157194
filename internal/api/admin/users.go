// users.go implements handlers for user account CRUD operations including
// listing, creating, updating, deactivating, and deleting users. All routes
// in this file sit behind RequireAdmin.
package admin

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/eastern-erp/eastern-erp/internal/auth"
	"github.com/eastern-erp/eastern-erp/internal/config"
	"github.com/eastern-erp/eastern-erp/internal/db/models"
	"github.com/eastern-erp/eastern-erp/internal/db/repositories"
)

// UserHandlers handles user management endpoints
type UserHandlers struct {
	cfg      *config.Config
	userRepo *repositories.UserRepository
}

// NewUserHandlers creates a new UserHandlers instance
func NewUserHandlers(cfg *config.Config, db *sql.DB) *UserHandlers {
	return &UserHandlers{
		cfg:      cfg,
		userRepo: repositories.NewUserRepository(db),
	}
}

// @Summary      List users
// @Description  Get a paginated list of all users. Requires admin role.
// @Tags         Users
// @Security     Bearer
// @Produce      json
// @Param        page      query  int  false  "Page number (default 1)"
// @Param        per_page  query  int  false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}  "users: []models.User, pagination: map"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/users [get]
// ListUsersHandler lists all users with pagination
// GET /api/v1/admin/users?page=1&per_page=20
func (h *UserHandlers) ListUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

		if page < 1 {
			page = 1
		}
		if perPage < 1 || perPage > 100 {
			perPage = 20
		}

		offset := (page - 1) * perPage

		users, total, err := h.userRepo.ListUsers(c.Request.Context(), perPage, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list users",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"users": users,
			"pagination": gin.H{
				"page":     page,
				"per_page": perPage,
				"total":    total,
			},
		})
	}
}

// @Summary      Get user
// @Description  Get a user by ID. Requires admin role.
// @Tags         Users
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "User ID"
// @Success      200  {object}  map[string]interface{}  "user: models.User"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      404  {object}  map[string]interface{}  "User not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/users/{id} [get]
// GetUserHandler retrieves a specific user by ID
// GET /api/v1/admin/users/:id
func (h *UserHandlers) GetUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := h.userRepo.GetUserByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve user",
			})
			return
		}

		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user": user,
		})
	}
}

// CreateUserRequest represents the request to create a new user
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// @Summary      Create user
// @Description  Create a new user account with a role and initial password. Requires admin role.
// @Tags         Users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  CreateUserRequest  true  "User creation request"
// @Success      201  {object}  map[string]interface{}  "user: models.User"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      409  {object}  map[string]interface{}  "User with this email already exists"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/users [post]
// CreateUserHandler creates a new user
// POST /api/v1/admin/users
func (h *UserHandlers) CreateUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: " + err.Error(),
			})
			return
		}

		if !models.ValidRole(req.Role) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown role: " + req.Role,
			})
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid password: " + err.Error(),
			})
			return
		}

		existingUser, err := h.userRepo.GetUserByEmail(c.Request.Context(), req.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to check existing user",
			})
			return
		}
		if existingUser != nil {
			c.JSON(http.StatusConflict, gin.H{
				"error": "User with this email already exists",
			})
			return
		}

		user := &models.User{
			Email:        req.Email,
			Name:         req.Name,
			PasswordHash: hash,
			Role:         req.Role,
			Active:       true,
		}

		if err := h.userRepo.CreateUser(c.Request.Context(), user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create user",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"user": user,
		})
	}
}

// UpdateUserRequest represents the request to update a user. Nil fields are
// left unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

// @Summary      Update user
// @Description  Update a user's name, email, password, role, or active flag. Deactivating an account locks it out immediately. Requires admin role.
// @Tags         Users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "User ID"
// @Param        body  body  UpdateUserRequest  true  "User update request"
// @Success      200  {object}  map[string]interface{}  "user: models.User"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      404  {object}  map[string]interface{}  "User not found"
// @Failure      409  {object}  map[string]interface{}  "Email already in use by another user"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/users/{id} [put]
// UpdateUserHandler updates a user
// PUT /api/v1/admin/users/:id
func (h *UserHandlers) UpdateUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("id")

		var req UpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: " + err.Error(),
			})
			return
		}

		user, err := h.userRepo.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve user",
			})
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
			return
		}

		if req.Name != nil {
			user.Name = *req.Name
		}
		if req.Role != nil {
			if !models.ValidRole(*req.Role) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Unknown role: " + *req.Role,
				})
				return
			}
			user.Role = *req.Role
		}
		if req.Active != nil {
			user.Active = *req.Active
		}
		if req.Password != nil {
			hash, err := auth.HashPassword(*req.Password)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Invalid password: " + err.Error(),
				})
				return
			}
			user.PasswordHash = hash
		}
		if req.Email != nil {
			existingUser, err := h.userRepo.GetUserByEmail(c.Request.Context(), *req.Email)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to check email availability",
				})
				return
			}
			if existingUser != nil && existingUser.ID != userID {
				c.JSON(http.StatusConflict, gin.H{
					"error": "Email already in use by another user",
				})
				return
			}
			user.Email = *req.Email
		}

		if err := h.userRepo.UpdateUser(c.Request.Context(), user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update user",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user": user,
		})
	}
}

// @Summary      Delete user
// @Description  Delete a user by ID. Prefer deactivation (active=false) so activity history keeps its author. Requires admin role.
// @Tags         Users
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "User ID"
// @Success      200  {object}  map[string]interface{}  "message: User deleted successfully"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      404  {object}  map[string]interface{}  "User not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/users/{id} [delete]
// DeleteUserHandler deletes a user
// DELETE /api/v1/admin/users/:id
func (h *UserHandlers) DeleteUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("id")

		user, err := h.userRepo.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve user",
			})
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
			return
		}

		if err := h.userRepo.DeleteUser(c.Request.Context(), userID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete user",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "User deleted successfully",
		})
	}
}

// @Summary      Search users
// @Description  Search users by email or name. Requires admin role.
// @Tags         Users
// @Security     Bearer
// @Produce      json
// @Param        q         query  string  true   "Search query"
// @Param        page      query  int     false  "Page number (default 1)"
// @Param        per_page  query  int     false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}  "users: []models.User, pagination: map"
// @Failure      400  {object}  map[string]interface{}  "Search query is required"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/users/search [get]
// SearchUsersHandler searches users by email or name
// GET /api/v1/admin/users/search?q=query&page=1&per_page=20
func (h *UserHandlers) SearchUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Search query is required",
			})
			return
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

		if page < 1 {
			page = 1
		}
		if perPage < 1 || perPage > 100 {
			perPage = 20
		}

		offset := (page - 1) * perPage

		users, err := h.userRepo.Search(c.Request.Context(), query, perPage, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to search users",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"users": users,
			"pagination": gin.H{
				"page":     page,
				"per_page": perPage,
			},
		})
	}
}
