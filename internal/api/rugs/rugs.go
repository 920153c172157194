// Package rugs implements the HTTP handlers for the merchandising rug
// catalogue: listing, search, and CRUD. Any active account can read and
// write catalogue entries; only deletion is gated to admins in the router.
package rugs

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/eastern-erp/eastern-erp/internal/db/models"
	"github.com/eastern-erp/eastern-erp/internal/db/repositories"
)

// Handlers holds the rug catalogue endpoint handlers.
type Handlers struct {
	rugRepo *repositories.RugRepository
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sqlx.DB) *Handlers {
	return &Handlers{
		rugRepo: repositories.NewRugRepository(db),
	}
}

// parsePagination reads page/per_page query params with the catalogue's
// defaults.
func parsePagination(c *gin.Context) (page, perPage, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage, (page - 1) * perPage
}

// @Summary      List rugs
// @Description  Get a paginated list of rugs, optionally filtered by company and status.
// @Tags         Rugs
// @Security     Bearer
// @Produce      json
// @Param        company   query  string  false  "Filter by company"
// @Param        status    query  string  false  "Filter by status (active or inactive)"
// @Param        page      query  int     false  "Page number (default 1)"
// @Param        per_page  query  int     false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}  "rugs: []models.Rug, pagination: map"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/rugs [get]
// ListRugsHandler lists rugs with filters and pagination
// GET /api/v1/rugs?company=...&status=...&page=1&per_page=20
func (h *Handlers) ListRugsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, perPage, offset := parsePagination(c)

		rugList, err := h.rugRepo.List(c.Request.Context(),
			c.Query("company"), c.Query("status"), perPage, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list rugs",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"rugs": rugList,
			"pagination": gin.H{
				"page":     page,
				"per_page": perPage,
			},
		})
	}
}

// @Summary      Search rugs
// @Description  Search rugs by design name or construction.
// @Tags         Rugs
// @Security     Bearer
// @Produce      json
// @Param        q         query  string  true   "Search term"
// @Param        page      query  int     false  "Page number (default 1)"
// @Param        per_page  query  int     false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}  "rugs: []models.Rug, pagination: map"
// @Failure      400  {object}  map[string]interface{}  "Search term is required"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/rugs/search [get]
// SearchRugsHandler searches the rug catalogue
// GET /api/v1/rugs/search?q=kashan
func (h *Handlers) SearchRugsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		term := c.Query("q")
		if term == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Search query is required",
			})
			return
		}

		page, perPage, offset := parsePagination(c)

		rugList, err := h.rugRepo.Search(c.Request.Context(), term, perPage, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to search rugs",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"rugs": rugList,
			"pagination": gin.H{
				"page":     page,
				"per_page": perPage,
			},
		})
	}
}

// @Summary      Get rug
// @Description  Get one rug by ID.
// @Tags         Rugs
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Rug ID"
// @Success      200  {object}  map[string]interface{}  "rug: models.Rug"
// @Failure      404  {object}  map[string]interface{}  "Rug not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/rugs/{id} [get]
// GetRugHandler retrieves a single rug
// GET /api/v1/rugs/:id
func (h *Handlers) GetRugHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		rug, err := h.rugRepo.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve rug",
			})
			return
		}
		if rug == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Rug not found",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"rug": rug,
		})
	}
}

// CreateRugRequest represents the request to create a rug.
type CreateRugRequest struct {
	DesignName   string `json:"design_name" binding:"required"`
	Construction string `json:"construction" binding:"required"`
	Size         string `json:"size"`
	Color        string `json:"color"`
	Company      string `json:"company" binding:"required"`
	Status       string `json:"status"`
}

// @Summary      Create rug
// @Description  Create a new rug catalogue entry. Status defaults to active.
// @Tags         Rugs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  CreateRugRequest  true  "Rug payload"
// @Success      201  {object}  map[string]interface{}  "rug: models.Rug"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/rugs [post]
// CreateRugHandler creates a rug
// POST /api/v1/rugs
func (h *Handlers) CreateRugHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateRugRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: " + err.Error(),
			})
			return
		}

		if req.Status != "" && req.Status != models.RugStatusActive && req.Status != models.RugStatusInactive {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "status must be 'active' or 'inactive'",
			})
			return
		}

		rug := &models.Rug{
			DesignName:   req.DesignName,
			Construction: req.Construction,
			Size:         req.Size,
			Color:        req.Color,
			Company:      req.Company,
			Status:       req.Status,
		}

		if err := h.rugRepo.Create(c.Request.Context(), rug); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create rug",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"rug": rug,
		})
	}
}

// UpdateRugRequest represents the request to update a rug. Nil fields are
// left unchanged.
type UpdateRugRequest struct {
	DesignName   *string `json:"design_name"`
	Construction *string `json:"construction"`
	Size         *string `json:"size"`
	Color        *string `json:"color"`
	Company      *string `json:"company"`
	Status       *string `json:"status"`
}

// @Summary      Update rug
// @Description  Update a rug's catalogue fields or flip its active status.
// @Tags         Rugs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string            true  "Rug ID"
// @Param        body  body  UpdateRugRequest  true  "Rug update payload"
// @Success      200  {object}  map[string]interface{}  "rug: models.Rug"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      404  {object}  map[string]interface{}  "Rug not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/rugs/{id} [put]
// UpdateRugHandler updates a rug
// PUT /api/v1/rugs/:id
func (h *Handlers) UpdateRugHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		rugID := c.Param("id")

		var req UpdateRugRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: " + err.Error(),
			})
			return
		}

		rug, err := h.rugRepo.Get(c.Request.Context(), rugID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve rug",
			})
			return
		}
		if rug == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Rug not found",
			})
			return
		}

		if req.DesignName != nil {
			rug.DesignName = *req.DesignName
		}
		if req.Construction != nil {
			rug.Construction = *req.Construction
		}
		if req.Size != nil {
			rug.Size = *req.Size
		}
		if req.Color != nil {
			rug.Color = *req.Color
		}
		if req.Company != nil {
			rug.Company = *req.Company
		}
		if req.Status != nil {
			if *req.Status != models.RugStatusActive && *req.Status != models.RugStatusInactive {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "status must be 'active' or 'inactive'",
				})
				return
			}
			rug.Status = *req.Status
		}

		if err := h.rugRepo.Update(c.Request.Context(), rug); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update rug",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"rug": rug,
		})
	}
}

// @Summary      Delete rug
// @Description  Delete a rug catalogue entry. Prefer marking inactive. Requires admin role.
// @Tags         Rugs
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Rug ID"
// @Success      200  {object}  map[string]interface{}  "message: Rug deleted successfully"
// @Failure      404  {object}  map[string]interface{}  "Rug not found"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/rugs/{id} [delete]
// DeleteRugHandler deletes a rug
// DELETE /api/v1/rugs/:id
func (h *Handlers) DeleteRugHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		rugID := c.Param("id")

		rug, err := h.rugRepo.Get(c.Request.Context(), rugID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve rug",
			})
			return
		}
		if rug == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Rug not found",
			})
			return
		}

		if err := h.rugRepo.Delete(c.Request.Context(), rugID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete rug",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Rug deleted successfully",
		})
	}
}
