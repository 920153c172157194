// activity.go implements the activity log endpoints: recent-activity listing
// for admins and retention pruning.
package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/eastern-erp/eastern-erp/internal/db/repositories"
)

// ActivityHandlers handles activity log endpoints.
type ActivityHandlers struct {
	activityRepo *repositories.ActivityRepository
}

// NewActivityHandlers creates a new ActivityHandlers instance.
func NewActivityHandlers(db *sqlx.DB) *ActivityHandlers {
	return &ActivityHandlers{
		activityRepo: repositories.NewActivityRepository(db),
	}
}

// @Summary      List activity
// @Description  Get recent activity log entries, newest first, optionally for one user. Requires admin role.
// @Tags         Activity
// @Security     Bearer
// @Produce      json
// @Param        user_id   query  string  false  "Filter by acting user ID"
// @Param        page      query  int     false  "Page number (default 1)"
// @Param        per_page  query  int     false  "Items per page, max 200 (default 50)"
// @Success      200  {object}  map[string]interface{}  "activity: []models.ActivityLog, pagination: map"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/activity [get]
// ListActivityHandler lists recent activity entries
// GET /api/v1/admin/activity?user_id=...&page=1&per_page=50
func (h *ActivityHandlers) ListActivityHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))

		if page < 1 {
			page = 1
		}
		if perPage < 1 || perPage > 200 {
			perPage = 50
		}

		offset := (page - 1) * perPage

		entries, err := h.activityRepo.List(c.Request.Context(), c.Query("user_id"), perPage, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list activity",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"activity": entries,
			"pagination": gin.H{
				"page":     page,
				"per_page": perPage,
			},
		})
	}
}

// @Summary      Prune activity
// @Description  Delete activity log entries older than the given number of days (default 365). Requires admin role.
// @Tags         Activity
// @Security     Bearer
// @Produce      json
// @Param        older_than_days  query  int  false  "Retention window in days (default 365)"
// @Success      200  {object}  map[string]interface{}  "removed: count"
// @Failure      400  {object}  map[string]interface{}  "Invalid retention window"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      500  {object}  map[string]interface{}  "Internal server error"
// @Router       /api/v1/admin/activity/prune [post]
// PruneActivityHandler removes old activity entries
// POST /api/v1/admin/activity/prune?older_than_days=365
func (h *ActivityHandlers) PruneActivityHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		days, err := strconv.Atoi(c.DefaultQuery("older_than_days", "365"))
		if err != nil || days < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "older_than_days must be a positive integer",
			})
			return
		}

		cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
		removed, err := h.activityRepo.PruneOlderThan(c.Request.Context(), cutoff)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to prune activity log",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"removed": removed,
		})
	}
}
