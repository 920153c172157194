// activity.go provides Gin middleware that records authenticated write
// operations to the activity log.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/eastern-erp/eastern-erp/internal/db/models"
	"github.com/eastern-erp/eastern-erp/internal/db/repositories"
)

// ActivityMiddleware records successful write operations against the activity
// log. Reads and failed requests are skipped; the log answers "who changed
// what", not "who looked at what".
func ActivityMiddleware(activityRepo *repositories.ActivityRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Process request first
		c.Next()

		if c.Request.Method == "OPTIONS" || c.Request.Method == "GET" {
			return
		}
		if c.Writer.Status() >= 400 {
			return
		}

		action := fmt.Sprintf("%s %s", c.Request.Method, c.Request.URL.Path)
		ipAddress := c.ClientIP()

		entry := &models.ActivityLog{
			Action:    action,
			IPAddress: &ipAddress,
			CreatedAt: time.Now(),
		}

		if userID, ok := c.Get("user_id"); ok {
			if uid, ok := userID.(string); ok && uid != "" {
				entry.UserID = &uid
			}
		}

		if rt := resourceTypeFromPath(c.Request.URL.Path); rt != "" {
			entry.ResourceType = &rt
			// Route params carry the resource identifier for item routes
			if id := c.Param("id"); id != "" {
				entry.ResourceID = &id
			}
		}

		// Async log creation (non-blocking); a failed activity write must not
		// fail the request that already succeeded.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := activityRepo.Record(ctx, entry); err != nil {
				slog.Warn("failed to record activity log", "action", entry.Action, "error", err)
			}
		}()
	}
}

func resourceTypeFromPath(path string) string {
	switch {
	case strings.Contains(path, "/audits"):
		return "audit"
	case strings.Contains(path, "/rugs"):
		return "rug"
	case strings.Contains(path, "/users"):
		return "user"
	case strings.Contains(path, "/auth"):
		return "session"
	}
	return ""
}
