// Package audits implements the HTTP handlers for the compliance audit
// lifecycle: listing, retrieval, creation, draft saves, the one-way submit
// transition, deletion, and evidence uploads. Handlers translate between the
// JSON API surface and the compliance.Controller, and map the controller's
// error taxonomy onto HTTP statuses. They contain no business rules of their
// own: scoring, lifecycle guards, and checklist validation all live in the
// compliance package.
package audits

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/eastern-erp/eastern-erp/internal/compliance"
	"github.com/eastern-erp/eastern-erp/internal/telemetry"
)

// Handlers holds the audit endpoint handlers and their dependencies.
type Handlers struct {
	controller *compliance.Controller
	evidence   *EvidenceDeps
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(controller *compliance.Controller, evidence *EvidenceDeps) *Handlers {
	return &Handlers{
		controller: controller,
		evidence:   evidence,
	}
}

// respondError maps a controller error onto an HTTP response. Conflict
// responses carry a machine-readable reason so clients can distinguish a
// submitted lock from an overlapping save.
func respondError(c *gin.Context, err error) {
	var validationErr *compliance.ValidationError
	var uploadErr *compliance.EvidenceUploadError
	var persistErr *compliance.PersistenceError

	switch {
	case errors.Is(err, compliance.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Audit not found",
		})
	case errors.Is(err, compliance.ErrAuditSubmitted):
		telemetry.AuditSaveConflictsTotal.WithLabelValues("submitted").Inc()
		c.JSON(http.StatusConflict, gin.H{
			"error":  "Audit has been submitted and is read-only",
			"reason": "submitted",
		})
	case errors.Is(err, compliance.ErrSaveInFlight):
		telemetry.AuditSaveConflictsTotal.WithLabelValues("save_in_flight").Inc()
		c.JSON(http.StatusConflict, gin.H{
			"error":  "Another save for this audit is still in progress",
			"reason": "save_in_flight",
		})
	case errors.Is(err, compliance.ErrEvidenceLimitExceeded):
		c.JSON(http.StatusConflict, gin.H{
			"error":  "Evidence limit reached for this item",
			"reason": "evidence_limit",
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Error(),
			"field": validationErr.Field,
		})
	case errors.As(err, &uploadErr):
		// An upload rejected before reaching the backend is the client's
		// fault; a wrapped backend failure is ours.
		if uploadErr.Err == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": uploadErr.Error(),
			})
		} else {
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Evidence storage is unavailable",
			})
		}
	case errors.As(err, &persistErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Failed to persist audit",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

// @Summary      List audits
// @Description  Get a paginated list of audits, optionally filtered by company, status, template, or creator.
// @Tags         Audits
// @Security     Bearer
// @Produce      json
// @Param        company       query  string  false  "Filter by company"
// @Param        status        query  string  false  "Filter by status (draft or submitted)"
// @Param        template_key  query  string  false  "Filter by template"
// @Param        created_by    query  string  false  "Filter by creating user ID"
// @Param        page          query  int     false  "Page number (default 1)"
// @Param        per_page      query  int     false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}  "audits: []compliance.Audit, pagination: map"
// @Failure      400  {object}  map[string]interface{}  "Invalid status filter"
// @Failure      502  {object}  map[string]interface{}  "Failed to list audits"
// @Router       /api/v1/audits [get]
// ListAuditsHandler lists audits with filters and pagination
// GET /api/v1/audits?company=...&status=...&page=1&per_page=20
func (h *Handlers) ListAuditsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

		if page < 1 {
			page = 1
		}
		if perPage < 1 || perPage > 100 {
			perPage = 20
		}

		filter := compliance.ListFilter{
			Limit:  perPage,
			Offset: (page - 1) * perPage,
		}
		if company := c.Query("company"); company != "" {
			filter.Company = &company
		}
		if status := c.Query("status"); status != "" {
			s := compliance.Status(status)
			if s != compliance.StatusDraft && s != compliance.StatusSubmitted {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "status must be 'draft' or 'submitted'",
				})
				return
			}
			filter.Status = &s
		}
		if templateKey := c.Query("template_key"); templateKey != "" {
			filter.TemplateKey = &templateKey
		}
		if createdBy := c.Query("created_by"); createdBy != "" {
			filter.CreatedBy = &createdBy
		}

		auditList, err := h.controller.List(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"audits": auditList,
			"pagination": gin.H{
				"page":     page,
				"per_page": perPage,
			},
		})
	}
}

// @Summary      Get audit
// @Description  Get an audit by ID. Draft audits have their checklist reconciled against the current template version.
// @Tags         Audits
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Audit ID"
// @Success      200  {object}  map[string]interface{}  "audit: compliance.Audit"
// @Failure      404  {object}  map[string]interface{}  "Audit not found"
// @Failure      502  {object}  map[string]interface{}  "Failed to load audit"
// @Router       /api/v1/audits/{id} [get]
// GetAuditHandler retrieves a single audit
// GET /api/v1/audits/:id
func (h *Handlers) GetAuditHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		audit, err := h.controller.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"audit": audit,
		})
	}
}

// @Summary      Create audit
// @Description  Create a new draft audit. An empty checklist is seeded from the named template.
// @Tags         Audits
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  compliance.Audit  true  "Audit payload"
// @Success      201  {object}  map[string]interface{}  "audit: compliance.Audit"
// @Failure      400  {object}  map[string]interface{}  "Validation failed"
// @Failure      502  {object}  map[string]interface{}  "Failed to persist audit"
// @Router       /api/v1/audits [post]
// CreateAuditHandler creates a new draft audit
// POST /api/v1/audits
func (h *Handlers) CreateAuditHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var audit compliance.Audit
		if err := c.ShouldBindJSON(&audit); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: " + err.Error(),
			})
			return
		}

		audit.CreatedBy = c.GetString("user_id")

		if err := h.controller.Create(c.Request.Context(), &audit); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"audit": audit,
		})
	}
}

// @Summary      Save draft audit
// @Description  Persist the full audit, recomputing the score. The complete checklist is replayed on every save; submitted audits reject the write.
// @Tags         Audits
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string            true  "Audit ID"
// @Param        body  body  compliance.Audit  true  "Full audit payload"
// @Success      200  {object}  map[string]interface{}  "audit: compliance.Audit"
// @Failure      400  {object}  map[string]interface{}  "Validation failed"
// @Failure      404  {object}  map[string]interface{}  "Audit not found"
// @Failure      409  {object}  map[string]interface{}  "Audit submitted, or another save in flight"
// @Failure      502  {object}  map[string]interface{}  "Failed to persist audit"
// @Router       /api/v1/audits/{id} [put]
// SaveAuditHandler saves a draft audit
// PUT /api/v1/audits/:id
func (h *Handlers) SaveAuditHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var audit compliance.Audit
		if err := c.ShouldBindJSON(&audit); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: " + err.Error(),
			})
			return
		}
		audit.ID = c.Param("id")

		if err := h.controller.SaveDraft(c.Request.Context(), &audit); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"audit": audit,
		})
	}
}

// @Summary      Submit audit
// @Description  Perform the one-way draft to submitted transition. The submitted payload is the authoritative final state; auditor name, audit date, and company are required.
// @Tags         Audits
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string            true  "Audit ID"
// @Param        body  body  compliance.Audit  true  "Full audit payload"
// @Success      200  {object}  map[string]interface{}  "audit: compliance.Audit"
// @Failure      400  {object}  map[string]interface{}  "Validation failed"
// @Failure      404  {object}  map[string]interface{}  "Audit not found"
// @Failure      409  {object}  map[string]interface{}  "Audit already submitted, or another save in flight"
// @Failure      502  {object}  map[string]interface{}  "Failed to persist audit"
// @Router       /api/v1/audits/{id}/submit [post]
// SubmitAuditHandler submits an audit
// POST /api/v1/audits/:id/submit
func (h *Handlers) SubmitAuditHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var audit compliance.Audit
		if err := c.ShouldBindJSON(&audit); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: " + err.Error(),
			})
			return
		}
		audit.ID = c.Param("id")

		if err := h.controller.Submit(c.Request.Context(), &audit); err != nil {
			respondError(c, err)
			return
		}

		telemetry.AuditsSubmittedTotal.WithLabelValues(audit.Company, audit.TemplateKey).Inc()

		c.JSON(http.StatusOK, gin.H{
			"audit": audit,
		})
	}
}

// @Summary      Delete audit
// @Description  Delete an audit and its stored evidence. Irreversible. Requires admin role.
// @Tags         Audits
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Audit ID"
// @Success      200  {object}  map[string]interface{}  "message: Audit deleted successfully"
// @Failure      404  {object}  map[string]interface{}  "Audit not found"
// @Failure      502  {object}  map[string]interface{}  "Failed to delete audit"
// @Router       /api/v1/audits/{id} [delete]
// DeleteAuditHandler deletes an audit
// DELETE /api/v1/audits/:id
func (h *Handlers) DeleteAuditHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		auditID := c.Param("id")

		if err := h.controller.Delete(c.Request.Context(), auditID); err != nil {
			respondError(c, err)
			return
		}

		// Evidence cleanup is best-effort: the audit row is already gone and
		// orphaned objects are harmless.
		if h.evidence != nil {
			h.evidence.RemoveAudit(c.Request.Context(), auditID)
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Audit deleted successfully",
		})
	}
}
