// evidence.go implements the evidence upload endpoint and the deletion-time
// evidence cleanup hook. Uploads arrive as multipart form data under the
// "file" field; the compliance controller enforces the per-item cap and the
// storage layer enforces the size and content-type bounds.
package audits

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/eastern-erp/eastern-erp/internal/compliance"
	"github.com/eastern-erp/eastern-erp/internal/storage"
	"github.com/eastern-erp/eastern-erp/internal/telemetry"
)

// EvidenceDeps bundles the storage-facing dependencies of the evidence
// endpoints.
type EvidenceDeps struct {
	store          *storage.EvidenceStore
	maxUploadBytes int64
}

// NewEvidenceDeps creates the evidence dependencies. maxUploadBytes is used
// to reject oversized requests before the multipart body is parsed.
func NewEvidenceDeps(store *storage.EvidenceStore, maxUploadBytes int64) *EvidenceDeps {
	return &EvidenceDeps{
		store:          store,
		maxUploadBytes: maxUploadBytes,
	}
}

// RemoveAudit deletes all stored evidence for an audit. Failures are logged,
// not propagated: the caller has already deleted the audit row.
func (d *EvidenceDeps) RemoveAudit(ctx context.Context, auditID string) {
	if err := d.store.RemoveAuditEvidence(ctx, auditID); err != nil {
		slog.Warn("failed to remove audit evidence", "audit_id", auditID, "error", err)
	}
}

// @Summary      Upload evidence
// @Description  Attach an evidence image to a checklist item. The audit must be a draft with fewer than the maximum evidence entries on the item. Accepts JPEG, PNG, and WebP up to the configured size limit.
// @Tags         Audits
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "Audit ID"
// @Param        code  path      string  true  "Checklist item code"
// @Param        file  formData  file    true  "Evidence image"
// @Success      200  {object}  map[string]interface{}  "audit: compliance.Audit, reference: storage path"
// @Failure      400  {object}  map[string]interface{}  "Missing file, bad type, or oversized"
// @Failure      404  {object}  map[string]interface{}  "Audit not found"
// @Failure      409  {object}  map[string]interface{}  "Audit submitted, evidence limit reached, or save in flight"
// @Failure      413  {object}  map[string]interface{}  "Request body too large"
// @Failure      502  {object}  map[string]interface{}  "Evidence storage unavailable"
// @Router       /api/v1/audits/{id}/evidence/{code} [post]
// UploadEvidenceHandler attaches an evidence image to a checklist item
// POST /api/v1/audits/:id/evidence/:code
func (h *Handlers) UploadEvidenceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		auditID := c.Param("id")
		itemCode := c.Param("code")

		// Reject clearly oversized requests before parsing the body. Multipart
		// framing adds overhead on top of the file itself, so allow some slack;
		// the exact per-file limit is enforced by the storage layer.
		if c.Request.ContentLength > h.evidence.maxUploadBytes+1<<20 {
			telemetry.EvidenceUploadsTotal.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "Request body exceeds the evidence size limit",
			})
			return
		}

		audit, err := h.controller.Get(c.Request.Context(), auditID)
		if err != nil {
			telemetry.EvidenceUploadsTotal.WithLabelValues("error").Inc()
			respondError(c, err)
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			telemetry.EvidenceUploadsTotal.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Multipart form must include a 'file' field",
			})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			telemetry.EvidenceUploadsTotal.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to read uploaded file",
			})
			return
		}
		defer file.Close()

		evidenceFile := compliance.EvidenceFile{
			Reader:      file,
			Size:        fileHeader.Size,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Filename:    fileHeader.Filename,
		}

		savedFirst, err := h.controller.AttachEvidence(c.Request.Context(), audit, itemCode, evidenceFile)
		if err != nil {
			telemetry.EvidenceUploadsTotal.WithLabelValues("error").Inc()
			respondError(c, err)
			return
		}

		telemetry.EvidenceUploadsTotal.WithLabelValues("success").Inc()

		item := audit.Item(itemCode)
		reference := ""
		if item != nil && len(item.Evidence) > 0 {
			reference = item.Evidence[len(item.Evidence)-1]
		}

		c.JSON(http.StatusOK, gin.H{
			"audit":       audit,
			"reference":   reference,
			"saved_first": savedFirst,
		})
	}
}
