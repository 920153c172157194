// templates.go exposes the audit question templates so clients can render
// the checklist form and offer the available audit types.
package audits

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/eastern-erp/eastern-erp/internal/compliance"
)

// @Summary      List templates
// @Description  Get the available audit templates with their current versions.
// @Tags         Templates
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "templates: []compliance.Template"
// @Router       /api/v1/templates [get]
// ListTemplatesHandler lists the available audit templates
// GET /api/v1/templates
func (h *Handlers) ListTemplatesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		keys := compliance.TemplateKeys()
		templateList := make([]compliance.Template, 0, len(keys))
		for _, key := range keys {
			if tmpl, ok := compliance.TemplateByKey(key); ok {
				templateList = append(templateList, tmpl)
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"templates": templateList,
		})
	}
}

// @Summary      Get template
// @Description  Get one audit template by key, including its parts and questions.
// @Tags         Templates
// @Security     Bearer
// @Produce      json
// @Param        key  path  string  true  "Template key"
// @Success      200  {object}  map[string]interface{}  "template: compliance.Template"
// @Failure      404  {object}  map[string]interface{}  "Template not found"
// @Router       /api/v1/templates/{key} [get]
// GetTemplateHandler retrieves a single template
// GET /api/v1/templates/:key
func (h *Handlers) GetTemplateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tmpl, ok := compliance.TemplateByKey(c.Param("key"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Template not found",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"template": tmpl,
		})
	}
}
