package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/knbsoft/knb_backend/internal/core/ports/services"
	"github.com/knbsoft/knb_backend/internal/dto"
)

// AuditHandler exposes the audit log.
type AuditHandler struct {
	auditSvc portssvc.AuditSvcFacade
}

func NewAuditHandler(auditSvc portssvc.AuditSvcFacade) *AuditHandler {
	return &AuditHandler{auditSvc: auditSvc}
}

// ListRecent godoc
// @Summary List recent audit log entries
// @Tags audit
// @Produce json
// @Param limit query int false "Page size" default(50)
// @Success 200 {object} dto.ListAuditResponse
// @Router /audit [get]
func (h *AuditHandler) ListRecent(c *gin.Context) {
	var params dto.ListAuditParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query parameters: " + err.Error()})
		return
	}

	entries, err := h.auditSvc.ListRecent(c.Request.Context(), params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListAuditResponse(entries))
}
