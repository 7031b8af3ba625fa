package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/domain/backoffice"
	"tokopos/internal/infrastructure/storage/postgres"
)

// AdminHandler handles admin-only maintenance endpoints.
type AdminHandler struct {
	*BaseHandler
	office *backoffice.Facade
	audit  *postgres.AuditService
}

// NewAdminHandler creates an admin handler. audit may be nil when the
// audit trail is not configured (memory store mode).
func NewAdminHandler(base *BaseHandler, office *backoffice.Facade, audit *postgres.AuditService) *AdminHandler {
	return &AdminHandler{BaseHandler: base, office: office, audit: audit}
}

// SynchronizeCostPrices rewrites historical sale costs from the current
// catalog.
func (h *AdminHandler) SynchronizeCostPrices(c *gin.Context) {
	result := h.office.SynchronizeCostPrices(c.Request.Context())
	c.JSON(statusFor(result, http.StatusOK), result)
}

// EntityHistory returns the audit trail for one entity.
func (h *AdminHandler) EntityHistory(c *gin.Context) {
	if h.audit == nil {
		h.Error(c, apperror.NewNotFound("audit trail", "disabled"))
		return
	}

	entityID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	entries, err := h.audit.GetEntityHistory(c.Request.Context(), c.Param("entity"), entityID, h.ParseIntQuery(c, "limit", 50))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entries)
}
