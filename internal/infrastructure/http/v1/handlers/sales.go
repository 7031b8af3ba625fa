package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/domain/backoffice"
	"tokopos/internal/domain/ledger"
	"tokopos/internal/infrastructure/http/v1/dto"
)

// SalesHandler handles sale transaction endpoints.
type SalesHandler struct {
	*BaseHandler
	engine *ledger.Engine
	office *backoffice.Facade
}

// NewSalesHandler creates a sales handler.
func NewSalesHandler(base *BaseHandler, engine *ledger.Engine, office *backoffice.Facade) *SalesHandler {
	return &SalesHandler{BaseHandler: base, engine: engine, office: office}
}

func (h *SalesHandler) List(c *gin.Context) {
	sales, err := h.engine.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sales)
}

func (h *SalesHandler) Get(c *gin.Context) {
	saleID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	sale, err := h.engine.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sale)
}

// Record posts a cart as a sale.
func (h *SalesHandler) Record(c *gin.Context) {
	var req dto.RecordSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result := h.office.RecordSale(c.Request.Context(), req.ToCartLines(), req.DiscountPercentage, req.SaleDate())
	c.JSON(statusFor(result, http.StatusCreated), result)
}

// Delete removes a sale and restores stock. Admin only.
func (h *SalesHandler) Delete(c *gin.Context) {
	saleID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	result := h.office.DeleteSale(c.Request.Context(), saleID)
	c.JSON(statusFor(result, http.StatusOK), result)
}
