package handlers

import (
	"github.com/gin-gonic/gin"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/domain/expense"
	"tokopos/internal/infrastructure/http/v1/dto"
)

// ExpensesHandler handles expense endpoints.
type ExpensesHandler struct {
	*BaseHandler
	expenses *expense.Service
}

// NewExpensesHandler creates an expenses handler.
func NewExpensesHandler(base *BaseHandler, svc *expense.Service) *ExpensesHandler {
	return &ExpensesHandler{BaseHandler: base, expenses: svc}
}

func (h *ExpensesHandler) List(c *gin.Context) {
	expenses, err := h.expenses.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, expenses)
}

func (h *ExpensesHandler) Create(c *gin.Context) {
	var req dto.CreateExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	exp := req.ToEntity()
	if err := h.expenses.Create(c.Request.Context(), exp); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, exp)
}

func (h *ExpensesHandler) Delete(c *gin.Context) {
	expenseID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.expenses.Delete(c.Request.Context(), expenseID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
