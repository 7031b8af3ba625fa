package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/domain/backoffice"
	"tokopos/internal/domain/catalog"
	"tokopos/internal/infrastructure/cache"
	"tokopos/internal/infrastructure/http/v1/dto"
	"tokopos/pkg/logger"
)

// ProductsHandler handles product catalog endpoints. Single-item CRUD
// goes through the catalog service; bulk operations go through the
// back-office facade so their outcomes use the flat success/message
// shape.
type ProductsHandler struct {
	*BaseHandler
	catalog *catalog.Service
	office  *backoffice.Facade
	views   ViewCache
}

// NewProductsHandler creates a products handler.
func NewProductsHandler(base *BaseHandler, svc *catalog.Service, office *backoffice.Facade, views ViewCache) *ProductsHandler {
	return &ProductsHandler{BaseHandler: base, catalog: svc, office: office, views: views}
}

// List serves the catalog out of the view cache when a rendered copy is
// present; mutations drop the key through the invalidator.
func (h *ProductsHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	key := cache.CatalogKey("list")

	var cached []*catalog.Product
	if hit, err := h.views.GetJSON(ctx, key, &cached); err != nil {
		logger.Warn(ctx, "catalog view cache read failed", "key", key, "error", err)
	} else if hit {
		h.OK(c, cached)
		return
	}

	products, err := h.catalog.List(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.views.SetJSON(ctx, key, products); err != nil {
		logger.Warn(ctx, "catalog view cache write failed", "key", key, "error", err)
	}
	h.OK(c, products)
}

func (h *ProductsHandler) Get(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	product, err := h.catalog.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, product)
}

func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product := req.ToEntity()
	if err := h.catalog.Create(c.Request.Context(), product); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, product)
}

func (h *ProductsHandler) Update(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.catalog.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(product)

	if err := h.catalog.Update(c.Request.Context(), product); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, product)
}

func (h *ProductsHandler) Delete(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.catalog.Delete(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// BatchCreate bulk-creates products through the facade.
func (h *ProductsHandler) BatchCreate(c *gin.Context) {
	var req dto.BatchCreateProductsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	products := make([]*catalog.Product, 0, len(req.Products))
	for _, p := range req.Products {
		products = append(products, p.ToEntity())
	}

	result := h.office.CreateProducts(c.Request.Context(), products)
	c.JSON(statusFor(result, http.StatusCreated), result)
}

// BatchUpdate applies one patch to every listed product.
func (h *ProductsHandler) BatchUpdate(c *gin.Context) {
	var req dto.BatchUpdateProductsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ids, err := parseIDs(req.IDs)
	if err != nil {
		h.Error(c, err)
		return
	}

	result := h.office.UpdateProducts(c.Request.Context(), ids, req.Patch.ToPatch())
	c.JSON(statusFor(result, http.StatusOK), result)
}

// BatchDelete removes every listed product.
func (h *ProductsHandler) BatchDelete(c *gin.Context) {
	var req dto.BatchDeleteProductsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ids, err := parseIDs(req.IDs)
	if err != nil {
		h.Error(c, err)
		return
	}

	result := h.office.DeleteProducts(c.Request.Context(), ids)
	c.JSON(statusFor(result, http.StatusOK), result)
}

// parseIDs rejects the whole batch when any id is malformed: a batch
// with a typo should not half-run.
func parseIDs(raw []string) ([]id.ID, error) {
	ids := make([]id.ID, 0, len(raw))
	for _, s := range raw {
		parsed, err := id.Parse(s)
		if err != nil {
			return nil, apperror.NewValidation("invalid id format").WithDetail("id", s)
		}
		ids = append(ids, parsed)
	}
	return ids, nil
}

// statusFor maps a facade result to an HTTP status: failures are still
// 200-shaped bodies, but with 422 so clients can branch on status.
func statusFor(result any, success int) int {
	type succeeder interface{ Succeeded() bool }
	if s, ok := result.(succeeder); ok && !s.Succeeded() {
		return http.StatusUnprocessableEntity
	}
	return success
}
