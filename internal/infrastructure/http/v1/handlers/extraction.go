package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"tokopos/internal/core/apperror"
	"tokopos/internal/domain/extraction"
)

// maxDocumentSize caps uploads at 10MB, matching the model provider's
// payload limits.
const maxDocumentSize = 10 << 20

// ExtractionHandler turns uploaded documents into product candidates.
type ExtractionHandler struct {
	*BaseHandler
	extractor extraction.Extractor
}

// NewExtractionHandler creates an extraction handler.
func NewExtractionHandler(base *BaseHandler, extractor extraction.Extractor) *ExtractionHandler {
	return &ExtractionHandler{BaseHandler: base, extractor: extractor}
}

// Extract accepts a multipart "document" upload and returns product
// candidates for review. Nothing is written to the catalog here.
func (h *ExtractionHandler) Extract(c *gin.Context) {
	if h.extractor == nil {
		h.Error(c, apperror.NewNotFound("extraction", "disabled"))
		return
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		h.Error(c, apperror.NewValidation("document file is required").WithDetail("error", err.Error()))
		return
	}
	if fileHeader.Size > maxDocumentSize {
		h.Error(c, apperror.NewValidation("document too large").WithDetail("max_bytes", maxDocumentSize))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(io.LimitReader(file, maxDocumentSize))
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	candidates, err := h.extractor.ExtractProducts(c.Request.Context(), payload, mimeType)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	h.OK(c, gin.H{"candidates": candidates})
}
