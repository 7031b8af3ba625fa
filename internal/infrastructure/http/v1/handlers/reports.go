package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"tokopos/internal/core/apperror"
	"tokopos/internal/domain/reports"
	"tokopos/internal/infrastructure/cache"
	"tokopos/pkg/logger"
)

// ReportsHandler handles reporting endpoints.
type ReportsHandler struct {
	*BaseHandler
	reports *reports.Service
	views   ViewCache
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(base *BaseHandler, svc *reports.Service, views ViewCache) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, reports: svc, views: views}
}

// Activity returns the merged sales+expenses feed, date descending.
func (h *ReportsHandler) Activity(c *gin.Context) {
	filter := reports.ActivityFilter{
		Kind:  reports.ActivityKind(c.Query("kind")),
		Limit: h.ParseIntQuery(c, "limit", 0),
	}

	var err error
	if filter.From, err = parseOptionalDate(c.Query("from")); err != nil {
		h.Error(c, err)
		return
	}
	if filter.To, err = parseOptionalDate(c.Query("to")); err != nil {
		h.Error(c, err)
		return
	}

	entries, err := h.reports.ActivityFeed(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entries)
}

// Summary returns date-bucketed revenue, cost, profit and expenses.
// Rendered summaries are cached per range; ledger and expense
// mutations drop them through the invalidator.
func (h *ReportsHandler) Summary(c *gin.Context) {
	from, to, ok := h.requireRange(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	key := cache.ReportsKey("summary:" + from.UTC().Format(time.RFC3339) + ":" + to.UTC().Format(time.RFC3339))

	var cached reports.Summary
	if hit, err := h.views.GetJSON(ctx, key, &cached); err != nil {
		logger.Warn(ctx, "reports view cache read failed", "key", key, "error", err)
	} else if hit {
		h.OK(c, &cached)
		return
	}

	summary, err := h.reports.Summary(ctx, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.views.SetJSON(ctx, key, summary); err != nil {
		logger.Warn(ctx, "reports view cache write failed", "key", key, "error", err)
	}
	h.OK(c, summary)
}

// TopProducts returns best sellers by summed quantity.
func (h *ReportsHandler) TopProducts(c *gin.Context) {
	from, to, ok := h.requireRange(c)
	if !ok {
		return
	}

	top, err := h.reports.TopProducts(c.Request.Context(), from, to, h.ParseIntQuery(c, "limit", 5))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, top)
}

func (h *ReportsHandler) requireRange(c *gin.Context) (time.Time, time.Time, bool) {
	from, err := parseDate(c.Query("from"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid or missing 'from' date").WithDetail("from", c.Query("from")))
		return time.Time{}, time.Time{}, false
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid or missing 'to' date").WithDetail("to", c.Query("to")))
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// parseDate accepts RFC3339 or plain YYYY-MM-DD.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := parseDate(raw)
	if err != nil {
		return nil, apperror.NewValidation("invalid date").WithDetail("value", raw)
	}
	return &t, nil
}
