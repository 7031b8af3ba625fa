package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokopos/internal/core/types"
	"tokopos/internal/domain/backoffice"
	"tokopos/internal/domain/catalog"
	"tokopos/internal/domain/expense"
	"tokopos/internal/domain/ledger"
	"tokopos/internal/domain/reconcile"
	"tokopos/internal/domain/reports"
	"tokopos/internal/infrastructure/cache"
	v1 "tokopos/internal/infrastructure/http/v1"
	"tokopos/internal/infrastructure/http/v1/middleware"
	"tokopos/internal/infrastructure/storage/memory"
	"tokopos/pkg/logger"
	"tokopos/pkg/numerator"
)

const apiSecret = "router-test-secret"

// fakeViews is an in-memory stand-in for the Redis view cache.
type fakeViews struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeViews() *fakeViews {
	return &fakeViews{entries: make(map[string][]byte)}
}

func (f *fakeViews) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (f *fakeViews) SetJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = data
	return nil
}

func (f *fakeViews) InvalidateCatalog(ctx context.Context) error {
	f.dropPrefix(cache.CatalogKey(""))
	return nil
}

func (f *fakeViews) InvalidateReports(ctx context.Context) error {
	f.dropPrefix(cache.ReportsKey(""))
	return nil
}

func (f *fakeViews) dropPrefix(prefix string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.entries {
		if strings.HasPrefix(key, prefix) {
			delete(f.entries, key)
		}
	}
}

func (f *fakeViews) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[key]
	return ok
}

type apiFixture struct {
	router   http.Handler
	products *memory.ProductRepo
	views    *fakeViews
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()

	store := memory.NewStore()
	products := memory.NewProductRepo(store)
	sales := memory.NewSaleRepo(store)
	expenses := memory.NewExpenseRepo(store)
	txm := memory.NewTxManager(store)
	numbers := numerator.NewTransactionNumberer(numerator.NewMemory())
	views := newFakeViews()

	engine := ledger.NewEngine(sales, products, txm, numbers, views)
	catalogSvc := catalog.NewService(products, views)
	office := backoffice.New(engine, catalogSvc, reconcile.NewJob(sales, products), nil)

	log, err := logger.New(logger.Config{Level: "error"})
	require.NoError(t, err)

	router := v1.NewRouter(v1.RouterConfig{
		Logger:         log,
		TokenValidator: middleware.NewTokenValidator(apiSecret),
		Catalog:        catalogSvc,
		Engine:         engine,
		Expenses:       expense.NewService(expenses),
		Reports:        reports.NewService(sales, expenses),
		Office:         office,
		ViewCache:      views,
	})
	return &apiFixture{router: router, products: products, views: views}
}

func token(t *testing.T, role string) string {
	t.Helper()
	claims := middleware.Claims{
		Username: "tester",
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(apiSecret))
	require.NoError(t, err)
	return signed
}

func (f *apiFixture) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpointsSkipAuth(t *testing.T) {
	f := newAPI(t)

	w := f.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIRequiresAuth(t *testing.T) {
	f := newAPI(t)

	w := f.do(t, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecordSaleOverHTTP(t *testing.T) {
	f := newAPI(t)
	cashier := token(t, "cashier")

	created := f.do(t, http.MethodPost, "/api/v1/products", cashier, map[string]any{
		"name":      "Kopi Susu",
		"price":     "10000",
		"costPrice": "7000",
		"stock":     10,
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	var product struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &product))

	w := f.do(t, http.MethodPost, "/api/v1/sales", cashier, map[string]any{
		"items": []map[string]any{
			{"productId": product.ID, "unitPrice": "10000", "quantity": 2},
		},
		"discountPercentage": "10",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res struct {
		Success bool `json:"success"`
		Sale    struct {
			ID            string      `json:"id"`
			TransactionID string      `json:"transactionId"`
			Total         types.Money `json:"total"`
		} `json:"sale"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.True(t, res.Sale.Total.Equal(types.MustMoney("18000")))
	year := time.Now().UTC().Format("2006")
	assert.Equal(t, fmt.Sprintf("TRX-%s-00001", year), res.Sale.TransactionID)
}

func TestRecordSaleEmptyCartIs422(t *testing.T) {
	f := newAPI(t)
	cashier := token(t, "cashier")

	w := f.do(t, http.MethodPost, "/api/v1/sales", cashier, map[string]any{
		"items": []map[string]any{
			{"productId": "not-a-uuid", "unitPrice": "1", "quantity": 1},
		},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var res struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.False(t, res.Success)
	assert.Equal(t, "cart has no valid line items", res.Message)
}

func TestDeleteSaleIsAdminOnly(t *testing.T) {
	f := newAPI(t)
	cashier := token(t, "cashier")
	admin := token(t, "admin")

	created := f.do(t, http.MethodPost, "/api/v1/products", admin, map[string]any{
		"name": "Kopi Susu", "price": "10000", "costPrice": "7000", "stock": 10,
	})
	require.Equal(t, http.StatusCreated, created.Code)
	var product struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &product))

	sold := f.do(t, http.MethodPost, "/api/v1/sales", cashier, map[string]any{
		"items": []map[string]any{{"productId": product.ID, "unitPrice": "10000", "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, sold.Code)
	var res struct {
		Sale struct {
			ID string `json:"id"`
		} `json:"sale"`
	}
	require.NoError(t, json.Unmarshal(sold.Body.Bytes(), &res))

	w := f.do(t, http.MethodDelete, "/api/v1/sales/"+res.Sale.ID, cashier, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodDelete, "/api/v1/sales/"+res.Sale.ID, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestBatchRoutes(t *testing.T) {
	f := newAPI(t)
	admin := token(t, "admin")

	w := f.do(t, http.MethodPost, "/api/v1/products/batch", admin, map[string]any{
		"products": []map[string]any{
			{"name": "A", "price": "100", "costPrice": "50", "stock": 1},
			{"name": "B", "price": "200", "costPrice": "120", "stock": 2},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Count)

	// A malformed id fails the whole batch before anything runs.
	w = f.do(t, http.MethodPost, "/api/v1/products/batch/update", admin, map[string]any{
		"ids":   []string{"oops"},
		"patch": map[string]any{"price": "150"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchDeleteIsAdminOnly(t *testing.T) {
	f := newAPI(t)
	cashier := token(t, "cashier")

	w := f.do(t, http.MethodPost, "/api/v1/products/batch/delete", cashier, map[string]any{
		"ids": []string{},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReportsSummaryRequiresRange(t *testing.T) {
	f := newAPI(t)
	cashier := token(t, "cashier")

	w := f.do(t, http.MethodGet, "/api/v1/reports/summary", cashier, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/reports/summary?from=2026-03-01&to=2026-03-31", cashier, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestProductListServedFromViewCache(t *testing.T) {
	f := newAPI(t)
	cashier := token(t, "cashier")

	created := f.do(t, http.MethodPost, "/api/v1/products", cashier, map[string]any{
		"name": "Kopi Susu", "price": "10000", "costPrice": "7000", "stock": 10,
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	listKey := cache.CatalogKey("list")
	require.False(t, f.views.has(listKey))

	w := f.do(t, http.MethodGet, "/api/v1/products", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, f.views.has(listKey), "list response should be cached")

	// Overwrite the cached copy to prove the second read never reaches
	// the repository.
	require.NoError(t, f.views.SetJSON(context.Background(), listKey, []map[string]any{{"name": "Cached Copy"}}))
	w = f.do(t, http.MethodGet, "/api/v1/products", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cached Copy")

	// A catalog mutation drops the key; the next read rebuilds it.
	second := f.do(t, http.MethodPost, "/api/v1/products", cashier, map[string]any{
		"name": "Es Teh", "price": "5000", "costPrice": "3000", "stock": 5,
	})
	require.Equal(t, http.StatusCreated, second.Code)
	assert.False(t, f.views.has(listKey))

	w = f.do(t, http.MethodGet, "/api/v1/products", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Es Teh")
	assert.NotContains(t, w.Body.String(), "Cached Copy")
}

func TestReportsSummaryCachedPerRange(t *testing.T) {
	f := newAPI(t)
	cashier := token(t, "cashier")

	w := f.do(t, http.MethodGet, "/api/v1/reports/summary?from=2026-03-01&to=2026-03-31", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	key := cache.ReportsKey("summary:2026-03-01T00:00:00Z:2026-03-31T00:00:00Z")
	require.True(t, f.views.has(key), "summary should be cached per range")

	// Recording a sale invalidates the cached reports.
	created := f.do(t, http.MethodPost, "/api/v1/products", cashier, map[string]any{
		"name": "Kopi Susu", "price": "10000", "costPrice": "7000", "stock": 10,
	})
	require.Equal(t, http.StatusCreated, created.Code)

	var product struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &product))

	sale := f.do(t, http.MethodPost, "/api/v1/sales", cashier, map[string]any{
		"items": []map[string]any{
			{"productId": product.ID, "unitPrice": "10000", "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, sale.Code, sale.Body.String())
	assert.False(t, f.views.has(key))
}

func TestExtractionDisabledWithoutProvider(t *testing.T) {
	f := newAPI(t)
	cashier := token(t, "cashier")

	w := f.do(t, http.MethodPost, "/api/v1/extraction/products", cashier, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
