package backoffice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
	"tokopos/internal/domain/backoffice"
	"tokopos/internal/domain/catalog"
	"tokopos/internal/domain/ledger"
	"tokopos/internal/domain/reconcile"
	"tokopos/internal/infrastructure/storage/memory"
	"tokopos/pkg/numerator"
)

type auditCall struct {
	entityType string
	action     string
}

// recordingAudit captures audit calls; fail makes every call error.
type recordingAudit struct {
	calls []auditCall
	fail  bool
}

func (a *recordingAudit) RecordOperation(ctx context.Context, entityType string, entityID id.ID, action string, details map[string]any) error {
	a.calls = append(a.calls, auditCall{entityType: entityType, action: action})
	if a.fail {
		return errors.New("audit sink unavailable")
	}
	return nil
}

type officeFixture struct {
	office   *backoffice.Facade
	products *memory.ProductRepo
	sales    *memory.SaleRepo
	audit    *recordingAudit
}

func newOffice(t *testing.T) *officeFixture {
	t.Helper()
	store := memory.NewStore()
	products := memory.NewProductRepo(store)
	sales := memory.NewSaleRepo(store)
	txm := memory.NewTxManager(store)
	numbers := numerator.NewTransactionNumberer(numerator.NewMemory())
	engine := ledger.NewEngine(sales, products, txm, numbers, nil)
	catalogSvc := catalog.NewService(products, nil)
	job := reconcile.NewJob(sales, products)
	audit := &recordingAudit{}
	return &officeFixture{
		office:   backoffice.New(engine, catalogSvc, job, audit),
		products: products,
		sales:    sales,
		audit:    audit,
	}
}

func (f *officeFixture) addProduct(t *testing.T, name, price, cost string, stock int) *catalog.Product {
	t.Helper()
	p := catalog.NewProduct(name, types.MustMoney(price), types.MustMoney(cost), stock)
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func TestRecordSale_Success(t *testing.T) {
	f := newOffice(t)
	coffee := f.addProduct(t, "Kopi Susu", "10000", "7000", 10)

	res := f.office.RecordSale(context.Background(), []ledger.CartLine{
		{ProductID: coffee.ID, UnitPrice: types.MustMoney("10000"), Quantity: 2},
	}, types.Zero(), time.Now())

	assert.True(t, res.Succeeded())
	assert.Equal(t, "transaction recorded", res.Message)
	assert.Equal(t, 1, res.Count)
	require.NotNil(t, res.Sale)

	require.Len(t, f.audit.calls, 1)
	assert.Equal(t, auditCall{entityType: "sale", action: "create"}, f.audit.calls[0])
}

func TestRecordSale_ReportsSkippedLines(t *testing.T) {
	f := newOffice(t)
	coffee := f.addProduct(t, "Kopi Susu", "10000", "7000", 10)

	res := f.office.RecordSale(context.Background(), []ledger.CartLine{
		{ProductID: coffee.ID, UnitPrice: types.MustMoney("10000"), Quantity: 1},
		{ProductID: id.Nil(), ProductName: "ghost", UnitPrice: types.MustMoney("1"), Quantity: 1},
	}, types.Zero(), time.Now())

	assert.True(t, res.Succeeded())
	assert.Equal(t, "transaction recorded, 1 unknown item(s) skipped", res.Message)
}

func TestRecordSale_BusinessErrorKeepsMessage(t *testing.T) {
	f := newOffice(t)

	res := f.office.RecordSale(context.Background(), nil, types.Zero(), time.Now())

	assert.False(t, res.Succeeded())
	assert.Equal(t, "cart has no valid line items", res.Message)
	assert.Nil(t, res.Sale)
	assert.Empty(t, f.audit.calls)
}

type brokenNumberer struct{}

func (brokenNumberer) NextTransactionNumber(ctx context.Context) (string, error) {
	return "", errors.New("sequences table missing")
}

func TestRecordSale_UnknownErrorCollapsesToStorageMessage(t *testing.T) {
	store := memory.NewStore()
	products := memory.NewProductRepo(store)
	sales := memory.NewSaleRepo(store)
	engine := ledger.NewEngine(sales, products, memory.NewTxManager(store), brokenNumberer{}, nil)
	office := backoffice.New(engine, catalog.NewService(products, nil), reconcile.NewJob(sales, products), nil)

	ctx := context.Background()
	coffee := catalog.NewProduct("Kopi Susu", types.MustMoney("10000"), types.MustMoney("7000"), 10)
	require.NoError(t, products.Create(ctx, coffee))

	res := office.RecordSale(ctx, []ledger.CartLine{
		{ProductID: coffee.ID, UnitPrice: types.MustMoney("10000"), Quantity: 1},
	}, types.Zero(), time.Now())

	assert.False(t, res.Succeeded())
	// Internals never leak into the user-facing message.
	assert.Equal(t, "a storage failure occurred, please retry", res.Message)
}

func TestDeleteSale(t *testing.T) {
	f := newOffice(t)
	ctx := context.Background()
	coffee := f.addProduct(t, "Kopi Susu", "10000", "7000", 10)

	recorded := f.office.RecordSale(ctx, []ledger.CartLine{
		{ProductID: coffee.ID, UnitPrice: types.MustMoney("10000"), Quantity: 4},
	}, types.Zero(), time.Now())
	require.True(t, recorded.Succeeded())

	res := f.office.DeleteSale(ctx, recorded.Sale.ID)
	assert.True(t, res.Succeeded())
	assert.Equal(t, "transaction deleted, stock restored", res.Message)

	p, err := f.products.GetByID(ctx, coffee.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Stock)
}

func TestDeleteSale_NotFound(t *testing.T) {
	f := newOffice(t)

	res := f.office.DeleteSale(context.Background(), id.New())
	assert.False(t, res.Succeeded())
	assert.Equal(t, "sale not found", res.Message)

	res = f.office.DeleteSale(context.Background(), id.Nil())
	assert.False(t, res.Succeeded())
	assert.Equal(t, "sale id is required", res.Message)
}

func TestCreateProducts(t *testing.T) {
	f := newOffice(t)

	res := f.office.CreateProducts(context.Background(), []*catalog.Product{
		catalog.NewProduct("A", types.MustMoney("100"), types.MustMoney("50"), 1),
		catalog.NewProduct("B", types.MustMoney("200"), types.MustMoney("120"), 2),
	})
	assert.True(t, res.Succeeded())
	assert.Equal(t, "2 product(s) created", res.Message)
	assert.Equal(t, 2, res.Count)

	empty := f.office.CreateProducts(context.Background(), nil)
	assert.False(t, empty.Succeeded())
	assert.Equal(t, "no products to create", empty.Message)
}

func TestUpdateProducts_EmptyPatch(t *testing.T) {
	f := newOffice(t)
	coffee := f.addProduct(t, "Kopi Susu", "10000", "7000", 10)

	res := f.office.UpdateProducts(context.Background(), []id.ID{coffee.ID}, catalog.Patch{})
	assert.False(t, res.Succeeded())
	assert.Equal(t, "no fields to update", res.Message)
}

func TestSynchronizeCostPrices_Message(t *testing.T) {
	f := newOffice(t)
	ctx := context.Background()
	coffee := f.addProduct(t, "Kopi Susu", "10000", "7000", 10)

	recorded := f.office.RecordSale(ctx, []ledger.CartLine{
		{ProductID: coffee.ID, UnitPrice: types.MustMoney("10000"), Quantity: 1},
	}, types.Zero(), time.Now())
	require.True(t, recorded.Succeeded())

	coffee.CostPrice = types.MustMoney("7500")
	require.NoError(t, f.products.Update(ctx, coffee))

	res := f.office.SynchronizeCostPrices(ctx)
	assert.True(t, res.Succeeded())
	assert.Equal(t, "1 sale(s) updated, 0 unchanged", res.Message)
	assert.Equal(t, 1, res.Updated)
}

func TestAuditFailureDoesNotFailOperation(t *testing.T) {
	f := newOffice(t)
	f.audit.fail = true
	coffee := f.addProduct(t, "Kopi Susu", "10000", "7000", 10)

	res := f.office.RecordSale(context.Background(), []ledger.CartLine{
		{ProductID: coffee.ID, UnitPrice: types.MustMoney("10000"), Quantity: 1},
	}, types.Zero(), time.Now())

	assert.True(t, res.Succeeded())
}
