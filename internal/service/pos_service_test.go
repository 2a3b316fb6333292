package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pos-sync/internal/config"
	"go-pos-sync/internal/model"
	"go-pos-sync/internal/store"
	"go-pos-sync/pkg/database"
)

type fakeNotifier struct{ signals int }

func (f *fakeNotifier) NotifyLocalChange() { f.signals++ }

type fakeBroadcaster struct{ ids []string }

func (f *fakeBroadcaster) ProductChanged(id string) { f.ids = append(f.ids, id) }

func newTestService(t *testing.T) (POSService, *store.Local, *fakeNotifier) {
	t.Helper()
	cfg := config.Local{Path: filepath.Join(t.TempDir(), "pos.db"), BusyTimeout: 5000}
	db, err := database.OpenLocal(cfg.DSN())
	require.NoError(t, err)
	local, err := store.NewLocal(db)
	require.NoError(t, err)
	notifier := &fakeNotifier{}
	return NewPOSService(local, notifier, &fakeBroadcaster{}), local, notifier
}

func seedProduct(t *testing.T, svc POSService, sku string, price int64, stock int) *model.Product {
	t.Helper()
	p := &model.Product{SKU: sku, Name: "Produk " + sku, Price: price, Stock: stock, StockStatus: model.StockInStock}
	require.NoError(t, svc.CreateProduct(p))
	return p
}

func TestCheckoutIsAtomic(t *testing.T) {
	svc, local, notifier := newTestService(t)

	p := seedProduct(t, svc, "SKU-CO-1", 15000, 10)
	_, err := svc.AddToCart("till-1", p.ID, 2)
	require.NoError(t, err)

	before := notifier.signals
	sale, err := svc.Checkout("till-1", model.PayCash)
	require.NoError(t, err)

	assert.Equal(t, model.SaleCompleted, sale.Status)
	assert.Equal(t, int64(30000), sale.Total)
	assert.Equal(t, 2, sale.ItemCount)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, "Produk SKU-CO-1", sale.Items[0].ProductName)
	assert.Greater(t, notifier.signals, before, "checkout must wake the coordinator")

	stored, err := local.GetProduct(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, stored.Stock)

	items, total, err := svc.GetCart("till-1")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)

	dirty, err := local.DirtySales()
	require.NoError(t, err)
	require.Len(t, dirty, 1, "new sales queue for push")
}

func TestCheckoutInsufficientStockRollsBack(t *testing.T) {
	svc, local, _ := newTestService(t)

	p := seedProduct(t, svc, "SKU-CO-2", 5000, 5)
	_, err := svc.AddToCart("till-2", p.ID, 5)
	require.NoError(t, err)

	// shrink stock behind the cart's back
	stored, err := local.GetProduct(p.ID)
	require.NoError(t, err)
	stored.Stock = 1
	require.NoError(t, local.UpdateProduct(stored))

	_, err = svc.Checkout("till-2", model.PayCash)
	assert.ErrorIs(t, err, store.ErrInsufficientStock)

	after, err := local.GetProduct(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Stock, "failed checkout must not move stock")

	items, _, err := svc.GetCart("till-2")
	require.NoError(t, err)
	assert.Len(t, items, 1, "failed checkout keeps the cart")

	sales, err := svc.ListSales(time.Time{}, 0)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Checkout("till-empty", model.PayCash)
	assert.ErrorIs(t, err, store.ErrEmptyCart)
}

func TestCheckoutRejectsUnknownPayment(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Checkout("till-x", model.PaymentMethod("crypto"))
	assert.ErrorIs(t, err, ErrBadPayment)
}

func TestCheckoutSnapshotsCurrentPrice(t *testing.T) {
	svc, _, _ := newTestService(t)

	p := seedProduct(t, svc, "SKU-CO-3", 10000, 10)
	_, err := svc.AddToCart("till-3", p.ID, 1)
	require.NoError(t, err)

	// price changes between carting and checkout; the register rings up
	// the current price
	_, err = svc.UpdateProduct(p.ID, &model.Product{Name: p.Name, Price: 12500, Stock: 10})
	require.NoError(t, err)

	sale, err := svc.Checkout("till-3", model.PayCard)
	require.NoError(t, err)
	assert.Equal(t, int64(12500), sale.Items[0].UnitPrice)
	assert.Equal(t, int64(12500), sale.Total)
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	svc, _, _ := newTestService(t)

	p := seedProduct(t, svc, "SKU-DUP", 1000, 1)
	err := svc.CreateProduct(&model.Product{SKU: "SKU-DUP", Name: "Lain", Price: 1, StockStatus: model.StockInStock})
	assert.ErrorIs(t, err, ErrSKUTaken)

	// a tombstone releases its SKU
	require.NoError(t, svc.DeleteProduct(p.ID))
	err = svc.CreateProduct(&model.Product{SKU: "SKU-DUP", Name: "Baru", Price: 1, StockStatus: model.StockInStock})
	assert.NoError(t, err)
}

func TestAddToCartUnknownProduct(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.AddToCart("till-4", uuid.New(), 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpdateCartQuantityZeroRemoves(t *testing.T) {
	svc, _, _ := newTestService(t)

	p := seedProduct(t, svc, "SKU-CO-4", 2000, 10)
	item, err := svc.AddToCart("till-5", p.ID, 2)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateCartQuantity(item.ID, 0))

	items, _, err := svc.GetCart("till-5")
	require.NoError(t, err)
	assert.Empty(t, items)
}
