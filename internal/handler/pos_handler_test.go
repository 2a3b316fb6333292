package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pos-sync/internal/service"
	"go-pos-sync/internal/store"
)

func newPOSApp(t *testing.T) (*fiber.App, *store.Local) {
	t.Helper()
	local := newTestLocal(t)
	h := NewPOSHandler(service.NewPOSService(local, nil, nil))

	app := fiber.New()
	api := app.Group("/api/v1")
	api.Get("/products", h.GetProducts)
	api.Post("/products", h.CreateProduct)
	api.Get("/products/:id", h.GetProduct)
	api.Put("/products/:id", h.UpdateProduct)
	api.Delete("/products/:id", h.DeleteProduct)
	api.Get("/cart/:session", h.GetCart)
	api.Post("/cart", h.AddToCart)
	api.Put("/cart/:id", h.UpdateCartItem)
	api.Delete("/cart/:id", h.RemoveCartItem)
	api.Post("/checkout", h.Checkout)
	api.Get("/sales", h.GetSales)
	api.Get("/sales/:id", h.GetSale)
	api.Post("/sales/:id/cancel", h.CancelSale)
	return app, local
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var parsed map[string]any
	if len(raw) > 0 && (raw[0] == '{') {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return res.StatusCode, parsed
}

func createProductHTTP(t *testing.T, app *fiber.App, sku string, price int64, stock int) string {
	t.Helper()
	payload := fmt.Sprintf(`{"sku":%q,"name":"Produk %s","price":%d,"stock":%d}`, sku, sku, price, stock)
	status, body := doJSON(t, app, "POST", "/api/v1/products", payload)
	require.Equal(t, 201, status, "create product: %v", body)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	id, _ := data["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestProductLifecycleOverHTTP(t *testing.T) {
	app, _ := newPOSApp(t)
	id := createProductHTTP(t, app, "HTTP-1", 12000, 4)

	status, body := doJSON(t, app, "GET", "/api/v1/products/"+id, "")
	require.Equal(t, 200, status)
	assert.Equal(t, "HTTP-1", body["sku"])

	status, body = doJSON(t, app, "PUT", "/api/v1/products/"+id,
		`{"sku":"HTTP-1","name":"Produk HTTP-1 v2","price":13000,"stock":4}`)
	require.Equal(t, 200, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Produk HTTP-1 v2", data["name"])
	assert.EqualValues(t, 13000, data["price"])

	status, _ = doJSON(t, app, "DELETE", "/api/v1/products/"+id, "")
	require.Equal(t, 200, status)

	status, _ = doJSON(t, app, "GET", "/api/v1/products/"+id, "")
	assert.Equal(t, 404, status)
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	app, _ := newPOSApp(t)
	createProductHTTP(t, app, "HTTP-DUP", 5000, 1)

	status, _ := doJSON(t, app, "POST", "/api/v1/products",
		`{"sku":"HTTP-DUP","name":"Kembar","price":5000,"stock":1}`)
	assert.Equal(t, 409, status)
}

func TestCartCheckoutAndCancelOverHTTP(t *testing.T) {
	app, _ := newPOSApp(t)
	id := createProductHTTP(t, app, "HTTP-CO", 2500, 10)

	status, _ := doJSON(t, app, "POST", "/api/v1/cart",
		fmt.Sprintf(`{"session_id":"till-9","product_id":%q,"quantity":3}`, id))
	require.Equal(t, 201, status)

	status, body := doJSON(t, app, "GET", "/api/v1/cart/till-9", "")
	require.Equal(t, 200, status)
	assert.EqualValues(t, 7500, body["total"])
	assert.Len(t, body["items"], 1)

	status, body = doJSON(t, app, "POST", "/api/v1/checkout",
		`{"session_id":"till-9","payment_method":"cash"}`)
	require.Equal(t, 201, status, "checkout: %v", body)
	sale := body["data"].(map[string]any)
	assert.EqualValues(t, 7500, sale["total"])
	saleID, _ := sale["id"].(string)
	require.NotEmpty(t, saleID)

	status, body = doJSON(t, app, "GET", "/api/v1/products/"+id, "")
	require.Equal(t, 200, status)
	assert.EqualValues(t, 7, body["stock"])

	status, body = doJSON(t, app, "GET", "/api/v1/cart/till-9", "")
	require.Equal(t, 200, status)
	assert.Empty(t, body["items"])

	status, _ = doJSON(t, app, "POST", "/api/v1/sales/"+saleID+"/cancel", "")
	require.Equal(t, 200, status)

	status, body = doJSON(t, app, "GET", "/api/v1/products/"+id, "")
	require.Equal(t, 200, status)
	assert.EqualValues(t, 10, body["stock"], "cancellation returns stock")

	status, body = doJSON(t, app, "GET", "/api/v1/sales/"+saleID, "")
	require.Equal(t, 200, status)
	assert.Equal(t, "cancelled", body["status"])

	// cancelling twice is final
	status, _ = doJSON(t, app, "POST", "/api/v1/sales/"+saleID+"/cancel", "")
	assert.Equal(t, 409, status)
}

func TestCheckoutRejectsEmptyCartAndBadPayment(t *testing.T) {
	app, _ := newPOSApp(t)
	id := createProductHTTP(t, app, "HTTP-PAY", 1000, 5)

	status, _ := doJSON(t, app, "POST", "/api/v1/checkout",
		`{"session_id":"till-empty","payment_method":"cash"}`)
	assert.Equal(t, 400, status)

	_, _ = doJSON(t, app, "POST", "/api/v1/cart",
		fmt.Sprintf(`{"session_id":"till-pay","product_id":%q,"quantity":1}`, id))
	status, _ = doJSON(t, app, "POST", "/api/v1/checkout",
		`{"session_id":"till-pay","payment_method":"bitcoin"}`)
	assert.Equal(t, 400, status)
}

func TestMalformedIDsAndQueriesRejected(t *testing.T) {
	app, _ := newPOSApp(t)

	status, _ := doJSON(t, app, "GET", "/api/v1/products/not-a-uuid", "")
	assert.Equal(t, 400, status)

	status, _ = doJSON(t, app, "PUT", "/api/v1/cart/not-a-uuid", `{"quantity":2}`)
	assert.Equal(t, 400, status)

	status, _ = doJSON(t, app, "GET", "/api/v1/sales?since=yesterday", "")
	assert.Equal(t, 400, status)
}
