package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-pos-sync/internal/model"
	"go-pos-sync/internal/service"
	"go-pos-sync/internal/store"
)

type POSHandler struct {
	service service.POSService
}

func NewPOSHandler(s service.POSService) *POSHandler {
	return &POSHandler{service: s}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrProductNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return 404
	case errors.Is(err, service.ErrSKUTaken),
		errors.Is(err, store.ErrInsufficientStock),
		errors.Is(err, store.ErrSaleFinal):
		return 409
	case errors.Is(err, store.ErrEmptyCart), errors.Is(err, service.ErrBadPayment):
		return 400
	}
	return 500
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}

func (h *POSHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(products)
}

func (h *POSHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	product, err := h.service.GetProduct(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(product)
}

func (h *POSHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if err := h.service.CreateProduct(&product); err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *POSHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	var req model.Product
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	updated, err := h.service.UpdateProduct(id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *POSHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	if err := h.service.DeleteProduct(id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

func (h *POSHandler) GetCart(c *fiber.Ctx) error {
	session := c.Params("session")
	items, total, err := h.service.GetCart(session)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"items": items, "total": total})
}

type addCartRequest struct {
	SessionID string    `json:"session_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

func (h *POSHandler) AddToCart(c *fiber.Ctx) error {
	var req addCartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.SessionID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "session_id is required"})
	}
	item, err := h.service.AddToCart(req.SessionID, req.ProductID, req.Quantity)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Added to cart", "data": item})
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

func (h *POSHandler) UpdateCartItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid cart item ID"})
	}
	var req updateCartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if err := h.service.UpdateCartQuantity(id, req.Quantity); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cart updated"})
}

func (h *POSHandler) RemoveCartItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid cart item ID"})
	}
	if err := h.service.RemoveFromCart(id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Removed from cart"})
}

type checkoutRequest struct {
	SessionID     string              `json:"session_id"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
}

func (h *POSHandler) Checkout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.SessionID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "session_id is required"})
	}
	sale, err := h.service.Checkout(req.SessionID, req.PaymentMethod)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Sale completed", "data": sale})
}

func (h *POSHandler) GetSales(c *fiber.Ctx) error {
	var since time.Time
	if v := c.Query("since"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "since must be RFC3339"})
		}
		since = parsed
	}
	limit := c.QueryInt("limit", 50)
	sales, err := h.service.ListSales(since, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(sales)
}

func (h *POSHandler) GetSale(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}
	sale, err := h.service.GetSale(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sale)
}

func (h *POSHandler) CancelSale(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}
	if err := h.service.CancelSale(id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Sale cancelled"})
}
