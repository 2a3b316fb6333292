package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-pos-sync/internal/model"
	"go-pos-sync/internal/store"
	"go-pos-sync/pkg/validator"
)

var (
	ErrSKUTaken        = errors.New("sku already exists")
	ErrProductNotFound = errors.New("product not found")
	ErrBadPayment      = errors.New("unknown payment method")
)

// Notifier wakes the sync coordinator after a tracked write.
type Notifier interface {
	NotifyLocalChange()
}

// Broadcaster pushes change events to connected screens.
type Broadcaster interface {
	ProductChanged(id string)
}

type POSService interface {
	ListProducts() ([]model.Product, error)
	GetProduct(id uuid.UUID) (*model.Product, error)
	CreateProduct(p *model.Product) error
	UpdateProduct(id uuid.UUID, p *model.Product) (*model.Product, error)
	DeleteProduct(id uuid.UUID) error

	GetCart(sessionID string) ([]model.CartItem, int64, error)
	AddToCart(sessionID string, productID uuid.UUID, quantity int) (*model.CartItem, error)
	UpdateCartQuantity(itemID uuid.UUID, quantity int) error
	RemoveFromCart(itemID uuid.UUID) error

	Checkout(sessionID string, payment model.PaymentMethod) (*model.Sale, error)
	GetSale(id uuid.UUID) (*model.Sale, error)
	ListSales(since time.Time, limit int) ([]model.Sale, error)
	CancelSale(id uuid.UUID) error
}

type posService struct {
	local    *store.Local
	notifier Notifier
	hub      Broadcaster
}

func NewPOSService(local *store.Local, notifier Notifier, hub Broadcaster) POSService {
	return &posService{local: local, notifier: notifier, hub: hub}
}

func (s *posService) changed(productID string) {
	if s.notifier != nil {
		s.notifier.NotifyLocalChange()
	}
	if s.hub != nil && productID != "" {
		s.hub.ProductChanged(productID)
	}
}

func (s *posService) ListProducts() ([]model.Product, error) {
	return s.local.ListProducts()
}

func (s *posService) GetProduct(id uuid.UUID) (*model.Product, error) {
	p, err := s.local.GetProduct(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *posService) CreateProduct(p *model.Product) error {
	if errs := validator.ValidateStruct(p); len(errs) > 0 {
		return errors.New(errs[0].Error())
	}
	// SKU must be unique among live products; tombstones may hold it
	existing, err := s.local.GetProductBySKU(p.SKU)
	if err == nil && existing.ID != uuid.Nil {
		return ErrSKUTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err := s.local.CreateProduct(p); err != nil {
		return err
	}
	s.changed(p.ID.String())
	return nil
}

func (s *posService) UpdateProduct(id uuid.UUID, req *model.Product) (*model.Product, error) {
	existing, err := s.local.GetProduct(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.SKU != "" && req.SKU != existing.SKU {
		dup, err := s.local.GetProductBySKU(req.SKU)
		if err == nil && dup.ID != id {
			return nil, ErrSKUTaken
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		existing.SKU = req.SKU
	}
	existing.Name = req.Name
	existing.Price = req.Price
	existing.Stock = req.Stock
	if req.StockStatus != "" {
		existing.StockStatus = req.StockStatus
	}
	existing.Category = req.Category
	existing.Unit = req.Unit

	if errs := validator.ValidateStruct(existing); len(errs) > 0 {
		return nil, errors.New(errs[0].Error())
	}
	if err := s.local.UpdateProduct(existing); err != nil {
		return nil, err
	}
	s.changed(existing.ID.String())
	return existing, nil
}

func (s *posService) DeleteProduct(id uuid.UUID) error {
	if err := s.local.SoftDeleteProduct(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.changed(id.String())
	return nil
}

func (s *posService) GetCart(sessionID string) ([]model.CartItem, int64, error) {
	items, err := s.local.ListCart(sessionID)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	for _, item := range items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return items, total, nil
}

func (s *posService) AddToCart(sessionID string, productID uuid.UUID, quantity int) (*model.CartItem, error) {
	if quantity <= 0 {
		quantity = 1
	}
	product, err := s.local.GetProduct(productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, store.ErrInsufficientStock
	}

	item := &model.CartItem{
		SessionID:   sessionID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.Price,
	}
	if errs := validator.ValidateStruct(item); len(errs) > 0 {
		return nil, errors.New(errs[0].Error())
	}
	if err := s.local.AddCartItem(item); err != nil {
		return nil, err
	}
	s.changed("")
	return item, nil
}

func (s *posService) UpdateCartQuantity(itemID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return s.RemoveFromCart(itemID)
	}
	if err := s.local.UpdateCartQuantity(itemID, quantity); err != nil {
		return err
	}
	s.changed("")
	return nil
}

func (s *posService) RemoveFromCart(itemID uuid.UUID) error {
	if err := s.local.RemoveCartItem(itemID); err != nil {
		return err
	}
	s.changed("")
	return nil
}

// Checkout turns a session's cart into a completed sale in one local
// transaction: stock moves, the cart empties and the sale lands together or
// not at all. Prices and names are snapshotted at this moment; later product
// edits never rewrite a receipt.
func (s *posService) Checkout(sessionID string, payment model.PaymentMethod) (*model.Sale, error) {
	switch payment {
	case model.PayCash, model.PayCard, model.PayTransfer, model.PayMixed:
	default:
		return nil, ErrBadPayment
	}

	var sale *model.Sale
	err := s.local.Transaction(func(tx *gorm.DB) error {
		var items []model.CartItem
		if err := tx.Where("session_id = ?", sessionID).Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return store.ErrEmptyCart
		}

		sale = &model.Sale{
			SessionID:     sessionID,
			Status:        model.SaleCompleted,
			PaymentMethod: payment,
		}
		for _, item := range items {
			var product model.Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return err
			}
			if product.Stock < item.Quantity {
				return store.ErrInsufficientStock
			}
			if err := store.AdjustStockTx(tx, product.ID, -item.Quantity); err != nil {
				return err
			}
			subtotal := product.Price * int64(item.Quantity)
			sale.Items = append(sale.Items, model.SaleItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				UnitPrice:   product.Price,
				Subtotal:    subtotal,
			})
			sale.Total += subtotal
			sale.ItemCount += item.Quantity
		}

		if err := store.CreateSaleTx(tx, sale); err != nil {
			return err
		}
		return store.ClearCartTx(tx, sessionID)
	})
	if err != nil {
		return nil, err
	}
	s.changed("")
	return sale, nil
}

func (s *posService) GetSale(id uuid.UUID) (*model.Sale, error) {
	return s.local.GetSale(id)
}

func (s *posService) ListSales(since time.Time, limit int) ([]model.Sale, error) {
	return s.local.ListSales(since, limit)
}

func (s *posService) CancelSale(id uuid.UUID) error {
	if err := s.local.CancelSale(id); err != nil {
		return err
	}
	s.changed("")
	return nil
}
