// internal/domain/cart/service.go
package cart

import (
	"errors"
	"fmt"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
)

var (
	ErrCartEmpty    = errors.New("cart is empty")
	ErrItemNotFound = errors.New("item not found in cart")
)

// InvalidItemsError reports the cart lines that failed verification.
// Verification is all-or-nothing: one bad line blocks the whole checkout.
type InvalidItemsError struct {
	Items []InvalidLine
}

func (e *InvalidItemsError) Error() string {
	return fmt.Sprintf("cart verification failed: %d invalid item(s)", len(e.Items))
}

// Service handles cart business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CartItemResponse represents a cart item with product details. A line
// whose product has been removed or deactivated is flagged unavailable
// rather than silently priced at zero.
type CartItemResponse struct {
	ID          uint             `json:"id"`
	ProductID   uint             `json:"product_id"`
	Variant     string           `json:"variant,omitempty"`
	Quantity    int              `json:"quantity"`
	UnitPrice   int64            `json:"unit_price"`
	Unavailable bool             `json:"unavailable,omitempty"`
	Product     *product.Product `json:"product,omitempty"`
}

// CartResponse represents a shopping cart with items and summary
type CartResponse struct {
	UserID uint               `json:"user_id"`
	Items  []CartItemResponse `json:"items"`
	Totals CartTotals         `json:"totals"`
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Variant   string `json:"variant"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// GetCart retrieves a user's cart with live product details and totals.
// Prices always reflect the catalog at read time, never a stale snapshot.
func (s *Service) GetCart(userID uint) (*CartResponse, error) {
	var dbItems []CartItem
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&dbItems).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	products, err := s.loadProducts(dbItems)
	if err != nil {
		return nil, err
	}

	return assembleCart(userID, dbItems, products), nil
}

// assembleCart resolves cart lines against the loaded products. Lines whose
// product is gone or inactive are marked unavailable and contribute nothing
// to the subtotal; checkout verification rejects them with the same rule.
func assembleCart(userID uint, dbItems []CartItem, products map[uint]product.Product) *CartResponse {
	items := make([]CartItemResponse, 0, len(dbItems))
	var totals CartTotals
	for _, item := range dbItems {
		resp := CartItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Variant:   item.Variant,
			Quantity:  item.Quantity,
		}
		if prod, ok := products[item.ProductID]; ok && prod.IsActive {
			p := prod
			resp.Product = &p
			resp.UnitPrice = p.EffectivePrice()
		} else {
			resp.Unavailable = true
		}
		items = append(items, resp)

		totals.ItemCount++
		totals.TotalQuantity += item.Quantity
		totals.SubTotal += resp.UnitPrice * int64(item.Quantity)
	}

	return &CartResponse{
		UserID: userID,
		Items:  items,
		Totals: totals,
	}
}

// AddToCart adds an item to the cart, merging quantities for an existing
// product/variant line
func (s *Service) AddToCart(userID uint, req *AddToCartRequest) (*CartResponse, error) {
	var prod product.Product
	if err := s.db.Where("id = ? AND is_active = ?", req.ProductID, true).First(&prod).Error; err != nil {
		return nil, product.ErrProductNotFound
	}

	var existing CartItem
	err := s.db.Where("user_id = ? AND product_id = ? AND variant = ?",
		userID, req.ProductID, req.Variant).First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		newQuantity := req.Quantity
		if !prod.IsInStock(newQuantity) {
			return nil, fmt.Errorf("%w: available %d", product.ErrInsufficientStock, prod.Quantity)
		}
		item := CartItem{
			UserID:    userID,
			ProductID: req.ProductID,
			Variant:   req.Variant,
			Quantity:  req.Quantity,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to look up cart item: %w", err)
	} else {
		newQuantity := existing.Quantity + req.Quantity
		if !prod.IsInStock(newQuantity) {
			return nil, fmt.Errorf("%w: available %d", product.ErrInsufficientStock, prod.Quantity)
		}
		if err := s.db.Model(&existing).Update("quantity", newQuantity).Error; err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	}

	return s.GetCart(userID)
}

// UpdateCartItem sets the quantity of a cart line, removing it at zero
func (s *Service) UpdateCartItem(userID, itemID uint, req *UpdateCartItemRequest) (*CartResponse, error) {
	var item CartItem
	if err := s.db.Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error; err != nil {
		return nil, ErrItemNotFound
	}

	if req.Quantity == 0 {
		if err := s.db.Delete(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to remove cart item: %w", err)
		}
		return s.GetCart(userID)
	}

	var prod product.Product
	if err := s.db.First(&prod, item.ProductID).Error; err != nil {
		return nil, product.ErrProductNotFound
	}
	if !prod.IsInStock(req.Quantity) {
		return nil, fmt.Errorf("%w: available %d", product.ErrInsufficientStock, prod.Quantity)
	}

	if err := s.db.Model(&item).Update("quantity", req.Quantity).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.GetCart(userID)
}

// RemoveFromCart removes a line from the cart
func (s *Service) RemoveFromCart(userID, itemID uint) (*CartResponse, error) {
	result := s.db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&CartItem{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrItemNotFound
	}
	return s.GetCart(userID)
}

// ClearCart removes all items from a user's cart
func (s *Service) ClearCart(userID uint) error {
	return s.db.Where("user_id = ?", userID).Delete(&CartItem{}).Error
}

// ClearCartTx removes all items from a user's cart inside an existing
// transaction (used during order materialization)
func ClearCartTx(tx *gorm.DB, userID uint) error {
	return tx.Where("user_id = ?", userID).Delete(&CartItem{}).Error
}

// Verify resolves every cart line against the live catalog. A line is
// invalid when its product is missing, inactive, or short on stock; any
// invalid line fails the whole verification. Verify is read-only, calling
// it repeatedly changes nothing.
func (s *Service) Verify(userID uint) ([]VerifiedLine, error) {
	var dbItems []CartItem
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&dbItems).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	if len(dbItems) == 0 {
		return nil, ErrCartEmpty
	}

	products, err := s.loadProducts(dbItems)
	if err != nil {
		return nil, err
	}

	var verified []VerifiedLine
	var invalid []InvalidLine
	for _, item := range dbItems {
		prod, ok := products[item.ProductID]
		if !ok || !prod.IsActive {
			invalid = append(invalid, InvalidLine{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Reason:    "product unavailable",
			})
			continue
		}
		if !prod.IsInStock(item.Quantity) {
			invalid = append(invalid, InvalidLine{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Reason:    "insufficient stock",
				Available: prod.Quantity,
			})
			continue
		}

		unitPrice := prod.EffectivePrice()
		verified = append(verified, VerifiedLine{
			ProductID: prod.ID,
			SKU:       prod.SKU,
			Name:      prod.Name,
			ImageURL:  prod.ImageURL,
			Variant:   item.Variant,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
			LineTotal: unitPrice * int64(item.Quantity),
		})
	}

	if len(invalid) > 0 {
		return nil, &InvalidItemsError{Items: invalid}
	}

	return verified, nil
}

func (s *Service) loadProducts(items []CartItem) (map[uint]product.Product, error) {
	if len(items) == 0 {
		return map[uint]product.Product{}, nil
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	var products []product.Product
	if err := s.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	byID := make(map[uint]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}
