// Package cart implements per-user cart line mutations bounded by stock.
package cart

import (
	"context"
	"errors"

	"github.com/ecomkit/storefront/internal/apperr"
	"github.com/ecomkit/storefront/internal/domain"
	"github.com/ecomkit/storefront/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Result is what every cart mutation returns: the affected line (when there
// is one) and the displayed cart after the change.
type Result struct {
	Item      *domain.OrderItem  `json:"item,omitempty"`
	CartItems []*domain.CartItem `json:"cartItems"`
	// Existing is set when AddItem found the line already in the cart.
	Existing bool `json:"-"`
}

type Engine struct {
	lines    repository.CartRepository
	products repository.ProductRepository
}

func NewEngine(lines repository.CartRepository, products repository.ProductRepository) *Engine {
	return &Engine{lines: lines, products: products}
}

// AddItem puts productID in the user's cart with quantity 1. Adding a product
// that is already carted leaves the line untouched.
func (e *Engine) AddItem(ctx context.Context, userID string, productID int64) (*Result, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if productID <= 0 {
		return nil, apperr.New(apperr.BadRequest, "Product id is required")
	}

	product, err := e.products.GetLive(ctx, productID)
	if err != nil {
		return nil, notFoundOr(err, "Product not found", "failed to load product")
	}

	existing, err := e.lines.FindLine(ctx, userID, productID)
	switch {
	case err == nil:
		return e.result(ctx, userID, existing, true)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.Wrap(err, "failed to load cart line")
	}

	line := &domain.OrderItem{
		ProductID: product.ID,
		UserID:    &userID,
		Quantity:  1,
		Price:     product.CartPrice(),
	}
	if err := e.lines.CreateLine(ctx, line); err != nil {
		return nil, apperr.Wrap(err, "failed to add cart line")
	}
	zap.L().Debug("cart line added",
		zap.String("namespace", "cart"),
		zap.String("user_id", userID),
		zap.Int64("product_id", productID))
	return e.result(ctx, userID, line, false)
}

func (e *Engine) RemoveItem(ctx context.Context, userID string, productID int64) (*Result, error) {
	line, err := e.findLine(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if err := e.lines.DeleteLine(ctx, line.ID); err != nil {
		return nil, apperr.Wrap(err, "failed to remove cart line")
	}
	return e.result(ctx, userID, nil, false)
}

// IncrementItem raises the quantity by one unless it already meets stock.
func (e *Engine) IncrementItem(ctx context.Context, userID string, productID int64) (*Result, error) {
	line, err := e.findLine(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	product, err := e.products.GetLive(ctx, productID)
	if err != nil {
		return nil, notFoundOr(err, "Product not found", "failed to load product")
	}
	if line.Quantity >= product.Stock {
		return nil, apperr.New(apperr.BadRequest, "stock limit reached")
	}
	return e.adjust(ctx, userID, line, 1)
}

// DecrementItem lowers the quantity by one; a line at 1 must be removed instead.
func (e *Engine) DecrementItem(ctx context.Context, userID string, productID int64) (*Result, error) {
	line, err := e.findLine(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if line.Quantity <= 1 {
		return nil, apperr.New(apperr.BadRequest, "quantity cannot go below 1, remove the item instead")
	}
	return e.adjust(ctx, userID, line, -1)
}

// View is the displayed cart: lines whose product is live and active.
func (e *Engine) View(ctx context.Context, userID string) (*Result, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return e.result(ctx, userID, nil, false)
}

func (e *Engine) adjust(ctx context.Context, userID string, line *domain.OrderItem, delta int) (*Result, error) {
	if err := e.lines.AdjustQuantity(ctx, line.ID, delta); err != nil {
		return nil, apperr.Wrap(err, "failed to update cart quantity")
	}
	updated, err := e.lines.FindLine(ctx, userID, line.ProductID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to reload cart line")
	}
	return e.result(ctx, userID, updated, false)
}

func (e *Engine) findLine(ctx context.Context, userID string, productID int64) (*domain.OrderItem, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if productID <= 0 {
		return nil, apperr.New(apperr.BadRequest, "Product id is required")
	}
	line, err := e.lines.FindLine(ctx, userID, productID)
	if err != nil {
		return nil, notFoundOr(err, "Item not found in cart", "failed to load cart line")
	}
	return line, nil
}

func (e *Engine) result(ctx context.Context, userID string, item *domain.OrderItem, existing bool) (*Result, error) {
	items, err := e.lines.View(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to load cart")
	}
	return &Result{Item: item, CartItems: items, Existing: existing}, nil
}

func requireUser(userID string) error {
	if userID == "" {
		return apperr.New(apperr.Unauthenticated, "Unauthorized")
	}
	return nil
}

func notFoundOr(err error, notFound, unexpected string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.NotFound, notFound)
	}
	return apperr.Wrap(err, unexpected)
}
