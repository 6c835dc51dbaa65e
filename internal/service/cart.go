package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"storefront-core/internal/catalog"
	"storefront-core/internal/kvstore"
	"storefront-core/internal/models"
	"storefront-core/internal/notify"
	"storefront-core/internal/util"
)

// DefaultSize is used when a product is added without an explicit size.
const DefaultSize = "50ml"

// CartService maintains the cart lines and derives totals. The cart is
// advisory state, not a ledger: lines whose product has vanished from the
// catalog are silently excluded from derived views rather than erroring.
type CartService struct {
	bucket  *kvstore.Bucket[[]models.CartLine]
	catalog catalog.Provider
	sink    notify.Sink
	logger  *zap.Logger
}

// NewCartService creates a cart service over the given store and catalog.
func NewCartService(store *kvstore.Store, provider catalog.Provider, sink notify.Sink) *CartService {
	return &CartService{
		bucket: kvstore.NewBucket(store, KeyCart, func() []models.CartLine {
			return []models.CartLine{}
		}),
		catalog: provider,
		sink:    sink,
		logger:  util.GetLogger(),
	}
}

// Lines returns the current cart contents.
func (s *CartService) Lines() []models.CartLine {
	return s.bucket.Load()
}

// ContainsLine reports whether a line for (productID, size) exists.
func (s *CartService) ContainsLine(productID int64, size string) bool {
	key := models.LineKey{ProductID: productID, Size: size}
	for _, line := range s.bucket.Load() {
		if line.Key() == key {
			return true
		}
	}
	return false
}

// TotalQuantity returns the sum of all line quantities (the badge count).
func (s *CartService) TotalQuantity() int {
	total := 0
	for _, line := range s.bucket.Load() {
		total += line.Quantity
	}
	return total
}

// AddLine adds quantity of (productID, size) to the cart. An existing line
// with the same key is merged by incrementing its quantity; a duplicate key
// is never created. Returns the new cart state.
func (s *CartService) AddLine(productID int64, quantity int, size string) ([]models.CartLine, error) {
	if quantity < 1 {
		return nil, &ValidationError{Reason: fmt.Sprintf("quantity must be at least 1, got %d", quantity)}
	}
	if size == "" {
		size = DefaultSize
	}

	lines := s.bucket.Load()
	key := models.LineKey{ProductID: productID, Size: size}
	merged := false
	for i := range lines {
		if lines[i].Key() == key {
			lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, models.CartLine{ProductID: productID, Quantity: quantity, Size: size})
	}

	if err := s.bucket.Save(lines); err != nil {
		s.sink.Notify(notify.KindError, "Could not add to cart", "Please try again.")
		return nil, err
	}

	util.CartMutationsTotal.WithLabelValues("add").Inc()
	s.sink.Notify(notify.KindSuccess, "Added to cart", "")
	s.logger.Debug("Cart line added",
		zap.Int64("product_id", productID),
		zap.String("size", size),
		zap.Int("quantity", quantity),
		zap.Bool("merged", merged))
	return lines, nil
}

// SetQuantity overwrites the quantity of an existing line. A quantity
// below 1 degenerates to RemoveLine. A missing line is left as a no-op.
func (s *CartService) SetQuantity(productID int64, quantity int, size string) ([]models.CartLine, error) {
	if quantity < 1 {
		return s.RemoveLine(productID, size)
	}

	lines := s.bucket.Load()
	key := models.LineKey{ProductID: productID, Size: size}
	found := false
	for i := range lines {
		if lines[i].Key() == key {
			lines[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return lines, nil
	}

	if err := s.bucket.Save(lines); err != nil {
		s.sink.Notify(notify.KindError, "Could not update cart", "Please try again.")
		return nil, err
	}

	util.CartMutationsTotal.WithLabelValues("set_quantity").Inc()
	return lines, nil
}

// RemoveLine deletes the line for (productID, size) and returns the new
// cart state. Removing an absent line is a no-op.
func (s *CartService) RemoveLine(productID int64, size string) ([]models.CartLine, error) {
	lines := s.bucket.Load()
	key := models.LineKey{ProductID: productID, Size: size}
	kept := make([]models.CartLine, 0, len(lines))
	removed := false
	for _, line := range lines {
		if line.Key() == key {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	if !removed {
		return kept, nil
	}

	if err := s.bucket.Save(kept); err != nil {
		s.sink.Notify(notify.KindError, "Could not update cart", "Please try again.")
		return nil, err
	}

	util.CartMutationsTotal.WithLabelValues("remove").Inc()
	s.sink.Notify(notify.KindInfo, "Removed from cart", "")
	return kept, nil
}

// Clear atomically empties the cart. Used by checkout so a cart can never
// be submitted into two orders.
func (s *CartService) Clear() ([]models.CartLine, error) {
	empty := []models.CartLine{}
	if err := s.bucket.Save(empty); err != nil {
		return nil, err
	}
	util.CartMutationsTotal.WithLabelValues("clear").Inc()
	return empty, nil
}

// TotalPrice joins the cart against the live catalog and sums line totals.
// Lines whose product no longer resolves contribute zero.
func (s *CartService) TotalPrice(ctx context.Context) (int64, error) {
	products, err := s.catalog.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load catalog: %w", err)
	}
	return s.TotalPriceOf(s.bucket.Load(), products), nil
}

// TotalPriceOf sums lines against the given product list. Join misses are
// excluded, never errors: the render path must not crash on stale IDs.
func (s *CartService) TotalPriceOf(lines []models.CartLine, products []models.Product) int64 {
	index := catalog.ByID(products)
	var total int64
	for _, line := range lines {
		product, ok := index[line.ProductID]
		if !ok {
			continue
		}
		total += product.Price * int64(line.Quantity)
	}
	return total
}

// Snapshot joins the current cart against the live catalog and returns
// frozen order lines with denormalized names and prices. Stale lines are
// dropped from the snapshot.
func (s *CartService) Snapshot(ctx context.Context) ([]models.OrderLine, error) {
	products, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	index := catalog.ByID(products)
	lines := s.bucket.Load()
	items := make([]models.OrderLine, 0, len(lines))
	for _, line := range lines {
		product, ok := index[line.ProductID]
		if !ok {
			s.logger.Warn("Dropping stale cart line from snapshot",
				zap.Int64("product_id", line.ProductID))
			continue
		}
		items = append(items, models.OrderLine{
			ProductID:   line.ProductID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			Price:       product.Price,
			Size:        line.Size,
		})
	}
	return items, nil
}
