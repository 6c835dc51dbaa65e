package service

import (
	"go.uber.org/zap"

	"storefront-core/internal/kvstore"
	"storefront-core/internal/notify"
	"storefront-core/internal/util"
)

// FavoritesService maintains the set of liked product IDs. Membership is
// unique; insertion order is preserved for stable listing.
type FavoritesService struct {
	bucket *kvstore.Bucket[[]int64]
	sink   notify.Sink
	logger *zap.Logger
}

// NewFavoritesService creates a favorites service over the given store.
func NewFavoritesService(store *kvstore.Store, sink notify.Sink) *FavoritesService {
	return &FavoritesService{
		bucket: kvstore.NewBucket(store, KeyFavorites, func() []int64 {
			return []int64{}
		}),
		sink:   sink,
		logger: util.GetLogger(),
	}
}

// List returns current membership in insertion order.
func (s *FavoritesService) List() []int64 {
	return s.bucket.Load()
}

// IsFavorite reports whether productID is liked.
func (s *FavoritesService) IsFavorite(productID int64) bool {
	for _, id := range s.bucket.Load() {
		if id == productID {
			return true
		}
	}
	return false
}

// Count returns the number of liked products.
func (s *FavoritesService) Count() int {
	return len(s.bucket.Load())
}

// Toggle flips membership for productID and returns the resulting state,
// so callers can update the UI without a second read. Toggling twice
// restores the original membership. Storage failure is propagated.
func (s *FavoritesService) Toggle(productID int64) (bool, error) {
	ids := s.bucket.Load()

	kept := make([]int64, 0, len(ids)+1)
	removed := false
	for _, id := range ids {
		if id == productID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	if !removed {
		kept = append(kept, productID)
	}

	if err := s.bucket.Save(kept); err != nil {
		// The write did not land, so membership is unchanged.
		s.sink.Notify(notify.KindError, "Favorites not saved", "Please try again.")
		return removed, err
	}

	liked := !removed
	if liked {
		util.FavoriteTogglesTotal.WithLabelValues("added").Inc()
		s.sink.Notify(notify.KindSuccess, "Added to favorites", "")
	} else {
		util.FavoriteTogglesTotal.WithLabelValues("removed").Inc()
		s.sink.Notify(notify.KindInfo, "Removed from favorites", "")
	}
	s.logger.Debug("Favorite toggled",
		zap.Int64("product_id", productID), zap.Bool("liked", liked))
	return liked, nil
}
