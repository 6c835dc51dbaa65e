package service

import (
	"errors"

	"storefront-core/internal/catalog"
	"storefront-core/internal/kvstore"
	"storefront-core/internal/models"
	"storefront-core/internal/notify"
)

// recordingSink captures notifications for assertions.
type recordingSink struct {
	kinds  []notify.Kind
	titles []string
}

func (s *recordingSink) Notify(kind notify.Kind, title, _ string) {
	s.kinds = append(s.kinds, kind)
	s.titles = append(s.titles, title)
}

// failingBackend rejects all writes once armed.
type failingBackend struct {
	*kvstore.MemoryBackend
	fail bool
}

func (f *failingBackend) Write(key string, data []byte) error {
	if f.fail {
		return errors.New("quota exceeded")
	}
	return f.MemoryBackend.Write(key, data)
}

func newFailingBackend() *failingBackend {
	return &failingBackend{MemoryBackend: kvstore.NewMemoryBackend()}
}

func testCatalog() *catalog.StaticProvider {
	return catalog.NewStaticProvider([]models.Product{
		{ID: 1, Name: "No. 5 Eau de Parfum", Brand: "Chanel", Category: "floral", Price: 100, Rating: 4.8},
		{ID: 2, Name: "Sauvage", Brand: "Dior", Category: "woody", Price: 50, Rating: 4.7},
		{ID: 3, Name: "Acqua di Gio", Brand: "Armani", Category: "fresh", Price: 95, Rating: 4.4},
	})
}

func testUser() *models.UserRef {
	return &models.UserRef{ID: "u1", Name: "Test User", Email: "u1@example.com", Role: "customer"}
}

func testShipping() models.ShippingProfile {
	return models.ShippingProfile{
		FullName: "Test User",
		Phone:    "555-0100",
		Email:    "u1@example.com",
		Address:  "1 Main St",
		City:     "Springfield",
	}
}
