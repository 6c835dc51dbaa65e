package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"storefront-core/config"
	"storefront-core/internal/auth"
	"storefront-core/internal/catalog"
	"storefront-core/internal/kvstore"
	"storefront-core/internal/models"
	"storefront-core/internal/notify"
	"storefront-core/internal/service"
	"storefront-core/internal/util"
)

// Demo wiring: builds the full engine against a durable backend and runs a
// scripted browse/favorite/checkout session.
func main() {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront demo")

	var backend kvstore.Backend
	switch cfg.Storage.Backend {
	case "redis":
		rb, err := kvstore.NewRedisBackend(
			cfg.Storage.Redis.Addr,
			cfg.Storage.Redis.Password,
			cfg.Storage.Redis.DB,
			cfg.Storage.Redis.KeyPrefix,
		)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rb.Close()
		backend = rb
	default:
		fb, err := kvstore.NewFileBackend(cfg.Storage.DataDir)
		if err != nil {
			log.Fatalf("Failed to open storage dir: %v", err)
		}
		backend = fb
	}

	var provider catalog.Provider
	switch cfg.Catalog.Source {
	case "sql":
		sp, err := catalog.NewSQLProvider(cfg.Catalog.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to catalog database: %v", err)
		}
		defer sp.Close()
		provider = sp
	default:
		provider = catalog.NewStaticProvider(seedProducts())
	}

	durable := kvstore.New(backend)
	session := kvstore.New(kvstore.NewMemoryBackend())
	sink := notify.NewLogSink()
	authSession := auth.NewStaticSession(&models.UserRef{
		ID: "u1", Name: "Demo User", Email: "demo@example.com", Role: "customer",
	})

	favorites := service.NewFavoritesService(durable, sink)
	cart := service.NewCartService(durable, provider, sink)
	profile := service.NewUserProfileService(durable, session)
	orders := service.NewOrderService(durable, cart, authSession, sink)

	// Badge counts re-derived on every write, the way a UI would.
	durable.Notifier().Subscribe(func(ev kvstore.ChangeEvent) {
		logger.Debug("Storage changed",
			zap.String("key", ev.Key),
			zap.Int("cart_badge", cart.TotalQuantity()),
			zap.Int("favorites_badge", favorites.Count()))
	})

	ctx := context.Background()

	products, err := provider.List(ctx)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	newest := catalog.FilterAndSort(products, catalog.Criteria{
		Brands: []string{"Chanel", "Dior"},
		SortBy: catalog.SortNewest,
	})
	logger.Info("Browsing new arrivals", zap.Int("count", len(newest)))

	if len(newest) > 0 {
		if _, err := favorites.Toggle(newest[0].ID); err != nil {
			logger.Error("Toggle failed", zap.Error(err))
		}
		if _, err := cart.AddLine(newest[0].ID, 2, "50ml"); err != nil {
			logger.Error("Add to cart failed", zap.Error(err))
		}
	}
	if len(newest) > 1 {
		if _, err := cart.AddLine(newest[1].ID, 1, "30ml"); err != nil {
			logger.Error("Add to cart failed", zap.Error(err))
		}
	}

	total, err := cart.TotalPrice(ctx)
	if err != nil {
		log.Fatalf("Failed to total cart: %v", err)
	}
	logger.Info("Cart ready",
		zap.Int("quantity", cart.TotalQuantity()),
		zap.Int64("total", total))

	shipping := models.ShippingProfile{
		FullName: "Demo User",
		Phone:    "555-0100",
		Email:    "demo@example.com",
		Address:  "1 Main St",
		City:     "Springfield",
	}
	if err := profile.SaveShippingProfile(shipping); err != nil {
		logger.Error("Failed to save shipping profile", zap.Error(err))
	}

	order, err := orders.CheckoutCart(ctx, shipping, models.PaymentMethodCOD)
	if err != nil {
		log.Fatalf("Checkout failed: %v", err)
	}
	logger.Info("Checked out",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("total_amount", order.TotalAmount))

	if _, err := orders.AddTrackingInfo(order.ID, "TRACK-0001", "3-5 days"); err != nil {
		logger.Error("Failed to add tracking", zap.Error(err))
	}

	for _, o := range orders.UserOrders("u1") {
		logger.Info("Order on file",
			zap.Int64("id", o.ID),
			zap.String("number", o.OrderNumber),
			zap.String("status", string(o.Status)))
	}
}

func seedProducts() []models.Product {
	return []models.Product{
		{ID: 1, Name: "No. 5 Eau de Parfum", Brand: "Chanel", Category: "floral", Price: 150, Rating: 4.8, Featured: true},
		{ID: 2, Name: "Sauvage", Brand: "Dior", Category: "woody", Price: 120, Rating: 4.7, NewArrival: true},
		{ID: 3, Name: "Bleu de Chanel", Brand: "Chanel", Category: "woody", Price: 135, Rating: 4.6, NewArrival: true},
		{ID: 4, Name: "J'adore", Brand: "Dior", Category: "floral", Price: 140, Rating: 4.5, Featured: true},
		{ID: 5, Name: "Acqua di Gio", Brand: "Armani", Category: "fresh", Price: 95, Rating: 4.4},
	}
}
