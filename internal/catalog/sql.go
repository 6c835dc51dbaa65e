package catalog

import (
	"context"
	"fmt"
	"time"

	"storefront-core/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// SQLProvider serves the catalog from Postgres. It exists so the static
// in-memory catalog can be swapped for a real backend without touching
// the services, which only see the Provider interface.
type SQLProvider struct {
	db *sqlx.DB
}

// NewSQLProvider connects to the database and verifies the connection.
func NewSQLProvider(databaseURL string) (*SQLProvider, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLProvider{db: db}, nil
}

// Close closes the database connection.
func (p *SQLProvider) Close() error {
	return p.db.Close()
}

// List retrieves all products in catalog order.
func (p *SQLProvider) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := p.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY id")
	return products, err
}

// ListByIDs retrieves the subset of products with the given IDs.
func (p *SQLProvider) ListByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = p.db.Rebind(query)

	var products []models.Product
	err = p.db.SelectContext(ctx, &products, query, args...)
	return products, err
}
