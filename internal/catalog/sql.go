package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/matcha-storefront/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQL reads the catalog from a sqlite database. The catalog is immutable for a
// session, so rows are read once and served from memory afterwards.
type SQL struct {
	db  *sql.DB
	sfg singleflight.Group // one load even when many requests miss at once

	mu         sync.RWMutex
	loaded     bool
	categories []domain.Category
	products   []domain.Product
	byID       map[string]domain.Product
}

func OpenSQL(path string) (*SQL, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &SQL{db: db}, nil
}

func (s *SQL) RunMigrations() error {
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// SeedIfEmpty inserts the given records when the products table has no rows.
func (s *SQL) SeedIfEmpty(ctx context.Context, categories []domain.Category, products []domain.Product) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed: %w", err)
	}
	defer tx.Rollback()

	for i, c := range categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, name, sort_order) VALUES ($1, $2, $3)`,
			c.ID, c.Name, i); err != nil {
			return fmt.Errorf("failed to insert category %s: %w", c.ID, err)
		}
	}
	for i, p := range products {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, name, short_description, description, price, image, category_id, featured, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			p.ID, p.Name, p.ShortDescription, p.Description, p.Price.String(), p.Image, p.Category, p.Featured, i); err != nil {
			return fmt.Errorf("failed to insert product %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQL) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Product{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return p, nil
}

func (s *SQL) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product(nil), s.products...), nil
}

func (s *SQL) GetProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	all, err := s.GetAllProducts(ctx)
	if err != nil {
		return nil, err
	}
	return filterByCategory(all, categoryID), nil
}

func (s *SQL) GetFeaturedProducts(ctx context.Context) ([]domain.Product, error) {
	all, err := s.GetAllProducts(ctx)
	if err != nil {
		return nil, err
	}
	return filterFeatured(all), nil
}

func (s *SQL) GetCategories(ctx context.Context) ([]domain.Category, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category(nil), s.categories...), nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}

func (s *SQL) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	_, err, _ := s.sfg.Do("catalog", func() (interface{}, error) {
		categories, err := s.queryCategories(ctx)
		if err != nil {
			return nil, err
		}
		products, err := s.queryProducts(ctx)
		if err != nil {
			return nil, err
		}

		byID := make(map[string]domain.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		s.mu.Lock()
		s.categories, s.products, s.byID, s.loaded = categories, products, byID, true
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

func (s *SQL) queryCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY sort_order`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return categories, nil
}

func (s *SQL) queryProducts(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, name, short_description, description, price, image, category_id, featured
		FROM products
		ORDER BY sort_order
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var (
			p     domain.Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.ShortDescription, &p.Description, &price, &p.Image, &p.Category, &p.Featured); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("bad price %q for product %s: %w", price, p.ID, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}
