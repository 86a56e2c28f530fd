package catalog

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLCatalog(t *testing.T) *SQL {
	c, err := OpenSQL(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	require.NoError(t, c.RunMigrations())
	require.NoError(t, c.SeedIfEmpty(context.Background(), SeedCategories(), SeedProducts()))
	return c
}

func TestSQL_MatchesSeed(t *testing.T) {
	c := setupSQLCatalog(t)
	ctx := context.Background()

	products, err := c.GetAllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 10)

	seed := SeedProducts()
	for i, p := range products {
		assert.Equal(t, seed[i].ID, p.ID)
		assert.Equal(t, seed[i].Name, p.Name)
		assert.True(t, seed[i].Price.Equal(p.Price), "price of %s", p.ID)
		assert.Equal(t, seed[i].Featured, p.Featured)
	}
}

func TestSQL_GetProductByID(t *testing.T) {
	c := setupSQLCatalog(t)

	p, err := c.GetProductByID(context.Background(), "luxury-gift-set")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("89.99").Equal(p.Price))

	_, err = c.GetProductByID(context.Background(), "nonexistent-id")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestSQL_Filters(t *testing.T) {
	c := setupSQLCatalog(t)
	ctx := context.Background()

	accessories, err := c.GetProductsByCategory(ctx, "accessories")
	require.NoError(t, err)
	assert.Len(t, accessories, 4)

	all, err := c.GetProductsByCategory(ctx, CategoryAll)
	require.NoError(t, err)
	assert.Len(t, all, 10)

	featured, err := c.GetFeaturedProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, featured, 5)

	categories, err := c.GetCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedCategories(), categories)
}

func TestSQL_SeedIfEmptyRunsOnce(t *testing.T) {
	c := setupSQLCatalog(t)
	require.NoError(t, c.SeedIfEmpty(context.Background(), SeedCategories(), SeedProducts()))

	products, err := c.GetAllProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 10)
}

func TestSQL_ConcurrentFirstLoad(t *testing.T) {
	c := setupSQLCatalog(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.GetProductByID(ctx, "matcha-tin")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}
