package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightmill/storefront-insights/pkg/config"
	"github.com/brightmill/storefront-insights/pkg/db"
)

func newTestDB(t *testing.T) *db.Client {
	t.Helper()

	client, err := db.New(context.Background(), config.DBConfig{
		Driver: "sqlite",
		DSN:    "file::memory:?cache=shared",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.DB().AutoMigrate(&Product{}))
	require.NoError(t, client.DB().Exec("DELETE FROM products").Error)
	return client
}

func TestRepoProducts(t *testing.T) {
	client := newTestDB(t)
	ctx := context.Background()

	seed := []Product{
		{ID: "p1", Name: "Kettle", Category: "Kitchen", MinStockThreshold: 10},
		{ID: "p2", Name: "Lamp", Category: "Lighting", MinStockThreshold: 5},
		{ID: "p3", Name: "Mug", Category: "Kitchen", MinStockThreshold: 20},
	}
	require.NoError(t, client.DB().Create(&seed).Error)

	repo, err := NewRepo(client)
	require.NoError(t, err)

	got, err := repo.Products(ctx, []string{"p1", "p3", "missing"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Kettle", got["p1"].Name)
	assert.Equal(t, int64(20), got["p3"].MinStockThreshold)
}

func TestRepoProductsEmptyInput(t *testing.T) {
	client := newTestDB(t)

	repo, err := NewRepo(client)
	require.NoError(t, err)

	got, err := repo.Products(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
