package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
	"github.com/monkeysroasters/roastery-backend/pkg/enums"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  category TEXT NOT NULL,
  name TEXT NOT NULL,
  origin TEXT,
  profile TEXT,
  description TEXT,
  price_300g INTEGER NOT NULL DEFAULT 0,
  price_1kg INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  sort_order INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	items := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  user_id INTEGER NOT NULL,
  product_id TEXT NOT NULL,
  format TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(items).Error)
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_user_product_format ON cart_items (user_id, product_id, format);`).Error)
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:        uuid.New(),
		Category:  "espresso",
		Name:      name,
		Price300g: 420,
		Price1kg:  1200,
		IsActive:  true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedCartItem(t *testing.T, db *gorm.DB, userID int64, productID uuid.UUID, format enums.ProductFormat, quantity int) *models.CartItem {
	t.Helper()

	item := &models.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Format:    format,
		Quantity:  quantity,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestRepositoryListByUserPreloadsProducts(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Brazil Santos")
	seedCartItem(t, db, 42, product.ID, enums.ProductFormatPack300, 2)
	seedCartItem(t, db, 42, product.ID, enums.ProductFormatBag1Kg, 1)
	seedCartItem(t, db, 77, product.ID, enums.ProductFormatPack300, 1)

	items, err := repo.ListByUser(ctx, 42)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Brazil Santos", items[0].Product.Name)
}

func TestRepositoryFindByProductFormat(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Brazil Santos")
	seedCartItem(t, db, 42, product.ID, enums.ProductFormatPack300, 2)

	found, err := repo.FindByProductFormat(ctx, 42, product.ID, enums.ProductFormatPack300)
	require.NoError(t, err)
	assert.Equal(t, 2, found.Quantity)

	_, err = repo.FindByProductFormat(ctx, 42, product.ID, enums.ProductFormatBag1Kg)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryClearRemovesOnlyOwnItems(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Brazil Santos")
	seedCartItem(t, db, 42, product.ID, enums.ProductFormatPack300, 2)
	seedCartItem(t, db, 77, product.ID, enums.ProductFormatPack300, 1)

	require.NoError(t, repo.Clear(ctx, 42))

	count, err := repo.Count(ctx, 42)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = repo.Count(ctx, 77)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRepositorySetQuantityAndDelete(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Brazil Santos")
	item := seedCartItem(t, db, 42, product.ID, enums.ProductFormatPack300, 2)

	require.NoError(t, repo.SetQuantity(ctx, item.ID, 5))
	found, err := repo.FindItem(ctx, item.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, 5, found.Quantity)

	require.NoError(t, repo.Delete(ctx, item.ID))
	assert.ErrorIs(t, repo.Delete(ctx, item.ID), gorm.ErrRecordNotFound)
}
