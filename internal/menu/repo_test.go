package menu

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dinesync/backend/pkg/db/models"
)

func setupMenuTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  sort_order INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS menu_items (
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL DEFAULT 0,
  available INTEGER NOT NULL DEFAULT 1,
  image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS menu_item_ingredients (
  id TEXT PRIMARY KEY,
  menu_item_id TEXT NOT NULL,
  inventory_item_id TEXT NOT NULL,
  quantity_per_unit NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{ID: uuid.New(), Name: name}
	require.NoError(t, db.Create(category).Error)
	return category
}

func TestMenuRepositoryItemLifecycle(t *testing.T) {
	db := setupMenuTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := seedCategory(t, db, "Mains")

	inventoryID := uuid.New()
	item := &models.MenuItem{
		ID:         uuid.New(),
		CategoryID: category.ID,
		Name:       "Thali",
		Price:      decimal.RequireFromString("250.00"),
		Available:  true,
		Ingredients: []models.MenuItemIngredient{{
			ID:              uuid.New(),
			InventoryItemID: inventoryID,
			QuantityPerUnit: decimal.RequireFromString("0.2"),
		}},
	}
	_, err := repo.CreateItem(ctx, item)
	require.NoError(t, err)

	found, err := repo.FindItemByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Thali", found.Name)
	require.Len(t, found.Ingredients, 1)
	assert.Equal(t, inventoryID, found.Ingredients[0].InventoryItemID)

	replacement := []models.MenuItemIngredient{{
		ID:              uuid.New(),
		MenuItemID:      item.ID,
		InventoryItemID: uuid.New(),
		QuantityPerUnit: decimal.RequireFromString("0.5"),
	}}
	require.NoError(t, repo.ReplaceIngredients(ctx, item.ID, replacement))

	found, err = repo.FindItemByID(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, found.Ingredients, 1)
	assert.Equal(t, replacement[0].InventoryItemID, found.Ingredients[0].InventoryItemID)

	require.NoError(t, repo.DeleteItem(ctx, item.ID))
	_, err = repo.FindItemByID(ctx, item.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var ingredientCount int64
	require.NoError(t, db.Model(&models.MenuItemIngredient{}).Count(&ingredientCount).Error)
	assert.Zero(t, ingredientCount, "ingredients removed with their item")
}

func TestMenuRepositoryCategoryOrdering(t *testing.T) {
	db := setupMenuTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first := &models.Category{ID: uuid.New(), Name: "Starters", SortOrder: 1}
	second := &models.Category{ID: uuid.New(), Name: "Desserts", SortOrder: 2}
	require.NoError(t, db.Create(second).Error)
	require.NoError(t, db.Create(first).Error)

	categories, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Starters", categories[0].Name)
	assert.Equal(t, "Desserts", categories[1].Name)
}

func TestMenuRepositoryFindByIDs(t *testing.T) {
	db := setupMenuTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := seedCategory(t, db, "Mains")
	a := &models.MenuItem{ID: uuid.New(), CategoryID: category.ID, Name: "A", Price: decimal.New(1, 0)}
	b := &models.MenuItem{ID: uuid.New(), CategoryID: category.ID, Name: "B", Price: decimal.New(2, 0)}
	require.NoError(t, db.Create(a).Error)
	require.NoError(t, db.Create(b).Error)

	items, err := repo.FindMenuItemsByIDs(ctx, []uuid.UUID{a.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, a.ID, items[0].ID)

	items, err = repo.FindMenuItemsByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}
