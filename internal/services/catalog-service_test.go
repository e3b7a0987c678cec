package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/franciscosanchezn/pizza-catalog-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "catalog.sqlite")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Category{}, &models.Ingredient{})
	require.NoError(t, err)

	return db
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	service := NewCatalogService(setupTestDB(t))

	empty, err := service.ListCategories(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	bianche := &models.Category{Name: "  Bianche "}
	require.NoError(t, service.CreateCategory(ctx, bianche))
	assert.NotZero(t, bianche.ID)
	assert.Equal(t, "Bianche", bianche.Name)

	require.NoError(t, service.CreateCategory(ctx, &models.Category{Name: "Rosse"}))

	categories, err := service.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Bianche", categories[0].Name)
	assert.Equal(t, "Rosse", categories[1].Name)
}

func TestCreateCategoryErrors(t *testing.T) {
	ctx := context.Background()
	service := NewCatalogService(setupTestDB(t))
	require.NoError(t, service.CreateCategory(ctx, &models.Category{Name: "Rosse"}))

	testCases := []struct {
		name     string
		category models.Category
		expected error
	}{
		{name: "blank name", category: models.Category{Name: "   "}, expected: ErrEmptyName},
		{name: "duplicate name", category: models.Category{Name: "Rosse"}, expected: ErrNameTaken},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			category := tt.category
			err := service.CreateCategory(ctx, &category)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestIngredients(t *testing.T) {
	ctx := context.Background()
	service := NewCatalogService(setupTestDB(t))

	for _, name := range []string{"Mozzarella", "Basil"} {
		require.NoError(t, service.CreateIngredient(ctx, &models.Ingredient{Name: name}))
	}
	assert.ErrorIs(t, service.CreateIngredient(ctx, &models.Ingredient{Name: "Basil"}), ErrNameTaken)
	assert.ErrorIs(t, service.CreateIngredient(ctx, &models.Ingredient{}), ErrEmptyName)

	ingredients, err := service.ListIngredients(ctx)
	require.NoError(t, err)
	require.Len(t, ingredients, 2)
	assert.Equal(t, "Mozzarella", ingredients[0].Name)
	assert.Equal(t, "Basil", ingredients[1].Name)
}
