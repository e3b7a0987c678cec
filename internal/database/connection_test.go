package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/franciscosanchezn/pizza-catalog-api/internal/models"
	"github.com/franciscosanchezn/pizza-catalog-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingInserter struct {
	pizzas []models.Pizza
	ids    [][]int
}

func (r *recordingInserter) InsertPizza(ctx context.Context, pizza models.Pizza, ingredientIDs []int) (int, error) {
	r.pizzas = append(r.pizzas, pizza)
	r.ids = append(r.ids, ingredientIDs)
	return len(r.pizzas), nil
}

func (r *recordingInserter) on(tx *gorm.DB) PizzaInserter { return r }

// failingInserter writes through the real repository and fails on call n
type failingInserter struct {
	repo  repository.PizzaRepository
	calls int
	n     int
}

func (f *failingInserter) InsertPizza(ctx context.Context, pizza models.Pizza, ingredientIDs []int) (int, error) {
	f.calls++
	if f.calls == f.n {
		return 0, errors.New("disk full")
	}
	return f.repo.InsertPizza(ctx, pizza, ingredientIDs)
}

func repositoryInserter(tx *gorm.DB) PizzaInserter {
	return repository.NewPizzaRepository(tx)
}

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()
	db, err := InitDatabase(ctx, DatabaseConfig{Path: filepath.Join(t.TempDir(), "pizza.sqlite"), MaxRetries: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	require.NoError(t, Migrate(ctx, db))
	return db
}

func catalogCounts(t *testing.T, db *gorm.DB) (pizzas, categories, ingredients int64) {
	t.Helper()
	require.NoError(t, db.Model(&models.Pizza{}).Count(&pizzas).Error)
	require.NoError(t, db.Model(&models.Category{}).Count(&categories).Error)
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&ingredients).Error)
	return pizzas, categories, ingredients
}

func TestInitDatabaseSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "pizza.sqlite"), MaxRetries: 1}

	db, err := InitDatabase(ctx, cfg)
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Migrate(ctx, db))
	assert.True(t, db.Migrator().HasTable(&models.PizzaIngredient{}))

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)

	var busyTimeout int
	require.NoError(t, db.Raw("PRAGMA busy_timeout").Scan(&busyTimeout).Error)
	assert.Equal(t, 5000, busyTimeout)
}

func TestInitDatabaseUnsupportedDriver(t *testing.T) {
	db, err := InitDatabase(context.Background(), DatabaseConfig{Driver: "oracle"})

	assert.Nil(t, db)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	cfg := DatabaseConfig{Path: filepath.Join(t.TempDir(), "pizza.sqlite"), MaxRetries: 1}
	db, err := InitDatabase(ctx, cfg)
	require.NoError(t, err)
	defer Close(db)
	require.NoError(t, Migrate(ctx, db))

	inserter := &recordingInserter{}
	seeded, err := Seed(ctx, db, inserter.on)
	require.NoError(t, err)
	assert.True(t, seeded)
	assert.Len(t, inserter.pizzas, len(seedPizzas))

	var categories, ingredients int64
	db.Model(&models.Category{}).Count(&categories)
	db.Model(&models.Ingredient{}).Count(&ingredients)
	assert.EqualValues(t, len(seedCategories), categories)
	assert.EqualValues(t, len(seedIngredients), ingredients)

	for i, pizza := range inserter.pizzas {
		require.NotNil(t, pizza.CategoryID, pizza.Name)
		assert.Len(t, inserter.ids[i], len(seedPizzas[i].ingredients), pizza.Name)
	}
}

func TestSeedSkipsWhenPizzasExist(t *testing.T) {
	ctx := context.Background()
	db, err := InitDatabase(ctx, DatabaseConfig{Path: filepath.Join(t.TempDir(), "pizza.sqlite"), MaxRetries: 1})
	require.NoError(t, err)
	defer Close(db)
	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, db.Create(&models.Pizza{Name: "Marinara", Price: 7.5}).Error)

	inserter := &recordingInserter{}
	seeded, err := Seed(ctx, db, inserter.on)

	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Empty(t, inserter.pizzas)
}

func TestSeedAgainAfterAllPizzasDeleted(t *testing.T) {
	ctx := context.Background()
	db := setupSeedDB(t)
	repo := repository.NewPizzaRepository(db)

	seeded, err := Seed(ctx, db, repositoryInserter)
	require.NoError(t, err)
	require.True(t, seeded)

	pizzas, err := repo.ListPizzas(ctx, nil)
	require.NoError(t, err)
	for _, pizza := range pizzas {
		_, err := repo.DeletePizza(ctx, pizza.ID)
		require.NoError(t, err)
	}

	seeded, err = Seed(ctx, db, repositoryInserter)
	require.NoError(t, err)
	assert.True(t, seeded)

	pizzaCount, categories, ingredients := catalogCounts(t, db)
	assert.EqualValues(t, len(seedPizzas), pizzaCount)
	assert.EqualValues(t, len(seedCategories), categories)
	assert.EqualValues(t, len(seedIngredients), ingredients)
}

func TestSeedFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	db := setupSeedDB(t)

	failing := &failingInserter{n: 3}
	_, err := Seed(ctx, db, func(tx *gorm.DB) PizzaInserter {
		failing.repo = repository.NewPizzaRepository(tx)
		return failing
	})
	require.ErrorContains(t, err, "disk full")

	pizzaCount, categories, ingredients := catalogCounts(t, db)
	assert.Zero(t, pizzaCount)
	assert.Zero(t, categories)
	assert.Zero(t, ingredients)

	seeded, err := Seed(ctx, db, repositoryInserter)
	require.NoError(t, err)
	assert.True(t, seeded)
}
