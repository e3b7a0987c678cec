package repository

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRows replays PizzaRows through the RowScanner interface
type fakeRows struct {
	rows    []PizzaRow
	pos     int
	scanErr error
	err     error
}

func (f *fakeRows) Next() bool {
	if f.pos >= len(f.rows) {
		return false
	}
	f.pos++
	return true
}

func (f *fakeRows) Scan(dest ...any) error {
	if f.scanErr != nil {
		return f.scanErr
	}
	r := f.rows[f.pos-1]
	*dest[0].(*int) = r.PizzaID
	*dest[1].(*string) = r.Name
	*dest[2].(*sql.NullString) = r.Description
	*dest[3].(*float64) = r.Price
	*dest[4].(*sql.NullInt64) = r.CategoryID
	*dest[5].(*sql.NullString) = r.CategoryName
	*dest[6].(*sql.NullInt64) = r.IngredientID
	*dest[7].(*sql.NullString) = r.IngredientName
	return nil
}

func (f *fakeRows) Err() error { return f.err }

func row(pizzaID int, name string, categoryID int, ingredientID int) PizzaRow {
	r := PizzaRow{
		PizzaID:     pizzaID,
		Name:        name,
		Description: sql.NullString{String: name + " description", Valid: true},
		Price:       9.5,
	}
	if categoryID != 0 {
		r.CategoryID = sql.NullInt64{Int64: int64(categoryID), Valid: true}
		r.CategoryName = sql.NullString{String: "category", Valid: true}
	}
	if ingredientID != 0 {
		r.IngredientID = sql.NullInt64{Int64: int64(ingredientID), Valid: true}
		r.IngredientName = sql.NullString{String: "ingredient", Valid: true}
	}
	return r
}

func TestAggregateMergesRowsPerPizza(t *testing.T) {
	rows := &fakeRows{rows: []PizzaRow{
		row(1, "Margherita", 1, 10),
		row(1, "Margherita", 1, 11),
		row(2, "Marinara", 1, 10),
		row(1, "Margherita", 1, 12),
		row(3, "Bianca", 0, 0),
	}}

	pizzas, err := Aggregate(rows)
	require.NoError(t, err)
	require.Len(t, pizzas, 3)

	assert.Equal(t, []int{1, 2, 3}, []int{pizzas[0].ID, pizzas[1].ID, pizzas[2].ID})
	assert.Equal(t, []int{10, 11, 12}, pizzas[0].IngredientIDs())
	assert.Equal(t, []int{10}, pizzas[1].IngredientIDs())
	assert.Empty(t, pizzas[2].Ingredients)
	assert.NotNil(t, pizzas[2].Ingredients)
}

func TestAggregateDeduplicatesIngredients(t *testing.T) {
	// a fan-out on another join repeats the same pair
	rows := &fakeRows{rows: []PizzaRow{
		row(1, "Diavola", 2, 5),
		row(1, "Diavola", 2, 5),
		row(1, "Diavola", 2, 7),
		row(1, "Diavola", 2, 5),
	}}

	pizzas, err := Aggregate(rows)
	require.NoError(t, err)
	require.Len(t, pizzas, 1)
	assert.Equal(t, []int{5, 7}, pizzas[0].IngredientIDs())
}

func TestAggregateNullColumns(t *testing.T) {
	testCases := []struct {
		name             string
		rows             []PizzaRow
		expectCategory   bool
		expectIngredient []int
	}{
		{
			name:             "category without ingredients",
			rows:             []PizzaRow{row(1, "Margherita", 4, 0)},
			expectCategory:   true,
			expectIngredient: []int{},
		},
		{
			name:             "ingredients without category",
			rows:             []PizzaRow{row(1, "Margherita", 0, 3), row(1, "Margherita", 0, 8)},
			expectCategory:   false,
			expectIngredient: []int{3, 8},
		},
		{
			name:             "neither category nor ingredients",
			rows:             []PizzaRow{row(1, "Margherita", 0, 0)},
			expectCategory:   false,
			expectIngredient: []int{},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			pizzas, err := Aggregate(&fakeRows{rows: tt.rows})
			require.NoError(t, err)
			require.Len(t, pizzas, 1)

			pizza := pizzas[0]
			if tt.expectCategory {
				require.NotNil(t, pizza.Category)
				require.NotNil(t, pizza.CategoryID)
				assert.Equal(t, pizza.Category.ID, *pizza.CategoryID)
			} else {
				assert.Nil(t, pizza.Category)
				assert.Nil(t, pizza.CategoryID)
			}
			assert.Equal(t, tt.expectIngredient, pizza.IngredientIDs())
			for _, ingredient := range pizza.Ingredients {
				assert.NotZero(t, ingredient.ID)
			}
		})
	}
}

func TestAggregateFirstRowWins(t *testing.T) {
	first := row(1, "Margherita", 1, 10)
	later := row(1, "Renamed", 2, 11)
	later.Price = 99

	pizzas, err := Aggregate(&fakeRows{rows: []PizzaRow{first, later}})
	require.NoError(t, err)
	require.Len(t, pizzas, 1)

	assert.Equal(t, "Margherita", pizzas[0].Name)
	assert.Equal(t, 9.5, pizzas[0].Price)
	assert.Equal(t, 1, pizzas[0].Category.ID)
	assert.Equal(t, []int{10, 11}, pizzas[0].IngredientIDs())
}

func TestAggregateDeterministicOrder(t *testing.T) {
	input := []PizzaRow{
		row(9, "Nove", 0, 1),
		row(3, "Tre", 0, 1),
		row(7, "Sette", 0, 0),
		row(3, "Tre", 0, 2),
		row(1, "Uno", 0, 0),
	}

	for i := 0; i < 20; i++ {
		pizzas, err := Aggregate(&fakeRows{rows: input})
		require.NoError(t, err)
		ids := make([]int, 0, len(pizzas))
		for _, pizza := range pizzas {
			ids = append(ids, pizza.ID)
		}
		assert.Equal(t, []int{9, 3, 7, 1}, ids)
	}
}

func TestAggregateErrors(t *testing.T) {
	t.Run("scan error", func(t *testing.T) {
		scanErr := errors.New("bad column")
		_, err := Aggregate(&fakeRows{rows: []PizzaRow{row(1, "Margherita", 0, 0)}, scanErr: scanErr})
		assert.ErrorIs(t, err, scanErr)
	})

	t.Run("cursor error", func(t *testing.T) {
		cursorErr := errors.New("connection reset")
		pizzas, err := Aggregate(&fakeRows{err: cursorErr})
		assert.ErrorIs(t, err, cursorErr)
		assert.Nil(t, pizzas)
	})

	t.Run("empty cursor", func(t *testing.T) {
		pizzas, err := Aggregate(&fakeRows{})
		require.NoError(t, err)
		assert.Empty(t, pizzas)
	})
}

func TestAggregatorPizzasReturnsCopy(t *testing.T) {
	agg := NewAggregator()
	agg.Add(row(1, "Margherita", 0, 0))

	pizzas := agg.Pizzas()
	pizzas[0].Name = "changed"

	assert.Equal(t, 1, agg.Len())
	assert.Equal(t, "Margherita", agg.Pizzas()[0].Name)
}
