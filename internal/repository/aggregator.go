package repository

import (
	"database/sql"
	"fmt"

	"github.com/franciscosanchezn/pizza-catalog-api/internal/models"
)

// RowScanner is the forward-only cursor the aggregator consumes.
// *sql.Rows satisfies it.
type RowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// PizzaRow is one flattened row of the pizza/category/ingredient join.
// Category and ingredient columns are null when the outer join found no match.
type PizzaRow struct {
	PizzaID        int
	Name           string
	Description    sql.NullString
	Price          float64
	CategoryID     sql.NullInt64
	CategoryName   sql.NullString
	IngredientID   sql.NullInt64
	IngredientName sql.NullString
}

// scanDest matches the column order of pizzaColumns
func (r *PizzaRow) scanDest() []any {
	return []any{
		&r.PizzaID,
		&r.Name,
		&r.Description,
		&r.Price,
		&r.CategoryID,
		&r.CategoryName,
		&r.IngredientID,
		&r.IngredientName,
	}
}

// Aggregator folds flattened join rows into pizza aggregates.
// Pizzas come out in the order their id was first seen; the first row of a
// pizza decides its scalar fields and category, later rows only add
// ingredients. An Aggregator is meant for a single read and is not safe for
// concurrent use.
type Aggregator struct {
	index  map[int]int
	pizzas []models.Pizza
	seen   []map[int]struct{}
}

func NewAggregator() *Aggregator {
	return &Aggregator{index: make(map[int]int)}
}

// Add merges one row into the aggregate it belongs to
func (a *Aggregator) Add(row PizzaRow) {
	pos, ok := a.index[row.PizzaID]
	if !ok {
		pos = len(a.pizzas)
		a.index[row.PizzaID] = pos
		a.pizzas = append(a.pizzas, newPizza(row))
		a.seen = append(a.seen, make(map[int]struct{}))
	}

	if !row.IngredientID.Valid {
		return
	}
	ingredientID := int(row.IngredientID.Int64)
	if _, dup := a.seen[pos][ingredientID]; dup {
		return
	}
	a.seen[pos][ingredientID] = struct{}{}
	a.pizzas[pos].Ingredients = append(a.pizzas[pos].Ingredients, models.Ingredient{
		ID:   ingredientID,
		Name: row.IngredientName.String,
	})
}

// Len reports how many distinct pizzas have been seen
func (a *Aggregator) Len() int {
	return len(a.pizzas)
}

// Pizzas returns the aggregates in first-seen order
func (a *Aggregator) Pizzas() []models.Pizza {
	out := make([]models.Pizza, len(a.pizzas))
	copy(out, a.pizzas)
	return out
}

func newPizza(row PizzaRow) models.Pizza {
	pizza := models.Pizza{
		ID:          row.PizzaID,
		Name:        row.Name,
		Description: row.Description.String,
		Price:       row.Price,
		Ingredients: []models.Ingredient{},
	}
	if row.CategoryID.Valid {
		categoryID := int(row.CategoryID.Int64)
		pizza.CategoryID = &categoryID
		pizza.Category = &models.Category{
			ID:   categoryID,
			Name: row.CategoryName.String,
		}
	}
	return pizza
}

// Aggregate drains rows into a fresh Aggregator and returns the pizzas.
// It does not close rows; the caller owns the cursor.
func Aggregate(rows RowScanner) ([]models.Pizza, error) {
	agg := NewAggregator()
	for rows.Next() {
		var row PizzaRow
		if err := rows.Scan(row.scanDest()...); err != nil {
			return nil, fmt.Errorf("scan pizza row: %w", err)
		}
		agg.Add(row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return agg.Pizzas(), nil
}
