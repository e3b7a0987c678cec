package database

import (
	"context"
	"fmt"

	"github.com/franciscosanchezn/pizza-catalog-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PizzaInserter is the part of the pizza repository seeding needs
type PizzaInserter interface {
	InsertPizza(ctx context.Context, pizza models.Pizza, ingredientIDs []int) (int, error)
}

type seedPizza struct {
	name        string
	description string
	price       float64
	category    string
	ingredients []string
}

var seedCategories = []string{"Classiche", "Bianche", "Vegetariane"}

var seedIngredients = []string{
	"Tomato Sauce", "Mozzarella", "Basil", "Pepperoni", "Bell Peppers", "Olives", "Gorgonzola", "Ricotta",
}

var seedPizzas = []seedPizza{
	{"Margherita", "Tomato, mozzarella and fresh basil", 10.99, "Classiche", []string{"Tomato Sauce", "Mozzarella", "Basil"}},
	{"Pepperoni", "Spicy pepperoni on a classic base", 12.99, "Classiche", []string{"Tomato Sauce", "Mozzarella", "Pepperoni"}},
	{"Vegetarian", "Peppers and olives", 11.99, "Vegetariane", []string{"Tomato Sauce", "Mozzarella", "Bell Peppers", "Olives"}},
	{"Quattro Formaggi", "Four cheeses, no tomato", 13.49, "Bianche", []string{"Mozzarella", "Gorgonzola", "Ricotta"}},
}

// Seed fills an empty catalog with the demo menu inside one transaction.
// It returns false without writing anything when pizzas already exist.
// Categories and ingredients are matched by name, so a catalog whose pizzas
// were all deleted can be seeded again. pizzas builds the inserter on the
// seed transaction.
func Seed(ctx context.Context, db *gorm.DB, pizzas func(tx *gorm.DB) PizzaInserter) (bool, error) {
	seeded := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Pizza{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			log.Info("Database already seeded with initial data")
			return nil
		}

		log.Info("Database is empty, seeding initial data")

		categoryIDs := make(map[string]int, len(seedCategories))
		for _, name := range seedCategories {
			var category models.Category
			if err := tx.Where(models.Category{Name: name}).FirstOrCreate(&category).Error; err != nil {
				return fmt.Errorf("seed category %q: %w", name, err)
			}
			categoryIDs[name] = category.ID
		}

		ingredientIDs := make(map[string]int, len(seedIngredients))
		for _, name := range seedIngredients {
			var ingredient models.Ingredient
			if err := tx.Where(models.Ingredient{Name: name}).FirstOrCreate(&ingredient).Error; err != nil {
				return fmt.Errorf("seed ingredient %q: %w", name, err)
			}
			ingredientIDs[name] = ingredient.ID
		}

		inserter := pizzas(tx)
		for _, p := range seedPizzas {
			categoryID := categoryIDs[p.category]
			ids := make([]int, 0, len(p.ingredients))
			for _, name := range p.ingredients {
				ids = append(ids, ingredientIDs[name])
			}
			pizza := models.Pizza{
				Name:        p.name,
				Description: p.description,
				Price:       p.price,
				CategoryID:  &categoryID,
			}
			id, err := inserter.InsertPizza(ctx, pizza, ids)
			if err != nil {
				return fmt.Errorf("seed pizza %q: %w", p.name, err)
			}
			log.WithFields(logrus.Fields{"pizza_id": id, "name": p.name}).Debug("Seeded pizza")
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if seeded {
		log.Info("Database seeded successfully")
	}
	return seeded, nil
}
