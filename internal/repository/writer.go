package repository

import (
	"fmt"
	"sort"

	"github.com/franciscosanchezn/pizza-catalog-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// relationWriter performs the parent write and keeps pizza_ingredients in
// step with it. Every method expects tx to be an open transaction.
type relationWriter struct {
	tx *gorm.DB
}

// insert writes the pizza row, reads back its id from the same statement
// and adds one junction row per ingredient.
func (w relationWriter) insert(pizza models.Pizza, ingredientIDs []int) (int, error) {
	if err := w.checkReferences(pizza.CategoryID, ingredientIDs); err != nil {
		return 0, err
	}

	var id int
	result := w.tx.Raw(insertPizza, pizza.Name, pizza.Description, pizza.Price, pizza.CategoryID).Scan(&id)
	if result.Error != nil {
		return 0, result.Error
	}
	if id == 0 {
		return 0, fmt.Errorf("insert pizza %q: store returned no id", pizza.Name)
	}

	if err := w.addIngredients(id, ingredientIDs); err != nil {
		return 0, err
	}
	return id, nil
}

// update rewrites the pizza row and reconciles its junction rows. It returns
// the affected pizza rows; zero means there is no such pizza and nothing
// was written. A missing pizza is reported before any bad reference.
func (w relationWriter) update(id int, pizza models.Pizza, ingredientIDs []int) (int64, error) {
	var count int64
	if err := w.tx.Raw(countPizza, id).Scan(&count).Error; err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	if err := w.checkReferences(pizza.CategoryID, ingredientIDs); err != nil {
		return 0, err
	}

	result := w.tx.Exec(updatePizza, pizza.Name, pizza.Description, pizza.Price, pizza.CategoryID, id)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, nil
	}

	if err := w.syncIngredients(id, ingredientIDs); err != nil {
		return 0, err
	}
	return result.RowsAffected, nil
}

// remove deletes the junction rows of a pizza and then the pizza itself
func (w relationWriter) remove(id int) (int64, error) {
	if err := w.tx.Exec(deleteJunctionAll, id).Error; err != nil {
		return 0, err
	}
	result := w.tx.Exec(deletePizza, id)
	return result.RowsAffected, result.Error
}

// syncIngredients makes the junction rows of pizzaID equal ingredientIDs:
// rows for ids no longer wanted are deleted, missing ones are inserted and
// the rest are left in place.
func (w relationWriter) syncIngredients(pizzaID int, ingredientIDs []int) error {
	current, err := w.currentIngredients(pizzaID)
	if err != nil {
		return err
	}

	added, removed := diffIDs(current, ingredientIDs)
	log.WithFields(logrus.Fields{
		"pizza_id": pizzaID,
		"added":    added,
		"removed":  removed,
	}).Debug("Reconciling pizza ingredients")

	if len(removed) > 0 {
		if err := w.tx.Exec(deleteJunctionIDs, pizzaID, removed).Error; err != nil {
			return err
		}
	}
	return w.addIngredients(pizzaID, added)
}

func (w relationWriter) currentIngredients(pizzaID int) ([]int, error) {
	var ids []int
	if err := w.tx.Raw(selectJunctionIDs, pizzaID).Scan(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (w relationWriter) addIngredients(pizzaID int, ingredientIDs []int) error {
	if len(ingredientIDs) == 0 {
		return nil
	}
	rows := make([]models.PizzaIngredient, 0, len(ingredientIDs))
	for _, ingredientID := range ingredientIDs {
		rows = append(rows, models.PizzaIngredient{PizzaID: pizzaID, IngredientID: ingredientID})
	}
	return w.tx.Omit(clause.Associations).Create(&rows).Error
}

// checkReferences fails with ErrCategoryNotFound or ErrIngredientNotFound
// before anything is written, so callers can tell a bad reference apart
// from a missing pizza.
func (w relationWriter) checkReferences(categoryID *int, ingredientIDs []int) error {
	if categoryID != nil {
		var count int64
		if err := w.tx.Raw(countCategory, *categoryID).Scan(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return newError(KindQuery, "", fmt.Errorf("%w: id %d", ErrCategoryNotFound, *categoryID))
		}
	}

	if len(ingredientIDs) == 0 {
		return nil
	}
	var found []int
	if err := w.tx.Raw(selectIngredientIDsIn, ingredientIDs).Scan(&found).Error; err != nil {
		return err
	}
	if missing, _ := diffIDs(found, ingredientIDs); len(missing) > 0 {
		return newError(KindQuery, "", fmt.Errorf("%w: ids %v", ErrIngredientNotFound, missing))
	}
	return nil
}

// diffIDs compares the stored ids with the wanted ones. added holds wanted
// ids that are not stored, removed holds stored ids that are not wanted.
// Both come back sorted and without duplicates.
func diffIDs(current, wanted []int) (added, removed []int) {
	have := make(map[int]struct{}, len(current))
	for _, id := range current {
		have[id] = struct{}{}
	}
	want := make(map[int]struct{}, len(wanted))
	for _, id := range wanted {
		want[id] = struct{}{}
	}

	for id := range want {
		if _, ok := have[id]; !ok {
			added = append(added, id)
		}
	}
	for id := range have {
		if _, ok := want[id]; !ok {
			removed = append(removed, id)
		}
	}
	sort.Ints(added)
	sort.Ints(removed)
	return added, removed
}

// uniqueIDs drops repeated ids, keeping first-seen order
func uniqueIDs(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
