package repository

// The join aliases the category and ingredient id/name columns so the three
// source tables never collide on "id" or "name". The column order is the
// one PizzaRow.scanDest expects.
const pizzaColumns = `p.id, p.name, p.description, p.price,
	c.id AS category_id, c.name AS category_name,
	i.id AS ingredient_id, i.name AS ingredient_name`

const pizzaJoin = `FROM pizzas p
	LEFT JOIN categories c ON p.category_id = c.id
	LEFT JOIN pizza_ingredients pi ON p.id = pi.pizza_id
	LEFT JOIN ingredients i ON pi.ingredient_id = i.id`

const pizzaOrder = `ORDER BY p.id, i.id`

const (
	selectAllPizzas       = `SELECT ` + pizzaColumns + ` ` + pizzaJoin + ` ` + pizzaOrder
	selectAllPizzasLimit  = selectAllPizzas + ` LIMIT ?`
	selectPizzasByName    = `SELECT ` + pizzaColumns + ` ` + pizzaJoin + ` WHERE p.name = ? ` + pizzaOrder
	selectPizzaByID       = `SELECT ` + pizzaColumns + ` ` + pizzaJoin + ` WHERE p.id = ? ` + pizzaOrder
	insertPizza           = `INSERT INTO pizzas (name, description, price, category_id) VALUES (?, ?, ?, ?) RETURNING id`
	updatePizza           = `UPDATE pizzas SET name = ?, description = ?, price = ?, category_id = ? WHERE id = ?`
	deletePizza           = `DELETE FROM pizzas WHERE id = ?`
	countPizza            = `SELECT COUNT(*) FROM pizzas WHERE id = ?`
	countCategory         = `SELECT COUNT(*) FROM categories WHERE id = ?`
	selectIngredientIDsIn = `SELECT id FROM ingredients WHERE id IN ?`
	selectJunctionIDs     = `SELECT ingredient_id FROM pizza_ingredients WHERE pizza_id = ? ORDER BY ingredient_id`
	deleteJunctionIDs     = `DELETE FROM pizza_ingredients WHERE pizza_id = ? AND ingredient_id IN ?`
	deleteJunctionAll     = `DELETE FROM pizza_ingredients WHERE pizza_id = ?`
)
