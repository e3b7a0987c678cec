package models

type Ingredient struct {
	ID   int    `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}

// PizzaIngredient is the junction row: its existence alone means the pizza
// contains the ingredient. The composite key keeps pairs unique.
type PizzaIngredient struct {
	PizzaID      int        `gorm:"primaryKey;autoIncrement:false"`
	IngredientID int        `gorm:"primaryKey;autoIncrement:false;index"`
	Pizza        Pizza      `gorm:"foreignKey:PizzaID"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID"`
}

func (PizzaIngredient) TableName() string {
	return "pizza_ingredients"
}
