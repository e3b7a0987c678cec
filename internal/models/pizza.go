package models

// Pizza is the aggregate rebuilt from the pizzas, categories and
// pizza_ingredients tables. Category and Ingredients are references only,
// the pizza never owns those rows.
type Pizza struct {
	ID          int          `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"not null;index"`
	Description string       `json:"description"`
	Price       float64      `json:"price" gorm:"type:decimal(10,2);not null"`
	CategoryID  *int         `json:"category_id"`
	Category    *Category    `json:"category" gorm:"foreignKey:CategoryID"`
	Ingredients []Ingredient `json:"ingredients" gorm:"-"`
}

func (Pizza) TableName() string {
	return "pizzas"
}

// IngredientIDs returns the ids of the pizza's ingredients in list order
func (p Pizza) IngredientIDs() []int {
	ids := make([]int, 0, len(p.Ingredients))
	for _, ingredient := range p.Ingredients {
		ids = append(ids, ingredient.ID)
	}
	return ids
}
