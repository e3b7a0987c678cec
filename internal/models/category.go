package models

// Category groups pizzas, e.g. "Classiche" or "Bianche"
type Category struct {
	ID   int    `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

func (Category) TableName() string {
	return "categories"
}
