package services

import (
	"context"
	"errors"
	"strings"

	"github.com/franciscosanchezn/pizza-catalog-api/internal/models"
	"gorm.io/gorm"
)

// ErrNameTaken is returned when a category or ingredient name already exists
var ErrNameTaken = errors.New("name_already_exists")

// ErrEmptyName is returned when a category or ingredient has a blank name
var ErrEmptyName = errors.New("name_required")

// CatalogService manages the categories and ingredients pizzas reference
type CatalogService interface {
	// ListCategories returns all categories ordered by id
	ListCategories(ctx context.Context) ([]models.Category, error)
	// CreateCategory stores a new category and fills in its ID
	CreateCategory(ctx context.Context, category *models.Category) error
	// ListIngredients returns all ingredients ordered by id
	ListIngredients(ctx context.Context) ([]models.Ingredient, error)
	// CreateIngredient stores a new ingredient and fills in its ID
	CreateIngredient(ctx context.Context, ingredient *models.Ingredient) error
}

type catalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(db *gorm.DB) CatalogService {
	return &catalogService{db: db}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, category *models.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return ErrEmptyName
	}
	return translate(s.db.WithContext(ctx).Create(category).Error)
}

func (s *catalogService) ListIngredients(ctx context.Context) ([]models.Ingredient, error) {
	ingredients := []models.Ingredient{}
	if err := s.db.WithContext(ctx).Order("id").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (s *catalogService) CreateIngredient(ctx context.Context, ingredient *models.Ingredient) error {
	ingredient.Name = strings.TrimSpace(ingredient.Name)
	if ingredient.Name == "" {
		return ErrEmptyName
	}
	return translate(s.db.WithContext(ctx).Create(ingredient).Error)
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrNameTaken
	}
	return err
}
