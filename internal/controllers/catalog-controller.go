package controllers

import (
	"errors"
	"net/http"

	"github.com/franciscosanchezn/pizza-catalog-api/internal/models"
	"github.com/franciscosanchezn/pizza-catalog-api/internal/services"
	"github.com/gin-gonic/gin"
)

// CatalogController serves categories and ingredients
type CatalogController interface {
	GetCategories(c *gin.Context)
	CreateCategory(c *gin.Context)
	GetIngredients(c *gin.Context)
	CreateIngredient(c *gin.Context)
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

type catalogController struct {
	service services.CatalogService
}

// NewCatalogController creates a new instance of CatalogController
func NewCatalogController(service services.CatalogService) CatalogController {
	return &catalogController{service: service}
}

// GetCategories godoc
// @Summary List categories
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Category
// @Router /api/v1/public/categories [get]
func (c *catalogController) GetCategories(ctx *gin.Context) {
	categories, err := c.service.ListCategories(ctx.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list categories")
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to retrieve categories"))
		return
	}
	ctx.JSON(http.StatusOK, categories)
}

// CreateCategory godoc
// @Summary Create a category
// @Tags catalog
// @Accept json
// @Produce json
// @Param category body nameRequest true "Category name"
// @Success 201 {object} models.Category
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/categories [post]
func (c *catalogController) CreateCategory(ctx *gin.Context) {
	var req nameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, "Invalid request body"))
		return
	}

	category := models.Category{Name: req.Name}
	if err := c.service.CreateCategory(ctx.Request.Context(), &category); err != nil {
		respondCatalogError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, category)
}

// GetIngredients godoc
// @Summary List ingredients
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Ingredient
// @Router /api/v1/public/ingredients [get]
func (c *catalogController) GetIngredients(ctx *gin.Context) {
	ingredients, err := c.service.ListIngredients(ctx.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list ingredients")
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to retrieve ingredients"))
		return
	}
	ctx.JSON(http.StatusOK, ingredients)
}

// CreateIngredient godoc
// @Summary Create an ingredient
// @Tags catalog
// @Accept json
// @Produce json
// @Param ingredient body nameRequest true "Ingredient name"
// @Success 201 {object} models.Ingredient
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/ingredients [post]
func (c *catalogController) CreateIngredient(ctx *gin.Context) {
	var req nameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, "Invalid request body"))
		return
	}

	ingredient := models.Ingredient{Name: req.Name}
	if err := c.service.CreateIngredient(ctx.Request.Context(), &ingredient); err != nil {
		respondCatalogError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, ingredient)
}

func respondCatalogError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyName):
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, "name must not be blank"))
	case errors.Is(err, services.ErrNameTaken):
		ctx.JSON(http.StatusConflict, models.NewAPIError(models.ErrConflict, "name already exists"))
	default:
		log.WithError(err).Error("Catalog write failed")
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Internal server error"))
	}
}
