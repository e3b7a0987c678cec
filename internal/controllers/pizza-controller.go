package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/pizza-catalog-api/internal/models"
	"github.com/franciscosanchezn/pizza-catalog-api/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel adjusts the controllers logger
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// PizzaController handles HTTP requests related to pizzas
type PizzaController interface {
	// GetAllPizzas lists pizzas, or finds them by exact name
	GetAllPizzas(c *gin.Context)
	// GetPizzaByID retrieves a pizza by its ID
	GetPizzaByID(c *gin.Context)
	// CreatePizza creates a new pizza
	CreatePizza(c *gin.Context)
	// UpdatePizza updates an existing pizza
	UpdatePizza(c *gin.Context)
	// DeletePizza deletes a pizza by its ID
	DeletePizza(c *gin.Context)
}

// PizzaRequest is the body accepted by create and update
type PizzaRequest struct {
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	Price         float64 `json:"price" binding:"gte=0"`
	CategoryID    *int    `json:"category_id"`
	IngredientIDs []int   `json:"ingredient_ids"`
}

func (r PizzaRequest) pizza() models.Pizza {
	return models.Pizza{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		CategoryID:  r.CategoryID,
	}
}

// CreatedResponse is returned by CreatePizza
type CreatedResponse struct {
	ID int `json:"id"`
}

type controller struct {
	repo repository.PizzaRepository
}

// NewPizzaController creates a new instance of PizzaController
func NewPizzaController(repo repository.PizzaRepository) PizzaController {
	return &controller{repo: repo}
}

// GetAllPizzas godoc
// @Summary List pizzas
// @Description List pizzas with category and ingredients. limit caps the joined rows scanned, so a pizza near the cap may come back with part of its ingredients.
// @Tags pizzas
// @Produce json
// @Param limit query int false "Maximum joined rows to scan"
// @Param name query string false "Exact pizza name"
// @Success 200 {array} models.Pizza
// @Failure 400 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Router /api/v1/public/pizzas [get]
func (c *controller) GetAllPizzas(ctx *gin.Context) {
	if name, ok := ctx.GetQuery("name"); ok {
		pizzas, err := c.repo.FindPizzasByName(ctx.Request.Context(), name)
		if err != nil {
			respondRepositoryError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, pizzas)
		return
	}

	var limit *int
	if raw, ok := ctx.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid limit format"))
			return
		}
		limit = &n
	}

	pizzas, err := c.repo.ListPizzas(ctx.Request.Context(), limit)
	if err != nil {
		respondRepositoryError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, pizzas)
}

// GetPizzaByID godoc
// @Summary Get pizza by ID
// @Tags pizzas
// @Produce json
// @Param id path int true "Pizza ID"
// @Success 200 {object} models.Pizza
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/pizzas/{id} [get]
func (c *controller) GetPizzaByID(ctx *gin.Context) {
	pizzaID, ok := pizzaIDParam(ctx)
	if !ok {
		return
	}

	pizza, err := c.repo.GetPizzaByID(ctx.Request.Context(), pizzaID)
	if err != nil {
		respondRepositoryError(ctx, err)
		return
	}
	if pizza == nil {
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrPizzaNotFound, "Pizza not found"))
		return
	}
	ctx.JSON(http.StatusOK, pizza)
}

// CreatePizza godoc
// @Summary Create a new pizza
// @Tags pizzas
// @Accept json
// @Produce json
// @Param pizza body PizzaRequest true "Pizza with ingredient ids"
// @Success 201 {object} CreatedResponse
// @Failure 400 {object} models.APIError
// @Failure 422 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/pizzas [post]
func (c *controller) CreatePizza(ctx *gin.Context) {
	var req PizzaRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrPizzaInvalidData, "Invalid request body",
			map[string]interface{}{"reason": err.Error()}))
		return
	}

	id, err := c.repo.InsertPizza(ctx.Request.Context(), req.pizza(), req.IngredientIDs)
	if err != nil {
		respondRepositoryError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

// UpdatePizza godoc
// @Summary Update a pizza
// @Description Replace the pizza's fields and ingredient set
// @Tags pizzas
// @Accept json
// @Produce json
// @Param id path int true "Pizza ID"
// @Param pizza body PizzaRequest true "Pizza with ingredient ids"
// @Success 200 {object} models.Pizza
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 422 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/pizzas/{id} [put]
func (c *controller) UpdatePizza(ctx *gin.Context) {
	pizzaID, ok := pizzaIDParam(ctx)
	if !ok {
		return
	}

	var req PizzaRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrPizzaInvalidData, "Invalid request body",
			map[string]interface{}{"reason": err.Error()}))
		return
	}

	affected, err := c.repo.UpdatePizza(ctx.Request.Context(), pizzaID, req.pizza(), req.IngredientIDs)
	if err != nil {
		respondRepositoryError(ctx, err)
		return
	}
	if affected == 0 {
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrPizzaNotFound, "Pizza not found"))
		return
	}

	updated, err := c.repo.GetPizzaByID(ctx.Request.Context(), pizzaID)
	if err != nil {
		respondRepositoryError(ctx, err)
		return
	}
	if updated == nil {
		// deleted between the update and the read back
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrPizzaNotFound, "Pizza not found"))
		return
	}
	ctx.JSON(http.StatusOK, updated)
}

// DeletePizza godoc
// @Summary Delete a pizza
// @Tags pizzas
// @Param id path int true "Pizza ID"
// @Success 204
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/pizzas/{id} [delete]
func (c *controller) DeletePizza(ctx *gin.Context) {
	pizzaID, ok := pizzaIDParam(ctx)
	if !ok {
		return
	}

	affected, err := c.repo.DeletePizza(ctx.Request.Context(), pizzaID)
	if err != nil {
		respondRepositoryError(ctx, err)
		return
	}
	if affected == 0 {
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrPizzaNotFound, "Pizza not found"))
		return
	}
	ctx.Status(http.StatusNoContent)
}

func pizzaIDParam(ctx *gin.Context) (int, bool) {
	pizzaID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid pizza ID format"))
		return 0, false
	}
	return pizzaID, true
}

// respondRepositoryError turns a repository failure into a status code and APIError
func respondRepositoryError(ctx *gin.Context, err error) {
	status, apiErr := http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Internal server error")

	switch {
	case errors.Is(err, repository.ErrInvalidLimit):
		status, apiErr = http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "limit must be a positive integer")
	case errors.Is(err, repository.ErrCategoryNotFound):
		status, apiErr = http.StatusUnprocessableEntity, models.NewAPIError(models.ErrCategoryNotFound, err.Error())
	case errors.Is(err, repository.ErrIngredientNotFound):
		status, apiErr = http.StatusUnprocessableEntity, models.NewAPIError(models.ErrIngredientNotFound, err.Error())
	case errors.Is(err, repository.ErrReferenceViolation):
		status, apiErr = http.StatusUnprocessableEntity, models.NewAPIError(models.ErrDanglingReference, "Referenced row does not exist")
	case repository.IsKind(err, repository.KindConnection):
		status, apiErr = http.StatusServiceUnavailable, models.NewAPIError(models.ErrServiceUnavailable, "Database unavailable")
	case repository.IsKind(err, repository.KindCanceled):
		status, apiErr = http.StatusGatewayTimeout, models.NewAPIError(models.ErrTimeout, "Request canceled or timed out")
	}

	log.WithError(err).WithFields(logrus.Fields{
		"path":   ctx.FullPath(),
		"status": status,
		"kind":   repository.KindOf(err),
	}).Error("Repository call failed")
	ctx.JSON(status, apiErr)
}
