package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/franciscosanchezn/pizza-catalog-api/internal/config"
	"github.com/franciscosanchezn/pizza-catalog-api/internal/controllers"
	"github.com/franciscosanchezn/pizza-catalog-api/internal/database"
	"github.com/franciscosanchezn/pizza-catalog-api/internal/middleware"
	"github.com/franciscosanchezn/pizza-catalog-api/internal/models"
	"github.com/franciscosanchezn/pizza-catalog-api/internal/repository"
	"github.com/franciscosanchezn/pizza-catalog-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// application bundles what the routes need
type application struct {
	config  *config.Config
	pizzas  controllers.PizzaController
	catalog controllers.CatalogController
}

// @title Pizza Catalog API
// @version 1.0
// @description Pizzas with their category and ingredients
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := run(); err != nil {
		log.WithError(err).Fatal("Server stopped with error")
	}
}

func run() error {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	configuration, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := setupDatabase(ctx, configuration)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.WithError(err).Warn("Failed to close database")
		}
	}()

	app := &application{
		config:  configuration,
		pizzas:  controllers.NewPizzaController(repository.NewPizzaRepository(db)),
		catalog: controllers.NewCatalogController(services.NewCatalogService(db)),
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%v:%d", configuration.Host, configuration.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger sets the JSON formatter and pushes the APP_ENV level to every package logger
func setUpLogger() {
	level := config.LevelForEnvironment(config.GetEnvWithDefault("APP_ENV", "development"))
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if parsed, err := log.ParseLevel(raw); err == nil {
			level = parsed
		} else {
			log.Warnf("Ignoring invalid LOG_LEVEL %q", raw)
		}
	}

	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(level)
	database.SetLogLevel(level)
	repository.SetLogLevel(level)
	controllers.SetLogLevel(level)
	middleware.SetLogLevel(level)
}

// setupDatabase connects, migrates and optionally seeds the catalog
func setupDatabase(ctx context.Context, conf *config.Config) (*gorm.DB, error) {
	db, err := database.InitDatabase(ctx, conf.Database())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	if conf.DBSeed {
		if _, err := database.Seed(ctx, db, pizzaInserter); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("seed database: %w", err)
		}
	}
	return db, nil
}

// setupRouter initializes the Gin router and sets up the routes
func (app *application) setupRouter() *gin.Engine {
	if app.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	if len(app.config.CORSOrigins) > 0 {
		router.Use(middleware.CORS(app.config.CORSOrigins))
	}

	app.setupRoutes(router)

	return router
}

// setupRoutes defines the routes for the Gin router
func (app *application) setupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", healthCheckHandler)

	if app.config.Environment == "development" {
		router.GET("/test-token", app.generateTestTokenHandler)
	}

	v1 := router.Group("/api/v1")
	{
		publicApi := v1.Group("/public")
		{
			publicApi.GET("/pizzas", app.pizzas.GetAllPizzas)
			publicApi.GET("/pizzas/:id", app.pizzas.GetPizzaByID)
			publicApi.GET("/categories", app.catalog.GetCategories)
			publicApi.GET("/ingredients", app.catalog.GetIngredients)
		}

		protectedApi := v1.Group("/protected")
		protectedApi.Use(middleware.JWTAuth([]byte(app.config.JWTSecret)))
		{
			adminApi := protectedApi.Group("/admin")
			adminApi.Use(middleware.RequireRole("admin"))
			{
				adminApi.POST("/pizzas", app.pizzas.CreatePizza)
				adminApi.PUT("/pizzas/:id", app.pizzas.UpdatePizza)
				adminApi.DELETE("/pizzas/:id", app.pizzas.DeletePizza)
				adminApi.POST("/categories", app.catalog.CreateCategory)
				adminApi.POST("/ingredients", app.catalog.CreateIngredient)
			}
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// generateTestTokenHandler issues a one-day admin token, development only
func (app *application) generateTestTokenHandler(c *gin.Context) {
	const ttl = 24 * time.Hour
	token, err := middleware.IssueToken([]byte(app.config.JWTSecret), "test-user-123", "admin", ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Could not generate token", map[string]interface{}{"error": err.Error()}))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"type":       "Bearer",
		"expires_in": int(ttl.Seconds()),
	})
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "pizza-catalog-api",
	})
}

// pizzaInserter seeds pizzas through the repository on the seed transaction
func pizzaInserter(tx *gorm.DB) database.PizzaInserter {
	return repository.NewPizzaRepository(tx)
}
