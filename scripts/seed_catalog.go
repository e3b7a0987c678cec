package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/franciscosanchezn/pizza-catalog-api/internal/database"
	"github.com/franciscosanchezn/pizza-catalog-api/internal/middleware"
	"github.com/franciscosanchezn/pizza-catalog-api/internal/repository"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	driver := flag.String("driver", "sqlite", "Database driver (sqlite or postgres)")
	path := flag.String("path", "pizza.sqlite", "SQLite database file")
	dsnHost := flag.String("host", "localhost", "PostgreSQL host")
	name := flag.String("name", "pizzadb", "PostgreSQL database name")
	user := flag.String("user", "pizza", "PostgreSQL user")
	password := flag.String("password", os.Getenv("DB_PASSWORD"), "PostgreSQL password")
	secret := flag.String("jwt-secret", "", "Also print an admin token signed with this secret")
	flag.Parse()

	log.SetFormatter(&log.JSONFormatter{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.InitDatabase(ctx, database.DatabaseConfig{
		Driver:     *driver,
		Path:       *path,
		Host:       *dsnHost,
		Port:       "5432",
		Name:       *name,
		User:       *user,
		Password:   *password,
		SSLMode:    "disable",
		MaxRetries: 1,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Close(db)

	if err := database.Migrate(ctx, db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	seeded, err := database.Seed(ctx, db, pizzaInserter)
	if err != nil {
		log.WithError(err).Fatal("Failed to seed database")
	}
	if !seeded {
		fmt.Println("Catalog already has pizzas, nothing to do")
	} else {
		fmt.Println("Demo catalog created")
	}

	if *secret != "" {
		token, err := middleware.IssueToken([]byte(*secret), "seed-admin", "admin", 24*time.Hour)
		if err != nil {
			log.WithError(err).Fatal("Failed to issue token")
		}
		fmt.Printf("\nAdmin token (24h):\n%s\n", token)
		fmt.Printf("\nUsage:\n  curl -H 'Authorization: Bearer %s' ...\n", token)
	}
}

// pizzaInserter seeds pizzas through the repository on the seed transaction
func pizzaInserter(tx *gorm.DB) database.PizzaInserter {
	return repository.NewPizzaRepository(tx)
}
