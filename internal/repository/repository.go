// Package repository maps the pizzas, categories, ingredients and
// pizza_ingredients tables onto models.Pizza aggregates and back.
//
// Reads run one outer join and fold the flattened rows with an Aggregator.
// Writes run inside a single transaction: the pizza row and its junction
// rows either all change or none do, so a caller never observes a pizza
// with a half-written ingredient set.
package repository

import (
	"context"
	"errors"

	"github.com/franciscosanchezn/pizza-catalog-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel adjusts the package logger, main calls it once at startup
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// PizzaRepository is the data-access surface for pizzas
type PizzaRepository interface {
	// ListPizzas returns every pizza. A non-nil limit caps the number of
	// joined rows scanned, not the number of pizzas: a pizza with three
	// ingredients uses three rows, so limit=2 may return a single pizza
	// with only part of its ingredients.
	ListPizzas(ctx context.Context, limit *int) ([]models.Pizza, error)
	// FindPizzasByName returns the pizzas whose name equals name exactly
	FindPizzasByName(ctx context.Context, name string) ([]models.Pizza, error)
	// GetPizzaByID returns nil, nil when no pizza has the id
	GetPizzaByID(ctx context.Context, id int) (*models.Pizza, error)
	// InsertPizza stores the pizza with the given ingredients and returns its new id
	InsertPizza(ctx context.Context, pizza models.Pizza, ingredientIDs []int) (int, error)
	// UpdatePizza replaces the pizza's fields and ingredient set. It returns
	// the number of pizza rows changed; zero means no such pizza.
	UpdatePizza(ctx context.Context, id int, pizza models.Pizza, ingredientIDs []int) (int64, error)
	// DeletePizza removes the pizza and its junction rows, returning the pizza rows removed
	DeletePizza(ctx context.Context, id int) (int64, error)
	// PizzaIngredientIDs reads the junction table directly for one pizza
	PizzaIngredientIDs(ctx context.Context, pizzaID int) ([]int, error)
}

type pizzaRepository struct {
	db *gorm.DB
}

// NewPizzaRepository returns a repository backed by db. The caller owns
// db and closes it at shutdown.
func NewPizzaRepository(db *gorm.DB) PizzaRepository {
	return &pizzaRepository{db: db}
}

func (r *pizzaRepository) ListPizzas(ctx context.Context, limit *int) ([]models.Pizza, error) {
	const op = "repository.ListPizzas"
	if limit == nil {
		return r.queryPizzas(ctx, op, selectAllPizzas)
	}
	if *limit <= 0 {
		return nil, newError(KindQuery, op, ErrInvalidLimit)
	}
	return r.queryPizzas(ctx, op, selectAllPizzasLimit, *limit)
}

func (r *pizzaRepository) FindPizzasByName(ctx context.Context, name string) ([]models.Pizza, error) {
	return r.queryPizzas(ctx, "repository.FindPizzasByName", selectPizzasByName, name)
}

func (r *pizzaRepository) GetPizzaByID(ctx context.Context, id int) (*models.Pizza, error) {
	pizzas, err := r.queryPizzas(ctx, "repository.GetPizzaByID", selectPizzaByID, id)
	if err != nil || len(pizzas) == 0 {
		return nil, err
	}
	return &pizzas[0], nil
}

func (r *pizzaRepository) InsertPizza(ctx context.Context, pizza models.Pizza, ingredientIDs []int) (int, error) {
	const op = "repository.InsertPizza"
	var id int
	err := r.inTx(ctx, op, func(w relationWriter) error {
		var err error
		id, err = w.insert(pizza, uniqueIDs(ingredientIDs))
		return err
	})
	if err != nil {
		log.WithError(err).WithField("op", op).Error("Failed to insert pizza")
		return 0, err
	}
	log.WithFields(logrus.Fields{"op": op, "pizza_id": id}).Debug("Pizza inserted")
	return id, nil
}

func (r *pizzaRepository) UpdatePizza(ctx context.Context, id int, pizza models.Pizza, ingredientIDs []int) (int64, error) {
	const op = "repository.UpdatePizza"
	var affected int64
	err := r.inTx(ctx, op, func(w relationWriter) error {
		var err error
		affected, err = w.update(id, pizza, uniqueIDs(ingredientIDs))
		return err
	})
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{"op": op, "pizza_id": id}).Error("Failed to update pizza")
		return 0, err
	}
	log.WithFields(logrus.Fields{"op": op, "pizza_id": id, "rows": affected}).Debug("Pizza updated")
	return affected, nil
}

func (r *pizzaRepository) DeletePizza(ctx context.Context, id int) (int64, error) {
	const op = "repository.DeletePizza"
	var affected int64
	err := r.inTx(ctx, op, func(w relationWriter) error {
		var err error
		affected, err = w.remove(id)
		return err
	})
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{"op": op, "pizza_id": id}).Error("Failed to delete pizza")
		return 0, err
	}
	log.WithFields(logrus.Fields{"op": op, "pizza_id": id, "rows": affected}).Debug("Pizza deleted")
	return affected, nil
}

func (r *pizzaRepository) PizzaIngredientIDs(ctx context.Context, pizzaID int) ([]int, error) {
	var ids []int
	err := r.withConn(ctx, "repository.PizzaIngredientIDs", func(conn *gorm.DB) error {
		var err error
		ids, err = relationWriter{tx: conn}.currentIngredients(pizzaID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int{}
	}
	return ids, nil
}

// queryPizzas runs one join query on a dedicated connection and folds its rows
func (r *pizzaRepository) queryPizzas(ctx context.Context, op, query string, args ...any) ([]models.Pizza, error) {
	var pizzas []models.Pizza
	err := r.withConn(ctx, op, func(conn *gorm.DB) error {
		rows, err := conn.Raw(query, args...).Rows()
		if err != nil {
			return err
		}
		defer rows.Close()

		pizzas, err = Aggregate(rows)
		return err
	})
	if err != nil {
		log.WithError(err).WithField("op", op).Error("Failed to read pizzas")
		return nil, err
	}
	log.WithFields(logrus.Fields{"op": op, "pizzas": len(pizzas)}).Debug("Pizzas read")
	return pizzas, nil
}

// withConn pins one pooled connection for the duration of fn and always
// hands it back. A failure to obtain the connection is a connection failure.
func (r *pizzaRepository) withConn(ctx context.Context, op string, fn func(conn *gorm.DB) error) error {
	acquired := false
	err := r.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		acquired = true
		return fn(conn)
	})
	return r.wrapScoped(op, acquired, err)
}

// inTx runs fn inside a transaction; any error rolls the whole write back
func (r *pizzaRepository) inTx(ctx context.Context, op string, fn func(w relationWriter) error) error {
	acquired := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acquired = true
		return fn(relationWriter{tx: tx})
	})
	return r.wrapScoped(op, acquired, err)
}

func (r *pizzaRepository) wrapScoped(op string, acquired bool, err error) error {
	if err == nil {
		return nil
	}
	var repoErr *Error
	if errors.As(err, &repoErr) {
		if repoErr.Op == "" {
			repoErr.Op = op
		}
		return repoErr
	}
	if !acquired {
		if kind, _ := classify(err); kind != KindCanceled {
			return newError(KindConnection, op, err)
		}
	}
	return wrap(op, err)
}
