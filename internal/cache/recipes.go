package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"whiskr/internal/domain"
	"whiskr/internal/repository"
)

// RecipeRepository serves single-recipe reads from a Store and invalidates on
// writes. Cache failures are logged and fall through to the wrapped repository.
//
// A read only fills the cache when no write completed while it was loading,
// so a load that raced an update or delete never caches the old row.
type RecipeRepository struct {
	next    repository.RecipeRepository
	store   Store
	logger  logrus.FieldLogger
	observe func(hit bool)

	mu     sync.Mutex
	writes uint64
}

// NewRecipeRepository wraps next. observe may be nil.
func NewRecipeRepository(next repository.RecipeRepository, store Store, logger logrus.FieldLogger, observe func(hit bool)) *RecipeRepository {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if observe == nil {
		observe = func(bool) {}
	}
	return &RecipeRepository{next: next, store: store, logger: logger, observe: observe}
}

func recipeKey(id string) string {
	return "recipe:" + id
}

func (r *RecipeRepository) Create(ctx context.Context, recipe *domain.Recipe) error {
	return r.next.Create(ctx, recipe)
}

func (r *RecipeRepository) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	key := recipeKey(id)

	data, err := r.store.Get(ctx, key)
	switch {
	case err == nil:
		var recipe domain.Recipe
		if jsonErr := json.Unmarshal(data, &recipe); jsonErr == nil {
			r.observe(true)
			return &recipe, nil
		}
		r.logger.WithField("key", key).Warn("dropping corrupt cache entry")
		r.invalidate(ctx, id)
	case !errors.Is(err, ErrMiss):
		r.logger.WithField("key", key).Warnf("cache get: %v", err)
	}
	r.observe(false)

	gen := r.generation()
	recipe, err := r.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(recipe); err == nil {
		r.fill(ctx, key, data, gen)
	}
	return recipe, nil
}

func (r *RecipeRepository) generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

// fill stores data unless a write finished after gen was taken.
func (r *RecipeRepository) fill(ctx context.Context, key string, data []byte, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writes != gen {
		return
	}
	if err := r.store.Set(ctx, key, data); err != nil {
		r.logger.WithField("key", key).Warnf("cache set: %v", err)
	}
}

func (r *RecipeRepository) List(ctx context.Context, search string) ([]domain.Recipe, error) {
	return r.next.List(ctx, search)
}

func (r *RecipeRepository) Update(ctx context.Context, recipe *domain.Recipe) error {
	err := r.next.Update(ctx, recipe)
	r.written(ctx, recipe.ID)
	return err
}

func (r *RecipeRepository) Delete(ctx context.Context, id string) error {
	err := r.next.Delete(ctx, id)
	r.written(ctx, id)
	return err
}

// written bumps the write generation and drops the entry in one step with
// respect to fill.
func (r *RecipeRepository) written(ctx context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	r.invalidate(ctx, id)
}

func (r *RecipeRepository) invalidate(ctx context.Context, id string) {
	if err := r.store.Delete(ctx, recipeKey(id)); err != nil {
		r.logger.WithField("key", recipeKey(id)).Warnf("cache invalidate: %v", err)
	}
}

var _ repository.RecipeRepository = (*RecipeRepository)(nil)
