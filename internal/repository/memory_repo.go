package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"nutriboard-backend/internal/models"
)

var ErrNotFound = errors.New("not found")

// MemoryProfileRepo backs the dashboard when no DATABASE_URL is set.
type MemoryProfileRepo struct {
	mu       sync.RWMutex
	profiles map[string]*models.UserProfile
	plans    map[string][]models.DietPlan
	stats    map[string]models.NutritionStats
}

func NewMemoryProfileRepo() *MemoryProfileRepo {
	return &MemoryProfileRepo{
		profiles: make(map[string]*models.UserProfile),
		plans:    make(map[string][]models.DietPlan),
		stats:    make(map[string]models.NutritionStats),
	}
}

// NewSeededMemoryProfileRepo returns a store holding the demo user.
func NewSeededMemoryProfileRepo() *MemoryProfileRepo {
	r := NewMemoryProfileRepo()
	profile := DemoProfile()
	profile.UpdatedAt = time.Now().UTC()
	r.profiles[profile.ID] = profile
	r.plans[profile.ID] = DemoMealPlan()
	r.stats[profile.ID] = *DemoNutritionStats()
	return r
}

func (r *MemoryProfileRepo) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (r *MemoryProfileRepo) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	if profile == nil || profile.ID == "" {
		return errors.New("profile id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := profile.Clone()
	stored.UpdatedAt = time.Now().UTC()
	r.profiles[stored.ID] = stored
	profile.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *MemoryProfileRepo) GetMealPlan(ctx context.Context, userID string) ([]models.DietPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plan, ok := r.plans[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]models.DietPlan, len(plan))
	for i, meal := range plan {
		meal.Foods = append([]string(nil), meal.Foods...)
		out[i] = meal
	}
	return out, nil
}

func (r *MemoryProfileRepo) GetNutritionStats(ctx context.Context, userID string) (*models.NutritionStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats, ok := r.stats[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &stats, nil
}
