package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"nutriboard-backend/internal/middleware"
	"nutriboard-backend/internal/models"
	"nutriboard-backend/internal/repository"
)

// ProfileSnapshot is everything the assistant may reference about a user.
// Holders must treat it as read-only.
type ProfileSnapshot struct {
	Profile  *models.UserProfile
	MealPlan []models.DietPlan
	Stats    models.NutritionStats
}

func DemoSnapshot() ProfileSnapshot {
	return ProfileSnapshot{
		Profile:  repository.DemoProfile(),
		MealPlan: repository.DemoMealPlan(),
		Stats:    *repository.DemoNutritionStats(),
	}
}

type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	SaveProfile(ctx context.Context, p *models.UserProfile) error
	GetMealPlan(ctx context.Context, userID string) ([]models.DietPlan, error)
	GetNutritionStats(ctx context.Context, userID string) (*models.NutritionStats, error)
}

type ProfileCache interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	SetProfile(ctx context.Context, p *models.UserProfile, ttl time.Duration) error
	PublishProfileUpdate(ctx context.Context, userID string) error
}

type ProfileService struct {
	store         ProfileStore
	cache         ProfileCache
	source        *UserDataWebhook
	cacheTTL      time.Duration
	defaultUserID string
	notify        func(userID string)
}

// NewProfileService wires the profile lookups. cache and source may be nil.
func NewProfileService(store ProfileStore, cache ProfileCache, source *UserDataWebhook, defaultUserID string, cacheTTL time.Duration) *ProfileService {
	if defaultUserID == "" {
		defaultUserID = repository.DemoUserID
	}
	return &ProfileService{
		store:         store,
		cache:         cache,
		source:        source,
		cacheTTL:      cacheTTL,
		defaultUserID: defaultUserID,
	}
}

func (s *ProfileService) UserID(ctx context.Context) string {
	if id := middleware.GetUserID(ctx); id != "" {
		return id
	}
	return s.defaultUserID
}

func (s *ProfileService) Profile(ctx context.Context) (*models.UserProfile, error) {
	userID := s.UserID(ctx)

	if s.cache != nil {
		p, err := s.cache.GetProfile(ctx, userID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("profile cache: %v", err)
		}
	}

	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Message: "Profile not found"}
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetProfile(ctx, p, s.cacheTTL); err != nil {
			log.Printf("profile cache: store %s: %v", userID, err)
		}
	}
	return p, nil
}

func (s *ProfileService) MealPlan(ctx context.Context) ([]models.DietPlan, error) {
	plan, err := s.store.GetMealPlan(ctx, s.UserID(ctx))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Message: "Meal plan not found"}
	}
	return plan, err
}

func (s *ProfileService) NutritionStats(ctx context.Context) (*models.NutritionStats, error) {
	stats, err := s.store.GetNutritionStats(ctx, s.UserID(ctx))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Message: "Nutrition stats not found"}
	}
	return stats, err
}

// Snapshot never fails: any part that cannot be loaded is replaced by the
// demo data, the same way the dashboard falls back to it.
func (s *ProfileService) Snapshot(ctx context.Context) ProfileSnapshot {
	snap := DemoSnapshot()

	if p, err := s.Profile(ctx); err == nil {
		snap.Profile = p
	} else {
		log.Printf("profile snapshot: using demo profile: %v", err)
	}
	if plan, err := s.MealPlan(ctx); err == nil {
		snap.MealPlan = plan
	} else {
		log.Printf("profile snapshot: using demo meal plan: %v", err)
	}
	if stats, err := s.NutritionStats(ctx); err == nil {
		snap.Stats = *stats
	} else {
		log.Printf("profile snapshot: using demo nutrition stats: %v", err)
	}
	return snap
}

// OnProfileUpdated registers fn to run after a refresh when there is no
// cache to publish the update through.
func (s *ProfileService) OnProfileUpdated(fn func(userID string)) {
	s.notify = fn
}

func (s *ProfileService) CanRefresh() bool {
	return s.source != nil
}

// Refresh pulls userID's profile from the user-data webhook and stores it.
// On failure the stored profile is left untouched.
func (s *ProfileService) Refresh(ctx context.Context, userID string) (*models.UserProfile, error) {
	if s.source == nil {
		return nil, &ValidationError{Fields: map[string]string{"webhook": "User data webhook is not configured"}}
	}
	if userID == "" {
		userID = s.defaultUserID
	}

	p, err := s.source.FetchProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch profile from webhook: %w", err)
	}
	if err := s.store.SaveProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("save refreshed profile: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetProfile(ctx, p, s.cacheTTL); err != nil {
			log.Printf("profile cache: store %s: %v", p.ID, err)
		}
		if err := s.cache.PublishProfileUpdate(ctx, p.ID); err != nil {
			log.Printf("profile cache: publish update %s: %v", p.ID, err)
		}
	} else if s.notify != nil {
		s.notify(p.ID)
	}

	log.Printf("profile refresh: updated profile %s", p.ID)
	return p, nil
}
