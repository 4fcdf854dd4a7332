package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"nutriboard-backend/internal/models"
	"nutriboard-backend/internal/services"
)

type profileService interface {
	UserID(ctx context.Context) string
	Profile(ctx context.Context) (*models.UserProfile, error)
	MealPlan(ctx context.Context) ([]models.DietPlan, error)
	NutritionStats(ctx context.Context) (*models.NutritionStats, error)
	Refresh(ctx context.Context, userID string) (*models.UserProfile, error)
}

type DashboardHandler struct {
	profiles profileService
}

func NewDashboardHandler(profiles profileService) *DashboardHandler {
	return &DashboardHandler{profiles: profiles}
}

func (h *DashboardHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Profile(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *DashboardHandler) Nutrition(w http.ResponseWriter, r *http.Request) {
	overview, err := h.nutrition(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *DashboardHandler) MealPlan(w http.ResponseWriter, r *http.Request) {
	meals, err := h.profiles.MealPlan(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, services.BuildMealPlanView(meals))
}

func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := h.profiles.Profile(ctx)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	stats, err := h.profiles.NutritionStats(ctx)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	meals, err := h.profiles.MealPlan(ctx)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.DashboardView{
		Profile:   profile,
		Nutrition: services.BuildNutritionOverview(*stats, services.TargetCalories(profile, *stats)),
		MealPlan:  services.BuildMealPlanView(meals),
	})
}

func (h *DashboardHandler) RefreshProfile(w http.ResponseWriter, r *http.Request) {
	userID := h.profiles.UserID(r.Context())

	profile, err := h.profiles.Refresh(r.Context(), userID)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			handleServiceError(w, r, err)
			return
		}
		log.Printf("profile refresh for %s failed: %v", userID, err)
		writeJSON(w, http.StatusBadGateway, errorResp("PROFILE_REFRESH_FAILED", "Could not load profile from the user data webhook", r))
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *DashboardHandler) nutrition(ctx context.Context) (models.NutritionOverview, error) {
	stats, err := h.profiles.NutritionStats(ctx)
	if err != nil {
		return models.NutritionOverview{}, err
	}
	profile, err := h.profiles.Profile(ctx)
	if err != nil {
		return models.NutritionOverview{}, err
	}
	return services.BuildNutritionOverview(*stats, services.TargetCalories(profile, *stats)), nil
}
