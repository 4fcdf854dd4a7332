package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"nutriboard-backend/internal/models"
	"nutriboard-backend/internal/repository"
	"nutriboard-backend/internal/services"
)

type stubProfileService struct {
	profile    *models.UserProfile
	meals      []models.DietPlan
	stats      *models.NutritionStats
	profileErr error
	refreshErr error
	refreshed  string
}

func newStubProfileService() *stubProfileService {
	return &stubProfileService{
		profile: repository.DemoProfile(),
		meals:   repository.DemoMealPlan(),
		stats:   repository.DemoNutritionStats(),
	}
}

func (s *stubProfileService) UserID(ctx context.Context) string { return "1" }

func (s *stubProfileService) Profile(ctx context.Context) (*models.UserProfile, error) {
	return s.profile, s.profileErr
}

func (s *stubProfileService) MealPlan(ctx context.Context) ([]models.DietPlan, error) {
	return s.meals, nil
}

func (s *stubProfileService) NutritionStats(ctx context.Context) (*models.NutritionStats, error) {
	return s.stats, nil
}

func (s *stubProfileService) Refresh(ctx context.Context, userID string) (*models.UserProfile, error) {
	s.refreshed = userID
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return s.profile, nil
}

func serve(handler http.HandlerFunc, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler(rr, httptest.NewRequest(method, path, nil))
	return rr
}

func TestDashboardHandler_Profile(t *testing.T) {
	h := NewDashboardHandler(newStubProfileService())
	rr := serve(h.Profile, http.MethodGet, "/api/v1/profile")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var p models.UserProfile
	json.NewDecoder(rr.Body).Decode(&p)
	if p.Name != "Sarah Johnson" || p.ActivityLevel != models.ActivityModerate {
		t.Errorf("unexpected profile %+v", p)
	}
}

func TestDashboardHandler_ProfileNotFound(t *testing.T) {
	svc := newStubProfileService()
	svc.profileErr = &services.NotFoundError{Message: "Profile not found"}
	h := NewDashboardHandler(svc)

	rr := serve(h.Profile, http.MethodGet, "/api/v1/profile")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestDashboardHandler_ProfileInternalError(t *testing.T) {
	svc := newStubProfileService()
	svc.profileErr = errors.New("database down")
	h := NewDashboardHandler(svc)

	rr := serve(h.Profile, http.MethodGet, "/api/v1/profile")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestDashboardHandler_Nutrition(t *testing.T) {
	h := NewDashboardHandler(newStubProfileService())
	rr := serve(h.Nutrition, http.MethodGet, "/api/v1/nutrition")

	var o models.NutritionOverview
	if err := json.NewDecoder(rr.Body).Decode(&o); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if o.TargetCalories != 1800 || o.Stats.TotalCalories != 1650 {
		t.Errorf("unexpected overview %+v", o)
	}
	if len(o.Macros) != 3 {
		t.Errorf("expected 3 macros, got %d", len(o.Macros))
	}
}

func TestDashboardHandler_MealPlan(t *testing.T) {
	h := NewDashboardHandler(newStubProfileService())
	rr := serve(h.MealPlan, http.MethodGet, "/api/v1/meal-plan")

	var v models.MealPlanView
	json.NewDecoder(rr.Body).Decode(&v)
	if len(v.Meals) != 4 || v.TotalCalories != 1840 {
		t.Errorf("unexpected meal plan %+v", v)
	}
}

func TestDashboardHandler_Overview(t *testing.T) {
	h := NewDashboardHandler(newStubProfileService())
	rr := serve(h.Overview, http.MethodGet, "/api/v1/dashboard")

	var v models.DashboardView
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Profile == nil || v.Profile.ID != "1" {
		t.Errorf("missing profile")
	}
	if v.Nutrition.TargetCalories != 1800 || v.MealPlan.TotalCalories != 1840 {
		t.Errorf("unexpected dashboard %+v", v)
	}
}

func TestDashboardHandler_RefreshProfile(t *testing.T) {
	svc := newStubProfileService()
	h := NewDashboardHandler(svc)

	rr := serve(h.RefreshProfile, http.MethodPost, "/api/v1/profile/refresh")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if svc.refreshed != "1" {
		t.Errorf("refresh called for %q", svc.refreshed)
	}

	svc.refreshErr = errors.New("webhook down")
	rr = serve(h.RefreshProfile, http.MethodPost, "/api/v1/profile/refresh")
	if rr.Code != http.StatusBadGateway {
		t.Errorf("expected 502 on webhook failure, got %d", rr.Code)
	}

	svc.refreshErr = &services.ValidationError{Fields: map[string]string{"webhook": "not configured"}}
	rr = serve(h.RefreshProfile, http.MethodPost, "/api/v1/profile/refresh")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 when not configured, got %d", rr.Code)
	}
}
