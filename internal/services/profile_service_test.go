package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"nutriboard-backend/internal/middleware"
	"nutriboard-backend/internal/models"
	"nutriboard-backend/internal/repository"
)

type stubProfileCache struct {
	mu        sync.Mutex
	profiles  map[string]*models.UserProfile
	getErr    error
	sets      int
	published []string
}

func newStubProfileCache() *stubProfileCache {
	return &stubProfileCache{profiles: make(map[string]*models.UserProfile)}
}

func (c *stubProfileCache) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	p, ok := c.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p.Clone(), nil
}

func (c *stubProfileCache) SetProfile(ctx context.Context, p *models.UserProfile, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.profiles[p.ID] = p.Clone()
	return nil
}

func (c *stubProfileCache) PublishProfileUpdate(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, userID)
	return nil
}

type failingStore struct{}

func (failingStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	return nil, errors.New("database down")
}
func (failingStore) SaveProfile(ctx context.Context, p *models.UserProfile) error {
	return errors.New("database down")
}
func (failingStore) GetMealPlan(ctx context.Context, userID string) ([]models.DietPlan, error) {
	return nil, errors.New("database down")
}
func (failingStore) GetNutritionStats(ctx context.Context, userID string) (*models.NutritionStats, error) {
	return nil, errors.New("database down")
}

func userDataServer(t *testing.T, body string) (*httptest.Server, *[]string) {
	t.Helper()
	var mu sync.Mutex
	var requested []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"userId"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		requested = append(requested, req.UserID)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &requested
}

func TestProfileService_ProfileUsesCache(t *testing.T) {
	cache := newStubProfileCache()
	svc := NewProfileService(repository.NewSeededMemoryProfileRepo(), cache, nil, "1", time.Minute)

	p, err := svc.Profile(context.Background())
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.Name != "Sarah Johnson" {
		t.Errorf("unexpected profile %q", p.Name)
	}
	if cache.sets != 1 {
		t.Fatalf("expected profile to be cached once, got %d", cache.sets)
	}

	cache.profiles["1"].Name = "Cached Name"
	p, err = svc.Profile(context.Background())
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.Name != "Cached Name" {
		t.Errorf("expected cached profile, got %q", p.Name)
	}
}

func TestProfileService_CacheErrorFallsThrough(t *testing.T) {
	cache := newStubProfileCache()
	cache.getErr = errors.New("redis down")
	svc := NewProfileService(repository.NewSeededMemoryProfileRepo(), cache, nil, "1", time.Minute)

	if _, err := svc.Profile(context.Background()); err != nil {
		t.Fatalf("cache errors must not fail the lookup: %v", err)
	}
}

func TestProfileService_UserFromContext(t *testing.T) {
	svc := NewProfileService(repository.NewSeededMemoryProfileRepo(), nil, nil, "1", time.Minute)

	ctx := middleware.WithUserID(context.Background(), "42")
	_, err := svc.Profile(ctx)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError for unknown user, got %v", err)
	}
	if got := svc.UserID(context.Background()); got != "1" {
		t.Errorf("default user id = %q", got)
	}
}

func TestProfileService_SnapshotNeverFails(t *testing.T) {
	svc := NewProfileService(failingStore{}, nil, nil, "1", time.Minute)

	snap := svc.Snapshot(context.Background())
	if snap.Profile == nil || snap.Profile.Name != "Sarah Johnson" {
		t.Fatalf("expected demo profile fallback, got %+v", snap.Profile)
	}
	if len(snap.MealPlan) != 4 {
		t.Errorf("expected demo meal plan, got %d meals", len(snap.MealPlan))
	}
	if snap.Stats.TotalCalories != 1650 {
		t.Errorf("expected demo stats, got %+v", snap.Stats)
	}
}

func TestProfileService_SnapshotUsesStoredProfile(t *testing.T) {
	repo := repository.NewSeededMemoryProfileRepo()
	p := repository.DemoProfile()
	p.Name = "Updated Name"
	if err := repo.SaveProfile(context.Background(), p); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	svc := NewProfileService(repo, nil, nil, "1", time.Minute)
	if got := svc.Snapshot(context.Background()).Profile.Name; got != "Updated Name" {
		t.Errorf("snapshot profile = %q", got)
	}
}

func TestProfileService_Refresh(t *testing.T) {
	srv, requested := userDataServer(t, `[{"id":"1","name":"Refreshed User","weight":70,"dietaryPreferences":["Vegan"],"dailyCalories":2000}]`)

	repo := repository.NewSeededMemoryProfileRepo()
	cache := newStubProfileCache()
	svc := NewProfileService(repo, cache, NewUserDataWebhook(srv.URL, nil), "1", time.Minute)

	if !svc.CanRefresh() {
		t.Fatal("expected refresh to be available")
	}

	p, err := svc.Refresh(context.Background(), "")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if p.Name != "Refreshed User" {
		t.Errorf("unexpected refreshed profile %q", p.Name)
	}
	if len(*requested) != 1 || (*requested)[0] != "1" {
		t.Errorf("expected one request for user 1, got %v", *requested)
	}

	stored, _ := repo.GetProfile(context.Background(), "1")
	if stored.Name != "Refreshed User" || *stored.DailyCalories != 2000 {
		t.Errorf("refreshed profile not saved: %+v", stored)
	}
	if len(cache.published) != 1 || cache.published[0] != "1" {
		t.Errorf("expected one update published, got %v", cache.published)
	}
}

func TestProfileService_RefreshNotifiesWithoutCache(t *testing.T) {
	srv, _ := userDataServer(t, `{"id":"1","name":"Refreshed User"}`)
	svc := NewProfileService(repository.NewSeededMemoryProfileRepo(), nil, NewUserDataWebhook(srv.URL, nil), "1", time.Minute)

	var notified []string
	svc.OnProfileUpdated(func(userID string) { notified = append(notified, userID) })

	if _, err := svc.Refresh(context.Background(), "1"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(notified) != 1 || notified[0] != "1" {
		t.Errorf("expected notification for user 1, got %v", notified)
	}
}

func TestProfileService_RefreshFailureKeepsProfile(t *testing.T) {
	srv, _ := userDataServer(t, `not json`)
	repo := repository.NewSeededMemoryProfileRepo()
	svc := NewProfileService(repo, nil, NewUserDataWebhook(srv.URL, nil), "1", time.Minute)

	if _, err := svc.Refresh(context.Background(), "1"); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
	stored, _ := repo.GetProfile(context.Background(), "1")
	if stored.Name != "Sarah Johnson" {
		t.Errorf("failed refresh must not touch the stored profile, got %q", stored.Name)
	}
}

func TestProfileService_RefreshNotConfigured(t *testing.T) {
	svc := NewProfileService(repository.NewSeededMemoryProfileRepo(), nil, nil, "1", time.Minute)
	if svc.CanRefresh() {
		t.Fatal("refresh should be unavailable without a webhook")
	}
	var ve *ValidationError
	if _, err := svc.Refresh(context.Background(), "1"); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestDecodeProfile(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"object", `{"id":"1","name":"A"}`, false},
		{"array wrapper", `[{"id":"1","name":"A"}]`, false},
		{"empty array", `[]`, true},
		{"empty body", `  `, true},
		{"missing name", `{"id":"1"}`, true},
		{"invalid", `{"id":`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeProfile([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUserDataWebhook_RejectsOtherUser(t *testing.T) {
	srv, _ := userDataServer(t, `{"id":"2","name":"Someone Else"}`)
	if _, err := NewUserDataWebhook(srv.URL, nil).FetchProfile(context.Background(), "1"); err == nil {
		t.Fatal("expected error for mismatched profile id")
	}
}

func TestUserDataWebhook_FillsMissingID(t *testing.T) {
	srv, _ := userDataServer(t, `{"name":"No ID"}`)
	p, err := NewUserDataWebhook(srv.URL, nil).FetchProfile(context.Background(), "9")
	if err != nil {
		t.Fatalf("FetchProfile: %v", err)
	}
	if p.ID != "9" {
		t.Errorf("id = %q, want 9", p.ID)
	}
}

func TestNewUserDataWebhook_Empty(t *testing.T) {
	if NewUserDataWebhook("  ", nil) != nil {
		t.Fatal("expected nil webhook for empty URL")
	}
}

func TestProfileRefresher(t *testing.T) {
	srv, requested := userDataServer(t, `{"id":"1","name":"Scheduled"}`)
	svc := NewProfileService(repository.NewSeededMemoryProfileRepo(), nil, NewUserDataWebhook(srv.URL, nil), "1", time.Minute)

	r := NewProfileRefresher(svc, "1", "@every 1h")
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer r.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p, err := svc.Profile(context.Background()); err == nil && p.Name == "Scheduled" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("startup refresh did not run, requests: %v", *requested)
}

func TestProfileRefresher_InvalidSchedule(t *testing.T) {
	srv, _ := userDataServer(t, `{"id":"1","name":"x"}`)
	svc := NewProfileService(repository.NewSeededMemoryProfileRepo(), nil, NewUserDataWebhook(srv.URL, nil), "1", time.Minute)

	if err := NewProfileRefresher(svc, "1", "not a schedule").Start(); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestProfileRefresher_NoWebhookIsNoop(t *testing.T) {
	svc := NewProfileService(repository.NewSeededMemoryProfileRepo(), nil, nil, "1", time.Minute)
	r := NewProfileRefresher(svc, "1", "not a schedule")
	if err := r.Start(); err != nil {
		t.Fatalf("Start without webhook should be a no-op, got %v", err)
	}
	r.Stop()
}
