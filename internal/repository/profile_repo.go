package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nutriboard-backend/internal/models"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	p := &models.UserProfile{}
	var activity string
	query := `SELECT id, name, email, weight, height, age, gender, activity_level,
			dietary_preferences, allergies, health_goals,
			target_weight, bmi, bmr, daily_calories, protein_target, updated_at
		FROM user_profiles WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.Name, &p.Email, &p.Weight, &p.Height, &p.Age, &p.Gender, &activity,
		&p.DietaryPreferences, &p.Allergies, &p.HealthGoals,
		&p.TargetWeight, &p.BMI, &p.BMR, &p.DailyCalories, &p.ProteinTarget, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}
	p.ActivityLevel = models.ActivityLevel(activity)
	return p, nil
}

// SaveProfile inserts or replaces the profile row.
func (r *ProfileRepo) SaveProfile(ctx context.Context, p *models.UserProfile) error {
	if p == nil || p.ID == "" {
		return errors.New("profile id is required")
	}

	query := `
		INSERT INTO user_profiles (id, name, email, weight, height, age, gender, activity_level,
			dietary_preferences, allergies, health_goals,
			target_weight, bmi, bmr, daily_calories, protein_target, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			weight = EXCLUDED.weight,
			height = EXCLUDED.height,
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			activity_level = EXCLUDED.activity_level,
			dietary_preferences = EXCLUDED.dietary_preferences,
			allergies = EXCLUDED.allergies,
			health_goals = EXCLUDED.health_goals,
			target_weight = EXCLUDED.target_weight,
			bmi = EXCLUDED.bmi,
			bmr = EXCLUDED.bmr,
			daily_calories = EXCLUDED.daily_calories,
			protein_target = EXCLUDED.protein_target,
			updated_at = NOW()
		RETURNING updated_at`

	return r.pool.QueryRow(ctx, query,
		p.ID, p.Name, p.Email, p.Weight, p.Height, p.Age, p.Gender, string(p.ActivityLevel),
		nonNil(p.DietaryPreferences), nonNil(p.Allergies), nonNil(p.HealthGoals),
		p.TargetWeight, p.BMI, p.BMR, p.DailyCalories, p.ProteinTarget,
	).Scan(&p.UpdatedAt)
}

func (r *ProfileRepo) GetMealPlan(ctx context.Context, userID string) ([]models.DietPlan, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT meal_type, highlight, foods, calories, protein, carbs, fats
		FROM meal_plan_items
		WHERE user_id = $1
		ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("query meal plan %s: %w", userID, err)
	}
	defer rows.Close()

	meals := make([]models.DietPlan, 0)
	for rows.Next() {
		var m models.DietPlan
		if err := rows.Scan(&m.MealType, &m.Highlight, &m.Foods, &m.Calories, &m.Protein, &m.Carbs, &m.Fats); err != nil {
			return nil, fmt.Errorf("scan meal plan item: %w", err)
		}
		meals = append(meals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return meals, nil
}

func (r *ProfileRepo) GetNutritionStats(ctx context.Context, userID string) (*models.NutritionStats, error) {
	s := &models.NutritionStats{}
	err := r.pool.QueryRow(ctx, `
		SELECT total_calories, protein, carbs, fats, fiber, water
		FROM nutrition_stats WHERE user_id = $1`, userID).Scan(
		&s.TotalCalories, &s.Protein, &s.Carbs, &s.Fats, &s.Fiber, &s.Water,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get nutrition stats %s: %w", userID, err)
	}
	return s, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
