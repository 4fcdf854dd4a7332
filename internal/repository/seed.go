package repository

import "nutriboard-backend/internal/models"

const DemoUserID = "1"

// DemoProfile returns a fresh copy of the demo user shown when nothing else
// is available.
func DemoProfile() *models.UserProfile {
	targetWeight := 62.0
	bmi := 25.0
	bmr := 1450
	dailyCalories := 1800
	proteinTarget := 95

	return &models.UserProfile{
		ID:                 DemoUserID,
		Name:               "Sarah Johnson",
		Email:              "sarah.johnson@example.com",
		Weight:             68,
		Height:             165,
		Age:                28,
		Gender:             "female",
		ActivityLevel:      models.ActivityModerate,
		DietaryPreferences: []string{"Vegetarian", "Gluten-Free"},
		Allergies:          []string{"Peanuts", "Shellfish"},
		HealthGoals:        []string{"Weight Loss", "Muscle Tone", "Increased Energy"},
		TargetWeight:       &targetWeight,
		BMI:                &bmi,
		BMR:                &bmr,
		DailyCalories:      &dailyCalories,
		ProteinTarget:      &proteinTarget,
	}
}

func DemoMealPlan() []models.DietPlan {
	return []models.DietPlan{
		{
			MealType:  "Breakfast",
			Highlight: "Oatmeal",
			Foods:     []string{"Oatmeal with berries", "Greek yogurt", "Green tea"},
			Calories:  420,
			Protein:   18,
			Carbs:     62,
			Fats:      12,
		},
		{
			MealType:  "Lunch",
			Highlight: "Quinoa salad",
			Foods:     []string{"Quinoa salad", "Grilled tofu", "Steamed vegetables", "Olive oil dressing"},
			Calories:  580,
			Protein:   28,
			Carbs:     68,
			Fats:      22,
		},
		{
			MealType: "Snack",
			Foods:    []string{"Apple slices", "Almond butter", "Herbal tea"},
			Calories: 220,
			Protein:  6,
			Carbs:    28,
			Fats:     10,
		},
		{
			MealType:  "Dinner",
			Highlight: "Lentil curry",
			Foods:     []string{"Lentil curry", "Brown rice", "Spinach salad", "Mango lassi"},
			Calories:  620,
			Protein:   26,
			Carbs:     88,
			Fats:      18,
		},
	}
}

func DemoNutritionStats() *models.NutritionStats {
	return &models.NutritionStats{
		TotalCalories: 1650,
		Protein:       95,
		Carbs:         180,
		Fats:          55,
		Fiber:         28,
		Water:         2.1,
	}
}
