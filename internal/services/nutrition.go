package services

import (
	"math"

	"nutriboard-backend/internal/models"
)

// Daily macro targets shown on the dashboard, in grams.
const (
	ProteinTargetGrams = 100
	CarbsTargetGrams   = 200
	FatsTargetGrams    = 60
)

// BuildNutritionOverview derives the progress bars for the dashboard. The
// calorie percentage may exceed 100; the bar widths never do.
func BuildNutritionOverview(stats models.NutritionStats, targetCalories int) models.NutritionOverview {
	pct := percentage(stats.TotalCalories, targetCalories)
	return models.NutritionOverview{
		Stats:             stats,
		TargetCalories:    targetCalories,
		CaloriePercentage: pct,
		CalorieBar:        math.Min(pct, 100),
		Macros: []models.MacroProgress{
			macroProgress("Protein", stats.Protein, ProteinTargetGrams),
			macroProgress("Carbs", stats.Carbs, CarbsTargetGrams),
			macroProgress("Fats", stats.Fats, FatsTargetGrams),
		},
	}
}

func BuildMealPlanView(meals []models.DietPlan) models.MealPlanView {
	if meals == nil {
		meals = []models.DietPlan{}
	}
	total := 0
	for _, m := range meals {
		total += m.Calories
	}
	return models.MealPlanView{Meals: meals, TotalCalories: total}
}

// TargetCalories falls back to the eaten total when the profile has no target.
func TargetCalories(p *models.UserProfile, stats models.NutritionStats) int {
	if p != nil && p.DailyCalories != nil {
		return *p.DailyCalories
	}
	return stats.TotalCalories
}

func macroProgress(label string, value, target int) models.MacroProgress {
	return models.MacroProgress{
		Label:      label,
		Value:      value,
		Target:     target,
		Percentage: math.Min(percentage(value, target), 100),
	}
}

func percentage(value, target int) float64 {
	if target <= 0 {
		return 0
	}
	return float64(value) / float64(target) * 100
}
