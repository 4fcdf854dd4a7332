package models

import "time"

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very-active"
)

// UserProfile uses camelCase JSON tags because the same document is
// exchanged with the user-data webhook.
type UserProfile struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Email              string        `json:"email"`
	Weight             float64       `json:"weight"`
	Height             float64       `json:"height"`
	Age                int           `json:"age"`
	Gender             string        `json:"gender"`
	ActivityLevel      ActivityLevel `json:"activityLevel"`
	DietaryPreferences []string      `json:"dietaryPreferences"`
	Allergies          []string      `json:"allergies"`
	HealthGoals        []string      `json:"healthGoals"`
	TargetWeight       *float64      `json:"targetWeight,omitempty"`
	BMI                *float64      `json:"bmi,omitempty"`
	BMR                *int          `json:"bmr,omitempty"`
	DailyCalories      *int          `json:"dailyCalories,omitempty"`
	ProteinTarget      *int          `json:"proteinTarget,omitempty"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// Clone returns a deep copy so snapshots handed out stay immutable.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.DietaryPreferences = append([]string(nil), p.DietaryPreferences...)
	c.Allergies = append([]string(nil), p.Allergies...)
	c.HealthGoals = append([]string(nil), p.HealthGoals...)
	if p.TargetWeight != nil {
		v := *p.TargetWeight
		c.TargetWeight = &v
	}
	if p.BMI != nil {
		v := *p.BMI
		c.BMI = &v
	}
	if p.BMR != nil {
		v := *p.BMR
		c.BMR = &v
	}
	if p.DailyCalories != nil {
		v := *p.DailyCalories
		c.DailyCalories = &v
	}
	if p.ProteinTarget != nil {
		v := *p.ProteinTarget
		c.ProteinTarget = &v
	}
	return &c
}

// DietPlan is one meal of the day.
type DietPlan struct {
	MealType  string   `json:"mealType"`
	Highlight string   `json:"highlight,omitempty"`
	Foods     []string `json:"foods"`
	Calories  int      `json:"calories"`
	Protein   int      `json:"protein"`
	Carbs     int      `json:"carbs"`
	Fats      int      `json:"fats"`
}

type NutritionStats struct {
	TotalCalories int     `json:"totalCalories"`
	Protein       int     `json:"protein"`
	Carbs         int     `json:"carbs"`
	Fats          int     `json:"fats"`
	Fiber         int     `json:"fiber"`
	Water         float64 `json:"water"`
}

type MacroProgress struct {
	Label      string  `json:"label"`
	Value      int     `json:"value"`
	Target     int     `json:"target"`
	Percentage float64 `json:"percentage"`
}

type NutritionOverview struct {
	Stats             NutritionStats  `json:"stats"`
	TargetCalories    int             `json:"targetCalories"`
	CaloriePercentage float64         `json:"caloriePercentage"`
	CalorieBar        float64         `json:"calorieBar"`
	Macros            []MacroProgress `json:"macros"`
}

type MealPlanView struct {
	Meals         []DietPlan `json:"meals"`
	TotalCalories int        `json:"totalCalories"`
}

type DashboardView struct {
	Profile   *UserProfile      `json:"profile"`
	Nutrition NutritionOverview `json:"nutrition"`
	MealPlan  MealPlanView      `json:"mealPlan"`
}
