package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"nutriboard-backend/internal/models"
)

const capabilityReply = "I'm here to help with your diet and nutrition questions! I can provide information about your meal plans, calorie targets, macro breakdown, recipe suggestions, and progress tracking. What would you like to know more about?"

// CannedReply answers locally by keyword. The first matching rule wins and
// the output depends only on message and snapshot.
func CannedReply(message string, snap ProfileSnapshot) string {
	p := snap.Profile
	if p == nil {
		p = &models.UserProfile{}
	}

	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "calories"):
		return calorieReply(p)
	case strings.Contains(msg, "meal") || strings.Contains(msg, "plan"):
		return mealPlanReply(p, snap.MealPlan)
	case strings.Contains(msg, "weight"):
		return weightReply(p)
	case strings.Contains(msg, "protein"):
		return proteinReply(p, snap.Stats)
	default:
		return capabilityReply
	}
}

func calorieReply(p *models.UserProfile) string {
	if p.DailyCalories == nil {
		return "I don't have a daily calorie target on file for you yet. Once your BMR and activity level are recorded I can calculate one. Would you like to update your profile?"
	}

	activity := activityLabel(p.ActivityLevel)
	if p.BMR == nil {
		return fmt.Sprintf("Based on your profile, your daily calorie target is %d calories. This is calculated based on your %s activity level. Would you like me to adjust this based on your goals?",
			*p.DailyCalories, activity)
	}
	return fmt.Sprintf("Based on your profile, your daily calorie target is %d calories. This is calculated based on your BMR of %d and your %s activity level. Would you like me to adjust this based on your goals?",
		*p.DailyCalories, *p.BMR, activity)
}

func mealPlanReply(p *models.UserProfile, plan []models.DietPlan) string {
	prefs := joinList(lowerAll(p.DietaryPreferences))
	if prefs == "" {
		prefs = "dietary"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I've prepared a personalized meal plan for you considering your %s preferences.", prefs)

	if dishes := planHighlights(plan); len(dishes) > 0 {
		fmt.Fprintf(&b, " Today's plan includes %s.", joinList(dishes))
	}

	if allergies := joinList(lowerAll(p.Allergies)); allergies != "" {
		fmt.Fprintf(&b, " Each meal is balanced to meet your nutritional needs while avoiding %s.", allergies)
	} else {
		b.WriteString(" Each meal is balanced to meet your nutritional needs.")
	}

	b.WriteString(" Would you like details on any specific meal?")
	return b.String()
}

func weightReply(p *models.UserProfile) string {
	current := formatKg(p.Weight)
	if p.TargetWeight == nil {
		return fmt.Sprintf("Your current weight is %skg. Set a target weight and I can estimate how long it will take to reach it with your meal plan and exercise routine.", current)
	}
	return fmt.Sprintf("Your current weight is %skg with a target of %skg. Based on your current progress and activity level, you're on track to reach your goal in approximately 6-8 weeks with consistent adherence to your meal plan and exercise routine.",
		current, formatKg(*p.TargetWeight))
}

func proteinReply(p *models.UserProfile, stats models.NutritionStats) string {
	target := proteinTarget(p)
	provided := stats.Protein
	if provided <= 0 {
		provided = target
	}
	return fmt.Sprintf("For your goals and activity level, I recommend consuming %d-%dg of protein daily. %s Your current meal plan provides approximately %dg of protein per day.",
		target, target+10, proteinSources(p.DietaryPreferences), provided)
}

// proteinTarget prefers the stored target and otherwise estimates 1.4 g/kg.
func proteinTarget(p *models.UserProfile) int {
	if p.ProteinTarget != nil && *p.ProteinTarget > 0 {
		return *p.ProteinTarget
	}
	if p.Weight > 0 {
		return int(math.Round(p.Weight * 1.4))
	}
	return 60
}

func proteinSources(prefs []string) string {
	for _, pref := range prefs {
		switch strings.ToLower(strings.TrimSpace(pref)) {
		case "vegan":
			return "As a vegan, great sources include tofu, tempeh, lentils, chickpeas, and quinoa."
		case "vegetarian":
			return "As a vegetarian, great sources include Greek yogurt, tofu, lentils, quinoa, and tempeh."
		}
	}
	return "Great sources include lean poultry, fish, eggs, Greek yogurt, and lentils."
}

// planHighlights lists the main dishes, e.g. "oatmeal for breakfast". Snacks
// are left out.
func planHighlights(plan []models.DietPlan) []string {
	var out []string
	for _, meal := range plan {
		mealType := strings.ToLower(strings.TrimSpace(meal.MealType))
		if mealType == "" || mealType == "snack" {
			continue
		}
		dish := strings.TrimSpace(meal.Highlight)
		if dish == "" && len(meal.Foods) > 0 {
			dish = meal.Foods[0]
		}
		if dish == "" {
			continue
		}
		out = append(out, strings.ToLower(dish)+" for "+mealType)
	}
	return out
}

func activityLabel(level models.ActivityLevel) string {
	if level == "" {
		return "current"
	}
	return strings.ReplaceAll(string(level), "-", " ")
}

func formatKg(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func lowerAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, strings.ToLower(it))
		}
	}
	return out
}

// joinList renders "a", "a and b" or "a, b, and c".
func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}
