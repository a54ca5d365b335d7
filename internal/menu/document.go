package menu

import (
	"strconv"
	"strings"
)

// extractDayDoc locates the slot map for a day inside a normalized
// document. The generator usually returns {"<day>": {...}} but some
// responses wrap the payload in a "menu" object.
func extractDayDoc(doc map[string]any, day string) (any, bool) {
	if v, ok := doc[day]; ok {
		return v, true
	}
	if inner, ok := doc["menu"].(map[string]any); ok {
		if v, ok := inner[day]; ok {
			return v, true
		}
	}
	return nil, false
}

// slotMapFromDoc normalizes the two shapes a day payload arrives in: a
// slot-keyed map (canonical) or a bare list of meals (older output
// format). For the list shape, each meal's slot is derived from the
// prefix of its own name, split on " - ".
func slotMapFromDoc(dayDoc any) map[string]any {
	switch v := dayDoc.(type) {
	case map[string]any:
		return v
	case []any:
		slots := make(map[string]any, len(v))
		for _, item := range v {
			meal, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name := docString(meal["name"])
			slot := strings.TrimSpace(strings.SplitN(name, " - ", 2)[0])
			if slot == "" {
				continue
			}
			slots[slot] = meal
		}
		return slots
	default:
		return nil
	}
}

// mealFromDoc builds a typed MealEntry from one meal's normalized
// document, tolerating missing or mistyped fields.
func mealFromDoc(doc map[string]any) MealEntry {
	entry := MealEntry{
		Name:              docString(doc["name"]),
		Ingredients:       docStringList(doc["ingredients"]),
		PreparationTime:   docInt(doc["preparation_time"], 0),
		EstimatedCost:     docInt(doc["estimated_cost"], 0),
		Servings:          docInt(doc["servings"], 0),
		ReusedIngredients: docStringList(doc["reused_ingredients"]),
		CookingMethod:     CookingMethods(docStringList(doc["cooking_method"])),
		FoodGroups:        docStringList(doc["food_groups"]),
	}

	if nutrition, ok := doc["nutrition_info"].(map[string]any); ok {
		entry.NutritionInfo = NutritionInfo{
			Protein:  docString(nutrition["protein"]),
			Carbs:    docString(nutrition["carbs"]),
			Fat:      docString(nutrition["fat"]),
			Calories: docString(nutrition["calories"]),
		}
	}
	return entry
}

func docString(v any) string {
	s, _ := v.(string)
	return s
}

func docStringList(v any) []string {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []any:
		var out []string
		for _, item := range val {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// docInt coerces a document value to a non-negative integer, falling
// back to def when the value is absent, mistyped or negative.
func docInt(v any, def int) int {
	switch val := v.(type) {
	case float64:
		if n := int(val); n >= 0 {
			return n
		}
	case int:
		if val >= 0 {
			return val
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
