// Package recipe contains on-demand recipe generation and its cache.
package recipe

import (
	"strconv"
	"strings"
)

// Documented defaults substituted when the generator returns a numeric
// field that cannot be coerced to an integer.
const (
	DefaultPreparationTime = 30
	DefaultCookingTime     = 45
	DefaultServings        = 2
)

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	Item   string `json:"item"`
	Amount string `json:"amount,omitempty"`
	Unit   string `json:"unit,omitempty"`
}

// Step is one numbered preparation step. After normalization, numbers
// form a contiguous 1-based strictly increasing sequence.
type Step struct {
	Number      int    `json:"step"`
	Description string `json:"description"`
}

// Recipe is a detailed recipe for a single dish.
type Recipe struct {
	Name            string       `json:"name"`
	CuisineType     string       `json:"cuisine_type,omitempty"`
	Ingredients     []Ingredient `json:"ingredients"`
	Steps           []Step       `json:"steps"`
	PreparationTime int          `json:"preparation_time"`
	CookingTime     int          `json:"cooking_time"`
	Servings        int          `json:"servings"`
	Difficulty      string       `json:"difficulty,omitempty"`
	// Err carries the normalizer's explanation when the recipe is a
	// degraded placeholder rather than real generator output.
	Err string `json:"error,omitempty"`
}

// recipeFromDoc builds a typed Recipe from a normalized document,
// coercing every numeric field and never failing. The payload usually
// sits under a "recipe" key; a bare recipe object is accepted too.
func recipeFromDoc(doc map[string]any) Recipe {
	payload, ok := doc["recipe"].(map[string]any)
	if !ok {
		payload = doc
	}

	rec := Recipe{
		Name:            docString(payload["name"]),
		CuisineType:     docString(payload["cuisine_type"]),
		Ingredients:     ingredientsFromDoc(payload["ingredients"]),
		Steps:           stepsFromDoc(payload["steps"]),
		PreparationTime: coerceInt(payload["preparation_time"], DefaultPreparationTime),
		CookingTime:     coerceInt(payload["cooking_time"], DefaultCookingTime),
		Servings:        coerceInt(payload["servings"], DefaultServings),
		Difficulty:      docString(payload["difficulty"]),
		Err:             docString(payload["error"]),
	}
	return rec
}

// ingredientsFromDoc accepts both the canonical {item, amount, unit}
// objects and the bare strings found in degraded placeholders.
func ingredientsFromDoc(v any) []Ingredient {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	var out []Ingredient
	for _, item := range items {
		switch val := item.(type) {
		case string:
			if val != "" {
				out = append(out, Ingredient{Item: val})
			}
		case map[string]any:
			ing := Ingredient{
				Item:   docString(val["item"]),
				Amount: docAmount(val["amount"]),
				Unit:   docString(val["unit"]),
			}
			if ing.Item != "" {
				out = append(out, ing)
			}
		}
	}
	return out
}

// stepsFromDoc coerces each step's number to an integer, reassigning
// the 1-based position when the source omits or corrupts it, and
// renumbers the sequence so it is contiguous and strictly increasing.
func stepsFromDoc(v any) []Step {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	var out []Step
	for _, item := range items {
		switch val := item.(type) {
		case string:
			if val != "" {
				out = append(out, Step{Description: val})
			}
		case map[string]any:
			out = append(out, Step{
				Number:      coerceInt(val["step"], 0),
				Description: docString(val["description"]),
			})
		}
	}
	for i := range out {
		out[i].Number = i + 1
	}
	return out
}

func docString(v any) string {
	s, _ := v.(string)
	return s
}

// docAmount keeps amounts readable whether the model sends "200" or 200.
func docAmount(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

// coerceInt converts a document value to a positive integer, falling
// back to def when the value is absent or not numeric.
func coerceInt(v any, def int) int {
	switch val := v.(type) {
	case float64:
		if n := int(val); n > 0 {
			return n
		}
	case int:
		if val > 0 {
			return val
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil && n > 0 {
			return n
		}
	}
	return def
}
