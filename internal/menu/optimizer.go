package menu

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// IngredientCount pairs an ingredient with how many meals mention it.
type IngredientCount struct {
	Ingredient string `json:"ingredient"`
	Count      int    `json:"count"`
}

// Analysis summarizes ingredient usage across a menu.
type Analysis struct {
	MostCommonIngredients  []IngredientCount `json:"most_common_ingredients"`
	TotalUniqueIngredients int               `json:"total_unique_ingredients"`
}

// UsageStats reports how efficiently a menu reuses its ingredients.
// Efficiency is total mentions divided by unique ingredients, rounded to
// two decimals; higher means more reuse.
type UsageStats struct {
	TotalIngredients  int               `json:"total_ingredients"`
	UniqueIngredients int               `json:"unique_ingredients"`
	TopIngredients    []IngredientCount `json:"top_ingredients"`
	UsageEfficiency   float64           `json:"usage_efficiency"`
}

// ingredientCounts tallies every ingredient mention across the menu,
// remembering first-seen order for deterministic ranking.
func ingredientCounts(m *WeeklyMenu) (counts map[string]int, order []string, total int) {
	counts = make(map[string]int)
	m.EachMeal(func(_, _ string, entry *MealEntry) {
		for _, ing := range entry.Ingredients {
			if _, ok := counts[ing]; !ok {
				order = append(order, ing)
			}
			counts[ing]++
			total++
		}
	})
	return counts, order, total
}

// rankIngredients orders ingredients by descending count, breaking ties
// by first-seen order, and returns at most limit entries.
func rankIngredients(counts map[string]int, order []string, limit int) []IngredientCount {
	ranked := make([]IngredientCount, 0, len(order))
	for _, ing := range order {
		ranked = append(ranked, IngredientCount{Ingredient: ing, Count: counts[ing]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Analyze flattens all ingredients across days and slots and ranks the
// ten most common.
func Analyze(m *WeeklyMenu) Analysis {
	counts, order, _ := ingredientCounts(m)
	return Analysis{
		MostCommonIngredients:  rankIngredients(counts, order, 10),
		TotalUniqueIngredients: len(counts),
	}
}

// FindReusable returns the ingredients of current that also appear in
// prior, preserving current's order. It is used to recompute a meal's
// reused_ingredients field instead of trusting generator output.
func FindReusable(current, prior []string) []string {
	priorSet := make(map[string]struct{}, len(prior))
	for _, ing := range prior {
		priorSet[ing] = struct{}{}
	}

	var reusable []string
	seen := make(map[string]struct{})
	for _, ing := range current {
		if _, ok := priorSet[ing]; !ok {
			continue
		}
		if _, dup := seen[ing]; dup {
			continue
		}
		seen[ing] = struct{}{}
		reusable = append(reusable, ing)
	}
	return reusable
}

// SuggestOptimizations emits one human-readable note per ingredient used
// by more than one meal, naming every day/slot/dish that uses it. Notes
// follow first-seen ingredient order.
func SuggestOptimizations(m *WeeklyMenu) []string {
	type usage struct {
		day, slot, dish string
	}

	usages := make(map[string][]usage)
	var order []string
	m.EachMeal(func(day, slot string, entry *MealEntry) {
		for _, ing := range entry.Ingredients {
			if _, ok := usages[ing]; !ok {
				order = append(order, ing)
			}
			usages[ing] = append(usages[ing], usage{day: day, slot: slot, dish: entry.Name})
		}
	})

	var notes []string
	for _, ing := range order {
		uses := usages[ing]
		if len(uses) < 2 {
			continue
		}
		parts := make([]string, len(uses))
		for i, u := range uses {
			parts[i] = fmt.Sprintf("%s - %s (%s)", u.day, u.slot, u.dish)
		}
		notes = append(notes, fmt.Sprintf("Ingredient %q is used in several meals: %s", ing, strings.Join(parts, ", ")))
	}
	return notes
}

// UsageStatistics computes overall ingredient usage for a menu.
func UsageStatistics(m *WeeklyMenu) UsageStats {
	counts, order, total := ingredientCounts(m)

	efficiency := 0.0
	if len(counts) > 0 {
		efficiency = math.Round(float64(total)/float64(len(counts))*100) / 100
	}

	return UsageStats{
		TotalIngredients:  total,
		UniqueIngredients: len(counts),
		TopIngredients:    rankIngredients(counts, order, 5),
		UsageEfficiency:   efficiency,
	}
}
