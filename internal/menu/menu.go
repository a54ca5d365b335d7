// Package menu contains the weekly menu domain: planning constraints,
// the day-by-day generation orchestrator, the dish-name tracker and the
// ingredient-reuse analysis.
package menu

import (
	"encoding/json"
	"sort"
)

// CuisineTypes is the fixed set of cuisine styles offered to the user.
var CuisineTypes = []string{
	"Southern Vietnamese",
	"Northern Vietnamese",
	"Central Vietnamese",
	"French",
	"Italian",
	"Chinese",
	"Japanese",
	"Korean",
	"Thai",
	"Indian",
}

// BudgetOptions are the per-meal budget presets, in currency units.
var BudgetOptions = []int{50000, 70000, 100000, 150000, 200000}

// PrepTimeOptions are the prep-time ceiling presets, in minutes.
var PrepTimeOptions = []int{30, 60, 90, 120, 180}

// DaysOfWeek are the canonical day labels in planning order.
var DaysOfWeek = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// MealSlots are the canonical meal-slot labels in day order.
var MealSlots = []string{"Breakfast", "Lunch", "Dinner"}

// DefaultServings is used when constraints leave servings unset.
const DefaultServings = 4

// NutritionInfo holds free-form nutrition estimates for one meal.
type NutritionInfo struct {
	Protein  string `json:"protein,omitempty"`
	Carbs    string `json:"carbs,omitempty"`
	Fat      string `json:"fat,omitempty"`
	Calories string `json:"calories,omitempty"`
}

// CookingMethods absorbs the generator's habit of returning either a
// single string or a list of strings for the cooking method.
type CookingMethods []string

func (c *CookingMethods) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*c = nil
		} else {
			*c = CookingMethods{single}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*c = CookingMethods(list)
	return nil
}

// MealEntry is one generated dish occupying one meal slot on one day.
// ReusedIngredients is always a subset of Ingredients; it is recomputed
// during assembly rather than trusted from generator output.
type MealEntry struct {
	Name              string         `json:"name"`
	Ingredients       []string       `json:"ingredients"`
	PreparationTime   int            `json:"preparation_time"`
	EstimatedCost     int            `json:"estimated_cost"`
	Servings          int            `json:"servings"`
	ReusedIngredients []string       `json:"reused_ingredients,omitempty"`
	NutritionInfo     NutritionInfo  `json:"nutrition_info"`
	CookingMethod     CookingMethods `json:"cooking_method,omitempty"`
	FoodGroups        []string       `json:"food_groups,omitempty"`
}

// WeeklyMenu maps day -> meal slot -> MealEntry. DayOrder and SlotOrder
// preserve the caller-requested ordering for deterministic traversal and
// export; Days may contain extra keys when the generator misbehaves,
// which is tolerated.
type WeeklyMenu struct {
	DayOrder          []string                        `json:"day_order,omitempty"`
	SlotOrder         []string                        `json:"slot_order,omitempty"`
	Days              map[string]map[string]MealEntry `json:"menu"`
	OptimizationNotes []string                        `json:"optimization_notes,omitempty"`
}

// NewWeeklyMenu creates an empty menu for the given day and slot order.
func NewWeeklyMenu(days, slots []string) *WeeklyMenu {
	return &WeeklyMenu{
		DayOrder:  append([]string(nil), days...),
		SlotOrder: append([]string(nil), slots...),
		Days:      make(map[string]map[string]MealEntry, len(days)),
	}
}

// EachMeal visits every meal in deterministic order: requested days
// first, then stray days sorted; within a day, requested slots first,
// then stray slots sorted.
func (m *WeeklyMenu) EachMeal(fn func(day, slot string, entry *MealEntry)) {
	for _, day := range orderedKeys(m.DayOrder, dayKeys(m.Days)) {
		slots := m.Days[day]
		if slots == nil {
			continue
		}
		for _, slot := range orderedKeys(m.SlotOrder, slotKeys(slots)) {
			entry, ok := slots[slot]
			if !ok {
				continue
			}
			fn(day, slot, &entry)
			slots[slot] = entry
		}
	}
}

// MealCount returns the number of meal entries across all days.
func (m *WeeklyMenu) MealCount() int {
	n := 0
	for _, slots := range m.Days {
		n += len(slots)
	}
	return n
}

func dayKeys(days map[string]map[string]MealEntry) []string {
	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	return keys
}

func slotKeys(slots map[string]MealEntry) []string {
	keys := make([]string, 0, len(slots))
	for k := range slots {
		keys = append(keys, k)
	}
	return keys
}

// orderedKeys returns the preferred keys that are present, followed by
// any remaining keys in sorted order.
func orderedKeys(preferred, present []string) []string {
	presentSet := make(map[string]bool, len(present))
	for _, k := range present {
		presentSet[k] = true
	}

	var out []string
	seen := make(map[string]bool, len(present))
	for _, k := range preferred {
		if presentSet[k] && !seen[k] {
			out = append(out, k)
			seen[k] = true
		}
	}

	var rest []string
	for _, k := range present {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Constraints describe one planning session. They are validated before
// generation starts and not mutated afterwards.
type Constraints struct {
	CuisineType   string   `json:"cuisine_type"`
	BudgetPerMeal int      `json:"budget_per_meal"`
	MaxPrepTime   int      `json:"max_prep_time"`
	Servings      int      `json:"servings"`
	Days          []string `json:"days"`
	Slots         []string `json:"slots"`
}

// Validate reports the first problem that would make generation
// meaningless. It runs before any network call.
func (c Constraints) Validate() error {
	if len(c.Days) == 0 {
		return &ValidationError{Message: "at least one day is required"}
	}
	if len(c.Slots) == 0 {
		return &ValidationError{Message: "at least one meal slot is required"}
	}
	if c.BudgetPerMeal <= 0 {
		return &ValidationError{Message: "budget per meal must be positive"}
	}
	if c.MaxPrepTime <= 0 {
		return &ValidationError{Message: "max prep time must be positive"}
	}
	if c.Servings < 0 {
		return &ValidationError{Message: "servings must not be negative"}
	}
	return nil
}

func (c Constraints) servingsOrDefault() int {
	if c.Servings > 0 {
		return c.Servings
	}
	return DefaultServings
}
