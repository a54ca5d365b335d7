package menu

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestEachMealVisitsRequestedOrderThenStrays(t *testing.T) {
	m := NewWeeklyMenu([]string{"Monday", "Tuesday"}, []string{"Breakfast", "Lunch"})
	m.Days["Tuesday"] = map[string]MealEntry{
		"Lunch":     {Name: "B"},
		"Breakfast": {Name: "A"},
	}
	m.Days["Monday"] = map[string]MealEntry{
		"Breakfast": {Name: "C"},
	}
	// The generator sometimes invents extra keys; they go last, sorted.
	m.Days["Someday"] = map[string]MealEntry{
		"Snack": {Name: "D"},
	}

	var visited []string
	m.EachMeal(func(day, slot string, entry *MealEntry) {
		visited = append(visited, day+"/"+slot+"/"+entry.Name)
	})

	want := []string{
		"Monday/Breakfast/C",
		"Tuesday/Breakfast/A",
		"Tuesday/Lunch/B",
		"Someday/Snack/D",
	}
	if !reflect.DeepEqual(visited, want) {
		t.Errorf("visit order = %v, want %v", visited, want)
	}
}

func TestEachMealWritesBackMutations(t *testing.T) {
	m := NewWeeklyMenu([]string{"Monday"}, []string{"Breakfast"})
	m.Days["Monday"] = map[string]MealEntry{
		"Breakfast": {Name: "A", Ingredients: []string{"x"}},
	}

	m.EachMeal(func(_, _ string, entry *MealEntry) {
		entry.ReusedIngredients = []string{"x"}
	})

	if got := m.Days["Monday"]["Breakfast"].ReusedIngredients; len(got) != 1 {
		t.Errorf("mutation not written back: %v", got)
	}
}

func TestCookingMethodsAcceptsStringOrList(t *testing.T) {
	var single MealEntry
	if err := json.Unmarshal([]byte(`{"name": "A", "cooking_method": "steamed"}`), &single); err != nil {
		t.Fatalf("unmarshal single: %v", err)
	}
	if !reflect.DeepEqual([]string(single.CookingMethod), []string{"steamed"}) {
		t.Errorf("single = %v", single.CookingMethod)
	}

	var list MealEntry
	if err := json.Unmarshal([]byte(`{"name": "A", "cooking_method": ["fried", "boiled"]}`), &list); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if !reflect.DeepEqual([]string(list.CookingMethod), []string{"fried", "boiled"}) {
		t.Errorf("list = %v", list.CookingMethod)
	}
}

func TestWeeklyMenuRoundTrip(t *testing.T) {
	m := NewWeeklyMenu([]string{"Monday"}, []string{"Breakfast"})
	m.Days["Monday"] = map[string]MealEntry{
		"Breakfast": {
			Name:          "Phở bò",
			Ingredients:   []string{"bánh phở", "thịt bò"},
			EstimatedCost: 50000,
			Servings:      4,
			CookingMethod: CookingMethods{"simmered"},
		},
	}
	m.OptimizationNotes = []string{"note"}

	blob, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back WeeklyMenu
	if err := json.Unmarshal(blob, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(&back, m) {
		t.Errorf("round trip mismatch:\n got %#v\nwant %#v", &back, m)
	}
}

func TestConstraintsValidate(t *testing.T) {
	valid := Constraints{
		CuisineType:   "Southern Vietnamese",
		BudgetPerMeal: 100000,
		MaxPrepTime:   60,
		Days:          []string{"Monday"},
		Slots:         []string{"Breakfast"},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid constraints rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Constraints)
	}{
		{"no days", func(c *Constraints) { c.Days = nil }},
		{"no slots", func(c *Constraints) { c.Slots = nil }},
		{"zero budget", func(c *Constraints) { c.BudgetPerMeal = 0 }},
		{"negative prep", func(c *Constraints) { c.MaxPrepTime = -1 }},
		{"negative servings", func(c *Constraints) { c.Servings = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.mutate(&c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("expected *ValidationError, got %T", err)
			}
		})
	}
}
