package menu

import (
	"reflect"
	"strings"
	"testing"
)

func testMenu() *WeeklyMenu {
	m := NewWeeklyMenu([]string{"Monday", "Tuesday"}, []string{"Breakfast", "Lunch"})
	m.Days["Monday"] = map[string]MealEntry{
		"Breakfast": {Name: "Cháo gà", Ingredients: []string{"gạo", "thịt gà"}},
		"Lunch":     {Name: "Cơm chiên", Ingredients: []string{"gạo", "trứng"}},
	}
	m.Days["Tuesday"] = map[string]MealEntry{
		"Breakfast": {Name: "Bánh mì ốp la", Ingredients: []string{"trứng", "bánh mì"}},
		"Lunch":     {Name: "Cơm gà", Ingredients: []string{"gạo", "thịt gà"}},
	}
	return m
}

func TestAnalyzeRanksByCountThenFirstSeen(t *testing.T) {
	a := Analyze(testMenu())

	if a.TotalUniqueIngredients != 4 {
		t.Errorf("unique = %d, want 4", a.TotalUniqueIngredients)
	}
	if len(a.MostCommonIngredients) != 4 {
		t.Fatalf("ranked = %d entries, want 4", len(a.MostCommonIngredients))
	}

	// gạo appears 3 times; thịt gà and trứng twice each, thịt gà first
	// seen earlier so it ranks ahead.
	want := []IngredientCount{
		{Ingredient: "gạo", Count: 3},
		{Ingredient: "thịt gà", Count: 2},
		{Ingredient: "trứng", Count: 2},
		{Ingredient: "bánh mì", Count: 1},
	}
	if !reflect.DeepEqual(a.MostCommonIngredients, want) {
		t.Errorf("ranking = %v, want %v", a.MostCommonIngredients, want)
	}
}

func TestFindReusable(t *testing.T) {
	prior := []string{"gạo", "thịt gà", "hành"}

	got := FindReusable([]string{"trứng", "gạo", "hành", "gạo"}, prior)
	want := []string{"gạo", "hành"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindReusable = %v, want %v", got, want)
	}

	if got := FindReusable([]string{"tôm"}, prior); got != nil {
		t.Errorf("expected nil for no overlap, got %v", got)
	}
	if got := FindReusable(nil, prior); got != nil {
		t.Errorf("expected nil for empty current, got %v", got)
	}
}

func TestSuggestOptimizations(t *testing.T) {
	notes := SuggestOptimizations(testMenu())

	// gạo, thịt gà and trứng are multi-use; bánh mì is not.
	if len(notes) != 3 {
		t.Fatalf("notes = %d, want 3: %v", len(notes), notes)
	}
	if !strings.Contains(notes[0], `"gạo"`) {
		t.Errorf("first note should cover gạo: %s", notes[0])
	}
	if !strings.Contains(notes[0], "Monday - Breakfast (Cháo gà)") {
		t.Errorf("note should name day, slot and dish: %s", notes[0])
	}
	for _, note := range notes {
		if strings.Contains(note, "bánh mì") {
			t.Errorf("single-use ingredient must not get a note: %s", note)
		}
	}
}

func TestUsageStatistics(t *testing.T) {
	stats := UsageStatistics(testMenu())

	if stats.TotalIngredients != 8 {
		t.Errorf("total = %d, want 8", stats.TotalIngredients)
	}
	if stats.UniqueIngredients != 4 {
		t.Errorf("unique = %d, want 4", stats.UniqueIngredients)
	}
	// 8 mentions / 4 unique = 2.00
	if stats.UsageEfficiency != 2.0 {
		t.Errorf("efficiency = %v, want 2.0", stats.UsageEfficiency)
	}
	if len(stats.TopIngredients) != 4 {
		t.Errorf("top = %d entries, want 4", len(stats.TopIngredients))
	}
}

func TestUsageStatisticsRounding(t *testing.T) {
	m := NewWeeklyMenu([]string{"Monday"}, []string{"Breakfast", "Lunch"})
	m.Days["Monday"] = map[string]MealEntry{
		"Breakfast": {Name: "A", Ingredients: []string{"x", "y"}},
		"Lunch":     {Name: "B", Ingredients: []string{"x", "y", "z"}},
	}

	// 5 mentions / 3 unique = 1.666... -> 1.67
	stats := UsageStatistics(m)
	if stats.UsageEfficiency != 1.67 {
		t.Errorf("efficiency = %v, want 1.67", stats.UsageEfficiency)
	}
}

func TestUsageStatisticsEmptyMenu(t *testing.T) {
	stats := UsageStatistics(NewWeeklyMenu(nil, nil))
	if stats.UsageEfficiency != 0 {
		t.Errorf("efficiency = %v, want 0", stats.UsageEfficiency)
	}
}
