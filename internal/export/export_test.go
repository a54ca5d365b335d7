package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"weekly-menu-planner/internal/menu"
	"weekly-menu-planner/internal/recipe"
)

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		amount int
		want   string
	}{
		{0, "0 VND"},
		{500, "500 VND"},
		{50000, "50.000 VND"},
		{1500000, "1.500.000 VND"},
		{-70000, "-70.000 VND"},
	}
	for _, tc := range cases {
		if got := FormatCurrency(tc.amount); got != tc.want {
			t.Errorf("FormatCurrency(%d) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{45, "45 min"},
		{60, "1 h"},
		{90, "1 h 30 min"},
		{180, "3 h"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.minutes); got != tc.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tc.minutes, got, tc.want)
		}
	}
}

func TestUniqueFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "menu.txt")

	if got := UniqueFilename(path); got != path {
		t.Errorf("fresh path should be unchanged, got %q", got)
	}

	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	got := UniqueFilename(path)
	if got != filepath.Join(dir, "menu_1.txt") {
		t.Errorf("UniqueFilename = %q", got)
	}

	if err := os.WriteFile(got, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := UniqueFilename(path); got != filepath.Join(dir, "menu_2.txt") {
		t.Errorf("UniqueFilename = %q", got)
	}
}

func TestWriteTextDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "menu.txt")

	first, err := WriteText(path, "first")
	if err != nil {
		t.Fatal(err)
	}
	second, err := WriteText(path, "second")
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Errorf("second write must pick a new name, both %q", first)
	}

	content, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "first" {
		t.Errorf("original content clobbered: %q", content)
	}
}

func TestSaveLoadJSONRoundTrip(t *testing.T) {
	m := menu.NewWeeklyMenu([]string{"Monday"}, []string{"Lunch"})
	m.Days["Monday"] = map[string]menu.MealEntry{
		"Lunch": {Name: "Cơm tấm", Ingredients: []string{"gạo", "sườn"}, EstimatedCost: 55000},
	}

	path := filepath.Join(t.TempDir(), "menu.json")
	written, err := SaveJSON(path, m)
	if err != nil {
		t.Fatal(err)
	}

	var back menu.WeeklyMenu
	if err := LoadJSON(written, &back); err != nil {
		t.Fatal(err)
	}
	if back.Days["Monday"]["Lunch"].Name != "Cơm tấm" {
		t.Errorf("round trip lost data: %+v", back)
	}
	if back.Days["Monday"]["Lunch"].EstimatedCost != 55000 {
		t.Errorf("round trip lost cost: %+v", back)
	}
}

func TestRenderMenu(t *testing.T) {
	m := menu.NewWeeklyMenu([]string{"Monday", "Tuesday"}, []string{"Breakfast"})
	m.Days["Monday"] = map[string]menu.MealEntry{
		"Breakfast": {Name: "Phở bò", Ingredients: []string{"bánh phở"}, EstimatedCost: 50000, PreparationTime: 30},
	}
	m.Days["Tuesday"] = map[string]menu.MealEntry{
		"Breakfast": {Name: "Bánh mì"},
	}
	m.OptimizationNotes = []string{"some note"}

	out := RenderMenu("Weekly menu", m)
	for _, want := range []string{"Weekly menu", "Monday", "Phở bò", "50.000 VND", "30 min", "Tuesday", "some note"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered menu missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Monday") > strings.Index(out, "Tuesday") {
		t.Error("days rendered out of order")
	}
}

func TestRenderRecipe(t *testing.T) {
	r := &recipe.Recipe{
		Name:            "Phở bò",
		CuisineType:     "Northern Vietnamese",
		Ingredients:     []recipe.Ingredient{{Item: "bánh phở", Amount: "500", Unit: "g"}},
		Steps:           []recipe.Step{{Number: 1, Description: "Simmer the broth."}},
		PreparationTime: 20,
		CookingTime:     180,
		Servings:        4,
		Difficulty:      "medium",
	}

	out := RenderRecipe(r)
	for _, want := range []string{"Phở bò", "500 g bánh phở", "1. Simmer the broth.", "3 h", "medium"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered recipe missing %q:\n%s", want, out)
		}
	}
}
