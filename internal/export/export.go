// Package export renders menus and recipes for humans and saves them
// to disk.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"weekly-menu-planner/internal/menu"
	"weekly-menu-planner/internal/recipe"
)

// RenderMenu formats a weekly menu as plain text, days and slots in
// their generation order.
func RenderMenu(title string, m *menu.WeeklyMenu) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "=== %s ===\n\n", title)
	}

	currentDay := ""
	m.EachMeal(func(day, slot string, entry *menu.MealEntry) {
		if day != currentDay {
			if currentDay != "" {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%s\n%s\n", day, strings.Repeat("-", len(day)))
			currentDay = day
		}
		fmt.Fprintf(&b, "  %s: %s\n", slot, entry.Name)
		if len(entry.Ingredients) > 0 {
			fmt.Fprintf(&b, "    Ingredients: %s\n", strings.Join(entry.Ingredients, ", "))
		}
		if entry.PreparationTime > 0 {
			fmt.Fprintf(&b, "    Preparation: %s\n", FormatDuration(entry.PreparationTime))
		}
		if entry.EstimatedCost > 0 {
			fmt.Fprintf(&b, "    Estimated cost: %s\n", FormatCurrency(entry.EstimatedCost))
		}
		if len(entry.ReusedIngredients) > 0 {
			fmt.Fprintf(&b, "    Reused: %s\n", strings.Join(entry.ReusedIngredients, ", "))
		}
	})

	if len(m.OptimizationNotes) > 0 {
		b.WriteString("\nIngredient reuse\n----------------\n")
		for _, note := range m.OptimizationNotes {
			fmt.Fprintf(&b, "  - %s\n", note)
		}
	}
	return b.String()
}

// RenderRecipe formats a recipe as plain text.
func RenderRecipe(r *recipe.Recipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== %s ===\n", r.Name)
	if r.CuisineType != "" {
		fmt.Fprintf(&b, "Cuisine: %s\n", r.CuisineType)
	}
	fmt.Fprintf(&b, "Servings: %d | Preparation: %s | Cooking: %s\n",
		r.Servings, FormatDuration(r.PreparationTime), FormatDuration(r.CookingTime))
	if r.Difficulty != "" {
		fmt.Fprintf(&b, "Difficulty: %s\n", r.Difficulty)
	}

	b.WriteString("\nIngredients\n-----------\n")
	for _, ing := range r.Ingredients {
		line := ing.Item
		if ing.Amount != "" {
			line = fmt.Sprintf("%s %s %s", ing.Amount, ing.Unit, ing.Item)
			line = strings.Join(strings.Fields(line), " ")
		}
		fmt.Fprintf(&b, "  - %s\n", line)
	}

	b.WriteString("\nSteps\n-----\n")
	for _, step := range r.Steps {
		fmt.Fprintf(&b, "  %d. %s\n", step.Number, step.Description)
	}
	return b.String()
}

// WriteText writes rendered text to path, refusing to overwrite by
// picking a unique name when the file already exists. Returns the path
// actually written.
func WriteText(path, content string) (string, error) {
	path = UniqueFilename(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// SaveJSON writes v to path as indented JSON.
func SaveJSON(path string, v any) (string, error) {
	blob, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal export: %w", err)
	}
	return WriteText(path, string(blob)+"\n")
}

// LoadJSON reads path into v. SaveJSON output round-trips losslessly.
func LoadJSON(path string, v any) error {
	blob, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(blob, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// FormatCurrency renders an amount in Vietnamese dong with dot
// thousands separators, e.g. 50000 -> "50.000 VND".
func FormatCurrency(amount int) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := fmt.Sprintf("%d", amount)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ".")
	if neg {
		out = "-" + out
	}
	return out + " VND"
}

// FormatDuration renders minutes as "45 min" or "1 h 30 min".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%d h", h)
	}
	return fmt.Sprintf("%d h %d min", h, m)
}

// UniqueFilename returns path, or the first "name_N.ext" variant that
// does not exist yet.
func UniqueFilename(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
