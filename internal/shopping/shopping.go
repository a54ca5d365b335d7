// Package shopping builds and stores shopping lists derived from
// weekly menus.
package shopping

import (
	"fmt"
	"time"

	"weekly-menu-planner/internal/menu"
)

// List is the shopping list for one saved menu.
type List struct {
	ID        int64     `json:"id"`
	MenuID    int64     `json:"menu_id"`
	Items     []string  `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}

// BuildItems aggregates every ingredient mentioned in the menu into a
// deduplicated list, annotating ingredients needed for more than one
// meal with their count. Order follows first mention.
func BuildItems(m *menu.WeeklyMenu) []string {
	counts := make(map[string]int)
	var order []string

	m.EachMeal(func(_, _ string, entry *menu.MealEntry) {
		for _, ing := range entry.Ingredients {
			if ing == "" {
				continue
			}
			if counts[ing] == 0 {
				order = append(order, ing)
			}
			counts[ing]++
		}
	})

	items := make([]string, 0, len(order))
	for _, ing := range order {
		if n := counts[ing]; n > 1 {
			items = append(items, fmt.Sprintf("%s (x%d)", ing, n))
		} else {
			items = append(items, ing)
		}
	}
	return items
}
