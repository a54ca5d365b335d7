// Package user holds user profiles and their persistence.
package user

// Profile represents one household member's food preferences. The four
// preference lists never contain duplicates; Dedupe enforces that before
// persistence.
type Profile struct {
	ID                  int64    `json:"id,omitempty"`
	Name                string   `json:"name"`
	FavoriteIngredients []string `json:"favorite_ingredients"`
	DislikedIngredients []string `json:"disliked_ingredients"`
	FavoriteDishes      []string `json:"favorite_dishes"`
	DislikedDishes      []string `json:"disliked_dishes"`
}

// Dedupe removes duplicate entries from all preference lists, keeping
// first occurrences. Matching is case-sensitive and exact.
func (p *Profile) Dedupe() {
	p.FavoriteIngredients = dedupe(p.FavoriteIngredients)
	p.DislikedIngredients = dedupe(p.DislikedIngredients)
	p.FavoriteDishes = dedupe(p.FavoriteDishes)
	p.DislikedDishes = dedupe(p.DislikedDishes)
}

func dedupe(items []string) []string {
	if len(items) == 0 {
		return items
	}
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
