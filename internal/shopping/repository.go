package shopping

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository handles persistence of shopping lists.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping list repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save stores the list for its menu, replacing any previous one.
func (r *Repository) Save(ctx context.Context, list *List) error {
	itemsJSON, err := json.Marshal(list.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal shopping list items: %w", err)
	}
	if list.CreatedAt.IsZero() {
		list.CreatedAt = time.Now().UTC()
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM shopping_lists WHERE menu_id = ?`, list.MenuID); err != nil {
		return fmt.Errorf("failed to replace shopping list: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO shopping_lists (menu_id, items, created_at) VALUES (?, ?, ?)`,
		list.MenuID, string(itemsJSON), list.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert shopping list: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted shopping list id: %w", err)
	}
	list.ID = id
	return nil
}

// GetByMenuID retrieves the shopping list for a menu. Returns nil when
// none was built yet.
func (r *Repository) GetByMenuID(ctx context.Context, menuID int64) (*List, error) {
	var (
		list      List
		itemsJSON string
		created   string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, menu_id, items, created_at FROM shopping_lists WHERE menu_id = ?`, menuID).
		Scan(&list.ID, &list.MenuID, &itemsJSON, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shopping list for menu %d: %w", menuID, err)
	}

	if err := json.Unmarshal([]byte(itemsJSON), &list.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping list items: %w", err)
	}
	ts, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return nil, fmt.Errorf("failed to parse shopping list creation date %q: %w", created, err)
	}
	list.CreatedAt = ts
	return &list, nil
}

// DeleteByMenuID deletes the shopping list for a menu.
func (r *Repository) DeleteByMenuID(ctx context.Context, menuID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shopping_lists WHERE menu_id = ?`, menuID); err != nil {
		return fmt.Errorf("failed to delete shopping list for menu %d: %w", menuID, err)
	}
	return nil
}
