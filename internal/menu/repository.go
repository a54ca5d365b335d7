package menu

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SavedMenu is a persisted weekly menu with the constraints metadata it
// was generated under. The menu itself is stored as an opaque JSON blob
// and round-trips losslessly.
type SavedMenu struct {
	ID            int64
	UserID        int64
	Name          string
	CreationDate  time.Time
	CuisineType   string
	BudgetPerMeal int
	MaxPrepTime   int
	Menu          *WeeklyMenu
}

// Repository is a database-backed repository for saved menus.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts the menu when it has no ID yet, otherwise updates it.
// CreationDate defaults to now on first save.
func (r *Repository) Save(ctx context.Context, rec *SavedMenu) error {
	blob, err := json.Marshal(rec.Menu)
	if err != nil {
		return fmt.Errorf("failed to marshal menu: %w", err)
	}
	if rec.CreationDate.IsZero() {
		rec.CreationDate = time.Now().UTC()
	}
	created := rec.CreationDate.Format(time.RFC3339)

	if rec.ID == 0 {
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO menus (user_id, name, creation_date, cuisine_type, budget_per_meal, max_prep_time, meals)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.UserID, rec.Name, created, rec.CuisineType, rec.BudgetPerMeal, rec.MaxPrepTime, string(blob))
		if err != nil {
			return fmt.Errorf("failed to insert menu: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read inserted menu id: %w", err)
		}
		rec.ID = id
		return nil
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE menus
		SET user_id = ?, name = ?, creation_date = ?, cuisine_type = ?, budget_per_meal = ?, max_prep_time = ?, meals = ?
		WHERE id = ?`,
		rec.UserID, rec.Name, created, rec.CuisineType, rec.BudgetPerMeal, rec.MaxPrepTime, string(blob), rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update menu %d: %w", rec.ID, err)
	}
	return nil
}

// Get retrieves a saved menu by ID. Returns nil when not found.
func (r *Repository) Get(ctx context.Context, id int64) (*SavedMenu, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, creation_date, cuisine_type, budget_per_meal, max_prep_time, meals
		FROM menus WHERE id = ?`, id)

	rec, err := scanMenu(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get menu %d: %w", id, err)
	}
	return rec, nil
}

// List retrieves saved menus, newest first, optionally filtered by
// cuisine type.
func (r *Repository) List(ctx context.Context, cuisineType string) ([]SavedMenu, error) {
	query := `
		SELECT id, user_id, name, creation_date, cuisine_type, budget_per_meal, max_prep_time, meals
		FROM menus`
	var args []any
	if cuisineType != "" {
		query += ` WHERE cuisine_type = ?`
		args = append(args, cuisineType)
	}
	query += ` ORDER BY creation_date DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list menus: %w", err)
	}
	defer rows.Close()

	var menus []SavedMenu
	for rows.Next() {
		rec, err := scanMenu(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu row: %w", err)
		}
		menus = append(menus, *rec)
	}
	return menus, rows.Err()
}

// Delete removes a saved menu by ID.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM menus WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete menu %d: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMenu(row rowScanner) (*SavedMenu, error) {
	var rec SavedMenu
	var created, blob string
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Name, &created, &rec.CuisineType, &rec.BudgetPerMeal, &rec.MaxPrepTime, &blob); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return nil, fmt.Errorf("failed to parse menu creation date %q: %w", created, err)
	}
	rec.CreationDate = ts

	var m WeeklyMenu
	if err := json.Unmarshal([]byte(blob), &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal menu blob: %w", err)
	}
	rec.Menu = &m
	return &rec, nil
}
