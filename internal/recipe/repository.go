package recipe

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SavedRecipe is a persisted recipe: the serialized content blob plus
// lookup metadata. Content round-trips losslessly.
type SavedRecipe struct {
	ID           int64
	Name         string
	CuisineType  string
	Content      string
	CreationDate time.Time
}

// Repository is a database-backed repository for recipes, keyed by dish
// name. It implements Cache.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save upserts a recipe by name and returns the stored record.
func (r *Repository) Save(ctx context.Context, name, cuisineType, content string) (*SavedRecipe, error) {
	rec := &SavedRecipe{
		Name:         name,
		CuisineType:  cuisineType,
		Content:      content,
		CreationDate: time.Now().UTC(),
	}
	created := rec.CreationDate.Format(time.RFC3339)

	var existingID int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM recipes WHERE name = ?`, name).Scan(&existingID)
	switch {
	case err == sql.ErrNoRows:
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO recipes (name, cuisine_type, content, creation_date)
			VALUES (?, ?, ?, ?)`,
			name, cuisineType, content, created)
		if err != nil {
			return nil, fmt.Errorf("failed to insert recipe %q: %w", name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to read inserted recipe id: %w", err)
		}
		rec.ID = id
	case err != nil:
		return nil, fmt.Errorf("failed to look up recipe %q: %w", name, err)
	default:
		_, err := r.db.ExecContext(ctx, `
			UPDATE recipes SET cuisine_type = ?, content = ?, creation_date = ? WHERE id = ?`,
			cuisineType, content, created, existingID)
		if err != nil {
			return nil, fmt.Errorf("failed to update recipe %q: %w", name, err)
		}
		rec.ID = existingID
	}
	return rec, nil
}

// GetByName retrieves a recipe by dish name. Returns nil when not found.
func (r *Repository) GetByName(ctx context.Context, name string) (*SavedRecipe, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, cuisine_type, content, creation_date FROM recipes WHERE name = ?`, name)

	rec, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe %q: %w", name, err)
	}
	return rec, nil
}

// List retrieves all recipes, optionally filtered by cuisine type.
func (r *Repository) List(ctx context.Context, cuisineType string) ([]SavedRecipe, error) {
	query := `SELECT id, name, cuisine_type, content, creation_date FROM recipes`
	var args []any
	if cuisineType != "" {
		query += ` WHERE cuisine_type = ?`
		args = append(args, cuisineType)
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []SavedRecipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		recipes = append(recipes, *rec)
	}
	return recipes, rows.Err()
}

// Delete removes a recipe by ID.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete recipe %d: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (*SavedRecipe, error) {
	var rec SavedRecipe
	var created string
	var cuisine sql.NullString
	if err := row.Scan(&rec.ID, &rec.Name, &cuisine, &rec.Content, &created); err != nil {
		return nil, err
	}
	rec.CuisineType = cuisine.String

	ts, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recipe creation date %q: %w", created, err)
	}
	rec.CreationDate = ts
	return &rec, nil
}
