package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Repository is a database-backed repository for user profiles.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts the profile when it has no ID yet, otherwise updates it.
// Preference lists are deduplicated before writing.
func (r *Repository) Save(ctx context.Context, p *Profile) error {
	p.Dedupe()

	favIng, err := marshalList(p.FavoriteIngredients)
	if err != nil {
		return err
	}
	disIng, err := marshalList(p.DislikedIngredients)
	if err != nil {
		return err
	}
	favDish, err := marshalList(p.FavoriteDishes)
	if err != nil {
		return err
	}
	disDish, err := marshalList(p.DislikedDishes)
	if err != nil {
		return err
	}

	if p.ID == 0 {
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO users (name, favorite_ingredients, disliked_ingredients, favorite_dishes, disliked_dishes)
			VALUES (?, ?, ?, ?, ?)`,
			p.Name, favIng, disIng, favDish, disDish)
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read inserted user id: %w", err)
		}
		p.ID = id
		return nil
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE users
		SET name = ?, favorite_ingredients = ?, disliked_ingredients = ?, favorite_dishes = ?, disliked_dishes = ?
		WHERE id = ?`,
		p.Name, favIng, disIng, favDish, disDish, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update user %d: %w", p.ID, err)
	}
	return nil
}

// Get retrieves a profile by ID. Returns nil when not found.
func (r *Repository) Get(ctx context.Context, id int64) (*Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, favorite_ingredients, disliked_ingredients, favorite_dishes, disliked_dishes
		FROM users WHERE id = ?`, id)

	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return p, nil
}

// List retrieves all profiles.
func (r *Repository) List(ctx context.Context) ([]Profile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, favorite_ingredients, disliked_ingredients, favorite_dishes, disliked_dishes
		FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// Delete removes a profile by ID.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	var p Profile
	var favIng, disIng, favDish, disDish string
	if err := row.Scan(&p.ID, &p.Name, &favIng, &disIng, &favDish, &disDish); err != nil {
		return nil, err
	}

	var err error
	if p.FavoriteIngredients, err = unmarshalList(favIng); err != nil {
		return nil, err
	}
	if p.DislikedIngredients, err = unmarshalList(disIng); err != nil {
		return nil, err
	}
	if p.FavoriteDishes, err = unmarshalList(favDish); err != nil {
		return nil, err
	}
	if p.DislikedDishes, err = unmarshalList(disDish); err != nil {
		return nil, err
	}
	return &p, nil
}

func marshalList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to marshal preference list: %w", err)
	}
	return string(data), nil
}

func unmarshalList(data string) ([]string, error) {
	if data == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preference list: %w", err)
	}
	return items, nil
}
