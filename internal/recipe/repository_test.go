package recipe

import (
	"context"
	"path/filepath"
	"testing"

	"weekly-menu-planner/internal/database"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.SQL)
}

func TestRecipeSaveAndGetByName(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, "Phở bò", "Northern Vietnamese", `{"name": "Phở bò"}`)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.ID == 0 {
		t.Fatal("Save must assign an ID")
	}

	got, err := repo.GetByName(ctx, "Phở bò")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetByName returned nil for existing recipe")
	}
	if got.Content != `{"name": "Phở bò"}` {
		t.Errorf("content = %q", got.Content)
	}
	if got.CreationDate.IsZero() {
		t.Error("creation date not persisted")
	}
}

func TestRecipeSaveUpsertsByName(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	first, err := repo.Save(ctx, "Phở bò", "", `{"v": 1}`)
	if err != nil {
		t.Fatal(err)
	}
	second, err := repo.Save(ctx, "Phở bò", "Northern Vietnamese", `{"v": 2}`)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("upsert created a new row: %d -> %d", first.ID, second.ID)
	}

	got, err := repo.GetByName(ctx, "Phở bò")
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != `{"v": 2}` || got.CuisineType != "Northern Vietnamese" {
		t.Errorf("upsert not applied: %+v", got)
	}

	all, err := repo.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("rows = %d, want 1", len(all))
	}
}

func TestRecipeGetByNameMissing(t *testing.T) {
	repo := testRepo(t)
	got, err := repo.GetByName(context.Background(), "Không tồn tại")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestRecipeListFilter(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	fixtures := []struct{ name, cuisine string }{
		{"Phở bò", "Northern Vietnamese"},
		{"Bún bò Huế", "Central Vietnamese"},
		{"Cao lầu", "Central Vietnamese"},
	}
	for _, f := range fixtures {
		if _, err := repo.Save(ctx, f.name, f.cuisine, "{}"); err != nil {
			t.Fatal(err)
		}
	}

	central, err := repo.List(ctx, "Central Vietnamese")
	if err != nil {
		t.Fatal(err)
	}
	if len(central) != 2 {
		t.Fatalf("central = %d, want 2", len(central))
	}
	// List orders by name.
	if central[0].Name != "Bún bò Huế" {
		t.Errorf("order: %s first", central[0].Name)
	}
}

func TestRecipeDelete(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, "Phở bò", "", "{}")
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, saved.ID); err != nil {
		t.Fatal(err)
	}
	got, err := repo.GetByName(ctx, "Phở bò")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("recipe still present after delete")
	}
}
