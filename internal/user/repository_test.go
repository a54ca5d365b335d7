package user

import (
	"context"
	"path/filepath"
	"reflect"
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

func TestProfileSaveAndGet(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	p := &Profile{
		Name:                "Anh",
		FavoriteIngredients: []string{"thịt gà", "rau muống"},
		DislikedIngredients: []string{"mắm tôm"},
		FavoriteDishes:      []string{"Phở bò"},
	}
	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("Save must assign an ID")
	}

	got, err := repo.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for existing profile")
	}
	if got.Name != "Anh" {
		t.Errorf("name = %q", got.Name)
	}
	if !reflect.DeepEqual(got.FavoriteIngredients, p.FavoriteIngredients) {
		t.Errorf("favorites = %v", got.FavoriteIngredients)
	}
}

func TestProfileSaveDeduplicates(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	p := &Profile{
		Name:                "Anh",
		FavoriteIngredients: []string{"gạo", "gạo", "trứng"},
	}
	if err := repo.Save(ctx, p); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Get(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"gạo", "trứng"}
	if !reflect.DeepEqual(got.FavoriteIngredients, want) {
		t.Errorf("favorites = %v, want %v", got.FavoriteIngredients, want)
	}
}

func TestProfileUpdate(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	p := &Profile{Name: "Anh"}
	if err := repo.Save(ctx, p); err != nil {
		t.Fatal(err)
	}
	id := p.ID

	p.Name = "Anh Updated"
	p.DislikedDishes = []string{"Bún đậu"}
	if err := repo.Save(ctx, p); err != nil {
		t.Fatal(err)
	}
	if p.ID != id {
		t.Errorf("update must not change ID: %d -> %d", id, p.ID)
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Anh Updated" || len(got.DislikedDishes) != 1 {
		t.Errorf("update not persisted: %+v", got)
	}
}

func TestProfileGetMissing(t *testing.T) {
	repo := testRepo(t)
	got, err := repo.Get(context.Background(), 9999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing profile, got %+v", got)
	}
}

func TestProfileListAndDelete(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	for _, name := range []string{"Anh", "Bình"} {
		if err := repo.Save(ctx, &Profile{Name: name}); err != nil {
			t.Fatal(err)
		}
	}

	profiles, err := repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 2 {
		t.Fatalf("profiles = %d, want 2", len(profiles))
	}

	if err := repo.Delete(ctx, profiles[0].ID); err != nil {
		t.Fatal(err)
	}
	profiles, err = repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 1 || profiles[0].Name != "Bình" {
		t.Errorf("after delete: %+v", profiles)
	}
}
