package shopping

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"weekly-menu-planner/internal/database"
	"weekly-menu-planner/internal/menu"
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

func TestBuildItems(t *testing.T) {
	m := menu.NewWeeklyMenu([]string{"Monday", "Tuesday"}, []string{"Lunch"})
	m.Days["Monday"] = map[string]menu.MealEntry{
		"Lunch": {Name: "Cơm gà", Ingredients: []string{"gạo", "thịt gà"}},
	}
	m.Days["Tuesday"] = map[string]menu.MealEntry{
		"Lunch": {Name: "Cơm chiên", Ingredients: []string{"gạo", "trứng", ""}},
	}

	got := BuildItems(m)
	want := []string{"gạo (x2)", "thịt gà", "trứng"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildItems = %v, want %v", got, want)
	}
}

func TestBuildItemsEmptyMenu(t *testing.T) {
	if got := BuildItems(menu.NewWeeklyMenu(nil, nil)); len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}

func TestRepositorySaveAndGet(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	list := &List{MenuID: 7, Items: []string{"gạo (x2)", "trứng"}}
	if err := repo.Save(ctx, list); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if list.ID == 0 {
		t.Fatal("Save must assign an ID")
	}

	got, err := repo.GetByMenuID(ctx, 7)
	if err != nil {
		t.Fatalf("GetByMenuID failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected stored list")
	}
	if !reflect.DeepEqual(got.Items, list.Items) {
		t.Errorf("items = %v", got.Items)
	}
}

func TestRepositorySaveReplaces(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, &List{MenuID: 7, Items: []string{"old"}}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, &List{MenuID: 7, Items: []string{"new"}}); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetByMenuID(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 1 || got.Items[0] != "new" {
		t.Errorf("items = %v, want [new]", got.Items)
	}
}

func TestRepositoryGetMissing(t *testing.T) {
	repo := testRepo(t)
	got, err := repo.GetByMenuID(context.Background(), 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestRepositoryDelete(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, &List{MenuID: 7, Items: []string{"gạo"}}); err != nil {
		t.Fatal(err)
	}
	if err := repo.DeleteByMenuID(ctx, 7); err != nil {
		t.Fatal(err)
	}
	got, err := repo.GetByMenuID(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("list still present after delete")
	}
}
