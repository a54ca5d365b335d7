package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"weekly-menu-planner/internal/app"
	"weekly-menu-planner/internal/config"
	"weekly-menu-planner/internal/export"
	"weekly-menu-planner/internal/keys"
	"weekly-menu-planner/internal/logging"
	"weekly-menu-planner/internal/menu"
	"weekly-menu-planner/internal/user"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatalf("Failed to load configuration: %v", err)
	}

	log, err := logging.New(cfg.Debug)
	if err != nil {
		fatalf("Failed to create logger: %v", err)
	}
	defer log.Sync()

	// save-key must work before any LLM client can be built.
	if os.Args[1] == "save-key" {
		if err := runSaveKey(cfg, os.Args[2:]); err != nil {
			fatalf("Failed to save key: %v", err)
		}
		return
	}

	application, err := app.New(cfg, log)
	if err != nil {
		fatalf("Failed to initialize: %v", err)
	}
	defer application.Close()

	// Ctrl-C cancels the in-flight generation instead of killing the
	// process mid-write.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "generate":
		err = runGenerate(ctx, application, os.Args[2:])
	case "recipe":
		err = runRecipe(ctx, application, os.Args[2:])
	case "menus":
		err = runListMenus(ctx, application, os.Args[2:])
	case "show":
		err = runShowMenu(ctx, application, os.Args[2:])
	case "delete-menu":
		err = runDeleteMenu(ctx, application, os.Args[2:])
	case "shopping":
		err = runShopping(ctx, application, os.Args[2:])
	case "users":
		err = runListUsers(ctx, application)
	case "add-user":
		err = runAddUser(ctx, application, os.Args[2:])
	case "metrics-cleanup":
		err = runMetricsCleanup(ctx, application, os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fatalf("%v", err)
	}
}

func runGenerate(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	userName := fs.String("user", "", "Profile name to generate for")
	cuisine := fs.String("cuisine", menu.CuisineTypes[0], "Cuisine type")
	budget := fs.Int("budget", 100000, "Budget per meal in VND")
	prep := fs.Int("prep", 60, "Maximum preparation time in minutes")
	servings := fs.Int("servings", menu.DefaultServings, "Servings per meal")
	days := fs.String("days", strings.Join(menu.DaysOfWeek, ","), "Comma-separated days")
	slots := fs.String("slots", strings.Join(menu.MealSlots, ","), "Comma-separated meal slots")
	name := fs.String("name", "Weekly menu", "Name to save the menu under")
	out := fs.String("out", "", "Also export the menu as text to this file")
	asJSON := fs.String("json", "", "Also export the menu as JSON to this file")
	fs.Parse(args)

	profile, err := resolveProfile(ctx, a, *userName)
	if err != nil {
		return err
	}

	cons := menu.Constraints{
		CuisineType:   *cuisine,
		BudgetPerMeal: *budget,
		MaxPrepTime:   *prep,
		Servings:      *servings,
		Days:          splitList(*days),
		Slots:         splitList(*slots),
	}

	saved, err := a.GenerateMenu(ctx, profile, cons, *name, func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Print(export.RenderMenu(saved.Name, saved.Menu))
	fmt.Printf("\nSaved as menu #%d\n", saved.ID)

	if *out != "" {
		path, err := export.WriteText(*out, export.RenderMenu(saved.Name, saved.Menu))
		if err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", path)
	}
	if *asJSON != "" {
		path, err := export.SaveJSON(*asJSON, saved.Menu)
		if err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", path)
	}
	return nil
}

func runRecipe(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("recipe", flag.ExitOnError)
	dish := fs.String("dish", "", "Dish name (required)")
	cuisine := fs.String("cuisine", "", "Cuisine type")
	servings := fs.Int("servings", 0, "Servings to scale to")
	out := fs.String("out", "", "Also export the recipe as text to this file")
	fs.Parse(args)

	if *dish == "" {
		return fmt.Errorf("recipe: -dish is required")
	}

	rec, err := a.GenerateRecipe(ctx, *dish, *cuisine, *servings)
	if err != nil {
		return err
	}
	if rec.Err != "" {
		fmt.Printf("Warning: the model's answer could not be fully parsed (%s)\n\n", rec.Err)
	}
	fmt.Print(export.RenderRecipe(rec))

	if *out != "" {
		path, err := export.WriteText(*out, export.RenderRecipe(rec))
		if err != nil {
			return err
		}
		fmt.Printf("\nExported to %s\n", path)
	}
	return nil
}

func runListMenus(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("menus", flag.ExitOnError)
	cuisine := fs.String("cuisine", "", "Filter by cuisine type")
	fs.Parse(args)

	menus, err := a.Menus.List(ctx, *cuisine)
	if err != nil {
		return err
	}
	if len(menus) == 0 {
		fmt.Println("No saved menus.")
		return nil
	}
	for _, m := range menus {
		fmt.Printf("#%d  %-30s %s  %s  budget %s\n",
			m.ID, m.Name, m.CreationDate.Format("2006-01-02"), m.CuisineType,
			export.FormatCurrency(m.BudgetPerMeal))
	}
	return nil
}

func runShowMenu(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	id := fs.Int64("id", 0, "Menu ID (required)")
	fs.Parse(args)

	if *id == 0 {
		return fmt.Errorf("show: -id is required")
	}
	m, err := a.Menus.Get(ctx, *id)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("menu #%d not found", *id)
	}
	fmt.Print(export.RenderMenu(m.Name, m.Menu))
	return nil
}

func runDeleteMenu(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("delete-menu", flag.ExitOnError)
	id := fs.Int64("id", 0, "Menu ID (required)")
	fs.Parse(args)

	if *id == 0 {
		return fmt.Errorf("delete-menu: -id is required")
	}
	if err := a.Menus.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("Deleted menu #%d\n", *id)
	return nil
}

func runShopping(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("shopping", flag.ExitOnError)
	id := fs.Int64("id", 0, "Menu ID (required)")
	fs.Parse(args)

	if *id == 0 {
		return fmt.Errorf("shopping: -id is required")
	}
	list, err := a.ShoppingList(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Printf("Shopping list for menu #%d\n", list.MenuID)
	for _, item := range list.Items {
		fmt.Printf("  - %s\n", item)
	}
	return nil
}

func runListUsers(ctx context.Context, a *app.App) error {
	profiles, err := a.Users.List(ctx)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Println("No profiles. Create one with add-user.")
		return nil
	}
	for _, p := range profiles {
		fmt.Printf("#%d  %s\n", p.ID, p.Name)
		if len(p.FavoriteIngredients) > 0 {
			fmt.Printf("    likes: %s\n", strings.Join(p.FavoriteIngredients, ", "))
		}
		if len(p.DislikedIngredients) > 0 {
			fmt.Printf("    dislikes: %s\n", strings.Join(p.DislikedIngredients, ", "))
		}
	}
	return nil
}

func runAddUser(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("add-user", flag.ExitOnError)
	name := fs.String("name", "", "Profile name (required)")
	likes := fs.String("likes", "", "Comma-separated favorite ingredients")
	dislikes := fs.String("dislikes", "", "Comma-separated disliked ingredients")
	favDishes := fs.String("fav-dishes", "", "Comma-separated favorite dishes")
	badDishes := fs.String("disliked-dishes", "", "Comma-separated disliked dishes")
	fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("add-user: -name is required")
	}
	p := &user.Profile{
		Name:                *name,
		FavoriteIngredients: splitList(*likes),
		DislikedIngredients: splitList(*dislikes),
		FavoriteDishes:      splitList(*favDishes),
		DislikedDishes:      splitList(*badDishes),
	}
	if err := a.Users.Save(ctx, p); err != nil {
		return err
	}
	fmt.Printf("Saved profile #%d %s\n", p.ID, p.Name)
	return nil
}

func runMetricsCleanup(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
	days := fs.Int("days", 30, "Keep records for the last N days")
	fs.Parse(args)

	affected, err := a.MetricsStore.Cleanup(ctx, *days)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d old metric records.\n", affected)
	return nil
}

func runSaveKey(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("save-key", flag.ExitOnError)
	key := fs.String("key", "", "API key to store encrypted (required)")
	fs.Parse(args)

	if *key == "" {
		return fmt.Errorf("save-key: -key is required")
	}
	store := keys.NewStore(cfg.Keys.Dir)
	if err := store.Save(*key); err != nil {
		return err
	}
	fmt.Println("API key stored.")
	return nil
}

func resolveProfile(ctx context.Context, a *app.App, name string) (*user.Profile, error) {
	if name == "" {
		profiles, err := a.Users.List(ctx)
		if err != nil {
			return nil, err
		}
		if len(profiles) > 0 {
			return &profiles[0], nil
		}
		return &user.Profile{Name: "Guest"}, nil
	}

	profiles, err := a.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].Name == name {
			return &profiles[i], nil
		}
	}
	return nil, fmt.Errorf("profile %q not found", name)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func printUsage() {
	fmt.Println("Usage: menu-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  generate         Generate and save a weekly menu")
	fmt.Println("  recipe           Generate a detailed recipe for a dish")
	fmt.Println("  menus            List saved menus")
	fmt.Println("  show             Show one saved menu")
	fmt.Println("  delete-menu      Delete a saved menu")
	fmt.Println("  shopping         Build the shopping list for a saved menu")
	fmt.Println("  users            List user profiles")
	fmt.Println("  add-user         Create or update a user profile")
	fmt.Println("  save-key         Store the LLM API key encrypted on disk")
	fmt.Println("  metrics-cleanup  Remove old token usage records")
}
