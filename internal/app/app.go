// Package app wires configuration, storage and the LLM client into the
// services the CLI and the bot share.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"weekly-menu-planner/internal/config"
	"weekly-menu-planner/internal/database"
	"weekly-menu-planner/internal/keys"
	"weekly-menu-planner/internal/llm"
	"weekly-menu-planner/internal/menu"
	"weekly-menu-planner/internal/metrics"
	"weekly-menu-planner/internal/recipe"
	"weekly-menu-planner/internal/shopping"
	"weekly-menu-planner/internal/user"
)

// App holds the application's dependencies.
type App struct {
	Cfg *config.Config
	Log *zap.Logger

	DB           *database.DB
	KeyStore     *keys.Store
	MetricsStore *metrics.Store

	Users    *user.Repository
	Menus    *menu.Repository
	Recipes  *recipe.Repository
	Shopping *shopping.Repository

	MenuGen   *menu.Generator
	RecipeGen *recipe.Generator

	textGen llm.TextGenerator
}

// New builds the full application from config: database and migrations,
// encrypted key storage, the configured LLM client and both generators.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := database.New(cfg.Database.Path, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	keyStore := keys.NewStore(cfg.Keys.Dir)
	textGen, err := buildTextGen(cfg, keyStore)
	if err != nil {
		db.Close()
		return nil, err
	}

	metricsStore := metrics.NewStore(db.SQL)

	menuGen := menu.NewGenerator(textGen, keyStore, log)
	menuGen.SetUsageRecorder(metricsStore)

	recipeRepo := recipe.NewRepository(db.SQL)
	recipeGen := recipe.NewGenerator(textGen, keyStore, recipeRepo, log)
	recipeGen.SetUsageRecorder(metricsStore)

	return &App{
		Cfg:          cfg,
		Log:          log,
		DB:           db,
		KeyStore:     keyStore,
		MetricsStore: metricsStore,
		Users:        user.NewRepository(db.SQL),
		Menus:        menu.NewRepository(db.SQL),
		Recipes:      recipeRepo,
		Shopping:     shopping.NewRepository(db.SQL),
		MenuGen:      menuGen,
		RecipeGen:    recipeGen,
		textGen:      textGen,
	}, nil
}

// Close releases the database and, when the LLM client holds a
// connection, that too.
func (a *App) Close() error {
	var errs []error
	if closer, ok := a.textGen.(llm.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.DB.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// GenerateMenu runs a full weekly generation for the profile and saves
// the result under the given name.
func (a *App) GenerateMenu(ctx context.Context, profile *user.Profile, cons menu.Constraints, name string, progress menu.ProgressFunc) (*menu.SavedMenu, error) {
	m, err := a.MenuGen.Generate(ctx, profile, cons, progress)
	if err != nil {
		return nil, err
	}

	rec := &menu.SavedMenu{
		UserID:        profile.ID,
		Name:          name,
		CuisineType:   cons.CuisineType,
		BudgetPerMeal: cons.BudgetPerMeal,
		MaxPrepTime:   cons.MaxPrepTime,
		Menu:          m,
	}
	if err := a.Menus.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("menu generated but not saved: %w", err)
	}
	return rec, nil
}

// GenerateRecipe generates (or serves from cache) a recipe for a dish.
func (a *App) GenerateRecipe(ctx context.Context, dishName, cuisineType string, servings int) (*recipe.Recipe, error) {
	return a.RecipeGen.Generate(ctx, dishName, cuisineType, servings)
}

// ShoppingList returns the stored shopping list for a saved menu,
// building and persisting it on first request.
func (a *App) ShoppingList(ctx context.Context, menuID int64) (*shopping.List, error) {
	if list, err := a.Shopping.GetByMenuID(ctx, menuID); err != nil || list != nil {
		return list, err
	}

	saved, err := a.Menus.Get(ctx, menuID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, fmt.Errorf("menu #%d not found", menuID)
	}

	list := &shopping.List{
		MenuID: menuID,
		Items:  shopping.BuildItems(saved.Menu),
	}
	if err := a.Shopping.Save(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func buildTextGen(cfg *config.Config, keyStore *keys.Store) (llm.TextGenerator, error) {
	apiKey := cfg.LLM.APIKey
	if apiKey == "" {
		stored, err := keyStore.Load()
		if err != nil && !errors.Is(err, keys.ErrNoKey) {
			return nil, fmt.Errorf("failed to load api key: %w", err)
		}
		apiKey = stored
	}
	if apiKey == "" {
		return nil, errors.New("no API key configured: set OPENAI_API_KEY or store one with save-key")
	}

	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		client, err := llm.NewGeminiClient(context.Background(), apiKey, cfg.LLM.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return client, nil
	default:
		return llm.NewOpenAIClient(cfg.LLM.BaseURL, apiKey, cfg.LLM.Model), nil
	}
}
