package recipe

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"text/template"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"weekly-menu-planner/internal/llm"
	"weekly-menu-planner/internal/normalize"
)

//go:embed recipe_prompt.md
var recipePrompt string

var recipePromptTmpl = template.Must(template.New("recipe").Parse(recipePrompt))

// ErrGenerationInFlight is returned when Generate is called while
// another recipe generation owned by the same Generator is running.
var ErrGenerationInFlight = errors.New("a recipe generation is already in flight")

// GenerationError reports which dish failed to generate and why.
type GenerationError struct {
	Dish string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("recipe generation failed for %q: %v", e.Dish, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Cache is the persistence surface the generator needs. Recipes are
// cached by dish name with no automatic invalidation.
type Cache interface {
	GetByName(ctx context.Context, name string) (*SavedRecipe, error)
	Save(ctx context.Context, name, cuisineType, content string) (*SavedRecipe, error)
}

// UsageRecorder persists per-call token usage. Recording failures are
// logged and never fail a generation.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, runID, kind string, usage llm.TokenUsage, duration time.Duration, degraded bool) error
}

// Generator produces a detailed recipe for a single dish on demand.
type Generator struct {
	textGen llm.TextGenerator
	creds   llm.Refresher
	cache   Cache
	usage   UsageRecorder
	log     *zap.Logger

	inFlight atomic.Bool
}

// NewGenerator creates a Generator. cache and creds may be nil.
func NewGenerator(textGen llm.TextGenerator, creds llm.Refresher, cache Cache, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{textGen: textGen, creds: creds, cache: cache, log: log}
}

// SetUsageRecorder enables token usage accounting for later calls.
func (g *Generator) SetUsageRecorder(rec UsageRecorder) {
	g.usage = rec
}

// Generate returns the recipe for dishName, serving it from the cache
// when one was generated before. Numeric fields are coerced to integers
// after normalization; coercion never fails.
func (g *Generator) Generate(ctx context.Context, dishName, cuisineType string, servings int) (*Recipe, error) {
	if dishName == "" {
		return nil, &GenerationError{Dish: dishName, Err: errors.New("dish name is required")}
	}
	if servings <= 0 {
		servings = DefaultServings
	}

	if !g.inFlight.CompareAndSwap(false, true) {
		return nil, ErrGenerationInFlight
	}
	defer g.inFlight.Store(false)

	if cached := g.lookup(ctx, dishName); cached != nil {
		g.log.Info("recipe served from cache", zap.String("dish", dishName))
		return cached, nil
	}

	prompt, err := buildRecipePrompt(dishName, cuisineType, servings)
	if err != nil {
		return nil, &GenerationError{Dish: dishName, Err: err}
	}

	start := time.Now()
	resp, err := llm.Generate(ctx, g.textGen, g.creds, prompt, true)
	if err != nil {
		return nil, &GenerationError{Dish: dishName, Err: err}
	}
	g.log.Info("recipe response received",
		zap.String("dish", dishName),
		zap.Bool("truncated", resp.Truncated),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	res := normalize.Normalize(resp.Content, resp.Truncated)
	if g.usage != nil {
		runID := uuid.NewString()
		if err := g.usage.RecordUsage(ctx, runID, "recipe", resp.Usage, time.Since(start), res.Degraded); err != nil {
			g.log.Warn("failed to record usage", zap.String("dish", dishName), zap.Error(err))
		}
	}
	rec := recipeFromDoc(res.Doc)
	if rec.Name == "" || rec.Name == "Unknown recipe" {
		rec.Name = dishName
	}
	if rec.CuisineType == "" {
		rec.CuisineType = cuisineType
	}

	// Degraded placeholders reach the caller flagged via rec.Err but are
	// never cached, so a later request gets a fresh attempt.
	if g.cache != nil && !res.Degraded && rec.Err == "" {
		g.store(ctx, &rec)
	}
	return &rec, nil
}

func (g *Generator) lookup(ctx context.Context, dishName string) *Recipe {
	if g.cache == nil {
		return nil
	}
	saved, err := g.cache.GetByName(ctx, dishName)
	if err != nil {
		g.log.Warn("recipe cache lookup failed", zap.String("dish", dishName), zap.Error(err))
		return nil
	}
	if saved == nil {
		return nil
	}

	var rec Recipe
	if err := json.Unmarshal([]byte(saved.Content), &rec); err != nil {
		g.log.Warn("cached recipe is corrupt, regenerating", zap.String("dish", dishName), zap.Error(err))
		return nil
	}
	return &rec
}

func (g *Generator) store(ctx context.Context, rec *Recipe) {
	blob, err := json.Marshal(rec)
	if err != nil {
		g.log.Warn("failed to marshal recipe for caching", zap.String("dish", rec.Name), zap.Error(err))
		return
	}
	if _, err := g.cache.Save(ctx, rec.Name, rec.CuisineType, string(blob)); err != nil {
		g.log.Warn("failed to cache recipe", zap.String("dish", rec.Name), zap.Error(err))
	}
}

type recipePromptData struct {
	DishName string
	Cuisine  string
	Servings int
}

func buildRecipePrompt(dishName, cuisineType string, servings int) (string, error) {
	var buf bytes.Buffer
	err := recipePromptTmpl.Execute(&buf, recipePromptData{
		DishName: dishName,
		Cuisine:  cuisineType,
		Servings: servings,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render recipe prompt: %w", err)
	}
	return buf.String(), nil
}
