package menu

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"text/template"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"weekly-menu-planner/internal/llm"
	"weekly-menu-planner/internal/normalize"
	"weekly-menu-planner/internal/user"
)

//go:embed day_prompt.md
var dayPrompt string

var dayPromptTmpl = template.Must(
	template.New("day").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		Parse(dayPrompt),
)

// ProgressFunc receives advisory progress messages during a run. It is
// for display only; correctness never depends on it.
type ProgressFunc func(message string)

// UsageRecorder persists per-call token usage. Recording failures are
// logged and never fail a run.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, runID, kind string, usage llm.TokenUsage, duration time.Duration, degraded bool) error
}

// Generator drives day-by-day weekly menu generation. At most one run
// per Generator may be in flight; a second call fails with
// ErrGenerationInFlight rather than interleaving tracker state.
type Generator struct {
	textGen llm.TextGenerator
	creds   llm.Refresher
	usage   UsageRecorder
	log     *zap.Logger

	inFlight atomic.Bool
}

// NewGenerator creates a Generator. creds may be nil when no credential
// refresh is available.
func NewGenerator(textGen llm.TextGenerator, creds llm.Refresher, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{textGen: textGen, creds: creds, log: log}
}

// SetUsageRecorder enables token usage accounting for later runs.
func (g *Generator) SetUsageRecorder(rec UsageRecorder) {
	g.usage = rec
}

// Generate produces a weekly menu for the profile under the given
// constraints. Days are processed strictly in the order requested: each
// day's do-not-repeat constraint depends on all dishes generated so far.
// Any day failing aborts the whole run; no partial menu is returned.
func (g *Generator) Generate(ctx context.Context, profile *user.Profile, cons Constraints, progress ProgressFunc) (*WeeklyMenu, error) {
	if err := cons.Validate(); err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, &ValidationError{Message: "user profile is required"}
	}

	if !g.inFlight.CompareAndSwap(false, true) {
		return nil, ErrGenerationInFlight
	}
	defer g.inFlight.Store(false)

	if progress == nil {
		progress = func(string) {}
	}

	runID := uuid.NewString()
	log := g.log.With(zap.String("run_id", runID))
	log.Info("starting menu generation",
		zap.Strings("days", cons.Days),
		zap.Strings("slots", cons.Slots),
		zap.String("cuisine", cons.CuisineType))

	tracker := NewTracker()
	result := NewWeeklyMenu(cons.Days, cons.Slots)

	for _, day := range cons.Days {
		if ctx.Err() != nil {
			log.Info("run cancelled", zap.String("day", day))
			return nil, ErrCancelled
		}
		progress(fmt.Sprintf("Generating menu for %s...", day))

		prompt, err := buildDayPrompt(day, profile, cons, tracker.All())
		if err != nil {
			return nil, &GenerationError{Day: day, Err: err}
		}

		start := time.Now()
		resp, err := llm.Generate(ctx, g.textGen, g.creds, prompt, true)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Info("run cancelled during request", zap.String("day", day))
				return nil, ErrCancelled
			}
			return nil, &GenerationError{Day: day, Err: err}
		}
		log.Info("day response received",
			zap.String("day", day),
			zap.Bool("truncated", resp.Truncated),
			zap.Int("prompt_tokens", resp.Usage.PromptTokens),
			zap.Int("completion_tokens", resp.Usage.CompletionTokens))

		res := normalize.Normalize(resp.Content, resp.Truncated)
		if g.usage != nil {
			if err := g.usage.RecordUsage(ctx, runID, "menu_day", resp.Usage, time.Since(start), res.Degraded); err != nil {
				log.Warn("failed to record usage", zap.String("day", day), zap.Error(err))
			}
		}
		if msg, ok := res.Doc["error"].(string); ok && len(res.Doc) == 1 {
			return nil, &GenerationError{Day: day, Err: errors.New(msg)}
		}
		if res.Degraded {
			return nil, &GenerationError{Day: day, Err: errors.New(res.Err)}
		}

		meals := dayMeals(res.Doc, day, cons)
		result.Days[day] = meals
		for _, slot := range orderedKeys(cons.Slots, slotKeys(meals)) {
			tracker.Record(meals[slot].Name)
		}
	}

	assemble(result)
	progress("Menu generation complete")
	log.Info("menu generation complete", zap.Int("meals", result.MealCount()), zap.Int("dishes", len(tracker.All())))
	return result, nil
}

// dayMeals converts one day's normalized payload into typed entries.
// A missing day payload yields an empty slot map, which is tolerated.
func dayMeals(doc map[string]any, day string, cons Constraints) map[string]MealEntry {
	meals := make(map[string]MealEntry)

	dayDoc, ok := extractDayDoc(doc, day)
	if !ok {
		return meals
	}
	for slot, raw := range slotMapFromDoc(dayDoc) {
		mealDoc, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		entry := mealFromDoc(mealDoc)
		if entry.Servings == 0 {
			entry.Servings = cons.servingsOrDefault()
		}
		meals[slot] = entry
	}
	return meals
}

// assemble recomputes each meal's reused ingredients against everything
// planned before it, then attaches the optimizer's notes.
func assemble(m *WeeklyMenu) {
	var prior []string
	m.EachMeal(func(_, _ string, entry *MealEntry) {
		entry.ReusedIngredients = FindReusable(entry.Ingredients, prior)
		prior = append(prior, entry.Ingredients...)
	})
	m.OptimizationNotes = SuggestOptimizations(m)
}

type dayPromptData struct {
	Day                 string
	Slots               string
	FavoriteIngredients string
	DislikedIngredients string
	FavoriteDishes      string
	DislikedDishes      string
	Cuisine             string
	Budget              int
	MaxPrepTime         int
	Servings            int
	PreviousDishes      []string
}

func buildDayPrompt(day string, profile *user.Profile, cons Constraints, previousDishes []string) (string, error) {
	data := dayPromptData{
		Day:                 day,
		Slots:               strings.Join(cons.Slots, ", "),
		FavoriteIngredients: joinOrNone(profile.FavoriteIngredients),
		DislikedIngredients: joinOrNone(profile.DislikedIngredients),
		FavoriteDishes:      joinOrNone(profile.FavoriteDishes),
		DislikedDishes:      joinOrNone(profile.DislikedDishes),
		Cuisine:             cons.CuisineType,
		Budget:              cons.BudgetPerMeal,
		MaxPrepTime:         cons.MaxPrepTime,
		Servings:            cons.servingsOrDefault(),
		PreviousDishes:      previousDishes,
	}

	var buf bytes.Buffer
	if err := dayPromptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render day prompt: %w", err)
	}
	return buf.String(), nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}
