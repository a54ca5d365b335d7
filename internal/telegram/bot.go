// Package telegram exposes menu and recipe generation over a Telegram
// bot using long polling.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"weekly-menu-planner/internal/app"
	"weekly-menu-planner/internal/export"
	"weekly-menu-planner/internal/menu"
	"weekly-menu-planner/internal/metrics"
	"weekly-menu-planner/internal/user"
)

// botAPI is the slice of the Telegram client the bot uses, kept small
// so tests can stand in for the real API.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot wraps the Telegram API around the shared application services.
type Bot struct {
	api           botAPI
	app           *app.App
	log           *zap.Logger
	allowedUserID int64
}

// NewBot initializes the Telegram bot with long polling.
func NewBot(a *app.App) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(a.Cfg.Telegram.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	a.Log.Info("telegram bot authorized", zap.String("account", api.Self.UserName))

	return &Bot{
		api:           api,
		app:           a,
		log:           a.Log,
		allowedUserID: a.Cfg.Telegram.AllowedUserID,
	}, nil
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			if !b.allowed(update.Message.From.ID) {
				b.log.Warn("unauthorized access attempt",
					zap.Int64("user_id", update.Message.From.ID),
					zap.String("username", update.Message.From.UserName))
				continue
			}
			go b.processMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) allowed(userID int64) bool {
	return b.allowedUserID == 0 || userID == b.allowedUserID
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	cmd, args, _ := strings.Cut(text, " ")
	args = strings.TrimSpace(args)

	switch cmd {
	case "/start", "/help":
		b.reply(msg.Chat.ID, helpText)
	case "/menu":
		b.handleMenuRequest(ctx, msg, args)
	case "/recipe":
		b.handleRecipeRequest(ctx, msg, args)
	case "/menus":
		b.handleListMenus(ctx, msg.Chat.ID)
	case "/shopping":
		b.handleShopping(ctx, msg.Chat.ID, args)
	case "/metrics":
		b.handleMetrics(ctx, msg.Chat.ID)
	case "/status":
		b.handleStatus(msg.Chat.ID)
	default:
		b.reply(msg.Chat.ID, "Unknown command. Try /help.")
	}
}

const helpText = `🍲 Weekly menu planner

/menu [cuisine] - generate a weekly menu
/recipe <dish> - get a detailed recipe
/menus - list saved menus
/shopping <menu id> - shopping list for a saved menu
/metrics - token usage for the last week
/status - process health`

func (b *Bot) handleMenuRequest(ctx context.Context, msg *tgbotapi.Message, cuisine string) {
	sent, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "🧑‍🍳 Planning your week..."))
	if err != nil {
		b.log.Warn("failed to send status message", zap.Error(err))
		return
	}

	cons := defaultConstraints(cuisine)
	profile := b.profileFor(ctx, msg.From)

	progress := func(message string) {
		edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sent.MessageID, "🧑‍🍳 "+message)
		if _, err := b.api.Send(edit); err != nil {
			b.log.Warn("failed to edit status message", zap.Error(err))
		}
	}

	name := fmt.Sprintf("Menu for %s", msg.From.UserName)
	saved, err := b.app.GenerateMenu(ctx, profile, cons, name, progress)
	if err != nil {
		b.editOrReply(msg.Chat.ID, sent.MessageID, fmt.Sprintf("❌ Menu generation failed:\n%v", err))
		return
	}

	rendered := export.RenderMenu(saved.Name, saved.Menu)
	b.editOrReply(msg.Chat.ID, sent.MessageID, rendered)
}

func (b *Bot) handleRecipeRequest(ctx context.Context, msg *tgbotapi.Message, dish string) {
	if dish == "" {
		b.reply(msg.Chat.ID, "Usage: /recipe <dish name>")
		return
	}

	sent, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf("🧑‍🍳 Writing the recipe for %s...", dish)))
	if err != nil {
		b.log.Warn("failed to send status message", zap.Error(err))
		return
	}

	rec, err := b.app.GenerateRecipe(ctx, dish, "", 0)
	if err != nil {
		b.editOrReply(msg.Chat.ID, sent.MessageID, fmt.Sprintf("❌ Recipe generation failed:\n%v", err))
		return
	}
	if rec.Err != "" {
		b.editOrReply(msg.Chat.ID, sent.MessageID, fmt.Sprintf("⚠️ The model's answer could not be fully parsed (%s). Try again.", rec.Err))
		return
	}
	b.editOrReply(msg.Chat.ID, sent.MessageID, export.RenderRecipe(rec))
}

func (b *Bot) handleListMenus(ctx context.Context, chatID int64) {
	menus, err := b.app.Menus.List(ctx, "")
	if err != nil {
		b.reply(chatID, fmt.Sprintf("❌ Failed to list menus: %v", err))
		return
	}
	if len(menus) == 0 {
		b.reply(chatID, "No saved menus yet. Generate one with /menu.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 Saved menus\n")
	for _, m := range menus {
		fmt.Fprintf(&sb, "  #%d %s (%s, %s)\n", m.ID, m.Name, m.CuisineType, m.CreationDate.Format("2006-01-02"))
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleShopping(ctx context.Context, chatID int64, args string) {
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil || id == 0 {
		b.reply(chatID, "Usage: /shopping <menu id>")
		return
	}
	list, err := b.app.ShoppingList(ctx, id)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("❌ Failed to build shopping list: %v", err))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🛒 Shopping list for menu #%d\n", list.MenuID)
	for _, item := range list.Items {
		fmt.Fprintf(&sb, "  - %s\n", item)
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleMetrics(ctx context.Context, chatID int64) {
	usage, err := b.app.MetricsStore.GetDailyUsage(ctx, 7)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("❌ Failed to load metrics: %v", err))
		return
	}
	if len(usage) == 0 {
		b.reply(chatID, "No usage recorded in the last 7 days.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📊 Token usage (7 days)\n")
	for _, u := range usage {
		fmt.Fprintf(&sb, "  %s: %d prompt / %d completion over %d calls\n",
			u.Date, u.TotalPrompt, u.TotalCompletion, u.Calls)
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleStatus(chatID int64) {
	h := metrics.GetSysHealth(b.app.Cfg.Database.Path)
	b.reply(chatID, fmt.Sprintf(
		"💚 Alive\nHeap: %d MB (sys %d MB)\nGoroutines: %d\nGC cycles: %d\nDatabase: %s",
		h.AllocMB, h.SysMB, h.Goroutines, h.NumGC, h.DBSize))
}

// profileFor loads the stored profile matching the Telegram user, or
// falls back to a throwaway one so /menu works before any setup.
func (b *Bot) profileFor(ctx context.Context, from *tgbotapi.User) *user.Profile {
	profiles, err := b.app.Users.List(ctx)
	if err != nil {
		b.log.Warn("failed to list profiles", zap.Error(err))
	}
	name := from.UserName
	if name == "" {
		name = strconv.FormatInt(from.ID, 10)
	}
	for i := range profiles {
		if profiles[i].Name == name {
			return &profiles[i]
		}
	}
	if len(profiles) > 0 {
		return &profiles[0]
	}
	return &user.Profile{Name: name}
}

func defaultConstraints(cuisine string) menu.Constraints {
	if cuisine == "" {
		cuisine = menu.CuisineTypes[0]
	}
	return menu.Constraints{
		CuisineType:   cuisine,
		BudgetPerMeal: 100000,
		MaxPrepTime:   60,
		Servings:      menu.DefaultServings,
		Days:          menu.DaysOfWeek,
		Slots:         menu.MealSlots,
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn("failed to send message", zap.Error(err))
	}
}

func (b *Bot) editOrReply(chatID int64, messageID int, text string) {
	// Telegram rejects edits above the message size limit; fall back to
	// a fresh message for long renders.
	if len(text) > 4000 {
		b.reply(chatID, text)
		return
	}
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.reply(chatID, text)
	}
}
