// Package bot implements the Telegram front end: it asks the scheduler
// for the next card, walks the question/reveal/rate flow, and reports
// outcomes back.
package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/flashbot/internal/database"
	"github.com/example/flashbot/internal/importer"
	"github.com/example/flashbot/internal/scheduler"
	"github.com/example/flashbot/internal/srs"
)

// settingChatID remembers the chat to send reminders to
const settingChatID = "chat_id"

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// Bot represents the Telegram bot application
type Bot struct {
	api            *tgbotapi.BotAPI
	token          string
	sched          *scheduler.Scheduler
	algo           *srs.Algorithm
	cards          *database.CardRepository
	settings       *database.SettingsRepository
	importer       *importer.Importer
	config         *Config
	awaitingUpload map[int64]bool
	chatID         int64
}

// New creates a new bot instance with all dependencies wired in
func New(token string, sched *scheduler.Scheduler, algo *srs.Algorithm, cards *database.CardRepository, settings *database.SettingsRepository, imp *importer.Importer) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("bot token is empty")
	}
	if sched == nil || algo == nil || cards == nil || settings == nil || imp == nil {
		return nil, fmt.Errorf("bot dependencies are not fully wired")
	}

	bot := &Bot{
		token:          token,
		sched:          sched,
		algo:           algo,
		cards:          cards,
		settings:       settings,
		importer:       imp,
		config:         DefaultConfig(),
		awaitingUpload: make(map[int64]bool),
	}

	// Restore the reminder chat from a previous session
	if value, ok, err := settings.Get(settingChatID); err == nil && ok {
		if id, err := strconv.ParseInt(value, 10, 64); err == nil {
			bot.chatID = id
		}
	}

	return bot, nil
}

// Start connects to Telegram and handles updates until the context is
// cancelled
func (b *Bot) Start(ctx context.Context) error {
	api, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %v", err)
	}
	b.api = api
	log.Printf("Authorized on account %s", api.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = int(b.config.PollTimeout.Seconds())
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(update)
		}
	}
}

// Stop shuts down the updates channel
func (b *Bot) Stop(ctx context.Context) error {
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}
	log.Println("Bot stopped")
	return nil
}

// handleUpdate routes a single incoming update
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(update.Message)
	case update.Message != nil && update.Message.Document != nil:
		b.handleDocument(update.Message)
	case update.Message != nil:
		b.sendText(update.Message.Chat.ID, "I don't understand. Use /help to see the available commands.")
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(update.CallbackQuery)
	}
}

// SendReminder implements the reminder.Notifier interface
func (b *Bot) SendReminder(due int) error {
	if b.api == nil || b.chatID == 0 {
		log.Println("Reminder skipped: no active chat yet")
		return nil
	}

	plural := "cards"
	if due == 1 {
		plural = "card"
	}
	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("⏰ You have %d %s due for review! Use /review to start.", due, plural))
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending reminder: %v", err)
		return err
	}
	return nil
}

// rememberChat persists the chat id so reminders survive restarts
func (b *Bot) rememberChat(chatID int64) {
	if b.chatID == chatID {
		return
	}
	b.chatID = chatID
	if err := b.settings.Set(settingChatID, strconv.FormatInt(chatID, 10)); err != nil {
		log.Printf("Error saving chat id: %v", err)
	}
}

// sendText sends a plain text message
func (b *Bot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

// sendMessage sends a prepared message
func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

// mainMenuButtons returns the persistent main menu
func (b *Bot) mainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{{Text: "📖 Review", CallbackData: "next"}},
		{{Text: "📊 Stats", CallbackData: "stats"}},
	}
}
