package bot

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/flashbot/internal/database"
	"github.com/example/flashbot/internal/importer"
	"github.com/example/flashbot/pkg/models"
)

// Callback data prefixes for the review flow
const (
	callbackNext         = "next"
	callbackStats        = "stats"
	callbackReveal       = "reveal"
	callbackRate         = "rate"
	callbackLater        = "later"
	callbackResetConfirm = "reset_confirm"
	callbackResetCancel  = "reset_cancel"
)

// handleCommand handles bot commands
func (b *Bot) handleCommand(message *tgbotapi.Message) {
	b.rememberChat(message.Chat.ID)

	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "review":
		b.showNextCard(message.Chat.ID)
	case "stats":
		b.sendStats(message.Chat.ID)
	case "reset":
		b.handleReset(message)
	case "import":
		b.handleImport(message)
	case "settings":
		b.handleSettings(message)
	case "set":
		b.handleSet(message)
	default:
		b.sendText(message.Chat.ID, "Unknown command. Use /help to see the available commands.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	text := "👋 Welcome to the flashcard trainer!\n\n" +
		"I schedule your cards with spaced repetition and pick the best one to show next.\n\n" +
		"🔹 How it works:\n" +
		"1. Import cards from an Excel or CSV file with /import\n" +
		"2. Start a review with /review\n" +
		"3. Rate each answer Hard, Good or Easy\n" +
		"4. Track your progress with /stats"

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyMarkup = createKeyboard(b.mainMenuButtons())
	b.sendMessage(msg)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	text := "📖 Commands\n\n" +
		"/review - Show the next card due for review\n" +
		"/stats - Show scheduling statistics\n" +
		"/import - Import cards from an Excel or CSV file\n" +
		"/settings - Show the algorithm settings\n" +
		"/set <name> <value> - Change an algorithm setting\n" +
		"/reset - Reset all review progress\n\n" +
		"While reviewing, rate each card:\n" +
		"😓 Hard - show it again soon\n" +
		"🙂 Good - normal interval growth\n" +
		"😎 Easy - extra interval bonus\n" +
		"⏸ Later - put it at the back of the queue"
	b.sendText(message.Chat.ID, text)
}

// showNextCard asks the scheduler for the most urgent card and
// presents its question
func (b *Bot) showNextCard(chatID int64) {
	review, err := b.sched.NextCard()
	if err != nil {
		log.Printf("Error getting next card: %v", err)
		b.sendText(chatID, "❌ Something went wrong, please try again.")
		return
	}
	if review == nil {
		stats, err := b.sched.Stats()
		if err == nil && stats.Total == 0 {
			b.sendText(chatID, "Your catalog is empty. Use /import to add cards.")
			return
		}
		b.sendText(chatID, "🎉 All caught up! Nothing is due right now.")
		return
	}

	text := "❓ " + review.Card.Question
	if len(review.Card.Tags) > 0 {
		text += "\n\n🏷 " + strings.Join(review.Card.Tags, ", ")
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "💡 Show answer", CallbackData: callbackReveal + ":" + review.Card.ID}},
		{{Text: "⏸ Later", CallbackData: callbackLater + ":" + review.Card.ID}},
	})
	b.sendMessage(msg)
}

// handleCallbackQuery handles button presses
func (b *Bot) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	b.rememberChat(chatID)

	// Acknowledge the button press
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		log.Printf("Error answering callback: %v", err)
	}

	parts := strings.Split(callback.Data, ":")
	switch parts[0] {
	case callbackNext:
		b.showNextCard(chatID)
	case callbackStats:
		b.sendStats(chatID)
	case callbackReveal:
		if len(parts) == 2 {
			b.revealAnswer(chatID, callback.Message.MessageID, parts[1])
		}
	case callbackRate:
		if len(parts) == 3 {
			b.rateCard(chatID, parts[1], models.Outcome(parts[2]))
		}
	case callbackLater:
		if len(parts) == 2 {
			b.deferCard(chatID, parts[1])
		}
	case callbackResetConfirm:
		b.confirmReset(chatID)
	case callbackResetCancel:
		b.sendText(chatID, "Reset cancelled.")
	}
}

// revealAnswer swaps the question message for question + answer with
// the rating buttons
func (b *Bot) revealAnswer(chatID int64, messageID int, cardID string) {
	card, err := b.cards.GetByID(cardID)
	if err != nil {
		log.Printf("Error loading card %s: %v", cardID, err)
		return
	}
	if card == nil {
		b.sendText(chatID, "That card no longer exists.")
		return
	}

	text := "❓ " + card.Question + "\n\n✅ " + card.Answer + "\n\nHow well did you remember it?"
	keyboard := createKeyboard([][]MenuButton{
		{
			{Text: "😓 Hard", CallbackData: callbackRate + ":" + card.ID + ":" + string(models.OutcomeHard)},
			{Text: "🙂 Good", CallbackData: callbackRate + ":" + card.ID + ":" + string(models.OutcomeGood)},
			{Text: "😎 Easy", CallbackData: callbackRate + ":" + card.ID + ":" + string(models.OutcomeEasy)},
		},
		{{Text: "⏸ Later", CallbackData: callbackLater + ":" + card.ID}},
	})

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, keyboard)
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Error editing message: %v", err)
	}
}

// rateCard records the outcome and moves on to the next card
func (b *Bot) rateCard(chatID int64, cardID string, outcome models.Outcome) {
	if err := b.sched.RecordReview(cardID, outcome); err != nil {
		log.Printf("Error recording review for %s: %v", cardID, err)
		b.sendText(chatID, "❌ Could not save that review, please try again.")
		return
	}
	b.showNextCard(chatID)
}

// deferCard pushes the card to the back of the later queue
func (b *Bot) deferCard(chatID int64, cardID string) {
	if err := b.sched.MarkForLater(cardID); err != nil {
		log.Printf("Error deferring card %s: %v", cardID, err)
		b.sendText(chatID, "❌ Could not defer that card, please try again.")
		return
	}
	b.showNextCard(chatID)
}

func (b *Bot) sendStats(chatID int64) {
	stats, err := b.sched.Stats()
	if err != nil {
		log.Printf("Error getting stats: %v", err)
		b.sendText(chatID, "❌ Could not load statistics.")
		return
	}

	text := fmt.Sprintf("📊 Your progress\n\n"+
		"⏰ Due for review: %d\n"+
		"🆕 Never reviewed: %d\n"+
		"⏸ Deferred for later: %d\n"+
		"📚 Total cards: %d",
		stats.Due, stats.New, stats.Later, stats.Total)
	b.sendText(chatID, text)
}

func (b *Bot) handleReset(message *tgbotapi.Message) {
	msg := tgbotapi.NewMessage(message.Chat.ID,
		"⚠️ This will erase the review progress of every card. Are you sure?")
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{
			{Text: "Yes, reset everything", CallbackData: callbackResetConfirm},
			{Text: "Cancel", CallbackData: callbackResetCancel},
		},
	})
	b.sendMessage(msg)
}

func (b *Bot) confirmReset(chatID int64) {
	if err := b.sched.Reset(); err != nil {
		log.Printf("Error resetting progress: %v", err)
		b.sendText(chatID, "❌ Reset failed, please try again.")
		return
	}
	b.sendText(chatID, "🗑 All review progress has been reset.")
}

func (b *Bot) handleSettings(message *tgbotapi.Message) {
	cfg := b.algo.Config()
	text := fmt.Sprintf("⚙️ Algorithm settings\n\n"+
		"%s: %d\n%s: %d\n%s: %d\n%s: %t\n%s: %d\n%s: %d\n%s: %d\n\n"+
		"Change one with /set <name> <value>",
		database.SettingBaseEase, cfg.BaseEase,
		database.SettingIntervalChangeHard, cfg.IntervalChangeHard,
		database.SettingEasyBonus, cfg.EasyBonus,
		database.SettingEnableLoadBalancer, cfg.EnableLoadBalancer,
		database.SettingMaxIntervalDays, cfg.MaxIntervalDays,
		database.SettingMaxLinkContribution, cfg.MaxLinkContribution,
		database.SettingEaseFloor, cfg.EaseFloor)
	b.sendText(message.Chat.ID, text)
}

// handleSet stores an algorithm setting override and applies it to the
// running algorithm
func (b *Bot) handleSet(message *tgbotapi.Message) {
	args := strings.Fields(message.CommandArguments())
	if len(args) != 2 {
		b.sendText(message.Chat.ID, "Usage: /set <name> <value>, e.g. /set base_ease 270")
		return
	}
	name, value := args[0], args[1]

	switch name {
	case database.SettingEnableLoadBalancer:
		if _, err := strconv.ParseBool(value); err != nil {
			b.sendText(message.Chat.ID, "Value must be true or false.")
			return
		}
	case database.SettingBaseEase, database.SettingIntervalChangeHard,
		database.SettingEasyBonus, database.SettingMaxIntervalDays,
		database.SettingMaxLinkContribution, database.SettingEaseFloor:
		if _, err := strconv.Atoi(value); err != nil {
			b.sendText(message.Chat.ID, "Value must be a whole number.")
			return
		}
	default:
		b.sendText(message.Chat.ID, "Unknown setting: "+name)
		return
	}

	if err := b.settings.Set(name, value); err != nil {
		log.Printf("Error saving setting %s: %v", name, err)
		b.sendText(message.Chat.ID, "❌ Could not save the setting.")
		return
	}

	overrides, err := b.settings.LoadOverrides()
	if err != nil {
		log.Printf("Error reloading settings: %v", err)
		b.sendText(message.Chat.ID, "❌ Could not apply the setting.")
		return
	}
	b.algo.UpdateConfig(b.algo.Config().Merge(overrides))

	b.sendText(message.Chat.ID, fmt.Sprintf("✅ %s is now %s", name, value))
}

func (b *Bot) handleImport(message *tgbotapi.Message) {
	b.awaitingUpload[message.Chat.ID] = true
	b.sendText(message.Chat.ID,
		"📥 Send me an Excel (.xlsx) or CSV file.\n\n"+
			"Expected columns: question, answer, tags (comma-separated), linked question. "+
			"The first row is treated as a header.")
}

// handleDocument downloads an uploaded file and imports it as cards
func (b *Bot) handleDocument(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !b.awaitingUpload[chatID] {
		b.sendText(chatID, "Use /import first if you want to load cards from a file.")
		return
	}
	delete(b.awaitingUpload, chatID)

	path, err := b.downloadDocument(message.Document)
	if err != nil {
		log.Printf("Error downloading document: %v", err)
		b.sendText(chatID, "❌ Could not download the file, please try again.")
		return
	}
	defer os.Remove(path)

	result, err := b.importer.ImportCards(importer.DefaultConfig(path))
	if err != nil {
		log.Printf("Error importing cards: %v", err)
		b.sendText(chatID, "❌ Import failed: "+err.Error())
		return
	}

	text := fmt.Sprintf("📦 Import finished\n\n"+
		"Processed: %d\nCreated: %d\nUpdated: %d\nSkipped: %d",
		result.TotalProcessed, result.Created, result.Updated, result.Skipped)
	if len(result.Errors) > 0 {
		text += fmt.Sprintf("\nErrors: %d (first: %s)", len(result.Errors), result.Errors[0])
	}
	b.sendText(chatID, text)
}

// downloadDocument fetches a Telegram file into a temp path, keeping
// the original extension so the importer can pick the right format
func (b *Bot) downloadDocument(doc *tgbotapi.Document) (string, error) {
	url, err := b.api.GetFileDirectURL(doc.FileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file url: %v", err)
	}

	resp, err := http.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to download file: %v", err)
	}
	defer resp.Body.Close()

	out, err := os.CreateTemp("", "flashbot-import-*"+filepath.Ext(doc.FileName))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %v", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("failed to write temp file: %v", err)
	}
	return out.Name(), nil
}
