package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/flashbot/internal/bot"
	"github.com/example/flashbot/internal/database"
	"github.com/example/flashbot/internal/importer"
	"github.com/example/flashbot/internal/reminder"
	"github.com/example/flashbot/internal/scheduler"
	"github.com/example/flashbot/internal/srs"
)

func main() {
	// .env is optional; real environments set variables directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	// Assemble the fully wired scheduler: store and algorithm first,
	// then everything that consumes them
	store := database.NewStore(db)
	cards := database.NewCardRepository(db)
	settings := database.NewSettingsRepository(db)

	config := srs.DefaultConfig()
	if overrides, err := settings.LoadOverrides(); err != nil {
		log.Printf("Warning: could not load stored settings: %v", err)
	} else {
		config = config.Merge(overrides)
	}

	algo := srs.New(config, nil)
	sched := scheduler.New(store, algo, nil)
	imp := importer.New(cards)

	b, err := bot.New(token, sched, algo, cards, settings, imp)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	// Periodic due-card reminders, delivered through the bot
	var reminders *reminder.Reminder
	if os.Getenv("ENABLE_REMINDERS") != "false" {
		reminders = reminder.New(sched, b)
		reminders.Start()
	}

	done := make(chan struct{})

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if reminders != nil {
			reminders.Stop()
		}
		if err := b.Stop(shutdownCtx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}

		close(done)
	}()

	log.Println("Bot started. Press Ctrl+C to stop.")
	go func() {
		if err := b.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Bot error: %v", err)
		}
	}()

	<-done
	log.Println("Bot stopped successfully")
}
