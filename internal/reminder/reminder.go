// Package reminder periodically checks for due cards and nudges the
// user through a notifier
package reminder

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/flashbot/internal/scheduler"
)

// Default notification window (local hours)
const (
	DefaultStartHour = 9
	DefaultEndHour   = 21
)

// Notifier interface for sending notifications
type Notifier interface {
	SendReminder(due int) error
}

// Reminder manages the periodic due-card check
type Reminder struct {
	jobs     *gocron.Scheduler
	sched    *scheduler.Scheduler
	notifier Notifier
}

// New creates a new reminder instance
func New(sched *scheduler.Scheduler, notifier Notifier) *Reminder {
	return &Reminder{
		jobs:     gocron.NewScheduler(time.UTC),
		sched:    sched,
		notifier: notifier,
	}
}

// Start begins the hourly due-card check in a non-blocking manner
func (r *Reminder) Start() {
	r.jobs.Every(1).Hour().Do(r.checkAndNotify)
	r.jobs.StartAsync()
}

// Stop terminates all scheduled checks
func (r *Reminder) Stop() {
	r.jobs.Stop()
}

// RunManualCheck forces a due-card check right away, ignoring the
// notification window
func (r *Reminder) RunManualCheck() error {
	stats, err := r.sched.Stats()
	if err != nil {
		return err
	}
	if stats.Due == 0 {
		return nil
	}
	return r.notifier.SendReminder(stats.Due)
}

// checkAndNotify sends a reminder when cards are due and the current
// hour falls inside the notification window
func (r *Reminder) checkAndNotify() {
	currentHour := time.Now().Hour()

	startHour := DefaultStartHour
	endHour := DefaultEndHour
	if s := os.Getenv("NOTIFICATION_START_HOUR"); s != "" {
		if h, err := strconv.Atoi(s); err == nil && h >= 0 && h <= 23 {
			startHour = h
		}
	}
	if s := os.Getenv("NOTIFICATION_END_HOUR"); s != "" {
		if h, err := strconv.Atoi(s); err == nil && h >= 0 && h <= 23 {
			endHour = h
		}
	}

	if currentHour < startHour || currentHour > endHour {
		log.Printf("Current hour %d is outside notification hours (%d-%d), skipping reminder",
			currentHour, startHour, endHour)
		return
	}

	stats, err := r.sched.Stats()
	if err != nil {
		log.Printf("Error getting scheduling stats: %v", err)
		return
	}
	if stats.Due == 0 {
		return
	}

	if err := r.notifier.SendReminder(stats.Due); err != nil {
		log.Printf("Error sending reminder: %v", err)
	}
}
