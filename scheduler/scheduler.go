package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"signalist_backend/services"
	"signalist_backend/services/alerts"
	"signalist_backend/services/notifier"
)

// drainPeriod is how long an in-flight cycle may keep running after
// Stop before its context is cancelled
const drainPeriod = 30 * time.Second

// newsDigestTime is when the daily news digest goes out, in UTC
const newsDigestTime = "03:30"

// Scheduler manages the background jobs: the recurring alert evaluation
// cycle, the daily news digest and delivery-log housekeeping
type Scheduler struct {
	cron       *gocron.Scheduler
	checker    *alerts.Checker
	deliveries *notifier.DeliveryLog
	digest     *services.NewsDigest
	interval   time.Duration
	drain      time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a new scheduler instance
func NewScheduler(checker *alerts.Checker, deliveries *notifier.DeliveryLog, digest *services.NewsDigest, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:       gocron.NewScheduler(time.UTC),
		checker:    checker,
		deliveries: deliveries,
		digest:     digest,
		interval:   interval,
		drain:      drainPeriod,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start starts all scheduled jobs
func (s *Scheduler) Start() {
	log.Println("Starting scheduler...")

	// Evaluate alerts on a fixed interval. SingletonMode skips a tick
	// if the previous cycle is still running, so cycles never overlap
	// and never queue up.
	s.cron.Every(s.interval).SingletonMode().Do(func() {
		s.runAlertCheck()
	})

	// Daily market-news digest email (time is UTC)
	if s.digest != nil {
		s.cron.Every(1).Day().At(newsDigestTime).SingletonMode().Do(func() {
			s.runNewsDigest()
		})
	}

	// Trim the delivery log weekly
	s.cron.Every(1).Week().Sunday().At("01:00").Do(func() {
		s.cleanupDeliveryLog()
	})

	s.cron.StartAsync()
	log.Printf("Scheduler started, checking alerts every %s", s.interval)
}

// Stop prevents new cycles from starting. An in-flight cycle keeps its
// context and is given a drain period to finish before it is cancelled.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	time.AfterFunc(s.drain, s.cancel)
	log.Println("Scheduler stopped")
}
