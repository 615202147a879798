package scheduler

import (
	"log"
	"time"
)

// runAlertCheck runs one alert evaluation cycle and logs its outcome.
// Whatever goes wrong inside a cycle is contained here; the next tick
// always fires on schedule.
func (s *Scheduler) runAlertCheck() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in alert check cycle: %v", r)
		}
	}()

	log.Println("Checking user alerts...")
	start := time.Now()

	summary := s.checker.RunCycle(s.ctx)

	log.Printf("Alert cycle done in %s: checked=%d triggered=%d sent=%d skipped=%d errors=%d",
		time.Since(start).Round(time.Millisecond),
		summary.AlertsChecked, summary.AlertsTriggered,
		summary.NotificationsSent, summary.AlertsSkipped, len(summary.Errors))

	for _, errMsg := range summary.Errors {
		log.Printf("Alert cycle error: %s", errMsg)
	}
}

// runNewsDigest sends the daily market-news email
func (s *Scheduler) runNewsDigest() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in news digest: %v", r)
		}
	}()

	log.Println("Sending daily news digest...")
	summary := s.digest.Run(s.ctx)
	log.Printf("News digest done: recipients=%d sent=%d errors=%d",
		summary.Recipients, summary.EmailsSent, len(summary.Errors))
	for _, errMsg := range summary.Errors {
		log.Printf("News digest error: %s", errMsg)
	}
}

// cleanupDeliveryLog removes old delivery records to save storage
func (s *Scheduler) cleanupDeliveryLog() {
	log.Println("Cleaning up delivery log...")

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	removed, err := s.deliveries.PurgeOlderThan(s.ctx, thirtyDaysAgo)
	if err != nil {
		log.Printf("Error cleaning up delivery log: %v", err)
		return
	}

	log.Printf("Cleanup completed, removed %d delivery records", removed)
}
