package alerts

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"signalist_backend/models"
	"signalist_backend/services/notifier"
)

// AlertStore is the persistence boundary the checker reads alerts from.
// SetActive is the only write it is allowed to perform.
type AlertStore interface {
	ListActive(ctx context.Context) ([]models.Alert, error)
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
}

// QuoteFetcher returns current prices for a batch of symbols. Symbols
// that failed to resolve are absent from the map.
type QuoteFetcher interface {
	FetchAll(ctx context.Context, symbols []string) map[string]float64
}

// AddressResolver maps a user identity to a delivery address
type AddressResolver interface {
	EmailForUser(ctx context.Context, userID string) (string, error)
}

// AlertNotifier delivers a triggered-alert notification
type AlertNotifier interface {
	SendPriceAlert(ctx context.Context, msg notifier.PriceAlertMessage) error
}

// DeliveryRecorder tracks successful sends; the checker uses it to hold
// daily-frequency alerts to one notification per rolling window
type DeliveryRecorder interface {
	Record(ctx context.Context, alertID, symbol, status string, sentAt time.Time) error
	LastSentAt(ctx context.Context, alertID string) (time.Time, bool, error)
}

// DailyRepeatWindow is how long a daily-frequency alert stays quiet
// after a notification
const DailyRepeatWindow = 24 * time.Hour

// TriggerEvent is a fired alert paired with the price that fired it.
// It exists only for the duration of dispatch.
type TriggerEvent struct {
	Alert  models.Alert
	Price  float64
	Status string
}

// CycleSummary reports the outcome of one evaluation cycle
type CycleSummary struct {
	AlertsChecked     int      `json:"alerts_checked"`
	AlertsTriggered   int      `json:"alerts_triggered"`
	AlertsSkipped     int      `json:"alerts_skipped"`
	NotificationsSent int      `json:"notifications_sent"`
	Errors            []string `json:"errors"`
}

// Checker runs one end-to-end alert evaluation cycle: load active
// alerts, batch-fetch quotes, evaluate, dispatch, advance lifecycle.
// Failures are isolated per alert; a cycle never aborts because one
// alert misbehaved.
type Checker struct {
	store       AlertStore
	quotes      QuoteFetcher
	directory   AddressResolver
	sender      AlertNotifier
	deliveries  DeliveryRecorder
	dailyWindow time.Duration

	// cycleMu serializes cycles across every entry point, scheduled or
	// manual, so a once-frequency alert can never be dispatched twice
	// by overlapping cycles.
	cycleMu sync.Mutex
}

// NewChecker wires the checker's collaborators
func NewChecker(store AlertStore, quotes QuoteFetcher, directory AddressResolver, sender AlertNotifier, deliveries DeliveryRecorder) *Checker {
	return &Checker{
		store:       store,
		quotes:      quotes,
		directory:   directory,
		sender:      sender,
		deliveries:  deliveries,
		dailyWindow: DailyRepeatWindow,
	}
}

// cycleInProgress is reported in the summary when a cycle is requested
// while another one is still running
const cycleInProgress = "evaluation cycle already in progress"

// RunCycle executes one complete evaluation cycle and returns its summary.
// Only one cycle runs at a time; a call that arrives while another cycle
// is in flight returns immediately without evaluating anything.
func (c *Checker) RunCycle(ctx context.Context) CycleSummary {
	var summary CycleSummary

	if !c.cycleMu.TryLock() {
		summary.Errors = append(summary.Errors, cycleInProgress)
		log.Println("Alert check requested while a cycle is still running, skipping")
		return summary
	}
	defer c.cycleMu.Unlock()

	activeAlerts, err := c.store.ListActive(ctx)
	if err != nil {
		// A failed read aborts only this cycle; the next one retries.
		summary.Errors = append(summary.Errors, fmt.Sprintf("load active alerts: %v", err))
		log.Printf("Error loading active alerts: %v", err)
		return summary
	}
	if len(activeAlerts) == 0 {
		return summary
	}

	// All quote fetching completes before any evaluation begins, so
	// evaluation never observes a partially fetched quote set.
	quotes := c.quotes.FetchAll(ctx, distinctSymbols(activeAlerts))

	var triggered []TriggerEvent
	for _, alert := range activeAlerts {
		summary.AlertsChecked++

		price, ok := quotes[alert.Symbol]
		if !ok {
			// Provider failure for this symbol: the alert stays
			// active and is retried next cycle.
			summary.AlertsSkipped++
			continue
		}

		if fired, status := Evaluate(alert, price); fired {
			triggered = append(triggered, TriggerEvent{Alert: alert, Price: price, Status: status})
		}
	}
	summary.AlertsTriggered = len(triggered)

	for _, event := range triggered {
		sent, err := c.dispatch(ctx, event)
		if sent {
			summary.NotificationsSent++
		}
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("alert %s (%s): %v", event.Alert.ID.Hex(), event.Alert.Symbol, err))
			log.Printf("Error dispatching alert %s (%s): %v", event.Alert.ID.Hex(), event.Alert.Symbol, err)
		}
	}

	return summary
}

// dispatch notifies the alert's owner and advances the alert lifecycle.
// It reports whether a notification went out.
func (c *Checker) dispatch(ctx context.Context, event TriggerEvent) (bool, error) {
	alert := event.Alert

	address, err := c.directory.EmailForUser(ctx, alert.UserID)
	if err != nil {
		return false, fmt.Errorf("resolve address for user %s: %w", alert.UserID, err)
	}

	if alert.Frequency == models.FrequencyDaily {
		lastSent, found, err := c.deliveries.LastSentAt(ctx, alert.ID.Hex())
		if err != nil {
			// Fail open: a broken delivery log must not silence alerts.
			log.Printf("Error reading delivery log for alert %s: %v", alert.ID.Hex(), err)
		} else if found && time.Since(lastSent) < c.dailyWindow {
			log.Printf("Alert %s (%s) already notified within %s, skipping", alert.ID.Hex(), alert.Symbol, c.dailyWindow)
			return false, nil
		}
	}

	msg := notifier.PriceAlertMessage{
		To:           address,
		AlertName:    alert.AlertName,
		Symbol:       alert.Symbol,
		Company:      alert.Company,
		CurrentPrice: event.Price,
		TargetPrice:  alert.ThresholdValue,
		Condition:    alert.Condition,
		Status:       event.Status,
	}
	if err := c.sender.SendPriceAlert(ctx, msg); err != nil {
		return false, fmt.Errorf("send notification: %w", err)
	}

	if err := c.deliveries.Record(ctx, alert.ID.Hex(), alert.Symbol, event.Status, time.Now()); err != nil {
		log.Printf("Error recording delivery for alert %s: %v", alert.ID.Hex(), err)
	}

	// The repeat policy runs only after a successful send; a failed
	// lifecycle write leaves the alert active and it may notify again.
	if alert.Frequency == models.FrequencyOnce {
		if err := c.store.SetActive(ctx, alert.ID, false); err != nil {
			return true, fmt.Errorf("deactivate after dispatch: %w", err)
		}
	}

	return true, nil
}

// distinctSymbols returns the unique symbols referenced by the alerts,
// bounding provider calls to one per symbol per cycle
func distinctSymbols(alerts []models.Alert) []string {
	seen := make(map[string]bool, len(alerts))
	symbols := make([]string, 0, len(alerts))
	for _, alert := range alerts {
		if alert.Symbol == "" || seen[alert.Symbol] {
			continue
		}
		seen[alert.Symbol] = true
		symbols = append(symbols, alert.Symbol)
	}
	return symbols
}
