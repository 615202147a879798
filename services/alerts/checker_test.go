package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"signalist_backend/models"
	"signalist_backend/services/notifier"
)

type fakeStore struct {
	alerts       []models.Alert
	listErr      error
	setActiveErr error
	deactivated  []primitive.ObjectID
}

func (f *fakeStore) ListActive(ctx context.Context) ([]models.Alert, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.alerts, nil
}

func (f *fakeStore) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	if f.setActiveErr != nil {
		return f.setActiveErr
	}
	if !active {
		f.deactivated = append(f.deactivated, id)
	}
	return nil
}

type fakeFetcher struct {
	prices map[string]float64
	calls  [][]string
}

func (f *fakeFetcher) FetchAll(ctx context.Context, symbols []string) map[string]float64 {
	f.calls = append(f.calls, symbols)
	result := make(map[string]float64)
	for _, symbol := range symbols {
		if price, ok := f.prices[symbol]; ok {
			result[symbol] = price
		}
	}
	return result
}

type fakeDirectory struct {
	emails map[string]string
}

func (f *fakeDirectory) EmailForUser(ctx context.Context, userID string) (string, error) {
	email, ok := f.emails[userID]
	if !ok {
		return "", errors.New("user not found")
	}
	return email, nil
}

type fakeSender struct {
	sent       []notifier.PriceAlertMessage
	failSymbol string
}

func (f *fakeSender) SendPriceAlert(ctx context.Context, msg notifier.PriceAlertMessage) error {
	if msg.Symbol == f.failSymbol {
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeDeliveries struct {
	last    map[string]time.Time
	records []string
}

func (f *fakeDeliveries) Record(ctx context.Context, alertID, symbol, status string, sentAt time.Time) error {
	f.records = append(f.records, alertID)
	return nil
}

func (f *fakeDeliveries) LastSentAt(ctx context.Context, alertID string) (time.Time, bool, error) {
	sentAt, ok := f.last[alertID]
	return sentAt, ok, nil
}

func newTestAlert(symbol string, condition models.AlertCondition, threshold float64, frequency models.AlertFrequency) models.Alert {
	return models.Alert{
		ID:             primitive.NewObjectID(),
		UserID:         "user-1",
		Symbol:         symbol,
		Company:        symbol + " Inc",
		AlertName:      symbol + " alert",
		AlertType:      models.AlertTypePrice,
		Condition:      condition,
		ThresholdValue: threshold,
		Frequency:      frequency,
		IsActive:       true,
	}
}

func newTestChecker(store *fakeStore, fetcher *fakeFetcher, directory *fakeDirectory, sender AlertNotifier, deliveries *fakeDeliveries) *Checker {
	if directory == nil {
		directory = &fakeDirectory{emails: map[string]string{"user-1": "user-1@example.com"}}
	}
	if deliveries == nil {
		deliveries = &fakeDeliveries{last: map[string]time.Time{}}
	}
	return NewChecker(store, fetcher, directory, sender, deliveries)
}

func TestRunCycleNoActiveAlerts(t *testing.T) {
	store := &fakeStore{}
	fetcher := &fakeFetcher{prices: map[string]float64{}}
	sender := &fakeSender{}

	summary := newTestChecker(store, fetcher, nil, sender, nil).RunCycle(context.Background())

	assert.Equal(t, 0, summary.AlertsChecked)
	assert.Equal(t, 0, summary.AlertsTriggered)
	assert.Empty(t, summary.Errors)
	assert.Empty(t, fetcher.calls, "no quote fetch should happen without alerts")
}

func TestRunCycleListFailureAbortsOnlyThisCycle(t *testing.T) {
	store := &fakeStore{listErr: errors.New("store unreachable")}
	fetcher := &fakeFetcher{}
	sender := &fakeSender{}

	summary := newTestChecker(store, fetcher, nil, sender, nil).RunCycle(context.Background())

	assert.Equal(t, 0, summary.AlertsChecked)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "store unreachable")
}

func TestRunCycleOncePolicyBoundaryTrigger(t *testing.T) {
	// AAPL greater-than 150.00 triggers at exactly 150.00, dispatches
	// once and the alert is deactivated.
	alert := newTestAlert("AAPL", models.ConditionGreaterThan, 150.00, models.FrequencyOnce)
	store := &fakeStore{alerts: []models.Alert{alert}}
	fetcher := &fakeFetcher{prices: map[string]float64{"AAPL": 150.00}}
	sender := &fakeSender{}

	summary := newTestChecker(store, fetcher, nil, sender, nil).RunCycle(context.Background())

	assert.Equal(t, 1, summary.AlertsChecked)
	assert.Equal(t, 1, summary.AlertsTriggered)
	assert.Equal(t, 1, summary.NotificationsSent)
	assert.Empty(t, summary.Errors)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "user-1@example.com", sender.sent[0].To)
	assert.Equal(t, "AAPL", sender.sent[0].Symbol)
	assert.Equal(t, notifier.StatusAboveReached, sender.sent[0].Status)

	require.Len(t, store.deactivated, 1)
	assert.Equal(t, alert.ID, store.deactivated[0])
}

func TestRunCycleEveryTimePolicyStaysActive(t *testing.T) {
	alert := newTestAlert("TSLA", models.ConditionLessThan, 200.00, models.FrequencyEveryTime)
	store := &fakeStore{alerts: []models.Alert{alert}}
	fetcher := &fakeFetcher{prices: map[string]float64{"TSLA": 199.99}}
	sender := &fakeSender{}

	summary := newTestChecker(store, fetcher, nil, sender, nil).RunCycle(context.Background())

	assert.Equal(t, 1, summary.AlertsTriggered)
	assert.Equal(t, 1, summary.NotificationsSent)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, notifier.StatusBelowHit, sender.sent[0].Status)
	assert.Empty(t, store.deactivated, "every-time alerts must stay active")
}

func TestRunCycleDeduplicatesSymbolFetches(t *testing.T) {
	// Two MSFT alerts with different thresholds share one quote fetch.
	low := newTestAlert("MSFT", models.ConditionGreaterThan, 300.00, models.FrequencyOnce)
	high := newTestAlert("MSFT", models.ConditionGreaterThan, 500.00, models.FrequencyOnce)
	store := &fakeStore{alerts: []models.Alert{low, high}}
	fetcher := &fakeFetcher{prices: map[string]float64{"MSFT": 310.00}}
	sender := &fakeSender{}

	summary := newTestChecker(store, fetcher, nil, sender, nil).RunCycle(context.Background())

	require.Len(t, fetcher.calls, 1)
	assert.Equal(t, []string{"MSFT"}, fetcher.calls[0])

	assert.Equal(t, 2, summary.AlertsChecked)
	assert.Equal(t, 1, summary.AlertsTriggered, "only the lower threshold fires at 310")
	require.Len(t, sender.sent, 1)
	assert.Equal(t, 300.00, sender.sent[0].TargetPrice)
}

func TestRunCycleQuoteFailureSkipsOnlyThatSymbol(t *testing.T) {
	googAlert := newTestAlert("GOOG", models.ConditionGreaterThan, 100.00, models.FrequencyOnce)
	nvdaAlert := newTestAlert("NVDA", models.ConditionGreaterThan, 100.00, models.FrequencyOnce)
	store := &fakeStore{alerts: []models.Alert{googAlert, nvdaAlert}}
	// GOOG is absent from the provider result, simulating a fetch failure.
	fetcher := &fakeFetcher{prices: map[string]float64{"NVDA": 120.00}}
	sender := &fakeSender{}

	summary := newTestChecker(store, fetcher, nil, sender, nil).RunCycle(context.Background())

	assert.Equal(t, 2, summary.AlertsChecked)
	assert.Equal(t, 1, summary.AlertsSkipped)
	assert.Equal(t, 1, summary.AlertsTriggered)
	assert.Empty(t, summary.Errors, "a missing quote is not a cycle error")

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "NVDA", sender.sent[0].Symbol)

	// The skipped alert had no dispatch and no lifecycle write.
	require.Len(t, store.deactivated, 1)
	assert.Equal(t, nvdaAlert.ID, store.deactivated[0])
}

func TestRunCycleDispatchFailureDoesNotBlockOthers(t *testing.T) {
	failing := newTestAlert("AAPL", models.ConditionGreaterThan, 100.00, models.FrequencyOnce)
	healthy := newTestAlert("TSLA", models.ConditionGreaterThan, 100.00, models.FrequencyOnce)
	store := &fakeStore{alerts: []models.Alert{failing, healthy}}
	fetcher := &fakeFetcher{prices: map[string]float64{"AAPL": 150.00, "TSLA": 150.00}}
	sender := &fakeSender{failSymbol: "AAPL"}

	summary := newTestChecker(store, fetcher, nil, sender, nil).RunCycle(context.Background())

	assert.Equal(t, 2, summary.AlertsTriggered)
	assert.Equal(t, 1, summary.NotificationsSent)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "smtp unavailable")

	// The failed alert keeps its once policy armed for the next cycle.
	require.Len(t, store.deactivated, 1)
	assert.Equal(t, healthy.ID, store.deactivated[0])
}

func TestRunCycleUnresolvableAddressSkipsDispatch(t *testing.T) {
	alert := newTestAlert("AAPL", models.ConditionGreaterThan, 100.00, models.FrequencyOnce)
	store := &fakeStore{alerts: []models.Alert{alert}}
	fetcher := &fakeFetcher{prices: map[string]float64{"AAPL": 150.00}}
	directory := &fakeDirectory{emails: map[string]string{}}
	sender := &fakeSender{}

	summary := newTestChecker(store, fetcher, directory, sender, nil).RunCycle(context.Background())

	assert.Equal(t, 1, summary.AlertsTriggered)
	assert.Equal(t, 0, summary.NotificationsSent)
	require.Len(t, summary.Errors, 1)
	assert.Empty(t, sender.sent)
	assert.Empty(t, store.deactivated, "no lifecycle write without a dispatch")
}

func TestRunCycleDailyPolicySuppressedWithinWindow(t *testing.T) {
	alert := newTestAlert("AAPL", models.ConditionGreaterThan, 100.00, models.FrequencyDaily)
	store := &fakeStore{alerts: []models.Alert{alert}}
	fetcher := &fakeFetcher{prices: map[string]float64{"AAPL": 150.00}}
	sender := &fakeSender{}
	deliveries := &fakeDeliveries{last: map[string]time.Time{
		alert.ID.Hex(): time.Now().Add(-1 * time.Hour),
	}}

	summary := newTestChecker(store, fetcher, nil, sender, deliveries).RunCycle(context.Background())

	assert.Equal(t, 1, summary.AlertsTriggered)
	assert.Equal(t, 0, summary.NotificationsSent)
	assert.Empty(t, summary.Errors)
	assert.Empty(t, sender.sent, "daily alerts notify at most once per window")
	assert.Empty(t, store.deactivated)
}

func TestRunCycleDailyPolicyNotifiesAfterWindow(t *testing.T) {
	alert := newTestAlert("AAPL", models.ConditionGreaterThan, 100.00, models.FrequencyDaily)
	store := &fakeStore{alerts: []models.Alert{alert}}
	fetcher := &fakeFetcher{prices: map[string]float64{"AAPL": 150.00}}
	sender := &fakeSender{}
	deliveries := &fakeDeliveries{last: map[string]time.Time{
		alert.ID.Hex(): time.Now().Add(-25 * time.Hour),
	}}

	summary := newTestChecker(store, fetcher, nil, sender, deliveries).RunCycle(context.Background())

	assert.Equal(t, 1, summary.NotificationsSent)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, deliveries.records, alert.ID.Hex())
	assert.Empty(t, store.deactivated, "daily alerts stay active")
}

func TestRunCycleLifecycleWriteFailureReported(t *testing.T) {
	alert := newTestAlert("AAPL", models.ConditionGreaterThan, 100.00, models.FrequencyOnce)
	store := &fakeStore{
		alerts:       []models.Alert{alert},
		setActiveErr: errors.New("write timeout"),
	}
	fetcher := &fakeFetcher{prices: map[string]float64{"AAPL": 150.00}}
	sender := &fakeSender{}

	summary := newTestChecker(store, fetcher, nil, sender, nil).RunCycle(context.Background())

	// The notification went out; only the deactivation failed.
	assert.Equal(t, 1, summary.NotificationsSent)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "write timeout")
}

// blockingSender holds the first send open until released so a second
// cycle can be started while the first is still dispatching.
type blockingSender struct {
	mu       sync.Mutex
	sent     int
	entered  chan struct{}
	release  chan struct{}
	blockOne sync.Once
}

func (b *blockingSender) SendPriceAlert(ctx context.Context, msg notifier.PriceAlertMessage) error {
	b.blockOne.Do(func() {
		close(b.entered)
		<-b.release
	})
	b.mu.Lock()
	b.sent++
	b.mu.Unlock()
	return nil
}

func TestRunCycleRejectsOverlappingCycles(t *testing.T) {
	alert := newTestAlert("AAPL", models.ConditionGreaterThan, 100.00, models.FrequencyOnce)
	store := &fakeStore{alerts: []models.Alert{alert}}
	fetcher := &fakeFetcher{prices: map[string]float64{"AAPL": 150.00}}
	sender := &blockingSender{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	checker := newTestChecker(store, fetcher, nil, sender, nil)

	first := make(chan CycleSummary, 1)
	go func() {
		first <- checker.RunCycle(context.Background())
	}()

	// Wait until the first cycle is mid-dispatch, then request another.
	<-sender.entered
	overlapping := checker.RunCycle(context.Background())
	close(sender.release)
	firstSummary := <-first

	require.Len(t, overlapping.Errors, 1)
	assert.Contains(t, overlapping.Errors[0], cycleInProgress)
	assert.Equal(t, 0, overlapping.AlertsChecked)

	assert.Equal(t, 1, firstSummary.NotificationsSent)
	assert.Equal(t, 1, sender.sent, "a once-frequency alert must be dispatched at most once across overlapping cycles")
	require.Len(t, store.deactivated, 1)

	// The guard releases once the cycle finishes.
	again := checker.RunCycle(context.Background())
	assert.Empty(t, again.Errors)
}

func TestDistinctSymbols(t *testing.T) {
	alerts := []models.Alert{
		newTestAlert("MSFT", models.ConditionGreaterThan, 1, models.FrequencyOnce),
		newTestAlert("AAPL", models.ConditionGreaterThan, 1, models.FrequencyOnce),
		newTestAlert("MSFT", models.ConditionLessThan, 2, models.FrequencyOnce),
		{Symbol: ""},
	}
	assert.Equal(t, []string{"MSFT", "AAPL"}, distinctSymbols(alerts))
}
