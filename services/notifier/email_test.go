package notifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"signalist_backend/config"
	"signalist_backend/models"
)

func TestSubject(t *testing.T) {
	msg := PriceAlertMessage{
		Status:  StatusAboveReached,
		Company: "Apple Inc",
		Symbol:  "AAPL",
	}
	assert.Equal(t, "⚠️ Price Above Reached: Apple Inc (AAPL)", msg.Subject())
}

func TestConditionText(t *testing.T) {
	tests := []struct {
		name      string
		condition models.AlertCondition
		target    float64
		want      string
	}{
		{"greater than", models.ConditionGreaterThan, 140, "Price > $140"},
		{"less than", models.ConditionLessThan, 199.5, "Price < $199.5"},
		{"equals", models.ConditionEquals, 100.25, "Price = $100.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := PriceAlertMessage{Condition: tt.condition, TargetPrice: tt.target}
			assert.Equal(t, tt.want, msg.ConditionText())
		})
	}
}

func TestOpportunityText(t *testing.T) {
	above := PriceAlertMessage{Status: StatusAboveReached, Company: "Apple Inc"}
	assert.Equal(t,
		"Apple Inc has reached your target price! This could be a good time to review your position and consider taking profits or adjusting your strategy.",
		above.OpportunityText())

	below := PriceAlertMessage{Status: StatusBelowHit, Company: "Tesla Inc"}
	assert.Equal(t,
		"Tesla Inc dropped below your target price! This might be a good time to buy.",
		below.OpportunityText())
}

func TestBodyContainsAlertDetails(t *testing.T) {
	msg := PriceAlertMessage{
		AlertName:    "My AAPL alert",
		Symbol:       "AAPL",
		Company:      "Apple Inc",
		CurrentPrice: 152.5,
		TargetPrice:  150,
		Condition:    models.ConditionGreaterThan,
		Status:       StatusAboveReached,
	}
	body := msg.Body()

	assert.Contains(t, body, "Apple Inc")
	assert.Contains(t, body, "AAPL")
	assert.Contains(t, body, "$152.50")
	assert.Contains(t, body, "$150.00")
	assert.Contains(t, body, "Price > $150")
	assert.Contains(t, body, "My AAPL alert")
	assert.Contains(t, body, "#10b981", "above-status emails use the green accent")
}

func TestBodyBelowStatusAccent(t *testing.T) {
	msg := PriceAlertMessage{
		Symbol:    "TSLA",
		Company:   "Tesla Inc",
		Condition: models.ConditionLessThan,
		Status:    StatusBelowHit,
	}
	assert.Contains(t, msg.Body(), "#ef4444", "below-status emails use the red accent")
}

func TestSendPriceAlertRequiresRecipient(t *testing.T) {
	notifier := NewEmailNotifier(&config.Config{SMTPHost: "localhost", SMTPPort: 2525})
	err := notifier.SendPriceAlert(context.Background(), PriceAlertMessage{Symbol: "AAPL"})
	assert.Error(t, err)
}

func TestSendPriceAlertHonorsCancelledContext(t *testing.T) {
	notifier := NewEmailNotifier(&config.Config{SMTPHost: "localhost", SMTPPort: 2525})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := notifier.SendPriceAlert(ctx, PriceAlertMessage{To: "user@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
}
