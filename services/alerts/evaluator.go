package alerts

import (
	"github.com/shopspring/decimal"

	"signalist_backend/models"
	"signalist_backend/services/notifier"
)

// equalsTolerance is the absolute tolerance for equals conditions.
// A price exactly 0.01 away from the threshold does not trigger.
var equalsTolerance = decimal.NewFromFloat(0.01)

// Evaluate decides whether an alert fires against the current price and
// returns the directional status carried into the notification. It is
// pure: no I/O, no clock, no state.
//
// Only price alerts evaluate; percentage and volume alerts are accepted
// by the store but never fire here. Equals triggers carry the above
// status, matching the notifications users already receive.
func Evaluate(alert models.Alert, price float64) (bool, string) {
	if alert.AlertType != models.AlertTypePrice {
		return false, ""
	}

	current := decimal.NewFromFloat(price)
	target := decimal.NewFromFloat(alert.ThresholdValue)

	switch alert.Condition {
	case models.ConditionGreaterThan:
		return current.GreaterThanOrEqual(target), notifier.StatusAboveReached
	case models.ConditionLessThan:
		return current.LessThanOrEqual(target), notifier.StatusBelowHit
	case models.ConditionEquals:
		diff := current.Sub(target).Abs()
		return diff.LessThan(equalsTolerance), notifier.StatusAboveReached
	default:
		return false, ""
	}
}
