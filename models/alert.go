package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AlertType represents what quantity an alert watches
type AlertType string

const (
	AlertTypePrice      AlertType = "price"
	AlertTypePercentage AlertType = "percentage"
	AlertTypeVolume     AlertType = "volume"
)

// AlertCondition represents the comparison applied to the watched quantity
type AlertCondition string

const (
	ConditionGreaterThan AlertCondition = "greater-than"
	ConditionLessThan    AlertCondition = "less-than"
	ConditionEquals      AlertCondition = "equals"
)

// AlertFrequency governs whether an alert stays armed after it fires
type AlertFrequency string

const (
	FrequencyOnce      AlertFrequency = "once"
	FrequencyDaily     AlertFrequency = "daily"
	FrequencyEveryTime AlertFrequency = "every-time"
)

// Validation errors surfaced to the API caller on alert creation
var (
	ErrAlertNameRequired    = errors.New("Alert name is required")
	ErrSymbolRequired       = errors.New("Symbol is required")
	ErrThresholdNotPositive = errors.New("Threshold value must be greater than 0")
	ErrInvalidAlertType     = errors.New("Invalid alert type")
	ErrInvalidCondition     = errors.New("Invalid alert condition")
	ErrInvalidFrequency     = errors.New("Invalid alert frequency")
)

// Alert represents a user-defined price trigger stored in MongoDB
type Alert struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         string             `bson:"userId" json:"user_id"`
	Symbol         string             `bson:"symbol" json:"symbol"`
	Company        string             `bson:"company" json:"company"`
	AlertName      string             `bson:"alertName" json:"alert_name"`
	AlertType      AlertType          `bson:"alertType" json:"alert_type"`
	Condition      AlertCondition     `bson:"condition" json:"condition"`
	ThresholdValue float64            `bson:"thresholdValue" json:"threshold_value"`
	Frequency      AlertFrequency     `bson:"frequency" json:"frequency"`
	IsActive       bool               `bson:"isActive" json:"is_active"`
	CreatedAt      time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updated_at"`
}

// ValidAlertTypes returns the accepted alert types
func ValidAlertTypes() []AlertType {
	return []AlertType{AlertTypePrice, AlertTypePercentage, AlertTypeVolume}
}

// ValidConditions returns the accepted comparison conditions
func ValidConditions() []AlertCondition {
	return []AlertCondition{ConditionGreaterThan, ConditionLessThan, ConditionEquals}
}

// ValidFrequencies returns the accepted repeat policies
func ValidFrequencies() []AlertFrequency {
	return []AlertFrequency{FrequencyOnce, FrequencyDaily, FrequencyEveryTime}
}

// IsValidAlertType checks if the alert type is valid
func IsValidAlertType(t AlertType) bool {
	for _, valid := range ValidAlertTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// IsValidCondition checks if the condition is valid
func IsValidCondition(c AlertCondition) bool {
	for _, valid := range ValidConditions() {
		if c == valid {
			return true
		}
	}
	return false
}

// IsValidFrequency checks if the frequency is valid
func IsValidFrequency(f AlertFrequency) bool {
	for _, valid := range ValidFrequencies() {
		if f == valid {
			return true
		}
	}
	return false
}

// Normalize trims user input and fills the documented defaults.
// Symbols are always stored uppercase.
func (a *Alert) Normalize() {
	a.Symbol = strings.ToUpper(strings.TrimSpace(a.Symbol))
	a.AlertName = strings.TrimSpace(a.AlertName)
	a.Company = strings.TrimSpace(a.Company)
	if a.Company == "" {
		a.Company = a.Symbol
	}
	if a.AlertType == "" {
		a.AlertType = AlertTypePrice
	}
	if a.Condition == "" {
		a.Condition = ConditionGreaterThan
	}
	if a.Frequency == "" {
		a.Frequency = FrequencyOnce
	}
}

// Validate checks the alert definition against the creation rules.
// Call Normalize first.
func (a *Alert) Validate() error {
	if a.AlertName == "" {
		return ErrAlertNameRequired
	}
	if a.Symbol == "" {
		return ErrSymbolRequired
	}
	if a.ThresholdValue <= 0 {
		return ErrThresholdNotPositive
	}
	if !IsValidAlertType(a.AlertType) {
		return ErrInvalidAlertType
	}
	if !IsValidCondition(a.Condition) {
		return ErrInvalidCondition
	}
	if !IsValidFrequency(a.Frequency) {
		return ErrInvalidFrequency
	}
	return nil
}
