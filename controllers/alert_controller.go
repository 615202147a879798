package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"signalist_backend/middleware"
	"signalist_backend/models"
	"signalist_backend/services"
	"signalist_backend/services/alerts"
)

// AlertController handles price-alert requests
type AlertController struct {
	store   *services.AlertStore
	checker *alerts.Checker
}

// NewAlertController creates a new alert controller
func NewAlertController(store *services.AlertStore, checker *alerts.Checker) *AlertController {
	return &AlertController{store: store, checker: checker}
}

// CreateAlertRequest is the payload for creating a price alert
type CreateAlertRequest struct {
	Symbol         string  `json:"symbol"`
	Company        string  `json:"company"`
	AlertName      string  `json:"alert_name"`
	AlertType      string  `json:"alert_type"`
	Condition      string  `json:"condition"`
	ThresholdValue float64 `json:"threshold_value"`
	Frequency      string  `json:"frequency"`
}

// CreateAlert creates a new price alert for the authenticated user
// POST /api/v1/alerts
func (ac *AlertController) CreateAlert(c *gin.Context) {
	var req CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	alert := models.Alert{
		UserID:         middleware.CurrentUserID(c),
		Symbol:         req.Symbol,
		Company:        req.Company,
		AlertName:      req.AlertName,
		AlertType:      models.AlertType(req.AlertType),
		Condition:      models.AlertCondition(req.Condition),
		ThresholdValue: req.ThresholdValue,
		Frequency:      models.AlertFrequency(req.Frequency),
	}

	if err := ac.store.Create(c.Request.Context(), &alert); err != nil {
		status := http.StatusInternalServerError
		message := "Failed to create alert"
		switch {
		case errors.Is(err, services.ErrDuplicateAlert):
			status = http.StatusConflict
			message = err.Error()
		case isValidationError(err):
			status = http.StatusBadRequest
			message = err.Error()
		}
		c.JSON(status, gin.H{"success": false, "error": message})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Price alert created successfully",
		"alert_id": alert.ID.Hex(),
	})
}

// GetAlerts returns the authenticated user's alerts
// GET /api/v1/alerts
func (ac *AlertController) GetAlerts(c *gin.Context) {
	userAlerts, err := ac.store.ListByUser(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch alerts"})
		return
	}
	if userAlerts == nil {
		userAlerts = []models.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": userAlerts})
}

// DeleteAlert deletes one of the authenticated user's alerts
// DELETE /api/v1/alerts/:id
func (ac *AlertController) DeleteAlert(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid alert id"})
		return
	}

	if err := ac.store.Delete(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		if errors.Is(err, services.ErrAlertNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Alert not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete alert"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Alert deleted successfully"})
}

// ToggleAlert flips an alert between active and inactive
// PATCH /api/v1/alerts/:id/toggle
func (ac *AlertController) ToggleAlert(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid alert id"})
		return
	}

	alert, err := ac.store.Toggle(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrAlertNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Alert not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to toggle alert"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Alert updated successfully",
		"is_active": alert.IsActive,
	})
}

// CheckAlerts runs one evaluation cycle on demand and returns its summary
// POST /api/v1/alerts/check
func (ac *AlertController) CheckAlerts(c *gin.Context) {
	summary := ac.checker.RunCycle(c.Request.Context())
	if summary.Errors == nil {
		summary.Errors = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
}

// isValidationError reports whether the error is one of the alert
// creation validation failures
func isValidationError(err error) bool {
	return errors.Is(err, models.ErrAlertNameRequired) ||
		errors.Is(err, models.ErrSymbolRequired) ||
		errors.Is(err, models.ErrThresholdNotPositive) ||
		errors.Is(err, models.ErrInvalidAlertType) ||
		errors.Is(err, models.ErrInvalidCondition) ||
		errors.Is(err, models.ErrInvalidFrequency)
}
