package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenerlabs/kener-telegram-relay/internal/models"
)

func TestEventDefaultsForEmptyPayload(t *testing.T) {
	alert := Event(models.InboundEvent{})

	assert.Equal(t, "", alert.ID)
	assert.Equal(t, "Alert", alert.AlertName)
	assert.Equal(t, "unknown", alert.Severity)
	assert.Equal(t, "UNKNOWN", alert.Status)
	assert.Equal(t, "Kener", alert.Source)
	assert.Equal(t, "", alert.Description)
	assert.Equal(t, "", alert.Metric)
	assert.Nil(t, alert.CurrentValue)
	assert.Nil(t, alert.Threshold)
	assert.Equal(t, "Open", alert.ActionText)
	assert.Equal(t, "", alert.ActionURL)

	// The synthesized timestamp must be a parseable RFC3339 instant.
	ts, err := time.Parse(time.RFC3339, alert.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestEventDefaultsForNilPayload(t *testing.T) {
	alert := Event(nil)

	assert.Equal(t, "Alert", alert.AlertName)
	assert.Equal(t, "UNKNOWN", alert.Status)
}

func TestEventFullPayload(t *testing.T) {
	event := models.InboundEvent{
		"id":          "demo-1",
		"alert_name":  "CPU high",
		"severity":    "critical",
		"status":      "TRIGGERED",
		"source":      "prod-cluster",
		"timestamp":   "2026-08-24T10:30:00Z",
		"description": "CPU above threshold for 5 minutes",
		"details": map[string]interface{}{
			"metric":        "cpu_usage",
			"current_value": 97.5,
			"threshold":     90.0,
		},
		"actions": []interface{}{
			map[string]interface{}{"text": "View incident", "url": "https://status.example.com/i/1"},
			map[string]interface{}{"text": "Second", "url": "https://example.com/ignored"},
		},
	}

	alert := Event(event)

	assert.Equal(t, "demo-1", alert.ID)
	assert.Equal(t, "CPU high", alert.AlertName)
	assert.Equal(t, "critical", alert.Severity)
	assert.Equal(t, "TRIGGERED", alert.Status)
	assert.Equal(t, "prod-cluster", alert.Source)
	assert.Equal(t, "2026-08-24T10:30:00Z", alert.Timestamp)
	assert.Equal(t, "CPU above threshold for 5 minutes", alert.Description)
	assert.Equal(t, "cpu_usage", alert.Metric)
	assert.Equal(t, 97.5, alert.CurrentValue)
	assert.Equal(t, 90.0, alert.Threshold)

	// First action wins.
	assert.Equal(t, "View incident", alert.ActionText)
	assert.Equal(t, "https://status.example.com/i/1", alert.ActionURL)
}

func TestEventWrongTypedFieldsFallBack(t *testing.T) {
	event := models.InboundEvent{
		"alert_name": 42,
		"severity":   []interface{}{"critical"},
		"status":     map[string]interface{}{"value": "TRIGGERED"},
		"details":    "not an object",
		"actions":    "not an array",
	}

	alert := Event(event)

	assert.Equal(t, "Alert", alert.AlertName)
	assert.Equal(t, "unknown", alert.Severity)
	assert.Equal(t, "UNKNOWN", alert.Status)
	assert.Equal(t, "", alert.Metric)
	assert.Nil(t, alert.CurrentValue)
	assert.Equal(t, "Open", alert.ActionText)
}

func TestEventActionWithMissingFields(t *testing.T) {
	event := models.InboundEvent{
		"actions": []interface{}{
			map[string]interface{}{"url": "https://example.com/only-url"},
		},
	}

	alert := Event(event)

	assert.Equal(t, "Open", alert.ActionText)
	assert.Equal(t, "https://example.com/only-url", alert.ActionURL)
}

func TestEventDetailValuesPassThroughUntouched(t *testing.T) {
	event := models.InboundEvent{
		"details": map[string]interface{}{
			"current_value": "97%",
			"threshold":     map[string]interface{}{"warn": 80, "crit": 90},
		},
	}

	alert := Event(event)

	assert.Equal(t, "97%", alert.CurrentValue)
	assert.Equal(t, map[string]interface{}{"warn": 80, "crit": 90}, alert.Threshold)
}
