// File: internal/normalize/normalize.go
package normalize

import (
	"time"

	"github.com/kenerlabs/kener-telegram-relay/internal/models"
)

// Defaults applied when the corresponding inbound field is absent, empty,
// or wrong-typed.
const (
	DefaultAlertName  = "Alert"
	DefaultSeverity   = "unknown"
	DefaultStatus     = "UNKNOWN"
	DefaultSource     = "Kener"
	DefaultActionText = "Open"
)

// Event maps an inbound webhook payload to a fully-defaulted alert. It is
// a pure function and never fails: every missing or wrong-typed field
// falls back to its documented default instead of producing an error.
func Event(event models.InboundEvent) models.NormalizedAlert {
	alert := models.NormalizedAlert{
		ID:          event.String("id"),
		AlertName:   stringOr(event.String("alert_name"), DefaultAlertName),
		Severity:    stringOr(event.String("severity"), DefaultSeverity),
		Status:      stringOr(event.String("status"), DefaultStatus),
		Source:      stringOr(event.String("source"), DefaultSource),
		Timestamp:   stringOr(event.String("timestamp"), time.Now().UTC().Format(time.RFC3339)),
		Description: event.String("description"),
		ActionText:  DefaultActionText,
	}

	if details := event.Object("details"); details != nil {
		if metric, ok := details["metric"].(string); ok {
			alert.Metric = metric
		}
		alert.CurrentValue = details["current_value"]
		alert.Threshold = details["threshold"]
	}

	// First action wins; anything beyond it is ignored.
	if actions := event.Array("actions"); len(actions) > 0 {
		if action, ok := actions[0].(map[string]interface{}); ok {
			if text, ok := action["text"].(string); ok && text != "" {
				alert.ActionText = text
			}
			if url, ok := action["url"].(string); ok {
				alert.ActionURL = url
			}
		}
	}

	return alert
}

func stringOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
