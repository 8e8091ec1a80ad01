// File: internal/format/format.go
package format

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kenerlabs/kener-telegram-relay/internal/models"
)

// Status and severity glyphs used in the rendered message.
const (
	GlyphTriggered = "🚨"
	GlyphResolved  = "✅"
	GlyphInfo      = "ℹ️"
	GlyphCritical  = "🔴"
	GlyphWarning   = "🟠"
	GlyphOK        = "🟢"
)

// timeLayout is the fixed human-readable UTC representation used for the
// Time line.
const timeLayout = "Jan 2, 2006 15:04"

// htmlEscaper escapes the three markup metacharacters Telegram's HTML
// parse mode cares about. Every piece of free text interpolated into the
// message goes through it; this is a hard invariant of the formatter.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// Escape makes free text safe for interpolation into HTML markup.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

// Alert renders a normalized alert as Telegram HTML. The output is
// deterministic for a given input; only free text is escaped, the fixed
// markup tags are inserted by the formatter itself.
func Alert(alert models.NormalizedAlert) models.RenderedMessage {
	lines := []string{
		fmt.Sprintf("<b>%s %s</b>", statusGlyph(alert.Status), Escape(alert.AlertName)),
	}

	if alert.Description != "" {
		lines = append(lines, "", Escape(alert.Description))
	}

	lines = append(lines, "",
		fmt.Sprintf("%s <b>Severity:</b> <code>%s</code>", severityGlyph(alert.Severity), Escape(alert.Severity)),
		fmt.Sprintf("<b>Status:</b> %s", Escape(alert.Status)),
	)

	if alert.Source != "" {
		lines = append(lines, fmt.Sprintf("<b>Source:</b> %s", Escape(alert.Source)))
	}
	if alert.Metric != "" {
		lines = append(lines, fmt.Sprintf("<b>Monitor:</b> %s", Escape(alert.Metric)))
	}
	if alert.CurrentValue != nil {
		lines = append(lines, fmt.Sprintf("<b>Current:</b> %s", Escape(stringifyValue(alert.CurrentValue))))
	}
	if alert.Threshold != nil {
		lines = append(lines, fmt.Sprintf("<b>Threshold:</b> %s", Escape(stringifyValue(alert.Threshold))))
	}
	if alert.Timestamp != "" {
		lines = append(lines, fmt.Sprintf("<b>Time:</b> %s", Escape(formatTimestamp(alert.Timestamp))))
	}

	if alert.ActionURL != "" {
		lines = append(lines, "",
			fmt.Sprintf(`<a href="%s">%s</a>`, Escape(alert.ActionURL), Escape(alert.ActionText)))
	}

	return models.RenderedMessage(strings.Join(lines, "\n"))
}

func statusGlyph(status string) string {
	switch status {
	case "TRIGGERED":
		return GlyphTriggered
	case "RESOLVED":
		return GlyphResolved
	default:
		return GlyphInfo
	}
}

func severityGlyph(severity string) string {
	switch severity {
	case "critical":
		return GlyphCritical
	case "warning":
		return GlyphWarning
	default:
		return GlyphOK
	}
}

// formatTimestamp reformats an RFC3339 timestamp to the fixed UTC layout.
// Timestamps that do not parse are emitted unchanged.
func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.UTC().Format(timeLayout) + " UTC"
}

// stringifyValue renders a detail value for display. Numbers keep their
// shortest representation, strings pass through, and anything structured
// falls back to its JSON encoding.
func stringifyValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", v)
	}
}
