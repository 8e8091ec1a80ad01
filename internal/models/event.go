// File: internal/models/event.go
package models

// InboundEvent is the raw webhook payload as received from Kener. The
// payload is duck-typed: any field may be absent or carry an unexpected
// type, so it is kept as a plain JSON object and interpreted field by
// field during normalization. An InboundEvent is never rejected for its
// shape.
//
// Known fields: id, alert_name, severity, status, source, timestamp,
// description, details{metric, current_value, threshold},
// actions[{text, url}].
type InboundEvent map[string]interface{}

// String returns the value of a top-level string field, or "" when the
// field is absent, empty, or not a string.
func (e InboundEvent) String(key string) string {
	s, _ := e[key].(string)
	return s
}

// Object returns the value of a top-level object field, or nil when the
// field is absent or not an object.
func (e InboundEvent) Object(key string) map[string]interface{} {
	m, _ := e[key].(map[string]interface{})
	return m
}

// Array returns the value of a top-level array field, or nil when the
// field is absent or not an array.
func (e InboundEvent) Array(key string) []interface{} {
	a, _ := e[key].([]interface{})
	return a
}
