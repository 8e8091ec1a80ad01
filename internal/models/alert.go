// File: internal/models/alert.go
package models

// NormalizedAlert is the fully-defaulted internal representation of an
// inbound event. Every string field always holds a value; CurrentValue and
// Threshold are the raw detail values (or nil) and are stringified only at
// render time. A NormalizedAlert is built once per request and never
// mutated afterwards.
type NormalizedAlert struct {
	ID           string
	AlertName    string
	Severity     string
	Status       string
	Source       string
	Timestamp    string
	Description  string
	Metric       string
	CurrentValue interface{}
	Threshold    interface{}
	ActionText   string
	ActionURL    string
}
