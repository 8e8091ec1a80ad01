// File: internal/models/message.go
package models

// RenderedMessage is the HTML-safe message text produced by the formatter,
// an ordered sequence of lines joined with "\n". It is consumed once by
// the dispatcher.
type RenderedMessage string

func (m RenderedMessage) String() string {
	return string(m)
}
