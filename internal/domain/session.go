package domain

import "time"

// Session is one recording window, bracketing a single example.
type Session struct {
	Label   string
	Started time.Time
	Stopped time.Time
}

// Duration returns how long the session was recording.
func (s Session) Duration() time.Duration {
	if s.Stopped.IsZero() {
		return 0
	}
	return s.Stopped.Sub(s.Started)
}

// ExampleLabel builds the session label "<spec>::<example>". An empty
// spec name is kept as an empty segment.
func ExampleLabel(spec, example string) string {
	return spec + "::" + example
}
