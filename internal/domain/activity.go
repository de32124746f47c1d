package domain

import "time"

// Activity levels for the operator-facing log stream.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// ActivityEntry is one operator-reviewable log line.
type ActivityEntry struct {
	ID        int64     `db:"id"`
	At        time.Time `db:"at"`
	Level     string    `db:"level"`
	Component string    `db:"component"`
	Message   string    `db:"message"`
}
