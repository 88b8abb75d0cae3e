package hermes

import "time"

type SessionLoadedEvent struct {
	SessionID      string    `json:"session_id"`
	Source         string    `json:"source"`
	Format         string    `json:"format"`
	Items          int       `json:"items"`
	Categories     int       `json:"categories"`
	OverallPercent *float64  `json:"overall_percent"`
	Signal         string    `json:"signal"`
	Timestamp      time.Time `json:"timestamp"`
}

type SessionRecomputedEvent struct {
	SessionID      string    `json:"session_id"`
	Trigger        string    `json:"trigger"`
	ItemID         *int      `json:"item_id,omitempty"`
	OverallPercent *float64  `json:"overall_percent"`
	Signal         string    `json:"signal"`
	Timestamp      time.Time `json:"timestamp"`
}

type SessionExportedEvent struct {
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	Filename  string    `json:"filename"`
	Rows      int       `json:"rows"`
	Timestamp time.Time `json:"timestamp"`
}

type SessionDeletedEvent struct {
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}
