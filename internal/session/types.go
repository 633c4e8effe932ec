package session

import "time"

// Record is the persisted metadata for one finished recording session.
type Record struct {
	ID         string     `json:"id"`
	Source     string     `json:"source"`  // "desktop", "monitor:<name>", "window"
	Quality    string     `json:"quality"` // "low", "medium", "high"
	Segments   int        `json:"segments"`
	OutputFile string     `json:"output_file,omitempty"`
	Status     string     `json:"status"` // "completed" | "failed"
	StartedAt  time.Time  `json:"started_at"`
	StoppedAt  *time.Time `json:"stopped_at,omitempty"`
}
