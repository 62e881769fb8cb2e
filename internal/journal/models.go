package journal

import "time"

// Status is the terminal outcome of a character export.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusEmpty     Status = "empty"
)

// Run is one journal entry.
type Run struct {
	ID              int64
	RunID           string
	CharacterID     string
	Profile         string
	Status          Status
	OutputPath      string
	EncodePath      string
	Segments        int
	Skipped         int
	DurationSeconds float64
	SizeBytes       int64
	Elapsed         time.Duration
	ErrorMessage    string
	StartedAt       time.Time
	FinishedAt      time.Time
}

// SizeMB returns the recorded output size in mebibytes.
func (r Run) SizeMB() float64 {
	return float64(r.SizeBytes) / (1024 * 1024)
}
