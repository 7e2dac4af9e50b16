package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a transmission job.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusSending Status = "sending"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// DaemonStopReason is the error message set when a job is interrupted by shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusQueued,
	StatusSending,
	StatusDone,
	StatusFailed,
}

// DatabaseHealth captures diagnostic information about the queue database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    int
	TableExists      bool
	MissingColumns   []string
	IntegrityCheck   bool
	TotalJobs        int
	Error            string
}

// HealthSummary describes aggregated job counts per lifecycle state.
type HealthSummary struct {
	Total   int
	Queued  int
	Sending int
	Done    int
	Failed  int
}

// Job represents a transmission request persisted in SQLite.
type Job struct {
	ID            int64
	Text          string
	Speed         int
	Status        Status
	Code          string
	Ack           string
	ErrorMessage  string
	Retryable     bool
	RequestID     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	StartedAt     *time.Time
	FinishedAt    *time.Time
	LastHeartbeat *time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return normalized, true
		}
	}
	return "", false
}

// IsTerminal reports whether the job has finished, successfully or not.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusFailed
}

// IsProcessing returns true while the job is being transmitted.
func (j Job) IsProcessing() bool {
	return j.Status == StatusSending
}

// Runes returns the text length in characters.
func (j Job) Runes() int {
	return len([]rune(j.Text))
}

// Duration reports how long transmission took, or zero when unknown.
func (j Job) Duration() time.Duration {
	if j.StartedAt == nil || j.FinishedAt == nil {
		return 0
	}
	return j.FinishedAt.Sub(*j.StartedAt)
}
