package queue

import "errors"

// ErrorClassifier allows errors to declare their classification.
type ErrorClassifier interface {
	// ErrorKind returns a string classification of the error. The kinds
	// "validation" and "configuration" mark failures that a retry cannot fix.
	ErrorKind() string
}

// ErrNotFound reports a job that does not exist.
var ErrNotFound = errors.New("job not found")

// FailureStatus maps a transmission error to the status the workflow manager
// persists and whether the job may be retried later.
func FailureStatus(err error) (Status, bool) {
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		switch classifier.ErrorKind() {
		case "validation", "configuration":
			return StatusFailed, false
		}
	}
	return StatusFailed, true
}
