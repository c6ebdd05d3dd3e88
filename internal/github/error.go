package github

import "fmt"

// ErrorKind classifies GitHub API failures so the refresh worker can
// make an exhaustive transient/permanent decision.
type ErrorKind string

const (
	// KindRateLimited means the API rate limit is exhausted.
	KindRateLimited ErrorKind = "rate_limited"
	// KindNotFound means the repository does not exist or is private.
	KindNotFound ErrorKind = "not_found"
	// KindTimeout is a network timeout or cancelled request.
	KindTimeout ErrorKind = "timeout"
	// KindOther covers server errors and connection failures.
	KindOther ErrorKind = "other"
)

// Error represents a classified GitHub API failure.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Owner      string
	Repo       string
	Cause      error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("github %s: HTTP %d for %s/%s", e.Kind, e.StatusCode, e.Owner, e.Repo)
	}

	return fmt.Sprintf("github %s: %s for %s/%s", e.Kind, e.Cause, e.Owner, e.Repo)
}

func (e *Error) Unwrap() error { return e.Cause }
