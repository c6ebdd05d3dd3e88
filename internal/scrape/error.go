package scrape

import "fmt"

// ErrorKind classifies page fetch failures so the refresh worker can
// distinguish transient from permanent outcomes with an exhaustive
// switch instead of status-code sniffing.
type ErrorKind string

const (
	// KindTimeout is a network timeout or cancelled fetch.
	KindTimeout ErrorKind = "timeout"
	// KindNotFound is a definitive 404 or 410 response.
	KindNotFound ErrorKind = "not_found"
	// KindServerError is a 5xx response.
	KindServerError ErrorKind = "server_error"
	// KindOther covers connection failures and unexpected statuses.
	KindOther ErrorKind = "other"
)

// Error represents a classified page fetch failure.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	URL        string
	Cause      error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("scrape %s: HTTP %d for %s", e.Kind, e.StatusCode, e.URL)
	}

	return fmt.Sprintf("scrape %s: %s for %s", e.Kind, e.Cause, e.URL)
}

func (e *Error) Unwrap() error { return e.Cause }

// HTTP status code boundaries for classification.
const (
	statusNotFound        = 404
	statusGone            = 410
	statusServerErrorLow  = 500
	statusServerErrorHigh = 599
)

// classifyStatus creates an Error from a non-OK HTTP status code.
func classifyStatus(statusCode int, url string) *Error {
	cause := fmt.Errorf("HTTP %d", statusCode)

	switch {
	case statusCode == statusNotFound || statusCode == statusGone:
		return &Error{Kind: KindNotFound, StatusCode: statusCode, URL: url, Cause: cause}
	case statusCode >= statusServerErrorLow && statusCode <= statusServerErrorHigh:
		return &Error{Kind: KindServerError, StatusCode: statusCode, URL: url, Cause: cause}
	default:
		return &Error{Kind: KindOther, StatusCode: statusCode, URL: url, Cause: cause}
	}
}
