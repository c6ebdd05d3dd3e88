package refresh

import "github.com/jonesrussell/linkward/internal/domain"

// OutcomeKind is the result category of a single refresh attempt.
type OutcomeKind string

const (
	// OutcomeSuccess means the link was fetched successfully; Delta
	// carries any changed metadata (possibly none).
	OutcomeSuccess OutcomeKind = "success"

	// OutcomeTransientFailure is a retryable failure: timeout,
	// connection failure, server error, or API rate limit.
	OutcomeTransientFailure OutcomeKind = "transient_failure"

	// OutcomePermanentFailure is a definitive absence: the page is gone
	// or the repository no longer exists.
	OutcomePermanentFailure OutcomeKind = "permanent_failure"
)

// FailureOrigin identifies which collaborator produced a failure. It
// decides whether a repo link lands in inaccessible (page failure) or
// repo_unavailable (GitHub failure).
type FailureOrigin string

const (
	// OriginPage is a failure fetching the link's page.
	OriginPage FailureOrigin = "page"
	// OriginRepo is a failure from the GitHub API.
	OriginRepo FailureOrigin = "repo"
)

// Outcome is the side-effect-free result of one refresh attempt. The
// worker produces it; the coordinator turns it into a storage write.
type Outcome struct {
	Kind   OutcomeKind
	Delta  domain.MetadataDelta
	Origin FailureOrigin
	Reason string
}

// Success builds a success outcome carrying the changed fields.
func Success(delta domain.MetadataDelta) Outcome {
	return Outcome{Kind: OutcomeSuccess, Delta: delta}
}

// TransientFailure builds a retryable failure outcome.
func TransientFailure(origin FailureOrigin, reason string) Outcome {
	return Outcome{Kind: OutcomeTransientFailure, Origin: origin, Reason: reason}
}

// PermanentFailure builds a definitive failure outcome.
func PermanentFailure(origin FailureOrigin, reason string) Outcome {
	return Outcome{Kind: OutcomePermanentFailure, Origin: origin, Reason: reason}
}
