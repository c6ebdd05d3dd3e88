// Package github provides a minimal GitHub REST client for repository
// metadata refresh.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RepoMetadata holds the repository fields the refresher tracks.
type RepoMetadata struct {
	Description string
	Stars       int
	Archived    bool
	LastCommit  time.Time
}

// limiterBurst allows short bursts while keeping the sustained rate.
const limiterBurst = 2

// Client fetches repository metadata from the GitHub REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	timeout    time.Duration
	limiter    *rate.Limiter
}

// NewClient creates a GitHub API client. The token is optional;
// requestsPerSecond throttles outbound calls to stay inside GitHub's
// rate limits.
func NewClient(httpClient *http.Client, baseURL, token string, timeout time.Duration, requestsPerSecond float64) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      token,
		timeout:    timeout,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), limiterBurst),
	}
}

// repoResponse is the subset of the GitHub repository payload we read.
type repoResponse struct {
	Description     string    `json:"description"`
	StargazersCount int       `json:"stargazers_count"`
	Archived        bool      `json:"archived"`
	PushedAt        time.Time `json:"pushed_at"`
}

// FetchRepo fetches metadata for owner/repo. Failures are returned as
// *Error with a classified Kind.
func (c *Client) FetchRepo(ctx context.Context, owner, repo string) (*RepoMetadata, error) {
	if waitErr := c.limiter.Wait(ctx); waitErr != nil {
		return nil, &Error{Kind: KindTimeout, Owner: owner, Repo: repo, Cause: waitErr}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, owner, repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, &Error{Kind: KindOther, Owner: owner, Repo: repo, Cause: err}
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return nil, classifyTransportError(doErr, owner, repo)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp, owner, repo)
	}

	var payload repoResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr != nil {
		return nil, &Error{Kind: KindOther, Owner: owner, Repo: repo, Cause: fmt.Errorf("decode response: %w", decodeErr)}
	}

	return &RepoMetadata{
		Description: payload.Description,
		Stars:       payload.StargazersCount,
		Archived:    payload.Archived,
		LastCommit:  payload.PushedAt,
	}, nil
}

// classifyTransportError maps transport-level failures to an Error kind.
func classifyTransportError(cause error, owner, repo string) *Error {
	var netErr net.Error
	if errors.As(cause, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Owner: owner, Repo: repo, Cause: cause}
	}

	if errors.Is(cause, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Owner: owner, Repo: repo, Cause: cause}
	}

	return &Error{Kind: KindOther, Owner: owner, Repo: repo, Cause: cause}
}

// classifyStatus maps a non-OK API response to an Error kind. GitHub
// signals an exhausted rate limit as 403 or 429 with a zeroed
// X-RateLimit-Remaining header.
func classifyStatus(resp *http.Response, owner, repo string) *Error {
	cause := fmt.Errorf("HTTP %d", resp.StatusCode)

	e := &Error{StatusCode: resp.StatusCode, Owner: owner, Repo: repo, Cause: cause}

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		e.Kind = KindNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		e.Kind = KindRateLimited
	case resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		e.Kind = KindRateLimited
	default:
		e.Kind = KindOther
	}

	return e
}
