package config

import (
	"errors"
	"fmt"
	"time"
)

// Refresh defaults.
const (
	// DefaultInterval is the default delay between refresh cycles.
	DefaultInterval = 30 * time.Minute

	// DefaultBatchSize is the default maximum number of links refreshed
	// per cycle.
	DefaultBatchSize = 50

	// DefaultJitterPercent is the default interval jitter.
	DefaultJitterPercent = 10

	// DefaultMaxConcurrency is the default number of concurrent refresh
	// workers within one cycle. Kept well below the batch size to cap
	// simultaneous outbound connections.
	DefaultMaxConcurrency = 5

	// DefaultFailureThreshold is the default number of consecutive
	// transient failures before a link is marked inaccessible.
	DefaultFailureThreshold = 3

	// DefaultFetchTimeout bounds a single page or API fetch.
	DefaultFetchTimeout = 15 * time.Second

	// DefaultGitHubAPIBaseURL is the GitHub REST API endpoint.
	DefaultGitHubAPIBaseURL = "https://api.github.com"

	// DefaultGitHubRequestsPerSecond keeps unauthenticated API usage
	// polite; authenticated deployments can raise it.
	DefaultGitHubRequestsPerSecond = 1.0

	// maxJitterPercent is the upper bound for jitter_percent.
	maxJitterPercent = 100
)

// GitHubConfig holds GitHub API client settings.
type GitHubConfig struct {
	// Token is an optional API token; unauthenticated requests are
	// allowed but heavily rate limited by GitHub.
	Token string `mapstructure:"token" yaml:"token"`

	// APIBaseURL is the GitHub REST API base URL. Overridable for
	// GitHub Enterprise and for tests.
	APIBaseURL string `mapstructure:"api_base_url" yaml:"api_base_url"`

	// RequestsPerSecond limits outbound GitHub API calls.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// RefreshConfig holds settings for the metadata-refresh scheduler.
// Immutable for the process lifetime once loaded.
type RefreshConfig struct {
	// Interval is the base delay between refresh cycles.
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`

	// BatchSize is the maximum number of links selected per cycle.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`

	// JitterPercent randomizes each cycle's delay by up to ±N percent
	// to avoid synchronized bursts across restarts or instances.
	JitterPercent int `mapstructure:"jitter_percent" yaml:"jitter_percent"`

	// MaxConcurrency bounds the number of refresh workers running at
	// once within a cycle.
	MaxConcurrency int `mapstructure:"max_concurrency" yaml:"max_concurrency"`

	// FailureThreshold is the number of consecutive transient failures
	// after which a link transitions to inaccessible (or
	// repo_unavailable for GitHub repos).
	FailureThreshold int `mapstructure:"failure_threshold" yaml:"failure_threshold"`

	// FetchTimeout bounds each outbound page or API fetch.
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" yaml:"fetch_timeout"`

	// RetryUnavailableRepos controls whether repo_unavailable links are
	// re-selected automatically. When false, only explicit user action
	// revives them.
	RetryUnavailableRepos bool `mapstructure:"retry_unavailable_repos" yaml:"retry_unavailable_repos"`

	// GitHub holds GitHub API client settings.
	GitHub GitHubConfig `mapstructure:"github" yaml:"github"`
}

// Validate checks the refresh configuration.
func (c *RefreshConfig) Validate() error {
	// The due-link query works in whole seconds; anything shorter
	// truncates to zero and makes every link permanently due.
	if c.Interval < time.Second {
		return errors.New("interval must be at least 1s")
	}
	if c.BatchSize <= 0 {
		return errors.New("batch_size must be positive")
	}
	if c.JitterPercent < 0 || c.JitterPercent > maxJitterPercent {
		return fmt.Errorf("jitter_percent must be in [0,%d]", maxJitterPercent)
	}
	if c.MaxConcurrency <= 0 {
		return errors.New("max_concurrency must be positive")
	}
	if c.FailureThreshold <= 0 {
		return errors.New("failure_threshold must be positive")
	}
	if c.FetchTimeout <= 0 {
		return errors.New("fetch_timeout must be positive")
	}
	if c.GitHub.RequestsPerSecond <= 0 {
		return errors.New("github.requests_per_second must be positive")
	}
	return nil
}
