// Package domain defines the core types shared across the linkward services.
package domain

import "time"

// LinkStatus represents the lifecycle status of a stored link.
type LinkStatus string

const (
	// StatusActive means the link is reachable and refreshed normally.
	StatusActive LinkStatus = "active"

	// StatusArchived is set by the user; the refresher never touches
	// archived links and never writes this status.
	StatusArchived LinkStatus = "archived"

	// StatusInaccessible means the page repeatedly failed to load or is
	// definitively gone.
	StatusInaccessible LinkStatus = "inaccessible"

	// StatusRepoUnavailable means the link's GitHub repository was deleted,
	// made private, or repeatedly failed to respond.
	StatusRepoUnavailable LinkStatus = "repo_unavailable"
)

// Link represents a stored bookmark with its derived metadata.
type Link struct {
	ID           string     `db:"id"             json:"id"`
	URL          string     `db:"url"            json:"url"`
	Domain       string     `db:"domain"         json:"domain"`
	Path         string     `db:"path"           json:"path"`
	IsGitHubRepo bool       `db:"is_github_repo" json:"is_github_repo"`
	Status       LinkStatus `db:"status"         json:"status"`

	Title            *string    `db:"title"              json:"title,omitempty"`
	Description      *string    `db:"description"        json:"description,omitempty"`
	Logo             *string    `db:"logo"               json:"logo,omitempty"`
	GitHubStars      *int       `db:"github_stars"       json:"github_stars,omitempty"`
	GitHubArchived   *bool      `db:"github_archived"    json:"github_archived,omitempty"`
	GitHubLastCommit *time.Time `db:"github_last_commit" json:"github_last_commit,omitempty"`

	// LastChecked is the time of the most recent refresh attempt,
	// success or failure. It drives due-link selection ordering.
	LastChecked *time.Time `db:"last_checked" json:"last_checked,omitempty"`

	// RefreshedAt is the time of the most recent successful metadata
	// write. It only advances when a refresh produced a non-empty delta.
	RefreshedAt *time.Time `db:"refreshed_at" json:"refreshed_at,omitempty"`

	ConsecutiveFailures int `db:"consecutive_failures" json:"consecutive_failures"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// MetadataDelta carries only the metadata fields whose fetched value
// differs from what is currently stored. Nil fields are left untouched
// on write, so a transient failure or an unchanged fetch never clears
// previously captured metadata.
type MetadataDelta struct {
	Title            *string
	Description      *string
	Logo             *string
	GitHubStars      *int
	GitHubArchived   *bool
	GitHubLastCommit *time.Time
}

// IsEmpty reports whether the delta changes nothing.
func (d MetadataDelta) IsEmpty() bool {
	return d.Title == nil &&
		d.Description == nil &&
		d.Logo == nil &&
		d.GitHubStars == nil &&
		d.GitHubArchived == nil &&
		d.GitHubLastCommit == nil
}

// OutcomeWrite is the single atomic write applied to a link after a
// refresh attempt. Status, failure counter, and last_checked always land
// together; RefreshedAt and the delta are only set on a successful
// refresh that changed something.
type OutcomeWrite struct {
	LinkID              string
	Status              LinkStatus
	ConsecutiveFailures int
	LastChecked         time.Time
	RefreshedAt         *time.Time
	Delta               MetadataDelta
}
