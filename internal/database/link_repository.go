package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/linkward/internal/domain"
)

// linkSelectColumns lists columns for SELECT queries on links.
const linkSelectColumns = `id, url, domain, path, is_github_repo, status,
	title, description, logo, github_stars, github_archived, github_last_commit,
	last_checked, refreshed_at, consecutive_failures, created_at, updated_at`

// LinkRepository handles database operations for stored links and their
// refresh state.
type LinkRepository struct {
	db *sqlx.DB

	// interval defines how old last_checked must be before a link is
	// due again.
	interval time.Duration

	// retryUnavailableRepos includes repo_unavailable links in due
	// selection when true.
	retryUnavailableRepos bool
}

// NewLinkRepository creates a new link repository. The interval and
// unavailable-repo retry policy come from the refresh configuration and
// are fixed for the process lifetime.
func NewLinkRepository(db *sqlx.DB, interval time.Duration, retryUnavailableRepos bool) *LinkRepository {
	return &LinkRepository{
		db:                    db,
		interval:              interval,
		retryUnavailableRepos: retryUnavailableRepos,
	}
}

// SelectDue returns at most batchSize links due for a refresh pass.
// A link is due when its status is refreshable and last_checked is NULL
// or older than one interval. Never-checked links come first, then
// oldest-checked, so no link starves: each cycle advances last_checked
// for everything it touches.
func (r *LinkRepository) SelectDue(ctx context.Context, batchSize int) ([]*domain.Link, error) {
	statuses := `'active', 'inaccessible'`
	if r.retryUnavailableRepos {
		statuses = `'active', 'inaccessible', 'repo_unavailable'`
	}

	query := `
		SELECT ` + linkSelectColumns + `
		FROM links
		WHERE status IN (` + statuses + `)
		  AND (last_checked IS NULL OR last_checked <= NOW() - ($1 * INTERVAL '1 second'))
		ORDER BY last_checked ASC NULLS FIRST
		LIMIT $2
	`

	var links []*domain.Link
	if err := r.db.SelectContext(ctx, &links, query, int(r.interval.Seconds()), batchSize); err != nil {
		return nil, fmt.Errorf("failed to select due links: %w", err)
	}

	if links == nil {
		links = []*domain.Link{}
	}

	return links, nil
}

// ApplyOutcome applies the result of a refresh attempt as a single
// atomic UPDATE. Status, consecutive_failures, and last_checked always
// land together; refreshed_at and metadata fields only change when the
// write carries new values (COALESCE keeps the stored value otherwise).
//
// Archived links are excluded in the WHERE clause so a concurrent user
// archive between selection and write is never overridden.
func (r *LinkRepository) ApplyOutcome(ctx context.Context, w domain.OutcomeWrite) error {
	query := `
		UPDATE links
		SET status = $2,
			consecutive_failures = $3,
			last_checked = $4,
			refreshed_at = COALESCE($5, refreshed_at),
			title = COALESCE($6, title),
			description = COALESCE($7, description),
			logo = COALESCE($8, logo),
			github_stars = COALESCE($9, github_stars),
			github_archived = COALESCE($10, github_archived),
			github_last_commit = COALESCE($11, github_last_commit),
			updated_at = NOW()
		WHERE id = $1 AND status <> 'archived'
	`

	result, err := r.db.ExecContext(ctx, query,
		w.LinkID,
		w.Status,
		w.ConsecutiveFailures,
		w.LastChecked,
		w.RefreshedAt,
		w.Delta.Title,
		w.Delta.Description,
		w.Delta.Logo,
		w.Delta.GitHubStars,
		w.Delta.GitHubArchived,
		w.Delta.GitHubLastCommit,
	)

	return execRequireRows(result, err, fmt.Errorf("link not found or archived: %s", w.LinkID))
}

// List returns all stored links ordered by domain then creation time.
// Used by the links CLI commands.
func (r *LinkRepository) List(ctx context.Context) ([]*domain.Link, error) {
	query := `
		SELECT ` + linkSelectColumns + `
		FROM links
		ORDER BY domain ASC, created_at ASC
	`

	var links []*domain.Link
	if err := r.db.SelectContext(ctx, &links, query); err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	if links == nil {
		links = []*domain.Link{}
	}

	return links, nil
}
