package refresh

import (
	"context"
	"errors"
	"time"

	"github.com/jonesrussell/linkward/internal/domain"
	"github.com/jonesrussell/linkward/internal/github"
	"github.com/jonesrussell/linkward/internal/logger"
	"github.com/jonesrussell/linkward/internal/scrape"
)

// PageFetcher fetches page metadata for a URL.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (*scrape.PageMetadata, error)
}

// RepoFetcher fetches repository metadata from the GitHub API.
type RepoFetcher interface {
	FetchRepo(ctx context.Context, owner, repo string) (*github.RepoMetadata, error)
}

// Worker refreshes a single link against the external collaborators and
// classifies the result. It never writes to storage; the coordinator
// applies the returned Outcome.
type Worker struct {
	scraper PageFetcher
	repos   RepoFetcher
	log     logger.Interface
}

// NewWorker creates a refresh worker.
func NewWorker(scraper PageFetcher, repos RepoFetcher, log logger.Interface) *Worker {
	return &Worker{
		scraper: scraper,
		repos:   repos,
		log:     log,
	}
}

// Refresh fetches the link's page (and repository metadata for GitHub
// links) and produces an Outcome. The page fetch decides reachability;
// the repo fetch enriches the delta.
func (w *Worker) Refresh(ctx context.Context, link *domain.Link) Outcome {
	page, fetchErr := w.scraper.FetchPage(ctx, link.URL)
	if fetchErr != nil {
		return w.classifyPageError(link, fetchErr)
	}

	delta := diffPage(link, page)

	if link.IsGitHubRepo {
		repoOutcome, ok := w.refreshRepo(ctx, link, &delta)
		if !ok {
			return repoOutcome
		}
	}

	return Success(delta)
}

// refreshRepo fetches GitHub metadata and merges changed fields into
// the delta. Returns ok=false with a failure outcome when the fetch
// did not succeed.
func (w *Worker) refreshRepo(ctx context.Context, link *domain.Link, delta *domain.MetadataDelta) (Outcome, bool) {
	owner, repo, pathErr := github.SplitRepoPath(link.Path)
	if pathErr != nil {
		w.log.Warn("link flagged as repo has no derivable owner/repo",
			"link_id", link.ID,
			"path", link.Path,
		)
		return PermanentFailure(OriginRepo, pathErr.Error()), false
	}

	meta, repoErr := w.repos.FetchRepo(ctx, owner, repo)
	if repoErr != nil {
		return w.classifyRepoError(link, repoErr), false
	}

	diffRepo(link, meta, delta)

	return Outcome{}, true
}

// classifyPageError maps a scrape failure to an outcome. Only a
// definitive 404/410 is permanent; everything else retries.
func (w *Worker) classifyPageError(link *domain.Link, fetchErr error) Outcome {
	var scrapeErr *scrape.Error
	if !errors.As(fetchErr, &scrapeErr) {
		return TransientFailure(OriginPage, fetchErr.Error())
	}

	switch scrapeErr.Kind {
	case scrape.KindNotFound:
		w.log.Info("page is gone",
			"link_id", link.ID,
			"url", link.URL,
			"status_code", scrapeErr.StatusCode,
		)
		return PermanentFailure(OriginPage, scrapeErr.Error())
	case scrape.KindTimeout, scrape.KindServerError, scrape.KindOther:
		return TransientFailure(OriginPage, scrapeErr.Error())
	default:
		return TransientFailure(OriginPage, scrapeErr.Error())
	}
}

// classifyRepoError maps a GitHub API failure to an outcome.
func (w *Worker) classifyRepoError(link *domain.Link, repoErr error) Outcome {
	var ghErr *github.Error
	if !errors.As(repoErr, &ghErr) {
		return TransientFailure(OriginRepo, repoErr.Error())
	}

	switch ghErr.Kind {
	case github.KindNotFound:
		w.log.Info("repository no longer available",
			"link_id", link.ID,
			"owner", ghErr.Owner,
			"repo", ghErr.Repo,
		)
		return PermanentFailure(OriginRepo, ghErr.Error())
	case github.KindRateLimited, github.KindTimeout, github.KindOther:
		return TransientFailure(OriginRepo, ghErr.Error())
	default:
		return TransientFailure(OriginRepo, ghErr.Error())
	}
}

// diffPage compares scraped page metadata against the stored link and
// returns a delta holding only changed, non-empty values. Empty fetched
// values never clear previously captured metadata.
func diffPage(link *domain.Link, page *scrape.PageMetadata) domain.MetadataDelta {
	delta := domain.MetadataDelta{}

	if changedString(link.Title, page.Title) {
		delta.Title = &page.Title
	}
	if changedString(link.Description, page.Description) {
		delta.Description = &page.Description
	}
	if changedString(link.Logo, page.Logo) {
		delta.Logo = &page.Logo
	}

	return delta
}

// diffRepo merges changed repository fields into the delta. A repo
// description wins over the page description when both changed, since
// GitHub is the source of truth for its own repos.
func diffRepo(link *domain.Link, meta *github.RepoMetadata, delta *domain.MetadataDelta) {
	if changedString(link.Description, meta.Description) {
		delta.Description = &meta.Description
	}

	if link.GitHubStars == nil || *link.GitHubStars != meta.Stars {
		stars := meta.Stars
		delta.GitHubStars = &stars
	}

	if link.GitHubArchived == nil || *link.GitHubArchived != meta.Archived {
		archived := meta.Archived
		delta.GitHubArchived = &archived
	}

	if changedTime(link.GitHubLastCommit, meta.LastCommit) {
		lastCommit := meta.LastCommit
		delta.GitHubLastCommit = &lastCommit
	}
}

// changedString reports whether fetched is a new, non-empty value.
func changedString(stored *string, fetched string) bool {
	if fetched == "" {
		return false
	}

	return stored == nil || *stored != fetched
}

// changedTime reports whether fetched is a new, non-zero timestamp.
func changedTime(stored *time.Time, fetched time.Time) bool {
	if fetched.IsZero() {
		return false
	}

	return stored == nil || !stored.Equal(fetched)
}
