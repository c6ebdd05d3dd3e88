package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/linkward/internal/domain"
	"github.com/jonesrussell/linkward/internal/logger"
)

// LinkStore is the storage surface the coordinator needs.
type LinkStore interface {
	SelectDue(ctx context.Context, batchSize int) ([]*domain.Link, error)
	ApplyOutcome(ctx context.Context, w domain.OutcomeWrite) error
}

// Refresher produces an Outcome for a single link.
type Refresher interface {
	Refresh(ctx context.Context, link *domain.Link) Outcome
}

// RunReport summarizes one refresh cycle. It is held in scheduler state
// for health reporting and overwritten each cycle; it is not persisted.
type RunReport struct {
	RunID                  string        `json:"run_id"`
	StartedAt              time.Time     `json:"started_at"`
	Duration               time.Duration `json:"duration"`
	LinksAttempted         int           `json:"links_attempted"`
	LinksSucceeded         int           `json:"links_succeeded"`
	LinksFailed            int           `json:"links_failed"`
	LinksMarkedUnavailable int           `json:"links_marked_unavailable"`
	Error                  string        `json:"error,omitempty"`
}

// Coordinator runs one refresh cycle: it selects due links, fans them
// out to a bounded pool of refresh workers, and applies each outcome as
// it arrives.
type Coordinator struct {
	store            LinkStore
	worker           Refresher
	batchSize        int
	maxConcurrency   int
	failureThreshold int
	log              logger.Interface
}

// NewCoordinator creates a batch coordinator.
func NewCoordinator(
	store LinkStore,
	worker Refresher,
	batchSize int,
	maxConcurrency int,
	failureThreshold int,
	log logger.Interface,
) *Coordinator {
	return &Coordinator{
		store:            store,
		worker:           worker,
		batchSize:        batchSize,
		maxConcurrency:   maxConcurrency,
		failureThreshold: failureThreshold,
		log:              log,
	}
}

// RunOnce executes a single refresh cycle and returns its report.
//
// Cancellation of ctx stops dispatching new workers; links already
// dispatched finish with their own fetch timeouts and their writes are
// applied, so consecutive_failures and status always match what
// actually happened. Undispatched links keep their last_checked and are
// naturally re-selected on the next run.
func (c *Coordinator) RunOnce(ctx context.Context) RunReport {
	report := RunReport{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}

	links, err := c.store.SelectDue(ctx, c.batchSize)
	if err != nil {
		c.log.Error("failed to select due links", "error", err.Error())
		report.Error = err.Error()
		report.Duration = time.Since(report.StartedAt)
		return report
	}

	if len(links) == 0 {
		report.Duration = time.Since(report.StartedAt)
		return report
	}

	c.log.Info("refreshing due links",
		"run_id", report.RunID,
		"count", len(links),
	)

	// In-flight work must survive ctx cancellation: an outcome already
	// being computed is always written. Fetch timeouts bound how long
	// that takes.
	workCtx := context.WithoutCancel(ctx)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, c.maxConcurrency)
	)

dispatch:
	for _, link := range links {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			c.log.Info("shutdown observed, not dispatching remaining links",
				"run_id", report.RunID,
			)
			break dispatch
		}

		wg.Add(1)

		go func(link *domain.Link) {
			defer func() {
				<-sem
				wg.Done()
			}()

			outcome := c.worker.Refresh(workCtx, link)
			write := c.resolveWrite(link, outcome)

			applyErr := c.store.ApplyOutcome(workCtx, write)
			if applyErr != nil {
				// Dropped for this cycle; last_checked was not
				// advanced, so the link is re-selected next run.
				c.log.Error("failed to apply refresh outcome",
					"link_id", link.ID,
					"error", applyErr.Error(),
				)
			}

			mu.Lock()
			c.record(&report, link, outcome, write, applyErr)
			mu.Unlock()
		}(link)
	}

	wg.Wait()

	report.Duration = time.Since(report.StartedAt)

	c.log.Info("refresh cycle complete",
		"run_id", report.RunID,
		"attempted", report.LinksAttempted,
		"succeeded", report.LinksSucceeded,
		"failed", report.LinksFailed,
		"marked_unavailable", report.LinksMarkedUnavailable,
		"duration", report.Duration.String(),
	)

	return report
}

// resolveWrite translates a worker outcome into the atomic storage
// write for the link.
func (c *Coordinator) resolveWrite(link *domain.Link, outcome Outcome) domain.OutcomeWrite {
	now := time.Now()

	write := domain.OutcomeWrite{
		LinkID:      link.ID,
		Status:      link.Status,
		LastChecked: now,
	}

	switch outcome.Kind {
	case OutcomeSuccess:
		write.ConsecutiveFailures = 0
		write.Delta = outcome.Delta
		if !outcome.Delta.IsEmpty() {
			write.RefreshedAt = &now
		}
		// A link can recover.
		if link.Status == domain.StatusInaccessible || link.Status == domain.StatusRepoUnavailable {
			write.Status = domain.StatusActive
		}

	case OutcomeTransientFailure:
		write.ConsecutiveFailures = link.ConsecutiveFailures + 1
		if write.ConsecutiveFailures >= c.failureThreshold {
			write.Status = unavailableStatus(link, outcome.Origin)
		}

	case OutcomePermanentFailure:
		// Permanence is known with certainty; no threshold wait.
		write.ConsecutiveFailures = link.ConsecutiveFailures
		write.Status = unavailableStatus(link, outcome.Origin)
	}

	return write
}

// unavailableStatus picks the terminal status for a failure: GitHub
// failures on repo links map to repo_unavailable, page failures to
// inaccessible.
func unavailableStatus(link *domain.Link, origin FailureOrigin) domain.LinkStatus {
	if link.IsGitHubRepo && origin == OriginRepo {
		return domain.StatusRepoUnavailable
	}

	return domain.StatusInaccessible
}

// record accumulates a completed link into the report. Caller holds the
// report lock. A write that could not be applied counts as failed even
// when the fetch succeeded: the cycle did not take effect for that link.
func (c *Coordinator) record(report *RunReport, link *domain.Link, outcome Outcome, write domain.OutcomeWrite, applyErr error) {
	report.LinksAttempted++

	if applyErr == nil && outcome.Kind == OutcomeSuccess {
		report.LinksSucceeded++
	} else {
		report.LinksFailed++
	}

	if applyErr != nil {
		return
	}

	transitioned := write.Status != link.Status &&
		(write.Status == domain.StatusInaccessible || write.Status == domain.StatusRepoUnavailable)
	if transitioned {
		report.LinksMarkedUnavailable++
		c.log.Warn("link marked unavailable",
			"link_id", link.ID,
			"url", link.URL,
			"status", string(write.Status),
			"consecutive_failures", write.ConsecutiveFailures,
			"reason", outcome.Reason,
		)
	}
}
