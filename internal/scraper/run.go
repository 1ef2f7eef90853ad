package scraper

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wassil-choujaa-account/JobSpy/internal/models"
)

// Run bundles the mutable state of one source scrape: the input, the seen
// set, the pacing clock and the run logger. A Run belongs to exactly one
// source loop and is never shared across concurrent runs.
type Run struct {
	Input models.ScraperInput
	Log   zerolog.Logger

	seen  map[string]struct{}
	sleep func(ctx context.Context, d time.Duration) error
	rng   *rand.Rand
}

func newRun(source Source, input models.ScraperInput) *Run {
	runID := uuid.NewString()[:8]
	return &Run{
		Input: input,
		Log:   log.With().Str("site", source.Name()).Str("run", runID).Logger(),
		seen:  map[string]struct{}{},
		sleep: sleepCtx,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// MarkSeen records a dedup key, reporting whether it was already present.
func (r *Run) MarkSeen(key string) bool {
	if _, ok := r.seen[key]; ok {
		return true
	}
	r.seen[key] = struct{}{}
	return false
}

// pause applies the source's politeness delay: a uniform draw from
// [base, base+band], cancellable through ctx.
func (r *Run) pause(ctx context.Context, source Source) error {
	base, band := source.Delay()
	delay := base
	if band > 0 {
		delay += time.Duration(r.rng.Int63n(int64(band)))
	}
	if delay <= 0 {
		return nil
	}
	return r.sleep(ctx, delay)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Scrape drives one source page by page until the requested window is
// filled, the source is exhausted, a page yields nothing new, or ctx is
// cancelled. Per-page fetch failures and cancellation end the run with
// whatever was accumulated; only input validation and extraction defects
// return an error.
func Scrape(ctx context.Context, source Source, input models.ScraperInput) (*models.JobResponse, error) {
	input = input.Normalized()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	run := newRun(source, input)
	target := input.ResultsWanted + input.Offset

	var accepted []models.JobPost
	cursor := Cursor{Page: 1}
	pages := 0

	for len(accepted) < target {
		if ctx.Err() != nil {
			run.Log.Debug().Msg("run cancelled")
			break
		}
		if pages > 0 {
			if err := run.pause(ctx, source); err != nil {
				run.Log.Debug().Msg("run cancelled during pacing delay")
				break
			}
		}

		page, err := source.FetchPage(ctx, run, cursor)
		if err != nil {
			if ctx.Err() != nil {
				run.Log.Debug().Msg("run cancelled")
			} else {
				run.Log.Error().Err(err).Int("page", cursor.Page).Msg("page fetch failed, ending run")
			}
			break
		}
		pages++
		if page == nil || len(page.Records) == 0 {
			run.Log.Debug().Int("page", cursor.Page).Msg("empty page, ending run")
			break
		}

		added := 0
		for _, raw := range page.Records {
			if key := source.DedupKey(raw); key != "" && run.MarkSeen(key) {
				continue
			}
			job, err := source.ExtractRecord(run, raw)
			if err != nil {
				return respond(accepted, input), err
			}
			if job == nil {
				run.Log.Debug().Msg("skipping record with missing mandatory fields")
				continue
			}
			accepted = append(accepted, *job)
			added++
			if len(accepted) >= target {
				break
			}
		}

		// Stagnation guard: a page of only duplicates or failed extractions
		// means the source is repeating itself.
		if added == 0 {
			run.Log.Debug().Int("page", cursor.Page).Msg("no new jobs accepted, ending run")
			break
		}
		if !page.HasMore {
			break
		}
		cursor = page.Next
	}

	run.Log.Info().Int("jobs", len(accepted)).Int("pages", pages).Msg("run finished")
	return respond(accepted, input), nil
}

// respond trims accumulated postings to [offset, offset+results_wanted).
// A short window is not an error.
func respond(jobs []models.JobPost, input models.ScraperInput) *models.JobResponse {
	if input.Offset >= len(jobs) {
		return &models.JobResponse{Jobs: []models.JobPost{}}
	}
	jobs = jobs[input.Offset:]
	if len(jobs) > input.ResultsWanted {
		jobs = jobs[:input.ResultsWanted]
	}
	return &models.JobResponse{Jobs: jobs}
}

// SourceFailure records a source whose run returned an error.
type SourceFailure struct {
	Site string
	Err  error
}

// ScrapeAll runs several sources concurrently and concatenates their
// results. Each source gets its own Run and seen set.
func ScrapeAll(ctx context.Context, sources []Source, input models.ScraperInput) ([]models.JobPost, []SourceFailure) {
	type result struct {
		site string
		jobs []models.JobPost
		err  error
	}

	results := make(chan result, len(sources))
	for _, source := range sources {
		go func(source Source) {
			resp, err := Scrape(ctx, source, input)
			var jobs []models.JobPost
			if resp != nil {
				jobs = resp.Jobs
			}
			results <- result{site: source.Name(), jobs: jobs, err: err}
		}(source)
	}

	var (
		all      []models.JobPost
		failures []SourceFailure
	)
	for range sources {
		res := <-results
		all = append(all, res.jobs...)
		if res.err != nil {
			failures = append(failures, SourceFailure{Site: res.site, Err: res.err})
		}
	}
	return all, failures
}
