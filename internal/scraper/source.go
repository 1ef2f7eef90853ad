package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/wassil-choujaa-account/JobSpy/internal/models"
)

// RawRecord is one opaque source-specific record pulled from a page, before
// deduplication and normalization.
type RawRecord any

// Cursor identifies the next page to fetch. Sources use either the numeric
// page index or the opaque token, never both.
type Cursor struct {
	Page  int
	Token string
}

// Page is the result of one fetch: the raw records found, the cursor for the
// following page, and whether the source believes more pages exist.
type Page struct {
	Records []RawRecord
	Next    Cursor
	HasMore bool
}

// FetchError reports a transport or decode failure for one page. It ends the
// run for that source; accumulated results are still returned.
type FetchError struct {
	Site   string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: fetch failed with status %d", e.Site, e.Status)
	}
	return fmt.Sprintf("%s: fetch failed: %v", e.Site, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Source is the contract every job site implements. The orchestrator drives
// a source page by page; it depends only on this interface.
//
// ExtractRecord has a three-way outcome: (job, nil) accepts the record,
// (nil, nil) skips a structurally incomplete record, and (nil, err) surfaces
// a defect to the caller (e.g. an unknown compensation interval).
type Source interface {
	Name() string

	// Delay returns the pacing constants: between page fetches the
	// orchestrator sleeps a duration drawn uniformly from [base, base+band].
	Delay() (base, band time.Duration)

	FetchPage(ctx context.Context, run *Run, cursor Cursor) (*Page, error)
	ExtractRecord(run *Run, raw RawRecord) (*models.JobPost, error)

	// DedupKey must be deterministic and stable across pages for the same
	// logical job. Empty means the record cannot be keyed and is passed
	// through without dedup.
	DedupKey(raw RawRecord) string
}
