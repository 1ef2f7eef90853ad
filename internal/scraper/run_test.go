package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/wassil-choujaa-account/JobSpy/internal/models"
)

// fakeSource serves scripted pages of dedup keys. Keys listed in failKeys
// make extraction fail; keys in skipKeys extract to nothing. setup runs
// once with the Run before the first fetch, letting tests swap the pacing
// clock.
type fakeSource struct {
	pages     [][]string
	fetchErr  map[int]error
	failKeys  map[string]error
	skipKeys  map[string]bool
	delayBase time.Duration
	delayBand time.Duration
	setup     func(*Run)
	fetches   int
	extracted int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Delay() (time.Duration, time.Duration) {
	return f.delayBase, f.delayBand
}

func (f *fakeSource) FetchPage(ctx context.Context, run *Run, cursor Cursor) (*Page, error) {
	if f.setup != nil {
		f.setup(run)
		f.setup = nil
	}
	f.fetches++
	idx := cursor.Page - 1
	if err, ok := f.fetchErr[cursor.Page]; ok {
		return nil, err
	}
	if idx >= len(f.pages) {
		return &Page{}, nil
	}
	page := &Page{Next: Cursor{Page: cursor.Page + 1}, HasMore: idx+1 < len(f.pages)}
	for _, key := range f.pages[idx] {
		page.Records = append(page.Records, key)
	}
	return page, nil
}

func (f *fakeSource) DedupKey(raw RawRecord) string {
	return raw.(string)
}

func (f *fakeSource) ExtractRecord(run *Run, raw RawRecord) (*models.JobPost, error) {
	key := raw.(string)
	if err, ok := f.failKeys[key]; ok {
		return nil, err
	}
	if f.skipKeys[key] {
		return nil, nil
	}
	f.extracted++
	return &models.JobPost{ID: key, Site: "fake", Title: "Role " + key, CompanyName: "Acme"}, nil
}

func TestScrapeFillsWindow(t *testing.T) {
	source := &fakeSource{pages: [][]string{{"a", "b", "c"}, {"d", "e", "f"}}}

	resp, err := Scrape(context.Background(), source, models.ScraperInput{ResultsWanted: 4})
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(resp.Jobs) != 4 {
		t.Fatalf("len(jobs) = %d, want 4", len(resp.Jobs))
	}
	if resp.Jobs[0].ID != "a" || resp.Jobs[3].ID != "d" {
		t.Fatalf("unexpected window: %v ... %v", resp.Jobs[0].ID, resp.Jobs[3].ID)
	}
}

func TestScrapeAppliesOffset(t *testing.T) {
	source := &fakeSource{pages: [][]string{{"a", "b", "c", "d", "e"}}}

	resp, err := Scrape(context.Background(), source, models.ScraperInput{ResultsWanted: 2, Offset: 2})
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(resp.Jobs) != 2 {
		t.Fatalf("len(jobs) = %d, want 2", len(resp.Jobs))
	}
	if resp.Jobs[0].ID != "c" || resp.Jobs[1].ID != "d" {
		t.Fatalf("unexpected offset window: %v, %v", resp.Jobs[0].ID, resp.Jobs[1].ID)
	}
}

func TestScrapeOffsetBeyondResults(t *testing.T) {
	source := &fakeSource{pages: [][]string{{"a", "b"}}}

	resp, err := Scrape(context.Background(), source, models.ScraperInput{ResultsWanted: 5, Offset: 10})
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(resp.Jobs) != 0 {
		t.Fatalf("len(jobs) = %d, want 0", len(resp.Jobs))
	}
}

func TestScrapeDeduplicatesAcrossPages(t *testing.T) {
	source := &fakeSource{pages: [][]string{{"a", "b", "a"}, {"b", "c"}}}

	resp, err := Scrape(context.Background(), source, models.ScraperInput{ResultsWanted: 10})
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(resp.Jobs) != 3 {
		t.Fatalf("len(jobs) = %d, want 3", len(resp.Jobs))
	}
	seen := map[string]bool{}
	for _, job := range resp.Jobs {
		if seen[job.ID] {
			t.Fatalf("duplicate job %q in results", job.ID)
		}
		seen[job.ID] = true
	}
}

func TestScrapeStopsOnStagnantPage(t *testing.T) {
	// Page two repeats page one; page three would add new records but must
	// never be fetched.
	source := &fakeSource{pages: [][]string{{"a", "b"}, {"a", "b"}, {"c", "d"}}}

	resp, err := Scrape(context.Background(), source, models.ScraperInput{ResultsWanted: 10})
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(resp.Jobs) != 2 {
		t.Fatalf("len(jobs) = %d, want 2", len(resp.Jobs))
	}
	if source.fetches != 2 {
		t.Fatalf("fetches = %d, want 2", source.fetches)
	}
}

func TestScrapeFetchErrorYieldsPartialResults(t *testing.T) {
	source := &fakeSource{
		pages:    [][]string{{"a", "b"}, {"c"}},
		fetchErr: map[int]error{2: &FetchError{Site: "fake", Status: 403}},
	}

	resp, err := Scrape(context.Background(), source, models.ScraperInput{ResultsWanted: 10})
	if err != nil {
		t.Fatalf("fetch failures must not surface as run errors, got %v", err)
	}
	if len(resp.Jobs) != 2 {
		t.Fatalf("len(jobs) = %d, want 2", len(resp.Jobs))
	}
}

func TestScrapeExtractionFailureIsFatal(t *testing.T) {
	wantErr := fmt.Errorf("malformed record")
	source := &fakeSource{
		pages:    [][]string{{"a", "bad", "b"}},
		failKeys: map[string]error{"bad": wantErr},
	}

	resp, err := Scrape(context.Background(), source, models.ScraperInput{ResultsWanted: 10})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Scrape() error = %v, want %v", err, wantErr)
	}
	if resp == nil || len(resp.Jobs) != 1 {
		t.Fatalf("expected partial results before the failure, got %+v", resp)
	}
}

func TestScrapeSkipsIncompleteRecords(t *testing.T) {
	source := &fakeSource{
		pages:    [][]string{{"a", "thin", "b"}},
		skipKeys: map[string]bool{"thin": true},
	}

	resp, err := Scrape(context.Background(), source, models.ScraperInput{ResultsWanted: 10})
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(resp.Jobs) != 2 {
		t.Fatalf("len(jobs) = %d, want 2", len(resp.Jobs))
	}
}

func TestScrapeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	source := &fakeSource{pages: [][]string{{"a", "b"}}}

	resp, err := Scrape(ctx, source, models.ScraperInput{ResultsWanted: 10})
	if err != nil {
		t.Fatalf("cancellation must not surface as a run error, got %v", err)
	}
	if len(resp.Jobs) != 0 {
		t.Fatalf("len(jobs) = %d, want 0", len(resp.Jobs))
	}
	if source.fetches != 0 {
		t.Fatalf("fetches = %d, want 0", source.fetches)
	}
}

func TestScrapePausesBetweenPages(t *testing.T) {
	source := &fakeSource{
		pages:     [][]string{{"a", "b"}, {"c", "d"}, {"e", "f"}},
		delayBase: 2 * time.Second,
		delayBand: time.Second,
	}
	var slept []time.Duration
	source.setup = func(run *Run) {
		run.sleep = func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}
	}

	resp, err := Scrape(context.Background(), source, models.ScraperInput{ResultsWanted: 6})
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(resp.Jobs) != 6 {
		t.Fatalf("len(jobs) = %d, want 6", len(resp.Jobs))
	}
	// No pause before the first fetch, one before each of the rest.
	if len(slept) != 2 {
		t.Fatalf("sleeps = %d, want 2", len(slept))
	}
	for _, d := range slept {
		if d < 2*time.Second || d >= 3*time.Second {
			t.Errorf("delay = %v, want in [2s, 3s)", d)
		}
	}
}

func TestScrapeCancelledDuringPause(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source := &fakeSource{
		pages:     [][]string{{"a", "b"}, {"c", "d"}},
		delayBase: time.Second,
	}
	source.setup = func(run *Run) {
		run.sleep = func(ctx context.Context, d time.Duration) error {
			cancel()
			<-ctx.Done()
			return ctx.Err()
		}
	}

	resp, err := Scrape(ctx, source, models.ScraperInput{ResultsWanted: 10})
	if err != nil {
		t.Fatalf("cancellation must not surface as a run error, got %v", err)
	}
	if len(resp.Jobs) != 2 {
		t.Fatalf("len(jobs) = %d, want the first page only", len(resp.Jobs))
	}
	if source.fetches != 1 {
		t.Fatalf("fetches = %d, want 1", source.fetches)
	}
}

func TestSleepCtxCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepCtx(ctx, time.Hour); err == nil {
		t.Fatal("expected a context error")
	}
}

func TestScrapeRejectsInvalidInput(t *testing.T) {
	source := &fakeSource{pages: [][]string{{"a"}}}

	_, err := Scrape(context.Background(), source, models.ScraperInput{ResultsWanted: 5, Offset: -1})
	var inputErr *models.InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("Scrape() error = %v, want InputError", err)
	}
	if source.fetches != 0 {
		t.Fatalf("validation must run before any fetch, fetches = %d", source.fetches)
	}
}

func TestScrapeStopsOnEmptyPage(t *testing.T) {
	source := &fakeSource{pages: [][]string{{"a"}, {}}}

	resp, err := Scrape(context.Background(), source, models.ScraperInput{ResultsWanted: 10})
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if len(resp.Jobs) != 1 {
		t.Fatalf("len(jobs) = %d, want 1", len(resp.Jobs))
	}
}

func TestScrapeAllCollectsResultsAndFailures(t *testing.T) {
	good := &fakeSource{pages: [][]string{{"a", "b"}}}
	bad := &fakeSource{
		pages:    [][]string{{"x"}},
		failKeys: map[string]error{"x": fmt.Errorf("boom")},
	}

	jobs, failures := ScrapeAll(context.Background(), []Source{good, bad}, models.ScraperInput{ResultsWanted: 5})
	if len(jobs) != 2 {
		t.Fatalf("len(jobs) = %d, want 2", len(jobs))
	}
	if len(failures) != 1 {
		t.Fatalf("len(failures) = %d, want 1", len(failures))
	}
	if failures[0].Site != "fake" {
		t.Fatalf("failure site = %q", failures[0].Site)
	}
}

func TestFetchErrorMessage(t *testing.T) {
	err := &FetchError{Site: "fake", Status: 429}
	if err.Error() == "" {
		t.Fatalf("empty error message")
	}
	wrapped := &FetchError{Site: "fake", Err: fmt.Errorf("inner")}
	if errors.Unwrap(wrapped) == nil {
		t.Fatalf("expected unwrap to return inner error")
	}
}
