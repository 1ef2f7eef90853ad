package cmd

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/wassil-choujaa-account/JobSpy/internal/config"
	"github.com/wassil-choujaa-account/JobSpy/internal/export"
	"github.com/wassil-choujaa-account/JobSpy/internal/models"
	"github.com/wassil-choujaa-account/JobSpy/internal/seen"
)

func TestResolveFormatWithOutputPathRespectsGlobalFlags(t *testing.T) {
	ctx := &Context{Out: io.Discard, JSONOutput: true}
	got, err := resolveFormat(ctx, SearchOptions{}, "jobs.json")
	if err != nil {
		t.Fatalf("resolveFormat() error = %v", err)
	}
	if got != export.FormatJSON {
		t.Fatalf("resolveFormat() = %q, want %q", got, export.FormatJSON)
	}

	ctx = &Context{Out: io.Discard, PlainText: true}
	got, err = resolveFormat(ctx, SearchOptions{}, "jobs.tsv")
	if err != nil {
		t.Fatalf("resolveFormat() error = %v", err)
	}
	if got != export.FormatTSV {
		t.Fatalf("resolveFormat() = %q, want %q", got, export.FormatTSV)
	}
}

func TestBuildInput(t *testing.T) {
	cfg := config.Config{DefaultCountry: "usa", DefaultResults: 15, DescriptionFormat: "markdown"}

	t.Run("defaults from config", func(t *testing.T) {
		input, err := buildInput(cfg, SearchOptions{})
		if err != nil {
			t.Fatalf("buildInput() error = %v", err)
		}
		if input.Country != models.CountryUSA {
			t.Fatalf("Country = %q, want %q", input.Country, models.CountryUSA)
		}
		if input.ResultsWanted != 15 {
			t.Fatalf("ResultsWanted = %d, want 15", input.ResultsWanted)
		}
		if input.DescriptionFormat != models.FormatMarkdown {
			t.Fatalf("DescriptionFormat = %q, want markdown", input.DescriptionFormat)
		}
	})

	t.Run("flags override config", func(t *testing.T) {
		input, err := buildInput(cfg, SearchOptions{
			Country:   "india",
			Results:   40,
			JobType:   "fulltime",
			Plaintext: true,
			Remote:    true,
		})
		if err != nil {
			t.Fatalf("buildInput() error = %v", err)
		}
		if input.Country != models.CountryIndia {
			t.Fatalf("Country = %q, want %q", input.Country, models.CountryIndia)
		}
		if input.ResultsWanted != 40 {
			t.Fatalf("ResultsWanted = %d, want 40", input.ResultsWanted)
		}
		if input.JobType != models.JobTypeFullTime {
			t.Fatalf("JobType = %q, want fulltime", input.JobType)
		}
		if input.DescriptionFormat != models.FormatPlain {
			t.Fatalf("DescriptionFormat = %q, want plain", input.DescriptionFormat)
		}
		if !input.IsRemote {
			t.Fatalf("IsRemote = false, want true")
		}
	})

	t.Run("unknown country rejected", func(t *testing.T) {
		if _, err := buildInput(cfg, SearchOptions{Country: "atlantis"}); err == nil {
			t.Fatalf("buildInput() error = nil, want error")
		}
	})
}

func TestUpdateSeenHistoryCreatesFileAndMerges(t *testing.T) {
	dir := t.TempDir()
	seenPath := filepath.Join(dir, "jobs_seen.json")

	input := []models.JobPost{
		{Site: "test", Title: "Hardware Engineer", CompanyName: "Acme", JobURL: "https://example.com/1"},
	}

	if err := updateSeenHistory(seenPath, input); err != nil {
		t.Fatalf("updateSeenHistory() error = %v", err)
	}

	got, err := seen.ReadJobs(seenPath)
	if err != nil {
		t.Fatalf("ReadJobs() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}

	// Calling it again with the same job should be idempotent.
	if err := updateSeenHistory(seenPath, input); err != nil {
		t.Fatalf("updateSeenHistory() (2nd) error = %v", err)
	}
	got, err = seen.ReadJobs(seenPath)
	if err != nil {
		t.Fatalf("ReadJobs() (2nd) error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) after 2nd update = %d, want 1", len(got))
	}

	// Add a second distinct job.
	input2 := []models.JobPost{
		{Site: "test", Title: "Hardware Engineer", CompanyName: "Acme", JobURL: "https://example.com/1"},
		{Site: "test", Title: "Embedded Engineer", CompanyName: "Beta", JobURL: "https://example.com/2"},
	}
	if err := updateSeenHistory(seenPath, input2); err != nil {
		t.Fatalf("updateSeenHistory() (3rd) error = %v", err)
	}
	got, err = seen.ReadJobs(seenPath)
	if err != nil {
		t.Fatalf("ReadJobs() (3rd) error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) after 3rd update = %d, want 2", len(got))
	}
}

func TestResolveQueriesPositional(t *testing.T) {
	t.Run("single query", func(t *testing.T) {
		got, err := resolveQueries("software engineer", "")
		if err != nil {
			t.Fatalf("resolveQueries() error = %v", err)
		}
		want := []string{"software engineer"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("resolveQueries() = %#v, want %#v", got, want)
		}
	})

	t.Run("multi query with spaces", func(t *testing.T) {
		got, err := resolveQueries("software engineer, hardware engineer", "")
		if err != nil {
			t.Fatalf("resolveQueries() error = %v", err)
		}
		want := []string{"software engineer", "hardware engineer"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("resolveQueries() = %#v, want %#v", got, want)
		}
	})

	t.Run("empty tokens removed", func(t *testing.T) {
		got, err := resolveQueries("software engineer, , Data Scientist", "")
		if err != nil {
			t.Fatalf("resolveQueries() error = %v", err)
		}
		want := []string{"software engineer", "Data Scientist"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("resolveQueries() = %#v, want %#v", got, want)
		}
	})

	t.Run("case-insensitive dedupe keeps first token", func(t *testing.T) {
		got, err := resolveQueries("Backend,backend, BACKEND", "")
		if err != nil {
			t.Fatalf("resolveQueries() error = %v", err)
		}
		want := []string{"Backend"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("resolveQueries() = %#v, want %#v", got, want)
		}
	})

	t.Run("max query validation", func(t *testing.T) {
		input := strings.Join([]string{
			"q1", "q2", "q3", "q4", "q5",
			"q6", "q7", "q8", "q9", "q10", "q11",
		}, ",")
		_, err := resolveQueries(input, "")
		if err == nil {
			t.Fatalf("resolveQueries() error = nil, want error")
		}
		if err.Error() != "too many queries: max 10" {
			t.Fatalf("resolveQueries() error = %q, want %q", err.Error(), "too many queries: max 10")
		}
	})

	t.Run("empty input validation", func(t *testing.T) {
		_, err := resolveQueries(" ,  , ", "")
		if err == nil {
			t.Fatalf("resolveQueries() error = nil, want error")
		}
		if err.Error() != "at least one non-empty query is required" {
			t.Fatalf("resolveQueries() error = %q, want %q", err.Error(), "at least one non-empty query is required")
		}
	})
}

func TestLoadQueriesFromJSON(t *testing.T) {
	t.Run("top-level string array", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "queries.json")
		content := `["software engineer","  Data Scientist  ",""]`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		got, err := loadQueriesFromJSON(path)
		if err != nil {
			t.Fatalf("loadQueriesFromJSON() error = %v", err)
		}
		want := []string{"software engineer", "Data Scientist"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("loadQueriesFromJSON() = %#v, want %#v", got, want)
		}
	})

	t.Run("object with job_titles", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "queries.json")
		content := `{"job_titles":["Backend Engineer","backend engineer","SRE"]}`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		got, err := loadQueriesFromJSON(path)
		if err != nil {
			t.Fatalf("loadQueriesFromJSON() error = %v", err)
		}
		want := []string{"Backend Engineer", "backend engineer", "SRE"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("loadQueriesFromJSON() = %#v, want %#v", got, want)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "queries.json")
		content := `{"job_titles":[`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		_, err := loadQueriesFromJSON(path)
		if err == nil {
			t.Fatalf("loadQueriesFromJSON() error = nil, want error")
		}
		if !strings.Contains(err.Error(), "parse --query-file") {
			t.Fatalf("loadQueriesFromJSON() error = %q, want parse --query-file message", err.Error())
		}
	})

	t.Run("unsupported schema", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "queries.json")
		content := `{"queries":["backend"]}`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		_, err := loadQueriesFromJSON(path)
		if err == nil {
			t.Fatalf("loadQueriesFromJSON() error = nil, want error")
		}
		if !strings.Contains(err.Error(), "expected top-level string array or object with \"job_titles\" string array") {
			t.Fatalf("loadQueriesFromJSON() error = %q, want schema message", err.Error())
		}
	})

	t.Run("non-string entry", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "queries.json")
		content := `{"job_titles":["backend",123]}`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		_, err := loadQueriesFromJSON(path)
		if err == nil {
			t.Fatalf("loadQueriesFromJSON() error = nil, want error")
		}
		if !strings.Contains(err.Error(), "job_titles[1] must be a string") {
			t.Fatalf("loadQueriesFromJSON() error = %q, want non-string index message", err.Error())
		}
	})
}

func TestResolveQueries(t *testing.T) {
	t.Run("query-file only", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "queries.json")
		content := `{"job_titles":["Backend","SRE"]}`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		got, err := resolveQueries("", path)
		if err != nil {
			t.Fatalf("resolveQueries() error = %v", err)
		}
		want := []string{"Backend", "SRE"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("resolveQueries() = %#v, want %#v", got, want)
		}
	})

	t.Run("positional plus query-file preserves first and dedupes case-insensitively", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "queries.json")
		content := `{"job_titles":["backend","ML Engineer","  "]}`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		got, err := resolveQueries("Backend,Data Engineer", path)
		if err != nil {
			t.Fatalf("resolveQueries() error = %v", err)
		}
		want := []string{"Backend", "Data Engineer", "ML Engineer"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("resolveQueries() = %#v, want %#v", got, want)
		}
	})

	t.Run("combined sources enforce max query validation", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "queries.json")
		content := `{"job_titles":["q7","q8","q9","q10","q11"]}`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		_, err := resolveQueries("q1,q2,q3,q4,q5,q6", path)
		if err == nil {
			t.Fatalf("resolveQueries() error = nil, want error")
		}
		if err.Error() != "too many queries: max 10" {
			t.Fatalf("resolveQueries() error = %q, want %q", err.Error(), "too many queries: max 10")
		}
	})

	t.Run("both sources empty returns validation error", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "queries.json")
		content := `{"job_titles":[" ",""]}`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		_, err := resolveQueries(" , ", path)
		if err == nil {
			t.Fatalf("resolveQueries() error = nil, want error")
		}
		if err.Error() != "at least one non-empty query is required" {
			t.Fatalf("resolveQueries() error = %q, want %q", err.Error(), "at least one non-empty query is required")
		}
	})
}

func TestMergeUniqueJobsDedupesAcrossQueries(t *testing.T) {
	existing := []models.JobPost{
		{Site: "linkedin", Title: "Backend Engineer", CompanyName: "Acme", JobURL: "https://example.com/1"},
		{Site: "indeed", JobURL: "https://example.com/fallback"},
	}
	incoming := []models.JobPost{
		{Site: "glassdoor", Title: " backend engineer ", CompanyName: "ACME", JobURL: "https://example.com/other"},
		{Site: "ziprecruiter", JobURL: "https://example.com/fallback"},
		{Site: "linkedin", Title: "Data Engineer", CompanyName: "Acme", JobURL: "https://example.com/2"},
		{Site: "bayt"},
	}

	got := mergeUniqueJobs(existing, incoming)
	if len(got) != 4 {
		t.Fatalf("len(got) = %d, want 4", len(got))
	}
	if got[0].Title != "Backend Engineer" || got[1].JobURL != "https://example.com/fallback" {
		t.Fatalf("existing jobs order/values changed: %#v", got[:2])
	}
	if got[2].Title != "Data Engineer" {
		t.Fatalf("expected unique incoming job at index 2, got %#v", got[2])
	}
	if got[3].Site != "bayt" {
		t.Fatalf("expected invalid-key incoming job at index 3, got %#v", got[3])
	}
}

func TestMergeUniqueJobsKeepsSingleQueryDuplicates(t *testing.T) {
	incoming := []models.JobPost{
		{Site: "linkedin", Title: "Backend Engineer", CompanyName: "Acme", JobURL: "https://example.com/1"},
		{Site: "indeed", Title: "Backend Engineer", CompanyName: "Acme", JobURL: "https://example.com/2"},
	}

	got := mergeUniqueJobs(nil, incoming)
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
}

func TestMultiQuerySeenWorkflow(t *testing.T) {
	dir := t.TempDir()
	seenPath := filepath.Join(dir, "jobs_seen.json")

	seenSeed := []models.JobPost{
		{Site: "linkedin", Title: "Platform Engineer", CompanyName: "Acme", JobURL: "https://example.com/seed"},
	}
	if err := seen.WriteJobs(seenPath, seenSeed); err != nil {
		t.Fatalf("WriteJobs() seed error = %v", err)
	}

	queryOne := []models.JobPost{
		{Site: "linkedin", Title: "Platform Engineer", CompanyName: "Acme", JobURL: "https://example.com/seed"},
		{Site: "indeed", Title: "Hardware Engineer", CompanyName: "Beta", JobURL: "https://example.com/1"},
	}
	queryTwo := []models.JobPost{
		{Site: "glassdoor", Title: "Hardware Engineer", CompanyName: "beta", JobURL: "https://example.com/dup"},
		{Site: "ziprecruiter", Title: "Data Engineer", CompanyName: "Gamma", JobURL: "https://example.com/2"},
	}

	merged := mergeUniqueJobs(nil, queryOne)
	merged = mergeUniqueJobs(merged, queryTwo)
	if len(merged) != 3 {
		t.Fatalf("len(merged) = %d, want 3", len(merged))
	}

	history, err := seen.ReadJobsAllowMissing(seenPath)
	if err != nil {
		t.Fatalf("ReadJobsAllowMissing() error = %v", err)
	}
	unseenJobs, _ := seen.Diff(merged, history)
	if len(unseenJobs) != 2 {
		t.Fatalf("len(unseenJobs) = %d, want 2", len(unseenJobs))
	}

	if err := updateSeenHistory(seenPath, unseenJobs); err != nil {
		t.Fatalf("updateSeenHistory() error = %v", err)
	}
	updatedSeen, err := seen.ReadJobs(seenPath)
	if err != nil {
		t.Fatalf("ReadJobs() error = %v", err)
	}
	if len(updatedSeen) != 3 {
		t.Fatalf("len(updatedSeen) = %d, want 3", len(updatedSeen))
	}
}
