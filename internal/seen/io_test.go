package seen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wassil-choujaa-account/JobSpy/internal/models"
)

func TestReadWriteJobs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.json")

	jobs := []models.JobPost{{Title: "SRE", CompanyName: "Acme", JobURL: "https://example.com/1"}}
	if err := WriteJobs(path, jobs); err != nil {
		t.Fatalf("WriteJobs() error = %v", err)
	}

	got, err := ReadJobs(path)
	if err != nil {
		t.Fatalf("ReadJobs() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected len=1, got %d", len(got))
	}
	if got[0].Title != jobs[0].Title || got[0].CompanyName != jobs[0].CompanyName {
		t.Fatalf("unexpected job read back: %+v", got[0])
	}
}

func TestReadJobsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadJobs(path)
	if err != nil {
		t.Fatalf("ReadJobs() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty history, got %d", len(got))
	}
}

func TestReadJobsAllowMissing(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.json")

	got, err := ReadJobsAllowMissing(missing)
	if err != nil {
		t.Fatalf("ReadJobsAllowMissing() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty jobs for missing file, got %d", len(got))
	}
}
