package seen

import (
	"strings"

	"github.com/wassil-choujaa-account/JobSpy/internal/models"
)

const keySeparator = "::"

// DiffStats captures stats for A-B unseen filtering.
type DiffStats struct {
	TotalNew    int
	TotalSeen   int
	InvalidNew  int
	InvalidSeen int
	Unseen      int
}

// InvalidSkipped returns the total invalid records skipped during comparison.
func (s DiffStats) InvalidSkipped() int {
	return s.InvalidNew + s.InvalidSeen
}

// MergeStats captures stats for seen history updates.
type MergeStats struct {
	TotalSeen    int
	TotalInput   int
	InvalidSeen  int
	InvalidInput int
	Added        int
	TotalOut     int
}

// InvalidSkipped returns the total invalid records skipped during merge.
func (s MergeStats) InvalidSkipped() int {
	return s.InvalidSeen + s.InvalidInput
}

// Normalize applies the v1 key normalization.
func Normalize(value string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(value)))
	return strings.Join(fields, " ")
}

// Key builds the normalized title+company key for a posting. Site IDs are
// deliberately not part of the key so the same role found on two boards
// counts as seen.
func Key(job models.JobPost) (string, bool) {
	title := Normalize(job.Title)
	company := Normalize(job.CompanyName)
	if title == "" || company == "" {
		return "", false
	}
	return title + keySeparator + company, true
}

// Diff returns unseen postings from newJobs using existing history keys.
func Diff(newJobs []models.JobPost, history []models.JobPost) ([]models.JobPost, DiffStats) {
	stats := DiffStats{
		TotalNew:  len(newJobs),
		TotalSeen: len(history),
	}

	seenKeys := make(map[string]struct{}, len(history))
	for _, job := range history {
		key, ok := Key(job)
		if !ok {
			stats.InvalidSeen++
			continue
		}
		seenKeys[key] = struct{}{}
	}

	newKeys := make(map[string]struct{}, len(newJobs))
	unseen := make([]models.JobPost, 0, len(newJobs))
	for _, job := range newJobs {
		key, ok := Key(job)
		if !ok {
			stats.InvalidNew++
			continue
		}
		if _, exists := newKeys[key]; exists {
			continue
		}
		newKeys[key] = struct{}{}
		if _, exists := seenKeys[key]; exists {
			continue
		}
		unseen = append(unseen, job)
	}

	stats.Unseen = len(unseen)
	return unseen, stats
}

// Merge appends unique new postings into the seen history.
// Existing history entries win collisions.
func Merge(history []models.JobPost, input []models.JobPost) ([]models.JobPost, MergeStats) {
	stats := MergeStats{
		TotalSeen:  len(history),
		TotalInput: len(input),
	}

	keys := make(map[string]struct{}, len(history)+len(input))
	out := make([]models.JobPost, 0, len(history)+len(input))

	for _, job := range history {
		key, ok := Key(job)
		if !ok {
			stats.InvalidSeen++
			out = append(out, job)
			continue
		}
		if _, exists := keys[key]; exists {
			continue
		}
		keys[key] = struct{}{}
		out = append(out, job)
	}

	for _, job := range input {
		key, ok := Key(job)
		if !ok {
			stats.InvalidInput++
			continue
		}
		if _, exists := keys[key]; exists {
			continue
		}
		keys[key] = struct{}{}
		out = append(out, job)
		stats.Added++
	}

	stats.TotalOut = len(out)
	return out, stats
}
