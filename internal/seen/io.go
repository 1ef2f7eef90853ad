package seen

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/wassil-choujaa-account/JobSpy/internal/models"
)

// ReadJobs reads a JSON array of postings from path.
func ReadJobs(path string) ([]models.JobPost, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []models.JobPost{}, nil
	}

	var jobs []models.JobPost
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, err
	}
	if jobs == nil {
		return []models.JobPost{}, nil
	}
	return jobs, nil
}

// ReadJobsAllowMissing reads postings and treats missing files as empty history.
func ReadJobsAllowMissing(path string) ([]models.JobPost, error) {
	jobs, err := ReadJobs(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.JobPost{}, nil
		}
		return nil, err
	}
	return jobs, nil
}

// WriteJobs writes postings as pretty JSON.
func WriteJobs(path string, jobs []models.JobPost) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is required")
	}
	if jobs == nil {
		jobs = []models.JobPost{}
	}
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
