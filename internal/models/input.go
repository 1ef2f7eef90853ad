package models

import "fmt"

// DescriptionFormat selects how job descriptions are rendered.
type DescriptionFormat string

const (
	FormatMarkdown DescriptionFormat = "markdown"
	FormatPlain    DescriptionFormat = "plain"
)

const (
	DefaultResultsWanted = 15
	DefaultDistance      = 50
)

// InputError reports an invalid ScraperInput. It is raised before any
// network activity happens.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid scraper input: %s %s", e.Field, e.Reason)
}

// ScraperInput is the immutable query descriptor for one scrape run. It is
// owned by the caller and read-only to the orchestration core.
type ScraperInput struct {
	SearchTerm       string
	GoogleSearchTerm string
	Location         string
	Distance         int
	Country          Country
	IsRemote         bool
	JobType          JobType
	EasyApply        bool
	HoursOld         int
	ResultsWanted    int
	Offset           int

	DescriptionFormat DescriptionFormat
	FetchDescription  bool
}

// Normalized returns a copy with defaults applied.
func (s ScraperInput) Normalized() ScraperInput {
	if s.ResultsWanted == 0 {
		s.ResultsWanted = DefaultResultsWanted
	}
	if s.Distance == 0 {
		s.Distance = DefaultDistance
	}
	if s.Country == "" {
		s.Country = CountryUSA
	}
	if s.DescriptionFormat == "" {
		s.DescriptionFormat = FormatMarkdown
	}
	return s
}

// Validate rejects inputs that can never produce a meaningful run.
func (s ScraperInput) Validate() error {
	if s.ResultsWanted <= 0 {
		return &InputError{Field: "results_wanted", Reason: "must be positive"}
	}
	if s.Offset < 0 {
		return &InputError{Field: "offset", Reason: "must not be negative"}
	}
	if s.Distance < 0 {
		return &InputError{Field: "distance", Reason: "must not be negative"}
	}
	if s.HoursOld < 0 {
		return &InputError{Field: "hours_old", Reason: "must not be negative"}
	}
	return nil
}
