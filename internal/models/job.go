package models

import (
	"fmt"
	"strings"
	"time"
)

// JobType is a normalized employment type. A posting may carry zero or more.
type JobType string

const (
	JobTypeFullTime   JobType = "fulltime"
	JobTypePartTime   JobType = "parttime"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeTemporary  JobType = "temporary"
)

// jobTypeSynonyms maps normalized labels (lowercase, hyphens and spaces
// stripped) to the canonical enum value.
var jobTypeSynonyms = map[string]JobType{
	"fulltime":       JobTypeFullTime,
	"employee":       JobTypeFullTime,
	"permanent":      JobTypeFullTime,
	"parttime":       JobTypePartTime,
	"contract":       JobTypeContract,
	"contractor":     JobTypeContract,
	"freelance":      JobTypeContract,
	"internship":     JobTypeInternship,
	"intern":         JobTypeInternship,
	"apprenticeship": JobTypeInternship,
	"temporary":      JobTypeTemporary,
	"temp":           JobTypeTemporary,
	"seasonal":       JobTypeTemporary,
}

// ParseJobType matches a free-text label against the job type enumeration.
// Unmatched labels return ok=false, never an error.
func ParseJobType(label string) (JobType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ReplaceAll(normalized, "_", "")
	normalized = strings.ReplaceAll(normalized, " ", "")
	jobType, ok := jobTypeSynonyms[normalized]
	return jobType, ok
}

// CompensationInterval is the pay period of a compensation figure.
type CompensationInterval string

const (
	IntervalHourly  CompensationInterval = "hourly"
	IntervalDaily   CompensationInterval = "daily"
	IntervalWeekly  CompensationInterval = "weekly"
	IntervalMonthly CompensationInterval = "monthly"
	IntervalYearly  CompensationInterval = "yearly"
)

// UnsupportedIntervalError reports a pay period label outside the known
// vocabulary. It surfaces to the caller: an unknown label means the mapping
// table is incomplete, not a transient condition.
type UnsupportedIntervalError struct {
	Label string
}

func (e *UnsupportedIntervalError) Error() string {
	return fmt.Sprintf("unsupported compensation interval: %q", e.Label)
}

var intervalLabels = map[string]CompensationInterval{
	"HOUR":    IntervalHourly,
	"HOURLY":  IntervalHourly,
	"DAY":     IntervalDaily,
	"DAILY":   IntervalDaily,
	"WEEK":    IntervalWeekly,
	"WEEKLY":  IntervalWeekly,
	"MONTH":   IntervalMonthly,
	"MONTHLY": IntervalMonthly,
	"YEAR":    IntervalYearly,
	"YEARLY":  IntervalYearly,
	"ANNUAL":  IntervalYearly,
}

// ParseInterval maps a source pay period label to the interval enum.
func ParseInterval(label string) (CompensationInterval, error) {
	interval, ok := intervalLabels[strings.ToUpper(strings.TrimSpace(label))]
	if !ok {
		return "", &UnsupportedIntervalError{Label: label}
	}
	return interval, nil
}

// Compensation is the canonical pay tuple. Amounts are integers in the
// source's natural currency unit.
type Compensation struct {
	Interval  CompensationInterval `json:"interval,omitempty"`
	MinAmount int                  `json:"min_amount,omitempty"`
	MaxAmount int                  `json:"max_amount,omitempty"`
	Currency  string               `json:"currency,omitempty"`
}

func (c Compensation) String() string {
	var b strings.Builder
	if c.MinAmount > 0 {
		fmt.Fprintf(&b, "%d", c.MinAmount)
	}
	if c.MaxAmount > 0 && c.MaxAmount != c.MinAmount {
		if b.Len() > 0 {
			b.WriteString("-")
		}
		fmt.Fprintf(&b, "%d", c.MaxAmount)
	}
	if c.Currency != "" {
		b.WriteString(" " + c.Currency)
	}
	if c.Interval != "" {
		b.WriteString(" " + string(c.Interval))
	}
	return strings.TrimSpace(b.String())
}

// Location is a parsed job location.
type Location struct {
	City    string  `json:"city,omitempty"`
	State   string  `json:"state,omitempty"`
	Country Country `json:"country,omitempty"`
}

// DisplayLocation joins the present parts as "City, State, CODE".
func (l Location) DisplayLocation() string {
	parts := make([]string, 0, 3)
	if strings.TrimSpace(l.City) != "" {
		parts = append(parts, strings.TrimSpace(l.City))
	}
	if strings.TrimSpace(l.State) != "" {
		parts = append(parts, strings.TrimSpace(l.State))
	}
	if l.Country != "" && l.Country != CountryWorldwide && l.Country != CountryUSA {
		parts = append(parts, strings.ToUpper(l.Country.Code()))
	}
	return strings.Join(parts, ", ")
}

// JobPost is the normalized posting produced by every source.
type JobPost struct {
	ID           string `json:"id"`
	Site         string `json:"site"`
	Title        string `json:"title"`
	JobURL       string `json:"job_url"`
	JobURLDirect string `json:"job_url_direct,omitempty"`

	CompanyName         string  `json:"company_name,omitempty"`
	CompanyURL          string  `json:"company_url,omitempty"`
	CompanyURLDirect    string  `json:"company_url_direct,omitempty"`
	CompanyLogo         string  `json:"company_logo,omitempty"`
	CompanyIndustry     string  `json:"company_industry,omitempty"`
	CompanyAddresses    string  `json:"company_addresses,omitempty"`
	CompanyNumEmployees string  `json:"company_num_employees,omitempty"`
	CompanyRevenue      string  `json:"company_revenue,omitempty"`
	CompanyDescription  string  `json:"company_description,omitempty"`
	CompanyRating       float64 `json:"company_rating,omitempty"`
	CompanyReviewsCount int     `json:"company_reviews_count,omitempty"`

	Location     Location      `json:"location"`
	Compensation *Compensation `json:"compensation,omitempty"`
	JobTypes     []JobType     `json:"job_type,omitempty"`
	IsRemote     bool          `json:"is_remote,omitempty"`
	DatePosted   time.Time     `json:"date_posted,omitempty"`
	Description  string        `json:"description,omitempty"`
	Emails       []string      `json:"emails,omitempty"`

	JobLevel         string   `json:"job_level,omitempty"`
	Skills           []string `json:"skills,omitempty"`
	ExperienceRange  string   `json:"experience_range,omitempty"`
	VacancyCount     int      `json:"vacancy_count,omitempty"`
	WorkFromHomeType string   `json:"work_from_home_type,omitempty"`
}

// JobResponse is the ordered result of one scrape run. Jobs keep discovery
// order, already trimmed to the requested window.
type JobResponse struct {
	Jobs []JobPost `json:"jobs"`
}
