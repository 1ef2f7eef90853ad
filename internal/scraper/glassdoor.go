package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wassil-choujaa-account/JobSpy/internal/models"
	"github.com/wassil-choujaa-account/JobSpy/internal/network"
)

const (
	glassdoorBaseURL = "https://www.glassdoor.com"
	glassdoorPerPage = 30
	// Fallback token accepted by the public graph endpoint.
	glassdoorCSRFToken = "Ft6oHEWlRZrxDww95Cpazw:0pGUrkb2y3TyOpAIqF2vbPmUXoXVkD3oEGDVkvfeCerceQ5-n8mBg3BovySUIjmCPHCaW0H2nQVdqzbtsYqf4Q:wcqRqeegRUa9MVLJGyujVXB7vWFPjdaS1CtrrzJq-ok"
)

// Glassdoor queries the graph API. Pagination is page-numbered, but each
// response carries an explicit cursor per upcoming page number which must be
// echoed back.
type Glassdoor struct {
	client *network.Client
}

func NewGlassdoor(client *network.Client) *Glassdoor {
	return &Glassdoor{client: client}
}

func (g *Glassdoor) Name() string { return SiteGlassdoor }

func (g *Glassdoor) Delay() (time.Duration, time.Duration) {
	return 1 * time.Second, 2 * time.Second
}

type glassdoorJob struct {
	JobView struct {
		Job struct {
			ListingID    int64  `json:"listingId"`
			JobTitleText string `json:"jobTitleText"`
		} `json:"job"`
		Header struct {
			Employer struct {
				Name string `json:"name"`
			} `json:"employer"`
			EmployerNameFromSearch string        `json:"employerNameFromSearch"`
			LocationName           string        `json:"locationName"`
			LocationType           string        `json:"locationType"`
			AgeInDays              int           `json:"ageInDays"`
			PayPeriod              string        `json:"payPeriod"`
			PayCurrency            string        `json:"payCurrency"`
			PayPeriodAdjustedPay   *glassdoorPay `json:"payPeriodAdjustedPay"`
			SeoJobLink             string        `json:"seoJobLink"`
		} `json:"header"`
	} `json:"jobview"`
}

type glassdoorPay struct {
	P10 float64 `json:"p10"`
	P90 float64 `json:"p90"`
}

type glassdoorCursorEntry struct {
	Cursor     string `json:"cursor"`
	PageNumber int    `json:"pageNumber"`
}

type glassdoorSearchResponse []struct {
	Data struct {
		JobListings struct {
			JobListings       []glassdoorJob         `json:"jobListings"`
			PaginationCursors []glassdoorCursorEntry `json:"paginationCursors"`
			TotalJobsCount    int                    `json:"totalJobsCount"`
		} `json:"jobListings"`
	} `json:"data"`
}

func (g *Glassdoor) FetchPage(ctx context.Context, run *Run, cursor Cursor) (*Page, error) {
	payload, err := encodeJSON([]map[string]any{{
		"operationName": "JobSearchResultsQuery",
		"variables": map[string]any{
			"keyword":         run.Input.SearchTerm,
			"locationName":    run.Input.Location,
			"numJobsToShow":   glassdoorPerPage,
			"pageNumber":      cursor.Page,
			"pageCursor":      cursor.Token,
			"fromage":         glassdoorDays(run.Input.HoursOld),
			"sortBy":          "DATE_DESC",
			"filterParams":    glassdoorFilters(run.Input),
		},
		"query": glassdoorSearchQuery,
	}})
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"content-type":             "application/json",
		"apollographql-client-name": "job-search-next",
		"gd-csrf-token":            glassdoorCSRFToken,
	}

	var decoded glassdoorSearchResponse
	if err := fetchJSON(ctx, g.client, SiteGlassdoor, "POST", glassdoorBaseURL+"/graph", headers, payload, &decoded); err != nil {
		return nil, err
	}
	if len(decoded) == 0 {
		return &Page{}, nil
	}

	listings := decoded[0].Data.JobListings
	page := &Page{Records: make([]RawRecord, 0, len(listings.JobListings))}
	for _, job := range listings.JobListings {
		page.Records = append(page.Records, job)
	}

	nextPage := cursor.Page + 1
	page.Next = Cursor{
		Page:  nextPage,
		Token: glassdoorCursorForPage(listings.PaginationCursors, nextPage),
	}
	page.HasMore = page.Next.Token != "" && len(listings.JobListings) > 0
	return page, nil
}

// glassdoorCursorForPage finds the cursor the API handed out for a given
// upcoming page number.
func glassdoorCursorForPage(cursors []glassdoorCursorEntry, pageNum int) string {
	for _, entry := range cursors {
		if entry.PageNumber == pageNum {
			return entry.Cursor
		}
	}
	return ""
}

func (g *Glassdoor) DedupKey(raw RawRecord) string {
	job, ok := raw.(glassdoorJob)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d", job.JobView.Job.ListingID)
}

func (g *Glassdoor) ExtractRecord(run *Run, raw RawRecord) (*models.JobPost, error) {
	job, ok := raw.(glassdoorJob)
	if !ok {
		return nil, nil
	}
	header := job.JobView.Header
	title := job.JobView.Job.JobTitleText
	if title == "" || job.JobView.Job.ListingID == 0 {
		return nil, nil
	}

	compensation, err := glassdoorCompensation(header.PayPeriod, header.PayCurrency, header.PayPeriodAdjustedPay)
	if err != nil {
		return nil, err
	}

	company := header.Employer.Name
	if company == "" {
		company = header.EmployerNameFromSearch
	}

	jobURL := header.SeoJobLink
	if jobURL == "" {
		jobURL = fmt.Sprintf("%s/job-listing/j?jl=%d", glassdoorBaseURL, job.JobView.Job.ListingID)
	}

	location := glassdoorLocation(header.LocationName)
	post := &models.JobPost{
		ID:           fmt.Sprintf("gd-%d", job.JobView.Job.ListingID),
		Site:         SiteGlassdoor,
		Title:        title,
		JobURL:       jobURL,
		CompanyName:  company,
		Location:     location,
		Compensation: compensation,
		IsRemote:     strings.EqualFold(header.LocationType, "S") || isJobRemote(title, "", models.Location{City: header.LocationName}),
	}
	if header.AgeInDays >= 0 {
		post.DatePosted = time.Now().UTC().AddDate(0, 0, -header.AgeInDays).Truncate(24 * time.Hour)
	}
	return post, nil
}

func glassdoorCompensation(payPeriod, currency string, pay *glassdoorPay) (*models.Compensation, error) {
	if payPeriod == "" || pay == nil {
		return nil, nil
	}
	interval, err := models.ParseInterval(payPeriod)
	if err != nil {
		return nil, err
	}
	if currency == "" {
		currency = "USD"
	}
	return &models.Compensation{
		Interval:  interval,
		MinAmount: int(pay.P10),
		MaxAmount: int(pay.P90),
		Currency:  currency,
	}, nil
}

// glassdoorLocation splits "City, ST"; the literal "Remote" carries no
// geography.
func glassdoorLocation(name string) models.Location {
	if name == "" || strings.EqualFold(name, "Remote") {
		return models.Location{}
	}
	return parseLocationString(name, "")
}

func glassdoorDays(hoursOld int) int {
	if hoursOld <= 0 {
		return 0
	}
	days := hoursOld / 24
	if days < 1 {
		days = 1
	}
	return days
}

func glassdoorFilters(input models.ScraperInput) []map[string]string {
	var filters []map[string]string
	if input.JobType != "" {
		filters = append(filters, map[string]string{"filterKey": "jobType", "values": string(input.JobType)})
	}
	if input.IsRemote {
		filters = append(filters, map[string]string{"filterKey": "applyRemoteWorkplace", "values": "true"})
	}
	if input.EasyApply {
		filters = append(filters, map[string]string{"filterKey": "applicationType", "values": "1"})
	}
	return filters
}

// Trimmed to the fields ExtractRecord reads.
const glassdoorSearchQuery = `
query JobSearchResultsQuery($keyword: String, $locationName: String, $numJobsToShow: Int!, $pageCursor: String, $pageNumber: Int, $fromage: Int, $sortBy: String, $filterParams: [FilterParams]) {
  jobListings(
    contextHolder: {searchParams: {keyword: $keyword, locationName: $locationName, numPerPage: $numJobsToShow, pageCursor: $pageCursor, pageNumber: $pageNumber, fromage: $fromage, sortBy: $sortBy, filterParams: $filterParams}}
  ) {
    jobListings {
      jobview {
        job {
          listingId
          jobTitleText
        }
        header {
          employer {
            name
          }
          employerNameFromSearch
          locationName
          locationType
          ageInDays
          payPeriod
          payCurrency
          payPeriodAdjustedPay {
            p10
            p90
          }
          seoJobLink
        }
      }
    }
    paginationCursors {
      cursor
      pageNumber
    }
    totalJobsCount
  }
}`
