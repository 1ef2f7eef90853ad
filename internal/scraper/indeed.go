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
	indeedAPIURL  = "https://apis.indeed.com/graphql"
	indeedAPIKey  = "161092c2017b5bbab13edb12461a62d5a833871e7cad6d9d475304573de67ac8"
	indeedPerPage = 100
)

// indeedJobTypeKeys are Indeed's internal attribute keys for employment
// type filters; remote is its own attribute.
var indeedJobTypeKeys = map[models.JobType]string{
	models.JobTypeFullTime:   "CF3CP",
	models.JobTypePartTime:   "75GKK",
	models.JobTypeContract:   "NJXCK",
	models.JobTypeInternship: "VDTG7",
}

const indeedRemoteKey = "DSQF7"

// Indeed queries the Indeed mobile GraphQL API with cursor pagination.
type Indeed struct {
	client *network.Client
}

func NewIndeed(client *network.Client) *Indeed {
	return &Indeed{client: client}
}

func (i *Indeed) Name() string { return SiteIndeed }

func (i *Indeed) Delay() (time.Duration, time.Duration) {
	return 1 * time.Second, 2 * time.Second
}

type indeedJob struct {
	Key           string `json:"key"`
	Title         string `json:"title"`
	DatePublished int64  `json:"datePublished"`
	Description   struct {
		HTML string `json:"html"`
	} `json:"description"`
	Location struct {
		City        string `json:"city"`
		Admin1Code  string `json:"admin1Code"`
		CountryCode string `json:"countryCode"`
		Formatted   struct {
			Long string `json:"long"`
		} `json:"formatted"`
	} `json:"location"`
	Attributes []struct {
		Key   string `json:"key"`
		Label string `json:"label"`
	} `json:"attributes"`
	Compensation struct {
		BaseSalary   *indeedSalary `json:"baseSalary"`
		CurrencyCode string        `json:"currencyCode"`
		Estimated    *struct {
			BaseSalary   *indeedSalary `json:"baseSalary"`
			CurrencyCode string        `json:"currencyCode"`
		} `json:"estimated"`
	} `json:"compensation"`
	Employer *struct {
		Name                   string `json:"name"`
		RelativeCompanyPageURL string `json:"relativeCompanyPageUrl"`
		Dossier                *struct {
			EmployerDetails struct {
				Addresses               []string `json:"addresses"`
				Industry                string   `json:"industry"`
				EmployeesLocalizedLabel string   `json:"employeesLocalizedLabel"`
				RevenueLocalizedLabel   string   `json:"revenueLocalizedLabel"`
				BriefDescription        string   `json:"briefDescription"`
			} `json:"employerDetails"`
			Images *struct {
				SquareLogoURL string `json:"squareLogoUrl"`
			} `json:"images"`
			Links struct {
				CorporateWebsite string `json:"corporateWebsite"`
			} `json:"links"`
		} `json:"dossier"`
	} `json:"employer"`
	Recruit *struct {
		ViewJobURL string `json:"viewJobUrl"`
	} `json:"recruit"`
}

type indeedSalary struct {
	UnitOfWork string `json:"unitOfWork"`
	Range      struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	} `json:"range"`
}

type indeedSearchResponse struct {
	Data struct {
		JobSearch struct {
			Results []struct {
				Job indeedJob `json:"job"`
			} `json:"results"`
			PageInfo struct {
				NextCursor string `json:"nextCursor"`
			} `json:"pageInfo"`
		} `json:"jobSearch"`
	} `json:"data"`
}

func (i *Indeed) FetchPage(ctx context.Context, run *Run, cursor Cursor) (*Page, error) {
	query := i.buildQuery(run.Input, cursor.Token)
	payload, err := encodeJSON(map[string]string{"query": query})
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"content-type":   "application/json",
		"indeed-api-key": indeedAPIKey,
		"indeed-co":      run.Input.Country.IndeedDomain(),
	}

	var decoded indeedSearchResponse
	if err := fetchJSON(ctx, i.client, SiteIndeed, "POST", indeedAPIURL, headers, payload, &decoded); err != nil {
		return nil, err
	}

	results := decoded.Data.JobSearch.Results
	page := &Page{Records: make([]RawRecord, 0, len(results))}
	for _, result := range results {
		page.Records = append(page.Records, result.Job)
	}
	next := decoded.Data.JobSearch.PageInfo.NextCursor
	page.Next = Cursor{Token: next}
	page.HasMore = next != "" && len(results) > 0
	return page, nil
}

func (i *Indeed) DedupKey(raw RawRecord) string {
	job, ok := raw.(indeedJob)
	if !ok {
		return ""
	}
	return job.Key
}

func (i *Indeed) ExtractRecord(run *Run, raw RawRecord) (*models.JobPost, error) {
	job, ok := raw.(indeedJob)
	if !ok || job.Key == "" || job.Title == "" {
		return nil, nil
	}

	baseURL := fmt.Sprintf("https://%s.indeed.com", run.Input.Country.IndeedDomain())
	description := renderDescription(job.Description.HTML, run.Input.DescriptionFormat)

	compensation, err := indeedCompensation(job)
	if err != nil {
		return nil, err
	}

	post := &models.JobPost{
		ID:           "in-" + job.Key,
		Site:         SiteIndeed,
		Title:        job.Title,
		JobURL:       fmt.Sprintf("%s/viewjob?jk=%s", baseURL, job.Key),
		Description:  description,
		Compensation: compensation,
		JobTypes:     indeedJobTypes(job),
		DatePosted:   time.UnixMilli(job.DatePublished).UTC().Truncate(24 * time.Hour),
		Emails:       extractEmails(description),
	}

	location := models.Location{
		City:  job.Location.City,
		State: job.Location.Admin1Code,
	}
	if country, err := models.CountryFromString(job.Location.CountryCode); err == nil {
		location.Country = country
	}
	post.Location = location
	post.IsRemote = indeedIsRemote(job, description)

	if job.Recruit != nil {
		post.JobURLDirect = job.Recruit.ViewJobURL
	}
	if employer := job.Employer; employer != nil {
		post.CompanyName = employer.Name
		if employer.RelativeCompanyPageURL != "" {
			post.CompanyURL = baseURL + employer.RelativeCompanyPageURL
		}
		if dossier := employer.Dossier; dossier != nil {
			details := dossier.EmployerDetails
			post.CompanyURLDirect = dossier.Links.CorporateWebsite
			post.CompanyIndustry = cleanIndustry(details.Industry)
			post.CompanyNumEmployees = details.EmployeesLocalizedLabel
			post.CompanyRevenue = details.RevenueLocalizedLabel
			post.CompanyDescription = details.BriefDescription
			if len(details.Addresses) > 0 {
				post.CompanyAddresses = details.Addresses[0]
			}
			if dossier.Images != nil {
				post.CompanyLogo = dossier.Images.SquareLogoURL
			}
		}
	}

	return post, nil
}

// indeedCompensation maps the salary block to the canonical tuple. An
// unknown unitOfWork surfaces as an UnsupportedIntervalError.
func indeedCompensation(job indeedJob) (*models.Compensation, error) {
	salary := job.Compensation.BaseSalary
	currency := job.Compensation.CurrencyCode
	if salary == nil && job.Compensation.Estimated != nil {
		salary = job.Compensation.Estimated.BaseSalary
		currency = job.Compensation.Estimated.CurrencyCode
	}
	if salary == nil {
		return nil, nil
	}

	interval, err := models.ParseInterval(salary.UnitOfWork)
	if err != nil {
		return nil, err
	}

	comp := &models.Compensation{Interval: interval, Currency: currency}
	if salary.Range.Min != nil {
		comp.MinAmount = int(*salary.Range.Min)
	}
	if salary.Range.Max != nil {
		comp.MaxAmount = int(*salary.Range.Max)
	}
	return comp, nil
}

func indeedJobTypes(job indeedJob) []models.JobType {
	var jobTypes []models.JobType
	for _, attribute := range job.Attributes {
		if jobType, ok := models.ParseJobType(attribute.Label); ok {
			jobTypes = append(jobTypes, jobType)
		}
	}
	return jobTypes
}

func indeedIsRemote(job indeedJob, description string) bool {
	for _, attribute := range job.Attributes {
		label := strings.ToLower(attribute.Label)
		for _, keyword := range remoteKeywords {
			if strings.Contains(label, keyword) {
				return true
			}
		}
	}
	return isJobRemote("", description, models.Location{City: job.Location.Formatted.Long})
}

func (i *Indeed) buildQuery(input models.ScraperInput, cursor string) string {
	what := ""
	if term := strings.TrimSpace(input.SearchTerm); term != "" {
		what = fmt.Sprintf(`what: %q`, term)
	}
	location := ""
	if input.Location != "" {
		location = fmt.Sprintf(`location: {where: %q, radius: %d, radiusUnit: MILES}`, input.Location, input.Distance)
	}
	cursorArg := ""
	if cursor != "" {
		cursorArg = fmt.Sprintf(`cursor: %q`, cursor)
	}

	return fmt.Sprintf(`
		query GetJobData {
			jobSearch(
				%s
				%s
				limit: %d
				%s
				sort: RELEVANCE
				%s
			) {
				pageInfo { nextCursor }
				results {
					trackingKey
					job {
						key
						title
						datePublished
						description { html }
						location { countryCode admin1Code city formatted { long } }
						compensation {
							baseSalary { unitOfWork range { ... on Range { min max } } }
							estimated { baseSalary { unitOfWork range { ... on Range { min max } } } currencyCode }
							currencyCode
						}
						attributes { key label }
						employer {
							relativeCompanyPageUrl
							name
							dossier {
								employerDetails { addresses industry employeesLocalizedLabel revenueLocalizedLabel briefDescription }
								images { squareLogoUrl }
								links { corporateWebsite }
							}
						}
						recruit { viewJobUrl }
					}
				}
			}
		}`,
		what, location, indeedPerPage, cursorArg, i.buildFilters(input))
}

// buildFilters renders the attribute filter block. A date filter excludes
// the job type and remote composites, matching API behavior.
func (i *Indeed) buildFilters(input models.ScraperInput) string {
	switch {
	case input.HoursOld > 0:
		return fmt.Sprintf(`filters: { date: { field: "dateOnIndeed", start: "%dh" } }`, input.HoursOld)
	case input.EasyApply:
		return `filters: { keyword: { field: "indeedApplyScope", keys: ["DESKTOP"] } }`
	}

	var keys []string
	if input.JobType != "" {
		if key, ok := indeedJobTypeKeys[input.JobType]; ok {
			keys = append(keys, key)
		}
	}
	if input.IsRemote {
		keys = append(keys, indeedRemoteKey)
	}
	if len(keys) == 0 {
		return ""
	}
	return fmt.Sprintf(
		`filters: { composite: { filters: [{ keyword: { field: "attributes", keys: ["%s"] } }] } }`,
		strings.Join(keys, `", "`))
}
