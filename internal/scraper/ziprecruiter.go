package scraper

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/wassil-choujaa-account/JobSpy/internal/models"
	"github.com/wassil-choujaa-account/JobSpy/internal/network"
)

const (
	zipAPIURL   = "https://api.ziprecruiter.com/jobs-app/jobs"
	zipEventURL = "https://api.ziprecruiter.com/jobs-app/event"
)

// zipJobTypeParams maps the enum to the API's employment_type values.
var zipJobTypeParams = map[models.JobType]string{
	models.JobTypeFullTime: "full_time",
	models.JobTypePartTime: "part_time",
}

// ZipRecruiter drives the mobile app API. Pagination is an opaque
// continue_from token; the first request warms the session cookie jar
// through the event endpoint.
type ZipRecruiter struct {
	client *network.Client
	warmed bool
}

func NewZipRecruiter(client *network.Client) *ZipRecruiter {
	return &ZipRecruiter{client: client}
}

func (z *ZipRecruiter) Name() string { return SiteZipRecruiter }

func (z *ZipRecruiter) Delay() (time.Duration, time.Duration) {
	return 5 * time.Second, 0
}

type zipJob struct {
	ListingKey           string  `json:"listing_key"`
	Name                 string  `json:"name"`
	JobURL               string  `json:"job_url"`
	JobDescription       string  `json:"job_description"`
	JobCity              string  `json:"job_city"`
	JobState             string  `json:"job_state"`
	JobCountry           string  `json:"job_country"`
	EmploymentType       string  `json:"employment_type"`
	PostedTime           string  `json:"posted_time"`
	Remote               int     `json:"remote"`
	CompensationInterval string  `json:"compensation_interval"`
	CompensationMin      float64 `json:"compensation_min"`
	CompensationMax      float64 `json:"compensation_max"`
	CompensationCurrency string  `json:"compensation_currency"`
	HiringCompany        struct {
		Name string `json:"name"`
	} `json:"hiring_company"`
}

type zipSearchResponse struct {
	Jobs     []zipJob `json:"jobs"`
	Continue string   `json:"continue"`
}

func (z *ZipRecruiter) FetchPage(ctx context.Context, run *Run, cursor Cursor) (*Page, error) {
	if !z.warmed {
		z.warmUp(ctx, run)
	}

	values := zipParams(run.Input)
	if cursor.Token != "" {
		values.Set("continue_from", cursor.Token)
	}

	var decoded zipSearchResponse
	if err := fetchJSON(ctx, z.client, SiteZipRecruiter, "GET", zipAPIURL+"?"+values.Encode(), nil, nil, &decoded); err != nil {
		return nil, err
	}

	page := &Page{Records: make([]RawRecord, 0, len(decoded.Jobs))}
	for _, job := range decoded.Jobs {
		page.Records = append(page.Records, job)
	}
	page.Next = Cursor{Page: cursor.Page + 1, Token: decoded.Continue}
	page.HasMore = decoded.Continue != "" && len(decoded.Jobs) > 0
	return page, nil
}

// warmUp obtains session cookies; a failure is not fatal, the search
// request may still succeed.
func (z *ZipRecruiter) warmUp(ctx context.Context, run *Run) {
	z.warmed = true
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodPost, zipEventURL, strings.NewReader("event_type=session_start"))
	if err != nil {
		return
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	resp, err := z.client.Do(ctx, req)
	if err != nil {
		run.Log.Debug().Err(err).Msg("session warm-up failed")
		return
	}
	resp.Body.Close()
}

func zipParams(input models.ScraperInput) url.Values {
	values := url.Values{}
	values.Set("search", input.SearchTerm)
	if input.Location != "" {
		values.Set("location", input.Location)
	}
	if input.HoursOld > 0 {
		days := input.HoursOld / 24
		if days < 1 {
			days = 1
		}
		values.Set("days", strconv.Itoa(days))
	}
	if input.JobType != "" {
		param, ok := zipJobTypeParams[input.JobType]
		if !ok {
			param = string(input.JobType)
		}
		values.Set("employment_type", param)
	}
	if input.EasyApply {
		values.Set("zipapply", "1")
	}
	if input.IsRemote {
		values.Set("remote", "1")
	}
	if input.Distance > 0 {
		values.Set("radius", strconv.Itoa(input.Distance))
	}
	return values
}

func (z *ZipRecruiter) DedupKey(raw RawRecord) string {
	job, ok := raw.(zipJob)
	if !ok {
		return ""
	}
	return job.ListingKey
}

func (z *ZipRecruiter) ExtractRecord(run *Run, raw RawRecord) (*models.JobPost, error) {
	job, ok := raw.(zipJob)
	if !ok || job.Name == "" || job.JobURL == "" {
		return nil, nil
	}

	description := renderDescription(job.JobDescription, run.Input.DescriptionFormat)

	location := models.Location{City: job.JobCity, State: job.JobState}
	if country, err := models.CountryFromString(job.JobCountry); err == nil {
		location.Country = country
	}

	compensation, err := zipCompensation(job)
	if err != nil {
		return nil, err
	}

	post := &models.JobPost{
		ID:           "zr-" + job.ListingKey,
		Site:         SiteZipRecruiter,
		Title:        job.Name,
		JobURL:       strings.SplitN(job.JobURL, "?", 2)[0],
		CompanyName:  job.HiringCompany.Name,
		Location:     location,
		Description:  description,
		Compensation: compensation,
		IsRemote:     job.Remote == 1 || isJobRemote(job.Name, description, location),
		Emails:       extractEmails(description),
	}
	if jobType, ok := models.ParseJobType(job.EmploymentType); ok {
		post.JobTypes = []models.JobType{jobType}
	}
	if job.PostedTime != "" {
		if ts, err := parsePostedAt(job.PostedTime); err == nil {
			post.DatePosted = ts
		}
	}
	return post, nil
}

// zipCompensation maps the flat salary fields; "annual" style labels fold
// into the yearly interval before the strict vocabulary check.
func zipCompensation(job zipJob) (*models.Compensation, error) {
	if job.CompensationInterval == "" && job.CompensationMin == 0 && job.CompensationMax == 0 {
		return nil, nil
	}

	interval := models.IntervalYearly
	if job.CompensationInterval != "" {
		if strings.Contains(strings.ToLower(job.CompensationInterval), "annual") {
			interval = models.IntervalYearly
		} else {
			parsed, err := models.ParseInterval(job.CompensationInterval)
			if err != nil {
				return nil, err
			}
			interval = parsed
		}
	}

	currency := job.CompensationCurrency
	if currency == "" {
		currency = "USD"
	}
	return &models.Compensation{
		Interval:  interval,
		MinAmount: int(job.CompensationMin),
		MaxAmount: int(job.CompensationMax),
		Currency:  currency,
	}, nil
}
