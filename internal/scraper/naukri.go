package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wassil-choujaa-account/JobSpy/internal/models"
	"github.com/wassil-choujaa-account/JobSpy/internal/network"
)

const (
	naukriAPIURL  = "https://www.naukri.com/jobapi/v3/search"
	naukriPerPage = 20
	// The API repeats results indefinitely past this point.
	naukriMaxPages = 50
)

// Naukri queries the Naukri job search API. The site is India-focused, so
// postings default to the India market and salaries arrive in Lakh/Crore
// labels.
type Naukri struct {
	client *network.Client
}

func NewNaukri(client *network.Client) *Naukri {
	return &Naukri{client: client}
}

func (n *Naukri) Name() string { return SiteNaukri }

func (n *Naukri) Delay() (time.Duration, time.Duration) {
	return 3 * time.Second, 4 * time.Second
}

type naukriPlaceholder struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

type naukriJob struct {
	JobID                  string              `json:"jobId"`
	Title                  string              `json:"title"`
	CompanyName            string              `json:"companyName"`
	StaticURL              string              `json:"staticUrl"`
	JdURL                  string              `json:"jdURL"`
	JobDescription         string              `json:"jobDescription"`
	FooterPlaceholderLabel string              `json:"footerPlaceholderLabel"`
	CreatedDate            int64               `json:"createdDate"`
	LogoPath               string              `json:"logoPath"`
	LogoPathV3             string              `json:"logoPathV3"`
	TagsAndSkills          string              `json:"tagsAndSkills"`
	ExperienceText         string              `json:"experienceText"`
	Vacancy                int                 `json:"vacancy"`
	Placeholders           []naukriPlaceholder `json:"placeholders"`
	AmbitionBoxData        struct {
		AggregateRating string `json:"AggregateRating"`
		ReviewsCount    int    `json:"ReviewsCount"`
	} `json:"ambitionBoxData"`
}

type naukriSearchResponse struct {
	JobDetails []naukriJob `json:"jobDetails"`
}

func (n *Naukri) FetchPage(ctx context.Context, run *Run, cursor Cursor) (*Page, error) {
	if cursor.Page > naukriMaxPages {
		return &Page{}, nil
	}

	input := run.Input
	values := url.Values{}
	values.Set("noOfResults", strconv.Itoa(naukriPerPage))
	values.Set("urlType", "search_by_keyword")
	values.Set("searchType", "adv")
	values.Set("keyword", input.SearchTerm)
	values.Set("pageNo", strconv.Itoa(cursor.Page))
	values.Set("k", input.SearchTerm)
	values.Set("seoKey", naukriSEOKey(input.SearchTerm))
	values.Set("src", "jobsearchDesk")
	if input.Location != "" {
		values.Set("location", input.Location)
	}
	if input.IsRemote {
		values.Set("remote", "true")
	}
	if input.HoursOld > 0 {
		values.Set("days", strconv.Itoa(input.HoursOld/24))
	}

	headers := map[string]string{
		"appid":    "109",
		"systemid": "Naukri",
	}

	var decoded naukriSearchResponse
	target := naukriAPIURL + "?" + values.Encode()
	if err := fetchJSON(ctx, n.client, SiteNaukri, "GET", target, headers, nil, &decoded); err != nil {
		return nil, err
	}

	page := &Page{Records: make([]RawRecord, 0, len(decoded.JobDetails))}
	for _, job := range decoded.JobDetails {
		page.Records = append(page.Records, job)
	}
	page.Next = Cursor{Page: cursor.Page + 1}
	page.HasMore = len(decoded.JobDetails) == naukriPerPage && cursor.Page < naukriMaxPages
	return page, nil
}

func (n *Naukri) DedupKey(raw RawRecord) string {
	job, ok := raw.(naukriJob)
	if !ok {
		return ""
	}
	return job.JobID
}

func (n *Naukri) ExtractRecord(run *Run, raw RawRecord) (*models.JobPost, error) {
	job, ok := raw.(naukriJob)
	if !ok || job.JobID == "" || job.Title == "" {
		return nil, nil
	}

	jobURL := "https://www.naukri.com" + job.JdURL
	if job.JdURL == "" {
		jobURL = fmt.Sprintf("https://www.naukri.com/job/%s", job.JobID)
	}

	description := ""
	if run.Input.FetchDescription {
		description = renderDescription(job.JobDescription, run.Input.DescriptionFormat)
	}

	location := naukriLocation(job.Placeholders)
	locationLabel := placeholderLabel(job.Placeholders, "location")

	post := &models.JobPost{
		ID:           "nk-" + job.JobID,
		Site:         SiteNaukri,
		Title:        job.Title,
		JobURL:       jobURL,
		CompanyName:  job.CompanyName,
		Location:     location,
		Compensation: parseSalaryText(placeholderLabel(job.Placeholders, "salary")),
		Description:  description,
		DatePosted:   parsePostedDate(job.FooterPlaceholderLabel, job.CreatedDate, time.Now().UTC()),
		IsRemote:     isJobRemote(job.Title, description, location),
		Emails:       extractEmails(description),

		ExperienceRange:  job.ExperienceText,
		VacancyCount:     job.Vacancy,
		WorkFromHomeType: inferWorkFromHomeType(locationLabel, job.Title, description),
	}

	if job.StaticURL != "" {
		post.CompanyURL = "https://www.naukri.com/" + job.StaticURL
	}
	if logo := stringValue(job.LogoPathV3, job.LogoPath); logo != "" {
		post.CompanyLogo = logo
	}
	if job.TagsAndSkills != "" {
		post.Skills = strings.Split(job.TagsAndSkills, ",")
	}
	if rating := job.AmbitionBoxData.AggregateRating; rating != "" {
		if parsed, err := strconv.ParseFloat(rating, 64); err == nil {
			post.CompanyRating = parsed
		}
	}
	post.CompanyReviewsCount = job.AmbitionBoxData.ReviewsCount

	return post, nil
}

func naukriSEOKey(term string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(term), " ", "-")) + "-jobs"
}

func naukriLocation(placeholders []naukriPlaceholder) models.Location {
	label := placeholderLabel(placeholders, "location")
	if label == "" {
		return models.Location{Country: models.CountryIndia}
	}
	return parseLocationString(label, models.CountryIndia)
}

func placeholderLabel(placeholders []naukriPlaceholder, kind string) string {
	for _, placeholder := range placeholders {
		if placeholder.Type == kind {
			return strings.TrimSpace(placeholder.Label)
		}
	}
	return ""
}
