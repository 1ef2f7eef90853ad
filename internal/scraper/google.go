package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/wassil-choujaa-account/JobSpy/internal/models"
	"github.com/wassil-choujaa-account/JobSpy/internal/network"
)

const (
	googleSearchURL = "https://www.google.com/search"
	googleAsyncURL  = "https://www.google.com/async/callback:550"

	// Key of the job payload buried inside the result document.
	googleJobsKey = "520084652"
)

var (
	googleInitialPattern = regexp.MustCompile(googleJobsKey + `":(\[.*?\]\s*])\s*}\s*]\s*]\s*]\s*]\s*]`)
	googleCursorPattern  = regexp.MustCompile(`data-async-fc="([^"]+)"`)
	googleDigitsPattern  = regexp.MustCompile(`\d+`)
)

// Google scrapes the jobs vertical of the search results. The first page is
// an HTML document with the job payload embedded in a script blob; following
// pages come from an async callback endpoint driven by a forward cursor.
type Google struct {
	client *network.Client
}

func NewGoogle(client *network.Client) *Google {
	return &Google{client: client}
}

func (g *Google) Name() string { return SiteGoogle }

func (g *Google) Delay() (time.Duration, time.Duration) {
	return 2 * time.Second, 2 * time.Second
}

func (g *Google) FetchPage(ctx context.Context, run *Run, cursor Cursor) (*Page, error) {
	var body string
	var err error
	if cursor.Token == "" {
		body, err = g.fetchBody(ctx, g.initialURL(run.Input))
	} else {
		body, err = g.fetchBody(ctx, googleAsyncURL+"?"+url.Values{
			"fc":    {cursor.Token},
			"fcv":   {"3"},
			"async": {"_fmt:jspb"},
		}.Encode())
	}
	if err != nil {
		return nil, err
	}

	records := googleJobsFromBody(body)
	next := ""
	if match := googleCursorPattern.FindStringSubmatch(body); match != nil {
		next = match[1]
	}

	page := &Page{Records: make([]RawRecord, 0, len(records))}
	for _, record := range records {
		page.Records = append(page.Records, record)
	}
	page.Next = Cursor{Page: cursor.Page + 1, Token: next}
	page.HasMore = next != "" && len(records) > 0
	return page, nil
}

func (g *Google) fetchBody(ctx context.Context, target string) (string, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	applyHeaders(req, nil)

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		return "", &FetchError{Site: SiteGoogle, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", &FetchError{Site: SiteGoogle, Status: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{Site: SiteGoogle, Err: err}
	}
	return string(data), nil
}

func (g *Google) initialURL(input models.ScraperInput) string {
	term := input.GoogleSearchTerm
	if term == "" {
		term = strings.TrimSpace(input.SearchTerm + " jobs " + input.Location)
	}
	values := url.Values{}
	values.Set("q", term)
	values.Set("udm", "8")
	return googleSearchURL + "?" + values.Encode()
}

// googleJobsFromBody pulls every embedded job payload out of a result
// document: each payload is a JSON array literal keyed by the opaque jobs
// identifier.
func googleJobsFromBody(body string) [][]any {
	var records [][]any
	for _, match := range googleInitialPattern.FindAllStringSubmatch(body, -1) {
		var parsed any
		if err := json.Unmarshal([]byte(match[1]), &parsed); err != nil {
			continue
		}
		if info := findJobInfo(parsed); info != nil {
			records = append(records, jobInfoEntries(info)...)
		} else if list, ok := parsed.([]any); ok {
			records = append(records, jobInfoEntries(list)...)
		}
	}
	return records
}

// findJobInfo walks an arbitrarily nested decoded JSON document looking for
// the list stored under the jobs identifier key.
func findJobInfo(data any) []any {
	switch value := data.(type) {
	case map[string]any:
		for key, nested := range value {
			if key == googleJobsKey {
				if list, ok := nested.([]any); ok {
					return list
				}
			}
			if result := findJobInfo(nested); result != nil {
				return result
			}
		}
	case []any:
		for _, item := range value {
			if result := findJobInfo(item); result != nil {
				return result
			}
		}
	}
	return nil
}

func jobInfoEntries(list []any) [][]any {
	var entries [][]any
	for _, item := range list {
		if entry, ok := item.([]any); ok && len(entry) > 0 {
			entries = append(entries, entry)
		}
	}
	return entries
}

func (g *Google) DedupKey(raw RawRecord) string {
	entry, ok := raw.([]any)
	if !ok {
		return ""
	}
	return googleJobURL(entry)
}

// Positions inside the embedded payload arrays.
const (
	googleIdxTitle       = 0
	googleIdxCompany     = 1
	googleIdxLocation    = 2
	googleIdxLink        = 3
	googleIdxDaysAgo     = 12
	googleIdxDescription = 19
)

func (g *Google) ExtractRecord(run *Run, raw RawRecord) (*models.JobPost, error) {
	entry, ok := raw.([]any)
	if !ok {
		return nil, nil
	}

	title := stringAt(entry, googleIdxTitle)
	jobURL := googleJobURL(entry)
	if title == "" || jobURL == "" {
		return nil, nil
	}

	location := parseLocationString(stringAt(entry, googleIdxLocation), "")
	description := renderDescription(stringAt(entry, googleIdxDescription), run.Input.DescriptionFormat)

	post := &models.JobPost{
		ID:          fmt.Sprintf("go-%d", hashString(jobURL)),
		Site:        SiteGoogle,
		Title:       title,
		JobURL:      jobURL,
		CompanyName: stringAt(entry, googleIdxCompany),
		Location:    location,
		Description: description,
		IsRemote:    isJobRemote(title, description, location),
		Emails:      extractEmails(description),
	}

	if label := stringAt(entry, googleIdxDaysAgo); label != "" {
		if match := googleDigitsPattern.FindString(label); match != "" {
			if days, err := strconv.Atoi(match); err == nil {
				post.DatePosted = time.Now().UTC().AddDate(0, 0, -days).Truncate(24 * time.Hour)
			}
		}
	}
	return post, nil
}

func googleJobURL(entry []any) string {
	if len(entry) <= googleIdxLink {
		return ""
	}
	links, ok := entry[googleIdxLink].([]any)
	if !ok || len(links) == 0 {
		return ""
	}
	first, ok := links[0].([]any)
	if !ok || len(first) == 0 {
		return ""
	}
	link, _ := first[0].(string)
	return link
}

func stringAt(entry []any, index int) string {
	if index < 0 || index >= len(entry) {
		return ""
	}
	value, _ := entry[index].(string)
	return strings.TrimSpace(value)
}
