package scraper

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/wassil-choujaa-account/JobSpy/internal/models"
	"github.com/wassil-choujaa-account/JobSpy/internal/network"
)

const (
	linkedInSearchURL = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"
	linkedInDetailURL = "https://www.linkedin.com/jobs-guest/jobs/api/jobPosting/"
	linkedInPerPage   = 25
)

// linkedInJobTypeCodes are the f_JT parameter values.
var linkedInJobTypeCodes = map[models.JobType]string{
	models.JobTypeFullTime:   "F",
	models.JobTypePartTime:   "P",
	models.JobTypeContract:   "C",
	models.JobTypeInternship: "I",
	models.JobTypeTemporary:  "T",
}

var linkedInJobIDPattern = regexp.MustCompile(`-?(\d+)(?:\?|$)`)

// LinkedIn scrapes the guest search API, which serves plain HTML cards.
// Descriptions and job criteria live on a separate posting page fetched on
// demand.
type LinkedIn struct {
	client *network.Client
}

func NewLinkedIn(client *network.Client) *LinkedIn {
	return &LinkedIn{client: client}
}

func (l *LinkedIn) Name() string { return SiteLinkedIn }

func (l *LinkedIn) Delay() (time.Duration, time.Duration) {
	return 3 * time.Second, 2 * time.Second
}

type linkedInCard struct {
	JobID      string
	Title      string
	Company    string
	CompanyURL string
	JobURL     string
	Location   string
	PostedAt   string

	// Filled from the posting page when description fetching is on.
	Description string
	JobType     string
	Industry    string
	Level       string
}

func (l *LinkedIn) FetchPage(ctx context.Context, run *Run, cursor Cursor) (*Page, error) {
	input := run.Input
	values := url.Values{}
	values.Set("keywords", input.SearchTerm)
	values.Set("pageNum", "0")
	values.Set("start", strconv.Itoa((cursor.Page-1)*linkedInPerPage))
	if input.Location != "" {
		values.Set("location", input.Location)
	}
	if input.Distance > 0 {
		values.Set("distance", strconv.Itoa(input.Distance))
	}
	if input.IsRemote {
		values.Set("f_WT", "2")
	}
	if input.EasyApply {
		values.Set("f_AL", "true")
	}
	if input.HoursOld > 0 {
		values.Set("f_TPR", fmt.Sprintf("r%d", input.HoursOld*3600))
	}
	if code, ok := linkedInJobTypeCodes[input.JobType]; ok && input.JobType != "" {
		values.Set("f_JT", code)
	}

	doc, err := fetchDocument(ctx, l.client, SiteLinkedIn, linkedInSearchURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}

	records := linkedInRecords(doc)
	if run.Input.FetchDescription {
		for i, raw := range records {
			card, ok := raw.(linkedInCard)
			if !ok || card.JobURL == "" {
				continue
			}
			l.fetchDetails(ctx, run, &card)
			records[i] = card
		}
	}

	return &Page{
		Records: records,
		Next:    Cursor{Page: cursor.Page + 1},
		HasMore: len(records) > 0,
	}, nil
}

// linkedInRecords parses the search result cards, falling back to
// embedded ld+json postings when the page carries no cards.
func linkedInRecords(doc *goquery.Document) []RawRecord {
	var records []RawRecord
	doc.Find("div.base-search-card").Each(func(_ int, s *goquery.Selection) {
		records = append(records, parseLinkedInCard(s))
	})
	if len(records) == 0 {
		records = jsonldRecords(doc, SiteLinkedIn)
	}
	return records
}

func parseLinkedInCard(s *goquery.Selection) linkedInCard {
	href := strings.TrimSpace(s.Find("a.base-card__full-link").First().AttrOr("href", ""))
	if href == "" {
		href = strings.TrimSpace(s.Find("a").First().AttrOr("href", ""))
	}

	card := linkedInCard{
		Title:      cleanText(s.Find("h3.base-search-card__title").First().Text()),
		Company:    cleanText(s.Find("h4.base-search-card__subtitle").First().Text()),
		CompanyURL: strings.TrimSpace(s.Find("h4.base-search-card__subtitle a").First().AttrOr("href", "")),
		Location:   cleanText(s.Find("span.job-search-card__location").First().Text()),
		PostedAt:   strings.TrimSpace(s.Find("time").First().AttrOr("datetime", "")),
	}
	if href != "" {
		card.JobURL = strings.SplitN(href, "?", 2)[0]
		if match := linkedInJobIDPattern.FindStringSubmatch(href); match != nil {
			card.JobID = match[1]
		}
	}
	return card
}

// fetchDetails pulls the description and job criteria from the posting
// page. Failures leave the card as-is; the listing data is still usable.
func (l *LinkedIn) fetchDetails(ctx context.Context, run *Run, card *linkedInCard) {
	if card.JobID == "" {
		return
	}
	doc, err := fetchDocument(ctx, l.client, SiteLinkedIn, linkedInDetailURL+card.JobID, nil)
	if err != nil {
		run.Log.Debug().Str("job_id", card.JobID).Err(err).Msg("posting page fetch failed")
		return
	}

	if markup := doc.Find("div.show-more-less-html__markup").First(); markup.Length() > 0 {
		html, err := markup.Html()
		if err == nil {
			card.Description = renderDescription(html, run.Input.DescriptionFormat)
		}
	}
	card.JobType = linkedInCriteria(doc, "Employment type")
	card.Level = linkedInCriteria(doc, "Seniority level")
	card.Industry = linkedInCriteria(doc, "Industries")
}

// linkedInCriteria reads the value under a criteria subheader on the
// posting page.
func linkedInCriteria(doc *goquery.Document, heading string) string {
	var value string
	doc.Find("h3.description__job-criteria-subheader").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.Contains(cleanText(s.Text()), heading) {
			return true
		}
		value = cleanText(s.NextFiltered("span.description__job-criteria-text").First().Text())
		return false
	})
	return value
}

func (l *LinkedIn) DedupKey(raw RawRecord) string {
	switch rec := raw.(type) {
	case linkedInCard:
		return rec.JobURL
	case jsonldRecord:
		return rec.Post.JobURL
	}
	return ""
}

func (l *LinkedIn) ExtractRecord(run *Run, raw RawRecord) (*models.JobPost, error) {
	if rec, ok := raw.(jsonldRecord); ok {
		return jobFromJSONLDRecord(rec, "li-"), nil
	}
	card, ok := raw.(linkedInCard)
	if !ok || card.Title == "" || card.JobURL == "" {
		return nil, nil
	}

	location := parseLocationString(card.Location, "")
	post := &models.JobPost{
		ID:              "li-" + card.JobID,
		Site:            SiteLinkedIn,
		Title:           card.Title,
		JobURL:          card.JobURL,
		CompanyName:     card.Company,
		CompanyURL:      card.CompanyURL,
		Location:        location,
		Description:     card.Description,
		CompanyIndustry: card.Industry,
		JobLevel:        card.Level,
		IsRemote:        isJobRemote(card.Title, card.Description, location),
		Emails:          extractEmails(card.Description),
	}
	if card.JobID == "" {
		post.ID = fmt.Sprintf("li-%d", hashString(card.JobURL))
	}
	if jobType, ok := models.ParseJobType(card.JobType); ok {
		post.JobTypes = []models.JobType{jobType}
	}
	if card.PostedAt != "" {
		if ts, err := parsePostedAt(card.PostedAt); err == nil {
			post.DatePosted = ts
		}
	}
	return post, nil
}
