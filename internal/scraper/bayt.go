package scraper

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/wassil-choujaa-account/JobSpy/internal/models"
	"github.com/wassil-choujaa-account/JobSpy/internal/network"
)

const baytBaseURL = "https://www.bayt.com"

// Bayt scrapes the international listing pages. Cards carry only title,
// company and city; everything else lives on the detail page and is out of
// scope here.
type Bayt struct {
	client *network.Client
}

func NewBayt(client *network.Client) *Bayt {
	return &Bayt{client: client}
}

func (b *Bayt) Name() string { return SiteBayt }

func (b *Bayt) Delay() (time.Duration, time.Duration) {
	return 2 * time.Second, 3 * time.Second
}

// baytCard is one parsed listing card.
type baytCard struct {
	Title    string
	JobURL   string
	Company  string
	Location string
}

func (b *Bayt) FetchPage(ctx context.Context, run *Run, cursor Cursor) (*Page, error) {
	target := fmt.Sprintf(
		"%s/en/international/jobs/%s-jobs/?page=%d",
		baytBaseURL, url.PathEscape(run.Input.SearchTerm), cursor.Page,
	)
	doc, err := fetchDocument(ctx, b.client, SiteBayt, target, nil)
	if err != nil {
		return nil, err
	}

	records := baytRecords(doc)

	return &Page{
		Records: records,
		Next:    Cursor{Page: cursor.Page + 1},
		HasMore: len(records) > 0,
	}, nil
}

// baytRecords parses the listing cards, falling back to embedded ld+json
// postings when the page carries no cards.
func baytRecords(doc *goquery.Document) []RawRecord {
	var records []RawRecord
	doc.Find("li[data-js-job]").Each(func(_ int, s *goquery.Selection) {
		records = append(records, parseBaytCard(s))
	})
	if len(records) == 0 {
		records = jsonldRecords(doc, SiteBayt)
	}
	return records
}

func parseBaytCard(s *goquery.Selection) baytCard {
	heading := s.Find("h2").First()
	card := baytCard{
		Title:    cleanText(heading.Text()),
		Company:  cleanText(s.Find("div.t-nowrap.p10l span").First().Text()),
		Location: cleanText(s.Find("div.t-mute.t-small").First().Text()),
	}
	if href := heading.Find("a").First().AttrOr("href", ""); href != "" {
		card.JobURL = absoluteURL(baytBaseURL, href)
	}
	return card
}

func (b *Bayt) DedupKey(raw RawRecord) string {
	switch rec := raw.(type) {
	case baytCard:
		return rec.JobURL
	case jsonldRecord:
		return rec.Post.JobURL
	}
	return ""
}

func (b *Bayt) ExtractRecord(run *Run, raw RawRecord) (*models.JobPost, error) {
	if rec, ok := raw.(jsonldRecord); ok {
		return jobFromJSONLDRecord(rec, "bayt-"), nil
	}
	card, ok := raw.(baytCard)
	if !ok || card.Title == "" || card.JobURL == "" {
		return nil, nil
	}

	location := models.Location{
		City:    card.Location,
		Country: models.CountryWorldwide,
	}
	return &models.JobPost{
		ID:          fmt.Sprintf("bayt-%d", hashString(card.JobURL)),
		Site:        SiteBayt,
		Title:       card.Title,
		JobURL:      card.JobURL,
		CompanyName: card.Company,
		Location:    location,
		IsRemote:    isJobRemote(card.Title, "", location),
	}, nil
}

func hashString(value string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(value))
	return h.Sum64()
}
