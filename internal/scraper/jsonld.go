package scraper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/wassil-choujaa-account/JobSpy/internal/models"
)

// jsonldRecord carries a posting recovered from embedded ld+json when a
// source's card selectors come up empty.
type jsonldRecord struct {
	Post models.JobPost
}

func jsonldRecords(doc *goquery.Document, site string) []RawRecord {
	jobs := parseJSONLDJobs(doc, site)
	records := make([]RawRecord, 0, len(jobs))
	for _, job := range jobs {
		records = append(records, jsonldRecord{Post: job})
	}
	return records
}

// jobFromJSONLDRecord finalizes a fallback posting with a site-prefixed
// ID. Postings missing a title or URL are dropped.
func jobFromJSONLDRecord(rec jsonldRecord, idPrefix string) *models.JobPost {
	post := rec.Post
	if post.Title == "" || post.JobURL == "" {
		return nil
	}
	post.ID = fmt.Sprintf("%s%d", idPrefix, hashString(post.JobURL))
	return &post
}

// parseJSONLDJobs pulls schema.org JobPosting records out of embedded
// ld+json script blocks. HTML sources use this as a fallback extraction
// path when their card selectors come up empty.
func parseJSONLDJobs(doc *goquery.Document, site string) []models.JobPost {
	var jobs []models.JobPost
	seen := map[string]struct{}{}

	doc.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		data, err := decodeJSONLD(raw)
		if err != nil {
			return
		}

		for _, job := range jobsFromJSONLD(data, site) {
			key := job.JobURL
			if key == "" {
				key = strings.ToLower(job.Title + "|" + job.CompanyName)
			}
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			jobs = append(jobs, job)
		}
	})

	return jobs
}

func decodeJSONLD(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "<!--")
	raw = strings.TrimSuffix(raw, "-->")
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, " ", "")
	raw = strings.ReplaceAll(raw, " ", "")

	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}
	return data, nil
}

func jobsFromJSONLD(data any, site string) []models.JobPost {
	var jobs []models.JobPost

	switch value := data.(type) {
	case []any:
		for _, item := range value {
			jobs = append(jobs, jobsFromJSONLD(item, site)...)
		}
	case map[string]any:
		if typ := strings.ToLower(stringValue(value["@type"], value["type"])); typ != "" {
			switch typ {
			case "jobposting":
				jobs = append(jobs, jobFromJSONLDPosting(value, site))
				return jobs
			case "itemlist":
				jobs = append(jobs, jobsFromItemList(value, site)...)
			}
		}
		if graph, ok := value["@graph"]; ok {
			jobs = append(jobs, jobsFromJSONLD(graph, site)...)
		}
		if main, ok := value["mainEntity"]; ok {
			jobs = append(jobs, jobsFromJSONLD(main, site)...)
		}
	}

	return jobs
}

func jobsFromItemList(value map[string]any, site string) []models.JobPost {
	items, ok := value["itemListElement"]
	if !ok {
		return nil
	}

	var jobs []models.JobPost
	switch list := items.(type) {
	case []any:
		for _, item := range list {
			jobs = append(jobs, jobsFromJSONLD(item, site)...)
		}
	case map[string]any:
		jobs = append(jobs, jobsFromJSONLD(list, site)...)
	}
	return jobs
}

func jobFromJSONLDPosting(value map[string]any, site string) models.JobPost {
	job := models.JobPost{Site: site}
	job.Title = stringValue(value["title"], value["name"])
	job.CompanyName = stringValue(mapValue(value["hiringOrganization"], "name"))
	job.JobURL = stringValue(value["url"], value["@id"])
	if jobType, ok := models.ParseJobType(stringValue(value["employmentType"])); ok {
		job.JobTypes = []models.JobType{jobType}
	}
	job.Compensation = compensationFromJSONLD(value["baseSalary"])
	if posted := stringValue(value["datePosted"]); posted != "" {
		if ts, err := parsePostedAt(posted); err == nil {
			job.DatePosted = ts
		}
	}
	job.Location = locationFromJSONLD(value["jobLocation"])
	job.Description = truncate(cleanText(stringValue(value["description"])), 240)
	job.IsRemote = isJobRemote(job.Title, job.Description, job.Location)
	return job
}

func compensationFromJSONLD(value any) *models.Compensation {
	salary, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	amount, ok := salary["value"].(map[string]any)
	if !ok {
		return nil
	}

	comp := &models.Compensation{Currency: stringValue(salary["currency"])}
	if min := amount["minValue"]; min != nil {
		comp.MinAmount = int(floatValue(min))
	}
	if max := amount["maxValue"]; max != nil {
		comp.MaxAmount = int(floatValue(max))
	}
	if single := amount["value"]; single != nil && comp.MinAmount == 0 && comp.MaxAmount == 0 {
		comp.MinAmount = int(floatValue(single))
		comp.MaxAmount = comp.MinAmount
	}
	if unit := stringValue(amount["unitText"]); unit != "" {
		if interval, err := models.ParseInterval(unit); err == nil {
			comp.Interval = interval
		}
	}
	if comp.MinAmount == 0 && comp.MaxAmount == 0 {
		return nil
	}
	return comp
}

func locationFromJSONLD(value any) models.Location {
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			if loc := locationFromJSONLD(item); loc.DisplayLocation() != "" {
				return loc
			}
		}
	case map[string]any:
		address, ok := v["address"].(map[string]any)
		if !ok {
			address = v
		}
		location := models.Location{
			City:  stringValue(address["addressLocality"]),
			State: stringValue(address["addressRegion"]),
		}
		if country := stringValue(address["addressCountry"]); country != "" {
			if parsed, err := models.CountryFromString(country); err == nil {
				location.Country = parsed
			}
		}
		return location
	case string:
		return parseLocationString(v, "")
	}
	return models.Location{}
}
