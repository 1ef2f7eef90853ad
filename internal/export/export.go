package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/muesli/termenv"
	"github.com/wassil-choujaa-account/JobSpy/internal/models"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatTSV      Format = "tsv"
)

type WriteOptions struct {
	ColorEnabled bool
	Hyperlinks   bool
	LinkStyle    LinkStyle
}

type LinkStyle string

const (
	LinkStyleShort LinkStyle = "short"
	LinkStyleFull  LinkStyle = "full"
)

func WriteJobs(w io.Writer, jobs []models.JobPost, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, jobs)
	case FormatCSV:
		return writeCSV(w, jobs, ',')
	case FormatTSV:
		return writeCSV(w, jobs, '\t')
	case FormatMarkdown:
		return writeMarkdown(w, jobs)
	default:
		return writeTable(w, jobs, opts)
	}
}

func writeJSON(w io.Writer, jobs []models.JobPost) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jobs)
}

func writeCSV(w io.Writer, jobs []models.JobPost, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write(csvHeader()); err != nil {
		return err
	}
	for _, job := range jobs {
		if err := writer.Write(csvRow(job)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeTable(w io.Writer, jobs []models.JobPost, opts WriteOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tableHeader(), "\t"))
	output := termenv.NewOutput(w)
	for _, job := range jobs {
		fmt.Fprintln(tw, strings.Join(tableRow(job, output, opts), "\t"))
	}
	return tw.Flush()
}

func writeMarkdown(w io.Writer, jobs []models.JobPost) error {
	if len(jobs) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for _, job := range jobs {
		urlLine := "  URL: -"
		if link := safe(job.JobURL); link != "" {
			urlLine = fmt.Sprintf("  URL: [Open listing](<%s>)", link)
		}
		lines := []string{
			fmt.Sprintf("- **%s** (%s)", safe(job.Title), safe(job.CompanyName)),
			fmt.Sprintf("  Location: %s", safe(job.Location.DisplayLocation())),
			fmt.Sprintf("  Site: %s", safe(job.Site)),
			urlLine,
		}
		if job.IsRemote {
			lines = append(lines, "  Remote: yes")
		}
		if types := jobTypesLabel(job.JobTypes); types != "" {
			lines = append(lines, fmt.Sprintf("  Type: %s", types))
		}
		if job.Compensation != nil {
			lines = append(lines, fmt.Sprintf("  Salary: %s", job.Compensation.String()))
		}
		if !job.DatePosted.IsZero() {
			lines = append(lines, fmt.Sprintf("  Posted: %s", job.DatePosted.Format(time.RFC3339)))
		}
		if job.JobLevel != "" {
			lines = append(lines, fmt.Sprintf("  Level: %s", safe(job.JobLevel)))
		}
		if job.Description != "" {
			lines = append(lines, fmt.Sprintf("  Summary: %s", snippet(job.Description)))
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func csvHeader() []string {
	return []string{
		"id",
		"site",
		"title",
		"company",
		"location",
		"job_url",
		"is_remote",
		"job_type",
		"interval",
		"min_amount",
		"max_amount",
		"currency",
		"date_posted",
		"description",
	}
}

func csvRow(job models.JobPost) []string {
	posted := ""
	if !job.DatePosted.IsZero() {
		posted = job.DatePosted.Format("2006-01-02")
	}
	interval, minAmount, maxAmount, currency := "", "", "", ""
	if comp := job.Compensation; comp != nil {
		interval = string(comp.Interval)
		minAmount = fmt.Sprintf("%d", comp.MinAmount)
		maxAmount = fmt.Sprintf("%d", comp.MaxAmount)
		currency = comp.Currency
	}
	return []string{
		job.ID,
		job.Site,
		job.Title,
		job.CompanyName,
		job.Location.DisplayLocation(),
		job.JobURL,
		boolString(job.IsRemote),
		jobTypesLabel(job.JobTypes),
		interval,
		minAmount,
		maxAmount,
		currency,
		posted,
		job.Description,
	}
}

func jobTypesLabel(types []models.JobType) string {
	if len(types) == 0 {
		return ""
	}
	labels := make([]string, 0, len(types))
	for _, jt := range types {
		labels = append(labels, string(jt))
	}
	return strings.Join(labels, ", ")
}

func snippet(description string) string {
	const maxLen = 160
	flat := strings.Join(strings.Fields(description), " ")
	if len(flat) > maxLen {
		flat = flat[:maxLen-3] + "..."
	}
	return flat
}

func boolString(value bool) string {
	if value {
		return "true"
	}
	return "false"
}

func safe(value string) string {
	return strings.TrimSpace(value)
}

func tableHeader() []string {
	return []string{
		"site",
		"title",
		"company",
		"location",
		"url",
	}
}

func tableRow(job models.JobPost, output *termenv.Output, opts WriteOptions) []string {
	const linkColor = "#87CEEB"

	link := safe(job.JobURL)
	displayURL := "-"
	if link != "" {
		displayURL = link
		if opts.LinkStyle == LinkStyleShort && opts.Hyperlinks {
			displayURL = shortURLLabel(link)
		}
		if opts.ColorEnabled {
			displayURL = output.String(displayURL).Foreground(output.Color(linkColor)).String()
		}
		if opts.Hyperlinks {
			displayURL = hyperlink(link, displayURL)
		}
	}
	return []string{
		safe(job.Site),
		safe(job.Title),
		safe(job.CompanyName),
		safe(job.Location.DisplayLocation()),
		displayURL,
	}
}

func hyperlink(url string, text string) string {
	const esc = "\x1b"
	return esc + "]8;;" + url + esc + "\\" + text + esc + "]8;;" + esc + "\\"
}

func shortURLLabel(raw string) string {
	const maxLen = 60
	label := strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil {
		host := strings.TrimPrefix(parsed.Host, "www.")
		if host != "" {
			label = host + parsed.Path
		}
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = raw
	}
	if len(label) > maxLen {
		label = label[:maxLen-3] + "..."
	}
	return label
}
