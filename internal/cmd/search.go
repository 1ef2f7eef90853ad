package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"github.com/wassil-choujaa-account/JobSpy/internal/config"
	"github.com/wassil-choujaa-account/JobSpy/internal/export"
	"github.com/wassil-choujaa-account/JobSpy/internal/models"
	"github.com/wassil-choujaa-account/JobSpy/internal/network"
	"github.com/wassil-choujaa-account/JobSpy/internal/scraper"
	"github.com/wassil-choujaa-account/JobSpy/internal/seen"
)

type SearchCmd struct {
	Query string `arg:"" optional:"" help:"Search query (comma-separated). Optional when --query-file is provided."`
	Sites string `help:"Comma-separated list of sites (default: all)." default:"all"`
	SearchOptions
}

type SiteCmd struct {
	Query string `arg:"" optional:"" help:"Search query (comma-separated). Optional when --query-file is provided."`
	SearchOptions
	Site string `kong:"-"`
}

type SearchOptions struct {
	Location     string `help:"Job location." env:"JOBSPY_DEFAULT_LOCATION"`
	Country      string `help:"Country name or code (Indeed/Glassdoor)." env:"JOBSPY_DEFAULT_COUNTRY"`
	Results      int    `help:"Results wanted per site." env:"JOBSPY_DEFAULT_RESULTS"`
	Offset       int    `help:"Skip the first N results."`
	Distance     int    `help:"Search radius in miles."`
	Remote       bool   `help:"Remote-only roles."`
	JobType      string `help:"Job type filter (fulltime, parttime, contract, internship)." enum:",fulltime,parttime,contract,internship" default:""`
	EasyApply    bool   `help:"Direct-apply listings only (Indeed/ZipRecruiter)."`
	Hours        int    `help:"Jobs posted in the last N hours."`
	GoogleQuery  string `help:"Literal Google Jobs search string (overrides query + location for google)."`
	Descriptions bool   `help:"Fetch full descriptions where it needs an extra request per job."`
	Plaintext    bool   `name:"plain-descriptions" help:"Render descriptions as plain text instead of markdown."`
	Format       string `help:"Output format: csv, json, md." enum:",csv,json,md" default:""`
	Links        string `help:"Table link display: short or full." enum:"short,full" default:"full"`
	Output       string `name:"output" short:"o" help:"Write output to a file."`
	Out          string `name:"out" help:"Alias for --output."`
	File         string `name:"file" help:"Alias for --output."`
	Proxies      string `help:"Comma-separated proxy URLs." env:"JOBSPY_PROXIES"`
	QueryFile    string `help:"Path to JSON file with queries (top-level string array or object with job_titles array)."`
	Seen         string `help:"Path to seen jobs JSON file."`
	NewOnly      bool   `help:"Output only unseen jobs (requires --seen)."`
	NewOut       string `help:"Write unseen jobs JSON to a file (requires --seen)."`
	SeenUpdate   bool   `help:"Update --seen history file by merging in newly discovered unseen jobs after search completes (requires --seen)."`
}

const maxQueries = 10

func (s *SearchCmd) Run(ctx *Context) error {
	return runSearch(ctx, s.Query, s.Sites, s.SearchOptions)
}

func (s *SiteCmd) Run(ctx *Context) error {
	return runSearch(ctx, s.Query, s.Site, s.SearchOptions)
}

func runSearch(ctx *Context, query string, sitesArg string, opts SearchOptions) error {
	if opts.NewOnly && strings.TrimSpace(opts.Seen) == "" {
		return fmt.Errorf("--new-only requires --seen")
	}
	if strings.TrimSpace(opts.NewOut) != "" && strings.TrimSpace(opts.Seen) == "" {
		return fmt.Errorf("--new-out requires --seen")
	}
	if opts.SeenUpdate && strings.TrimSpace(opts.Seen) == "" {
		return fmt.Errorf("--seen-update requires --seen")
	}

	queries, err := resolveQueries(query, opts.QueryFile)
	if err != nil {
		return err
	}

	baseInput, err := buildInput(ctx.Config, opts)
	if err != nil {
		return err
	}

	proxies, err := config.LoadProxies(opts.Proxies)
	if err != nil {
		return err
	}

	var rotator *network.Rotator
	if len(proxies) > 0 {
		rotator, err = network.NewRotator(proxies, 10*time.Minute)
		if err != nil {
			return err
		}
	}

	registry, err := scraper.Registry(rotator)
	if err != nil {
		return err
	}
	selected, err := selectSources(registry, sitesArg)
	if err != nil {
		return err
	}

	stopIndicator := startSearchIndicator(ctx)
	if stopIndicator != nil {
		defer stopIndicator()
	}

	var (
		jobs     []models.JobPost
		failures []scraper.SourceFailure
	)
	for _, currentQuery := range queries {
		input := baseInput
		input.SearchTerm = currentQuery
		queryJobs, queryFailures := scraper.ScrapeAll(context.Background(), selected, input)
		jobs = mergeUniqueJobs(jobs, queryJobs)
		failures = append(failures, queryFailures...)
	}

	sortJobsBySite(jobs)
	sortFailures(failures)

	reportFailures(ctx, failures)

	var unseenJobs []models.JobPost
	if strings.TrimSpace(opts.Seen) != "" {
		history, err := seen.ReadJobsAllowMissing(opts.Seen)
		if err != nil {
			return fmt.Errorf("read --seen: %w", err)
		}
		unseenJobs, _ = seen.Diff(jobs, history)
	}

	outputJobs := jobs
	if opts.NewOnly {
		outputJobs = unseenJobs
	}

	outputPath := resolveOutputPath(opts)
	if strings.TrimSpace(opts.NewOut) != "" && pathsEqual(outputPath, opts.NewOut) {
		return fmt.Errorf("--new-out path must differ from --output")
	}
	if strings.TrimSpace(opts.Seen) != "" && pathsEqual(outputPath, opts.Seen) {
		return fmt.Errorf("--output path must differ from --seen")
	}
	if strings.TrimSpace(opts.NewOut) != "" && pathsEqual(opts.NewOut, opts.Seen) {
		return fmt.Errorf("--new-out path must differ from --seen")
	}

	if strings.TrimSpace(opts.NewOut) != "" {
		if err := seen.WriteJobs(opts.NewOut, unseenJobs); err != nil {
			return fmt.Errorf("write --new-out: %w", err)
		}
	}

	format, err := resolveFormat(ctx, opts, outputPath)
	if err != nil {
		return err
	}

	writer := ctx.Out
	var file *os.File
	if outputPath != "" {
		file, err = os.Create(outputPath)
		if err != nil {
			return err
		}
		defer file.Close()
		writer = file
	}

	colorEnabled := ctx.UI != nil && ctx.UI.ColorEnabled
	hyperlinks := colorEnabled && isTTY(writer)
	linkStyle := export.LinkStyleShort
	if strings.EqualFold(opts.Links, string(export.LinkStyleFull)) {
		linkStyle = export.LinkStyleFull
	}
	if err := export.WriteJobs(writer, outputJobs, format, export.WriteOptions{
		ColorEnabled: colorEnabled,
		Hyperlinks:   hyperlinks,
		LinkStyle:    linkStyle,
	}); err != nil {
		return err
	}

	if opts.SeenUpdate && strings.TrimSpace(opts.Seen) != "" {
		if err := updateSeenHistory(opts.Seen, unseenJobs); err != nil {
			return err
		}
	}

	summaryJobs := jobs
	if strings.TrimSpace(opts.Seen) != "" {
		summaryJobs = unseenJobs
	}
	printSearchSummary(ctx, summaryJobs)

	return nil
}

// buildInput translates CLI flags into the scraper input, validating
// enum-like values before any network activity.
func buildInput(cfg config.Config, opts SearchOptions) (models.ScraperInput, error) {
	input := models.ScraperInput{
		GoogleSearchTerm: opts.GoogleQuery,
		Location:         firstNonEmpty(opts.Location, cfg.DefaultLocation),
		Distance:         opts.Distance,
		IsRemote:         opts.Remote,
		EasyApply:        opts.EasyApply,
		HoursOld:         opts.Hours,
		ResultsWanted:    defaultInt(opts.Results, cfg.DefaultResults),
		Offset:           opts.Offset,
		FetchDescription: opts.Descriptions,
	}

	country, err := models.CountryFromString(firstNonEmpty(opts.Country, cfg.DefaultCountry))
	if err != nil {
		return input, err
	}
	input.Country = country

	if opts.JobType != "" {
		jobType, ok := models.ParseJobType(opts.JobType)
		if !ok {
			return input, fmt.Errorf("unknown job type: %s", opts.JobType)
		}
		input.JobType = jobType
	}

	input.DescriptionFormat = models.DescriptionFormat(firstNonEmpty(cfg.DescriptionFormat, string(models.FormatMarkdown)))
	if opts.Plaintext {
		input.DescriptionFormat = models.FormatPlain
	}

	return input, nil
}

func pathsEqual(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil {
		return absA == absB
	}
	return filepath.Clean(a) == filepath.Clean(b)
}

func updateSeenHistory(seenPath string, inputJobs []models.JobPost) error {
	history, err := seen.ReadJobsAllowMissing(seenPath)
	if err != nil {
		return fmt.Errorf("read --seen: %w", err)
	}

	merged, _ := seen.Merge(history, inputJobs)
	if err := seen.WriteJobs(seenPath, merged); err != nil {
		return fmt.Errorf("write --seen: %w", err)
	}

	return nil
}

func printSearchSummary(ctx *Context, jobs []models.JobPost) {
	if ctx == nil || ctx.UI == nil {
		return
	}
	ctx.UI.Mutedf("%s", formatSearchSummary(jobs))
}

func formatSearchSummary(jobs []models.JobPost) string {
	counts := countJobsBySite(jobs)
	if len(counts) == 0 {
		return "summary: new_jobs=0 by_site=none"
	}

	parts := make([]string, 0, len(counts))
	for _, count := range counts {
		parts = append(parts, fmt.Sprintf("%s:%d", count.site, count.total))
	}

	return fmt.Sprintf("summary: new_jobs=%d by_site=%s", len(jobs), strings.Join(parts, ", "))
}

type siteCount struct {
	site  string
	total int
}

func countJobsBySite(jobs []models.JobPost) []siteCount {
	siteTotals := make(map[string]int, len(jobs))
	for _, job := range jobs {
		site := strings.ToLower(strings.TrimSpace(job.Site))
		if site == "" {
			site = "unknown"
		}
		siteTotals[site]++
	}

	counts := make([]siteCount, 0, len(siteTotals))
	for site, total := range siteTotals {
		counts = append(counts, siteCount{site: site, total: total})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].site < counts[j].site
	})
	return counts
}

func resolveQueries(raw string, queryFile string) ([]string, error) {
	positionalQueries := splitQueries(raw)
	var fileQueries []string
	if strings.TrimSpace(queryFile) != "" {
		var err error
		fileQueries, err = loadQueriesFromJSON(queryFile)
		if err != nil {
			return nil, err
		}
	}
	return mergeAndNormalizeQueries(positionalQueries, fileQueries)
}

func splitQueries(raw string) []string {
	parts := strings.Split(raw, ",")
	queries := make([]string, 0, len(parts))

	for _, part := range parts {
		query := strings.TrimSpace(part)
		if query == "" {
			continue
		}
		queries = append(queries, query)
	}

	return queries
}

func mergeAndNormalizeQueries(primary []string, secondary []string) ([]string, error) {
	queries := make([]string, 0, len(primary)+len(secondary))
	seenQueries := make(map[string]struct{}, len(primary)+len(secondary))

	appendUnique := func(rawQuery string) {
		query := strings.TrimSpace(rawQuery)
		if query == "" {
			return
		}
		normalized := strings.ToLower(query)
		if _, exists := seenQueries[normalized]; exists {
			return
		}
		seenQueries[normalized] = struct{}{}
		queries = append(queries, query)
	}

	for _, query := range primary {
		appendUnique(query)
	}
	for _, query := range secondary {
		appendUnique(query)
	}

	if len(queries) == 0 {
		return nil, fmt.Errorf("at least one non-empty query is required")
	}
	if len(queries) > maxQueries {
		return nil, fmt.Errorf("too many queries: max %d", maxQueries)
	}

	return queries, nil
}

func loadQueriesFromJSON(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read --query-file %q: %w", path, err)
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("parse --query-file %q: %w", path, err)
	}

	switch value := decoded.(type) {
	case []any:
		return parseStringArray(value, path, "root array")
	case map[string]any:
		rawTitles, ok := value["job_titles"]
		if !ok {
			return nil, fmt.Errorf("invalid --query-file %q: expected top-level string array or object with \"job_titles\" string array", path)
		}
		titles, ok := rawTitles.([]any)
		if !ok {
			return nil, fmt.Errorf("invalid --query-file %q: field \"job_titles\" must be an array of strings", path)
		}
		return parseStringArray(titles, path, "job_titles")
	default:
		return nil, fmt.Errorf("invalid --query-file %q: expected top-level string array or object with \"job_titles\" string array", path)
	}
}

func parseStringArray(values []any, path string, fieldName string) ([]string, error) {
	queries := make([]string, 0, len(values))
	for idx, rawValue := range values {
		query, ok := rawValue.(string)
		if !ok {
			return nil, fmt.Errorf("invalid --query-file %q: %s[%d] must be a string", path, fieldName, idx)
		}
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}
		queries = append(queries, query)
	}
	return queries, nil
}

// mergeUniqueJobs concatenates results across queries, collapsing
// postings that normalize to the same title+company key.
func mergeUniqueJobs(existing []models.JobPost, incoming []models.JobPost) []models.JobPost {
	if len(incoming) == 0 {
		return existing
	}

	keys := make(map[string]struct{}, len(existing)+len(incoming))
	merged := make([]models.JobPost, 0, len(existing)+len(incoming))

	for _, job := range existing {
		merged = append(merged, job)
		key, ok := seen.Key(job)
		if !ok {
			continue
		}
		keys[key] = struct{}{}
	}

	for _, job := range incoming {
		key, ok := seen.Key(job)
		if !ok {
			merged = append(merged, job)
			continue
		}
		if _, exists := keys[key]; exists {
			continue
		}
		keys[key] = struct{}{}
		merged = append(merged, job)
	}

	return merged
}

func sortJobsBySite(jobs []models.JobPost) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return strings.ToLower(jobs[i].Site) < strings.ToLower(jobs[j].Site)
	})
}

func sortFailures(failures []scraper.SourceFailure) {
	sort.SliceStable(failures, func(i, j int) bool {
		return strings.ToLower(failures[i].Site) < strings.ToLower(failures[j].Site)
	})
}

func reportFailures(ctx *Context, failures []scraper.SourceFailure) {
	if ctx == nil || ctx.UI == nil {
		return
	}
	if len(failures) == 0 {
		return
	}

	ctx.UI.Warnf("\nSource errors:")
	for _, failure := range failures {
		ctx.UI.Warnf("  %s: %v", failure.Site, failure.Err)
	}
}

func resolveOutputPath(opts SearchOptions) string {
	if opts.Output != "" {
		return opts.Output
	}
	if opts.Out != "" {
		return opts.Out
	}
	return opts.File
}

func resolveFormat(ctx *Context, opts SearchOptions, outputPath string) (export.Format, error) {
	if outputPath != "" {
		if ctx.JSONOutput {
			return export.FormatJSON, nil
		}
		if ctx.PlainText {
			return export.FormatTSV, nil
		}
		if opts.Format == "" {
			return export.FormatCSV, nil
		}
		return parseFormat(opts.Format)
	}

	if ctx.JSONOutput {
		return export.FormatJSON, nil
	}
	if ctx.PlainText {
		return export.FormatTSV, nil
	}
	if opts.Format != "" {
		return parseFormat(opts.Format)
	}
	if isTTY(ctx.Out) {
		return export.FormatTable, nil
	}
	return export.FormatCSV, nil
}

func parseFormat(value string) (export.Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "csv":
		return export.FormatCSV, nil
	case "json":
		return export.FormatJSON, nil
	case "md", "markdown":
		return export.FormatMarkdown, nil
	case "tsv":
		return export.FormatTSV, nil
	case "table", "":
		return export.FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format: %s", value)
	}
}

func selectSources(registry map[string]scraper.Source, sitesArg string) ([]scraper.Source, error) {
	requested := scraper.NormalizeSites(strings.Split(sitesArg, ","))
	if len(requested) == 0 || (len(requested) == 1 && requested[0] == "all") {
		requested = make([]string, 0, len(registry))
		for site := range registry {
			requested = append(requested, site)
		}
		sort.Strings(requested)
	}

	requested = expandAliases(requested)

	selected := make([]scraper.Source, 0, len(requested))
	for _, site := range requested {
		source, ok := registry[site]
		if !ok {
			return nil, fmt.Errorf("unknown site: %s", site)
		}
		selected = append(selected, source)
	}

	return selected, nil
}

func expandAliases(sites []string) []string {
	out := make([]string, 0, len(sites))
	for _, site := range sites {
		switch site {
		case "zip", "zip-recruiter":
			out = append(out, scraper.SiteZipRecruiter)
		case "google-jobs", "googlejobs":
			out = append(out, scraper.SiteGoogle)
		default:
			out = append(out, site)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func defaultInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}

func isTTY(out io.Writer) bool {
	output := termenv.NewOutput(out)
	return output.ColorProfile() != termenv.Ascii
}

func startSearchIndicator(ctx *Context) func() {
	if ctx == nil || ctx.Err == nil || ctx.UI == nil {
		return nil
	}
	if !isTTY(ctx.Err) {
		return nil
	}

	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		start := time.Now()
		frames := []string{"|", "/", "-", "\\"}
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		index := 0

		for {
			select {
			case <-done:
				fmt.Fprint(ctx.Err, "\r\033[2K")
				return
			case <-ticker.C:
				seconds := int(time.Since(start).Seconds())
				frame := frames[index%len(frames)]
				fmt.Fprintf(ctx.Err, "\r\033[2KSearching... %ds %s", seconds, frame)
				index++
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}
