package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wassil-choujaa-account/JobSpy/internal/models"
)

var remoteKeywords = []string{"remote", "work from home", "wfh"}

// isJobRemote checks title, description and formatted location for remote
// keywords. Any single match is enough.
func isJobRemote(title, description string, location models.Location) bool {
	haystack := strings.ToLower(title + " " + description + " " + location.DisplayLocation())
	for _, keyword := range remoteKeywords {
		if strings.Contains(haystack, keyword) {
			return true
		}
	}
	return false
}

// salaryRangePattern matches Indian salary labels such as "12-16 Lacs P.A."
// or "1-2 Cr".
var salaryRangePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*-\s*(\d+(?:\.\d+)?)\s*(Lacs|Lakh|Cr)\s*(P\.A\.)?`)

// parseSalaryText converts a free-text Indian salary label into a canonical
// compensation. "Not disclosed" and unparsable labels both yield nil: the
// posting simply carries no compensation, it is not a run failure.
func parseSalaryText(text string) *models.Compensation {
	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, "Not disclosed") {
		return nil
	}

	match := salaryRangePattern.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	minAmount, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return nil
	}
	maxAmount, err := strconv.ParseFloat(match[2], 64)
	if err != nil {
		return nil
	}

	switch strings.ToLower(match[3]) {
	case "lacs", "lakh":
		minAmount *= 100_000
		maxAmount *= 100_000
	case "cr":
		minAmount *= 10_000_000
		maxAmount *= 10_000_000
	}

	comp := &models.Compensation{
		MinAmount: int(minAmount),
		MaxAmount: int(maxAmount),
		Currency:  "INR",
	}
	if match[4] != "" {
		comp.Interval = models.IntervalYearly
	}
	return comp
}

var daysAgoPattern = regexp.MustCompile(`(\d+)\s*day`)

// parsePostedDate resolves a posted date from a relative label ("Today",
// "3 days ago") or an epoch-millisecond timestamp. The label takes
// precedence; unparsable labels fall back to the timestamp, then to zero.
func parsePostedDate(label string, epochMillis int64, now time.Time) time.Time {
	label = strings.ToLower(strings.TrimSpace(label))
	switch {
	case label == "":
	case strings.Contains(label, "today"),
		strings.Contains(label, "just now"),
		strings.Contains(label, "few hours"):
		return now.Truncate(24 * time.Hour)
	case strings.Contains(label, "ago"):
		if match := daysAgoPattern.FindStringSubmatch(label); match != nil {
			days, _ := strconv.Atoi(match[1])
			return now.AddDate(0, 0, -days).Truncate(24 * time.Hour)
		}
	}
	if epochMillis > 0 {
		return time.UnixMilli(epochMillis).UTC().Truncate(24 * time.Hour)
	}
	return time.Time{}
}

// cleanIndustry strips internal vendor tokens from a free-text industry
// label and normalizes casing and separators.
func cleanIndustry(value string) string {
	value = strings.ReplaceAll(value, "Iv1", "")
	value = strings.ReplaceAll(value, "_", " ")
	value = strings.Join(strings.Fields(value), " ")
	if value == "" {
		return ""
	}
	words := strings.Fields(strings.ToLower(value))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// extractEmails pulls contact addresses out of a description.
func extractEmails(text string) []string {
	if text == "" {
		return nil
	}
	found := emailPattern.FindAllString(text, -1)
	if len(found) == 0 {
		return nil
	}
	seen := map[string]struct{}{}
	emails := make([]string, 0, len(found))
	for _, email := range found {
		lowered := strings.ToLower(email)
		if _, ok := seen[lowered]; ok {
			continue
		}
		seen[lowered] = struct{}{}
		emails = append(emails, email)
	}
	return emails
}

// parseLocationString splits "City, State" into a Location with the given
// country.
func parseLocationString(value string, country models.Country) models.Location {
	location := models.Location{Country: country}
	parts := strings.SplitN(strings.TrimSpace(value), ", ", 2)
	if len(parts) > 0 {
		location.City = parts[0]
	}
	if len(parts) > 1 {
		location.State = parts[1]
	}
	return location
}

// inferWorkFromHomeType classifies a posting as Hybrid, Remote or office
// work from its location label, title and description.
func inferWorkFromHomeType(locationLabel, title, description string) string {
	haystack := strings.ToLower(locationLabel + " " + title + " " + description)
	switch {
	case strings.Contains(haystack, "hybrid"):
		return "Hybrid"
	case strings.Contains(haystack, "remote"):
		return "Remote"
	case description != "":
		return "Work from office"
	}
	return ""
}
