package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/wassil-choujaa-account/JobSpy/internal/models"
	"github.com/wassil-choujaa-account/JobSpy/internal/network"
	xhtml "golang.org/x/net/html"
)

func fetchDocument(ctx context.Context, client *network.Client, site, target string, headers map[string]string) (*goquery.Document, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	applyHeaders(req, headers)
	resp, err := client.Do(ctx, req)
	if err != nil {
		return nil, &FetchError{Site: site, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &FetchError{Site: site, Status: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &FetchError{Site: site, Err: err}
	}
	return doc, nil
}

func fetchJSON(ctx context.Context, client *network.Client, site, method, target string, headers map[string]string, body io.Reader, out any) error {
	req, err := fhttp.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	if headers == nil {
		headers = map[string]string{}
	}
	if _, ok := headers["accept"]; !ok {
		headers["accept"] = "application/json"
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(ctx, req)
	if err != nil {
		return &FetchError{Site: site, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &FetchError{Site: site, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Site: site, Err: err}
	}
	return nil
}

func encodeJSON(value any) (io.Reader, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

func applyHeaders(req *fhttp.Request, headers map[string]string) {
	if headers == nil {
		headers = map[string]string{}
	}
	if _, ok := headers["accept"]; !ok {
		headers["accept"] = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	}
	if _, ok := headers["accept-language"]; !ok {
		headers["accept-language"] = "en-US,en;q=0.9"
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
}

func cleanText(value string) string {
	value = html.UnescapeString(value)
	return strings.Join(strings.Fields(value), " ")
}

func absoluteURL(base string, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// renderDescription converts a raw HTML description into the requested
// output format.
func renderDescription(raw string, format models.DescriptionFormat) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	node, err := xhtml.Parse(strings.NewReader(raw))
	if err != nil {
		return cleanText(raw)
	}
	var b strings.Builder
	renderNode(&b, node, format == models.FormatMarkdown)
	return tidyBlankLines(b.String())
}

func renderNode(b *strings.Builder, node *xhtml.Node, markdown bool) {
	switch node.Type {
	case xhtml.TextNode:
		b.WriteString(strings.Join(strings.Fields(node.Data), " "))
		return
	case xhtml.ElementNode:
		switch node.Data {
		case "script", "style":
			return
		case "br":
			b.WriteString("\n")
			return
		case "p", "div", "ul", "ol", "table", "h1", "h2", "h3", "h4":
			b.WriteString("\n")
		case "li":
			if markdown {
				b.WriteString("\n- ")
			} else {
				b.WriteString("\n")
			}
		case "strong", "b":
			if markdown {
				b.WriteString("**")
			}
		case "em", "i":
			if markdown {
				b.WriteString("*")
			}
		}
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		renderNode(b, child, markdown)
	}

	if node.Type == xhtml.ElementNode {
		switch node.Data {
		case "strong", "b":
			if markdown {
				b.WriteString("**")
			}
		case "em", "i":
			if markdown {
				b.WriteString("*")
			}
		case "p", "div", "ul", "ol", "table", "h1", "h2", "h3", "h4":
			b.WriteString("\n")
		}
	}
}

func tidyBlankLines(value string) string {
	lines := strings.Split(value, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.TrimRight(line, " ")
		if strings.TrimSpace(line) == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func parsePostedAt(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty")
	}
	layouts := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02",
		"2006-01-02T15:04:05-0700",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %s", value)
}

func stringValue(values ...any) string {
	for _, value := range values {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		case float64:
			return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
		case int:
			return fmt.Sprintf("%d", v)
		case int64:
			return fmt.Sprintf("%d", v)
		case json.Number:
			return v.String()
		case map[string]any:
			if name := stringValue(v["name"]); name != "" {
				return name
			}
		}
	}
	return ""
}

func floatValue(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		var f float64
		fmt.Sscanf(strings.TrimSpace(v), "%f", &f)
		return f
	}
	return 0
}

func mapValue(value any, key string) any {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	return m[key]
}

func truncate(value string, max int) string {
	if max <= 0 {
		return value
	}
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	return strings.TrimSpace(value[:max]) + "..."
}
