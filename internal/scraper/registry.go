package scraper

import (
	"strings"

	"github.com/wassil-choujaa-account/JobSpy/internal/network"
)

const (
	SiteIndeed       = "indeed"
	SiteLinkedIn     = "linkedin"
	SiteGlassdoor    = "glassdoor"
	SiteZipRecruiter = "ziprecruiter"
	SiteGoogle       = "google"
	SiteBayt         = "bayt"
	SiteNaukri       = "naukri"
)

// Registry builds one Source per site, each with its own HTTP client so
// cookie jars and rate limits stay independent.
func Registry(rotator *network.Rotator) (map[string]Source, error) {
	makeClient := func() (*network.Client, error) {
		return network.NewClient(rotator)
	}

	sources := map[string]Source{}
	for site, build := range map[string]func(*network.Client) Source{
		SiteIndeed:       func(c *network.Client) Source { return NewIndeed(c) },
		SiteLinkedIn:     func(c *network.Client) Source { return NewLinkedIn(c) },
		SiteGlassdoor:    func(c *network.Client) Source { return NewGlassdoor(c) },
		SiteZipRecruiter: func(c *network.Client) Source { return NewZipRecruiter(c) },
		SiteGoogle:       func(c *network.Client) Source { return NewGoogle(c) },
		SiteBayt:         func(c *network.Client) Source { return NewBayt(c) },
		SiteNaukri:       func(c *network.Client) Source { return NewNaukri(c) },
	} {
		client, err := makeClient()
		if err != nil {
			return nil, err
		}
		sources[site] = build(client)
	}
	return sources, nil
}

func NormalizeSites(sites []string) []string {
	out := make([]string, 0, len(sites))
	for _, site := range sites {
		site = strings.ToLower(strings.TrimSpace(site))
		if site == "" {
			continue
		}
		site = strings.TrimPrefix(site, "www.")
		out = append(out, site)
	}
	return out
}
