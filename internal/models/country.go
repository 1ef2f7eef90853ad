package models

import (
	"fmt"
	"sort"
	"strings"
)

// Country identifies the market a posting belongs to. The set is closed;
// lookup by name falls back through aliases.
type Country string

const (
	CountryArgentina   Country = "argentina"
	CountryAustralia   Country = "australia"
	CountryAustria     Country = "austria"
	CountryBelgium     Country = "belgium"
	CountryBrazil      Country = "brazil"
	CountryCanada      Country = "canada"
	CountryChile       Country = "chile"
	CountryChina       Country = "china"
	CountryColombia    Country = "colombia"
	CountryDenmark     Country = "denmark"
	CountryFinland     Country = "finland"
	CountryFrance      Country = "france"
	CountryGermany     Country = "germany"
	CountryHongKong    Country = "hong kong"
	CountryIndia       Country = "india"
	CountryIreland     Country = "ireland"
	CountryItaly       Country = "italy"
	CountryJapan       Country = "japan"
	CountryMexico      Country = "mexico"
	CountryNetherlands Country = "netherlands"
	CountryNewZealand  Country = "new zealand"
	CountryNorway      Country = "norway"
	CountryPoland      Country = "poland"
	CountryPortugal    Country = "portugal"
	CountrySingapore   Country = "singapore"
	CountrySouthAfrica Country = "south africa"
	CountrySpain       Country = "spain"
	CountrySweden      Country = "sweden"
	CountrySwitzerland Country = "switzerland"
	CountryUAE         Country = "united arab emirates"
	CountryUK          Country = "uk"
	CountryUSA         Country = "usa"
	CountryWorldwide   Country = "worldwide"
)

type countryInfo struct {
	code         string
	indeedDomain string
	aliases      []string
}

var countries = map[Country]countryInfo{
	CountryArgentina:   {code: "AR", indeedDomain: "ar"},
	CountryAustralia:   {code: "AU", indeedDomain: "au"},
	CountryAustria:     {code: "AT", indeedDomain: "at"},
	CountryBelgium:     {code: "BE", indeedDomain: "be"},
	CountryBrazil:      {code: "BR", indeedDomain: "br"},
	CountryCanada:      {code: "CA", indeedDomain: "ca"},
	CountryChile:       {code: "CL", indeedDomain: "cl"},
	CountryChina:       {code: "CN", indeedDomain: "cn"},
	CountryColombia:    {code: "CO", indeedDomain: "co"},
	CountryDenmark:     {code: "DK", indeedDomain: "dk"},
	CountryFinland:     {code: "FI", indeedDomain: "fi"},
	CountryFrance:      {code: "FR", indeedDomain: "fr"},
	CountryGermany:     {code: "DE", indeedDomain: "de"},
	CountryHongKong:    {code: "HK", indeedDomain: "hk", aliases: []string{"hongkong"}},
	CountryIndia:       {code: "IN", indeedDomain: "in"},
	CountryIreland:     {code: "IE", indeedDomain: "ie"},
	CountryItaly:       {code: "IT", indeedDomain: "it"},
	CountryJapan:       {code: "JP", indeedDomain: "jp"},
	CountryMexico:      {code: "MX", indeedDomain: "mx"},
	CountryNetherlands: {code: "NL", indeedDomain: "nl", aliases: []string{"holland"}},
	CountryNewZealand:  {code: "NZ", indeedDomain: "nz"},
	CountryNorway:      {code: "NO", indeedDomain: "no"},
	CountryPoland:      {code: "PL", indeedDomain: "pl"},
	CountryPortugal:    {code: "PT", indeedDomain: "pt"},
	CountrySingapore:   {code: "SG", indeedDomain: "sg"},
	CountrySouthAfrica: {code: "ZA", indeedDomain: "za"},
	CountrySpain:       {code: "ES", indeedDomain: "es"},
	CountrySweden:      {code: "SE", indeedDomain: "se"},
	CountrySwitzerland: {code: "CH", indeedDomain: "ch"},
	CountryUAE:         {code: "AE", indeedDomain: "ae", aliases: []string{"uae", "emirates"}},
	CountryUK:          {code: "GB", indeedDomain: "uk", aliases: []string{"united kingdom", "great britain", "gb", "england"}},
	CountryUSA:         {code: "US", indeedDomain: "www", aliases: []string{"us", "united states", "united states of america", "america"}},
	CountryWorldwide:   {code: "WW", indeedDomain: "www", aliases: []string{"global", "international"}},
}

// CountryFromString resolves a country by canonical name or alias.
func CountryFromString(value string) (Country, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return CountryUSA, nil
	}
	if _, ok := countries[Country(normalized)]; ok {
		return Country(normalized), nil
	}
	for country, info := range countries {
		if string(country) == normalized || info.code == strings.ToUpper(normalized) {
			return country, nil
		}
		for _, alias := range info.aliases {
			if alias == normalized {
				return country, nil
			}
		}
	}
	return "", fmt.Errorf("invalid country %q, valid countries: %s", value, strings.Join(CountryNames(), ", "))
}

// Code returns the ISO 3166-1 alpha-2 code ("WW" for worldwide).
func (c Country) Code() string {
	if info, ok := countries[c]; ok {
		return info.code
	}
	return ""
}

// IndeedDomain returns the Indeed subdomain for the country.
func (c Country) IndeedDomain() string {
	if info, ok := countries[c]; ok {
		return info.indeedDomain
	}
	return "www"
}

// CountryNames lists the canonical country names in sorted order.
func CountryNames() []string {
	names := make([]string, 0, len(countries))
	for country := range countries {
		names = append(names, string(country))
	}
	sort.Strings(names)
	return names
}
