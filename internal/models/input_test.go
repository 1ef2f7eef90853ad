package models

import (
	"errors"
	"testing"
)

func TestNormalizedDefaults(t *testing.T) {
	got := ScraperInput{SearchTerm: "golang"}.Normalized()
	if got.ResultsWanted != DefaultResultsWanted {
		t.Errorf("ResultsWanted = %d", got.ResultsWanted)
	}
	if got.Distance != DefaultDistance {
		t.Errorf("Distance = %d", got.Distance)
	}
	if got.Country != CountryUSA {
		t.Errorf("Country = %q", got.Country)
	}
	if got.DescriptionFormat != FormatMarkdown {
		t.Errorf("DescriptionFormat = %q", got.DescriptionFormat)
	}
}

func TestNormalizedKeepsExplicitValues(t *testing.T) {
	in := ScraperInput{
		ResultsWanted:     40,
		Distance:          10,
		Country:           CountryIndia,
		DescriptionFormat: FormatPlain,
	}
	got := in.Normalized()
	if got != in {
		t.Errorf("got %+v, want unchanged", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		input ScraperInput
		field string
	}{
		{"zero results", ScraperInput{}, "results_wanted"},
		{"negative offset", ScraperInput{ResultsWanted: 5, Offset: -1}, "offset"},
		{"negative distance", ScraperInput{ResultsWanted: 5, Distance: -1}, "distance"},
		{"negative hours", ScraperInput{ResultsWanted: 5, HoursOld: -1}, "hours_old"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("err = %v, want InputError", err)
			}
			if inputErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", inputErr.Field, tt.field)
			}
		})
	}

	if err := (ScraperInput{ResultsWanted: 15}).Validate(); err != nil {
		t.Errorf("valid input rejected: %v", err)
	}
}
