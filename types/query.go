package types

import (
	"errors"
	"strings"
)

// ErrMissingIdentity is returned when neither first nor last name survives
// trimming. The run cannot proceed without a name to search, and the check
// happens before any network interaction.
var ErrMissingIdentity = errors.New("firstName and lastName inputs are required")

// RawInput is the schema-validated run input as supplied by the host platform.
type RawInput struct {
	ProfileScraperMode string   `json:"profileScraperMode"`
	CurrentCompanies   []string `json:"currentCompanies,omitempty"`
	PastCompanies      []string `json:"pastCompanies,omitempty"`
	FirstName          string   `json:"firstName,omitempty"`
	LastName           string   `json:"lastName,omitempty"`
	Schools            []string `json:"schools,omitempty"`
	Locations          []string `json:"locations,omitempty"`
	IndustryIDs        []string `json:"industryIds,omitempty"`
	MaxItems           int      `json:"maxItems,omitempty"`
}

// Query is the canonical search query sent to the provider.
// Array fields hold only non-empty, whitespace-normalized, comma-free
// strings; empty fields are omitted entirely. Built once from RawInput
// and never mutated afterwards.
type Query struct {
	Search         string   `json:"search"`
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	CurrentCompany []string `json:"currentCompany,omitempty"`
	PastCompany    []string `json:"pastCompany,omitempty"`
	School         []string `json:"school,omitempty"`
	Location       []string `json:"location,omitempty"`
	IndustryID     []string `json:"industryId,omitempty"`
}

// NormalizeQuery cleans and compacts the raw filter fields into a Query.
// Scalar name fields are trimmed; if either is empty afterwards the run
// cannot proceed and ErrMissingIdentity is returned.
func NormalizeQuery(raw RawInput) (Query, error) {
	first := strings.TrimSpace(raw.FirstName)
	last := strings.TrimSpace(raw.LastName)
	if first == "" || last == "" {
		return Query{}, ErrMissingIdentity
	}

	return Query{
		Search:         strings.TrimSpace(first + " " + last),
		FirstName:      first,
		LastName:       last,
		CurrentCompany: cleanValues(raw.CurrentCompanies),
		PastCompany:    cleanValues(raw.PastCompanies),
		School:         cleanValues(raw.Schools),
		Location:       cleanValues(raw.Locations),
		IndustryID:     cleanValues(raw.IndustryIDs),
	}, nil
}

// cleanValues normalizes an array-valued filter field: commas become spaces,
// repeated whitespace collapses to one space, entries are trimmed, and empty
// entries are dropped. Returns nil when nothing survives so the field is
// omitted rather than present-but-empty.
func cleanValues(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ReplaceAll(v, ",", " ")
		v = strings.Join(strings.Fields(v), " ")
		if v != "" {
			cleaned = append(cleaned, v)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}
