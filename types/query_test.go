package types_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/harvestapi/prospector/types"
)

func TestNormalizeQuery_CleansArrayFields(t *testing.T) {
	raw := types.RawInput{
		FirstName: "Jane",
		LastName:  "Doe",
		Locations: []string{"New York,  NY", " ", "Paris"},
		Schools:   []string{"MIT,Stanford"},
	}

	q, err := types.NormalizeQuery(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantLocations := []string{"New York NY", "Paris"}
	if !reflect.DeepEqual(q.Location, wantLocations) {
		t.Errorf("Location = %v, want %v", q.Location, wantLocations)
	}
	wantSchools := []string{"MIT Stanford"}
	if !reflect.DeepEqual(q.School, wantSchools) {
		t.Errorf("School = %v, want %v", q.School, wantSchools)
	}
}

func TestNormalizeQuery_OmitsEmptyFields(t *testing.T) {
	raw := types.RawInput{
		FirstName:        "Jane",
		LastName:         "Doe",
		CurrentCompanies: []string{"  ", ","},
		PastCompanies:    nil,
	}

	q, err := types.NormalizeQuery(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Fields that clean down to nothing are omitted, not present-but-empty.
	if q.CurrentCompany != nil {
		t.Errorf("CurrentCompany = %v, want nil", q.CurrentCompany)
	}
	if q.PastCompany != nil {
		t.Errorf("PastCompany = %v, want nil", q.PastCompany)
	}
}

func TestNormalizeQuery_SearchString(t *testing.T) {
	q, err := types.NormalizeQuery(types.RawInput{FirstName: "  Jane ", LastName: " Doe  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Search != "Jane Doe" {
		t.Errorf("Search = %q, want %q", q.Search, "Jane Doe")
	}
	if q.FirstName != "Jane" || q.LastName != "Doe" {
		t.Errorf("names = %q %q, want trimmed", q.FirstName, q.LastName)
	}
}

func TestNormalizeQuery_MissingIdentity(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
	}{
		{"empty first", "", "Doe"},
		{"empty last", "Jane", ""},
		{"whitespace first", "   ", "Doe"},
		{"both empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := types.NormalizeQuery(types.RawInput{FirstName: tt.first, LastName: tt.last})
			if !errors.Is(err, types.ErrMissingIdentity) {
				t.Errorf("error = %v, want ErrMissingIdentity", err)
			}
		})
	}
}

func TestCandidate_Handle(t *testing.T) {
	c := types.Candidate{ID: "abc123", PublicIdentifier: "jane-doe"}
	if got := c.Handle(); got != "jane-doe" {
		t.Errorf("Handle() = %q, want public identifier", got)
	}
	c.PublicIdentifier = ""
	if got := c.Handle(); got != "abc123" {
		t.Errorf("Handle() = %q, want id fallback", got)
	}
}
