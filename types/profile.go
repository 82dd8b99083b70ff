package types

// PaymentCapabilityProfileWithEmail marks an enrichment that actually
// resolved an email address. The provider reports it in the
// availablePayments list of a full-profile fetch.
const PaymentCapabilityProfileWithEmail = "linkedinProfileWithEmail"

// Candidate is a provider search result: a reference to a profile that has
// not been enriched yet. Produced by the provider, consumed once by the
// orchestrator, and discarded after forwarding.
type Candidate struct {
	ID               string `json:"id"`
	PublicIdentifier string `json:"publicIdentifier"`
	LinkedinURL      string `json:"linkedinUrl"`
	Name             string `json:"name,omitempty"`
	Position         string `json:"position,omitempty"`
	Location         string `json:"location,omitempty"`
}

// Handle returns the identifier used for a full-profile fetch, preferring
// the public identifier over the opaque ID.
func (c Candidate) Handle() string {
	if c.PublicIdentifier != "" {
		return c.PublicIdentifier
	}
	return c.ID
}

// Ref returns the most descriptive reference available for logging.
func (c Candidate) Ref() string {
	if c.LinkedinURL != "" {
		return c.LinkedinURL
	}
	if c.PublicIdentifier != "" {
		return c.PublicIdentifier
	}
	return c.ID
}

// Valid reports whether the candidate carries enough identity to process.
func (c Candidate) Valid() bool {
	return c.ID != "" || c.LinkedinURL != ""
}

// Item is an output item: either a Candidate reused as-is (short mode) or
// the payload of a full-profile fetch. Profiles are kept as raw maps since
// the provider schema is wide and the run forwards them untouched.
type Item map[string]any

// ItemFromCandidate converts a search result into an output item for runs
// that skip enrichment.
func ItemFromCandidate(c Candidate) Item {
	item := Item{
		"id":               c.ID,
		"publicIdentifier": c.PublicIdentifier,
		"linkedinUrl":      c.LinkedinURL,
	}
	if c.Name != "" {
		item["name"] = c.Name
	}
	if c.Position != "" {
		item["position"] = c.Position
	}
	if c.Location != "" {
		item["location"] = c.Location
	}
	return item
}

// Ref returns the best profile reference in the item for logging.
func (i Item) Ref() string {
	for _, key := range []string{"linkedinUrl", "publicIdentifier", "id"} {
		if v, ok := i[key].(string); ok && v != "" {
			return v
		}
	}
	return "<unknown>"
}
