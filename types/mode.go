package types

// ScrapeMode selects enrichment depth and billing tier for a run.
// Resolved once at run start and immutable afterwards.
type ScrapeMode int

const (
	// ModeShort emits search results as-is, without a full-profile fetch.
	ModeShort ScrapeMode = iota
	// ModeFull enriches each candidate with a full-profile fetch.
	ModeFull
	// ModeEmail enriches with a full-profile fetch plus email lookup.
	ModeEmail
)

// String returns the mode name for logging and summaries.
func (m ScrapeMode) String() string {
	switch m {
	case ModeShort:
		return "short"
	case ModeFull:
		return "full"
	case ModeEmail:
		return "email"
	default:
		return "unknown"
	}
}

// modeLabels maps the human-readable price-tier labels from the input schema.
var modeLabels = map[string]ScrapeMode{
	"Short ($2 per 1k)":                ModeShort,
	"Full ($6 per 1k)":                 ModeFull,
	"Full + email search ($10 per 1k)": ModeEmail,
}

// modeCodes maps the numeric input codes.
var modeCodes = map[string]ScrapeMode{
	"1": ModeShort,
	"2": ModeFull,
	"3": ModeEmail,
}

// ResolveMode maps a user-supplied mode token to a ScrapeMode.
// Accepts either a price-tier label or a numeric code ("1", "2", "3").
// Unknown or empty tokens resolve to ModeFull: the run must always
// proceed with some policy, so resolution fails soft.
func ResolveMode(token string) ScrapeMode {
	if m, ok := modeLabels[token]; ok {
		return m
	}
	if m, ok := modeCodes[token]; ok {
		return m
	}
	return ModeFull
}
