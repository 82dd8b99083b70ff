package harvest

import "errors"

// Outcome classifies how a run ended, for the run summary and the
// run-completed event payload.
type Outcome string

const (
	// OutcomeSuccess covers every normal completion, including runs
	// that scraped nothing because the budget was empty.
	OutcomeSuccess Outcome = "success"
	// OutcomeSearchFailure marks a terminal provider search failure.
	OutcomeSearchFailure Outcome = "search_failure"
)

// ClassifyOutcome maps a Run error to an outcome.
func ClassifyOutcome(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	if errors.Is(err, ErrProviderSearch) {
		return OutcomeSearchFailure
	}
	return OutcomeSearchFailure
}

// ExitCode maps an outcome to the process exit code.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeSuccess:
		return 0
	case OutcomeSearchFailure:
		return 1
	default:
		return 1
	}
}
