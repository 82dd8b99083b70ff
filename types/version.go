package types

// Version is the canonical project version shared by the CLI and the
// run-completed event payload.
const Version = "0.3.0"
