package fmuerrors

import "fmt"

// WarningKind classifies a non-fatal issue.
type WarningKind string

const (
	// WarnUser flags a recoverable misuse or degraded outcome.
	WarnUser WarningKind = "user"
	// WarnDeprecation flags use of a deprecated argument or value.
	WarnDeprecation WarningKind = "deprecation"
	// WarnFuture flags behavior that will change in a future version.
	WarnFuture WarningKind = "future"
)

// Warning is a non-fatal issue surfaced to the caller.
type Warning struct {
	Kind    WarningKind
	Message string
}

func (w Warning) String() string { return string(w.Kind) + ": " + w.Message }

// Warnings is an ordered collection of warnings.
type Warnings []Warning

// Add appends a warning of the given kind.
func (ws *Warnings) Add(kind WarningKind, format string, args ...interface{}) {
	*ws = append(*ws, Warning{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// Messages returns the warning messages in order.
func (ws Warnings) Messages() []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Message
	}
	return out
}
