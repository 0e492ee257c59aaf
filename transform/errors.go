package transform

import "strings"

// StepError describes a transform failure as a path from the root
// expression to the failing node. Each failing node prepends its
// identifier (a key name, "[i]" for an array index, or an operation
// name) to History as evaluation unwinds, so the final History reads as
// a walk from root to failure.
type StepError struct {
	History []string
	Choices any // alternative keys available at the failing object, if any
}

func (e *StepError) Error() string {
	return "transform: " + strings.Join(e.History, " -> ")
}

// prepend returns a copy of err with ident pushed onto the front of the
// breadcrumb history.
func prepend(err *StepError, ident string) *StepError {
	history := make([]string, 0, len(err.History)+1)
	history = append(history, ident)
	history = append(history, err.History...)
	return &StepError{History: history, Choices: err.Choices}
}

func fail(ident string, choices any) *StepError {
	return &StepError{History: []string{ident}, Choices: choices}
}
