package diag

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

type Location struct {
	// 0-based, columns count runes
	Line, Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line+1, l.Column+1)
}

func (l Location) Before(o Location) bool {
	return l.Line < o.Line || (l.Line == o.Line && l.Column < o.Column)
}

// Span is a range of source text. End is exclusive.
type Span struct {
	Source     string
	Start, End Location
}

func (s Span) String() string {
	if s.Source == "" {
		return s.Start.String()
	}
	return s.Source + ":" + s.Start.String()
}

// Join returns a span covering both s and o. Both must belong to the same source.
func (s Span) Join(o Span) Span {
	if o.Start.Before(s.Start) {
		s.Start = o.Start
	}
	if s.End.Before(o.End) {
		s.End = o.End
	}
	return s
}

// Situated is implemented by errors that carry a source position.
type Situated interface {
	error
	At() Location
}

// Error is a located diagnostic produced while lexing, parsing or evaluating.
type Error struct {
	Kind       Kind
	Message    string
	Span       Span
	Suggestion string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Span.Start)
}

func (e *Error) At() Location {
	return e.Span.Start
}

// Render formats the error as "<file>:<line>:<col>: <message>", followed by a
// help line when a suggestion is available.
func (e *Error) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s", e.Span, e.Message)

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\nhelp: did you mean '%s'?", e.Suggestion)
	}

	return b.String()
}

func Errorf(kind Kind, span Span, format string, a ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, a...),
		Span:    span,
	}
}

func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// Sort orders errors by their start position, keeping the relative order of
// errors reported at the same place.
func Sort(errs []*Error) {
	slices.SortStableFunc(errs, func(a, b *Error) int {
		switch {
		case a.Span.Start.Before(b.Span.Start):
			return -1
		case b.Span.Start.Before(a.Span.Start):
			return 1
		}
		return 0
	})
}
