package matcher

import (
	"fmt"

	"github.com/spicery/soundchanger/pkg/soundclass"
)

// Binding records which member of a class a class reference matched.
type Binding struct {
	Class *soundclass.Class
	Sound string
}

// Span is one way a pattern matched: the byte range [Start, End) of the word,
// the matched text and one binding per class reference, left to right.
type Span struct {
	Start    int
	End      int
	Text     string
	Bindings []Binding
}

// Empty reports whether the span has zero width.
func (s Span) Empty() bool {
	return s.Start == s.End
}

// Merge concatenates two adjacent spans. Merging spans that do not touch is a
// bug in the caller and panics.
func (s Span) Merge(next Span) Span {
	if s.End != next.Start {
		panic(fmt.Sprintf("matcher: cannot merge span [%d,%d) with non-adjacent span [%d,%d)",
			s.Start, s.End, next.Start, next.End))
	}
	var bindings []Binding
	if len(s.Bindings)+len(next.Bindings) > 0 {
		bindings = make([]Binding, 0, len(s.Bindings)+len(next.Bindings))
		bindings = append(bindings, s.Bindings...)
		bindings = append(bindings, next.Bindings...)
	}
	return Span{
		Start:    s.Start,
		End:      next.End,
		Text:     s.Text + next.Text,
		Bindings: bindings,
	}
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d) %q", s.Start, s.End, s.Text)
}

func emptyAt(pos int) Span {
	return Span{Start: pos, End: pos}
}
