// Package matcher enumerates the ways a pattern can match a word at a given
// position.
//
// Matching is lazy: Match returns an iter.Seq and every alternative is only
// computed when the consumer asks for it, so a caller that takes the first
// acceptable span never explores the rest of the search tree.
package matcher

import (
	"iter"
	"log/slog"
	"strings"

	"github.com/spicery/soundchanger/pkg/ast"
)

// Subject is the text a pattern is matched against. AtStart and AtEnd say
// whether offset 0 and len(Word) are real word edges, which is what word
// boundaries match. A reversed word prefix used for lookbehind only has its
// end on a real edge.
type Subject struct {
	Word    string
	AtStart bool
	AtEnd   bool
}

// Whole returns the subject for a complete word.
func Whole(word string) Subject {
	return Subject{Word: word, AtStart: true, AtEnd: true}
}

// Matcher matches pattern nodes. The zero value is not usable; use New.
type Matcher struct {
	logger *slog.Logger
}

// New creates a matcher that reports unsupported nodes to logger. A nil
// logger means slog.Default().
func New(logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{logger: logger}
}

// Match is New(nil).Match(n, Whole(word), pos).
func Match(n ast.Node, word string, pos int) iter.Seq[Span] {
	return New(nil).Match(n, Whole(word), pos)
}

// Match yields every span that n can match starting exactly at pos.
// Alternatives come in pattern order: for an Optional the inner matches come
// before the zero-width skip, for a Repetition longer runs come first.
func (m *Matcher) Match(n ast.Node, subject Subject, pos int) iter.Seq[Span] {
	if pos < 0 || pos > len(subject.Word) {
		return func(func(Span) bool) {}
	}
	return m.match(n, subject, pos)
}

// First returns the first span Match would yield.
func (m *Matcher) First(n ast.Node, subject Subject, pos int) (Span, bool) {
	for span := range m.Match(n, subject, pos) {
		return span, true
	}
	return Span{}, false
}

func (m *Matcher) match(n ast.Node, subject Subject, pos int) iter.Seq[Span] {
	switch x := n.(type) {
	case *ast.Sound:
		return m.matchSound(x, subject, pos)
	case *ast.SoundClassRef:
		return m.matchClass(x, subject, pos)
	case *ast.Optional:
		return m.matchOptional(x, subject, pos)
	case *ast.Repetition:
		return m.matchRepetition(x.Inner, subject, pos)
	case *ast.Alternation:
		return m.matchAlternation(x, subject, pos)
	case *ast.Sequence:
		if x == nil {
			return m.matchElements(nil, subject, pos)
		}
		return m.matchElements(x.Elements, subject, pos)
	case *ast.WordBoundary:
		return m.matchBoundary(subject, pos)
	default:
		return m.unsupported(n, pos)
	}
}

func (m *Matcher) matchSound(s *ast.Sound, subject Subject, pos int) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		if !strings.HasPrefix(subject.Word[pos:], s.Text) {
			return
		}
		yield(Span{Start: pos, End: pos + len(s.Text), Text: s.Text})
	}
}

// matchClass tries members in class order and stops at the first one that
// occurs at pos: a class position binds exactly one sound.
func (m *Matcher) matchClass(ref *ast.SoundClassRef, subject Subject, pos int) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		rest := subject.Word[pos:]
		for _, sound := range ref.Class.Sounds() {
			if strings.HasPrefix(rest, sound) {
				yield(Span{
					Start:    pos,
					End:      pos + len(sound),
					Text:     sound,
					Bindings: []Binding{{Class: ref.Class, Sound: sound}},
				})
				return
			}
		}
	}
}

func (m *Matcher) matchOptional(opt *ast.Optional, subject Subject, pos int) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		for span := range m.match(opt.Inner, subject, pos) {
			if !yield(span) {
				return
			}
		}
		yield(emptyAt(pos))
	}
}

// matchRepetition is one or more inner matches, longest run first.
func (m *Matcher) matchRepetition(inner ast.Node, subject Subject, pos int) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		for first := range m.match(inner, subject, pos) {
			// A zero-width repeat would recurse forever.
			if !first.Empty() {
				for more := range m.matchRepetition(inner, subject, first.End) {
					if !yield(first.Merge(more)) {
						return
					}
				}
			}
			if !yield(first) {
				return
			}
		}
	}
}

func (m *Matcher) matchAlternation(alt *ast.Alternation, subject Subject, pos int) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		for _, seq := range alt.Alternatives {
			for span := range m.match(seq, subject, pos) {
				if !yield(span) {
					return
				}
			}
		}
	}
}

func (m *Matcher) matchElements(elements []ast.Node, subject Subject, pos int) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		if len(elements) == 0 {
			yield(emptyAt(pos))
			return
		}
		for head := range m.match(elements[0], subject, pos) {
			for tail := range m.matchElements(elements[1:], subject, head.End) {
				if !yield(head.Merge(tail)) {
					return
				}
			}
		}
	}
}

func (m *Matcher) matchBoundary(subject Subject, pos int) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		if (pos == 0 && subject.AtStart) || (pos == len(subject.Word) && subject.AtEnd) {
			yield(emptyAt(pos))
		}
	}
}

// unsupported lets a pattern containing a node the matcher has no semantics
// for still run: the node matches zero-width and a warning is logged.
func (m *Matcher) unsupported(n ast.Node, pos int) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		kind := ast.Kind("nil")
		if n != nil {
			kind = n.Kind()
		}
		m.logger.Warn("unsupported node in pattern", "node", kind, "position", pos)
		yield(emptyAt(pos))
	}
}
