// Package ast defines the syntax tree of a sound change rule.
//
// The node set is closed: every variant implements the unexported nodeTag
// method, so code outside this package switches over a fixed list of types.
package ast

import (
	"github.com/spicery/soundchanger/pkg/soundclass"
)

// Kind names a node variant.
type Kind string

const (
	SoundKind           Kind = "sound"
	SoundClassRefKind   Kind = "sound_class"
	IndexedClassRefKind Kind = "indexed_sound_class"
	OptionalKind        Kind = "optional"
	RepetitionKind      Kind = "repetition"
	AlternationKind     Kind = "alternation"
	SequenceKind        Kind = "sequence"
	WordBoundaryKind    Kind = "word_boundary"
	EnvironmentKind     Kind = "environment"
	ChangeKind          Kind = "change"
	RuleKind            Kind = "rule"
)

// Node is the interface all AST nodes implement.
type Node interface {
	Kind() Kind
	nodeTag()
}

// Sound is a literal sound. The empty text is the null sound.
type Sound struct {
	Text string
}

// SoundClassRef matches any member of Class and records which one matched.
type SoundClassRef struct {
	Class *soundclass.Class
}

// IndexedClassRef is a class reference tagged with a back-reference number,
// written V1, C2 and so on.
type IndexedClassRef struct {
	Class *soundclass.Class
	Index int
}

// Optional matches Inner zero or one time.
type Optional struct {
	Inner Node
}

// Repetition matches Inner one or more times.
type Repetition struct {
	Inner Node
}

// Alternation matches any one of its alternatives at the same position.
type Alternation struct {
	Alternatives []*Sequence
}

// Sequence matches its elements left to right.
type Sequence struct {
	Elements []Node
}

// WordBoundary matches zero-width at the start or end of a word.
type WordBoundary struct{}

// Environment is a context condition: Pre must (or, if not Positive, must
// not) match immediately before a candidate and Post immediately after it.
type Environment struct {
	Pre      *Sequence
	Post     *Sequence
	Positive bool
}

// Change is one target to replacement pair. Changes that share a Stage were
// written as parallel lists (p, t -> b, d) and are applied in the same scan;
// a higher Stage is a later link of an a > e > i chain.
type Change struct {
	Target      *Sequence
	Replacement *Sequence
	Stage       int
}

// Rule is the parse result of one rule line.
type Rule struct {
	Changes  []*Change
	Positive []*Environment
	Negative []*Environment
}

func (*Sound) Kind() Kind           { return SoundKind }
func (*SoundClassRef) Kind() Kind   { return SoundClassRefKind }
func (*IndexedClassRef) Kind() Kind { return IndexedClassRefKind }
func (*Optional) Kind() Kind        { return OptionalKind }
func (*Repetition) Kind() Kind      { return RepetitionKind }
func (*Alternation) Kind() Kind     { return AlternationKind }
func (*Sequence) Kind() Kind        { return SequenceKind }
func (*WordBoundary) Kind() Kind    { return WordBoundaryKind }
func (*Environment) Kind() Kind     { return EnvironmentKind }
func (*Change) Kind() Kind          { return ChangeKind }
func (*Rule) Kind() Kind            { return RuleKind }

func (*Sound) nodeTag()           {}
func (*SoundClassRef) nodeTag()   {}
func (*IndexedClassRef) nodeTag() {}
func (*Optional) nodeTag()        {}
func (*Repetition) nodeTag()      {}
func (*Alternation) nodeTag()     {}
func (*Sequence) nodeTag()        {}
func (*WordBoundary) nodeTag()    {}
func (*Environment) nodeTag()     {}
func (*Change) nodeTag()          {}
func (*Rule) nodeTag()            {}

// Seq builds a sequence from elements.
func Seq(elements ...Node) *Sequence {
	return &Sequence{Elements: elements}
}

// Stages returns the changes grouped by stage, in stage order.
func (r *Rule) Stages() [][]*Change {
	var stages [][]*Change
	for _, c := range r.Changes {
		for len(stages) <= c.Stage {
			stages = append(stages, nil)
		}
		stages[c.Stage] = append(stages[c.Stage], c)
	}
	return stages
}

// IsNull reports whether s consists of nothing but null sounds.
func (s *Sequence) IsNull() bool {
	if len(s.Elements) == 0 {
		return false
	}
	for _, e := range s.Elements {
		snd, ok := e.(*Sound)
		if !ok || snd.Text != "" {
			return false
		}
	}
	return true
}
