package ast

import (
	"fmt"

	"github.com/spicery/soundchanger/pkg/soundclass"
)

// Reverse mirrors a pattern so that matching it forward against a reversed
// string is equivalent to matching the original pattern backward against the
// original string. Sound text and class members are reversed rune by rune,
// sequence elements are put in reverse order and nested nodes are reversed
// recursively. Word boundaries are their own mirror image.
//
// Environments, changes and rules are not patterns and cannot be reversed.
func Reverse(n Node) (Node, error) {
	switch x := n.(type) {
	case *Sound:
		return &Sound{Text: ReverseString(x.Text)}, nil
	case *SoundClassRef:
		return &SoundClassRef{Class: reverseClass(x.Class)}, nil
	case *IndexedClassRef:
		return &IndexedClassRef{Class: reverseClass(x.Class), Index: x.Index}, nil
	case *Optional:
		inner, err := Reverse(x.Inner)
		if err != nil {
			return nil, err
		}
		return &Optional{Inner: inner}, nil
	case *Repetition:
		inner, err := Reverse(x.Inner)
		if err != nil {
			return nil, err
		}
		return &Repetition{Inner: inner}, nil
	case *Alternation:
		alts := make([]*Sequence, len(x.Alternatives))
		for i, alt := range x.Alternatives {
			r, err := ReverseSequence(alt)
			if err != nil {
				return nil, err
			}
			alts[i] = r
		}
		return &Alternation{Alternatives: alts}, nil
	case *Sequence:
		return ReverseSequence(x)
	case *WordBoundary:
		return x, nil
	case *Environment, *Change, *Rule:
		return nil, fmt.Errorf("cannot reverse %s node", n.Kind())
	case nil:
		return nil, fmt.Errorf("cannot reverse nil node")
	default:
		return nil, fmt.Errorf("cannot reverse unknown node %T", n)
	}
}

// ReverseSequence is Reverse for sequences.
func ReverseSequence(s *Sequence) (*Sequence, error) {
	if s == nil {
		return Seq(), nil
	}
	out := make([]Node, len(s.Elements))
	for i, e := range s.Elements {
		r, err := Reverse(e)
		if err != nil {
			return nil, err
		}
		out[len(s.Elements)-1-i] = r
	}
	return &Sequence{Elements: out}, nil
}

// ReverseString reverses s rune by rune.
func ReverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func reverseClass(c *soundclass.Class) *soundclass.Class {
	if c == nil {
		return nil
	}
	sounds := c.Sounds()
	reversed := make([]string, len(sounds))
	for i, s := range sounds {
		reversed[i] = ReverseString(s)
	}
	return soundclass.New(c.Name(), reversed...)
}
