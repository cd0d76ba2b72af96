// Package replacer builds the text that replaces an accepted match.
package replacer

import (
	"errors"
	"fmt"

	"github.com/spicery/soundchanger/pkg/ast"
	"github.com/spicery/soundchanger/pkg/matcher"
	"github.com/spicery/soundchanger/pkg/soundclass"
)

// ErrBindingsExhausted is returned when the replacement refers to more sound
// classes than the target matched.
var ErrBindingsExhausted = errors.New("replacement uses more sound classes than the target matched")

// CorrespondenceError reports a matched sound whose position in its own class
// has no counterpart in the replacement class.
type CorrespondenceError struct {
	Class  string // replacement class
	Sound  string // matched sound
	Source string // class the sound was matched by
	Index  int
	Size   int
}

func (e *CorrespondenceError) Error() string {
	return fmt.Sprintf("no counterpart for %q (index %d of class %s) in class %s of size %d",
		e.Sound, e.Index, e.Source, e.Class, e.Size)
}

// builder carries the per-build binding cursor.
type builder struct {
	bindings []matcher.Binding
	next     int
}

// Build walks the replacement left to right. Sounds are copied, word
// boundaries produce nothing and each class reference takes the next binding
// of span and emits the member with the same ordinal from its own class.
func Build(replacement *ast.Sequence, span matcher.Span) (string, error) {
	b := &builder{bindings: span.Bindings}
	var out []byte
	if replacement == nil {
		return "", nil
	}
	for _, n := range replacement.Elements {
		var err error
		if out, err = b.emit(out, n); err != nil {
			return "", err
		}
	}
	return string(out), nil
}

func (b *builder) emit(out []byte, n ast.Node) ([]byte, error) {
	switch x := n.(type) {
	case *ast.Sound:
		return append(out, x.Text...), nil
	case *ast.SoundClassRef:
		sound, err := b.correspond(x.Class)
		if err != nil {
			return nil, err
		}
		return append(out, sound...), nil
	case *ast.WordBoundary:
		return out, nil
	case *ast.Sequence:
		for _, e := range x.Elements {
			var err error
			if out, err = b.emit(out, e); err != nil {
				return nil, err
			}
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("cannot build a replacement from a nil node")
	default:
		return nil, fmt.Errorf("cannot build a replacement from a %s node", n.Kind())
	}
}

func (b *builder) correspond(class *soundclass.Class) (string, error) {
	if b.next >= len(b.bindings) {
		return "", ErrBindingsExhausted
	}
	binding := b.bindings[b.next]
	b.next++

	index := binding.Class.Index(binding.Sound)
	if index < 0 {
		return "", fmt.Errorf("bound sound %q is not a member of class %s", binding.Sound, binding.Class.Name())
	}
	sound, ok := class.At(index)
	if !ok {
		return "", &CorrespondenceError{
			Class:  class.Name(),
			Sound:  binding.Sound,
			Source: binding.Class.Name(),
			Index:  index,
			Size:   class.Len(),
		}
	}
	return sound, nil
}

// Validate checks a change whose target binds a fixed list of classes: the
// replacement must not use more classes than that, and every replacement class
// must be at least as large as the target class it corresponds to. Targets
// whose bindings depend on the match (optional parts, alternations,
// repetitions) are only checked when a replacement is built.
func Validate(target, replacement *ast.Sequence) error {
	sources, fixed := boundClasses(target)
	if !fixed {
		return nil
	}
	i := 0
	var err error
	walkClasses(replacement, func(class *soundclass.Class) {
		if err != nil {
			return
		}
		if i >= len(sources) {
			err = ErrBindingsExhausted
			return
		}
		source := sources[i]
		i++
		if source.Len() > class.Len() {
			last, _ := source.At(class.Len())
			err = &CorrespondenceError{
				Class:  class.Name(),
				Sound:  last,
				Source: source.Name(),
				Index:  class.Len(),
				Size:   class.Len(),
			}
		}
	})
	return err
}

func boundClasses(target *ast.Sequence) ([]*soundclass.Class, bool) {
	var classes []*soundclass.Class
	if target == nil {
		return nil, true
	}
	for _, n := range target.Elements {
		switch x := n.(type) {
		case *ast.SoundClassRef:
			classes = append(classes, x.Class)
		case *ast.Sequence:
			inner, fixed := boundClasses(x)
			if !fixed {
				return nil, false
			}
			classes = append(classes, inner...)
		case *ast.Optional, *ast.Alternation, *ast.Repetition:
			return nil, false
		}
	}
	return classes, true
}

func walkClasses(s *ast.Sequence, visit func(*soundclass.Class)) {
	if s == nil {
		return
	}
	for _, n := range s.Elements {
		switch x := n.(type) {
		case *ast.SoundClassRef:
			visit(x.Class)
		case *ast.Sequence:
			walkClasses(x, visit)
		}
	}
}
