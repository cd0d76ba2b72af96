// Package environment decides whether the context around a candidate match
// satisfies a rule's environments.
//
// The part of an environment after "_" is matched forward from the end of the
// candidate. The part before "_" is a lookbehind: its pattern is reversed once
// at compile time, and at check time the word prefix before the candidate is
// reversed too, so the ordinary forward matcher can run on both from offset 0.
package environment

import (
	"fmt"

	"github.com/spicery/soundchanger/pkg/ast"
	"github.com/spicery/soundchanger/pkg/matcher"
)

type check struct {
	reversedPre *ast.Sequence
	post        *ast.Sequence
}

// Evaluator holds the compiled positive and negative environments of a rule.
type Evaluator struct {
	matcher  *matcher.Matcher
	positive []check
	negative []check
}

// Compile prepares environments for evaluation. It fails if a pre-context
// contains a node that cannot be reversed.
func Compile(positive, negative []*ast.Environment, m *matcher.Matcher) (*Evaluator, error) {
	if m == nil {
		m = matcher.New(nil)
	}
	e := &Evaluator{matcher: m}
	var err error
	if e.positive, err = compileAll(positive); err != nil {
		return nil, err
	}
	if e.negative, err = compileAll(negative); err != nil {
		return nil, err
	}
	return e, nil
}

func compileAll(envs []*ast.Environment) ([]check, error) {
	checks := make([]check, 0, len(envs))
	for _, env := range envs {
		pre, err := ast.ReverseSequence(env.Pre)
		if err != nil {
			return nil, fmt.Errorf("environment %s: %w", ast.Format(env), err)
		}
		post := env.Post
		if post == nil {
			post = ast.Seq()
		}
		checks = append(checks, check{reversedPre: pre, post: post})
	}
	return checks, nil
}

// Satisfied reports whether span, found in word, is acceptable: no negative
// environment may match around it and, if there are positive environments,
// at least one of them must.
func (e *Evaluator) Satisfied(word string, span matcher.Span) bool {
	for _, c := range e.negative {
		if e.matches(c, word, span) {
			return false
		}
	}
	if len(e.positive) == 0 {
		return true
	}
	for _, c := range e.positive {
		if e.matches(c, word, span) {
			return true
		}
	}
	return false
}

// Unconditional reports whether the rule has no environments at all.
func (e *Evaluator) Unconditional() bool {
	return len(e.positive) == 0 && len(e.negative) == 0
}

func (e *Evaluator) matches(c check, word string, span matcher.Span) bool {
	// After a candidate a word boundary can only be the end of the word, and
	// before it only the start. Offset 0 of the reversed prefix is the
	// candidate's start; its end is the start of the word.
	suffix := matcher.Subject{Word: word, AtEnd: true}
	if _, ok := e.matcher.First(c.post, suffix, span.End); !ok {
		return false
	}
	prefix := matcher.Subject{
		Word:  ast.ReverseString(word[:span.Start]),
		AtEnd: true,
	}
	_, ok := e.matcher.First(c.reversedPre, prefix, 0)
	return ok
}

// Check compiles the environments and evaluates them for a single span.
func Check(positive, negative []*ast.Environment, word string, span matcher.Span) (bool, error) {
	e, err := Compile(positive, negative, nil)
	if err != nil {
		return false, err
	}
	return e.Satisfied(word, span), nil
}
