// Package soundchange compiles rule lines and applies them to words.
package soundchange

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/spicery/soundchanger/pkg/ast"
	"github.com/spicery/soundchanger/pkg/environment"
	"github.com/spicery/soundchanger/pkg/matcher"
	"github.com/spicery/soundchanger/pkg/parser"
	"github.com/spicery/soundchanger/pkg/replacer"
	"github.com/spicery/soundchanger/pkg/soundclass"
)

type change struct {
	*ast.Change
	index     int  // position in Rule.AST.Changes
	insertion bool // target is only the null sound
}

// Rule is a compiled rule line. It is immutable and safe for concurrent use.
type Rule struct {
	Text string
	Line int
	AST  *ast.Rule

	stages  [][]change
	env     *environment.Evaluator
	matcher *matcher.Matcher
	logger  *slog.Logger
}

// Step records one replacement made while applying a rule.
type Step struct {
	Stage       int
	Change      int
	Input       string // the word the stage was scanning
	Span        matcher.Span
	Replacement string
}

// Compile is CompileLine without a line number.
func Compile(text string, registry *soundclass.Registry, opts Options) (*Rule, error) {
	return CompileLine(0, text, registry, opts)
}

// CompileLine parses text, compiles its environments and checks the class
// correspondences that can be checked before any word is seen. line is
// attached to errors and to the rule.
func CompileLine(line int, text string, registry *soundclass.Registry, opts Options) (*Rule, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	parsed, err := parser.ParseString(text, registry, opts.Strict)
	if err != nil {
		var perr *parser.ParseError
		if errors.As(err, &perr) {
			perr.Line = line
			return nil, perr
		}
		return nil, &CompileError{Line: line, Text: text, Err: err}
	}

	m := matcher.New(logger)
	env, err := environment.Compile(parsed.Positive, parsed.Negative, m)
	if err != nil {
		return nil, &CompileError{Line: line, Text: text, Err: err}
	}

	r := &Rule{
		Text:    strings.TrimSpace(text),
		Line:    line,
		AST:     parsed,
		env:     env,
		matcher: m,
		logger:  logger,
	}
	index := 0
	for _, stage := range parsed.Stages() {
		compiled := make([]change, 0, len(stage))
		for _, c := range stage {
			if err := replacer.Validate(c.Target, c.Replacement); err != nil {
				return nil, &CompileError{Line: line, Text: text, Err: err}
			}
			compiled = append(compiled, change{Change: c, index: index, insertion: c.Target.IsNull()})
			index++
		}
		r.stages = append(r.stages, compiled)
	}

	logger.Debug("compiled rule", "line", line, "rule", r.Text, "changes", len(parsed.Changes))
	return r, nil
}

// String returns the rule as written.
func (r *Rule) String() string {
	return r.Text
}

// Apply rewrites word. Each stage of a chained rule scans the output of the
// previous stage.
func (r *Rule) Apply(word string) (string, error) {
	out, err := r.apply(word, nil)
	if err != nil {
		return word, err
	}
	if out != word {
		r.logger.Debug("rule changed word", "rule", r.Text, "before", word, "after", out)
	}
	return out, nil
}

// Trace is Apply that also returns every replacement it made.
func (r *Rule) Trace(word string) (string, []Step, error) {
	var steps []Step
	out, err := r.apply(word, &steps)
	if err != nil {
		return word, steps, err
	}
	return out, steps, nil
}

func (r *Rule) apply(word string, steps *[]Step) (string, error) {
	for stageIndex, stage := range r.stages {
		var b strings.Builder
		last := 0
		pos := 0
		for pos <= len(word) {
			c, span, ok := r.find(stage, word, pos)
			if !ok {
				if pos == len(word) {
					break
				}
				pos += graphemeLen(word[pos:])
				continue
			}

			replacement, err := replacer.Build(c.Replacement, span)
			if err != nil {
				return "", &ApplyError{Rule: r.Text, Line: r.Line, Word: word, Err: err}
			}
			b.WriteString(word[last:span.Start])
			b.WriteString(replacement)
			last = span.End
			if steps != nil {
				*steps = append(*steps, Step{
					Stage:       stageIndex,
					Change:      c.index,
					Input:       word,
					Span:        span,
					Replacement: replacement,
				})
			}

			switch {
			case !span.Empty():
				pos = span.End
			case pos == len(word):
				pos++
			default:
				// An insertion does not consume anything; step over one
				// grapheme so it is not repeated at the same place.
				pos += graphemeLen(word[pos:])
			}
		}
		b.WriteString(word[last:])
		word = b.String()
	}
	return word, nil
}

// find returns the first change of the stage, and the first of its spans at
// pos, that the environments accept. Zero-width spans only count for
// insertions.
func (r *Rule) find(stage []change, word string, pos int) (change, matcher.Span, bool) {
	subject := matcher.Whole(word)
	for _, c := range stage {
		for span := range r.matcher.Match(c.Target, subject, pos) {
			if span.Empty() && !c.insertion {
				continue
			}
			if r.env.Satisfied(word, span) {
				return c, span, true
			}
		}
	}
	return change{}, matcher.Span{}, false
}

func graphemeLen(s string) int {
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(s, -1)
	if len(cluster) == 0 {
		return 1
	}
	return len(cluster)
}
