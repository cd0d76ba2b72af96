package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/spicery/soundchanger/pkg/soundchange"
)

type styles struct {
	rule      lipgloss.Style
	before    lipgloss.Style
	after     lipgloss.Style
	unchanged lipgloss.Style
	span      lipgloss.Style
	arrow     lipgloss.Style
	err       lipgloss.Style
}

// newStyles returns plain styles when color is off.
func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain}
	}
	return styles{
		rule:      lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		before:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		after:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		unchanged: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		span:      lipgloss.NewStyle().Underline(true),
		arrow:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		err:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

func (s styles) change(before, after string) string {
	return s.before.Render(before) + s.arrow.Render(" → ") + s.after.Render(after)
}

// printDiff prints the words that changed.
func printDiff(before, after []string, st styles, w io.Writer) {
	for i := range min(len(before), len(after)) {
		if before[i] != after[i] {
			fmt.Fprintln(w, st.change(before[i], after[i]))
		}
	}
}

// printSteps shows one rule's replacements in a word, with the replaced
// span marked in the input of its stage.
func printSteps(rule *soundchange.Rule, before, after string, steps []soundchange.Step, st styles, w io.Writer) {
	if len(steps) == 0 {
		return
	}
	fmt.Fprintf(w, "%s %s\n", st.rule.Render(fmt.Sprintf("[%d] %s", rule.Line, rule.Text)), st.change(before, after))
	for _, step := range steps {
		in := step.Input
		marked := in[:step.Span.Start] + st.span.Render(in[step.Span.Start:step.Span.End]) + in[step.Span.End:]
		replaced := step.Span.Text
		if replaced == "" {
			replaced = "∅"
		}
		replacement := step.Replacement
		if replacement == "" {
			replacement = "∅"
		}
		fmt.Fprintf(w, "    stage %d: %s  %s at %d\n", step.Stage, marked, st.change(replaced, replacement), step.Span.Start)
	}
}

// traceWord applies every rule to word in order, printing what each one
// did. A failing rule leaves the word as it was and the rest still run.
func traceWord(rules []*soundchange.Rule, word string, st styles, w io.Writer) (string, error) {
	var errs []error
	for _, rule := range rules {
		out, steps, err := rule.Trace(word)
		if err != nil {
			fmt.Fprintln(w, st.err.Render(err.Error()))
			errs = append(errs, err)
			continue
		}
		printSteps(rule, word, out, steps, st, w)
		word = out
	}
	return word, errors.Join(errs...)
}

// traceAll is ApplyAll run one word at a time so the trace reads in order.
func traceAll(rules []*soundchange.Rule, words []string, st styles, w io.Writer) ([]string, error) {
	out := make([]string, len(words))
	var errs []error
	for i, word := range words {
		fmt.Fprintln(w, st.unchanged.Render(word))
		evolved, err := traceWord(rules, word, st, w)
		if err != nil {
			errs = append(errs, err)
		}
		out[i] = evolved
	}
	return out, errors.Join(errs...)
}
