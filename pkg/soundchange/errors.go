package soundchange

import "fmt"

// CompileError reports a rule that parsed but cannot be used, or that failed
// to tokenize.
type CompileError struct {
	Line int
	Text string
	Err  error
}

func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: rule %q: %v", e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("rule %q: %v", e.Text, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// ApplyError reports a failure while applying a rule to a word.
type ApplyError struct {
	Rule string
	Line int
	Word string
	Err  error
}

func (e *ApplyError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: rule %q on word %q: %v", e.Line, e.Rule, e.Word, e.Err)
	}
	return fmt.Sprintf("rule %q on word %q: %v", e.Rule, e.Word, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}
