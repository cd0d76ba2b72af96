// Package rulefile reads sound class definitions and rule lines from rule
// files, either in the plain text format with classes: and rules: sections
// or as a YAML rule set, and reads the tool configuration.
package rulefile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/spicery/soundchanger/pkg/soundchange"
	"github.com/spicery/soundchanger/pkg/soundclass"
)

// LineError reports a bad line of a rule file.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Source is one rule line and where it came from.
type Source struct {
	Line int
	Text string
}

// File is a loaded rule file: its classes and its uncompiled rules.
type File struct {
	Registry *soundclass.Registry
	Rules    []Source
}

// Loader reads rule files. The zero value logs to slog.Default().
type Loader struct {
	Logger *slog.Logger
}

func (l *Loader) logger() *slog.Logger {
	if l == nil || l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

// LoadFile reads path, choosing the YAML format for .yaml and .yml files and
// the text format otherwise.
func (l *Loader) LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file '%s': %w", path, err)
	}
	var f *File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		f, err = l.LoadYAML(data)
	default:
		f, err = l.Load(strings.NewReader(string(data)))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules file '%s': %w", path, err)
	}
	return f, nil
}

// Load reads the text format. Lines starting with % or # and blank lines are
// comments. Class definitions come first, optionally after a classes: header,
// and rules follow a rules: header. Whitespace inside class lines is ignored.
func (l *Loader) Load(r io.Reader) (*File, error) {
	f := &File{Registry: soundclass.NewRegistry()}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	inRules := false

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()

		if inRules {
			text := strings.TrimSpace(raw)
			if isComment(text) {
				continue
			}
			f.Rules = append(f.Rules, Source{Line: lineNo, Text: text})
			continue
		}

		def := removeSpace(raw)
		switch {
		case isComment(def):
		case strings.HasPrefix(def, "classes:"):
		case strings.HasPrefix(def, "rules:"):
			inRules = true
		default:
			if err := l.define(f.Registry, lineNo, strings.TrimSpace(raw), def); err != nil {
				return nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}

	f.Registry.DefineAll()
	return f, nil
}

func (l *Loader) define(registry *soundclass.Registry, lineNo int, raw, def string) error {
	c, near, err := defineClass(registry, def)
	if err != nil {
		return &LineError{Line: lineNo, Text: raw, Err: err}
	}
	for _, name := range near {
		l.logger().Warn("class expression split into single sounds",
			"line", lineNo, "class", c.Name(), "did_you_mean", name)
	}
	l.logger().Debug("defined sound class", "line", lineNo, "class", c.Definition(), "sounds", c.Len())
	return nil
}

func isComment(line string) bool {
	return line == "" || strings.HasPrefix(line, "%") || strings.HasPrefix(line, "#")
}

func removeSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Compile compiles every rule of the file. A bad rule does not stop the
// others from compiling: the good rules are returned together with the joined
// errors of the bad ones.
func (f *File) Compile(opts soundchange.Options) ([]*soundchange.Rule, error) {
	rules := make([]*soundchange.Rule, 0, len(f.Rules))
	var errs []error
	for _, src := range f.Rules {
		rule, err := soundchange.CompileLine(src.Line, src.Text, f.Registry, opts)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rules = append(rules, rule)
	}
	return rules, errors.Join(errs...)
}
