package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/spicery/soundchanger/pkg/rulefile"
	"github.com/spicery/soundchanger/pkg/soundchange"
)

const (
	prompt    = "> "
	replHelp  = `Enter one or more words separated by spaces.

REPL commands:
  :rules   List the loaded rules
  :trace   Toggle showing each replacement
  :help    Show this help
  :quit    Exit the REPL
`
	replIntro = "soundchanger %s REPL, %d rules loaded\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands.\n"
)

// historyPath puts a relative history file in the home directory.
func historyPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, name)
}

func runREPL(rules []*soundchange.Rule, cfg *rulefile.Config, st styles, stdout, stderr io.Writer) error {
	fmt.Fprintf(stdout, replIntro, version, len(rules))

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyPath(cfg.HistoryFile)
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		if _, ok := <-sigc; ok {
			ln.Close()
			os.Exit(130)
		}
	}()

	s := &session{rules: rules, workers: cfg.Workers, st: st, stdout: stdout, stderr: stderr}
	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(stdout)
			return nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)
		if !s.handle(line) {
			return nil
		}
	}
}

type session struct {
	rules   []*soundchange.Rule
	workers int
	trace   bool
	st      styles
	stdout  io.Writer
	stderr  io.Writer
}

// handle runs one line of input and reports whether the REPL should go on.
func (s *session) handle(line string) bool {
	if strings.HasPrefix(line, ":") {
		switch strings.ToLower(line) {
		case ":quit", ":q":
			return false
		case ":help":
			fmt.Fprint(s.stdout, replHelp)
		case ":rules":
			for _, rule := range s.rules {
				fmt.Fprintf(s.stdout, "%s %s\n", s.st.rule.Render(fmt.Sprintf("[%d]", rule.Line)), rule.Text)
			}
		case ":trace":
			s.trace = !s.trace
			if s.trace {
				fmt.Fprintln(s.stdout, "trace on")
			} else {
				fmt.Fprintln(s.stdout, "trace off")
			}
		default:
			fmt.Fprintln(s.stdout, "unknown command. Type :help for commands.")
		}
		return true
	}

	words := strings.Fields(line)
	if s.trace {
		for _, word := range words {
			out, _ := traceWord(s.rules, word, s.st, s.stdout)
			fmt.Fprintln(s.stdout, s.st.change(word, out))
		}
		return true
	}

	evolved, err := soundchange.ApplyAll(s.rules, words, s.workers)
	if err != nil {
		fmt.Fprintln(s.stderr, s.st.err.Render(err.Error()))
	}
	for i, word := range words {
		fmt.Fprintln(s.stdout, s.st.change(word, evolved[i]))
	}
	return true
}
