// Package lexicon reads and writes word lists, one word per line.
package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads one word per line. Words are trimmed; blank lines are kept as
// empty words so that output lines up with input.
func Load(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		words = append(words, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}
	return words, nil
}

// LoadFile reads a lexicon file.
func LoadFile(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open lexicon file '%s': %w", filename, err)
	}
	defer f.Close()
	return Load(f)
}

// Write writes words separated by newlines.
func Write(w io.Writer, words []string) error {
	bw := bufio.NewWriter(w)
	for i, word := range words {
		if i > 0 {
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(word); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes words to filename. An empty word list leaves any existing
// file untouched.
func WriteFile(filename string, words []string) error {
	if len(words) == 0 {
		return nil
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create output file '%s': %w", filename, err)
	}
	if err := Write(f, words); err != nil {
		f.Close()
		return fmt.Errorf("failed to write output file '%s': %w", filename, err)
	}
	return f.Close()
}
