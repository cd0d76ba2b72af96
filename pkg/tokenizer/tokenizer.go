package tokenizer

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rivo/uniseg"

	"github.com/spicery/soundchanger/pkg/soundclass"
)

// Inventory tells the tokenizer which multi-character units it should
// recognise besides the structural symbols.
type Inventory struct {
	ClassNames     []string // registered sound class names
	Sounds         []string // explicitly defined sounds, e.g. "ts"
	RequireDefined bool     // fail on graphemes that are neither symbols, classes nor defined sounds
}

// InventoryFrom builds an inventory from a registry: every class name and every
// sound of every class.
func InventoryFrom(r *soundclass.Registry, requireDefined bool) *Inventory {
	return &Inventory{
		ClassNames:     r.Names(),
		Sounds:         r.Sounds(),
		RequireDefined: requireDefined,
	}
}

// TokenizationError reports a grapheme that the tokenizer was not allowed to
// accept.
type TokenizationError struct {
	Grapheme   string
	Offset     int
	Suggestion string
}

func (e *TokenizationError) Error() string {
	msg := fmt.Sprintf("unrecognized character '%s' at offset %d", e.Grapheme, e.Offset)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean '%s'?)", e.Suggestion)
	}
	return msg
}

// Tokenizer represents the rule tokenizer structure.
type Tokenizer struct {
	input      string
	position   int
	tokens     []*Token
	inventory  *Inventory
	classNames []string // longest first
	sounds     []string // longest first
}

// NewTokenizer creates a tokenizer that knows no classes or defined sounds.
func NewTokenizer(input string) *Tokenizer {
	return NewTokenizerWithInventory(input, &Inventory{})
}

// NewTokenizerWithInventory creates a tokenizer for one rule string.
// Leading and trailing whitespace of input is never of interest and is dropped.
func NewTokenizerWithInventory(input string, inventory *Inventory) *Tokenizer {
	if inventory == nil {
		inventory = &Inventory{}
	}
	return &Tokenizer{
		input:      strings.TrimSpace(input),
		tokens:     make([]*Token, 0),
		inventory:  inventory,
		classNames: longestFirst(inventory.ClassNames),
		sounds:     longestFirst(inventory.Sounds),
	}
}

// Tokenize is shorthand for NewTokenizerWithInventory(input, inventory).Tokenize().
func Tokenize(input string, inventory *Inventory) ([]*Token, error) {
	return NewTokenizerWithInventory(input, inventory).Tokenize()
}

func longestFirst(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s != "" {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i]) > len(out[j])
	})
	return out
}

// Tokenize processes the input and returns the tokens, terminated by an EOL
// token. On error the tokens read so far are returned along with it.
func (t *Tokenizer) Tokenize() ([]*Token, error) {
	for t.hasMoreInput() {
		if err := t.nextToken(); err != nil {
			return t.tokens, err
		}
	}
	t.tokens = append(t.tokens, NewToken(EOLToken, "", t.position))
	return t.tokens, nil
}

// nextToken reads exactly one token at the current position.
func (t *Tokenizer) nextToken() error {
	start := t.position

	if r, _ := t.peek(); unicode.IsSpace(r) {
		t.skipSpaces()
		t.addToken(SpaceToken, t.input[start:t.position], start)
		return nil
	}

	// Digits directly after a class name index the class (V1, C0) and take
	// priority over the null sound 0.
	if t.previousType() == SoundClassToken {
		if digits := t.takeDigits(); digits != "" {
			t.addToken(ClassIndexToken, digits, start)
			return nil
		}
	}

	if token := t.matchSymbol(); token != nil {
		t.tokens = append(t.tokens, token)
		return nil
	}

	if name := t.matchLongest(t.classNames); name != "" {
		t.advance(len(name))
		t.addToken(SoundClassToken, name, start)
		return nil
	}

	if sound := t.matchLongest(t.sounds); sound != "" {
		t.advance(len(sound))
		t.addToken(SoundToken, sound, start)
		return nil
	}

	// Nothing specific matched: one grapheme cluster is one sound, which keeps
	// base letters together with their diacritics.
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(t.input[t.position:], -1)
	if t.inventory.RequireDefined {
		return &TokenizationError{
			Grapheme:   cluster,
			Offset:     start,
			Suggestion: suggest(cluster, t.sounds),
		}
	}
	t.advance(len(cluster))
	t.addToken(SoundToken, cluster, start)
	return nil
}

func (t *Tokenizer) addToken(tokenType TokenType, text string, offset int) {
	t.tokens = append(t.tokens, NewToken(tokenType, text, offset))
}

func (t *Tokenizer) previousType() TokenType {
	if len(t.tokens) == 0 {
		return ""
	}
	return t.tokens[len(t.tokens)-1].Type
}

// matchSymbol attempts to match a structural symbol.
func (t *Tokenizer) matchSymbol() *Token {
	rest := t.input[t.position:]
	for _, sym := range symbols {
		if strings.HasPrefix(rest, sym.text) {
			token := NewToken(sym.tokenType, sym.text, t.position)
			t.advance(len(sym.text))
			return token
		}
	}
	return nil
}

// matchLongest returns the first candidate that prefixes the remaining input.
// Candidates are sorted longest first, so this is the longest match.
func (t *Tokenizer) matchLongest(candidates []string) string {
	rest := t.input[t.position:]
	for _, c := range candidates {
		if strings.HasPrefix(rest, c) {
			return c
		}
	}
	return ""
}

func (t *Tokenizer) takeDigits() string {
	start := t.position
	for t.hasMoreInput() {
		r, _ := t.peek()
		if r < '0' || r > '9' {
			break
		}
		t.advance(1)
	}
	return t.input[start:t.position]
}

func (t *Tokenizer) skipSpaces() {
	for t.hasMoreInput() {
		r, size := t.peek()
		if !unicode.IsSpace(r) {
			break
		}
		t.advance(size)
	}
}

// advance moves the position forward by n bytes.
func (t *Tokenizer) advance(n int) {
	t.position += n
	if t.position > len(t.input) {
		t.position = len(t.input)
	}
}

func (t *Tokenizer) peek() (rune, int) {
	if t.position >= len(t.input) {
		return rune(0), 0
	}
	return utf8.DecodeRuneInString(t.input[t.position:])
}

// hasMoreInput checks whether there is any remaining input to be processed.
func (t *Tokenizer) hasMoreInput() bool {
	return t.position < len(t.input)
}

func suggest(grapheme string, sounds []string) string {
	if len(sounds) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(grapheme, sounds)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}
