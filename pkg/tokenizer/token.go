package tokenizer

import (
	"fmt"
)

// TokenType represents the different types of tokens.
type TokenType string

const (
	// Structural tokens
	ArrowToken      TokenType = "arrow"       // ->, =>, >, →
	SlashToken      TokenType = "slash"       // / starts a positive environment
	NegSlashToken   TokenType = "neg_slash"   // /! starts a negative environment
	UnderscoreToken TokenType = "underscore"  // _ marks the match position in an environment
	EllipsisToken   TokenType = "ellipsis"    // ... repeats the preceding element
	CommaToken      TokenType = "comma"       // , separates alternatives and parallel targets
	SpaceToken      TokenType = "space"       // whitespace between elements
	WordBorderToken TokenType = "word_border" // #
	NullSoundToken  TokenType = "null_sound"  // 0 or ∅
	LParenToken     TokenType = "l_paren"
	RParenToken     TokenType = "r_paren"
	LBraceToken     TokenType = "l_brace"
	RBraceToken     TokenType = "r_brace"

	// Content tokens
	SoundClassToken TokenType = "sound_class" // a registered class name
	ClassIndexToken TokenType = "class_index" // digits directly after a class name, e.g. the 1 of V1
	SoundToken      TokenType = "sound"       // a literal sound

	EOLToken TokenType = "eol"
)

// Token represents a single lexeme of a rule string.
type Token struct {
	Type   TokenType `json:"type"`
	Text   string    `json:"text"`
	Offset int       `json:"offset"` // byte offset in the trimmed rule string
}

// NewToken creates a new token.
func NewToken(tokenType TokenType, text string, offset int) *Token {
	return &Token{
		Type:   tokenType,
		Text:   text,
		Offset: offset,
	}
}

func (t *Token) String() string {
	if t.Text == "" {
		return string(t.Type)
	}
	return fmt.Sprintf("%s %q", t.Type, t.Text)
}

var arrows = []string{"->", "=>", "→", ">"}

var nullSounds = []string{"0", "∅"}

// symbols lists every structural lexeme, longest first, so that a scan in order
// finds the longest applicable match.
var symbols = []struct {
	text      string
	tokenType TokenType
}{
	{"...", EllipsisToken},
	{"->", ArrowToken},
	{"=>", ArrowToken},
	{"/!", NegSlashToken},
	{"→", ArrowToken},
	{"∅", NullSoundToken},
	{">", ArrowToken},
	{"/", SlashToken},
	{"_", UnderscoreToken},
	{",", CommaToken},
	{"#", WordBorderToken},
	{"0", NullSoundToken},
	{"(", LParenToken},
	{")", RParenToken},
	{"{", LBraceToken},
	{"}", RBraceToken},
}

// Arrows returns the accepted arrow spellings.
func Arrows() []string {
	return append([]string(nil), arrows...)
}

// NullSounds returns the accepted spellings of the null sound.
func NullSounds() []string {
	return append([]string(nil), nullSounds...)
}
