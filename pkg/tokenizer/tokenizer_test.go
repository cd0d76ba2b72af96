package tokenizer

import (
	"errors"
	"testing"
)

func types(tokens []*Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func sameTypes(a, b []TokenType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSingleTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenType
	}{
		{"->", []TokenType{ArrowToken, EOLToken}},
		{"=>", []TokenType{ArrowToken, EOLToken}},
		{">", []TokenType{ArrowToken, EOLToken}},
		{"→", []TokenType{ArrowToken, EOLToken}},
		{"/", []TokenType{SlashToken, EOLToken}},
		{"/!", []TokenType{NegSlashToken, EOLToken}},
		{"_", []TokenType{UnderscoreToken, EOLToken}},
		{"...", []TokenType{EllipsisToken, EOLToken}},
		{",", []TokenType{CommaToken, EOLToken}},
		// a lone space would be stripped, so surround it
		{", ,", []TokenType{CommaToken, SpaceToken, CommaToken, EOLToken}},
		{"#", []TokenType{WordBorderToken, EOLToken}},
		{"0", []TokenType{NullSoundToken, EOLToken}},
		{"∅", []TokenType{NullSoundToken, EOLToken}},
		{"(", []TokenType{LParenToken, EOLToken}},
		{")", []TokenType{RParenToken, EOLToken}},
		{"{", []TokenType{LBraceToken, EOLToken}},
		{"}", []TokenType{RBraceToken, EOLToken}},
		{"a", []TokenType{SoundToken, EOLToken}},
		{"", []TokenType{EOLToken}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := NewTokenizer(tt.input).Tokenize()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got := types(tokens); !sameTypes(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSoundClassTokens(t *testing.T) {
	inv := &Inventory{ClassNames: []string{"C", "CH", "V"}}

	tests := []struct {
		name     string
		input    string
		expected []TokenType
		texts    []string
	}{
		{"Class", "C", []TokenType{SoundClassToken, EOLToken}, []string{"C", ""}},
		{"Longest class name wins", "CHa", []TokenType{SoundClassToken, SoundToken, EOLToken}, []string{"CH", "a", ""}},
		{"Indexed class", "C1", []TokenType{SoundClassToken, ClassIndexToken, EOLToken}, []string{"C", "1", ""}},
		{"Multi digit index", "V12a", []TokenType{SoundClassToken, ClassIndexToken, SoundToken, EOLToken}, []string{"V", "12", "a", ""}},
		{"Zero after class is an index", "C0", []TokenType{SoundClassToken, ClassIndexToken, EOLToken}, []string{"C", "0", ""}},
		{"Zero elsewhere is null", "a0", []TokenType{SoundToken, NullSoundToken, EOLToken}, []string{"a", "0", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input, inv)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got := types(tokens); !sameTypes(got, tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, got)
			}
			for i, tok := range tokens {
				if tok.Text != tt.texts[i] {
					t.Errorf("Token %d: expected text %q, got %q", i, tt.texts[i], tok.Text)
				}
			}
		})
	}
}

func TestDefinedSounds(t *testing.T) {
	inv := &Inventory{Sounds: []string{"t", "ts", "a"}}
	tokens, err := Tokenize("tsat", inv)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := []string{"ts", "a", "t", ""}
	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, tok := range tokens {
		if tok.Text != expected[i] {
			t.Errorf("Token %d: expected %q, got %q", i, expected[i], tok.Text)
		}
	}
}

func TestWhitespace(t *testing.T) {
	tokens, err := NewTokenizer("  a  \t-> b  ").Tokenize()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := []TokenType{SoundToken, SpaceToken, ArrowToken, SpaceToken, SoundToken, EOLToken}
	if got := types(tokens); !sameTypes(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
	if tokens[0].Offset != 0 || tokens[2].Offset != 4 {
		t.Errorf("Unexpected offsets %d, %d", tokens[0].Offset, tokens[2].Offset)
	}
}

func TestFullRule(t *testing.T) {
	inv := &Inventory{ClassNames: []string{"V", "C"}}
	tokens, err := Tokenize("V -> 0 / C_# /! _{a,e}", inv)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := []TokenType{
		SoundClassToken, SpaceToken, ArrowToken, SpaceToken, NullSoundToken, SpaceToken,
		SlashToken, SpaceToken, SoundClassToken, UnderscoreToken, WordBorderToken, SpaceToken,
		NegSlashToken, SpaceToken, UnderscoreToken, LBraceToken, SoundToken, CommaToken, SoundToken, RBraceToken,
		EOLToken,
	}
	if got := types(tokens); !sameTypes(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestGraphemeClusters(t *testing.T) {
	tokens, err := NewTokenizer("ů̠̟̩̈̃a̍̊").Tokenize()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := []string{"ů̠̟̩̈̃", "a̍̊", ""}
	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, tok := range tokens {
		if tok.Text != expected[i] {
			t.Errorf("Token %d: expected %q, got %q", i, expected[i], tok.Text)
		}
	}
}

func TestRequireDefined(t *testing.T) {
	inv := &Inventory{Sounds: []string{"b"}, RequireDefined: true}
	_, err := Tokenize("a", inv)

	var terr *TokenizationError
	if !errors.As(err, &terr) {
		t.Fatalf("Expected TokenizationError, got %v", err)
	}
	if terr.Grapheme != "a" || terr.Offset != 0 {
		t.Errorf("Unexpected error details: %+v", terr)
	}

	if _, err := Tokenize("b -> b", inv); err != nil {
		t.Errorf("Unexpected error for defined sounds: %v", err)
	}
}

func TestRequireDefinedSuggestion(t *testing.T) {
	inv := &Inventory{Sounds: []string{"ts", "p"}, RequireDefined: true}
	_, err := Tokenize("s", inv)

	var terr *TokenizationError
	if !errors.As(err, &terr) {
		t.Fatalf("Expected TokenizationError, got %v", err)
	}
	if terr.Suggestion != "ts" {
		t.Errorf("Expected suggestion 'ts', got %q", terr.Suggestion)
	}
}
