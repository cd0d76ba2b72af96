// Package parser builds the syntax tree of a sound change rule from its
// tokens.
//
// The parser is a shift-reduce loop over a single explicit stack. Leaf tokens
// push nodes, opening brackets and separators push markers, and closing
// tokens (")", "}", arrows, "_", slashes and end of line) reduce the top of
// the stack back to the matching marker. Markers never reach the tree.
package parser

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/spicery/soundchanger/pkg/ast"
	"github.com/spicery/soundchanger/pkg/soundclass"
	"github.com/spicery/soundchanger/pkg/tokenizer"
)

// ParseError reports a structurally invalid rule. Line and Text are zero
// until a caller that knows where the rule came from fills them in.
type ParseError struct {
	Line   int
	Text   string
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Msg)
	if e.Text != "" {
		msg += fmt.Sprintf(" in %q", e.Text)
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

type entryKind int

const (
	nodeEntry entryKind = iota
	startMarker
	spaceMarker
	commaMarker
	parenMarker
	braceMarker
	listEntry    // a finished target or replacement list
	changesEntry // the finished chain of changes
	envMarker    // opened by / or /!
	preEntry     // the part of an environment before _
	environmentEntry
)

type entry struct {
	kind     entryKind
	offset   int
	node     ast.Node
	list     []*ast.Sequence
	changes  []*ast.Change
	env      *ast.Environment
	positive bool
}

// Parser turns the tokens of one rule into a *ast.Rule.
type Parser struct {
	tokens   []*tokenizer.Token
	registry *soundclass.Registry
	stack    []*entry
	inEnv    bool
}

// NewParser creates a parser resolving class names against registry.
func NewParser(tokens []*tokenizer.Token, registry *soundclass.Registry) *Parser {
	if registry == nil {
		registry = soundclass.NewRegistry()
	}
	return &Parser{tokens: tokens, registry: registry}
}

// Parse is shorthand for NewParser(tokens, registry).Parse().
func Parse(tokens []*tokenizer.Token, registry *soundclass.Registry) (*ast.Rule, error) {
	return NewParser(tokens, registry).Parse()
}

// ParseString tokenizes text against registry and parses the result.
func ParseString(text string, registry *soundclass.Registry, requireDefined bool) (*ast.Rule, error) {
	if registry == nil {
		registry = soundclass.NewRegistry()
	}
	tokens, err := tokenizer.Tokenize(text, tokenizer.InventoryFrom(registry, requireDefined))
	if err != nil {
		return nil, err
	}
	rule, err := Parse(tokens, registry)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Text = text
		}
		return nil, err
	}
	return rule, nil
}

// Parse consumes the tokens. The token list must end with an EOL token.
func (p *Parser) Parse() (*ast.Rule, error) {
	p.stack = []*entry{{kind: startMarker}}
	p.inEnv = false

	sawEOL := false
	for _, tok := range p.tokens {
		if sawEOL {
			return nil, p.errorf(tok, "unexpected %s after end of line", tok.Type)
		}
		if err := p.shift(tok); err != nil {
			return nil, err
		}
		sawEOL = tok.Type == tokenizer.EOLToken
	}
	if !sawEOL {
		end := 0
		if len(p.tokens) > 0 {
			end = p.tokens[len(p.tokens)-1].Offset
		}
		return nil, &ParseError{Offset: end, Msg: "token stream does not end with EOL"}
	}
	return p.finish()
}

func (p *Parser) shift(tok *tokenizer.Token) error {
	switch tok.Type {
	case tokenizer.SoundToken:
		p.pushNode(tok, &ast.Sound{Text: tok.Text})
	case tokenizer.NullSoundToken:
		p.pushNode(tok, &ast.Sound{})
	case tokenizer.WordBorderToken:
		p.pushNode(tok, &ast.WordBoundary{})
	case tokenizer.SoundClassToken:
		class, err := p.registry.Get(tok.Text)
		if err != nil {
			return p.errorf(tok, "%v", err)
		}
		p.pushNode(tok, &ast.SoundClassRef{Class: class})
	case tokenizer.ClassIndexToken:
		return p.indexClass(tok)
	case tokenizer.SpaceToken:
		// Spaces separate list items in the change part only.
		if !p.inEnv {
			p.push(&entry{kind: spaceMarker, offset: tok.Offset})
		}
	case tokenizer.CommaToken:
		p.push(&entry{kind: commaMarker, offset: tok.Offset})
	case tokenizer.LParenToken:
		p.push(&entry{kind: parenMarker, offset: tok.Offset})
	case tokenizer.LBraceToken:
		p.push(&entry{kind: braceMarker, offset: tok.Offset})
	case tokenizer.RParenToken:
		return p.reduceOptional(tok)
	case tokenizer.RBraceToken:
		return p.reduceAlternation(tok)
	case tokenizer.EllipsisToken:
		return p.reduceRepetition(tok)
	case tokenizer.ArrowToken:
		if p.inEnv {
			return p.errorf(tok, "arrow inside an environment")
		}
		return p.reduceList(tok)
	case tokenizer.UnderscoreToken:
		return p.reducePre(tok)
	case tokenizer.SlashToken, tokenizer.NegSlashToken, tokenizer.EOLToken:
		return p.reduceSection(tok)
	default:
		return p.errorf(tok, "unexpected token %s", tok)
	}
	return nil
}

func (p *Parser) push(e *entry) {
	p.stack = append(p.stack, e)
}

func (p *Parser) pushNode(tok *tokenizer.Token, n ast.Node) {
	p.push(&entry{kind: nodeEntry, offset: tok.Offset, node: n})
}

func (p *Parser) top() *entry {
	return p.stack[len(p.stack)-1]
}

func (p *Parser) pop() *entry {
	e := p.top()
	p.stack = p.stack[:len(p.stack)-1]
	return e
}

func (p *Parser) errorf(tok *tokenizer.Token, format string, args ...any) error {
	return &ParseError{Offset: tok.Offset, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) indexClass(tok *tokenizer.Token) error {
	top := p.top()
	ref, ok := top.node.(*ast.SoundClassRef)
	if top.kind != nodeEntry || !ok {
		return p.errorf(tok, "class index %s does not follow a sound class", tok.Text)
	}
	index, err := strconv.Atoi(tok.Text)
	if err != nil {
		return p.errorf(tok, "invalid class index %q", tok.Text)
	}
	top.node = &ast.IndexedClassRef{Class: ref.Class, Index: index}
	return nil
}

func (p *Parser) reduceRepetition(tok *tokenizer.Token) error {
	top := p.top()
	if top.kind != nodeEntry {
		return p.errorf(tok, "'...' must follow an element")
	}
	if _, ok := top.node.(*ast.Repetition); ok {
		return p.errorf(tok, "'...' cannot be repeated")
	}
	top.node = &ast.Repetition{Inner: top.node}
	return nil
}

func (p *Parser) reduceOptional(tok *tokenizer.Token) error {
	var nodes []ast.Node
	for {
		e := p.pop()
		switch e.kind {
		case nodeEntry:
			nodes = append(nodes, e.node)
			continue
		case spaceMarker:
			continue
		case parenMarker:
		case commaMarker:
			return p.errorf(tok, "',' inside parentheses, use braces for alternatives")
		default:
			return p.errorf(tok, "unbalanced ')'")
		}
		break
	}
	if len(nodes) == 0 {
		return p.errorf(tok, "empty optional group")
	}
	slices.Reverse(nodes)
	p.pushNode(tok, &ast.Optional{Inner: ast.Seq(nodes...)})
	return nil
}

func (p *Parser) reduceAlternation(tok *tokenizer.Token) error {
	var alts []*ast.Sequence
	var current []ast.Node
	closeAlt := func() {
		slices.Reverse(current)
		alts = append(alts, ast.Seq(current...))
		current = nil
	}
	for {
		e := p.pop()
		switch e.kind {
		case nodeEntry:
			current = append(current, e.node)
			continue
		case spaceMarker:
			continue
		case commaMarker:
			closeAlt()
			continue
		case braceMarker:
			closeAlt()
		default:
			return p.errorf(tok, "unbalanced '}'")
		}
		break
	}
	slices.Reverse(alts)
	if len(alts) == 1 && len(alts[0].Elements) == 0 {
		return p.errorf(tok, "empty alternation")
	}
	p.pushNode(tok, &ast.Alternation{Alternatives: alts})
	return nil
}

// popList reduces the elements pushed since the last list (or the start of
// the rule) into a list of sequences separated by spaces and commas.
func (p *Parser) popList(tok *tokenizer.Token) ([]*ast.Sequence, error) {
	var items []*ast.Sequence
	var current []ast.Node
	closeItem := func() {
		if len(current) == 0 {
			return
		}
		slices.Reverse(current)
		items = append(items, ast.Seq(current...))
		current = nil
	}
	for {
		switch e := p.top(); e.kind {
		case nodeEntry:
			current = append(current, e.node)
		case spaceMarker, commaMarker:
			closeItem()
		case parenMarker:
			return nil, &ParseError{Offset: e.offset, Msg: "unclosed '('"}
		case braceMarker:
			return nil, &ParseError{Offset: e.offset, Msg: "unclosed '{'"}
		case startMarker, listEntry:
			closeItem()
			slices.Reverse(items)
			return items, nil
		default:
			return nil, p.errorf(tok, "unexpected %s", tok.Type)
		}
		p.pop()
	}
}

func (p *Parser) reduceList(tok *tokenizer.Token) error {
	items, err := p.popList(tok)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		if p.top().kind == startMarker {
			return p.errorf(tok, "missing target")
		}
		return p.errorf(tok, "empty replacement, use 0 or ∅ for deletion")
	}
	p.push(&entry{kind: listEntry, offset: tok.Offset, list: items})
	return nil
}

// reduceSection handles /, /! and EOL. The first one closes the changes; each
// later one closes the environment opened by the previous slash.
func (p *Parser) reduceSection(tok *tokenizer.Token) error {
	if !p.inEnv {
		if err := p.reduceChanges(tok); err != nil {
			return err
		}
		p.inEnv = true
	} else if err := p.reduceEnvironment(tok); err != nil {
		return err
	}
	switch tok.Type {
	case tokenizer.SlashToken:
		p.push(&entry{kind: envMarker, offset: tok.Offset, positive: true})
	case tokenizer.NegSlashToken:
		p.push(&entry{kind: envMarker, offset: tok.Offset, positive: false})
	}
	return nil
}

func (p *Parser) reduceChanges(tok *tokenizer.Token) error {
	if p.top().kind == startMarker {
		return p.errorf(tok, "missing arrow")
	}
	if err := p.reduceList(tok); err != nil {
		return err
	}
	var lists [][]*ast.Sequence
	for p.top().kind == listEntry {
		lists = append(lists, p.pop().list)
	}
	if p.top().kind != startMarker {
		return p.errorf(tok, "malformed rule")
	}
	if len(lists) < 2 {
		return p.errorf(tok, "missing arrow")
	}
	slices.Reverse(lists)

	var changes []*ast.Change
	for stage := 0; stage+1 < len(lists); stage++ {
		targets, replacements := lists[stage], lists[stage+1]
		switch {
		case len(replacements) == len(targets):
		case len(replacements) == 1:
			broadcast := make([]*ast.Sequence, len(targets))
			for i := range broadcast {
				broadcast[i] = replacements[0]
			}
			replacements = broadcast
		default:
			return p.errorf(tok, "%d targets but %d replacements", len(targets), len(replacements))
		}
		for i, target := range targets {
			changes = append(changes, &ast.Change{Target: target, Replacement: replacements[i], Stage: stage})
		}
	}
	p.push(&entry{kind: changesEntry, offset: tok.Offset, changes: changes})
	return nil
}

// popPattern pops the nodes of one environment half.
func (p *Parser) popPattern(tok *tokenizer.Token) (*ast.Sequence, error) {
	var nodes []ast.Node
	for {
		switch e := p.top(); e.kind {
		case nodeEntry:
			nodes = append(nodes, e.node)
			p.pop()
			continue
		case envMarker, preEntry:
		case commaMarker:
			return nil, &ParseError{Offset: e.offset, Msg: "',' outside braces in an environment"}
		case parenMarker:
			return nil, &ParseError{Offset: e.offset, Msg: "unclosed '('"}
		case braceMarker:
			return nil, &ParseError{Offset: e.offset, Msg: "unclosed '{'"}
		default:
			return nil, p.errorf(tok, "unexpected %s", tok.Type)
		}
		break
	}
	slices.Reverse(nodes)
	return ast.Seq(nodes...), nil
}

func (p *Parser) reducePre(tok *tokenizer.Token) error {
	if !p.inEnv {
		return p.errorf(tok, "'_' outside an environment")
	}
	pre, err := p.popPattern(tok)
	if err != nil {
		return err
	}
	if p.top().kind == preEntry {
		return p.errorf(tok, "environment has more than one '_'")
	}
	p.push(&entry{kind: preEntry, offset: tok.Offset, node: pre})
	return nil
}

func (p *Parser) reduceEnvironment(tok *tokenizer.Token) error {
	if p.top().kind == changesEntry || p.top().kind == environmentEntry {
		return p.errorf(tok, "unexpected %s", tok.Type)
	}
	post, err := p.popPattern(tok)
	if err != nil {
		return err
	}
	if p.top().kind != preEntry {
		return p.errorf(tok, "environment is missing '_'")
	}
	pre := p.pop().node.(*ast.Sequence)
	marker := p.pop()
	if marker.kind != envMarker {
		return p.errorf(tok, "malformed environment")
	}
	p.push(&entry{
		kind:   environmentEntry,
		offset: marker.offset,
		env:    &ast.Environment{Pre: pre, Post: post, Positive: marker.positive},
	})
	return nil
}

// finish checks that the stack reduced to start, changes, environments and
// builds the rule.
func (p *Parser) finish() (*ast.Rule, error) {
	rule := &ast.Rule{}
	for i, e := range p.stack {
		switch {
		case i == 0 && e.kind == startMarker:
		case i == 1 && e.kind == changesEntry:
			rule.Changes = e.changes
		case i > 1 && e.kind == environmentEntry:
			if e.env.Positive {
				rule.Positive = append(rule.Positive, e.env)
			} else {
				rule.Negative = append(rule.Negative, e.env)
			}
		default:
			return nil, &ParseError{Offset: e.offset, Msg: "rule did not reduce completely"}
		}
	}
	if len(rule.Changes) == 0 {
		return nil, &ParseError{Msg: "missing arrow"}
	}
	return rule, nil
}
