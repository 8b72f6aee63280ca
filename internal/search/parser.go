// Package search implements the node query language: plain and quoted text,
// ~fuzzy terms, /regex/ patterns, structural filters such as d:, kind: or
// child*:, combined with implicit AND, +, | and - (NOT) and parentheses.
package search

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a token in the search query
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenText
	TokenFilter
	TokenRegex  // /pattern/
	TokenAnd    // + (explicit)
	TokenOr     // |
	TokenNot    // -
	TokenLParen // (
	TokenRParen // )
)

func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "EOF"
	case TokenText:
		return "text"
	case TokenFilter:
		return "filter"
	case TokenRegex:
		return "regex"
	case TokenAnd:
		return "and"
	case TokenOr:
		return "or"
	case TokenNot:
		return "not"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	default:
		return "unknown"
	}
}

// Token represents a single token in the search query
type Token struct {
	Type  TokenType
	Value string
}

// ComparisonOp represents comparison operators
type ComparisonOp string

const (
	OpEqual        ComparisonOp = "="
	OpNotEqual     ComparisonOp = "!="
	OpGreater      ComparisonOp = ">"
	OpGreaterEqual ComparisonOp = ">="
	OpLess         ComparisonOp = "<"
	OpLessEqual    ComparisonOp = "<="
)

// quantified lists the filter keywords that accept a +/- quantifier prefix
var quantified = map[string]bool{
	"parent": true, "p": true,
	"ancestor": true, "a": true,
	"child":   true,
	"sibling": true, "s": true,
}

// Tokenizer converts a search query string into tokens
type Tokenizer struct {
	input string
	pos   int
}

// NewTokenizer creates a new tokenizer for the given input
func NewTokenizer(input string) *Tokenizer {
	return &Tokenizer{input: input}
}

// NextToken returns the next token in the input
func (t *Tokenizer) NextToken() Token {
	t.skipWhitespace()
	if t.pos >= len(t.input) {
		return Token{Type: TokenEOF}
	}

	switch ch := t.input[t.pos]; ch {
	case '(':
		t.pos++
		return Token{Type: TokenLParen, Value: "("}
	case ')':
		t.pos++
		return Token{Type: TokenRParen, Value: ")"}
	case '|':
		t.pos++
		return Token{Type: TokenOr, Value: "|"}
	case '+':
		// +child:x is a quantified filter, a lone + is AND
		if ident, ok := t.filterAt(t.pos + 1); ok && quantified[strings.TrimSuffix(ident, "*")] {
			return t.readFilter()
		}
		t.pos++
		return Token{Type: TokenAnd, Value: "+"}
	case '-':
		// -child:x quantifies, -d:2 negates a filter, anything else is NOT
		if _, ok := t.filterAt(t.pos + 1); ok {
			return t.readFilter()
		}
		t.pos++
		return Token{Type: TokenNot, Value: "-"}
	case '"':
		return t.readQuotedText()
	case '~':
		return t.readFuzzyFilter()
	case '/':
		return t.readRegex()
	default:
		if isAlpha(ch) {
			return t.readFilter()
		}
		return t.readText()
	}
}

// AllTokens returns all tokens in the input
func (t *Tokenizer) AllTokens() []Token {
	var tokens []Token
	for {
		tok := t.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens
		}
	}
}

func (t *Tokenizer) skipWhitespace() {
	for t.pos < len(t.input) && isSpace(t.input[t.pos]) {
		t.pos++
	}
}

// filterAt reports whether an identifier (optionally followed by *) and a
// colon start at pos, returning the identifier including any *
func (t *Tokenizer) filterAt(pos int) (string, bool) {
	end := pos
	for end < len(t.input) && isAlphaNumeric(t.input[end]) {
		end++
	}
	if end == pos {
		return "", false
	}
	if end < len(t.input) && t.input[end] == '*' {
		end++
	}
	if end < len(t.input) && t.input[end] == ':' {
		return t.input[pos:end], true
	}
	return "", false
}

func (t *Tokenizer) readQuotedText() Token {
	t.pos++
	start := t.pos
	for t.pos < len(t.input) && t.input[t.pos] != '"' {
		t.pos++
	}
	value := t.input[start:t.pos]
	if t.pos < len(t.input) {
		t.pos++
	}
	return Token{Type: TokenText, Value: value}
}

// readFilter reads [+-]ident[*]:criteria, falling back to plain text when
// the identifier has no colon after it
func (t *Tokenizer) readFilter() Token {
	start := t.pos
	prefix := ""
	if c := t.input[t.pos]; c == '-' || c == '+' {
		prefix = string(c)
		t.pos++
	}

	ident, ok := t.filterAt(t.pos)
	if !ok {
		t.pos = start
		return t.readText()
	}
	t.pos += len(ident) + 1
	return Token{Type: TokenFilter, Value: prefix + ident + ":" + t.readFilterCriteria()}
}

func (t *Tokenizer) readFilterCriteria() string {
	start := t.pos
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if isSpace(ch) || ch == '|' || ch == ')' {
			break
		}
		t.pos++
	}
	return t.input[start:t.pos]
}

func (t *Tokenizer) readText() Token {
	start := t.pos
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if isSpace(ch) || ch == '|' || ch == '+' || ch == ')' || ch == '(' {
			break
		}
		t.pos++
	}
	return Token{Type: TokenText, Value: t.input[start:t.pos]}
}

func (t *Tokenizer) readFuzzyFilter() Token {
	t.pos++
	start := t.pos
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if isSpace(ch) || ch == '|' || ch == '+' || ch == ')' || ch == '(' || ch == '-' {
			break
		}
		t.pos++
	}
	term := t.input[start:t.pos]
	if term == "" {
		return Token{Type: TokenText, Value: "~"}
	}
	return Token{Type: TokenFilter, Value: "~" + term}
}

func (t *Tokenizer) readRegex() Token {
	open := t.pos
	t.pos++
	start := t.pos
	escaped := false
	for ; t.pos < len(t.input); t.pos++ {
		switch ch := t.input[t.pos]; {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '/':
			pattern := t.input[start:t.pos]
			t.pos++
			return Token{Type: TokenRegex, Value: pattern}
		}
	}

	// unterminated: the rest is the pattern, a lone / is text
	pattern := t.input[start:]
	if pattern == "" {
		t.pos = open
		t.pos++
		return Token{Type: TokenText, Value: "/"}
	}
	return Token{Type: TokenRegex, Value: pattern}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n'
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || (ch >= '0' && ch <= '9')
}

// Parser converts tokens into a FilterExpr tree
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a new parser for the given tokens
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseQuery parses a complete search query and returns the root expression.
// An empty query matches every node.
func ParseQuery(query string) (FilterExpr, error) {
	tokens := NewTokenizer(query).AllTokens()
	if len(tokens) == 1 {
		return NewAlwaysMatchExpr(), nil
	}

	p := NewParser(tokens)
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.current(); tok.Type != TokenEOF {
		return nil, fmt.Errorf("unexpected token: %s", tok.Value)
	}
	return expr, nil
}

func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

// endOfAnd reports whether the current token closes an AND chain
func (p *Parser) endOfAnd() bool {
	switch p.current().Type {
	case TokenEOF, TokenRParen, TokenOr:
		return true
	}
	return false
}

// Precedence from loosest to tightest: OR, AND, NOT, atoms.

func (p *Parser) parseOr() (FilterExpr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.current().Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = NewOrExpr(left, right)
	}
	return left, nil
}

func (p *Parser) parseAnd() (FilterExpr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for !p.endOfAnd() {
		if p.current().Type == TokenAnd {
			p.advance()
			if p.endOfAnd() {
				break
			}
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = NewAndExpr(left, right)
	}
	return left, nil
}

func (p *Parser) parseNot() (FilterExpr, error) {
	if p.current().Type != TokenNot {
		return p.parseAtom()
	}
	p.advance()
	expr, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	return NewNotExpr(expr), nil
}

func (p *Parser) parseAtom() (FilterExpr, error) {
	tok := p.current()
	switch tok.Type {
	case TokenLParen:
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.current().Type != TokenRParen {
			return nil, fmt.Errorf("expected ')', got %q", p.current().Value)
		}
		p.advance()
		return expr, nil
	case TokenText:
		p.advance()
		return NewTextExpr(tok.Value), nil
	case TokenFilter:
		p.advance()
		return parseFilterValue(tok.Value)
	case TokenRegex:
		p.advance()
		return NewRegexExpr(tok.Value)
	case TokenEOF:
		return nil, fmt.Errorf("unexpected end of input")
	default:
		return nil, fmt.Errorf("unexpected token: %s", tok.Value)
	}
}

// parseFilterValue converts a filter token value into the matching FilterExpr.
// A leading - selects QuantifierNone, a leading + QuantifierAll; for filters
// that take no quantifier, - negates and + is ignored.
func parseFilterValue(value string) (FilterExpr, error) {
	quantifier := QuantifierSome
	switch {
	case strings.HasPrefix(value, "-"):
		quantifier = QuantifierNone
		value = value[1:]
	case strings.HasPrefix(value, "+"):
		quantifier = QuantifierAll
		value = value[1:]
	}

	if term, ok := strings.CutPrefix(value, "~"); ok {
		return negateIf(NewFuzzyExpr(term), quantifier == QuantifierNone), nil
	}

	filterType, criteria, ok := strings.Cut(value, ":")
	if !ok {
		return negateIf(NewTextExpr(value), quantifier == QuantifierNone), nil
	}
	filterType, closure := strings.CutSuffix(filterType, "*")

	var (
		expr FilterExpr
		err  error
	)
	switch filterType {
	case "parent", "p":
		if closure {
			expr, err = parseNested(criteria, func(inner FilterExpr) FilterExpr {
				return NewAncestorFilter(inner, quantifier)
			})
			return expr, err
		}
		expr, err = parseNested(criteria, func(inner FilterExpr) FilterExpr { return NewParentFilter(inner) })
	case "ancestor", "a":
		return parseNested(criteria, func(inner FilterExpr) FilterExpr {
			return NewAncestorFilter(inner, quantifier)
		})
	case "child":
		return parseNested(criteria, func(inner FilterExpr) FilterExpr {
			if closure {
				return NewDescendantFilter(inner, quantifier)
			}
			return NewChildFilter(inner, quantifier)
		})
	case "sibling", "s":
		return parseNested(criteria, func(inner FilterExpr) FilterExpr {
			return NewSiblingFilter(inner, quantifier)
		})
	case "d":
		expr, err = parseCounted(criteria, func(op ComparisonOp, v string) (FilterExpr, error) { return NewDepthFilter(op, v) })
	case "children":
		expr, err = parseCounted(criteria, func(op ComparisonOp, v string) (FilterExpr, error) { return NewChildrenFilter(op, v) })
	case "kind":
		expr, err = NewKindFilter(criteria)
	case "visible":
		expr, err = NewVisibleFilter(criteria)
	case "id":
		if criteria == "" {
			return nil, fmt.Errorf("id filter requires a uuid prefix")
		}
		expr = NewIDFilter(criteria)
	default:
		// unknown filter, search for the literal text
		expr = NewTextExpr(value)
	}
	if err != nil {
		return nil, err
	}
	return negateIf(expr, quantifier == QuantifierNone), nil
}

func negateIf(expr FilterExpr, negate bool) FilterExpr {
	if negate {
		return NewNotExpr(expr)
	}
	return expr
}

// parseNested parses criteria as a full query and wraps the result
func parseNested(criteria string, wrap func(FilterExpr) FilterExpr) (FilterExpr, error) {
	inner, err := ParseQuery(criteria)
	if err != nil {
		return nil, err
	}
	return wrap(inner), nil
}

func parseCounted(criteria string, build func(ComparisonOp, string) (FilterExpr, error)) (FilterExpr, error) {
	op, val, err := parseComparison(criteria)
	if err != nil {
		return nil, err
	}
	return build(op, val)
}

// parseComparison extracts the comparison operator and value from criteria.
// "5" -> ("=", "5"), ">2" -> (">", "2"), "!=0" -> ("!=", "0")
func parseComparison(criteria string) (ComparisonOp, string, error) {
	if criteria == "" {
		return "", "", fmt.Errorf("empty criteria")
	}
	for _, op := range []ComparisonOp{OpGreaterEqual, OpLessEqual, OpNotEqual, OpGreater, OpLess, OpEqual} {
		if val, ok := strings.CutPrefix(criteria, string(op)); ok {
			if val == "" {
				return "", "", fmt.Errorf("missing value after operator %s", op)
			}
			return op, val, nil
		}
	}
	return OpEqual, criteria, nil
}
