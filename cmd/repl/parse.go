package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bawdo/ksqltree/nodes"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokSymbol
)

// token is one lexical unit of a command argument. Identifier tokens keep
// their dotted parts; bare parts are upper-cased the way KSQL folds
// unquoted identifiers, backtick-quoted parts keep their case.
type token struct {
	kind   tokenKind
	text   string
	parts  []string
	star   bool // identifier ended in ".*"
	quoted bool // some part was backtick-quoted
	pos    int  // byte offset within the input
}

func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

// keyword reports whether t is the bare identifier kw.
func (t token) keyword(kw string) bool {
	return t.kind == tokIdent && !t.quoted && !t.star && len(t.parts) == 1 && t.parts[0] == kw
}

var symbols = []string{"<>", "!=", "<=", ">=", "=", "<", ">", "+", "-", "*", "/", "%", "(", ")", ","}

// tokenize splits input into tokens, respecting single-quoted strings
// (with '' escapes) and backtick-quoted identifiers.
func tokenize(input string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(input); {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t':
			i++

		case ch == '\'':
			var sb strings.Builder
			j := i + 1
			for {
				if j >= len(input) {
					return nil, fmt.Errorf("unterminated string at column %d", i+1)
				}
				if input[j] == '\'' {
					if j+1 < len(input) && input[j+1] == '\'' {
						sb.WriteByte('\'')
						j += 2
						continue
					}
					break
				}
				sb.WriteByte(input[j])
				j++
			}
			tokens = append(tokens, token{kind: tokString, text: sb.String(), pos: i})
			i = j + 1

		case isDigit(ch) || (ch == '.' && i+1 < len(input) && isDigit(input[i+1])):
			j := i
			for j < len(input) && (isDigit(input[j]) || input[j] == '.') {
				j++
			}
			if j < len(input) && (input[j] == 'e' || input[j] == 'E') {
				j++
				if j < len(input) && (input[j] == '+' || input[j] == '-') {
					j++
				}
				for j < len(input) && isDigit(input[j]) {
					j++
				}
			}
			tokens = append(tokens, token{kind: tokNumber, text: input[i:j], pos: i})
			i = j

		case isIdentStart(ch) || ch == '`':
			tok, next, err := scanIdentifier(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = next

		default:
			matched := false
			for _, sym := range symbols {
				if strings.HasPrefix(input[i:], sym) {
					tokens = append(tokens, token{kind: tokSymbol, text: sym, pos: i})
					i += len(sym)
					matched = true
					break
				}
			}
			if !matched {
				return nil, fmt.Errorf("unexpected character %q at column %d", ch, i+1)
			}
		}
	}
	return tokens, nil
}

// scanIdentifier reads a dotted identifier starting at i, e.g. O.USER_ID,
// `Mixed`.col or O.*.
func scanIdentifier(input string, i int) (token, int, error) {
	tok := token{kind: tokIdent, pos: i}
	j := i
	for {
		switch {
		case j < len(input) && input[j] == '`':
			end := strings.IndexByte(input[j+1:], '`')
			if end < 0 {
				return token{}, 0, fmt.Errorf("unterminated quoted identifier at column %d", j+1)
			}
			tok.parts = append(tok.parts, input[j+1:j+1+end])
			tok.quoted = true
			j += end + 2
		case j < len(input) && isIdentStart(input[j]):
			k := j
			for k < len(input) && isIdentPart(input[k]) {
				k++
			}
			tok.parts = append(tok.parts, strings.ToUpper(input[j:k]))
			j = k
		default:
			return token{}, 0, fmt.Errorf("expected identifier at column %d", j+1)
		}
		if j+1 < len(input) && input[j] == '.' && input[j+1] == '*' {
			tok.star = true
			j += 2
			break
		}
		if j+1 < len(input) && input[j] == '.' && (isIdentStart(input[j+1]) || input[j+1] == '`') {
			j++
			continue
		}
		break
	}
	tok.text = input[i:j]
	return tok, j, nil
}

func isDigit(ch byte) bool      { return ch >= '0' && ch <= '9' }
func isIdentStart(ch byte) bool { return ch == '_' || (ch|0x20 >= 'a' && ch|0x20 <= 'z') }
func isIdentPart(ch byte) bool  { return isIdentStart(ch) || isDigit(ch) }

// reserved words cannot start an expression operand.
var reserved = map[string]bool{
	"AND": true, "AS": true, "BY": true, "DISTINCT": true, "FROM": true, "IS": true,
	"JOIN": true, "NOT": true, "ON": true, "OR": true,
}

var comparisonOps = map[string]nodes.ComparisonOp{
	"=":  nodes.OpEqual,
	"<>": nodes.OpNotEqual,
	"!=": nodes.OpNotEqual,
	"<":  nodes.OpLessThan,
	"<=": nodes.OpLessThanOrEqual,
	">":  nodes.OpGreaterThan,
	">=": nodes.OpGreaterThanOrEqual,
}

var arithmeticOps = map[string]nodes.ArithmeticOp{
	"+": nodes.OpAdd,
	"-": nodes.OpSubtract,
	"*": nodes.OpMultiply,
	"/": nodes.OpDivide,
	"%": nodes.OpModulus,
}

var errTrailing = errors.New("unexpected trailing input")

// parser is a recursive-descent parser over command arguments. Every node
// it builds is stamped with the location of its first token.
type parser struct {
	toks []token
	pos  int
	line int
	col  int // column of the first byte of the input within the line
}

func newParser(input string, line, col int) (*parser, error) {
	toks, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	return &parser{toks: toks, line: line, col: col}, nil
}

func (p *parser) done() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() (token, bool) {
	if p.done() {
		return token{}, false
	}
	return p.toks[p.pos], true
}

// accept consumes the next token when it is the bare keyword kw.
func (p *parser) accept(kw string) bool {
	if t, ok := p.peek(); ok && t.keyword(kw) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) acceptSymbol(sym string) bool {
	if t, ok := p.peek(); ok && t.is(tokSymbol, sym) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(kw string) error {
	if p.accept(kw) {
		return nil
	}
	return p.errorf("expected %s", kw)
}

func (p *parser) expectSymbol(sym string) error {
	if p.acceptSymbol(sym) {
		return nil
	}
	return p.errorf("expected %q", sym)
}

// end reports an error if any tokens remain.
func (p *parser) end() error {
	if p.done() {
		return nil
	}
	return p.errorf("%w %q", errTrailing, p.toks[p.pos].text)
}

func (p *parser) errorf(format string, args ...any) error {
	loc := nodes.NodeLocation{Line: p.line, Column: p.col}
	if t, ok := p.peek(); ok {
		loc = p.location(t)
	} else if len(p.toks) > 0 {
		last := p.toks[len(p.toks)-1]
		loc.Column = p.col + last.pos + len(last.text)
	}
	return fmt.Errorf("%s: %w", loc, fmt.Errorf(format, args...))
}

func (p *parser) location(t token) nodes.NodeLocation {
	return nodes.NodeLocation{Line: p.line, Column: p.col + t.pos}
}

func (p *parser) at(t token) nodes.Option { return nodes.At(p.location(t)) }

// start returns the next token for location stamping.
func (p *parser) start() token {
	t, _ := p.peek()
	return t
}

// expression parses a full boolean or value expression:
//
//	or    := and { OR and }
//	and   := not { AND not }
//	not   := NOT not | cmp
//	cmp   := sum [ op sum | IS [NOT] NULL | IS [NOT] DISTINCT FROM sum ]
//	sum   := term { (+|-) term }
//	term  := atom { (*|/|%) atom }
func (p *parser) expression() (nodes.Expression, error) {
	first := p.start()
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.accept("OR") {
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		if left, err = nodes.NewLogicalBinaryExpression(nodes.OpOr, left, right, p.at(first)); err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *parser) and() (nodes.Expression, error) {
	first := p.start()
	left, err := p.not()
	if err != nil {
		return nil, err
	}
	for p.accept("AND") {
		right, err := p.not()
		if err != nil {
			return nil, err
		}
		if left, err = nodes.NewLogicalBinaryExpression(nodes.OpAnd, left, right, p.at(first)); err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *parser) not() (nodes.Expression, error) {
	first := p.start()
	if p.accept("NOT") {
		inner, err := p.not()
		if err != nil {
			return nil, err
		}
		return nodes.NewNotExpression(inner, p.at(first))
	}
	return p.comparison()
}

func (p *parser) comparison() (nodes.Expression, error) {
	first := p.start()
	left, err := p.sum()
	if err != nil {
		return nil, err
	}
	if t, ok := p.peek(); ok && t.kind == tokSymbol {
		if op, ok := comparisonOps[t.text]; ok {
			p.pos++
			right, err := p.sum()
			if err != nil {
				return nil, err
			}
			return nodes.NewComparisonExpression(op, left, right, p.at(first))
		}
	}
	if !p.accept("IS") {
		return left, nil
	}
	negate := p.accept("NOT")
	var right nodes.Expression
	if t, ok := p.peek(); ok && t.keyword("NULL") {
		p.pos++
		right = nodes.NewNullLiteral(p.at(t))
		// x IS NULL holds exactly when x is not distinct from NULL.
		negate = !negate
	} else {
		if err := p.expect("DISTINCT"); err != nil {
			return nil, err
		}
		if err := p.expect("FROM"); err != nil {
			return nil, err
		}
		if right, err = p.sum(); err != nil {
			return nil, err
		}
	}
	cmp, err := nodes.NewComparisonExpression(nodes.OpIsDistinctFrom, left, right, p.at(first))
	if err != nil || !negate {
		return cmp, err
	}
	return nodes.NewNotExpression(cmp, p.at(first))
}

func (p *parser) sum() (nodes.Expression, error) {
	return p.binary(p.term, "+", "-")
}

func (p *parser) term() (nodes.Expression, error) {
	return p.binary(p.atom, "*", "/", "%")
}

func (p *parser) binary(operand func() (nodes.Expression, error), ops ...string) (nodes.Expression, error) {
	first := p.start()
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokSymbol || !contains(ops, t.text) {
			return left, nil
		}
		p.pos++
		right, err := operand()
		if err != nil {
			return nil, err
		}
		if left, err = nodes.NewArithmeticBinaryExpression(arithmeticOps[t.text], left, right, p.at(first)); err != nil {
			return nil, err
		}
	}
}

func (p *parser) atom() (nodes.Expression, error) {
	t, ok := p.peek()
	if !ok {
		return nil, p.errorf("expected expression")
	}
	switch t.kind {
	case tokNumber:
		p.pos++
		return p.number(t, false)
	case tokString:
		p.pos++
		return nodes.NewStringLiteral(t.text, p.at(t)), nil
	case tokSymbol:
		switch t.text {
		case "(":
			p.pos++
			e, err := p.expression()
			if err != nil {
				return nil, err
			}
			return e, p.expectSymbol(")")
		case "-":
			p.pos++
			if n, ok := p.peek(); ok && n.kind == tokNumber {
				p.pos++
				lit, err := p.number(n, true)
				if err != nil {
					return nil, err
				}
				return lit, nil
			}
			return nil, p.errorf("expected number after '-'")
		}
		return nil, p.errorf("unexpected %q", t.text)
	}

	if t.star {
		return nil, p.errorf("%s is only valid in a select list", t.text)
	}
	if !t.quoted && len(t.parts) == 1 {
		switch t.parts[0] {
		case "TRUE", "FALSE":
			p.pos++
			return nodes.NewBooleanLiteral(t.parts[0] == "TRUE", p.at(t)), nil
		case "NULL":
			p.pos++
			return nodes.NewNullLiteral(p.at(t)), nil
		}
		if reserved[t.parts[0]] {
			return nil, p.errorf("unexpected keyword %s", t.parts[0])
		}
	}
	p.pos++
	name, err := nodes.NewQualifiedName(t.parts...)
	if err != nil {
		return nil, err
	}
	if !p.acceptSymbol("(") {
		return nodes.NewColumnReference(name, p.at(t))
	}
	var args []nodes.Expression
	if !p.acceptSymbol(")") {
		for {
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.acceptSymbol(")") {
				break
			}
			if err := p.expectSymbol(","); err != nil {
				return nil, err
			}
		}
	}
	return nodes.NewFunctionCall(name, args, p.at(t))
}

// number converts a numeric token into an integer or double literal.
func (p *parser) number(t token, negative bool) (nodes.Expression, error) {
	text := t.text
	if negative {
		text = "-" + text
	}
	if !strings.ContainsAny(text, ".eE") {
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid integer %s", p.location(t), text)
		}
		return nodes.NewIntegerLiteral(v, p.at(t)), nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid number %s", p.location(t), text)
	}
	return nodes.NewDoubleLiteral(v, p.at(t)), nil
}

// qualifiedName parses a single dotted identifier.
func (p *parser) qualifiedName() (nodes.QualifiedName, token, error) {
	t, ok := p.peek()
	if !ok || t.kind != tokIdent || t.star {
		return nodes.QualifiedName{}, t, p.errorf("expected name")
	}
	p.pos++
	name, err := nodes.NewQualifiedName(t.parts...)
	return name, t, err
}

// identifier parses a single undotted identifier such as an alias.
func (p *parser) identifier() (string, error) {
	t, ok := p.peek()
	if !ok || t.kind != tokIdent || t.star || len(t.parts) != 1 {
		return "", p.errorf("expected identifier")
	}
	if !t.quoted && reserved[t.parts[0]] {
		return "", p.errorf("unexpected keyword %s", t.parts[0])
	}
	p.pos++
	return t.parts[0], nil
}

// selectItems parses "*", "X.*" and "expr [AS alias]" entries separated by
// commas.
func (p *parser) selectItems() ([]nodes.SelectItem, error) {
	var items []nodes.SelectItem
	for {
		item, err := p.selectItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if !p.acceptSymbol(",") {
			return items, p.end()
		}
	}
}

func (p *parser) selectItem() (nodes.SelectItem, error) {
	t, ok := p.peek()
	if ok && t.is(tokSymbol, "*") {
		p.pos++
		return nodes.NewAllColumns(nodes.QualifiedName{}, p.at(t)), nil
	}
	if ok && t.kind == tokIdent && t.star {
		p.pos++
		prefix, err := nodes.NewQualifiedName(t.parts...)
		if err != nil {
			return nil, err
		}
		return nodes.NewAllColumns(prefix, p.at(t)), nil
	}
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	alias := ""
	if p.accept("AS") {
		if alias, err = p.identifier(); err != nil {
			return nil, err
		}
	}
	return nodes.NewSingleColumn(expr, alias, p.at(t))
}

// relation parses "name [[AS] alias]".
func (p *parser) relation() (nodes.Relation, error) {
	name, t, err := p.qualifiedName()
	if err != nil {
		return nil, err
	}
	tbl, err := nodes.NewTable(name, p.at(t))
	if err != nil {
		return nil, err
	}
	explicit := p.accept("AS")
	if next, ok := p.peek(); !explicit && (!ok || next.kind != tokIdent || next.keyword("ON")) {
		return tbl, nil
	}
	alias, err := p.identifier()
	if err != nil {
		return nil, err
	}
	return nodes.NewAliasedRelation(tbl, alias, p.at(t))
}

// expressionList parses comma-separated expressions.
func (p *parser) expressionList() ([]nodes.Expression, error) {
	var out []nodes.Expression
	for {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if !p.acceptSymbol(",") {
			return out, p.end()
		}
	}
}

// properties parses "KEY = value" pairs separated by commas.
func (p *parser) properties() ([]nodes.Property, error) {
	var out []nodes.Property
	for {
		key, err := p.identifier()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol("="); err != nil {
			return nil, err
		}
		value, err := p.sum()
		if err != nil {
			return nil, err
		}
		out = append(out, nodes.Property{Key: key, Value: value})
		if !p.acceptSymbol(",") {
			return out, p.end()
		}
	}
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}
