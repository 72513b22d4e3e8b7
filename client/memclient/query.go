package memclient

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidQuery is wrapped by every query parse failure.
var ErrInvalidQuery = errors.New("invalid query")

// query is the supported subset of the backend query language:
//
//	[code (= | !=) "value" (and code (= | !=) "value")*]
//	[order by $id (asc | desc)] [limit N] [offset N]
type query struct {
	conds  []condition
	desc   bool
	limit  int
	offset int
}

type condition struct {
	code   string
	negate bool
	value  string
}

const noLimit = -1

func (c condition) matches(r *storedRecord) bool {
	f, ok := r.row()[c.code]
	eq := ok && fmt.Sprint(f.Value) == c.value
	return eq != c.negate
}

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenString
	tokenOperator
)

type token struct {
	kind tokenKind
	text string
}

func (t token) is(word string) bool {
	return t.kind == tokenWord && strings.EqualFold(t.text, word)
}

func tokenize(s string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(s); {
		c := rune(s[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '=':
			tokens = append(tokens, token{tokenOperator, "="})
			i++
		case c == '!' && i+1 < len(s) && s[i+1] == '=':
			tokens = append(tokens, token{tokenOperator, "!="})
			i += 2
		case c == '"':
			var b strings.Builder
			j := i + 1
			for ; j < len(s) && s[j] != '"'; j++ {
				if s[j] == '\\' && j+1 < len(s) {
					j++
				}
				b.WriteByte(s[j])
			}
			if j == len(s) {
				return nil, fmt.Errorf("%w: unterminated string at %d", ErrInvalidQuery, i)
			}
			tokens = append(tokens, token{tokenString, b.String()})
			i = j + 1
		case c == '$' || c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c):
			j := i + 1
			for j < len(s) && (s[j] == '_' || unicode.IsLetter(rune(s[j])) || unicode.IsDigit(rune(s[j]))) {
				j++
			}
			tokens = append(tokens, token{tokenWord, s[i:j]})
			i = j
		default:
			return nil, fmt.Errorf("%w: unexpected %q at %d", ErrInvalidQuery, c, i)
		}
	}
	return tokens, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) next(what string) (token, error) {
	t, ok := p.peek()
	if !ok {
		return token{}, fmt.Errorf("%w: expected %s at end of query", ErrInvalidQuery, what)
	}
	p.pos++
	return t, nil
}

func (p *parser) keyword(word string) error {
	t, err := p.next(word)
	if err != nil {
		return err
	}
	if !t.is(word) {
		return fmt.Errorf("%w: expected %s, got %q", ErrInvalidQuery, word, t.text)
	}
	return nil
}

func (p *parser) atKeyword(word string) bool {
	t, ok := p.peek()
	return ok && t.is(word)
}

func (p *parser) number(what string) (int, error) {
	t, err := p.next(what)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(t.text)
	if t.kind != tokenWord || err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative number, got %q", ErrInvalidQuery, what, t.text)
	}
	return n, nil
}

func (p *parser) condition() (condition, error) {
	code, err := p.next("field code")
	if err != nil {
		return condition{}, err
	}
	op, err := p.next("operator")
	if err != nil {
		return condition{}, err
	}
	value, err := p.next("value")
	if err != nil {
		return condition{}, err
	}
	if code.kind != tokenWord || op.kind != tokenOperator || value.kind != tokenString {
		return condition{}, fmt.Errorf("%w: unsupported condition %s %s %s", ErrInvalidQuery, code.text, op.text, value.text)
	}
	return condition{code: code.text, negate: op.text == "!=", value: value.text}, nil
}

func parseQuery(s string) (query, error) {
	tokens, err := tokenize(s)
	if err != nil {
		return query{}, err
	}
	p := &parser{tokens: tokens}
	q := query{desc: true, limit: noLimit}

	if _, ok := p.peek(); ok && !p.atKeyword("order") && !p.atKeyword("limit") && !p.atKeyword("offset") {
		for {
			c, err := p.condition()
			if err != nil {
				return query{}, err
			}
			q.conds = append(q.conds, c)
			if !p.atKeyword("and") {
				break
			}
			p.pos++
		}
	}

	if p.atKeyword("order") {
		p.pos++
		if err := p.keyword("by"); err != nil {
			return query{}, err
		}
		if err := p.keyword("$id"); err != nil {
			return query{}, err
		}
		switch {
		case p.atKeyword("asc"):
			q.desc = false
			p.pos++
		case p.atKeyword("desc"):
			p.pos++
		}
	}
	if p.atKeyword("limit") {
		p.pos++
		if q.limit, err = p.number("limit"); err != nil {
			return query{}, err
		}
	}
	if p.atKeyword("offset") {
		p.pos++
		if q.offset, err = p.number("offset"); err != nil {
			return query{}, err
		}
	}
	if t, ok := p.peek(); ok {
		return query{}, fmt.Errorf("%w: unexpected %q", ErrInvalidQuery, t.text)
	}
	return q, nil
}
