package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Kind classifies a query term by its leading character.
type Kind int

const (
	KindInvalid Kind = iota
	KindPrefix
	KindSuffix
	KindExact
	KindWildcard
)

func (k Kind) String() string {
	switch k {
	case KindPrefix:
		return "prefix"
	case KindSuffix:
		return "suffix"
	case KindExact:
		return "exact"
	case KindWildcard:
		return "wildcard"
	default:
		return "invalid"
	}
}

// Operator joins a term to the running result. Only the first byte of the
// operator token is significant.
type Operator byte

const (
	OpOr     Operator = '/'
	OpAnd    Operator = '+'
	OpAndNot Operator = '-'
)

// Term is one predicate of a query. Text is the payload with any wrapping
// characters removed; Raw is the token as written.
type Term struct {
	Kind Kind
	Text string
	Raw  string
}

// Step is an operator and the term it applies to.
type Step struct {
	Op   Operator
	Term Term
}

// Query is a left-to-right chain: First, then each Step in order.
type Query struct {
	First    Term
	Steps    []Step
	RawQuery string
	empty    bool
}

// Empty reports whether the query line held no tokens at all.
func (q *Query) Empty() bool {
	return q.empty
}

// Terms returns every term of the query in order.
func (q *Query) Terms() []Term {
	if q.empty {
		return nil
	}
	terms := make([]Term, 0, len(q.Steps)+1)
	terms = append(terms, q.First)
	for _, s := range q.Steps {
		terms = append(terms, s.Term)
	}
	return terms
}

// Parse splits a query line on spaces. Tokens at even positions are terms
// and tokens at odd positions are operators; a trailing operator without a
// term is dropped.
func Parse(line string) *Query {
	q := &Query{RawQuery: line}
	tokens := strings.FieldsFunc(line, func(r rune) bool { return r == ' ' })
	if len(tokens) == 0 {
		q.empty = true
		return q
	}
	q.First = ParseTerm(tokens[0])
	for i := 2; i < len(tokens); i += 2 {
		q.Steps = append(q.Steps, Step{
			Op:   Operator(tokens[i-1][0]),
			Term: ParseTerm(tokens[i]),
		})
	}
	return q
}

// ParseTerm classifies a single token. Wrapped kinds lose their first and
// last character; a token whose first character is not recognised yields
// KindInvalid, which never matches.
func ParseTerm(token string) Term {
	t := Term{Raw: token}
	if token == "" {
		return t
	}
	switch c := token[0]; {
	case isLetter(c):
		t.Kind = KindPrefix
		t.Text = token
		return t
	case c == '*':
		t.Kind = KindSuffix
	case c == '"':
		t.Kind = KindExact
	case c == '<':
		t.Kind = KindWildcard
	default:
		return t
	}
	if len(token) >= 2 {
		t.Text = token[1 : len(token)-1]
	}
	return t
}

// ReadQueries reads one query per line. Empty lines are kept so the output
// stays aligned with the input.
func ReadQueries(r io.Reader) ([]*Query, error) {
	var queries []*Query
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimRight(line, "\r\n")
			queries = append(queries, Parse(line))
		}
		if err == io.EOF {
			return queries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading queries: %w", err)
		}
	}
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
