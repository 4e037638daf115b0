package mfa

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	identifierCode = iota
	colonCode
	slashCode
	atCode
	arityCode
)

// Token definitions
var (
	identifierToken = parsly.NewToken(identifierCode, "Identifier", newIdentifierMatcher())
	colonToken      = parsly.NewToken(colonCode, ":", matcher.NewByte(':'))
	slashToken      = parsly.NewToken(slashCode, "/", matcher.NewByte('/'))
	atToken         = parsly.NewToken(atCode, "@", matcher.NewByte('@'))
	arityToken      = parsly.NewToken(arityCode, "Arity", newArityMatcher())
)

func newIdentifierMatcher() parsly.Matcher {
	return &identifierMatcher{}
}

func newArityMatcher() parsly.Matcher {
	return &arityMatcher{}
}

// identifierMatcher matches module and function atoms: a letter or
// underscore followed by letters, digits or underscores.
type identifierMatcher struct{}

func (m *identifierMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos >= size {
		return 0
	}
	first := input[pos]
	if !isLetter(first) && first != '_' {
		return 0
	}
	matched := 1
	for i := pos + 1; i < size; i++ {
		c := input[i]
		if !isLetter(c) && !isDigit(c) && c != '_' {
			break
		}
		matched++
	}
	return matched
}

// arityMatcher matches a run of decimal digits.
type arityMatcher struct{}

func (m *arityMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	matched := 0
	for i := pos; i < size; i++ {
		if !isDigit(input[i]) {
			break
		}
		matched++
	}
	return matched
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
