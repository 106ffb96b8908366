// Package lexer implements the single-character-lookahead scanner that
// turns a C-subset source program into a stream of tokens.
package lexer

import (
	"fmt"

	"github.com/jpeterson/triac/token"
)

// Scanner holds our object-state: the input runes and the single
// character of lookahead the parser is allowed to depend on.
type Scanner struct {
	position     int    // current character position
	readPosition int    // next character position
	ch           rune   // current character
	characters   []rune // rune slice of the input string
}

// New builds a Scanner over the given source text.
func New(input string) *Scanner {
	s := &Scanner{characters: []rune(input)}
	s.readChar()
	return s
}

// read one character forward.
func (s *Scanner) readChar() {
	if s.readPosition >= len(s.characters) {
		s.ch = rune(0)
	} else {
		s.ch = s.characters[s.readPosition]
	}
	s.position = s.readPosition
	s.readPosition++
}

// Next advances the current token and returns it. It is total: it
// either returns a valid token or a fatal, descriptive error.
func (s *Scanner) Next() (token.Token, error) {
	s.skipWhitespace()

	switch {
	case s.ch == rune(0):
		return token.Token{Kind: token.EndOfFile, Literal: "EOF"}, nil

	case isLetter(s.ch):
		return s.readIdentifier()

	case isDigit(s.ch):
		return s.readNumber()

	case isOperatorChar(s.ch):
		return s.readOperator()

	case isDelimiterChar(s.ch):
		tok := token.Token{Kind: token.Delimiter, Literal: string(s.ch)}
		s.readChar()
		return tok, nil

	default:
		bad := string(s.ch)
		s.readChar()
		return token.Token{Kind: token.Error, Literal: bad}, fmt.Errorf("Invalid character")
	}
}

func (s *Scanner) skipWhitespace() {
	for isWhitespace(s.ch) {
		s.readChar()
	}
}

// readIdentifier reads the maximal run of letters, digits or '_'
// starting at the current character, and classifies it as Keyword or
// Identifier.
func (s *Scanner) readIdentifier() (token.Token, error) {
	start := s.position
	for isLetter(s.ch) || isDigit(s.ch) {
		s.readChar()
	}
	lit := string(s.characters[start:s.position])

	if len(lit) > token.MaxLexeme {
		return token.Token{Kind: token.Error, Literal: lit}, fmt.Errorf("Invalid character")
	}

	kind := token.Identifier
	if token.IsKeyword(lit) {
		kind = token.Keyword
	}
	return token.Token{Kind: kind, Literal: lit}, nil
}

// readNumber reads the maximal run of digits starting at the current
// character. This grammar has no floating-point literals.
func (s *Scanner) readNumber() (token.Token, error) {
	start := s.position
	for isDigit(s.ch) {
		s.readChar()
	}
	lit := string(s.characters[start:s.position])

	if len(lit) > token.MaxLexeme {
		return token.Token{Kind: token.Error, Literal: lit}, fmt.Errorf("Invalid character")
	}
	return token.Token{Kind: token.Number, Literal: lit}, nil
}

// readOperator consumes one or two characters of operator text.
//
// The Open Question in the original source (spec.md §9) is resolved
// here: a second character is consumed only when the pairing actually
// forms one of this grammar's relational operators (<=, >=, ==, !=),
// not merely whenever the first and second characters are identical.
func (s *Scanner) readOperator() (token.Token, error) {
	first := s.ch
	s.readChar()

	if isRelationalLead(first) && s.ch == '=' {
		lit := string(first) + "="
		s.readChar()
		return token.Token{Kind: token.Operator, Literal: lit}, nil
	}

	return token.Token{Kind: token.Operator, Literal: string(first)}, nil
}

func isRelationalLead(ch rune) bool {
	return ch == '<' || ch == '>' || ch == '=' || ch == '!'
}

func isWhitespace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isOperatorChar(ch rune) bool {
	switch ch {
	case '+', '-', '*', '/', '%', '<', '>', '=', '!', '&', '|':
		return true
	default:
		return false
	}
}

func isDelimiterChar(ch rune) bool {
	switch ch {
	case '(', ')', ',', ';', '{', '}':
		return true
	default:
		return false
	}
}
