// Package parser implements the recursive-descent parser: it drives the
// grammar of spec.md §4.2 directly off the scanner, a single token of
// lookahead at a time, emitting quadruples into a quad.Buffer and
// declaring symbols into a symtab.Table as it goes.
//
// Grounded on original_source/Conversation.c's program/declarationList/
// declaration/statementList/statement/... family of functions, and on
// the teacher's compiler.Compile, which drove a similar
// tokenize-then-build pipeline from a single object.
package parser

import (
	"fmt"
	"strconv"

	"github.com/jpeterson/triac/lexer"
	"github.com/jpeterson/triac/quad"
	"github.com/jpeterson/triac/symtab"
	"github.com/jpeterson/triac/token"
)

// Parser holds the state of one parse: the scanner, the single token
// of lookahead, and the symbol table and quadruple buffer being built.
type Parser struct {
	scanner *lexer.Scanner
	symbols *symtab.Table
	quads   *quad.Buffer

	cur token.Token

	tempCount int

	// sink, if set, receives every token the scanner produces, in the
	// <KIND, lexeme> diagnostic form spec.md §6 calls for.
	sink func(token.Token)
}

// New builds a Parser over source, declaring into symbols and emitting
// into quads. Both must be freshly constructed.
func New(source string, symbols *symtab.Table, quads *quad.Buffer) *Parser {
	return &Parser{
		scanner: lexer.New(source),
		symbols: symbols,
		quads:   quads,
	}
}

// SetTokenSink registers fn to be called with every token the scanner
// produces during Parse, in scan order. Used by the compiler package to
// print the diagnostic token stream.
func (p *Parser) SetTokenSink(fn func(token.Token)) {
	p.sink = fn
}

// Parse runs the grammar start symbol over the whole input and reports
// the first syntactic or declaration error encountered, if any.
func (p *Parser) Parse() error {
	if err := p.advance(); err != nil {
		return err
	}
	if err := p.program(); err != nil {
		return err
	}
	if p.cur.Kind != token.EndOfFile {
		return ErrSyntaxError
	}
	return nil
}

// advance consumes the current lookahead and fetches the next token.
func (p *Parser) advance() error {
	tok, err := p.scanner.Next()
	if err != nil {
		return fmt.Errorf("Invalid character")
	}
	if p.sink != nil && tok.Kind != token.EndOfFile {
		p.sink(tok)
	}
	p.cur = tok
	return nil
}

func (p *Parser) newTemp() string {
	p.tempCount++
	return fmt.Sprintf("t%d", p.tempCount)
}

func (p *Parser) isAt(kind token.Kind, literal string) bool {
	return p.cur.Kind == kind && p.cur.Literal == literal
}

func (p *Parser) isTypeKeyword() bool {
	return p.cur.Kind == token.Keyword && token.IsType(p.cur.Literal)
}

func isRelOp(tok token.Token) bool {
	if tok.Kind != token.Operator {
		return false
	}
	switch tok.Literal {
	case "<", "<=", ">", ">=", "==", "!=":
		return true
	default:
		return false
	}
}

// Program ::= DeclarationList StatementList
func (p *Parser) program() error {
	if err := p.declarationList(); err != nil {
		return err
	}
	return p.statementList()
}

// DeclarationList ::= Declaration*
func (p *Parser) declarationList() error {
	for p.isTypeKeyword() {
		if err := p.declaration(); err != nil {
			return err
		}
	}
	return nil
}

// Declaration ::= Type Identifier ';'
func (p *Parser) declaration() error {
	typLit, err := p.parseType()
	if err != nil {
		return err
	}

	if p.cur.Kind != token.Identifier {
		return ErrSyntaxError
	}
	name := p.cur.Literal
	if err := p.advance(); err != nil {
		return err
	}

	if !p.isAt(token.Delimiter, ";") {
		return ErrMissingSemicolon
	}

	typ, _ := symtab.ParseType(typLit)
	if _, err := p.symbols.Insert(name, symtab.Variable, typ, 0); err != nil {
		return err
	}
	if _, err := p.quads.Emit(quad.Dec, typLit, "", name); err != nil {
		return err
	}

	return p.advance()
}

// Type ::= 'int' | 'char' | 'void'
func (p *Parser) parseType() (string, error) {
	if !p.isTypeKeyword() {
		return "", ErrInvalidType
	}
	lit := p.cur.Literal
	return lit, p.advance()
}

// startsStatement reports whether statementList hands the lookahead to
// statement: anything but end of input or a delimiter. statement itself
// rejects a token that cannot begin a statement with ErrInvalidStatement;
// a leftover delimiter ends the list and Parse reports ErrSyntaxError.
func (p *Parser) startsStatement() bool {
	return p.cur.Kind != token.EndOfFile && p.cur.Kind != token.Delimiter
}

// StatementList ::= Statement*
func (p *Parser) statementList() error {
	for p.startsStatement() {
		if err := p.statement(); err != nil {
			return err
		}
	}
	return nil
}

// Statement ::= AssignStatement | ConditionStatement | LoopStatement | ReturnStatement
func (p *Parser) statement() error {
	switch {
	case p.cur.Kind == token.Identifier:
		return p.assignStatement()
	case p.isAt(token.Keyword, "if"):
		return p.conditionStatement()
	case p.isAt(token.Keyword, "while"):
		return p.loopStatement()
	case p.isAt(token.Keyword, "return"):
		return p.returnStatement()
	default:
		return ErrInvalidStatement
	}
}

// AssignStatement ::= Identifier '=' Expression ';'
func (p *Parser) assignStatement() error {
	name := p.cur.Literal
	if _, ok := p.symbols.Lookup(name); !ok {
		return ErrUndeclaredIdentifier
	}
	if err := p.advance(); err != nil {
		return err
	}

	if !p.isAt(token.Operator, "=") {
		return ErrMissingAssign
	}
	if err := p.advance(); err != nil {
		return err
	}

	place, err := p.expression()
	if err != nil {
		return err
	}

	if !p.isAt(token.Delimiter, ";") {
		return ErrMissingSemicolon
	}
	if _, err := p.quads.Emit(quad.Assign, place, "", name); err != nil {
		return err
	}
	return p.advance()
}

// Expression ::= Term (('+'|'-') Term)*
func (p *Parser) expression() (string, error) {
	place, err := p.term()
	if err != nil {
		return "", err
	}

	for p.cur.Kind == token.Operator && (p.cur.Literal == "+" || p.cur.Literal == "-") {
		op := quad.Add
		if p.cur.Literal == "-" {
			op = quad.Sub
		}
		if err := p.advance(); err != nil {
			return "", err
		}
		rhs, err := p.term()
		if err != nil {
			return "", err
		}
		tmp := p.newTemp()
		if _, err := p.quads.Emit(op, place, rhs, tmp); err != nil {
			return "", err
		}
		place = tmp
	}
	return place, nil
}

// Term ::= Factor (('*'|'/'|'%') Factor)*
func (p *Parser) term() (string, error) {
	place, err := p.factor()
	if err != nil {
		return "", err
	}

	for p.cur.Kind == token.Operator && (p.cur.Literal == "*" || p.cur.Literal == "/" || p.cur.Literal == "%") {
		var op quad.Op
		switch p.cur.Literal {
		case "*":
			op = quad.Mul
		case "/":
			op = quad.Div
		default:
			op = quad.Mod
		}
		if err := p.advance(); err != nil {
			return "", err
		}
		rhs, err := p.factor()
		if err != nil {
			return "", err
		}
		tmp := p.newTemp()
		if _, err := p.quads.Emit(op, place, rhs, tmp); err != nil {
			return "", err
		}
		place = tmp
	}
	return place, nil
}

// Factor ::= Identifier | Number | '(' Expression ')'
func (p *Parser) factor() (string, error) {
	switch {
	case p.cur.Kind == token.Identifier:
		name := p.cur.Literal
		if _, ok := p.symbols.Lookup(name); !ok {
			return "", ErrUndeclaredIdentifier
		}
		return name, p.advance()

	case p.cur.Kind == token.Number:
		lit := p.cur.Literal
		return lit, p.advance()

	case p.isAt(token.Delimiter, "("):
		if err := p.advance(); err != nil {
			return "", err
		}
		place, err := p.expression()
		if err != nil {
			return "", err
		}
		if !p.isAt(token.Delimiter, ")") {
			return "", ErrMissingCloseParen
		}
		return place, p.advance()

	default:
		return "", ErrInvalidFactor
	}
}

// ConditionStatement ::= 'if' '(' Condition ')' Statement ('else' Statement)?
func (p *Parser) conditionStatement() error {
	if !p.isAt(token.Keyword, "if") {
		return ErrMissingIf
	}
	if err := p.advance(); err != nil {
		return err
	}
	if !p.isAt(token.Delimiter, "(") {
		return ErrMissingOpenParen
	}
	if err := p.advance(); err != nil {
		return err
	}

	truePos, falsePos, err := p.condition()
	if err != nil {
		return err
	}

	if !p.isAt(token.Delimiter, ")") {
		return ErrMissingCloseParen
	}
	if err := p.advance(); err != nil {
		return err
	}

	if err := p.quads.Patch(truePos, strconv.Itoa(p.quads.Next())); err != nil {
		return err
	}
	if err := p.statement(); err != nil {
		return err
	}

	if p.isAt(token.Keyword, "else") {
		if err := p.advance(); err != nil {
			return err
		}
		skipPos, err := p.quads.Emit(quad.Jmp, "", "", "")
		if err != nil {
			return err
		}
		if err := p.quads.Patch(falsePos, strconv.Itoa(p.quads.Next())); err != nil {
			return err
		}
		if err := p.statement(); err != nil {
			return err
		}
		return p.quads.Patch(skipPos, strconv.Itoa(p.quads.Next()))
	}

	return p.quads.Patch(falsePos, strconv.Itoa(p.quads.Next()))
}

// Condition ::= Expression RelOp Expression
//
// Emits a relational quad whose Result is pending patch (branch taken ->
// truePos) immediately followed by an unconditional JMP whose Result is
// also pending patch (branch not taken -> falsePos). The caller patches
// both once it knows where each path resumes.
func (p *Parser) condition() (truePos, falsePos int, err error) {
	lhs, err := p.expression()
	if err != nil {
		return 0, 0, err
	}

	if !isRelOp(p.cur) {
		return 0, 0, ErrInvalidRelationOperator
	}
	op := quad.Op(p.cur.Literal)
	if err := p.advance(); err != nil {
		return 0, 0, err
	}

	rhs, err := p.expression()
	if err != nil {
		return 0, 0, err
	}

	truePos, err = p.quads.Emit(op, lhs, rhs, "")
	if err != nil {
		return 0, 0, err
	}
	falsePos, err = p.quads.Emit(quad.Jmp, "", "", "")
	if err != nil {
		return 0, 0, err
	}
	return truePos, falsePos, nil
}

// LoopStatement ::= 'while' '(' Condition ')' Statement
func (p *Parser) loopStatement() error {
	if !p.isAt(token.Keyword, "while") {
		return ErrMissingWhile
	}
	if err := p.advance(); err != nil {
		return err
	}
	if !p.isAt(token.Delimiter, "(") {
		return ErrMissingOpenParen
	}
	if err := p.advance(); err != nil {
		return err
	}

	beginPos := p.quads.Next()
	truePos, falsePos, err := p.condition()
	if err != nil {
		return err
	}

	if !p.isAt(token.Delimiter, ")") {
		return ErrMissingCloseParen
	}
	if err := p.advance(); err != nil {
		return err
	}

	if err := p.quads.Patch(truePos, strconv.Itoa(p.quads.Next())); err != nil {
		return err
	}
	if err := p.statement(); err != nil {
		return err
	}
	if _, err := p.quads.Emit(quad.Jmp, "", "", strconv.Itoa(beginPos)); err != nil {
		return err
	}
	return p.quads.Patch(falsePos, strconv.Itoa(p.quads.Next()))
}

// ReturnStatement ::= 'return' ';' | 'return' '(' Expression ')' ';'
func (p *Parser) returnStatement() error {
	if !p.isAt(token.Keyword, "return") {
		return ErrMissingReturn
	}
	if err := p.advance(); err != nil {
		return err
	}

	if p.isAt(token.Delimiter, ";") {
		if _, err := p.quads.Emit(quad.Ret, "", "", ""); err != nil {
			return err
		}
		return p.advance()
	}

	if !p.isAt(token.Delimiter, "(") {
		return ErrSyntaxError
	}
	if err := p.advance(); err != nil {
		return err
	}

	place, err := p.expression()
	if err != nil {
		return err
	}

	if !p.isAt(token.Delimiter, ")") {
		return ErrMissingCloseParen
	}
	if err := p.advance(); err != nil {
		return err
	}

	if !p.isAt(token.Delimiter, ";") {
		return ErrMissingSemicolon
	}
	if _, err := p.quads.Emit(quad.Ret, place, "", ""); err != nil {
		return err
	}
	return p.advance()
}
