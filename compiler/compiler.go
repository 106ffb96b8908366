// The compiler package wires the pipeline together: scan, parse,
// analyze, generate.
//
// In brief we go through a three-step process:
//
//  1. The parser drives the lexer directly, one token of lookahead at
//     a time, building the symbol table and the quadruple sequence.
//
//  2. The semantic pass walks the quadruples, assigning stack offsets
//     and checking types.
//
//  3. The code generator lowers the quadruples to pseudo-MIPS text.
//
// Adapted from the teacher's own Compiler: same New/SetDebug/Compile
// shape, generalized from a single tokenize-then-walk RPN expression
// compiler into one that wires the parser, semantic and codegen
// packages in sequence.
package compiler

import (
	"fmt"

	"github.com/jpeterson/triac/codegen"
	"github.com/jpeterson/triac/parser"
	"github.com/jpeterson/triac/quad"
	"github.com/jpeterson/triac/semantic"
	"github.com/jpeterson/triac/symtab"
	"github.com/jpeterson/triac/token"
)

// Compiler holds our object-state.
type Compiler struct {
	// debug holds a flag to decide if the quadruple sequence is
	// dumped alongside the generated assembly.
	debug bool

	// source holds the C-subset program we're compiling.
	source string

	// tokens, if non-nil, receives every token the scanner produces
	// during parsing, in the <KIND, lexeme> diagnostic form.
	tokens func(token.Token)

	symbols *symtab.Table
	quads   *quad.Buffer
}

// New creates a new compiler, given the source text in the constructor.
func New(source string) *Compiler {
	return &Compiler{
		source:  source,
		symbols: symtab.New(),
		quads:   quad.New(),
	}
}

// SetDebug changes the debug-flag for our output.
func (c *Compiler) SetDebug(val bool) {
	c.debug = val
}

// Debug reports whether debug output was requested.
func (c *Compiler) Debug() bool {
	return c.debug
}

// SetTokenSink registers fn to receive every token as it is scanned.
// Used by the CLI to print the diagnostic token stream spec.md §6
// requires on stdout during compilation.
func (c *Compiler) SetTokenSink(fn func(token.Token)) {
	c.tokens = fn
}

// Symbols returns the symbol table built by the most recent Compile
// call; useful for debugging and for tests.
func (c *Compiler) Symbols() *symtab.Table {
	return c.symbols
}

// Quads returns the quadruple sequence built by the most recent
// Compile call.
func (c *Compiler) Quads() *quad.Buffer {
	return c.quads
}

// Compile converts the source program into a pseudo-MIPS assembly
// listing, running the parser, the semantic pass and the code
// generator in strict sequence.
func (c *Compiler) Compile() (string, error) {
	p := parser.New(c.source, c.symbols, c.quads)
	if c.tokens != nil {
		p.SetTokenSink(c.tokens)
	}
	if err := p.Parse(); err != nil {
		return "", err
	}

	if err := semantic.Analyze(c.symbols, c.quads); err != nil {
		return "", err
	}

	return codegen.Generate(c.symbols, c.quads)
}

// DumpQuads renders the final quadruple sequence as a commented
// listing. It has nothing to do with target.txt, whose format is
// exact per spec.md §6; this is a -debug-only diagnostic printed to
// stdout by the caller.
func (c *Compiler) DumpQuads() string {
	var out string
	out += "# quadruples\n"
	for pos, q := range c.quads.All() {
		out += fmt.Sprintf("# %3d: (%s, %s, %s, %s)\n", pos, q.Op, q.Arg1, q.Arg2, q.Result)
	}
	return out
}
