// Package compiler wires the four pipeline stages — lexer, parser, semantic
// analyzer, and C emitter — behind a single driver contract (spec.md §6):
// Compile(source), with the filename set through WithFilename, returns
// either emitted C text or a non-empty diagnostic bag, never both.
package compiler

import (
	"github.com/codeassociates/jfmc/ast"
	"github.com/codeassociates/jfmc/codegen"
	"github.com/codeassociates/jfmc/diag"
	"github.com/codeassociates/jfmc/lexer"
	"github.com/codeassociates/jfmc/parser"
	"github.com/codeassociates/jfmc/sema"
	"github.com/codeassociates/jfmc/token"
)

// Option configures a Compiler.
type Option func(*Compiler)

// WithFilename sets the name attached to every diagnostic; it does not
// affect compilation semantics or the emitted C.
func WithFilename(name string) Option {
	return func(c *Compiler) { c.filename = name }
}

// Compiler holds the configuration for one compilation run. It carries no
// state between calls to Compile.
type Compiler struct {
	filename string
}

// New creates a Compiler configured by opts.
func New(opts ...Option) *Compiler {
	c := &Compiler{filename: "<input>"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the outcome of one compilation: exactly one of C or Diags.Len()
// == 0 holds meaning, matching the driver contract's
// {emitted_c_text, diagnostics?} vs {diagnostics, no emission} split.
type Result struct {
	C       string
	Diags   *diag.Bag
	Tokens  []token.Token
	Program *ast.Program
	Stats   sema.Stats
}

// Compile runs the full pipeline over source. The emitter only runs if
// lexing, parsing, and semantic analysis all reported zero diagnostics
// (spec.md §4.7's propagation policy: "The emitter is not invoked if any
// earlier stage reported diagnostics").
func (c *Compiler) Compile(source string) Result {
	bag := diag.NewBag(c.filename)
	bag.SetSource(source)

	toks := lexer.Tokenize(source)
	if len(toks) > 0 && toks[len(toks)-1].Kind == token.ILLEGAL {
		errTok := toks[len(toks)-1]
		bag.Add(errTok.Lexeme, errTok.Line, errTok.Column)
		return Result{Diags: bag, Tokens: toks}
	}

	p := parser.New(lexer.New(source))
	prog := p.ParseProgram()
	for _, e := range p.SyntaxErrors() {
		bag.Add(e.Message, e.Line, e.Column)
	}
	if bag.HasErrors() {
		return Result{Diags: bag, Tokens: toks, Program: prog}
	}

	analyzer := sema.New(bag)
	stats := analyzer.Analyze(prog)
	if bag.HasErrors() {
		return Result{Diags: bag, Tokens: toks, Program: prog, Stats: stats}
	}

	gen := codegen.New()
	emitted := gen.Generate(prog)
	return Result{C: emitted, Diags: bag, Tokens: toks, Program: prog, Stats: stats}
}
