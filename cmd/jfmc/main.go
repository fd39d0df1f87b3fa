// Command jfmc is the reference command-line driver for the SL-to-C
// compiler: it reads a source file, runs the four-stage pipeline, and
// writes emitted C (or diagnostics) to the requested destination.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeassociates/jfmc/ast"
	"github.com/codeassociates/jfmc/compiler"
	"github.com/codeassociates/jfmc/sema"
	"github.com/codeassociates/jfmc/token"
)

const version = "0.1.0"

type options struct {
	output     string
	dumpTokens bool
	dumpAST    bool
	dumpStats  bool
	checkOnly  bool
	emit       string
	color      bool
}

func main() {
	opts := &options{color: os.Getenv("NO_COLOR") == ""}

	root := &cobra.Command{
		Use:     "jfmc <input>",
		Short:   "jfmc compiles SL source to portable C",
		Version: version,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], opts)
		},
	}

	root.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	root.Flags().BoolVar(&opts.dumpTokens, "dump-tokens", false, "print the token stream and exit")
	root.Flags().BoolVar(&opts.dumpAST, "dump-ast", false, "print the parsed AST and exit")
	root.Flags().BoolVar(&opts.dumpStats, "dump-stats", false, "print semantic analysis statistics")
	root.Flags().BoolVar(&opts.checkOnly, "check", false, "stop after semantic analysis, emit no C")
	root.Flags().StringVar(&opts.emit, "emit", "c", "output kind: c or exe")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string, opts *options) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	c := compiler.New(compiler.WithFilename(path))
	result := c.Compile(string(src))

	if opts.dumpTokens {
		dumpTokens(result.Tokens)
		return nil
	}
	if opts.dumpAST {
		dumpAST(result.Program)
	}
	if opts.dumpStats {
		dumpStats(result.Stats)
	}

	if result.Diags.HasErrors() {
		for _, d := range result.Diags.Diagnostics() {
			fmt.Fprintln(os.Stderr, formatDiagnostic(d.String(), opts.color))
		}
		os.Exit(1)
	}

	if opts.checkOnly || opts.dumpAST || opts.dumpStats {
		return nil
	}

	if opts.emit == "exe" {
		return fmt.Errorf("--emit=exe requires an external C toolchain; emit C and compile it yourself")
	}

	if opts.output != "" {
		return os.WriteFile(opts.output, []byte(result.C), 0644)
	}
	fmt.Print(result.C)
	return nil
}

// formatDiagnostic wraps a rendered diagnostic line in red ANSI escapes
// unless the caller disabled color, honoring the NO_COLOR convention
// (https://no-color.org): any non-empty NO_COLOR value suppresses color.
func formatDiagnostic(line string, color bool) string {
	if !color {
		return line
	}
	return "\x1b[31m" + line + "\x1b[0m"
}

func dumpTokens(toks []token.Token) {
	for _, t := range toks {
		fmt.Printf("%d:%d\t%s\t%q\n", t.Line, t.Column, t.Kind, t.Lexeme)
	}
}

func dumpAST(prog *ast.Program) {
	if prog == nil {
		return
	}
	for _, decl := range prog.Decls {
		fmt.Printf("%T @ %d:%d\n", decl, decl.Loc().Line, decl.Loc().Column)
	}
}

func dumpStats(s sema.Stats) {
	fmt.Printf("functions=%d structs=%d variables=%d\n", s.FunctionsAnalyzed, s.StructsAnalyzed, s.VariablesAnalyzed)
}
