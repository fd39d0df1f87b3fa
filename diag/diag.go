// Package diag provides the diagnostic record and collector shared by every
// compiler stage. It generalizes the teacher's []string error lists
// (lexer/parser.Errors(), preproc.Errors()) into structured records carrying
// file/line/column, per spec.md §6.
package diag

import "fmt"

// Diagnostic is a single compiler-reported problem.
type Diagnostic struct {
	Message string
	File    string
	Line    int
	Column  int
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Line, d.Column, d.Message)
}

// Bag collects diagnostics in detection order. It is the compiler's only
// mutable shared state (spec.md §5) and is never shared across goroutines.
type Bag struct {
	file   string
	source string
	items  []Diagnostic
}

// NewBag creates an empty Bag for the given filename.
func NewBag(file string) *Bag {
	return &Bag{file: file}
}

// SetSource retains the full source text so a driver can slice the
// offending line for caret rendering without re-reading the file
// (spec.md's original_source/ derived "source retained for rendering" note).
func (b *Bag) SetSource(src string) { b.source = src }

// Source returns the retained source text, or "" if none was set.
func (b *Bag) Source() string { return b.source }

// Add appends a diagnostic, defaulting to location {1,1} when line/column
// are both zero (no source-bearing node was available at the call site).
func (b *Bag) Add(message string, line, column int) {
	if line == 0 && column == 0 {
		line, column = 1, 1
	}
	b.items = append(b.items, Diagnostic{Message: message, File: b.file, Line: line, Column: column})
}

// Diagnostics returns all collected diagnostics in detection order.
func (b *Bag) Diagnostics() []Diagnostic { return b.items }

// HasErrors reports whether any diagnostic has been collected.
func (b *Bag) HasErrors() bool { return len(b.items) > 0 }

// Len is the number of collected diagnostics.
func (b *Bag) Len() int { return len(b.items) }
