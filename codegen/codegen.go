// Package codegen emits a single portable C translation unit from a
// type-annotated AST, syntax-directed: each AST kind lowers to one C
// construct with no optimization or dataflow analysis.
package codegen

import (
	"fmt"
	"strings"

	"github.com/codeassociates/jfmc/ast"
)

// prelude is the fixed header block every translation unit begins with.
const prelude = `#include <stdio.h>
#include <stdlib.h>
#include <stdint.h>
#include <stdbool.h>
#include <math.h>
`

// Generator lowers a Program to C source text.
type Generator struct {
	indent  int
	builder strings.Builder

	structFields map[string][]ast.StructField
	structExtern map[string]bool

	// inStructInit suppresses the leading (StructName) compound-literal
	// prefix when a struct literal nests directly inside another one.
	inStructInit bool
}

// New creates a Generator.
func New() *Generator {
	return &Generator{structFields: make(map[string][]ast.StructField), structExtern: make(map[string]bool)}
}

// Generate produces the emitted C text for prog. The caller must run
// semantic analysis first; Generate assumes the AST is well-formed.
func (g *Generator) Generate(prog *ast.Program) string {
	g.builder.Reset()
	g.structFields = make(map[string][]ast.StructField)
	g.structExtern = make(map[string]bool)

	for _, decl := range prog.Decls {
		if s, ok := decl.(*ast.Struct); ok {
			g.structFields[s.Name] = s.Fields
			g.structExtern[s.Name] = s.Extern
		}
	}

	g.write(prelude)
	for _, decl := range prog.Decls {
		if inc, ok := decl.(*ast.Include); ok {
			g.writeLine(fmt.Sprintf("#include <%s>", inc.Path))
		}
	}
	g.writeLine("")

	for _, decl := range prog.Decls {
		if s, ok := decl.(*ast.Struct); ok && !s.Extern {
			g.generateStruct(s)
		}
	}
	for _, decl := range prog.Decls {
		if impl, ok := decl.(*ast.Impl); ok {
			for _, m := range impl.Methods {
				g.generateFunction(m)
			}
		}
	}
	for _, decl := range prog.Decls {
		switch decl.(type) {
		case *ast.Function:
			g.generateFunction(decl.(*ast.Function))
		}
	}
	return g.builder.String()
}

func (g *Generator) writeLine(s string) {
	if s == "" {
		g.builder.WriteString("\n")
		return
	}
	g.builder.WriteString(strings.Repeat("    ", g.indent))
	g.builder.WriteString(s)
	g.builder.WriteString("\n")
}

func (g *Generator) write(s string) { g.builder.WriteString(s) }

func (g *Generator) generateStruct(s *ast.Struct) {
	g.writeLine(fmt.Sprintf("typedef struct %s {", s.Name))
	g.indent++
	for _, f := range s.Fields {
		g.writeLine(g.declareVar(f.Name, f.Type) + ";")
	}
	g.indent--
	g.writeLine(fmt.Sprintf("} %s;", s.Name))
	g.writeLine("")
}

func mangle(name string) string {
	return strings.ReplaceAll(name, "::", "_")
}

func (g *Generator) generateFunction(fn *ast.Function) {
	name := fn.Name
	if fn.MangledName != "" {
		name = mangle(fn.MangledName)
	}
	var params []string
	for _, p := range fn.Params {
		params = append(params, g.declareVar(p.Name, p.Type))
	}
	sig := fmt.Sprintf("%s %s(%s)", g.cType(fn.ReturnType), name, strings.Join(params, ", "))
	g.writeLine(sig + " {")
	g.indent++
	g.generateBlockBody(fn.Body)
	g.indent--
	g.writeLine("}")
	g.writeLine("")
}

// generateBlockBody emits a block's statements without the surrounding
// braces (the caller writes those), since functions and control-flow bodies
// share the same layout.
func (g *Generator) generateBlockBody(b *ast.Block) {
	if b == nil {
		return
	}
	for _, stmt := range b.Statements {
		g.generateStmt(stmt)
	}
	if b.FinalExpr != nil {
		g.writeLine(g.expr(b.FinalExpr) + ";")
	}
}

func (g *Generator) generateStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Let:
		g.generateLet(s)
	case *ast.If:
		g.generateIf(s)
	case *ast.While:
		g.generateWhile(s)
	case *ast.For:
		g.generateFor(s)
	case *ast.Loop:
		g.generateLoop(s)
	case *ast.Return:
		g.generateReturn(s)
	case *ast.Break:
		g.writeLine("break;")
	case *ast.Continue:
		g.writeLine("continue;")
	case *ast.Block:
		g.writeLine("{")
		g.indent++
		g.generateBlockBody(s)
		g.indent--
		g.writeLine("}")
	case *ast.Assignment:
		g.generateAssignment(s)
	case *ast.ExprStmt:
		g.writeLine(g.expr(s.X) + ";")
	}
}

func (g *Generator) generateLet(s *ast.Let) {
	qualifier := ""
	if !s.IsMutable {
		qualifier = "const "
	}
	if s.Type.IsArray() {
		elemType, dims := arrayDims(s.Type)
		brackets := ""
		for _, d := range dims {
			brackets += fmt.Sprintf("[%d]", d)
		}
		decl := fmt.Sprintf("%s%s %s%s", qualifier, g.cType(elemType), s.Name, brackets)
		if s.Initializer != nil {
			g.writeLine(fmt.Sprintf("%s = %s;", decl, g.expr(s.Initializer)))
		} else {
			g.writeLine(decl + ";")
		}
		return
	}
	decl := fmt.Sprintf("%s%s %s", qualifier, g.cType(s.Type), s.Name)
	if s.Initializer != nil {
		g.writeLine(fmt.Sprintf("%s = %s;", decl, g.expr(s.Initializer)))
	} else {
		g.writeLine(decl + ";")
	}
}

func (g *Generator) generateIf(s *ast.If) {
	g.writeLine(fmt.Sprintf("if (%s) {", g.expr(s.Condition)))
	g.indent++
	g.generateBlockBody(s.Then)
	g.indent--
	if s.Else != nil {
		g.writeLine("} else {")
		g.indent++
		g.generateBlockBody(s.Else)
		g.indent--
	}
	g.writeLine("}")
}

func (g *Generator) generateWhile(s *ast.While) {
	g.writeLine(fmt.Sprintf("while (%s) {", g.expr(s.Condition)))
	g.indent++
	g.generateBlockBody(s.Body)
	g.indent--
	g.writeLine("}")
}

// generateFor lowers SL's half-open `for i in a..b` to a C for-loop with a
// strict upper bound, matching the range's exclusive end.
func (g *Generator) generateFor(s *ast.For) {
	g.writeLine(fmt.Sprintf("for (int %s = %s; %s < %s; %s++) {",
		s.Name, g.expr(s.Start), s.Name, g.expr(s.End), s.Name))
	g.indent++
	g.generateBlockBody(s.Body)
	g.indent--
	g.writeLine("}")
}

func (g *Generator) generateLoop(s *ast.Loop) {
	g.writeLine("while (1) {")
	g.indent++
	g.generateBlockBody(s.Body)
	g.indent--
	g.writeLine("}")
}

func (g *Generator) generateReturn(s *ast.Return) {
	if s.Value == nil {
		g.writeLine("return;")
		return
	}
	g.writeLine(fmt.Sprintf("return %s;", g.expr(s.Value)))
}

func (g *Generator) generateAssignment(s *ast.Assignment) {
	g.writeLine(fmt.Sprintf("%s %s %s;", g.assignTarget(s.Target), s.Operator, g.expr(s.Value)))
}

func (g *Generator) assignTarget(t ast.AssignTarget) string {
	switch t.Kind {
	case ast.AssignIdent:
		return t.Name
	case ast.AssignIndex:
		return fmt.Sprintf("%s[%s]", g.expr(t.Object), g.expr(t.Index))
	case ast.AssignField:
		return fmt.Sprintf("%s.%s", g.expr(t.Object), t.Field)
	}
	return ""
}

// declareVar renders a C declaration for a name of the given type, used for
// both parameters and struct fields: as a nested type (spec.md §4.6), arrays
// decay to a pointer via cType rather than the bracketed array form used for
// local let declarations.
func (g *Generator) declareVar(name string, t ast.Type) string {
	return fmt.Sprintf("%s %s", g.cType(t), name)
}

// arrayDims walks nested array types (e.g. [2][2]i32, represented as an
// Array of an Array) down to the innermost non-array element type, and
// returns the dimension sizes in declaration order (outermost first), so a
// local's bracketed C declaration can name every dimension instead of
// decaying the inner ones to a pointer.
func arrayDims(t ast.Type) (ast.Type, []int) {
	var dims []int
	for t.Kind == ast.TArray {
		dims = append(dims, t.Size)
		t = *t.Elem
	}
	return t, dims
}

// cType lowers an SL type to its C spelling.
func (g *Generator) cType(t ast.Type) string {
	switch t.Kind {
	case ast.TPrimitive:
		switch t.Prim {
		case ast.I8:
			return "int8_t"
		case ast.I16:
			return "int16_t"
		case ast.I32:
			return "int32_t"
		case ast.I64:
			return "int64_t"
		case ast.U8:
			return "uint8_t"
		case ast.U16:
			return "uint16_t"
		case ast.U32:
			return "uint32_t"
		case ast.U64:
			return "uint64_t"
		case ast.F32:
			return "float"
		case ast.F64:
			return "double"
		case ast.Bool:
			return "_Bool"
		case ast.Char:
			return "char"
		case ast.Str:
			return "const char*"
		case ast.Void:
			return "void"
		}
	case ast.TArray:
		return g.cType(*t.Elem) + "*"
	case ast.TPointer:
		return g.cType(*t.Elem) + "*"
	case ast.TReference:
		// A referenced array decays to its element type, so &[N]T lowers to
		// T* (matching the elided & in unary for array operands).
		inner := *t.Elem
		if inner.IsArray() {
			inner = *inner.Elem
		}
		if t.Mutable {
			return g.cType(inner) + "*"
		}
		return "const " + g.cType(inner) + "*"
	case ast.TStruct:
		return t.StructName
	}
	return "void"
}

// expr renders e as a C expression.
func (g *Generator) expr(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Literal:
		return g.literal(n)
	case *ast.Identifier:
		return mangle(n.Name)
	case *ast.BinaryOp:
		return fmt.Sprintf("(%s %s %s)", g.expr(n.Left), n.Operator, g.expr(n.Right))
	case *ast.UnaryOp:
		return g.unary(n)
	case *ast.Cast:
		return fmt.Sprintf("((%s)%s)", g.cType(n.Target), g.expr(n.Operand))
	case *ast.Call:
		return g.call(n)
	case *ast.Field:
		return fmt.Sprintf("%s.%s", g.expr(n.Object), n.Name)
	case *ast.Index:
		return fmt.Sprintf("%s[%s]", g.expr(n.Object), g.expr(n.Index))
	case *ast.ArrayLiteral:
		return g.arrayLiteral(n)
	case *ast.StructLiteral:
		return g.structLiteral(n)
	case *ast.Assignment:
		return fmt.Sprintf("(%s %s %s)", g.assignTarget(n.Target), n.Operator, g.expr(n.Value))
	}
	return ""
}

func (g *Generator) literal(n *ast.Literal) string {
	switch n.Kind.String() {
	case "STRING":
		return fmt.Sprintf("%q", n.Str)
	case "CHAR":
		return fmt.Sprintf("'%c'", n.Char)
	case "true":
		return "true"
	case "false":
		return "false"
	case "FLOAT":
		return fmt.Sprintf("%g", n.Float)
	default:
		return fmt.Sprintf("%d", n.Int)
	}
}

// unary elides `&` in front of an array-typed operand, reflecting C's
// array-to-pointer decay (spec.md §4.6's address-of special case).
func (g *Generator) unary(n *ast.UnaryOp) string {
	switch n.Operator {
	case "&":
		if n.Operand.Typed() && n.Operand.Type().IsArray() {
			return g.expr(n.Operand)
		}
		return "(&" + g.expr(n.Operand) + ")"
	case "*":
		return "(*" + g.expr(n.Operand) + ")"
	default:
		return "(" + n.Operator + g.expr(n.Operand) + ")"
	}
}

func (g *Generator) call(n *ast.Call) string {
	if ident, ok := n.Callee.(*ast.Identifier); ok {
		switch ident.Name {
		case "println", "print":
			return g.printCall(ident.Name, n.Args)
		case "sqrt":
			return fmt.Sprintf("sqrt(%s)", g.expr(n.Args[0]))
		}
	}
	var args []string
	for _, a := range n.Args {
		args = append(args, g.expr(a))
	}
	var callee string
	if field, ok := n.Callee.(*ast.Field); ok {
		structName := ""
		if field.Object.Typed() {
			t := field.Object.Type()
			if t.IsPointer() || t.IsReference() {
				t = t.Dereference()
			}
			if t.IsStruct() {
				structName = t.StructName
			}
		}
		callee = mangle(structName + "::" + field.Name)
		args = append([]string{g.expr(field.Object)}, args...)
	} else {
		callee = mangle(g.expr(n.Callee))
	}
	return fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", "))
}

// printCall picks a printf format specifier from the argument's static type
// (spec.md §4.6's Built-ins section).
func (g *Generator) printCall(name string, args []ast.Expr) string {
	suffix := ""
	if name == "println" {
		suffix = `\n`
	}
	if len(args) == 0 {
		return fmt.Sprintf(`printf("%s")`, suffix)
	}
	arg := args[0]
	t := arg.Type()
	switch {
	case t.Kind == ast.TPrimitive && t.Prim == ast.Str:
		return fmt.Sprintf(`printf("%%s%s", %s)`, suffix, g.expr(arg))
	case t.Kind == ast.TPrimitive && t.Prim == ast.Bool:
		return fmt.Sprintf(`printf("%%s%s", (%s) ? "true" : "false")`, suffix, g.expr(arg))
	case t.Kind == ast.TPrimitive && t.Prim == ast.Char:
		return fmt.Sprintf(`printf("%%c%s", %s)`, suffix, g.expr(arg))
	case t.IsIntegral() && t.IsSigned():
		return fmt.Sprintf(`printf("%%lld%s", (long long)%s)`, suffix, g.expr(arg))
	case t.IsIntegral():
		return fmt.Sprintf(`printf("%%llu%s", (unsigned long long)%s)`, suffix, g.expr(arg))
	case t.IsNumeric():
		return fmt.Sprintf(`printf("%%f%s", (double)%s)`, suffix, g.expr(arg))
	default:
		return fmt.Sprintf(`printf("%%s%s", %s)`, suffix, g.expr(arg))
	}
}

func (g *Generator) arrayLiteral(n *ast.ArrayLiteral) string {
	var elems []string
	for _, e := range n.Elements {
		elems = append(elems, g.expr(e))
	}
	return "{" + strings.Join(elems, ", ") + "}"
}

// structLiteral emits a compound literal, eliding the leading (StructName)
// cast when nested directly inside another struct literal's field value.
func (g *Generator) structLiteral(n *ast.StructLiteral) string {
	var fields []string
	wasNested := g.inStructInit
	for _, f := range n.Fields {
		_, direct := f.Value.(*ast.StructLiteral)
		g.inStructInit = direct
		fields = append(fields, fmt.Sprintf(".%s = %s", f.Name, g.expr(f.Value)))
	}
	g.inStructInit = wasNested
	body := "{" + strings.Join(fields, ", ") + "}"
	if wasNested {
		return body
	}
	return fmt.Sprintf("(%s)%s", n.StructName, body)
}
