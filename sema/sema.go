// Package sema implements the semantic analyzer: name resolution, type
// checking, mutability and control-flow enforcement, and per-expression type
// annotation, over the AST produced by package parser.
package sema

import (
	"fmt"

	"github.com/codeassociates/jfmc/ast"
	"github.com/codeassociates/jfmc/diag"
	"github.com/codeassociates/jfmc/symtab"
)

// Stats mirrors the bookkeeping counters of the original semantic analyzer
// (FunctionsAnalyzed, StructsAnalyzed, VariablesAnalyzed), surfaced to the
// driver for the --dump-stats flag.
type Stats struct {
	FunctionsAnalyzed int
	StructsAnalyzed   int
	VariablesAnalyzed int
}

// Analyzer walks a Program, annotating it in place and recording diagnostics
// in diags. It carries a loop-depth counter distinct from symtab's scope-walk
// InLoop query: the counter is the only source for break/continue legality
// (spec.md §4.7); the analyzer does not call symtab.InLoop.
type Analyzer struct {
	syms  *symtab.Table
	diags *diag.Bag
	stats Stats

	loopDepth int
}

// New creates an Analyzer reporting into diags.
func New(diags *diag.Bag) *Analyzer {
	return &Analyzer{syms: symtab.New(), diags: diags}
}

func (a *Analyzer) errorf(loc ast.Location, format string, args ...any) {
	a.diags.Add(fmt.Sprintf(format, args...), loc.Line, loc.Column)
}

// Analyze runs the three ordered top-level passes over prog and returns the
// collected Stats. It is safe to call only once per Analyzer.
func (a *Analyzer) Analyze(prog *ast.Program) Stats {
	a.structPass(prog)
	a.implPass(prog)
	a.bodyPass(prog)
	return a.stats
}

// structPass registers every struct's field table in the type registry
// before anything else runs, so forward references between structs and
// functions resolve regardless of declaration order (spec.md §4.5 pass 1).
func (a *Analyzer) structPass(prog *ast.Program) {
	for _, decl := range prog.Decls {
		s, ok := decl.(*ast.Struct)
		if !ok {
			continue
		}
		if a.syms.LookupType(s.Name) != nil {
			a.errorf(s.Loc(), "duplicate struct %q", s.Name)
			continue
		}
		extra := &symtab.StructExtra{}
		for _, f := range s.Fields {
			extra.FieldNames = append(extra.FieldNames, f.Name)
			extra.FieldTypes = append(extra.FieldTypes, f.Type)
		}
		sym := &symtab.Symbol{Name: s.Name, Kind: symtab.KindStruct, Type: ast.StructRef(s.Name), Struct: extra, IsInitialized: true}
		a.syms.RegisterType(s.Name, sym)
		a.stats.StructsAnalyzed++
	}
}

// implPass synthesizes each method's mangled name and registers it as a
// global function symbol, before any body is analyzed, so methods can call
// each other regardless of textual order (spec.md §4.5 pass 2).
func (a *Analyzer) implPass(prog *ast.Program) {
	for _, decl := range prog.Decls {
		impl, ok := decl.(*ast.Impl)
		if !ok {
			continue
		}
		if a.syms.LookupType(impl.StructName) == nil {
			a.errorf(impl.Loc(), "impl for unknown struct %q", impl.StructName)
			continue
		}
		for _, m := range impl.Methods {
			mangled := impl.StructName + "::" + m.Name
			extra := &symtab.FuncExtra{ReturnType: m.ReturnType}
			for _, p := range m.Params {
				extra.ParamNames = append(extra.ParamNames, p.Name)
				extra.ParamTypes = append(extra.ParamTypes, p.Type)
				extra.ParamMut = append(extra.ParamMut, p.IsMutable)
			}
			sym := a.syms.Define(mangled, symtab.KindFunction, ast.Primitives(ast.Void), false)
			if sym == nil {
				a.errorf(m.Loc(), "duplicate function %q", mangled)
				continue
			}
			sym.Func = extra
			sym.IsInitialized = true
			m.MangledName = mangled
		}
	}
}

// bodyPass walks the top level in order: each extern function is registered,
// and each free function is registered and then has its body analyzed, so a
// free function body can call only free functions declared above it (plus
// every method). Method bodies are analyzed afterwards (spec.md §4.5 pass 3).
func (a *Analyzer) bodyPass(prog *ast.Program) {
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.ExternFunction:
			a.defineFunction(d.Name, d.Params, d.ReturnType, d.Loc())
		case *ast.Function:
			sym := a.defineFunction(d.Name, d.Params, d.ReturnType, d.Loc())
			if sym != nil {
				a.analyzeFunction(d, "")
				a.stats.FunctionsAnalyzed++
			}
		}
	}
	for _, decl := range prog.Decls {
		impl, ok := decl.(*ast.Impl)
		if !ok {
			continue
		}
		for _, m := range impl.Methods {
			a.analyzeFunction(m, impl.StructName)
			a.stats.FunctionsAnalyzed++
		}
	}
}

func (a *Analyzer) defineFunction(name string, params []ast.Param, ret ast.Type, loc ast.Location) *symtab.Symbol {
	extra := &symtab.FuncExtra{ReturnType: ret}
	for _, p := range params {
		extra.ParamNames = append(extra.ParamNames, p.Name)
		extra.ParamTypes = append(extra.ParamTypes, p.Type)
		extra.ParamMut = append(extra.ParamMut, p.IsMutable)
	}
	sym := a.syms.Define(name, symtab.KindFunction, ast.Primitives(ast.Void), false)
	if sym == nil {
		a.errorf(loc, "duplicate function %q", name)
		return nil
	}
	sym.Func = extra
	sym.IsInitialized = true
	return sym
}

// analyzeFunction enters a Function scope, defines the parameters, checks
// the self-receiver convention for methods, and recurses into the body.
func (a *Analyzer) analyzeFunction(fn *ast.Function, structName string) {
	a.syms.EnterFunctionScope(fn.ReturnType)
	if structName != "" {
		a.syms.EnterStructScope(structName)
		defer a.syms.ExitScope()
	}
	for _, p := range fn.Params {
		if p.Name == "self" && p.Type.IsStruct() && structName != "" && p.Type.StructName != structName {
			a.errorf(fn.Loc(), "self parameter type %q does not match enclosing impl %q", p.Type.StructName, structName)
		}
		sym := a.syms.Define(p.Name, symtab.KindParameter, p.Type, p.IsMutable)
		if sym == nil {
			a.errorf(fn.Loc(), "duplicate parameter %q", p.Name)
			continue
		}
		sym.IsInitialized = true
		a.stats.VariablesAnalyzed++
	}
	a.analyzeBlock(fn.Body)
	a.syms.ExitScope()
}

// Statement analysis

func (a *Analyzer) analyzeBlock(b *ast.Block) {
	a.syms.EnterScope(symtab.ScopeBlock)
	defer a.syms.ExitScope()
	for _, stmt := range b.Statements {
		a.analyzeStmt(stmt)
	}
	if b.FinalExpr != nil {
		a.typeOf(b.FinalExpr)
	}
}

func (a *Analyzer) analyzeStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Let:
		a.analyzeLet(s)
	case *ast.If:
		a.analyzeIf(s)
	case *ast.While:
		a.analyzeWhile(s)
	case *ast.For:
		a.analyzeFor(s)
	case *ast.Loop:
		a.analyzeLoop(s)
	case *ast.Return:
		a.analyzeReturn(s)
	case *ast.Break:
		if a.loopDepth == 0 {
			a.errorf(s.Loc(), "Break statement outside loop")
		}
	case *ast.Continue:
		if a.loopDepth == 0 {
			a.errorf(s.Loc(), "Continue statement outside loop")
		}
	case *ast.Block:
		a.analyzeBlock(s)
	case *ast.Assignment:
		a.analyzeAssignment(s)
	case *ast.ExprStmt:
		a.typeOf(s.X)
	}
}

func (a *Analyzer) analyzeLet(s *ast.Let) {
	initialized := s.Initializer != nil
	if s.Initializer != nil {
		vt := a.typeOf(s.Initializer)
		if !vt.AssignableTo(s.Type) {
			a.errorf(s.Loc(), "cannot assign %s to %s in let %s", vt, s.Type, s.Name)
		}
	}
	sym := a.syms.Define(s.Name, symtab.KindVariable, s.Type, s.IsMutable)
	if sym == nil {
		a.errorf(s.Loc(), "duplicate variable %q", s.Name)
		return
	}
	sym.IsInitialized = initialized
	a.stats.VariablesAnalyzed++
}

func (a *Analyzer) analyzeIf(s *ast.If) {
	if s.Condition != nil {
		ct := a.typeOf(s.Condition)
		if !ct.IsVoid() && !(ct.Kind == ast.TPrimitive && ct.Prim == ast.Bool) {
			a.errorf(s.Loc(), "if condition must be bool, got %s", ct)
		}
	}
	if s.Then != nil {
		a.analyzeBlock(s.Then)
	}
	if s.Else != nil {
		a.analyzeBlock(s.Else)
	}
}

func (a *Analyzer) analyzeWhile(s *ast.While) {
	if s.Condition != nil {
		ct := a.typeOf(s.Condition)
		if !(ct.Kind == ast.TPrimitive && ct.Prim == ast.Bool) {
			a.errorf(s.Loc(), "while condition must be bool, got %s", ct)
		}
	}
	a.syms.EnterScope(symtab.ScopeLoop)
	a.loopDepth++
	if s.Body != nil {
		for _, stmt := range s.Body.Statements {
			a.analyzeStmt(stmt)
		}
		if s.Body.FinalExpr != nil {
			a.typeOf(s.Body.FinalExpr)
		}
	}
	a.loopDepth--
	a.syms.ExitScope()
}

func (a *Analyzer) analyzeFor(s *ast.For) {
	if s.Start != nil {
		st := a.typeOf(s.Start)
		if !st.IsIntegral() {
			a.errorf(s.Loc(), "for range start must be integral, got %s", st)
		}
	}
	if s.End != nil {
		et := a.typeOf(s.End)
		if !et.IsIntegral() {
			a.errorf(s.Loc(), "for range end must be integral, got %s", et)
		}
	}
	a.syms.EnterScope(symtab.ScopeLoop)
	a.loopDepth++
	sym := a.syms.Define(s.Name, symtab.KindVariable, ast.Primitives(ast.I32), false)
	if sym != nil {
		sym.IsInitialized = true
		a.stats.VariablesAnalyzed++
	}
	if s.Body != nil {
		for _, stmt := range s.Body.Statements {
			a.analyzeStmt(stmt)
		}
		if s.Body.FinalExpr != nil {
			a.typeOf(s.Body.FinalExpr)
		}
	}
	a.loopDepth--
	a.syms.ExitScope()
}

func (a *Analyzer) analyzeLoop(s *ast.Loop) {
	a.syms.EnterScope(symtab.ScopeLoop)
	a.loopDepth++
	if s.Body != nil {
		for _, stmt := range s.Body.Statements {
			a.analyzeStmt(stmt)
		}
		if s.Body.FinalExpr != nil {
			a.typeOf(s.Body.FinalExpr)
		}
	}
	a.loopDepth--
	a.syms.ExitScope()
}

func (a *Analyzer) analyzeReturn(s *ast.Return) {
	ret, ok := a.syms.ReturnType()
	if !ok {
		a.errorf(s.Loc(), "return outside of a function")
		return
	}
	if s.Value == nil {
		if !ret.IsVoid() {
			a.errorf(s.Loc(), "missing return value, expected %s", ret)
		}
		return
	}
	vt := a.typeOf(s.Value)
	if ret.IsVoid() {
		a.errorf(s.Loc(), "function returns void but a value was given")
		return
	}
	if !vt.AssignableTo(ret) {
		a.errorf(s.Loc(), "cannot return %s, function returns %s", vt, ret)
	}
}

func (a *Analyzer) analyzeAssignment(s *ast.Assignment) {
	var targetType ast.Type
	var mutable bool
	switch s.Target.Kind {
	case ast.AssignIdent:
		sym := a.syms.Lookup(s.Target.Name)
		if sym == nil {
			a.errorf(s.Loc(), "undefined variable %q", s.Target.Name)
			a.typeOf(s.Value)
			return
		}
		targetType = sym.Type
		mutable = sym.IsMutable
		sym.IsInitialized = true
	case ast.AssignIndex:
		ot := a.typeOf(s.Target.Object)
		if ot.IsReference() {
			ot = ot.Dereference()
		}
		if !ot.IsArray() && !ot.IsPointer() {
			a.errorf(s.Loc(), "cannot index into %s", ot)
			a.typeOf(s.Target.Index)
			a.typeOf(s.Value)
			return
		}
		it := a.typeOf(s.Target.Index)
		if !it.IsIntegral() {
			a.errorf(s.Loc(), "array index must be integral, got %s", it)
		}
		targetType = *ot.Elem
		mutable = a.rootMutable(s.Target.Object)
	case ast.AssignField:
		ot := a.typeOf(s.Target.Object)
		structName, ok := a.autoDerefStruct(ot)
		if !ok {
			a.errorf(s.Loc(), "cannot access field %q on non-struct type %s", s.Target.Field, ot)
			a.typeOf(s.Value)
			return
		}
		ft, ok := a.fieldType(structName, s.Target.Field)
		if !ok {
			a.errorf(s.Loc(), "struct %q has no field %q", structName, s.Target.Field)
			a.typeOf(s.Value)
			return
		}
		targetType = ft
		mutable = true
	}
	vt := a.typeOf(s.Value)
	if !vt.AssignableTo(targetType) {
		a.errorf(s.Loc(), "cannot assign %s to %s", vt, targetType)
	}
	if (s.Target.Kind == ast.AssignIdent || s.Target.Kind == ast.AssignIndex) && !mutable {
		a.errorf(s.Loc(), "Cannot assign to immutable variable")
	}
}

// rootMutable walks through chained index expressions to the underlying
// identifier's mutability, so matrix[i][j] = x checks matrix's own binding.
func (a *Analyzer) rootMutable(e ast.Expr) bool {
	for {
		switch n := e.(type) {
		case *ast.Identifier:
			sym := a.syms.Lookup(n.Name)
			return sym != nil && sym.IsMutable
		case *ast.Index:
			e = n.Object
		default:
			return false
		}
	}
}

// Expression analysis

func (a *Analyzer) typeOf(e ast.Expr) ast.Type {
	if e == nil {
		return ast.Primitives(ast.Void)
	}
	if e.Typed() {
		return e.Type()
	}
	t := a.checkExpr(e)
	e.SetType(t)
	return t
}

func (a *Analyzer) checkExpr(e ast.Expr) ast.Type {
	switch n := e.(type) {
	case *ast.Literal:
		if n.Typed() {
			return n.Type()
		}
		return ast.Primitives(ast.I32)
	case *ast.Identifier:
		return a.checkIdentifier(n)
	case *ast.BinaryOp:
		return a.checkBinaryOp(n)
	case *ast.UnaryOp:
		return a.checkUnaryOp(n)
	case *ast.Cast:
		a.typeOf(n.Operand)
		return n.Target
	case *ast.Call:
		return a.checkCall(n)
	case *ast.Index:
		return a.checkIndex(n)
	case *ast.Field:
		return a.checkField(n)
	case *ast.ArrayLiteral:
		return a.checkArrayLiteral(n)
	case *ast.StructLiteral:
		return a.checkStructLiteral(n)
	case *ast.Assignment:
		a.analyzeAssignment(n)
		return a.typeOf(n.Value)
	}
	return ast.Primitives(ast.Void)
}

func (a *Analyzer) checkIdentifier(n *ast.Identifier) ast.Type {
	if n.Name == "self" {
		if structName, ok := a.syms.CurrentStruct(); ok {
			return ast.StructRef(structName)
		}
	}
	sym := a.syms.Lookup(n.Name)
	if sym == nil {
		a.errorf(n.Loc(), "undefined identifier %q", n.Name)
		return ast.Primitives(ast.Void)
	}
	if !sym.IsInitialized {
		a.errorf(n.Loc(), "use of uninitialized variable %q", n.Name)
	}
	return sym.Type
}

func (a *Analyzer) checkBinaryOp(n *ast.BinaryOp) ast.Type {
	lt := a.typeOf(n.Left)
	rt := a.typeOf(n.Right)
	switch n.Operator {
	case "+", "-", "*", "/", "%":
		if !lt.IsNumeric() || !rt.IsNumeric() {
			a.errorf(n.Loc(), "arithmetic operator %s requires numeric operands, got %s and %s", n.Operator, lt, rt)
			return ast.Primitives(ast.I32)
		}
		if lt.Prim == ast.F64 || rt.Prim == ast.F64 {
			return ast.Primitives(ast.F64)
		}
		if lt.Prim == ast.F32 || rt.Prim == ast.F32 {
			return ast.Primitives(ast.F32)
		}
		return ast.Primitives(ast.I32)
	case "<", ">", "<=", ">=":
		if !lt.IsNumeric() || !rt.IsNumeric() {
			a.errorf(n.Loc(), "comparison operator %s requires numeric operands, got %s and %s", n.Operator, lt, rt)
		}
		return ast.Primitives(ast.Bool)
	case "==", "!=":
		if !lt.Equal(rt) {
			a.errorf(n.Loc(), "equality operator %s requires identical types, got %s and %s", n.Operator, lt, rt)
		}
		return ast.Primitives(ast.Bool)
	case "&&", "||":
		boolT := ast.Primitives(ast.Bool)
		if !lt.Equal(boolT) || !rt.Equal(boolT) {
			a.errorf(n.Loc(), "logical operator %s requires bool operands, got %s and %s", n.Operator, lt, rt)
		}
		return ast.Primitives(ast.Bool)
	case "&", "|", "^", "<<", ">>":
		if !lt.IsIntegral() || !rt.IsIntegral() {
			a.errorf(n.Loc(), "bitwise operator %s requires integral operands, got %s and %s", n.Operator, lt, rt)
		}
		return lt
	}
	return ast.Primitives(ast.Void)
}

func (a *Analyzer) checkUnaryOp(n *ast.UnaryOp) ast.Type {
	ot := a.typeOf(n.Operand)
	switch n.Operator {
	case "-":
		if !ot.IsNumeric() {
			a.errorf(n.Loc(), "unary - requires a numeric operand, got %s", ot)
		}
		return ot
	case "!":
		if !(ot.Kind == ast.TPrimitive && ot.Prim == ast.Bool) {
			a.errorf(n.Loc(), "unary ! requires a bool operand, got %s", ot)
		}
		return ast.Primitives(ast.Bool)
	case "*":
		if !ot.IsPointer() && !ot.IsReference() {
			a.errorf(n.Loc(), "cannot dereference non-pointer, non-reference type %s", ot)
			return ast.Primitives(ast.Void)
		}
		return ot.Dereference()
	case "&":
		return ast.ReferenceTo(ot, n.IsMutRef)
	}
	return ast.Primitives(ast.Void)
}

// checkCall implements the three-way dispatch of spec.md §4.5(a-c): method
// call through a field access, built-in print*/sqrt, or a plain function.
func (a *Analyzer) checkCall(n *ast.Call) ast.Type {
	if field, ok := n.Callee.(*ast.Field); ok {
		return a.checkMethodCall(n, field)
	}
	if ident, ok := n.Callee.(*ast.Identifier); ok {
		switch ident.Name {
		case "println", "print":
			ident.SetType(ast.Primitives(ast.Void))
			if len(n.Args) > 1 {
				a.errorf(n.Loc(), "%s accepts at most one argument, got %d", ident.Name, len(n.Args))
			}
			for _, arg := range n.Args {
				a.typeOf(arg)
			}
			return ast.Primitives(ast.Void)
		case "sqrt":
			ident.SetType(ast.Primitives(ast.F32))
			if len(n.Args) != 1 {
				a.errorf(n.Loc(), "sqrt requires exactly one argument, got %d", len(n.Args))
				return ast.Primitives(ast.F32)
			}
			at := a.typeOf(n.Args[0])
			if !at.IsNumeric() {
				a.errorf(n.Loc(), "sqrt requires a numeric argument, got %s", at)
			}
			return ast.Primitives(ast.F32)
		}
		return a.checkPlainCall(n, ident)
	}
	a.errorf(n.Loc(), "uncallable expression")
	for _, arg := range n.Args {
		a.typeOf(arg)
	}
	return ast.Primitives(ast.Void)
}

func (a *Analyzer) checkMethodCall(n *ast.Call, field *ast.Field) ast.Type {
	ot := a.typeOf(field.Object)
	structName, ok := a.autoDerefStruct(ot)
	if !ok {
		a.errorf(n.Loc(), "cannot call method %q on non-struct type %s", field.Name, ot)
		for _, arg := range n.Args {
			a.typeOf(arg)
		}
		return ast.Primitives(ast.Void)
	}
	mangled := structName + "::" + field.Name
	sym := a.syms.LookupFunction(mangled)
	if sym == nil {
		a.errorf(n.Loc(), "struct %q has no method %q", structName, field.Name)
		for _, arg := range n.Args {
			a.typeOf(arg)
		}
		return ast.Primitives(ast.Void)
	}
	field.SetType(sym.Type)
	wantArgs := len(sym.Func.ParamTypes) - 1
	if len(n.Args) != wantArgs {
		a.errorf(n.Loc(), "method %q expects %d argument(s), got %d", mangled, wantArgs, len(n.Args))
	}
	for i, arg := range n.Args {
		at := a.typeOf(arg)
		pi := i + 1
		if pi < len(sym.Func.ParamTypes) && !at.AssignableTo(sym.Func.ParamTypes[pi]) {
			a.errorf(arg.Loc(), "argument %d to %q: cannot assign %s to %s", i+1, mangled, at, sym.Func.ParamTypes[pi])
		}
	}
	return sym.Func.ReturnType
}

func (a *Analyzer) checkPlainCall(n *ast.Call, ident *ast.Identifier) ast.Type {
	sym := a.syms.LookupFunction(ident.Name)
	if sym == nil {
		a.errorf(n.Loc(), "undefined function %q", ident.Name)
		for _, arg := range n.Args {
			a.typeOf(arg)
		}
		return ast.Primitives(ast.Void)
	}
	ident.SetType(sym.Type)
	if len(n.Args) != len(sym.Func.ParamTypes) {
		a.errorf(n.Loc(), "function %q expects %d argument(s), got %d", ident.Name, len(sym.Func.ParamTypes), len(n.Args))
	}
	for i, arg := range n.Args {
		at := a.typeOf(arg)
		if i < len(sym.Func.ParamTypes) && !at.AssignableTo(sym.Func.ParamTypes[i]) {
			a.errorf(arg.Loc(), "argument %d to %q: cannot assign %s to %s", i+1, ident.Name, at, sym.Func.ParamTypes[i])
		}
	}
	return sym.Func.ReturnType
}

func (a *Analyzer) checkIndex(n *ast.Index) ast.Type {
	ot := a.typeOf(n.Object)
	indexee := ot
	if indexee.IsReference() {
		indexee = indexee.Dereference()
	}
	if !indexee.IsArray() && !indexee.IsPointer() {
		a.errorf(n.Loc(), "cannot index into %s", ot)
		a.typeOf(n.Index)
		return ast.Primitives(ast.Void)
	}
	it := a.typeOf(n.Index)
	if !it.IsIntegral() {
		a.errorf(n.Loc(), "array index must be integral, got %s", it)
	}
	return *indexee.Elem
}

func (a *Analyzer) checkField(n *ast.Field) ast.Type {
	ot := a.typeOf(n.Object)
	structName, ok := a.autoDerefStruct(ot)
	if !ok {
		a.errorf(n.Loc(), "cannot access field %q on non-struct type %s", n.Name, ot)
		return ast.Primitives(ast.Void)
	}
	ft, ok := a.fieldType(structName, n.Name)
	if !ok {
		a.errorf(n.Loc(), "struct %q has no field %q", structName, n.Name)
		return ast.Primitives(ast.Void)
	}
	return ft
}

func (a *Analyzer) checkArrayLiteral(n *ast.ArrayLiteral) ast.Type {
	if len(n.Elements) == 0 {
		a.errorf(n.Loc(), "array literal must have at least one element")
		return ast.ArrayOf(ast.Primitives(ast.Void), 0)
	}
	first := a.typeOf(n.Elements[0])
	for _, elem := range n.Elements[1:] {
		t := a.typeOf(elem)
		if !t.Equal(first) {
			a.errorf(elem.Loc(), "array literal elements must share a type, got %s and %s", first, t)
		}
	}
	return ast.ArrayOf(first, len(n.Elements))
}

// checkStructLiteral does not enforce that every declared field is supplied
// (spec.md §9); an omitted field is zero-initialized by the emitted C
// compound literal.
func (a *Analyzer) checkStructLiteral(n *ast.StructLiteral) ast.Type {
	sym := a.syms.LookupType(n.StructName)
	if sym == nil {
		a.errorf(n.Loc(), "undefined struct %q", n.StructName)
		for _, f := range n.Fields {
			a.typeOf(f.Value)
		}
		return ast.Primitives(ast.Void)
	}
	for _, f := range n.Fields {
		vt := a.typeOf(f.Value)
		ft, ok := a.fieldType(n.StructName, f.Name)
		if !ok {
			a.errorf(f.Value.Loc(), "struct %q has no field %q", n.StructName, f.Name)
			continue
		}
		if !vt.AssignableTo(ft) {
			a.errorf(f.Value.Loc(), "field %q: cannot assign %s to %s", f.Name, vt, ft)
		}
	}
	return ast.StructRef(n.StructName)
}

// autoDerefStruct auto-dereferences a pointer or reference once, then
// reports the struct name if the resulting type is a struct.
func (a *Analyzer) autoDerefStruct(t ast.Type) (string, bool) {
	if t.IsPointer() || t.IsReference() {
		t = t.Dereference()
	}
	if t.IsStruct() {
		return t.StructName, true
	}
	return "", false
}

func (a *Analyzer) fieldType(structName, field string) (ast.Type, bool) {
	sym := a.syms.LookupType(structName)
	if sym == nil || sym.Struct == nil {
		return ast.Type{}, false
	}
	for i, name := range sym.Struct.FieldNames {
		if name == field {
			return sym.Struct.FieldTypes[i], true
		}
	}
	return ast.Type{}, false
}
