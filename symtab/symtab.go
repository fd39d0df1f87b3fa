// Package symtab implements the scope chain and symbol table used by the
// semantic analyzer: a stack of lexical scopes plus a struct registry kept
// independent of that chain, per spec.md §4.4.
package symtab

import "github.com/codeassociates/jfmc/ast"

// SymbolKind discriminates what a Symbol names.
type SymbolKind int

const (
	KindVariable SymbolKind = iota
	KindParameter
	KindFunction
	KindStruct
	KindField
)

// FuncExtra holds per-parameter metadata for a function/method symbol.
type FuncExtra struct {
	ParamTypes []ast.Type
	ParamNames []string
	ParamMut   []bool
	ReturnType ast.Type
}

// StructExtra holds the field table for a struct symbol.
type StructExtra struct {
	FieldNames []string
	FieldTypes []ast.Type
}

// Symbol is a named entity bound in a scope (or, for structs, registered in
// the type registry independent of the scope chain).
type Symbol struct {
	Name          string
	Kind          SymbolKind
	Type          ast.Type
	IsMutable     bool
	IsInitialized bool
	Scope         *Scope

	Func   *FuncExtra
	Struct *StructExtra
}

// ScopeKind discriminates what a Scope represents.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeFunction
	ScopeBlock
	ScopeLoop
	ScopeStruct
)

// bucketCount is the per-scope hash table size: a small prime, matching the
// original C symbol table's INITIAL_TABLE_SIZE (symbol_table.c).
const bucketCount = 127

// Scope is one lexical scope in the scope chain. Symbols within a scope
// live in chained hash buckets keyed by djb2(name) mod bucketCount — the
// symbol density per scope in SL programs never warrants rehashing.
type Scope struct {
	Parent     *Scope
	Kind       ScopeKind
	Level      int
	ReturnType *ast.Type // set on Function scopes
	StructName string    // set on Struct scopes

	buckets [bucketCount][]*Symbol
}

func djb2(s string) uint32 {
	var hash uint32 = 5381
	for i := 0; i < len(s); i++ {
		hash = ((hash << 5) + hash) + uint32(s[i])
	}
	return hash
}

func bucketIndex(name string) uint32 {
	return djb2(name) % bucketCount
}

// defineLocal inserts sym into this scope's bucket. Caller must have already
// verified the name doesn't collide (via lookupLocal).
func (s *Scope) defineLocal(sym *Symbol) {
	idx := bucketIndex(sym.Name)
	s.buckets[idx] = append(s.buckets[idx], sym)
}

// lookupLocal searches only this scope's buckets.
func (s *Scope) lookupLocal(name string) *Symbol {
	idx := bucketIndex(name)
	for _, sym := range s.buckets[idx] {
		if sym.Name == name {
			return sym
		}
	}
	return nil
}

// Table is the symbol table: a global scope, a cursor into the current
// scope, and a struct registry independent of the scope chain.
type Table struct {
	Global  *Scope
	Current *Scope
	Types   map[string]*Symbol
}

// New creates a Table with an empty global scope.
func New() *Table {
	g := &Scope{Kind: ScopeGlobal, Level: 0}
	return &Table{Global: g, Current: g, Types: make(map[string]*Symbol)}
}

// EnterScope pushes a new scope of kind k as a child of the current scope.
func (t *Table) EnterScope(k ScopeKind) {
	t.Current = &Scope{Parent: t.Current, Kind: k, Level: t.Current.Level + 1}
}

// EnterFunctionScope pushes a Function scope carrying the declared return type.
func (t *Table) EnterFunctionScope(ret ast.Type) {
	t.EnterScope(ScopeFunction)
	t.Current.ReturnType = &ret
}

// EnterStructScope pushes a Struct scope naming the enclosing struct (used
// for impl bodies so `self` resolves and field-receiver checks can run).
func (t *Table) EnterStructScope(name string) {
	t.EnterScope(ScopeStruct)
	t.Current.StructName = name
}

// ExitScope pops the current scope. It never pops past the global scope.
func (t *Table) ExitScope() {
	if t.Current.Parent == nil {
		return
	}
	t.Current = t.Current.Parent
}

// Define binds name in the current scope. It returns nil if name already
// exists in that same scope (same-scope collision is a diagnostic at the
// call site, not here).
func (t *Table) Define(name string, kind SymbolKind, typ ast.Type, mutable bool) *Symbol {
	if t.Current.lookupLocal(name) != nil {
		return nil
	}
	sym := &Symbol{Name: name, Kind: kind, Type: typ, IsMutable: mutable, Scope: t.Current}
	t.Current.defineLocal(sym)
	return sym
}

// Lookup walks the parent chain, returning the closest enclosing match.
func (t *Table) Lookup(name string) *Symbol {
	for s := t.Current; s != nil; s = s.Parent {
		if sym := s.lookupLocal(name); sym != nil {
			return sym
		}
	}
	return nil
}

// LookupCurrentScope looks only in the current scope.
func (t *Table) LookupCurrentScope(name string) *Symbol {
	return t.Current.lookupLocal(name)
}

// LookupFunction is a kind-filtered lookup for call resolution.
func (t *Table) LookupFunction(name string) *Symbol {
	if sym := t.Lookup(name); sym != nil && sym.Kind == KindFunction {
		return sym
	}
	return nil
}

// LookupStruct is a kind-filtered lookup against the struct registry.
func (t *Table) LookupStruct(name string) *Symbol {
	if sym, ok := t.Types[name]; ok && sym.Kind == KindStruct {
		return sym
	}
	return nil
}

// RegisterType registers a struct symbol in the type registry, independent
// of the lexical scope chain.
func (t *Table) RegisterType(name string, sym *Symbol) {
	t.Types[name] = sym
}

// LookupType looks up a registered struct symbol by name.
func (t *Table) LookupType(name string) *Symbol {
	return t.Types[name]
}

// InLoop reports whether the current scope is nested (possibly through
// Block scopes) inside a Loop scope. The walk stops at the nearest Function
// scope, so a loop outside the current function does not count.
func (t *Table) InLoop() bool {
	for s := t.Current; s != nil && s.Kind != ScopeFunction; s = s.Parent {
		if s.Kind == ScopeLoop {
			return true
		}
	}
	return false
}

// InFunction reports whether the current scope is nested inside a Function scope.
func (t *Table) InFunction() bool {
	for s := t.Current; s != nil; s = s.Parent {
		if s.Kind == ScopeFunction {
			return true
		}
	}
	return false
}

// ReturnType walks upward to find the enclosing function's declared return
// type. The second result is false outside any function.
func (t *Table) ReturnType() (ast.Type, bool) {
	for s := t.Current; s != nil; s = s.Parent {
		if s.Kind == ScopeFunction && s.ReturnType != nil {
			return *s.ReturnType, true
		}
	}
	return ast.Type{}, false
}

// CurrentStruct walks upward to find the enclosing impl's struct name. The
// second result is false outside any struct scope.
func (t *Table) CurrentStruct() (string, bool) {
	for s := t.Current; s != nil; s = s.Parent {
		if s.Kind == ScopeStruct {
			return s.StructName, true
		}
	}
	return "", false
}
