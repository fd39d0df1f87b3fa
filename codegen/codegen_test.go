package codegen

import (
	"strings"
	"testing"

	"github.com/codeassociates/jfmc/ast"
	"github.com/codeassociates/jfmc/diag"
	"github.com/codeassociates/jfmc/lexer"
	"github.com/codeassociates/jfmc/parser"
	"github.com/codeassociates/jfmc/sema"
)

// typedProgram parses and semantically analyzes src, failing the test on any
// diagnostic, and returns the fully type-annotated AST codegen expects.
func typedProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	bag := diag.NewBag("test.jfm")
	a := sema.New(bag)
	a.Analyze(prog)
	if bag.HasErrors() {
		t.Fatalf("unexpected semantic diagnostics: %v", bag.Diagnostics())
	}
	return prog
}

func requireContains(t *testing.T, c, fragment string) {
	t.Helper()
	if !strings.Contains(strings.Join(strings.Fields(c), " "), strings.Join(strings.Fields(fragment), " ")) {
		t.Errorf("expected output to contain %q, got:\n%s", fragment, c)
	}
}

func TestGeneratePrelude(t *testing.T) {
	prog := typedProgram(t, `fn main() {}`)
	out := New().Generate(prog)
	requireContains(t, out, "#include <stdio.h>")
}

func TestGenerateFunctionSignatureAndCType(t *testing.T) {
	prog := typedProgram(t, `fn add(x: i32, y: i64) -> i64 { return x + y; }`)
	out := New().Generate(prog)
	requireContains(t, out, "int64_t add(int32_t x, int64_t y)")
}

func TestGenerateStructTypedef(t *testing.T) {
	prog := typedProgram(t, `struct Point { x: i32, y: i32 }`)
	out := New().Generate(prog)
	requireContains(t, out, "typedef struct Point { int32_t x; int32_t y; } Point;")
}

func TestGenerateExternStructEmitsNoTypedef(t *testing.T) {
	prog := typedProgram(t, `extern struct FILE;`)
	out := New().Generate(prog)
	if strings.Contains(out, "typedef struct FILE") {
		t.Errorf("expected no typedef emitted for an extern struct, got:\n%s", out)
	}
}

func TestGenerateMethodAsMangledFreeFunction(t *testing.T) {
	prog := typedProgram(t, `
		struct Point { x: i32, y: i32 }
		impl Point { fn sum(self: Point) -> i32 { return self.x + self.y; } }
	`)
	out := New().Generate(prog)
	requireContains(t, out, "int32_t Point_sum(Point self) { return (self.x + self.y); }")
}

func TestGenerateForRangeUsesBareInt(t *testing.T) {
	prog := typedProgram(t, `fn main() { for i in 0..10 { println(i); } }`)
	out := New().Generate(prog)
	requireContains(t, out, "for (int i = 0; i < 10; i++) {")
}

func TestGenerateLoopLowersToWhileOne(t *testing.T) {
	prog := typedProgram(t, `fn main() { loop { break; } }`)
	out := New().Generate(prog)
	requireContains(t, out, "while (1) {")
}

func TestGenerateArrayParamDecaysToPointer(t *testing.T) {
	prog := typedProgram(t, `fn sumAll(a: [3]i32) -> i32 { return a[0]; }`)
	out := New().Generate(prog)
	requireContains(t, out, "int32_t sumAll(int32_t* a)")
}

func TestGenerateLocalArrayUsesBracketForm(t *testing.T) {
	prog := typedProgram(t, `fn main() { let a: [3]i32 = [1, 2, 3]; }`)
	out := New().Generate(prog)
	requireContains(t, out, "int32_t a[3] = {1, 2, 3};")
}

func TestGenerateMultiDimensionalArrayLocal(t *testing.T) {
	prog := typedProgram(t, `fn main() { let mut m: [2][2]i32 = [[1, 2], [3, 4]]; }`)
	out := New().Generate(prog)
	requireContains(t, out, "int32_t m[2][2] = {{1, 2}, {3, 4}};")
	if strings.Contains(out, "int32_t* m") {
		t.Errorf("expected no pointer-decayed declaration for a multi-dimensional local, got:\n%s", out)
	}
}

func TestGenerateImmutableLocalEmitsConstQualifier(t *testing.T) {
	prog := typedProgram(t, `fn main() { let x: i32 = 1; }`)
	out := New().Generate(prog)
	requireContains(t, out, "const int32_t x = 1;")
}

func TestGenerateStructLiteralAsCompoundLiteral(t *testing.T) {
	prog := typedProgram(t, `
		struct Point { x: i32, y: i32 }
		fn main() { let p: Point = Point { x: 3, y: 4 }; }
	`)
	out := New().Generate(prog)
	requireContains(t, out, "(Point){.x = 3, .y = 4}")
}

func TestGenerateBuiltinPrintlnSelectsFormatSpecifierBySignedness(t *testing.T) {
	prog := typedProgram(t, `fn main() { let n: u64 = 1; println(n); }`)
	out := New().Generate(prog)
	requireContains(t, out, `printf("%llu\n", (unsigned long long)n)`)
}

func TestGenerateBuiltinPrintStringHasNoNewlineSuffix(t *testing.T) {
	prog := typedProgram(t, `fn main() { print("hi"); }`)
	out := New().Generate(prog)
	requireContains(t, out, `printf("%s", "hi")`)
	if strings.Contains(out, `printf("%s\n", "hi")`) {
		t.Errorf("expected print (not println) to omit the trailing newline")
	}
}

func TestGenerateMethodCallPassesReceiverAsWritten(t *testing.T) {
	prog := typedProgram(t, `
		struct Point { x: i32, y: i32 }
		impl Point { fn sum(self: Point) -> i32 { return self.x + self.y; } }
		fn main() -> i32 { let p: Point = Point { x: 1, y: 2 }; return p.sum(); }
	`)
	out := New().Generate(prog)
	requireContains(t, out, "Point_sum(p)")
	if strings.Contains(out, "Point_sum(&p)") {
		t.Errorf("expected no implicit address-of on a by-value struct receiver, got:\n%s", out)
	}
}

func TestGenerateEmissionOrderStructsMethodsThenFunctions(t *testing.T) {
	prog := typedProgram(t, `
		struct Point { x: i32 }
		impl Point { fn get(self: Point) -> i32 { return self.x; } }
		fn main() -> i32 { let p: Point = Point { x: 1 }; return p.get(); }
	`)
	out := New().Generate(prog)
	structIdx := strings.Index(out, "typedef struct Point")
	methodIdx := strings.Index(out, "Point_get")
	mainIdx := strings.Index(out, "int32_t main()")
	if !(structIdx < methodIdx && methodIdx < mainIdx) {
		t.Errorf("expected struct, then impl methods, then functions; got struct@%d method@%d main@%d",
			structIdx, methodIdx, mainIdx)
	}
}

func TestMangleReplacesScopeOperator(t *testing.T) {
	if got := mangle("Point::sum"); got != "Point_sum" {
		t.Errorf("mangle(Point::sum) = %q, want Point_sum", got)
	}
}

func TestCTypeLoweringTable(t *testing.T) {
	g := New()
	tests := []struct {
		t    ast.Type
		want string
	}{
		{ast.Primitives(ast.I8), "int8_t"},
		{ast.Primitives(ast.U64), "uint64_t"},
		{ast.Primitives(ast.F32), "float"},
		{ast.Primitives(ast.F64), "double"},
		{ast.Primitives(ast.Bool), "_Bool"},
		{ast.Primitives(ast.Char), "char"},
		{ast.Primitives(ast.Str), "const char*"},
		{ast.Primitives(ast.Void), "void"},
		{ast.PointerTo(ast.Primitives(ast.I32)), "int32_t*"},
		{ast.ArrayOf(ast.Primitives(ast.I32), 4), "int32_t*"},
		{ast.ReferenceTo(ast.Primitives(ast.I32), true), "int32_t*"},
		{ast.ReferenceTo(ast.Primitives(ast.I32), false), "const int32_t*"},
		{ast.StructRef("Point"), "Point"},
	}
	for _, tt := range tests {
		if got := g.cType(tt.t); got != tt.want {
			t.Errorf("cType(%s) = %q, want %q", tt.t, got, tt.want)
		}
	}
}
