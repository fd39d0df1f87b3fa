package ast

import "testing"

func TestExprTypeCachingLifecycle(t *testing.T) {
	id := &Identifier{Name: "x"}

	if id.Typed() {
		t.Fatalf("expected a freshly constructed node to be untyped")
	}

	id.SetType(Primitives(I32))
	if !id.Typed() {
		t.Fatalf("expected Typed() to report true after SetType")
	}
	if got := id.Type(); !got.Equal(Primitives(I32)) {
		t.Errorf("expected cached type i32, got %s", got)
	}

	id.ResetType()
	if id.Typed() {
		t.Fatalf("expected Typed() to report false after ResetType")
	}
}

func TestIdentifierLocAndName(t *testing.T) {
	id := &Identifier{Location: Location{Line: 3, Column: 5}, Name: "count"}
	if id.Name != "count" {
		t.Errorf("expected Name count, got %s", id.Name)
	}
	if loc := id.Loc(); loc.Line != 3 || loc.Column != 5 {
		t.Errorf("expected location {3,5}, got %+v", loc)
	}
}

func TestProgramLocIsFixedOrigin(t *testing.T) {
	p := &Program{}
	if loc := p.Loc(); loc.Line != 1 || loc.Column != 1 {
		t.Errorf("expected Program.Loc() to be {1,1}, got %+v", loc)
	}
}

func TestBinaryOpHoldsOperandsAndOperator(t *testing.T) {
	left := &Literal{Kind: 0, Int: 1}
	right := &Literal{Kind: 0, Int: 2}
	bin := &BinaryOp{Operator: "+", Left: left, Right: right}
	if bin.Operator != "+" {
		t.Errorf("expected operator +, got %s", bin.Operator)
	}
	if bin.Left != Expr(left) || bin.Right != Expr(right) {
		t.Errorf("expected operands to be preserved by identity")
	}
}
