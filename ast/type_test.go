package ast

import "testing"

func TestTypeEqualStructural(t *testing.T) {
	a := ArrayOf(Primitives(I32), 3)
	b := ArrayOf(Primitives(I32), 3)
	if !a.Equal(b) {
		t.Errorf("expected structurally identical array types to be Equal")
	}
	c := ArrayOf(Primitives(I32), 4)
	if a.Equal(c) {
		t.Errorf("expected arrays of different size to not be Equal")
	}
	d := ArrayOf(Primitives(I64), 3)
	if a.Equal(d) {
		t.Errorf("expected arrays of different element type to not be Equal")
	}
}

func TestTypeEqualReferenceMutability(t *testing.T) {
	r1 := ReferenceTo(Primitives(I32), true)
	r2 := ReferenceTo(Primitives(I32), false)
	if r1.Equal(r2) {
		t.Errorf("expected references differing only in mutability to not be Equal")
	}
}

func TestTypeEqualStruct(t *testing.T) {
	p1 := StructRef("Point")
	p2 := StructRef("Point")
	p3 := StructRef("Line")
	if !p1.Equal(p2) {
		t.Errorf("expected same-named struct refs to be Equal")
	}
	if p1.Equal(p3) {
		t.Errorf("expected differently-named struct refs to not be Equal")
	}
}

func TestAssignableToIntegralWidening(t *testing.T) {
	i8 := Primitives(I8)
	i64 := Primitives(I64)
	if !i8.AssignableTo(i64) {
		t.Errorf("expected i8 assignable to i64 (both integral)")
	}
	if !i64.AssignableTo(i8) {
		t.Errorf("expected i64 assignable to i8 (both integral, per spec's loose rule)")
	}
}

func TestAssignableToFloat(t *testing.T) {
	f32 := Primitives(F32)
	f64 := Primitives(F64)
	if !f32.AssignableTo(f64) {
		t.Errorf("expected f32 assignable to f64")
	}
}

func TestAssignableToRejectsCrossFamily(t *testing.T) {
	i32 := Primitives(I32)
	f64 := Primitives(F64)
	if i32.AssignableTo(f64) {
		t.Errorf("expected i32 to not be assignable to f64")
	}
	b := Primitives(Bool)
	if b.AssignableTo(i32) {
		t.Errorf("expected bool to not be assignable to i32")
	}
}

func TestAssignableToStructRequiresExactMatch(t *testing.T) {
	p := StructRef("Point")
	l := StructRef("Line")
	if p.AssignableTo(l) {
		t.Errorf("expected distinct structs to not be assignment-compatible")
	}
	if !p.AssignableTo(StructRef("Point")) {
		t.Errorf("expected identical struct types to be assignment-compatible")
	}
}

func TestIsIntegralIsNumericIsSigned(t *testing.T) {
	if !Primitives(U32).IsIntegral() {
		t.Errorf("expected u32 to be integral")
	}
	if Primitives(U32).IsSigned() {
		t.Errorf("expected u32 to be unsigned")
	}
	if !Primitives(F32).IsNumeric() {
		t.Errorf("expected f32 to be numeric")
	}
	if Primitives(F32).IsIntegral() {
		t.Errorf("expected f32 to not be integral")
	}
	if !Primitives(F64).IsSigned() {
		t.Errorf("expected f64 to be signed")
	}
}

func TestDereferencePointerAndReference(t *testing.T) {
	p := PointerTo(Primitives(I32))
	if got := p.Dereference(); !got.Equal(Primitives(I32)) {
		t.Errorf("expected dereferencing *i32 to yield i32, got %s", got)
	}
	r := ReferenceTo(StructRef("Point"), true)
	if got := r.Dereference(); !got.Equal(StructRef("Point")) {
		t.Errorf("expected dereferencing &mut Point to yield Point, got %s", got)
	}
}

func TestDereferencePanicsOnNonPointerReference(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected Dereference of a primitive to panic")
		}
	}()
	Primitives(I32).Dereference()
}

func TestIsZero(t *testing.T) {
	var zero Type
	if !zero.IsZero() {
		t.Errorf("expected the Type zero value to report IsZero")
	}
	if Primitives(I32).IsZero() {
		t.Errorf("expected i32 to not be IsZero (its Prim is I32, not the zero Primitive I8)")
	}
}

func TestTypeStringRendersEachKind(t *testing.T) {
	tests := []struct {
		t    Type
		want string
	}{
		{Primitives(I32), "i32"},
		{ArrayOf(Primitives(I32), 3), "[3]i32"},
		{PointerTo(Primitives(U8)), "*u8"},
		{ReferenceTo(Primitives(I32), false), "&i32"},
		{ReferenceTo(Primitives(I32), true), "&mut i32"},
		{StructRef("Point"), "Point"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
