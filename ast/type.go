package ast

import "strconv"

// TypeKind discriminates the Type variants of spec.md §3.
type TypeKind int

const (
	TPrimitive TypeKind = iota
	TArray
	TPointer
	TReference
	TStruct
)

// Primitive names the scalar primitive types.
type Primitive int

const (
	I8 Primitive = iota
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	Bool
	Char
	Str
	Void
)

func (p Primitive) String() string {
	switch p {
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case Bool:
		return "bool"
	case Char:
		return "char"
	case Str:
		return "str"
	case Void:
		return "void"
	}
	return "?"
}

// Type is a recursive tagged variant over SL's type grammar. Only the field
// relevant to Kind is meaningful:
//   - TPrimitive: Prim
//   - TArray: Elem, Size
//   - TPointer: Elem
//   - TReference: Elem, Mutable
//   - TStruct: StructName
type Type struct {
	Kind       TypeKind
	Prim       Primitive
	Elem       *Type
	Size       int
	Mutable    bool
	StructName string
}

func Primitives(p Primitive) Type { return Type{Kind: TPrimitive, Prim: p} }

func ArrayOf(elem Type, size int) Type {
	return Type{Kind: TArray, Elem: &elem, Size: size}
}

func PointerTo(elem Type) Type {
	return Type{Kind: TPointer, Elem: &elem}
}

func ReferenceTo(elem Type, mutable bool) Type {
	return Type{Kind: TReference, Elem: &elem, Mutable: mutable}
}

func StructRef(name string) Type {
	return Type{Kind: TStruct, StructName: name}
}

// IsZero reports whether t equals the Type zero value. That value is
// structurally identical to Primitives(I8), so IsZero also reports true for
// i8; Expr.Typed() is what tells an unannotated expression apart.
func (t Type) IsZero() bool {
	return t.Kind == TPrimitive && t.Prim == 0 && t.Elem == nil && t.StructName == ""
}

func (t Type) IsIntegral() bool {
	if t.Kind != TPrimitive {
		return false
	}
	switch t.Prim {
	case I8, I16, I32, I64, U8, U16, U32, U64:
		return true
	}
	return false
}

func (t Type) IsNumeric() bool {
	if t.IsIntegral() {
		return true
	}
	return t.Kind == TPrimitive && (t.Prim == F32 || t.Prim == F64)
}

func (t Type) IsSigned() bool {
	if t.Kind != TPrimitive {
		return false
	}
	switch t.Prim {
	case I8, I16, I32, I64, F32, F64:
		return true
	}
	return false
}

func (t Type) IsReference() bool { return t.Kind == TReference }
func (t Type) IsPointer() bool   { return t.Kind == TPointer }
func (t Type) IsStruct() bool    { return t.Kind == TStruct }
func (t Type) IsArray() bool     { return t.Kind == TArray }
func (t Type) IsVoid() bool      { return t.Kind == TPrimitive && t.Prim == Void }

// Dereference yields the inner type of a Pointer or Reference. It panics if
// called on any other kind — callers must check IsPointer/IsReference first,
// mirroring spec.md §4.3's "undefined for others".
func (t Type) Dereference() Type {
	if t.Kind != TPointer && t.Kind != TReference {
		panic("ast: Dereference of non-pointer, non-reference type")
	}
	return *t.Elem
}

// Equal implements structural type equality per spec.md §4.3.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case TPrimitive:
		return t.Prim == other.Prim
	case TArray:
		return t.Size == other.Size && t.Elem.Equal(*other.Elem)
	case TPointer:
		return t.Elem.Equal(*other.Elem)
	case TReference:
		return t.Mutable == other.Mutable && t.Elem.Equal(*other.Elem)
	case TStruct:
		return t.StructName == other.StructName
	}
	return false
}

// AssignableTo implements spec.md §4.3's assignment-compatibility rule: a
// value of type t is assignable to a slot of type target iff the types are
// equal, or both integral, or both in {f32, f64}.
func (t Type) AssignableTo(target Type) bool {
	if t.Equal(target) {
		return true
	}
	if t.IsIntegral() && target.IsIntegral() {
		return true
	}
	isFloat := func(x Type) bool { return x.Kind == TPrimitive && (x.Prim == F32 || x.Prim == F64) }
	return isFloat(t) && isFloat(target)
}

func (t Type) String() string {
	switch t.Kind {
	case TPrimitive:
		return t.Prim.String()
	case TArray:
		return "[" + strconv.Itoa(t.Size) + "]" + t.Elem.String()
	case TPointer:
		return "*" + t.Elem.String()
	case TReference:
		if t.Mutable {
			return "&mut " + t.Elem.String()
		}
		return "&" + t.Elem.String()
	case TStruct:
		return t.StructName
	}
	return "?"
}
