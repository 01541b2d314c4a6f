package ctype

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of C types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindPrimitive
	KindPointer
	KindArray
	KindTypedef
	KindStruct
	KindUnion
	KindEnum
	KindFunc
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindPrimitive:
		return "primitive"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindTypedef:
		return "typedef"
	case KindStruct:
		return "struct"
	case KindUnion:
		return "union"
	case KindEnum:
		return "enum"
	case KindFunc:
		return "func"
	case KindOpaque:
		return "opaque"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// ArrayUnknownLength marks arrays whose length the decompiler could not recover.
const ArrayUnknownLength = ^uint32(0)

// Type is a compact descriptor for any supported type.
//
// Identity is structural: for primitives Name is the C spelling, for nominal
// kinds (typedef, struct, union, enum, opaque) Name is the tag. Elem points at
// the pointee/element for pointers and arrays. Payload indexes the interner's
// side tables for kinds whose shape is finalized after registration.
type Type struct {
	Kind    Kind
	Name    string
	Elem    TypeID
	Count   uint32 // for arrays (ArrayUnknownLength when unsized)
	Payload uint32 // side-table slot for typedef/struct/union/enum/func
}

// Named reports whether the kind carries a nominal identity.
func (t Type) Named() bool {
	switch t.Kind {
	case KindPrimitive, KindTypedef, KindStruct, KindUnion, KindEnum, KindOpaque:
		return true
	default:
		return false
	}
}

// Composite reports whether the type is a struct or union.
func (t Type) Composite() bool {
	return t.Kind == KindStruct || t.Kind == KindUnion
}
