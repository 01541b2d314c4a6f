package ctype

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for primitives every decompiled program references.
type Builtins struct {
	Invalid   TypeID
	Void      TypeID
	Bool      TypeID
	Char      TypeID
	Int       TypeID
	Uint      TypeID
	Float     TypeID
	Double    TypeID
	Undefined TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
//
// Two references that denote the same C type always collapse to one TypeID:
// primitives and nominal kinds are keyed by spelling/tag, pointers and arrays
// by their element identity, function signatures by return and parameter
// identities. Nominal shapes (composite fields, typedef targets, enum members)
// live in side tables and may be finalized after the node exists, which is
// what lets cyclic type graphs be built without special cases.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins

	composites []CompositeInfo
	typedefs   []TypedefInfo
	enums      []EnumInfo
	funcs      []FuncInfo
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[typeKey]TypeID, 64),
	}
	// Reserve slot 0 of every side table as an invalid sentinel.
	in.composites = append(in.composites, CompositeInfo{})
	in.typedefs = append(in.typedefs, TypedefInfo{})
	in.enums = append(in.enums, EnumInfo{})
	in.funcs = append(in.funcs, FuncInfo{})

	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Void = in.Primitive("void")
	in.builtins.Bool = in.Primitive("bool")
	in.builtins.Char = in.Primitive("char")
	in.builtins.Int = in.Primitive("int")
	in.builtins.Uint = in.Primitive("uint")
	in.builtins.Float = in.Primitive("float")
	in.builtins.Double = in.Primitive("double")
	in.builtins.Undefined = in.Opaque("undefined")
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Primitive interns a primitive type by its C spelling.
func (in *Interner) Primitive(name string) TypeID {
	return in.intern(Type{Kind: KindPrimitive, Name: name})
}

// PointerTo interns a pointer to elem.
func (in *Interner) PointerTo(elem TypeID) TypeID {
	return in.intern(Type{Kind: KindPointer, Elem: elem})
}

// ArrayOf interns an array of count elements (ArrayUnknownLength when unsized).
func (in *Interner) ArrayOf(elem TypeID, count uint32) TypeID {
	return in.intern(Type{Kind: KindArray, Elem: elem, Count: count})
}

// Opaque interns a placeholder for a type the decompiler could not resolve.
func (in *Interner) Opaque(name string) TypeID {
	if name == "" {
		name = "undefined"
	}
	return in.intern(Type{Kind: KindOpaque, Name: name})
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("ctype: invalid TypeID")
	}
	return tt
}

// Len returns the number of interned descriptors, including the invalid slot.
func (in *Interner) Len() int {
	return len(in.types)
}

func (in *Interner) intern(t Type) TypeID {
	key := in.keyFor(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[in.keyFor(t)] = id
	return id
}

// typeKey is the structural identity of a descriptor. Payload never
// participates: side-table slots are storage, not identity.
type typeKey struct {
	Kind  Kind
	Name  string
	Elem  TypeID
	Count uint32
}

func (in *Interner) keyFor(t Type) typeKey {
	key := typeKey{Kind: t.Kind, Name: t.Name, Elem: t.Elem, Count: t.Count}
	if t.Kind == KindFunc {
		// Function signatures have no tag; encode the parameter identities
		// into the name so structurally equal signatures collapse.
		key.Name = in.funcKey(t.Payload)
		key.Elem = NoTypeID
	}
	return key
}

func (in *Interner) funcKey(slot uint32) string {
	if slot == 0 || int(slot) >= len(in.funcs) {
		return ""
	}
	info := in.funcs[slot]
	var b strings.Builder
	b.WriteString(strconv.FormatUint(uint64(info.Ret), 10))
	b.WriteByte('(')
	for i, p := range info.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(p), 10))
	}
	if info.Variadic {
		b.WriteString(",...")
	}
	b.WriteByte(')')
	return b.String()
}
