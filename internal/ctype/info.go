package ctype

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Field describes a single member inside a struct or union.
type Field struct {
	Name string
	Type TypeID
}

// CompositeInfo stores metadata for a struct or union type.
type CompositeInfo struct {
	Name      string
	Fields    []Field
	Finalized bool
}

// TypedefInfo stores metadata for a typedef.
type TypedefInfo struct {
	Name   string
	Target TypeID
}

// EnumMember is one named constant of an enum.
type EnumMember struct {
	Name  string
	Value int64
}

// EnumInfo stores metadata for an enum type.
type EnumInfo struct {
	Name    string
	Members []EnumMember
}

// FuncInfo stores a function signature used by function-pointer types and
// called-function declarations.
type FuncInfo struct {
	Ret      TypeID
	Params   []TypeID
	Variadic bool
}

// RegisterStruct interns a struct node by tag. Fields are set separately so
// self-referential layouts can be described after the node exists.
func (in *Interner) RegisterStruct(name string) TypeID {
	return in.registerComposite(KindStruct, name)
}

// RegisterUnion interns a union node by tag.
func (in *Interner) RegisterUnion(name string) TypeID {
	return in.registerComposite(KindUnion, name)
}

func (in *Interner) registerComposite(kind Kind, name string) TypeID {
	key := typeKey{Kind: kind, Name: name}
	if id, ok := in.index[key]; ok {
		return id
	}
	slot := appendSlot(&in.composites, CompositeInfo{Name: name})
	return in.internRaw(Type{Kind: kind, Name: name, Payload: slot})
}

// SetFields finalizes the member list of a composite. The first finalization
// wins; later calls are ignored (conflicting shapes are a decompiler artifact
// handled upstream).
func (in *Interner) SetFields(id TypeID, fields []Field) {
	info := in.compositeInfo(id)
	if info == nil || info.Finalized {
		return
	}
	info.Fields = slices.Clone(fields)
	info.Finalized = true
}

// Composite returns metadata for a struct or union TypeID.
func (in *Interner) Composite(id TypeID) (*CompositeInfo, bool) {
	info := in.compositeInfo(id)
	if info == nil {
		return nil, false
	}
	return info, true
}

// RegisterTypedef interns a typedef node by name; the aliased type is set
// separately.
func (in *Interner) RegisterTypedef(name string) TypeID {
	key := typeKey{Kind: KindTypedef, Name: name}
	if id, ok := in.index[key]; ok {
		return id
	}
	slot := appendSlot(&in.typedefs, TypedefInfo{Name: name})
	return in.internRaw(Type{Kind: KindTypedef, Name: name, Payload: slot})
}

// SetTypedefTarget finalizes the aliased type. First target wins.
func (in *Interner) SetTypedefTarget(id, target TypeID) {
	info := in.typedefInfo(id)
	if info == nil || info.Target != NoTypeID {
		return
	}
	info.Target = target
}

// Typedef returns metadata for a typedef TypeID.
func (in *Interner) Typedef(id TypeID) (*TypedefInfo, bool) {
	info := in.typedefInfo(id)
	if info == nil {
		return nil, false
	}
	return info, true
}

// RegisterEnum interns an enum node by tag.
func (in *Interner) RegisterEnum(name string) TypeID {
	key := typeKey{Kind: KindEnum, Name: name}
	if id, ok := in.index[key]; ok {
		return id
	}
	slot := appendSlot(&in.enums, EnumInfo{Name: name})
	return in.internRaw(Type{Kind: KindEnum, Name: name, Payload: slot})
}

// SetEnumMembers finalizes the member list of an enum. First set wins.
func (in *Interner) SetEnumMembers(id TypeID, members []EnumMember) {
	info := in.enumInfo(id)
	if info == nil || info.Members != nil {
		return
	}
	info.Members = slices.Clone(members)
}

// Enum returns metadata for an enum TypeID.
func (in *Interner) Enum(id TypeID) (*EnumInfo, bool) {
	info := in.enumInfo(id)
	if info == nil {
		return nil, false
	}
	return info, true
}

// FuncOf interns a function signature. Unlike nominal kinds the whole shape is
// the identity, so return and parameter types must already be interned.
func (in *Interner) FuncOf(ret TypeID, params []TypeID, variadic bool) TypeID {
	slot := appendSlot(&in.funcs, FuncInfo{Ret: ret, Params: slices.Clone(params), Variadic: variadic})
	t := Type{Kind: KindFunc, Payload: slot}
	key := in.keyFor(t)
	if id, ok := in.index[key]; ok {
		// Equal signature already interned; drop the freshly appended slot.
		in.funcs = in.funcs[:len(in.funcs)-1]
		return id
	}
	return in.internRaw(t)
}

// Func returns the signature metadata for a KindFunc TypeID.
func (in *Interner) Func(id TypeID) (*FuncInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFunc {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.funcs) {
		return nil, false
	}
	return &in.funcs[tt.Payload], true
}

func (in *Interner) compositeInfo(id TypeID) *CompositeInfo {
	tt, ok := in.Lookup(id)
	if !ok || !tt.Composite() {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.composites) {
		return nil
	}
	return &in.composites[tt.Payload]
}

func (in *Interner) typedefInfo(id TypeID) *TypedefInfo {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTypedef {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.typedefs) {
		return nil
	}
	return &in.typedefs[tt.Payload]
}

func (in *Interner) enumInfo(id TypeID) *EnumInfo {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindEnum {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.enums) {
		return nil
	}
	return &in.enums[tt.Payload]
}

func appendSlot[T any](list *[]T, item T) uint32 {
	*list = append(*list, item)
	slot, err := safecast.Conv[uint32](len(*list) - 1)
	if err != nil {
		panic(fmt.Errorf("side table overflow: %w", err))
	}
	return slot
}
