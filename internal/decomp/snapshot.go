package decomp

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"cslice/internal/ctype"
)

// Current schema version - increment when the snapshot format changes.
const snapshotSchemaVersion uint16 = 2

// A snapshot is a program dump written by the decompiler side: the whole type
// table plus one entry per function, already rendered. The type table stores
// TypeIDs as local indices; loading re-interns every node, registering nominal
// shells first so cyclic tables resolve without topological order.

type snapshotFile struct {
	Schema    uint16
	Program   string
	Types     []snapshotType
	Functions []snapshotFunc
	Equates   []snapshotEquate
}

type snapshotType struct {
	Kind     uint8
	Name     string
	Elem     uint32
	Count    uint32
	Ret      uint32
	Params   []uint32
	Variadic bool
	// Finalized distinguishes a composite whose field list was recovered from
	// one the decompiler never resolved; only the former may carry Fields.
	Finalized bool
	Fields    []snapshotField
	Members   []snapshotMember
}

type snapshotField struct {
	Name string
	Type uint32
}

type snapshotMember struct {
	Name  string
	Value int64
}

type snapshotGlobal struct {
	Name       string
	Type       uint32
	Qualifiers string
	IsFunction bool
}

type snapshotCallee struct {
	ID        uint64
	Name      string
	Prototype string
	Type      uint32
	External  bool
}

type snapshotFunc struct {
	ID        uint64
	Name      string
	Tags      []string
	Failed    bool
	Reason    string
	Signature string
	Body      string
	TypeRefs  []uint32
	Globals   []snapshotGlobal
	Callees   []snapshotCallee
}

type snapshotEquate struct {
	Name  string
	Value string
}

// Load reads a snapshot file and returns a Provider over its contents.
func Load(path string) (*Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Open(f)
}

// Open decodes a snapshot from r.
func Open(r io.Reader) (*Static, error) {
	var file snapshotFile
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if file.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("snapshot schema %d unsupported (want %d)", file.Schema, snapshotSchemaVersion)
	}

	in := ctype.NewInterner()
	ids, err := internTypeTable(file.Types, in)
	if err != nil {
		return nil, err
	}
	mapID := func(local uint32) ctype.TypeID {
		if int(local) >= len(ids) {
			return ctype.NoTypeID
		}
		return ids[local]
	}

	prov := &Static{
		Name:     file.Program,
		Interner: in,
		Records:  make(map[FuncID]*Record, len(file.Functions)),
		Failures: make(map[FuncID]string),
	}
	for _, fn := range file.Functions {
		info := FunctionInfo{ID: FuncID(fn.ID), Name: fn.Name, Tags: fn.Tags}
		prov.Funcs = append(prov.Funcs, info)
		if fn.Failed {
			prov.Failures[info.ID] = fn.Reason
			continue
		}
		rec := &Record{
			Func:      info,
			Signature: fn.Signature,
			Body:      fn.Body,
		}
		for _, ref := range fn.TypeRefs {
			rec.TypeRefs = append(rec.TypeRefs, mapID(ref))
		}
		for _, g := range fn.Globals {
			rec.Globals = append(rec.Globals, GlobalRef{
				Name:       g.Name,
				Type:       mapID(g.Type),
				Qualifiers: g.Qualifiers,
				IsFunction: g.IsFunction,
			})
		}
		for _, c := range fn.Callees {
			rec.Callees = append(rec.Callees, Callee{
				ID:        FuncID(c.ID),
				Name:      c.Name,
				Prototype: c.Prototype,
				Type:      mapID(c.Type),
				External:  c.External,
			})
		}
		prov.Records[info.ID] = rec
	}
	for _, eq := range file.Equates {
		prov.EquateList = append(prov.EquateList, Equate{Name: eq.Name, Value: eq.Value})
	}
	return prov, nil
}

// Write serializes the provider's full contents to path, atomically.
func Write(ctx context.Context, path string, prov Provider) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()
	if err := Encode(ctx, f, prov); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Encode serializes the provider's full contents to w.
func Encode(ctx context.Context, w io.Writer, prov Provider) error {
	in := prov.Types()
	file := snapshotFile{
		Schema:  snapshotSchemaVersion,
		Program: prov.ProgramName(),
		Types:   encodeTypeTable(in),
	}

	funcs, err := prov.ListFunctions(ctx)
	if err != nil {
		return err
	}
	for _, info := range funcs {
		entry := snapshotFunc{ID: uint64(info.ID), Name: info.Name, Tags: info.Tags}
		rec, decErr := prov.Decompile(ctx, info.ID)
		if decErr != nil {
			entry.Failed = true
			entry.Reason = decErr.Error()
			file.Functions = append(file.Functions, entry)
			continue
		}
		entry.Signature = rec.Signature
		entry.Body = rec.Body
		for _, ref := range rec.TypeRefs {
			entry.TypeRefs = append(entry.TypeRefs, uint32(ref))
		}
		for _, g := range rec.Globals {
			entry.Globals = append(entry.Globals, snapshotGlobal{
				Name: g.Name, Type: uint32(g.Type), Qualifiers: g.Qualifiers, IsFunction: g.IsFunction,
			})
		}
		for _, c := range rec.Callees {
			entry.Callees = append(entry.Callees, snapshotCallee{
				ID: uint64(c.ID), Name: c.Name, Prototype: c.Prototype, Type: uint32(c.Type), External: c.External,
			})
		}
		file.Functions = append(file.Functions, entry)
	}

	equates, err := prov.Equates(ctx)
	if err != nil {
		return err
	}
	for _, eq := range equates {
		file.Equates = append(file.Equates, snapshotEquate{Name: eq.Name, Value: eq.Value})
	}

	enc := msgpack.NewEncoder(w)
	return enc.Encode(&file)
}

func encodeTypeTable(in *ctype.Interner) []snapshotType {
	out := make([]snapshotType, in.Len())
	for i := 1; i < in.Len(); i++ {
		id := ctype.TypeID(i)
		t := in.MustLookup(id)
		entry := snapshotType{Kind: uint8(t.Kind), Name: t.Name, Elem: uint32(t.Elem), Count: t.Count}
		switch t.Kind {
		case ctype.KindStruct, ctype.KindUnion:
			if info, ok := in.Composite(id); ok {
				entry.Finalized = info.Finalized
				for _, f := range info.Fields {
					entry.Fields = append(entry.Fields, snapshotField{Name: f.Name, Type: uint32(f.Type)})
				}
			}
		case ctype.KindTypedef:
			if info, ok := in.Typedef(id); ok {
				entry.Elem = uint32(info.Target)
			}
		case ctype.KindEnum:
			if info, ok := in.Enum(id); ok {
				for _, m := range info.Members {
					entry.Members = append(entry.Members, snapshotMember{Name: m.Name, Value: m.Value})
				}
			}
		case ctype.KindFunc:
			if info, ok := in.Func(id); ok {
				entry.Ret = uint32(info.Ret)
				entry.Variadic = info.Variadic
				for _, p := range info.Params {
					entry.Params = append(entry.Params, uint32(p))
				}
			}
		}
		out[i] = entry
	}
	return out
}

// internTypeTable re-interns a serialized type table, returning the mapping
// from local indices to TypeIDs in the fresh interner.
func internTypeTable(entries []snapshotType, in *ctype.Interner) ([]ctype.TypeID, error) {
	ids := make([]ctype.TypeID, len(entries))
	mapped := make([]bool, len(entries))

	// Nominal kinds first: their identity is the name alone, so they can be
	// referenced before their shape is known. Cycles always pass through a
	// nominal node, which is what makes the second pass terminate.
	for i, e := range entries {
		switch ctype.Kind(e.Kind) {
		case ctype.KindInvalid:
			ids[i] = ctype.NoTypeID
			mapped[i] = true
		case ctype.KindPrimitive:
			ids[i] = in.Primitive(e.Name)
			mapped[i] = true
		case ctype.KindTypedef:
			ids[i] = in.RegisterTypedef(e.Name)
			mapped[i] = true
		case ctype.KindStruct:
			ids[i] = in.RegisterStruct(e.Name)
			mapped[i] = true
		case ctype.KindUnion:
			ids[i] = in.RegisterUnion(e.Name)
			mapped[i] = true
		case ctype.KindEnum:
			ids[i] = in.RegisterEnum(e.Name)
			mapped[i] = true
		case ctype.KindOpaque:
			ids[i] = in.Opaque(e.Name)
			mapped[i] = true
		}
	}

	// Derived kinds (pointer, array, func) until fixpoint.
	for {
		progress := false
		remaining := false
		for i, e := range entries {
			if mapped[i] {
				continue
			}
			switch ctype.Kind(e.Kind) {
			case ctype.KindPointer:
				if elem, ok := localMapped(e.Elem, ids, mapped); ok {
					ids[i] = in.PointerTo(elem)
					mapped[i] = true
					progress = true
				} else {
					remaining = true
				}
			case ctype.KindArray:
				if elem, ok := localMapped(e.Elem, ids, mapped); ok {
					ids[i] = in.ArrayOf(elem, e.Count)
					mapped[i] = true
					progress = true
				} else {
					remaining = true
				}
			case ctype.KindFunc:
				ret, ok := localMapped(e.Ret, ids, mapped)
				params := make([]ctype.TypeID, 0, len(e.Params))
				for _, p := range e.Params {
					pid, pok := localMapped(p, ids, mapped)
					if !pok {
						ok = false
						break
					}
					params = append(params, pid)
				}
				if ok {
					ids[i] = in.FuncOf(ret, params, e.Variadic)
					mapped[i] = true
					progress = true
				} else {
					remaining = true
				}
			default:
				return nil, fmt.Errorf("snapshot type %d has unknown kind %d", i, e.Kind)
			}
		}
		if !remaining {
			break
		}
		if !progress {
			return nil, fmt.Errorf("snapshot type table has an unresolvable reference chain")
		}
	}

	// Finalize nominal shapes now that every node exists.
	for i, e := range entries {
		switch ctype.Kind(e.Kind) {
		case ctype.KindStruct, ctype.KindUnion:
			// An unfinalized composite stays a forward-declaration-only shell;
			// calling SetFields here would make it look resolved with no fields.
			if !e.Finalized {
				continue
			}
			fields := make([]ctype.Field, 0, len(e.Fields))
			for _, f := range e.Fields {
				ft, _ := localMapped(f.Type, ids, mapped)
				fields = append(fields, ctype.Field{Name: f.Name, Type: ft})
			}
			in.SetFields(ids[i], fields)
		case ctype.KindTypedef:
			target, _ := localMapped(e.Elem, ids, mapped)
			in.SetTypedefTarget(ids[i], target)
		case ctype.KindEnum:
			members := make([]ctype.EnumMember, 0, len(e.Members))
			for _, m := range e.Members {
				members = append(members, ctype.EnumMember{Name: m.Name, Value: m.Value})
			}
			in.SetEnumMembers(ids[i], members)
		}
	}

	return ids, nil
}

func localMapped(local uint32, ids []ctype.TypeID, mapped []bool) (ctype.TypeID, bool) {
	if int(local) >= len(ids) {
		return ctype.NoTypeID, false
	}
	if !mapped[local] {
		return ctype.NoTypeID, false
	}
	return ids[local], true
}
