// Package format describes the shapes that make up a type catalog: primitive
// and composite formats, named fields, enum variants and the top-level
// containers they belong to.
//
// The model mirrors what serde-reflection records for Rust types, restricted
// to the shapes the transaction status records use. Field order and variant
// order are significant: they are the wire order and the variant ordinals.
package format

import (
	"fmt"
	"math"
	"strings"
)

// Kind identifies a Format
type Kind int

const (
	KindUnit Kind = iota
	KindBool
	KindU8
	KindU16
	KindU32
	KindU64
	KindI32
	KindI64
	KindStr
	KindBytes
	KindTypeName
	KindOption
	KindSeq
	KindShortSeq
	KindTuple
)

var kindNames = map[Kind]string{
	KindUnit:     "UNIT",
	KindBool:     "BOOL",
	KindU8:       "U8",
	KindU16:      "U16",
	KindU32:      "U32",
	KindU64:      "U64",
	KindI32:      "I32",
	KindI64:      "I64",
	KindStr:      "STR",
	KindBytes:    "BYTES",
	KindTypeName: "TYPENAME",
	KindOption:   "OPTION",
	KindSeq:      "SEQ",
	KindShortSeq: "SHORTSEQ",
	KindTuple:    "TUPLE",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsPrimitive reports whether the kind carries no nested formats
func (k Kind) IsPrimitive() bool {
	return k <= KindBytes
}

// IsInteger reports whether the kind is one of the fixed-width integers
func (k Kind) IsInteger() bool {
	return k >= KindU8 && k <= KindI64
}

// InRange reports whether v is representable by the integer kind.
// Data-model integers are int64, so U64 values above math.MaxInt64 cannot
// be carried at all.
func (k Kind) InRange(v int64) bool {
	switch k {
	case KindU8:
		return v >= 0 && v <= math.MaxUint8
	case KindU16:
		return v >= 0 && v <= math.MaxUint16
	case KindU32:
		return v >= 0 && v <= math.MaxUint32
	case KindU64:
		return v >= 0
	case KindI32:
		return v >= math.MinInt32 && v <= math.MaxInt32
	case KindI64:
		return true
	}
	return false
}

// Format is the shape of a single value
type Format struct {
	Kind Kind
	// Name is set for KindTypeName
	Name string
	// Elem is set for KindOption, KindSeq and KindShortSeq
	Elem *Format
	// Elems is set for KindTuple
	Elems []Format
}

var (
	Unit  = Format{Kind: KindUnit}
	Bool  = Format{Kind: KindBool}
	U8    = Format{Kind: KindU8}
	U16   = Format{Kind: KindU16}
	U32   = Format{Kind: KindU32}
	U64   = Format{Kind: KindU64}
	I32   = Format{Kind: KindI32}
	I64   = Format{Kind: KindI64}
	Str   = Format{Kind: KindStr}
	Bytes = Format{Kind: KindBytes}
)

// TypeName references a container declared elsewhere in the catalog
func TypeName(name string) Format {
	return Format{Kind: KindTypeName, Name: name}
}

// Option wraps a format that may be absent
func Option(f Format) Format {
	return Format{Kind: KindOption, Elem: &f}
}

// Seq is a sequence with a length prefix chosen by the encoding
func Seq(f Format) Format {
	return Format{Kind: KindSeq, Elem: &f}
}

// ShortSeq is a sequence with a compact-u16 length prefix regardless of the encoding
func ShortSeq(f Format) Format {
	return Format{Kind: KindShortSeq, Elem: &f}
}

// Tuple is a fixed list of formats
func Tuple(fs ...Format) Format {
	return Format{Kind: KindTuple, Elems: fs}
}

// Equal reports whether two formats describe the same shape
func (f Format) Equal(o Format) bool {
	if f.Kind != o.Kind || f.Name != o.Name {
		return false
	}
	if (f.Elem == nil) != (o.Elem == nil) {
		return false
	}
	if f.Elem != nil && !f.Elem.Equal(*o.Elem) {
		return false
	}
	return formatsEqual(f.Elems, o.Elems)
}

// String renders the format the way serde-reflection spells it, e.g. SEQ(U64)
func (f Format) String() string {
	switch f.Kind {
	case KindTypeName:
		return "TYPENAME(" + f.Name + ")"
	case KindOption, KindSeq, KindShortSeq:
		return f.Kind.String() + "(" + f.Elem.String() + ")"
	case KindTuple:
		parts := make([]string, len(f.Elems))
		for i, e := range f.Elems {
			parts[i] = e.String()
		}
		return "TUPLE(" + strings.Join(parts, ", ") + ")"
	default:
		return f.Kind.String()
	}
}

// Walk calls fn for f and every format nested in it, depth first
func (f Format) Walk(fn func(Format)) {
	fn(f)
	if f.Elem != nil {
		f.Elem.Walk(fn)
	}
	for _, e := range f.Elems {
		e.Walk(fn)
	}
}

// Named is a struct field or a struct-variant field
type Named struct {
	Name  string
	Value Format
	// DefaultOnEOF marks a trailing optional field that older encodings omit
	DefaultOnEOF bool
}

func namedEqual(a, b []Named) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].DefaultOnEOF != b[i].DefaultOnEOF || !a[i].Value.Equal(b[i].Value) {
			return false
		}
	}
	return true
}

func formatsEqual(a, b []Format) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
