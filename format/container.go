package format

import "fmt"

// VariantKind identifies the payload shape of an enum variant
type VariantKind int

const (
	VariantUnit VariantKind = iota
	VariantNewType
	VariantTuple
	VariantStruct
)

func (k VariantKind) String() string {
	switch k {
	case VariantUnit:
		return "UNIT"
	case VariantNewType:
		return "NEWTYPE"
	case VariantTuple:
		return "TUPLE"
	case VariantStruct:
		return "STRUCT"
	default:
		return fmt.Sprintf("VariantKind(%d)", int(k))
	}
}

// Variant is one arm of an enum. Its ordinal is its position in the enum.
type Variant struct {
	Name   string
	Kind   VariantKind
	Value  Format   // VariantNewType
	Elems  []Format // VariantTuple
	Fields []Named  // VariantStruct
}

// UnitVariant declares a variant without payload
func UnitVariant(name string) Variant {
	return Variant{Name: name, Kind: VariantUnit}
}

// NewTypeVariant declares a variant wrapping a single value
func NewTypeVariant(name string, f Format) Variant {
	return Variant{Name: name, Kind: VariantNewType, Value: f}
}

// TupleVariant declares a variant with positional fields
func TupleVariant(name string, fs ...Format) Variant {
	return Variant{Name: name, Kind: VariantTuple, Elems: fs}
}

// StructVariant declares a variant with named fields
func StructVariant(name string, fields ...Named) Variant {
	return Variant{Name: name, Kind: VariantStruct, Fields: fields}
}

// Equal reports whether two variants have the same name and payload shape
func (v Variant) Equal(o Variant) bool {
	if v.Name != o.Name || v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case VariantNewType:
		return v.Value.Equal(o.Value)
	case VariantTuple:
		return formatsEqual(v.Elems, o.Elems)
	case VariantStruct:
		return namedEqual(v.Fields, o.Fields)
	}
	return true
}

// Formats returns the payload formats of the variant in wire order
func (v Variant) Formats() []Format {
	switch v.Kind {
	case VariantNewType:
		return []Format{v.Value}
	case VariantTuple:
		return v.Elems
	case VariantStruct:
		fs := make([]Format, len(v.Fields))
		for i, f := range v.Fields {
			fs[i] = f.Value
		}
		return fs
	}
	return nil
}

// ContainerKind identifies a top-level declaration
type ContainerKind int

const (
	ContainerUnitStruct ContainerKind = iota
	ContainerNewTypeStruct
	ContainerTupleStruct
	ContainerStruct
	ContainerEnum
)

func (k ContainerKind) String() string {
	switch k {
	case ContainerUnitStruct:
		return "UNITSTRUCT"
	case ContainerNewTypeStruct:
		return "NEWTYPESTRUCT"
	case ContainerTupleStruct:
		return "TUPLESTRUCT"
	case ContainerStruct:
		return "STRUCT"
	case ContainerEnum:
		return "ENUM"
	default:
		return fmt.Sprintf("ContainerKind(%d)", int(k))
	}
}

// ContainerFormat is a named type declared in the catalog
type ContainerFormat struct {
	Kind     ContainerKind
	Value    Format    // ContainerNewTypeStruct
	Elems    []Format  // ContainerTupleStruct
	Fields   []Named   // ContainerStruct
	Variants []Variant // ContainerEnum, in ordinal order
}

// UnitStruct declares a struct without fields
func UnitStruct() ContainerFormat {
	return ContainerFormat{Kind: ContainerUnitStruct}
}

// NewTypeStruct declares a struct wrapping a single value
func NewTypeStruct(f Format) ContainerFormat {
	return ContainerFormat{Kind: ContainerNewTypeStruct, Value: f}
}

// TupleStruct declares a struct with positional fields
func TupleStruct(fs ...Format) ContainerFormat {
	return ContainerFormat{Kind: ContainerTupleStruct, Elems: fs}
}

// Struct declares a struct with named fields in wire order
func Struct(fields ...Named) ContainerFormat {
	return ContainerFormat{Kind: ContainerStruct, Fields: fields}
}

// Enum declares an enum whose variant ordinals follow the argument order
func Enum(variants ...Variant) ContainerFormat {
	return ContainerFormat{Kind: ContainerEnum, Variants: variants}
}

// Field is shorthand for a Named field
func Field(name string, f Format) Named {
	return Named{Name: name, Value: f}
}

// Equal reports whether two containers describe the same shape
func (c ContainerFormat) Equal(o ContainerFormat) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case ContainerNewTypeStruct:
		return c.Value.Equal(o.Value)
	case ContainerTupleStruct:
		return formatsEqual(c.Elems, o.Elems)
	case ContainerStruct:
		return namedEqual(c.Fields, o.Fields)
	case ContainerEnum:
		if len(c.Variants) != len(o.Variants) {
			return false
		}
		for i := range c.Variants {
			if !c.Variants[i].Equal(o.Variants[i]) {
				return false
			}
		}
	}
	return true
}

// VariantByName returns the variant and its ordinal
func (c ContainerFormat) VariantByName(name string) (Variant, uint32, bool) {
	for i, v := range c.Variants {
		if v.Name == name {
			return v, uint32(i), true
		}
	}
	return Variant{}, 0, false
}

// Formats returns every format directly referenced by the container
func (c ContainerFormat) Formats() []Format {
	switch c.Kind {
	case ContainerNewTypeStruct:
		return []Format{c.Value}
	case ContainerTupleStruct:
		return c.Elems
	case ContainerStruct:
		fs := make([]Format, len(c.Fields))
		for i, f := range c.Fields {
			fs[i] = f.Value
		}
		return fs
	case ContainerEnum:
		var fs []Format
		for _, v := range c.Variants {
			fs = append(fs, v.Formats()...)
		}
		return fs
	}
	return nil
}

// References returns the container names reachable in one step, in declaration order
func (c ContainerFormat) References() []string {
	var refs []string
	seen := make(map[string]bool)
	for _, f := range c.Formats() {
		f.Walk(func(inner Format) {
			if inner.Kind == KindTypeName && !seen[inner.Name] {
				seen[inner.Name] = true
				refs = append(refs, inner.Name)
			}
		})
	}
	return refs
}
