// Package codec encodes and decodes IPLD data-model nodes against the
// containers of a finalized registry, using any serde runtime encoding.
//
// Nodes use serde's external tagging: a unit variant is a string, any other
// variant is a single-entry map, a struct is a map and a tuple is a list.
package codec

import (
	"strconv"

	ipld "github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/datamodel"

	"github.com/vulcanize/go-codec-txmeta/failure"
	"github.com/vulcanize/go-codec-txmeta/format"
	"github.com/vulcanize/go-codec-txmeta/registry"
	"github.com/vulcanize/go-codec-txmeta/serde"
)

// Marshal encodes node as a value of root and returns the bytes
func Marshal(reg *registry.Registry, root string, node ipld.Node, enc Encoding) ([]byte, error) {
	s, err := enc.NewSerializer()
	if err != nil {
		return nil, err
	}
	if err := Encode(reg, root, node, s); err != nil {
		return nil, err
	}
	return s.GetBytes(), nil
}

// Encode writes node as a value of the container root
func Encode(reg *registry.Registry, root string, node ipld.Node, s serde.Serializer) error {
	e := &encoder{reg: reg, s: s}
	return e.container(root, node, nil)
}

type encoder struct {
	reg *registry.Registry
	s   serde.Serializer
}

func encodeErr(kind failure.Kind, path []string, msg string, args ...any) error {
	return failure.New(failure.StageEncode, kind).Path(path...).Detail(msg, args...).Build()
}

func child(path []string, elem string) []string {
	return append(append([]string(nil), path...), elem)
}

func (e *encoder) container(name string, node ipld.Node, path []string) error {
	c, ok := e.reg.Lookup(name)
	if !ok {
		return failure.New(failure.StageEncode, failure.KindUnknownType).Type(name).Path(path...).Build()
	}
	if err := e.s.IncreaseContainerDepth(); err != nil {
		return err
	}
	defer e.s.DecreaseContainerDepth()

	switch c.Kind {
	case format.ContainerUnitStruct:
		return e.value(format.Unit, node, path)
	case format.ContainerNewTypeStruct:
		return e.value(c.Value, node, path)
	case format.ContainerTupleStruct:
		return e.value(format.Tuple(c.Elems...), node, path)
	case format.ContainerStruct:
		return e.fields(c.Fields, node, path)
	}
	return e.enum(name, c, node, path)
}

func (e *encoder) enum(name string, c format.ContainerFormat, node ipld.Node, path []string) error {
	var (
		variantName string
		payload     ipld.Node
	)
	switch node.Kind() {
	case datamodel.Kind_String:
		variantName, _ = node.AsString()
	case datamodel.Kind_Map:
		if node.Length() != 1 {
			return encodeErr(failure.KindTypeMismatch, path, "%s: variant map must have exactly one entry", name)
		}
		k, v, err := node.MapIterator().Next()
		if err != nil {
			return err
		}
		variantName, _ = k.AsString()
		payload = v
	default:
		return encodeErr(failure.KindTypeMismatch, path, "%s: expected a variant, found %s", name, node.Kind())
	}
	v, idx, ok := c.VariantByName(variantName)
	if !ok {
		return encodeErr(failure.KindInvalidVariant, path, "%s has no variant %q", name, variantName)
	}
	if (v.Kind == format.VariantUnit) != (payload == nil) {
		return encodeErr(failure.KindTypeMismatch, child(path, variantName), "payload does not match %s variant", v.Kind)
	}
	if err := e.s.SerializeVariantIndex(idx); err != nil {
		return err
	}
	vpath := child(path, variantName)
	switch v.Kind {
	case format.VariantNewType:
		return e.value(v.Value, payload, vpath)
	case format.VariantTuple:
		return e.value(format.Tuple(v.Elems...), payload, vpath)
	case format.VariantStruct:
		return e.fields(v.Fields, payload, vpath)
	}
	return nil
}

func (e *encoder) fields(fields []format.Named, node ipld.Node, path []string) error {
	if node.Kind() != datamodel.Kind_Map {
		return encodeErr(failure.KindTypeMismatch, path, "expected a struct map, found %s", node.Kind())
	}
	var matched int64
	for _, f := range fields {
		value, err := node.LookupByString(f.Name)
		if err != nil {
			// an absent default-on-EOF field is written in the older layout
			if f.DefaultOnEOF {
				continue
			}
			return encodeErr(failure.KindFieldMissing, child(path, f.Name), "field missing")
		}
		matched++
		if err := e.value(f.Value, value, child(path, f.Name)); err != nil {
			return err
		}
	}
	if matched != node.Length() {
		return encodeErr(failure.KindFieldUnknown, path, "map carries %d fields that are not declared", node.Length()-matched)
	}
	return nil
}

func (e *encoder) value(f format.Format, node ipld.Node, path []string) error {
	switch f.Kind {
	case format.KindUnit:
		if !node.IsNull() {
			return encodeErr(failure.KindTypeMismatch, path, "expected null for UNIT, found %s", node.Kind())
		}
		return e.s.SerializeUnit(struct{}{})
	case format.KindBool:
		b, err := node.AsBool()
		if err != nil {
			return encodeErr(failure.KindTypeMismatch, path, "expected bool: %v", err)
		}
		return e.s.SerializeBool(b)
	case format.KindU8, format.KindU16, format.KindU32, format.KindU64, format.KindI32, format.KindI64:
		return e.integer(f.Kind, node, path)
	case format.KindStr:
		str, err := node.AsString()
		if err != nil {
			return encodeErr(failure.KindTypeMismatch, path, "expected string: %v", err)
		}
		return e.s.SerializeStr(str)
	case format.KindBytes:
		b, err := node.AsBytes()
		if err != nil {
			return encodeErr(failure.KindTypeMismatch, path, "expected bytes: %v", err)
		}
		return e.s.SerializeBytes(b)
	case format.KindTypeName:
		return e.container(f.Name, node, path)
	case format.KindOption:
		if node.IsNull() {
			return e.s.SerializeOptionTag(false)
		}
		if err := e.s.SerializeOptionTag(true); err != nil {
			return err
		}
		return e.value(*f.Elem, node, path)
	case format.KindSeq, format.KindShortSeq:
		if node.Kind() != datamodel.Kind_List {
			return encodeErr(failure.KindTypeMismatch, path, "expected %s list, found %s", f.Kind, node.Kind())
		}
		var err error
		if f.Kind == format.KindShortSeq {
			err = e.s.SerializeShortLen(uint64(node.Length()))
		} else {
			err = e.s.SerializeLen(uint64(node.Length()))
		}
		if err != nil {
			return err
		}
		return e.list(func(int) format.Format { return *f.Elem }, node, path)
	case format.KindTuple:
		if node.Kind() != datamodel.Kind_List || node.Length() != int64(len(f.Elems)) {
			return encodeErr(failure.KindTypeMismatch, path, "expected a %d-element tuple", len(f.Elems))
		}
		return e.list(func(i int) format.Format { return f.Elems[i] }, node, path)
	}
	return encodeErr(failure.KindUnsupported, path, "format %s", f)
}

func (e *encoder) integer(k format.Kind, node ipld.Node, path []string) error {
	v, err := node.AsInt()
	if err != nil {
		return encodeErr(failure.KindTypeMismatch, path, "expected %s: %v", k, err)
	}
	if !k.InRange(v) {
		return encodeErr(failure.KindOverflow, path, "%d out of range for %s", v, k)
	}
	switch k {
	case format.KindU8:
		return e.s.SerializeU8(uint8(v))
	case format.KindU16:
		return e.s.SerializeU16(uint16(v))
	case format.KindU32:
		return e.s.SerializeU32(uint32(v))
	case format.KindU64:
		return e.s.SerializeU64(uint64(v))
	case format.KindI32:
		return e.s.SerializeI32(int32(v))
	default:
		return e.s.SerializeI64(v)
	}
}

func (e *encoder) list(elem func(int) format.Format, node ipld.Node, path []string) error {
	it := node.ListIterator()
	for !it.Done() {
		i, v, err := it.Next()
		if err != nil {
			return err
		}
		if err := e.value(elem(int(i)), v, child(path, strconv.FormatInt(i, 10))); err != nil {
			return err
		}
	}
	return nil
}
