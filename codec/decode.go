package codec

import (
	"math"
	"strconv"

	ipld "github.com/ipld/go-ipld-prime"

	"github.com/vulcanize/go-codec-txmeta/failure"
	"github.com/vulcanize/go-codec-txmeta/format"
	"github.com/vulcanize/go-codec-txmeta/registry"
	"github.com/vulcanize/go-codec-txmeta/serde"
)

// Unmarshal decodes src as a value of root into na. The whole input must be
// consumed.
func Unmarshal(reg *registry.Registry, root string, enc Encoding, src []byte, na ipld.NodeAssembler) error {
	d, err := enc.NewDeserializer(src)
	if err != nil {
		return err
	}
	if err := Decode(reg, root, d, na); err != nil {
		return err
	}
	if d.Remaining() != 0 {
		return failure.New(failure.StageDecode, failure.KindTrailingBytes).
			Type(root).
			Detail("%d bytes left after offset %d", d.Remaining(), d.GetBufferOffset()).
			Build()
	}
	return nil
}

// Decode reads a value of the container root into na. Trailing input is
// left for the caller.
func Decode(reg *registry.Registry, root string, d serde.Deserializer, na ipld.NodeAssembler) error {
	dec := &decoder{reg: reg, d: d}
	return dec.container(root, na, nil)
}

type decoder struct {
	reg *registry.Registry
	d   serde.Deserializer
}

func decodeErr(kind failure.Kind, path []string, msg string, args ...any) error {
	return failure.New(failure.StageDecode, kind).Path(path...).Detail(msg, args...).Build()
}

func (dec *decoder) container(name string, na ipld.NodeAssembler, path []string) error {
	c, ok := dec.reg.Lookup(name)
	if !ok {
		return failure.New(failure.StageDecode, failure.KindUnknownType).Type(name).Path(path...).Build()
	}
	if err := dec.d.IncreaseContainerDepth(); err != nil {
		return err
	}
	defer dec.d.DecreaseContainerDepth()

	switch c.Kind {
	case format.ContainerUnitStruct:
		return na.AssignNull()
	case format.ContainerNewTypeStruct:
		return dec.value(c.Value, na, path)
	case format.ContainerTupleStruct:
		return dec.value(format.Tuple(c.Elems...), na, path)
	case format.ContainerStruct:
		return dec.fields(c.Fields, na, path)
	}

	offset := dec.d.GetBufferOffset()
	idx, err := dec.d.DeserializeVariantIndex()
	if err != nil {
		return err
	}
	if int(idx) >= len(c.Variants) {
		return failure.New(failure.StageDecode, failure.KindInvalidVariant).
			Type(name).Path(path...).
			Detail("unknown variant ordinal %d at offset %d", idx, offset).
			Build()
	}
	v := c.Variants[idx]
	if v.Kind == format.VariantUnit {
		return na.AssignString(v.Name)
	}
	ma, err := na.BeginMap(1)
	if err != nil {
		return err
	}
	if err := ma.AssembleKey().AssignString(v.Name); err != nil {
		return err
	}
	vpath := child(path, v.Name)
	switch v.Kind {
	case format.VariantNewType:
		err = dec.value(v.Value, ma.AssembleValue(), vpath)
	case format.VariantTuple:
		err = dec.value(format.Tuple(v.Elems...), ma.AssembleValue(), vpath)
	case format.VariantStruct:
		err = dec.fields(v.Fields, ma.AssembleValue(), vpath)
	}
	if err != nil {
		return err
	}
	return ma.Finish()
}

func (dec *decoder) fields(fields []format.Named, na ipld.NodeAssembler, path []string) error {
	ma, err := na.BeginMap(int64(len(fields)))
	if err != nil {
		return err
	}
	for _, f := range fields {
		if err := ma.AssembleKey().AssignString(f.Name); err != nil {
			return err
		}
		// older layouts end before default-on-EOF fields
		if f.DefaultOnEOF && dec.d.Remaining() == 0 {
			if err := ma.AssembleValue().AssignNull(); err != nil {
				return err
			}
			continue
		}
		if err := dec.value(f.Value, ma.AssembleValue(), child(path, f.Name)); err != nil {
			return err
		}
	}
	return ma.Finish()
}

func (dec *decoder) value(f format.Format, na ipld.NodeAssembler, path []string) error {
	switch f.Kind {
	case format.KindUnit:
		if _, err := dec.d.DeserializeUnit(); err != nil {
			return err
		}
		return na.AssignNull()
	case format.KindBool:
		b, err := dec.d.DeserializeBool()
		if err != nil {
			return err
		}
		return na.AssignBool(b)
	case format.KindU8:
		v, err := dec.d.DeserializeU8()
		if err != nil {
			return err
		}
		return na.AssignInt(int64(v))
	case format.KindU16:
		v, err := dec.d.DeserializeU16()
		if err != nil {
			return err
		}
		return na.AssignInt(int64(v))
	case format.KindU32:
		v, err := dec.d.DeserializeU32()
		if err != nil {
			return err
		}
		return na.AssignInt(int64(v))
	case format.KindU64:
		v, err := dec.d.DeserializeU64()
		if err != nil {
			return err
		}
		if v > math.MaxInt64 {
			return decodeErr(failure.KindOverflow, path, "u64 %d does not fit a data-model integer", v)
		}
		return na.AssignInt(int64(v))
	case format.KindI32:
		v, err := dec.d.DeserializeI32()
		if err != nil {
			return err
		}
		return na.AssignInt(int64(v))
	case format.KindI64:
		v, err := dec.d.DeserializeI64()
		if err != nil {
			return err
		}
		return na.AssignInt(v)
	case format.KindStr:
		v, err := dec.d.DeserializeStr()
		if err != nil {
			return err
		}
		return na.AssignString(v)
	case format.KindBytes:
		v, err := dec.d.DeserializeBytes()
		if err != nil {
			return err
		}
		return na.AssignBytes(v)
	case format.KindTypeName:
		return dec.container(f.Name, na, path)
	case format.KindOption:
		present, err := dec.d.DeserializeOptionTag()
		if err != nil {
			return err
		}
		if !present {
			return na.AssignNull()
		}
		return dec.value(*f.Elem, na, path)
	case format.KindSeq, format.KindShortSeq:
		var (
			n   uint64
			err error
		)
		if f.Kind == format.KindShortSeq {
			n, err = dec.d.DeserializeShortLen()
		} else {
			n, err = dec.d.DeserializeLen()
		}
		if err != nil {
			return err
		}
		return dec.list(n, func(int) format.Format { return *f.Elem }, na, path)
	case format.KindTuple:
		return dec.list(uint64(len(f.Elems)), func(i int) format.Format { return f.Elems[i] }, na, path)
	}
	return decodeErr(failure.KindUnsupported, path, "format %s", f)
}

func (dec *decoder) list(n uint64, elem func(int) format.Format, na ipld.NodeAssembler, path []string) error {
	// the length prefix is untrusted
	la, err := na.BeginList(int64(serde.CapHint(n, dec.d)))
	if err != nil {
		return err
	}
	for i := uint64(0); i < n; i++ {
		if err := dec.value(elem(int(i)), la.AssembleValue(), child(path, strconv.FormatUint(i, 10))); err != nil {
			return err
		}
	}
	return la.Finish()
}
