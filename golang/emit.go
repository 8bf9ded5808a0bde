package golang

import (
	"bytes"
	"fmt"

	"github.com/vulcanize/go-codec-txmeta/format"
	"github.com/vulcanize/go-codec-txmeta/registry"
)

// emitter writes unformatted Go source; go/format tidies it afterwards
type emitter struct {
	cfg     Config
	reg     *registry.Registry
	buf     bytes.Buffer
	helpers map[string]format.Format
}

// member is a struct field of a generated type
type member struct {
	name         string
	format       format.Format
	defaultOnEOF bool
}

func (e *emitter) p(line string, args ...any) {
	fmt.Fprintf(&e.buf, line, args...)
	e.buf.WriteByte('\n')
}

// checkErr writes a call that returns early with ret when the error expression fails
func (e *emitter) checkErr(call, ret string) {
	e.p("if err := %s; err != nil { return %s }", call, ret)
}

func (e *emitter) file() error {
	e.p("// Code generated by txmeta-gen. DO NOT EDIT.")
	for _, c := range e.cfg.Comments {
		e.p("// %s", c)
	}
	e.p("")
	e.p("package %s", e.cfg.ModuleName)
	e.p("")
	e.p("import (")
	e.p("%q", "fmt")
	e.p("")
	e.p("%q", e.cfg.RuntimePath)
	for _, enc := range e.cfg.Encodings {
		e.p("%q", e.cfg.RuntimePath+"/"+string(enc))
	}
	e.p(")")

	for _, name := range e.reg.Names() {
		c, _ := e.reg.Lookup(name)
		for _, f := range c.Formats() {
			e.collect(f)
		}
		e.p("")
		if c.Kind == format.ContainerEnum {
			e.enum(name, c)
			continue
		}
		e.container(name, c)
	}
	for _, f := range sortedHelpers(e.helpers) {
		e.p("")
		e.helper(f)
	}
	return nil
}

// collect records every composite format nested in f
func (e *emitter) collect(f format.Format) {
	f.Walk(func(inner format.Format) {
		if needsHelper(inner) {
			e.helpers[mangle(inner)] = inner
		}
	})
}

// wrapped reports whether a newtype over f must be emitted as a struct with
// a Value field, since Go cannot declare methods on pointer or interface types
func (e *emitter) wrapped(f format.Format) bool {
	switch f.Kind {
	case format.KindOption:
		return true
	case format.KindTypeName:
		c, _ := e.reg.Lookup(f.Name)
		return c.Kind == format.ContainerEnum
	}
	return false
}

func namedMembers(fields []format.Named) []member {
	out := make([]member, len(fields))
	for i, f := range fields {
		out[i] = member{name: exported(f.Name), format: f.Value, defaultOnEOF: f.DefaultOnEOF}
	}
	return out
}

func positionalMembers(fs []format.Format) []member {
	out := make([]member, len(fs))
	for i, f := range fs {
		out[i] = member{name: fmt.Sprintf("Field%d", i), format: f}
	}
	return out
}

// shape returns the members of a struct-like type, or the newtype payload
func (e *emitter) shape(kind format.ContainerKind, value format.Format, elems []format.Format, fields []format.Named) ([]member, *format.Format) {
	switch kind {
	case format.ContainerNewTypeStruct:
		if e.wrapped(value) {
			return []member{{name: "Value", format: value}}, nil
		}
		return nil, &value
	case format.ContainerTupleStruct:
		return positionalMembers(elems), nil
	case format.ContainerStruct:
		return namedMembers(fields), nil
	}
	return nil, nil
}

func (e *emitter) container(name string, c format.ContainerFormat) {
	members, newtype := e.shape(c.Kind, c.Value, c.Elems, c.Fields)
	e.typeDecl(name, members, newtype)
	e.serialize(name, members, newtype, nil)
	e.serializeWrappers(name)
	e.deserialize("Deserialize"+name, name, members, newtype)
	e.deserializeWrappers(name)
}

func (e *emitter) typeDecl(name string, members []member, newtype *format.Format) {
	if newtype != nil {
		e.p("type %s %s", name, goType(*newtype))
		return
	}
	e.p("type %s struct {", name)
	for _, m := range members {
		e.p("%s %s", m.name, goType(m.format))
	}
	e.p("}")
}

// serialize writes the Serialize method; variantIndex is set for enum variants
func (e *emitter) serialize(name string, members []member, newtype *format.Format, variantIndex *int) {
	e.p("")
	e.p("func (obj *%s) Serialize(serializer serde.Serializer) error {", name)
	e.checkErr("serializer.IncreaseContainerDepth()", "err")
	if variantIndex != nil {
		e.checkErr(fmt.Sprintf("serializer.SerializeVariantIndex(%d)", *variantIndex), "err")
	}
	if newtype != nil {
		e.p("value := (%s)(*obj)", goType(*newtype))
		e.checkErr(serializeCall(*newtype, "value"), "err")
	}
	for _, m := range members {
		e.checkErr(serializeCall(m.format, "obj."+m.name), "err")
	}
	e.p("serializer.DecreaseContainerDepth()")
	e.p("return nil")
	e.p("}")
}

func (e *emitter) serializeWrappers(name string) {
	for _, enc := range e.cfg.Encodings {
		e.p("")
		e.p("func (obj *%s) %sSerialize() ([]byte, error) {", name, enc.Title())
		e.p("if obj == nil { return nil, fmt.Errorf(%q) }", "Cannot serialize null object")
		e.p("serializer := %s.NewSerializer()", string(enc))
		e.checkErr("obj.Serialize(serializer)", "nil, err")
		e.p("return serializer.GetBytes(), nil")
		e.p("}")
	}
}

// deserialize writes fn returning a value of typeName
func (e *emitter) deserialize(fn, typeName string, members []member, newtype *format.Format) {
	e.p("")
	e.p("func %s(deserializer serde.Deserializer) (%s, error) {", fn, typeName)
	if newtype != nil {
		ret := fmt.Sprintf("(%s)(obj)", typeName)
		e.p("var obj %s", goType(*newtype))
		e.checkErr("deserializer.IncreaseContainerDepth()", ret+", err")
		e.p("if val, err := %s; err == nil { obj = val } else { return %s, err }", deserializeCall(*newtype), ret)
		e.p("deserializer.DecreaseContainerDepth()")
		e.p("return %s, nil", ret)
		e.p("}")
		return
	}
	e.p("var obj %s", typeName)
	e.checkErr("deserializer.IncreaseContainerDepth()", "obj, err")
	for _, m := range members {
		read := fmt.Sprintf("if val, err := %s; err == nil { obj.%s = val } else { return obj, err }", deserializeCall(m.format), m.name)
		if m.defaultOnEOF {
			// absent from older encodings that end before the field
			e.p("if deserializer.Remaining() > 0 {")
			e.p("%s", read)
			e.p("}")
			continue
		}
		e.p("%s", read)
	}
	e.p("deserializer.DecreaseContainerDepth()")
	e.p("return obj, nil")
	e.p("}")
}

func (e *emitter) deserializeWrappers(name string) {
	for _, enc := range e.cfg.Encodings {
		e.p("")
		e.p("func %sDeserialize%s(input []byte) (%s, error) {", enc.Title(), name, name)
		e.p("if input == nil {")
		e.p("var obj %s", name)
		e.p("return obj, fmt.Errorf(%q)", "Cannot deserialize null array")
		e.p("}")
		e.p("deserializer := %s.NewDeserializer(input)", string(enc))
		e.p("obj, err := Deserialize%s(deserializer)", name)
		e.p("if err == nil && deserializer.GetBufferOffset() < uint64(len(input)) {")
		e.p("return obj, fmt.Errorf(%q)", "Some input bytes were not read")
		e.p("}")
		e.p("return obj, err")
		e.p("}")
	}
}

func (e *emitter) enum(name string, c format.ContainerFormat) {
	e.p("type %s interface {", name)
	e.p("is%s()", name)
	e.p("Serialize(serializer serde.Serializer) error")
	for _, enc := range e.cfg.Encodings {
		e.p("%sSerialize() ([]byte, error)", enc.Title())
	}
	e.p("}")

	e.p("")
	e.p("func Deserialize%s(deserializer serde.Deserializer) (%s, error) {", name, name)
	e.p("index, err := deserializer.DeserializeVariantIndex()")
	e.p("if err != nil { return nil, err }")
	e.p("")
	e.p("switch index {")
	for i, v := range c.Variants {
		e.p("case %d:", i)
		e.p("if val, err := load_%s__%s(deserializer); err == nil {", name, v.Name)
		e.p("return &val, nil")
		e.p("} else {")
		e.p("return nil, err")
		e.p("}")
	}
	e.p("default:")
	e.p("return nil, fmt.Errorf(\"Unknown variant index for %s: %%d\", index)", name)
	e.p("}")
	e.p("}")
	e.deserializeWrappers(name)

	for i, v := range c.Variants {
		variant := name + "__" + v.Name
		var (
			members []member
			newtype *format.Format
		)
		switch v.Kind {
		case format.VariantNewType:
			members, newtype = e.shape(format.ContainerNewTypeStruct, v.Value, nil, nil)
		case format.VariantTuple:
			members = positionalMembers(v.Elems)
		case format.VariantStruct:
			members = namedMembers(v.Fields)
		}
		index := i
		e.p("")
		e.typeDecl(variant, members, newtype)
		e.p("")
		e.p("func (*%s) is%s() {}", variant, name)
		e.serialize(variant, members, newtype, &index)
		e.serializeWrappers(variant)
		e.deserialize("load_"+variant, variant, members, newtype)
	}
}

func (e *emitter) helper(f format.Format) {
	name := mangle(f)
	t := goType(f)
	switch f.Kind {
	case format.KindOption:
		elem := *f.Elem
		e.p("func serialize_%s(value %s, serializer serde.Serializer) error {", name, t)
		e.p("if value != nil {")
		e.checkErr("serializer.SerializeOptionTag(true)", "err")
		e.checkErr(serializeCall(elem, "(*value)"), "err")
		e.p("} else {")
		e.checkErr("serializer.SerializeOptionTag(false)", "err")
		e.p("}")
		e.p("return nil")
		e.p("}")
		e.p("")
		e.p("func deserialize_%s(deserializer serde.Deserializer) (%s, error) {", name, t)
		e.p("tag, err := deserializer.DeserializeOptionTag()")
		e.p("if err != nil { return nil, err }")
		e.p("if !tag { return nil, nil }")
		e.p("value := new(%s)", goType(elem))
		e.p("if val, err := %s; err == nil { *value = val } else { return nil, err }", deserializeCall(elem))
		e.p("return value, nil")
		e.p("}")
	case format.KindSeq, format.KindShortSeq:
		elem := *f.Elem
		lenMethod := "Len"
		if f.Kind == format.KindShortSeq {
			lenMethod = "ShortLen"
		}
		e.p("func serialize_%s(value %s, serializer serde.Serializer) error {", name, t)
		e.checkErr(fmt.Sprintf("serializer.Serialize%s(uint64(len(value)))", lenMethod), "err")
		e.p("for _, item := range value {")
		e.checkErr(serializeCall(elem, "item"), "err")
		e.p("}")
		e.p("return nil")
		e.p("}")
		e.p("")
		e.p("func deserialize_%s(deserializer serde.Deserializer) (%s, error) {", name, t)
		e.p("length, err := deserializer.Deserialize%s()", lenMethod)
		e.p("if err != nil { return nil, err }")
		e.p("obj := make(%s, 0, serde.CapHint(length, deserializer))", t)
		e.p("for i := uint64(0); i < length; i++ {")
		e.p("if val, err := %s; err == nil { obj = append(obj, val) } else { return nil, err }", deserializeCall(elem))
		e.p("}")
		e.p("return obj, nil")
		e.p("}")
	case format.KindTuple:
		e.p("func serialize_%s(value %s, serializer serde.Serializer) error {", name, t)
		for i, elem := range f.Elems {
			e.checkErr(serializeCall(elem, fmt.Sprintf("value.Field%d", i)), "err")
		}
		e.p("return nil")
		e.p("}")
		e.p("")
		e.p("func deserialize_%s(deserializer serde.Deserializer) (%s, error) {", name, t)
		e.p("var obj %s", t)
		for i, elem := range f.Elems {
			e.p("if val, err := %s; err == nil { obj.Field%d = val } else { return obj, err }", deserializeCall(elem), i)
		}
		e.p("return obj, nil")
		e.p("}")
	}
}
