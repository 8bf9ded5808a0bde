package golang

import (
	"fmt"
	"go/token"
	"strings"
	"unicode"

	"github.com/vulcanize/go-codec-txmeta/format"
)

// exported turns a camelCase or snake_case field name into an exported Go identifier
func exported(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func validIdentifier(name string) bool {
	return token.IsIdentifier(name) && !token.IsKeyword(name)
}

// mangle names the helper functions of a composite format the way
// serde-generate does, e.g. vector_u64 or option_vector_InnerInstructions
func mangle(f format.Format) string {
	switch f.Kind {
	case format.KindTypeName:
		return f.Name
	case format.KindOption:
		return "option_" + mangle(*f.Elem)
	case format.KindSeq:
		return "vector_" + mangle(*f.Elem)
	case format.KindShortSeq:
		return "shortvector_" + mangle(*f.Elem)
	case format.KindTuple:
		parts := make([]string, len(f.Elems))
		for i, e := range f.Elems {
			parts[i] = mangle(e)
		}
		return fmt.Sprintf("tuple%d_%s", len(f.Elems), strings.Join(parts, "_"))
	}
	return strings.ToLower(f.Kind.String())
}

var primitiveTypes = map[format.Kind]string{
	format.KindUnit:  "struct{}",
	format.KindBool:  "bool",
	format.KindU8:    "uint8",
	format.KindU16:   "uint16",
	format.KindU32:   "uint32",
	format.KindU64:   "uint64",
	format.KindI32:   "int32",
	format.KindI64:   "int64",
	format.KindStr:   "string",
	format.KindBytes: "[]byte",
}

// runtimeMethods is the serde runtime method suffix per primitive, as in SerializeU8
var runtimeMethods = map[format.Kind]string{
	format.KindUnit:  "Unit",
	format.KindBool:  "Bool",
	format.KindU8:    "U8",
	format.KindU16:   "U16",
	format.KindU32:   "U32",
	format.KindU64:   "U64",
	format.KindI32:   "I32",
	format.KindI64:   "I64",
	format.KindStr:   "Str",
	format.KindBytes: "Bytes",
}

func goType(f format.Format) string {
	if t, ok := primitiveTypes[f.Kind]; ok {
		return t
	}
	switch f.Kind {
	case format.KindTypeName:
		return f.Name
	case format.KindOption:
		return "*" + goType(*f.Elem)
	case format.KindSeq, format.KindShortSeq:
		return "[]" + goType(*f.Elem)
	case format.KindTuple:
		fields := make([]string, len(f.Elems))
		for i, e := range f.Elems {
			fields[i] = fmt.Sprintf("Field%d %s", i, goType(e))
		}
		return "struct {" + strings.Join(fields, "; ") + "}"
	}
	return "invalid"
}

// needsHelper reports whether the format is (de)serialized through a generated helper
func needsHelper(f format.Format) bool {
	switch f.Kind {
	case format.KindOption, format.KindSeq, format.KindShortSeq, format.KindTuple:
		return true
	}
	return false
}

// serializeCall is an expression of type error that writes expr
func serializeCall(f format.Format, expr string) string {
	if m, ok := runtimeMethods[f.Kind]; ok {
		return fmt.Sprintf("serializer.Serialize%s(%s)", m, expr)
	}
	if f.Kind == format.KindTypeName {
		return expr + ".Serialize(serializer)"
	}
	return fmt.Sprintf("serialize_%s(%s, serializer)", mangle(f), expr)
}

// deserializeCall is an expression of type (T, error) reading a value of f
func deserializeCall(f format.Format) string {
	if m, ok := runtimeMethods[f.Kind]; ok {
		return fmt.Sprintf("deserializer.Deserialize%s()", m)
	}
	if f.Kind == format.KindTypeName {
		return fmt.Sprintf("Deserialize%s(deserializer)", f.Name)
	}
	return fmt.Sprintf("deserialize_%s(deserializer)", mangle(f))
}
