package golang_test

import (
	"bytes"
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulcanize/go-codec-txmeta/codec"
	"github.com/vulcanize/go-codec-txmeta/failure"
	"github.com/vulcanize/go-codec-txmeta/format"
	"github.com/vulcanize/go-codec-txmeta/golang"
	"github.com/vulcanize/go-codec-txmeta/registry"
	"github.com/vulcanize/go-codec-txmeta/schema"
)

func snapshotRegistry(t *testing.T, id string) *registry.Registry {
	snap, ok := schema.ByID(id)
	require.True(t, ok)
	reg, err := snap.Registry()
	require.NoError(t, err)
	return reg
}

// declarations parses src and returns its top-level type specs and function names
func declarations(t *testing.T, src []byte) (map[string]*ast.TypeSpec, map[string]bool) {
	file, err := parser.ParseFile(token.NewFileSet(), "bindings.go", src, parser.ParseComments)
	require.NoError(t, err)
	types := make(map[string]*ast.TypeSpec)
	funcs := make(map[string]bool)
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				if ts, ok := spec.(*ast.TypeSpec); ok {
					types[ts.Name.Name] = ts
				}
			}
		case *ast.FuncDecl:
			name := d.Name.Name
			if d.Recv != nil && len(d.Recv.List) == 1 {
				if star, ok := d.Recv.List[0].Type.(*ast.StarExpr); ok {
					name = star.X.(*ast.Ident).Name + "." + name
				}
			}
			funcs[name] = true
		}
	}
	return types, funcs
}

func TestSourceDeclaresEveryContainer(t *testing.T) {
	for _, id := range schema.IDs() {
		reg := snapshotRegistry(t, id)
		gen := golang.NewCodeGenerator(golang.Config{
			ModuleName: id,
			Encodings:  codec.Encodings,
		})
		src, err := gen.Source(reg)
		require.NoError(t, err, "snapshot %s", id)

		types, funcs := declarations(t, src)
		for _, name := range reg.Names() {
			require.Contains(t, types, name, "snapshot %s", id)
			assert.True(t, funcs["Deserialize"+name], "snapshot %s: Deserialize%s", id, name)
			for _, enc := range codec.Encodings {
				assert.True(t, funcs[enc.Title()+"Deserialize"+name], "snapshot %s: %sDeserialize%s", id, enc.Title(), name)
			}

			c, _ := reg.Lookup(name)
			if c.Kind != format.ContainerEnum {
				assert.True(t, funcs[name+".Serialize"], "snapshot %s: %s.Serialize", id, name)
				continue
			}
			_, isInterface := types[name].Type.(*ast.InterfaceType)
			assert.True(t, isInterface, "enum %s should be an interface", name)
			for _, v := range c.Variants {
				variant := name + "__" + v.Name
				require.Contains(t, types, variant)
				assert.True(t, funcs[variant+".is"+name])
				assert.True(t, funcs[variant+".Serialize"])
				assert.True(t, funcs["load_"+variant])
			}
		}
	}
}

func TestSourceShapes(t *testing.T) {
	reg := snapshotRegistry(t, schema.InnerInstructions)
	src, err := golang.NewCodeGenerator(golang.Config{
		ModuleName: "inner_instructions",
		Encodings:  []codec.Encoding{codec.Bincode},
	}).Source(reg)
	require.NoError(t, err)
	types, funcs := declarations(t, src)

	// a newtype over an enum cannot carry methods directly
	_, isStruct := types["Result__Err"].Type.(*ast.StructType)
	assert.True(t, isStruct)

	assert.True(t, funcs["serialize_option_vector_InnerInstructions"])
	assert.True(t, funcs["deserialize_shortvector_u8"])
	assert.True(t, funcs["serialize_vector_u64"])
	assert.False(t, funcs["BcsDeserializeResult"])

	text := string(src)
	assert.True(t, strings.HasPrefix(text, "// Code generated by txmeta-gen. DO NOT EDIT."))
	assert.Contains(t, text, `"github.com/vulcanize/go-codec-txmeta/serde/bincode"`)
	assert.NotContains(t, text, `"github.com/vulcanize/go-codec-txmeta/serde/bcs"`)
	assert.Contains(t, text, "serializer.SerializeShortLen(")
	assert.Contains(t, text, "if deserializer.Remaining() > 0 {")
}

func TestSourceIsDeterministic(t *testing.T) {
	reg := snapshotRegistry(t, schema.Sanitized)
	cfg := golang.Config{
		ModuleName: "sanitized",
		Encodings:  codec.Encodings,
		Comments:   []string{"fingerprint bafy-test"},
	}
	first := new(bytes.Buffer)
	second := new(bytes.Buffer)
	require.NoError(t, golang.NewCodeGenerator(cfg).Output(first, reg))
	require.NoError(t, golang.NewCodeGenerator(cfg).Output(second, reg))
	assert.Equal(t, first.Bytes(), second.Bytes())
	assert.Contains(t, first.String(), "// fingerprint bafy-test\n")
}

func TestSourceCustomContainers(t *testing.T) {
	b := registry.NewBuilder()
	b.Accumulate("Empty", format.UnitStruct())
	b.Accumulate("Slot", format.NewTypeStruct(format.U64))
	b.Accumulate("Pair", format.TupleStruct(format.U32, format.Str))
	b.Accumulate("Maybe", format.NewTypeStruct(format.Option(format.Bool)))
	b.Accumulate("Holder", format.Struct(
		format.Field("slot", format.TypeName("Slot")),
		format.Field("pairs", format.Seq(format.Tuple(format.I64, format.Bytes))),
		format.Field("empty", format.TypeName("Empty")),
	))
	reg, err := b.Finalize()
	require.NoError(t, err)

	src, err := golang.NewCodeGenerator(golang.Config{
		ModuleName: "custom",
		Encodings:  []codec.Encoding{codec.BCS},
	}).Source(reg)
	require.NoError(t, err)
	types, funcs := declarations(t, src)

	assert.IsType(t, &ast.Ident{}, types["Slot"].Type)
	assert.IsType(t, &ast.StructType{}, types["Maybe"].Type)
	assert.True(t, funcs["serialize_vector_tuple2_i64_bytes"])
	assert.True(t, funcs["deserialize_tuple2_i64_bytes"])
	assert.True(t, funcs["BcsDeserializeHolder"])
}

func TestSourceErrors(t *testing.T) {
	reg := snapshotRegistry(t, schema.Legacy)

	collide := registry.NewBuilder()
	collide.Accumulate("Clash", format.Struct(
		format.Field("a_b", format.U8),
		format.Field("aB", format.U8),
	))
	collideReg, err := collide.Finalize()
	require.NoError(t, err)

	badName := registry.NewBuilder()
	badName.Accumulate("Odd", format.Struct(format.Field("2fast", format.U8)))
	badNameReg, err := badName.Finalize()
	require.NoError(t, err)

	cases := []struct {
		name string
		cfg  golang.Config
		reg  *registry.Registry
		kind failure.Kind
	}{
		{"no encodings", golang.Config{ModuleName: "legacy"}, reg, failure.KindInvalidInput},
		{"bad module name", golang.Config{ModuleName: "not-a-name", Encodings: codec.Encodings}, reg, failure.KindInvalidInput},
		{"keyword module name", golang.Config{ModuleName: "type", Encodings: codec.Encodings}, reg, failure.KindInvalidInput},
		{"unknown encoding", golang.Config{ModuleName: "legacy", Encodings: []codec.Encoding{"lcs"}}, reg, failure.KindUnsupported},
		{"duplicate encoding", golang.Config{ModuleName: "legacy", Encodings: []codec.Encoding{codec.BCS, codec.BCS}}, reg, failure.KindInvalidInput},
		{"field collision", golang.Config{ModuleName: "clash", Encodings: codec.Encodings}, collideReg, failure.KindUnsupported},
		{"field identifier", golang.Config{ModuleName: "odd", Encodings: codec.Encodings}, badNameReg, failure.KindUnsupported},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := new(bytes.Buffer)
			err := golang.NewCodeGenerator(tc.cfg).Output(out, tc.reg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, failure.Sentinel(failure.StageGenerate, tc.kind)), "got %v", err)
			assert.Zero(t, out.Len())
		})
	}
}
