package registry_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/ipld/go-ipld-prime/codec/dagjson"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulcanize/go-codec-txmeta/failure"
	"github.com/vulcanize/go-codec-txmeta/format"
	"github.com/vulcanize/go-codec-txmeta/registry"
)

func accumulateMeta(b *registry.Builder) {
	b.Accumulate("TransactionStatusMeta", format.Struct(
		format.Field("status", format.TypeName("Result")),
		format.Field("fee", format.U64),
		format.Named{Name: "innerInstructions", Value: format.Option(format.Seq(format.U8)), DefaultOnEOF: true},
	))
	b.Accumulate("Result", format.Enum(
		format.NewTypeVariant("Ok", format.Unit),
		format.NewTypeVariant("Err", format.TypeName("TransactionError")),
	))
	b.Accumulate("TransactionError", format.Enum(
		format.UnitVariant("AccountInUse"),
		format.TupleVariant("InstructionError", format.U8, format.U32),
	))
}

func TestFinalize(t *testing.T) {
	b := registry.NewBuilder()
	accumulateMeta(b)
	// redeclaring with the same shape is harmless
	b.Accumulate("Result", format.Enum(
		format.NewTypeVariant("Ok", format.Unit),
		format.NewTypeVariant("Err", format.TypeName("TransactionError")),
	))

	reg, err := b.Finalize()
	require.NoError(t, err)
	assert.Equal(t, []string{"Result", "TransactionError", "TransactionStatusMeta"}, reg.Names())
	assert.Equal(t, 3, reg.Len())

	c, ok := reg.Lookup("TransactionError")
	require.True(t, ok)
	assert.Equal(t, format.ContainerEnum, c.Kind)
	assert.Len(t, c.Variants, 2)

	assert.Equal(t, []string{"Result", "TransactionError"}, reg.Reachable("Result"))
}

func TestFinalizeReportsEveryProblem(t *testing.T) {
	b := registry.NewBuilder()
	b.Accumulate("Meta", format.Struct(
		format.Field("status", format.TypeName("Missing")),
		format.Named{Name: "inner", Value: format.U8, DefaultOnEOF: true},
	))
	b.Accumulate("Empty", format.Enum())
	b.Accumulate("Dup", format.Enum(format.UnitVariant("A"), format.UnitVariant("A")))
	b.Accumulate("Dup", format.Struct(format.Field("a", format.U8)))

	_, err := b.Finalize()
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 5)

	assert.True(t, errors.Is(err, failure.Sentinel(failure.StageFinalize, failure.KindContradiction)))
	assert.True(t, errors.Is(err, failure.Sentinel(failure.StageFinalize, failure.KindUnknownType)))
	assert.True(t, errors.Is(err, failure.Sentinel(failure.StageFinalize, failure.KindIncomplete)))
	assert.True(t, errors.Is(err, failure.Sentinel(failure.StageFinalize, failure.KindDuplicateDeclare)))
	assert.True(t, errors.Is(err, failure.Sentinel(failure.StageFinalize, failure.KindUnsupported)))
}

func TestFinalizeRejectsFieldAfterDefaultOnEOF(t *testing.T) {
	b := registry.NewBuilder()
	b.Accumulate("Meta", format.Struct(
		format.Named{Name: "inner", Value: format.Option(format.U8), DefaultOnEOF: true},
		format.Field("fee", format.U64),
	))
	_, err := b.Finalize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "follows a default-on-EOF field")
}

func TestFinalizeOrderIndependent(t *testing.T) {
	forward := registry.NewBuilder()
	accumulateMeta(forward)

	backward := registry.NewBuilder()
	backward.Accumulate("TransactionError", format.Enum(
		format.UnitVariant("AccountInUse"),
		format.TupleVariant("InstructionError", format.U8, format.U32),
	))
	backward.Accumulate("Result", format.Enum(
		format.NewTypeVariant("Ok", format.Unit),
		format.NewTypeVariant("Err", format.TypeName("TransactionError")),
	))
	backward.Accumulate("TransactionStatusMeta", format.Struct(
		format.Field("status", format.TypeName("Result")),
		format.Field("fee", format.U64),
		format.Named{Name: "innerInstructions", Value: format.Option(format.Seq(format.U8)), DefaultOnEOF: true},
	))

	a, err := forward.Finalize()
	require.NoError(t, err)
	b, err := backward.Finalize()
	require.NoError(t, err)

	fa, err := a.Fingerprint()
	require.NoError(t, err)
	fb, err := b.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
}

func TestFingerprintTracksShape(t *testing.T) {
	b := registry.NewBuilder()
	accumulateMeta(b)
	a, err := b.Finalize()
	require.NoError(t, err)

	grown := registry.NewBuilder()
	accumulateMeta(grown)
	grown.Accumulate("Extra", format.UnitStruct())
	g, err := grown.Finalize()
	require.NoError(t, err)

	fa, err := a.Fingerprint()
	require.NoError(t, err)
	fg, err := g.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, fa, fg)
	assert.Equal(t, uint64(1), fa.Version())
}

func TestEncodeYAML(t *testing.T) {
	b := registry.NewBuilder()
	accumulateMeta(b)
	reg, err := b.Finalize()
	require.NoError(t, err)

	buf := new(bytes.Buffer)
	require.NoError(t, reg.EncodeYAML(buf))
	out := buf.String()
	for _, want := range []string{
		"TransactionStatusMeta:\n  STRUCT:\n",
		"- fee: U64",
		"DEFAULT_ON_EOF:",
		"AccountInUse: UNIT",
		"TYPENAME: TransactionError",
	} {
		assert.True(t, strings.Contains(out, want), "yaml output missing %q:\n%s", want, out)
	}
}

func TestEncodeDAGJSON(t *testing.T) {
	b := registry.NewBuilder()
	accumulateMeta(b)
	reg, err := b.Finalize()
	require.NoError(t, err)

	buf := new(bytes.Buffer)
	require.NoError(t, reg.EncodeDAGJSON(buf))

	nb := basicnode.Prototype.Any.NewBuilder()
	require.NoError(t, dagjson.Decode(nb, bytes.NewReader(buf.Bytes())))
	decoded := nb.Build()
	assert.Equal(t, datamodel.Kind_Map, decoded.Kind())
	assert.Equal(t, int64(reg.Len()), decoded.Length())

	again := new(bytes.Buffer)
	require.NoError(t, dagjson.Encode(decoded, again))
	assert.Equal(t, buf.String(), again.String())
}
