package codec_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	ipld "github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/node/basicnode"

	"github.com/vulcanize/go-codec-txmeta/codec"
	"github.com/vulcanize/go-codec-txmeta/failure"
	"github.com/vulcanize/go-codec-txmeta/registry"
	"github.com/vulcanize/go-codec-txmeta/samples"
	"github.com/vulcanize/go-codec-txmeta/schema"
)

const (
	balancesBincode = "0300000000000000" + "0100000000000000" + "0200000000000000" + "0300000000000000"
	balancesBCS     = "03" + "0100000000000000" + "0200000000000000" + "0300000000000000"
	feeHex          = "f401000000000000"
)

var (
	okMetaBincode = "0x" + "00000000" + feeHex + balancesBincode + balancesBincode
	okMetaBCS     = "0x" + "00" + feeHex + balancesBCS + balancesBCS
	// Err(InstructionError(123, InsufficientFunds))
	insufficientFundsBincode = "0x" + "01000000" + "08000000" + "7b" + "05000000" + feeHex + balancesBincode + balancesBincode
	innerPresentBincode      = okMetaBincode + "01" + "0100000000000000" + "00" + "0100000000000000" + "01" + "03010203" + "03010203"
)

func finalize(t *testing.T, id string) (schema.Snapshot, *registry.Registry, []ipld.Node) {
	snap, ok := schema.ByID(id)
	if !ok {
		t.Fatalf("unknown snapshot %s", id)
	}
	b := registry.NewBuilder()
	snap.Declare(b)
	nodes, err := samples.Build(snap, b)
	if err != nil {
		t.Fatalf("unable to build samples: %v", err)
	}
	reg, err := b.Finalize()
	if err != nil {
		t.Fatalf("unable to finalize registry: %v", err)
	}
	return snap, reg, nodes
}

func okMeta(t *testing.T, inner bool) ipld.Node {
	n, err := qp.BuildMap(basicnode.Prototype.Any, -1, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "status", qp.Map(1, func(ma datamodel.MapAssembler) {
			qp.MapEntry(ma, "Ok", qp.Null())
		}))
		qp.MapEntry(ma, "fee", qp.Int(500))
		for _, key := range []string{"preBalances", "postBalances"} {
			qp.MapEntry(ma, key, qp.List(3, func(la datamodel.ListAssembler) {
				qp.ListEntry(la, qp.Int(1))
				qp.ListEntry(la, qp.Int(2))
				qp.ListEntry(la, qp.Int(3))
			}))
		}
		if inner {
			qp.MapEntry(ma, "innerInstructions", qp.Null())
		}
	})
	if err != nil {
		t.Fatalf("unable to build node: %v", err)
	}
	return n
}

func decode(t *testing.T, reg *registry.Registry, enc codec.Encoding, src []byte) ipld.Node {
	nb := basicnode.Prototype.Any.NewBuilder()
	if err := codec.Unmarshal(reg, schema.TransactionStatusMeta, enc, src, nb); err != nil {
		t.Fatalf("unable to decode %s bytes %s: %v", enc, hexutil.Encode(src), err)
	}
	return nb.Build()
}

func TestGoldenOkMeta(t *testing.T) {
	_, reg, _ := finalize(t, schema.Legacy)
	node := okMeta(t, false)

	tests := map[codec.Encoding]string{
		codec.Bincode: okMetaBincode,
		codec.BCS:     okMetaBCS,
	}
	for enc, want := range tests {
		got, err := codec.Marshal(reg, schema.TransactionStatusMeta, node, enc)
		if err != nil {
			t.Fatalf("unable to encode with %s: %v", enc, err)
		}
		if hexutil.Encode(got) != want {
			t.Errorf("%s encoding mismatch\r\nexpected: %s\r\nactual: %s", enc, want, hexutil.Encode(got))
		}
		decoded := decode(t, reg, enc, got)
		if !datamodel.DeepEqual(node, decoded) {
			t.Errorf("%s decoded node does not match the original", enc)
		}
	}
}

func TestGoldenInstructionError(t *testing.T) {
	_, reg, _ := finalize(t, schema.Legacy)
	decoded := decode(t, reg, codec.Bincode, hexutil.MustDecode(insufficientFundsBincode))

	status, _ := decoded.LookupByString("status")
	errNode, err := status.LookupByString("Err")
	if err != nil {
		t.Fatalf("expected an Err status: %v", err)
	}
	payload, err := errNode.LookupByString("InstructionError")
	if err != nil {
		t.Fatalf("expected an InstructionError: %v", err)
	}
	idx, _ := payload.LookupByIndex(0)
	if v, _ := idx.AsInt(); v != 123 {
		t.Errorf("expected instruction index 123, got %d", v)
	}
	variant, _ := payload.LookupByIndex(1)
	if s, _ := variant.AsString(); s != "InsufficientFunds" {
		t.Errorf("expected InsufficientFunds, got %q", s)
	}

	again, err := codec.Marshal(reg, schema.TransactionStatusMeta, decoded, codec.Bincode)
	if err != nil {
		t.Fatalf("unable to re-encode: %v", err)
	}
	if hexutil.Encode(again) != insufficientFundsBincode {
		t.Errorf("re-encoding changed the bytes: %s", hexutil.Encode(again))
	}
}

func TestGoldenInnerInstructions(t *testing.T) {
	_, reg, nodes := finalize(t, schema.InnerInstructions)
	// the first sample is Ok with innerInstructions present
	got, err := codec.Marshal(reg, schema.TransactionStatusMeta, nodes[0], codec.Bincode)
	if err != nil {
		t.Fatalf("unable to encode: %v", err)
	}
	if hexutil.Encode(got) != innerPresentBincode {
		t.Errorf("encoding mismatch\r\nexpected: %s\r\nactual: %s", innerPresentBincode, hexutil.Encode(got))
	}
}

func TestRoundTripAllSamples(t *testing.T) {
	for _, id := range schema.IDs() {
		_, reg, nodes := finalize(t, id)
		for _, enc := range codec.Encodings {
			for i, node := range nodes {
				first, err := codec.Marshal(reg, schema.TransactionStatusMeta, node, enc)
				if err != nil {
					t.Fatalf("%s/%s sample %d: unable to encode: %v", id, enc, i, err)
				}
				decoded := decode(t, reg, enc, first)
				if !datamodel.DeepEqual(node, decoded) {
					t.Errorf("%s/%s sample %d: decoded node differs", id, enc, i)
				}
				second, err := codec.Marshal(reg, schema.TransactionStatusMeta, decoded, enc)
				if err != nil {
					t.Fatalf("%s/%s sample %d: unable to re-encode: %v", id, enc, i, err)
				}
				if !bytes.Equal(first, second) {
					t.Errorf("%s/%s sample %d: re-encoding changed the bytes", id, enc, i)
				}
			}
		}
	}
}

func TestBackwardCompatibleDecode(t *testing.T) {
	_, latest, _ := finalize(t, schema.InnerInstructions)
	for _, id := range []string{schema.Legacy, schema.Sanitized} {
		_, older, _ := finalize(t, id)
		for _, enc := range codec.Encodings {
			src, err := codec.Marshal(older, schema.TransactionStatusMeta, okMeta(t, false), enc)
			if err != nil {
				t.Fatalf("unable to encode %s meta: %v", id, err)
			}
			decoded := decode(t, latest, enc, src)
			inner, err := decoded.LookupByString("innerInstructions")
			if err != nil {
				t.Fatalf("decoded meta lacks innerInstructions: %v", err)
			}
			if !inner.IsNull() {
				t.Errorf("%s/%s: expected innerInstructions to be absent", id, enc)
			}
			if !datamodel.DeepEqual(okMeta(t, true), decoded) {
				t.Errorf("%s/%s: decoded node differs", id, enc)
			}
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	_, reg, _ := finalize(t, schema.Legacy)
	valid := hexutil.MustDecode(okMetaBincode)

	tests := []struct {
		name string
		enc  codec.Encoding
		src  []byte
		kind failure.Kind
	}{
		{"trailing bytes", codec.Bincode, append(append([]byte(nil), valid...), 0), failure.KindTrailingBytes},
		{"truncated", codec.Bincode, valid[:len(valid)-3], failure.KindUnexpectedEOF},
		{"unknown result ordinal", codec.Bincode, append([]byte{2, 0, 0, 0}, valid[4:]...), failure.KindInvalidVariant},
		{"non-canonical uleb128", codec.BCS, []byte{0x80, 0x00}, failure.KindNonCanonical},
		{"oversized uleb128", codec.BCS, []byte{0xff, 0xff, 0xff, 0xff, 0x1f}, failure.KindOverflow},
	}
	for _, test := range tests {
		nb := basicnode.Prototype.Any.NewBuilder()
		err := codec.Unmarshal(reg, schema.TransactionStatusMeta, test.enc, test.src, nb)
		if err == nil {
			t.Errorf("%s: expected an error", test.name)
			continue
		}
		if !errors.Is(err, failure.Sentinel(failure.StageDecode, test.kind)) {
			t.Errorf("%s: expected %s, got %v", test.name, test.kind, err)
		}
	}
}

func TestEncodeErrors(t *testing.T) {
	_, reg, _ := finalize(t, schema.Legacy)
	node, err := qp.BuildMap(basicnode.Prototype.Any, -1, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "status", qp.String("Ok"))
		qp.MapEntry(ma, "fee", qp.Int(-1))
		qp.MapEntry(ma, "preBalances", qp.List(0, func(datamodel.ListAssembler) {}))
		qp.MapEntry(ma, "postBalances", qp.List(0, func(datamodel.ListAssembler) {}))
	})
	if err != nil {
		t.Fatal(err)
	}
	// Ok carries a payload so the bare string form is rejected
	_, err = codec.Marshal(reg, schema.TransactionStatusMeta, node, codec.Bincode)
	if !errors.Is(err, failure.Sentinel(failure.StageEncode, failure.KindTypeMismatch)) {
		t.Errorf("expected a type mismatch, got %v", err)
	}

	if _, err := codec.ParseEncoding("json"); err == nil {
		t.Error("expected unknown encoding to be rejected")
	}
	if enc, err := codec.ParseEncoding("BCS"); err != nil || enc != codec.BCS {
		t.Errorf("unexpected parse result %q, %v", enc, err)
	}
}
