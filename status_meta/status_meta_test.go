package status_meta_test

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/node/basicnode"

	"github.com/vulcanize/go-codec-txmeta/codec"
	"github.com/vulcanize/go-codec-txmeta/failure"
	"github.com/vulcanize/go-codec-txmeta/schema"
	"github.com/vulcanize/go-codec-txmeta/shared"
	"github.com/vulcanize/go-codec-txmeta/status_meta"
)

var (
	// Err(BlockhashNotFound), fee 500, balances [1,2,3], legacy layout in bincode
	legacyMetaEnc = hexutil.MustDecode("0x" +
		"01000000" + "07000000" +
		"f401000000000000" +
		"0300000000000000" + "0100000000000000" + "0200000000000000" + "0300000000000000" +
		"0300000000000000" + "0100000000000000" + "0200000000000000" + "0300000000000000")
	balances = []int64{1, 2, 3}

	latestMetaNode ipld.Node
)

func TestStatusMetaCodec(t *testing.T) {
	testStatusMetaDecoding(t)
	testStatusMetaNodeContents(t)
	testStatusMetaEncoding(t)
	testStatusMetaCid(t)
}

func testStatusMetaDecoding(t *testing.T) {
	metaBuilder := basicnode.Prototype.Any.NewBuilder()
	metaReader := bytes.NewReader(legacyMetaEnc)
	if err := status_meta.Decode(metaBuilder, metaReader); err != nil {
		t.Fatalf("unable to decode legacy status meta into an IPLD node: %v", err)
	}
	latestMetaNode = metaBuilder.Build()
}

func testStatusMetaNodeContents(t *testing.T) {
	shared.TestStatusMetaNodeContent(t, latestMetaNode, 500, balances, balances)
	shared.TestStatusMetaStatus(t, latestMetaNode, "BlockhashNotFound")
	innerNode, err := latestMetaNode.LookupByString("innerInstructions")
	if err != nil {
		t.Fatalf("status meta missing innerInstructions: %v", err)
	}
	if !innerNode.IsNull() {
		t.Errorf("legacy status meta should decode with innerInstructions absent")
	}
}

func testStatusMetaEncoding(t *testing.T) {
	metaWriter := new(bytes.Buffer)
	if err := status_meta.Encode(latestMetaNode, metaWriter); err != nil {
		t.Fatalf("unable to encode status meta into writer: %v", err)
	}
	// the latest layout carries an explicit None tag for innerInstructions
	expected := append(append([]byte(nil), legacyMetaEnc...), 0)
	if !bytes.Equal(metaWriter.Bytes(), expected) {
		t.Errorf("status meta encoding (%x) does not match the expected consensus encoding (%x)", metaWriter.Bytes(), expected)
	}

	prefix := []byte{0xde, 0xad}
	appended, err := status_meta.AppendEncode(prefix, latestMetaNode)
	if err != nil {
		t.Fatalf("unable to append encode status meta: %v", err)
	}
	if !bytes.Equal(appended[:2], prefix) || !bytes.Equal(appended[2:], expected) {
		t.Errorf("append encode did not preserve the destination prefix: %x", appended)
	}
}

func testStatusMetaCid(t *testing.T) {
	c, err := status_meta.Default()
	if err != nil {
		t.Fatalf("unable to load default codec: %v", err)
	}
	if c.Code != status_meta.MultiCodecType {
		t.Errorf("default codec code %#x does not match MultiCodecType %#x", c.Code, status_meta.MultiCodecType)
	}
	id, err := c.Cid(legacyMetaEnc)
	if err != nil {
		t.Fatalf("unable to derive CID: %v", err)
	}
	if id.Prefix().Codec != status_meta.MultiCodecType {
		t.Errorf("CID codec %#x does not match MultiCodecType", id.Prefix().Codec)
	}
	digest := sha256.Sum256(legacyMetaEnc)
	if expected := shared.Sha256ToCid(status_meta.MultiCodecType, digest[:]); !id.Equals(expected) {
		t.Errorf("status meta cid (%s) does not match the digest cid (%s)", id, expected)
	}
}

func TestCodecs(t *testing.T) {
	codecs, err := status_meta.Codecs()
	if err != nil {
		t.Fatalf("unable to build codecs: %v", err)
	}
	if len(codecs) != len(schema.All())*len(codec.Encodings) {
		t.Fatalf("unexpected codec count %d", len(codecs))
	}
	seen := make(map[uint64]bool)
	for _, c := range codecs {
		if seen[c.Code] {
			t.Errorf("duplicate multicodec code %#x", c.Code)
		}
		seen[c.Code] = true
		if c.Code < 0x300000 || c.Code > 0x3fffff {
			t.Errorf("code %#x is outside the private-use range", c.Code)
		}
	}

	legacy, err := status_meta.NewCodec(schema.Legacy, codec.Bincode)
	if err != nil {
		t.Fatalf("unable to build legacy codec: %v", err)
	}
	nb := basicnode.Prototype.Any.NewBuilder()
	if err := legacy.DecodeBytes(nb, legacyMetaEnc); err != nil {
		t.Fatalf("unable to decode with legacy codec: %v", err)
	}
	if _, err := nb.Build().LookupByString("innerInstructions"); err == nil {
		t.Error("legacy layout should not carry innerInstructions")
	}

	if _, err := status_meta.NewCodec("unknown", codec.Bincode); err == nil {
		t.Error("expected unknown snapshot to be rejected")
	}
}

func TestDecodeGarbage(t *testing.T) {
	nb := basicnode.Prototype.Any.NewBuilder()
	// a four byte variant ordinal far past the Result variants
	garbage := append([]byte{0xff, 0xff, 0xff, 0x7f}, shared.RandomBytes(32)...)
	err := status_meta.DecodeBytes(nb, garbage)
	if err == nil {
		t.Fatal("expected random bytes to be rejected")
	}
	if !errors.Is(err, failure.Sentinel(failure.StageDecode, failure.KindInvalidVariant)) {
		t.Errorf("expected an invalid variant error, got %v", err)
	}
}
