package status_meta

import (
	"io"
	"io/ioutil"

	ipld "github.com/ipld/go-ipld-prime"
	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"

	"github.com/vulcanize/go-codec-txmeta/codec"
	"github.com/vulcanize/go-codec-txmeta/schema"
)

var (
	// MultiCodecType is the private-use code of the latest snapshot in bincode
	MultiCodecType = codeFor(len(schema.All())-1, codec.Bincode)
	MultiHashType  = uint64(multihash.SHA2_256)
)

// privateUseBase is the start of the multicodec private-use range
const privateUseBase = 0x300000

func codeFor(snapshotIdx int, enc codec.Encoding) uint64 {
	offset := uint64(0)
	if enc == codec.BCS {
		offset = 1
	}
	return privateUseBase + uint64(snapshotIdx)*2 + offset
}

// Decode provides an IPLD codec decode interface for TransactionStatusMeta
// IPLDs in the latest layout. This function is registered via the
// go-ipld-prime link loader for MultiCodecType by the plugin package.
func Decode(na ipld.NodeAssembler, in io.Reader) error {
	c, err := Default()
	if err != nil {
		return err
	}
	return c.Decode(na, in)
}

// DecodeBytes is like Decode, but it uses an input buffer directly.
// Decode will grab or read all the bytes from an io.Reader anyway, so this can
// save having to copy the bytes or create a bytes.Buffer.
func DecodeBytes(na ipld.NodeAssembler, src []byte) error {
	c, err := Default()
	if err != nil {
		return err
	}
	return c.DecodeBytes(na, src)
}

// Decode reads a TransactionStatusMeta in the codec's snapshot and encoding
func (c *Codec) Decode(na ipld.NodeAssembler, in io.Reader) error {
	var src []byte
	if buf, ok := in.(interface{ Bytes() []byte }); ok {
		src = buf.Bytes()
	} else {
		var err error
		src, err = ioutil.ReadAll(in)
		if err != nil {
			return err
		}
	}
	return c.DecodeBytes(na, src)
}

// DecodeBytes is like Decode, but it uses an input buffer directly
func (c *Codec) DecodeBytes(na ipld.NodeAssembler, src []byte) error {
	if err := codec.Unmarshal(c.reg, c.Snapshot.Root, c.Encoding, src, na); err != nil {
		return errors.Wrapf(err, "invalid %s TransactionStatusMeta binary", c.Snapshot.ID)
	}
	return nil
}
