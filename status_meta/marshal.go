package status_meta

import (
	"io"

	ipld "github.com/ipld/go-ipld-prime"
	"github.com/pkg/errors"

	"github.com/vulcanize/go-codec-txmeta/codec"
)

// Encode provides an IPLD codec encode interface for TransactionStatusMeta
// IPLDs in the latest layout. This function is registered via the
// go-ipld-prime link loader for MultiCodecType by the plugin package.
func Encode(node ipld.Node, w io.Writer) error {
	c, err := Default()
	if err != nil {
		return err
	}
	return c.Encode(node, w)
}

// AppendEncode is like Encode, but it uses a destination buffer directly.
// This means less copying of bytes, and if the destination has enough capacity,
// fewer allocations.
func AppendEncode(enc []byte, node ipld.Node) ([]byte, error) {
	c, err := Default()
	if err != nil {
		return enc, err
	}
	return c.AppendEncode(enc, node)
}

// Encode writes node in the codec's snapshot and encoding
func (c *Codec) Encode(node ipld.Node, w io.Writer) error {
	// 1KiB covers every sample meta without growing the buffer
	enc := make([]byte, 0, 1024)

	enc, err := c.AppendEncode(enc, node)
	if err != nil {
		return err
	}
	_, err = w.Write(enc)
	return err
}

// AppendEncode is like Encode, but it uses a destination buffer directly
func (c *Codec) AppendEncode(enc []byte, node ipld.Node) ([]byte, error) {
	b, err := codec.Marshal(c.reg, c.Snapshot.Root, node, c.Encoding)
	if err != nil {
		return enc, errors.Wrapf(err, "invalid %s TransactionStatusMeta form", c.Snapshot.ID)
	}
	return append(enc, b...), nil
}
