// Package status_meta provides IPLD codecs for binary TransactionStatusMeta
// records. The package level Encode and Decode functions use the latest
// snapshot in bincode; NewCodec selects any snapshot and encoding.
package status_meta

import (
	"sync"

	"github.com/ipfs/go-cid"

	"github.com/vulcanize/go-codec-txmeta/codec"
	"github.com/vulcanize/go-codec-txmeta/failure"
	"github.com/vulcanize/go-codec-txmeta/registry"
	"github.com/vulcanize/go-codec-txmeta/schema"
	"github.com/vulcanize/go-codec-txmeta/shared"
)

// Codec encodes and decodes one snapshot layout in one encoding
type Codec struct {
	Snapshot schema.Snapshot
	Encoding codec.Encoding
	// Code is the private-use multicodec code of the pair
	Code uint64
	reg  *registry.Registry
}

// NewCodec returns the codec for the snapshot id and encoding
func NewCodec(snapshotID string, enc codec.Encoding) (*Codec, error) {
	for i, snap := range schema.All() {
		if snap.ID != snapshotID {
			continue
		}
		if _, err := enc.NewSerializer(); err != nil {
			return nil, err
		}
		reg, err := snap.Registry()
		if err != nil {
			return nil, err
		}
		return &Codec{Snapshot: snap, Encoding: enc, Code: codeFor(i, enc), reg: reg}, nil
	}
	return nil, failure.New(failure.StageConfig, failure.KindInvalidInput).Detail("unknown snapshot %q", snapshotID).Build()
}

// Registry returns the finalized registry backing the codec
func (c *Codec) Registry() *registry.Registry {
	return c.reg
}

// Cid returns the CIDv1 of an encoded record under the codec's multicodec code
func (c *Codec) Cid(enc []byte) (cid.Cid, error) {
	return shared.RawToCid(c.Code, MultiHashType, enc)
}

// Codecs returns a codec for every snapshot and encoding pair, oldest snapshot first
func Codecs() ([]*Codec, error) {
	var out []*Codec
	for _, snap := range schema.All() {
		for _, enc := range codec.Encodings {
			c, err := NewCodec(snap.ID, enc)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}

var (
	defaultCodec     *Codec
	defaultCodecErr  error
	defaultCodecOnce sync.Once
)

// Default returns the latest snapshot's bincode codec
func Default() (*Codec, error) {
	defaultCodecOnce.Do(func() {
		defaultCodec, defaultCodecErr = NewCodec(schema.InnerInstructions, codec.Bincode)
	})
	return defaultCodec, defaultCodecErr
}
