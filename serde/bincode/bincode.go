// Package bincode implements the serde runtime for bincode's default fixint
// layout: u64 little-endian sequence lengths and u32 little-endian variant
// ordinals.
package bincode

import (
	"math"

	bin "github.com/gagliardetto/binary"

	"github.com/vulcanize/go-codec-txmeta/failure"
	"github.com/vulcanize/go-codec-txmeta/serde"
)

// MaxContainerDepth is unlimited for bincode
const MaxContainerDepth = math.MaxUint64

// Serializer is a bincode serde.Serializer
type Serializer struct {
	*serde.BinarySerializer
}

var _ serde.Serializer = (*Serializer)(nil)

// NewSerializer returns a bincode serializer writing into a fresh buffer
func NewSerializer() *Serializer {
	return &Serializer{serde.NewBinarySerializer(MaxContainerDepth)}
}

func (s *Serializer) SerializeLen(value uint64) error {
	return s.Encoder.WriteUint64(value, bin.LE)
}

func (s *Serializer) SerializeVariantIndex(value uint32) error {
	return s.Encoder.WriteUint32(value, bin.LE)
}

func (s *Serializer) SerializeBytes(value []byte) error {
	return s.WriteBytes(value, s.SerializeLen)
}

func (s *Serializer) SerializeStr(value string) error {
	return s.WriteStr(value, s.SerializeLen)
}

// Deserializer is a bincode serde.Deserializer
type Deserializer struct {
	*serde.BinaryDeserializer
}

var _ serde.Deserializer = (*Deserializer)(nil)

// NewDeserializer returns a bincode deserializer over input
func NewDeserializer(input []byte) *Deserializer {
	return &Deserializer{serde.NewBinaryDeserializer(input, MaxContainerDepth)}
}

func (d *Deserializer) DeserializeLen() (uint64, error) {
	if err := d.Need(8, "sequence length"); err != nil {
		return 0, err
	}
	n, err := d.Decoder.ReadUint64(bin.LE)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt32 {
		return 0, failure.New(failure.StageDecode, failure.KindOverflow).
			Detail("sequence length %d is too large", n).Build()
	}
	return n, nil
}

func (d *Deserializer) DeserializeVariantIndex() (uint32, error) {
	if err := d.Need(4, "variant index"); err != nil {
		return 0, err
	}
	return d.Decoder.ReadUint32(bin.LE)
}

func (d *Deserializer) DeserializeBytes() ([]byte, error) {
	return d.ReadBytes(d.DeserializeLen)
}

func (d *Deserializer) DeserializeStr() (string, error) {
	return d.ReadStr(d.DeserializeLen)
}
