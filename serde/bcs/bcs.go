// Package bcs implements the serde runtime for BCS: ULEB128 sequence lengths
// and variant ordinals, both canonical and bounded by u32.
package bcs

import (
	"encoding/binary"
	"math"

	"github.com/vulcanize/go-codec-txmeta/failure"
	"github.com/vulcanize/go-codec-txmeta/serde"
)

const (
	// MaxContainerDepth bounds nesting the same way the reference BCS implementation does
	MaxContainerDepth = 500
	// MaxSequenceLength is the largest length BCS accepts
	MaxSequenceLength = math.MaxInt32
)

// Serializer is a BCS serde.Serializer
type Serializer struct {
	*serde.BinarySerializer
}

var _ serde.Serializer = (*Serializer)(nil)

// NewSerializer returns a BCS serializer writing into a fresh buffer
func NewSerializer() *Serializer {
	return &Serializer{serde.NewBinarySerializer(MaxContainerDepth)}
}

func (s *Serializer) writeULEB128(value uint64) error {
	return s.Encoder.WriteBytes(binary.AppendUvarint(nil, value), false)
}

func (s *Serializer) SerializeLen(value uint64) error {
	if value > MaxSequenceLength {
		return failure.New(failure.StageEncode, failure.KindOverflow).
			Detail("sequence length %d exceeds the BCS maximum", value).Build()
	}
	return s.writeULEB128(value)
}

func (s *Serializer) SerializeVariantIndex(value uint32) error {
	return s.writeULEB128(uint64(value))
}

func (s *Serializer) SerializeBytes(value []byte) error {
	return s.WriteBytes(value, s.SerializeLen)
}

func (s *Serializer) SerializeStr(value string) error {
	return s.WriteStr(value, s.SerializeLen)
}

// Deserializer is a BCS serde.Deserializer
type Deserializer struct {
	*serde.BinaryDeserializer
}

var _ serde.Deserializer = (*Deserializer)(nil)

// NewDeserializer returns a BCS deserializer over input
func NewDeserializer(input []byte) *Deserializer {
	return &Deserializer{serde.NewBinaryDeserializer(input, MaxContainerDepth)}
}

// readULEB128 reads a canonical ULEB128 value that fits in a u32
func (d *Deserializer) readULEB128(what string) (uint32, error) {
	var value uint64
	for shift := uint(0); shift < 32; shift += 7 {
		if err := d.Need(1, what); err != nil {
			return 0, err
		}
		b, err := d.Decoder.ReadUint8()
		if err != nil {
			return 0, err
		}
		digit := uint64(b & 0x7f)
		value |= digit << shift
		if value > math.MaxUint32 {
			break
		}
		if b&0x80 == 0 {
			if shift > 0 && digit == 0 {
				return 0, failure.New(failure.StageDecode, failure.KindNonCanonical).
					Detail("non-canonical ULEB128 %s", what).Build()
			}
			return uint32(value), nil
		}
	}
	return 0, failure.New(failure.StageDecode, failure.KindOverflow).
		Detail("ULEB128 %s does not fit in a u32", what).Build()
}

func (d *Deserializer) DeserializeLen() (uint64, error) {
	n, err := d.readULEB128("sequence length")
	if err != nil {
		return 0, err
	}
	if n > MaxSequenceLength {
		return 0, failure.New(failure.StageDecode, failure.KindOverflow).
			Detail("sequence length %d exceeds the BCS maximum", n).Build()
	}
	return uint64(n), nil
}

func (d *Deserializer) DeserializeVariantIndex() (uint32, error) {
	return d.readULEB128("variant index")
}

func (d *Deserializer) DeserializeBytes() ([]byte, error) {
	return d.ReadBytes(d.DeserializeLen)
}

func (d *Deserializer) DeserializeStr() (string, error) {
	return d.ReadStr(d.DeserializeLen)
}
