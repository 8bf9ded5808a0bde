package serde

import (
	"bytes"
	"unicode/utf8"

	bin "github.com/gagliardetto/binary"

	"github.com/vulcanize/go-codec-txmeta/failure"
)

// MaxShortLen is the largest length a compact-u16 prefix can carry
const MaxShortLen = 0xffff

// BinarySerializer holds the parts of a serializer shared by the binary
// encodings: fixed-width little-endian integers, u8 option tags and
// compact-u16 short lengths.
type BinarySerializer struct {
	Buffer               *bytes.Buffer
	Encoder              *bin.Encoder
	containerDepthBudget uint64
}

// NewBinarySerializer returns a serializer writing into a fresh buffer
func NewBinarySerializer(maxContainerDepth uint64) *BinarySerializer {
	buf := new(bytes.Buffer)
	return &BinarySerializer{
		Buffer:               buf,
		Encoder:              bin.NewBinEncoder(buf),
		containerDepthBudget: maxContainerDepth,
	}
}

func (s *BinarySerializer) IncreaseContainerDepth() error {
	if s.containerDepthBudget == 0 {
		return failure.New(failure.StageEncode, failure.KindDepthExceeded).Detail("exceeded maximum container depth").Build()
	}
	s.containerDepthBudget--
	return nil
}

func (s *BinarySerializer) DecreaseContainerDepth() {
	s.containerDepthBudget++
}

func (s *BinarySerializer) SerializeUnit(value struct{}) error {
	return nil
}

func (s *BinarySerializer) SerializeBool(value bool) error {
	return s.Encoder.WriteBool(value)
}

func (s *BinarySerializer) SerializeU8(value uint8) error {
	return s.Encoder.WriteUint8(value)
}

func (s *BinarySerializer) SerializeU16(value uint16) error {
	return s.Encoder.WriteUint16(value, bin.LE)
}

func (s *BinarySerializer) SerializeU32(value uint32) error {
	return s.Encoder.WriteUint32(value, bin.LE)
}

func (s *BinarySerializer) SerializeU64(value uint64) error {
	return s.Encoder.WriteUint64(value, bin.LE)
}

func (s *BinarySerializer) SerializeI32(value int32) error {
	return s.Encoder.WriteInt32(value, bin.LE)
}

func (s *BinarySerializer) SerializeI64(value int64) error {
	return s.Encoder.WriteInt64(value, bin.LE)
}

func (s *BinarySerializer) SerializeOptionTag(value bool) error {
	if value {
		return s.Encoder.WriteUint8(1)
	}
	return s.Encoder.WriteUint8(0)
}

// SerializeShortLen writes a Solana short_vec length prefix
func (s *BinarySerializer) SerializeShortLen(value uint64) error {
	if value > MaxShortLen {
		return failure.New(failure.StageEncode, failure.KindOverflow).
			Detail("length %d does not fit a compact-u16 prefix", value).Build()
	}
	return s.Encoder.WriteCompactU16Length(int(value))
}

// WriteBytes writes a length prefix using serializeLen followed by the raw bytes
func (s *BinarySerializer) WriteBytes(value []byte, serializeLen func(uint64) error) error {
	if err := serializeLen(uint64(len(value))); err != nil {
		return err
	}
	return s.Encoder.WriteBytes(value, false)
}

// WriteStr writes a length-prefixed UTF-8 string
func (s *BinarySerializer) WriteStr(value string, serializeLen func(uint64) error) error {
	if !utf8.ValidString(value) {
		return failure.New(failure.StageEncode, failure.KindInvalidData).Detail("string is not valid UTF-8").Build()
	}
	return s.WriteBytes([]byte(value), serializeLen)
}

func (s *BinarySerializer) GetBufferOffset() uint64 {
	return uint64(s.Buffer.Len())
}

func (s *BinarySerializer) GetBytes() []byte {
	return s.Buffer.Bytes()
}

// BinaryDeserializer is the reading counterpart of BinarySerializer
type BinaryDeserializer struct {
	Decoder              *bin.Decoder
	Input                []byte
	containerDepthBudget uint64
}

// NewBinaryDeserializer returns a deserializer over input
func NewBinaryDeserializer(input []byte, maxContainerDepth uint64) *BinaryDeserializer {
	return &BinaryDeserializer{
		Decoder:              bin.NewBinDecoder(input),
		Input:                input,
		containerDepthBudget: maxContainerDepth,
	}
}

func (d *BinaryDeserializer) IncreaseContainerDepth() error {
	if d.containerDepthBudget == 0 {
		return failure.New(failure.StageDecode, failure.KindDepthExceeded).Detail("exceeded maximum container depth").Build()
	}
	d.containerDepthBudget--
	return nil
}

func (d *BinaryDeserializer) DecreaseContainerDepth() {
	d.containerDepthBudget++
}

// Need fails with an unexpected-EOF error if fewer than n bytes remain
func (d *BinaryDeserializer) Need(n uint64, what string) error {
	if remaining := uint64(d.Decoder.Remaining()); remaining < n {
		return failure.New(failure.StageDecode, failure.KindUnexpectedEOF).
			Detail("%s needs %d bytes at offset %d, %d remaining", what, n, d.GetBufferOffset(), remaining).Build()
	}
	return nil
}

func (d *BinaryDeserializer) DeserializeUnit() (struct{}, error) {
	return struct{}{}, nil
}

func (d *BinaryDeserializer) DeserializeBool() (bool, error) {
	if err := d.Need(1, "bool"); err != nil {
		return false, err
	}
	offset := d.GetBufferOffset()
	b, err := d.Decoder.ReadUint8()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, failure.New(failure.StageDecode, failure.KindInvalidData).
			Detail("invalid bool byte %#x at offset %d", b, offset).Build()
	}
}

func (d *BinaryDeserializer) DeserializeU8() (uint8, error) {
	if err := d.Need(1, "u8"); err != nil {
		return 0, err
	}
	return d.Decoder.ReadUint8()
}

func (d *BinaryDeserializer) DeserializeU16() (uint16, error) {
	if err := d.Need(2, "u16"); err != nil {
		return 0, err
	}
	return d.Decoder.ReadUint16(bin.LE)
}

func (d *BinaryDeserializer) DeserializeU32() (uint32, error) {
	if err := d.Need(4, "u32"); err != nil {
		return 0, err
	}
	return d.Decoder.ReadUint32(bin.LE)
}

func (d *BinaryDeserializer) DeserializeU64() (uint64, error) {
	if err := d.Need(8, "u64"); err != nil {
		return 0, err
	}
	return d.Decoder.ReadUint64(bin.LE)
}

func (d *BinaryDeserializer) DeserializeI32() (int32, error) {
	if err := d.Need(4, "i32"); err != nil {
		return 0, err
	}
	return d.Decoder.ReadInt32(bin.LE)
}

func (d *BinaryDeserializer) DeserializeI64() (int64, error) {
	if err := d.Need(8, "i64"); err != nil {
		return 0, err
	}
	return d.Decoder.ReadInt64(bin.LE)
}

func (d *BinaryDeserializer) DeserializeOptionTag() (bool, error) {
	if err := d.Need(1, "option tag"); err != nil {
		return false, err
	}
	offset := d.GetBufferOffset()
	tag, err := d.Decoder.ReadUint8()
	if err != nil {
		return false, err
	}
	switch tag {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, failure.New(failure.StageDecode, failure.KindInvalidData).
			Detail("invalid option tag %#x at offset %d", tag, offset).Build()
	}
}

// DeserializeShortLen reads a Solana short_vec length prefix
func (d *BinaryDeserializer) DeserializeShortLen() (uint64, error) {
	if err := d.Need(1, "compact-u16 length"); err != nil {
		return 0, err
	}
	n, err := d.Decoder.ReadCompactU16()
	if err != nil {
		return 0, failure.New(failure.StageDecode, failure.KindInvalidData).Cause(err).Build()
	}
	return uint64(n), nil
}

// ReadBytes reads a length using deserializeLen followed by that many raw bytes
func (d *BinaryDeserializer) ReadBytes(deserializeLen func() (uint64, error)) ([]byte, error) {
	n, err := deserializeLen()
	if err != nil {
		return nil, err
	}
	if err := d.Need(n, "byte sequence"); err != nil {
		return nil, err
	}
	if n == 0 {
		return []byte{}, nil
	}
	b, err := d.Decoder.ReadNBytes(int(n))
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// ReadStr reads a length-prefixed UTF-8 string
func (d *BinaryDeserializer) ReadStr(deserializeLen func() (uint64, error)) (string, error) {
	b, err := d.ReadBytes(deserializeLen)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", failure.New(failure.StageDecode, failure.KindInvalidData).Detail("string is not valid UTF-8").Build()
	}
	return string(b), nil
}

func (d *BinaryDeserializer) GetBufferOffset() uint64 {
	return uint64(len(d.Input) - d.Decoder.Remaining())
}

func (d *BinaryDeserializer) Remaining() int {
	return d.Decoder.Remaining()
}
