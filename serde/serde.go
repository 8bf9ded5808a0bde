// Package serde is the runtime imported by generated bindings and by the
// schema-driven codec. It defines the Serializer and Deserializer interfaces
// implemented by the bincode and bcs packages.
package serde

// Serializer writes values in a binary encoding
type Serializer interface {
	SerializeUnit(value struct{}) error
	SerializeBool(value bool) error
	SerializeU8(value uint8) error
	SerializeU16(value uint16) error
	SerializeU32(value uint32) error
	SerializeU64(value uint64) error
	SerializeI32(value int32) error
	SerializeI64(value int64) error
	SerializeStr(value string) error
	SerializeBytes(value []byte) error
	// SerializeLen writes a sequence length in the encoding's own format
	SerializeLen(value uint64) error
	// SerializeShortLen writes a compact-u16 sequence length
	SerializeShortLen(value uint64) error
	SerializeVariantIndex(value uint32) error
	SerializeOptionTag(value bool) error
	GetBufferOffset() uint64
	GetBytes() []byte
	IncreaseContainerDepth() error
	DecreaseContainerDepth()
}

// Deserializer reads values in a binary encoding
type Deserializer interface {
	DeserializeUnit() (struct{}, error)
	DeserializeBool() (bool, error)
	DeserializeU8() (uint8, error)
	DeserializeU16() (uint16, error)
	DeserializeU32() (uint32, error)
	DeserializeU64() (uint64, error)
	DeserializeI32() (int32, error)
	DeserializeI64() (int64, error)
	DeserializeStr() (string, error)
	DeserializeBytes() ([]byte, error)
	DeserializeLen() (uint64, error)
	DeserializeShortLen() (uint64, error)
	DeserializeVariantIndex() (uint32, error)
	DeserializeOptionTag() (bool, error)
	GetBufferOffset() uint64
	// Remaining is the number of unread input bytes
	Remaining() int
	IncreaseContainerDepth() error
	DecreaseContainerDepth()
}

// CapHint bounds the capacity preallocated for a decoded sequence of length
// elements by the bytes left in the input
func CapHint(length uint64, deserializer Deserializer) int {
	if remaining := uint64(deserializer.Remaining()); length > remaining {
		return int(remaining)
	}
	return int(length)
}
