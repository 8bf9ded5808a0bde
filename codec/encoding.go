package codec

import (
	"strings"

	"github.com/vulcanize/go-codec-txmeta/failure"
	"github.com/vulcanize/go-codec-txmeta/serde"
	"github.com/vulcanize/go-codec-txmeta/serde/bcs"
	"github.com/vulcanize/go-codec-txmeta/serde/bincode"
)

// Encoding names a binary encoding of the serde runtime
type Encoding string

const (
	Bincode Encoding = "bincode"
	BCS     Encoding = "bcs"
)

// Encodings lists every supported encoding
var Encodings = []Encoding{Bincode, BCS}

// ParseEncoding maps a configured encoding name onto an Encoding
func ParseEncoding(name string) (Encoding, error) {
	switch Encoding(strings.ToLower(name)) {
	case Bincode:
		return Bincode, nil
	case BCS:
		return BCS, nil
	}
	return "", failure.New(failure.StageConfig, failure.KindInvalidConfig).Detail("unknown encoding %q", name).Build()
}

// Title is the encoding name as it appears in generated identifiers, e.g. BincodeSerialize
func (e Encoding) Title() string {
	switch e {
	case BCS:
		return "Bcs"
	case Bincode:
		return "Bincode"
	}
	return string(e)
}

// NewSerializer returns a fresh serializer for the encoding
func (e Encoding) NewSerializer() (serde.Serializer, error) {
	switch e {
	case Bincode:
		return bincode.NewSerializer(), nil
	case BCS:
		return bcs.NewSerializer(), nil
	}
	return nil, failure.New(failure.StageEncode, failure.KindUnsupported).Detail("unknown encoding %q", string(e)).Build()
}

// NewDeserializer returns a deserializer for the encoding over input
func (e Encoding) NewDeserializer(input []byte) (serde.Deserializer, error) {
	switch e {
	case Bincode:
		return bincode.NewDeserializer(input), nil
	case BCS:
		return bcs.NewDeserializer(input), nil
	}
	return nil, failure.New(failure.StageDecode, failure.KindUnsupported).Detail("unknown encoding %q", string(e)).Build()
}
