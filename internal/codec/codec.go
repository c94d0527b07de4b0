// Package codec abstracts the wire encoding of bridge payloads.
package codec

import (
	"io"

	"github.com/fxamacker/cbor/v2"
)

type Encoder interface {
	Encode(v any) error
}

type Decoder interface {
	Decode(v any) error
}

type Marshaler interface {
	Marshal(v any) ([]byte, error)
	NewEncoder(w io.Writer) Encoder
}

type Unmarshaler interface {
	Unmarshal(data []byte, dst any) error
	NewDecoder(r io.Reader) Decoder
}

// Cbor is the default bridge wire codec.
type Cbor struct{}

func (Cbor) Marshal(v any) ([]byte, error) { return cbor.Marshal(v) }

func (Cbor) NewEncoder(w io.Writer) Encoder { return cbor.NewEncoder(w) }

func (Cbor) Unmarshal(data []byte, dst any) error { return cbor.Unmarshal(data, dst) }

func (Cbor) NewDecoder(r io.Reader) Decoder { return cbor.NewDecoder(r) }
