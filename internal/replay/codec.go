package replay

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec names the encoding of a replay log.
type Codec string

const (
	CodecJSON    Codec = "json"
	CodecMsgpack Codec = "msgpack"
)

// ParseCodec maps a configuration string onto a Codec.
func ParseCodec(raw string) (Codec, error) {
	switch Codec(raw) {
	case CodecJSON, "":
		return CodecJSON, nil
	case CodecMsgpack:
		return CodecMsgpack, nil
	}
	return "", fmt.Errorf("replay: unknown codec %q", raw)
}

type encoder interface {
	Encode(v any) error
}

type decoder interface {
	Decode(v any) error
}

func newEncoder(codec Codec, w io.Writer) encoder {
	if codec == CodecMsgpack {
		return msgpack.NewEncoder(w)
	}
	return json.NewEncoder(w)
}

func newDecoder(codec Codec, r io.Reader) decoder {
	if codec == CodecMsgpack {
		return msgpack.NewDecoder(r)
	}
	return json.NewDecoder(r)
}

// detectCodec guesses the codec from the first byte of the header. JSON
// headers open with a brace; msgpack headers are maps.
func detectCodec(first byte) (Codec, error) {
	switch {
	case first == '{':
		return CodecJSON, nil
	case first >= 0x80 && first <= 0x8f, first == 0xde, first == 0xdf:
		return CodecMsgpack, nil
	}
	return "", fmt.Errorf("replay: unrecognised header byte 0x%02x", first)
}
