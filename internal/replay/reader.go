package replay

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"
)

// lz4Magic opens every lz4 frame.
var lz4Magic = []byte{0x04, 0x22, 0x4d, 0x18}

// Reader reads a replay log. Codec and compression are detected from the
// stream.
type Reader struct {
	header Header
	codec  Codec
	dec    decoder
	closer io.Closer
}

func NewReader(r io.Reader) (*Reader, error) {
	in := bufio.NewReader(r)
	magic, err := in.Peek(len(lz4Magic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("replay: read: %w", err)
	}
	if bytes.Equal(magic, lz4Magic) {
		in = bufio.NewReader(lz4.NewReader(in))
	}
	first, err := in.Peek(1)
	if err != nil {
		return nil, fmt.Errorf("replay: empty log: %w", err)
	}
	codec, err := detectCodec(first[0])
	if err != nil {
		return nil, err
	}
	reader := &Reader{codec: codec, dec: newDecoder(codec, in)}
	if err := reader.dec.Decode(&reader.header); err != nil {
		return nil, fmt.Errorf("replay: read header: %w", err)
	}
	if reader.header.Version != FormatVersion {
		return nil, fmt.Errorf("replay: unsupported version %d", reader.header.Version)
	}
	return reader, nil
}

// Open reads the log at path.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("replay: open %s: %w", path, err)
	}
	reader, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	reader.closer = file
	return reader, nil
}

func (r *Reader) Header() Header { return r.header }

// Codec reports the detected encoding.
func (r *Reader) Codec() Codec { return r.codec }

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("replay: read record: %w", err)
	}
	return rec, nil
}

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}
