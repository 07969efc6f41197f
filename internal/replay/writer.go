package replay

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// Options controls how a log is written.
type Options struct {
	Codec    Codec
	Compress bool
}

// Writer appends records to a replay log. It is safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	buf    *bufio.Writer
	lz     *lz4.Writer
	enc    encoder
	closer io.Closer
}

// NewWriter writes header to w and returns a writer for the records.
// Closing the Writer flushes it but leaves w open.
func NewWriter(w io.Writer, opts Options, header Header) (*Writer, error) {
	out := w
	writer := &Writer{}
	if opts.Compress {
		writer.lz = lz4.NewWriter(w)
		out = writer.lz
	}
	codec := opts.Codec
	if codec == "" {
		codec = CodecJSON
	}
	writer.buf = bufio.NewWriter(out)
	writer.enc = newEncoder(codec, writer.buf)
	if header.Version == 0 {
		header.Version = FormatVersion
	}
	if err := writer.enc.Encode(header); err != nil {
		return nil, fmt.Errorf("replay: write header: %w", err)
	}
	return writer, nil
}

// Create opens path for writing, truncating it.
func Create(path string, opts Options, header Header) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("replay: create %s: %w", path, err)
	}
	writer, err := NewWriter(file, opts, header)
	if err != nil {
		file.Close()
		return nil, err
	}
	writer.closer = file
	return writer, nil
}

// Write appends rec and flushes it through to the underlying writer.
func (w *Writer) Write(rec Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("replay: write tick %d: %w", rec.Tick, err)
	}
	if err := w.buf.Flush(); err != nil {
		return err
	}
	if w.lz != nil {
		return w.lz.Flush()
	}
	return nil
}

// Close flushes buffers, ends the lz4 frame and closes the file opened by
// Create.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	err := w.buf.Flush()
	if w.lz != nil {
		if cerr := w.lz.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if w.closer != nil {
		if cerr := w.closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
		w.closer = nil
	}
	return err
}
