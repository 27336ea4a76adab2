package compression

import (
	"io"

	"github.com/cockroachdb/errors"
)

// DefaultBlockSize is the amount of uncompressed data per frame.
const DefaultBlockSize = 1 << 20

// Writer frames everything written to it into compressed blocks. Close
// flushes the final partial block; it does not close the underlying writer.
type Writer struct {
	w         io.Writer
	codec     Codec
	buf       []byte
	blockSize int
	err       error
}

// NewWriter returns a Writer emitting blocks of at most blockSize
// uncompressed bytes. blockSize <= 0 selects DefaultBlockSize.
func NewWriter(w io.Writer, codec Codec, blockSize int) *Writer {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Writer{w: w, codec: codec, blockSize: blockSize}
}

func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n := len(p)
	for len(p) > 0 {
		take := min(len(p), w.blockSize-len(w.buf))
		w.buf = append(w.buf, p[:take]...)
		p = p[take:]
		if len(w.buf) == w.blockSize {
			if err := w.Flush(); err != nil {
				return 0, err
			}
		}
	}
	return n, nil
}

// Flush writes the buffered data as one block.
func (w *Writer) Flush() error {
	if w.err != nil || len(w.buf) == 0 {
		return w.err
	}
	block, err := CompressBlock(w.codec, w.buf)
	if err == nil {
		_, err = w.w.Write(block)
	}
	if err != nil {
		w.err = errors.Wrap(err, "write compressed block")
		return w.err
	}
	w.buf = w.buf[:0]
	return nil
}

// Close flushes any buffered data.
func (w *Writer) Close() error {
	return w.Flush()
}

// Reader decodes a stream of blocks produced by Writer.
type Reader struct {
	r   io.Reader
	buf []byte
}

// NewReader returns a Reader over a framed stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (r *Reader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if err := r.next(); err != nil {
			return 0, err
		}
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func (r *Reader) next() error {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r.r, header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return errors.Wrap(err, "truncated block header")
		}
		return err
	}
	total, _, err := ReadBlockHeader(header)
	if err != nil {
		return err
	}
	if total < HeaderSize {
		return errors.Newf("invalid block size %d", total)
	}
	block := make([]byte, total)
	copy(block, header)
	if _, err := io.ReadFull(r.r, block[HeaderSize:]); err != nil {
		return errors.Wrap(err, "truncated block payload")
	}
	r.buf, err = DecompressBlock(block)
	return err
}
