package compression

import "github.com/cockroachdb/errors"

// NoneCodec stores data as-is.
type NoneCodec struct{}

func (c *NoneCodec) MethodByte() byte { return MethodNone }

func (c *NoneCodec) Compress(src []byte) ([]byte, error) {
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst, nil
}

func (c *NoneCodec) Decompress(src []byte, decompressedSize int) ([]byte, error) {
	if len(src) != decompressedSize {
		return nil, errors.Newf("stored block: expected %d bytes, got %d", decompressedSize, len(src))
	}
	dst := make([]byte, decompressedSize)
	copy(dst, src)
	return dst, nil
}
