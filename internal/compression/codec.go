package compression

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Codec compresses and decompresses data blocks.
type Codec interface {
	// MethodByte returns the single-byte codec identifier.
	MethodByte() byte
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte, decompressedSize int) ([]byte, error)
}

// Method byte constants matching ClickHouse format.
const (
	MethodNone byte = 0x02
	MethodLZ4  byte = 0x82
)

// ErrIncompressible is returned by a codec whose output would not be
// smaller than its input. CompressBlock stores such data uncompressed.
var ErrIncompressible = errors.New("incompressible data")

// CodecByName returns the codec for a method name: "lz4" or "none".
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "lz4":
		return &LZ4Codec{}, nil
	case "none", "":
		return &NoneCodec{}, nil
	default:
		return nil, errors.Newf("unknown compression method %q", name)
	}
}

func codecByMethod(method byte) (Codec, error) {
	switch method {
	case MethodLZ4:
		return &LZ4Codec{}, nil
	case MethodNone:
		return &NoneCodec{}, nil
	default:
		return nil, errors.Newf("unknown compression method: 0x%02x", method)
	}
}
