package compression

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

// Compressed block format (ClickHouse layout without the 16-byte CityHash checksum):
//   [method_byte (1)] [compressed_size_with_header (4 LE)] [uncompressed_size (4 LE)] [payload...]
//
// compressed_size_with_header includes the 9-byte header itself.

const HeaderSize = 9

// CompressBlock compresses data and returns the full block (header +
// payload). Data the codec cannot shrink is stored with MethodNone.
func CompressBlock(codec Codec, data []byte) ([]byte, error) {
	method := codec.MethodByte()
	payload, err := codec.Compress(data)
	if errors.Is(err, ErrIncompressible) {
		method, payload = MethodNone, data
	} else if err != nil {
		return nil, err
	}

	totalSize := HeaderSize + len(payload)
	block := make([]byte, totalSize)
	block[0] = method
	binary.LittleEndian.PutUint32(block[1:5], uint32(totalSize))
	binary.LittleEndian.PutUint32(block[5:9], uint32(len(data)))
	copy(block[HeaderSize:], payload)
	return block, nil
}

// DecompressBlock reads a compressed block, validates header, and decompresses.
func DecompressBlock(data []byte) ([]byte, error) {
	compressedTotal, uncompressed, err := ReadBlockHeader(data)
	if err != nil {
		return nil, err
	}
	if int(compressedTotal) > len(data) || compressedTotal < HeaderSize {
		return nil, errors.Newf("compressed block size mismatch: header says %d, have %d",
			compressedTotal, len(data))
	}
	codec, err := codecByMethod(data[0])
	if err != nil {
		return nil, err
	}
	return codec.Decompress(data[HeaderSize:compressedTotal], int(uncompressed))
}

// ReadBlockHeader reads the header from a compressed block and returns
// (compressedSizeWithHeader, uncompressedSize, error).
func ReadBlockHeader(data []byte) (compressedTotal uint32, uncompressed uint32, err error) {
	if len(data) < HeaderSize {
		return 0, 0, errors.Newf("compressed block too small: %d bytes", len(data))
	}
	compressedTotal = binary.LittleEndian.Uint32(data[1:5])
	uncompressed = binary.LittleEndian.Uint32(data[5:9])
	return compressedTotal, uncompressed, nil
}
