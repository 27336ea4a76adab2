package column

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/harshithgowdakt/granuletvf/internal/types"
)

// WriteVarUInt writes a variable-length unsigned integer (same encoding as protobuf varint).
func WriteVarUInt(w io.Writer, v uint64) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	_, err := w.Write(buf[:n])
	return err
}

// ReadVarUInt reads a variable-length unsigned integer.
func ReadVarUInt(r io.ByteReader) (uint64, error) {
	return binary.ReadUvarint(r)
}

// EncodeColumn encodes a column to binary format.
// Fixed-size types: raw little-endian contiguous bytes.
// String: VarInt(length) + raw bytes per string.
func EncodeColumn(col Column) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeColumnTo(&buf, col); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeColumnTo(w io.Writer, col Column) error {
	switch c := col.(type) {
	case *UInt64Column:
		return binary.Write(w, binary.LittleEndian, c.Data)
	case *Int64Column:
		return binary.Write(w, binary.LittleEndian, c.Data)
	case *StringColumn:
		for _, s := range c.Data {
			if err := WriteVarUInt(w, uint64(len(s))); err != nil {
				return err
			}
			if _, err := io.WriteString(w, s); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported column type for encoding: %T", col)
	}
}

// DecodeColumn decodes a column from binary data.
func DecodeColumn(dt types.DataType, data []byte, numRows int) (Column, error) {
	return decodeColumnFrom(dt, bufio.NewReader(bytes.NewReader(data)), numRows)
}

func decodeColumnFrom(dt types.DataType, r *bufio.Reader, numRows int) (Column, error) {
	switch dt {
	case types.TypeUInt64:
		col := &UInt64Column{Data: make([]uint64, numRows)}
		return col, binary.Read(r, binary.LittleEndian, col.Data)
	case types.TypeInt64:
		col := &Int64Column{Data: make([]int64, numRows)}
		return col, binary.Read(r, binary.LittleEndian, col.Data)
	case types.TypeString:
		col := &StringColumn{Data: make([]string, 0, numRows)}
		for i := 0; i < numRows; i++ {
			length, err := ReadVarUInt(r)
			if err != nil {
				return nil, fmt.Errorf("reading string length at row %d: %w", i, err)
			}
			buf := make([]byte, length)
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, fmt.Errorf("reading string data at row %d: %w", i, err)
			}
			col.Data = append(col.Data, string(buf))
		}
		return col, nil
	default:
		return nil, fmt.Errorf("unsupported data type for decoding: %d", dt)
	}
}

// EncodeBlock writes a self-describing block:
//
//	VarUInt(numColumns) VarUInt(numRows)
//	per column: VarUInt(len) name, VarUInt(len) typeName, column data
func EncodeBlock(w io.Writer, b *Block) error {
	if err := WriteVarUInt(w, uint64(b.NumColumns())); err != nil {
		return err
	}
	if err := WriteVarUInt(w, uint64(b.NumRows())); err != nil {
		return err
	}
	for i, col := range b.Columns {
		for _, s := range []string{b.ColumnNames[i], col.DataType().Name()} {
			if err := WriteVarUInt(w, uint64(len(s))); err != nil {
				return err
			}
			if _, err := io.WriteString(w, s); err != nil {
				return err
			}
		}
		if err := encodeColumnTo(w, col); err != nil {
			return fmt.Errorf("column %s: %w", b.ColumnNames[i], err)
		}
	}
	return nil
}

// DecodeBlock reads one block written by EncodeBlock.
func DecodeBlock(r *bufio.Reader) (*Block, error) {
	numCols, err := ReadVarUInt(r)
	if err != nil {
		return nil, err
	}
	numRows, err := ReadVarUInt(r)
	if err != nil {
		return nil, fmt.Errorf("reading row count: %w", err)
	}
	names := make([]string, numCols)
	cols := make([]Column, numCols)
	for i := range names {
		name, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("reading column name: %w", err)
		}
		typeName, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("reading column type: %w", err)
		}
		dt, err := types.ParseDataType(typeName)
		if err != nil {
			return nil, err
		}
		col, err := decodeColumnFrom(dt, r, int(numRows))
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		names[i] = name
		cols[i] = col
	}
	return NewBlock(names, cols), nil
}

func readString(r *bufio.Reader) (string, error) {
	n, err := ReadVarUInt(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
