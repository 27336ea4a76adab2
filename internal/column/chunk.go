package column

import (
	"github.com/cockroachdb/errors"

	"github.com/harshithgowdakt/granuletvf/internal/types"
)

// DefaultChunkCapacity is the number of rows a DataChunk holds when the
// host does not configure one.
const DefaultChunkCapacity = 2048

var (
	// ErrChunkFull is returned when appending past a chunk's capacity.
	ErrChunkFull = errors.New("data chunk is full")
	// ErrValueTooLarge is returned when a string exceeds the chunk's size limit.
	ErrValueTooLarge = errors.New("value exceeds maximum string size")
)

// DataChunk is the fixed-capacity output buffer handed to a table function
// on every production call. Writers append values per column and then
// report the number of valid rows with SetLen. A length of zero signals
// end of stream.
type DataChunk struct {
	names          []string
	vectors        []Column
	capacity       int
	maxStringBytes int
	size           int
}

// NewDataChunk allocates a chunk with one vector per column.
// maxStringBytes <= 0 disables the string size check.
func NewDataChunk(names []string, dts []types.DataType, capacity, maxStringBytes int) *DataChunk {
	if capacity <= 0 {
		capacity = DefaultChunkCapacity
	}
	c := &DataChunk{
		names:          names,
		vectors:        make([]Column, len(dts)),
		capacity:       capacity,
		maxStringBytes: maxStringBytes,
	}
	for i, dt := range dts {
		c.vectors[i] = NewColumnWithCapacity(dt, capacity)
	}
	return c
}

// Capacity returns the maximum number of rows per call.
func (c *DataChunk) Capacity() int { return c.capacity }

// Len returns the number of rows reported by the last SetLen.
func (c *DataChunk) Len() int { return c.size }

// NumColumns returns the number of vectors.
func (c *DataChunk) NumColumns() int { return len(c.vectors) }

// Vector returns the i-th column vector.
func (c *DataChunk) Vector(i int) Column { return c.vectors[i] }

// Append writes v at the end of vector col.
func (c *DataChunk) Append(col int, v types.Value) error {
	if col < 0 || col >= len(c.vectors) {
		return errors.AssertionFailedf("column index %d out of range [0, %d)", col, len(c.vectors))
	}
	vec := c.vectors[col]
	if vec.Len() >= c.capacity {
		return ErrChunkFull
	}
	if err := types.CheckValue(vec.DataType(), v); err != nil {
		return errors.Wrapf(err, "column %s", c.names[col])
	}
	if s, ok := v.(string); ok && c.maxStringBytes > 0 && len(s) > c.maxStringBytes {
		return errors.Wrapf(ErrValueTooLarge, "%d > %d bytes", len(s), c.maxStringBytes)
	}
	vec.Append(v)
	return nil
}

// SetLen reports how many rows were written. Every vector must hold at
// least n values.
func (c *DataChunk) SetLen(n int) error {
	if n < 0 || n > c.capacity {
		return errors.AssertionFailedf("chunk length %d out of range [0, %d]", n, c.capacity)
	}
	for i, vec := range c.vectors {
		if vec.Len() < n {
			return errors.AssertionFailedf("vector %d holds %d rows, cannot set length %d", i, vec.Len(), n)
		}
	}
	c.size = n
	return nil
}

// Reset empties the chunk for the next production call. Vector storage is
// reused; Block copies rows out before the next Reset.
func (c *DataChunk) Reset() {
	for _, vec := range c.vectors {
		vec.Reset()
	}
	c.size = 0
}

// Block copies the first Len rows into a standalone Block. The chunk may be
// reset and reused afterwards.
func (c *DataChunk) Block() *Block {
	cols := make([]Column, len(c.vectors))
	for i, vec := range c.vectors {
		cols[i] = vec.Slice(0, c.size)
	}
	names := make([]string, len(c.names))
	copy(names, c.names)
	return NewBlock(names, cols)
}
