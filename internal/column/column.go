package column

import (
	"fmt"

	"github.com/harshithgowdakt/granuletvf/internal/types"
)

// Column is an in-memory columnar array of a single type.
type Column interface {
	DataType() types.DataType
	Len() int
	Value(i int) types.Value
	Append(v types.Value)
	Slice(from, to int) Column
	Clone() Column
	// Reset truncates the column to zero rows and keeps its storage.
	Reset()
}

// NewColumn creates an empty column of the given type.
func NewColumn(dt types.DataType) Column {
	return NewColumnWithCapacity(dt, 0)
}

// NewColumnWithCapacity creates a column pre-allocated for n rows.
func NewColumnWithCapacity(dt types.DataType, n int) Column {
	switch dt {
	case types.TypeUInt64:
		return &UInt64Column{Data: make([]uint64, 0, n)}
	case types.TypeInt64:
		return &Int64Column{Data: make([]int64, 0, n)}
	case types.TypeString:
		return &StringColumn{Data: make([]string, 0, n)}
	default:
		panic(fmt.Sprintf("unsupported data type %d", dt))
	}
}

// --- UInt64Column ---

type UInt64Column struct{ Data []uint64 }

func (c *UInt64Column) DataType() types.DataType { return types.TypeUInt64 }
func (c *UInt64Column) Len() int                 { return len(c.Data) }
func (c *UInt64Column) Value(i int) types.Value  { return c.Data[i] }
func (c *UInt64Column) Append(v types.Value)     { c.Data = append(c.Data, v.(uint64)) }
func (c *UInt64Column) Slice(from, to int) Column {
	return &UInt64Column{Data: cloneSlice(c.Data[from:to])}
}
func (c *UInt64Column) Clone() Column { return &UInt64Column{Data: cloneSlice(c.Data)} }
func (c *UInt64Column) Reset()        { c.Data = c.Data[:0] }

// --- Int64Column ---

type Int64Column struct{ Data []int64 }

func (c *Int64Column) DataType() types.DataType { return types.TypeInt64 }
func (c *Int64Column) Len() int                 { return len(c.Data) }
func (c *Int64Column) Value(i int) types.Value  { return c.Data[i] }
func (c *Int64Column) Append(v types.Value)     { c.Data = append(c.Data, v.(int64)) }
func (c *Int64Column) Slice(from, to int) Column {
	return &Int64Column{Data: cloneSlice(c.Data[from:to])}
}
func (c *Int64Column) Clone() Column { return &Int64Column{Data: cloneSlice(c.Data)} }
func (c *Int64Column) Reset()        { c.Data = c.Data[:0] }

// --- StringColumn ---

type StringColumn struct{ Data []string }

func (c *StringColumn) DataType() types.DataType { return types.TypeString }
func (c *StringColumn) Len() int                 { return len(c.Data) }
func (c *StringColumn) Value(i int) types.Value  { return c.Data[i] }
func (c *StringColumn) Append(v types.Value)     { c.Data = append(c.Data, v.(string)) }
func (c *StringColumn) Slice(from, to int) Column {
	return &StringColumn{Data: cloneSlice(c.Data[from:to])}
}
func (c *StringColumn) Clone() Column { return &StringColumn{Data: cloneSlice(c.Data)} }

// Reset clears the string headers so truncated values can be collected.
func (c *StringColumn) Reset() {
	clear(c.Data)
	c.Data = c.Data[:0]
}
