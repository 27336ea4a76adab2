package column

import "fmt"

// Gather returns a new column reordering rows by the given index array.
// Operates on raw typed slices, without Value/Append boxing.
func Gather(col Column, indices []int) Column {
	switch c := col.(type) {
	case *UInt64Column:
		return &UInt64Column{Data: gatherSlice(c.Data, indices)}
	case *Int64Column:
		return &Int64Column{Data: gatherSlice(c.Data, indices)}
	case *StringColumn:
		return &StringColumn{Data: gatherSlice(c.Data, indices)}
	default:
		panic("Gather: unsupported column type")
	}
}

// AppendColumn bulk-appends all rows from src onto dst.
// Both must be the same concrete type.
func AppendColumn(dst, src Column) error {
	if dst.DataType() != src.DataType() {
		return fmt.Errorf("cannot append %s column to %s column", src.DataType().Name(), dst.DataType().Name())
	}
	switch d := dst.(type) {
	case *UInt64Column:
		d.Data = appendSlice(d.Data, src.(*UInt64Column).Data)
	case *Int64Column:
		d.Data = appendSlice(d.Data, src.(*Int64Column).Data)
	case *StringColumn:
		d.Data = appendSlice(d.Data, src.(*StringColumn).Data)
	default:
		return fmt.Errorf("AppendColumn: unsupported column type %T", dst)
	}
	return nil
}
