package column

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshithgowdakt/granuletvf/internal/types"
)

func TestGather_String(t *testing.T) {
	col := &StringColumn{Data: []string{"a", "b", "c", "d"}}
	result := Gather(col, []int{3, 0, 2}).(*StringColumn)
	assert.Equal(t, []string{"d", "a", "c"}, result.Data)
}

func TestAppendColumn_TypeMismatch(t *testing.T) {
	dst := &StringColumn{Data: []string{"a"}}
	require.Error(t, AppendColumn(dst, &Int64Column{Data: []int64{1}}))
	require.NoError(t, AppendColumn(dst, &StringColumn{Data: []string{"b"}}))
	assert.Equal(t, []string{"a", "b"}, dst.Data)
}

func TestSliceCopiesData(t *testing.T) {
	col := &UInt64Column{Data: []uint64{1, 2, 3}}
	s := col.Slice(1, 3).(*UInt64Column)
	s.Data[0] = 99
	assert.Equal(t, uint64(2), col.Data[1])
}

func TestBlockSortWithDirection(t *testing.T) {
	b := NewBlock(
		[]string{"name", "n"},
		[]Column{
			&StringColumn{Data: []string{"b", "a", "c"}},
			&Int64Column{Data: []int64{2, 1, 3}},
		},
	)
	require.NoError(t, b.SortByColumnsWithDirection([]string{"n"}, []bool{true}))
	assert.Equal(t, []string{"c", "b", "a"}, b.Columns[0].(*StringColumn).Data)

	require.Error(t, b.SortByColumnsWithDirection([]string{"missing"}, nil))
}

func TestDataChunkAppendAndSetLen(t *testing.T) {
	c := NewDataChunk([]string{"greetings"}, []types.DataType{types.TypeString}, 2, 8)

	require.NoError(t, c.Append(0, "hi"))
	require.ErrorIs(t, c.Append(0, "far too long"), ErrValueTooLarge)
	require.Error(t, c.Append(0, int64(1)))
	require.NoError(t, c.Append(0, "there"))
	require.ErrorIs(t, c.Append(0, "x"), ErrChunkFull)

	assert.True(t, errors.IsAssertionFailure(c.SetLen(3)))
	assert.True(t, errors.IsAssertionFailure(c.Append(1, "x")))
	require.NoError(t, c.SetLen(2))
	assert.Equal(t, 2, c.Len())

	b := c.Block()
	c.Reset()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Vector(0).Len())
	assert.Equal(t, []string{"hi", "there"}, b.Columns[0].(*StringColumn).Data)
}

func TestDataChunkResetReusesStorage(t *testing.T) {
	c := NewDataChunk([]string{"greetings"}, []types.DataType{types.TypeString}, DefaultChunkCapacity, 0)
	vec := c.Vector(0).(*StringColumn)
	require.NoError(t, c.Append(0, "Hello Alice 1"))
	require.NoError(t, c.SetLen(1))
	first := &vec.Data[0]

	c.Reset()
	assert.Same(t, vec, c.Vector(0))
	assert.Equal(t, DefaultChunkCapacity, cap(vec.Data))
	require.NoError(t, c.Append(0, "Hello Alice 0"))
	assert.Same(t, first, &vec.Data[0])

	var v types.Value = "Hello Alice 1"
	allocs := testing.AllocsPerRun(100, func() {
		c.Reset()
		_ = c.Append(0, v)
		_ = c.SetLen(1)
	})
	assert.Zero(t, allocs)
}

func TestDataChunkSetLenRequiresValues(t *testing.T) {
	c := NewDataChunk([]string{"v"}, []types.DataType{types.TypeString}, 4, 0)
	require.Error(t, c.SetLen(1))
	require.NoError(t, c.SetLen(0))
}

func TestEncodeDecodeBlock(t *testing.T) {
	b := NewBlock(
		[]string{"greetings", "count()"},
		[]Column{
			&StringColumn{Data: []string{"Hello Alice 2", "Hello Alice 1"}},
			&UInt64Column{Data: []uint64{7, 8}},
		},
	)
	var buf bytes.Buffer
	require.NoError(t, EncodeBlock(&buf, b))

	got, err := DecodeBlock(bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, b.ColumnNames, got.ColumnNames)
	assert.Equal(t, b.Columns, got.Columns)
}
