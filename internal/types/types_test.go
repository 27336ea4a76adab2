package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataType(t *testing.T) {
	tests := []struct {
		input string
		want  DataType
	}{
		{"String", TypeString},
		{"varchar", TypeString},
		{" Int64 ", TypeInt64},
		{"BIGINT", TypeInt64},
		{"uint64", TypeUInt64},
	}
	for _, tt := range tests {
		got, err := ParseDataType(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := ParseDataType("UInt32")
	require.Error(t, err)

	_, err = ParseDataType("Decimal")
	require.Error(t, err)
}

func TestCheckValue(t *testing.T) {
	require.NoError(t, CheckValue(TypeString, "x"))
	require.NoError(t, CheckValue(TypeUInt64, uint64(3)))
	require.Error(t, CheckValue(TypeUInt64, uint32(3)))
	require.Error(t, CheckValue(TypeString, int64(3)))
	require.Error(t, CheckValue(TypeInt64, 3))
}

func TestCompareValues(t *testing.T) {
	assert.Equal(t, -1, CompareValues(TypeString, "a", "b"))
	assert.Equal(t, 0, CompareValues(TypeInt64, int64(4), int64(4)))
	assert.Equal(t, 1, CompareValues(TypeUInt64, uint64(9), uint64(2)))
}

func TestValueToString(t *testing.T) {
	assert.Equal(t, "NULL", ValueToString(TypeString, nil))
	assert.Equal(t, "1.5", ValueToString(TypeFloat64, 1.5))
	assert.Equal(t, "42", ValueToString(TypeUInt64, uint64(42)))
}

func TestZero(t *testing.T) {
	for _, dt := range []DataType{TypeUInt64, TypeInt64, TypeFloat64, TypeString} {
		assert.NoError(t, CheckValue(dt, Zero(dt)), dt.Name())
	}
}
