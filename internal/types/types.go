package types

import (
	"fmt"
	"strings"
)

// DataType represents a column or argument data type.
type DataType uint8

const (
	TypeUInt64 DataType = iota
	TypeInt64
	TypeFloat64
	TypeString
)

// TypeInfo holds metadata about a data type.
type TypeInfo struct {
	Type DataType
	Name string
}

// Float64 only types decimal literals in function arguments; no column
// carries it.
var typeInfoList = []TypeInfo{
	{TypeUInt64, "UInt64"},
	{TypeInt64, "Int64"},
	{TypeFloat64, "Float64"},
	{TypeString, "String"},
}

// TypeInfoMap maps DataType to its TypeInfo.
var TypeInfoMap map[DataType]TypeInfo

// typeNameMap maps lowercase type name to DataType for parsing.
var typeNameMap map[string]DataType

func init() {
	TypeInfoMap = make(map[DataType]TypeInfo, len(typeInfoList))
	typeNameMap = make(map[string]DataType, len(typeInfoList))
	for _, ti := range typeInfoList {
		TypeInfoMap[ti.Type] = ti
		typeNameMap[strings.ToLower(ti.Name)] = ti.Type
	}
	// SQL spellings accepted in signatures.
	typeNameMap["varchar"] = TypeString
	typeNameMap["text"] = TypeString
	typeNameMap["bigint"] = TypeInt64
	typeNameMap["integer"] = TypeInt64
}

// ParseDataType converts a type name string (case-insensitive) to DataType.
func ParseDataType(name string) (DataType, error) {
	dt, ok := typeNameMap[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown data type: %s", name)
	}
	return dt, nil
}

// Name returns the string name of the DataType.
func (dt DataType) Name() string {
	if ti, ok := TypeInfoMap[dt]; ok {
		return ti.Name
	}
	return "Unknown"
}

func (dt DataType) String() string { return dt.Name() }
