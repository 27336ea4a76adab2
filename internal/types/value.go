package types

import (
	"fmt"
	"strconv"
)

// Value represents a single database value. Concrete types use native Go types:
//
//	UInt64 -> uint64, Int64 -> int64, Float64 -> float64, String -> string
type Value = interface{}

// CheckValue reports whether v has the Go representation of dt.
func CheckValue(dt DataType, v Value) error {
	ok := false
	switch dt {
	case TypeUInt64:
		_, ok = v.(uint64)
	case TypeInt64:
		_, ok = v.(int64)
	case TypeFloat64:
		_, ok = v.(float64)
	case TypeString:
		_, ok = v.(string)
	}
	if !ok {
		return fmt.Errorf("value %v (%T) is not a %s", v, v, dt.Name())
	}
	return nil
}

// InferType returns the DataType matching the Go type of v.
func InferType(v Value) (DataType, error) {
	switch v.(type) {
	case uint64:
		return TypeUInt64, nil
	case int64:
		return TypeInt64, nil
	case float64:
		return TypeFloat64, nil
	case string:
		return TypeString, nil
	default:
		return 0, fmt.Errorf("no data type for %T", v)
	}
}

// CompareValues compares two values of the same DataType.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func CompareValues(dt DataType, a, b Value) int {
	switch dt {
	case TypeUInt64:
		return cmpOrdered(a.(uint64), b.(uint64))
	case TypeInt64:
		return cmpOrdered(a.(int64), b.(int64))
	case TypeFloat64:
		return cmpOrdered(a.(float64), b.(float64))
	case TypeString:
		return cmpOrdered(a.(string), b.(string))
	default:
		return 0
	}
}

type ordered interface {
	~uint64 | ~int64 | ~float64 | ~string
}

func cmpOrdered[T ordered](a, b T) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// ValueToString converts a value to its string representation.
func ValueToString(dt DataType, v Value) string {
	if v == nil {
		return "NULL"
	}
	switch dt {
	case TypeString:
		return v.(string)
	case TypeFloat64:
		return strconv.FormatFloat(v.(float64), 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}

// Zero returns the default value of dt.
func Zero(dt DataType) Value {
	switch dt {
	case TypeUInt64:
		return uint64(0)
	case TypeInt64:
		return int64(0)
	case TypeFloat64:
		return float64(0)
	default:
		return ""
	}
}
