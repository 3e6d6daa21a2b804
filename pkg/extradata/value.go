package extradata

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Kind is the semantic type of a value stored in an ExtraData bag.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindBool
	KindInt
	KindFloat
	KindLong
	KindDouble
	KindOpaque
)

var kindNames = map[Kind]string{
	KindInvalid: "invalid",
	KindString:  "string",
	KindBool:    "bool",
	KindInt:     "int",
	KindFloat:   "float",
	KindLong:    "long",
	KindDouble:  "double",
	KindOpaque:  "opaque",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

func (k Kind) MarshalText() ([]byte, error) {
	if k == KindInvalid || kindNames[k] == "" {
		return nil, fmt.Errorf("cannot marshal %s", k)
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if kind != KindInvalid && name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown value kind %q", text)
}

// Value is one entry of the bag: exactly one variant is meaningful, selected by Kind.
type Value struct {
	kind   Kind
	s      string
	b      bool
	i      int64
	f      float64
	opaque any
}

func StringValue(v string) Value { return Value{kind: KindString, s: v} }
func BoolValue(v bool) Value { return Value{kind: KindBool, b: v} }
func IntValue(v int32) Value { return Value{kind: KindInt, i: int64(v)} }
func FloatValue(v float32) Value { return Value{kind: KindFloat, f: float64(v)} }
func LongValue(v int64) Value { return Value{kind: KindLong, i: v} }
func DoubleValue(v float64) Value { return Value{kind: KindDouble, f: v} }
func OpaqueValue(v any) Value { return Value{kind: KindOpaque, opaque: v} }

// ValueOf wraps a raw Go value in the matching variant. Plain int becomes an
// Int when it fits in 32 bits and a Long otherwise; values of any type without
// a variant of their own are stored as opaque references.
func ValueOf(v any) Value {
	switch t := v.(type) {
	case Value:
		return t
	case string:
		return StringValue(t)
	case bool:
		return BoolValue(t)
	case int:
		if t < math.MinInt32 || t > math.MaxInt32 {
			return LongValue(int64(t))
		}
		return IntValue(int32(t))
	case int32:
		return IntValue(t)
	case int64:
		return LongValue(t)
	case float32:
		return FloatValue(t)
	case float64:
		return DoubleValue(t)
	default:
		return OpaqueValue(v)
	}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// Interface returns the stored value as its Go type: string, bool, int32,
// float32, int64, float64, or the opaque reference itself.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindBool:
		return v.b
	case KindInt:
		return int32(v.i)
	case KindFloat:
		return float32(v.f)
	case KindLong:
		return v.i
	case KindDouble:
		return v.f
	case KindOpaque:
		return v.opaque
	default:
		return nil
	}
}

// Equal compares kind and content. Opaque values compare deeply. Floats
// compare by bit pattern, so NaN equals NaN and 0 differs from -0.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindOpaque:
		return reflect.DeepEqual(v.opaque, other.opaque)
	case KindFloat, KindDouble:
		return math.Float64bits(v.f) == math.Float64bits(other.f)
	default:
		return v.Interface() == other.Interface()
	}
}

func (v Value) String() string {
	return fmt.Sprintf("%v", v.Interface())
}
