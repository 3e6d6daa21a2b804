package extradata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
)

// wireValue is the JSON form of one entry. The kind travels with the value so
// int/long and float/double survive the round trip.
type wireValue struct {
	Type  Kind            `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the bag as {"key": {"type": kind, "value": v}}.
func (e *ExtraData) MarshalJSON() ([]byte, error) {
	out := make(map[string]wireValue, e.Len())
	if e != nil {
		for k, v := range e.values {
			raw, err := encodeValue(v)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal value for key %q: %w", k, err)
			}
			out[k] = wireValue{Type: v.kind, Value: raw}
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON replaces the bag's contents. Opaque values are kept as
// json.RawMessage; typed accessors such as MediaMetadata decode them on demand.
func (e *ExtraData) UnmarshalJSON(data []byte) error {
	var in map[string]wireValue
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	decoded := New()
	for _, k := range slices.Sorted(maps.Keys(in)) {
		v, err := decodeValue(in[k])
		if err != nil {
			return fmt.Errorf("failed to decode key %q: %w", k, err)
		}
		decoded.Set(k, v)
	}
	*e = *decoded
	return nil
}

func decodeValue(w wireValue) (Value, error) {
	var err error
	switch w.Type {
	case KindString:
		var s string
		err = json.Unmarshal(w.Value, &s)
		return StringValue(s), err
	case KindBool:
		var b bool
		err = json.Unmarshal(w.Value, &b)
		return BoolValue(b), err
	case KindInt:
		var i int32
		err = json.Unmarshal(w.Value, &i)
		return IntValue(i), err
	case KindFloat:
		f, err := decodeFloat(w.Value)
		return FloatValue(float32(f)), err
	case KindLong:
		var i int64
		err = json.Unmarshal(w.Value, &i)
		return LongValue(i), err
	case KindDouble:
		f, err := decodeFloat(w.Value)
		return DoubleValue(f), err
	case KindOpaque:
		return OpaqueValue(json.RawMessage(bytes.Clone(w.Value))), nil
	default:
		return Value{}, fmt.Errorf("missing value kind")
	}
}

// Non-finite floats have no JSON number form and travel as these strings.
const (
	wireNaN    = "NaN"
	wirePosInf = "+Inf"
	wireNegInf = "-Inf"
)

func encodeValue(v Value) ([]byte, error) {
	if v.kind == KindFloat || v.kind == KindDouble {
		switch {
		case math.IsNaN(v.f):
			return json.Marshal(wireNaN)
		case math.IsInf(v.f, 1):
			return json.Marshal(wirePosInf)
		case math.IsInf(v.f, -1):
			return json.Marshal(wireNegInf)
		}
	}
	return json.Marshal(v.Interface())
}

func decodeFloat(raw json.RawMessage) (float64, error) {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		switch s {
		case wireNaN:
			return math.NaN(), nil
		case wirePosInf:
			return math.Inf(1), nil
		case wireNegInf:
			return math.Inf(-1), nil
		default:
			return 0, fmt.Errorf("invalid float %q", s)
		}
	}
	var f float64
	err := json.Unmarshal(raw, &f)
	return f, err
}
