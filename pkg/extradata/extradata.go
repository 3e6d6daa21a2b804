// Package extradata implements the attribute bag carried by every lyric event.
//
// An ExtraData maps string keys to typed values. Reads are get-with-default:
// a missing key yields the caller's default, while a key holding a value of a
// different kind yields ErrTypeMismatch. The bag never coerces between kinds.
//
// The bag is not safe for concurrent mutation. Opaque values are held by
// reference and are shared, never copied, by Merge and Clone.
package extradata

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ErrTypeMismatch is returned when a typed read finds a value of another kind.
var ErrTypeMismatch = errors.New("extradata: type mismatch")

// ExtraData is an insertion-ordered mapping from key to Value.
type ExtraData struct {
	keys   []string
	values map[string]Value
}

// New returns an empty bag.
func New() *ExtraData {
	return &ExtraData{values: make(map[string]Value)}
}

// FromMap builds a bag from a raw map. See MergeMap.
func FromMap(raw map[string]any) *ExtraData {
	e := New()
	e.MergeMap(raw)
	return e
}

// Len returns the number of entries.
func (e *ExtraData) Len() int {
	if e == nil {
		return 0
	}
	return len(e.keys)
}

// Keys returns the keys in insertion order.
func (e *ExtraData) Keys() []string {
	if e == nil {
		return nil
	}
	return slices.Clone(e.keys)
}

// Has reports whether key is present.
func (e *ExtraData) Has(key string) bool {
	if e == nil {
		return false
	}
	_, ok := e.values[key]
	return ok
}

// Get returns the raw value stored under key.
func (e *ExtraData) Get(key string) (Value, bool) {
	if e == nil {
		return Value{}, false
	}
	v, ok := e.values[key]
	return v, ok
}

// Set stores v under key, replacing any previous value in place.
func (e *ExtraData) Set(key string, v Value) {
	if e.values == nil {
		e.values = make(map[string]Value)
	}
	if _, ok := e.values[key]; !ok {
		e.keys = append(e.keys, key)
	}
	e.values[key] = v
}

// Delete removes key if present.
func (e *ExtraData) Delete(key string) {
	if e == nil {
		return
	}
	if _, ok := e.values[key]; !ok {
		return
	}
	delete(e.values, key)
	e.keys = slices.DeleteFunc(e.keys, func(k string) bool { return k == key })
}

func (e *ExtraData) SetString(key, v string) { e.Set(key, StringValue(v)) }
func (e *ExtraData) SetBool(key string, v bool) { e.Set(key, BoolValue(v)) }
func (e *ExtraData) SetInt(key string, v int32) { e.Set(key, IntValue(v)) }
func (e *ExtraData) SetFloat(key string, v float32) { e.Set(key, FloatValue(v)) }
func (e *ExtraData) SetLong(key string, v int64) { e.Set(key, LongValue(v)) }
func (e *ExtraData) SetDouble(key string, v float64) { e.Set(key, DoubleValue(v)) }
func (e *ExtraData) SetOpaque(key string, v any) { e.Set(key, OpaqueValue(v)) }

// lookup returns the value under key when it has the wanted kind. A missing
// key reports ok=false with no error.
func (e *ExtraData) lookup(key string, want Kind) (v Value, ok bool, err error) {
	v, ok = e.Get(key)
	if !ok {
		return Value{}, false, nil
	}
	if v.kind != want {
		return Value{}, false, fmt.Errorf("%w: key %q holds %s, not %s", ErrTypeMismatch, key, v.kind, want)
	}
	return v, true, nil
}

func (e *ExtraData) GetString(key, def string) (string, error) {
	v, ok, err := e.lookup(key, KindString)
	if !ok {
		return def, err
	}
	return v.s, nil
}

func (e *ExtraData) GetBool(key string, def bool) (bool, error) {
	v, ok, err := e.lookup(key, KindBool)
	if !ok {
		return def, err
	}
	return v.b, nil
}

func (e *ExtraData) GetInt(key string, def int32) (int32, error) {
	v, ok, err := e.lookup(key, KindInt)
	if !ok {
		return def, err
	}
	return int32(v.i), nil
}

func (e *ExtraData) GetFloat(key string, def float32) (float32, error) {
	v, ok, err := e.lookup(key, KindFloat)
	if !ok {
		return def, err
	}
	return float32(v.f), nil
}

func (e *ExtraData) GetLong(key string, def int64) (int64, error) {
	v, ok, err := e.lookup(key, KindLong)
	if !ok {
		return def, err
	}
	return v.i, nil
}

func (e *ExtraData) GetDouble(key string, def float64) (float64, error) {
	v, ok, err := e.lookup(key, KindDouble)
	if !ok {
		return def, err
	}
	return v.f, nil
}

// Opaque returns the shared reference stored under key. Callers must not
// mutate it while another holder may still see it.
func (e *ExtraData) Opaque(key string) (any, error) {
	v, ok, err := e.lookup(key, KindOpaque)
	if !ok {
		return nil, err
	}
	return v.opaque, nil
}

// Get is the generic get-with-default. T must be the Go type of the stored
// variant (string, bool, int32, float32, int64, float64 or the opaque type).
func Get[T any](e *ExtraData, key string, def T) (T, error) {
	v, ok := e.Get(key)
	if !ok {
		return def, nil
	}
	typed, ok := v.Interface().(T)
	if !ok {
		return def, fmt.Errorf("%w: key %q holds %s, not %T", ErrTypeMismatch, key, v.kind, def)
	}
	return typed, nil
}

// Merge copies every entry of other into e, overwriting on conflict.
func (e *ExtraData) Merge(other *ExtraData) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		e.Set(k, other.values[k])
	}
}

// MergeMap is Merge for callers holding only a raw map. Values are wrapped with
// ValueOf; new keys are appended in sorted order.
func (e *ExtraData) MergeMap(raw map[string]any) {
	for _, k := range slices.Sorted(maps.Keys(raw)) {
		e.Set(k, ValueOf(raw[k]))
	}
}

// Clone returns a new bag with the same entries. Opaque values stay shared.
func (e *ExtraData) Clone() *ExtraData {
	c := New()
	c.Merge(e)
	return c
}

// Map returns the entries as a raw map of Go values.
func (e *ExtraData) Map() map[string]any {
	out := make(map[string]any, e.Len())
	if e == nil {
		return out
	}
	for k, v := range e.values {
		out[k] = v.Interface()
	}
	return out
}

// Equal reports whether both bags hold the same entries, regardless of order.
func (e *ExtraData) Equal(other *ExtraData) bool {
	if e.Len() != other.Len() {
		return false
	}
	if e.Len() == 0 {
		return true
	}
	for k, v := range e.values {
		ov, ok := other.values[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Hash is a structural hash consistent with Equal.
func (e *ExtraData) Hash() uint64 {
	d := xxhash.New()
	if e == nil {
		return d.Sum64()
	}
	for _, k := range slices.Sorted(maps.Keys(e.values)) {
		v := e.values[k]
		_, _ = d.WriteString(k)
		_, _ = d.Write([]byte{0, byte(v.kind)})
		if v.kind == KindOpaque {
			// Deeply equal references can print differently; only the type is stable.
			_, _ = fmt.Fprintf(d, "%T", v.opaque)
		} else {
			_, _ = d.WriteString(v.String())
		}
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// String renders the bag as "key=value," pairs in insertion order. The format
// is for humans and logs only.
func (e *ExtraData) String() string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	for _, k := range e.keys {
		fmt.Fprintf(&sb, "%s=%s,", k, e.values[k])
	}
	return sb.String()
}
