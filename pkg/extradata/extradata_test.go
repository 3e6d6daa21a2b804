package extradata_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/illmade-knight/go-lyricgetter/pkg/extradata"
	"github.com/illmade-knight/go-lyricgetter/pkg/media"
	"github.com/illmade-knight/go-lyricgetter/pkg/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtraData_TypedRoundTrip(t *testing.T) {
	e := extradata.New()
	e.SetString("s", "text")
	e.SetBool("b", true)
	e.SetInt("i", 42)
	e.SetFloat("f", 1.5)
	e.SetLong("l", 1<<40)
	e.SetDouble("d", 2.25)
	opaque := &struct{ N int }{N: 7}
	e.SetOpaque("o", opaque)

	s, err := e.GetString("s", "")
	require.NoError(t, err)
	assert.Equal(t, "text", s)

	b, err := e.GetBool("b", false)
	require.NoError(t, err)
	assert.True(t, b)

	i, err := e.GetInt("i", 0)
	require.NoError(t, err)
	assert.Equal(t, int32(42), i)

	f, err := e.GetFloat("f", 0)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f)

	l, err := e.GetLong("l", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<40), l)

	d, err := e.GetDouble("d", 0)
	require.NoError(t, err)
	assert.Equal(t, 2.25, d)

	o, err := e.Opaque("o")
	require.NoError(t, err)
	assert.Same(t, opaque, o)

	g, err := extradata.Get(e, "l", int64(0))
	require.NoError(t, err)
	assert.Equal(t, int64(1<<40), g)
}

func TestExtraData_MissingKeyReturnsDefault(t *testing.T) {
	e := extradata.New()

	s, err := e.GetString("missing", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", s)

	i, err := e.GetInt("missing", 9)
	require.NoError(t, err)
	assert.Equal(t, int32(9), i)

	d, err := extradata.Get(e, "missing", 3.5)
	require.NoError(t, err)
	assert.Equal(t, 3.5, d)
}

func TestExtraData_TypeMismatch(t *testing.T) {
	e := extradata.New()
	e.SetLong("delay", 500)

	_, err := e.GetInt("delay", 0)
	assert.ErrorIs(t, err, extradata.ErrTypeMismatch)

	_, err = e.GetString("delay", "")
	assert.ErrorIs(t, err, extradata.ErrTypeMismatch)

	_, err = extradata.Get(e, "delay", 0)
	assert.ErrorIs(t, err, extradata.ErrTypeMismatch, "plain int is not the Go type of a long")

	// Reserved accessors fall back to their default and the validator reports it.
	assert.Equal(t, 0, e.Delay())
	assert.ErrorIs(t, e.ValidateReserved(), extradata.ErrTypeMismatch)
}

func TestExtraData_Merge(t *testing.T) {
	shared := &media.Metadata{Strings: map[string]string{media.KeyTitle: "Song"}}

	a := extradata.New()
	a.SetString("onlyA", "a")
	a.SetString("both", "fromA")

	b := extradata.New()
	b.SetString("both", "fromB")
	b.SetString("onlyB", "b")
	b.SetMediaMetadata(shared)

	a.Merge(b)

	assert.Equal(t, "a", mustString(t, a, "onlyA"))
	assert.Equal(t, "b", mustString(t, a, "onlyB"))
	assert.Equal(t, "fromB", mustString(t, a, "both"), "incoming bag wins on conflict")
	assert.Same(t, shared, a.MediaMetadata(), "opaque values are shared, not copied")
	assert.Equal(t, []string{"onlyA", "both", "onlyB", extradata.KeyMediaMetadata}, a.Keys())

	// The source bag is unchanged.
	assert.Equal(t, 3, b.Len())
}

func TestExtraData_MergeMap(t *testing.T) {
	e := extradata.New()
	e.SetString("artist", "old")

	e.MergeMap(map[string]any{
		"artist": "new",
		"delay":  250,
		"volume": 0.5,
		"played": int64(3),
		"flag":   true,
	})

	assert.Equal(t, "new", e.Artist())
	assert.Equal(t, 250, e.Delay())
	v, _ := e.Get("volume")
	assert.Equal(t, extradata.KindDouble, v.Kind())
	v, _ = e.Get("played")
	assert.Equal(t, extradata.KindLong, v.Kind())
	v, _ = e.Get("flag")
	assert.Equal(t, extradata.KindBool, v.Kind())
}

func TestExtraData_EqualityAndHash(t *testing.T) {
	a := extradata.New()
	a.SetString("x", "1")
	a.SetInt("y", 2)

	b := extradata.New()
	b.SetInt("y", 2)
	b.SetString("x", "1")

	assert.True(t, a.Equal(b), "equality ignores insertion order")
	assert.Equal(t, a.Hash(), b.Hash())
	assert.Equal(t, "x=1,y=2,", a.String())
	assert.Equal(t, "y=2,x=1,", b.String())

	b.SetLong("y", 2)
	assert.False(t, a.Equal(b), "same number with a different kind is a different value")
	assert.NotEqual(t, a.Hash(), b.Hash())

	assert.True(t, extradata.New().Equal(nil))
}

func TestExtraData_LastWriteWinsInPlace(t *testing.T) {
	e := extradata.New()
	e.SetString("a", "1")
	e.SetString("b", "2")
	e.SetString("a", "3")

	assert.Equal(t, []string{"a", "b"}, e.Keys())
	assert.Equal(t, "3", mustString(t, e, "a"))

	e.Delete("a")
	assert.False(t, e.Has("a"))
	assert.Equal(t, []string{"b"}, e.Keys())
}

func TestNewLegacy(t *testing.T) {
	e := extradata.NewLegacy(true, "aWNvbg==", true, "com.example.music", 1200)

	assert.True(t, e.CustomIcon())
	assert.Equal(t, "aWNvbg==", e.Base64Icon())
	assert.True(t, e.UseOwnMusicController())
	assert.Equal(t, "com.example.music", e.PackageName())
	assert.Equal(t, 1200, e.Delay())
	assert.NoError(t, e.ValidateReserved())
}

func TestExtraData_JSONPreservesKinds(t *testing.T) {
	// Arrange
	e := extradata.New()
	e.SetPackageName("com.example.music")
	e.SetDelay(300)
	e.SetLong("position", 123456789012)
	e.SetFloat("speed", 1.25)
	e.SetDouble("gain", -3.5)
	e.SetMediaSnapshot(&media.Snapshot{Strings: map[string]string{media.KeyTitle: "Song"}}, platform.Default)

	// Act
	raw, err := json.Marshal(e)
	require.NoError(t, err)
	decoded := extradata.New()
	require.NoError(t, json.Unmarshal(raw, decoded))

	// Assert
	assert.Equal(t, e.Len(), decoded.Len())
	assert.Equal(t, "com.example.music", decoded.PackageName())
	assert.Equal(t, 300, decoded.Delay())
	pos, err := decoded.GetLong("position", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(123456789012), pos)
	speed, err := decoded.GetFloat("speed", 0)
	require.NoError(t, err)
	assert.Equal(t, float32(1.25), speed)

	m := decoded.MediaMetadata()
	require.NotNil(t, m)
	assert.Equal(t, "Song", m.Title())
	assert.NotSame(t, m, decoded.MediaMetadata(), "each read decodes its own copy")
}

func TestExtraData_UnmarshalRejectsUnknownKind(t *testing.T) {
	decoded := extradata.New()
	err := json.Unmarshal([]byte(`{"k":{"type":"bitmap","value":"x"}}`), decoded)
	assert.Error(t, err)
}

func mustString(t *testing.T, e *extradata.ExtraData, key string) string {
	t.Helper()
	s, err := e.GetString(key, "")
	require.NoError(t, err)
	return s
}

func TestExtraData_NonFiniteFloatsRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		set  func(e *extradata.ExtraData)
	}{
		{name: "double NaN", set: func(e *extradata.ExtraData) { e.SetDouble("gain", math.NaN()) }},
		{name: "double +Inf", set: func(e *extradata.ExtraData) { e.SetDouble("gain", math.Inf(1)) }},
		{name: "double -Inf", set: func(e *extradata.ExtraData) { e.SetDouble("gain", math.Inf(-1)) }},
		{name: "float NaN", set: func(e *extradata.ExtraData) { e.SetFloat("gain", float32(math.NaN())) }},
		{name: "float +Inf", set: func(e *extradata.ExtraData) { e.SetFloat("gain", float32(math.Inf(1))) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := extradata.New()
			tc.set(e)
			assert.True(t, e.Equal(e.Clone()), "a bag equals its own clone")

			raw, err := json.Marshal(e)
			require.NoError(t, err)

			var got extradata.ExtraData
			require.NoError(t, json.Unmarshal(raw, &got))
			assert.True(t, e.Equal(&got))
			assert.Equal(t, e.Hash(), got.Hash())
		})
	}
}

func TestExtraData_UnmarshalRejectsUnknownFloatText(t *testing.T) {
	var e extradata.ExtraData
	err := json.Unmarshal([]byte(`{"gain":{"type":"double","value":"loud"}}`), &e)
	assert.Error(t, err)
}

func TestExtraData_LargeIntsAreNotTruncated(t *testing.T) {
	e := extradata.New()
	e.MergeMap(map[string]any{"small": 7, "big": 1 << 40})

	v, ok := e.Get("small")
	require.True(t, ok)
	assert.Equal(t, extradata.KindInt, v.Kind())

	v, ok = e.Get("big")
	require.True(t, ok)
	assert.Equal(t, extradata.KindLong, v.Kind())
	n, err := e.GetLong("big", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<40), n)

	e.SetDelay(1 << 40)
	assert.Equal(t, math.MaxInt32, e.Delay())
	e.SetDelay(-(1 << 40))
	assert.Equal(t, math.MinInt32, e.Delay())
}

type track struct{ Title *string }

func TestExtraData_OpaqueHashConsistentWithEqual(t *testing.T) {
	t1, t2 := "Song", "Song"
	a := extradata.New()
	a.SetOpaque("track", &track{Title: &t1})
	b := extradata.New()
	b.SetOpaque("track", &track{Title: &t2})

	require.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestExtraData_NilDelete(t *testing.T) {
	var e *extradata.ExtraData
	assert.NotPanics(t, func() { e.Delete("x") })
}
