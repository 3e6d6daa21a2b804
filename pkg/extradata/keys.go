package extradata

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/illmade-knight/go-lyricgetter/pkg/media"
	"github.com/illmade-knight/go-lyricgetter/pkg/platform"
)

// Reserved keys. Any producer or consumer that knows these names and kinds can
// interoperate over the channel without sharing this package.
const (
	KeyBase64Icon            = "base64Icon"
	KeyUseOwnMusicController = "useOwnMusicController"
	KeyPackageName           = "packageName"
	KeyArtist                = "artist"
	KeyAlbum                 = "album"
	KeyTitle                 = "title"
	KeyMediaMetadata         = "mediaMetadata"
	KeyDelay                 = "delay"

	// Deprecated: a non-empty base64Icon is the signal for a custom icon.
	KeyCustomIcon = "customIcon"
)

var reservedKinds = map[string]Kind{
	KeyBase64Icon:            KindString,
	KeyUseOwnMusicController: KindBool,
	KeyPackageName:           KindString,
	KeyArtist:                KindString,
	KeyAlbum:                 KindString,
	KeyTitle:                 KindString,
	KeyMediaMetadata:         KindOpaque,
	KeyDelay:                 KindInt,
	KeyCustomIcon:            KindBool,
}

// ValidateReserved checks that every reserved key present holds its documented kind.
func (e *ExtraData) ValidateReserved() error {
	for key, want := range reservedKinds {
		if v, ok := e.Get(key); ok && v.kind != want {
			return fmt.Errorf("%w: reserved key %q holds %s, not %s", ErrTypeMismatch, key, v.kind, want)
		}
	}
	return nil
}

// The accessors below read reserved keys. They return the documented default
// when the key is absent or holds another kind; use the typed Get methods when
// a mismatch must be observed.

// Base64Icon is the encoded custom icon for the lyric, "" when unset.
func (e *ExtraData) Base64Icon() string {
	v, _ := e.GetString(KeyBase64Icon, "")
	return v
}

func (e *ExtraData) SetBase64Icon(v string) { e.SetString(KeyBase64Icon, v) }

// UseOwnMusicController reports whether the music app drives playback itself,
// so the listener should not pause or resume it.
func (e *ExtraData) UseOwnMusicController() bool {
	v, _ := e.GetBool(KeyUseOwnMusicController, false)
	return v
}

func (e *ExtraData) SetUseOwnMusicController(v bool) { e.SetBool(KeyUseOwnMusicController, v) }

// PackageName identifies the music app that produced the event.
func (e *ExtraData) PackageName() string {
	v, _ := e.GetString(KeyPackageName, "")
	return v
}

func (e *ExtraData) SetPackageName(v string) { e.SetString(KeyPackageName, v) }

func (e *ExtraData) Artist() string {
	v, _ := e.GetString(KeyArtist, "")
	return v
}

func (e *ExtraData) SetArtist(v string) { e.SetString(KeyArtist, v) }

func (e *ExtraData) Album() string {
	v, _ := e.GetString(KeyAlbum, "")
	return v
}

func (e *ExtraData) SetAlbum(v string) { e.SetString(KeyAlbum, v) }

// Title is the track title. Some apps put the lyric line here.
func (e *ExtraData) Title() string {
	v, _ := e.GetString(KeyTitle, "")
	return v
}

func (e *ExtraData) SetTitle(v string) { e.SetString(KeyTitle, v) }

// Delay is how long, in milliseconds, this lyric line stays on screen before
// the next update.
func (e *ExtraData) Delay() int {
	v, _ := e.GetInt(KeyDelay, 0)
	return int(v)
}

// SetDelay stores ms as an Int, clamped to the 32-bit range.
func (e *ExtraData) SetDelay(ms int) {
	e.SetInt(KeyDelay, int32(max(math.MinInt32, min(ms, math.MaxInt32))))
}

// DelayDuration is Delay as a time.Duration.
func (e *ExtraData) DelayDuration() time.Duration {
	return time.Duration(e.Delay()) * time.Millisecond
}

// Deprecated: check Base64Icon instead.
func (e *ExtraData) CustomIcon() bool {
	v, _ := e.GetBool(KeyCustomIcon, false)
	return v
}

// Deprecated: set Base64Icon instead.
func (e *ExtraData) SetCustomIcon(v bool) { e.SetBool(KeyCustomIcon, v) }

// MediaMetadata returns the transferred media metadata, or nil. A bag decoded
// from the wire holds the raw JSON; each call then decodes a private copy.
func (e *ExtraData) MediaMetadata() *media.Metadata {
	raw, err := e.Opaque(KeyMediaMetadata)
	if err != nil || raw == nil {
		return nil
	}
	switch v := raw.(type) {
	case *media.Metadata:
		return v
	case json.RawMessage:
		var m media.Metadata
		if err := json.Unmarshal(v, &m); err != nil {
			return nil
		}
		return &m
	default:
		return nil
	}
}

// SetMediaMetadata stores an already transferred record.
func (e *ExtraData) SetMediaMetadata(m *media.Metadata) { e.SetOpaque(KeyMediaMetadata, m) }

// SetMediaSnapshot transfers s, rewriting its images to text, and stores the
// result. The snapshot is not modified.
func (e *ExtraData) SetMediaSnapshot(s *media.Snapshot, level platform.Level) {
	e.SetMediaMetadata(media.Transfer(s, level))
}

// NewLegacy maps the old positional constructor onto reserved keys.
//
// Deprecated: build with New and the Set accessors.
func NewLegacy(customIcon bool, base64Icon string, useOwnMusicController bool, packageName string, delay int) *ExtraData {
	e := New()
	e.SetCustomIcon(customIcon)
	e.SetBase64Icon(base64Icon)
	e.SetUseOwnMusicController(useOwnMusicController)
	e.SetPackageName(packageName)
	e.SetDelay(delay)
	return e
}
