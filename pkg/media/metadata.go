// Package media holds now-playing metadata and the transfer step that makes it
// safe to send across the lyric channel.
package media

import (
	"image"
	"maps"
	"time"

	"github.com/illmade-knight/go-lyricgetter/pkg/imagecodec"
)

// Metadata keys, matching the host platform's media session keys.
const (
	KeyTitle        = "android.media.metadata.TITLE"
	KeyArtist       = "android.media.metadata.ARTIST"
	KeyAlbum        = "android.media.metadata.ALBUM"
	KeyAlbumArtist  = "android.media.metadata.ALBUM_ARTIST"
	KeyDisplayTitle = "android.media.metadata.DISPLAY_TITLE"
	KeyMediaID      = "android.media.metadata.MEDIA_ID"
	KeyDuration     = "android.media.metadata.DURATION"
	KeyTrackNumber  = "android.media.metadata.TRACK_NUMBER"

	KeyArt         = "android.media.metadata.ART"
	KeyAlbumArt    = "android.media.metadata.ALBUM_ART"
	KeyDisplayIcon = "android.media.metadata.DISPLAY_ICON"
)

// ImageKeys are the image-bearing fields rewritten to text before transfer.
var ImageKeys = []string{KeyArt, KeyAlbumArt, KeyDisplayIcon}

// Snapshot is the host's live media metadata. Images may hold an image.Image,
// an imagecodec.Drawable or raw encoded image bytes depending on the producer.
type Snapshot struct {
	Strings map[string]string
	Longs   map[string]int64
	Images  map[string]any
}

// Metadata is the text-only record that crosses the channel. Image fields are
// stored under their original keys as base64 PNG, or "" when unavailable.
type Metadata struct {
	Strings map[string]string `json:"strings,omitempty"`
	Longs   map[string]int64  `json:"longs,omitempty"`
}

// String returns the text value stored under key.
func (m *Metadata) String(key string) string {
	if m == nil {
		return ""
	}
	return m.Strings[key]
}

// Long returns the numeric value stored under key.
func (m *Metadata) Long(key string) int64 {
	if m == nil {
		return 0
	}
	return m.Longs[key]
}

func (m *Metadata) Title() string  { return m.String(KeyTitle) }
func (m *Metadata) Artist() string { return m.String(KeyArtist) }
func (m *Metadata) Album() string  { return m.String(KeyAlbum) }

// Duration is the track length.
func (m *Metadata) Duration() time.Duration {
	return time.Duration(m.Long(KeyDuration)) * time.Millisecond
}

// BitmapBase64 returns the transferred text form of one of the ImageKeys.
func (m *Metadata) BitmapBase64(key string) string {
	return m.String(key)
}

// Bitmap decodes one of the ImageKeys, returning nil when it was not transferred.
func (m *Metadata) Bitmap(key string) image.Image {
	return imagecodec.Decode(m.BitmapBase64(key))
}

// Clone returns a copy that shares nothing with m.
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}
	return &Metadata{Strings: maps.Clone(m.Strings), Longs: maps.Clone(m.Longs)}
}
