// Package lyric defines the event envelope published on the lyric channel.
//
// A Data value is built by the publisher right before it is sent and is never
// modified afterwards. Its operation type decides which fields are meaningful:
// Update carries lyric text, Stop and MediaData never do, and MediaData carries
// transferred media metadata in the attribute bag.
package lyric

import (
	"errors"
	"fmt"

	"github.com/illmade-knight/go-lyricgetter/pkg/extradata"
)

var (
	ErrMissingLyric         = errors.New("update event requires a lyric")
	ErrUnexpectedLyric      = errors.New("only update events carry a lyric")
	ErrMissingMediaMetadata = errors.New("media data event requires media metadata")
	ErrUnknownType          = errors.New("unknown operate type")
	ErrMissingType          = errors.New("event has no operate type")
)

// Data is one lyric event.
type Data struct {
	typ   OperateType
	lyric *string
	extra *extradata.ExtraData
}

// New validates and builds an event. A nil bag becomes an empty one.
func New(t OperateType, lyric *string, extra *extradata.ExtraData) (*Data, error) {
	if !t.Known() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
	if extra == nil {
		extra = extradata.New()
	}
	if err := validate(t, lyric); err != nil {
		return nil, err
	}
	if t == MediaData && !extra.Has(extradata.KeyMediaMetadata) {
		return nil, ErrMissingMediaMetadata
	}
	return &Data{typ: t, lyric: lyric, extra: extra}, nil
}

// NewUpdate builds an Update event for one lyric line.
func NewUpdate(lyric string, extra *extradata.ExtraData) *Data {
	d, _ := New(Update, &lyric, extra)
	return d
}

// NewStop builds a Stop event.
func NewStop(extra *extradata.ExtraData) *Data {
	d, _ := New(Stop, nil, extra)
	return d
}

// NewMediaData builds a MediaData event; extra must hold mediaMetadata.
func NewMediaData(extra *extradata.ExtraData) (*Data, error) {
	return New(MediaData, nil, extra)
}

func validate(t OperateType, lyric *string) error {
	switch t {
	case Update:
		if lyric == nil {
			return ErrMissingLyric
		}
	case Stop, MediaData:
		if lyric != nil {
			return fmt.Errorf("%w: got one on %s", ErrUnexpectedLyric, t)
		}
	}
	return nil
}

// Type returns the operation type.
func (d *Data) Type() OperateType {
	return d.typ
}

// Lyric returns the lyric text and whether the event carries one.
func (d *Data) Lyric() (string, bool) {
	if d.lyric == nil {
		return "", false
	}
	return *d.lyric, true
}

// LyricText returns the lyric text, or "" when absent.
func (d *Data) LyricText() string {
	s, _ := d.Lyric()
	return s
}

// Extra returns the attribute bag. It is shared with the event; do not modify it.
func (d *Data) Extra() *extradata.ExtraData {
	return d.extra
}

func (d *Data) String() string {
	if s, ok := d.Lyric(); ok {
		return fmt.Sprintf("%s(%q, %s)", d.typ, s, d.extra)
	}
	return fmt.Sprintf("%s(%s)", d.typ, d.extra)
}
