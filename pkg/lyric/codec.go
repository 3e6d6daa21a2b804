package lyric

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/illmade-knight/go-lyricgetter/pkg/extradata"
)

type wireData struct {
	Type  OperateType          `json:"type"`
	Lyric *string              `json:"lyric,omitempty"`
	Extra *extradata.ExtraData `json:"extra"`
}

// Marshal encodes an event for the channel's Data slot.
func Marshal(d *Data) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("cannot marshal nil event")
	}
	return json.Marshal(wireData{Type: d.typ, Lyric: d.lyric, Extra: d.extra})
}

// Unmarshal decodes an event. Strict decoding, used on platform levels with
// typed retrieval, also rejects unknown fields and reserved keys of the wrong
// kind. Unknown operation types decode successfully in both modes.
func Unmarshal(b []byte, strict bool) (*Data, error) {
	var w wireData
	dec := json.NewDecoder(bytes.NewReader(b))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("failed to decode lyric event: %w", err)
	}
	if w.Type == (OperateType{}) {
		return nil, ErrMissingType
	}
	if w.Extra == nil {
		w.Extra = extradata.New()
	}
	if strict {
		if err := w.Extra.ValidateReserved(); err != nil {
			return nil, err
		}
	}
	if w.Type.Known() {
		if err := validate(w.Type, w.Lyric); err != nil {
			return nil, err
		}
	}
	return &Data{typ: w.Type, lyric: w.Lyric, extra: w.Extra}, nil
}
