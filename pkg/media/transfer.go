package media

import (
	"bytes"
	"image"

	"github.com/illmade-knight/go-lyricgetter/pkg/imagecodec"
	"github.com/illmade-knight/go-lyricgetter/pkg/platform"
)

// Transfer builds the text-only record for s. See TransferResults.
func Transfer(s *Snapshot, level platform.Level) *Metadata {
	m, _ := TransferResults(s, level)
	return m
}

// TransferResults copies the text and numeric fields of s and rewrites every
// image field into its encoded form. Absent or unreadable images become "".
// The snapshot itself is left untouched. The per-key results are returned so
// callers can log extraction failures.
func TransferResults(s *Snapshot, level platform.Level) (*Metadata, map[string]imagecodec.Result) {
	m := &Metadata{
		Strings: make(map[string]string),
		Longs:   make(map[string]int64),
	}
	results := make(map[string]imagecodec.Result, len(ImageKeys))
	if s != nil {
		for k, v := range s.Strings {
			m.Strings[k] = v
		}
		for k, v := range s.Longs {
			m.Longs[k] = v
		}
	}

	for _, key := range ImageKeys {
		var raw any
		if s != nil {
			raw = s.Images[key]
		}
		res := imagecodec.Result{}
		if d := retrieve(raw, level.StrictRetrieval()); d != nil {
			res = imagecodec.EncodeDrawable(d, level)
		}
		m.Strings[key] = res.Text
		results[key] = res
	}
	return m, results
}

// retrieve turns a stored image value into a drawable. Strict retrieval only
// accepts values already typed as images.
func retrieve(raw any, strict bool) imagecodec.Drawable {
	if img, ok := raw.(image.Image); ok {
		return &imagecodec.BitmapDrawable{Image: img}
	}
	if strict {
		return nil
	}
	switch v := raw.(type) {
	case imagecodec.Drawable:
		return v
	case []byte:
		img, _, err := image.Decode(bytes.NewReader(v))
		if err != nil {
			return nil
		}
		return &imagecodec.BitmapDrawable{Image: img}
	}
	return nil
}
