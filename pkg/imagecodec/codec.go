// Package imagecodec converts images into a transport-safe text form and back.
//
// Images are rendered to PNG in memory and the raster bytes are encoded as
// standard base64. Nothing is resized: callers that care about payload size
// must budget for it before handing images over.
package imagecodec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

var (
	// ErrEmptyImage is returned when an image has no pixels to encode.
	ErrEmptyImage = errors.New("image has no pixels")
	// ErrMissingLayer is returned when a layered icon lacks its foreground or background.
	ErrMissingLayer = errors.New("layered icon is missing a layer")
	// ErrNoIntrinsicSize is returned when a drawable reports a non-positive size.
	ErrNoIntrinsicSize = errors.New("drawable has no intrinsic size")
	// ErrUnsupportedDrawable is returned for drawables that cannot be rendered.
	ErrUnsupportedDrawable = errors.New("unsupported drawable")
	// ErrExtraction wraps a failure recovered while rendering a drawable.
	ErrExtraction = errors.New("image extraction failed")
)

// Result is the outcome of an extraction that must never fail across the
// channel boundary. A failed extraction carries an empty Text and the cause in
// Err, so callers can write Text unconditionally and log Err if they care.
type Result struct {
	Text string
	Err  error
}

// Empty reports whether the result carries no encoded image.
func (r Result) Empty() bool {
	return r.Text == ""
}

// String returns the encoded text, or "" when extraction failed.
func (r Result) String() string {
	return r.Text
}

// Encode renders img as PNG and returns the base64 text of the raster bytes.
func Encode(img image.Image) (string, error) {
	if img == nil || img.Bounds().Empty() {
		return "", ErrEmptyImage
	}
	var buf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := encoder.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// EncodeResult is Encode folded into a Result.
func EncodeResult(img image.Image) Result {
	text, err := Encode(img)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Text: text}
}

// Decode is the inverse of Encode. It accepts line-wrapped base64 as produced
// by mobile encoders and any raster format registered with the image package.
// Empty or malformed input yields nil.
func Decode(text string) image.Image {
	raw := DecodeBytes(text)
	if raw == nil {
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil
	}
	return img
}

// DecodeBytes returns the raster bytes carried by text, or nil when text is
// empty or not valid base64.
func DecodeBytes(text string) []byte {
	compact := strings.Join(strings.Fields(text), "")
	if compact == "" {
		return nil
	}
	raw, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(compact)
		if err != nil {
			return nil
		}
	}
	return raw
}
