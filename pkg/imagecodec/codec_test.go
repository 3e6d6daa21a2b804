package imagecodec_test

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/illmade-knight/go-lyricgetter/pkg/imagecodec"
	"github.com/illmade-knight/go-lyricgetter/pkg/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"
)

// newCheckerboard builds a small image with distinct, fully opaque pixels.
func newCheckerboard(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 40), G: uint8(y * 40), B: uint8((x + y) % 2 * 255), A: 255})
		}
	}
	return img
}

func fill(c color.Color) func(dst draw.Image, r image.Rectangle) {
	return func(dst draw.Image, r image.Rectangle) {
		draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	// Arrange
	src := newCheckerboard(5, 4)

	// Act
	text, err := imagecodec.Encode(src)
	require.NoError(t, err)
	decoded := imagecodec.Decode(text)

	// Assert
	require.NotNil(t, decoded)
	assert.Equal(t, src.Bounds().Size(), decoded.Bounds().Size())
	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			want := color.NRGBAModel.Convert(src.At(x, y))
			got := color.NRGBAModel.Convert(decoded.At(x, y))
			assert.Equal(t, want, got, "pixel %d,%d", x, y)
		}
	}
}

func TestDecode_Degrades(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "whitespace", input: " \n\t"},
		{name: "not base64", input: "!!not-base64!!"},
		{name: "base64 of non-image", input: "aGVsbG8gd29ybGQ="},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Nil(t, imagecodec.Decode(tc.input))
		})
	}
}

func TestDecode_AcceptsLineWrappedInput(t *testing.T) {
	text, err := imagecodec.Encode(newCheckerboard(16, 16))
	require.NoError(t, err)

	var wrapped strings.Builder
	for i := 0; i < len(text); i += 76 {
		end := min(i+76, len(text))
		wrapped.WriteString(text[i:end])
		wrapped.WriteString("\n")
	}

	decoded := imagecodec.Decode(wrapped.String())
	require.NotNil(t, decoded)
	assert.Equal(t, 16, decoded.Bounds().Dx())
}

func TestEncode_EmptyImage(t *testing.T) {
	_, err := imagecodec.Encode(image.NewRGBA(image.Rectangle{}))
	assert.ErrorIs(t, err, imagecodec.ErrEmptyImage)

	_, err = imagecodec.Encode(nil)
	assert.ErrorIs(t, err, imagecodec.ErrEmptyImage)
}

func TestComposite(t *testing.T) {
	background := &imagecodec.VectorDrawable{Width: 8, Height: 8, Paint: fill(color.RGBA{B: 255, A: 255})}
	foreground := &imagecodec.BitmapDrawable{Image: newCheckerboard(4, 4)}

	t.Run("both layers present", func(t *testing.T) {
		img, err := imagecodec.Composite(foreground, background)
		require.NoError(t, err)
		assert.Equal(t, image.Pt(8, 8), img.Bounds().Size())

		res := imagecodec.EncodeDrawable(&imagecodec.AdaptiveIcon{Foreground: foreground, Background: background}, platform.Default)
		require.NoError(t, res.Err)
		assert.False(t, res.Empty())
	})

	t.Run("missing layer yields exactly the empty string", func(t *testing.T) {
		_, err := imagecodec.Composite(nil, background)
		assert.ErrorIs(t, err, imagecodec.ErrMissingLayer)

		res := imagecodec.EncodeDrawable(&imagecodec.AdaptiveIcon{Foreground: foreground}, platform.Default)
		assert.ErrorIs(t, res.Err, imagecodec.ErrMissingLayer)
		assert.Equal(t, "", res.String())
	})

	t.Run("adaptive icons are unsupported before oreo", func(t *testing.T) {
		res := imagecodec.EncodeDrawable(&imagecodec.AdaptiveIcon{Foreground: foreground, Background: background}, platform.Level(25))
		assert.ErrorIs(t, res.Err, imagecodec.ErrUnsupportedDrawable)
		assert.True(t, res.Empty())
	})
}

func TestEncodeDrawable_Vector(t *testing.T) {
	vector := &imagecodec.VectorDrawable{Width: 6, Height: 3, Paint: fill(color.RGBA{R: 255, A: 255})}

	res := imagecodec.EncodeDrawable(vector, platform.Default)
	require.NoError(t, res.Err)

	decoded := imagecodec.Decode(res.Text)
	require.NotNil(t, decoded)
	assert.Equal(t, image.Pt(6, 3), decoded.Bounds().Size())
	r, _, _, a := decoded.At(2, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)
}

func TestEncodeDrawable_Failures(t *testing.T) {
	t.Run("panicking paint is contained", func(t *testing.T) {
		vector := &imagecodec.VectorDrawable{Width: 2, Height: 2, Paint: func(draw.Image, image.Rectangle) {
			panic("boom")
		}}
		res := imagecodec.EncodeDrawable(vector, platform.Default)
		assert.ErrorIs(t, res.Err, imagecodec.ErrExtraction)
		assert.True(t, res.Empty())
	})

	t.Run("zero sized vector", func(t *testing.T) {
		res := imagecodec.EncodeDrawable(&imagecodec.VectorDrawable{}, platform.Default)
		assert.ErrorIs(t, res.Err, imagecodec.ErrNoIntrinsicSize)
	})

	t.Run("nil drawable", func(t *testing.T) {
		res := imagecodec.EncodeDrawable(nil, platform.Default)
		assert.ErrorIs(t, res.Err, imagecodec.ErrUnsupportedDrawable)
	})
}

func TestBitmapDrawable_ScalesIntoBounds(t *testing.T) {
	layers := &imagecodec.LayerDrawable{Layers: []imagecodec.Drawable{
		&imagecodec.BitmapDrawable{Image: newCheckerboard(2, 2)},
		&imagecodec.VectorDrawable{Width: 10, Height: 6},
	}}

	img, err := imagecodec.Rasterize(layers)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(10, 6), img.Bounds().Size())
	_, _, _, a := img.At(9, 5).RGBA()
	assert.NotZero(t, a, "bitmap layer should be stretched over the whole canvas")
}
