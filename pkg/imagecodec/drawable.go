package imagecodec

import (
	"fmt"
	"image"

	"github.com/illmade-knight/go-lyricgetter/pkg/platform"
	"golang.org/x/image/draw"
)

// Drawable is anything that can paint itself into a rectangle of a canvas.
type Drawable interface {
	// IntrinsicSize is the natural pixel size of the drawable.
	IntrinsicSize() (width, height int)
	// Draw paints the drawable scaled into r.
	Draw(dst draw.Image, r image.Rectangle)
}

// BitmapDrawable wraps a raster image.
type BitmapDrawable struct {
	Image image.Image
}

func (b *BitmapDrawable) IntrinsicSize() (int, int) {
	if b.Image == nil {
		return 0, 0
	}
	size := b.Image.Bounds().Size()
	return size.X, size.Y
}

func (b *BitmapDrawable) Draw(dst draw.Image, r image.Rectangle) {
	if b.Image == nil {
		return
	}
	src := b.Image.Bounds()
	if src.Size() == r.Size() {
		draw.Draw(dst, r, b.Image, src.Min, draw.Over)
		return
	}
	draw.BiLinear.Scale(dst, r, b.Image, src, draw.Over, nil)
}

// Bitmap returns the wrapped image.
func (b *BitmapDrawable) Bitmap() image.Image {
	return b.Image
}

// VectorDrawable is a procedural drawable painted at whatever size it is given.
type VectorDrawable struct {
	Width, Height int
	Paint         func(dst draw.Image, r image.Rectangle)
}

func (v *VectorDrawable) IntrinsicSize() (int, int) {
	return v.Width, v.Height
}

func (v *VectorDrawable) Draw(dst draw.Image, r image.Rectangle) {
	if v.Paint != nil {
		v.Paint(dst, r)
	}
}

// LayerDrawable stacks drawables bottom to top into the same bounds.
type LayerDrawable struct {
	Layers []Drawable
}

// IntrinsicSize is the largest width and height of any layer.
func (l *LayerDrawable) IntrinsicSize() (int, int) {
	var w, h int
	for _, layer := range l.Layers {
		if layer == nil {
			continue
		}
		lw, lh := layer.IntrinsicSize()
		w = max(w, lw)
		h = max(h, lh)
	}
	return w, h
}

func (l *LayerDrawable) Draw(dst draw.Image, r image.Rectangle) {
	for _, layer := range l.Layers {
		if layer != nil {
			layer.Draw(dst, r)
		}
	}
}

// AdaptiveIcon is a launcher icon made of a background and a foreground layer.
type AdaptiveIcon struct {
	Foreground Drawable
	Background Drawable
}

func (a *AdaptiveIcon) stack() *LayerDrawable {
	return &LayerDrawable{Layers: []Drawable{a.Background, a.Foreground}}
}

func (a *AdaptiveIcon) IntrinsicSize() (int, int) {
	return a.stack().IntrinsicSize()
}

// Draw paints nothing unless both layers are present.
func (a *AdaptiveIcon) Draw(dst draw.Image, r image.Rectangle) {
	if a.Foreground == nil || a.Background == nil {
		return
	}
	a.stack().Draw(dst, r)
}

// Rasterize paints d onto a fresh canvas of its intrinsic size.
func Rasterize(d Drawable) (*image.RGBA, error) {
	w, h := d.IntrinsicSize()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrNoIntrinsicSize, w, h)
	}
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	d.Draw(canvas, canvas.Bounds())
	return canvas, nil
}

// Composite paints background then foreground onto one canvas sized to the
// layer stack. Both layers are required; there is no single-layer approximation.
func Composite(foreground, background Drawable) (*image.RGBA, error) {
	if foreground == nil || background == nil {
		return nil, ErrMissingLayer
	}
	return Rasterize(&LayerDrawable{Layers: []Drawable{background, foreground}})
}

// EncodeDrawable extracts and encodes d for transport. It never panics and
// never returns a partial image: every failure surfaces as an empty Result
// with the cause attached.
func EncodeDrawable(d Drawable, level platform.Level) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Errorf("%w: %v", ErrExtraction, r)}
		}
	}()

	if icon, ok := d.(*AdaptiveIcon); ok && level.SupportsAdaptiveIcons() {
		img, err := Composite(icon.Foreground, icon.Background)
		if err != nil {
			return Result{Err: err}
		}
		return EncodeResult(img)
	}

	switch v := d.(type) {
	case nil:
		return Result{Err: fmt.Errorf("%w: nil drawable", ErrUnsupportedDrawable)}
	case *BitmapDrawable:
		return EncodeResult(v.Image)
	case *VectorDrawable, *LayerDrawable:
		img, err := Rasterize(v)
		if err != nil {
			return Result{Err: err}
		}
		return EncodeResult(img)
	default:
		if b, ok := d.(interface{ Bitmap() image.Image }); ok {
			return EncodeResult(b.Bitmap())
		}
		return Result{Err: fmt.Errorf("%w: %T", ErrUnsupportedDrawable, d)}
	}
}
