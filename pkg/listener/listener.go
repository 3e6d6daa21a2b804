// Package listener is the receiving side of the lyric channel: it decodes
// broadcasts and dispatches them to typed callbacks.
package listener

import (
	"context"

	"github.com/illmade-knight/go-lyricgetter/pkg/lyric"
)

// Listener receives decoded lyric events. For each event OnReceived fires
// first, then exactly one of the typed callbacks matching the event's type.
// Events of a type this version does not know reach OnReceived only.
type Listener interface {
	// OnReceived sees every decoded event.
	//
	// Deprecated: implement the typed callbacks instead.
	OnReceived(ctx context.Context, d *lyric.Data)
	OnUpdate(ctx context.Context, d *lyric.Data)
	OnStop(ctx context.Context, d *lyric.Data)
	OnMediaData(ctx context.Context, d *lyric.Data)
}

// BaseListener has no-op callbacks. Embed it and override what you need.
type BaseListener struct{}

func (BaseListener) OnReceived(context.Context, *lyric.Data)  {}
func (BaseListener) OnUpdate(context.Context, *lyric.Data)    {}
func (BaseListener) OnStop(context.Context, *lyric.Data)      {}
func (BaseListener) OnMediaData(context.Context, *lyric.Data) {}

// Funcs adapts plain functions to a Listener. Nil fields are skipped.
type Funcs struct {
	Received  func(ctx context.Context, d *lyric.Data)
	Update    func(ctx context.Context, d *lyric.Data)
	Stop      func(ctx context.Context, d *lyric.Data)
	MediaData func(ctx context.Context, d *lyric.Data)
}

func (f Funcs) OnReceived(ctx context.Context, d *lyric.Data) {
	if f.Received != nil {
		f.Received(ctx, d)
	}
}

func (f Funcs) OnUpdate(ctx context.Context, d *lyric.Data) {
	if f.Update != nil {
		f.Update(ctx, d)
	}
}

func (f Funcs) OnStop(ctx context.Context, d *lyric.Data) {
	if f.Stop != nil {
		f.Stop(ctx, d)
	}
}

func (f Funcs) OnMediaData(ctx context.Context, d *lyric.Data) {
	if f.MediaData != nil {
		f.MediaData(ctx, d)
	}
}
