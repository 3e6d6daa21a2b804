package listener

import (
	"context"
	"fmt"

	"github.com/illmade-knight/go-lyricgetter/pkg/lyric"
	"github.com/illmade-knight/go-lyricgetter/pkg/messagepipeline"
	"github.com/illmade-knight/go-lyricgetter/pkg/platform"
	"github.com/rs/zerolog"
)

// Receiver turns channel messages into Listener callbacks. It is the
// messagepipeline.Handler registered on the lyric channel.
type Receiver struct {
	listener Listener
	level    platform.Level
	logger   zerolog.Logger
}

// NewReceiver creates a receiver that decodes for the given platform level.
func NewReceiver(l Listener, level platform.Level, logger zerolog.Logger) (*Receiver, error) {
	if l == nil {
		return nil, fmt.Errorf("listener cannot be nil")
	}
	return &Receiver{
		listener: l,
		level:    level,
		logger:   logger.With().Str("component", "LyricReceiver").Logger(),
	}, nil
}

// OnReceive decodes the Data slot and dispatches it. Nothing is returned to the
// sender: malformed payloads, and panics raised by the listener, are logged,
// counted and dropped.
func (r *Receiver) OnReceive(ctx context.Context, msg messagepipeline.Message) {
	defer func() {
		if p := recover(); p != nil {
			droppedTotal.WithLabelValues(reasonPanic).Inc()
			r.logger.Error().Interface("panic", p).Str("msg_id", msg.ID).Msg("Listener panicked while handling lyric event.")
		}
	}()

	if len(msg.Data) == 0 {
		droppedTotal.WithLabelValues(reasonEmpty).Inc()
		r.logger.Debug().Str("msg_id", msg.ID).Msg("Broadcast carried no lyric data.")
		return
	}

	d, err := lyric.Unmarshal(msg.Data, r.level.StrictRetrieval())
	if err != nil {
		droppedTotal.WithLabelValues(reasonDecode).Inc()
		r.logger.Warn().Err(err).Str("msg_id", msg.ID).Msg("Dropping undecodable lyric event.")
		return
	}

	r.dispatch(ctx, d)
}

func (r *Receiver) dispatch(ctx context.Context, d *lyric.Data) {
	typ := d.Type().String()
	if !d.Type().Known() {
		typ = "unknown"
	}
	dispatchedTotal.WithLabelValues(typ).Inc()
	r.listener.OnReceived(ctx, d)

	switch d.Type() {
	case lyric.Update:
		r.listener.OnUpdate(ctx, d)
	case lyric.Stop:
		r.listener.OnStop(ctx, d)
	case lyric.MediaData:
		r.listener.OnMediaData(ctx, d)
	default:
		r.logger.Debug().Str("type", d.Type().String()).Msg("No callback for lyric event type.")
	}
}
