// Package api is the publishing side of the lyric channel. A host application
// creates one API and calls SendLyric for every line it shows, SendMediaData
// when the track changes, and ClearLyric when playback stops.
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/illmade-knight/go-lyricgetter/pkg/enrichment"
	"github.com/illmade-knight/go-lyricgetter/pkg/extradata"
	"github.com/illmade-knight/go-lyricgetter/pkg/lyric"
	"github.com/illmade-knight/go-lyricgetter/pkg/media"
	"github.com/illmade-knight/go-lyricgetter/pkg/messagepipeline"
	"github.com/illmade-knight/go-lyricgetter/pkg/platform"
	"github.com/rs/zerolog"
)

// APIVersion is the version of the lyric channel contract implemented here.
const APIVersion = 6

// Config configures an API.
type Config struct {
	// Hooked reports whether a lyric-display module has taken over this
	// process. Without it HasEnable is false.
	Hooked bool
	// Level is the platform level used for image retrieval and encoding.
	Level platform.Level
	// MaxPayloadBytes bounds the encoded event; zero uses the transport default.
	MaxPayloadBytes int
}

// NewConfigDefaults returns a config for the current platform level.
func NewConfigDefaults() Config {
	return Config{
		Level:           platform.Default,
		MaxPayloadBytes: messagepipeline.DefaultMaxPayloadBytes,
	}
}

// API publishes lyric events. It is safe for concurrent use if the publisher is.
type API struct {
	cfg       Config
	publisher messagepipeline.SimplePublisher
	enricher  enrichment.Enricher
	logger    zerolog.Logger
}

// Option customizes an API.
type Option func(*API)

// WithEnricher runs e on the bag of every Update event before it is sent.
func WithEnricher(e enrichment.Enricher) Option {
	return func(a *API) { a.enricher = e }
}

// New creates an API publishing through publisher.
func New(cfg Config, publisher messagepipeline.SimplePublisher, logger zerolog.Logger, opts ...Option) (*API, error) {
	if publisher == nil {
		return nil, fmt.Errorf("publisher cannot be nil")
	}
	if cfg.Level == 0 {
		cfg.Level = platform.Default
	}
	if cfg.MaxPayloadBytes <= 0 {
		cfg.MaxPayloadBytes = messagepipeline.DefaultMaxPayloadBytes
	}
	a := &API{
		cfg:       cfg,
		publisher: publisher,
		logger:    logger.With().Str("component", "LyricAPI").Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// HasEnable reports whether lyric display is active in this process. It is
// false unless the API was configured as hooked.
func (a *API) HasEnable() bool {
	return a.cfg.Hooked
}

// SendLyric publishes an Update for one lyric line. A nil extra sends an empty bag.
// The bag is copied before enrichment, so the caller's bag is never modified.
func (a *API) SendLyric(ctx context.Context, lyricLine string, extra *extradata.ExtraData) error {
	bag := extradata.New()
	if extra != nil {
		bag = extra.Clone()
	}
	if a.enricher != nil {
		a.enricher(ctx, bag)
	}
	return a.send(ctx, lyric.NewUpdate(lyricLine, bag))
}

// SendMediaData transfers the snapshot into an owned, text-only record and
// publishes it as a MediaData event. Image fields that cannot be encoded are
// sent as empty strings.
func (a *API) SendMediaData(ctx context.Context, snapshot *media.Snapshot) error {
	return a.SendMediaDataWith(ctx, snapshot, nil)
}

// SendMediaDataWith is SendMediaData with extra keys, such as the package name,
// sent alongside the metadata.
func (a *API) SendMediaDataWith(ctx context.Context, snapshot *media.Snapshot, extra *extradata.ExtraData) error {
	bag := extradata.New()
	if extra != nil {
		bag = extra.Clone()
	}
	bag.SetMediaSnapshot(snapshot, a.cfg.Level)
	d, err := lyric.NewMediaData(bag)
	if err != nil {
		return err
	}
	return a.send(ctx, d)
}

// ClearLyric publishes a Stop event.
func (a *API) ClearLyric(ctx context.Context) error {
	return a.send(ctx, lyric.NewStop(nil))
}

// ClearLyricWith publishes a Stop event carrying extra, typically the package name.
func (a *API) ClearLyricWith(ctx context.Context, extra *extradata.ExtraData) error {
	var bag *extradata.ExtraData
	if extra != nil {
		bag = extra.Clone()
	}
	return a.send(ctx, lyric.NewStop(bag))
}

func (a *API) send(ctx context.Context, d *lyric.Data) error {
	typ := d.Type().String()
	payload, err := lyric.Marshal(d)
	if err != nil {
		publishedTotal.WithLabelValues(typ, resultError).Inc()
		return fmt.Errorf("failed to encode %s event: %w", typ, err)
	}

	msg := messagepipeline.Message{
		MessageData: messagepipeline.MessageData{
			ID:     uuid.NewString(),
			Action: messagepipeline.ActionLyricData,
			Data:   payload,
		},
	}
	if pkg := d.Extra().PackageName(); pkg != "" {
		msg.Attributes = map[string]string{messagepipeline.AttrPackageName: pkg}
	}
	if err := messagepipeline.ValidatePayloadSize(msg, a.cfg.MaxPayloadBytes); err != nil {
		publishedTotal.WithLabelValues(typ, resultTooLarge).Inc()
		a.logger.Warn().Err(err).Str("type", typ).Msg("Lyric event exceeds the transport size limit.")
		return err
	}

	if err := a.publisher.Publish(ctx, msg); err != nil {
		result := resultError
		if errors.Is(err, messagepipeline.ErrPayloadTooLarge) {
			result = resultTooLarge
		}
		publishedTotal.WithLabelValues(typ, result).Inc()
		return fmt.Errorf("failed to publish %s event: %w", typ, err)
	}
	publishedTotal.WithLabelValues(typ, resultOK).Inc()
	a.logger.Debug().Str("type", typ).Str("msg_id", msg.ID).Int("bytes", len(payload)).Msg("Lyric event published.")
	return nil
}
