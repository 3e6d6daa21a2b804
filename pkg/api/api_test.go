package api_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"sync"
	"testing"

	"github.com/illmade-knight/go-lyricgetter/pkg/api"
	"github.com/illmade-knight/go-lyricgetter/pkg/cache"
	"github.com/illmade-knight/go-lyricgetter/pkg/enrichment"
	"github.com/illmade-knight/go-lyricgetter/pkg/extradata"
	"github.com/illmade-knight/go-lyricgetter/pkg/imagecodec"
	"github.com/illmade-knight/go-lyricgetter/pkg/listener"
	"github.com/illmade-knight/go-lyricgetter/pkg/lyric"
	"github.com/illmade-knight/go-lyricgetter/pkg/media"
	"github.com/illmade-knight/go-lyricgetter/pkg/messagepipeline"
	"github.com/illmade-knight/go-lyricgetter/pkg/platform"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// callLog records listener callbacks in order.
type callLog struct {
	mu     sync.Mutex
	calls  []string
	events []*lyric.Data
}

func (c *callLog) add(name string, d *lyric.Data) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, name)
	c.events = append(c.events, d)
}

func (c *callLog) listener() listener.Funcs {
	return listener.Funcs{
		Received:  func(_ context.Context, d *lyric.Data) { c.add("received", d) },
		Update:    func(_ context.Context, d *lyric.Data) { c.add("update", d) },
		Stop:      func(_ context.Context, d *lyric.Data) { c.add("stop", d) },
		MediaData: func(_ context.Context, d *lyric.Data) { c.add("media", d) },
	}
}

func (c *callLog) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, call := range c.calls {
		if call == name {
			n++
		}
	}
	return n
}

// newChannel wires an API to a receiver through a local broadcaster.
func newChannel(t *testing.T, opts ...api.Option) (*api.API, *messagepipeline.LocalBroadcaster, *callLog) {
	t.Helper()
	b := messagepipeline.NewLocalBroadcaster(messagepipeline.LocalBroadcasterConfig{}, zerolog.Nop())
	log := &callLog{}
	r, err := listener.NewReceiver(log.listener(), platform.Default, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, listener.Register(b, r, platform.Default))

	a, err := api.New(api.NewConfigDefaults(), b, zerolog.Nop(), opts...)
	require.NoError(t, err)
	return a, b, log
}

func TestAPI_SendLyricReachesOnUpdateOnly(t *testing.T) {
	// Arrange
	ctx := context.Background()
	a, _, log := newChannel(t)

	// Act
	require.NoError(t, a.SendLyric(ctx, "Hello", nil))

	// Assert
	assert.Equal(t, []string{"received", "update"}, log.calls)
	got := log.events[1]
	line, ok := got.Lyric()
	assert.True(t, ok)
	assert.Equal(t, "Hello", line)
	assert.Zero(t, got.Extra().Len())
}

func TestAPI_ClearLyricReachesOnStopAndLegacyOnce(t *testing.T) {
	ctx := context.Background()
	a, _, log := newChannel(t)

	require.NoError(t, a.ClearLyric(ctx))

	assert.Equal(t, 1, log.count("stop"))
	assert.Equal(t, 1, log.count("received"))
	assert.Zero(t, log.count("update"))
	_, ok := log.events[0].Lyric()
	assert.False(t, ok)
}

func TestAPI_ClearLyricWithKeepsBag(t *testing.T) {
	ctx := context.Background()
	a, _, log := newChannel(t)
	extra := extradata.New()
	extra.SetPackageName("com.example.player")

	require.NoError(t, a.ClearLyricWith(ctx, extra))
	require.Len(t, log.events, 2)
	assert.Equal(t, "com.example.player", log.events[1].Extra().PackageName())
}

func TestAPI_SendLyricPreservesExtraKinds(t *testing.T) {
	ctx := context.Background()
	a, _, log := newChannel(t)

	extra := extradata.New()
	extra.SetPackageName("com.example.player")
	extra.SetDelay(1200)
	extra.SetUseOwnMusicController(true)
	extra.SetDouble("score", 0.5)
	extra.SetLong("position", 1<<40)

	require.NoError(t, a.SendLyric(ctx, "Line", extra))

	got := log.events[1].Extra()
	assert.True(t, got.Equal(extra), "bag survives the round trip with kinds intact: %s", got)
	assert.Equal(t, 1200, got.Delay())
	assert.True(t, got.UseOwnMusicController())
}

func TestAPI_SendMediaDataTranscodesImages(t *testing.T) {
	ctx := context.Background()
	a, _, log := newChannel(t)

	art := image.NewRGBA(image.Rect(0, 0, 3, 3))
	art.Set(1, 1, color.RGBA{G: 255, A: 255})
	snapshot := &media.Snapshot{
		Strings: map[string]string{media.KeyTitle: "Song"},
		Longs:   map[string]int64{media.KeyDuration: 180000},
		Images:  map[string]any{media.KeyArt: art, media.KeyAlbumArt: "not an image"},
	}

	require.NoError(t, a.SendMediaData(ctx, snapshot))

	assert.Equal(t, []string{"received", "media"}, log.calls)
	meta := log.events[1].Extra().MediaMetadata()
	require.NotNil(t, meta)
	assert.Equal(t, "Song", meta.Title())
	assert.Equal(t, int64(180000), meta.Long(media.KeyDuration))
	decoded := meta.Bitmap(media.KeyArt)
	require.NotNil(t, decoded)
	assert.Equal(t, art.Bounds(), decoded.Bounds())
	assert.Equal(t, "", meta.BitmapBase64(media.KeyAlbumArt), "unreadable image degrades to empty")
	assert.Equal(t, "", meta.BitmapBase64(media.KeyDisplayIcon))
	assert.Equal(t, art, snapshot.Images[media.KeyArt], "snapshot is not modified")
}

func TestAPI_SendMediaDataWithCarriesPackage(t *testing.T) {
	ctx := context.Background()
	a, _, log := newChannel(t)
	extra := extradata.New()
	extra.SetPackageName("com.example.player")

	require.NoError(t, a.SendMediaDataWith(ctx, &media.Snapshot{Strings: map[string]string{media.KeyArtist: "Band"}}, extra))

	got := log.events[1].Extra()
	assert.Equal(t, "com.example.player", got.PackageName())
	require.NotNil(t, got.MediaMetadata())
	assert.Equal(t, "Band", got.MediaMetadata().Artist())
	_, hasMedia := extra.Get(extradata.KeyMediaMetadata)
	assert.False(t, hasMedia, "caller bag is not modified")
}

func TestAPI_NoListenerIsNotAnError(t *testing.T) {
	b := messagepipeline.NewLocalBroadcaster(messagepipeline.LocalBroadcasterConfig{}, zerolog.Nop())
	a, err := api.New(api.NewConfigDefaults(), b, zerolog.Nop())
	require.NoError(t, err)

	assert.NoError(t, a.SendLyric(context.Background(), "into the void", nil))
}

func TestAPI_MalformedBroadcastFiresNothing(t *testing.T) {
	ctx := context.Background()
	_, b, log := newChannel(t)

	err := b.Publish(ctx, messagepipeline.Message{MessageData: messagepipeline.MessageData{
		Action: messagepipeline.ActionLyricData,
		Data:   []byte("not an event"),
	}})

	require.NoError(t, err)
	assert.Empty(t, log.calls)
}

func TestAPI_OversizedEventIsRejected(t *testing.T) {
	ctx := context.Background()
	b := messagepipeline.NewLocalBroadcaster(messagepipeline.LocalBroadcasterConfig{}, zerolog.Nop())
	cfg := api.NewConfigDefaults()
	cfg.MaxPayloadBytes = 64
	a, err := api.New(cfg, b, zerolog.Nop())
	require.NoError(t, err)

	err = a.SendLyric(ctx, strings.Repeat("la", 100), nil)
	assert.ErrorIs(t, err, messagepipeline.ErrPayloadTooLarge)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, messagepipeline.Message) error {
	return errors.New("transport down")
}
func (failingPublisher) Stop(context.Context) error { return nil }

func TestAPI_PublisherErrorIsReturned(t *testing.T) {
	a, err := api.New(api.Config{}, failingPublisher{}, zerolog.Nop())
	require.NoError(t, err)

	err = a.ClearLyric(context.Background())
	assert.ErrorContains(t, err, "transport down")
}

func TestAPI_EnricherFillsIconWithoutTouchingCallerBag(t *testing.T) {
	ctx := context.Background()
	source := enrichment.NewDrawableSource(platform.Default, zerolog.Nop())
	icon := image.NewRGBA(image.Rect(0, 0, 2, 2))
	icon.Set(0, 0, color.RGBA{B: 255, A: 255})
	source.Register("com.example.player", &imagecodec.BitmapDrawable{Image: icon})

	icons, err := cache.NewInMemoryLRUCache[string, cache.IconRecord](8, source)
	require.NoError(t, err)
	enrich, err := enrichment.NewPackageIconEnricher(enrichment.FromFetcher[string, cache.IconRecord](icons), zerolog.Nop())
	require.NoError(t, err)

	a, _, log := newChannel(t, api.WithEnricher(enrich))
	extra := extradata.New()
	extra.SetPackageName("com.example.player")

	require.NoError(t, a.SendLyric(ctx, "Hello", extra))

	sent := log.events[1].Extra()
	assert.NotEmpty(t, sent.Base64Icon())
	assert.NotNil(t, imagecodec.Decode(sent.Base64Icon()))
	assert.False(t, extra.Has(extradata.KeyBase64Icon), "caller's bag is not modified")
}

func TestAPI_HasEnableAndVersion(t *testing.T) {
	b := messagepipeline.NewLocalBroadcaster(messagepipeline.LocalBroadcasterConfig{}, zerolog.Nop())

	plain, err := api.New(api.NewConfigDefaults(), b, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, plain.HasEnable())

	hooked, err := api.New(api.Config{Hooked: true}, b, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, hooked.HasEnable())

	assert.Equal(t, 6, api.APIVersion)

	_, err = api.New(api.Config{}, nil, zerolog.Nop())
	assert.Error(t, err)
}

type capturingPublisher struct {
	msgs []messagepipeline.Message
}

func (c *capturingPublisher) Publish(_ context.Context, m messagepipeline.Message) error {
	c.msgs = append(c.msgs, m)
	return nil
}

func (c *capturingPublisher) Stop(context.Context) error { return nil }

func TestAPI_MessagesCarryPackageAttribute(t *testing.T) {
	ctx := context.Background()
	pub := &capturingPublisher{}
	a, err := api.New(api.NewConfigDefaults(), pub, zerolog.Nop())
	require.NoError(t, err)
	extra := extradata.New()
	extra.SetPackageName("com.example.player")

	require.NoError(t, a.SendLyric(ctx, "Line", extra))
	require.NoError(t, a.ClearLyric(ctx))

	require.Len(t, pub.msgs, 2)
	assert.Equal(t, "com.example.player", pub.msgs[0].Attributes[messagepipeline.AttrPackageName])
	assert.Equal(t, messagepipeline.ActionLyricData, pub.msgs[0].Action)
	assert.NotEmpty(t, pub.msgs[0].ID)
	assert.NotEqual(t, pub.msgs[0].ID, pub.msgs[1].ID)
	assert.Empty(t, pub.msgs[1].Attributes)
}
