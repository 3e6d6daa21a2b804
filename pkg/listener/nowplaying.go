package listener

import (
	"context"
	"time"

	"github.com/illmade-knight/go-lyricgetter/pkg/cache"
	"github.com/illmade-knight/go-lyricgetter/pkg/lyric"
	"github.com/illmade-knight/go-lyricgetter/pkg/media"
	"github.com/rs/zerolog"
)

// UnknownPackage keys events whose bag names no package.
const UnknownPackage = "unknown"

// State is what one player is currently showing.
type State struct {
	PackageName string          `json:"packageName"`
	Lyric       string          `json:"lyric,omitempty"`
	Title       string          `json:"title,omitempty"`
	Artist      string          `json:"artist,omitempty"`
	Album       string          `json:"album,omitempty"`
	Base64Icon  string          `json:"base64Icon,omitempty"`
	Delay       int             `json:"delay,omitempty"`
	Media       *media.Metadata `json:"media,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NowPlaying is a Listener that mirrors the latest state of each player into a
// presence cache: Update sets the lyric, MediaData sets the track metadata, and
// Stop clears the player.
type NowPlaying struct {
	BaseListener
	store  cache.PresenceCache[string, State]
	logger zerolog.Logger
	now    func() time.Time
}

// NewNowPlaying creates a tracker writing into store.
func NewNowPlaying(store cache.PresenceCache[string, State], logger zerolog.Logger) *NowPlaying {
	return &NowPlaying{
		store:  store,
		logger: logger.With().Str("component", "NowPlaying").Logger(),
		now:    time.Now,
	}
}

func packageOf(d *lyric.Data) string {
	if pkg := d.Extra().PackageName(); pkg != "" {
		return pkg
	}
	return UnknownPackage
}

// current returns the stored state for pkg, or a fresh one.
func (n *NowPlaying) current(ctx context.Context, pkg string) State {
	st, err := n.store.Fetch(ctx, pkg)
	if err != nil {
		return State{PackageName: pkg}
	}
	return st
}

func (n *NowPlaying) OnUpdate(ctx context.Context, d *lyric.Data) {
	pkg := packageOf(d)
	st := n.current(ctx, pkg)
	extra := d.Extra()

	st.Lyric = d.LyricText()
	st.Delay = extra.Delay()
	if v := extra.Title(); v != "" {
		st.Title = v
	}
	if v := extra.Artist(); v != "" {
		st.Artist = v
	}
	if v := extra.Album(); v != "" {
		st.Album = v
	}
	if v := extra.Base64Icon(); v != "" {
		st.Base64Icon = v
	}
	n.save(ctx, st)
}

func (n *NowPlaying) OnMediaData(ctx context.Context, d *lyric.Data) {
	pkg := packageOf(d)
	st := n.current(ctx, pkg)
	if m := d.Extra().MediaMetadata(); m != nil {
		st.Media = m
		st.Title = m.Title()
		st.Artist = m.Artist()
		st.Album = m.Album()
	}
	n.save(ctx, st)
}

func (n *NowPlaying) OnStop(ctx context.Context, d *lyric.Data) {
	pkg := packageOf(d)
	if err := n.store.Delete(ctx, pkg); err != nil {
		n.logger.Error().Err(err).Str("package", pkg).Msg("Failed to clear now-playing state.")
	}
}

// Get returns the state recorded for pkg.
func (n *NowPlaying) Get(ctx context.Context, pkg string) (State, error) {
	return n.store.Fetch(ctx, pkg)
}

func (n *NowPlaying) save(ctx context.Context, st State) {
	st.UpdatedAt = n.now()
	if err := n.store.Set(ctx, st.PackageName, st); err != nil {
		n.logger.Error().Err(err).Str("package", st.PackageName).Msg("Failed to record now-playing state.")
	}
}
