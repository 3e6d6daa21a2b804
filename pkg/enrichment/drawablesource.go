package enrichment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/illmade-knight/go-lyricgetter/pkg/cache"
	"github.com/illmade-knight/go-lyricgetter/pkg/imagecodec"
	"github.com/illmade-knight/go-lyricgetter/pkg/platform"
	"github.com/rs/zerolog"
)

// DrawableSource is a source of truth for icons of locally installed player
// packages. Icons are kept as drawables and encoded on each fetch, so it is
// normally placed behind a cache.
type DrawableSource struct {
	mu     sync.RWMutex
	icons  map[string]imagecodec.Drawable
	level  platform.Level
	logger zerolog.Logger
}

// NewDrawableSource creates an empty source that encodes for the given platform level.
func NewDrawableSource(level platform.Level, logger zerolog.Logger) *DrawableSource {
	return &DrawableSource{
		icons:  make(map[string]imagecodec.Drawable),
		level:  level,
		logger: logger.With().Str("component", "DrawableSource").Logger(),
	}
}

// Register sets the icon drawable for packageName.
func (s *DrawableSource) Register(packageName string, icon imagecodec.Drawable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.icons[packageName] = icon
}

// Fetch encodes the icon registered for packageName. A drawable that cannot be
// encoded is reported as an error so caches do not store an empty icon.
func (s *DrawableSource) Fetch(_ context.Context, packageName string) (cache.IconRecord, error) {
	s.mu.RLock()
	icon, ok := s.icons[packageName]
	s.mu.RUnlock()
	if !ok {
		return cache.IconRecord{}, fmt.Errorf("icon for %s: %w", packageName, cache.ErrNotFound)
	}

	res := imagecodec.EncodeDrawable(icon, s.level)
	if res.Empty() {
		if res.Err == nil {
			res.Err = imagecodec.ErrExtraction
		}
		s.logger.Warn().Err(res.Err).Str("package", packageName).Msg("Icon could not be encoded.")
		return cache.IconRecord{}, fmt.Errorf("icon for %s could not be encoded: %w", packageName, res.Err)
	}
	return cache.IconRecord{
		PackageName: packageName,
		Base64Icon:  res.Text,
		UpdatedAt:   time.Now().UTC(),
	}, nil
}

// Close is a no-op.
func (s *DrawableSource) Close() error {
	return nil
}
