package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/illmade-knight/go-lyricgetter/pkg/extradata"
)

// bagFlags are the extra-data flags shared by the publishing commands.
type bagFlags struct {
	packageName string
	delay       int
	title       string
	artist      string
	album       string
	customIcon  bool
	ownControl  bool
	extra       []string
}

func (f *bagFlags) build() (*extradata.ExtraData, error) {
	bag := extradata.New()
	if f.packageName != "" {
		bag.SetPackageName(f.packageName)
	}
	if f.delay != 0 {
		bag.SetDelay(f.delay)
	}
	if f.title != "" {
		bag.SetTitle(f.title)
	}
	if f.artist != "" {
		bag.SetArtist(f.artist)
	}
	if f.album != "" {
		bag.SetAlbum(f.album)
	}
	if f.customIcon {
		bag.SetCustomIcon(true)
	}
	if f.ownControl {
		bag.SetUseOwnMusicController(true)
	}
	raw, err := parseExtra(f.extra)
	if err != nil {
		return nil, err
	}
	bag.MergeMap(raw)
	if err := bag.ValidateReserved(); err != nil {
		return nil, err
	}
	return bag, nil
}

// parseExtra turns key=value pairs into string entries.
func parseExtra(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("extra %q: want key=value", pair)
		}
		out[key] = value
	}
	return out, nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}
