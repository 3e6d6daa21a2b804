package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/illmade-knight/go-lyricgetter/pkg/api"
	"github.com/illmade-knight/go-lyricgetter/pkg/media"
)

func (c *commandContext) newAPI(cmd *cobra.Command, opts ...api.Option) (*api.API, error) {
	publisher, err := c.newPublisher(cmd.Context())
	if err != nil {
		return nil, err
	}
	cfg := api.NewConfigDefaults()
	cfg.Hooked = c.config.Hooked
	cfg.Level = c.level()
	cfg.MaxPayloadBytes = c.config.MaxPayloadBytes
	return api.New(cfg, publisher, c.logger, opts...)
}

func addBagFlags(cmd *cobra.Command, f *bagFlags) {
	cmd.Flags().StringVarP(&f.packageName, "package", "p", "", "Package name of the player")
	cmd.Flags().StringArrayVarP(&f.extra, "extra", "e", nil, "Additional key=value entry (repeatable)")
}

func newSendCommand(ctx *commandContext) *cobra.Command {
	var flags bagFlags
	var iconFile string

	cmd := &cobra.Command{
		Use:   "send <lyric line>",
		Short: "Publish a lyric line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bag, err := flags.build()
			if err != nil {
				return err
			}
			var opts []api.Option
			enricher, err := ctx.iconEnricher(cmd.Context(), flags.packageName, iconFile)
			if err != nil {
				return err
			}
			if enricher != nil {
				opts = append(opts, api.WithEnricher(enricher))
			}
			a, err := ctx.newAPI(cmd, opts...)
			if err != nil {
				return err
			}
			if !a.HasEnable() {
				ctx.logger.Debug().Msg("No lyric display is hooked; sending anyway.")
			}
			line := strings.Join(args, " ")
			if err := a.SendLyric(cmd.Context(), line, bag); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %q via %s\n", line, ctx.config.Transport)
			return nil
		},
	}

	addBagFlags(cmd, &flags)
	cmd.Flags().IntVar(&flags.delay, "delay", 0, "Milliseconds the line stays on screen")
	cmd.Flags().StringVar(&flags.title, "title", "", "Track title")
	cmd.Flags().StringVar(&flags.artist, "artist", "", "Track artist")
	cmd.Flags().StringVar(&flags.album, "album", "", "Track album")
	cmd.Flags().BoolVar(&flags.customIcon, "custom-icon", false, "Mark the icon as custom")
	cmd.Flags().BoolVar(&flags.ownControl, "own-controller", false, "The player renders its own music controller")
	cmd.Flags().StringVar(&iconFile, "icon-file", "", "Image file used as the package icon")
	return cmd
}

func newClearCommand(ctx *commandContext) *cobra.Command {
	var flags bagFlags

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Publish a stop event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bag, err := flags.build()
			if err != nil {
				return err
			}
			a, err := ctx.newAPI(cmd)
			if err != nil {
				return err
			}
			if bag.Len() == 0 {
				err = a.ClearLyric(cmd.Context())
			} else {
				err = a.ClearLyricWith(cmd.Context(), bag)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared via %s\n", ctx.config.Transport)
			return nil
		},
	}
	addBagFlags(cmd, &flags)
	return cmd
}

func newMediaCommand(ctx *commandContext) *cobra.Command {
	var flags bagFlags
	var title, artist, album, artFile string
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "media",
		Short: "Publish now-playing metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bag, err := flags.build()
			if err != nil {
				return err
			}
			snapshot := &media.Snapshot{
				Strings: map[string]string{},
				Longs:   map[string]int64{},
				Images:  map[string]any{},
			}
			for key, value := range map[string]string{media.KeyTitle: title, media.KeyArtist: artist, media.KeyAlbum: album} {
				if value != "" {
					snapshot.Strings[key] = value
				}
			}
			if duration > 0 {
				snapshot.Longs[media.KeyDuration] = duration.Milliseconds()
			}
			if artFile != "" {
				img, err := loadImage(artFile)
				if err != nil {
					return err
				}
				snapshot.Images[media.KeyArt] = img
			}

			a, err := ctx.newAPI(cmd)
			if err != nil {
				return err
			}
			if err := a.SendMediaDataWith(cmd.Context(), snapshot, bag); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent media data via %s\n", ctx.config.Transport)
			return nil
		},
	}
	addBagFlags(cmd, &flags)
	cmd.Flags().StringVar(&title, "title", "", "Track title")
	cmd.Flags().StringVar(&artist, "artist", "", "Track artist")
	cmd.Flags().StringVar(&album, "album", "", "Track album")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Track duration")
	cmd.Flags().StringVar(&artFile, "art", "", "Image file used as the track art")
	return cmd
}
