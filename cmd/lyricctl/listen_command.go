package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/illmade-knight/go-lyricgetter/internal/config"
	"github.com/illmade-knight/go-lyricgetter/pkg/cache"
	"github.com/illmade-knight/go-lyricgetter/pkg/listener"
	"github.com/illmade-knight/go-lyricgetter/pkg/lyric"
	"github.com/illmade-knight/go-lyricgetter/pkg/messagepipeline"
	"github.com/illmade-knight/go-lyricgetter/pkg/microservice"
)

// daemon is the running listen pipeline: transport consumer, bridge, local
// broadcaster, receivers and the HTTP surface.
type daemon struct {
	broadcaster *messagepipeline.LocalBroadcaster
	receivers   []*listener.Receiver
	nowPlaying  *listener.NowPlaying
	bridge      *messagepipeline.BridgeService
	server      *microservice.BaseServer
	logger      zerolog.Logger
}

func (c *commandContext) presenceStore(ctx context.Context) (cache.PresenceCache[string, listener.State], error) {
	if c.config.Transport != config.TransportRedis {
		return cache.NewInMemoryPresenceCacheWithTTL[string, listener.State](c.config.PresenceTTL()), nil
	}
	client, err := c.redisClient(ctx)
	if err != nil {
		return nil, err
	}
	redisCfg := c.redisCacheConfig(c.config.Redis.PresencePrefix, c.config.PresenceTTL())
	return cache.NewRedisPresenceCache[string, listener.State](redisCfg, client, c.logger)
}

// printer writes one line per typed event.
func printer(w io.Writer) listener.Funcs {
	return listener.Funcs{
		Update: func(_ context.Context, d *lyric.Data) {
			line, _ := d.Lyric()
			fmt.Fprintf(w, "[%s] %s\n", d.Extra().PackageName(), line)
		},
		Stop: func(_ context.Context, d *lyric.Data) {
			fmt.Fprintf(w, "[%s] stopped\n", d.Extra().PackageName())
		},
		MediaData: func(_ context.Context, d *lyric.Data) {
			if m := d.Extra().MediaMetadata(); m != nil {
				fmt.Fprintf(w, "[%s] now playing %s - %s\n", d.Extra().PackageName(), m.Artist(), m.Title())
			}
		},
	}
}

func (c *commandContext) newDaemon(ctx context.Context, out io.Writer, httpAddr string, printEvents bool) (*daemon, error) {
	logger := c.logger.With().Str("component", "ListenDaemon").Logger()
	level := c.level()

	store, err := c.presenceStore(ctx)
	if err != nil {
		return nil, err
	}
	c.onClose(store.Close)

	broadcaster := messagepipeline.NewLocalBroadcaster(messagepipeline.LocalBroadcasterConfig{
		RequireVisibility: level.RequiresExportFlag(),
	}, c.logger)
	server := microservice.NewBaseServerWithConfig(c.logger, microservice.BaseServerConfig{
		HTTPPort:       httpAddr,
		AllowedOrigins: c.config.AllowedOrigins,
	})
	d := &daemon{
		broadcaster: broadcaster,
		nowPlaying:  listener.NewNowPlaying(store, c.logger),
		server:      server,
		logger:      logger,
	}

	listeners := []listener.Listener{d.nowPlaying}
	if printEvents {
		listeners = append(listeners, printer(out))
	}
	for _, l := range listeners {
		r, err := listener.NewReceiver(l, level, c.logger)
		if err != nil {
			return nil, err
		}
		if err := listener.Register(d.broadcaster, r, level); err != nil {
			return nil, err
		}
		d.receivers = append(d.receivers, r)
	}

	d.server.HandleState("/nowplaying/", func(ctx context.Context, key string) (any, error) {
		return d.nowPlaying.Get(ctx, key)
	})

	consumer, err := c.newConsumer(ctx)
	if err != nil {
		return nil, err
	}
	if consumer != nil {
		d.bridge, err = messagepipeline.NewBridgeService(messagepipeline.NewBridgeServiceDefaults(), consumer, d.broadcaster, c.logger)
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *daemon) Start(ctx context.Context) error {
	if err := d.server.Start(); err != nil {
		return err
	}
	if d.bridge != nil {
		if err := d.bridge.Start(ctx); err != nil {
			return err
		}
	}
	d.logger.Info().Str("http_addr", d.server.GetHTTPPort()).Int("receivers", len(d.receivers)).Msg("Listening for lyric events.")
	return nil
}

func (d *daemon) Stop(ctx context.Context) error {
	var firstErr error
	if d.bridge != nil {
		if err := d.bridge.Stop(ctx); err != nil {
			firstErr = err
		}
	}
	for _, r := range d.receivers {
		listener.Unregister(d.broadcaster, r, d.logger)
	}
	_ = d.broadcaster.Stop(ctx)
	if err := d.server.Shutdown(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

var _ microservice.Service = (*daemon)(nil)

func newListenCommand(ctx *commandContext) *cobra.Command {
	var httpAddr string
	var printEvents bool

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Receive lyric events and serve now-playing state over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if httpAddr == "" {
				httpAddr = ctx.config.HTTPAddr
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			d, err := ctx.newDaemon(runCtx, cmd.OutOrStdout(), httpAddr, printEvents)
			if err != nil {
				return err
			}
			if err := d.Start(runCtx); err != nil {
				return err
			}
			<-runCtx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return d.Stop(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http-addr", "", "Listen address for /healthz, /metrics and /nowplaying (default from config)")
	cmd.Flags().BoolVar(&printEvents, "print", false, "Print each event to stdout")
	return cmd
}
