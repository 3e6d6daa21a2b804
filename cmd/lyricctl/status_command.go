package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/illmade-knight/go-lyricgetter/pkg/listener"
)

// fetchState asks a running listen daemon what pkg is showing. A nil state
// with a nil error means the player is not playing.
func fetchState(ctx context.Context, client *http.Client, baseURL, pkg string) (*listener.State, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/nowplaying/"+url.PathEscape(pkg), nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query daemon: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var st listener.State
		if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
			return nil, fmt.Errorf("decode state for %s: %w", pkg, err)
		}
		return &st, nil
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("daemon returned %s for %s", resp.Status, pkg)
	}
}

// daemonURL turns a listen address into a base URL on the same host.
func daemonURL(httpAddr string) string {
	if strings.HasPrefix(httpAddr, ":") {
		return "http://localhost" + httpAddr
	}
	return "http://" + httpAddr
}

func stateRow(pkg string, st *listener.State) []string {
	if st == nil {
		return []string{pkg, "", "", "not playing", ""}
	}
	return []string{
		pkg,
		st.Title,
		st.Artist,
		st.Lyric,
		st.UpdatedAt.Local().Format(time.TimeOnly),
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var addr string
	var width int

	cmd := &cobra.Command{
		Use:   "status <package>...",
		Short: "Show what players are showing, as seen by a listen daemon",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = daemonURL(ctx.config.HTTPAddr)
			}
			client := &http.Client{Timeout: 5 * time.Second}

			rows := make([][]string, 0, len(args))
			for _, pkg := range args {
				st, err := fetchState(cmd.Context(), client, addr, pkg)
				if err != nil {
					return err
				}
				rows = append(rows, stateRow(pkg, st))
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Package", "Title", "Artist", "Lyric", "Updated"}, rows, width))
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Base URL of the listen daemon (default from http_addr)")
	cmd.Flags().IntVar(&width, "width", 40, "Maximum column width")
	return cmd
}
