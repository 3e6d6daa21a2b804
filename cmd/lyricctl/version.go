package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illmade-knight/go-lyricgetter/pkg/api"
	"github.com/illmade-knight/go-lyricgetter/pkg/platform"
)

// version is set at build time with -ldflags.
var version = "dev"

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "lyricctl %s (api %d, platform level %d)\n", version, api.APIVersion, platform.Default)
			return nil
		},
	}
}
