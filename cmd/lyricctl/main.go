// Command lyricctl publishes lyric events and runs a listener daemon that
// mirrors what each player is showing.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd, cc := newRootCommand()
	if err := execute(context.Background(), cmd, cc); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
