package listener

import (
	"github.com/illmade-knight/go-lyricgetter/pkg/messagepipeline"
	"github.com/illmade-knight/go-lyricgetter/pkg/platform"
	"github.com/rs/zerolog"
)

// Register subscribes r to the lyric channel. From the level that requires an
// explicit export flag on, the registration is marked exported so broadcasts
// from other processes still reach it; earlier levels leave it unspecified.
func Register(reg messagepipeline.Registrar, r *Receiver, level platform.Level) error {
	visibility := messagepipeline.VisibilityUnspecified
	if level.RequiresExportFlag() {
		visibility = messagepipeline.VisibilityExported
	}
	return reg.Register(messagepipeline.ActionLyricData, r, visibility)
}

// RegisterWithAPIVersion registers r, ignoring apiVersion.
//
// Deprecated: use Register.
func RegisterWithAPIVersion(reg messagepipeline.Registrar, r *Receiver, level platform.Level, _ int) error {
	return Register(reg, r, level)
}

// Unregister removes r from the channel. It is best effort: failures, such as
// r never having been registered, are logged and otherwise ignored.
func Unregister(reg messagepipeline.Registrar, r *Receiver, logger zerolog.Logger) {
	if err := reg.Unregister(r); err != nil {
		logger.Debug().Err(err).Msg("Ignoring failed receiver unregistration.")
	}
}
