// Package platform describes the capability differences between host platform
// releases that the lyric channel has to branch on.
package platform

// Level is the API level of the host platform.
type Level int

const (
	// LevelOreo is the first level that ships layered adaptive icons.
	LevelOreo Level = 26
	// LevelTiramisu is the first level with typed parcel retrieval and
	// mandatory export flags on runtime receivers.
	LevelTiramisu Level = 33

	// Default is used when the host does not report its level.
	Default = LevelTiramisu
)

// AtLeast reports whether l is the same as or newer than other.
func (l Level) AtLeast(other Level) bool {
	return l >= other
}

// StrictRetrieval reports whether values must be retrieved with their declared
// type. Older levels fall back to untyped retrieval.
func (l Level) StrictRetrieval() bool {
	return l.AtLeast(LevelTiramisu)
}

// RequiresExportFlag reports whether runtime receivers must declare their
// export visibility when they register.
func (l Level) RequiresExportFlag() bool {
	return l.AtLeast(LevelTiramisu)
}

// SupportsAdaptiveIcons reports whether layered icons can be composited.
func (l Level) SupportsAdaptiveIcons() bool {
	return l.AtLeast(LevelOreo)
}
