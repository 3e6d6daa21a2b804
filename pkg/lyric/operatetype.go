package lyric

// OperateType is the discriminator of a lyric event.
type OperateType struct {
	name string
}

var (
	// Update carries a new lyric line.
	Update = OperateType{name: "UPDATE"}
	// Stop clears the lyric; no lyric text is carried.
	Stop = OperateType{name: "STOP"}
	// MediaData announces new media metadata in the bag's mediaMetadata slot.
	MediaData = OperateType{name: "MEDIA_DATA"}
)

// ParseOperateType never fails: unrecognized names produce an unknown type
// that compares unequal to every known one, so newer senders stay readable.
func ParseOperateType(name string) OperateType {
	switch name {
	case Update.name:
		return Update
	case Stop.name:
		return Stop
	case MediaData.name:
		return MediaData
	default:
		return OperateType{name: name}
	}
}

// Known reports whether t is one of Update, Stop or MediaData.
func (t OperateType) Known() bool {
	return t == Update || t == Stop || t == MediaData
}

func (t OperateType) String() string {
	if t.name == "" {
		return "UNSPECIFIED"
	}
	return t.name
}

func (t OperateType) MarshalText() ([]byte, error) {
	return []byte(t.name), nil
}

func (t *OperateType) UnmarshalText(text []byte) error {
	*t = ParseOperateType(string(text))
	return nil
}
