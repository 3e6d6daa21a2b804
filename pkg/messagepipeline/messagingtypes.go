package messagepipeline

import (
	"time"
)

const (
	// ActionLyricData is the channel name lyric events are broadcast under.
	// Senders and receivers must use exactly this value.
	ActionLyricData = "Lyric_Data"

	// DataKey names the single payload slot of a channel message.
	DataKey = "Data"

	// AttrPackageName carries the sending player's package name. Publishers
	// that support ordering use it as the ordering key.
	AttrPackageName = "package_name"

	// Attribute keys used when a message travels over a broker.
	attrAction    = "action"
	attrMessageID = "message_id"
)

// Message is the transport representation of one broadcast. It carries the
// channel name, the encoded event in its Data slot, and acknowledgment handles
// when the message came from a broker.
type Message struct {
	// MessageData contains the action and the payload slot.
	MessageData

	// Attributes holds broker metadata (e.g., Pub/Sub attributes).
	Attributes map[string]string

	// Remote is true when the message was bridged in from another process.
	Remote bool

	// Ack signals that the message was handled. Nil for local broadcasts.
	Ack func()

	// Nack signals that the message could not be handed off. Nil for local broadcasts.
	Nack func()
}

// MessageData is the part of a Message that is serialized onto a broker.
type MessageData struct {
	// ID is the unique identifier of the broadcast.
	ID string `json:"id"`

	// Action is the channel name the message was sent under.
	Action string `json:"action"`

	// Data is the payload slot holding the encoded lyric event.
	Data []byte `json:"Data"`

	// PublishTime is when the sender handed the message to the transport.
	PublishTime time.Time `json:"publishTime"`
}

func ack(msg Message) {
	if msg.Ack != nil {
		msg.Ack()
	}
}
