package models

// Wire message kinds a client may send over the websocket.
const (
	KindMessage = "message"
	KindOpen    = "open"
)

// WireMessage is the JSON frame read from a client connection.
type WireMessage struct {
	Kind   string `json:"kind"`
	Target string `json:"target,omitempty"`
	Body   string `json:"body,omitempty"`
}

// StoredMessage is one persisted chat message.
type StoredMessage struct {
	ChatKey   string `bson:"chat_key" json:"chat_key"`
	Sender    string `bson:"sender" json:"sender"`
	Body      string `bson:"body" json:"body"`
	Timestamp int64  `bson:"timestamp" json:"timestamp"`
}
