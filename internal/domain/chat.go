package domain

type MessageStatus string

const (
	StatusReceived  MessageStatus = "received"
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
	StatusFailed    MessageStatus = "failed"
)

// SenderMe is the From value of outgoing messages.
const SenderMe = "me"

// MediaPlaceholder stands in for message types we do not render (image,
// audio, document, sticker, ...).
const MediaPlaceholder = "[media]"

// Chat is the per-phone conversation summary. Phone is the canonical
// digit-only key; LastMessage/LastTs are denormalized for list rendering.
type Chat struct {
	Phone       string `db:"phone" json:"phone"`
	Name        string `db:"name" json:"name"`
	Unread      int    `db:"unread" json:"unread"`
	LastMessage string `db:"last_message" json:"lastMessage"`
	LastTs      int64  `db:"last_ts" json:"lastTs"`
}

// Message is one send/receive event. ID is the locally generated
// client-facing key; ProviderID is 360dialog's id and correlates later
// status callbacks. Ts is milliseconds since epoch.
type Message struct {
	ID         string        `db:"id" json:"id"`
	ProviderID string        `db:"provider_id" json:"providerId,omitempty"`
	Text       string        `db:"text" json:"text"`
	From       string        `db:"sender" json:"from"`
	Ts         int64         `db:"ts" json:"ts"`
	Status     MessageStatus `db:"status" json:"status"`
}

// Event types pushed to connected websocket clients.
const (
	EventNewMessage   = "new_message"
	EventMessageSent  = "message_sent"
	EventStatusUpdate = "status_update"
	EventRefresh      = "refresh"
	EventPing         = "ping"
)

// Event is a broadcast notification. Clients reconcile state through the
// query endpoints; events carry just enough to avoid a refetch for the
// common cases.
type Event struct {
	Type       string        `json:"type"`
	Phone      string        `json:"phone,omitempty"`
	Message    *Message      `json:"message,omitempty"`
	ProviderID string        `json:"providerId,omitempty"`
	Status     MessageStatus `json:"status,omitempty"`
}

// ProviderRef points a provider message id back at the stored message,
// cached so status callbacks can be resolved without a recipient phone.
type ProviderRef struct {
	Phone     string `json:"phone"`
	MessageID string `json:"messageId"`
}
