package waba

// Meta-standard WhatsApp Business webhook shapes as delivered by 360dialog.
// Payloads unrelated to messages/statuses simply leave Messages/Statuses
// empty and are ignored by the ingestor.

type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

type ChangeValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Metadata         Metadata         `json:"metadata"`
	Contacts         []Contact        `json:"contacts,omitempty"`
	Messages         []InboundMessage `json:"messages,omitempty"`
	Statuses         []StatusUpdate   `json:"statuses,omitempty"`
}

type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type Contact struct {
	Profile ContactProfile `json:"profile"`
	WaID    string         `json:"wa_id"`
}

type ContactProfile struct {
	Name string `json:"name"`
}

// InboundMessage is one entry of value.messages. Timestamp is a string of
// epoch seconds; Text is present only for type "text".
type InboundMessage struct {
	From      string       `json:"from"`
	ID        string       `json:"id"`
	Timestamp string       `json:"timestamp"`
	Type      string       `json:"type"`
	Text      *TextContent `json:"text,omitempty"`
}

type TextContent struct {
	Body string `json:"body"`
}

// StatusUpdate is one entry of value.statuses. Status values (sent,
// delivered, read, failed) are passed through verbatim.
type StatusUpdate struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// SendTextRequest is the message-send payload.
type SendTextRequest struct {
	MessagingProduct string      `json:"messaging_product"`
	RecipientType    string      `json:"recipient_type"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             TextContent `json:"text"`
}

// SendTextResponse carries the provider-assigned message id used to
// correlate later status callbacks.
type SendTextResponse struct {
	Messages []SentMessage `json:"messages"`
	Contacts []Contact     `json:"contacts,omitempty"`
}

type SentMessage struct {
	ID string `json:"id"`
}

// MarkReadRequest is the read-receipt payload for an inbound message.
type MarkReadRequest struct {
	MessagingProduct string `json:"messaging_product"`
	Status           string `json:"status"`
	MessageID        string `json:"message_id"`
}
