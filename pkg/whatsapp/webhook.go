package whatsapp

// Webhook payload types for inbound event delivery from the WhatsApp Cloud
// API. Only the fields the dispatcher consumes are modeled.

// WebhookPayload is the top-level event envelope
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry is one account-level entry in the envelope
type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

// WebhookChange carries a value object per changed field
type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

// WebhookValue holds the inbound messages of a change
type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Contacts         []InboundContact `json:"contacts"`
	Messages         []InboundMessage `json:"messages"`
}

// InboundContact carries the sender's profile
type InboundContact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

// InboundMessage is a single inbound message: text, image or document.
type InboundMessage struct {
	From      string        `json:"from"`
	ID        string        `json:"id"`
	Timestamp string        `json:"timestamp"`
	Type      string        `json:"type"` // "text", "image", "document", ...
	Text      *InboundText  `json:"text,omitempty"`
	Image     *InboundMedia `json:"image,omitempty"`
	Document  *InboundMedia `json:"document,omitempty"`
}

// InboundText is the body of a text message
type InboundText struct {
	Body string `json:"body"`
}

// InboundMedia identifies an attached media object
type InboundMedia struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Filename string `json:"filename,omitempty"`
}

// FirstMessage extracts the first message from the payload, or nil when the
// event carries none (status updates, etc).
func (p *WebhookPayload) FirstMessage() *InboundMessage {
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			if len(change.Value.Messages) > 0 {
				return &change.Value.Messages[0]
			}
		}
	}
	return nil
}

// FirstContactName returns the profile name accompanying the first message,
// or "" when the payload carries no contact.
func (p *WebhookPayload) FirstContactName() string {
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			if len(change.Value.Contacts) > 0 {
				return change.Value.Contacts[0].Profile.Name
			}
		}
	}
	return ""
}
