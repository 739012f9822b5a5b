package driven

import "context"

// Message is an outbound notification.
type Message struct {
	Subject string
	Body    string
}

// Notifier delivers reports to a fixed receiver.
// Sender and receiver come from configuration, not from the caller.
type Notifier interface {
	// Send delivers the message. It returns nil only when the channel accepted it.
	Send(ctx context.Context, msg Message) error

	// Close releases resources.
	Close() error
}
