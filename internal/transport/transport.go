package transport

import "relaybot/internal/domain"

// MessageRef identifies an inbound message so it can be copied verbatim to
// another chat.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Courier delivers outbound messages through the chat platform. Send and
// Copy return the platform-assigned message ID of the delivered message,
// which serves as the routing token for reply correlation. Extra options
// are passed through to the platform (e.g. reply keyboards).
type Courier interface {
	Send(to domain.Address, text string, opts ...interface{}) (int, error)
	Copy(to domain.Address, src MessageRef) (int, error)
	Resolve(handle string) (int64, error)
}
