package domain

// SessionState represents a user's current relationship to the relay.
// States are not persisted; every user is StateNone after a restart.
type SessionState string

const (
	StateNone    SessionState = "none"
	StatePending SessionState = "pending"
	StateActive  SessionState = "active"
)
