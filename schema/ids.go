package schema

// SessionID identifies one editing session.
type SessionID string

// UserID identifies an authenticated user on the demo SSH server.
type UserID string
