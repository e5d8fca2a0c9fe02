package core

import (
	"crypto/rand"
	"encoding/hex"

	"pkt.systems/termline/schema"
)

// NewSessionID mints a random identifier for one editing session.
func NewSessionID() schema.SessionID {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "sess-unknown"
	}
	return schema.SessionID(hex.EncodeToString(buf[:]))
}
