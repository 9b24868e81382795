package models

import "time"

// Command results recorded in the audit log.
const (
	CommandOK     = "OK"
	CommandFailed = "FAILED"
)

// CommandEvent is one attempted write against the device. The gateway keeps
// an audit trail of commands, not of point values.
type CommandEvent struct {
	EventID  string    `json:"event_id"`
	IssuedAt time.Time `json:"issued_at"`
	OID      string    `json:"oid"`
	Value    string    `json:"value"`
	Result   string    `json:"result"` // OK | FAILED
	Error    string    `json:"error,omitempty"`
}
