// audit/model.go
package audit

import (
	"time"
)

// EventAuthDecision is published on the event bus for every signature check.
const EventAuthDecision = "auth.decision"

const (
	ActionPresence = "presence"
	ActionVerify   = "verify"
)

type AuditLog struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Action         string    `json:"action"`
	KeyFingerprint string    `json:"key_fingerprint,omitempty"`
	AppName        string    `json:"app_name,omitempty"`
	Method         string    `json:"method"`
	Path           string    `json:"path"`
	ClientIP       string    `json:"client_ip,omitempty"`
	Authenticated  bool      `json:"authenticated"`
	Reason         string    `json:"reason,omitempty"`
}

// Filter narrows QueryLogs. Zero time bounds are ignored.
type Filter struct {
	From           time.Time
	To             time.Time
	KeyFingerprint string
	Size           int
}
