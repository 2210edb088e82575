package models

import "time"

// Fill event types.
const (
	EventFillRequest = "FILL_REQUEST"
	EventFillStop    = "FILL_STOP"
	EventTransition  = "TRANSITION"
	EventFillOff     = "FILL_OFF"
	EventFillTimeout = "FILL_TIMEOUT"
	EventBackdoor    = "BACKDOOR"
)

// FillEvent is a single entry of the emulator's audit log.
type FillEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`              // FILL_REQUEST | FILL_STOP | TRANSITION | FILL_OFF | FILL_TIMEOUT | BACKDOOR
	Channel     int       `json:"channel,omitempty"` // 1 or 2; 0 for instrument-wide events
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
