package service

import "time"

// LogFilter narrows the event log. Zero values mean "no bound".
type LogFilter struct {
	From    time.Time // inclusive
	To      time.Time // inclusive
	Type    string    // "", FILL_REQUEST, FILL_STOP, TRANSITION, FILL_OFF, FILL_TIMEOUT, BACKDOOR
	Channel int       // 0 for all, 1 or 2
}

type SampleFilter struct {
	From  time.Time
	To    time.Time
	Limit int // 0 uses the repository default
}
