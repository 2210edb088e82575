package lm500

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ChannelID addresses one of the two probes. Valid values are 1 and 2.
type ChannelID int

const (
	Channel1 ChannelID = 1
	Channel2 ChannelID = 2
)

// NumChannels is the number of probes on the instrument.
const NumChannels = 2

var ErrInvalidChannel = errors.New("invalid channel: must be 1 or 2")

// Validate reports ErrInvalidChannel for anything outside {1,2}.
func (c ChannelID) Validate() error {
	if c != Channel1 && c != Channel2 {
		return fmt.Errorf("%w (got %d)", ErrInvalidChannel, int(c))
	}
	return nil
}

func (c ChannelID) index() int { return int(c) - 1 }

// FillStatus is the settled or live status of a channel's refill.
type FillStatus int

const (
	FillOff FillStatus = iota
	FillTimeout
	FillActive
)

// String names the status for snapshots and logs. The protocol shows
// remaining minutes instead of "Active"; see Device.FillStatus.
func (s FillStatus) String() string {
	switch s {
	case FillTimeout:
		return "Timeout"
	case FillActive:
		return "Active"
	default:
		return "Off"
	}
}

// Channel is the per-probe fill tracker. Only the fill machine touches
// FillStart, FillElapsed and Status.
type Channel struct {
	Level         float64
	Measurement   float64
	FillRequested bool
	FillStart     time.Duration // simulated time the fill began; meaningless unless filling
	FillElapsed   int           // whole minutes since FillStart
	Status        FillStatus
	TypeCode      int

	filling bool
}

// Filling reports whether the channel's fill timer is running.
func (c *Channel) Filling() bool { return c.filling }

func (c *Channel) start(now time.Duration) {
	c.filling = true
	c.FillStart = now
	c.FillElapsed = 0
	c.Status = FillActive
}

// elapsed recomputes FillElapsed from the simulated clock.
func (c *Channel) elapsed(now time.Duration) {
	if !c.filling {
		c.FillElapsed = 0
		return
	}
	c.FillElapsed = elapsedMinutes(now - c.FillStart)
}

// settle stops the fill and records its final status.
func (c *Channel) settle(status FillStatus) {
	c.FillRequested = false
	c.filling = false
	c.FillStart = 0
	c.FillElapsed = 0
	c.Status = status
}

// reset clears the timer without consuming a pending request. A Timeout
// status survives so the driver can still read it.
func (c *Channel) reset() {
	c.filling = false
	c.FillStart = 0
	c.FillElapsed = 0
	if c.Status != FillTimeout {
		c.Status = FillOff
	}
}

// elapsedMinutes rounds half to even.
func elapsedMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.RoundToEven(d.Minutes()))
}
