package lm500

import (
	"errors"
	"testing"
	"time"
)

func TestChannelID_Validate(t *testing.T) {
	for _, ch := range []ChannelID{Channel1, Channel2} {
		if err := ch.Validate(); err != nil {
			t.Fatalf("channel %d: unexpected error %v", ch, err)
		}
	}
	for _, ch := range []ChannelID{0, 3, -1} {
		if err := ch.Validate(); !errors.Is(err, ErrInvalidChannel) {
			t.Fatalf("channel %d: expected ErrInvalidChannel, got %v", ch, err)
		}
	}
}

func TestElapsedMinutes_RoundsHalfToEven(t *testing.T) {
	cases := map[time.Duration]int{
		0:                 0,
		-time.Minute:      0,
		29 * time.Second:  0,
		30 * time.Second:  0,
		31 * time.Second:  1,
		90 * time.Second:  2,
		150 * time.Second: 2,
		10 * time.Minute:  10,
	}
	for d, want := range cases {
		if got := elapsedMinutes(d); got != want {
			t.Errorf("elapsedMinutes(%v) = %d, want %d", d, got, want)
		}
	}
}

func TestChannel_ResetKeepsRequestAndTimeout(t *testing.T) {
	c := Channel{FillRequested: true}
	c.start(5 * time.Second)
	c.elapsed(3 * time.Minute)
	if c.FillElapsed != 3 {
		t.Fatalf("elapsed: got %d, want 3", c.FillElapsed)
	}

	c.reset()
	if !c.FillRequested {
		t.Fatalf("reset must not consume the fill request")
	}
	if c.Filling() || c.FillElapsed != 0 || c.FillStart != 0 || c.Status != FillOff {
		t.Fatalf("reset left stale tracker: %+v", c)
	}

	c.settle(FillTimeout)
	c.reset()
	if c.Status != FillTimeout {
		t.Fatalf("reset overwrote Timeout with %v", c.Status)
	}
	if c.FillRequested {
		t.Fatalf("settle must clear the fill request")
	}
}
