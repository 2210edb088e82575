package lm500

import "time"

// FillState is a state of the refill state machine.
type FillState int

const (
	StateIdle FillState = iota
	StateChan1
	StateChan2
	StateBoth
)

func (s FillState) String() string {
	switch s {
	case StateChan1:
		return "chan1"
	case StateChan2:
		return "chan2"
	case StateBoth:
		return "both"
	default:
		return "idle"
	}
}

// Active reports whether the state keeps channel ch filling.
func (s FillState) Active(ch ChannelID) bool {
	switch s {
	case StateBoth:
		return true
	case StateChan1:
		return ch == Channel1
	case StateChan2:
		return ch == Channel2
	default:
		return false
	}
}

// Settlement records a channel whose fill stopped during a tick.
type Settlement struct {
	Channel ChannelID
	Status  FillStatus
}

// Transition is the outcome of one tick.
type Transition struct {
	From    FillState
	To      FillState
	Changed bool
	Settled []Settlement
	At      time.Duration // simulated time after the tick
}

type guard func(d *Device) bool

type fillTransition struct {
	from, to FillState
	guard    guard
}

func wants(ch ChannelID) guard { return func(d *Device) bool { return d.wants(ch) } }
func done(ch ChannelID) guard  { return func(d *Device) bool { return d.done(ch) } }

func allDone(d *Device) bool { return d.done(Channel1) && d.done(Channel2) }

// fillTransitions is evaluated in order; the first guard that holds for the
// current state wins.
var fillTransitions = []fillTransition{
	{StateIdle, StateChan1, wants(Channel1)},
	{StateIdle, StateChan2, wants(Channel2)},
	{StateChan1, StateIdle, done(Channel1)},
	{StateChan1, StateBoth, wants(Channel2)},
	{StateChan2, StateIdle, done(Channel2)},
	{StateChan2, StateBoth, wants(Channel1)},
	{StateBoth, StateIdle, allDone},
	{StateBoth, StateChan1, done(Channel2)},
	{StateBoth, StateChan2, done(Channel1)},
}

// FillMachine drives both channels toward the high threshold. It owns the
// simulated clock; the device it operates on is passed in on every step.
type FillMachine struct {
	state FillState
	now   time.Duration
}

// State returns the current state.
func (m *FillMachine) State() FillState { return m.state }

// Now returns the simulated time accumulated from tick deltas.
func (m *FillMachine) Now() time.Duration { return m.now }

// Step advances the clock by dt, fires at most one transition (exit, then
// entry) and runs the in-state behaviour of the resulting state.
func (m *FillMachine) Step(d *Device, dt time.Duration) Transition {
	if dt < 0 {
		dt = 0
	}
	m.now += dt
	tr := Transition{From: m.state, To: m.state, At: m.now}

	for _, t := range fillTransitions {
		if t.from != m.state || !t.guard(d) {
			continue
		}
		tr.Settled = m.exit(d, t.from)
		m.enter(d, t.from, t.to)
		m.state = t.to
		tr.To = t.to
		tr.Changed = true
		break
	}

	m.inState(d, dt)
	return tr
}

// exit settles every channel of the old state that has finished. Reaching
// the threshold wins over a simultaneous timeout.
func (m *FillMachine) exit(d *Device, from FillState) []Settlement {
	var settled []Settlement
	for _, ch := range [...]ChannelID{Channel1, Channel2} {
		if !from.Active(ch) || !d.done(ch) {
			continue
		}
		status := FillOff
		if d.timedOut(ch) && !d.reached(ch) {
			status = FillTimeout
		}
		d.channel(ch).settle(status)
		settled = append(settled, Settlement{Channel: ch, Status: status})
	}
	return settled
}

func (m *FillMachine) enter(d *Device, from, to FillState) {
	for _, ch := range [...]ChannelID{Channel1, Channel2} {
		if to.Active(ch) && !from.Active(ch) {
			d.channel(ch).start(m.now)
		}
	}
	switch to {
	case StateChan1:
		d.channel(Channel2).reset()
	case StateChan2:
		d.channel(Channel1).reset()
	}
}

func (m *FillMachine) inState(d *Device, dt time.Duration) {
	for _, ch := range [...]ChannelID{Channel1, Channel2} {
		if !m.state.Active(ch) {
			continue
		}
		c := d.channel(ch)
		c.Level = Approach(c.Level, d.high, d.fillSpeed, dt.Seconds())
		c.elapsed(m.now)
	}
}
