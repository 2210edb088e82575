package lm500

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"lm500_emulator/internal/models"
)

// Sample modes as reported by MODE?.
const (
	SampleDisabled   = "Disabled"
	SampleHold       = "Sample/Hold"
	SampleContinuous = "Continuous"
)

// Interval component caps.
const (
	maxIntervalHour   = 99
	maxIntervalMinute = 60
	maxIntervalSecond = 60
)

var (
	ErrInvalidMode  = errors.New("invalid sample mode: must be 0, S or C")
	ErrUnknownParam = errors.New("unknown device parameter")
	ErrInvalidValue = errors.New("invalid parameter value")
)

var sampleModes = map[string]string{
	"0": SampleDisabled,
	"S": SampleHold,
	"C": SampleContinuous,
}

// Settings are the power-on values of the instrument.
type Settings struct {
	Identity       string
	Units          string
	HighThreshold  float64
	LowThreshold   float64
	AlarmThreshold float64
	SensorLength   float64
	FillSpeed      float64 // units per second
	MaxFillTime    int     // minutes
	Boost          string
	AnalogOutput   int
	DefaultChannel ChannelID
	ErrorMode      int
	SampleMode     string
	TypeCodes      [NumChannels]int
}

// DefaultSettings mirrors a freshly powered instrument.
func DefaultSettings() Settings {
	return Settings{
		Identity:       "AMERICAN MAGNETICS INC.,MODEL 500,SIM,1.0",
		Units:          "cm",
		AlarmThreshold: 10,
		FillSpeed:      1,
		MaxFillTime:    10,
		Boost:          "OFF",
		DefaultChannel: Channel1,
		SampleMode:     SampleHold,
		TypeCodes:      [NumChannels]int{4, 27},
	}
}

// Device is the emulated instrument: global settings, both channels and the
// fill machine. It is not safe for concurrent use; callers serialise access.
type Device struct {
	identity       string
	units          string
	high           float64
	low            float64
	alarm          float64
	sensorLength   float64
	fillSpeed      float64
	maxFillTime    int
	boost          string
	analogOutput   int
	defaultChannel ChannelID
	errorMode      int
	sampleMode     string
	interval       string
	status         [3]int

	channels [NumChannels]Channel
	machine  FillMachine
}

// NewDevice builds a device from power-on settings.
func NewDevice(s Settings) *Device {
	d := &Device{
		identity:       s.Identity,
		units:          s.Units,
		high:           s.HighThreshold,
		low:            s.LowThreshold,
		alarm:          s.AlarmThreshold,
		sensorLength:   s.SensorLength,
		fillSpeed:      s.FillSpeed,
		maxFillTime:    s.MaxFillTime,
		boost:          s.Boost,
		analogOutput:   s.AnalogOutput,
		defaultChannel: s.DefaultChannel,
		errorMode:      s.ErrorMode,
		sampleMode:     s.SampleMode,
	}
	if d.defaultChannel.Validate() != nil {
		d.defaultChannel = Channel1
	}
	if d.sampleMode == "" {
		d.sampleMode = SampleHold
	}
	for i := range d.channels {
		d.channels[i].TypeCode = s.TypeCodes[i]
	}
	d.SetInterval(0, 0, 0)
	return d
}

func (d *Device) channel(ch ChannelID) *Channel { return &d.channels[ch.index()] }

// Channel returns a copy of channel ch's tracker.
func (d *Device) Channel(ch ChannelID) (Channel, error) {
	if err := ch.Validate(); err != nil {
		return Channel{}, err
	}
	return *d.channel(ch), nil
}

// FillState returns the fill machine's current state.
func (d *Device) FillState() FillState { return d.machine.State() }

// Now returns the simulated clock.
func (d *Device) Now() time.Duration { return d.machine.Now() }

// Tick advances the simulation by dt.
func (d *Device) Tick(dt time.Duration) Transition {
	tr := d.machine.Step(d, dt)
	if d.sampleMode == SampleContinuous {
		for i := range d.channels {
			d.channels[i].Measurement = d.channels[i].Level
		}
	}
	return tr
}

// guard helpers used by the fill machine

func (d *Device) wants(ch ChannelID) bool {
	c := d.channel(ch)
	return c.FillRequested && c.Level < d.high && c.FillElapsed < d.maxFillTime
}

func (d *Device) reached(ch ChannelID) bool { return d.channel(ch).Level >= d.high }

func (d *Device) timedOut(ch ChannelID) bool { return d.channel(ch).FillElapsed > d.maxFillTime }

func (d *Device) done(ch ChannelID) bool {
	return d.reached(ch) || d.timedOut(ch) || !d.channel(ch).FillRequested
}

// ----------- getters -----------

func (d *Device) withUnits(v float64) string {
	return formatNumber(v) + " " + d.units
}

func (d *Device) AlarmThreshold() string { return d.withUnits(d.alarm) }
func (d *Device) HighThreshold() string  { return d.withUnits(d.high) }
func (d *Device) LowThreshold() string   { return d.withUnits(d.low) }
func (d *Device) SensorLength() string   { return d.withUnits(d.sensorLength) }

func (d *Device) Identity() string          { return d.identity }
func (d *Device) Boost() string             { return d.boost }
func (d *Device) AnalogOutput() int         { return d.analogOutput }
func (d *Device) DefaultChannel() ChannelID { return d.defaultChannel }
func (d *Device) ErrorMode() int            { return d.errorMode }
func (d *Device) Interval() string          { return d.interval }
func (d *Device) SampleMode() string        { return d.sampleMode }
func (d *Device) Units() string             { return d.units }

// Status returns the raw status word "ch1bits,ch2bits,menu".
func (d *Device) Status() string {
	return fmt.Sprintf("%d,%d,%d", d.status[0], d.status[1], d.status[2])
}

// Measurement returns the last sampled level of ch with units.
func (d *Device) Measurement(ch ChannelID) (string, error) {
	if err := ch.Validate(); err != nil {
		return "", err
	}
	return d.withUnits(d.channel(ch).Measurement), nil
}

// FillStatus returns the minutes left before timeout while ch is filling,
// otherwise its settled status.
func (d *Device) FillStatus(ch ChannelID) (string, error) {
	if err := ch.Validate(); err != nil {
		return "", err
	}
	c := d.channel(ch)
	if c.Filling() {
		remaining := d.maxFillTime - c.FillElapsed
		if remaining < 0 {
			remaining = 0
		}
		return fmt.Sprintf("%d min", remaining), nil
	}
	return c.Status.String(), nil
}

// TypeCode returns the probe type of ch.
func (d *Device) TypeCode(ch ChannelID) (int, error) {
	if err := ch.Validate(); err != nil {
		return 0, err
	}
	return d.channel(ch).TypeCode, nil
}

// DefaultTypeCode returns the probe type of the default channel.
func (d *Device) DefaultTypeCode() int { return d.channel(d.defaultChannel).TypeCode }

// ----------- setters -----------

func (d *Device) SetBoost(boost string)   { d.boost = boost }
func (d *Device) SetAnalogOutput(out int) { d.analogOutput = out }
func (d *Device) SetErrorMode(mode int)   { d.errorMode = mode }

// SetHighThreshold changes the fill target; active channels chase the new
// value from their next tick.
func (d *Device) SetHighThreshold(v float64) { d.high = v }
func (d *Device) SetLowThreshold(v float64)  { d.low = v }

func (d *Device) SetDefaultChannel(ch ChannelID) error {
	if err := ch.Validate(); err != nil {
		return err
	}
	d.defaultChannel = ch
	return nil
}

// SetInterval clamps each component independently and never fails.
func (d *Device) SetInterval(hour, minute, second int) {
	d.interval = fmt.Sprintf("%02d:%02d:%02d",
		clampInt(hour, 0, maxIntervalHour),
		clampInt(minute, 0, maxIntervalMinute),
		clampInt(second, 0, maxIntervalSecond),
	)
}

// SetSampleMode accepts 0, S or C.
func (d *Device) SetSampleMode(code string) error {
	mode, ok := sampleModes[code]
	if !ok {
		return fmt.Errorf("%w (got %q)", ErrInvalidMode, code)
	}
	d.sampleMode = mode
	return nil
}

// SetUnits accepts CM, IN, % and PERCENT. Anything else is ignored.
func (d *Device) SetUnits(units string) {
	switch units {
	case "CM", "IN", "%":
		d.units = units
	case "PERCENT":
		d.units = "%"
	}
}

// StartFill requests a refill of ch. The level only moves on later ticks.
func (d *Device) StartFill(ch ChannelID) error {
	if err := ch.Validate(); err != nil {
		return err
	}
	d.channel(ch).FillRequested = true
	return nil
}

// StopFill withdraws a refill request; the machine settles the channel on
// its next tick.
func (d *Device) StopFill(ch ChannelID) error {
	if err := ch.Validate(); err != nil {
		return err
	}
	d.channel(ch).FillRequested = false
	return nil
}

// SetMeasurement samples the live level of ch.
func (d *Device) SetMeasurement(ch ChannelID) error {
	if err := ch.Validate(); err != nil {
		return err
	}
	c := d.channel(ch)
	c.Measurement = c.Level
	return nil
}

// ----------- snapshot -----------

var menuModes = [...]string{"Operate Mode", "Menu Mode"}

// StatusFlags decodes one channel's byte of the status word.
func (d *Device) StatusFlags(ch ChannelID) (models.StatusFlags, error) {
	if err := ch.Validate(); err != nil {
		return models.StatusFlags{}, err
	}
	b := d.status[ch.index()]
	return models.StatusFlags{
		Burnout:         b&(1<<6) != 0,
		OpenSensor:      b&(1<<5) != 0,
		AlarmLimit:      b&(1<<4) != 0,
		RefillInhibited: b&(1<<3) != 0,
		RefillTimeout:   b&(1<<2) != 0,
		RefillActive:    b&(1<<1) != 0,
		ReadInProgress:  b&1 != 0,
	}, nil
}

// State builds a snapshot of the whole instrument.
func (d *Device) State() models.LevelState {
	st := models.LevelState{
		Identity:       d.identity,
		FillState:      d.machine.State().String(),
		SimSeconds:     d.machine.Now().Seconds(),
		Units:          d.units,
		HighThreshold:  d.high,
		LowThreshold:   d.low,
		AlarmThreshold: d.alarm,
		SensorLength:   d.sensorLength,
		FillSpeed:      d.fillSpeed,
		MaxFillTime:    d.maxFillTime,
		SampleMode:     d.sampleMode,
		Interval:       d.interval,
		Boost:          d.boost,
		AnalogOutput:   d.analogOutput,
		DefaultChannel: int(d.defaultChannel),
		ErrorMode:      d.errorMode,
		StatusWord:     d.Status(),
		MenuMode:       menuModes[0],
		Channels:       make([]models.ChannelState, 0, NumChannels),
	}
	if d.status[2] == 1 {
		st.MenuMode = menuModes[1]
	}
	for _, ch := range [...]ChannelID{Channel1, Channel2} {
		c := d.channel(ch)
		meas, _ := d.Measurement(ch)
		fill, _ := d.FillStatus(ch)
		flags, _ := d.StatusFlags(ch)
		st.Channels = append(st.Channels, models.ChannelState{
			Channel:        int(ch),
			Level:          c.Level,
			Measurement:    meas,
			FillRequested:  c.FillRequested,
			Filling:        c.Filling(),
			FillElapsedMin: c.FillElapsed,
			FillStatus:     fill,
			TypeCode:       c.TypeCode,
			Status:         flags,
		})
	}
	return st
}

// ----------- helpers -----------

// formatNumber prints v in its shortest exact form ("12.5", "0", "6000").
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func parseStatusWord(s string) ([3]int, error) {
	var out [3]int
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != len(out) {
		return out, fmt.Errorf("status word %q: want 3 comma separated integers", s)
	}
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return out, fmt.Errorf("status word %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}
