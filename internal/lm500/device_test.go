package lm500

import (
	"errors"
	"testing"
)

func TestDevice_Defaults(t *testing.T) {
	d := NewDevice(DefaultSettings())

	if got := d.AlarmThreshold(); got != "10 cm" {
		t.Errorf("alarm: got %q", got)
	}
	if got := d.HighThreshold(); got != "0 cm" {
		t.Errorf("high: got %q", got)
	}
	if got := d.Interval(); got != "00:00:00" {
		t.Errorf("interval: got %q", got)
	}
	if got := d.SampleMode(); got != SampleHold {
		t.Errorf("mode: got %q", got)
	}
	if got := d.Status(); got != "0,0,0" {
		t.Errorf("status: got %q", got)
	}
	if got := d.Boost(); got != "OFF" {
		t.Errorf("boost: got %q", got)
	}
	if d.DefaultChannel() != Channel1 || d.DefaultTypeCode() != 4 {
		t.Errorf("default channel/type: %d/%d", d.DefaultChannel(), d.DefaultTypeCode())
	}
	if got, _ := d.TypeCode(Channel2); got != 27 {
		t.Errorf("type 2: got %d", got)
	}
	if got, _ := d.FillStatus(Channel1); got != "Off" {
		t.Errorf("fill: got %q", got)
	}
}

func TestDevice_SetInterval_ClampsEachComponent(t *testing.T) {
	cases := []struct {
		h, m, s int
		want    string
	}{
		{0, 0, 0, "00:00:00"},
		{10, 20, 30, "10:20:30"},
		{70, 0, 0, "70:00:00"},
		{200, 200, 200, "99:60:60"},
		{-10, 30, 70, "00:30:60"},
		{0, -1, 61, "00:00:60"},
		{99, 60, 60, "99:60:60"},
	}
	d := NewDevice(DefaultSettings())
	for _, tc := range cases {
		d.SetInterval(tc.h, tc.m, tc.s)
		if got := d.Interval(); got != tc.want {
			t.Errorf("SetInterval(%d, %d, %d) = %q, want %q", tc.h, tc.m, tc.s, got, tc.want)
		}
	}
}

func TestDevice_SetSampleMode(t *testing.T) {
	d := NewDevice(DefaultSettings())
	for code, want := range map[string]string{"0": SampleDisabled, "S": SampleHold, "C": SampleContinuous} {
		if err := d.SetSampleMode(code); err != nil {
			t.Fatalf("SetSampleMode(%q): %v", code, err)
		}
		if d.SampleMode() != want {
			t.Fatalf("SetSampleMode(%q): got %q, want %q", code, d.SampleMode(), want)
		}
	}

	for _, bad := range []string{"X", "s", "", "SC"} {
		err := d.SetSampleMode(bad)
		if !errors.Is(err, ErrInvalidMode) {
			t.Fatalf("SetSampleMode(%q): expected ErrInvalidMode, got %v", bad, err)
		}
		if d.SampleMode() != SampleContinuous {
			t.Fatalf("rejected mode changed state to %q", d.SampleMode())
		}
	}
}

func TestDevice_SetUnits_IgnoresUnknown(t *testing.T) {
	d := NewDevice(DefaultSettings())

	d.SetUnits("IN")
	if d.Units() != "IN" {
		t.Fatalf("got %q", d.Units())
	}
	d.SetUnits("PERCENT")
	if d.Units() != "%" {
		t.Fatalf("PERCENT alias: got %q", d.Units())
	}
	for _, bad := range []string{"bogus", "cm", "MM", ""} {
		d.SetUnits(bad)
		if d.Units() != "%" {
			t.Fatalf("SetUnits(%q) changed units to %q", bad, d.Units())
		}
	}
	d.SetUnits("CM")
	d.SetHighThreshold(0.65)
	if got := d.HighThreshold(); got != "0.65 CM" {
		t.Fatalf("high with units: got %q", got)
	}
}

func TestDevice_MeasurementRoundTrip(t *testing.T) {
	d := NewDevice(DefaultSettings())
	d.SetUnits("CM")
	if err := d.SetParam("level1", "12.5"); err != nil {
		t.Fatal(err)
	}

	before, _ := d.Measurement(Channel1)
	if before != "0 CM" {
		t.Fatalf("measurement before sampling: %q", before)
	}
	if err := d.SetMeasurement(Channel1); err != nil {
		t.Fatal(err)
	}
	got, err := d.Measurement(Channel1)
	if err != nil {
		t.Fatal(err)
	}
	if got != "12.5 CM" {
		t.Fatalf("got %q, want %q", got, "12.5 CM")
	}
	if other, _ := d.Measurement(Channel2); other != "0 CM" {
		t.Fatalf("channel 2 measurement changed: %q", other)
	}
}

func TestDevice_ChannelErrorsFailFast(t *testing.T) {
	d := NewDevice(DefaultSettings())
	bad := ChannelID(3)

	checks := map[string]error{
		"StartFill":      d.StartFill(bad),
		"StopFill":       d.StopFill(bad),
		"SetMeasurement": d.SetMeasurement(bad),
		"SetDefault":     d.SetDefaultChannel(bad),
	}
	_, checks["Measurement"] = d.Measurement(bad)
	_, checks["FillStatus"] = d.FillStatus(bad)
	_, checks["TypeCode"] = d.TypeCode(bad)
	_, checks["Channel"] = d.Channel(bad)

	for name, err := range checks {
		if !errors.Is(err, ErrInvalidChannel) {
			t.Errorf("%s: expected ErrInvalidChannel, got %v", name, err)
		}
	}
	if d.DefaultChannel() != Channel1 {
		t.Fatalf("rejected channel changed default to %d", d.DefaultChannel())
	}
}

func TestDevice_DefaultChannelSelectsType(t *testing.T) {
	d := NewDevice(DefaultSettings())
	if err := d.SetDefaultChannel(Channel2); err != nil {
		t.Fatal(err)
	}
	if d.DefaultTypeCode() != 27 {
		t.Fatalf("got %d, want 27", d.DefaultTypeCode())
	}
}

func TestDevice_StatusWordAndFlags(t *testing.T) {
	d := NewDevice(DefaultSettings())
	if err := d.SetParam("status", "64,127,1"); err != nil {
		t.Fatal(err)
	}
	if d.Status() != "64,127,1" {
		t.Fatalf("status: %q", d.Status())
	}

	f1, _ := d.StatusFlags(Channel1)
	if !f1.Burnout || f1.OpenSensor || f1.ReadInProgress {
		t.Fatalf("channel 1 flags: %+v", f1)
	}
	f2, _ := d.StatusFlags(Channel2)
	if !(f2.Burnout && f2.OpenSensor && f2.AlarmLimit && f2.RefillInhibited &&
		f2.RefillTimeout && f2.RefillActive && f2.ReadInProgress) {
		t.Fatalf("channel 2 flags: %+v", f2)
	}

	st := d.State()
	if st.MenuMode != "Menu Mode" || st.StatusWord != "64,127,1" || len(st.Channels) != 2 {
		t.Fatalf("snapshot: %+v", st)
	}

	for _, bad := range []string{"1,2", "a,b,c", ""} {
		if err := d.SetParam("status", bad); err == nil {
			t.Fatalf("status %q: expected error", bad)
		}
	}
	if d.Status() != "64,127,1" {
		t.Fatalf("bad status word changed state: %q", d.Status())
	}
}

func TestDevice_Backdoor(t *testing.T) {
	d := NewDevice(DefaultSettings())

	if err := d.SetParam("fill_speed", "2.5"); err != nil {
		t.Fatal(err)
	}
	if got, _ := d.Param("fill_speed"); got != "2.5" {
		t.Fatalf("fill_speed: %q", got)
	}
	if err := d.SetParam("max_fill_time", "3"); err != nil {
		t.Fatal(err)
	}
	if got := d.State().MaxFillTime; got != 3 {
		t.Fatalf("max_fill_time: %d", got)
	}

	if err := d.SetParam("nope", "1"); !errors.Is(err, ErrUnknownParam) {
		t.Fatalf("expected ErrUnknownParam, got %v", err)
	}
	if _, err := d.Param("nope"); !errors.Is(err, ErrUnknownParam) {
		t.Fatalf("expected ErrUnknownParam, got %v", err)
	}
	if err := d.SetParam("type1", "x"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}

	for _, tc := range []struct{ name, value string }{
		{"max_fill_time", "0"},
		{"max_fill_time", "-5"},
		{"high_threshold", "NaN"},
		{"level1", "+Inf"},
		{"fill_speed", "-Inf"},
	} {
		if err := d.SetParam(tc.name, tc.value); !errors.Is(err, ErrInvalidValue) {
			t.Fatalf("SetParam(%s, %s): expected ErrInvalidValue, got %v", tc.name, tc.value, err)
		}
	}
	if got := d.State().MaxFillTime; got != 3 {
		t.Fatalf("rejected max_fill_time changed it to %d", got)
	}
	if got, _ := d.Param("high_threshold"); got != "0" {
		t.Fatalf("rejected high_threshold changed it to %s", got)
	}

	names := ParamNames()
	if len(names) == 0 || names[0] != "alarm_threshold" {
		t.Fatalf("param names not sorted: %v", names)
	}
}
