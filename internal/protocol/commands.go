package protocol

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"lm500_emulator/internal/lm500"
)

var ErrUnknownCommand = errors.New("unknown command")

const (
	intArg    = `([-+]?\d+)`
	floatArg  = `([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)`
	stringArg = `(.+)`
	charArg   = `(.)`
	optChan   = `(?: ` + intArg + `)?`
)

type command struct {
	name    string
	pattern *regexp.Regexp
	query   bool
	run     func(d *lm500.Device, args []string) (string, error)
}

func query(name, pattern string, run func(d *lm500.Device, args []string) (string, error)) command {
	return command{name: name, pattern: regexp.MustCompile("^" + pattern + "$"), query: true, run: run}
}

func setter(name, pattern string, run func(d *lm500.Device, args []string) error) command {
	return command{
		name:    name,
		pattern: regexp.MustCompile("^" + pattern + "$"),
		run: func(d *lm500.Device, args []string) (string, error) {
			return "", run(d, args)
		},
	}
}

func constant(get func(d *lm500.Device) string) func(*lm500.Device, []string) (string, error) {
	return func(d *lm500.Device, _ []string) (string, error) { return get(d), nil }
}

// channelArg resolves an optional channel argument, falling back to the
// default channel.
func channelArg(d *lm500.Device, args []string) (lm500.ChannelID, error) {
	if len(args) == 0 || args[0] == "" {
		return d.DefaultChannel(), nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("channel %q: %w", args[0], err)
	}
	return lm500.ChannelID(n), nil
}

func intArgs(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", a, err)
		}
		out[i] = n
	}
	return out, nil
}

func floatArg1(args []string) (float64, error) {
	f, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, fmt.Errorf("argument %q: %w", args[0], err)
	}
	return f, nil
}

// commands is matched in order against the whole request line.
var commands = []command{
	query("get_alarm", `ALARM\?`, constant((*lm500.Device).AlarmThreshold)),
	query("get_boost", `BOOST\?`, constant((*lm500.Device).Boost)),
	query("get_output", `OUT\?`, constant(func(d *lm500.Device) string { return strconv.Itoa(d.AnalogOutput()) })),
	query("get_type", `TYPE\?`+optChan, func(d *lm500.Device, args []string) (string, error) {
		ch, err := channelArg(d, args)
		if err != nil {
			return "", err
		}
		code, err := d.TypeCode(ch)
		return strconv.Itoa(code), err
	}),
	query("get_channel", `CHAN\?`, constant(func(d *lm500.Device) string { return strconv.Itoa(int(d.DefaultChannel())) })),
	query("get_error", `ERROR\?`, constant(func(d *lm500.Device) string { return strconv.Itoa(d.ErrorMode()) })),
	query("get_fill", `FILL\?`+optChan, func(d *lm500.Device, args []string) (string, error) {
		ch, err := channelArg(d, args)
		if err != nil {
			return "", err
		}
		return d.FillStatus(ch)
	}),
	query("get_high", `HIGH\?`, constant((*lm500.Device).HighThreshold)),
	query("get_identity", `IDN\?`, constant((*lm500.Device).Identity)),
	query("get_interval", `INTVL\?`, constant((*lm500.Device).Interval)),
	query("get_low", `LOW\?`, constant((*lm500.Device).LowThreshold)),
	query("get_measurement", `MEAS\?`+optChan, func(d *lm500.Device, args []string) (string, error) {
		ch, err := channelArg(d, args)
		if err != nil {
			return "", err
		}
		return d.Measurement(ch)
	}),
	query("get_mode", `MODE\?`, constant((*lm500.Device).SampleMode)),
	query("get_length", `LNGTH\?`, constant((*lm500.Device).SensorLength)),
	query("get_status", `STAT\?`, constant((*lm500.Device).Status)),
	query("get_units", `UNITS\?`, constant((*lm500.Device).Units)),

	setter("set_boost", `BOOST `+stringArg, func(d *lm500.Device, args []string) error {
		d.SetBoost(args[0])
		return nil
	}),
	setter("set_output", `OUT `+intArg, func(d *lm500.Device, args []string) error {
		n, err := intArgs(args)
		if err != nil {
			return err
		}
		d.SetAnalogOutput(n[0])
		return nil
	}),
	setter("set_channel", `CHAN `+intArg, func(d *lm500.Device, args []string) error {
		ch, err := channelArg(d, args)
		if err != nil {
			return err
		}
		return d.SetDefaultChannel(ch)
	}),
	setter("set_error", `ERROR `+intArg, func(d *lm500.Device, args []string) error {
		n, err := intArgs(args)
		if err != nil {
			return err
		}
		d.SetErrorMode(n[0])
		return nil
	}),
	setter("set_fill", `FILL`+optChan, func(d *lm500.Device, args []string) error {
		ch, err := channelArg(d, args)
		if err != nil {
			return err
		}
		return d.StartFill(ch)
	}),
	setter("set_high", `HIGH `+floatArg, func(d *lm500.Device, args []string) error {
		f, err := floatArg1(args)
		if err != nil {
			return err
		}
		d.SetHighThreshold(f)
		return nil
	}),
	setter("set_interval", `INTVL `+intArg+`:`+intArg+`:`+intArg, func(d *lm500.Device, args []string) error {
		n, err := intArgs(args)
		if err != nil {
			return err
		}
		d.SetInterval(n[0], n[1], n[2])
		return nil
	}),
	setter("set_low", `LOW `+floatArg, func(d *lm500.Device, args []string) error {
		f, err := floatArg1(args)
		if err != nil {
			return err
		}
		d.SetLowThreshold(f)
		return nil
	}),
	setter("set_measurement", `MEAS`+optChan, func(d *lm500.Device, args []string) error {
		ch, err := channelArg(d, args)
		if err != nil {
			return err
		}
		return d.SetMeasurement(ch)
	}),
	setter("set_mode", `MODE `+charArg, func(d *lm500.Device, args []string) error {
		return d.SetSampleMode(args[0])
	}),
	setter("set_units", `UNITS `+stringArg, func(d *lm500.Device, args []string) error {
		d.SetUnits(args[0])
		return nil
	}),
}
