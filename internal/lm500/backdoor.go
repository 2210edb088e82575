package lm500

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// backdoorParam exposes one raw device field to the test harness.
type backdoorParam struct {
	get func(d *Device) string
	set func(d *Device, v string) error
}

func floatParam(field func(d *Device) *float64) backdoorParam {
	return backdoorParam{
		get: func(d *Device) string { return formatNumber(*field(d)) },
		set: func(d *Device, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return errNotFinite
			}
			*field(d) = f
			return nil
		},
	}
}

var errNotFinite = errors.New("value must be finite")

func intParam(field func(d *Device) *int) backdoorParam {
	return intParamMin(field, math.MinInt)
}

// intParamMin rejects values below lowest.
func intParamMin(field func(d *Device) *int, lowest int) backdoorParam {
	return backdoorParam{
		get: func(d *Device) string { return strconv.Itoa(*field(d)) },
		set: func(d *Device, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			if n < lowest {
				return fmt.Errorf("must be at least %d", lowest)
			}
			*field(d) = n
			return nil
		},
	}
}

var backdoorParams = map[string]backdoorParam{
	"level1":          floatParam(func(d *Device) *float64 { return &d.channel(Channel1).Level }),
	"level2":          floatParam(func(d *Device) *float64 { return &d.channel(Channel2).Level }),
	"high_threshold":  floatParam(func(d *Device) *float64 { return &d.high }),
	"low_threshold":   floatParam(func(d *Device) *float64 { return &d.low }),
	"alarm_threshold": floatParam(func(d *Device) *float64 { return &d.alarm }),
	"sensor_length":   floatParam(func(d *Device) *float64 { return &d.sensorLength }),
	"fill_speed":      floatParam(func(d *Device) *float64 { return &d.fillSpeed }),
	"max_fill_time":   intParamMin(func(d *Device) *int { return &d.maxFillTime }, 1),
	"type1":           intParam(func(d *Device) *int { return &d.channel(Channel1).TypeCode }),
	"type2":           intParam(func(d *Device) *int { return &d.channel(Channel2).TypeCode }),
	"identity": {
		get: func(d *Device) string { return d.identity },
		set: func(d *Device, v string) error { d.identity = v; return nil },
	},
	"status": {
		get: func(d *Device) string { return d.Status() },
		set: func(d *Device, v string) error {
			word, err := parseStatusWord(v)
			if err != nil {
				return err
			}
			d.status = word
			return nil
		},
	},
}

// ParamNames lists the backdoor parameters in sorted order.
func ParamNames() []string {
	names := make([]string, 0, len(backdoorParams))
	for n := range backdoorParams {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Param reads a raw device field by name.
func (d *Device) Param(name string) (string, error) {
	p, ok := backdoorParams[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return p.get(d), nil
}

// SetParam overwrites a raw device field by name, bypassing the protocol.
func (d *Device) SetParam(name, value string) error {
	p, ok := backdoorParams[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	if err := p.set(d, value); err != nil {
		return fmt.Errorf("set %s=%q: %w: %w", name, value, ErrInvalidValue, err)
	}
	return nil
}
