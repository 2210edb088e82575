package protocol

import (
	"fmt"

	"lm500_emulator/internal/lm500"
)

// DeviceRunner serialises access to the emulated device.
type DeviceRunner interface {
	WithDevice(fn func(d *lm500.Device) error) error
}

// Dispatcher maps request lines onto device calls.
type Dispatcher struct {
	dev DeviceRunner
}

func NewDispatcher(dev DeviceRunner) *Dispatcher {
	return &Dispatcher{dev: dev}
}

// Dispatch executes one request line (terminator already stripped).
// hasReply is true for successful queries; setters and failed requests
// produce no reply.
func (p *Dispatcher) Dispatch(line string) (reply string, hasReply bool, err error) {
	for _, c := range commands {
		m := c.pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		err = p.dev.WithDevice(func(d *lm500.Device) error {
			var runErr error
			reply, runErr = c.run(d, m[1:])
			return runErr
		})
		if err != nil {
			return "", false, fmt.Errorf("%s: %w", c.name, err)
		}
		return reply, c.query, nil
	}
	return "", false, fmt.Errorf("%w: %q", ErrUnknownCommand, line)
}
