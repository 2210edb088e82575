package protocol

import (
	"context"
	"fmt"

	"go.bug.st/serial"
)

// OpenSerial opens path as 8N1 at the given baud rate.
func OpenSerial(path string, baud int) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", path, err)
	}
	return port, nil
}

// ServeSerial answers the protocol on a serial port until ctx is cancelled
// or the port fails.
func (s *Server) ServeSerial(ctx context.Context, path string, baud int) error {
	port, err := OpenSerial(path, baud)
	if err != nil {
		return err
	}
	s.log.Infow("serial_listening", "port", path, "baud", baud)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = port.Close()
		case <-stop:
		}
	}()

	s.ServeConn(ctx, port, path)
	return nil
}
