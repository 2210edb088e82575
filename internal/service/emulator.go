package service

import (
	"sync"
	"time"

	"lm500_emulator/internal/lm500"
	"lm500_emulator/internal/models"
)

// Emulator owns the single emulated device. Every protocol command, API
// call and simulator tick goes through WithDevice, so a tick is atomic with
// respect to commands.
type Emulator struct {
	mu  sync.Mutex
	dev *lm500.Device
}

func NewEmulator(dev *lm500.Device) *Emulator {
	return &Emulator{dev: dev}
}

// WithDevice runs fn with exclusive access to the device.
func (e *Emulator) WithDevice(fn func(d *lm500.Device) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.dev)
}

// Snapshot returns the current device state stamped with the wall clock.
func (e *Emulator) Snapshot() models.LevelState {
	e.mu.Lock()
	st := e.dev.State()
	e.mu.Unlock()
	st.UpdatedAt = time.Now().UTC()
	return st
}
