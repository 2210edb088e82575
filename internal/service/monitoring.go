package service

import (
	"context"

	"lm500_emulator/internal/models"
)

type MonitoringService struct {
	emu *Emulator
}

func NewMonitoringService(emu *Emulator) *MonitoringService {
	return &MonitoringService{emu: emu}
}

// GetState returns the live instrument snapshot. The device is never
// restored from storage, so this cannot fail once the emulator exists.
func (s *MonitoringService) GetState(ctx context.Context) (models.LevelState, error) {
	if err := ctx.Err(); err != nil {
		return models.LevelState{}, err
	}
	return s.emu.Snapshot(), nil
}
