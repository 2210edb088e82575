package service

import (
	"context"
	"time"

	"lm500_emulator/internal/lm500"
	"lm500_emulator/internal/logger"
	"lm500_emulator/internal/models"
	"lm500_emulator/internal/repository"

	"github.com/google/uuid"
)

// ControlService applies operator actions to the device. The audit event is
// written after the change; a failed append is logged and the action still
// succeeds.
type ControlService struct {
	emu       *Emulator
	eventRepo repository.EventRepo
	log       *logger.Logger
}

func NewControlService(emu *Emulator, eventRepo repository.EventRepo, log *logger.Logger) *ControlService {
	return &ControlService{emu: emu, eventRepo: eventRepo, log: log}
}

// StartFill requests a refill of channel; the level moves on later ticks.
func (s *ControlService) StartFill(ctx context.Context, channel int) error {
	ch := lm500.ChannelID(channel)
	if err := s.emu.WithDevice(func(d *lm500.Device) error { return d.StartFill(ch) }); err != nil {
		return err
	}
	s.appendEvent(ctx, models.FillEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        models.EventFillRequest,
		Channel:     channel,
		Description: "Fill requested",
	})
	return nil
}

// StopFill withdraws a refill request; the fill machine settles the channel
// on its next tick.
func (s *ControlService) StopFill(ctx context.Context, channel int) error {
	ch := lm500.ChannelID(channel)
	if err := s.emu.WithDevice(func(d *lm500.Device) error { return d.StopFill(ch) }); err != nil {
		return err
	}
	s.appendEvent(ctx, models.FillEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        models.EventFillStop,
		Channel:     channel,
		Description: "Fill request withdrawn",
	})
	return nil
}

func (s *ControlService) Param(_ context.Context, name string) (string, error) {
	var v string
	err := s.emu.WithDevice(func(d *lm500.Device) error {
		var err error
		v, err = d.Param(name)
		return err
	})
	return v, err
}

// SetParam overwrites a raw device field and records the old and new value.
func (s *ControlService) SetParam(ctx context.Context, name, value string) error {
	var old string
	err := s.emu.WithDevice(func(d *lm500.Device) error {
		var err error
		if old, err = d.Param(name); err != nil {
			return err
		}
		return d.SetParam(name, value)
	})
	if err != nil {
		return err
	}
	s.appendEvent(ctx, models.FillEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        models.EventBackdoor,
		Description: "Parameter " + name + " overwritten",
		Metadata:    map[string]any{"param": name, "old": old, "new": value},
	})
	return nil
}

func (s *ControlService) appendEvent(ctx context.Context, ev models.FillEvent) {
	if err := s.eventRepo.Append(ctx, ev); err != nil {
		s.log.Errorw("event_append_failed", "type", ev.Type, "channel", ev.Channel, "error", err)
	}
}
