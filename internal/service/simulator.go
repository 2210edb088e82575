package service

import (
	"context"
	"fmt"
	"time"

	"lm500_emulator/internal/config"
	"lm500_emulator/internal/lm500"
	"lm500_emulator/internal/logger"
	"lm500_emulator/internal/models"
	"lm500_emulator/internal/repository"

	"github.com/google/uuid"
)

// SimulatorService advances the emulated device on a wall-clock ticker and
// records what happened.
type SimulatorService struct {
	emu        *Emulator
	eventRepo  repository.EventRepo
	sampleRepo repository.SampleRepo
	log        *logger.Logger

	timeScale   float64
	sampleEvery int
	ticks       int
}

func NewSimulatorService(
	emu *Emulator,
	eventRepo repository.EventRepo,
	sampleRepo repository.SampleRepo,
	cfg config.SimConfig,
	log *logger.Logger,
) *SimulatorService {
	scale := cfg.TimeScale
	if scale <= 0 {
		scale = 1
	}
	return &SimulatorService{
		emu:         emu,
		eventRepo:   eventRepo,
		sampleRepo:  sampleRepo,
		log:         log,
		timeScale:   scale,
		sampleEvery: cfg.SampleEvery,
	}
}

// Run ticks at the given interval until ctx is canceled. Each tick advances
// the device by the wall time since the previous one, scaled by time_scale.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()

	last := time.Now()
	s.log.Infow("simulator_started", "tick", tick.String(), "time_scale", s.timeScale)
	for {
		select {
		case <-ctx.Done():
			s.log.Infow("simulator_stopped")
			return
		case now := <-t.C:
			s.step(ctx, now, s.scale(now.Sub(last)))
			last = now
		}
	}
}

func (s *SimulatorService) scale(wall time.Duration) time.Duration {
	return time.Duration(float64(wall) * s.timeScale)
}

// step runs one device tick and persists the resulting events and, every
// sampleEvery ticks, a level sample.
func (s *SimulatorService) step(ctx context.Context, now time.Time, dt time.Duration) lm500.Transition {
	var (
		tr lm500.Transition
		st models.LevelState
	)
	_ = s.emu.WithDevice(func(d *lm500.Device) error {
		tr = d.Tick(dt)
		st = d.State()
		return nil
	})

	if tr.Changed {
		s.log.Infow("fill_transition", "from", tr.From.String(), "to", tr.To.String(), "sim_seconds", tr.At.Seconds())
		s.appendEvent(ctx, models.FillEvent{
			EventID:     uuid.NewString(),
			OccurredAt:  now.UTC(),
			Type:        models.EventTransition,
			Description: fmt.Sprintf("%s -> %s", tr.From, tr.To),
			Metadata:    map[string]any{"from": tr.From.String(), "to": tr.To.String(), "sim_seconds": tr.At.Seconds()},
		})
	}
	for _, set := range tr.Settled {
		typ := models.EventFillOff
		if set.Status == lm500.FillTimeout {
			typ = models.EventFillTimeout
			s.log.Warnw("fill_timeout", "channel", int(set.Channel))
		}
		s.appendEvent(ctx, models.FillEvent{
			EventID:     uuid.NewString(),
			OccurredAt:  now.UTC(),
			Type:        typ,
			Channel:     int(set.Channel),
			Description: fmt.Sprintf("Channel %d fill stopped: %s", set.Channel, set.Status),
		})
	}

	s.ticks++
	if s.sampleEvery > 0 && s.ticks%s.sampleEvery == 0 {
		sample := models.LevelSample{
			RecordedAt: now.UTC(),
			SimSeconds: st.SimSeconds,
			FillState:  st.FillState,
		}
		if len(st.Channels) == lm500.NumChannels {
			sample.Level1 = st.Channels[0].Level
			sample.Level2 = st.Channels[1].Level
		}
		if err := s.sampleRepo.Append(ctx, sample); err != nil {
			s.log.Errorw("sample_append_failed", "error", err)
		}
	}
	return tr
}

func (s *SimulatorService) appendEvent(ctx context.Context, ev models.FillEvent) {
	if err := s.eventRepo.Append(ctx, ev); err != nil {
		s.log.Errorw("event_append_failed", "type", ev.Type, "error", err)
	}
}
