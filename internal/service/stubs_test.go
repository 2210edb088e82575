package service

import (
	"context"
	"sync"
	"time"

	"lm500_emulator/internal/lm500"
	"lm500_emulator/internal/models"
)

// eventRepoStub records appends and answers List with canned data.
type eventRepoStub struct {
	mu        sync.Mutex
	appends   []models.FillEvent
	appendErr error

	gotFrom, gotTo time.Time
	gotType        string
	gotChannel     int
	listCalls      int
	events         []models.FillEvent
	listErr        error
}

func (e *eventRepoStub) Append(_ context.Context, ev models.FillEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.appends = append(e.appends, ev)
	return e.appendErr
}

func (e *eventRepoStub) List(_ context.Context, from, to time.Time, typ string, channel int) ([]models.FillEvent, error) {
	e.listCalls++
	e.gotFrom, e.gotTo, e.gotType, e.gotChannel = from, to, typ, channel
	return e.events, e.listErr
}

func (e *eventRepoStub) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.appends))
	for _, ev := range e.appends {
		out = append(out, ev.Type)
	}
	return out
}

type sampleRepoStub struct {
	mu      sync.Mutex
	appends []models.LevelSample

	gotFrom, gotTo time.Time
	gotLimit       int
	samples        []models.LevelSample
}

func (s *sampleRepoStub) Append(_ context.Context, smp models.LevelSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appends = append(s.appends, smp)
	return nil
}

func (s *sampleRepoStub) List(_ context.Context, from, to time.Time, limit int) ([]models.LevelSample, error) {
	s.gotFrom, s.gotTo, s.gotLimit = from, to, limit
	return s.samples, nil
}

// newTestEmulator returns an emulator whose device fills at 1 unit/s toward 10.
func newTestEmulator() *Emulator {
	s := lm500.DefaultSettings()
	s.HighThreshold = 10
	s.FillSpeed = 1
	s.MaxFillTime = 10
	return NewEmulator(lm500.NewDevice(s))
}
