package service

import (
	"context"
	"time"

	"lm500_emulator/internal/config"
	"lm500_emulator/internal/logger"
	"lm500_emulator/internal/models"
	"lm500_emulator/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Control exposes the operator actions of the HTTP API: fill requests and
// raw parameter access.
type Control interface {
	StartFill(ctx context.Context, channel int) error
	StopFill(ctx context.Context, channel int) error
	Param(ctx context.Context, name string) (string, error)
	SetParam(ctx context.Context, name, value string) error
}

// Monitoring exposes the live instrument snapshot.
type Monitoring interface {
	GetState(ctx context.Context) (models.LevelState, error)
}

// EventLog exposes the fill audit log with filtering.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.FillEvent, error)
}

type Samples interface {
	List(ctx context.Context, f SampleFilter) ([]models.LevelSample, error)
}

// Simulator runs the tick loop until ctx is cancelled.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

type Service struct {
	Control
	Monitoring
	EventLog
	Samples
	Simulator
	Authorization
}

// NewService wires the repositories and the shared emulator into the
// concrete services.
func NewService(repos *repository.Repository, emu *Emulator, cfg config.Config, log *logger.Logger) *Service {
	return &Service{
		Control:       NewControlService(emu, repos.EventRepo, log.Named("control")),
		Monitoring:    NewMonitoringService(emu),
		EventLog:      NewEventLogService(repos.EventRepo),
		Samples:       NewSampleService(repos.SampleRepo),
		Simulator:     NewSimulatorService(emu, repos.EventRepo, repos.SampleRepo, cfg.Sim, log.Named("simulator")),
		Authorization: NewAuthService(repos.Operators, cfg.Auth.SigningKey, cfg.Auth.TokenTTL),
	}
}
