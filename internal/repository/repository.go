package repository

import (
	"context"
	"database/sql"
	"time"

	"lm500_emulator/internal/models"
)

type Operators interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.Operator, error)
}

// EventRepo stores the fill audit log.
type EventRepo interface {
	Append(ctx context.Context, e models.FillEvent) error
	List(ctx context.Context, from, to time.Time, typ string, channel int) ([]models.FillEvent, error)
}

// SampleRepo stores the level history.
type SampleRepo interface {
	Append(ctx context.Context, s models.LevelSample) error
	List(ctx context.Context, from, to time.Time, limit int) ([]models.LevelSample, error)
}

type Repository struct {
	EventRepo  EventRepo
	SampleRepo SampleRepo
	Operators  Operators
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EventRepo:  NewEventSQLite(db),
		SampleRepo: NewSampleSQLite(db),
		Operators:  NewOperatorRepository(db),
	}
}
