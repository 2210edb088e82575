package service

import (
	"context"
	"errors"

	"lm500_emulator/internal/models"
	"lm500_emulator/internal/repository"
)

const maxSampleLimit = 10000

var ErrInvalidLimit = errors.New("invalid limit: must be between 0 and 10000")

type SampleService struct {
	sampleRepo repository.SampleRepo
}

func NewSampleService(sampleRepo repository.SampleRepo) *SampleService {
	return &SampleService{sampleRepo: sampleRepo}
}

// List returns recorded level samples, newest first.
func (s *SampleService) List(ctx context.Context, f SampleFilter) ([]models.LevelSample, error) {
	from, to, err := normalizeRange(f.From, f.To)
	if err != nil {
		return nil, err
	}
	if f.Limit < 0 || f.Limit > maxSampleLimit {
		return nil, ErrInvalidLimit
	}
	return s.sampleRepo.List(ctx, from, to, f.Limit)
}
