package models

import "time"

// LevelSample is one recorded point of the level history.
type LevelSample struct {
	ID         int64     `json:"id"`
	RecordedAt time.Time `json:"recorded_at"`
	SimSeconds float64   `json:"sim_seconds"`
	FillState  string    `json:"fill_state"`
	Level1     float64   `json:"level1"`
	Level2     float64   `json:"level2"`
}
