package models

import "time"

// StatusFlags is one channel's byte of the instrument status word.
type StatusFlags struct {
	Burnout         bool `json:"burnout"`
	OpenSensor      bool `json:"open_sensor"`
	AlarmLimit      bool `json:"alarm_limit"`
	RefillInhibited bool `json:"refill_inhibited"`
	RefillTimeout   bool `json:"refill_timeout"`
	RefillActive    bool `json:"refill_active"`
	ReadInProgress  bool `json:"read_in_progress"`
}

type ChannelState struct {
	Channel        int         `json:"channel"`
	Level          float64     `json:"level"`
	Measurement    string      `json:"measurement"` // formatted with units, e.g. "12.5 CM"
	FillRequested  bool        `json:"fill_requested"`
	Filling        bool        `json:"filling"`
	FillElapsedMin int         `json:"fill_elapsed_min"`
	FillStatus     string      `json:"fill_status"` // Off | Timeout | "<n> min"
	TypeCode       int         `json:"type_code"`
	Status         StatusFlags `json:"status"`
}

// LevelState is a snapshot of the whole emulated instrument.
type LevelState struct {
	Identity       string         `json:"identity"`
	FillState      string         `json:"fill_state"` // idle | chan1 | chan2 | both
	SimSeconds     float64        `json:"sim_seconds"`
	Units          string         `json:"units"`
	HighThreshold  float64        `json:"high_threshold"`
	LowThreshold   float64        `json:"low_threshold"`
	AlarmThreshold float64        `json:"alarm_threshold"`
	SensorLength   float64        `json:"sensor_length"`
	FillSpeed      float64        `json:"fill_speed"`    // units per second
	MaxFillTime    int            `json:"max_fill_time"` // minutes
	SampleMode     string         `json:"sample_mode"`
	Interval       string         `json:"interval"`
	Boost          string         `json:"boost"`
	AnalogOutput   int            `json:"analog_output"`
	DefaultChannel int            `json:"default_channel"`
	ErrorMode      int            `json:"error_mode"`
	StatusWord     string         `json:"status_word"`
	MenuMode       string         `json:"menu_mode"` // Operate Mode | Menu Mode
	Channels       []ChannelState `json:"channels"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
