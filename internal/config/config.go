package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lm500_emulator/internal/lm500"

	"github.com/spf13/viper"
)

const envPrefix = "LM500"

type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Sim    SimConfig    `mapstructure:"sim"`
	Device DeviceConfig `mapstructure:"device"`
	Stream StreamConfig `mapstructure:"stream"`
	Serial SerialConfig `mapstructure:"serial"`
	HTTP   HTTPConfig   `mapstructure:"http"`
	Auth   AuthConfig   `mapstructure:"auth"`
	DB     DBConfig     `mapstructure:"db"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

// SimConfig tunes the tick driver.
type SimConfig struct {
	Tick        time.Duration `mapstructure:"tick"`
	TimeScale   float64       `mapstructure:"time_scale"`   // simulated seconds per wall second
	SampleEvery int           `mapstructure:"sample_every"` // record a level sample every N ticks; 0 disables
}

// DeviceConfig holds the power-on values of the instrument.
type DeviceConfig struct {
	Identity       string  `mapstructure:"identity"`
	Units          string  `mapstructure:"units"`
	HighThreshold  float64 `mapstructure:"high_threshold"`
	LowThreshold   float64 `mapstructure:"low_threshold"`
	AlarmThreshold float64 `mapstructure:"alarm_threshold"`
	SensorLength   float64 `mapstructure:"sensor_length"`
	FillSpeed      float64 `mapstructure:"fill_speed"`    // units per second
	MaxFillTime    int     `mapstructure:"max_fill_time"` // minutes
	Boost          string  `mapstructure:"boost"`
	DefaultChannel int     `mapstructure:"default_channel"`
	SampleMode     string  `mapstructure:"sample_mode"` // 0 | S | C
	TypeCodes      []int   `mapstructure:"type_codes"`
}

type StreamConfig struct {
	Addr string `mapstructure:"addr"`
}

// SerialConfig enables an additional serial-port transport when Port is set.
type SerialConfig struct {
	Port     string `mapstructure:"port"`
	BaudRate int    `mapstructure:"baud_rate"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

type AuthConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	def := lm500.DefaultSettings()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("sim.tick", "100ms")
	v.SetDefault("sim.time_scale", 1.0)
	v.SetDefault("sim.sample_every", 10)

	v.SetDefault("device.identity", def.Identity)
	v.SetDefault("device.units", def.Units)
	v.SetDefault("device.high_threshold", def.HighThreshold)
	v.SetDefault("device.low_threshold", def.LowThreshold)
	v.SetDefault("device.alarm_threshold", def.AlarmThreshold)
	v.SetDefault("device.sensor_length", def.SensorLength)
	v.SetDefault("device.fill_speed", def.FillSpeed)
	v.SetDefault("device.max_fill_time", def.MaxFillTime)
	v.SetDefault("device.boost", def.Boost)
	v.SetDefault("device.default_channel", int(def.DefaultChannel))
	v.SetDefault("device.sample_mode", "S")
	v.SetDefault("device.type_codes", []int{def.TypeCodes[0], def.TypeCodes[1]})

	v.SetDefault("stream.addr", ":57677")
	v.SetDefault("serial.port", "")
	v.SetDefault("serial.baud_rate", 9600)

	v.SetDefault("http.port", "8080")

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", "1h")

	v.SetDefault("db.path", "lm500.db")
}

// Load reads config.yml from the first matching path, applies LM500_*
// environment overrides and validates the result. A missing file is not an
// error; defaults are used.
func Load(paths ...string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the emulator cannot run with.
func (c Config) Validate() error {
	if c.Sim.Tick <= 0 {
		return fmt.Errorf("sim.tick must be positive, got %v", c.Sim.Tick)
	}
	if c.Sim.TimeScale <= 0 {
		return fmt.Errorf("sim.time_scale must be positive, got %v", c.Sim.TimeScale)
	}
	if c.Auth.Enabled && c.Auth.SigningKey == "" {
		return errors.New("auth.signing_key is required when auth is enabled")
	}
	if _, err := c.Device.Settings(); err != nil {
		return err
	}
	return nil
}

// Settings converts the device section into power-on settings.
func (d DeviceConfig) Settings() (lm500.Settings, error) {
	s := lm500.DefaultSettings()
	s.Identity = d.Identity
	s.Units = d.Units
	s.HighThreshold = d.HighThreshold
	s.LowThreshold = d.LowThreshold
	s.AlarmThreshold = d.AlarmThreshold
	s.SensorLength = d.SensorLength
	s.FillSpeed = d.FillSpeed
	s.MaxFillTime = d.MaxFillTime
	s.Boost = d.Boost

	if d.FillSpeed < 0 {
		return s, fmt.Errorf("device.fill_speed must not be negative, got %v", d.FillSpeed)
	}
	if d.MaxFillTime < 1 {
		return s, fmt.Errorf("device.max_fill_time must be at least 1 minute, got %d", d.MaxFillTime)
	}

	ch := lm500.ChannelID(d.DefaultChannel)
	if err := ch.Validate(); err != nil {
		return s, fmt.Errorf("device.default_channel: %w", err)
	}
	s.DefaultChannel = ch

	probe := lm500.NewDevice(s)
	if err := probe.SetSampleMode(d.SampleMode); err != nil {
		return s, fmt.Errorf("device.sample_mode: %w", err)
	}
	s.SampleMode = probe.SampleMode()

	if len(d.TypeCodes) != lm500.NumChannels {
		return s, fmt.Errorf("device.type_codes: want %d values, got %d", lm500.NumChannels, len(d.TypeCodes))
	}
	copy(s.TypeCodes[:], d.TypeCodes)
	return s, nil
}
