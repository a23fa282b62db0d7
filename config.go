package cafepow

import (
	"fmt"

	"github.com/DistributedClocks/tracing"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read by LoadConfig, e.g.
// CAFEPOW_WORKERS.
const EnvPrefix = "CAFEPOW"

// SearchConfig configures a search run. Keys in JSON config files and
// environment variables match the field names case-insensitively.
type SearchConfig struct {
	Workers          int
	LogLevel         string
	TracerServerAddr string
	TracerIdentity   string
	TracerSecret     string
}

func DefaultConfig() SearchConfig {
	return SearchConfig{
		Workers:        0,
		LogLevel:       logrus.WarnLevel.String(),
		TracerIdentity: "cafepow",
	}
}

// NewViper returns a viper instance seeded with DefaultConfig and reading
// CAFEPOW_* environment variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("Workers", def.Workers)
	v.SetDefault("LogLevel", def.LogLevel)
	v.SetDefault("TracerServerAddr", def.TracerServerAddr)
	v.SetDefault("TracerIdentity", def.TracerIdentity)
	v.SetDefault("TracerSecret", def.TracerSecret)
	return v
}

// LoadConfig reads filename, if not empty, into v and unmarshals the merged
// settings.
func LoadConfig(v *viper.Viper, filename string) (SearchConfig, error) {
	var config SearchConfig
	if filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			return config, fmt.Errorf("reading config %s: %w", filename, err)
		}
	}
	if err := v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return config, config.Validate()
}

// WriteConfig writes config as JSON to filename.
func WriteConfig(config SearchConfig, filename string) error {
	v := viper.New()
	v.SetConfigType("json")
	v.Set("Workers", config.Workers)
	v.Set("LogLevel", config.LogLevel)
	v.Set("TracerServerAddr", config.TracerServerAddr)
	v.Set("TracerIdentity", config.TracerIdentity)
	v.Set("TracerSecret", config.TracerSecret)
	if err := v.WriteConfigAs(filename); err != nil {
		return fmt.Errorf("writing config %s: %w", filename, err)
	}
	return nil
}

func (c SearchConfig) Validate() error {
	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: Workers must be in [0, %d], got %d", ErrInvalidConfig, MaxWorkers, c.Workers)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.TracerServerAddr != "" && c.TracerIdentity == "" {
		return fmt.Errorf("%w: TracerIdentity is required with TracerServerAddr", ErrInvalidConfig)
	}
	return nil
}

// Level returns the parsed LogLevel, falling back to warn.
func (c SearchConfig) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.WarnLevel
	}
	return level
}

// NewTracer connects to the tracing server when TracerServerAddr is set.
// Without it, actions are dropped. The returned func closes the tracer.
func (c SearchConfig) NewTracer() (Tracer, func() error) {
	if c.TracerServerAddr == "" {
		return noopTracer{}, func() error { return nil }
	}
	tracer := tracing.NewTracer(tracing.TracerConfig{
		ServerAddress:  c.TracerServerAddr,
		TracerIdentity: c.TracerIdentity,
		Secret:         []byte(c.TracerSecret),
	})
	return tracer, tracer.Close
}
