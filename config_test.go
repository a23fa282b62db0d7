package cafepow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
	assert.Equal(t, logrus.WarnLevel, config.Level())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cafepow_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
	"Workers": 3,
	"LogLevel": "debug",
	"TracerServerAddr": "127.0.0.1:6000",
	"TracerIdentity": "search1",
	"TracerSecret": "s3cret"
}`), 0o644))

	config, err := LoadConfig(NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, SearchConfig{
		Workers:          3,
		LogLevel:         "debug",
		TracerServerAddr: "127.0.0.1:6000",
		TracerIdentity:   "search1",
		TracerSecret:     "s3cret",
	}, config)
	assert.Equal(t, logrus.DebugLevel, config.Level())
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cafepow_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Workers": 3}`), 0o644))
	t.Setenv("CAFEPOW_WORKERS", "5")
	t.Setenv("CAFEPOW_LOGLEVEL", "info")

	config, err := LoadConfig(NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, 5, config.Workers)
	assert.Equal(t, "info", config.LogLevel)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(NewViper(), filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Workers": 300}`), 0o644))
	_, err = LoadConfig(NewViper(), path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSearchConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*SearchConfig)
		wantErr bool
	}{
		{"defaults", func(*SearchConfig) {}, false},
		{"max workers", func(c *SearchConfig) { c.Workers = MaxWorkers }, false},
		{"negative workers", func(c *SearchConfig) { c.Workers = -1 }, true},
		{"too many workers", func(c *SearchConfig) { c.Workers = MaxWorkers + 1 }, true},
		{"bad level", func(c *SearchConfig) { c.LogLevel = "loud" }, true},
		{"tracer without identity", func(c *SearchConfig) {
			c.TracerServerAddr = ":6000"
			c.TracerIdentity = ""
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)
			err := config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cafepow_config.json")
	want := DefaultConfig()
	want.Workers = 7
	want.LogLevel = "error"
	require.NoError(t, WriteConfig(want, path))

	got, err := LoadConfig(NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNewTracerDisabled(t *testing.T) {
	t.Parallel()

	tracer, closeTracer := DefaultConfig().NewTracer()
	assert.IsType(t, noopTracer{}, tracer)
	tracer.RecordAction(SearchBegin{})
	assert.NoError(t, closeTracer())
}
