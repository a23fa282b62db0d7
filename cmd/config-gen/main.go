// A small utility for generating the search config file.
//
// When run from the root directory, this utility writes config/cafepow_config.json
// with the default search settings, overridden by the given flags. Pass the
// resulting file to cafepow with --config.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	cafepow "example.org/cpsc416/cafepow"
)

func main() {
	config := cafepow.DefaultConfig()
	out := flag.String("out", filepath.Join("config", "cafepow_config.json"), "config file to write")
	flag.IntVar(&config.Workers, "workers", config.Workers, "number of search workers, 0 for one per logical processor")
	flag.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	flag.StringVar(&config.TracerServerAddr, "trace-server", config.TracerServerAddr, "tracing server address, e.g. 127.0.0.1:6000")
	flag.StringVar(&config.TracerIdentity, "trace-id", config.TracerIdentity, "tracer identity")
	flag.StringVar(&config.TracerSecret, "trace-secret", config.TracerSecret, "tracer secret")
	flag.Parse()

	if err := config.Validate(); err != nil {
		logrus.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		logrus.Fatal(err)
	}
	if err := cafepow.WriteConfig(config, *out); err != nil {
		logrus.Fatal(err)
	}
	logrus.WithField("file", *out).Info("config written")
}
