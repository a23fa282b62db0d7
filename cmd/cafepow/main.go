// Command cafepow searches for a nonce whose SHA-256 digest over
// nonce || payload ends in 0xCAFE, then prints the digest and the nonce in hex.
//
//	cafepow [flags] <payload-hex>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/automaxprocs/maxprocs"

	cafepow "example.org/cpsc416/cafepow"
	"example.org/cpsc416/cafepow/powlib"
)

const exitNoSolution = 2

func main() {
	cmd := newRootCommand(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		logrus.Error(err)
		if errors.Is(err, cafepow.ErrNoSolution) {
			os.Exit(exitNoSolution)
		}
		os.Exit(1)
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	v := cafepow.NewViper()
	var configFile string

	cmd := &cobra.Command{
		Use:           "cafepow [flags] <payload-hex>",
		Short:         "Find a nonce whose SHA-256 digest over nonce || payload ends in cafe",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				fmt.Fprintln(stderr, "Missing input string")
				return nil
			}
			payload, err := cafepow.DecodePayload(args[0])
			if err != nil {
				return err
			}
			config, err := cafepow.LoadConfig(v, configFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), config, payload, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "JSON config file, e.g. config/cafepow_config.json")
	flags.Int("workers", 0, "number of search workers, 0 for one per logical processor")
	flags.String("log-level", cafepow.DefaultConfig().LogLevel, "log level: panic, fatal, error, warn, info, debug, trace")
	flags.String("trace-server", "", "tracing server address, tracing is off when empty")
	flags.String("trace-id", cafepow.DefaultConfig().TracerIdentity, "tracer identity")
	bindFlags(v, flags)
	return cmd
}

// bindFlags lets flags override config file and environment values.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	for key, name := range map[string]string{
		"Workers":          "workers",
		"LogLevel":         "log-level",
		"TracerServerAddr": "trace-server",
		"TracerIdentity":   "trace-id",
	} {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
}

func run(ctx context.Context, config cafepow.SearchConfig, payload []byte, stdout, stderr io.Writer) error {
	log := logrus.New()
	log.SetOutput(stderr)
	log.SetLevel(config.Level())

	if _, err := maxprocs.Set(maxprocs.Logger(log.Debugf)); err != nil {
		log.WithError(err).Warn("failed to set GOMAXPROCS")
	}

	tracer, closeTracer := config.NewTracer()
	defer func() {
		if err := closeTracer(); err != nil {
			log.WithError(err).Warn("closing tracer")
		}
	}()

	coordinator := cafepow.NewCoordinator(
		cafepow.WithWorkers(config.Workers),
		cafepow.WithLogger(log),
		cafepow.WithTracer(tracer),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pow := powlib.NewPOW()
	notify, err := pow.Initialize(ctx, coordinator, nil, 1)
	if err != nil {
		return err
	}
	defer pow.Close()

	if err := pow.Mine(payload); err != nil {
		return err
	}
	result := <-notify
	if result.Err != nil {
		return result.Err
	}
	_, err = result.Solution.WriteTo(stdout)
	return err
}
