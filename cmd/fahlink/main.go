package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	logAdapter "github.com/fold-labs/fahlink/internal/adapters/log"
	metricsAdapter "github.com/fold-labs/fahlink/internal/adapters/metrics"
	"github.com/fold-labs/fahlink/internal/cliconfig"
	"github.com/fold-labs/fahlink/pkg/fahlink"
	"github.com/fold-labs/fahlink/plugins/configwatcher"
)

const helpDescription = `
Mirror a Folding@home client's live state and control it from the command line.

Highlights:
  - Push-based: one persistent WebSocket, no polling.
  - Survives client restarts with bounded exponential backoff.
  - Commands reconnect opportunistically; nothing is silently queued.
  - Configure via file (~/.fahlink/config.toml), FAHLINK_* env, or flags.
`

var exampleUsage = strings.TrimSpace(`
  fahlink watch --host 192.168.1.20
  fahlink pause --host 192.168.1.20
  fahlink probe --host 192.168.1.20 --port 7396
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	var metricsAddr string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "fahlink",
		Short:   "Mirror and control a Folding@home client over its WebSocket feed",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first, then env, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			return cfg.Validate()
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.fahlink/config.toml)")
	root.PersistentFlags().StringVar(&cfg.Host, "host", cfg.Host, "folding client host")
	root.PersistentFlags().IntVar(&cfg.Port, "port", cfg.Port, "folding client port")
	root.PersistentFlags().StringVar(&cfg.Group, "group", cfg.Group, "resource group (empty string is the default group)")
	root.PersistentFlags().DurationVar(&cfg.ConnectTimeout, "connect-timeout", cfg.ConnectTimeout, "connect plus first-read timeout")
	root.PersistentFlags().DurationVar(&cfg.BackoffBase, "backoff-base", cfg.BackoffBase, "initial reconnect delay")
	root.PersistentFlags().DurationVar(&cfg.BackoffMax, "backoff-max", cfg.BackoffMax, "reconnect delay cap")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Mirror the client's state and log changes until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cfg, cfgPath, metricsAddr, log)
		},
	}
	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address (e.g. :9090)")
	watchCmd.Flags().BoolVar(&cfg.MetricsEnabled, "metrics", cfg.MetricsEnabled, "enable prometheus metrics")

	for _, sc := range []struct {
		use, short string
		state      fahlink.RunState
	}{
		{"pause", "Pause folding in the resource group", fahlink.RunStatePause},
		{"fold", "Resume folding in the resource group", fahlink.RunStateFold},
		{"finish", "Finish current work units, then pause", fahlink.RunStateFinish},
	} {
		state := sc.state
		root.AddCommand(&cobra.Command{
			Use:   sc.use,
			Short: sc.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runCommand(cmd.Context(), cfg, state, log)
			},
		})
	}

	root.AddCommand(watchCmd)
	root.AddCommand(&cobra.Command{
		Use:   "probe",
		Short: "Validate the endpoint and print the machine identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd.Context(), cfg)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("fahlink")
		os.Exit(1)
	}
}

func clientConfig(cfg cliconfig.Config) fahlink.Config {
	return fahlink.Config{
		Host:           cfg.Host,
		Port:           cfg.Port,
		ConnectTimeout: cfg.ConnectTimeout,
		BackoffBase:    cfg.BackoffBase,
		BackoffMax:     cfg.BackoffMax,
	}
}

// runWatch mirrors the client until the context is canceled, logging
// document changes through an observer.
func runWatch(ctx context.Context, cfg cliconfig.Config, cfgPath, metricsAddr string, log zerolog.Logger) error {
	opts := []fahlink.Option{
		fahlink.WithLogger(logAdapter.NewZerologAdapterWithLogger(log)),
	}

	if cfg.MetricsEnabled || metricsAddr != "" {
		reg := prometheus.NewRegistry()
		m, err := metricsAdapter.NewPrometheus(reg)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		opts = append(opts, fahlink.WithMetrics(m))

		if metricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			go func() {
				if err := http.ListenAndServe(metricsAddr, mux); err != nil {
					log.Error().Err(err).Msg("metrics server")
				}
			}()
		}
	}

	// Restart against the new endpoint when the config file changes.
	restart := make(chan configwatcher.Endpoint, 1)
	watchPath := cfgPath
	if watchPath == "" {
		watchPath = cliconfig.DefaultConfigPath()
	}
	if watchPath != "" && cliconfig.FileExists(watchPath) {
		opts = append(opts, configwatcher.WithConfigWatcher(
			configwatcher.Config{Path: watchPath},
			func(ep configwatcher.Endpoint) {
				select {
				case restart <- ep:
				default:
				}
			},
		))
	}

	for {
		client, err := fahlink.New(clientConfig(cfg), opts...)
		if err != nil {
			return err
		}

		stopLogging := client.Subscribe(newChangeLogger(log, cfg.Group).observe)

		if err := client.Start(ctx); err != nil {
			stopLogging()
			return fmt.Errorf("start client: %w", err)
		}

		select {
		case <-ctx.Done():
			stopLogging()
			if err := client.Stop(); err != nil {
				return fmt.Errorf("stop client: %w", err)
			}
			return nil
		case ep := <-restart:
			log.Info().Str("host", ep.Host).Int("port", ep.Port).Msg("restarting against new endpoint")
			stopLogging()
			if err := client.Stop(); err != nil {
				log.Error().Err(err).Msg("stop before restart")
			}
			cfg.Host = ep.Host
			cfg.Port = ep.Port
		}
	}
}

// runCommand sends one state command and exits.
func runCommand(ctx context.Context, cfg cliconfig.Config, state fahlink.RunState, log zerolog.Logger) error {
	client, err := fahlink.New(clientConfig(cfg),
		fahlink.WithLogger(logAdapter.NewZerologAdapterWithLogger(log)))
	if err != nil {
		return err
	}

	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("start client: %w", err)
	}
	defer client.Stop()

	return client.SetRunState(ctx, state, cfg.Group)
}

// runProbe validates the endpoint and prints the machine identity.
func runProbe(ctx context.Context, cfg cliconfig.Config) error {
	machine, err := fahlink.Probe(ctx, clientConfig(cfg))
	if err != nil {
		return err
	}
	fmt.Printf("id:      %s\nname:    %s\nversion: %s\n", machine.ID, machine.Name, machine.Version)
	return nil
}
