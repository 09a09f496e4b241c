package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/genricoloni/mpdnd/internal/config"
	"github.com/genricoloni/mpdnd/internal/domain"
	"github.com/genricoloni/mpdnd/internal/engine"
	"github.com/genricoloni/mpdnd/internal/monitor"
	"github.com/genricoloni/mpdnd/internal/notifier"
	"github.com/genricoloni/mpdnd/internal/processor"
	"github.com/genricoloni/mpdnd/internal/resolver"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var version = "dev"

type options struct {
	configPath string
	once       bool
	logLevel   string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:          "mpdnd",
		Short:        "Desktop notifications for the Music Player Daemon",
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "configuration file (default: $XDG_CONFIG_HOME/mpdnd/config.toml)")
	flags.BoolVarP(&opts.once, "once", "o", false, "notify the current state once and exit")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

func run(ctx context.Context, opts options) error {
	logger, err := newLogger(opts.logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	if opts.once {
		return runOnce(ctx, cfg, logger)
	}
	return runDaemon(cfg, logger)
}

// newLogger creates a production zap logger at the given level
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		found, err := config.DefaultFile(afero.NewOsFs())
		if err != nil {
			return nil, err
		}
		path = found
	}
	return config.Load(path)
}

// AppOptions wires every component shared by watch and one-shot mode
func AppOptions(cfg *config.Config, logger *zap.Logger) fx.Option {
	return fx.Options(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),

		fx.Supply(cfg, logger),

		fx.Provide(
			func() afero.Fs { return afero.NewOsFs() },
			newSession,
			newNotifier,
			fx.Annotate(resolver.NewResolver, fx.As(new(domain.Resolver))),
			fx.Annotate(processor.NewThumbnailer, fx.As(new(domain.Thumbnailer))),
			fx.Annotate(engine.NewEngine, fx.ParamTags(``, ``, `optional:"true"`)),
		),
	)
}

// WatchModule adds the change event stream and runs the engine loop
var WatchModule = fx.Module("watch",
	fx.Provide(newWatcher),
	fx.Invoke(registerHooks),
)

func runDaemon(cfg *config.Config, logger *zap.Logger) error {
	var eng *engine.Engine
	app := fx.New(
		AppOptions(cfg, logger),
		WatchModule,
		fx.Populate(&eng),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	// Returns on SIGINT/SIGTERM or when the loop asks for shutdown
	sig := <-app.Wait()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		logger.Warn("Shutdown did not complete cleanly", zap.Error(err))
	}

	if sig.ExitCode != 0 {
		if err := eng.Err(); err != nil {
			return err
		}
		return fmt.Errorf("exited with code %d", sig.ExitCode)
	}
	return nil
}

func runOnce(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	var eng *engine.Engine
	app := fx.New(
		AppOptions(cfg, logger),
		fx.Populate(&eng),
	)
	if err := app.Err(); err != nil {
		return err
	}

	if err := app.Start(ctx); err != nil {
		return err
	}
	err := eng.NotifyOnce(ctx)

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	if stopErr := app.Stop(stopCtx); stopErr != nil {
		logger.Warn("Shutdown did not complete cleanly", zap.Error(stopErr))
	}
	return err
}

// newSession dials the command connection and closes it on shutdown
func newSession(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (domain.Player, error) {
	session, err := monitor.Connect(logger, cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return session.Close()
		},
	})
	return session, nil
}

// newNotifier reports the notification server at startup and closes the bus on shutdown
func newNotifier(lc fx.Lifecycle, logger *zap.Logger) domain.Notifier {
	n := notifier.NewDBusNotifier(logger)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			n.Probe(ctx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return n.Close()
		},
	})
	return n
}

// newWatcher opens the idle connection and closes it on shutdown
func newWatcher(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (domain.EventStream, error) {
	w, err := monitor.NewWatcher(logger, cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return w.Close()
		},
	})
	return w, nil
}

// registerHooks starts the engine loop and turns a fatal loop end into a shutdown
func registerHooks(lc fx.Lifecycle, eng *engine.Engine, shutdowner fx.Shutdowner, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("mpdnd started", zap.String("version", version))
			if err := eng.Start(ctx); err != nil {
				return err
			}

			go func() {
				<-eng.Done()
				if err := eng.Err(); err != nil {
					logger.Error("Watch loop terminated", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			return eng.Stop(ctx)
		},
	})
}
