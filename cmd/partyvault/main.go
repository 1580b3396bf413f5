package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/partyvault/partyvault/internal/cache"
	"github.com/partyvault/partyvault/internal/config"
	"github.com/partyvault/partyvault/internal/dispatcher"
	"github.com/partyvault/partyvault/internal/handlers"
	"github.com/partyvault/partyvault/internal/influx"
	"github.com/partyvault/partyvault/internal/logging"
	intOtel "github.com/partyvault/partyvault/internal/otel"
	"github.com/partyvault/partyvault/internal/roster"
	"github.com/partyvault/partyvault/internal/session"
	"github.com/partyvault/partyvault/internal/storage"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "partyvault"
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	// InfluxManager records archive operations when influx is enabled
	InfluxManager *influx.Manager

	LogFilePath string
	LogFile     *os.File

	SessionStartTime time.Time = time.Now()

	// RunID tags every log record of this process
	RunID string = uuid.NewString()

	// Services
	storageBackend  storage.Backend
	sessionService  *session.Service
	handlerService  *handlers.Service
	eventDispatcher *dispatcher.Dispatcher
)

func parseFlags(args []string) (configDir string, err error) {
	flags := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	flags.StringVar(&configDir, "config-dir", ".", "directory containing "+config.ConfigFileName)
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("storage", "", "archive backend (filesystem, sqlite, memory)")
	if err := flags.Parse(args); err != nil {
		return "", err
	}

	if err := viper.BindPFlag("logLevel", flags.Lookup("log-level")); err != nil {
		return "", err
	}
	if err := viper.BindPFlag("storage.type", flags.Lookup("storage")); err != nil {
		return "", err
	}
	return configDir, nil
}

// setupLogging starts on stdout, then moves to the log file once config is
// known. OTel and Graylog sinks are attached when enabled.
func setupLogging() {
	SlogManager = logging.NewSlogManager()
	SlogManager.SetContextProvider(func() []slog.Attr {
		attrs := []slog.Attr{slog.String("run", RunID)}
		if sessionService != nil && sessionService.Started() {
			if name, ok := sessionService.Current(); ok {
				attrs = append(attrs, slog.String("archive", name))
			}
		}
		return attrs
	})
	SlogManager.Setup(nil, viper.GetString("logLevel"), nil)
	Logger = SlogManager.Logger()
}

func openLogFile() {
	var err error
	LogFile, LogFilePath, err = logging.OpenLogFile(viper.GetString("logsDir"), AppName, SessionStartTime)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err)
		LogFile = nil
		return
	}
	Logger.Info("Begin logging in logs directory", "path", LogFilePath)
}

func setupTelemetry() {
	otelCfg := config.GetOTelConfig()
	if !otelCfg.Enabled {
		return
	}

	var logWriter io.Writer
	if LogFile != nil {
		logWriter = LogFile
	}

	var err error
	OTelProvider, err = intOtel.New(intOtel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		BatchTimeout: otelCfg.BatchTimeout,
		LogWriter:    logWriter,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	})
	if err != nil {
		Logger.Error("Failed to initialize OTel provider", "error", err)
		OTelProvider = nil
		return
	}
	if otelCfg.Endpoint != "" {
		Logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
	} else {
		Logger.Info("OTel provider initialized")
	}
}

// resetupLogging re-points the logger at the log file and attaches the
// optional sinks.
func resetupLogging() {
	var sinks []io.Writer
	graylogCfg := config.GetGraylogConfig()
	if graylogCfg.Enabled {
		w, err := logging.NewGraylogWriter(graylogCfg.Address)
		if err != nil {
			Logger.Warn("Graylog sink disabled", "error", err)
		} else {
			sinks = append(sinks, w)
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}

	var file io.Writer
	if LogFile != nil {
		file = LogFile
	}
	SlogManager.Setup(file, viper.GetString("logLevel"), otelLogProvider, sinks...)
	Logger = SlogManager.Logger()
	if LogFile != nil {
		Logger.Info("Logging to file", "path", LogFilePath, "version", CurrentVersion, "build", BuildDate)
	}
}

func setupInflux(ctx context.Context) {
	influxCfg := config.GetInfluxConfig()
	if !influxCfg.Enabled {
		return
	}

	backupPath := filepath.Join(
		viper.GetString("logsDir"),
		fmt.Sprintf("%s_influx_%s.lp.gz", AppName, SessionStartTime.Format("20060102_150405")),
	)
	InfluxManager = influx.NewManager(Logger, influxCfg, backupPath)
	if err := InfluxManager.Connect(ctx); err != nil {
		Logger.Error("Failed to set up archive metrics", "error", err)
		if cerr := InfluxManager.Close(); cerr != nil {
			Logger.Warn("Failed to release archive metrics client", "error", cerr)
		}
		InfluxManager = nil
		return
	}
	Logger.Info("Archive metrics enabled", "url", InfluxManager.ServerURL(), "connected", InfluxManager.IsValid)
}

func setupServices() (err error) {
	storageBackend, err = initStorage(config.GetStorageConfig(), SlogManager)
	if err != nil {
		return err
	}

	var observers []session.Observer
	if InfluxManager != nil {
		observers = append(observers, InfluxManager)
	}

	sessionService = session.NewService(session.Dependencies{
		Store:      storageBackend,
		Registry:   cache.NewNameRegistry(),
		Roster:     roster.FromConfig(config.GetRosterConfig()),
		LogManager: SlogManager,
		Observers:  observers,
	})

	eventDispatcher, err = dispatcher.New(logging.NewDispatcherLogger(Logger))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	handlerService = handlers.NewService(handlers.Dependencies{
		Session:    sessionService,
		LogManager: SlogManager,
	})
	handlerService.Register(eventDispatcher)
	Logger.Debug("Registered commands", "commands", eventDispatcher.Commands())
	return nil
}

func shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if storageBackend != nil {
		if err := storageBackend.Close(); err != nil {
			Logger.Error("Failed to close storage backend", "error", err)
		}
	}
	if InfluxManager != nil {
		if err := InfluxManager.Close(); err != nil {
			Logger.Error("Failed to close archive metrics", "error", err)
		}
	}
	if err := SlogManager.Flush(ctx); err != nil {
		Logger.Warn("Failed to flush logs", "error", err)
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Warn("Failed to shut down OTel provider", "error", err)
		}
	}
	if LogFile != nil {
		_ = LogFile.Close()
	}
}

func run(args []string, in io.Reader, out io.Writer) error {
	configDir, err := parseFlags(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	config.SetDefaults()
	setupLogging()
	if err := config.Load(configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config", "dir", configDir)
	}

	openLogFile()
	setupTelemetry()
	resetupLogging()
	defer shutdown()

	ctx := context.Background()
	setupInflux(ctx)

	if err := setupServices(); err != nil {
		return err
	}

	reply, err := eventDispatcher.Dispatch(dispatcher.Event{Command: handlers.CmdStart})
	if err != nil {
		return errors.New(handlers.Describe(err))
	}
	fmt.Fprintln(out, formatResult(reply))

	return runShell(in, out, eventDispatcher)
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
