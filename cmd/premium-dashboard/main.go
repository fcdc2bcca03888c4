package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/iwvelando/premium-dashboard/internal/analysis"
	"github.com/iwvelando/premium-dashboard/internal/config"
	"github.com/iwvelando/premium-dashboard/internal/kpi"
	"github.com/iwvelando/premium-dashboard/internal/metrics"
	"github.com/iwvelando/premium-dashboard/internal/server"
	"github.com/iwvelando/premium-dashboard/internal/source"
	"github.com/iwvelando/premium-dashboard/pkg/constants"
	"github.com/iwvelando/premium-dashboard/pkg/output"
	"github.com/iwvelando/premium-dashboard/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Logs go to stderr unless a file is configured so that stdout carries
	// only the report.
	config.OutputPaths = []string{"stderr"}
	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	periodFlag := flag.String("period", "", "period id to analyse (overrides config)")
	compareFlag := flag.String("compare", "", "explicit comparison period id (overrides config)")
	modeFlag := flag.String("mode", "", "analysis mode override: cumulative, pop")
	typesFlag := flag.String("types", "", "comma-separated business lines (overrides config)")
	importFlag := flag.String("import", "", "JSON period file to import into the configured SQLite database")
	serve := flag.Bool("serve", false, "serve the HTTP API instead of printing one analysis")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	flag.Parse()

	if *serve {
		runServer(*serverConfigLocation, *logLevel)
		return
	}

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx := context.Background()

	if *importFlag != "" {
		if err := importPeriods(ctx, logger, *importFlag, conf.Data); err != nil {
			logger.Fatal("failed to import periods",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		return
	}

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Command line selection overrides the configured one
	if *periodFlag != "" {
		conf.Analysis.Period = *periodFlag
	}
	if *compareFlag != "" {
		conf.Analysis.ComparisonPeriod = *compareFlag
	}
	if *modeFlag != "" {
		conf.Analysis.Mode = *modeFlag
	}
	if *typesFlag != "" {
		conf.Analysis.BusinessTypes = strings.Split(*typesFlag, ",")
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	mode, err := metrics.ParseMode(conf.Analysis.Mode)
	if err != nil {
		logger.Fatal("invalid analysis mode",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	src, err := source.New(conf.Data.Source, conf.Data.Path, logger)
	if err != nil {
		logger.Fatal("failed to create data source",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	ds, err := source.LoadDataset(ctx, src)
	if err != nil {
		logger.Fatal("failed to load period data",
			zap.String("op", "main"),
			zap.String("path", conf.Data.Path),
			zap.Error(err),
		)
	}

	result, err := analysis.NewProcessor(logger).Process(ds, analysis.Request{
		PeriodID:           conf.Analysis.Period,
		ComparisonPeriodID: conf.Analysis.ComparisonPeriod,
		Mode:               mode,
		BusinessTypes:      conf.Analysis.BusinessTypes,
	})
	if err != nil {
		logger.Fatal("failed to analyse period",
			zap.String("op", "main"),
			zap.String("period", conf.Analysis.Period),
			zap.Error(err),
		)
	}

	// Handle output.
	kpis := kpi.Build(result, ds.Labels())
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(os.Stdout, result, kpis)
	case constants.OutputFormatCSV:
		err = output.CSV(os.Stdout, result, result.Mode, output.Labels{})
	case constants.OutputFormatJSON:
		err = output.JSONFormat(os.Stdout, result, kpis)
	}
	if err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.String("format", outputFormat),
			zap.Error(err),
		)
	}
}

// importPeriods copies a JSON period file into the SQLite database named by
// the data configuration.
func importPeriods(ctx context.Context, logger *zap.Logger, jsonPath string, data config.DataConfig) error {
	if data.Source != constants.SourceSQLite {
		return fmt.Errorf("import requires data source %s, configured %s", constants.SourceSQLite, data.Source)
	}

	ds, err := source.LoadDataset(ctx, &source.JSONFile{Path: jsonPath})
	if err != nil {
		return err
	}
	return source.NewSQLite(data.Path, logger).Import(ctx, ds.Records())
}

func runServer(configLocation, logLevel string) {
	cfg, err := server.LoadConfig(configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main.runServer\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", configLocation, err)
		os.Exit(1)
	}

	logger, err := initializeLogger(cfg.Logging, logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main.runServer\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := source.New(cfg.Data.Source, cfg.Data.Path, logger)
	if err != nil {
		logger.Fatal("failed to create data source",
			zap.String("op", "main.runServer"),
			zap.Error(err),
		)
	}
	ds, err := source.LoadDataset(ctx, src)
	if err != nil {
		logger.Fatal("failed to load period data",
			zap.String("op", "main.runServer"),
			zap.String("path", cfg.Data.Path),
			zap.Error(err),
		)
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, ds, cfg.RequestSizeBytes(), cfg.TrendConcurrency, version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("serving analysis API",
			zap.String("op", "main.runServer"),
			zap.String("address", cfg.Address),
			zap.Int("periods", ds.Len()),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed",
				zap.String("op", "main.runServer"),
				zap.Error(err),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed",
			zap.String("op", "main.runServer"),
			zap.Error(err),
		)
	}
}
