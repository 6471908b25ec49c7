package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/username/holiday-assistant/internal/assistant"
	"github.com/username/holiday-assistant/internal/config"
	"github.com/username/holiday-assistant/internal/holiday"
	"github.com/username/holiday-assistant/internal/interpreter"
	"github.com/username/holiday-assistant/internal/llm"
	"github.com/username/holiday-assistant/internal/metrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath string
	logger     *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "holiday-assistant",
		Short: "Holiday calendar assistant",
		Long:  "Answer questions about the holiday calendar, falling back to policy documents for everything else",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					initLogger()
				}
			} else {
				initLogger()
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")

	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// stores is the wired calendar: a read path plus the pieces the reloader refreshes
type stores struct {
	read     holiday.Store
	reloader *holiday.Reloader
	sql      *holiday.SQLStore
}

func (s *stores) Close() {
	if s.sql != nil {
		if err := s.sql.Close(); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}
}

// initializeStores builds the store chain without loading it.
// With sqlite the database is primary and the in-memory table is the fallback.
// With metrics every lookup on the read path is counted.
func initializeStores(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*stores, error) {
	memory := holiday.NewMemoryStore(nil, logger)
	s := &stores{read: memory}

	if cfg.Store.Type == "sqlite" {
		logger.Info("Using SQLite holiday store", zap.String("path", cfg.Store.Path))
		db, err := holiday.OpenSQLStore(cfg.Store.Path, logger)
		if err != nil {
			return nil, err
		}
		if err := db.Init(ctx); err != nil {
			db.Close()
			return nil, err
		}
		s.sql = db
		s.read = holiday.NewCompositeStore(db, memory, logger)
	} else {
		logger.Info("Using in-memory holiday store")
	}

	var cache *holiday.CachedStore
	if ttl := cfg.Store.GetCacheTTL(); ttl > 0 {
		cache = holiday.NewCachedStore(s.read, ttl, logger)
		s.read = cache
	}

	if m != nil {
		s.read = holiday.NewObservedStore(s.read, m)
	}

	s.reloader = holiday.NewReloader(cfg.Store.SeedFile, memory, s.sql, cache, logger)
	return s, nil
}

// loadCalendar runs the first load. A database may already hold a calendar,
// so with sqlite a failed load only warns.
func loadCalendar(ctx context.Context, s *stores, reload func(context.Context) error) error {
	if err := reload(ctx); err != nil {
		if s.sql == nil {
			return fmt.Errorf("failed to load holiday calendar: %w", err)
		}
		logger.Warn("Failed to load seed calendar, continuing with database only", zap.Error(err))
	}
	return nil
}

// openStores builds and loads the store chain for one-shot commands
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	s, err := initializeStores(ctx, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize holiday store: %w", err)
	}

	reload := func(ctx context.Context) error {
		_, err := s.reloader.Reload(ctx)
		return err
	}
	if err := loadCalendar(ctx, s, reload); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func initializeAnswerer(cfg *config.Config) (llm.Answerer, error) {
	if !cfg.LLM.Enabled {
		logger.Info("Document answerer disabled")
		return llm.NewStaticAnswerer(), nil
	}

	retriever, err := llm.LoadDir(cfg.LLM.DocumentsDir, cfg.LLM.ChunkSize, cfg.LLM.ChunkOverlap, logger)
	if err != nil {
		logger.Warn("Failed to load documents, answering without context", zap.Error(err))
		retriever = llm.NewRetriever(nil, logger)
	}

	history := llm.NewHistory(cfg.LLM.HistoryTurns, cfg.LLM.HistorySessions)
	return llm.NewAzOpenAIAnswerer(cfg.LLM.Endpoint, cfg.LLM.APIKey, cfg.LLM.Deployment, retriever, cfg.LLM.TopK, history, logger)
}

func initializeAssistant(cfg *config.Config, s *stores, m *metrics.Metrics) (*assistant.Assistant, error) {
	answerer, err := initializeAnswerer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize document answerer: %w", err)
	}

	return assistant.New(interpreter.New(s.read, logger), answerer, m, logger), nil
}

func initLogger() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
