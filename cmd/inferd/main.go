package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"inferd/internal/common/fsutil"
	"inferd/internal/config"
	"inferd/internal/engine"
	"inferd/internal/gateway"
	"inferd/internal/httpapi"
)

func main() {
	defaultAddr := ":8001"
	if v := os.Getenv("INFERD_ADDR"); v != "" {
		defaultAddr = v
	}
	defaultModel := os.Getenv("INFERD_MODEL")

	addr := flag.String("addr", defaultAddr, "HTTP listen address, e.g. :8001")
	modelPath := flag.String("model", defaultModel, "Path to the *.gguf model file")
	configPath := flag.String("config", "", "Optional config file (yaml/json/toml); explicit flags win")
	maxBatchSize := flag.Int("max-batch-size", 0, "Close a batch after this many requests (0=default)")
	maxBatchWaitMS := flag.Int("max-batch-wait-ms", 0, "Close a batch this long after the oldest request arrived (0=default)")
	maxQueueDepth := flag.Int("max-queue-depth", 0, "Admitted request limit before 429 (0=default)")
	drainTimeoutMS := flag.Int("drain-timeout-ms", 0, "Max wait for in-flight work at shutdown (0=default)")
	maxBodyBytes := flag.Int64("max-body-bytes", 0, "Max request body size in bytes (0=default 1MiB)")
	engineCtx := flag.Int("engine-ctx", 2048, "Engine context size in tokens")
	engineThreads := flag.Int("engine-threads", 0, "Engine CPU threads (0=auto)")
	logLevel := flag.String("log-level", "info", "Log level: debug|info|warn|error")
	logFormat := flag.String("log-format", "console", "Log format: console|json")
	corsEnabled := flag.Bool("cors", false, "Enable CORS middleware")
	corsOrigins := flag.String("cors-origins", "*", "CSV of allowed CORS origins")
	corsMethods := flag.String("cors-methods", "GET,POST", "CSV of allowed CORS methods")
	corsHeaders := flag.String("cors-headers", "Content-Type", "CSV of allowed CORS headers")
	flag.Parse()

	// Overlay config file under explicitly-set flags.
	if *configPath != "" {
		fileCfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config %s: %v", *configPath, err)
		}
		explicit := map[string]bool{}
		flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		if !explicit["addr"] && fileCfg.Addr != "" {
			*addr = fileCfg.Addr
		}
		if !explicit["model"] && fileCfg.ModelPath != "" {
			*modelPath = fileCfg.ModelPath
		}
		if !explicit["max-batch-size"] && fileCfg.MaxBatchSize > 0 {
			*maxBatchSize = fileCfg.MaxBatchSize
		}
		if !explicit["max-batch-wait-ms"] && fileCfg.MaxBatchWaitMS > 0 {
			*maxBatchWaitMS = fileCfg.MaxBatchWaitMS
		}
		if !explicit["max-queue-depth"] && fileCfg.MaxQueueDepth > 0 {
			*maxQueueDepth = fileCfg.MaxQueueDepth
		}
		if !explicit["drain-timeout-ms"] && fileCfg.DrainTimeoutMS > 0 {
			*drainTimeoutMS = fileCfg.DrainTimeoutMS
		}
		if !explicit["max-body-bytes"] && fileCfg.MaxBodyBytes > 0 {
			*maxBodyBytes = fileCfg.MaxBodyBytes
		}
		if !explicit["engine-ctx"] && fileCfg.EngineCtx > 0 {
			*engineCtx = fileCfg.EngineCtx
		}
		if !explicit["engine-threads"] && fileCfg.EngineThreads > 0 {
			*engineThreads = fileCfg.EngineThreads
		}
		if !explicit["log-level"] && fileCfg.LogLevel != "" {
			*logLevel = fileCfg.LogLevel
		}
		if !explicit["log-format"] && fileCfg.LogFormat != "" {
			*logFormat = fileCfg.LogFormat
		}
	}

	logger := buildLogger(*logLevel, *logFormat)
	httpapi.SetLogger(logger)
	httpapi.SetMaxBodyBytes(*maxBodyBytes)
	httpapi.SetCORSOptions(*corsEnabled, splitCSV(*corsOrigins), splitCSV(*corsMethods), splitCSV(*corsHeaders))

	model, err := fsutil.ExpandHome(*modelPath)
	if err != nil {
		log.Fatalf("invalid model path: %v", err)
	}
	if model != "" && !fsutil.PathExists(model) {
		logger.Warn().Str("model", model).Msg("model path does not exist")
	}

	gw := gateway.NewWithConfig(gateway.Config{
		Engine: func() (engine.Engine, error) {
			return engine.New(engine.Config{ModelPath: model, CtxSize: *engineCtx, Threads: *engineThreads})
		},
		MaxBatchSize:  *maxBatchSize,
		MaxBatchWait:  time.Duration(*maxBatchWaitMS) * time.Millisecond,
		MaxQueueDepth: *maxQueueDepth,
		DrainTimeout:  time.Duration(*drainTimeoutMS) * time.Millisecond,
	})

	// Fail fast: if the engine cannot be constructed the process exits
	// before the listener is bound, so no endpoint is ever reachable.
	if err := gw.Start(); err != nil {
		logger.Fatal().Err(err).Msg("engine initialization failed")
	}

	baseCtx, cancelBase := context.WithCancel(context.Background())
	httpapi.SetBaseContext(baseCtx)

	mux := httpapi.NewMux(gw)
	srv := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		logger.Info().Str("addr", *addr).Str("model", model).Msg("inferd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
	if err := gw.Stop(); err != nil {
		logger.Error().Err(err).Msg("gateway stop error")
	}
	cancelBase()
}

func buildLogger(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if format == "json" {
		return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}

// splitCSV splits a comma-separated flag value, trimming spaces and dropping
// empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
