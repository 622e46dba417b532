package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/docsift/docsift/config"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	setupLogging(cfg.LogLevel, cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCommand(cfg).Run(ctx, os.Args); err != nil {
		slog.Error("docsift failed", "err", err)
		os.Exit(1)
	}
}

// setupLogging installs the default slog handler. An unrecognized level
// falls back to info rather than aborting startup.
func setupLogging(level, file string) {
	var logLevel slog.Level
	err := logLevel.UnmarshalText([]byte(level))
	if err != nil {
		logLevel = slog.LevelInfo
	}

	var w io.Writer = os.Stderr
	if file != "" {
		w = &lumberjack.Logger{
			Filename:   file,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(h))
	if err != nil {
		slog.Warn("unrecognized log level, using info", "level", level)
	}
}
