package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/janisto/hello-api/internal/platform/config"
	applog "github.com/janisto/hello-api/internal/platform/logging"
	"github.com/janisto/hello-api/internal/platform/server"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred log flushing happens before
// os.Exit.
func run() int {
	ctx := context.Background()
	defer func() {
		_ = applog.Sync()
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(ctx, "logger init error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		applog.LogError(ctx, "invalid configuration", err)
		return 1
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		applog.LogError(ctx, "invalid configuration", err)
		return 1
	}
	applog.SetProjectID(cfg.ProjectID)

	srv := server.New(newRouter(cfg), server.Options{Addr: cfg.Addr()})

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(sigCtx, cfg.ShutdownTimeout); err != nil {
		applog.LogError(ctx, "server failed", err, zap.String("addr", cfg.Addr()))
		return 1
	}
	return 0
}
