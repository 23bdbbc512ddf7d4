package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/opaquechat/chat/api-gateway/internal/proxy"
	"github.com/opaquechat/chat/shared/config"
	"github.com/opaquechat/chat/shared/logging"
	"github.com/opaquechat/chat/shared/server"
)

func main() {
	cfg, err := config.Load("api-gateway", config.Defaults{Port: "8080"})
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logging.New(cfg.Environment.Current, cfg.Environment.LogLevel)

	ctx, stop := server.SignalContext(context.Background())
	defer stop()

	router := server.NewRouter(server.RouterOptions{})
	proxy.New(30*time.Second).Register(router, proxy.Targets{
		UserServiceURL:    cfg.Services.UserURL,
		MessageServiceURL: cfg.Services.MessageURL,
	})

	slog.Info("api gateway starting",
		"port", cfg.Server.Port,
		"user_service", cfg.Services.UserURL,
		"message_service", cfg.Services.MessageURL,
	)
	if err := server.Run(ctx, ":"+cfg.Server.Port, router, cfg.Server.ShutdownTimeout); err != nil {
		slog.Error("api gateway stopped", "error", err)
		os.Exit(1)
	}
}
