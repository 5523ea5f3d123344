package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ecuevas97/PartyPal/internal/config"
	"github.com/ecuevas97/PartyPal/internal/logger"
	"github.com/ecuevas97/PartyPal/internal/server"
)

func main() {
	configFile := flag.String("config", "config.yml", "path to config file")
	flag.Parse()

	// Загружаем конфигурацию из файла
	appConfig, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(appConfig.Logger.Level)

	// Контекст отменяется по SIGINT/SIGTERM, дальше graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(appConfig, log)
	if err := srv.Initialize(ctx); err != nil {
		log.Error("failed to initialize server", "error", err)
		os.Exit(1)
	}

	log.Info("PartyPal backend starting", "port", appConfig.Server.Port)
	if err := srv.Run(ctx); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("PartyPal backend stopped")
}
