package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecuevas97/PartyPal/internal/api/gateway"
	"github.com/ecuevas97/PartyPal/internal/client"
	"github.com/ecuevas97/PartyPal/internal/config"
	"github.com/ecuevas97/PartyPal/internal/logger"
	"github.com/ecuevas97/PartyPal/internal/ui"
	"github.com/ecuevas97/PartyPal/internal/web"
)

func main() {
	configFile := flag.String("config", "config.yml", "path to config file")
	flag.Parse()

	appConfig, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(appConfig.Logger.Level)

	reconcile, err := ui.ParseReconcile(appConfig.Web.Reconcile)
	if err != nil {
		log.Error("invalid web.reconcile", "error", err)
		os.Exit(1)
	}

	api := client.NewClient(appConfig.Web.APIBaseURL, client.WithTimeout(config.Seconds(appConfig.Web.RequestTimeout)))
	sessionTTL := time.Duration(appConfig.Web.SessionTTL) * time.Minute

	srv, err := web.NewServer(api, reconcile, sessionTTL, log)
	if err != nil {
		log.Error("failed to create web server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go srv.Sessions().Run(ctx, time.Minute, log)

	log.Info("PartyPal web started", "api", api.BaseURL(), "reconcile", reconcile)
	httpServer := gateway.NewHTTPServer(appConfig.Web.Port, srv.Handler(), appConfig.Server)
	if err := gateway.Serve(ctx, httpServer, appConfig.Server.GracefulShutdownTimeout, log); err != nil {
		log.Error("web server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("PartyPal web stopped")
}
