package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/ougirez/bizmap/internal/api"
	"github.com/ougirez/bizmap/internal/client"
	"github.com/ougirez/bizmap/internal/dashboard/records"
	"github.com/ougirez/bizmap/internal/pkg/constants"
	"github.com/ougirez/bizmap/internal/pkg/logger"
	"github.com/ougirez/bizmap/internal/service/dashboard"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		logger.Fatal(ctx, err)
	}

	logger.Init(viper.GetString(constants.ViperLogLevel))

	backend := client.New(viper.GetString(constants.ViperBackendURL))
	recs := records.NewStore(backend, viper.GetString(constants.ViperSnapshotPath))

	// A failed bulk load is not fatal: the engine starts with an empty
	// store and every frame carries the error for the UI to display.
	svc := dashboard.NewDashboardService(backend, recs)
	if err := svc.LoadRecords(ctx); err != nil {
		logger.Errorf(ctx, "record load failed, serving with an empty store: %s", err.Error())
	}

	engine, err := api.NewEngineService(svc)
	if err != nil {
		logger.Fatal(ctx, err)
	}

	go engine.Serve(viper.GetString(constants.ViperDashboardAddr))
	logger.Infof(ctx, "dashboard engine listening on %s", viper.GetString(constants.ViperDashboardAddr))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := engine.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(shutdownCtx, "shutdown: %s", err.Error())
	}
}
