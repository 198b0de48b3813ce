package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/ougirez/bizmap/internal/api"
	"github.com/ougirez/bizmap/internal/pkg/constants"
	"github.com/ougirez/bizmap/internal/pkg/logger"
	"github.com/ougirez/bizmap/internal/pkg/store"
	"github.com/ougirez/bizmap/internal/pkg/store/xpgx"
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

	pool, err := xpgx.Connect(ctx, viper.GetString(constants.ViperDatabaseDSN))
	if err != nil {
		logger.Fatal(ctx, err)
	}

	svc, err := api.NewAPIService(store.NewStore(pool))
	if err != nil {
		logger.Fatal(ctx, err)
	}

	go svc.Serve(viper.GetString(constants.ViperAPIAddr))
	logger.Infof(ctx, "api listening on %s", viper.GetString(constants.ViperAPIAddr))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(shutdownCtx, "shutdown: %s", err.Error())
	}
}
