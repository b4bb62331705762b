// README: Entry point; loads config, wires stores and services, starts the
// HTTP server and shuts it down cleanly on SIGINT/SIGTERM.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AhmedDevOp360/Transport-Backend/internal/config"
	httptransport "github.com/AhmedDevOp360/Transport-Backend/internal/http"
	"github.com/AhmedDevOp360/Transport-Backend/internal/infra"
	"github.com/AhmedDevOp360/Transport-Backend/internal/logger"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/application"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/driver"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/fulfillment"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/moverequest"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/reporting"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/user"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/vehicle"
	"github.com/AhmedDevOp360/Transport-Backend/internal/notify"
	"github.com/AhmedDevOp360/Transport-Backend/internal/ratings"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Dev)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		zlog.Fatal("database connect", zap.Error(err))
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer func() { _ = redisClient.Close() }()

	notifier := notify.NewRedisPublisher(redisClient, cfg.Redis.NotificationStream, zlog)
	verifier := infra.NewJWTVerifier(cfg.Auth.JWTSecret)
	ratingSource := ratings.Static{}

	userStore := user.NewStore(dbPool)

	requestStore := moverequest.NewStore(dbPool)
	requestSvc := moverequest.NewService(requestStore, notifier)

	applicationStore := application.NewStore(dbPool, requestStore)
	applicationSvc := application.NewService(applicationStore, userStore, notifier)

	vehicleStore := vehicle.NewStore(dbPool, userStore)
	vehicleSvc := vehicle.NewService(vehicleStore)

	driverStore := driver.NewStore(dbPool, userStore, vehicleStore)
	driverSvc := driver.NewService(driverStore, ratingSource)

	fulfillmentStore := fulfillment.NewStore(dbPool, requestStore, driverStore)
	fulfillmentSvc := fulfillment.NewService(fulfillmentStore, notifier)

	reportingStore := reporting.NewStore(dbPool, requestStore, userStore)
	reportingSvc := reporting.NewService(reportingStore, ratingSource)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		MoveRequests: requestSvc,
		Applications: applicationSvc,
		Fulfillment:  fulfillmentSvc,
		Drivers:      driverSvc,
		Vehicles:     vehicleSvc,
		Reporting:    reportingSvc,
		Verifier:     verifier,
		Log:          zlog,
	})

	server := httptransport.NewServer(cfg.HTTP.Addr, router)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zlog.Error("shutdown", zap.Error(err))
		}
	}()

	zlog.Info("listening", zap.String("addr", cfg.HTTP.Addr))
	if err := server.Run(); err != nil {
		zlog.Fatal("server", zap.Error(err))
	}
}
