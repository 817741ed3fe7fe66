package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/pot-code/course-player/internal/backend"
	"github.com/pot-code/course-player/internal/course"
	"github.com/pot-code/course-player/internal/domain"
	infra "github.com/pot-code/course-player/internal/infrastructure"
	"github.com/pot-code/course-player/internal/infrastructure/driver"
	"github.com/pot-code/course-player/internal/infrastructure/logging"
	"github.com/pot-code/course-player/internal/infrastructure/uuid"
	ihttp "github.com/pot-code/course-player/internal/interfaces/http"
	"github.com/pot-code/course-player/internal/player"
	"github.com/pot-code/course-player/internal/session"
	"go.uber.org/zap"
)

func main() {
	log.SetFlags(log.Lshortfile | log.Ldate | log.Ltime)
	option, err := infra.InitConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewLogger(&logging.Config{
		FilePath: option.Logging.FilePath,
		Level:    option.Logging.Level,
		AppID:    option.AppID,
		Env:      option.Env,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %s\n", err)
	}
	defer logger.Sync()

	kv := driver.NewRedisClient(&driver.KVConfig{
		Host:     option.KVStore.Host,
		Port:     option.KVStore.Port,
		Password: option.KVStore.Password,
		DB:       option.KVStore.DB,
	})
	defer kv.Close()
	probes := []ihttp.Probe{kv.Ping}

	var (
		CourseRepo   domain.CourseRepository
		ProgressRepo domain.ProgressRepository
	)
	switch option.Backend.Mode {
	case infra.BackendSQL:
		dbConn, err := driver.GetDBConnection(&driver.DBConfig{
			User:     option.Database.User,
			Password: option.Database.Password,
			MaxConn:  option.Database.MaxConn,
			Protocol: option.Database.Protocol,
			Driver:   option.Database.Driver,
			Host:     option.Database.Host,
			Port:     option.Database.Port,
			Query:    option.Database.Query,
			Schema:   option.Database.Schema,
		})
		if err != nil {
			logger.Fatal("Failed to create DB connection", zap.Error(err))
		}
		defer dbConn.Close(context.Background())
		logger.Debug("Create DB connection instance", zap.String("db.driver", option.Database.Driver),
			zap.String("db.schema", option.Database.Schema),
			zap.String("db.host", option.Database.Host),
		)

		UUIDGenerator := uuid.NewNanoIDGenerator(option.Security.IDLength)
		CourseRepo = course.NewCourseRepository(dbConn)
		ProgressRepo = course.NewProgressRepository(dbConn, UUIDGenerator)
		probes = append(probes, dbConn.Ping)
	default:
		client := backend.NewClient(option.Backend.BaseURL, option.Backend.Timeout)
		CourseRepo = client
		ProgressRepo = client
		logger.Debug("Use REST course backend", zap.String("url.full", option.Backend.BaseURL))
	}

	StateRepo := session.NewStateRepository(kv, option.Player.SessionTTL)
	PlayerUseCase := player.NewPlayerUseCase(CourseRepo, ProgressRepo, StateRepo, player.Options{
		GateNavigation: option.Player.GateNavigation,
		WriteTimeout:   option.Backend.Timeout,
	})

	app := ihttp.NewServer(option, PlayerUseCase, kv, logger, probes...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	addr := fmt.Sprintf("%s:%d", option.Host, option.Port)
	logger.Info("Start serving", zap.String("server.address", addr))
	if err := ihttp.Serve(ctx, app, addr, option.ShutdownTimeout); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}
