package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homehub/config"
	"homehub/cron"
	"homehub/database"
	deviceRepoPkg "homehub/database/repository/device"
	logRepoPkg "homehub/database/repository/log"
	requestRepoPkg "homehub/database/repository/request"
	roomRepoPkg "homehub/database/repository/room"
	scheduleRepoPkg "homehub/database/repository/schedule"
	userRepoPkg "homehub/database/repository/user"
	"homehub/handlers"
	"homehub/routes"
	"homehub/services/device"
	"homehub/services/notification"
	"homehub/services/request"
	"homehub/services/room"
	"homehub/services/schedule"
	"homehub/services/storage"
	"homehub/services/user"
	"homehub/stream"
	"homehub/utils"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()
	utils.InitEventClient()
	utils.FirebaseInit()

	// Avatar storage is optional; the upload endpoint answers 503 when
	// Cloudinary is not configured.
	var storageSvc storage.StorageService
	if config.AppConfig.CloudinaryURL != "" {
		cld, err := cloudinary.NewFromURL(config.AppConfig.CloudinaryURL)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize cloudinary: %v", err)
		}
		storageSvc = storage.NewCloudinaryStorageService(cld)
	}

	// Repositories.
	userRepo := userRepoPkg.NewMongoUserRepo()
	deviceRepo := deviceRepoPkg.NewMongoDeviceRepo()
	roomRepo := roomRepoPkg.NewMongoRoomRepo()
	requestRepo := requestRepoPkg.NewMongoRequestRepo()
	scheduleRepo := scheduleRepoPkg.NewMongoScheduleRepo()
	logRepo := logRepoPkg.NewMongoLogRepo()

	// Live update fan-out, relayed across instances via Redis.
	hub := stream.NewHub()
	publisher := stream.NewPublisher(hub, utils.GetEventClient(), config.AppConfig.EventChannelName, logger)
	relayCtx, relayCancel := context.WithCancel(context.Background())
	defer relayCancel()
	go publisher.Run(relayCtx)

	// Services.
	userService := &user.DefaultUserService{
		Repo:     userRepo,
		RoomRepo: roomRepo,
		Devices:  deviceRepo,
	}
	deviceService := &device.DefaultDeviceService{
		Repo:      deviceRepo,
		Logs:      logRepo,
		Access:    userService,
		Publisher: publisher,
	}
	notificationService := &notification.DefaultNotificationService{
		Repo: userRepo,
	}
	requestService := &request.DefaultRequestService{
		Repo:      requestRepo,
		Users:     userRepo,
		Devices:   deviceService,
		Access:    userService,
		Publisher: publisher,
		Notifier:  notificationService,
	}
	roomService := &room.DefaultRoomService{
		Repo:    roomRepo,
		Devices: deviceRepo,
		Users:   userRepo,
	}

	asynqClient := asynq.NewClient(cron.RedisOpt())
	defer asynqClient.Close()
	asynqInspector := asynq.NewInspector(cron.RedisOpt())
	asynqScheduler := asynq.NewScheduler(cron.RedisOpt(), nil)
	scheduleService := &schedule.DefaultScheduleService{
		Repo:      scheduleRepo,
		Devices:   deviceService,
		Client:    asynqClient,
		Inspector: asynqInspector,
		Scheduler: asynqScheduler,
	}

	// Arm persisted recurring schedules and start the trigger machinery.
	if err := scheduleService.ArmPersisted(); err != nil {
		logger.Sugar().Warnf("main: failed to arm recurring schedules: %v", err)
	}
	go func() {
		if err := asynqScheduler.Run(); err != nil {
			logger.Sugar().Fatalf("main: scheduler failed: %v", err)
		}
	}()
	cron.InitScheduleWorker(deviceService, scheduleRepo)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	handlerBundle := handlers.NewHandlerBundle(
		userService,
		deviceService,
		requestService,
		roomService,
		scheduleService,
		storageSvc,
		logRepo,
		userRepo,
		hub,
	)
	routes.RegisterRoutes(router, handlerBundle)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	asynqScheduler.Shutdown()
	relayCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
