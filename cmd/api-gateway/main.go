package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/prefeitura-sp/central-cidadao-api/api/swagger"
	"github.com/prefeitura-sp/central-cidadao-api/internal/handler"
	"github.com/prefeitura-sp/central-cidadao-api/internal/middleware"
	"github.com/prefeitura-sp/central-cidadao-api/internal/notify"
	"github.com/prefeitura-sp/central-cidadao-api/internal/repository"
	"github.com/prefeitura-sp/central-cidadao-api/internal/service"
	"github.com/prefeitura-sp/central-cidadao-api/pkg/cache"
	"github.com/prefeitura-sp/central-cidadao-api/pkg/config"
	"github.com/prefeitura-sp/central-cidadao-api/pkg/database"
	"github.com/prefeitura-sp/central-cidadao-api/pkg/logger"
	corsmiddleware "github.com/prefeitura-sp/central-cidadao-api/pkg/middleware/cors"
	reqidmiddleware "github.com/prefeitura-sp/central-cidadao-api/pkg/middleware/requestid"
	"github.com/prefeitura-sp/central-cidadao-api/pkg/protocol"
)

// @title Central do Cidadão API
// @version 1.0.0
// @description Citizen services backend: school enrollments with seat control, municipal service requests and notifications
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
		cacheService = service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, true)
	}

	citizenRepo := repository.NewCitizenRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	requestRepo := repository.NewServiceRequestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	emitter := notify.NewQueueEmitter(notificationRepo, cfg.Notifications, logr, metrics)
	emitterCtx, stopEmitter := context.WithCancel(context.Background())
	emitter.Start(emitterCtx)
	defer func() {
		stopEmitter()
		emitter.Stop()
	}()

	issuer := protocol.NewIssuer()

	citizenService := service.NewCitizenService(citizenRepo, nil, logr)
	schoolService := service.NewSchoolService(schoolRepo, cacheService, metrics, nil, logr)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, citizenRepo, schoolService, issuer, emitter, nil, logr)
	requestService := service.NewServiceRequestService(requestRepo, citizenRepo, issuer, emitter, nil, logr)
	notificationService := service.NewNotificationService(notificationRepo, logr)

	citizenHandler := handler.NewCitizenHandler(citizenService)
	schoolHandler := handler.NewSchoolHandler(schoolService)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService)
	requestHandler := handler.NewServiceRequestHandler(requestService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	metricsHandler := handler.NewMetricsHandler(metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		citizens := api.Group("/cidadaos")
		citizens.GET("", citizenHandler.List)
		citizens.POST("", citizenHandler.Create)
		citizens.GET("/cpf/:cpf", citizenHandler.GetByCPF)
		citizens.GET("/:id", citizenHandler.Get)
		citizens.PUT("/:id", citizenHandler.Update)
		citizens.DELETE("/:id", citizenHandler.Delete)
		citizens.GET("/:id/matriculas", enrollmentHandler.ListByCitizen)
		citizens.GET("/:id/notificacoes", notificationHandler.ListByCitizen)
		citizens.GET("/:id/notificacoes/nao-lidas", notificationHandler.CountUnread)
		citizens.PATCH("/:id/notificacoes/lidas", notificationHandler.MarkAllRead)

		schools := api.Group("/escolas")
		schools.GET("", schoolHandler.List)
		schools.POST("", schoolHandler.Create)
		schools.GET("/relatorio/ocupacao.csv", schoolHandler.OccupancyCSV)
		schools.GET("/:id", schoolHandler.Get)
		schools.GET("/:id/vagas", schoolHandler.Availability)
		schools.PUT("/:id/vagas", schoolHandler.UpdateSeats)
		schools.GET("/:id/classificacao", schoolHandler.Classification)

		enrollments := api.Group("/matriculas")
		enrollments.GET("", enrollmentHandler.List)
		enrollments.POST("", enrollmentHandler.Create)
		enrollments.GET("/protocolo/:protocolo", enrollmentHandler.GetByProtocol)
		enrollments.GET("/:id", enrollmentHandler.Get)
		enrollments.PATCH("/:id/status", enrollmentHandler.Transition)
		enrollments.GET("/:id/comprovante", enrollmentHandler.Receipt)

		requests := api.Group("/solicitacoes")
		requests.GET("", requestHandler.List)
		requests.POST("", requestHandler.Create)
		requests.GET("/protocolo/:protocolo", requestHandler.GetByProtocol)
		requests.GET("/:id", requestHandler.Get)
		requests.PATCH("/:id/status", requestHandler.UpdateStatus)

		api.PATCH("/notificacoes/:id/lida", notificationHandler.MarkRead)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
