package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/AayusX/Smart-Mavi-sub000/api/swagger"
	"github.com/AayusX/Smart-Mavi-sub000/internal/handler"
	"github.com/AayusX/Smart-Mavi-sub000/internal/middleware"
	"github.com/AayusX/Smart-Mavi-sub000/internal/models"
	"github.com/AayusX/Smart-Mavi-sub000/internal/repository"
	"github.com/AayusX/Smart-Mavi-sub000/internal/service"
	"github.com/AayusX/Smart-Mavi-sub000/migrations"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/cache"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/config"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/database"
	appErrors "github.com/AayusX/Smart-Mavi-sub000/pkg/errors"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/export"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/jobs"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/logger"
	corsmiddleware "github.com/AayusX/Smart-Mavi-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/AayusX/Smart-Mavi-sub000/pkg/middleware/requestid"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/response"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/storage"
)

// @title Smart Mavi Timetable API
// @version 1.0.0
// @description Weekly class timetable generation, storage and export
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Migrations.AutoRun {
		if err := database.Migrate(ctx, db, migrations.FS, logr); err != nil {
			return err
		}
	}

	metrics := service.NewMetricsService()
	validate := validator.New()
	readiness := map[string]handler.ReadinessCheck{"postgres": db.PingContext}

	var proposals service.ProposalStore
	if cfg.Scheduler.ProposalStore == config.ProposalStoreRedis {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		cacheRepo := repository.NewCacheRepository(client, "timetable:proposal", logr)
		defer cacheRepo.Close()
		proposals = service.NewRedisProposalStore(cacheRepo, cfg.Scheduler.ProposalTTL)
		readiness["redis"] = func(ctx context.Context) error { return pingRedis(ctx, client) }
	} else {
		proposals = service.NewMemoryProposalStore(cfg.Scheduler.ProposalTTL)
	}

	timetableRepo := repository.NewTimetableRepository(db)
	timetableSvc := service.NewTimetableService(timetableRepo, proposals, metrics, validate, logr, service.TimetableServiceConfig{
		ProposalTTL: cfg.Scheduler.ProposalTTL,
		MaxClasses:  cfg.Scheduler.MaxClasses,
		MaxTeachers: cfg.Scheduler.MaxTeachers,
		Defaults:    cfg.Scheduler.Defaults,
	})
	exportSvc := service.NewExportService(export.NewCSVExporter(), export.NewPDFExporter(), logr)

	var exportJobSvc *service.ExportJobService
	if cfg.Exports.Enabled {
		files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			return fmt.Errorf("prepare export storage: %w", err)
		}
		jobRepo := repository.NewExportJobRepository(db)
		worker := service.NewExportWorker(jobRepo, timetableSvc, exportSvc, files, metrics, logr)
		queue := jobs.NewQueue("timetable-exports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			RetryDelay: 2 * time.Second,
			OnGiveUp:   worker.GiveUp,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()

		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportJobSvc = service.NewExportJobService(jobRepo, timetableSvc, queue, files, signer, metrics, validate, logr, service.ExportJobServiceConfig{
			APIPrefix:       cfg.APIPrefix,
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
		})
		exportJobSvc.RecoverPendingJobs(ctx)
		exportJobSvc.StartCleanup(ctx)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics, readiness)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	tokens := service.NewTokenService(cfg.JWT.Secret)
	managers := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)

	api := r.Group(cfg.APIPrefix)
	secured := api.Group("", middleware.JWT(tokens))

	timetables := secured.Group("/timetables")
	if cfg.Scheduler.Enabled {
		h := handler.NewTimetableHandler(timetableSvc, exportSvc)
		timetables.POST("/generate", managers, h.Generate)
		timetables.POST("/proposals/:id/regenerate", managers, h.Regenerate)
		timetables.GET("/proposals/:id", h.GetProposal)
		timetables.POST("", managers, h.Save)
		timetables.GET("", h.List)
		timetables.GET("/:id", h.Get)
		timetables.DELETE("/:id", managers, h.Delete)
		timetables.GET("/:id/export", h.Export)
	} else {
		off := disabled("timetable generation")
		secured.Any("/timetables", off)
		timetables.Any("/*path", off)
	}

	if exportJobSvc != nil {
		h := handler.NewExportHandler(exportJobSvc)
		secured.POST("/exports", h.CreateJob)
		secured.GET("/exports/:id", h.Status)
		api.GET("/export/:token", h.Download)
	} else {
		off := disabled("exports")
		secured.Any("/exports", off)
		secured.Any("/exports/*path", off)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func disabled(feature string) gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrServiceDisabled, feature+" is disabled"))
	}
}

func pingRedis(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}
