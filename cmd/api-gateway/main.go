package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/fieldcrew/fieldpay-api/api/swagger"
	"github.com/fieldcrew/fieldpay-api/internal/client"
	"github.com/fieldcrew/fieldpay-api/internal/handler"
	"github.com/fieldcrew/fieldpay-api/internal/middleware"
	"github.com/fieldcrew/fieldpay-api/internal/models"
	"github.com/fieldcrew/fieldpay-api/internal/repository"
	"github.com/fieldcrew/fieldpay-api/internal/service"
	"github.com/fieldcrew/fieldpay-api/pkg/cache"
	"github.com/fieldcrew/fieldpay-api/pkg/config"
	"github.com/fieldcrew/fieldpay-api/pkg/database"
	"github.com/fieldcrew/fieldpay-api/pkg/export"
	"github.com/fieldcrew/fieldpay-api/pkg/jobs"
	"github.com/fieldcrew/fieldpay-api/pkg/logger"
	corsmiddleware "github.com/fieldcrew/fieldpay-api/pkg/middleware/cors"
	reqidmiddleware "github.com/fieldcrew/fieldpay-api/pkg/middleware/requestid"
	"github.com/fieldcrew/fieldpay-api/pkg/storage"
)

// @title FieldPay API
// @version 1.0.0
// @description Workforce attendance and salary computation API
// @BasePath /api/v1
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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Batch status polling degrades, submission itself still works.
		logr.Sugar().Warnw("redis unavailable, batch status disabled", "error", err)
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()

	workerRepo := repository.NewWorkerRepository(db)
	scheduleRepo := repository.NewWorkingScheduleRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	pricingRepo := repository.NewPricingRepository(db)
	dailyRepo := repository.NewDailyCalculationRepository(db)
	monthlyRepo := repository.NewMonthlySubmissionRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	batchStatusRepo := repository.NewBatchStatusRepository(redisClient, cfg.Payroll.StatusTTL, logr)

	metricsSvc := service.NewMetricsService()
	scheduleSvc := service.NewScheduleService(scheduleRepo, workerRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, pricingRepo, scheduleSvc, validate, logr)
	monthlySvc := service.NewMonthlyService(attendanceRepo, dailyRepo, monthlyRepo, orgRepo, validate, logr)
	organizationSvc := service.NewOrganizationService(orgRepo, validate, logr)
	workerSvc := service.NewWorkerService(workerRepo, logr)

	payrollClient := client.NewPayrollClient(cfg.Payroll, logr)
	payrollSvc := service.NewPayrollService(monthlyRepo, workerRepo, scheduleSvc, attendanceRepo, orgRepo, payrollClient, batchStatusRepo, validate, logr, service.PayrollServiceConfig{
		BatchBudget: cfg.Payroll.BatchBudget,
	})
	payrollQueue := jobs.NewQueue("payroll", payrollSvc.Handle, jobs.QueueConfig{
		Workers: cfg.Payroll.WorkerConcurrency,
		Logger:  logr,
	})
	payrollQueue.Start(ctx)
	defer payrollQueue.Stop()
	payrollSvc.SetQueue(payrollQueue)

	if cfg.Payroll.ArchiveDir != "" {
		archive, err := storage.NewLocalStorage(cfg.Payroll.ArchiveDir)
		if err != nil {
			logr.Sugar().Warnw("payroll archive disabled", "error", err)
		} else {
			payrollSvc.SetArchive(archive)
			if cfg.Payroll.ArchiveRetention > 0 {
				if removed, err := archive.CleanupOlderThan(cfg.Payroll.ArchiveRetention); err != nil {
					logr.Sugar().Warnw("payroll archive cleanup failed", "error", err)
				} else if len(removed) > 0 {
					logr.Sugar().Infow("payroll archive cleanup", "removed", len(removed))
				}
			}
		}
	}

	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, metricsSvc)
	monthlyHandler := handler.NewMonthlyHandler(monthlySvc, export.NewCSVExporter(), export.NewPDFExporter())
	payrollHandler := handler.NewPayrollHandler(payrollSvc)
	organizationHandler := handler.NewOrganizationHandler(organizationSvc)
	workerHandler := handler.NewWorkerHandler(workerSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
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
	api.Use(middleware.JWT(cfg.JWT.Secret))

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	leaderOrAdmin := middleware.RequireRoles(models.RoleAdmin, models.RoleGroupLeader)

	schedules := api.Group("/schedules")
	schedules.GET("/resolve", scheduleHandler.Resolve)
	schedules.GET("", scheduleHandler.List)
	schedules.POST("", adminOnly, middleware.Audit(logr, "create", "schedule_rule"), scheduleHandler.Create)

	workers := api.Group("/workers")
	workers.GET("", leaderOrAdmin, workerHandler.List)
	workers.GET("/:id", workerHandler.Get)

	organization := api.Group("/organization", adminOnly)
	organization.GET("/settings", organizationHandler.GetSettings)
	organization.PUT("/settings", middleware.Audit(logr, "update", "organization_settings"), organizationHandler.UpdateSettings)

	attendance := api.Group("/attendance")
	attendance.GET("", attendanceHandler.List)
	attendance.GET("/:workerId/:date", attendanceHandler.GetDay)
	attendance.POST("/reconcile", leaderOrAdmin, middleware.Audit(logr, "reconcile", "attendance"), attendanceHandler.Reconcile)
	attendance.POST("/:workerId/:date/approve", adminOnly, middleware.Audit(logr, "approve", "attendance"), attendanceHandler.Approve)
	attendance.POST("/:workerId/:date/reject", adminOnly, middleware.Audit(logr, "reject", "attendance"), attendanceHandler.Reject)

	monthly := api.Group("/monthly")
	monthly.GET("", monthlyHandler.List)
	monthly.GET("/:workerId", monthlyHandler.Get)
	monthly.GET("/:workerId/days", monthlyHandler.Days)
	monthly.POST("/aggregate", leaderOrAdmin, monthlyHandler.Aggregate)
	if cfg.Exports.Enabled {
		monthly.GET("/export", monthlyHandler.Export)
	}

	payroll := api.Group("/payroll", adminOnly)
	payroll.POST("/submit", middleware.Audit(logr, "submit", "payroll_batch"), payrollHandler.Submit)
	payroll.GET("/batches/:id", payrollHandler.BatchStatus)
	payroll.GET("/preview/:workerId", payrollHandler.Preview)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
