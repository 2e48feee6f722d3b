package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/school-ledger-api/api/swagger"
	"github.com/noah-isme/school-ledger-api/internal/docstore"
	"github.com/noah-isme/school-ledger-api/internal/handler"
	"github.com/noah-isme/school-ledger-api/internal/middleware"
	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/repository"
	"github.com/noah-isme/school-ledger-api/internal/service"
	"github.com/noah-isme/school-ledger-api/pkg/cache"
	"github.com/noah-isme/school-ledger-api/pkg/config"
	"github.com/noah-isme/school-ledger-api/pkg/database"
	"github.com/noah-isme/school-ledger-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-ledger-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-ledger-api/pkg/middleware/requestid"
)

// @title School Ledger API
// @version 0.1.0
// @description Record ledger service: attendance, assessments, fees and announcements
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := docstore.NewHub(docstore.HubConfig{
		Workers:    cfg.Subscriptions.Workers,
		BufferSize: cfg.Subscriptions.BufferSize,
		MaxRetries: cfg.Subscriptions.RefreshRetries,
		Logger:     logr,
	})

	var (
		store docstore.Store
		db    *sqlx.DB
	)
	switch cfg.Docstore.Driver {
	case config.DocstoreDriverMemory:
		store = docstore.NewMemory(hub)
	default:
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
		}
		defer db.Close()
		store = docstore.NewPostgres(db, cfg.Docstore.Table, hub)
	}

	hub.Start(ctx, store)
	defer hub.Stop()

	var redisClient *redis.Client
	if cfg.Subscriptions.RedisRelay || cfg.ViewState.Backend == "redis" {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
	}

	if cfg.Subscriptions.RedisRelay {
		relay := docstore.NewRelay(redisClient, cfg.Subscriptions.RelayChannel, hub, logr)
		relay.Start(ctx)
	}

	var viewstate interface {
		Get(ctx context.Context, viewerID, category string) (*time.Time, error)
		Set(ctx context.Context, viewerID, category string, ts time.Time) error
	}
	if cfg.ViewState.Backend == "redis" && redisClient != nil {
		viewstate = repository.NewRedisViewState(redisClient, cfg.ViewState.TTL)
	} else {
		viewstate = repository.NewMemoryViewState()
	}

	attendanceRepo := repository.NewAttendanceRepository(store)
	assessmentRepo := repository.NewAssessmentRepository(store)
	feeRepo := repository.NewFeeRepository(store)
	announcementRepo := repository.NewAnnouncementRepository(store)
	userRepo := repository.NewUserRepository(store)

	metricsSvc := service.NewMetricsService()
	ledger := service.NewLedger(
		service.NewAttendanceService(attendanceRepo, nil, logr),
		service.NewAssessmentService(assessmentRepo, nil, logr),
		service.NewFeeService(feeRepo, nil, logr),
		service.NewAnnouncementService(announcementRepo, viewstate, nil, logr),
	)
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     "school-ledger-api",
	})

	attendanceHandler := handler.NewAttendanceHandler(ledger.Attendance)
	assessmentHandler := handler.NewAssessmentHandler(ledger.Assessments)
	feeHandler := handler.NewFeeHandler(ledger.Fees)
	announcementHandler := handler.NewAnnouncementHandler(ledger.Announcements, metricsSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if db != nil {
			if err := db.PingContext(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), authSvc, attendanceHandler, assessmentHandler, feeHandler, announcementHandler, authHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "docstore", cfg.Docstore.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("shutdown incomplete", "error", err)
	}
}

func registerRoutes(
	api *gin.RouterGroup,
	authSvc *service.AuthService,
	attendance *handler.AttendanceHandler,
	assessments *handler.AssessmentHandler,
	fees *handler.FeeHandler,
	announcements *handler.AnnouncementHandler,
	auth *handler.AuthHandler,
) {
	api.POST("/auth/login", auth.Login)
	api.GET("/auth/me", middleware.JWT(authSvc), auth.Me)

	protected := api.Group("", middleware.JWT(authSvc))

	staffOrAdmin := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	protected.POST("/attendance", staffOrAdmin, attendance.Mark)
	protected.GET("/attendance/:personId/history", middleware.RBAC("ADMIN", "STAFF", "SELF"), attendance.History)
	protected.GET("/attendance/:personId/stats", middleware.RBAC("ADMIN", "STAFF", "SELF"), attendance.Stats)

	protected.POST("/tests", staffOrAdmin, assessments.Create)
	protected.GET("/tests", assessments.List)
	protected.GET("/tests/:id", assessments.Get)
	protected.PUT("/tests/:id/marks", staffOrAdmin, assessments.SetMarks)
	protected.DELETE("/tests/:id/marks", staffOrAdmin, assessments.ResetMarks)
	protected.DELETE("/tests/:id", staffOrAdmin, assessments.Delete)

	protected.PUT("/fees/defaults/:className", adminOnly, fees.SetDefault)
	protected.POST("/fees/challans", adminOnly, fees.GenerateChallans)
	protected.GET("/fees/summary/:month", adminOnly, fees.MonthSummary)
	protected.POST("/fees/:studentId/:month/proof", middleware.RBAC("ADMIN", "SELF"), fees.SubmitProof)
	protected.POST("/fees/:studentId/:month/verify", adminOnly, fees.Verify)
	protected.GET("/fees/:studentId/:month", middleware.RBAC("ADMIN", "STAFF", "SELF"), fees.Status)

	protected.POST("/announcements", staffOrAdmin, announcements.Publish)
	protected.PUT("/announcements/:id", staffOrAdmin, announcements.Update)
	protected.DELETE("/announcements/:id", staffOrAdmin, announcements.Delete)
	protected.GET("/announcements", announcements.List)
	protected.GET("/announcements/stream", announcements.Stream)
	protected.GET("/announcements/unread", announcements.Unread)
	protected.POST("/announcements/seen", announcements.MarkSeen)
}
