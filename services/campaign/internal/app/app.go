package internal

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brandcast/pkg/cache"
	"brandcast/pkg/config"
	"brandcast/pkg/jwt"
	"brandcast/pkg/logger"
	"brandcast/pkg/middleware"
	"brandcast/pkg/queue"
	"brandcast/pkg/s3"
	"brandcast/services/campaign/internal/catalog"
	campaignHTTP "brandcast/services/campaign/internal/controller/http"
	"brandcast/services/campaign/internal/entity"
	"brandcast/services/campaign/internal/hosting"
	"brandcast/services/campaign/internal/platform"
	"brandcast/services/campaign/internal/render"
	"brandcast/services/campaign/internal/scheduler"
	"brandcast/services/campaign/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "brandcast/services/campaign/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	redisClient *redis.Client
	queueClient *queue.Client
	jwtService  *jwt.Service
	useCase     usecase.CampaignUseCase
	scheduler   *scheduler.Scheduler
	httpServer  *http.Server

	ctx    context.Context
	cancel context.CancelFunc
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()

	var redisClient *redis.Client
	if cfg.RedisConfigured() {
		client, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Error("Failed to connect to redis: %v (continuing with process-local run lock)", err)
		} else {
			redisClient = client
		}
	}

	var queueClient *queue.Client
	if cfg.RabbitMQConfigured() {
		client, err := queue.NewRabbitMQClient(cfg, log)
		if err != nil {
			log.Error("Failed to connect to RabbitMQ: %v (continuing without report queue)", err)
		} else {
			queueClient = client
		}
	}

	templates, err := loadCatalog(cfg, log)
	if err != nil {
		return nil, err
	}

	producer, err := render.NewProducer(log)
	if err != nil {
		return nil, fmt.Errorf("failed to create image producer: %w", err)
	}

	var lock usecase.RunLock
	if redisClient != nil {
		lock = usecase.NewRedisLock(redisClient, log)
	}

	var sink usecase.ReportSink
	if queueClient != nil {
		sink = reportSink{queue: queueClient}
	}

	selector, err := catalog.NewSelector(templates, 0)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	useCase := usecase.NewCampaignUseCase(
		selector,
		producer,
		newHostingPublisher(cfg, log),
		newPlatformClients(cfg, log),
		lock,
		sink,
		log,
	)

	a := &App{
		cfg:         cfg,
		log:         log,
		redisClient: redisClient,
		queueClient: queueClient,
		useCase:     useCase,
	}
	if cfg.AdminJWTSecret != "" {
		a.jwtService = jwt.NewService(cfg.AdminJWTSecret)
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	if cfg.SchedulerEnabled() {
		a.scheduler, err = scheduler.New(cfg.CampaignSchedule, cfg.CampaignTimezone, useCase, log)
		if err != nil {
			a.cancel()
			return nil, err
		}
	} else {
		log.Warn("[SCHEDULER] Scheduled runs disabled (CAMPAIGN_SCHEDULE=%q)", cfg.CampaignSchedule)
	}

	return a, nil
}

func loadCatalog(cfg *config.Config, log *logger.Logger) ([]entity.ContentTemplate, error) {
	if cfg.CampaignCatalogPath == "" {
		return catalog.Default(), nil
	}
	templates, err := catalog.Load(cfg.CampaignCatalogPath)
	if err != nil {
		return nil, err
	}
	log.Info("[CATALOG] Loaded %d templates from %s", len(templates), cfg.CampaignCatalogPath)
	return templates, nil
}

func newHostingPublisher(cfg *config.Config, log *logger.Logger) hosting.Publisher {
	switch cfg.HostingProvider {
	case config.HostingCloudinary:
		p, err := hosting.NewCloudinaryPublisher(cfg)
		if err == nil {
			log.Info("[HOSTING] Using Cloudinary cloud %s", cfg.CloudinaryCloudName)
			return p
		}
		log.Error("[HOSTING] Cloudinary unavailable: %v", err)
		return hosting.Unconfigured{Reason: err.Error()}
	case config.HostingS3:
		client, err := s3.NewClient(cfg, log)
		if err == nil {
			log.Info("[HOSTING] Using S3 bucket %s", cfg.S3BucketName)
			return hosting.NewS3Publisher(client, cfg)
		}
		log.Error("[HOSTING] S3 unavailable: %v", err)
		return hosting.Unconfigured{Reason: err.Error()}
	}
	log.Warn("[HOSTING] No image host configured; platforms that need a public URL will fail")
	return hosting.Unconfigured{}
}

// newPlatformClients returns the enabled clients, Instagram first.
func newPlatformClients(cfg *config.Config, log *logger.Logger) []platform.Client {
	var clients []platform.Client
	if cfg.InstagramConfigured() {
		clients = append(clients, platform.NewInstagram(cfg, nil, log))
	} else {
		log.Warn("[INSTAGRAM] Disabled: INSTAGRAM_ACCESS_TOKEN or INSTAGRAM_BUSINESS_ID missing")
	}
	if cfg.FacebookConfigured() {
		clients = append(clients, platform.NewFacebook(cfg, nil, log))
	} else {
		log.Warn("[FACEBOOK] Disabled: FACEBOOK_PAGE_TOKEN or FACEBOOK_PAGE_ID missing")
	}
	return clients
}

func (a *App) router() *gin.Engine {
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	var guards []gin.HandlerFunc
	if a.jwtService != nil {
		guards = append(guards, middleware.AuthMiddleware(a.jwtService))
	}
	if a.redisClient != nil {
		guards = append(guards, middleware.RateLimitMiddleware(a.redisClient, 10, time.Minute, a.log))
	}

	var schedule campaignHTTP.Schedule
	if a.scheduler != nil {
		schedule = a.scheduler
	}
	handler := campaignHTTP.NewCampaignHandler(a.useCase, schedule, a.log).WithRunContext(a.ctx)
	handler.RegisterRoutes(r, guards...)
	handler.RegisterRoutes(r.Group("/api"), guards...)

	return r
}

func (a *App) Run() error {
	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: a.router(),
		BaseContext: func(net.Listener) context.Context {
			return a.ctx
		},
	}

	// Start server in a goroutine
	go func() {
		a.log.Info("Campaign service starting on port %s", a.cfg.ServerPort)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	if a.scheduler != nil {
		a.scheduler.Start(a.ctx)
	}

	return nil
}

func (a *App) Wait() {
	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down campaign service...")
}

func (a *App) Shutdown() error {
	// The context is used to inform the server it has 5 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Interrupts processing waits of a run that is still in flight.
	a.cancel()

	if a.scheduler != nil {
		select {
		case <-a.scheduler.Stop().Done():
		case <-ctx.Done():
			a.log.Warn("[SCHEDULER] Scheduled run did not stop in time")
		}
	}

	var shutdownErr error
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.log.Error("Server forced to shutdown: %v", err)
			shutdownErr = err
		}
	}

	// Close Redis connection
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	// Close RabbitMQ connection
	if a.queueClient != nil {
		a.queueClient.Close()
	}

	if shutdownErr != nil {
		return shutdownErr
	}
	a.log.Info("Campaign service exited")
	return nil
}
