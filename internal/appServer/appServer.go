package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ds-lab/eventmanager/config"
	repository "github.com/ds-lab/eventmanager/internal/database/postgres"
	rediscache "github.com/ds-lab/eventmanager/internal/database/redis"
	"github.com/ds-lab/eventmanager/internal/service"
	"github.com/ds-lab/eventmanager/internal/transport"
	"github.com/ds-lab/eventmanager/internal/worker"
	"github.com/ds-lab/eventmanager/pkg/clock"
	"github.com/ds-lab/eventmanager/pkg/postgres"
	"github.com/ds-lab/eventmanager/pkg/redis"
	"github.com/ds-lab/eventmanager/pkg/token"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	eventRepo := repository.NewEventRepository(db)
	attendeeRepo := repository.NewAttendeeRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize Redis event cache
	var eventCache service.EventCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewRedisClient(&cfg.Redis)
		defer redisClient.Close()
		eventCache = rediscache.NewEventCache(redisClient, cfg.App.CacheTTL)
		logrus.Info("Redis event cache initialized")
	} else {
		logrus.Warn("Redis disabled, event reads go straight to PostgreSQL")
	}

	clk := clock.New()
	tokens := token.NewManager(cfg.JWT.Secret, cfg.JWT.Expiration)

	// Initialize services
	eventService := service.NewEventService(eventRepo, eventCache, clk)
	registrationService := service.NewRegistrationService(attendeeRepo, eventCache, clk)
	checkinService := service.NewCheckinService(attendeeRepo, eventService)
	userService := service.NewUserService(userRepo, tokens)

	// Initialize and start the status sweeper
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := worker.NewStatusSweeper(eventRepo, clk, cfg.Worker.SweepInterval)
	go sweeper.Start(ctx)

	// Initialize handlers
	eventHandler := transport.NewEventHandler(eventService)
	attendeeHandler := transport.NewAttendeeHandler(registrationService, checkinService)
	authHandler := transport.NewAuthHandler(userService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(eventHandler, attendeeHandler, authHandler, tokens)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
