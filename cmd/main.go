package main

import (
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"schedule-service/internal/api"
	"schedule-service/internal/config"
	"schedule-service/internal/repository"
	"schedule-service/internal/service"
	"schedule-service/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Falling back to development defaults: %v", err)
		cfg = config.LoadWithDefaults()
	}

	store, err := storage.NewStore(cfg.Storage.Dir)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	var sessions service.SessionCache
	if cfg.Redis.Addr != "" {
		sessions = service.NewRedisSessionCache(redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
		}))
	}

	var events service.EventWriter
	if len(cfg.Kafka.Brokers) > 0 {
		events = config.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}

	// Initialize services
	userRepo := repository.NewUserRepository(store)
	scheduleRepo := repository.NewScheduleRepository(store)
	userService := service.NewUserService(*userRepo, sessions, cfg.Auth.JWTSecret)
	scheduleService := service.NewScheduleService(*scheduleRepo, events)
	handler := api.NewHandler(*userService, *scheduleService)

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(1),
				Burst:     3,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.Request().RemoteAddr, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	// Public routes
	e.POST("/register", handler.Register)
	e.POST("/login", handler.Login)
	e.GET("/session/validate", handler.ValidateSession)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "schedule-service",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// Protected routes
	g := e.Group("")
	g.Use(echojwt.WithConfig(echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(service.JwtCustomClaims)
		},
		SigningKey: []byte(cfg.Auth.JWTSecret),
		// Missing and malformed tokens are both 401, not echo-jwt's default 400.
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(401, map[string]string{"error": "Unauthorized"})
		},
	}))
	g.POST("/schedules", handler.CreateSchedule)
	g.GET("/schedules", handler.GetSchedules)
	g.DELETE("/schedules/:id", handler.DeleteSchedule)
	g.GET("/friends_schedules/:user_id", handler.GetFriendSchedules)

	// Start server
	e.Logger.Fatal(e.Start(cfg.HTTP.Addr))
}
