package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/heweather-bot/internal/api/http"
	"github.com/i474232898/heweather-bot/internal/chat"
	"github.com/i474232898/heweather-bot/internal/config"
	"github.com/i474232898/heweather-bot/internal/render"
	"github.com/i474232898/heweather-bot/internal/scheduler"
	"github.com/i474232898/heweather-bot/internal/weather"
	"github.com/i474232898/heweather-bot/internal/weather/providers"
)

func main() {
	// Load configuration (also reads .env).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound calls. Its timeout is the only bound
	// on a hanging facet.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	creds := providers.NewCredentialProvider(providers.Credentials{
		APIKey:        cfg.APIKey,
		UseJWT:        cfg.UseJWT,
		JWTSub:        cfg.JWTSub,
		JWTKid:        cfg.JWTKid,
		JWTPrivateKey: cfg.JWTPrivateKey,
	})
	provider := providers.NewQWeatherProvider(httpClient, cfg.APIHost, creds)

	service, err := weather.NewService(provider, weather.Options{
		APITier:      cfg.APITier,
		ForecastDays: cfg.ForecastDays,
	})
	if err != nil {
		log.Fatalf("failed to create weather service: %v", err)
	}

	renderer, err := render.NewChromiumRenderer(&http.Client{Timeout: 30 * time.Second}, cfg.RendererURL)
	if err != nil {
		log.Fatalf("failed to create renderer: %v", err)
	}

	bot := chat.NewBot(service, renderer, chat.Options{
		HourlyType: cfg.HourlyType,
		Location:   cfg.Location,
	})

	// Keeps a signed token ready in JWT mode.
	sched := scheduler.New(creds, cfg.TokenRefreshInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "heweather-bot",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "heweather-bot",
		})
	})

	httpapi.RegisterRoutes(app, bot)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
