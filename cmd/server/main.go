package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	_ "domainsale/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"domainsale/internal/auth"
	"domainsale/internal/cache"
	"domainsale/internal/config"
	"domainsale/internal/db"
	"domainsale/internal/email"
	"domainsale/internal/handler"
	"domainsale/internal/ratelimit"
	"domainsale/internal/repository"
	"domainsale/internal/router"
	"domainsale/internal/service"
)

// @title Domain Sale API
// @version 1.0
// @description Landing page backend for a domain that is for sale: offer form, admin session and site configuration.
// @host localhost:8080
// @BasePath /api
// @schemes http
func main() {
	cfg := config.Load()
	ctx := context.Background()

	e := echo.New()
	e.Use(middleware.RequestID())

	ipExtractor, err := router.IPExtractor(cfg.TrustedProxies)
	if err != nil {
		log.Fatalf("TRUSTED_PROXIES: %v", err)
	}
	e.IPExtractor = ipExtractor

	var (
		userRepo       repository.UserRepository
		submissionRepo repository.SubmissionRepository
		siteConfigRepo repository.SiteConfigRepository
	)
	if cfg.MySQLDSN != "" {
		gormDB, err := db.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			log.Fatalf("database init: %v", err)
		}

		// Drop tables if RESET_DB environment variable is set
		if os.Getenv("RESET_DB") == "true" {
			log.Println("RESET_DB=true detected, dropping all tables...")
			if err := db.Reset(gormDB); err != nil {
				log.Printf("Warning: failed to drop tables: %v", err)
			}
		}

		if err := db.Migrate(gormDB); err != nil {
			log.Fatalf("%v", err)
		}
		userRepo = repository.NewUserRepository(gormDB)
		submissionRepo = repository.NewSubmissionRepository(gormDB)
		siteConfigRepo = repository.NewSiteConfigRepository(gormDB)
		log.Println("Using MySQL storage")
	} else {
		userRepo = repository.NewMemoryUserRepository()
		submissionRepo = repository.NewMemorySubmissionRepository()
		siteConfigRepo = repository.NewMemorySiteConfigRepository()
		log.Println("MYSQL_DSN not set, using in-memory storage")
	}

	var (
		sessions auth.SessionStoreInterface
		limiter  ratelimit.Limiter
	)
	if cfg.RedisAddr != "" {
		cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer cacheClient.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := cacheClient.Ping(pingCtx); err != nil {
			log.Printf("Warning: redis ping failed: %v", err)
		}
		cancel()

		sessions = auth.NewRedisSessionStore(cacheClient)
		limiter = ratelimit.NewRedisLimiter(cacheClient, cfg.ContactRateLimit, cfg.ContactRateWindow)
		log.Println("Using Redis for sessions and rate limiting")
	} else {
		sessions = auth.NewMemorySessionStore()
		limiter = ratelimit.NewMemoryLimiter(cfg.ContactRateLimit, cfg.ContactRateWindow)
	}

	secret := cfg.SessionSecret
	if secret == "" {
		generated, err := auth.GenerateSecret(32)
		if err != nil {
			log.Fatalf("session secret: %v", err)
		}
		secret = generated
		log.Println("Warning: SESSION_SECRET not set, sessions will not survive a restart")
	}

	// Initialize services
	jwtService := auth.NewJWTService(secret)
	userService := service.NewUserService(userRepo)
	authService := service.NewAuthService(userRepo, jwtService, sessions, cfg.SessionTTL)
	siteConfigService := service.NewSiteConfigService(siteConfigRepo)
	mailer := email.NewResendMailer(siteConfigService.ResendAPIKey, cfg.ResendAPIKey)
	contactService := service.NewContactService(submissionRepo, siteConfigService, mailer, service.EmailSettings{
		From:       cfg.EmailFrom,
		OwnerEmail: cfg.OwnerEmail,
	})

	if _, err := siteConfigService.EnsureDefault(ctx); err != nil {
		log.Fatalf("site config: %v", err)
	}
	bootstrapAdmin(ctx, cfg, userService)

	// Register routes
	router.Register(e, authService, limiter, router.Handlers{
		Auth:       handler.NewAuthHandler(authService, cfg.CookieSecure),
		Contact:    handler.NewContactHandler(contactService),
		SiteConfig: handler.NewSiteConfigHandler(siteConfigService),
		User:       handler.NewUserHandler(userService),
	})

	swaggerURL := "http://localhost:" + cfg.ServerPort + "/swagger/index.html"
	if cfg.SwaggerHost != "" {
		host := cfg.SwaggerHost
		if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
			host = "http://" + host
		}
		swaggerURL = host + "/swagger/index.html"
	}
	log.Printf("Swagger documentation available at: %s", swaggerURL)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}

// bootstrapAdmin creates the first admin account on an empty user store.
// Without ADMIN_PASSWORD a random password is generated and printed once.
func bootstrapAdmin(ctx context.Context, cfg *config.Config, users service.UserService) {
	password := cfg.AdminPassword
	generated := false
	if password == "" {
		secret, err := auth.GenerateSecret(12)
		if err != nil {
			log.Fatalf("admin password: %v", err)
		}
		password = secret
		generated = true
	}

	created, err := users.EnsureAdmin(ctx, cfg.AdminUsername, password)
	if err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}
	if !created {
		return
	}
	if generated {
		log.Printf("Created admin user %q with generated password %q; change it after first login", cfg.AdminUsername, password)
		return
	}
	log.Printf("Created admin user %q", cfg.AdminUsername)
}
