package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/mentormatch/mentormatch-api/config"
	"github.com/mentormatch/mentormatch-api/internal/cache"
	"github.com/mentormatch/mentormatch-api/internal/database/postgres"
	"github.com/mentormatch/mentormatch-api/internal/flow"
	"github.com/mentormatch/mentormatch-api/internal/handlers"
	"github.com/mentormatch/mentormatch-api/internal/middleware"
	"github.com/mentormatch/mentormatch-api/internal/models"
	"github.com/mentormatch/mentormatch-api/internal/repository"
	"github.com/mentormatch/mentormatch-api/internal/routing"
	"github.com/mentormatch/mentormatch-api/internal/services"
	"github.com/mentormatch/mentormatch-api/pkg/db"
	"github.com/mentormatch/mentormatch-api/pkg/httpclient"
	"github.com/mentormatch/mentormatch-api/pkg/jwt"
	"github.com/mentormatch/mentormatch-api/pkg/logger"
	"github.com/mentormatch/mentormatch-api/pkg/metrics"
	"github.com/mentormatch/mentormatch-api/pkg/profiling"
	"github.com/mentormatch/mentormatch-api/pkg/storage"
	"github.com/mentormatch/mentormatch-api/pkg/tracing"
	"github.com/mentormatch/mentormatch-api/pkg/trigger"
)

const (
	smallBodyLimit  = 100 * 1024
	avatarBodyLimit = 10 * 1024 * 1024
	logsBodyLimit   = 1024 * 1024
)

type app struct {
	cfg      *config.Config
	guard    *routing.Guard
	cookie   middleware.CookieConfig
	auth     services.AuthServiceInterface
	mentors  *handlers.MentorHandler
	bookings *handlers.BookingHandler
	profiles *handlers.ProfileHandler
	admin    *handlers.AdminHandler
	pages    *handlers.PagesHandler
	authH    *handlers.AuthHandler
	logs     *handlers.LogsHandler
	health   *handlers.HealthHandler
	limiters rateLimiters
}

type rateLimiters struct {
	general  *middleware.RateLimiter
	auth     *middleware.RateLimiter
	checkout *middleware.RateLimiter
	profile  *middleware.RateLimiter
}

// registerRoutes wires the HTTP surface
func registerRoutes(router *gin.Engine, a *app) {
	api := router.Group("/api")
	// Utility endpoints (not versioned - operational endpoints)
	api.GET("/healthcheck", a.limiters.general.Middleware(), a.health.Healthcheck)
	api.GET("/metrics", a.limiters.general.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.TokenAuthMiddleware(a.cfg.Auth.PublicAPIKeys...))
	v1.Use(middleware.SessionMiddleware(a.auth, a.cookie))

	auth := v1.Group("/auth")
	auth.POST("/signup", a.limiters.auth.Middleware(), middleware.BodySizeLimitMiddleware(smallBodyLimit), a.authH.SignUp)
	auth.POST("/signin", a.limiters.auth.Middleware(), middleware.BodySizeLimitMiddleware(smallBodyLimit), a.authH.SignIn)
	auth.POST("/signout", a.authH.SignOut)
	auth.GET("/session", a.limiters.general.Middleware(), a.authH.Session)

	v1.GET("/mentors", a.limiters.general.Middleware(), a.mentors.ListMentors)
	v1.GET("/mentors/:id", a.limiters.general.Middleware(), a.mentors.GetMentor)
	v1.GET("/mentors/:id/reviews", a.limiters.general.Middleware(), a.mentors.ListReviews)

	v1.GET("/route", a.limiters.general.Middleware(), a.pages.Resolve)
	v1.GET("/pages/*path", a.limiters.general.Middleware(), middleware.RouteGuardMiddleware(a.guard), a.pages.Page)
	v1.POST("/logs", a.limiters.general.Middleware(), middleware.BodySizeLimitMiddleware(logsBodyLimit), a.logs.ReceiveClientLogs)

	// Signed-in routes
	signedIn := v1.Group("", middleware.RequireAuth())
	bookings := signedIn.Group("/bookings")
	bookings.GET("", a.limiters.general.Middleware(), a.bookings.ListBookings)
	bookings.POST("", a.limiters.checkout.Middleware(), middleware.BodySizeLimitMiddleware(smallBodyLimit), a.bookings.CreateBooking)
	bookings.GET("/:id", a.limiters.general.Middleware(), a.bookings.GetBooking)
	bookings.POST("/:id/status", a.limiters.checkout.Middleware(), middleware.BodySizeLimitMiddleware(smallBodyLimit), a.bookings.UpdateStatus)
	bookings.POST("/:id/pay", a.limiters.checkout.Middleware(), middleware.BodySizeLimitMiddleware(smallBodyLimit), a.bookings.Pay)
	bookings.GET("/:id/payment", a.limiters.general.Middleware(), a.bookings.GetPayment)
	bookings.POST("/:id/review", a.limiters.checkout.Middleware(), middleware.BodySizeLimitMiddleware(smallBodyLimit), a.bookings.SubmitReview)

	signedIn.GET("/profile", a.limiters.general.Middleware(), a.profiles.GetProfile)
	signedIn.POST("/profile", a.limiters.profile.Middleware(), middleware.BodySizeLimitMiddleware(smallBodyLimit), a.profiles.UpdateProfile)
	signedIn.POST("/profile/avatar", a.limiters.profile.Middleware(), middleware.BodySizeLimitMiddleware(avatarBodyLimit), a.profiles.UploadAvatar)
	signedIn.POST("/mentor/register", a.limiters.profile.Middleware(), middleware.BodySizeLimitMiddleware(smallBodyLimit), a.mentors.Register)

	// Mentor routes
	mentor := v1.Group("/mentor", middleware.RequireCapability(models.CapabilityMentor))
	mentor.GET("/dashboard", a.limiters.general.Middleware(), a.mentors.Dashboard)
	mentor.POST("/availability", a.limiters.profile.Middleware(), middleware.BodySizeLimitMiddleware(smallBodyLimit), a.mentors.UpdateAvailability)

	// Admin routes
	admin := v1.Group("/admin", middleware.RequireCapability(models.CapabilityAdmin))
	admin.GET("/stats", a.limiters.general.Middleware(), a.admin.Stats)
	admin.GET("/users", a.limiters.general.Middleware(), a.admin.Users)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting MentorMatch API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(tracing.Config{
		ServiceName:       cfg.Observability.ServiceName,
		ServiceNamespace:  cfg.Observability.ServiceNamespace,
		ServiceVersion:    cfg.Observability.ServiceVersion,
		ServiceInstanceID: cfg.Observability.ServiceInstanceID,
		Environment:       cfg.Server.AppEnv,
		Endpoint:          cfg.Observability.ExporterEndpoint,
		SampleRatio:       cfg.Observability.TraceSampleRatio,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.Start(cfg.Profiling, cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	// Initialize metrics with service name from config
	metrics.Init(cfg.Observability.ServiceName)
	metrics.RecordInfrastructureMetrics()

	// Initialize PostgreSQL connection pool
	// Migrations run separately via cmd/migrate
	pool, err := db.NewPool(ctx, db.PoolConfig{
		URL:        cfg.Database.URL,
		MaxConns:   cfg.Database.MaxConns,
		MinConns:   cfg.Database.MinConns,
		CACertPath: cfg.Database.CACertPath,
		ServerName: cfg.Database.TLSServerName,
	})
	if err != nil {
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	pg := postgres.NewClient(pool)
	defer pg.Close()

	a, closeRevocations := buildApp(ctx, cfg, pg)
	defer closeRevocations()

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS configuration - SECURITY: Only allow specific origins
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.APIKeyHeader, "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length", "Location"},
		AllowCredentials: true, // session cookie
		MaxAge:           12 * time.Hour,
	}))

	// SECURITY: Rate limiters to prevent abuse and DoS attacks
	a.limiters = rateLimiters{
		general:  middleware.NewRateLimiter(ctx, 100, 200), // 100 req/sec, burst of 200
		auth:     middleware.NewRateLimiter(ctx, 0.1, 5),   // 1 req/10s, burst of 5 (credential stuffing)
		checkout: middleware.NewRateLimiter(ctx, 2, 10),    // 2 req/sec, burst of 10
		profile:  middleware.NewRateLimiter(ctx, 10, 20),   // 10 req/sec, burst of 20
	}

	registerRoutes(router, a)

	// SECURITY: Bind to all interfaces for Docker Compose networking
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Checkout.PaymentTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // SECURITY: 1 MB max header size
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// buildApp constructs repositories, services and handlers. The returned
// function releases the revocation store.
func buildApp(ctx context.Context, cfg *config.Config, pg *postgres.Client) (*app, func()) {
	profileRepo := repository.NewProfileRepository(pg)
	mentorRepo := repository.NewMentorRepository(pg)
	bookingRepo := repository.NewBookingRepository(pg)
	reviewRepo := repository.NewReviewRepository(pg)
	paymentRepo := repository.NewPaymentRepository(pg)
	statsRepo := repository.NewStatsRepository(pg)

	healthChecks := []handlers.HealthCheck{{Name: "database", Probe: pg.Ping}}

	// Session revocations live in Redis when configured, so every replica sees sign-outs
	var revocations cache.RevocationStore = cache.NewMemoryRevocations()
	closeRevocations := func() {}
	if cfg.Redis.URL != "" {
		redisRevocations, err := cache.NewRedisRevocations(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		revocations = redisRevocations
		healthChecks = append(healthChecks, handlers.HealthCheck{Name: "redis", Probe: redisRevocations.Ping})
		closeRevocations = func() {
			if err := redisRevocations.Close(); err != nil {
				logger.Error("Failed to close Redis client", zap.Error(err))
			}
		}
	}

	// Mentor cache is populated before the server accepts requests
	var mentorCache *cache.MentorCache
	if cfg.Cache.DisableMentorsCache {
		logger.Warn("Mentor cache is DISABLED - reading from database on every request")
	} else {
		mentorCache = cache.NewMentorCache(mentorRepo, cfg.Cache.MentorTTLSeconds)
		if err := mentorCache.Initialize(ctx); err != nil {
			logger.Fatal("Failed to initialize mentor cache", zap.Error(err))
		}
		mentorCache.Start(ctx)
	}

	var uploader services.ImageUploader
	if cfg.Storage.Enabled() {
		uploader = storage.NewClient(storage.Config{
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			BucketName:      cfg.Storage.BucketName,
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
		})
	} else {
		logger.Warn("Object storage not configured - avatar uploads disabled")
	}

	notifier := trigger.NewNotifier(httpclient.NewStandardClient(30*time.Second), map[trigger.Event]string{
		trigger.WelcomeEmail:     cfg.EventTriggers.WelcomeEmailTriggerURL,
		trigger.BookingConfirmed: cfg.EventTriggers.BookingConfirmedTriggerURL,
		trigger.BookingCancelled: cfg.EventTriggers.BookingCancelledTriggerURL,
		trigger.ReviewCreated:    cfg.EventTriggers.ReviewCreatedTriggerURL,
	})

	tokens := jwt.NewTokenManager(cfg.Session.JWTSecret, cfg.Session.JWTIssuer, cfg.Session.TTLHours)
	checkout := flow.NewCheckout(flow.Config{ConfirmDelay: cfg.Checkout.BookingConfirmDelay})
	gateway := flow.NewSimulatedGateway(cfg.Checkout.PaymentDelay, cfg.Checkout.DeclineToken)

	authService := services.NewAuthService(profileRepo, tokens, revocations, notifier, cfg.Auth.BcryptCost)
	mentorService := services.NewMentorService(mentorRepo, reviewRepo, mentorCache)
	bookingService := services.NewBookingService(bookingRepo, mentorRepo, checkout, notifier)
	paymentService := services.NewPaymentService(paymentRepo, bookingRepo, mentorRepo, gateway, checkout, notifier, services.PaymentConfig{
		Currency: cfg.Checkout.Currency,
		Timeout:  cfg.Checkout.PaymentTimeout,
	})
	reviewService := services.NewReviewService(reviewRepo, bookingRepo, notifier)
	dashboardService := services.NewDashboardService(bookingRepo, statsRepo, profileRepo)
	profileService := services.NewProfileService(profileRepo, uploader, mentorService)

	if mentorCache != nil {
		healthChecks = append(healthChecks, handlers.HealthCheck{Name: "mentor_cache", Probe: func(context.Context) error {
			if !mentorCache.IsReady() {
				return errors.New("mentor cache not initialized")
			}
			return nil
		}})
	}

	guard := routing.Default()
	cookie := middleware.CookieConfig{
		Domain: cfg.Session.CookieDomain,
		Secure: cfg.Session.CookieSecure,
		TTL:    authService.SessionTTL(),
	}

	return &app{
		cfg:      cfg,
		guard:    guard,
		cookie:   cookie,
		auth:     authService,
		mentors:  handlers.NewMentorHandler(mentorService, dashboardService),
		bookings: handlers.NewBookingHandler(bookingService, paymentService, reviewService),
		profiles: handlers.NewProfileHandler(profileService),
		admin:    handlers.NewAdminHandler(dashboardService),
		pages:    handlers.NewPagesHandler(guard, mentorService, bookingService, paymentService, dashboardService, profileService),
		authH:    handlers.NewAuthHandler(cookie),
		logs:     handlers.NewLogsHandler("web"),
		health:   handlers.NewHealthHandler(healthChecks...),
	}, closeRevocations
}
