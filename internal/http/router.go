package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/fitlistic/fitlistic/internal/analytics"
	"github.com/fitlistic/fitlistic/internal/auth"
	"github.com/fitlistic/fitlistic/internal/cache"
	"github.com/fitlistic/fitlistic/internal/config"
	"github.com/fitlistic/fitlistic/internal/http/handlers"
	"github.com/fitlistic/fitlistic/internal/http/middlewares"
	"github.com/fitlistic/fitlistic/internal/observability"
	"github.com/fitlistic/fitlistic/internal/planner"
	"github.com/fitlistic/fitlistic/internal/repo/postgres"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Deps carries everything the router wires together. The registry is exposed
// at /metrics; prom instruments requests and DB calls.
type Deps struct {
	Cfg      config.Config
	Pool     *pgxpool.Pool
	Redis    *cache.Redis
	Prom     *observability.Prom
	Registry *prometheus.Registry
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("fitlistic-api"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	// repositories
	usersRepo := postgres.NewUsersRepo(d.Pool, d.Prom)
	logsRepo := postgres.NewWorkoutLogsRepo(d.Pool, d.Prom)
	wellbeingRepo := postgres.NewWellbeingRepo(d.Pool, d.Prom)
	plansRepo := postgres.NewPlansRepo(d.Pool, d.Prom)
	activitiesRepo := postgres.NewActivitiesRepo(d.Pool, d.Prom)
	remindersRepo := postgres.NewRemindersRepo(d.Pool, d.Prom)
	refreshRepo := postgres.NewRefreshTokensRepo(d.Pool)

	// services
	jwtManager := auth.NewManager(d.Cfg.JWTSecret, d.Cfg.AccessTTL, d.Cfg.RefreshTTL)
	weeklyPlanner := planner.New(activitiesRepo)
	analyticsSvc := analytics.NewService(logsRepo)
	libraryCache := cache.New(30 * time.Second)

	// handlers
	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager, refreshRepo, d.Cfg)
	profileHandler := handlers.NewProfileHandler(usersRepo, refreshRepo)
	workoutsHandler := handlers.NewWorkoutsHandler(logsRepo, usersRepo, d.Redis)
	wellbeingHandler := handlers.NewWellbeingHandler(wellbeingRepo)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsSvc, wellbeingRepo, d.Redis)
	plansHandler := handlers.NewPlansHandler(plansRepo, weeklyPlanner)
	remindersHandler := handlers.NewRemindersHandler(remindersRepo)
	libraryHandler := handlers.NewLibraryHandler(activitiesRepo, libraryCache)

	authMw := middlewares.NewAuthMiddleware(jwtManager)
	authLimiter := middlewares.NewRateLimiter(d.Cfg.AuthRateLimit, d.Cfg.AuthRateWindow)

	// health and metrics
	pings := map[string]handlers.PingFunc{
		"postgres": func(ctx context.Context) error {
			return d.Pool.Ping(ctx)
		},
	}

	if d.Redis != nil {
		pings["redis"] = d.Redis.Ping
	}

	healthHandler := handlers.NewHealthHandler(pings)

	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)

	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	// public auth endpoints, rate limited per IP
	authGroup := r.Group("/auth")
	authGroup.Use(authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	{
		authGroup.POST("/signup", authHandler.SignUp)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	v1 := r.Group("/v1")
	v1.Use(authMw.RequireAuth())
	{
		v1.GET("/profile", profileHandler.Get)
		v1.PATCH("/profile", profileHandler.Update)
		v1.POST("/profile/password", profileHandler.ChangePassword)

		v1.POST("/workouts", workoutsHandler.Create)
		v1.GET("/workouts", workoutsHandler.List)
		v1.GET("/workouts/:id", workoutsHandler.GetByID)
		v1.DELETE("/workouts/:id", workoutsHandler.Delete)

		v1.POST("/wellbeing", wellbeingHandler.Create)
		v1.GET("/wellbeing", wellbeingHandler.List)
		v1.GET("/wellbeing/today", wellbeingHandler.Today)
		v1.GET("/wellbeing/latest", wellbeingHandler.Latest)

		v1.GET("/analytics/overview", analyticsHandler.Overview)
		v1.GET("/analytics/wellbeing", analyticsHandler.Wellbeing)

		v1.POST("/plans", plansHandler.Generate)
		v1.GET("/plans/active", plansHandler.GetActive)
		v1.POST("/plans/active/complete", plansHandler.CompleteDay)

		v1.POST("/reminders", remindersHandler.Create)
		v1.GET("/reminders", remindersHandler.List)
		v1.PATCH("/reminders/:id", remindersHandler.Update)
		v1.DELETE("/reminders/:id", remindersHandler.Delete)

		v1.GET("/library", libraryHandler.List)
		v1.GET("/library/:id", libraryHandler.GetByID)
		v1.POST("/library", authMw.RequireRole("admin"), libraryHandler.Create)
	}

	return r
}
