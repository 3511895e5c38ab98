package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/arisehq/arise-api/internal/auth"
	"github.com/arisehq/arise-api/internal/config"
	"github.com/arisehq/arise-api/internal/database"
	"github.com/arisehq/arise-api/internal/handler"
	"github.com/arisehq/arise-api/internal/middleware"
	"github.com/arisehq/arise-api/internal/queue"
	"github.com/arisehq/arise-api/internal/repository"
	"github.com/arisehq/arise-api/internal/router"
)

func main() {
	// .env is optional; real deployments inject environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	rlCfg := config.LoadRateLimitConfig()
	cacheCfg := config.LoadCacheConfig()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the catalog cache is skipped and rate
	// limiting falls back to the in-process window.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; using in-process rate limiting, cache disabled")
	}

	users := repository.NewUserRepo(db)
	assessments := repository.NewAssessmentRepo(db)
	results := repository.NewResultRepo(db)
	evaluators := repository.NewEvaluatorRepo(db)
	subs := repository.NewSubscriptionRepo(db)

	codec := auth.NewCodec(cfg.JWTSecret,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour)

	var limiter middleware.Limiter
	if rlCfg.Enabled {
		if rlCfg.Backend == "redis" && rdb != nil {
			limiter = middleware.NewRedisLimiter(rlCfg, rdb)
		} else {
			limiter = middleware.NewMemoryLimiter(rlCfg.MaxRequests, rlCfg.Window)
		}
	}

	resolve := middleware.ResolveIdentity(cfg, codec, users)
	limit := middleware.RateLimit(limiter)
	cache := middleware.NewRedisCache(cacheCfg, rdb)

	authHandler := handler.NewAuthHandler(cfg, codec, users)
	adminHandler := handler.NewAdminHandler(cfg, users)
	adminCatalogHandler := handler.NewAdminAssessmentHandler(assessments)
	coachHandler := handler.NewCoachHandler(users, results)
	settingsHandler := handler.NewSettingsHandler(users)
	assessmentHandler := handler.NewAssessmentHandler(assessments, results)
	evaluatorHandler := handler.NewEvaluatorHandler(evaluators)
	feedbackHandler := handler.NewFeedbackHandler(evaluators)
	subHandler := handler.NewSubscriptionHandler(subs)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, resolve, limit)
	router.RegisterPublic(e, assessmentHandler, feedbackHandler, cache)
	router.RegisterParticipant(e, resolve, settingsHandler, assessmentHandler, evaluatorHandler, subHandler)
	router.RegisterCoach(e, resolve, coachHandler)
	router.RegisterAdmin(e, resolve, adminHandler, adminCatalogHandler)

	// Invite dispatch runs for the lifetime of the process; the consumer
	// reconnects on its own when the broker drops.
	go func() {
		if err := queue.StartInviteConsumer(); err != nil {
			log.Printf("invite consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
