package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"stilltime/api/internal/clock"
	"stilltime/api/internal/config"
	"stilltime/api/internal/metrics"
	"stilltime/api/internal/middleware"
	"stilltime/api/internal/repository"
	"stilltime/api/internal/service"
	"stilltime/api/internal/storage"
	"stilltime/api/internal/timer"
	"stilltime/api/internal/trial"
)

// trialGate is the slice of the trial service the HTTP layer needs; tests
// substitute a fake to observe quota charging.
type trialGate interface {
	Check(ctx context.Context, userID string) trial.Decision
	RecordUse(ctx context.Context, userID string)
}

type HandlerSet struct {
	log            zerolog.Logger
	cfg            *config.AppConfig
	db             *pgxpool.Pool
	cache          *redis.Client
	store          *storage.ObjectStore
	clk            clock.Clock
	users          *repository.UserRepository
	authSessions   *repository.AuthSessionRepository
	authService    *service.AuthService
	sessionService *service.SessionService
	trialService   trialGate
	subService     *service.SubscriptionService
	genService     *service.GenerationService
	hgService      *service.HourglassService
	roomService    *service.RoomService
	timers         *timer.Manager
}

func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	cache *redis.Client,
	store *storage.ObjectStore,
	cfg *config.AppConfig,
	clk clock.Clock,
) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	authSessionRepo := repository.NewAuthSessionRepository(db)
	trialRepo := repository.NewTrialRepository(db)
	sessionRepo := repository.NewFocusSessionRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)
	presenceRepo := repository.NewPresenceRepository(db)
	requestRepo := repository.NewRequestRepository(db)

	auth := service.NewAuthService(userRepo, authSessionRepo, trialRepo, cfg, log)
	sessions := service.NewSessionService(sessionRepo, statsRepo, clk, log)
	gate := trial.NewGate(cfg.Trial.DailySessionLimit, cfg.Trial.DurationDays)
	trials := service.NewTrialService(trialRepo, gate, clk, log)
	subs := service.NewSubscriptionService(subRepo, clk, log)
	gens := service.NewGenerationService(requestRepo, subs, cache, cfg, clk, log)
	hg := service.NewHourglassService(prefRepo, statsRepo, subs, clk, log)
	rooms := service.NewRoomService(presenceRepo, statsRepo, subs, cfg.Rooms.PresenceTTL, clk, log)

	h := HandlerSet{
		log:            log,
		cfg:            cfg,
		db:             db,
		cache:          cache,
		store:          store,
		clk:            clk,
		users:          userRepo,
		authSessions:   authSessionRepo,
		authService:    auth,
		sessionService: sessions,
		trialService:   trials,
		subService:     subs,
		genService:     gens,
		hgService:      hg,
		roomService:    rooms,
	}

	// The completion callback runs on the timer's tick goroutine with no
	// request context, so it gets a bounded background one. Trial quota is
	// not touched here: it was already charged when the timer started.
	h.timers = timer.NewManager(clk, func(userID string, durationMinutes int, theme, prompt *string) {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		result, err := sessions.Record(ctx, userID, durationMinutes, theme, prompt)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("record completed session failed")
			return
		}
		metrics.SessionsRecordedTotal.Inc()
		metrics.MilestonesReachedTotal.Add(float64(len(result.NewMilestones)))
	})

	return h
}

// RoomService exposes the room layer for the background sweeper.
func (h HandlerSet) RoomService() *service.RoomService { return h.roomService }

// SubscriptionService exposes the billing layer for the credit reset job.
func (h HandlerSet) SubscriptionService() *service.SubscriptionService { return h.subService }

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/anonymous", h.Anonymous)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)

		authed := v1.Group("")
		authed.Use(middleware.Auth(h.cfg, h.users, h.authSessions))

		authed.POST("/auth/register", h.Upgrade)
		authed.GET("/auth/me", h.Me)

		tmr := authed.Group("/timer")
		tmr.GET("", h.TimerStatus)
		tmr.POST("/start", h.TimerStart)
		tmr.POST("/pause", h.TimerPause)
		tmr.POST("/resume", h.TimerResume)
		tmr.POST("/end", h.TimerEnd)

		authed.GET("/trial", h.TrialStatus)

		authed.POST("/sessions", h.RecordSession)
		authed.GET("/sessions", h.ListSessions)
		authed.PATCH("/sessions/:id/reflection", h.SetReflection)
		authed.GET("/stats", h.UserStats)
		authed.GET("/analytics", h.Analytics)
		authed.GET("/analytics/export", middleware.RequireRegistered(), h.ExportSessions)

		authed.GET("/hourglasses", h.HourglassLibrary)
		authed.POST("/hourglasses/select", h.SelectHourglass)
		authed.GET("/preferences", h.GetPreferences)
		authed.PUT("/preferences", h.PutPreferences)

		authed.GET("/subscription", h.SubscriptionStatus)
		authed.GET("/subscription/features", h.SubscriptionFeatures)

		gen := authed.Group("/generate")
		gen.Use(middleware.Signature(h.cfg, h.cache))
		gen.POST("/hourglass", h.GenerateHourglass)
		authed.GET("/generate/:id", h.GenerationStatus)
		authed.GET("/generate/latest", h.LatestGeneration)

		roomsGroup := authed.Group("/rooms")
		roomsGroup.GET("", h.ListRooms)
		roomsGroup.POST("/:id/join", h.JoinRoom)
		roomsGroup.POST("/leave", h.LeaveRoom)
		roomsGroup.POST("/heartbeat", h.RoomHeartbeat)
		roomsGroup.GET("/:id/members", h.RoomMembers)
		roomsGroup.GET("/:id/leaderboard", h.RoomLeaderboard)

		admin := v1.Group("/admin")
		admin.Use(
			middleware.Auth(h.cfg, h.users, h.authSessions),
			middleware.RequireRole("admin"),
		)
		admin.GET("/sessions", h.AdminListSessions)
		admin.POST("/subscriptions", h.AdminSetSubscription)
		admin.PATCH("/users/:id/status", h.AdminSetUserStatus)
	}
}
