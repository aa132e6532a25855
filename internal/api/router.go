package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/renaissancebro/AGI-seed/internal/api/handlers"
	mw "github.com/renaissancebro/AGI-seed/internal/api/middleware"
	"github.com/renaissancebro/AGI-seed/internal/buildconfig"
	"github.com/renaissancebro/AGI-seed/internal/config"
	"github.com/renaissancebro/AGI-seed/internal/domain"
	"github.com/renaissancebro/AGI-seed/internal/llm"
	"github.com/renaissancebro/AGI-seed/internal/service"
	"github.com/renaissancebro/AGI-seed/internal/store"
	"github.com/renaissancebro/AGI-seed/internal/store/sqlite"
	"github.com/renaissancebro/AGI-seed/internal/verbalizer"
	"go.uber.org/zap"
)

// Backends are the external dependencies the API runs on.
type Backends struct {
	Identities   domain.IdentityStore
	Interactions domain.InteractionStore
	Aspirations  domain.AspirationStore
	Completions  domain.CompletionClient
	// Ping reports storage health for /health.
	Ping func(ctx context.Context) error
}

// Settings are the tunables read from config.
type Settings struct {
	APIKey             string
	SampleCount        int
	LossAversion       float64
	RecoveryFactor     float64
	RecoveryInterval   time.Duration
	EmotionSensitivity float64
	Tone               verbalizer.Profile
	UncertaintyTone    verbalizer.Profile
	IdleTTL            time.Duration
	RateLimitRPS       float64
	RateLimitBurst     int
}

// SettingsFromConfig collects Settings from the environment. A broken tone
// file is logged and the default profile is used.
func SettingsFromConfig(logger *zap.Logger) Settings {
	uncertainty, tone, err := verbalizer.Load(config.ToneProfilePath())
	if err != nil {
		logger.Warn("tone profile not loaded, using defaults",
			zap.String("path", config.ToneProfilePath()),
			zap.Error(err))
	}
	return Settings{
		APIKey:             config.APIKey(),
		SampleCount:        config.SampleCount(),
		LossAversion:       config.LossAversionFactor(),
		RecoveryFactor:     config.RecoveryFactor(),
		RecoveryInterval:   config.RecoveryInterval(),
		EmotionSensitivity: config.EmotionSensitivity(),
		Tone:               tone,
		UncertaintyTone:    uncertainty,
		IdleTTL:            config.IdentityIdleTTL(),
		RateLimitRPS:       config.RateLimitRPS(),
		RateLimitBurst:     config.RateLimitBurst(),
	}
}

// App holds the router and background services for lifecycle management.
type App struct {
	Router       *chi.Mux
	Recovery     *service.RecoveryService
	registry     *service.Registry
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// NewApp wires the Postgres stores and the configured completion provider.
func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	return New(Backends{
		Identities:   store.NewIdentityStore(db),
		Interactions: store.NewInteractionStore(db),
		Aspirations:  store.NewAspirationStore(db),
		Completions:  completionClient(logger),
		Ping:         db.Ping,
	}, SettingsFromConfig(logger), logger)
}

// NewSQLiteApp is NewApp on the embedded SQLite backend.
func NewSQLiteApp(db *sqlite.DB, logger *zap.Logger) *App {
	return New(Backends{
		Identities:   sqlite.NewIdentityStore(db),
		Interactions: sqlite.NewInteractionStore(db),
		Aspirations:  sqlite.NewAspirationStore(db),
		Completions:  completionClient(logger),
		Ping:         db.Ping,
	}, SettingsFromConfig(logger), logger)
}

func completionClient(logger *zap.Logger) domain.CompletionClient {
	provider := config.LLMProvider()
	client, err := llm.NewClient(provider, config.LLMAPIKey(), config.LLMRequestsPerSecond())
	if err != nil {
		logger.Warn("LLM client initialization failed", zap.String("provider", provider), zap.Error(err))
		return llm.Unavailable(err)
	}
	logger.Info("LLM client initialized", zap.String("provider", provider))
	return client
}

// New builds the App on arbitrary backends.
func New(b Backends, s Settings, logger *zap.Logger) *App {
	registry := service.NewRegistry(b.Identities, b.Aspirations, s.EmotionSensitivity)

	// Services
	identitySvc := service.NewIdentityService(registry, b.Identities, logger)
	identitySvc.SetLossAversion(s.LossAversion)
	identitySvc.SetRecoveryFactor(s.RecoveryFactor)

	emotionSvc := service.NewEmotionService(registry, b.Aspirations, logger)

	conversationSvc := service.NewConversationService(registry, b.Interactions, b.Completions, logger)
	conversationSvc.SetSampleCount(s.SampleCount)
	if s.Tone != (verbalizer.Profile{}) {
		conversationSvc.SetTone(s.Tone)
	}
	if s.UncertaintyTone != (verbalizer.Profile{}) {
		conversationSvc.SetUncertaintyTone(s.UncertaintyTone)
	}

	recoverySvc := service.NewRecoveryService(identitySvc, logger)
	if s.RecoveryInterval > 0 {
		recoverySvc.SetInterval(s.RecoveryInterval)
	}
	recoverySvc.SetIdleEviction(registry, s.IdleTTL)

	// Handlers
	identityHandler := handlers.NewIdentityHandler(identitySvc)
	emotionHandler := handlers.NewEmotionHandler(emotionSvc)
	conversationHandler := handlers.NewConversationHandler(conversationSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Recovery:  recoverySvc,
		registry:  registry,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	if s.RateLimitRPS > 0 {
		r.Use(mw.RateLimit(s.RateLimitRPS, s.RateLimitBurst))
	}

	r.Get("/health", healthHandler(b.Ping))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(s.APIKey))

		r.Route("/identities", func(r chi.Router) {
			r.Post("/", identityHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", identityHandler.Get)
				r.Post("/beliefs", identityHandler.AddBelief)
				r.Post("/experiences", identityHandler.IntegrateExperience)
				r.Post("/recover", identityHandler.Recover)

				// Emotion engines
				r.Get("/emotions", emotionHandler.State)
				r.Post("/comfort", emotionHandler.Comfort)
				r.Post("/aspirations", emotionHandler.AddAspiration)
				r.Post("/achievements", emotionHandler.Achieve)
				r.Post("/standards", emotionHandler.AddStandard)
				r.Post("/actions", emotionHandler.PerformAction)

				// Conversation
				r.Post("/respond", conversationHandler.Respond)
				r.Post("/feedback", conversationHandler.Feedback)
				r.Post("/replay", conversationHandler.Replay)
				r.Get("/stats", conversationHandler.Stats)
			})
		})

		r.Post("/probe", conversationHandler.Probe)
	})

	return app
}

func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds":    uptime.Seconds(),
			"uptime_human":      uptime.Round(time.Second).String(),
			"request_count":     app.requestCount.Load(),
			"error_count":       app.errorCount.Load(),
			"loaded_identities": app.registry.Loaded(),
			"goroutines":        runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"build":      buildconfig.VersionInfo(),
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.IdentityStore    = (*store.IdentityStore)(nil)
	_ domain.InteractionStore = (*store.InteractionStore)(nil)
	_ domain.AspirationStore  = (*store.AspirationStore)(nil)
	_ domain.IdentityStore    = (*sqlite.IdentityStore)(nil)
	_ domain.InteractionStore = (*sqlite.InteractionStore)(nil)
	_ domain.AspirationStore  = (*sqlite.AspirationStore)(nil)
	_ domain.CompletionClient = (*llm.Sampler)(nil)
	_ domain.CompletionClient = (*llm.MockClient)(nil)
)
