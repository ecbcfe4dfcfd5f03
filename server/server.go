// Package server assembles the HTTP server: the JSON API, chat
// platform webhooks and the Prometheus metrics endpoint.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/initio-ai/initio/internal/profile"
	"github.com/initio-ai/initio/plugin/chat_apps/channels"
	"github.com/initio-ai/initio/plugin/chat_apps/channels/telegram"
	"github.com/initio-ai/initio/server/router/api/v1"
	"github.com/initio-ai/initio/server/service/scheduling"
	"github.com/initio-ai/initio/server/service/scheduling/metrics"
	"github.com/initio-ai/initio/store"

	"github.com/initio-ai/initio/ai/llm"
	"github.com/initio-ai/initio/ai/planner"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer    *echo.Echo
	engine        *scheduling.Engine
	sessions      *scheduling.MemorySessionStore
	channelRouter *channels.ChannelRouter
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return uuid.NewString()
		},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"requestID", v.RequestID,
			)
			return nil
		},
	}))

	s := &Server{
		Profile:    profile,
		Store:      store,
		echoServer: e,
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s.sessions = scheduling.NewMemorySessionStore()
	s.engine = scheduling.NewEngine(store, s.sessions, newPlanner(profile), scheduling.EngineConfig{
		Policy: scheduling.FeasibilityPolicy{
			AssumedHoursPerDay: profile.FeasibilityHoursPerDay,
			BufferDays:         profile.FeasibilityBufferDays,
		},
		SessionDurationMinutes: profile.SessionDurationMinutes,
		Timeout:                30 * time.Second,
		Metrics:                metrics.New(registry),
	})

	s.channelRouter = channels.NewChannelRouter()
	if profile.TelegramBotToken != "" {
		channel, err := telegram.NewChannel(&telegram.Config{BotToken: profile.TelegramBotToken})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create telegram channel")
		}
		s.channelRouter.Register(channel)
		slog.Info("telegram channel registered")
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	apiService := v1.NewAPIV1Service(profile, store, s.engine, s.channelRouter)
	apiService.Register(e)

	return s, nil
}

// newPlanner picks the LLM planner when an API key is configured and
// falls back to the deterministic slot planner otherwise.
func newPlanner(p *profile.Profile) scheduling.Planner {
	if !p.IsAIEnabled() {
		slog.Info("LLM not configured, using slot planner")
		return planner.NewSlotPlanner()
	}
	service, err := llm.NewService(llm.ConfigFromProfile(p))
	if err != nil {
		slog.Warn("failed to create LLM service, using slot planner", "error", err)
		return planner.NewSlotPlanner()
	}
	slog.Info("LLM planner enabled", "provider", p.LLMProvider, "model", p.LLMModel)
	return planner.NewLLMPlanner(service)
}

func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	go func() {
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start echo server", "error", err)
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.channelRouter.Close(); err != nil {
		slog.Error("failed to close chat channels", "error", err)
	}
	s.sessions.Close()
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}

	slog.Info("server shutdown complete")
}
