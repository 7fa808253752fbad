package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/goal-pipeline/agent/agents/orchestrator"
	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
)

const maxBodySize = "64K"

type Config struct {
	Addr            string        `default:":8080"`
	RunTimeout      time.Duration `split_words:"true" default:"90s"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
}

// Runner is the orchestrator surface the HTTP layer needs.
type Runner interface {
	Run(ctx context.Context, goal string) (*orchestrator.Result, error)
	Catalog() []contractx.AgentInfo
}

type Server struct {
	cfg      Config
	runner   Runner
	gatherer prometheus.Gatherer
	logger   zerolog.Logger
	echo     *echo.Echo
	now      func() time.Time
}

type Option func(*Server)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

func New(cfg Config, runner Runner, opts ...Option) (*Server, error) {
	if runner == nil {
		return nil, errors.New("goal runner is required")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = ":8080"
	}

	s := &Server{
		cfg:      cfg,
		runner:   runner,
		gatherer: prometheus.DefaultGatherer,
		logger:   log.Logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(maxBodySize))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("http request")
			return nil
		},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	api := e.Group("/api")
	api.POST("/run_goal", s.runGoal)
	api.GET("/agent_status", s.agentStatus)

	s.echo = e
	return s, nil
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.echo }

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
		errCh <- s.echo.Start(s.cfg.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

type runGoalRequest struct {
	Goal string `json:"goal"`
}

type runGoalResponse struct {
	Success    bool                         `json:"success"`
	RunID      string                       `json:"run_id,omitempty"`
	Plan       *contractx.PlannerOutcome    `json:"plan,omitempty"`
	Validation *contractx.ValidationOutcome `json:"validation,omitempty"`
	Result     contractx.Context            `json:"result,omitempty"`
	Partial    contractx.Context            `json:"partial,omitempty"`
	FailedStep *failedStep                  `json:"failed_step,omitempty"`
	Error      string                       `json:"error,omitempty"`
	Timestamp  string                       `json:"timestamp"`
}

type failedStep struct {
	Index int    `json:"index"`
	Agent string `json:"agent"`
	Error string `json:"error"`
}

func (s *Server) runGoal(c echo.Context) error {
	var req runGoalRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, s.failure("invalid request"))
	}
	goal := strings.TrimSpace(req.Goal)
	if goal == "" {
		return c.JSON(http.StatusBadRequest, s.failure("goal is required"))
	}

	ctx := c.Request().Context()
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	res, err := s.runner.Run(ctx, goal)
	if err != nil {
		resp := s.failure(err.Error())
		if res != nil {
			resp.RunID = res.RunID
			resp.Plan = &res.Plan
			resp.Partial = res.Context
			if res.FailedStep != nil {
				resp.FailedStep = &failedStep{
					Index: res.FailedStep.Index,
					Agent: res.FailedStep.Agent,
					Error: res.FailedStep.Err.Error(),
				}
			}
		}
		return c.JSON(http.StatusInternalServerError, resp)
	}

	return c.JSON(http.StatusOK, runGoalResponse{
		Success:    true,
		RunID:      res.RunID,
		Plan:       &res.Plan,
		Validation: &res.Validation,
		Result:     res.Context,
		Timestamp:  s.timestamp(),
	})
}

func (s *Server) agentStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":           "active",
		"available_agents": s.runner.Catalog(),
	})
}

func (s *Server) failure(msg string) runGoalResponse {
	return runGoalResponse{Success: false, Error: msg, Timestamp: s.timestamp()}
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
