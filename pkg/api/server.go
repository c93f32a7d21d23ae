// Package api is the HTTP edge. Handlers validate input, dispatch to exactly
// one component call and shape the response; error-to-status mapping lives
// here and nowhere else.
package api

import (
	"context"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/stumpworks/stumpcast/pkg/config"
	"github.com/stumpworks/stumpcast/pkg/events"
	"github.com/stumpworks/stumpcast/pkg/ingest"
	"github.com/stumpworks/stumpcast/pkg/keypool"
	"github.com/stumpworks/stumpcast/pkg/llm"
	"github.com/stumpworks/stumpcast/pkg/orchestrator"
	"github.com/stumpworks/stumpcast/pkg/sources"
	"github.com/stumpworks/stumpcast/pkg/store"
	"github.com/stumpworks/stumpcast/pkg/tts"
	"github.com/stumpworks/stumpcast/pkg/workflow"
)

// Server is the API server.
type Server struct {
	cfg       config.Config
	store     *store.Store
	engine    *workflow.Engine
	ingestor  *ingest.Engine
	orch      *orchestrator.Orchestrator
	validator *llm.Validator
	pool      *keypool.Pool
	events    *events.Service
	registry  *sources.Registry
	tts       *tts.Worker

	echo       *echo.Echo
	httpServer *http.Server
	started    time.Time
}

// NewServer creates the API server and registers all routes.
func NewServer(
	cfg config.Config,
	st *store.Store,
	engine *workflow.Engine,
	ingestor *ingest.Engine,
	orch *orchestrator.Orchestrator,
	validator *llm.Validator,
	pool *keypool.Pool,
	eventService *events.Service,
	registry *sources.Registry,
	ttsWorker *tts.Worker,
) *Server {
	s := &Server{
		cfg:       cfg,
		store:     st,
		engine:    engine,
		ingestor:  ingestor,
		orch:      orch,
		validator: validator,
		pool:      pool,
		events:    eventService,
		registry:  registry,
		tts:       ttsWorker,
		started:   time.Now().UTC(),
	}

	e := echo.New()
	e.HTTPErrorHandler = s.errorHandler
	e.Use(cors(), bodyLimit(maxBodyBytes), s.requestLog())

	e.GET("/health", s.healthHandler)
	e.GET("/api/status", s.statusHandler)
	e.GET("/api/search", s.searchHandler)
	e.GET("/api/verify-sources", s.verifySourcesHandler)
	e.POST("/api/refresh-archive", s.refreshArchiveHandler)

	e.GET("/api/models", s.listModelsHandler)
	e.POST("/api/refresh-models", s.refreshModelsHandler)

	e.POST("/api/workflow", s.createWorkflowHandler)
	e.GET("/api/workflow/:id", s.getWorkflowHandler)
	e.POST("/api/upload-script", s.uploadScriptHandler)
	e.POST("/api/generate-script", s.generateScriptHandler)
	e.POST("/api/generate-audio", s.generateAudioHandler)
	e.POST("/api/finalize", s.finalizeHandler)

	e.POST("/api/validate-openrouter-key", s.validateKeyHandler)
	e.POST("/api/validate-keys", s.validateKeysHandler)
	e.GET("/api/key-pool-status", s.keyPoolStatusHandler)
	e.POST("/api/openrouter", s.openRouterProxyHandler)

	e.POST("/api/feedback", s.submitFeedbackHandler)
	e.GET("/api/feedback/analytics", s.feedbackAnalyticsHandler)
	e.POST("/api/analytics/cleanup", s.analyticsCleanupHandler)
	e.GET("/api/voices", s.listVoicesHandler)

	s.echo = e
	return s
}

// Handler exposes the routed handler (tests).
func (s *Server) Handler() http.Handler { return s.echo }

// Start blocks serving HTTP on addr until Shutdown or failure.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
