package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"tariff-observer/src/interfaces"
	"tariff-observer/src/logger"
	"tariff-observer/src/models"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

type APIServer struct {
	Config    *models.MConfig
	Logger    *logger.Logger
	Dashboard interfaces.IDashboardProvider
	engine    *gin.Engine
	http      *http.Server

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan *models.MLatestData // Buffered queue
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	hubOnce    sync.Once
	stopOnce   sync.Once

	// Local cache
	latestState *models.MLatestData
	connections int
	stateMutex  sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

// NewAPIServer builds the routes. metricsHandler may be nil.
func NewAPIServer(cfg *models.MConfig, provider interfaces.IDashboardProvider, metricsHandler http.Handler, logger *logger.Logger) *APIServer {
	// Set Gin mode
	if !strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &APIServer{
		Config:    cfg,
		Logger:    logger,
		Dashboard: provider,
		engine:    gin.New(),
		clients:   make(map[*Client]struct{}),
		// Queue size of 256 absorbs bursts of refreshes
		broadcast:  make(chan *models.MLatestData, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		latestState: &models.MLatestData{
			Type:        "INITIAL",
			Panels:      []models.MPanelSummary{},
			Diagnostics: []models.MDiagnostic{},
		},
	}

	s.engine.Use(gin.Recovery(), requestID(), s.accessLog())

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.setupRoutes(metricsHandler)
	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// -----------------------------------------------------------------------------

// Handler exposes the router, mainly for tests.
func (s *APIServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// StartHub runs the websocket hub loop. Start calls it; it is idempotent.
func (s *APIServer) StartHub() {
	s.hubOnce.Do(func() { go s.handleWebsockets() })
}

func (s *APIServer) Start() error {
	s.Logger.Info("Starting server on %s", s.http.Addr)

	s.StartHub()

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *APIServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.done)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = s.http.Shutdown(ctx)
	})
	return err
}
