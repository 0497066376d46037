package ginscope

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/injectkit/component"
	"github.com/skillsenselab/injectkit/di"
	"github.com/skillsenselab/injectkit/logger"
)

// Server wraps a gin engine as a lifecycle component: Start listens in
// the background, Stop shuts the listener down gracefully. It reports
// its routes for the bootstrap startup summary.
type Server struct {
	engine  *gin.Engine
	srv     *http.Server
	port    int
	running atomic.Bool
	log     *logger.Logger
}

// NewServer builds a Server on the given port. The engine comes with
// recovery and the container's scope middleware installed; callers add
// their routes to Engine().
func NewServer(container *di.Container, port int) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery(), Middleware(container))
	return &Server{
		engine: engine,
		port:   port,
		log:    logger.Get("http-server"),
	}
}

// Engine exposes the underlying gin engine for route registration.
func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) Name() string { return "http-server" }

// Start begins serving in a background goroutine.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.engine,
	}
	s.running.Store(true)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.running.Store(false)
			s.log.Error("http server stopped", logger.Fields(logger.FieldError, err.Error()))
		}
	}()
	s.log.Info("http server listening", logger.Fields("port", s.port))
	return nil
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	s.running.Store(false)
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// Health reports whether the listener is up.
func (s *Server) Health(ctx context.Context) component.Health {
	if s.running.Load() {
		return component.Health{Name: s.Name(), Status: component.StatusHealthy}
	}
	return component.Health{Name: s.Name(), Status: component.StatusUnhealthy, Message: "not listening"}
}

// Describe reports the server for the startup summary.
func (s *Server) Describe() component.Description {
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: fmt.Sprintf("gin, %d routes", len(s.engine.Routes())),
		Port:    s.port,
	}
}

// Routes reports the registered routes for the startup summary.
func (s *Server) Routes() []component.Route {
	gr := s.engine.Routes()
	out := make([]component.Route, 0, len(gr))
	for _, r := range gr {
		out = append(out, component.Route{
			Method:  r.Method,
			Path:    r.Path,
			Handler: r.Handler,
		})
	}
	return out
}
