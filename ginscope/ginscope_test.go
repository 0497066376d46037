package ginscope

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/injectkit/di"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type requestState struct {
	id     int32
	closed atomic.Bool
}

func (r *requestState) Close() error {
	r.closed.Store(true)
	return nil
}

func newTestRouter(t *testing.T) (*di.Container, *gin.Engine) {
	t.Helper()
	c := di.New()
	r := gin.New()
	r.Use(Middleware(c))
	return c, r
}

func TestMiddlewareProvidesScope(t *testing.T) {
	_, r := newTestRouter(t)
	r.GET("/", func(c *gin.Context) {
		s, err := ScopeFrom(c)
		if err != nil {
			t.Errorf("ScopeFrom: %v", err)
		}
		if s.ID() == "" {
			t.Error("scope has no ID")
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get(HeaderScopeID) == "" {
		t.Error("scope ID header missing")
	}
}

func TestMiddlewareScopedPerRequest(t *testing.T) {
	c, r := newTestRouter(t)
	var next atomic.Int32
	if err := di.RegisterScoped(c, func(ctx context.Context) (*requestState, error) {
		return &requestState{id: next.Add(1)}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	var states []*requestState
	r.GET("/", func(gc *gin.Context) {
		a, err := Resolve[*requestState](gc)
		if err != nil {
			t.Errorf("resolve: %v", err)
			return
		}
		b, _ := Resolve[*requestState](gc)
		if !a.Same(b) {
			t.Error("two resolutions in one request gave different instances")
		}
		states = append(states, a.MustValue())
		gc.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, w.Code)
		}
	}

	if len(states) != 2 {
		t.Fatalf("len(states) = %d", len(states))
	}
	if states[0] == states[1] {
		t.Error("scoped instance leaked across requests")
	}
	for i, st := range states {
		if !st.closed.Load() {
			t.Errorf("request %d instance not disposed after response", i)
		}
	}
}

func TestMiddlewareSingletonSharedAcrossRequests(t *testing.T) {
	c, r := newTestRouter(t)
	type sharedCache struct{}
	if err := di.RegisterSingleton(c, func(ctx context.Context) (*sharedCache, error) {
		return &sharedCache{}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	var seen []*sharedCache
	r.GET("/", func(gc *gin.Context) {
		h, err := Resolve[*sharedCache](gc)
		if err != nil {
			t.Errorf("resolve: %v", err)
			return
		}
		seen = append(seen, h.MustValue())
		gc.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	}
	if len(seen) != 2 || seen[0] != seen[1] {
		t.Errorf("singleton not shared across requests: %v", seen)
	}
}

func TestServerReportsRoutes(t *testing.T) {
	c := di.New()
	srv := NewServer(c, 8080)
	srv.Engine().GET("/orders", func(gc *gin.Context) {})
	srv.Engine().POST("/orders", func(gc *gin.Context) {})

	routes := srv.Routes()
	if len(routes) != 2 {
		t.Fatalf("len(routes) = %d, want 2", len(routes))
	}

	desc := srv.Describe()
	if desc.Port != 8080 || desc.Type != "server" {
		t.Errorf("describe = %+v", desc)
	}
}

func TestServerHealthBeforeStart(t *testing.T) {
	srv := NewServer(di.New(), 0)
	h := srv.Health(context.Background())
	if h.Status == "healthy" {
		t.Error("unstarted server reported healthy")
	}
}
