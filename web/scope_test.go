package web

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/dikit/di"
	"github.com/kbukum/dikit/logger"
)

type session struct {
	id     string
	closed bool
}

func (s *session) Close() error {
	s.closed = true
	return nil
}

func testRouter(t *testing.T) (*gin.Engine, *di.Provider, *[]*session) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var mu sync.Mutex
	var sessions []*session
	c := di.NewCollection()
	di.AddFactory[*session](c, di.Scoped, func(p *di.Provider) (*session, error) {
		s := &session{id: p.ID()}
		mu.Lock()
		sessions = append(sessions, s)
		mu.Unlock()
		return s, nil
	})
	root, err := c.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	r := gin.New()
	r.Use(ScopeMiddleware(root, logger.NewDefault("web-test")))
	return r, root, &sessions
}

func TestScopePerRequest(t *testing.T) {
	r, _, sessions := testRouter(t)
	r.GET("/s", func(c *gin.Context) {
		a, ok := Resolve[*session](c)
		if !ok {
			return
		}
		b, _ := Resolve[*session](c)
		if a != b {
			c.String(http.StatusInternalServerError, "unstable scope")
			return
		}
		c.String(http.StatusOK, a.id)
	})

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/s", nil))
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/s", nil))

	if w1.Code != http.StatusOK || w2.Code != http.StatusOK {
		t.Fatalf("expected 200s, got %d and %d", w1.Code, w2.Code)
	}
	if w1.Body.String() == w2.Body.String() {
		t.Error("expected distinct scopes per request")
	}
	if len(*sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(*sessions))
	}
}

func TestScopeDisposedAfterRequest(t *testing.T) {
	r, _, sessions := testRouter(t)
	r.GET("/s", func(c *gin.Context) {
		Resolve[*session](c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/s", nil))

	if len(*sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(*sessions))
	}
	if !(*sessions)[0].closed {
		t.Error("expected session disposed when request ended")
	}
}

func TestRootSurvivesRequests(t *testing.T) {
	r, root, _ := testRouter(t)
	r.GET("/s", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/s", nil))

	scope := root.CreateScope()
	defer scope.Close()
	if _, err := di.Resolve[*session](scope); err != nil {
		t.Errorf("expected root usable after requests, got %v", err)
	}
}

func TestRequestIDGenerated(t *testing.T) {
	r, _, _ := testRouter(t)
	r.GET("/s", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/s", nil))
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("expected generated request id header")
	}
}

func TestRequestIDPropagated(t *testing.T) {
	r, _, _ := testRouter(t)
	r.GET("/s", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/s", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "req-123" {
		t.Errorf("expected propagated request id, got %q", got)
	}
}

func TestResolveUnregisteredAborts(t *testing.T) {
	r, _, _ := testRouter(t)
	r.GET("/missing", func(c *gin.Context) {
		if _, ok := Resolve[*testing.T](c); ok {
			c.Status(http.StatusOK)
		}
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for unresolvable type, got %d", w.Code)
	}
}
