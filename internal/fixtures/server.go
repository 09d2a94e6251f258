package fixtures

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"pkt.systems/pslog"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

func init() {
	gin.SetMode(ginMode(os.Getenv(gin.EnvGinMode)))
}

// ginMode keeps gin's banner and route dump off stdout unless GIN_MODE asks
// for them.
func ginMode(env string) string {
	switch env {
	case gin.DebugMode, gin.TestMode:
		return env
	default:
		return gin.ReleaseMode
	}
}

// Options configure a fixture Server.
type Options struct {
	Data Dataset
	// Latency is added to every search answer; Jitter adds a uniformly
	// random extra delay in [0, Jitter) so responses can overtake each
	// other.
	Latency time.Duration
	Jitter  time.Duration
	// FailEvery makes every nth search answer with 500. Zero disables it.
	FailEvery int
	Logger    pslog.Logger
}

// Server answers the search contract from an in-memory dataset.
type Server struct {
	opts     Options
	logger   pslog.Logger
	registry *prometheus.Registry
	metrics  *metrics
	engine   *gin.Engine
	served   atomic.Uint64
}

// New builds a Server and its routes.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	registry := prometheus.NewRegistry()
	s := &Server{
		opts:     opts,
		logger:   logger,
		registry: registry,
		metrics:  newMetrics(registry),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Authorization", "Accept", "User-Agent", "X-Request-ID"}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		gin.Recovery(),
		cors.New(corsConfig),
		s.accessLog(),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	api.GET("/members/search", s.search("members", func(q string, limit int) (any, int) {
		rows := match(s.opts.Data.Members, q, limit)
		return rows, len(rows)
	}))
	api.GET("/tiers/search", s.search("tiers", func(q string, limit int) (any, int) {
		rows := match(s.opts.Data.Tiers, q, limit)
		return rows, len(rows)
	}))
	api.GET("/search", s.search("global", s.searchAll))
	return r
}

// searchAll answers the keyed-group shape. Key order is fixed so clients can
// rely on it.
func (s *Server) searchAll(q string, limit int) (any, int) {
	ds := s.opts.Data
	groups := orderedmap.New[string, any]()
	members := match(ds.Members, q, limit)
	students := match(ds.Students, q, limit)
	households := match(ds.Households, q, limit)
	events := match(ds.Events, q, limit)
	tiers := match(ds.Tiers, q, limit)
	groups.Set("members", members)
	groups.Set("students", students)
	groups.Set("households", households)
	groups.Set("events", events)
	groups.Set("tiers", tiers)
	return groups, len(members) + len(students) + len(households) + len(events) + len(tiers)
}

type searchFunc func(q string, limit int) (any, int)

func (s *Server) search(route string, fn searchFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		code := http.StatusOK
		defer func() {
			s.metrics.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
			s.metrics.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}()

		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			code = http.StatusBadRequest
			c.JSON(code, gin.H{"error": "query parameter q is required"})
			return
		}
		limit, err := parseLimit(c.Query("limit"))
		if err != nil {
			code = http.StatusBadRequest
			c.JSON(code, gin.H{"error": err.Error()})
			return
		}

		if err := s.delay(c.Request.Context()); err != nil {
			code = 499
			c.Status(code)
			return
		}
		if s.shouldFail() {
			code = http.StatusInternalServerError
			c.JSON(code, gin.H{"error": "injected failure"})
			return
		}

		body, n := fn(q, limit)
		s.metrics.results.WithLabelValues(route).Observe(float64(n))
		c.JSON(code, body)
	}
}

func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("limit must be a positive integer, got %q", raw)
	}
	return min(n, maxLimit), nil
}

func (s *Server) delay(ctx context.Context) error {
	d := s.opts.Latency
	if s.opts.Jitter > 0 {
		d += rand.N(s.opts.Jitter)
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Server) shouldFail() bool {
	if s.opts.FailEvery <= 0 {
		return false
	}
	n := s.served.Add(1)
	return n%uint64(s.opts.FailEvery) == 0
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("fixtures.request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
			"request_id", c.GetHeader("X-Request-ID"),
		)
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("fixtures.listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("fixtures.stopped")
	return nil
}
