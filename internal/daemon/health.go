package daemon

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/command-line-assistant/clad/internal/logging"
)

// HealthConfig controls the supplemented loopback operability surface
// (spec.md §4.G's gin/prometheus addition): /healthz and /metrics,
// bound to localhost only and off by default, the way
// original_source's packaging assumes a supervisable HTTP endpoint even
// though the distilled bus contract doesn't need one.
type HealthConfig struct {
	Enabled bool
	Addr    string
}

// questionsTotal counts AskQuestion calls, labeled by outcome, the Go
// analogue of the request counters server/server.go never had but
// routes.go's /agentize/health implied operators would want.
var questionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "clad_daemon_questions_total",
	Help: "Total AskQuestion calls handled by the daemon, by outcome.",
}, []string{"outcome"})

// HealthServer is the loopback-only gin.Engine serving health and
// metrics endpoints, grounded on routes.go's RegisterRoutes /
// server/server.go's Start.
type HealthServer struct {
	srv *http.Server
}

// StartHealthServer starts the loopback server if cfg.Enabled, returning
// nil if disabled. It never blocks; the caller should defer Close.
func StartHealthServer(cfg HealthConfig) (*HealthServer, error) {
	if !cfg.Enabled {
		logging.Log.Infof("daemon: health/metrics server disabled")
		return nil, nil
	}

	addr := cfg.Addr
	if addr == "" {
		addr = "127.0.0.1:8787"
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("daemon: health server address %q: %w", addr, err)
	}
	if ip := net.ParseIP(host); host != "localhost" && (ip == nil || !ip.IsLoopback()) {
		return nil, fmt.Errorf("daemon: health server address %q is not a loopback address", addr)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/healthz", handleHealthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{Addr: addr, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Log.Errorf("daemon: health server stopped: %v", err)
		}
	}()

	logging.Log.Infof("daemon: health/metrics server listening on %s", addr)
	return &HealthServer{srv: srv}, nil
}

// Close shuts the health server down, if it was started.
func (h *HealthServer) Close() error {
	if h == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.srv.Shutdown(ctx)
}

func handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func recordQuestionOutcome(success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	questionsTotal.WithLabelValues(outcome).Inc()
}
