// Package handlers holds the gin handlers behind the service's routes.
package handlers

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/quotesync/internal/ports"
)

// BuildInfo reports which binary is running. Everything except GoVersion
// is stamped in through ldflags.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// NewBuildInfo fills a BuildInfo, picking up the Go version from the
// runtime.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{
		GoVersion: runtime.Version(),
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	}
}

// HealthHandler serves the probe and metrics endpoints.
type HealthHandler struct {
	registry  ports.HealthRegistry
	buildInfo BuildInfo
}

// NewHealthHandler creates a health handler over the given check registry.
func NewHealthHandler(registry ports.HealthRegistry, buildInfo BuildInfo) *HealthHandler {
	return &HealthHandler{
		registry:  registry,
		buildInfo: buildInfo,
	}
}

type livenessResponse struct {
	Status string    `json:"status"`
	Build  BuildInfo `json:"build"`
}

// Liveness answers /healthz. The probe passes whenever the process can
// serve a request; dependency state is deliberately not consulted here,
// since restarting the pod would not fix a broken dependency.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, livenessResponse{
		Status: "ok",
		Build:  h.buildInfo,
	})
}

type readinessResponse struct {
	Status string                        `json:"status"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// Readiness answers /readyz from the registered checks. An unhealthy
// aggregate flips the probe to 503 and takes the pod out of rotation.
func (h *HealthHandler) Readiness(c *gin.Context) {
	result := h.registry.CheckAll(c.Request.Context())

	status := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, readinessResponse{
		Status: string(result.Status),
		Checks: result.Checks,
	})
}

// MetricsHandler exposes the Prometheus registry. Wrap it with gin.WrapH
// when mounting on an engine.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RegisterHealthRoutes mounts the probe endpoints on the engine root:
// GET /healthz, GET /readyz, and GET /metrics. They sit outside the
// /api/v1 group so probes bypass auth and request timeouts.
func (h *HealthHandler) RegisterHealthRoutes(engine *gin.Engine) {
	engine.GET("/healthz", h.Liveness)
	engine.GET("/readyz", h.Readiness)
	engine.GET("/metrics", gin.WrapH(MetricsHandler()))
}
