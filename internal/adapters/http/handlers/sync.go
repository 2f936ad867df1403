package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/app"
)

// SyncHandler handles remote synchronization HTTP endpoints.
type SyncHandler struct {
	syncer *app.Syncer
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(syncer *app.Syncer) *SyncHandler {
	return &SyncHandler{
		syncer: syncer,
	}
}

// SyncReportResponse summarizes one completed sync cycle.
type SyncReportResponse struct {
	Fetched    int   `json:"fetched"`
	Valid      int   `json:"valid"`
	Added      int   `json:"added"`
	Total      int   `json:"total"`
	DurationMs int64 `json:"durationMs"`
}

// toSyncReportResponse converts an application sync report to an HTTP response.
func toSyncReportResponse(r app.SyncReport) SyncReportResponse {
	return SyncReportResponse{
		Fetched:    r.Fetched,
		Valid:      r.Valid,
		Added:      r.Added,
		Total:      r.Total,
		DurationMs: r.Duration.Milliseconds(),
	}
}

// SyncStatusResponse is the read model for the sync status endpoint.
type SyncStatusResponse struct {
	Running     bool                `json:"running"`
	Paused      bool                `json:"paused"`
	Interval    string              `json:"interval"`
	LastRun     *time.Time          `json:"lastRun,omitempty"`
	LastSuccess *time.Time          `json:"lastSuccess,omitempty"`
	LastError   string              `json:"lastError,omitempty"`
	Cycles      uint64              `json:"cycles"`
	Failures    uint64              `json:"failures"`
	LastReport  *SyncReportResponse `json:"lastReport,omitempty"`
}

// TriggerSync handles POST /api/v1/sync
// Runs one merge cycle against the remote source and reports the outcome.
// A cycle already in flight yields 409 rather than queueing a second one.
//
// @Summary Trigger a sync cycle
// @Description Fetches remote quotes and merges them into the collection
// @Tags sync
// @Produce json
// @Success 200 {object} SyncReportResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/sync [post]
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	report, err := h.syncer.RunOnce(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSyncReportResponse(report))
}

// SyncStatus handles GET /api/v1/sync/status
// Reports the scheduler state and the outcome of the last cycle.
//
// @Summary Get sync status
// @Description Returns scheduler state, cycle counters and the last report
// @Tags sync
// @Produce json
// @Success 200 {object} SyncStatusResponse
// @Router /api/v1/sync/status [get]
func (h *SyncHandler) SyncStatus(c *gin.Context) {
	status := h.syncer.Status(c.Request.Context())

	resp := SyncStatusResponse{
		Running:   status.Running,
		Paused:    status.Paused,
		Interval:  status.Interval.String(),
		LastError: status.LastError,
		Cycles:    status.Cycles,
		Failures:  status.Failures,
	}

	if !status.LastRun.IsZero() {
		lastRun := status.LastRun
		resp.LastRun = &lastRun
	}

	if !status.LastSuccess.IsZero() {
		lastSuccess := status.LastSuccess
		resp.LastSuccess = &lastSuccess

		report := toSyncReportResponse(status.LastReport)
		resp.LastReport = &report
	}

	c.JSON(http.StatusOK, resp)
}

// RegisterSyncRoutes registers sync routes on the given router group.
// Middleware passed in mutating guards the trigger endpoint.
func (h *SyncHandler) RegisterSyncRoutes(rg *gin.RouterGroup, mutating ...gin.HandlerFunc) {
	sync := rg.Group("/sync")
	sync.GET("/status", h.SyncStatus)

	guarded := sync.Group("", mutating...)
	guarded.POST("", h.TriggerSync)
}
