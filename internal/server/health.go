package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

type DBPinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports storage availability and, when configured, reachability of the ticket tracker.
type HealthChecker struct {
	db          DBPinger
	trackerHost string
	httpClient  *http.Client
	log         *slog.Logger
}

func NewHealthChecker(db DBPinger, trackerHost string, log *slog.Logger) *HealthChecker {
	clientTO := 5
	return &HealthChecker{
		db:          db,
		trackerHost: trackerHost,
		httpClient:  &http.Client{Timeout: time.Duration(clientTO) * time.Second},
		log:         log,
	}
}

func (h *HealthChecker) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	h.log.DebugContext(ctx, "Performing health checks...")

	status := make(map[string]string)
	overallStatus := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		status["storage"] = "unavailable"
		overallStatus = http.StatusServiceUnavailable
		h.log.WarnContext(ctx, "Health check failed: storage ping", "error", err)
	} else {
		status["storage"] = "ok"
	}

	if h.trackerHost != "" {
		trackerStatus := h.checkTracker(ctx)
		status["tracker"] = trackerStatus
		if trackerStatus != "ok" {
			overallStatus = http.StatusServiceUnavailable
		}
	}

	writeJSON(writer, overallStatus, status)

	h.log.DebugContext(ctx, "Health checks completed", "status", overallStatus)
}

func (h *HealthChecker) checkTracker(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, h.trackerHost, nil)
	if err != nil {
		h.log.WarnContext(ctx, "Health check failed: invalid tracker url", "host", h.trackerHost, "error", err)
		return "unreachable"
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.log.WarnContext(ctx, "Health check failed: tracker unreachable", "host", h.trackerHost, "error", err)
		return "unreachable"
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			h.log.WarnContext(ctx, "Failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode >= http.StatusInternalServerError {
		h.log.WarnContext(ctx, "Health check failed: tracker returned error status",
			"host", h.trackerHost, "status_code", resp.StatusCode)
		return "degraded"
	}

	return "ok"
}

func writeJSON(writer http.ResponseWriter, status int, body any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(body)
}
