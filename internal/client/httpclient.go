package client

import (
	"log/slog"
	"net/http"
	"time"
)

// CreateHTTPClient initializes an HTTP client whose transport logs every outbound request.
func CreateHTTPClient(log *slog.Logger, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewLoggingTransport(log, nil),
		CheckRedirect: func(req *http.Request, _ []*http.Request) error {
			log.Debug("Redirected to URL", "URL", req.URL)

			return nil
		},
	}
}

// LoggingTransport is a http.RoundTripper that records method, url, status and duration at debug level.
type LoggingTransport struct {
	log  *slog.Logger
	next http.RoundTripper
}

// NewLoggingTransport wraps next. A nil next means http.DefaultTransport.
func NewLoggingTransport(log *slog.Logger, next http.RoundTripper) *LoggingTransport {
	if next == nil {
		next = http.DefaultTransport
	}

	return &LoggingTransport{log: log.With(slog.String("division", "http-client")), next: next}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	startTime := time.Now()

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.log.DebugContext(req.Context(), "Outbound request failed",
			"method", req.Method, "URL", req.URL.Redacted(), "error", err, "duration", time.Since(startTime).String())
		return nil, err
	}

	t.log.DebugContext(req.Context(), "Outbound request",
		"method", req.Method, "URL", req.URL.Redacted(), "status", resp.StatusCode,
		"duration", time.Since(startTime).String())

	return resp, nil
}
