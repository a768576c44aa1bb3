package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/triage-gateway/internal/model"
	apperrors "github.com/jwalitptl/triage-gateway/pkg/errors"
	"github.com/jwalitptl/triage-gateway/pkg/metrics"
)

// AuthRejectFunc is invoked when an upstream answers 401 for a session
// credential. The session must be terminated immediately; the caller
// still receives the unauthorized error.
type AuthRejectFunc func(sessionID string)

// Client is the shared transport for all upstream services. Every call
// attaches the session's bearer credential and maps upstream failures
// onto the gateway error taxonomy.
type Client struct {
	http         *http.Client
	metrics      *metrics.Metrics
	onAuthReject AuthRejectFunc
}

func NewClient(timeout time.Duration, m *metrics.Metrics) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		metrics: m,
	}
}

// OnAuthReject sets the session-termination hook. Must be called
// before the client is shared across goroutines.
func (c *Client) OnAuthReject(fn AuthRejectFunc) {
	c.onAuthReject = fn
}

// errorBody is the error shape upstream services return. The detail
// field matches the clinical backend, message is kept as a fallback.
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, service, method, url string, sess *model.Session, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.Internal(fmt.Errorf("marshal %s request: %w", service, err))
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("build %s request: %w", service, err))
	}
	req.Header.Set("Content-Type", "application/json")
	if sess != nil {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if c.metrics != nil {
		c.metrics.UpstreamLatency.WithLabelValues(service).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		c.observe(service, "transport_error")
		return apperrors.Service(fmt.Sprintf("%s unreachable", service), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.observe(service, "ok")
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperrors.Service(fmt.Sprintf("invalid %s response", service), err)
		}
		return nil
	}

	c.observe(service, fmt.Sprintf("http_%d", resp.StatusCode))
	detail := readErrorDetail(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if sess != nil && c.onAuthReject != nil {
			log.Warn().Str("service", service).Str("session_id", sess.ID).
				Msg("upstream rejected credential, terminating session")
			// Termination tears down the session's monitor and joins its
			// polling goroutine, which may be the goroutine running this
			// very call. The hook must not run on the caller.
			go c.onAuthReject(sess.ID)
		}
		return apperrors.Unauthorized(fmt.Errorf("%s: %s", service, detail))
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFound(service+" resource", fmt.Errorf("%s", detail))
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return apperrors.Validation(detail, fmt.Errorf("%s returned %d", service, resp.StatusCode))
	default:
		return apperrors.Service(fmt.Sprintf("%s failed", service), fmt.Errorf("status %d: %s", resp.StatusCode, detail))
	}
}

func (c *Client) observe(service, status string) {
	if c.metrics != nil {
		c.metrics.UpstreamRequests.WithLabelValues(service, status).Inc()
	}
}

func readErrorDetail(r io.Reader) string {
	var eb errorBody
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&eb); err == nil {
		if eb.Detail != "" {
			return eb.Detail
		}
		if eb.Message != "" {
			return eb.Message
		}
	}
	return "upstream error"
}
