package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/hydro-explorer-service/internal/domain"
	"github.com/couchcryptid/hydro-explorer-service/internal/observability"
)

// maxBodyBytes caps how much of a response is read. CSV exports of long
// sub-daily series are the largest bodies. A longer body is a transport
// failure rather than a truncated payload.
const maxBodyBytes = 64 << 20

// Client talks to the hydrological data backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
	maxBody    int64
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
		maxBody: maxBodyBytes,
	}
}

// FetchJSON performs q and returns the JSON body. A body carrying an "error"
// field is a ServerReportedError whatever the status; a body that is not JSON
// is a MalformedResponse on success and a TransportError otherwise.
func (c *Client) FetchJSON(ctx context.Context, q domain.Query) (json.RawMessage, error) {
	resp, err := c.doRequest(ctx, q)
	if err != nil {
		return nil, c.observe(q, err)
	}

	if !json.Valid(resp.body) {
		if resp.ok() {
			return nil, c.observe(q, domain.Errorf(domain.KindMalformedResponse, "%s returned a non-JSON body", q.Endpoint))
		}
		return nil, c.observe(q, statusError(q, resp))
	}
	if msg, ok := reportedError(resp.body); ok {
		return nil, c.observe(q, domain.Errorf(domain.KindServerReportedError, "%s", msg))
	}
	if !resp.ok() {
		return nil, c.observe(q, statusError(q, resp))
	}
	return json.RawMessage(resp.body), c.observe(q, nil)
}

// FetchFile performs q and returns the raw body, typically a CSV export.
func (c *Client) FetchFile(ctx context.Context, q domain.Query) ([]byte, error) {
	resp, err := c.doRequest(ctx, q)
	if err != nil {
		return nil, c.observe(q, err)
	}
	if msg, ok := reportedError(resp.body); ok {
		return nil, c.observe(q, domain.Errorf(domain.KindServerReportedError, "%s", msg))
	}
	if !resp.ok() {
		return nil, c.observe(q, statusError(q, resp))
	}
	return resp.body, c.observe(q, nil)
}

// CheckReadiness reports whether the backend answers HTTP at all.
func (c *Client) CheckReadiness(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("data backend unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("data backend unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

type response struct {
	status int
	body   []byte
}

func (r response) ok() bool { return r.status >= 200 && r.status < 300 }

func (c *Client) doRequest(ctx context.Context, q domain.Query) (response, error) {
	start := time.Now()
	defer func() {
		c.metrics.BackendDuration.WithLabelValues(q.Endpoint).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+q.String(), nil)
	if err != nil {
		return response{}, domain.WrapError(domain.KindTransport, "create request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, domain.WrapError(domain.KindTransport, q.Endpoint+" request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return response{}, domain.WrapError(domain.KindTransport, q.Endpoint+" read body", err)
	}
	if int64(len(body)) > c.maxBody {
		return response{}, domain.Errorf(domain.KindTransport, "%s: response body exceeds %d bytes", q.Endpoint, c.maxBody)
	}
	return response{status: resp.StatusCode, body: body}, nil
}

// observe counts the outcome of a request and passes err through.
func (c *Client) observe(q domain.Query, err error) error {
	outcome := "ok"
	if err != nil {
		outcome = string(domain.KindOf(err))
		c.logger.Warn("backend request failed", "endpoint", q.Endpoint, "query", q.String(), "error", err)
	} else {
		c.logger.Debug("backend request", "endpoint", q.Endpoint, "query", q.String())
	}
	c.metrics.BackendRequests.WithLabelValues(q.Endpoint, outcome).Inc()
	return err
}

func statusError(q domain.Query, r response) error {
	return domain.Errorf(domain.KindTransport, "%s: status %d %s", q.Endpoint, r.status, http.StatusText(r.status))
}

// reportedError extracts the message of an {"error": ...} body. A null, empty,
// false or zero error field carries no error.
func reportedError(body []byte) (string, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return "", false
	}
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return "", false
	}
	switch string(envelope.Error) {
	case "null", "false", "0":
		return "", false
	}
	var msg string
	if err := json.Unmarshal(envelope.Error, &msg); err == nil {
		return msg, msg != ""
	}
	return string(envelope.Error), true
}
