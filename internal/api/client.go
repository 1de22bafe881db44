// Package api is the typed client for the influencer backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/trustboard/internal/model"
	"github.com/ppiankov/trustboard/internal/worker"
)

// Operation names, used for errors, logging and pacing
const (
	OpStats      = "api.stats"
	OpList       = "api.list"
	OpDetail     = "api.detail"
	OpVerify     = "api.verify"
	OpCreateTask = "api.create_task"
)

const requestIDHeader = "X-Request-ID"

// Client talks to one backend. It owns no state beyond its configuration.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	limiter    *worker.Limiter
	logger     *zap.Logger
}

// NewClient creates a Client for cfg.BaseURL
func NewClient(cfg model.APIConfig, logger *zap.Logger) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = model.DefaultBaseURL
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", base)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = model.DefaultConfig().API.MaxBodyBytes
	}

	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: newHTTPClient(cfg),
		userAgent:  cfg.UserAgent,
		maxBytes:   maxBytes,
		limiter:    worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		logger:     logger.Named("api"),
	}, nil
}

// Pace limits op to perSecond calls with the given burst, replacing the
// client-wide rate for that operation
func (c *Client) Pace(op string, perSecond float64, burst int) {
	c.limiter.Override(op, perSecond, burst)
}

// BaseURL returns the backend root requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Stats fetches the aggregate leaderboard numbers
func (c *Client) Stats(ctx context.Context) (model.LeaderboardStats, error) {
	var stats model.LeaderboardStats
	err := c.do(ctx, OpStats, http.MethodGet, "api/influencers/stats", nil, &stats)
	return stats, err
}

// List fetches the ranked influencers, best first
func (c *Client) List(ctx context.Context) ([]model.InfluencerListItem, error) {
	var items []model.InfluencerListItem
	err := c.do(ctx, OpList, http.MethodGet, "api/influencers/list", nil, &items)
	return items, err
}

// Influencer fetches one influencer with its claims
func (c *Client) Influencer(ctx context.Context, id int) (model.InfluencerDetail, error) {
	var detail model.InfluencerDetail
	err := c.do(ctx, OpDetail, http.MethodGet, "api/influencers/"+strconv.Itoa(id), nil, &detail)
	return detail, err
}

// Verify resolves a handle or name to a tracked influencer.
// An unknown handle yields an *Error of KindNotFound carrying the server message.
func (c *Client) Verify(ctx context.Context, handle string) (model.InfluencerVerifyResponse, error) {
	var resp model.InfluencerVerifyResponse
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return resp, &Error{Op: OpVerify, Kind: KindValidation, Message: "handle is required"}
	}
	body := struct {
		Handle string `json:"handle"`
	}{Handle: handle}
	err := c.do(ctx, OpVerify, http.MethodPost, "api/influencers/verify", body, &resp)
	return resp, err
}

// CreateResearchTask submits a research task. The request is validated first.
func (c *Client) CreateResearchTask(ctx context.Context, req model.ResearchTaskRequest) (model.ResearchTask, error) {
	var task model.ResearchTask
	if err := req.Validate(); err != nil {
		return task, &Error{Op: OpCreateTask, Kind: KindValidation, Message: err.Error(), Err: err}
	}
	err := c.do(ctx, OpCreateTask, http.MethodPost, "api/research/tasks", req, &task)
	return task, err
}

// do sends one request and decodes a 2xx JSON body into out.
// Every failure is returned as an *Error.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	requestID := uuid.NewString()
	fail := func(kind Kind, status int, err error) *Error {
		return &Error{Op: op, Kind: kind, StatusCode: status, RequestID: requestID, Err: err}
	}

	if err := c.limiter.Wait(ctx, op); err != nil {
		return fail(KindNetwork, 0, fmt.Errorf("rate limit: %w", err))
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fail(KindUnknown, 0, fmt.Errorf("marshal request: %w", err))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, body)
	if err != nil {
		return fail(KindUnknown, 0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return fail(KindNetwork, 0, fmt.Errorf("send: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))

	c.logger.Debug("request settled",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("duration", time.Since(start)))

	if err != nil {
		return fail(KindNetwork, resp.StatusCode, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := fail(KindServer, resp.StatusCode, fmt.Errorf("unexpected status: %s", resp.Status))
		if resp.StatusCode == http.StatusNotFound {
			apiErr.Kind = KindNotFound
		}
		apiErr.Message, apiErr.Details = parseErrorPayload(data)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fail(KindUnknown, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
