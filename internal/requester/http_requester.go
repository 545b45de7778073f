package requester

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brizzai/nylas-mail-backend/internal/config"
	"github.com/brizzai/nylas-mail-backend/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Observer is notified of every executed provider call
type Observer interface {
	ObserveProviderCall(operation string, duration time.Duration, err error)
}

// HTTPRequester executes provider API requests
type HTTPRequester struct {
	client   *http.Client
	baseURL  string
	limiter  *rate.Limiter
	observer Observer
}

type HTTPRequesterParams struct {
	fx.In

	Config   *config.Config
	Observer Observer `optional:"true"`
}

// NewHTTPRequester creates a new HTTPRequester from the provider configuration
func NewHTTPRequester(params HTTPRequesterParams) *HTTPRequester {
	cfg := params.Config.Nylas
	r := &HTTPRequester{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:  cfg.APIURL,
		observer: params.Observer,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return r
}

// Do executes req and returns the response whatever its status
func (r *HTTPRequester) Do(ctx context.Context, req *Request) (resp *Response, err error) {
	start := time.Now()
	defer func() {
		if r.observer != nil {
			r.observer.ObserveProviderCall(req.Operation, time.Since(start), err)
		}
	}()

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	httpReq, err := BuildRequest(ctx, r.baseURL, req)
	if err != nil {
		return nil, err
	}
	logger.Debug("provider request",
		zap.String("operation", req.Operation),
		zap.String("method", httpReq.Method),
		zap.String("path", httpReq.URL.Path),
	)

	return r.execute(httpReq)
}

// DoJSON executes req, fails on 4xx/5xx statuses and decodes the body into out
func (r *HTTPRequester) DoJSON(ctx context.Context, req *Request, out interface{}) error {
	resp, err := r.Do(ctx, req)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &StatusError{Operation: req.Operation, StatusCode: resp.StatusCode, Body: resp.Body}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", req.Operation, err)
	}
	return nil
}

func (r *HTTPRequester) execute(httpReq *http.Request) (*Response, error) {
	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Error("Failed to close response body", zap.Error(closeErr))
		}
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       bodyBytes,
		Headers:    resp.Header,
	}, nil
}
