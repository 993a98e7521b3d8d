package httpclient

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/pkg/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Request describes one outbound call. Body is JSON-encoded when set; Form is
// sent form-encoded and takes precedence over Body.
type Request struct {
	Method    string
	URL       string
	Query     url.Values
	Headers   map[string]string
	Body      any
	Form      url.Values
	Operation string
}

// Transport executes upstream requests for one provider over fasthttp with a
// per-call deadline and an optional rate limit.
type Transport struct {
	client   *fasthttp.Client
	provider entity.Provider
	timeout  time.Duration
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewTransport creates a Transport. ratePerSecond <= 0 disables rate limiting.
func NewTransport(provider entity.Provider, timeout time.Duration, ratePerSecond float64, burst int, logger *zap.Logger) *Transport {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	var limiter *rate.Limiter
	if ratePerSecond > 0 {
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
	}
	return &Transport{
		client: &fasthttp.Client{
			Name:                string("wallet-dashboard/" + provider),
			MaxConnsPerHost:     64,
			MaxIdleConnDuration: 30 * time.Second,
		},
		provider: provider,
		timeout:  timeout,
		limiter:  limiter,
		logger:   logger.Named("Transport").With(zap.String("provider", string(provider))),
	}
}

// Provider returns the provider this transport serves.
func (t *Transport) Provider() entity.Provider { return t.provider }

// Do executes req and returns the body of a 2xx response. Any other outcome is
// reported as *entity.UpstreamError.
func (t *Transport) Do(ctx context.Context, r Request) ([]byte, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, t.fail(r, 0, "", fmt.Errorf("rate limiter: %w", err))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, t.fail(r, 0, "", err)
	}

	requestURL := r.URL
	if len(r.Query) > 0 {
		requestURL += "?" + r.Query.Encode()
	}
	method := r.Method
	if method == "" {
		method = fasthttp.MethodGet
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	switch {
	case r.Form != nil:
		req.Header.SetContentType("application/x-www-form-urlencoded")
		req.SetBodyString(r.Form.Encode())
	case r.Body != nil:
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return nil, t.fail(r, 0, "", fmt.Errorf("encode request body: %w", err))
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline := time.Now().Add(t.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	started := time.Now()
	err := t.client.DoDeadline(req, resp, deadline)
	metrics.UpstreamLatency.WithLabelValues(string(t.provider)).Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(string(t.provider), "transport_error").Inc()
		t.logger.Warn("Upstream request failed", zap.String("operation", r.Operation), zap.String("url", r.URL), zap.Error(err))
		return nil, t.fail(r, 0, "", err)
	}

	body := append([]byte(nil), resp.Body()...)
	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		metrics.UpstreamRequests.WithLabelValues(string(t.provider), "http_error").Inc()
		t.logger.Warn("Upstream request returned non-2xx status",
			zap.String("operation", r.Operation),
			zap.String("url", r.URL),
			zap.Int("statusCode", status),
			zap.ByteString("responseBody", truncate(body, 512)),
		)
		return nil, t.fail(r, status, string(body), nil)
	}

	metrics.UpstreamRequests.WithLabelValues(string(t.provider), "ok").Inc()
	t.logger.Debug("Upstream request succeeded", zap.String("operation", r.Operation), zap.Int("bytes", len(body)))
	return body, nil
}

// DoJSON executes req and decodes the 2xx body into out.
func (t *Transport) DoJSON(ctx context.Context, r Request, out any) error {
	body, err := t.Do(ctx, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return t.fail(r, 0, string(truncate(body, 512)), fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (t *Transport) fail(r Request, status int, body string, err error) *entity.UpstreamError {
	return &entity.UpstreamError{
		Provider:   t.provider,
		Operation:  r.Operation,
		StatusCode: status,
		Body:       body,
		Err:        err,
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
