package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const userAgent = "weather-cli/1.0"

// HTTPClientConfig bundles the shared HTTP client and an upstream base URL.
type HTTPClientConfig struct {
	Client  *http.Client
	BaseURL string
}

var (
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// upstream is a resty client guarded by a circuit breaker. It never retries:
// a failed call is reported to the caller, who decides whether to ask again.
type upstream struct {
	client  *resty.Client
	circuit *gobreaker.CircuitBreaker
}

func newUpstream(name string, cfg HTTPClientConfig, logger *zap.Logger) upstream {
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{}
	}

	client := resty.NewWithClient(hc).
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)

	// Query strings carry API keys, so only the path is logged.
	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("upstream response",
			zap.String("upstream", name),
			zap.String("method", resp.Request.Method),
			zap.String("path", requestPath(resp)),
			zap.Int("status", resp.StatusCode()),
			zap.Duration("took", resp.Time()),
		)
		return nil
	})

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("upstream", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return upstream{client: client, circuit: cb}
}

// requestPath returns the URL path of the request behind resp, without
// scheme, host or query.
func requestPath(resp *resty.Response) string {
	if raw := resp.Request.RawRequest; raw != nil && raw.URL != nil {
		return raw.URL.Path
	}
	u, err := url.Parse(resp.Request.URL)
	if err != nil {
		return ""
	}
	return u.Path
}

// get issues one GET through the circuit breaker. Transport errors and 5xx
// responses count as breaker failures; any other response is returned for
// the caller to inspect.
func (u upstream) get(ctx context.Context, path string, params map[string]string) (*resty.Response, error) {
	if u.client == nil {
		return nil, errNoHTTPClient
	}

	result, err := u.circuit.Execute(func() (interface{}, error) {
		resp, err := u.client.R().
			SetContext(ctx).
			SetQueryParams(params).
			Get(path)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= 500 {
			return nil, fmt.Errorf("%w: %s", errServerError, resp.Status())
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*resty.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

// statusError describes a non-2xx response, using the API's own message when
// the body carries one (OpenWeather: "message", OpenCage: "status.message").
func statusError(resp *resty.Response) error {
	var body struct {
		Message string `json:"message"`
		Status  struct {
			Message string `json:"message"`
		} `json:"status"`
	}

	msg := ""
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		msg = body.Message
		if msg == "" {
			msg = body.Status.Message
		}
	}
	if msg == "" {
		return fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode())
	}
	return fmt.Errorf("%w: %d: %s", errUnexpected, resp.StatusCode(), msg)
}
