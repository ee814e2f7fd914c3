package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/hostagent/internal/infrastructure/logging"
	"github.com/GriffinCanCode/hostagent/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/hostagent/internal/shared/errs"
)

// Config configures a Client
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	UserAgent    string
	Breaker      resilience.Settings
	Logger       *logging.Logger
}

// DefaultConfig targets an agent on the local host
func DefaultConfig() Config {
	return Config{
		BaseURL:      "http://127.0.0.1:4201",
		Timeout:      30 * time.Second,
		RetryMax:     3,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,
		UserAgent:    "hostctl/1.0",
	}
}

// Client talks to a running agent over its HTTP API
type Client struct {
	resty   *resty.Client
	breaker *resilience.Breaker
	logger  *logging.Logger
}

// ResponseError is a failure answered by the agent itself
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	return e.Message
}

// New creates a Client
func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid agent URL %q: %w", cfg.BaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid agent URL %q: want http(s)://host[:port]", cfg.BaseURL)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.Named("client")

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = checkRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = leveledLogger{logger}

	restyClient := resty.NewWithClient(retryClient.StandardClient())
	restyClient.
		SetBaseURL(u.String()).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetLogger(logger.Sugar())
	if cfg.Timeout > 0 {
		restyClient.SetTimeout(cfg.Timeout)
	}

	settings := cfg.Breaker
	if settings.IsFailure == nil {
		settings.IsFailure = isRemoteFailure
	}
	if settings.OnStateChange == nil {
		settings.OnStateChange = func(name string, from, to resilience.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		}
	}

	return &Client{
		resty:   restyClient,
		breaker: resilience.New(u.Host, settings),
		logger:  logger,
	}, nil
}

// BreakerState reports the state of the circuit guarding the agent
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// envelope is the wire shape of every data route
type envelope[T any] struct {
	Success bool      `json:"success"`
	Data    T         `json:"data"`
	Error   string    `json:"error"`
	Kind    errs.Kind `json:"kind"`
}

// call performs one enveloped request and returns its data
func call[T any](ctx context.Context, c *Client, method, route string, body interface{}, query map[string]string) (T, error) {
	return resilience.Call(c.breaker, func() (T, error) {
		var env envelope[T]
		req := c.resty.R().
			SetContext(ctx).
			SetResult(&env).
			SetError(&env)
		if body != nil {
			req.SetBody(body)
		}
		if len(query) > 0 {
			req.SetQueryParams(query)
		}

		resp, err := req.Execute(method, route)
		if err != nil {
			return env.Data, fmt.Errorf("%s %s: %w", method, route, err)
		}
		if resp.IsError() || !env.Success {
			return env.Data, responseError(method, route, resp.StatusCode(), env.Kind, env.Error, resp.Status())
		}
		return env.Data, nil
	})
}

// stream opens a raw response body; the caller closes it
func (c *Client) stream(ctx context.Context, method, route string, body interface{}) (io.ReadCloser, error) {
	return resilience.Call(c.breaker, func() (io.ReadCloser, error) {
		resp, err := c.resty.R().
			SetContext(ctx).
			SetBody(body).
			SetDoNotParseResponse(true).
			Execute(method, route)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, route, err)
		}

		raw := resp.RawBody()
		if !resp.IsError() {
			return raw, nil
		}
		defer raw.Close()

		var env envelope[struct{}]
		payload, readErr := io.ReadAll(io.LimitReader(raw, 1<<20))
		if readErr == nil {
			_ = sonic.Unmarshal(payload, &env)
		}
		return nil, responseError(method, route, resp.StatusCode(), env.Kind, env.Error, resp.Status())
	})
}

// responseError classifies a failure answered by the agent. Bodies without
// an envelope are classified by status alone.
func responseError(method, route string, status int, kind errs.Kind, msg, statusText string) error {
	if msg == "" {
		msg = statusText
		kind = kindForStatus(status)
	}
	return errs.New(kind, method+" "+route, "", &ResponseError{StatusCode: status, Message: msg})
}

func kindForStatus(status int) errs.Kind {
	switch status {
	case http.StatusNotFound:
		return errs.KindNotFound
	case http.StatusForbidden, http.StatusUnauthorized:
		return errs.KindPermissionDenied
	case http.StatusBadRequest:
		return errs.KindInvalidArgument
	case http.StatusUnprocessableEntity:
		return errs.KindInvalidFormat
	default:
		return errs.KindOther
	}
}

// checkRetry retries transport failures and the statuses that mean the
// request was never served
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err != nil || resp == nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}

// isRemoteFailure counts transport errors and server faults against the
// agent; classified answers such as not_found do not trip the breaker
func isRemoteFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var re *ResponseError
	if errors.As(err, &re) {
		return re.StatusCode >= http.StatusInternalServerError
	}
	return true
}
