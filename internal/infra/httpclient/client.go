package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dronefleet/internal/logger"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -source=client.go -destination=../../../test/unit/doubles/infra/httpclient/client_mock.go -package=httpclient

type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}

type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Token  string
}

type Response struct {
	StatusCode int
	Body       []byte
}

// Decode unmarshals the body. Numbers decode as json.Number.
func (r Response) Decode(placeholder any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	decoder := json.NewDecoder(bytes.NewReader(r.Body))
	decoder.UseNumber()
	if err := decoder.Decode(placeholder); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	Logger     logger.Logger
	HTTPClient *http.Client
}

const DefaultTimeout = 10 * time.Second

var _ Client = (*StandardClient)(nil)

type StandardClient struct {
	baseURL    *url.URL
	timeout    time.Duration
	userAgent  string
	logger     logger.Logger
	httpClient *http.Client
	propagator propagation.TextMapPropagator
}

func NewClient(opts Options) (*StandardClient, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("base url is required")
	}
	baseURL, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewDefaultLogger()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}

	initMetrics()

	return &StandardClient{
		baseURL:    baseURL,
		timeout:    opts.Timeout,
		userAgent:  opts.UserAgent,
		logger:     opts.Logger,
		httpClient: opts.HTTPClient,
		propagator: b3.New(),
	}, nil
}

// Do sends one request under its own deadline. Statuses outside 2xx come back
// as *APIError, requests without a response as *NetworkError, and exceeded
// deadlines as ErrTimeout.
func (c *StandardClient) Do(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.resolve(req)
	endpoint := normalizeEndpoint(req.Path)

	ctx, span := otel.Tracer("dronefleet").Start(ctx, "http.client.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", target),
			attribute.String("http.endpoint", endpoint),
			attribute.String("component", "http-client"),
		),
	)
	defer span.End()

	httpReq, err := c.newHTTPRequest(ctx, req, target)
	if err != nil {
		span.RecordError(err)
		return Response{}, err
	}

	c.logRequest(httpReq, req)
	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		recordRequest(ctx, req.Method, endpoint, 0, time.Since(start))
		err = c.transportError(ctx, req.Method, target, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Errorw("Request Error", "method", req.Method, "url", target, "error", err.Error())
		return Response{}, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		err = c.transportError(ctx, req.Method, target, err)
		span.RecordError(err)
		return Response{}, err
	}

	recordRequest(ctx, req.Method, endpoint, httpResp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int("http.status_code", httpResp.StatusCode))
	resp := Response{StatusCode: httpResp.StatusCode, Body: body}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		span.SetStatus(codes.Error, http.StatusText(httpResp.StatusCode))
		c.logger.Warnw("Response Error", "method", req.Method, "url", target, "status", httpResp.StatusCode)
		return resp, &APIError{Method: req.Method, URL: target, StatusCode: httpResp.StatusCode, Body: body}
	}

	c.logger.Debugw("Response", "status", httpResp.StatusCode, "body", string(body))
	return resp, nil
}

func (c *StandardClient) resolve(req Request) string {
	target := c.baseURL.JoinPath(strings.TrimPrefix(req.Path, "/"))
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}
	return target.String()
}

func (c *StandardClient) newHTTPRequest(ctx context.Context, req Request, target string) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	c.propagator.Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	return httpReq, nil
}

func (c *StandardClient) transportError(ctx context.Context, method, target string, err error) error {
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %s %s after %s", ErrTimeout, method, target, c.timeout)
	}
	return &NetworkError{Method: method, URL: target, Err: err}
}

// logRequest mirrors the request interceptor: credentials never reach the log.
func (c *StandardClient) logRequest(httpReq *http.Request, req Request) {
	c.logger.Infow("Starting Request",
		"method", httpReq.Method,
		"url", httpReq.URL.String(),
		"request_id", httpReq.Header.Get("X-Request-ID"),
		"authenticated", req.Token != "",
	)
}
