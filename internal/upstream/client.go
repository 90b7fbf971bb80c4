// Package upstream is the client for the third-party risk-intelligence API.
//
// Two operations are exposed: Register (POST {base}/entities) announces an
// address to the provider, and Fetch (GET {base}/entities/{address}) returns
// its current verdict. Both authenticate with the "Token" header, run under a
// bounded timeout, cap the response size and never retry. Response bodies are
// handed back verbatim so the HTTP layer can relay them unchanged.
package upstream

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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-risk-gateway/internal/config"
)

const (
	opRegister = "register"
	opFetch    = "fetch"

	defaultTimeout      = 10 * time.Second
	defaultMaxBodyBytes = 5 << 20

	// maxErrorBody bounds the copy kept on Rejected errors.
	maxErrorBody = 4 << 10
)

// Result is a successful upstream response.
type Result struct {
	Body    json.RawMessage // upstream body, unmodified
	Address string          // "address" field of Body, if present
	Risk    string          // "risk" field of Body, if present
	Status  int
}

// Client talks to the risk API. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	maxBody int64
	http    *http.Client
}

// New builds a Client from cfg. The transport is instrumented with otelhttp
// so outbound calls join the caller's trace.
func New(cfg config.UpstreamConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewWithHTTPClient(cfg, &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
}

// NewWithHTTPClient is like New but uses hc as-is.
func NewWithHTTPClient(cfg config.UpstreamConfig, hc *http.Client) *Client {
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		maxBody: maxBody,
		http:    hc,
	}
}

// Register announces address to the provider. The call is forwarded on every
// invocation; the provider treats repeats as harmless.
func (c *Client) Register(ctx context.Context, address string) (*Result, error) {
	body, err := json.Marshal(struct {
		Address string `json:"address"`
	}{Address: address})
	if err != nil {
		return nil, &Error{Kind: KindBadResponse, Op: opRegister, Err: err}
	}
	return c.do(ctx, opRegister, http.MethodPost, c.baseURL+"/entities", body, address)
}

// Fetch returns the provider's current verdict for address.
func (c *Client) Fetch(ctx context.Context, address string) (*Result, error) {
	endpoint := c.baseURL + "/entities/" + url.PathEscape(address)
	return c.do(ctx, opFetch, http.MethodGet, endpoint, nil, address)
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, body []byte, address string) (res *Result, err error) {
	tr := otel.Tracer("upstream/Client")
	ctx, span := tr.Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("entity.address", address)),
	)
	start := time.Now()
	defer func() {
		observe(op, time.Since(start).Seconds(), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(KindOf(err)))
		}
		span.End()
	}()

	if c.apiKey == "" {
		return nil, &Error{Kind: KindUnauthorized, Op: op, Err: ErrMissingCredential}
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, rd)
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Token", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Op: op, Err: err}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	// One byte past the cap tells us the body was truncated.
	raw, rerr := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &Error{Kind: KindUnauthorized, Op: op, Status: resp.StatusCode, Body: clip(raw, maxErrorBody)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &Error{Kind: KindRejected, Op: op, Status: resp.StatusCode, Body: clip(raw, maxErrorBody)}
	}

	if rerr != nil {
		var ne net.Error
		if errors.Is(rerr, context.DeadlineExceeded) || errors.Is(rerr, context.Canceled) || (errors.As(rerr, &ne) && ne.Timeout()) {
			return nil, &Error{Kind: KindUnavailable, Op: op, Status: resp.StatusCode, Err: rerr}
		}
		return nil, &Error{Kind: KindBadResponse, Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", rerr)}
	}
	if int64(len(raw)) > c.maxBody {
		return nil, &Error{Kind: KindBadResponse, Op: op, Status: resp.StatusCode, Err: fmt.Errorf("response exceeds %d bytes", c.maxBody)}
	}
	if !json.Valid(raw) {
		return nil, &Error{Kind: KindBadResponse, Op: op, Status: resp.StatusCode, Body: clip(raw, maxErrorBody), Err: errors.New("response is not valid JSON")}
	}

	res = &Result{Body: json.RawMessage(raw), Status: resp.StatusCode}
	var fields struct {
		Address string `json:"address"`
		Risk    string `json:"risk"`
	}
	// Non-object bodies are still relayed; the fields just stay empty.
	if json.Unmarshal(raw, &fields) == nil {
		res.Address = fields.Address
		res.Risk = fields.Risk
	}
	return res, nil
}

func clip(b []byte, n int) []byte {
	if len(b) > n {
		b = b[:n]
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
