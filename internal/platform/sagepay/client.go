package sagepay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/sagepay/pkg/config"
	"github.com/fatflowers/sagepay/pkg/logctx"
)

// maxReplySize bounds how much of a SagePay reply is read.
const maxReplySize = 64 << 10

type Options struct {
	Vendor         string
	Profile        string
	Protocol       string
	RegisterURL    string
	RemoveTokenURL string
	// NotificationURL is where SagePay posts the transaction outcome.
	NotificationURL string
	Timeout         time.Duration
}

// Client talks to the SagePay Server integration endpoints.
type Client struct {
	opts Options
	http *http.Client
	log  *zap.SugaredLogger
}

// NewClient returns a client. A zero Timeout falls back to 30s; the
// underlying transport never waits forever.
func NewClient(opts Options, httpClient *http.Client, log *zap.SugaredLogger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = opts.Timeout
	}
	return &Client{opts: opts, http: httpClient, log: log}
}

func NewClientFromConfig(cfg *config.Config, log *zap.SugaredLogger) *Client {
	sp := cfg.SagePay
	return NewClient(Options{
		Vendor:          sp.Vendor,
		Profile:         sp.Profile,
		Protocol:        sp.Protocol,
		RegisterURL:     sp.RegisterURL,
		RemoveTokenURL:  sp.RemoveTokenURL,
		NotificationURL: sp.NotificationURL,
		Timeout:         sp.Timeout,
	}, nil, log)
}

func (c *Client) Vendor() string { return c.opts.Vendor }

// post sends form to endpoint and decodes the Key=Value reply.
func (c *Client) post(ctx context.Context, endpoint string, fields Fields) (Fields, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(fields.Form().Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	lg := logctx.FromCtx(ctx, c.log)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		lg.Warnw("sagepay_post_failed", "endpoint", endpoint, "err", err)
		return nil, fmt.Errorf("post %s: %w: %w", endpoint, ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return nil, fmt.Errorf("read reply from %s: %w: %w", endpoint, ErrGatewayUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		lg.Warnw("sagepay_post_bad_status", "endpoint", endpoint, "http_status", resp.StatusCode)
		return nil, fmt.Errorf("post %s: %w: http status %d", endpoint, ErrGatewayUnreachable, resp.StatusCode)
	}

	reply, err := Decode(string(body))
	if err != nil {
		lg.Warnw("sagepay_reply_malformed", "endpoint", endpoint, "err", err)
		return nil, err
	}
	if reply.Get(FieldStatus) == "" {
		return nil, fmt.Errorf("%w: missing Status", ErrMalformedResponse)
	}
	lg.Debugw("sagepay_post_done",
		"endpoint", endpoint,
		"status", reply.Get(FieldStatus),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return reply, nil
}

var Module = fx.Options(
	fx.Provide(NewClientFromConfig),
)
