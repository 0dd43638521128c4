package ipn

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/josh-kwaku/invoicing/internal/domain"
	"github.com/josh-kwaku/invoicing/internal/logging"
)

const verifyCommand = "_notify-validate"

type PayPalClientConfig struct {
	LiveURL    string
	SandboxURL string
	Timeout    time.Duration
	Version    string
}

// PayPalClient posts notifications back to PayPal for validation.
type PayPalClient struct {
	liveURL    string
	sandboxURL string
	userAgent  string
	httpClient *http.Client
}

func NewPayPalClient(cfg PayPalClientConfig) *PayPalClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DisableCompression = true
	transport.ForceAttemptHTTP2 = false
	transport.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}

	return &PayPalClient{
		liveURL:    cfg.LiveURL,
		sandboxURL: cfg.SandboxURL,
		userAgent:  "GetPaid/" + cfg.Version,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}
}

// Verify re-posts n with cmd=_notify-validate appended. Any transport error,
// a status of 300 or above, or a body without VERIFIED fails verification.
func (c *PayPalClient) Verify(ctx context.Context, n *Notification, sandbox bool) error {
	log := logging.FromContext(ctx)

	endpoint := c.liveURL
	if sandbox {
		endpoint = c.sandboxURL
	}

	payload := n.Clone()
	payload.Set("cmd", verifyCommand)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload.Encode()))
	if err != nil {
		return fmt.Errorf("Verify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	log.Info("validating paypal ipn", "sandbox", sandbox, "fields", n.Len())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("invalid response from paypal ipn", "error", err)
		return fmt.Errorf("Verify: send: %w: %w", domain.ErrVerificationFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("Verify: read body: %w: %w", domain.ErrVerificationFailed, err)
	}

	log.Info("paypal ipn response received",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode >= http.StatusMultipleChoices || !strings.Contains(string(body), "VERIFIED") {
		log.Warn("invalid response from paypal ipn", "status", resp.StatusCode, "body", truncate(string(body), 256))
		return fmt.Errorf("Verify: status %d: %w", resp.StatusCode, domain.ErrVerificationFailed)
	}

	log.Info("valid response from paypal ipn")
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
