package notification

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	HeaderEvent     = "X-Portal-Event"
	HeaderSignature = "X-Portal-Signature"
)

// WebhookClient posts every event to an external endpoint. The body is
// signed with HMAC-SHA256 when a secret is configured.
type WebhookClient struct {
	url        string
	secret     []byte
	httpClient *http.Client
}

// NewWebhookClient returns nil when url is empty.
func NewWebhookClient(url, secret string) *WebhookClient {
	if url == "" {
		return nil
	}
	return &WebhookClient{
		url:    url,
		secret: []byte(secret),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Sign returns the signature header value for body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func (w *WebhookClient) Post(ctx context.Context, e Event) error {
	if w == nil {
		return nil
	}

	body, err := json.Marshal(e)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEvent, string(e.Kind))
	if len(w.secret) > 0 {
		req.Header.Set(HeaderSignature, Sign(w.secret, body))
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf(
			"webhook error: status=%d body=%s",
			resp.StatusCode,
			string(b),
		)
	}
	return nil
}
