package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mkweon/rollcall/internal/metrics"
)

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 2 * time.Second
	attemptTimeout     = 10 * time.Second
)

// DingTalkSink posts messages to a DingTalk custom-robot webhook with
// the documented timestamp+sign query authentication.
type DingTalkSink struct {
	client      *http.Client
	webhookURL  string
	secret      string
	maxAttempts int
	backoff     time.Duration
	now         func() time.Time
}

func NewDingTalkSink(webhookURL, secret string) *DingTalkSink {
	return &DingTalkSink{
		client:      &http.Client{Timeout: attemptTimeout},
		webhookURL:  strings.TrimSpace(webhookURL),
		secret:      secret,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
		now:         time.Now,
	}
}

// Sign computes the DingTalk custom-robot signature for a millisecond
// timestamp: base64(HMAC-SHA256(secret, "<ts>\n<secret>")). The string
// to sign is literally timestamp+newline+secret per the platform
// contract; the returned value is not yet URL-encoded.
func Sign(secret string, tsMillis int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(tsMillis, 10) + "\n" + secret))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// SignedURL appends timestamp and sign query parameters to the webhook
// base URL.
func SignedURL(base, secret string, tsMillis int64) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "timestamp=" + strconv.FormatInt(tsMillis, 10) +
		"&sign=" + url.QueryEscape(Sign(secret, tsMillis))
}

// Send delivers the message with bounded retry: up to 3 attempts on
// transport errors and HTTP 429/500/502/503/504, backoff in between;
// every other failure is fatal on the first response.
func (s *DingTalkSink) Send(ctx context.Context, m Message) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		metrics.IncNotificationAttempt()
		retryable, err := s.post(ctx, m)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return fmt.Errorf("attempt %d: %w", attempt, err)
		}
		if attempt == s.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.backoff * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", s.maxAttempts, lastErr)
}

type robotResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func (s *DingTalkSink) post(ctx context.Context, m Message) (retryable bool, err error) {
	body, err := json.Marshal(markdownPayload(m))
	if err != nil {
		return false, fmt.Errorf("marshal payload: %w", err)
	}
	u := SignedURL(s.webhookURL, s.secret, s.now().UnixMilli())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		// network/TLS/timeout
		return true, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true, fmt.Errorf("webhook status %d", resp.StatusCode)
	default:
		return false, fmt.Errorf("webhook status %d", resp.StatusCode)
	}

	var rr robotResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	if rr.ErrCode != 0 {
		// e.g. bad signature; retrying cannot help
		return false, fmt.Errorf("robot errcode %d: %s", rr.ErrCode, rr.ErrMsg)
	}
	return false, nil
}

// markdownPayload renders the message as a DingTalk markdown card.
func markdownPayload(m Message) map[string]any {
	process := m.Process
	if process == "" {
		process = NoProcessLabel
	}
	var b strings.Builder
	fmt.Fprintf(&b, "### Checklist saved: %s\n\n", process)
	fmt.Fprintf(&b, "- mentions: %s\n", joinOrNone(m.AtNames))
	fmt.Fprintf(&b, "- newly finished: %s\n", joinOrNone(m.NewFinished))
	fmt.Fprintf(&b, "- newly unfinished: %s\n", joinOrNone(m.NewUnfinished))
	fmt.Fprintf(&b, "- finished: %s\n", joinOrNone(m.Finished))
	fmt.Fprintf(&b, "- unfinished: %s\n", joinOrNone(m.Unfinished))
	fmt.Fprintf(&b, "\n%s\n", m.GeneratedAt.Format("2006-01-02 15:04:05"))

	return map[string]any{
		"msgtype": "markdown",
		"markdown": map[string]any{
			"title": "Checklist saved: " + process,
			"text":  b.String(),
		},
		"at": map[string]any{
			"atMobiles": m.AtNames,
			"isAtAll":   false,
		},
	}
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "、")
}
