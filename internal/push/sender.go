package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"golang.org/x/time/rate"

	"github.com/civicprep/civicprep/internal/remote"
	"github.com/civicprep/civicprep/internal/retry"
)

// Sender delivers one payload to one subscription.
type Sender interface {
	Send(ctx context.Context, sub remote.Subscription, p Payload) error
}

// Config holds the VAPID identity and delivery limits.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	// Subject is a mailto: or https: contact for the push service.
	Subject string
	// TTL is how long, in seconds, the push service keeps an undelivered message.
	TTL int
	// RatePerSecond caps outgoing sends. Zero means unlimited.
	RatePerSecond float64
	HTTPClient    *http.Client
}

// ErrNotConfigured is returned when the VAPID keys are missing.
var ErrNotConfigured = errors.New("push: VAPID keys not configured")

// WebPush sends notifications through the browser push services.
type WebPush struct {
	cfg     Config
	limiter *rate.Limiter
}

// NewWebPush validates cfg and returns a Sender.
func NewWebPush(cfg Config) (*WebPush, error) {
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		return nil, ErrNotConfigured
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * 60 * 60
	}
	limit := rate.Inf
	burst := 1
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
		burst = max(1, int(cfg.RatePerSecond))
	}
	return &WebPush{cfg: cfg, limiter: rate.NewLimiter(limit, burst)}, nil
}

// Send encrypts p for sub and posts it. Non-2xx responses come back as
// *retry.StatusError; IsGone reports expired subscriptions.
func (w *WebPush) Send(ctx context.Context, sub remote.Subscription, p Payload) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	opts := &webpush.Options{
		Subscriber:      w.cfg.Subject,
		VAPIDPublicKey:  w.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: w.cfg.VAPIDPrivateKey,
		TTL:             w.cfg.TTL,
		Urgency:         webpush.UrgencyNormal,
		Topic:           p.Tag,
	}
	if w.cfg.HTTPClient != nil {
		opts.HTTPClient = w.cfg.HTTPClient
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, opts)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &retry.StatusError{Code: resp.StatusCode, Err: fmt.Errorf("push service: %s", msg)}
	}
	return nil
}

// IsGone reports whether err means the subscription no longer exists.
func IsGone(err error) bool {
	var se *retry.StatusError
	return errors.As(err, &se) && (se.Code == http.StatusGone || se.Code == http.StatusNotFound)
}

// GenerateKeys creates a new VAPID key pair.
func GenerateKeys() (publicKey, privateKey string, err error) {
	privateKey, publicKey, err = webpush.GenerateVAPIDKeys()
	if err != nil {
		return "", "", fmt.Errorf("generate VAPID keys: %w", err)
	}
	return publicKey, privateKey, nil
}
