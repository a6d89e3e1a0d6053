// Package trigger fires fire-and-forget webhooks for domain events.
// Delivery of the notification itself is the receiver's job.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mentormatch/mentormatch-api/pkg/circuitbreaker"
	"github.com/mentormatch/mentormatch-api/pkg/httpclient"
	"github.com/mentormatch/mentormatch-api/pkg/logger"
	"github.com/mentormatch/mentormatch-api/pkg/metrics"
	"github.com/mentormatch/mentormatch-api/pkg/retry"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Event names a domain event
type Event string

const (
	WelcomeEmail     Event = "welcome_email"
	BookingConfirmed Event = "booking_confirmed"
	BookingCancelled Event = "booking_cancelled"
	ReviewCreated    Event = "review_created"
)

// Payload is the JSON body posted to a trigger URL
type Payload struct {
	Event      Event     `json:"event"`
	RecordID   string    `json:"record_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

// Notifier posts events to their configured URLs. Each event has its own
// circuit breaker so one receiver being down does not slow the others.
type Notifier struct {
	client   httpclient.Client
	urls     map[Event]string
	breakers map[Event]*gobreaker.CircuitBreaker
	retry    retry.Config
	timeout  time.Duration
	now      func() time.Time
}

// NewNotifier creates a Notifier; events without a URL are skipped
func NewNotifier(client httpclient.Client, urls map[Event]string) *Notifier {
	breakers := make(map[Event]*gobreaker.CircuitBreaker, len(urls))
	for event, url := range urls {
		if url != "" {
			breakers[event] = circuitbreaker.New(circuitbreaker.DefaultConfig("trigger_" + string(event)))
		}
	}
	return &Notifier{
		client:   client,
		urls:     urls,
		breakers: breakers,
		retry:    retry.WebhookConfig(),
		timeout:  30 * time.Second,
		now:      time.Now,
	}
}

// Enabled reports whether event has a URL configured
func (n *Notifier) Enabled(event Event) bool {
	return n != nil && n.urls[event] != ""
}

// FireAsync posts the event in the background. Failures are logged and
// counted but never reach the caller.
func (n *Notifier) FireAsync(ctx context.Context, event Event, recordID string, data any) {
	if !n.Enabled(event) {
		return
	}

	// detach from the request so the call survives the response
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	go func() {
		defer cancel()
		_ = n.Fire(bg, event, recordID, data)
	}()
}

// Fire posts the event and waits for the outcome, retrying transient failures
func (n *Notifier) Fire(ctx context.Context, event Event, recordID string, data any) error {
	if !n.Enabled(event) {
		return nil
	}
	url := n.urls[event]
	payload := Payload{Event: event, RecordID: recordID, OccurredAt: n.now().UTC(), Data: data}
	start := time.Now()

	err := circuitbreaker.Run(n.breakers[event], func() error {
		return retry.Do(ctx, n.retry, "trigger_"+string(event), func() error {
			resp, err := httpclient.PostJSON(ctx, n.client, url, payload)
			if err != nil {
				return err
			}
			defer httpclient.Drain(resp)

			switch {
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return nil
			case resp.StatusCode >= 500 || resp.StatusCode == 429:
				return fmt.Errorf("trigger returned status %d", resp.StatusCode)
			default:
				return retry.Permanent(fmt.Errorf("trigger returned status %d", resp.StatusCode))
			}
		})
	})

	duration := metrics.MeasureDuration(start)
	status := "success"
	switch {
	case errors.Is(err, circuitbreaker.ErrOpen):
		status = "breaker_open"
	case err != nil:
		status = "error"
	}
	metrics.TriggerCalls.WithLabelValues(string(event), status).Inc()
	logger.LogAPICall(ctx, "trigger", string(event), status, duration,
		zap.String("record_id", recordID),
		zap.Error(err))

	return err
}
