// Package flow runs the booking and payment confirmation steps of checkout.
//
// Each step is a task keyed by the resource it confirms. Confirming the same
// key while its task is running joins that task instead of starting another,
// so a double submit charges once and navigates once. A caller that goes away
// (its context is cancelled) stops waiting; the task itself is cancelled when
// its last waiter leaves.
package flow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mentormatch/mentormatch-api/pkg/logger"
	"github.com/mentormatch/mentormatch-api/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Step identifies a checkout step
type Step string

const (
	StepBooking Step = "booking"
	StepPayment Step = "payment"
)

// SuccessPath is where a completed payment navigates
const SuccessPath = "/payment/success"

// PaymentPath is where a confirmed booking navigates
func PaymentPath(bookingID string) string {
	return "/payment/" + bookingID
}

// Status is the terminal state of a step
type Status int

const (
	Succeeded Status = iota
	Failed
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome is the completion of a step
type Outcome struct {
	Step       Step
	Status     Status
	ResourceID string
	// Next is the navigation target; set only when Status is Succeeded
	Next string
	Err  error
	// Joined is true when the caller attached to a task started by another confirm
	Joined bool
}

// OK reports whether the step succeeded
func (o Outcome) OK() bool {
	return o.Status == Succeeded
}

// Task performs a step and returns the id of the resource it produced
type Task func(ctx context.Context) (string, error)

// Config tunes the checkout
type Config struct {
	// ConfirmDelay is held before the booking task runs
	ConfirmDelay time.Duration
	// RememberFor keeps successful outcomes so late repeats get the same answer
	RememberFor time.Duration
}

type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	outcome Outcome
	waiters int
}

// Checkout deduplicates and runs checkout steps
type Checkout struct {
	cfg       Config
	mu        sync.Mutex
	flights   map[string]*flight
	completed *gocache.Cache
}

// NewCheckout creates a Checkout
func NewCheckout(cfg Config) *Checkout {
	if cfg.RememberFor <= 0 {
		cfg.RememberFor = time.Minute
	}
	return &Checkout{
		cfg:       cfg,
		flights:   make(map[string]*flight),
		completed: gocache.New(cfg.RememberFor, 2*cfg.RememberFor),
	}
}

// ConfirmBooking runs task once per key after the confirmation delay.
// On success the outcome navigates to the payment page of the created booking.
func (c *Checkout) ConfirmBooking(ctx context.Context, key string, task Task) Outcome {
	return c.run(ctx, StepBooking, key, c.cfg.ConfirmDelay, task, PaymentPath)
}

// ConfirmPayment runs task once per booking id.
// On success the outcome navigates to the success page.
func (c *Checkout) ConfirmPayment(ctx context.Context, bookingID string, task Task) Outcome {
	return c.run(ctx, StepPayment, bookingID, 0, task, func(string) string { return SuccessPath })
}

// InFlight returns the number of running tasks
func (c *Checkout) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.flights)
}

// Forget drops a remembered outcome so the key can run again
func (c *Checkout) Forget(step Step, key string) {
	c.completed.Delete(flightKey(step, key))
}

func flightKey(step Step, key string) string {
	return string(step) + ":" + key
}

func (c *Checkout) run(ctx context.Context, step Step, key string, delay time.Duration, task Task, next func(string) string) Outcome {
	fk := flightKey(step, key)

	c.mu.Lock()
	if v, ok := c.completed.Get(fk); ok {
		c.mu.Unlock()
		metrics.CheckoutDeduplicated.WithLabelValues(string(step)).Inc()
		o := v.(Outcome)
		o.Joined = true
		return o
	}

	f, joined := c.flights[fk]
	if joined && f.ctx.Err() != nil {
		joined = false
	}
	if joined {
		f.waiters++
		metrics.CheckoutDeduplicated.WithLabelValues(string(step)).Inc()
	} else {
		// The task outlives any single request; only the waiter count cancels it.
		taskCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: taskCtx, cancel: cancel, done: make(chan struct{}), waiters: 1}
		c.flights[fk] = f
		go c.execute(fk, f, step, delay, task, next)
	}
	c.mu.Unlock()

	select {
	case <-f.done:
		o := f.outcome
		o.Joined = joined
		return o
	case <-ctx.Done():
		c.mu.Lock()
		f.waiters--
		if f.waiters == 0 {
			f.cancel()
		}
		c.mu.Unlock()
		return Outcome{Step: step, Status: Cancelled, Err: ctx.Err(), Joined: joined}
	}
}

func (c *Checkout) execute(fk string, f *flight, step Step, delay time.Duration, task Task, next func(string) string) {
	defer f.cancel()

	outcome := Outcome{Step: step}
	id, err := runAfter(f.ctx, delay, task)
	switch {
	case err == nil:
		outcome.Status = Succeeded
		outcome.ResourceID = id
		outcome.Next = next(id)
	case f.ctx.Err() != nil || errors.Is(err, context.Canceled):
		outcome.Status = Cancelled
		outcome.Err = err
	default:
		outcome.Status = Failed
		outcome.Err = err
	}

	logger.Debug("Checkout step finished",
		zap.String("step", string(step)),
		zap.String("key", fk),
		zap.String("status", outcome.Status.String()),
		zap.Error(outcome.Err))

	c.mu.Lock()
	f.outcome = outcome
	if c.flights[fk] == f {
		delete(c.flights, fk)
	}
	if outcome.Status == Succeeded {
		c.completed.SetDefault(fk, outcome)
	}
	close(f.done)
	c.mu.Unlock()
}

func runAfter(ctx context.Context, delay time.Duration, task Task) (string, error) {
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return task(ctx)
}
