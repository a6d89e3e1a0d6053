package flow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// ErrCardDeclined is returned when the gateway refuses a charge
var ErrCardDeclined = errors.New("card declined")

// ChargeRequest describes one charge
type ChargeRequest struct {
	BookingID      string
	AmountCents    int64
	Currency       string
	CardToken      string
	IdempotencyKey string
}

// Charge is an accepted charge
type Charge struct {
	Reference string
	ChargedAt time.Time
}

// PaymentGateway charges a card for a booking
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*Charge, error)
}

// SimulatedGateway accepts every charge after a fixed delay, except those
// made with the decline token. Charges with a repeated idempotency key
// return the original charge.
type SimulatedGateway struct {
	delay        time.Duration
	declineToken string
	charges      *gocache.Cache
	now          func() time.Time
}

// NewSimulatedGateway creates a SimulatedGateway
func NewSimulatedGateway(delay time.Duration, declineToken string) *SimulatedGateway {
	return &SimulatedGateway{
		delay:        delay,
		declineToken: declineToken,
		charges:      gocache.New(24*time.Hour, time.Hour),
		now:          time.Now,
	}
}

// Charge waits for the processing delay and settles the charge
func (g *SimulatedGateway) Charge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("invalid amount %d", req.AmountCents)
	}
	if req.IdempotencyKey != "" {
		if v, ok := g.charges.Get(req.IdempotencyKey); ok {
			return v.(*Charge), nil
		}
	}

	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if g.declineToken != "" && req.CardToken == g.declineToken {
		return nil, fmt.Errorf("booking %s: %w", req.BookingID, ErrCardDeclined)
	}

	charge := &Charge{
		Reference: "sim_" + uuid.NewString(),
		ChargedAt: g.now(),
	}
	if req.IdempotencyKey != "" {
		g.charges.SetDefault(req.IdempotencyKey, charge)
	}
	return charge, nil
}
