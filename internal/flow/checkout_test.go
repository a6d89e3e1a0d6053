package flow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckout_ConfirmBookingNavigatesToPayment(t *testing.T) {
	c := NewCheckout(Config{ConfirmDelay: 20 * time.Millisecond})

	start := time.Now()
	o := c.ConfirmBooking(context.Background(), "mentee-1:slot-1", func(ctx context.Context) (string, error) {
		return "booking-1", nil
	})

	require.True(t, o.OK())
	assert.Equal(t, StepBooking, o.Step)
	assert.Equal(t, "booking-1", o.ResourceID)
	assert.Equal(t, "/payment/booking-1", o.Next)
	assert.False(t, o.Joined)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, 0, c.InFlight())
}

func TestCheckout_ConfirmPaymentNavigatesToSuccess(t *testing.T) {
	c := NewCheckout(Config{})

	o := c.ConfirmPayment(context.Background(), "booking-1", func(ctx context.Context) (string, error) {
		return "payment-1", nil
	})

	require.True(t, o.OK())
	assert.Equal(t, SuccessPath, o.Next)
	assert.Equal(t, "payment-1", o.ResourceID)
}

func TestCheckout_RepeatedConfirmRunsTaskOnce(t *testing.T) {
	c := NewCheckout(Config{})

	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	task := func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		return "payment-1", nil
	}

	const clicks = 5
	outcomes := make([]Outcome, clicks)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		outcomes[0] = c.ConfirmPayment(context.Background(), "booking-1", task)
	}()
	<-started

	for i := 1; i < clicks; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = c.ConfirmPayment(context.Background(), "booking-1", task)
		}(i)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	leaders := 0
	for _, o := range outcomes {
		require.True(t, o.OK())
		assert.Equal(t, SuccessPath, o.Next)
		assert.Equal(t, "payment-1", o.ResourceID)
		if !o.Joined {
			leaders++
		}
	}
	assert.Equal(t, 1, leaders)
}

func TestCheckout_RepeatAfterSuccessReturnsRememberedOutcome(t *testing.T) {
	c := NewCheckout(Config{})
	var calls int32
	task := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "booking-1", nil
	}

	first := c.ConfirmBooking(context.Background(), "k", task)
	second := c.ConfirmBooking(context.Background(), "k", task)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, first.Next, second.Next)
	assert.True(t, second.Joined)

	c.Forget(StepBooking, "k")
	c.ConfirmBooking(context.Background(), "k", task)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCheckout_FailureIsReportedAndNotRemembered(t *testing.T) {
	c := NewCheckout(Config{})
	declined := errors.New("declined")
	var calls int32
	task := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", declined
	}

	o := c.ConfirmPayment(context.Background(), "booking-1", task)
	assert.Equal(t, Failed, o.Status)
	assert.ErrorIs(t, o.Err, declined)
	assert.Empty(t, o.Next)

	c.ConfirmPayment(context.Background(), "booking-1", task)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCheckout_NavigatingAwayCancelsTask(t *testing.T) {
	c := NewCheckout(Config{})
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	taskCancelled := make(chan struct{})
	go func() {
		<-started
		cancel()
	}()

	o := c.ConfirmPayment(ctx, "booking-1", func(taskCtx context.Context) (string, error) {
		close(started)
		<-taskCtx.Done()
		close(taskCancelled)
		return "", taskCtx.Err()
	})

	assert.Equal(t, Cancelled, o.Status)
	assert.ErrorIs(t, o.Err, context.Canceled)

	select {
	case <-taskCancelled:
	case <-time.After(time.Second):
		t.Fatal("task was not cancelled")
	}
}

func TestCheckout_CancelDuringDelaySkipsTask(t *testing.T) {
	c := NewCheckout(Config{ConfirmDelay: time.Hour})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	var calls int32
	o := c.ConfirmBooking(ctx, "k", func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "booking-1", nil
	})

	assert.Equal(t, Cancelled, o.Status)
	require.Eventually(t, func() bool { return c.InFlight() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestCheckout_OneWaiterLeavingKeepsTaskForOthers(t *testing.T) {
	c := NewCheckout(Config{})

	started := make(chan struct{})
	release := make(chan struct{})
	task := func(ctx context.Context) (string, error) {
		close(started)
		select {
		case <-release:
			return "payment-1", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	stayed := make(chan Outcome, 1)
	go func() {
		stayed <- c.ConfirmPayment(context.Background(), "booking-1", task)
	}()
	<-started

	leaveCtx, leave := context.WithCancel(context.Background())
	left := make(chan Outcome, 1)
	go func() {
		left <- c.ConfirmPayment(leaveCtx, "booking-1", task)
	}()
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		f, ok := c.flights[flightKey(StepPayment, "booking-1")]
		return ok && f.waiters == 2
	}, time.Second, time.Millisecond)

	leave()
	assert.Equal(t, Cancelled, (<-left).Status)

	close(release)
	o := <-stayed
	assert.True(t, o.OK())
	assert.Equal(t, SuccessPath, o.Next)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "succeeded", Succeeded.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "cancelled", Cancelled.String())
}
