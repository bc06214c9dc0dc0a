// Package wait polls a condition on a fixed interval until it holds or a deadline passes
package wait

import (
	"context"
	"fmt"
	"time"
)

// Defaults used when an Options field is left zero
const (
	DefaultTimeout  = 5 * time.Second
	DefaultInterval = 200 * time.Millisecond
)

// Probe reports whether the awaited condition holds. A non-nil error aborts
// the wait immediately.
type Probe func(ctx context.Context) (bool, error)

// Options controls a single wait
type Options struct {
	// TimeoutMessage is carried by the TimeoutError when the deadline passes
	TimeoutMessage string

	// Timeout is the total time allowed for the condition to hold
	Timeout time.Duration

	// Interval is the delay between probes
	Interval time.Duration

	// PostSettle is slept after the condition holds, letting animations finish
	PostSettle time.Duration
}

// Validate checks the options for negative durations
func (o Options) Validate() error {
	if o.Timeout < 0 {
		return fmt.Errorf("wait timeout must not be negative: %s", o.Timeout)
	}
	if o.Interval < 0 {
		return fmt.Errorf("wait interval must not be negative: %s", o.Interval)
	}
	if o.PostSettle < 0 {
		return fmt.Errorf("wait post settle must not be negative: %s", o.PostSettle)
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Interval == 0 {
		o.Interval = DefaultInterval
	}
	if o.TimeoutMessage == "" {
		o.TimeoutMessage = "timed out waiting for condition"
	}
	return o
}

// TimeoutError is returned when the condition did not hold before the deadline
type TimeoutError struct {
	Message  string
	Timeout  time.Duration
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s (after %s, %d attempts)", e.Message, e.Timeout, e.Attempts)
}

// Until probes immediately and then on every interval tick until the probe
// reports true, the probe fails, the timeout elapses or ctx is done.
func Until(ctx context.Context, probe Probe, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	opts = opts.withDefaults()

	deadline := time.NewTimer(opts.Timeout)
	defer deadline.Stop()

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	attempts := 0
	for {
		attempts++
		ok, err := probe(ctx)
		if err != nil {
			return err
		}
		if ok {
			return Sleep(ctx, opts.PostSettle)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return &TimeoutError{
				Message:  opts.TimeoutMessage,
				Timeout:  opts.Timeout,
				Attempts: attempts,
			}
		case <-ticker.C:
		}
	}
}

// Sleep pauses for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
