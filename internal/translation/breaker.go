package translation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerTranslator stops calling a failing backend for a cooldown period.
// Invalid model output and empty input do not count as backend failures.
type BreakerTranslator struct {
	next Translator
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerTranslator trips after the given number of consecutive failures
// and stays open for cooldown.
func NewBreakerTranslator(next Translator, failures uint32, cooldown time.Duration) *BreakerTranslator {
	if failures == 0 {
		failures = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrInvalidOutput) || errors.Is(err, ErrEmptyText)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fmt.Printf("Translator %s circuit: %s -> %s\n", name, from, to)
		},
	}

	return &BreakerTranslator{
		next: next,
		cb:   gobreaker.NewCircuitBreaker(settings),
	}
}

// Translate forwards to the wrapped backend unless the circuit is open
func (b *BreakerTranslator) Translate(ctx context.Context, text, hint string) (*Response, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Translate(ctx, text, hint)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return nil, err
	}
	return out.(*Response), nil
}

// Name returns the wrapped backend name
func (b *BreakerTranslator) Name() string {
	return b.next.Name()
}

// State returns the current circuit state
func (b *BreakerTranslator) State() gobreaker.State {
	return b.cb.State()
}
