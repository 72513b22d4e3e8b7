// Package policy defines the retry policies accepted by Effect.Retry.
package policy

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var (
	_ Policy = Recurs{}
	_ Policy = Exponential{}
)

// Policy is a sealed interface for retry policies.
type Policy interface {
	policy()
}

// Recurs repeats a failed effect immediately, Times more times.
type Recurs struct {
	Times int
}

func (Recurs) policy() {}

func RecursOf(times int) Policy {
	return Recurs{Times: times}
}

// Exponential repeats a failed effect Times more times, waiting between
// attempts. Waits start at Initial and grow by Multiplier up to Max.
type Exponential struct {
	Times      int
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

func (Exponential) policy() {}

func ExponentialOf(times int, initial, max time.Duration) Policy {
	return Exponential{Times: times, Initial: initial, Max: max}
}

// Match dispatches p to the callback of its variant.
func Match[T any](
	p Policy,
	onRecurs func(Recurs) T,
	onExponential func(Exponential) T,
) T {
	switch p := p.(type) {
	case Recurs:
		return onRecurs(p)
	case Exponential:
		return onExponential(p)
	default:
		panic(fmt.Sprintf("exhaustive match fallback, policy type: %T", p))
	}
}

// Delays returns one wait per retry. Its length is the number of retries.
// The waits are fixed when the policy is applied, which keeps retried
// effects plain values.
func Delays(p Policy) []time.Duration {
	return Match(p,
		func(p Recurs) []time.Duration {
			return make([]time.Duration, max(p.Times, 0))
		},
		func(p Exponential) []time.Duration {
			times := max(p.Times, 0)
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = p.Initial
			if p.Max > 0 {
				b.MaxInterval = p.Max
			}
			if p.Multiplier > 0 {
				b.Multiplier = p.Multiplier
			}
			b.RandomizationFactor = 0
			b.MaxElapsedTime = 0
			b.Reset()

			delays := make([]time.Duration, 0, times)
			for range times {
				d := b.NextBackOff()
				if d == backoff.Stop {
					d = b.MaxInterval
				}
				delays = append(delays, d)
			}
			return delays
		},
	)
}
