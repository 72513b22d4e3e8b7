package effects

import (
	"context"
	"time"

	"github.com/on-the-ground/effect_ive_records/effects/policy"
)

// RetryN evaluates e again after a failure, at most n more times. When
// every attempt fails the last failure is returned unchanged.
func (e Effect[A]) RetryN(n int) Effect[A] {
	return e.Retry(policy.RecursOf(n))
}

// Retry evaluates e again after a failure as p prescribes.
func (e Effect[A]) Retry(p policy.Policy) Effect[A] {
	return retry(e, policy.Delays(p))
}

func retry[A any](e Effect[A], delays []time.Duration) Effect[A] {
	return Fold(e, Succeed[A], func(err error) Effect[A] {
		if len(delays) == 0 {
			return Fail[A](err)
		}
		return Then(Sleep(delays[0]), retry(e, delays[1:]))
	})
}

// Sleep waits for d or until the context is done, failing with its error.
func Sleep(d time.Duration) Effect[struct{}] {
	if d <= 0 {
		return Unit()
	}
	return Async(func(ctx context.Context) (struct{}, error) {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return struct{}{}, nil
		case <-ctx.Done():
			return struct{}{}, ctx.Err()
		}
	})
}
