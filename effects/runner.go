package effects

import (
	"context"

	"code.hybscloud.com/kont"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/on-the-ground/effect_ive_records/client"
)

// Run evaluates e against c from an empty buffer and returns its value or
// its failure unchanged. Writes left uncommitted at the end are dropped.
func Run[A any](ctx context.Context, c client.Client, e Effect[A], opts ...Option) (A, error) {
	return Execute(ctx, NewInterpreter(c, opts...), e)
}

// RunEither is Run returning the Either of the interpreter.
func RunEither[A any](ctx context.Context, c client.Client, e Effect[A], opts ...Option) kont.Either[error, A] {
	return ExecuteEither(ctx, NewInterpreter(c, opts...), e)
}

// Execute is Run with a configured interpreter.
func Execute[A any](ctx context.Context, it *Interpreter, e Effect[A]) (A, error) {
	res := ExecuteEither(ctx, it, e)
	if err, failed := res.GetLeft(); failed {
		var zero A
		return zero, err
	}
	a, _ := res.GetRight()
	return a, nil
}

// ExecuteEither is RunEither with a configured interpreter.
func ExecuteEither[A any](ctx context.Context, it *Interpreter, e Effect[A]) kont.Either[error, A] {
	r := it.newRun()
	res := interpret(ctx, r, e, nil)
	if err, failed := res.GetLeft(); failed {
		return kont.Left[error, A](err)
	}
	step, _ := res.GetRight()
	if step.Buffer.Len() > 0 {
		r.log.Warn("dropping uncommitted writes", zap.Int("requests", step.Buffer.Len()))
	}
	return kont.Right[error, A](step.Value)
}

// RunAll runs independent effects concurrently, each with its own buffer.
// Values keep the order of effects. The first failure cancels the context
// of the others and is returned unchanged.
func RunAll[A any](ctx context.Context, c client.Client, effects []Effect[A], opts ...Option) ([]A, error) {
	return ExecuteAll(ctx, NewInterpreter(c, opts...), effects)
}

// ExecuteAll is RunAll with a configured interpreter.
func ExecuteAll[A any](ctx context.Context, it *Interpreter, effects []Effect[A]) ([]A, error) {
	out := make([]A, len(effects))
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	for i, e := range effects {
		p.Go(func(ctx context.Context) error {
			a, err := Execute(ctx, it, e)
			if err != nil {
				return err
			}
			out[i] = a
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
