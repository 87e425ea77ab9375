package program

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// ValidateItems runs fn for every index in [0, n) on a bounded pool and
// returns the failure of the lowest failing index, located under
// "items.<i>". Every item runs to completion so the reported failure does
// not depend on scheduling.
func ValidateItems(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	return ValidateEach(ctx, "items", n, fn)
}

// ValidateEach is ValidateItems for a list stored under field.
func ValidateEach(ctx context.Context, field string, n int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return ctx.Err()
	}
	errs := make([]error, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			errs[i] = fn(gctx, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, err := range errs {
		if err != nil {
			return validation.AtIndex(field, i, err)
		}
	}
	return nil
}
