package service

import (
	"context"
	"errors"
)

type undoStep func(ctx context.Context) error

// undoLog collects compensating writes. A nil log ignores pushes, which is
// what transactional stores get.
type undoLog struct {
	steps []undoStep
}

func (u *undoLog) push(step undoStep) {
	if u == nil {
		return
	}
	u.steps = append(u.steps, step)
}

func (u *undoLog) empty() bool { return u == nil || len(u.steps) == 0 }

func (u *undoLog) len() int {
	if u == nil {
		return 0
	}
	return len(u.steps)
}

// rollback replays the steps newest first. Every step is attempted even when
// an earlier one fails.
func (u *undoLog) rollback(ctx context.Context) error {
	var errs []error
	for i := len(u.steps) - 1; i >= 0; i-- {
		if err := u.steps[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
