package browser

import (
	"context"
	"time"

	"pfda_functional/domain/interfaces"
)

// DefaultPollInterval is the pause between two condition checks
const DefaultPollInterval = 250 * time.Millisecond

// Poll checks condition once immediately and then on every interval until it
// holds, the timeout elapses or ctx is done. A timeout yields false and no error.
func Poll(ctx context.Context, condition interfaces.Condition, timeout, interval time.Duration) (bool, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ok, err := condition(ctx)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-deadline.C:
			return false, nil
		case <-ticker.C:
		}
	}
}
