package thumbs

import "context"

// Limiter caps how many renders run at once with a fixed permit pool.
// Waiters holding a cancelled context give up instead of queueing forever.
type Limiter struct {
	permits chan struct{}
}

func NewLimiter(n int) *Limiter {
	if n < 1 {
		n = 1
	}
	return &Limiter{permits: make(chan struct{}, n)}
}

func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.permits <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Limiter) Release() {
	select {
	case <-l.permits:
	default:
		panic("thumbs: release without acquire")
	}
}
