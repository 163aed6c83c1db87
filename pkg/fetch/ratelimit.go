package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// HostLimiter spaces out requests to each host by a minimum interval
type HostLimiter struct {
	interval time.Duration
	limiters map[string]*rate.Limiter // hostname -> limiter
	mu       sync.Mutex
	log      *logrus.Entry
}

// NewHostLimiter creates a limiter allowing one request per interval per host.
// A non-positive interval disables limiting.
func NewHostLimiter(interval time.Duration, log *logrus.Entry) *HostLimiter {
	return &HostLimiter{
		interval: interval,
		limiters: make(map[string]*rate.Limiter),
		log:      log,
	}
}

func (hl *HostLimiter) limiterFor(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()
	l, ok := hl.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Every(hl.interval), 1)
		hl.limiters[host] = l
	}
	return l
}

// Wait blocks until a request to host is allowed or ctx is done
func (hl *HostLimiter) Wait(ctx context.Context, host string) error {
	if hl.interval <= 0 {
		return nil
	}
	l := hl.limiterFor(host)
	r := l.Reserve()
	delay := r.Delay()
	if delay == 0 {
		return nil
	}

	hl.log.WithFields(logrus.Fields{"host": host, "sleep": delay}).Debug("Rate limit applying sleep")
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}
