package poller

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Func is one poll. Its error is logged and never surfaced.
type Func func(ctx context.Context) error

// Start calls fn every interval until ctx is done or stop is called.
// stop cancels the in-flight call's context and waits for the loop to exit;
// it is safe to call more than once.
//
//	stop := poller.Start(ctx, time.Minute, refresh, log)
//	defer stop()
func Start(ctx context.Context, interval time.Duration, fn Func, log *logrus.Entry) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := fn(ctx); err != nil && ctx.Err() == nil && log != nil {
					log.WithError(err).Warn("Poll failed")
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}
