package poller

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestStart_PollsUntilStopped(t *testing.T) {
	var calls atomic.Int32
	reached := make(chan struct{})

	stop := Start(context.Background(), 5*time.Millisecond, func(ctx context.Context) error {
		if calls.Add(1) == 3 {
			close(reached)
		}
		return nil
	}, quietLog())

	select {
	case <-reached:
	case <-time.After(2 * time.Second):
		t.Fatal("poller never reached 3 calls")
	}

	stop()
	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	if calls.Load() != after {
		t.Errorf("poll ran after stop: %d -> %d", after, calls.Load())
	}

	// second stop is a no-op
	stop()
}

func TestStart_ErrorsDoNotStopPolling(t *testing.T) {
	var calls atomic.Int32
	reached := make(chan struct{})

	stop := Start(context.Background(), 5*time.Millisecond, func(ctx context.Context) error {
		if calls.Add(1) == 2 {
			close(reached)
		}
		return errors.New("backend down")
	}, quietLog())
	defer stop()

	select {
	case <-reached:
	case <-time.After(2 * time.Second):
		t.Fatal("poller stopped after an error")
	}
}

func TestStart_ParentCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	inFlight := make(chan struct{}, 1)
	sawCancel := make(chan struct{})

	stop := Start(ctx, 5*time.Millisecond, func(ctx context.Context) error {
		select {
		case inFlight <- struct{}{}:
		default:
		}
		<-ctx.Done()
		select {
		case <-sawCancel:
		default:
			close(sawCancel)
		}
		return ctx.Err()
	}, nil)

	<-inFlight
	cancel()

	select {
	case <-sawCancel:
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight poll did not observe cancellation")
	}
	stop()
}
