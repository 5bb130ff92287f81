package video

import (
	"context"
	"time"
)

type State string

const (
	StateSubmitted State = "submitted"
	StatePolling   State = "polling"
	StateDone      State = "done"
	StateFailed    State = "failed"
)

func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Sleeper waits between polls. Tests substitute a fake to avoid real delays.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type TimerSleeper struct{}

func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var loadingMessages = []string{
	"Brewing creativity... your video is on its way.",
	"Analyzing pixels and prompts...",
	"Composing your visual masterpiece...",
	"This can take a few minutes, good things come to those who wait!",
	"Almost there... adding the final touches.",
}

// LoadingMessage returns the status line to show on the n-th tick while a job
// is running.
func LoadingMessage(n int) string {
	if n < 0 {
		n = -n
	}
	return loadingMessages[n%len(loadingMessages)]
}
