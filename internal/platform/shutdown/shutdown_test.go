package shutdown

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/yungbote/coursehub/internal/platform/logger"
)

func TestNotifyContextCancelsOnSignal(t *testing.T) {
	ctx, stop := NotifyContext(context.Background(), logger.Nop())
	defer stop()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("kill: %v", err)
	}
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("context not cancelled after SIGTERM")
	}
}

func TestStopCancels(t *testing.T) {
	ctx, stop := NotifyContext(context.Background(), nil)
	stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("stop did not cancel")
	}
}
