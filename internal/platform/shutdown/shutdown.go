package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/coursehub/internal/platform/logger"
)

// NotifyContext is cancelled on the first SIGINT or SIGTERM. The returned stop
// func releases the signal handler.
func NotifyContext(parent context.Context, log *logger.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigs:
			if log != nil {
				log.Info("shutdown signal received", "signal", sig.String())
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigs)
		cancel()
	}
}
