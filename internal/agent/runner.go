package agent

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Runner supervises one Loop per character and handles graceful shutdown
// on SIGINT or SIGTERM. Loops run concurrently and independently; one
// character's transport trouble never stalls the others, but a wiring
// defect in any loop brings the whole process down.
type Runner struct {
	logger *zap.Logger
	mu     sync.Mutex
	loops  []*Loop
}

// NewRunner creates an empty Runner.
//
// Precondition: logger must be non-nil.
func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		panic("agent.NewRunner: logger is nil")
	}
	return &Runner{logger: logger}
}

// Add registers a loop. Loops are started in the order they are added.
func (r *Runner) Add(l *Loop) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loops = append(r.loops, l)
}

// Run starts every registered loop and blocks until a termination signal
// arrives, ctx is cancelled, or a loop fails with a defect.
//
// Postcondition: all loops have returned when this method returns.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	loops := make([]*Loop, len(r.loops))
	copy(loops, r.loops)
	r.mu.Unlock()

	if len(loops) == 0 {
		return fmt.Errorf("agent.Runner.Run: no character loops registered")
	}

	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, len(loops))
	for _, l := range loops {
		wg.Add(1)
		go func(l *Loop) {
			defer wg.Done()
			if err := l.Run(ctx); err != nil {
				errCh <- err
				cancel()
			}
		}(l)
	}
	r.logger.Info("all character loops started",
		zap.Int("count", len(loops)),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		r.logger.Info("received signal, shutting down",
			zap.String("signal", sig.String()),
		)
	case runErr = <-errCh:
		r.logger.Error("character loop failed, shutting down",
			zap.Error(runErr),
		)
	case <-ctx.Done():
		r.logger.Info("context cancelled, shutting down")
	}

	cancel()
	wg.Wait()
	r.logger.Info("all character loops stopped",
		zap.Duration("total_uptime", time.Since(start)),
	)
	return runErr
}
