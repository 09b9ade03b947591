/*
File Name:  Supervisor.go

runSupervised keeps a single Link worker goroutine (inboundLoop,
outboundLoop) alive across panics, per §7: a bug that panics one
worker must not bring down the broker or any other Link. A normal
return (context cancellation, closed channel) exits the supervisor;
only a recovered panic triggers a restart.
*/

package link

import (
	"context"
	"log"
	"time"
)

// panicBackoff is the pause before restarting a worker after a
// recovered panic, so a panic that repeats immediately does not spin
// the CPU.
const panicBackoff = 50 * time.Millisecond

// runSupervised runs fn in a recover-and-restart loop until ctx is
// done or fn returns normally. worker names the loop for logging
// (e.g. "inbound", "outbound"); id identifies the owning Link.
func runSupervised(ctx context.Context, logger *log.Logger, id ID, worker string, fn func()) {
	if logger == nil {
		logger = log.Default()
	}
	for {
		if ctx.Err() != nil {
			return
		}
		if runOnce(ctx, logger, id, worker, fn) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(panicBackoff):
		}
	}
}

// runOnce runs fn once, recovering a panic if it occurs. It reports
// whether fn returned normally (true) or panicked (false).
func runOnce(ctx context.Context, logger *log.Logger, id ID, worker string, fn func()) (returnedNormally bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("link %v: %s worker panicked, restarting: %v", id, worker, r)
			returnedNormally = false
		}
	}()
	fn()
	return true
}
