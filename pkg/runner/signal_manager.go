package runner

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// SignalManager turns OS signals (and an optional interrupt channel) into context
// cancellation, one context per armed period.
type SignalManager struct {
	parent     context.Context
	interrupts <-chan struct{}

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSignalManager creates a new manager derived from parent and immediately starts listening.
func NewSignalManager(parent context.Context, interrupts <-chan struct{}) *SignalManager {
	sm := &SignalManager{parent: parent, interrupts: interrupts}
	sm.Reset()
	return sm
}

// Context returns the current signal context.
func (sm *SignalManager) Context() context.Context {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.ctx
}

// Reset re-arms the listener after a signal was handled.
func (sm *SignalManager) Reset() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	// We capture SIGINT (Ctrl+C) and SIGTERM.
	// Register the new listener before releasing the old one: Ctrl+C must never reach the default handler.
	ctx, stop := signal.NotifyContext(sm.parent, os.Interrupt, syscall.SIGTERM)
	if sm.cancel != nil {
		sm.cancel()
	}
	sm.ctx, sm.cancel = ctx, stop

	if sm.interrupts != nil {
		go func() {
			select {
			case <-sm.interrupts:
				stop()
			case <-ctx.Done():
			}
		}()
	}
}

// Stop permanently stops the listener.
func (sm *SignalManager) Stop() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.cancel != nil {
		sm.cancel()
	}
}

// CheckRace waits briefly to see if a context cancellation follows an input error.
// On Windows consoles Ctrl+C can surface as EOF slightly before the signal arrives.
func (sm *SignalManager) CheckRace() {
	ctx := sm.Context()
	if ctx.Err() == nil {
		select {
		case <-ctx.Done():
		case <-time.After(100 * time.Millisecond):
		}
	}
}
