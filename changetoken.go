package imagekit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// ============================================================================
// ChangeToken Implementations
// ============================================================================

// callbackList holds the registered callbacks of a token. Unregistering
// clears a slot so that indices handed out earlier stay valid. A callback
// registered after the change runs immediately.
type callbackList struct {
	mu        sync.RWMutex
	changed   atomic.Bool
	callbacks []func()
}

func (l *callbackList) register(callback func()) (unregister func()) {
	l.mu.Lock()
	if l.changed.Load() {
		l.mu.Unlock()
		callback()
		return func() {}
	}
	l.callbacks = append(l.callbacks, callback)
	index := len(l.callbacks) - 1
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if index < len(l.callbacks) {
			l.callbacks[index] = nil
		}
	}
}

// signal marks the list as changed and runs every callback once.
func (l *callbackList) signal() {
	if l.changed.Swap(true) {
		return
	}

	l.mu.RLock()
	callbacks := make([]func(), len(l.callbacks))
	copy(callbacks, l.callbacks)
	l.mu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb()
		}
	}
}

// CallbackChangeToken is a ChangeToken signalled by a driver that has native
// change events (local, memory).
type CallbackChangeToken struct {
	list callbackList
}

// NewCallbackChangeToken creates a new ChangeToken that supports active callbacks.
func NewCallbackChangeToken() *CallbackChangeToken {
	return &CallbackChangeToken{}
}

func (t *CallbackChangeToken) HasChanged() bool {
	return t.list.changed.Load()
}

func (t *CallbackChangeToken) ActiveChangeCallbacks() bool {
	return true
}

func (t *CallbackChangeToken) RegisterChangeCallback(callback func()) (unregister func()) {
	return t.list.register(callback)
}

// SignalChange marks the token as changed and invokes all callbacks.
// Only the first call has an effect.
func (t *CallbackChangeToken) SignalChange() {
	t.list.signal()
}

// ============================================================================
// Polling ChangeToken
// ============================================================================

// PollingConfig configures a polling change token.
type PollingConfig struct {
	// Interval between polls (default: 5 seconds)
	Interval time.Duration
	// CheckFunc returns true if a change is detected
	CheckFunc func() bool
}

// PollingChangeToken is a ChangeToken for drivers without native events.
// It calls CheckFunc at every interval until it reports a change or the
// context passed to NewPollingChangeToken is done.
type PollingChangeToken struct {
	list    callbackList
	cancel  context.CancelFunc
	stopped atomic.Bool
}

// NewPollingChangeToken creates a ChangeToken that polls for changes.
// Cancel ctx or call Stop to release the polling goroutine.
func NewPollingChangeToken(ctx context.Context, cfg PollingConfig) *PollingChangeToken {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(ctx)
	t := &PollingChangeToken{cancel: cancel}
	go t.poll(ctx, cfg)
	return t
}

func (t *PollingChangeToken) poll(ctx context.Context, cfg PollingConfig) {
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	defer t.stopped.Store(true)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if cfg.CheckFunc != nil && cfg.CheckFunc() {
				t.list.signal()
				return // spent
			}
		}
	}
}

func (t *PollingChangeToken) HasChanged() bool {
	return t.list.changed.Load()
}

func (t *PollingChangeToken) ActiveChangeCallbacks() bool {
	return true
}

func (t *PollingChangeToken) RegisterChangeCallback(callback func()) (unregister func()) {
	return t.list.register(callback)
}

// Stop stops the polling goroutine.
// It is safe to call Stop multiple times.
func (t *PollingChangeToken) Stop() {
	if t.stopped.Swap(true) {
		return
	}
	t.cancel()
}

// ============================================================================
// Helper: OnChange
// ============================================================================

// OnChange continuously watches for changes. It waits for the token from
// tokenProducer to fire, asks for the next token and then runs changeAction,
// so changes made while changeAction runs fire the next token. It stops when
// ctx is done, the returned cancel is called or tokenProducer fails.
//
// Example:
//
//	cancel := imagekit.OnChange(ctx,
//	    func() (imagekit.ChangeToken, error) {
//	        return fs.(imagekit.CanWatch).Watch(ctx, "**/*.png")
//	    },
//	    func() {
//	        log.Println("images changed, rescanning")
//	    },
//	)
//	defer cancel()
func OnChange(ctx context.Context, tokenProducer func() (ChangeToken, error), changeAction func()) (cancel func()) {
	ctx, cancelFunc := context.WithCancel(ctx)

	go func() {
		token, err := tokenProducer()
		for err == nil {
			if !waitForChange(ctx, token) {
				return
			}
			token, err = tokenProducer()
			changeAction()
		}
	}()

	return cancelFunc
}

// waitForChange blocks until token fires or ctx is done, and reports
// whether the token fired.
func waitForChange(ctx context.Context, token ChangeToken) bool {
	done := make(chan struct{})
	var once sync.Once
	unregister := token.RegisterChangeCallback(func() {
		once.Do(func() { close(done) })
	})
	defer unregister()

	select {
	case <-ctx.Done():
		if p, ok := token.(*PollingChangeToken); ok {
			p.Stop()
		}
		return false
	case <-done:
		return ctx.Err() == nil
	}
}
