package alert

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// Alerts flow through one process-wide provider so middleware and
// background workers report the same way. Until SetGlobal runs,
// reports are dropped.
//
//nolint:gochecknoglobals // process-wide provider singleton
var (
	global  atomic.Value // holds holder
	setOnce sync.Once
	lazy    sync.Once
)

// holder keeps the concrete type stored in global constant, which
// atomic.Value requires even when the provider implementation changes.
type holder struct {
	p Provider
}

// SetGlobal installs the process-wide provider. Call it once during
// startup; a second call reports an error.
func SetGlobal(provider Provider) error {
	installed := false
	setOnce.Do(func() {
		// Disarm the lazy fallback.
		lazy.Do(func() {})

		global.Store(holder{p: provider})
		installed = true
	})
	if !installed {
		return errors.New("[alert]: SetGlobal can only be called once")
	}
	return nil
}

// SendError reports an error through the global provider.
func SendError(ctx context.Context, errCode, msg, operation string, details map[string]string) error {
	return current().SendError(ctx, errCode, msg, operation, details)
}

// current returns the installed provider, falling back to a no-op one
// when nothing was installed yet.
func current() Provider {
	if v := global.Load(); v != nil {
		h, ok := v.(holder)
		if !ok {
			panic("[alert]: global contains invalid type")
		}
		return h.p
	}

	lazy.Do(func() {
		global.Store(holder{p: NewNoopProvider()})
	})

	h, ok := global.Load().(holder)
	if !ok {
		panic("[alert]: global contains invalid type after initialization")
	}
	return h.p
}
