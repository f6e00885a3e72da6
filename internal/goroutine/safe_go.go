package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/mahdiyarhamdi/sheetaro/internal/logger"
)

// SafeGo runs fn in a goroutine, logging any panic instead of crashing
// the process. Background workers (the ws pumps, the offer scheduler)
// must not be able to take the server down.
func SafeGo(fn func()) {
	go func() {
		defer logPanic()
		fn()
	}()
}

// SafeGoWithContext runs fn with a context in a recovered goroutine.
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer logPanic()
		fn(ctx)
	}()
}

func logPanic() {
	if r := recover(); r != nil {
		logger.Log.Errorf("recovered panic in goroutine: %v\n%s", r, debug.Stack())
	}
}
