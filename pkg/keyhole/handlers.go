package keyhole

import (
	"sync"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// NewZapErrorHandler returns a handler that logs every failure on the given
// logger at warn level. Delivery failures are expected operational noise for
// best-effort instrumentation, so they never log higher than warn.
func NewZapErrorHandler(logger *zap.Logger) ErrorHandler {
	sugar := logger.Sugar()
	return ErrorHandlerFunc(func(category string, errCtx ErrorContext, ev *EventData) {
		fields := []interface{}{"category", category, "message", errCtx.Message}
		if errCtx.Code != 0 {
			fields = append(fields, "code", errCtx.Code)
		}
		if ev != nil {
			fields = append(fields, "app", ev.App, "host", ev.Host.Address, "port", ev.Host.Port)
		}
		sugar.Warnw("snapshot delivery failed", fields...)
	})
}

// CollectingErrorHandler accumulates every failure it sees. Useful both as a
// test double and for callers that want to inspect delivery health after the
// fact. Safe for concurrent use.
type CollectingErrorHandler struct {
	mu         sync.Mutex
	err        *multierror.Error
	categories []string
}

func (h *CollectingErrorHandler) HandleError(category string, errCtx ErrorContext, ev *EventData) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = multierror.Append(h.err, errors.Errorf("%v: %v", category, errCtx.Message))
	h.categories = append(h.categories, category)
}

// Err returns the accumulated failures, nil if none occurred.
func (h *CollectingErrorHandler) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err.ErrorOrNil()
}

// Categories returns the category tags seen so far, in arrival order.
func (h *CollectingErrorHandler) Categories() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.categories))
	copy(out, h.categories)
	return out
}
