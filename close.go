package kvengine

import "context"

// Close stops accepting operations, waits for queued operations to finish
// and releases every stored entry.
//
// If ctx is done before the drain completes, Close returns ctx.Err() and the
// remaining operations finish in the background; the store is left intact.
// A second call returns ErrClosed.
func (e *Engine) Close(ctx context.Context) error {
	if e == nil {
		return nil
	}
	if !e.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	err := e.exec.Shutdown(ctx)
	if err == nil {
		e.store.Reset()
	}

	e.logger.LogClose(ctx, e.exec.Stats().Executed, err)
	return err
}
