package session

import (
	"context"
)

// RestartAuthStateListener cancels any running listener and subscribes to
// the auth-state stream again. Every event triggers one RefreshPhase.
func (c *Controller) RestartAuthStateListener() {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()

	if c.closed {
		return
	}
	c.stopListenerLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.listenerCancel = cancel
	c.listenerDone = done

	stream := c.auth.AuthStateStream(ctx)

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-stream:
				if !ok {
					return
				}
				c.log.Debug(ctx, "auth state event", "event", ev.Event)
				// A refresh that has started runs to completion.
				c.RefreshPhase(context.WithoutCancel(ctx))
			}
		}
	}()
}

func (c *Controller) stopListenerLocked() {
	if c.listenerCancel == nil {
		return
	}
	c.listenerCancel()
	<-c.listenerDone
	c.listenerCancel = nil
	c.listenerDone = nil
}
