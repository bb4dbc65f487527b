package flow

import "context"

// Reset clears the session atomically and returns the kiosk to the login
// step. Valid from any step, including the terminal result; calling it
// twice in a row is a no-op the second time.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.exitLocked()
	c.rt.Session.Reset()
	c.cur = 0
	c.rt.Log.Info("session reset")
	return c.enterLocked(ctx)
}

// Logout drops the user and session identity and returns to the login
// step. For this model it is equivalent to Reset; both paths restore the
// same empty state.
func (c *Controller) Logout(ctx context.Context) error {
	c.rt.Log.Info("logout", "user", c.rt.Session.UserID())
	return c.Reset(ctx)
}
