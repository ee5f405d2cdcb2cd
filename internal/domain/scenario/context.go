package scenario

import (
	"context"
	"time"
)

// Context is the persisted state of a user's in-progress scenario.
// A user with no Context is idle.
type Context struct {
	UserID    int64     `json:"user_id"`
	Scenario  Kind      `json:"scenario"`
	Step      int       `json:"step"`
	Data      Data      `json:"data"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns a Context at step 0 of kind.
func New(userID int64, kind Kind) *Context {
	return &Context{UserID: userID, Scenario: kind}
}

// Clone returns a deep copy of c.
func (c *Context) Clone() *Context {
	if c == nil {
		return nil
	}
	out := *c
	out.Data = c.Data.clone()
	return &out
}

// Advance moves to the next step.
func (c *Context) Advance() { c.Step++ }

// Store keeps one Context per user. Get returns nil, nil for an idle user.
type Store interface {
	Get(ctx context.Context, userID int64) (*Context, error)
	Set(ctx context.Context, sc *Context) error
	Clear(ctx context.Context, userID int64) error
}
