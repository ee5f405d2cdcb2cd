package scenario

import "context"

// Input is one inbound chat message.
type Input struct {
	UserID int64
	ChatID int64
	Text   string
}

// Handler is a scenario variant's step function. It reads and mutates only
// the Context it is handed and performs its own side effects (replies,
// persistence). Unknown steps must yield Completed.
type Handler interface {
	Kind() Kind
	Step(ctx context.Context, in Input, sc *Context) Result
}
