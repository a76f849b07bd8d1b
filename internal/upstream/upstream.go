package upstream

import "context"

// Roles in the upstream model's turn format. Conversations sent to the model
// must open with a user turn.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one role-tagged message in the upstream's expected shape.
type Turn struct {
	Role string
	Text string
}

// Streamer opens a chat session pre-loaded with history, sends one message
// and delivers the model's output incrementally. onFragment is called once
// per text fragment as it arrives; returning an error from it aborts the
// stream. An error returned before the first onFragment call means the
// upstream failed outright; an error after fragments were delivered is a
// mid-stream failure.
type Streamer interface {
	StreamMessage(ctx context.Context, history []Turn, message string, onFragment func(string) error) error
}
