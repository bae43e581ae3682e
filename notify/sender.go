package notify

import "context"

// Sender delivers one notification email. Implementations carry their own
// provider configuration (addresses, credentials).
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
