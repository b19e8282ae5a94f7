package ports

import "context"

// Messenger defines the outbound side of the chat surface: delivering a text
// message to a user's private channel. Inbound delivery, channel creation and
// everything else about the chat platform stays with the gateway.
type Messenger interface {
	Send(ctx context.Context, userID, channelID, text string) error
}
