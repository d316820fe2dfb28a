// Package channels defines the transport interfaces between the chat
// platform and the rest of the service.
package channels

import "context"

// Source delivers inbound chat events into the ingest pipeline. A source
// runs until its context is cancelled.
type Source interface {
	Run(ctx context.Context) error
}

// Outbound sends messages and files back to the chat platform.
type Outbound interface {
	// Reply posts text as a threaded reply to the given message.
	Reply(ctx context.Context, channelID, threadTS, text string) error

	// Post sends text to the channel as a standalone message.
	Post(ctx context.Context, channelID, text string) error

	// UploadFile uploads a local file to the channel.
	UploadFile(ctx context.Context, channelID, path string) error
}
