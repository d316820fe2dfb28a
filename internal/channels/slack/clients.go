package slack

import (
	"context"

	"github.com/slack-go/slack"
)

// APIClient defines the Slack API operations used by this package.
// This interface allows for mock injection during testing.
type APIClient interface {
	AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	UploadFileV2Context(ctx context.Context, params slack.UploadFileV2Parameters) (*slack.FileSummary, error)
	GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
}

// Ensure slack.Client implements APIClient
var _ APIClient = (*slack.Client)(nil)
