package slack

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slack-go/slack"
)

// Sender implements channels.Outbound against the Slack Web API.
type Sender struct {
	api APIClient
}

// NewSender creates a sender over the given API client.
func NewSender(api APIClient) *Sender {
	return &Sender{api: api}
}

// Reply posts text as a threaded reply to the message with the given
// timestamp.
func (s *Sender) Reply(ctx context.Context, channelID, threadTS, text string) error {
	_, _, err := s.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(threadTS),
	)
	if err != nil {
		return fmt.Errorf("post reply: %w", err)
	}
	return nil
}

// Post sends text to the channel as a standalone message.
func (s *Sender) Post(ctx context.Context, channelID, text string) error {
	_, _, err := s.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	return nil
}

// UploadFile uploads a local file to the channel.
func (s *Sender) UploadFile(ctx context.Context, channelID, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat upload file: %w", err)
	}

	_, err = s.api.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		Channel:  channelID,
		File:     path,
		Filename: filepath.Base(path),
		FileSize: int(info.Size()),
	})
	if err != nil {
		return fmt.Errorf("upload file: %w", err)
	}
	return nil
}
