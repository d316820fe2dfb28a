package slack

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/slack-go/slack"

	"pmagent/internal/ingest"
)

type postCall struct {
	channelID string
	options   int
}

type fakeAPI struct {
	history    *slack.GetConversationHistoryResponse
	historyErr error
	posts      []postCall
	uploads    []slack.UploadFileV2Parameters
	uploadErr  error
}

func (f *fakeAPI) AuthTestContext(context.Context) (*slack.AuthTestResponse, error) {
	return &slack.AuthTestResponse{UserID: "UBOT"}, nil
}

func (f *fakeAPI) PostMessageContext(_ context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	f.posts = append(f.posts, postCall{channelID: channelID, options: len(options)})
	return channelID, "123.456", nil
}

func (f *fakeAPI) UploadFileV2Context(_ context.Context, params slack.UploadFileV2Parameters) (*slack.FileSummary, error) {
	f.uploads = append(f.uploads, params)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &slack.FileSummary{ID: "F01"}, nil
}

func (f *fakeAPI) GetConversationHistoryContext(context.Context, *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

func historyMessage(ts, user, text string) slack.Message {
	msg := slack.Message{}
	msg.Timestamp = ts
	msg.User = user
	msg.Text = text
	return msg
}

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		in           string
		wantText     string
		wantMentions []string
	}{
		{"<@U123> hello", "@U123 hello", []string{"U123"}},
		{"ask <@U1> and <@U2>", "ask @U1 and @U2", []string{"U1", "U2"}},
		{"no mentions", "no mentions", nil},
		{"<@lowercase> stays", "<@lowercase> stays", nil},
	}
	for _, tc := range cases {
		gotText, gotMentions := NormalizeText(tc.in)
		if gotText != tc.wantText {
			t.Errorf("NormalizeText(%q) text = %q, want %q", tc.in, gotText, tc.wantText)
		}
		if !reflect.DeepEqual(gotMentions, tc.wantMentions) {
			t.Errorf("NormalizeText(%q) mentions = %v, want %v", tc.in, gotMentions, tc.wantMentions)
		}
	}
}

func TestSender(t *testing.T) {
	t.Run("reply and post", func(t *testing.T) {
		api := &fakeAPI{}
		s := NewSender(api)
		if err := s.Reply(context.Background(), "C01", "111.222", "threaded"); err != nil {
			t.Fatal(err)
		}
		if err := s.Post(context.Background(), "C01", "standalone"); err != nil {
			t.Fatal(err)
		}
		if len(api.posts) != 2 {
			t.Fatalf("posts = %+v", api.posts)
		}
		// The reply carries an extra thread timestamp option.
		if api.posts[0].options != 2 || api.posts[1].options != 1 {
			t.Errorf("posts = %+v", api.posts)
		}
	})

	t.Run("upload file", func(t *testing.T) {
		api := &fakeAPI{}
		s := NewSender(api)
		path := filepath.Join(t.TempDir(), "report.md")
		if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := s.UploadFile(context.Background(), "C01", path); err != nil {
			t.Fatal(err)
		}
		if len(api.uploads) != 1 {
			t.Fatalf("uploads = %+v", api.uploads)
		}
		up := api.uploads[0]
		if up.Channel != "C01" || up.Filename != "report.md" || up.FileSize != len("content") {
			t.Errorf("upload params = %+v", up)
		}
	})

	t.Run("upload missing file", func(t *testing.T) {
		s := NewSender(&fakeAPI{})
		if err := s.UploadFile(context.Background(), "C01", "/nonexistent"); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func newPollerPipeline() *ingest.Pipeline {
	return ingest.NewPipeline(ingest.Options{
		ChannelID: "C01",
		BotUserID: "UBOT",
	})
}

func TestPollerSeed(t *testing.T) {
	api := &fakeAPI{history: &slack.GetConversationHistoryResponse{
		Messages: []slack.Message{
			historyMessage("3.0", "U1", "newest"),
			historyMessage("2.0", "U2", "older"),
		},
	}}
	pipeline := newPollerPipeline()
	p := NewPoller(api, pipeline, PollerConfig{ChannelID: "C01"})

	if err := p.seed(context.Background()); err != nil {
		t.Fatal(err)
	}
	// Seeded messages must not be queued on the next poll.
	if err := p.pollOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	select {
	case item := <-pipeline.Items():
		t.Errorf("seeded message queued: %+v", item)
	default:
	}
}

func TestPollerPollOnce(t *testing.T) {
	api := &fakeAPI{history: &slack.GetConversationHistoryResponse{
		Messages: []slack.Message{
			historyMessage("3.0", "U1", "second question"),
			historyMessage("2.0", "U2", "first question"),
		},
	}}
	pipeline := newPollerPipeline()
	p := NewPoller(api, pipeline, PollerConfig{ChannelID: "C01"})

	if err := p.pollOnce(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Oldest message is queued first.
	first := <-pipeline.Items()
	if first.MessageID != "2.0" || first.Text != "first question" {
		t.Errorf("first item = %+v", first)
	}
	second := <-pipeline.Items()
	if second.MessageID != "3.0" {
		t.Errorf("second item = %+v", second)
	}

	// A repeat poll of the same page queues nothing new.
	if err := p.pollOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	select {
	case item := <-pipeline.Items():
		t.Errorf("duplicate queued: %+v", item)
	default:
	}
}

func TestPollerSkipsBots(t *testing.T) {
	botMsg := historyMessage("4.0", "", "bot answer")
	botMsg.BotID = "B01"
	api := &fakeAPI{history: &slack.GetConversationHistoryResponse{
		Messages: []slack.Message{botMsg},
	}}
	pipeline := newPollerPipeline()
	p := NewPoller(api, pipeline, PollerConfig{ChannelID: "C01"})

	if err := p.pollOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	select {
	case item := <-pipeline.Items():
		t.Errorf("bot message queued: %+v", item)
	default:
	}
}

func TestPollerRunStopsOnCancel(t *testing.T) {
	api := &fakeAPI{history: &slack.GetConversationHistoryResponse{}}
	p := NewPoller(api, newPollerPipeline(), PollerConfig{
		ChannelID: "C01",
		Interval:  time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Run did not stop after cancel")
	}
}

func TestPollerSeedFailure(t *testing.T) {
	api := &fakeAPI{historyErr: errors.New("channel_not_found")}
	p := NewPoller(api, newPollerPipeline(), PollerConfig{ChannelID: "C01"})
	if err := p.Run(context.Background()); err == nil {
		t.Error("expected seed failure to surface")
	}
}
