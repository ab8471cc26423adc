package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/scribeworks/mina-cli/client"
	merrors "github.com/scribeworks/mina-cli/pkg/errors"
)

// fakeAPI scripts backend responses for session tests.
type fakeAPI struct {
	sendCalls   int
	lastMessage string
	sendResp    *client.ChatResponse
	sendErr     error

	ttsCalls int
	lastTTS  string
	ttsResp  *client.TTSResponse
	ttsErr   error
}

func (f *fakeAPI) SendMessage(ctx context.Context, sessionID, message string) (*client.ChatResponse, error) {
	f.sendCalls++
	f.lastMessage = message
	return f.sendResp, f.sendErr
}

func (f *fakeAPI) GenerateTTS(ctx context.Context, sessionID, text string) (*client.TTSResponse, error) {
	f.ttsCalls++
	f.lastTTS = text
	return f.ttsResp, f.ttsErr
}

// TestSend_HappyPath verifies one user entry plus one bot entry carrying
// the exact reply text.
func TestSend_HappyPath(t *testing.T) {
	api := &fakeAPI{sendResp: &client.ChatResponse{Success: true, Response: "The meeting covered three topics."}}
	s := New("abc123", "transcript", api, nil)

	reply, err := s.Send(context.Background(), "What was discussed?")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply.Text != "The meeting covered three topics." {
		t.Errorf("reply.Text = %q, want exact backend text", reply.Text)
	}
	if reply.Sender != SenderBot {
		t.Errorf("reply.Sender = %v, want bot", reply.Sender)
	}

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("log has %d messages, want 2", len(msgs))
	}
	if msgs[0].Sender != SenderUser || msgs[0].Text != "What was discussed?" {
		t.Errorf("first message = %+v, want the user entry", msgs[0])
	}
	if msgs[1].Sender != SenderBot {
		t.Errorf("second message = %+v, want the bot entry", msgs[1])
	}
	if msgs[0].ID == msgs[1].ID || msgs[0].ID == "" {
		t.Error("messages must carry distinct non-empty ids")
	}
	if api.lastMessage != "What was discussed?" {
		t.Errorf("backend received %q", api.lastMessage)
	}
}

// TestSend_EmptyMessage verifies whitespace-only input is a full no-op.
func TestSend_EmptyMessage(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		api := &fakeAPI{}
		s := New("abc123", "t", api, nil)

		_, err := s.Send(context.Background(), text)
		if !merrors.IsEmptyMessage(err) {
			t.Errorf("Send(%q) err = %v, want ErrEmptyMessage", text, err)
		}
		if len(s.Messages()) != 0 {
			t.Errorf("Send(%q) changed the log", text)
		}
		if api.sendCalls != 0 {
			t.Errorf("Send(%q) hit the network", text)
		}
	}
}

// TestSend_FallbackOnError verifies the log still gains exactly one bot
// entry when the exchange fails.
func TestSend_FallbackOnError(t *testing.T) {
	tests := []struct {
		name string
		api  *fakeAPI
	}{
		{"transport error", &fakeAPI{sendErr: errors.New("dial tcp: connection refused")}},
		{"backend rejection", &fakeAPI{sendResp: &client.ChatResponse{Success: false, Error: "session expired"}}},
		{"empty reply", &fakeAPI{sendResp: &client.ChatResponse{Success: true, Response: ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("abc123", "t", tt.api, nil)

			reply, err := s.Send(context.Background(), "hello")
			if err != nil {
				t.Fatalf("Send: %v", err)
			}
			if reply.Text != FallbackReply {
				t.Errorf("reply.Text = %q, want the fallback", reply.Text)
			}

			msgs := s.Messages()
			if len(msgs) != 2 {
				t.Fatalf("log has %d messages, want user + fallback", len(msgs))
			}
			if msgs[1].Text != FallbackReply || msgs[1].Sender != SenderBot {
				t.Errorf("second message = %+v, want fallback bot entry", msgs[1])
			}
		})
	}
}

// TestSend_TypingCleared verifies the in-flight flag is cleared on both
// outcomes.
func TestSend_TypingCleared(t *testing.T) {
	for _, api := range []*fakeAPI{
		{sendResp: &client.ChatResponse{Success: true, Response: "ok"}},
		{sendErr: errors.New("boom")},
	} {
		s := New("abc123", "t", api, nil)
		if _, err := s.Send(context.Background(), "hi"); err != nil {
			t.Fatalf("Send: %v", err)
		}
		if s.Typing() {
			t.Error("typing flag must be cleared after Send returns")
		}
	}
}

// TestSend_Inactive verifies ended sessions reject sends without touching
// the log.
func TestSend_Inactive(t *testing.T) {
	api := &fakeAPI{sendResp: &client.ChatResponse{Success: true, Response: "ok"}}
	s := New("abc123", "t", api, nil)
	s.End()

	_, err := s.Send(context.Background(), "hello")
	if !merrors.IsSessionInactive(err) {
		t.Errorf("err = %v, want ErrSessionInactive", err)
	}
	if len(s.Messages()) != 0 {
		t.Error("inactive send must not touch the log")
	}
	if api.sendCalls != 0 {
		t.Error("inactive send must not hit the network")
	}
}

// TestSend_Ordering verifies the log preserves insertion order across
// multiple exchanges.
func TestSend_Ordering(t *testing.T) {
	api := &fakeAPI{sendResp: &client.ChatResponse{Success: true, Response: "reply"}}
	s := New("abc123", "t", api, nil)

	for _, text := range []string{"one", "two", "three"} {
		if _, err := s.Send(context.Background(), text); err != nil {
			t.Fatalf("Send(%q): %v", text, err)
		}
	}

	msgs := s.Messages()
	if len(msgs) != 6 {
		t.Fatalf("log has %d messages, want 6", len(msgs))
	}
	wantUsers := []string{"one", "two", "three"}
	for i, want := range wantUsers {
		if msgs[2*i].Sender != SenderUser || msgs[2*i].Text != want {
			t.Errorf("message %d = %+v, want user %q", 2*i, msgs[2*i], want)
		}
		if msgs[2*i+1].Sender != SenderBot {
			t.Errorf("message %d = %+v, want bot entry", 2*i+1, msgs[2*i+1])
		}
	}
}

// TestSend_TTS verifies voicing fires only when enabled and only on
// successful replies.
func TestSend_TTS(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		api := &fakeAPI{sendResp: &client.ChatResponse{Success: true, Response: "ok"}}
		s := New("abc123", "t", api, nil)

		s.Send(context.Background(), "hi")
		if api.ttsCalls != 0 {
			t.Error("tts must not fire when disabled")
		}
	})

	t.Run("enabled voices the reply", func(t *testing.T) {
		api := &fakeAPI{
			sendResp: &client.ChatResponse{Success: true, Response: "spoken reply"},
			ttsResp:  &client.TTSResponse{Success: true, AudioURL: "/audio/x.mp3"},
		}
		s := New("abc123", "t", api, nil)
		s.SetTTSEnabled(true)

		var gotURL string
		s.OnAudio(func(u string) { gotURL = u })

		s.Send(context.Background(), "hi")
		if api.ttsCalls != 1 {
			t.Fatalf("ttsCalls = %d, want 1", api.ttsCalls)
		}
		if api.lastTTS != "spoken reply" {
			t.Errorf("tts text = %q", api.lastTTS)
		}
		if gotURL != "/audio/x.mp3" {
			t.Errorf("audio url = %q", gotURL)
		}
	})

	t.Run("skipped on fallback", func(t *testing.T) {
		api := &fakeAPI{sendErr: errors.New("boom")}
		s := New("abc123", "t", api, nil)
		s.SetTTSEnabled(true)

		s.Send(context.Background(), "hi")
		if api.ttsCalls != 0 {
			t.Error("tts must not voice the fallback reply")
		}
	})
}

// TestSend_TTSFailureIsolated verifies a tts failure never alters the
// message log or the returned reply.
func TestSend_TTSFailureIsolated(t *testing.T) {
	api := &fakeAPI{
		sendResp: &client.ChatResponse{Success: true, Response: "fine reply"},
		ttsErr:   errors.New("tts backend down"),
	}
	s := New("abc123", "t", api, nil)
	s.SetTTSEnabled(true)

	reply, err := s.Send(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply.Text != "fine reply" {
		t.Errorf("reply.Text = %q, tts failure must not change the reply", reply.Text)
	}

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("log has %d messages, want 2", len(msgs))
	}
	if msgs[1].Text != "fine reply" {
		t.Errorf("bot entry = %q, tts failure must not touch the log", msgs[1].Text)
	}
}

// TestMessages_Snapshot verifies callers cannot mutate the internal log.
func TestMessages_Snapshot(t *testing.T) {
	api := &fakeAPI{sendResp: &client.ChatResponse{Success: true, Response: "ok"}}
	s := New("abc123", "t", api, nil)
	s.Send(context.Background(), "hi")

	snap := s.Messages()
	snap[0].Text = "mutated"

	if s.Messages()[0].Text != "hi" {
		t.Error("Messages must return a copy")
	}
}
