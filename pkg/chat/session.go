// Package chat maintains the message log for one chat session and drives
// message exchange with the backend's conversational engine.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scribeworks/mina-cli/client"
	merrors "github.com/scribeworks/mina-cli/pkg/errors"
	"github.com/scribeworks/mina-cli/pkg/logging"
)

// Sender identifies the author of a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one entry in the session log. Messages are appended, never
// mutated or removed; IDs are uniqueness-only and carry no ordering.
type Message struct {
	ID        string
	Text      string
	Sender    Sender
	Timestamp time.Time
}

// FallbackReply is appended in place of a bot reply when the exchange
// fails for any reason. The log always gains exactly one bot entry per
// user entry.
const FallbackReply = "I'm sorry, I'm having trouble responding right now. Please try again."

// API is the backend surface the session needs.
type API interface {
	SendMessage(ctx context.Context, sessionID, message string) (*client.ChatResponse, error)
	GenerateTTS(ctx context.Context, sessionID, text string) (*client.TTSResponse, error)
}

// Session owns the ordered message log for one session id. The log is
// never shared across sessions; starting over means constructing a new
// Session, which discards the prior log entirely.
type Session struct {
	id         string
	transcript string
	api        API
	log        logging.Logger

	mu         sync.Mutex
	messages   []Message
	typing     bool
	active     bool
	ttsEnabled bool

	// onAudio receives the synthesized audio URL after a successful TTS
	// round trip. Nil means replies are not voiced.
	onAudio func(audioURL string)

	// now is swappable for deterministic timestamps in tests.
	now func() time.Time
}

// New creates an active Session over an established backend session id.
func New(id, transcript string, api API, log logging.Logger) *Session {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Session{
		id:         id,
		transcript: transcript,
		api:        api,
		log:        log,
		active:     true,
		now:        time.Now,
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Transcript returns the transcript the session was bootstrapped from.
func (s *Session) Transcript() string { return s.transcript }

// Active reports whether the session accepts sends.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// End deactivates the session. Ended sessions reject sends; the log
// remains readable until the Session is discarded.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

// SetTTSEnabled toggles voicing of bot replies. Off by default.
func (s *Session) SetTTSEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttsEnabled = enabled
}

// TTSEnabled reports the voicing toggle.
func (s *Session) TTSEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ttsEnabled
}

// OnAudio registers the callback receiving synthesized audio URLs.
func (s *Session) OnAudio(fn func(audioURL string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAudio = fn
}

// Typing reports whether a send is in flight.
func (s *Session) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

// Messages returns a snapshot of the log in insertion order.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Send exchanges one message with the backend. The user message is
// appended optimistically before the network call resolves; the reply (or
// the fallback) is appended after. Empty or whitespace-only text is a
// no-op: no state change, no network call, and callers treat the returned
// ErrEmptyMessage as a silent skip.
func (s *Session) Send(ctx context.Context, text string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, merrors.ErrEmptyMessage
	}

	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return Message{}, merrors.ErrSessionInactive
	}
	s.messages = append(s.messages, Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    SenderUser,
		Timestamp: s.now(),
	})
	s.typing = true
	ttsEnabled := s.ttsEnabled
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.typing = false
		s.mu.Unlock()
	}()

	ctx = context.WithValue(ctx, logging.SessionIDKey, s.id)

	replyText := FallbackReply
	replied := false

	resp, err := s.api.SendMessage(ctx, s.id, text)
	switch {
	case err != nil:
		s.log.Error("chat message failed", logging.F("session_id", s.id), logging.Err(err))
	case !resp.Success || resp.Response == "":
		s.log.Error("chat message rejected", logging.F("session_id", s.id), logging.F("reason", resp.Error))
	default:
		replyText = resp.Response
		replied = true
	}

	reply := Message{
		ID:        uuid.NewString(),
		Text:      replyText,
		Sender:    SenderBot,
		Timestamp: s.now(),
	}

	s.mu.Lock()
	s.messages = append(s.messages, reply)
	s.mu.Unlock()

	if replied && ttsEnabled {
		s.voice(ctx, replyText)
	}

	return reply, nil
}

// voice requests text-to-speech for a reply. Fully isolated: failures are
// logged and swallowed, and the message log is never touched.
func (s *Session) voice(ctx context.Context, text string) {
	resp, err := s.api.GenerateTTS(ctx, s.id, text)
	if err != nil {
		s.log.Warn("tts failed", logging.F("session_id", s.id), logging.Err(err))
		return
	}
	if !resp.Success || resp.AudioURL == "" {
		s.log.Warn("tts rejected", logging.F("session_id", s.id), logging.F("reason", resp.Error))
		return
	}

	s.mu.Lock()
	onAudio := s.onAudio
	s.mu.Unlock()

	if onAudio != nil {
		onAudio(resp.AudioURL)
	}
}
