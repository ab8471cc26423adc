// Package upload implements the upload/transcription flow: a staged
// progress state machine that turns a media file into a chat session via
// the transcribe-only and session-bootstrap endpoints.
package upload

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/scribeworks/mina-cli/client"
	merrors "github.com/scribeworks/mina-cli/pkg/errors"
	"github.com/scribeworks/mina-cli/pkg/logging"
)

// Status is the upload flow state.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusUploading  Status = "uploading"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Progress is the observable upload state. The happy path moves
// idle -> uploading(0) -> uploading(30) -> processing(50) ->
// processing(80) -> complete(100); error(0) is reachable from any
// non-terminal state. Terminal states are complete and error; only an
// explicit Reset returns the flow to idle.
type Progress struct {
	Uploading bool
	Percent   int
	Status    Status
}

// Session is a bootstrapped chat session.
type Session struct {
	ID         string
	Transcript string
	Active     bool
}

// API is the backend surface the flow needs.
type API interface {
	TranscribeOnly(ctx context.Context, fileName, mediaType string, content io.Reader) (*client.ProcessResponse, error)
	StartSession(ctx context.Context, transcript string) (*client.SessionResponse, error)
}

// DemoTranscript is the built-in transcript used by DemoStart to exercise
// the chat session without a real recording.
const DemoTranscript = `This is a sample meeting transcript for testing purposes.

Participants: John Smith, Sarah Johnson, Mike Davis

Meeting started at 10:00 AM.

John: Welcome everyone to today's team meeting. Let's start by reviewing our quarterly goals.

Sarah: Thanks John. I wanted to update everyone on the marketing campaign we launched last week. We've seen a 25% increase in engagement.

Mike: That's great news Sarah. From the development side, we've completed 80% of the features for the next release.

John: Excellent progress. Let's discuss the action items for next week.

Action Items:
1. Sarah to prepare detailed marketing report by Friday
2. Mike to complete remaining features by Wednesday
3. Schedule follow-up meeting for next Monday

Meeting ended at 10:45 AM.`

// Flow drives one upload at a time. Progress transitions are serialized
// under an internal mutex; observers see each transition in order.
type Flow struct {
	api API
	log logging.Logger

	mu       sync.Mutex
	progress Progress
	observer func(Progress)

	// now is swappable for deterministic fallback session ids in tests.
	now func() time.Time
}

// New creates a Flow in the idle state.
func New(api API, log logging.Logger) *Flow {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Flow{
		api:      api,
		log:      log,
		progress: Progress{Status: StatusIdle},
		now:      time.Now,
	}
}

// OnProgress registers a callback invoked on every transition.
func (f *Flow) OnProgress(fn func(Progress)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observer = fn
}

// Progress returns the current state snapshot.
func (f *Flow) Progress() Progress {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.progress
}

// Reset returns the flow to idle. This is the only way out of a terminal
// state, mirroring the explicit navigation back home.
func (f *Flow) Reset() {
	f.set(Progress{Status: StatusIdle})
}

// set replaces the progress state and notifies the observer.
func (f *Flow) set(p Progress) {
	f.mu.Lock()
	f.progress = p
	observer := f.observer
	f.mu.Unlock()

	if observer != nil {
		observer(p)
	}
}

// active reports whether an upload is currently running.
func (f *Flow) active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.progress.Status == StatusUploading || f.progress.Status == StatusProcessing
}

// Submit runs the full flow for one media file: validate the declared
// media type, transcribe, and bootstrap a chat session from the result.
// No partial session is ever created; any failure lands in the error
// state with no session returned.
func (f *Flow) Submit(ctx context.Context, fileName, mediaType string, content io.Reader) (*Session, error) {
	if f.active() {
		return nil, merrors.ErrUploadInProgress
	}

	f.set(Progress{Uploading: true, Percent: 0, Status: StatusUploading})
	f.set(Progress{Uploading: true, Percent: 30, Status: StatusUploading})

	if !strings.HasPrefix(mediaType, "video/") && !strings.HasPrefix(mediaType, "audio/") {
		f.fail()
		return nil, fmt.Errorf("%w: %s", merrors.ErrUnsupportedMedia, mediaType)
	}

	f.set(Progress{Uploading: true, Percent: 50, Status: StatusProcessing})

	result, err := f.api.TranscribeOnly(ctx, fileName, mediaType, content)
	if err != nil {
		f.log.Error("transcription failed", logging.F("file", fileName), logging.Err(err))
		f.fail()
		return nil, fmt.Errorf("transcribing %s: %w", fileName, err)
	}
	if !result.Success {
		f.log.Error("transcription rejected", logging.F("file", fileName), logging.F("reason", result.Error))
		f.fail()
		return nil, &client.APIError{Op: "transcribe", Message: result.Error}
	}

	f.set(Progress{Uploading: true, Percent: 80, Status: StatusProcessing})

	// An absent transcript bootstraps an empty session; that is not an error.
	return f.bootstrap(ctx, result.Transcript, "session")
}

// DemoStart bootstraps a session from the built-in demo transcript,
// bypassing upload and transcription entirely.
func (f *Flow) DemoStart(ctx context.Context) (*Session, error) {
	if f.active() {
		return nil, merrors.ErrUploadInProgress
	}

	f.set(Progress{Uploading: true, Percent: 0, Status: StatusProcessing})
	f.set(Progress{Uploading: true, Percent: 50, Status: StatusProcessing})

	return f.bootstrap(ctx, DemoTranscript, "demo-session")
}

// bootstrap starts the chat session and completes the flow. Shared by
// Submit and DemoStart from the session-construction step onward.
func (f *Flow) bootstrap(ctx context.Context, transcript, idPrefix string) (*Session, error) {
	resp, err := f.api.StartSession(ctx, transcript)
	if err != nil {
		f.log.Error("session bootstrap failed", logging.Err(err))
		f.fail()
		return nil, fmt.Errorf("starting chat session: %w", err)
	}
	if !resp.Success {
		f.log.Error("session bootstrap rejected", logging.F("reason", resp.Error))
		f.fail()
		return nil, &client.APIError{Op: "chat/start", Message: resp.Error}
	}

	id := resp.SessionID
	if id == "" {
		id = fmt.Sprintf("%s-%d", idPrefix, f.now().UnixMilli())
	}

	session := &Session{
		ID:         id,
		Transcript: transcript,
		Active:     true,
	}

	f.set(Progress{Uploading: false, Percent: 100, Status: StatusComplete})
	f.log.Info("session ready", logging.F("session_id", session.ID))

	return session, nil
}

// fail moves the flow to the error state.
func (f *Flow) fail() {
	f.set(Progress{Uploading: false, Percent: 0, Status: StatusError})
}
