package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/scribeworks/mina-cli/pkg/logging"
)

// ProcessResponse is the shared envelope for the processing endpoints.
type ProcessResponse struct {
	Success        bool    `json:"success"`
	SessionID      string  `json:"session_id,omitempty"`
	VideoFile      string  `json:"video_file,omitempty"`
	AudioFile      string  `json:"audio_file,omitempty"`
	TranscriptFile string  `json:"transcript_file,omitempty"`
	PDFFile        string  `json:"pdf_file,omitempty"`
	DownloadURL    string  `json:"download_url,omitempty"`
	EmailSent      bool    `json:"email_sent,omitempty"`
	ProcessingTime float64 `json:"processing_time,omitempty"`
	Transcript     string  `json:"transcript,omitempty"`
	Language       string  `json:"language,omitempty"`
	Duration       float64 `json:"duration,omitempty"`
	OutputFile     string  `json:"output_file,omitempty"`
	Error          string  `json:"error,omitempty"`
}

// FormatsResponse lists the media formats the backend accepts.
type FormatsResponse struct {
	Success       bool     `json:"success"`
	VideoFormats  []string `json:"video_formats,omitempty"`
	AudioFormats  []string `json:"audio_formats,omitempty"`
	MaxFileSizeMB int      `json:"max_file_size_mb,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// MeetingFields carries the optional meeting metadata attached to the
// one-shot processing endpoints.
type MeetingFields struct {
	Title         string
	Date          string
	CompanyName   string
	CustomMessage string
}

// Health checks backend availability.
func (c *Client) Health(ctx context.Context) error {
	return c.Request(ctx, http.MethodGet, "/health", nil, nil)
}

// SupportedFormats fetches the media formats the backend accepts.
func (c *Client) SupportedFormats(ctx context.Context) (*FormatsResponse, error) {
	var resp FormatsResponse
	if err := c.Request(ctx, http.MethodGet, "/supported-formats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TranscribeOnly uploads a recording for transcription without the full
// processing pipeline. The multipart field is selected by the declared
// media type: video/* uploads as video_file, everything else as audio_file.
func (c *Client) TranscribeOnly(ctx context.Context, fileName, mediaType string, content io.Reader) (*ProcessResponse, error) {
	field := "audio_file"
	if strings.HasPrefix(mediaType, "video/") {
		field = "video_file"
	}

	files := []FormFile{{FieldName: field, FileName: fileName, Reader: content}}

	var resp ProcessResponse
	if err := c.FormRequest(ctx, "/transcribe-only", nil, files, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProcessVideo runs the full pipeline on a video recording: transcription,
// minutes generation, and optional email dispatch.
func (c *Client) ProcessVideo(ctx context.Context, fileName string, content io.Reader, recipients []string, meeting MeetingFields) (*ProcessResponse, error) {
	return c.process(ctx, "/process-video", "video_file", fileName, content, recipients, meeting)
}

// ProcessAudio runs the full pipeline on an audio recording.
func (c *Client) ProcessAudio(ctx context.Context, fileName string, content io.Reader, recipients []string, meeting MeetingFields) (*ProcessResponse, error) {
	return c.process(ctx, "/process-audio", "audio_file", fileName, content, recipients, meeting)
}

// process is the shared multipart pipeline submission.
func (c *Client) process(ctx context.Context, path, field, fileName string, content io.Reader, recipients []string, meeting MeetingFields) (*ProcessResponse, error) {
	fields := map[string]string{
		"recipients": strings.Join(recipients, ","),
	}
	addMeetingFields(fields, meeting)

	files := []FormFile{{FieldName: field, FileName: fileName, Reader: content}}

	var resp ProcessResponse
	if err := c.FormRequest(ctx, path, fields, files, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// addMeetingFields appends the non-empty meeting metadata fields.
func addMeetingFields(fields map[string]string, meeting MeetingFields) {
	if meeting.Title != "" {
		fields["meeting_title"] = meeting.Title
	}
	if meeting.Date != "" {
		fields["meeting_date"] = meeting.Date
	}
	if meeting.CompanyName != "" {
		fields["company_name"] = meeting.CompanyName
	}
	if meeting.CustomMessage != "" {
		fields["custom_message"] = meeting.CustomMessage
	}
}

// ProcessTranscript runs the full pipeline on raw transcript text.
func (c *Client) ProcessTranscript(ctx context.Context, transcript string, recipients []string, meeting MeetingFields) (*ProcessResponse, error) {
	body := map[string]interface{}{
		"transcript":     transcript,
		"recipients":     recipients,
		"meeting_title":  meeting.Title,
		"meeting_date":   meeting.Date,
		"company_name":   meeting.CompanyName,
		"custom_message": meeting.CustomMessage,
	}

	var resp ProcessResponse
	if err := c.Request(ctx, http.MethodPost, "/process-transcript", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DownloadURL returns the absolute URL for a generated file. Pure string
// formatting; the origin is whatever the client was configured with.
func (c *Client) DownloadURL(filename string) string {
	return c.baseURL + "/download/" + filename
}

// AudioURL returns the absolute URL for a synthesized audio file.
func (c *Client) AudioURL(filename string) string {
	return c.baseURL + "/audio/" + filename
}

// Download fetches a binary payload from a backend path and writes it to
// destDir under the payload's base name. Returns the saved file path.
func (c *Client) Download(ctx context.Context, urlPath, destDir string) (string, error) {
	target := urlPath
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		if !strings.HasPrefix(target, "/") {
			target = "/" + target
		}
		target = c.baseURL + target
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &TransportError{StatusCode: resp.StatusCode}
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}

	name := filepath.Base(target)
	dest := filepath.Join(destDir, name)

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("writing file: %w", err)
	}

	c.log.Info("downloaded file",
		logging.F("path", urlPath),
		logging.F("dest", dest))

	return dest, nil
}
