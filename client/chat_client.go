package client

import (
	"context"
	"net/http"
	"net/url"
)

// SessionResponse is the envelope for the chat bootstrap endpoint.
type SessionResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ChatResponse is the envelope for a single chat exchange.
type ChatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// PDFResponse is the envelope for minutes generation.
type PDFResponse struct {
	Success     bool   `json:"success"`
	PDFFile     string `json:"pdf_file,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// EmailResponse is the envelope for email dispatch.
type EmailResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// TTSResponse is the envelope for text-to-speech synthesis.
type TTSResponse struct {
	Success  bool   `json:"success"`
	AudioURL string `json:"audio_url,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// MeetingDetails carries the meeting metadata for minutes and email
// requests, mapped onto the backend's field names on the wire.
type MeetingDetails struct {
	Title         string   `json:"meeting_title"`
	Date          string   `json:"meeting_date"`
	CompanyName   string   `json:"company_name"`
	Recipients    []string `json:"recipients,omitempty"`
	CustomMessage string   `json:"custom_message,omitempty"`
}

// StartSession bootstraps a chat session from a transcript. An empty
// transcript is valid; the backend decides what to do with it.
func (c *Client) StartSession(ctx context.Context, transcript string) (*SessionResponse, error) {
	body := map[string]string{"transcript": transcript}

	var resp SessionResponse
	if err := c.Request(ctx, http.MethodPost, "/chat/start", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendMessage sends one user message to a chat session.
func (c *Client) SendMessage(ctx context.Context, sessionID, message string) (*ChatResponse, error) {
	body := map[string]string{"message": message}

	var resp ChatResponse
	if err := c.Request(ctx, http.MethodPost, sessionPath(sessionID, "message"), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateMinutes requests PDF minutes for a session.
func (c *Client) GenerateMinutes(ctx context.Context, sessionID string, details MeetingDetails) (*PDFResponse, error) {
	body := map[string]string{
		"meeting_title":  details.Title,
		"meeting_date":   details.Date,
		"company_name":   details.CompanyName,
		"custom_message": details.CustomMessage,
	}

	var resp PDFResponse
	if err := c.Request(ctx, http.MethodPost, sessionPath(sessionID, "generate-minutes"), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendEmail requests email dispatch of the minutes for a session.
func (c *Client) SendEmail(ctx context.Context, sessionID string, details MeetingDetails) (*EmailResponse, error) {
	body := map[string]interface{}{
		"meeting_title":  details.Title,
		"meeting_date":   details.Date,
		"company_name":   details.CompanyName,
		"recipients":     details.Recipients,
		"custom_message": details.CustomMessage,
	}

	var resp EmailResponse
	if err := c.Request(ctx, http.MethodPost, sessionPath(sessionID, "send-email"), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateTTS requests text-to-speech synthesis of the given text.
func (c *Client) GenerateTTS(ctx context.Context, sessionID, text string) (*TTSResponse, error) {
	body := map[string]string{"text": text}

	var resp TTSResponse
	if err := c.Request(ctx, http.MethodPost, sessionPath(sessionID, "tts"), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// sessionPath formats a per-session endpoint path.
func sessionPath(sessionID, op string) string {
	return "/chat/" + url.PathEscape(sessionID) + "/" + op
}
