// Package cmd provides CLI commands for the mina tool.
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/scribeworks/mina-cli/client"
	"github.com/scribeworks/mina-cli/config"
	"github.com/scribeworks/mina-cli/pkg/chat"
	merrors "github.com/scribeworks/mina-cli/pkg/errors"
	"github.com/scribeworks/mina-cli/pkg/logging"
	"github.com/scribeworks/mina-cli/pkg/minutes"
	"github.com/scribeworks/mina-cli/pkg/upload"
)

// Chat command flags.
var (
	chatTranscript string
	chatMedia      string
	chatDemo       bool
	chatTTS        bool
	chatMessage    string
	chatTitle      string
	chatDate       string
	chatCompany    string
)

// ChatCommandDeps holds the dependencies for the chat command.
type ChatCommandDeps struct {
	LoadConfig func() (*config.CLIConfig, error)
}

// DefaultChatDeps returns the default dependencies for production use.
func DefaultChatDeps() *ChatCommandDeps {
	return &ChatCommandDeps{
		LoadConfig: loadConfigWithKey,
	}
}

// NewChatCommand creates the chat command.
func NewChatCommand(deps *ChatCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultChatDeps()
	}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat about a meeting",
		Long: `Start an interactive chat session about a meeting.

The session needs a transcript: provide one with --transcript, upload
a recording with --media, or use --demo for a built-in sample meeting.

Inside the session, type messages and press enter. Special commands:

  /minutes            Generate PDF minutes for this meeting
  /email <a@b,c@d>    Email the minutes to the given recipients
  /quit               End the session

Flags:
  --transcript FILE   Transcript text file ("-" reads stdin)
  --media FILE        Recording to upload and transcribe first
  --demo              Use the built-in sample meeting
  --tts               Voice bot replies (downloads synthesized audio)
  --message TEXT      Send one message and exit instead of a session
  --title, --date, --company   Meeting details for /minutes and /email

Examples:
  mina chat --transcript meeting.txt
  mina chat --media standup.mp3 --tts
  mina chat --demo
  mina chat --transcript meeting.txt --message "What were the action items?"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, deps)
		},
	}

	cmd.Flags().StringVar(&chatTranscript, "transcript", "", "Transcript text file (\"-\" reads stdin)")
	cmd.Flags().StringVar(&chatMedia, "media", "", "Recording to upload and transcribe first")
	cmd.Flags().BoolVar(&chatDemo, "demo", false, "Use the built-in sample meeting")
	cmd.Flags().BoolVar(&chatTTS, "tts", false, "Voice bot replies")
	cmd.Flags().StringVar(&chatMessage, "message", "", "Send one message and exit")
	cmd.Flags().StringVar(&chatTitle, "title", "", "Meeting title for minutes and email")
	cmd.Flags().StringVar(&chatDate, "date", "", "Meeting date for minutes and email")
	cmd.Flags().StringVar(&chatCompany, "company", "", "Company name for minutes and email")

	return cmd
}

// runChat bootstraps a session from one of the transcript sources and
// hands off to the REPL or the one-shot path.
func runChat(cmd *cobra.Command, deps *ChatCommandDeps) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log, cleanup := newLogger(cfg)
	defer cleanup()

	c := apiClient(cfg, log)
	flow := upload.New(c, log)

	var session *upload.Session
	switch {
	case chatDemo:
		session, err = flow.DemoStart(cmd.Context())
	case chatMedia != "":
		f, openErr := os.Open(chatMedia)
		if openErr != nil {
			return fmt.Errorf("opening recording: %w", openErr)
		}
		defer f.Close()
		session, err = flow.Submit(cmd.Context(), chatMedia, detectMediaType(chatMedia), f)
	case chatTranscript != "":
		text, readErr := readTranscript(chatTranscript, cmd.InOrStdin())
		if readErr != nil {
			return readErr
		}
		session, err = bootstrapFromTranscript(cmd, c, text)
	default:
		return errors.New("a transcript source is required: --transcript, --media, or --demo")
	}
	if err != nil {
		return err
	}

	ttsEnabled := chatTTS || cfg.TTSEnabled

	if chatMessage != "" {
		s := chat.New(session.ID, session.Transcript, c, log)
		s.SetTTSEnabled(ttsEnabled)
		reply, err := s.Send(cmd.Context(), chatMessage)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
		return nil
	}

	return runChatREPL(cmd, cfg, log, c, session, ttsEnabled)
}

// bootstrapFromTranscript starts a backend session directly from text.
func bootstrapFromTranscript(cmd *cobra.Command, c *client.Client, text string) (*upload.Session, error) {
	resp, err := c.StartSession(cmd.Context(), text)
	if err != nil {
		return nil, fmt.Errorf("starting chat session: %w", err)
	}
	if !resp.Success {
		return nil, &client.APIError{Op: "chat/start", Message: resp.Error}
	}

	id := resp.SessionID
	if id == "" {
		id = fmt.Sprintf("session-%d", time.Now().UnixMilli())
	}
	return &upload.Session{ID: id, Transcript: text, Active: true}, nil
}

// runChatREPL runs the interactive message loop over an established
// session. Shared by the chat and upload commands.
func runChatREPL(cmd *cobra.Command, cfg *config.CLIConfig, log logging.Logger, c *client.Client, session *upload.Session, tts bool) error {
	out := cmd.OutOrStdout()

	s := chat.New(session.ID, session.Transcript, c, log)
	s.SetTTSEnabled(tts)

	downloadDir, err := cfg.GetDownloadDir()
	if err != nil {
		return err
	}

	if tts {
		s.OnAudio(func(audioURL string) {
			saved, err := c.Download(cmd.Context(), audioURL, downloadDir)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "audio download failed: %v\n", err)
				return
			}
			fmt.Fprintf(out, "  [audio: %s]\n", saved)
		})
	}

	interactive := false
	if f, ok := cmd.InOrStdin().(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}

	fmt.Fprintf(out, "Chatting about session %s. Type /quit to end.\n", session.ID)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if interactive {
			fmt.Fprint(out, "you> ")
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()

		if handled, quit, err := handleChatCommand(cmd, cfg, log, c, session, downloadDir, line); handled {
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
			if quit {
				break
			}
			continue
		}

		reply, err := s.Send(cmd.Context(), line)
		if merrors.IsEmptyMessage(err) {
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "mina> %s\n", reply.Text)
	}

	s.End()
	fmt.Fprintln(out, "Session ended.")
	return scanner.Err()
}

// handleChatCommand dispatches the slash commands available inside a
// session. Returns handled=false for ordinary messages.
func handleChatCommand(cmd *cobra.Command, cfg *config.CLIConfig, log logging.Logger, c *client.Client, session *upload.Session, downloadDir, line string) (handled, quit bool, err error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		return false, false, nil
	}

	fields := strings.Fields(trimmed)
	switch fields[0] {
	case "/quit", "/exit":
		return true, true, nil

	case "/minutes":
		runner := minutes.NewRunner(c, downloadDir, log)
		result, err := runner.Submit(cmd.Context(), minutes.ActionPDF, session.ID, meetingDetails(nil))
		if err != nil {
			return true, false, errors.New(minutes.FailureMessage(minutes.ActionPDF, err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", result.Message, result.PDFPath)
		time.Sleep(minutes.AutoCloseDelay)
		return true, false, nil

	case "/email":
		var recipients []string
		if len(fields) > 1 {
			recipients = splitRecipients(strings.Join(fields[1:], ","))
		}
		runner := minutes.NewRunner(c, downloadDir, log)
		result, err := runner.Submit(cmd.Context(), minutes.ActionEmail, session.ID, meetingDetails(recipients))
		if err != nil {
			if merrors.IsMissingRecipients(err) {
				return true, false, errors.New("usage: /email a@example.com,b@example.com")
			}
			return true, false, errors.New(minutes.FailureMessage(minutes.ActionEmail, err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		time.Sleep(minutes.AutoCloseDelay)
		return true, false, nil

	default:
		return true, false, fmt.Errorf("unknown command %s (try /minutes, /email, /quit)", fields[0])
	}
}

// meetingDetails assembles the details form from the chat flags.
func meetingDetails(recipients []string) minutes.Details {
	date := chatDate
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	return minutes.Details{
		Title:       chatTitle,
		Date:        date,
		CompanyName: chatCompany,
		Recipients:  recipients,
	}
}
