// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docchat-tui/internal/agent"
	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/session"
	"github.com/jeranaias/docchat-tui/internal/storage"
	"github.com/jeranaias/docchat-tui/internal/ui/components"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
)

// defaultPrompt is sent when the user attaches documents without typing
// a message.
const defaultPrompt = "Please analyze this document."

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	cfg    *config.Config
	client *agent.Client
	store  *storage.TranscriptStore // nil when history is disabled
	mgr    *session.Manager

	transcript *model.Transcript

	// Components
	theme     *styles.Theme
	keys      KeyMap
	viewport  viewport.Model
	textarea  textarea.Model
	attach    textinput.Model
	spinner   components.Spinner
	statusBar *components.StatusBar
	welcome   *components.Welcome
	banner    *components.ErrorBanner
	markdown  *components.Markdown

	// Pending attachments for the next send
	pendingFiles []agent.LocalFile

	// In-flight stream
	streamCh     <-chan agent.StreamEvent
	streamCancel context.CancelFunc

	status    components.Status
	attaching bool
	width     int
	height    int
	ready     bool
}

// NewModel builds the chat model. store may be nil when history is
// disabled.
func NewModel(cfg *config.Config, client *agent.Client, store *storage.TranscriptStore) *Model {
	theme := styles.NewTheme(cfg.UI.Theme)

	ta := textarea.New()
	ta.Placeholder = "Ask about your documents..."
	ta.Prompt = "> "
	ta.SetHeight(3)
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.Focus()

	ai := textinput.New()
	ai.Placeholder = "path/to/document.pdf"
	ai.Prompt = "attach: "

	mgrCfg := session.DefaultConfig()
	mgrCfg.Timeout = cfg.SessionTimeout()
	mgrCfg.AutoSaveEnabled = cfg.Session.AutoSave && cfg.History.Enabled

	m := &Model{
		cfg:        cfg,
		client:     client,
		store:      store,
		mgr:        session.NewManager(mgrCfg),
		transcript: model.NewTranscript(),
		theme:      theme,
		keys:       DefaultKeyMap(),
		textarea:   ta,
		attach:     ai,
		spinner:    components.NewSpinner(),
		statusBar:  components.NewStatusBar(theme),
		welcome:    components.NewWelcome(theme),
		banner:     components.NewErrorBanner(theme),
		markdown:   components.NewMarkdown(cfg.UI.Theme != "light", 80),
		status:     components.StatusIdle,
	}
	return m
}

// Init starts session creation and the periodic session tick.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		createSessionCmd(m.client),
		session.TickCmd(),
		textarea.Blink,
	)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all messages for the chat screen.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	suppressInput := false

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		// Keys consumed by a binding must not leak into the inputs.
		suppressInput = key.Matches(msg, m.keys.Submit) ||
			key.Matches(msg, m.keys.Attach) ||
			key.Matches(msg, m.keys.Cancel) ||
			key.Matches(msg, m.keys.Dismiss) ||
			key.Matches(msg, m.keys.Quit) ||
			key.Matches(msg, m.keys.Clear)

	case SessionReadyMsg:
		m.mgr.Attach(msg.Session)
		m.transcript.SessionID = msg.Session.ID
		m.status = components.StatusReady
		m.statusBar.SessionID = msg.Session.ID

	case SessionErrMsg:
		m.status = components.StatusError
		m.banner.ShowError(msg.Err)

	case StreamStartedMsg:
		m.streamCh = msg.Events
		m.streamCancel = msg.Cancel
		cmds = append(cmds, waitForEventCmd(m.streamCh))

	case StreamEventMsg:
		cmd := m.handleStreamEvent(msg.Event)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}

	case StreamDoneMsg:
		m.streamCh = nil
		if m.streamCancel != nil {
			m.streamCancel()
			m.streamCancel = nil
		}
		// The channel closing without a terminal event means the turn
		// never finished; settle it so nothing is left stuck streaming.
		if last := m.transcript.GetLastTurn(); last != nil && last.IsStreaming {
			if cmd := m.finishStream(context.Canceled); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}

	case AttachedMsg:
		m.attaching = false
		m.attach.Reset()
		m.textarea.Focus()
		if msg.Err != nil {
			m.banner.Show("Attach failed", msg.Err.Error())
			break
		}
		kept, warnings := agent.FilterOversize([]agent.LocalFile{msg.File})
		for _, w := range warnings {
			m.banner.Show("File too large", w.String())
		}
		m.pendingFiles = append(m.pendingFiles, kept...)
		m.statusBar.AttachmentCount = len(m.pendingFiles)

	case session.TickMsg:
		if cmd := m.mgr.HandleTick(); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case session.TimeoutWarningMsg:
		m.banner.Show("Session expiring", "The session will expire soon. Send a message to keep it alive.")

	case session.TimeoutMsg:
		m.banner.Show("Session expired", "Start a new conversation to continue.")
		m.status = components.StatusIdle

	case session.AutoSaveMsg:
		if cmd := m.saveTranscriptCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case TranscriptSavedMsg:
		if msg.Err != nil {
			log.Printf("chat: transcript save failed: %v", msg.Err)
		} else {
			m.mgr.MarkClean()
		}
	}

	// Forward to components regardless of message type.
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	if !suppressInput && !m.attaching && m.streamCh == nil {
		m.textarea, cmd = m.textarea.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if !suppressInput && m.attaching {
		m.attach, cmd = m.attach.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	m.viewport, cmd = m.viewport.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}

	m.statusBar.Status = m.status
	m.statusBar.TurnCount = m.transcript.TurnCount()
	m.refreshViewport()

	return m, tea.Batch(cmds...)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.attaching {
		switch {
		case key.Matches(msg, m.keys.Submit):
			path := strings.TrimSpace(m.attach.Value())
			if path == "" {
				m.attaching = false
				m.textarea.Focus()
				return nil
			}
			return attachFileCmd(path)
		case key.Matches(msg, m.keys.Dismiss):
			m.attaching = false
			m.attach.Reset()
			m.textarea.Focus()
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.streamCancel != nil {
			m.streamCancel()
		}
		return tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.streamCh != nil {
			// Cancel the in-flight turn; the terminal event arrives
			// through the normal stream path.
			if m.streamCancel != nil {
				m.streamCancel()
			}
			return nil
		}
		return tea.Quit

	case key.Matches(msg, m.keys.Dismiss):
		m.banner.Dismiss()

	case key.Matches(msg, m.keys.Attach):
		if m.streamCh != nil {
			return nil
		}
		m.attaching = true
		m.textarea.Blur()
		m.attach.Focus()
		return textinput.Blink

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Clear):
		if m.streamCh == nil {
			m.transcript.ClearHistory()
			m.mgr.MarkDirty()
		}
	}
	return nil
}

// submit dispatches the composed message as a new turn.
func (m *Model) submit() tea.Cmd {
	if m.streamCh != nil || !m.mgr.IsReady() {
		return nil
	}

	text := strings.TrimSpace(m.textarea.Value())
	if text == "" && len(m.pendingFiles) == 0 {
		return nil
	}

	// File-only sends go out with empty text; the default prompt is
	// display-side only.
	displayText := text
	if displayText == "" {
		displayText = defaultPrompt
	}

	attachments := make([]model.Attachment, 0, len(m.pendingFiles))
	for _, f := range m.pendingFiles {
		attachments = append(attachments, model.Attachment{
			DisplayName: f.Name,
			MIMEType:    f.MIMEType,
		})
	}

	m.transcript.AddUserTurnWithAttachments(displayText, attachments)
	m.transcript.AddAssistantTurn()
	m.banner.Dismiss()
	m.mgr.RecordActivity()
	m.mgr.MarkDirty()

	files := m.pendingFiles
	m.pendingFiles = nil
	m.statusBar.AttachmentCount = 0
	m.textarea.Reset()

	if len(files) > 0 {
		m.status = components.StatusUploading
		m.spinner.SetMessage("Uploading attachments")
	} else {
		m.status = components.StatusAnalyzing
		m.spinner.SetMessage("Analyzing document")
	}

	return tea.Batch(
		m.spinner.Start(),
		startStreamCmd(m.client, m.mgr.Handle(), text, files),
	)
}

// =============================================================================
// STREAM HANDLING
// =============================================================================

func (m *Model) handleStreamEvent(ev agent.StreamEvent) tea.Cmd {
	if ev.Done {
		return m.finishStream(ev.Err)
	}

	m.transcript.ApplyEvent(ev)

	switch ev.Kind {
	case agent.EventStatus:
		m.spinner.SetMessage(strings.TrimSuffix(ev.Text, "..."))
		if strings.HasPrefix(ev.Text, "Uploading") {
			m.status = components.StatusUploading
		} else {
			m.status = components.StatusAnalyzing
		}
	case agent.EventContent:
		m.status = components.StatusStreaming
		m.spinner.SetMessage("Streaming")
	}

	return waitForEventCmd(m.streamCh)
}

// finishStream handles the terminal event of a send.
func (m *Model) finishStream(err error) tea.Cmd {
	m.spinner.Stop()

	var cmds []tea.Cmd
	if m.streamCh != nil {
		// Drain the channel close so no goroutine leaks.
		cmds = append(cmds, waitForEventCmd(m.streamCh))
	}

	if err != nil {
		m.status = components.StatusError
		m.transcript.FailLast(err.Error())
		m.banner.ShowError(err)
	} else {
		m.status = components.StatusReady
		m.transcript.FinalizeLast()
	}

	m.mgr.RecordTurn()
	m.mgr.MarkDirty()
	if cmd := m.saveTranscriptCmd(); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return tea.Batch(cmds...)
}

// saveTranscriptCmd persists the transcript in the background. Saves
// are skipped while a turn streams so the snapshot is always settled.
func (m *Model) saveTranscriptCmd() tea.Cmd {
	if m.store == nil || m.transcript.IsEmpty() || !m.mgr.IsDirty() {
		return nil
	}
	if m.streamCh != nil && m.status == components.StatusStreaming {
		return nil
	}
	snapshot := m.transcript.Clone()
	store := m.store
	return func() tea.Msg {
		return TranscriptSavedMsg{Err: store.Save(snapshot)}
	}
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)
	m.statusBar.SetWidth(width)
	m.welcome.SetWidth(width)
	m.markdown.SetWidth(width - 6)
	m.textarea.SetWidth(width - 4)
	m.attach.Width = width - 12

	vpHeight := height - m.chromeHeight()
	if vpHeight < 3 {
		vpHeight = 3
	}
	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.refreshViewport()
}
