package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/varun-cu-unv/MedAssist/chat"
	"github.com/varun-cu-unv/MedAssist/clipboard"
	"github.com/varun-cu-unv/MedAssist/locale"
	"github.com/varun-cu-unv/MedAssist/speech"
)

const (
	// lowConfidence flags native transcripts worth double-checking
	// before they are sent.
	lowConfidence = 0.7
	// noticeTTL is how long warnings and errors stay on screen.
	noticeTTL = 5 * time.Second
)

// Messages forwarded into the program from the recorder and dispatcher.
type captureMsg speech.Update
type queryMsg chat.Update

type noticeExpireMsg struct{ seq int }
type updateAvailableMsg struct{ version string }

// captureController is the recorder surface the model drives; tests swap
// in a scripted fake.
type captureController interface {
	Start(ctx context.Context, lang string) string
	Stop()
	Active() bool
}

// queryController is the dispatcher surface the model drives.
type queryController interface {
	Send(ctx context.Context, term, lang string) error
	Busy() bool
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true)
	botStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	recStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
)

type chatModel struct {
	recorder   captureController
	dispatcher queryController
	lang       string
	backend    string

	input    textinput.Model
	vp       viewport.Model
	vpReady  bool
	messages []string

	capturing  bool
	busy       bool
	status     string
	notice     string
	noticeErr  bool
	noticeSeq  int
	lastAnswer string

	width, height int
}

func newChatModel(recorder captureController, dispatcher queryController, lang, backend string) chatModel {
	input := textinput.New()
	input.Placeholder = locale.Text(lang, locale.ChatPlaceholder)
	input.CharLimit = 200
	input.Focus()

	return chatModel{
		recorder:   recorder,
		dispatcher: dispatcher,
		lang:       lang,
		backend:    backend,
		input:      input,
		status:     locale.Text(lang, locale.StatusReady),
		messages:   []string{botStyle.Render(locale.Text(lang, locale.ChatWelcome))},
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

// inputLocked reports whether the text input is disabled: during a capture
// session and while a query is in flight. Every terminal capture or query
// transition unlocks it again.
func (m chatModel) inputLocked() bool {
	return m.capturing || m.busy
}

func (m *chatModel) setNotice(text string, isErr bool) tea.Cmd {
	m.notice = text
	m.noticeErr = isErr
	m.noticeSeq++
	seq := m.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return noticeExpireMsg{seq: seq} })
}

func (m *chatModel) append(rendered string) {
	m.messages = append(m.messages, rendered)
	if m.vpReady {
		m.vp.SetContent(strings.Join(m.messages, "\n\n"))
		m.vp.GotoBottom()
	}
}

func (m *chatModel) setStatusKey(key string) {
	m.status = locale.Text(m.lang, key)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		vpHeight := msg.Height - 6
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.vpReady {
			m.vp = viewport.New(msg.Width, vpHeight)
			m.vpReady = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = vpHeight
		}
		m.vp.SetContent(strings.Join(m.messages, "\n\n"))
		m.vp.GotoBottom()
		m.input.Width = msg.Width - 4

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.BlurMsg:
		// The terminal lost focus. An open microphone must not keep
		// recording in the background; same advisory stop as Esc.
		if m.capturing {
			m.recorder.Stop()
		}

	case captureMsg:
		return m.handleCapture(speech.Update(msg))

	case queryMsg:
		return m.handleQuery(chat.Update(msg))

	case noticeExpireMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}

	case updateAvailableMsg:
		cmd := m.setNotice("medassist "+msg.version+" is available (run: medassist update)", false)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if m.vpReady {
		m.vp, cmd = m.vp.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m chatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "ctrl+r":
		if m.capturing {
			m.recorder.Stop()
			return m, nil
		}
		if m.busy {
			return m, nil
		}
		m.recorder.Start(context.Background(), m.lang)
		return m, nil

	case "esc":
		if m.capturing {
			m.recorder.Stop()
		}
		return m, nil

	case "ctrl+y":
		if m.lastAnswer == "" {
			return m, nil
		}
		if err := clipboard.Copy(m.lastAnswer); err != nil {
			cmd := m.setNotice(err.Error(), true)
			return m, cmd
		}
		cmd := m.setNotice(locale.Text(m.lang, locale.NoticeCopied), false)
		return m, cmd

	case "enter":
		if m.inputLocked() {
			return m, nil
		}
		term := strings.TrimSpace(m.input.Value())
		if term == "" {
			return m, nil
		}
		// Pending and settle arrive as queryMsg updates. A rejected send
		// means a prior query settled after the lock check; keep the
		// typed text and say so instead of dropping the question.
		if err := m.dispatcher.Send(context.Background(), term, m.lang); err != nil {
			cmd := m.setNotice(locale.Text(m.lang, locale.NoticeBusy), false)
			return m, cmd
		}
		return m, nil
	}

	if m.inputLocked() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) handleCapture(u speech.Update) (tea.Model, tea.Cmd) {
	switch u.State {
	case speech.StateRecording:
		m.capturing = true
		m.input.Blur()
		m.setStatusKey(locale.StatusListening)

	case speech.StateFinalizing:
		m.setStatusKey(locale.StatusTranscribing)

	case speech.StateSucceeded:
		m.capturing = false
		m.setStatusKey(locale.StatusReady)
		m.input.SetValue(u.Transcript.Text)
		m.input.CursorEnd()
		m.input.Focus()
		if u.Transcript.Confidence < lowConfidence {
			cmd := m.setNotice(locale.Text(m.lang, locale.WarnLowConfidence), false)
			return m, cmd
		}

	case speech.StateFailed:
		m.capturing = false
		m.setStatusKey(locale.StatusReady)
		m.input.Focus()
		cmd := m.setNotice(locale.Text(m.lang, u.Err.LocaleKey()), true)
		return m, cmd
	}
	return m, nil
}

func (m chatModel) handleQuery(u chat.Update) (tea.Model, tea.Cmd) {
	switch u.Phase {
	case chat.PhasePending:
		m.busy = true
		m.input.Reset()
		m.input.Blur()
		m.setStatusKey(locale.StatusThinking)
		m.append(userStyle.Render("You: ") + botStyle.Render(u.Query))

	case chat.PhaseAnswered:
		m.busy = false
		m.input.Focus()
		m.setStatusKey(locale.StatusReady)
		m.append(m.renderCard(u))

	case chat.PhaseFailed:
		m.busy = false
		m.input.Focus()
		m.setStatusKey(locale.StatusReady)
		text := u.Message
		if text == "" {
			text = locale.Text(m.lang, locale.ErrQueryFailed)
		}
		m.append(botStyle.Render(text))
	}
	return m, nil
}

// renderCard lays out a structured drug record: the headline, then every
// field labeled and truncated to its display budget.
func (m *chatModel) renderCard(u chat.Update) string {
	var b strings.Builder
	if u.Message != "" {
		b.WriteString(botStyle.Render(u.Message))
		b.WriteString("\n")
	}
	var plain strings.Builder
	plain.WriteString(u.Message)
	plain.WriteString("\n")
	for _, f := range chat.Fields(u.Info, m.lang) {
		b.WriteString(labelStyle.Render(f.Label+": ") + botStyle.Render(f.Value) + "\n")
		fmt.Fprintf(&plain, "%s: %s\n", f.Label, f.Value)
	}
	m.lastAnswer = strings.TrimRight(plain.String(), "\n")
	return strings.TrimRight(b.String(), "\n")
}

func (m chatModel) View() string {
	if !m.vpReady {
		return "Loading..."
	}

	title := titleStyle.Render("MedAssist") +
		statusStyle.Render("  "+locale.DisplayName(m.lang))

	var notice string
	if m.notice != "" {
		if m.noticeErr {
			notice = errorStyle.Render(m.notice)
		} else {
			notice = noticeStyle.Render(m.notice)
		}
	}

	status := statusStyle.Render(m.status + "  [" + m.backend + "]")
	if m.capturing {
		status = recStyle.Render("● "+m.status) + statusStyle.Render("  ["+m.backend+"]")
	}

	help := helpStyle.Render("enter send · ctrl+r voice · esc stop · ctrl+y copy · ctrl+c quit")

	return strings.Join([]string{
		title,
		m.vp.View(),
		notice,
		status,
		m.input.View(),
		help,
	}, "\n")
}
