// Package chatpanel is the tutor conversation widget shared by the lesson,
// workshop and mind-map screens.
package chatpanel

import (
	"context"
	"strings"
	"sync/atomic"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/capsulemed/internal/chat"
	"github.com/abhisek/capsulemed/internal/ui/components"
	"github.com/abhisek/capsulemed/internal/ui/theme"
)

var panelIDs atomic.Uint64

// replyMsg carries an answer back to the panel that asked.
type replyMsg struct {
	panel  uint64
	answer chat.Message
}

// Panel owns one conversation. Questions are answered off the UI loop; the
// transcript is only touched from Update.
type Panel struct {
	id      uint64
	tutor   *chat.Tutor
	conv    *chat.Conversation
	input   components.TextInput
	pending bool
}

// New creates a blurred panel whose conversation starts with greeting.
func New(tutor *chat.Tutor, greeting string) *Panel {
	input := components.NewTextInput("Pose ta question…", 500)
	input.Blur()
	return &Panel{
		id:    panelIDs.Add(1),
		tutor: tutor,
		conv:  chat.NewConversation(greeting),
		input: input,
	}
}

// Focus gives the question field the keyboard.
func (p *Panel) Focus() tea.Cmd { return p.input.Focus() }

// Blur releases the keyboard.
func (p *Panel) Blur() { p.input.Blur() }

// Focused reports whether the panel has the keyboard.
func (p *Panel) Focused() bool { return p.input.Focused() }

// Pending reports whether an answer is on its way.
func (p *Panel) Pending() bool { return p.pending }

// Messages returns the transcript.
func (p *Panel) Messages() []chat.Message { return p.conv.Messages() }

// Update handles replies addressed to this panel and, while focused, key
// presses. s is the surface the next question is asked on. handled is false
// for messages the caller should process itself.
func (p *Panel) Update(msg tea.Msg, s chat.Surface) (cmd tea.Cmd, handled bool) {
	switch msg := msg.(type) {
	case replyMsg:
		if msg.panel != p.id {
			return nil, false
		}
		p.conv.Append(msg.answer)
		p.pending = false
		return nil, true

	case tea.KeyMsg:
		if !p.Focused() {
			return nil, false
		}
		switch msg.String() {
		case "esc":
			p.Blur()
			return nil, true
		case "enter":
			return p.ask(s), true
		}
		p.input, cmd = p.input.Update(msg)
		return cmd, true
	}

	if p.Focused() {
		p.input, cmd = p.input.Update(msg)
		return cmd, false
	}
	return nil, false
}

// ask appends the question and starts the request. One question at a time.
func (p *Panel) ask(s chat.Surface) tea.Cmd {
	q := p.input.Value()
	if q == "" || p.pending {
		return nil
	}
	history := p.conv.Messages()
	p.conv.Append(chat.Message{Role: chat.RoleUser, Text: q})
	p.input.Reset()
	p.pending = true

	tutor, id := p.tutor, p.id
	return func() tea.Msg {
		return replyMsg{panel: id, answer: tutor.Answer(context.Background(), history, s, q)}
	}
}

// View renders the newest messages that fit above the input line.
func (p *Panel) View(width, height int) string {
	if width < 10 {
		width = 10
	}
	bubble := width - 2

	var lines []string
	for _, m := range p.conv.Messages() {
		lines = append(lines, renderMessage(m, bubble)...)
		lines = append(lines, "")
	}
	if p.pending {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
			Render("Le tuteur réfléchit…"))
	}

	avail := height - 2
	if avail < 1 {
		avail = 1
	}
	if len(lines) > avail {
		lines = lines[len(lines)-avail:]
	}

	inputLine := p.input.View()
	if !p.Focused() {
		inputLine = lipgloss.NewStyle().Foreground(theme.TextDim).Render("c : écrire au tuteur")
	}
	return strings.Join(lines, "\n") + "\n" +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", bubble)) + "\n" +
		inputLine
}

func renderMessage(m chat.Message, width int) []string {
	var who string
	style := theme.ModelBubble.Width(width)
	switch {
	case m.Role == chat.RoleUser:
		who = lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("Toi")
		style = theme.UserBubble.Width(width)
	case m.Failed:
		who = lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render("Tuteur")
		style = style.Foreground(theme.Error)
	default:
		who = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Tuteur")
	}
	body := style.Render(m.Text)
	return append([]string{who}, strings.Split(body, "\n")...)
}
