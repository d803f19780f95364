package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/76creates/stickers/flexbox"
	"github.com/charmbracelet/lipgloss"

	"github.com/tombx666-max/tele-clone-frontend/pkg/client"
	"github.com/tombx666-max/tele-clone-frontend/pkg/protocol"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	focusedPaneStyle = paneStyle.
				BorderForeground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	downloadedMark = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Render("✓")
)

// View renders the UI
func (m Model) View() string {
	switch m.currentView {
	case ViewAuth:
		return m.viewAuth()
	case ViewHelp:
		return m.viewHelp()
	default:
		return m.viewChats()
	}
}

// --- Auth view ---

func (m Model) viewAuth() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("tele-clone") + "\n\n")

	switch m.session.ConnState() {
	case client.StateDisconnected:
		b.WriteString("Not connected to the gateway.\n")
		if msg := m.session.ConnError(); msg != "" {
			b.WriteString(errorStyle.Render(msg) + "\n")
		}
		b.WriteString(dimStyle.Render("The client connects on startup; restart to retry.") + "\n")
	case client.StateConnecting:
		b.WriteString(m.spin.View() + " Connecting...\n")
	case client.StateConnected:
		b.WriteString(m.viewAuthStep())
	}

	if m.statusMessage != "" {
		b.WriteString("\n" + errorStyle.Render(m.statusMessage) + "\n")
	}

	return paneStyle.Render(b.String())
}

func (m Model) viewAuthStep() string {
	var b strings.Builder

	switch m.session.AuthStep() {
	case client.StepCredentials:
		if m.session.Resuming() {
			b.WriteString(m.spin.View() + " Restoring saved session...\n")
			break
		}
		b.WriteString("Link your Telegram account.\n")
		b.WriteString(dimStyle.Render("Get an API ID and hash at my.telegram.org") + "\n\n")
		b.WriteString(m.apiIDInput.View() + "\n")
		b.WriteString(m.apiHashInput.View() + "\n\n")
		b.WriteString(dimStyle.Render("tab switches fields, enter submits") + "\n")

	case client.StepPhone:
		b.WriteString("Phone number (international format):\n\n")
		b.WriteString(m.phoneInput.View() + "\n")

	case client.StepCode:
		b.WriteString("Enter the code Telegram sent you:\n\n")
		b.WriteString(m.codeInput.View() + "\n")

	case client.StepTwoFactor:
		b.WriteString("Two-factor password:\n\n")
		b.WriteString(m.passwordInput.View() + "\n")

	case client.StepAuthorized:
		b.WriteString("Authorized. Loading chats...\n")

	case client.StepUnavailable:
		b.WriteString(errorStyle.Render("The gateway cannot link accounts right now.") + "\n")
	}

	return b.String()
}

// --- Chats view ---

func (m Model) viewChats() string {
	if m.width == 0 {
		return "loading..."
	}

	fb := flexbox.New(m.width, m.height-1)
	row := fb.NewRow().AddCells(
		flexbox.NewCell(1, 1).SetContent(m.viewDialogList()),
		flexbox.NewCell(3, 1).SetContent(m.viewMessagePane()),
	)
	fb.AddRows([]*flexbox.Row{row})

	return fb.Render() + "\n" + m.viewStatusBar()
}

func (m Model) viewDialogList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Chats") + "\n")

	list := m.dialogs.List()
	if len(list) == 0 {
		b.WriteString(dimStyle.Render("no chats yet (r to refresh)") + "\n")
	}
	for i, d := range list {
		line := d.Name
		if d.UnreadCount > 0 {
			line = fmt.Sprintf("%s (%d)", line, d.UnreadCount)
		}
		if i == m.dialogCursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	style := paneStyle
	if m.focus == focusDialogs {
		style = focusedPaneStyle
	}
	return style.Render(b.String())
}

func (m Model) viewMessagePane() string {
	style := paneStyle
	if m.focus == focusMessages {
		style = focusedPaneStyle
	}

	chatID := m.messages.Selected()
	if chatID == "" {
		return style.Render(dimStyle.Render("select a chat"))
	}

	var b strings.Builder
	if dialog, ok := m.dialogs.Get(chatID); ok {
		b.WriteString(titleStyle.Render(dialog.Name) + "\n")
	}
	if m.messages.HasMore(chatID) {
		b.WriteString(dimStyle.Render("o loads older messages") + "\n")
	}
	b.WriteString(m.messageView.View())

	return style.Render(b.String())
}

// refreshMessageView rebuilds the viewport content from the message store.
func (m *Model) refreshMessageView() {
	chatID := m.messages.Selected()
	msgs := m.messages.Messages(chatID)
	if m.messageCursor >= len(msgs) {
		m.messageCursor = len(msgs) - 1
	}
	if m.messageCursor < 0 {
		m.messageCursor = 0
	}

	var b strings.Builder
	for i, msg := range msgs {
		b.WriteString(m.renderMessage(msg, i == m.messageCursor && m.focus == focusMessages))
		b.WriteString("\n")
	}
	m.messageView.SetContent(b.String())
	m.messageView.GotoBottom()
}

func (m Model) renderMessage(msg protocol.Message, selected bool) string {
	var b strings.Builder

	sender := "?"
	if msg.Sender != nil {
		sender = msg.Sender.FirstName
		if sender == "" {
			sender = msg.Sender.Username
		}
	}
	ts := time.Unix(msg.Date, 0).Format("Jan 2 15:04")

	header := fmt.Sprintf("%s %s", sender, dimStyle.Render(ts))
	if selected {
		header = selectedStyle.Render("> ") + header
	} else {
		header = "  " + header
	}
	b.WriteString(header + "\n")

	if msg.Text != "" {
		b.WriteString("    " + msg.Text + "\n")
	}
	if msg.Media != nil {
		b.WriteString("    " + m.renderMedia(msg) + "\n")
	}

	return b.String()
}

func (m Model) renderMedia(msg protocol.Message) string {
	label := fmt.Sprintf("[%s", msg.Media.Kind)
	if msg.Media.Size != "" {
		label += " " + msg.Media.Size
	}
	label += "]"

	if m.downloads.IsDownloaded(msg.ID) {
		entry, _ := m.downloads.Entry(msg.ID)
		return fmt.Sprintf("%s %s %s", label, downloadedMark, dimStyle.Render(entry.Filename))
	}
	if percent, ok := m.downloads.ProgressOf(msg.ID); ok {
		return fmt.Sprintf("%s %s %d%%", label, m.spin.View(), percent)
	}
	return label + dimStyle.Render(" (d to download)")
}

func (m Model) viewStatusBar() string {
	var parts []string

	switch m.session.ConnState() {
	case client.StateConnected:
		parts = append(parts, "online")
	case client.StateConnecting:
		parts = append(parts, "connecting")
	default:
		parts = append(parts, errorStyle.Render("offline"))
	}

	if u := m.session.User(); u != nil {
		parts = append(parts, u.FirstName)
	}

	if m.messages.LoadingAll() {
		if p := m.messages.AllProgress(); p != nil {
			parts = append(parts, fmt.Sprintf("sweeping chats %d/%d (%d msgs)",
				p.CurrentChatIndex, p.TotalChats, p.TotalMessagesSoFar))
		}
	}
	if active, n := m.downloads.BulkState(); active {
		parts = append(parts, fmt.Sprintf("bulk download: %d", n))
	}
	if active, n := m.downloads.AllChatsBulkState(); active {
		parts = append(parts, fmt.Sprintf("all-chats download: %d", n))
	}
	if n := m.downloads.InFlight(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d downloading", n))
	}

	if m.statusMessage != "" {
		parts = append(parts, errorStyle.Render(m.statusMessage))
	}
	parts = append(parts, dimStyle.Render("? help"))

	return statusBarStyle.Width(m.width).Render(" " + strings.Join(parts, " · "))
}

// --- Help view ---

func (m Model) viewHelp() string {
	help := `
  tele-clone keys

  enter    open the selected chat
  tab      switch pane
  j/k      move cursor
  o        load older messages
  r        refresh chat list
  d        download selected media
  D        download all videos in chat
  P        download all photos in chat
  a        load messages from every chat
  A        download all media from every chat
  L        logout and unlink
  q        quit

  press any key to go back
`
	return paneStyle.Render(titleStyle.Render("Help") + help)
}
