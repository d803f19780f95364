package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tombx666-max/tele-clone-frontend/pkg/client"
	"github.com/tombx666-max/tele-clone-frontend/pkg/protocol"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Messages pane: everything right of the dialog list, minus chrome.
		viewWidth := msg.Width - msg.Width/4 - 4
		if viewWidth < 20 {
			viewWidth = 20
		}
		viewHeight := msg.Height - 6
		if viewHeight < 5 {
			viewHeight = 5
		}
		m.messageView.Width = viewWidth
		m.messageView.Height = viewHeight
		m.refreshMessageView()
		return m, nil

	case GatewayFrameMsg:
		return m.handleGatewayFrame(msg.Frame)

	case ConnErrorMsg:
		m.statusMessage = msg.Err.Error()
		return m, listenForGateway(m.conn)

	case ConnStateMsg:
		m.dispatcher.HandleStateUpdate(msg.Update)
		if msg.Update.State == client.StateDisconnected && m.session.AuthStep() != client.StepAuthorized {
			m.currentView = ViewAuth
		}
		return m, listenForGateway(m.conn)

	case GatewayClosedMsg:
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
}

// handleGatewayFrame routes a frame through the dispatcher, then adjusts the
// view to the state the frame produced.
func (m Model) handleGatewayFrame(frame *protocol.Frame) (tea.Model, tea.Cmd) {
	stepBefore := m.session.AuthStep()
	m.dispatcher.Dispatch(frame)

	switch frame.Type {
	case protocol.TypeAuthorized:
		m.currentView = ViewChats
		m.statusMessage = ""
		m.dispatcher.RefreshDialogs()

	case protocol.TypeNoSession, protocol.TypeNeedAuth, protocol.TypeCodeSent, protocol.TypeNeed2FA:
		m.currentView = ViewAuth
		if m.session.AuthStep() != stepBefore {
			m.statusMessage = ""
			m.focusAuthInput()
		}

	case protocol.TypeMessages, protocol.TypeAllChatsMessages:
		m.refreshMessageView()

	case protocol.TypeDownloadProgress, protocol.TypeDownloadComplete:
		m.refreshMessageView()

	case protocol.TypeError:
		if err := m.session.AuthError(); err != "" {
			m.statusMessage = err
		}
	}

	return m, listenForGateway(m.conn)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	}

	switch m.currentView {
	case ViewAuth:
		return m.handleAuthKeys(msg)
	case ViewChats:
		return m.handleChatKeys(msg)
	case ViewHelp:
		m.currentView = m.prevView
		return m, nil
	}
	return m, nil
}

// --- Auth view ---

// focusAuthInput moves focus to the input belonging to the current step.
func (m *Model) focusAuthInput() {
	m.apiIDInput.Blur()
	m.apiHashInput.Blur()
	m.phoneInput.Blur()
	m.codeInput.Blur()
	m.passwordInput.Blur()
	m.authFocus = 0

	switch m.session.AuthStep() {
	case client.StepCredentials:
		m.apiIDInput.Focus()
	case client.StepPhone:
		m.phoneInput.Focus()
	case client.StepCode:
		m.codeInput.Focus()
	case client.StepTwoFactor:
		m.passwordInput.Focus()
	}
}

func (m Model) handleAuthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.submitAuthStep()

	case "tab", "shift+tab":
		// Only the credentials step has two fields.
		if m.session.AuthStep() == client.StepCredentials {
			if m.authFocus == 0 {
				m.authFocus = 1
				m.apiIDInput.Blur()
				m.apiHashInput.Focus()
			} else {
				m.authFocus = 0
				m.apiHashInput.Blur()
				m.apiIDInput.Focus()
			}
		}
		return m, nil

	case "esc":
		m.session.ClearErrors()
		m.statusMessage = ""
		return m, nil
	}

	var cmd tea.Cmd
	switch m.session.AuthStep() {
	case client.StepCredentials:
		if m.authFocus == 0 {
			m.apiIDInput, cmd = m.apiIDInput.Update(msg)
		} else {
			m.apiHashInput, cmd = m.apiHashInput.Update(msg)
		}
	case client.StepPhone:
		m.phoneInput, cmd = m.phoneInput.Update(msg)
	case client.StepCode:
		m.codeInput, cmd = m.codeInput.Update(msg)
	case client.StepTwoFactor:
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

func (m Model) submitAuthStep() (tea.Model, tea.Cmd) {
	auth := m.dispatcher.Auth()

	var err error
	switch m.session.AuthStep() {
	case client.StepCredentials:
		apiID := strings.TrimSpace(m.apiIDInput.Value())
		apiHash := strings.TrimSpace(m.apiHashInput.Value())
		if apiID == "" || apiHash == "" {
			m.statusMessage = "both API ID and API hash are required"
			return m, nil
		}
		err = auth.Init(apiID, apiHash)

	case client.StepPhone:
		phone := strings.TrimSpace(m.phoneInput.Value())
		if phone == "" {
			return m, nil
		}
		err = auth.SendCode(phone)

	case client.StepCode:
		code := strings.TrimSpace(m.codeInput.Value())
		if code == "" {
			return m, nil
		}
		err = auth.VerifyCode(code, "")

	case client.StepTwoFactor:
		err = auth.VerifyCode(strings.TrimSpace(m.codeInput.Value()), m.passwordInput.Value())
	}

	if err != nil {
		m.statusMessage = err.Error()
		m.logger.Debug("auth submit failed", zap.Error(err))
	} else {
		m.statusMessage = ""
	}
	return m, nil
}

// --- Chats view ---

func (m Model) handleChatKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "?":
		m.prevView = m.currentView
		m.currentView = ViewHelp
		return m, nil

	case "tab":
		if m.focus == focusDialogs {
			m.focus = focusMessages
		} else {
			m.focus = focusDialogs
		}
		return m, nil

	case "up", "k":
		if m.focus == focusDialogs {
			if m.dialogCursor > 0 {
				m.dialogCursor--
			}
		} else {
			if m.messageCursor > 0 {
				m.messageCursor--
			}
			m.refreshMessageView()
		}
		return m, nil

	case "down", "j":
		if m.focus == focusDialogs {
			if m.dialogCursor < m.dialogs.Len()-1 {
				m.dialogCursor++
			}
		} else {
			count := len(m.messages.Messages(m.messages.Selected()))
			if m.messageCursor < count-1 {
				m.messageCursor++
			}
			m.refreshMessageView()
		}
		return m, nil

	case "enter":
		if m.focus == focusDialogs {
			if dialog, ok := m.selectedDialog(); ok {
				m.dispatcher.SelectChat(dialog.ID)
				m.messageCursor = 0
				m.focus = focusMessages
				m.refreshMessageView()
			}
		}
		return m, nil

	case "o":
		m.dispatcher.LoadOlderMessages()
		return m, nil

	case "r":
		m.dispatcher.RefreshDialogs()
		return m, nil

	case "d":
		if message, ok := m.selectedMessage(); ok && message.Media != nil {
			dialog, _ := m.selectedDialog()
			m.dispatcher.DownloadMedia(m.messages.Selected(), dialog.Name, message.ID, m.userID(), m.username())
		}
		return m, nil

	case "D":
		if dialog, ok := m.selectedDialog(); ok {
			m.dispatcher.DownloadAllMedia(dialog.ID, dialog.Name, protocol.MediaVideo, m.userID(), m.username())
		}
		return m, nil

	case "P":
		if dialog, ok := m.selectedDialog(); ok {
			m.dispatcher.DownloadAllMedia(dialog.ID, dialog.Name, protocol.MediaPhoto, m.userID(), m.username())
		}
		return m, nil

	case "a":
		m.dispatcher.LoadAllChats()
		return m, nil

	case "A":
		m.dispatcher.DownloadAllFromAllChats(m.userID(), m.username())
		return m, nil

	case "L":
		m.dispatcher.Logout()
		m.currentView = ViewAuth
		m.dialogCursor = 0
		m.messageCursor = 0
		m.focusAuthInput()
		return m, nil

	case "esc":
		m.focus = focusDialogs
		return m, nil
	}

	if m.focus == focusMessages {
		var cmd tea.Cmd
		m.messageView, cmd = m.messageView.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) userID() string {
	if u := m.session.User(); u != nil {
		return u.ID
	}
	return ""
}

func (m Model) username() string {
	if u := m.session.User(); u != nil {
		return u.Username
	}
	return ""
}
