package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/tombx666-max/tele-clone-frontend/pkg/client"
	"github.com/tombx666-max/tele-clone-frontend/pkg/protocol"
)

// ViewState represents the current view
type ViewState int

const (
	ViewAuth ViewState = iota
	ViewChats
	ViewHelp
)

// focusPane says which pane keyboard input goes to in the chats view.
type focusPane int

const (
	focusDialogs focusPane = iota
	focusMessages
)

// Messages produced by the gateway listener command.
type (
	// GatewayFrameMsg wraps one inbound frame.
	GatewayFrameMsg struct{ Frame *protocol.Frame }
	// ConnErrorMsg wraps a connection-level error.
	ConnErrorMsg struct{ Err error }
	// ConnStateMsg wraps a connection state change.
	ConnStateMsg struct{ Update client.StateUpdate }
	// GatewayClosedMsg means the connection channels are gone for good.
	GatewayClosedMsg struct{}
)

// Model represents the application state
type Model struct {
	conn       client.ConnectionInterface
	dispatcher *client.Dispatcher
	session    *client.Session
	dialogs    *client.DialogStore
	messages   *client.MessageStore
	downloads  *client.DownloadTracker
	logger     *zap.Logger

	currentView ViewState
	prevView    ViewState // view to return to when leaving help
	focus       focusPane

	// Auth inputs, one per handshake field
	apiIDInput    textinput.Model
	apiHashInput  textinput.Model
	phoneInput    textinput.Model
	codeInput     textinput.Model
	passwordInput textinput.Model
	authFocus     int // which auth input has focus (credentials step has two)

	// Chats view state
	dialogCursor  int
	messageCursor int
	messageView   viewport.Model
	spin          spinner.Model

	width  int
	height int

	statusMessage string
}

// NewModel builds the initial UI model. The dispatcher and stores are shared
// with the caller; the UI never mutates them directly, only through dispatch.
func NewModel(
	conn client.ConnectionInterface,
	dispatcher *client.Dispatcher,
	session *client.Session,
	dialogs *client.DialogStore,
	messages *client.MessageStore,
	downloads *client.DownloadTracker,
	logger *zap.Logger,
) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	apiID := textinput.New()
	apiID.Placeholder = "API ID"
	apiID.CharLimit = 16
	apiID.Focus()

	apiHash := textinput.New()
	apiHash.Placeholder = "API hash"
	apiHash.CharLimit = 64

	phone := textinput.New()
	phone.Placeholder = "+15551234567"
	phone.CharLimit = 20

	code := textinput.New()
	code.Placeholder = "12345"
	code.CharLimit = 10

	password := textinput.New()
	password.Placeholder = "two-factor password"
	password.EchoMode = textinput.EchoPassword

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		conn:          conn,
		dispatcher:    dispatcher,
		session:       session,
		dialogs:       dialogs,
		messages:      messages,
		downloads:     downloads,
		logger:        logger,
		currentView:   ViewAuth,
		apiIDInput:    apiID,
		apiHashInput:  apiHash,
		phoneInput:    phone,
		codeInput:     code,
		passwordInput: password,
		spin:          sp,
	}
}

// Init starts the gateway listener and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		listenForGateway(m.conn),
		m.spin.Tick,
	)
}

// listenForGateway blocks on the connection's three channels and converts
// whatever arrives first into a tea message. Re-armed after every delivery so
// exactly one listener is outstanding at a time.
func listenForGateway(conn client.ConnectionInterface) tea.Cmd {
	return func() tea.Msg {
		select {
		case frame, ok := <-conn.Incoming():
			if !ok {
				return GatewayClosedMsg{}
			}
			return GatewayFrameMsg{Frame: frame}
		case err, ok := <-conn.Errors():
			if !ok {
				return GatewayClosedMsg{}
			}
			return ConnErrorMsg{Err: err}
		case update, ok := <-conn.StateChanges():
			if !ok {
				return GatewayClosedMsg{}
			}
			return ConnStateMsg{Update: update}
		}
	}
}

// selectedDialog returns the dialog under the cursor.
func (m Model) selectedDialog() (protocol.Dialog, bool) {
	list := m.dialogs.List()
	if m.dialogCursor < 0 || m.dialogCursor >= len(list) {
		return protocol.Dialog{}, false
	}
	return list[m.dialogCursor], true
}

// selectedMessage returns the message under the cursor in the visible chat.
func (m Model) selectedMessage() (protocol.Message, bool) {
	msgs := m.messages.Messages(m.messages.Selected())
	if m.messageCursor < 0 || m.messageCursor >= len(msgs) {
		return protocol.Message{}, false
	}
	return msgs[m.messageCursor], true
}
