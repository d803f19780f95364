package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombx666-max/tele-clone-frontend/pkg/client"
	"github.com/tombx666-max/tele-clone-frontend/pkg/protocol"
)

type uiFixture struct {
	conn     *client.MockConnection
	session  *client.Session
	dialogs  *client.DialogStore
	messages *client.MessageStore
	model    Model
}

func newUIFixture(t *testing.T) *uiFixture {
	t.Helper()

	conn := client.NewMockConnection("ws://localhost:3001")
	session := client.NewSession()
	creds := client.NewMockCredentialStore()
	auth := client.NewAuthMachine(session, creds)
	dialogs := client.NewDialogStore()
	messages := client.NewMessageStore()
	downloads := client.NewDownloadTracker()
	dispatcher := client.NewDispatcher(conn, session, auth, dialogs, messages, downloads, nil)

	require.NoError(t, conn.Connect())
	dispatcher.HandleStateUpdate(client.StateUpdate{State: client.StateConnected})

	model := NewModel(conn, dispatcher, session, dialogs, messages, downloads, nil)
	model.width = 80
	model.height = 24

	return &uiFixture{conn: conn, session: session, dialogs: dialogs, messages: messages, model: model}
}

func (f *uiFixture) dispatchFrame(t *testing.T, frameType string, payload interface{}) {
	t.Helper()
	frame, err := protocol.NewFrame(frameType, payload)
	require.NoError(t, err)
	updated, _ := f.model.Update(GatewayFrameMsg{Frame: frame})
	f.model = updated.(Model)
}

func (f *uiFixture) pressKey(key string) {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	updated, _ := f.model.Update(msg)
	f.model = updated.(Model)
}

func TestStartsOnAuthView(t *testing.T) {
	f := newUIFixture(t)
	assert.Equal(t, ViewAuth, f.model.currentView)
	assert.Contains(t, f.model.View(), "tele-clone")
}

func TestAuthorizedFrameSwitchesToChats(t *testing.T) {
	f := newUIFixture(t)

	f.dispatchFrame(t, protocol.TypeAuthorized, protocol.AuthorizedPayload{
		User: protocol.User{ID: "u1", FirstName: "Ada"},
	})

	assert.Equal(t, ViewChats, f.model.currentView)
	// Switching to chats asks for the dialog list.
	cmd, err := f.conn.LastSentCommand()
	require.NoError(t, err)
	assert.Equal(t, protocol.TypeGetDialogs, cmd.CommandType())
}

func TestAuthStepFramesStayOnAuthView(t *testing.T) {
	f := newUIFixture(t)

	f.dispatchFrame(t, protocol.TypeNeedAuth, nil)
	assert.Equal(t, ViewAuth, f.model.currentView)
	assert.Contains(t, f.model.View(), "Phone number")

	f.dispatchFrame(t, protocol.TypeCodeSent, nil)
	assert.Contains(t, f.model.View(), "code")

	f.dispatchFrame(t, protocol.TypeNeed2FA, nil)
	assert.Contains(t, f.model.View(), "Two-factor")
}

func TestErrorFrameShowsMessage(t *testing.T) {
	f := newUIFixture(t)

	f.dispatchFrame(t, protocol.TypeError, protocol.ErrorPayload{Message: "PHONE_CODE_INVALID"})
	assert.Contains(t, f.model.View(), "PHONE_CODE_INVALID")
}

func TestSelectingDialogRequestsMessages(t *testing.T) {
	f := newUIFixture(t)
	f.dispatchFrame(t, protocol.TypeAuthorized, protocol.AuthorizedPayload{User: protocol.User{ID: "u1"}})
	f.dispatchFrame(t, protocol.TypeDialogs, protocol.DialogsPayload{Dialogs: []protocol.Dialog{
		{ID: "chat1", Name: "Alice", Kind: protocol.DialogUser},
		{ID: "chat2", Name: "Gophers", Kind: protocol.DialogGroup},
	}})

	f.pressKey("j") // cursor to chat2
	f.pressKey("enter")

	assert.Equal(t, "chat2", f.messages.Selected())
	cmd, err := f.conn.LastSentCommand()
	require.NoError(t, err)
	get, ok := cmd.(protocol.GetMessagesCommand)
	require.True(t, ok)
	assert.Equal(t, "chat2", get.ChatID)
}

func TestHelpViewToggle(t *testing.T) {
	f := newUIFixture(t)
	f.dispatchFrame(t, protocol.TypeAuthorized, protocol.AuthorizedPayload{User: protocol.User{ID: "u1"}})

	f.pressKey("?")
	assert.Equal(t, ViewHelp, f.model.currentView)
	assert.Contains(t, f.model.View(), "download selected media")

	f.pressKey("x")
	assert.Equal(t, ViewChats, f.model.currentView)
}

func TestLogoutReturnsToAuthView(t *testing.T) {
	f := newUIFixture(t)
	f.dispatchFrame(t, protocol.TypeAuthorized, protocol.AuthorizedPayload{User: protocol.User{ID: "u1"}})
	require.Equal(t, ViewChats, f.model.currentView)

	f.pressKey("L")

	assert.Equal(t, ViewAuth, f.model.currentView)
	assert.Equal(t, client.StepCredentials, f.session.AuthStep())
}

func TestDisconnectWhileLinkingReturnsToAuthView(t *testing.T) {
	f := newUIFixture(t)
	f.dispatchFrame(t, protocol.TypeNeedAuth, nil)

	updated, _ := f.model.Update(ConnStateMsg{Update: client.StateUpdate{State: client.StateDisconnected}})
	f.model = updated.(Model)

	assert.Equal(t, ViewAuth, f.model.currentView)
}
