package client

import (
	"errors"

	"go.uber.org/zap"

	"github.com/tombx666-max/tele-clone-frontend/pkg/protocol"
)

// Dispatcher is the single inbound-frame router and the single point from
// which outbound commands are serialized and sent. Frames are dispatched one
// at a time in arrival order; every store mutation is complete before
// Dispatch returns, so UI reads never see a partial update.
type Dispatcher struct {
	conn      ConnectionInterface
	session   *Session
	auth      *AuthMachine
	dialogs   *DialogStore
	messages  *MessageStore
	downloads *DownloadTracker
	logger    *zap.Logger

	// onNotify, when set, fires after a download completes (desktop
	// notification hook, wired by the UI).
	onNotify func(entry DownloadEntry)
}

func NewDispatcher(
	conn ConnectionInterface,
	session *Session,
	auth *AuthMachine,
	dialogs *DialogStore,
	messages *MessageStore,
	downloads *DownloadTracker,
	logger *zap.Logger,
) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		conn:      conn,
		session:   session,
		auth:      auth,
		dialogs:   dialogs,
		messages:  messages,
		downloads: downloads,
		logger:    logger,
	}
	auth.setSender(d.Send)
	return d
}

// Auth exposes the linking machine for the UI's handshake prompts.
func (d *Dispatcher) Auth() *AuthMachine {
	return d.auth
}

// SetNotifyFunc registers a hook fired on every completed download.
func (d *Dispatcher) SetNotifyFunc(fn func(entry DownloadEntry)) {
	d.onNotify = fn
}

// Send serializes a command and hands it to the connection. A send while the
// connection is down is a routine race (the user acted just as the socket
// dropped), so it is logged and swallowed, never surfaced as a failure.
func (d *Dispatcher) Send(cmd protocol.Command) error {
	err := d.conn.SendCommand(cmd)
	switch {
	case err == nil:
		commandsSent.WithLabelValues(cmd.CommandType()).Inc()
		return nil
	case errors.Is(err, ErrNotConnected), errors.Is(err, ErrQueueFull), errors.Is(err, ErrConnectionClosed):
		sendsDropped.Inc()
		d.logger.Debug("dropped stale send", zap.String("command", cmd.CommandType()), zap.Error(err))
		return nil
	default:
		return err
	}
}

// Dispatch routes one inbound frame to the owning store or machine.
// Unrecognized types are ignored for forward compatibility; malformed
// payloads are logged and skipped.
func (d *Dispatcher) Dispatch(frame *protocol.Frame) {
	framesDispatched.WithLabelValues(frame.Type).Inc()

	switch frame.Type {
	case protocol.TypeConnected:
		var p protocol.ConnectedPayload
		if err := frame.Decode(&p); err == nil && p.ClientID != "" {
			d.logger.Debug("gateway acknowledged connection", zap.String("clientId", p.ClientID))
		}

	case protocol.TypeAuthorized:
		var p protocol.AuthorizedPayload
		if err := frame.Decode(&p); err != nil {
			d.logDecodeError(frame, err)
			return
		}
		d.auth.handleAuthorized(p.User)

	case protocol.TypeNeedAuth:
		d.auth.handleNeedAuth()

	case protocol.TypeNoSession:
		d.auth.handleNoSession()

	case protocol.TypeCodeSent:
		d.auth.handleCodeSent()

	case protocol.TypeNeed2FA:
		d.auth.handleNeed2FA()

	case protocol.TypeDialogs:
		var p protocol.DialogsPayload
		if err := frame.Decode(&p); err != nil {
			d.logDecodeError(frame, err)
			return
		}
		d.dialogs.ReplaceAll(p.Dialogs)
		// A resolved pending selection needs the initial fetch too, not
		// just the selection; SelectChat sends it unless the sweep cache
		// already holds the chat.
		if chatID, ok := d.dialogs.TakePendingChat(); ok {
			d.SelectChat(chatID)
		}

	case protocol.TypeMessages:
		var p protocol.MessagesPayload
		if err := frame.Decode(&p); err != nil {
			d.logDecodeError(frame, err)
			return
		}
		if !d.messages.HandleMessages(p.ChatID, p.Messages) {
			batchesDropped.Inc()
			d.logger.Debug("discarded stale message batch", zap.String("chatId", p.ChatID))
		}

	case protocol.TypeDownloadProgress:
		var p protocol.DownloadProgressPayload
		if err := frame.Decode(&p); err != nil {
			d.logDecodeError(frame, err)
			return
		}
		d.downloads.OnProgress(p.MessageID, p.Progress)

	case protocol.TypeDownloadComplete:
		var p protocol.DownloadCompletePayload
		if err := frame.Decode(&p); err != nil {
			d.logDecodeError(frame, err)
			return
		}
		d.downloads.OnComplete(p.MessageID, p.Filename, p.Path, p.CloudinaryURL)
		downloadsCompleted.Inc()
		if d.onNotify != nil {
			if entry, ok := d.downloads.Entry(p.MessageID); ok {
				d.onNotify(entry)
			}
		}

	case protocol.TypeBulkDownloadStart:
		d.downloads.BeginBulk()

	case protocol.TypeBulkDownloadProgress:
		var p protocol.BulkDownloadProgressPayload
		if err := frame.Decode(&p); err != nil {
			d.logDecodeError(frame, err)
			return
		}
		d.downloads.SetBulkProgress(p.Downloaded)

	case protocol.TypeBulkDownloadComplete:
		d.downloads.FinishBulk()

	case protocol.TypeAllChatsMessagesStart:
		var p protocol.AllChatsMessagesStartPayload
		if err := frame.Decode(&p); err != nil {
			d.logDecodeError(frame, err)
			return
		}
		d.messages.BeginAllChats(p.TotalChats)

	case protocol.TypeAllChatsMessages:
		var p protocol.AllChatsMessagesPayload
		if err := frame.Decode(&p); err != nil {
			d.logDecodeError(frame, err)
			return
		}
		d.messages.HandleAllChatsMessages(p)

	case protocol.TypeAllChatsMessagesComplete:
		d.messages.FinishAllChats()

	case protocol.TypeBulkDownloadAllChatsStart:
		d.downloads.BeginAllChatsBulk()

	case protocol.TypeBulkDownloadAllChatsProgress:
		var p protocol.BulkDownloadAllChatsProgressPayload
		if err := frame.Decode(&p); err != nil {
			d.logDecodeError(frame, err)
			return
		}
		d.downloads.SetAllChatsBulkProgress(p.TotalDownloaded)

	case protocol.TypeBulkDownloadAllChatsComplete:
		d.downloads.FinishAllChatsBulk()

	case protocol.TypeError:
		var p protocol.ErrorPayload
		if err := frame.Decode(&p); err != nil {
			d.logDecodeError(frame, err)
			return
		}
		d.auth.handleError(p.Message)
		// An error aborts whatever was loading or downloading; stale
		// progress must not linger.
		d.messages.ClearPending()
		d.downloads.ClearInFlight()

	default:
		framesIgnored.Inc()
		d.logger.Debug("ignoring unknown frame type", zap.String("type", frame.Type))
	}
}

func (d *Dispatcher) logDecodeError(frame *protocol.Frame, err error) {
	d.logger.Warn("malformed frame payload", zap.String("type", frame.Type), zap.Error(err))
}

// HandleStateUpdate applies a connection state change to the session.
func (d *Dispatcher) HandleStateUpdate(u StateUpdate) {
	d.session.setConnState(u.State)

	switch u.State {
	case StateConnected:
		if u.Resuming {
			d.session.setResuming(true)
		}
	case StateDisconnected:
		// Error surfacing is suppressed while a silent resume is
		// outstanding; the resume path reports its own outcome.
		if u.Err != nil && !d.session.Resuming() {
			d.session.setConnError(u.Err.Error())
		}
		d.session.setResuming(false)
	}
}

// --- User actions ---

// Connect opens (or replaces) the gateway connection.
func (d *Dispatcher) Connect() error {
	d.session.setConnState(StateConnecting)
	if err := d.conn.Connect(); err != nil {
		d.session.setConnState(StateDisconnected)
		return err
	}
	return nil
}

// SelectChat switches the visible chat and fetches its first page unless the
// all-chats cache already holds it.
func (d *Dispatcher) SelectChat(chatID string) {
	if d.messages.Select(chatID) {
		d.Send(protocol.GetMessagesCommand{ChatID: chatID, Limit: InitialPageSize})
	}
}

// LoadOlderMessages requests the next older page for the selected chat.
// No-op while another load is outstanding or when history is exhausted.
func (d *Dispatcher) LoadOlderMessages() {
	cursor, ok := d.messages.BeginOlderPage()
	if !ok {
		return
	}
	d.Send(protocol.GetMessagesCommand{
		ChatID:   d.messages.Selected(),
		Limit:    OlderPageSize,
		OffsetID: cursor,
	})
}

// RefreshDialogs asks for the authoritative dialog list.
func (d *Dispatcher) RefreshDialogs() {
	d.Send(protocol.GetDialogsCommand{})
}

// DownloadMedia starts a single media download.
func (d *Dispatcher) DownloadMedia(chatID, chatName, messageID, userID, username string) {
	d.Send(protocol.DownloadMediaCommand{
		ChatID:    chatID,
		ChatName:  chatName,
		MessageID: messageID,
		UserID:    userID,
		Username:  username,
	})
}

// DownloadAllMedia downloads every media item of one kind in a chat.
func (d *Dispatcher) DownloadAllMedia(chatID, chatName, mediaType, userID, username string) {
	d.Send(protocol.DownloadAllMediaCommand{
		ChatID:    chatID,
		ChatName:  chatName,
		MediaType: mediaType,
		UserID:    userID,
		Username:  username,
	})
}

// LoadAllChats starts the all-chats message sweep.
func (d *Dispatcher) LoadAllChats() {
	d.Send(protocol.GetAllMessagesForAllChatsCommand{})
}

// DownloadAllFromAllChats downloads photos and videos from every chat.
func (d *Dispatcher) DownloadAllFromAllChats(userID, username string) {
	d.Send(protocol.DownloadAllMediaFromAllChatsCommand{UserID: userID, Username: username})
}

// Logout unlinks the account: best-effort logout command, then the local
// session, credential, and every cache are reset.
func (d *Dispatcher) Logout() {
	d.Send(protocol.LogoutCommand{})
	d.conn.Disconnect()
	d.auth.Reset()
	d.session.setConnState(StateDisconnected)
	d.dialogs.Clear()
	d.messages.Clear()
	d.downloads.Clear()
}
