package protocol

// Frame type constants (Server → Client)
const (
	TypeConnected        = "connected"
	TypeAuthorized       = "authorized"
	TypeNeedAuth         = "needAuth"
	TypeNoSession        = "noSession"
	TypeCodeSent         = "codeSent"
	TypeNeed2FA          = "need2FA"
	TypeDialogs          = "dialogs"
	TypeMessages         = "messages"
	TypeDownloadProgress = "downloadProgress"
	TypeDownloadComplete = "downloadComplete"
	TypeError            = "error"

	TypeBulkDownloadStart    = "bulkDownloadStart"
	TypeBulkDownloadProgress = "bulkDownloadProgress"
	TypeBulkDownloadComplete = "bulkDownloadComplete"

	TypeAllChatsMessagesStart    = "allChatsMessagesStart"
	TypeAllChatsMessages         = "allChatsMessages"
	TypeAllChatsMessagesComplete = "allChatsMessagesComplete"

	TypeBulkDownloadAllChatsStart    = "bulkDownloadAllChatsStart"
	TypeBulkDownloadAllChatsProgress = "bulkDownloadAllChatsProgress"
	TypeBulkDownloadAllChatsComplete = "bulkDownloadAllChatsComplete"
)

// Frame type constants (Client → Server)
const (
	TypeInit                         = "init"
	TypeSendCode                     = "sendCode"
	TypeVerifyCode                   = "verifyCode"
	TypeGetDialogs                   = "getDialogs"
	TypeGetMessages                  = "getMessages"
	TypeDownloadMedia                = "downloadMedia"
	TypeDownloadAllMedia             = "downloadAllMedia"
	TypeGetAllMessagesForAllChats    = "getAllMessagesForAllChats"
	TypeDownloadAllMediaFromAllChats = "downloadAllMediaFromAllChats"
	TypeLogout                       = "logout"
)

// --- Inbound payloads (Server → Client) ---

// ConnectedPayload acknowledges the websocket handshake.
type ConnectedPayload struct {
	ClientID string `json:"clientId,omitempty"`
}

// AuthorizedPayload reports a successful account link.
type AuthorizedPayload struct {
	User User `json:"user"`
}

// DialogsPayload carries the full, authoritative dialog list.
type DialogsPayload struct {
	Dialogs []Dialog `json:"dialogs"`
}

// MessagesPayload answers a getMessages command. There is no request id on
// the wire; the chat id is the only correlation key.
type MessagesPayload struct {
	ChatID   string    `json:"chatId"`
	Messages []Message `json:"messages"`
}

// DownloadProgressPayload reports in-flight download progress (0..100).
type DownloadProgressPayload struct {
	MessageID string `json:"messageId"`
	Progress  int    `json:"progress"`
}

// DownloadCompletePayload finalizes a download.
type DownloadCompletePayload struct {
	MessageID     string `json:"messageId"`
	Filename      string `json:"filename"`
	Path          string `json:"path"`
	CloudinaryURL string `json:"cloudinaryUrl,omitempty"`
}

// ErrorPayload is the gateway's generic failure frame.
type ErrorPayload struct {
	Message string `json:"message"`
}

// BulkDownloadProgressPayload counts items downloaded in a whole-chat bulk run.
type BulkDownloadProgressPayload struct {
	Downloaded int `json:"downloaded"`
}

// AllChatsMessagesStartPayload opens an all-chats message sweep.
type AllChatsMessagesStartPayload struct {
	TotalChats int `json:"totalChats"`
}

// AllChatsMessagesPayload delivers one chat's messages during a sweep.
type AllChatsMessagesPayload struct {
	ChatID             string    `json:"chatId"`
	Messages           []Message `json:"messages"`
	CurrentChatIndex   int       `json:"currentChatIndex"`
	TotalChats         int       `json:"totalChats"`
	TotalMessagesSoFar int       `json:"totalMessagesSoFar"`
}

// BulkDownloadAllChatsProgressPayload counts items downloaded across all chats.
type BulkDownloadAllChatsProgressPayload struct {
	TotalDownloaded int `json:"totalDownloaded"`
}

// --- Outbound commands (Client → Server) ---

// InitCommand starts (or silently resumes) an account link with the stored
// API credential pair.
type InitCommand struct {
	APIID   string `json:"apiId"`
	APIHash string `json:"apiHash"`
}

func (InitCommand) CommandType() string { return TypeInit }

// SendCodeCommand requests a one-time code for the given phone number.
type SendCodeCommand struct {
	PhoneNumber string `json:"phoneNumber"`
}

func (SendCodeCommand) CommandType() string { return TypeSendCode }

// VerifyCodeCommand submits the one-time code; Password is present only for
// the two-factor sub-case.
type VerifyCodeCommand struct {
	Code     string `json:"code"`
	Password string `json:"password,omitempty"`
}

func (VerifyCodeCommand) CommandType() string { return TypeVerifyCode }

// GetDialogsCommand asks for the full dialog list.
type GetDialogsCommand struct{}

func (GetDialogsCommand) CommandType() string { return TypeGetDialogs }

// GetMessagesCommand loads a page of messages. OffsetID, when set, is the
// pagination cursor: the oldest cached message id.
type GetMessagesCommand struct {
	ChatID   string `json:"chatId"`
	Limit    int    `json:"limit"`
	OffsetID string `json:"offsetId,omitempty"`
}

func (GetMessagesCommand) CommandType() string { return TypeGetMessages }

// DownloadMediaCommand starts a single media download.
type DownloadMediaCommand struct {
	ChatID    string `json:"chatId"`
	ChatName  string `json:"chatName"`
	MessageID string `json:"messageId"`
	UserID    string `json:"userId,omitempty"`
	Username  string `json:"username,omitempty"`
}

func (DownloadMediaCommand) CommandType() string { return TypeDownloadMedia }

// DownloadAllMediaCommand downloads every media item of one kind in a chat.
type DownloadAllMediaCommand struct {
	ChatID    string `json:"chatId"`
	ChatName  string `json:"chatName"`
	MediaType string `json:"mediaType"`
	UserID    string `json:"userId,omitempty"`
	Username  string `json:"username,omitempty"`
}

func (DownloadAllMediaCommand) CommandType() string { return TypeDownloadAllMedia }

// GetAllMessagesForAllChatsCommand starts an all-chats message sweep.
type GetAllMessagesForAllChatsCommand struct{}

func (GetAllMessagesForAllChatsCommand) CommandType() string {
	return TypeGetAllMessagesForAllChats
}

// DownloadAllMediaFromAllChatsCommand downloads photos and videos everywhere.
type DownloadAllMediaFromAllChatsCommand struct {
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
}

func (DownloadAllMediaFromAllChatsCommand) CommandType() string {
	return TypeDownloadAllMediaFromAllChats
}

// LogoutCommand unlinks the account on the gateway side.
type LogoutCommand struct{}

func (LogoutCommand) CommandType() string { return TypeLogout }
