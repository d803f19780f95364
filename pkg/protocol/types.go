package protocol

// Wire data types shared by inbound frames. Field names follow the gateway's
// JSON exactly; everything here is immutable once received.

// User identifies the linked Telegram account.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName,omitempty"`
	Username  string `json:"username,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Dialog kinds as sent by the gateway.
const (
	DialogUser    = "user"
	DialogGroup   = "group"
	DialogChannel = "channel"
)

// Dialog is one conversation as listed by the gateway.
type Dialog struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Kind        string `json:"type"` // user, group or channel
	IsPrivate   bool   `json:"isPrivate"`
	UnreadCount int    `json:"unreadCount"`
	Date        int64  `json:"date"` // last activity, unix seconds
}

// Media kinds as sent by the gateway.
const (
	MediaPhoto    = "photo"
	MediaVideo    = "video"
	MediaDocument = "document"
)

// MediaInfo describes a downloadable attachment.
type MediaInfo struct {
	Kind      string `json:"type"` // photo, video or document
	ID        string `json:"id"`
	Duration  int    `json:"duration,omitempty"`
	Size      string `json:"size,omitempty"`
	MimeType  string `json:"mimeType,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

// Sender is the message author, when the gateway can resolve one.
type Sender struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Message is one message within a dialog.
type Message struct {
	ID     string     `json:"id"`
	ChatID string     `json:"chatId,omitempty"`
	Text   string     `json:"text"`
	Date   int64      `json:"date"` // unix seconds
	Sender *Sender    `json:"sender,omitempty"`
	Media  *MediaInfo `json:"media,omitempty"`
}
