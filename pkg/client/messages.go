package client

import (
	"sort"
	"sync"

	"github.com/tombx666-max/tele-clone-frontend/pkg/protocol"
)

// Page sizes for message loads. The gateway signals "maybe more" only
// implicitly: a full page means older messages may exist.
const (
	InitialPageSize = 100
	OlderPageSize   = 50
)

// RequestKind disambiguates the two meanings of an inbound messages frame:
// the protocol has no request id, so the store tags its own outstanding
// request and consults the tag when the answer arrives.
type RequestKind int

const (
	RequestInitial RequestKind = iota
	RequestOlderPage
)

type pendingRequest struct {
	chatID string
	kind   RequestKind
	limit  int
}

// AllChatsProgress tracks an all-chats message sweep.
type AllChatsProgress struct {
	CurrentChatIndex   int
	TotalChats         int
	TotalMessagesSoFar int
}

// MessageStore caches messages per chat: append-only, id-deduplicated,
// ascending by date, with a backward pagination cursor per chat.
//
// Selection race: an inbound batch is applied only when its chat id matches
// the outstanding request or the currently selected chat; anything else is a
// stale answer for a chat the user has navigated away from, and is dropped.
type MessageStore struct {
	mu       sync.RWMutex
	byChat   map[string][]protocol.Message
	seen     map[string]map[string]struct{}
	hasMore  map[string]bool
	selected string
	pending  *pendingRequest

	// All-chats sweep cache (bulk load across every dialog).
	allByChat   map[string][]protocol.Message
	loadingAll  bool
	allProgress *AllChatsProgress
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		byChat:    make(map[string][]protocol.Message),
		seen:      make(map[string]map[string]struct{}),
		hasMore:   make(map[string]bool),
		allByChat: make(map[string][]protocol.Message),
	}
}

// Select makes chatID the current chat. The returned flag says whether the
// caller needs to fetch: a chat already filled by an all-chats sweep renders
// from cache. Selecting registers the tagged initial-load request that the
// next matching messages frame will satisfy; a previously outstanding
// request for another chat is superseded.
func (s *MessageStore) Select(chatID string) (needsFetch bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = chatID
	if chatID == "" {
		s.pending = nil
		return false
	}

	if cached, ok := s.allByChat[chatID]; ok && len(cached) > 0 {
		s.replaceLocked(chatID, cached, InitialPageSize)
		s.pending = nil
		return false
	}

	delete(s.byChat, chatID)
	delete(s.seen, chatID)
	s.pending = &pendingRequest{chatID: chatID, kind: RequestInitial, limit: InitialPageSize}
	return true
}

// Selected returns the currently selected chat id ("" for none).
func (s *MessageStore) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// BeginOlderPage registers a backward-pagination request for the selected
// chat and returns the cursor (oldest cached message id). It refuses while
// another request is outstanding or when the chat is exhausted.
func (s *MessageStore) BeginOlderPage() (cursor string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == "" || s.pending != nil {
		return "", false
	}
	msgs := s.byChat[s.selected]
	if len(msgs) == 0 || !s.hasMore[s.selected] {
		return "", false
	}

	s.pending = &pendingRequest{chatID: s.selected, kind: RequestOlderPage, limit: OlderPageSize}
	return msgs[0].ID, true
}

// RequestPending reports whether a message load is outstanding.
func (s *MessageStore) RequestPending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending != nil
}

// HandleMessages applies an inbound messages frame. The return value says
// whether the batch was applied; a false means it was a stale answer for an
// unselected chat and was discarded.
func (s *MessageStore) HandleMessages(chatID string, msgs []protocol.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p := s.pending; p != nil && p.chatID == chatID {
		s.pending = nil
		switch p.kind {
		case RequestOlderPage:
			s.appendOlderLocked(chatID, msgs, p.limit)
		default:
			s.replaceLocked(chatID, msgs, p.limit)
		}
		return true
	}

	// Unsolicited refresh for the visible chat (server push).
	if chatID != "" && chatID == s.selected {
		s.replaceLocked(chatID, msgs, InitialPageSize)
		return true
	}

	return false
}

// replaceLocked makes the cached sequence exactly the given batch.
func (s *MessageStore) replaceLocked(chatID string, msgs []protocol.Message, limit int) {
	seen := make(map[string]struct{}, len(msgs))
	out := make([]protocol.Message, 0, len(msgs))
	for _, m := range msgs {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })

	s.byChat[chatID] = out
	s.seen[chatID] = seen
	// A full page implies older messages may exist.
	s.hasMore[chatID] = len(msgs) >= limit
}

// appendOlderLocked prepends unseen older messages. A short batch signals
// that the chat's history is exhausted.
func (s *MessageStore) appendOlderLocked(chatID string, batch []protocol.Message, limit int) {
	seen := s.seen[chatID]
	if seen == nil {
		seen = make(map[string]struct{})
		s.seen[chatID] = seen
	}

	fresh := make([]protocol.Message, 0, len(batch))
	for _, m := range batch {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		fresh = append(fresh, m)
	}

	merged := append(fresh, s.byChat[chatID]...)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Date < merged[j].Date })
	s.byChat[chatID] = merged

	if len(batch) < limit {
		s.hasMore[chatID] = false
	}
}

// Messages returns a copy of the cached sequence for a chat.
func (s *MessageStore) Messages(chatID string) []protocol.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.byChat[chatID]
	out := make([]protocol.Message, len(msgs))
	copy(out, msgs)
	return out
}

// HasMore reports whether older messages may exist for a chat.
func (s *MessageStore) HasMore(chatID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasMore[chatID]
}

// --- All-chats sweep ---

// BeginAllChats resets the sweep cache when the gateway starts one.
func (s *MessageStore) BeginAllChats(totalChats int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadingAll = true
	s.allByChat = make(map[string][]protocol.Message)
	s.allProgress = &AllChatsProgress{TotalChats: totalChats}
}

// HandleAllChatsMessages stores one chat's sweep result and refreshes the
// live view when that chat is the selected one.
func (s *MessageStore) HandleAllChatsMessages(p protocol.AllChatsMessagesPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := make([]protocol.Message, len(p.Messages))
	copy(msgs, p.Messages)
	s.allByChat[p.ChatID] = msgs

	if s.allProgress != nil {
		s.allProgress.CurrentChatIndex = p.CurrentChatIndex
		s.allProgress.TotalChats = p.TotalChats
		s.allProgress.TotalMessagesSoFar = p.TotalMessagesSoFar
	}

	if p.ChatID == s.selected {
		s.replaceLocked(p.ChatID, msgs, InitialPageSize)
		s.pending = nil
	}
}

// FinishAllChats ends the sweep.
func (s *MessageStore) FinishAllChats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadingAll = false
	s.allProgress = nil
}

// LoadingAll reports whether an all-chats sweep is running.
func (s *MessageStore) LoadingAll() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadingAll
}

// AllProgress returns a snapshot of the sweep progress, nil when idle.
func (s *MessageStore) AllProgress() *AllChatsProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.allProgress == nil {
		return nil
	}
	p := *s.allProgress
	return &p
}

// AllMessages returns the sweep cache for a chat.
func (s *MessageStore) AllMessages(chatID string) []protocol.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.allByChat[chatID]
	out := make([]protocol.Message, len(msgs))
	copy(out, msgs)
	return out
}

// ClearPending drops the outstanding request marker (error frames clear
// loading state so the UI cannot get stuck).
func (s *MessageStore) ClearPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.loadingAll = false
}

// Clear drops everything (logout or session reset).
func (s *MessageStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byChat = make(map[string][]protocol.Message)
	s.seen = make(map[string]map[string]struct{})
	s.hasMore = make(map[string]bool)
	s.selected = ""
	s.pending = nil
	s.allByChat = make(map[string][]protocol.Message)
	s.loadingAll = false
	s.allProgress = nil
}
