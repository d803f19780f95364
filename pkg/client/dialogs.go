package client

import (
	"sync"

	"github.com/tombx666-max/tele-clone-frontend/pkg/protocol"
)

// DialogStore caches the conversation list. The gateway is authoritative for
// the whole list on every dialogs frame, so updates are full replaces, never
// merges, and the delivered order is preserved.
type DialogStore struct {
	mu      sync.RWMutex
	dialogs []protocol.Dialog
	byID    map[string]int

	// pendingChatID is a chat to select as soon as it shows up in a
	// dialogs frame (deep link into a chat the client has not listed yet).
	pendingChatID string
}

func NewDialogStore() *DialogStore {
	return &DialogStore{byID: make(map[string]int)}
}

// ReplaceAll swaps in the authoritative dialog list.
func (s *DialogStore) ReplaceAll(dialogs []protocol.Dialog) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dialogs = make([]protocol.Dialog, len(dialogs))
	copy(s.dialogs, dialogs)

	s.byID = make(map[string]int, len(dialogs))
	for i, d := range dialogs {
		s.byID[d.ID] = i
	}
}

// Get looks a dialog up by id.
func (s *DialogStore) Get(id string) (protocol.Dialog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return protocol.Dialog{}, false
	}
	return s.dialogs[i], true
}

// List returns a copy of the cached dialogs in delivery order.
func (s *DialogStore) List() []protocol.Dialog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]protocol.Dialog, len(s.dialogs))
	copy(out, s.dialogs)
	return out
}

func (s *DialogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dialogs)
}

// SetPendingChat marks a chat to auto-select on the next dialogs frame.
func (s *DialogStore) SetPendingChat(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingChatID = id
}

// TakePendingChat consumes the pending selection if the chat is now listed.
func (s *DialogStore) TakePendingChat() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingChatID == "" {
		return "", false
	}
	id := s.pendingChatID
	s.pendingChatID = ""
	if _, ok := s.byID[id]; !ok {
		return "", false
	}
	return id, true
}

// Clear drops all cached dialogs (logout or session reset).
func (s *DialogStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialogs = nil
	s.byID = make(map[string]int)
	s.pendingChatID = ""
}
