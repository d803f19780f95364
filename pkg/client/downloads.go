package client

import "sync"

// DownloadEntry is the finalized record of one completed download.
// Created only by a downloadComplete frame and never mutated afterward.
type DownloadEntry struct {
	MessageID string
	Filename  string
	LocalPath string
	RemoteURL string
}

// DownloadTracker tracks per-message download lifecycle. For any message id,
// at most one of {in-flight progress, completed entry} exists at a time.
type DownloadTracker struct {
	mu        sync.RWMutex
	progress  map[string]int
	completed map[string]DownloadEntry
	order     []string // completion order, for listing

	// Whole-chat bulk download state.
	bulkActive     bool
	bulkDownloaded int

	// All-chats bulk download state.
	allChatsActive     bool
	allChatsDownloaded int
}

func NewDownloadTracker() *DownloadTracker {
	return &DownloadTracker{
		progress:  make(map[string]int),
		completed: make(map[string]DownloadEntry),
	}
}

// OnProgress records in-flight progress for a message. Progress for an
// already-completed message is a stale frame and is ignored.
func (t *DownloadTracker) OnProgress(messageID string, percent int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, done := t.completed[messageID]; done {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	t.progress[messageID] = percent
}

// OnComplete finalizes a download: the progress entry and the completed
// record swap inside one lock, so no reader ever sees both or neither
// mid-transition.
func (t *DownloadTracker) OnComplete(messageID, filename, localPath, remoteURL string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.progress, messageID)
	if _, dup := t.completed[messageID]; !dup {
		t.order = append(t.order, messageID)
	}
	t.completed[messageID] = DownloadEntry{
		MessageID: messageID,
		Filename:  filename,
		LocalPath: localPath,
		RemoteURL: remoteURL,
	}
}

// ProgressOf returns the in-flight percentage, ok=false when not in flight.
func (t *DownloadTracker) ProgressOf(messageID string) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.progress[messageID]
	return p, ok
}

// IsDownloaded reports whether a completed record exists for the message.
func (t *DownloadTracker) IsDownloaded(messageID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.completed[messageID]
	return ok
}

// Entry returns the completed record for a message.
func (t *DownloadTracker) Entry(messageID string) (DownloadEntry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.completed[messageID]
	return e, ok
}

// Completed lists finalized downloads in completion order.
func (t *DownloadTracker) Completed() []DownloadEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]DownloadEntry, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.completed[id])
	}
	return out
}

// InFlight returns the number of downloads currently reporting progress.
func (t *DownloadTracker) InFlight() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.progress)
}

// ClearInFlight drops all progress entries. A gateway error frame aborts
// whatever was downloading; stale percentages must not linger in the UI.
func (t *DownloadTracker) ClearInFlight() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress = make(map[string]int)
	t.bulkActive = false
	t.allChatsActive = false
}

// --- Bulk (whole chat) ---

func (t *DownloadTracker) BeginBulk() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bulkActive = true
	t.bulkDownloaded = 0
}

func (t *DownloadTracker) SetBulkProgress(downloaded int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bulkDownloaded = downloaded
}

func (t *DownloadTracker) FinishBulk() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bulkActive = false
}

// BulkState returns whether a whole-chat bulk run is active and its count.
func (t *DownloadTracker) BulkState() (bool, int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.bulkActive, t.bulkDownloaded
}

// --- Bulk (all chats) ---

func (t *DownloadTracker) BeginAllChatsBulk() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.allChatsActive = true
	t.allChatsDownloaded = 0
}

func (t *DownloadTracker) SetAllChatsBulkProgress(totalDownloaded int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.allChatsDownloaded = totalDownloaded
}

func (t *DownloadTracker) FinishAllChatsBulk() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.allChatsActive = false
}

// AllChatsBulkState returns whether an all-chats run is active and its count.
func (t *DownloadTracker) AllChatsBulkState() (bool, int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.allChatsActive, t.allChatsDownloaded
}

// Clear drops all tracking state (logout or session reset).
func (t *DownloadTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress = make(map[string]int)
	t.completed = make(map[string]DownloadEntry)
	t.order = nil
	t.bulkActive = false
	t.bulkDownloaded = 0
	t.allChatsActive = false
	t.allChatsDownloaded = 0
}
