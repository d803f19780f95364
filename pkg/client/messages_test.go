package client

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/tombx666-max/tele-clone-frontend/pkg/protocol"
)

func makeMessages(prefix string, start, count int) []protocol.Message {
	out := make([]protocol.Message, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, protocol.Message{
			ID:   fmt.Sprintf("%s%d", prefix, start+i),
			Text: "msg",
			Date: int64(start + i),
		})
	}
	return out
}

func TestSelectRegistersInitialRequest(t *testing.T) {
	s := NewMessageStore()

	needsFetch := s.Select("chat1")
	assert.True(t, needsFetch)
	assert.Equal(t, "chat1", s.Selected())
	assert.True(t, s.RequestPending())

	applied := s.HandleMessages("chat1", makeMessages("m", 1, 10))
	assert.True(t, applied)
	assert.False(t, s.RequestPending())
	assert.Len(t, s.Messages("chat1"), 10)
	// Short batch: history exhausted.
	assert.False(t, s.HasMore("chat1"))
}

func TestFullPageImpliesMoreHistory(t *testing.T) {
	s := NewMessageStore()
	s.Select("chat1")
	s.HandleMessages("chat1", makeMessages("m", 1, InitialPageSize))
	assert.True(t, s.HasMore("chat1"))
}

// Scenario A: the answer for the previously selected chat arrives after the
// user has already switched away. It must not leak into the new chat's view.
func TestStaleBatchForUnselectedChatIsDropped(t *testing.T) {
	s := NewMessageStore()

	s.Select("chat1")
	s.Select("chat2") // supersedes the chat1 request

	applied := s.HandleMessages("chat1", makeMessages("a", 1, 10))
	assert.False(t, applied, "late answer for an unselected chat must be dropped")
	assert.Empty(t, s.Messages("chat1"))

	applied = s.HandleMessages("chat2", makeMessages("b", 1, 5))
	assert.True(t, applied)
	assert.Len(t, s.Messages("chat2"), 5)
}

// Scenario B: switching back and forth still resolves to the final selection.
func TestRapidSwitchingConverges(t *testing.T) {
	s := NewMessageStore()

	s.Select("chat1")
	s.Select("chat2")
	s.Select("chat1")

	// Both answers arrive late, in request order.
	assert.True(t, s.HandleMessages("chat1", makeMessages("a", 1, 3)))
	assert.False(t, s.HandleMessages("chat2", makeMessages("b", 1, 3)))

	assert.Equal(t, "chat1", s.Selected())
	assert.Len(t, s.Messages("chat1"), 3)
	assert.Empty(t, s.Messages("chat2"))
}

func TestUnsolicitedPushForSelectedChatApplies(t *testing.T) {
	s := NewMessageStore()
	s.Select("chat1")
	s.HandleMessages("chat1", makeMessages("m", 1, 3))

	// No request outstanding, but the frame names the visible chat.
	applied := s.HandleMessages("chat1", makeMessages("m", 1, 4))
	assert.True(t, applied)
	assert.Len(t, s.Messages("chat1"), 4)
}

func TestOlderPagePrependsAndDedupes(t *testing.T) {
	s := NewMessageStore()
	s.Select("chat1")
	s.HandleMessages("chat1", makeMessages("m", 100, InitialPageSize))
	require.True(t, s.HasMore("chat1"))

	cursor, ok := s.BeginOlderPage()
	require.True(t, ok)
	assert.Equal(t, "m100", cursor, "cursor is the oldest cached id")

	// Batch overlaps the cached window by one message.
	batch := makeMessages("m", 50, 51) // m50..m100
	assert.True(t, s.HandleMessages("chat1", batch))

	msgs := s.Messages("chat1")
	assert.Len(t, msgs, InitialPageSize+50)
	assert.Equal(t, "m50", msgs[0].ID)
	// 51 >= OlderPageSize, so history may still go further back.
	assert.True(t, s.HasMore("chat1"))
}

func TestShortOlderPageExhaustsHistory(t *testing.T) {
	s := NewMessageStore()
	s.Select("chat1")
	s.HandleMessages("chat1", makeMessages("m", 100, InitialPageSize))

	_, ok := s.BeginOlderPage()
	require.True(t, ok)
	s.HandleMessages("chat1", makeMessages("m", 95, 5))

	assert.False(t, s.HasMore("chat1"))
	_, ok = s.BeginOlderPage()
	assert.False(t, ok, "exhausted chat refuses further pagination")
}

func TestBeginOlderPageRefusesWhilePending(t *testing.T) {
	s := NewMessageStore()
	s.Select("chat1")
	s.HandleMessages("chat1", makeMessages("m", 1, InitialPageSize))

	_, ok := s.BeginOlderPage()
	require.True(t, ok)
	_, ok = s.BeginOlderPage()
	assert.False(t, ok, "only one load may be outstanding")
}

func TestBeginOlderPageRefusesEmptyChat(t *testing.T) {
	s := NewMessageStore()
	s.Select("chat1")
	s.HandleMessages("chat1", nil)

	_, ok := s.BeginOlderPage()
	assert.False(t, ok)
}

func TestErrorClearsPending(t *testing.T) {
	s := NewMessageStore()
	s.Select("chat1")
	require.True(t, s.RequestPending())

	s.ClearPending()
	assert.False(t, s.RequestPending())

	// The selected chat still accepts a later push.
	assert.True(t, s.HandleMessages("chat1", makeMessages("m", 1, 2)))
}

func TestAllChatsSweepFillsCache(t *testing.T) {
	s := NewMessageStore()

	s.BeginAllChats(2)
	assert.True(t, s.LoadingAll())

	s.HandleAllChatsMessages(protocol.AllChatsMessagesPayload{
		ChatID:             "chat1",
		Messages:           makeMessages("a", 1, 3),
		CurrentChatIndex:   1,
		TotalChats:         2,
		TotalMessagesSoFar: 3,
	})
	s.HandleAllChatsMessages(protocol.AllChatsMessagesPayload{
		ChatID:             "chat2",
		Messages:           makeMessages("b", 1, 4),
		CurrentChatIndex:   2,
		TotalChats:         2,
		TotalMessagesSoFar: 7,
	})

	p := s.AllProgress()
	require.NotNil(t, p)
	assert.Equal(t, 2, p.CurrentChatIndex)
	assert.Equal(t, 7, p.TotalMessagesSoFar)

	s.FinishAllChats()
	assert.False(t, s.LoadingAll())
	assert.Nil(t, s.AllProgress())

	// Selecting a swept chat renders from cache, no fetch needed.
	needsFetch := s.Select("chat2")
	assert.False(t, needsFetch)
	assert.Len(t, s.Messages("chat2"), 4)
}

func TestSweepRefreshesSelectedChat(t *testing.T) {
	s := NewMessageStore()
	s.Select("chat1") // request outstanding

	s.BeginAllChats(1)
	s.HandleAllChatsMessages(protocol.AllChatsMessagesPayload{
		ChatID:   "chat1",
		Messages: makeMessages("a", 1, 3),
	})

	assert.False(t, s.RequestPending(), "sweep answer satisfies the open request")
	assert.Len(t, s.Messages("chat1"), 3)
}

// Cached sequences never hold duplicate ids and are always ascending by date,
// regardless of what the gateway delivers or how the user paginates.
func TestMessageSequenceInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewMessageStore()
		s.Select("chat1")

		batches := rapid.IntRange(1, 5).Draw(t, "batches")
		for i := 0; i < batches; i++ {
			n := rapid.IntRange(0, 30).Draw(t, "n")
			msgs := make([]protocol.Message, n)
			for j := range msgs {
				msgs[j] = protocol.Message{
					ID:   fmt.Sprintf("m%d", rapid.IntRange(0, 50).Draw(t, "id")),
					Date: int64(rapid.IntRange(0, 1000).Draw(t, "date")),
				}
			}
			if !s.RequestPending() {
				s.BeginOlderPage()
			}
			s.HandleMessages("chat1", msgs)
		}

		got := s.Messages("chat1")
		seen := make(map[string]bool, len(got))
		for i, m := range got {
			if seen[m.ID] {
				t.Fatalf("duplicate id %q in cached sequence", m.ID)
			}
			seen[m.ID] = true
			if i > 0 && got[i-1].Date > m.Date {
				t.Fatalf("dates not ascending at %d: %d > %d", i, got[i-1].Date, m.Date)
			}
		}
	})
}
