package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombx666-max/tele-clone-frontend/pkg/protocol"
)

func testDialogs() []protocol.Dialog {
	return []protocol.Dialog{
		{ID: "chat1", Name: "Alice", Kind: protocol.DialogUser, IsPrivate: true, UnreadCount: 2},
		{ID: "chat2", Name: "Gophers", Kind: protocol.DialogGroup},
		{ID: "chat3", Name: "News", Kind: protocol.DialogChannel},
	}
}

func TestDialogReplaceAll(t *testing.T) {
	s := NewDialogStore()

	s.ReplaceAll(testDialogs())
	assert.Equal(t, 3, s.Len())

	d, ok := s.Get("chat2")
	require.True(t, ok)
	assert.Equal(t, "Gophers", d.Name)

	// A later frame is authoritative: replaced, not merged.
	s.ReplaceAll([]protocol.Dialog{{ID: "chat9", Name: "Only"}})
	assert.Equal(t, 1, s.Len())
	_, ok = s.Get("chat2")
	assert.False(t, ok)
}

func TestDialogListPreservesDeliveryOrder(t *testing.T) {
	s := NewDialogStore()
	s.ReplaceAll(testDialogs())

	got := s.List()
	require.Len(t, got, 3)
	assert.Equal(t, "chat1", got[0].ID)
	assert.Equal(t, "chat3", got[2].ID)
}

func TestPendingChatConsumedOnlyWhenListed(t *testing.T) {
	s := NewDialogStore()
	s.SetPendingChat("chat2")

	// Not listed yet: the marker is consumed without a selection.
	_, ok := s.TakePendingChat()
	assert.False(t, ok)

	s.SetPendingChat("chat2")
	s.ReplaceAll(testDialogs())
	id, ok := s.TakePendingChat()
	require.True(t, ok)
	assert.Equal(t, "chat2", id)

	// One-shot.
	_, ok = s.TakePendingChat()
	assert.False(t, ok)
}
