package store

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/neural-trinity/chatverse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, *MemKV) {
	t.Helper()
	kv := NewMemKV()
	s := New(kv, zap.NewNop())
	s.now = func() time.Time { return testNow }
	return s, kv
}

func exchange(user, bot string) []models.Message {
	return []models.Message{
		{ID: "m1", Text: user, Sender: models.SenderUser, Timestamp: testNow.Format(models.TimeLayout)},
		{ID: "m2", Text: bot, Sender: models.SenderBot, Timestamp: testNow.Format(models.TimeLayout)},
	}
}

func TestSaveSingleMessageIsNoOp(t *testing.T) {
	s, kv := newTestStore(t)

	s.Save([]models.Message{{ID: "m1", Text: "hi", Sender: models.SenderUser}})

	assert.Zero(t, s.Len())
	raw, err := kv.Get("chatverse_history")
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestSaveCreatesConversation(t *testing.T) {
	s, kv := newTestStore(t)

	s.Save(exchange("Hello there", "Hi!"))

	require.Equal(t, 1, s.Len())
	conv := s.Conversations()[0]
	assert.Equal(t, fmt.Sprintf("chat_%d", testNow.UnixMilli()), conv.ID)
	assert.Equal(t, "Hello there", conv.Title)
	assert.Equal(t, "Hi!", conv.Preview)
	assert.Equal(t, conv.ID, s.CurrentChatID())

	raw, err := kv.Get("chatverse_history")
	require.NoError(t, err)
	assert.Contains(t, raw, conv.ID)
}

func TestSaveTitleTruncation(t *testing.T) {
	s, _ := newTestStore(t)

	long := strings.Repeat("a", 40)
	s.Save(exchange(long, "ok"))

	conv := s.Conversations()[0]
	assert.Equal(t, strings.Repeat("a", 30)+"...", conv.Title)
}

func TestSavePreviewTruncation(t *testing.T) {
	s, _ := newTestStore(t)

	long := strings.Repeat("b", 80)
	s.Save(exchange("hi", long))

	conv := s.Conversations()[0]
	assert.Equal(t, strings.Repeat("b", 50), conv.Preview)
}

func TestSaveUpdatesActiveConversation(t *testing.T) {
	s, _ := newTestStore(t)

	s.Save(exchange("first", "reply"))
	id := s.CurrentChatID()

	updated := append(exchange("first", "reply"),
		models.Message{ID: "m3", Text: "more", Sender: models.SenderUser},
		models.Message{ID: "m4", Text: "even more", Sender: models.SenderBot},
	)
	s.Save(updated)

	require.Equal(t, 1, s.Len())
	conv := s.Conversations()[0]
	assert.Equal(t, id, conv.ID)
	assert.Len(t, conv.Messages, 4)
	assert.Equal(t, "even more", conv.Preview)
}

func TestStoreNeverExceedsCap(t *testing.T) {
	s, _ := newTestStore(t)

	for i := 0; i < 25; i++ {
		// Distinct creation instants so ids stay unique.
		instant := testNow.Add(time.Duration(i) * time.Second)
		s.now = func() time.Time { return instant }
		s.Reset()
		s.Save(exchange(fmt.Sprintf("chat %d", i), "reply"))
		assert.LessOrEqual(t, s.Len(), 20)
	}

	assert.Equal(t, 20, s.Len())
	// Newest first: the last saved conversation leads.
	assert.Equal(t, "chat 24", s.Conversations()[0].Title)
}

func TestLoad(t *testing.T) {
	s, _ := newTestStore(t)

	s.Save(exchange("hello", "hi"))
	id := s.CurrentChatID()
	s.Reset()
	require.Empty(t, s.CurrentChatID())

	msgs, ok := s.Load(id)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
	assert.Equal(t, id, s.CurrentChatID())

	_, ok = s.Load("chat_does_not_exist")
	assert.False(t, ok)
}

func TestLoadFromPersistedState(t *testing.T) {
	kv := NewMemKV()
	first := New(kv, zap.NewNop())
	first.now = func() time.Time { return testNow }
	first.Save(exchange("persisted", "yes"))

	second := New(kv, zap.NewNop())
	require.Equal(t, 1, second.Len())
	assert.Equal(t, "persisted", second.Conversations()[0].Title)
}

func TestCorruptStoredJSON(t *testing.T) {
	kv := NewMemKV()
	require.NoError(t, kv.Set("chatverse_history", "{not json"))

	s := New(kv, zap.NewNop())
	assert.Zero(t, s.Len())
}

func TestLoadDeduplicatesByID(t *testing.T) {
	kv := NewMemKV()
	raw := `[{"id":"chat_1","title":"a","timestamp":"2025-03-30 10:00:00","messages":[],"preview":""},
	        {"id":"chat_1","title":"dup","timestamp":"2025-03-30 10:00:00","messages":[],"preview":""},
	        {"id":"chat_2","title":"b","timestamp":"2025-03-29 10:00:00","messages":[],"preview":""}]`
	require.NoError(t, kv.Set("chatverse_history", raw))

	s := New(kv, zap.NewNop())
	require.Equal(t, 2, s.Len())
	assert.Equal(t, "a", s.Conversations()[0].Title)
}

func TestRelativeDate(t *testing.T) {
	cases := []struct {
		timestamp string
		want      string
	}{
		{testNow.Format(models.TimeLayout), "Today"},
		{testNow.Add(-24 * time.Hour).Format(models.TimeLayout), "Yesterday"},
		{testNow.Add(-3 * 24 * time.Hour).Format(models.TimeLayout), "3 days ago"},
		{testNow.Add(-14 * 24 * time.Hour).Format(models.TimeLayout), "2 weeks ago"},
		{testNow.Add(-60 * 24 * time.Hour).Format(models.TimeLayout), "January 30, 2025"},
		{"not a timestamp", "Unknown date"},
		{"", "Unknown date"},
	}
	for _, tc := range cases {
		label, _ := RelativeDate(tc.timestamp, testNow)
		assert.Equal(t, tc.want, label, "timestamp: %q", tc.timestamp)
	}
}

func TestRelativeDateUnknownRanksLast(t *testing.T) {
	_, unknownRank := RelativeDate("garbage", testNow)
	_, oldRank := RelativeDate(testNow.Add(-365*24*time.Hour).Format(models.TimeLayout), testNow)

	assert.Equal(t, math.MaxInt, unknownRank)
	assert.Less(t, oldRank, unknownRank)
}

func TestGroups(t *testing.T) {
	s, _ := newTestStore(t)
	s.conversations = []models.Conversation{
		{ID: "c1", Title: "old", Timestamp: testNow.Add(-5 * 24 * time.Hour).Format(models.TimeLayout)},
		{ID: "c2", Title: "today-early", Timestamp: testNow.Add(-2 * time.Hour).Format(models.TimeLayout)},
		{ID: "c3", Title: "broken", Timestamp: "???"},
		{ID: "c4", Title: "yesterday", Timestamp: testNow.Add(-25 * time.Hour).Format(models.TimeLayout)},
		{ID: "c5", Title: "today-late", Timestamp: testNow.Add(-1 * time.Hour).Format(models.TimeLayout)},
	}

	groups := s.Groups()
	require.Len(t, groups, 4)

	assert.Equal(t, "Today", groups[0].Label)
	assert.Equal(t, "Yesterday", groups[1].Label)
	assert.Equal(t, "5 days ago", groups[2].Label)
	assert.Equal(t, "Unknown date", groups[3].Label)

	// Within Today: newest first.
	require.Len(t, groups[0].Conversations, 2)
	assert.Equal(t, "today-late", groups[0].Conversations[0].Title)
}
