package store

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/neural-trinity/chatverse/internal/models"
	"go.uber.org/zap"
)

const (
	storageKey       = "chatverse_history"
	maxConversations = 20
	titleLimit       = 30
	previewLimit     = 50
)

// Store holds past conversations, newest first, capped at 20 entries.
// Every mutation is serialized back to the KV as one JSON array under a
// fixed key. Corrupt stored JSON is logged and the store starts empty.
type Store struct {
	kv            KV
	logger        *zap.Logger
	now           func() time.Time
	conversations []models.Conversation
	currentChatID string
}

func New(kv KV, logger *zap.Logger) *Store {
	s := &Store{
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
	s.load()
	return s
}

func (s *Store) load() {
	raw, err := s.kv.Get(storageKey)
	if err != nil {
		s.logger.Error("failed to read chat history", zap.Error(err))
		return
	}
	if raw == "" {
		return
	}

	var convs []models.Conversation
	if err := json.Unmarshal([]byte(raw), &convs); err != nil {
		s.logger.Error("failed to parse chat history", zap.Error(err))
		return
	}

	// Defensive de-dup by id, first occurrence wins.
	seen := make(map[string]bool, len(convs))
	for _, c := range convs {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		s.conversations = append(s.conversations, c)
	}
}

func (s *Store) persist() {
	b, err := json.Marshal(s.conversations)
	if err != nil {
		s.logger.Error("failed to serialize chat history", zap.Error(err))
		return
	}
	if err := s.kv.Set(storageKey, string(b)); err != nil {
		s.logger.Error("failed to write chat history", zap.Error(err))
	}
}

// Save records a finished exchange. Conversations shorter than two messages
// are never persisted. With an active chat id the existing conversation is
// overwritten in place; otherwise a new one is minted, prepended and the
// collection truncated to the most recent 20.
func (s *Store) Save(messages []models.Message) {
	if len(messages) < 2 {
		return
	}

	now := s.now().Format(models.TimeLayout)
	preview := truncate(messages[len(messages)-1].Text, previewLimit, "")

	if s.currentChatID != "" {
		for i := range s.conversations {
			if s.conversations[i].ID == s.currentChatID {
				s.conversations[i].Messages = copyMessages(messages)
				s.conversations[i].Timestamp = now
				s.conversations[i].Preview = preview
				break
			}
		}
		s.persist()
		return
	}

	var firstUserText string
	for _, m := range messages {
		if m.Sender == models.SenderUser {
			firstUserText = m.Text
			break
		}
	}

	conv := models.Conversation{
		ID:        fmt.Sprintf("chat_%d", s.now().UnixMilli()),
		Title:     truncate(firstUserText, titleLimit, "..."),
		Timestamp: now,
		Messages:  copyMessages(messages),
		Preview:   preview,
	}

	s.conversations = append([]models.Conversation{conv}, s.conversations...)
	if len(s.conversations) > maxConversations {
		s.conversations = s.conversations[:maxConversations]
	}
	s.currentChatID = conv.ID
	s.persist()
}

// Load returns the messages of a stored conversation and marks it active.
// Unknown ids are a silent miss.
func (s *Store) Load(id string) ([]models.Message, bool) {
	for _, c := range s.conversations {
		if c.ID == id {
			s.currentChatID = id
			return copyMessages(c.Messages), true
		}
	}
	return nil, false
}

// Reset detaches the active conversation so the next Save mints a new one.
func (s *Store) Reset() {
	s.currentChatID = ""
}

func (s *Store) CurrentChatID() string {
	return s.currentChatID
}

func (s *Store) Conversations() []models.Conversation {
	out := make([]models.Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

func (s *Store) Len() int {
	return len(s.conversations)
}

// Group is one relative-date bucket of conversations for display.
type Group struct {
	Label         string
	Conversations []models.Conversation
}

// Groups buckets conversations by relative-date label: Today and Yesterday
// first, then ascending day and week counts, then absolute dates, with
// unknown dates last. Within a bucket conversations sort newest first and
// unparsable timestamps sink to the bottom.
func (s *Store) Groups() []Group {
	now := s.now()

	type bucket struct {
		label string
		rank  int
		convs []models.Conversation
	}
	byLabel := make(map[string]*bucket)
	var order []*bucket

	for _, c := range s.conversations {
		label, rank := RelativeDate(c.Timestamp, now)
		b, ok := byLabel[label]
		if !ok {
			b = &bucket{label: label, rank: rank}
			byLabel[label] = b
			order = append(order, b)
		}
		if rank < b.rank {
			b.rank = rank
		}
		b.convs = append(b.convs, c)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].rank < order[j].rank
	})

	groups := make([]Group, 0, len(order))
	for _, b := range order {
		sort.SliceStable(b.convs, func(i, j int) bool {
			ti, eri := time.Parse(models.TimeLayout, b.convs[i].Timestamp)
			tj, erj := time.Parse(models.TimeLayout, b.convs[j].Timestamp)
			if eri != nil {
				return false
			}
			if erj != nil {
				return true
			}
			return ti.After(tj)
		})
		groups = append(groups, Group{Label: b.label, Conversations: b.convs})
	}
	return groups
}

// RelativeDate converts an absolute timestamp into a recency label plus a
// sort rank; lower ranks display first. Unparsable timestamps map to
// "Unknown date" with the maximum rank.
func RelativeDate(timestamp string, now time.Time) (string, int) {
	t, err := time.Parse(models.TimeLayout, timestamp)
	if err != nil {
		return "Unknown date", math.MaxInt
	}

	diffDays := int(now.Sub(t).Hours() / 24)
	if diffDays < 0 {
		diffDays = 0
	}

	switch {
	case diffDays == 0:
		return "Today", 0
	case diffDays == 1:
		return "Yesterday", 1
	case diffDays < 7:
		return fmt.Sprintf("%d days ago", diffDays), diffDays
	case diffDays < 30:
		return fmt.Sprintf("%d weeks ago", diffDays/7), diffDays
	default:
		return t.Format("January 2, 2006"), diffDays
	}
}

func truncate(s string, limit int, ellipsis string) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + ellipsis
}

func copyMessages(messages []models.Message) []models.Message {
	out := make([]models.Message, len(messages))
	copy(out, messages)
	return out
}
