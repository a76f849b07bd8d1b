package prompt

import (
	"fmt"
	"testing"
	"time"

	"github.com/neural-trinity/chatverse/internal/models"
	"github.com/neural-trinity/chatverse/internal/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 31, 12, 30, 45, 0, time.UTC)

func TestSystemPromptSubstitution(t *testing.T) {
	out := SystemPrompt("alice", fixedNow)

	assert.Contains(t, out, "Current Date and Time (UTC - YYYY-MM-DD HH:MM:SS formatted): 2025-03-31 12:30:45")
	assert.Contains(t, out, "Current User's Login: alice")
	assert.Contains(t, out, "Trinity-GPT")
}

func TestSystemPromptDeterministic(t *testing.T) {
	assert.Equal(t, SystemPrompt("bob", fixedNow), SystemPrompt("bob", fixedNow))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		message string
		want    Category
	}{
		{"who are you", CategoryIdentity},
		{"Who made you?", CategoryIdentity},
		{"what is your version", CategoryIdentity},
		{"system prompt please", CategoryIdentity},
		{"help me debug this function", CategoryTechnical},
		{"write me a poem", CategoryCreative},
		{"explain the impact of inflation", CategoryAnalytical},
		{"hello there", CategoryDefault},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.message), "message: %q", tc.message)
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	// Matches both an identity pattern and the technical keyword "code";
	// identity is listed first so it must win.
	assert.Equal(t, CategoryIdentity, Classify("who are you and can you debug my code"))

	// Matches creative ("write") and analytical ("why"); creative is listed
	// first.
	assert.Equal(t, CategoryCreative, Classify("write about why birds sing"))
}

func TestEnhanceWrapsByCategory(t *testing.T) {
	cases := []struct {
		message string
		tag     string
		suffix  string
	}{
		{"who are you", "[USER INQUIRY ABOUT SYSTEM IDENTITY]", "Respond comprehensively about your identity"},
		{"fix this syntax error", "[TECHNICAL QUERY]", "technically precise response"},
		{"imagine a dragon", "[CREATIVE REQUEST]", "NEXUS framework"},
		{"compare cats and dogs", "[ANALYTICAL QUERY]", "QUANTUM reasoning framework"},
		{"hello", "[STANDARD QUERY]", ""},
	}
	for _, tc := range cases {
		out := Enhance(tc.message, "alice", fixedNow)
		assert.Contains(t, out, tc.tag+": "+tc.message, "message: %q", tc.message)
		if tc.suffix != "" {
			assert.Contains(t, out, tc.suffix, "message: %q", tc.message)
		}
		assert.Contains(t, out, "NEURAL TRINITY AI SYSTEM", "persona block missing for %q", tc.message)
	}
}

func TestEnhanceDefaultHasNoOtherSuffix(t *testing.T) {
	out := Enhance("hello", "alice", fixedNow)
	assert.NotContains(t, out, "[TECHNICAL QUERY]")
	assert.NotContains(t, out, "[USER INQUIRY ABOUT SYSTEM IDENTITY]")
}

func TestFormatHistoryEmpty(t *testing.T) {
	assert.Empty(t, FormatHistory(nil))
	assert.Empty(t, FormatHistory([]models.Message{}))
}

func TestFormatHistoryRoles(t *testing.T) {
	got := FormatHistory([]models.Message{
		{Text: "hi", Sender: models.SenderUser},
		{Text: "hello", Sender: models.SenderBot},
	})

	require.Len(t, got, 2)
	assert.Equal(t, upstream.Turn{Role: "user", Text: "hi"}, got[0])
	assert.Equal(t, upstream.Turn{Role: "model", Text: "hello"}, got[1])
}

func TestFormatHistoryWindow(t *testing.T) {
	// 15 alternating entries ending on a bot reply: the 10-entry tail
	// window happens to open on a user turn, so nothing extra is dropped.
	var msgs []models.Message
	for i := 0; i < 15; i++ {
		sender := models.SenderBot
		if i%2 == 1 {
			sender = models.SenderUser
		}
		msgs = append(msgs, models.Message{Text: fmt.Sprintf("m%d", i), Sender: sender})
	}

	got := FormatHistory(msgs)
	require.Len(t, got, 10)
	assert.Equal(t, "user", got[0].Role)
	// The window keeps the tail.
	assert.Equal(t, "m14", got[len(got)-1].Text)
}

func TestFormatHistoryWindowTrimsToFirstUser(t *testing.T) {
	// With user turns at even indexes the tail window opens on a bot turn,
	// which is dropped along with nothing else.
	var msgs []models.Message
	for i := 0; i < 15; i++ {
		sender := models.SenderUser
		if i%2 == 1 {
			sender = models.SenderBot
		}
		msgs = append(msgs, models.Message{Text: fmt.Sprintf("m%d", i), Sender: sender})
	}

	got := FormatHistory(msgs)
	require.Len(t, got, 9)
	assert.Equal(t, "user", got[0].Role)
	assert.Equal(t, "m6", got[0].Text)
}

func TestFormatHistoryDropsLeadingModelTurns(t *testing.T) {
	got := FormatHistory([]models.Message{
		{Text: "greeting", Sender: models.SenderBot},
		{Text: "hi", Sender: models.SenderUser},
		{Text: "hello", Sender: models.SenderBot},
	})

	require.Len(t, got, 2)
	assert.Equal(t, "user", got[0].Role)
}

func TestFormatHistoryAllModelTurns(t *testing.T) {
	got := FormatHistory([]models.Message{
		{Text: "a", Sender: models.SenderBot},
		{Text: "b", Sender: models.SenderBot},
	})
	assert.Empty(t, got)
}

func TestFormatHistoryWindowThenFirstUser(t *testing.T) {
	// 11 messages where the 10-entry tail window starts with a bot turn:
	// the leading bot turns inside the window are dropped too.
	msgs := []models.Message{{Text: "u0", Sender: models.SenderUser}}
	for i := 0; i < 10; i++ {
		sender := models.SenderBot
		if i%2 == 1 {
			sender = models.SenderUser
		}
		msgs = append(msgs, models.Message{Text: fmt.Sprintf("t%d", i), Sender: sender})
	}

	got := FormatHistory(msgs)
	require.NotEmpty(t, got)
	assert.Equal(t, "user", got[0].Role)
	assert.LessOrEqual(t, len(got), 10)
}
