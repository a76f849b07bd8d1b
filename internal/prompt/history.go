package prompt

import (
	"github.com/neural-trinity/chatverse/internal/models"
	"github.com/neural-trinity/chatverse/internal/upstream"
)

// historyWindow caps how many prior turns are sent upstream.
const historyWindow = 10

// FormatHistory converts prior messages into the upstream turn shape: bot
// messages become "model" turns, everything else "user". Only the most
// recent ten entries are kept, and leading turns are dropped until the
// first retained turn is user-authored, since the upstream rejects
// conversations that open with a model turn. Nil or empty input yields an
// empty result.
func FormatHistory(messages []models.Message) []upstream.Turn {
	if len(messages) == 0 {
		return nil
	}

	turns := make([]upstream.Turn, 0, len(messages))
	for _, m := range messages {
		role := upstream.RoleUser
		if m.Sender == models.SenderBot {
			role = upstream.RoleModel
		}
		turns = append(turns, upstream.Turn{Role: role, Text: m.Text})
	}

	if len(turns) > historyWindow {
		turns = turns[len(turns)-historyWindow:]
	}

	for i, t := range turns {
		if t.Role == upstream.RoleUser {
			return turns[i:]
		}
	}
	return nil
}
