package models

// Sender identifies which side of the conversation authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is a single conversational turn. A bot message starts with empty
// Text and grows as the response streams in; it stops changing once the
// stream ends.
type Message struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Sender    Sender `json:"sender"`
	Timestamp string `json:"timestamp"`
}

// Conversation is a named, timestamped bundle of messages. Timestamp holds
// the last-modified time and drives recency sorting and relative-date
// grouping in the sidebar.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Timestamp string    `json:"timestamp"`
	Messages  []Message `json:"messages"`
	Preview   string    `json:"preview"`
}

// TimeLayout is the timestamp format used throughout: YYYY-MM-DD HH:MM:SS.
const TimeLayout = "2006-01-02 15:04:05"
