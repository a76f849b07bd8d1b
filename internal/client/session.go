// Package client is the consuming side of the chat API: it keeps the
// in-memory transcript, streams the bot reply into a placeholder message
// and hands finished conversations to the store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neural-trinity/chatverse/internal/models"
	"github.com/neural-trinity/chatverse/internal/store"
	"go.uber.org/zap"
)

// ErrBusy is returned when a send is attempted while another is in flight.
// There is no queueing and no cancellation: an open stream runs to
// completion or error.
var ErrBusy = errors.New("a message is already in flight")

// The fixed transcript entry substituted for the placeholder when the
// transport fails. Nothing partial is kept.
const errorMessageText = "⚠️ Error fetching response"

type Session struct {
	baseURL string
	httpc   *http.Client
	store   *store.Store
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string

	messages []models.Message
	loading  bool

	// OnFragment fires with each raw fragment as it arrives; OnUpdate fires
	// with a full transcript snapshot after every mutation. Both optional.
	OnFragment func(string)
	OnUpdate   func([]models.Message)
}

func NewSession(baseURL string, st *store.Store, logger *zap.Logger) *Session {
	return &Session{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
		store:   st,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (s *Session) Loading() bool {
	return s.loading
}

// Messages returns a snapshot of the transcript.
func (s *Session) Messages() []models.Message {
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Reset clears the transcript and detaches from any stored conversation.
func (s *Session) Reset() {
	s.messages = nil
	s.store.Reset()
	s.notify()
}

// LoadChat replaces the transcript with a stored conversation. Unknown ids
// are a silent miss.
func (s *Session) LoadChat(id string) bool {
	msgs, ok := s.store.Load(id)
	if !ok {
		return false
	}
	s.messages = msgs
	s.notify()
	return true
}

type chatRequest struct {
	Message string           `json:"message"`
	History []models.Message `json:"history"`
}

// Send submits a user message and streams the reply into the transcript.
// The entire message list, minus any still-empty placeholder, rides along
// as history context. Empty input is a no-op.
func (s *Session) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if s.loading {
		return ErrBusy
	}

	userMsg := models.Message{
		ID:        s.newID(),
		Text:      text,
		Sender:    models.SenderUser,
		Timestamp: s.timestamp(),
	}
	placeholder := models.Message{
		ID:        s.newID(),
		Sender:    models.SenderBot,
		Timestamp: s.timestamp(),
	}
	s.messages = append(s.messages, userMsg, placeholder)
	s.loading = true
	defer func() { s.loading = false }()
	s.notify()

	history := make([]models.Message, 0, len(s.messages))
	for _, m := range s.messages {
		if m.Text != "" {
			history = append(history, m)
		}
	}

	body, err := json.Marshal(chatRequest{Message: text, History: history})
	if err != nil {
		s.failPlaceholder(placeholder.ID)
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		s.failPlaceholder(placeholder.ID)
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		s.failPlaceholder(placeholder.ID)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.failPlaceholder(placeholder.ID)
		return fmt.Errorf("server returned %s", resp.Status)
	}

	// Fold the byte stream into an accumulator; the placeholder's text is
	// rewritten with the whole accumulated value on every fragment so each
	// snapshot is the complete text-so-far.
	var acc bytes.Buffer
	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			fragment := string(buf[:n])
			acc.Write(buf[:n])
			s.setText(placeholder.ID, acc.String())
			if s.OnFragment != nil {
				s.OnFragment(fragment)
			}
			s.notify()
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			s.failPlaceholder(placeholder.ID)
			return readErr
		}
	}

	s.setText(placeholder.ID, acc.String())
	s.notify()

	if len(s.messages) >= 2 {
		s.store.Save(s.Messages())
	}
	return nil
}

func (s *Session) setText(id, text string) {
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Text = text
			return
		}
	}
}

func (s *Session) failPlaceholder(id string) {
	kept := s.messages[:0]
	for _, m := range s.messages {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	s.messages = append(kept, models.Message{
		ID:        s.newID(),
		Text:      errorMessageText,
		Sender:    models.SenderBot,
		Timestamp: s.timestamp(),
	})
	s.notify()
}

func (s *Session) notify() {
	if s.OnUpdate != nil {
		s.OnUpdate(s.Messages())
	}
}

func (s *Session) timestamp() string {
	return s.now().Format(models.TimeLayout)
}
