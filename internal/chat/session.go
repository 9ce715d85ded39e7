// Package chat holds the chatbot widget's session: an append-only transcript
// plus a mode flag routing turns to one of two backend endpoints.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jumak-kr/jumakweb/internal/backend"
)

// Sender marks who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Fixed transcript strings, matching the jumo persona.
const (
	Greeting        = "어서오슈!!! 🍶\n무엇을 도와드릴까유~?"
	Apology         = "아이고, 머리가 아파서 잠시 생각을 못하겠구만유. 다시 물어봐주시오."
	ClassicPrompt   = "고전 시나 소설 속 한 줄을 적어주시면, 그 분위기에 맞는 전통주를 골라드리겠슈 🍶"
	ClassicModeChip = "고전 문구에 맞는 술 추천해줘"
)

// Suggestions are the quick-reply chips shown on a fresh transcript.
var Suggestions = []string{
	"오늘의 전통주 추천해줘",
	"전통주 칵테일 레시피",
	"오늘 날씨에 맞는 술 추천해줘",
	ClassicModeChip,
}

// Message is one transcript entry. IDs derive from wall-clock milliseconds
// and are bumped when needed so they stay strictly monotonic.
type Message struct {
	ID     int64               `json:"id"`
	Text   string              `json:"text"`
	Sender Sender              `json:"sender"`
	Drinks []backend.ChatDrink `json:"drinks,omitempty"`
}

// API is the chatbot backend surface, satisfied by backend.Client.
type API interface {
	Chat(ctx context.Context, message string) (*backend.ChatAnswer, error)
	ClassicChat(ctx context.Context, message string) (*backend.ChatAnswer, error)
}

// Session is one in-memory chat. The transcript is append-only and lives only
// until the session is dropped; nothing persists.
type Session struct {
	api API
	log zerolog.Logger
	now func() time.Time

	mu          sync.Mutex
	messages    []Message
	classicMode bool
	loading     bool
	lastID      int64
}

// NewSession opens a session seeded with the greeting.
func NewSession(a API, log zerolog.Logger) *Session {
	s := &Session{api: a, log: log, now: time.Now}
	s.messages = []Message{{ID: 1, Text: Greeting, Sender: SenderBot}}
	s.lastID = 1
	return s
}

// Send appends the user's turn optimistically, posts it to the mode-selected
// endpoint, and appends the reply, or the fixed apology on any failure.
func (s *Session) Send(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	s.mu.Lock()
	s.appendLocked(Message{Text: text, Sender: SenderUser})
	s.loading = true
	classic := s.classicMode
	s.mu.Unlock()

	var answer *backend.ChatAnswer
	var err error
	if classic {
		answer, err = s.api.ClassicChat(ctx, text)
	} else {
		answer, err = s.api.Chat(ctx, text)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.log.Error().Err(err).Bool("classic", classic).Msg("chat turn failed")
		s.appendLocked(Message{Text: Apology, Sender: SenderBot})
		return
	}
	s.appendLocked(Message{Text: answer.Answer, Sender: SenderBot, Drinks: answer.Drinks})
}

// Suggest handles a quick-reply chip. The classic-literature chip flips the
// mode flag and has the bot explain itself without a backend call; any other
// chip drops back to default mode and sends normally. The flag persists until
// another chip resets it.
func (s *Session) Suggest(ctx context.Context, text string) {
	if text == ClassicModeChip {
		s.mu.Lock()
		s.classicMode = true
		s.appendLocked(Message{Text: ClassicPrompt, Sender: SenderBot})
		s.mu.Unlock()
		return
	}
	s.mu.Lock()
	s.classicMode = false
	s.mu.Unlock()
	s.Send(ctx, text)
}

// ClassicMode reports the current routing mode.
func (s *Session) ClassicMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classicMode
}

// Loading reports whether a turn is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Messages returns a copy of the transcript in append order.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

func (s *Session) appendLocked(m Message) {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	m.ID = id
	s.lastID = id
	s.messages = append(s.messages, m)
}
