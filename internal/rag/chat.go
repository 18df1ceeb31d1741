package rag

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"mindmapd/internal/llm"
)

// Retrieval and memory bounds for chat sessions.
const (
	chatTopK          = 6
	maxSourceChars    = 500
	maxMemoryMessages = 20
)

const chatSystemPrompt = `You are a helpful assistant answering questions about a specific document.
Answer using only the numbered context passages below. Cite passages inline as [1], [2] and so on.
If the context does not contain the answer, say so instead of guessing.`

const plainSystemPrompt = `You are a helpful assistant answering questions about a document.
No indexed content is available for it, so answer from the conversation alone and say when you cannot know something.`

// Completer produces a chat completion from a message history.
type Completer interface {
	Complete(ctx context.Context, model string, messages []llm.Message) (string, error)
}

// Source describes one passage an answer was grounded in.
type Source struct {
	Index int     `json:"index"`
	Text  string  `json:"text"`
	Score float32 `json:"score"`
}

// Answer is a chat reply together with the passages that grounded it.
type Answer struct {
	Text    string   `json:"response"`
	Sources []Source `json:"sources"`
}

// Session is a per-document chat session: the document's index plus a
// bounded conversation memory. One session is shared by every request for
// its document, so the memory is mutex-guarded.
type Session struct {
	index *Index

	mu     sync.Mutex
	memory []llm.Message
}

// NewSession creates a chat session over an index.
func NewSession(idx *Index) *Session {
	return &Session{index: idx}
}

// Chat answers a question grounded in the session's index and records the
// exchange in the session memory. When the index has no passages the
// question is answered from the conversation alone.
func (s *Session) Chat(ctx context.Context, embedder Embedder, completer Completer, model, question string) (Answer, error) {
	if len(s.index.Passages) == 0 {
		return s.plainChat(ctx, completer, model, question)
	}

	matches, err := s.index.Search(ctx, embedder, question, chatTopK)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieve context: %w", err)
	}
	if len(matches) == 0 {
		return s.plainChat(ctx, completer, model, question)
	}

	history := s.snapshot()
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    "system",
		Content: chatSystemPrompt + "\n\n" + formatContext(matches),
	})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: question})

	reply, err := completer.Complete(ctx, model, messages)
	if err != nil {
		return Answer{}, fmt.Errorf("chat completion: %w", err)
	}

	s.remember(question, reply)
	return Answer{Text: reply, Sources: sources(matches)}, nil
}

func (s *Session) plainChat(ctx context.Context, completer Completer, model, question string) (Answer, error) {
	history := s.snapshot()
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: plainSystemPrompt})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: question})

	reply, err := completer.Complete(ctx, model, messages)
	if err != nil {
		return Answer{}, fmt.Errorf("chat completion: %w", err)
	}
	s.remember(question, reply)
	return Answer{Text: reply}, nil
}

// snapshot copies the conversation memory for use outside the lock.
func (s *Session) snapshot() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]llm.Message, len(s.memory))
	copy(history, s.memory)
	return history
}

// remember appends the exchange and trims the oldest turns past the bound.
func (s *Session) remember(question, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory = append(s.memory,
		llm.Message{Role: "user", Content: question},
		llm.Message{Role: "assistant", Content: reply},
	)
	if len(s.memory) > maxMemoryMessages {
		s.memory = s.memory[len(s.memory)-maxMemoryMessages:]
	}
}

// Reset clears the conversation memory but keeps the index.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory = nil
}

func formatContext(matches []Match) string {
	var sb strings.Builder
	sb.WriteString("Context passages:\n")
	for i, m := range matches {
		fmt.Fprintf(&sb, "\n[%d] %s\n", i+1, m.Passage.Text)
	}
	return sb.String()
}

func sources(matches []Match) []Source {
	out := make([]Source, len(matches))
	for i, m := range matches {
		text := m.Passage.Text
		if len(text) > maxSourceChars {
			text = text[:maxSourceChars]
		}
		out[i] = Source{Index: i + 1, Text: text, Score: m.Score}
	}
	return out
}
