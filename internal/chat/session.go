package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/daito-dot/gemini-chatbot/internal/llm"
)

// ChatSession owns a collection of extracted documents and answers queries
// grounded in them via a model completion call. It is not safe for
// concurrent use; a concurrent host must serialize access to a given
// session.
type ChatSession struct {
	completer llm.Completer

	// Insertion-ordered document set. Re-adding an existing key replaces the
	// content but keeps the key's original position.
	keys      []string
	documents map[string]string
}

func NewChatSession(completer llm.Completer) *ChatSession {
	return &ChatSession{
		completer: completer,
		documents: make(map[string]string),
	}
}

// AddDocument inserts or overwrites a document. Adding an existing key is a
// silent overwrite, last write wins.
func (session *ChatSession) AddDocument(key, content string) {
	if _, exists := session.documents[key]; !exists {
		session.keys = append(session.keys, key)
	}
	session.documents[key] = content
}

// RemoveDocument removes a document if present; removing an absent key is a
// no-op.
func (session *ChatSession) RemoveDocument(key string) {
	if _, exists := session.documents[key]; !exists {
		return
	}
	delete(session.documents, key)
	for i, k := range session.keys {
		if k == key {
			session.keys = append(session.keys[:i], session.keys[i+1:]...)
			break
		}
	}
}

// ClearDocuments empties the document collection.
func (session *ChatSession) ClearDocuments() {
	session.keys = nil
	session.documents = make(map[string]string)
}

// ListDocuments returns the document keys in insertion order. The returned
// slice is a snapshot and is not affected by later mutations.
func (session *ChatSession) ListDocuments() []string {
	keys := make([]string, len(session.keys))
	copy(keys, session.keys)
	return keys
}

// Generate answers a query grounded in the current document collection. It
// is total: model call failures are converted into an in-band answer string
// rather than returned as errors. The model sees only the documents and the
// current query, never prior turns.
func (session *ChatSession) Generate(ctx context.Context, query string) string {
	if len(session.keys) == 0 {
		return prompts.NoDocuments
	}

	sections := make([]string, 0, len(session.keys))
	for _, key := range session.keys {
		sections = append(sections, fmt.Sprintf("=== %s ===\n%s", key, session.documents[key]))
	}

	prompt := buildPrompt(strings.Join(sections, "\n\n"), query)

	answer, err := session.completer.Complete(ctx, prompt)
	if err != nil {
		slog.Error("model completion failed", "error", err)
		return fmt.Sprintf("An error occurred while generating the answer: %v", err)
	}

	return answer
}
