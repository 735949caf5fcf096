// Package sessions stores chat sessions. Live SDK chat handles are not
// serializable, so a session holds the system instruction and turn history
// and the provider replays the history on each message; that is what lets a
// keyed store with TTL (redis) back the interface as well as process memory.
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/auditlens/auditlens/internal/providers/llm"
)

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID                string     `json:"id"`
	SystemInstruction string     `json:"system_instruction"`
	History           []llm.Turn `json:"history"`
	CreatedAt         time.Time  `json:"created_at"`
}

type Store interface {
	Put(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
