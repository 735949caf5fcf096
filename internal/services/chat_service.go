package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/auditlens/auditlens/internal/providers/llm"
	"github.com/auditlens/auditlens/internal/sessions"
	"github.com/auditlens/auditlens/internal/utils"
)

// ChatService proxies a follow-up conversation about an audit report. A
// session pins the system instruction and accumulates turn history; the
// provider replays the history on every message.
type ChatService interface {
	Create(ctx context.Context, systemInstruction string) (*sessions.Session, error)
	Stream(ctx context.Context, sessionID, message string) (chunks <-chan string, errs <-chan error, err error)
}

type chatService struct {
	provider llm.Provider
	store    sessions.Store
	log      *logrus.Logger
}

func NewChatService(provider llm.Provider, store sessions.Store, log *logrus.Logger) ChatService {
	return &chatService{provider: provider, store: store, log: log}
}

func (s *chatService) Create(ctx context.Context, systemInstruction string) (*sessions.Session, error) {
	const op = "ChatService.Create"

	sess := &sessions.Session{
		ID:                uuid.NewString(),
		SystemInstruction: systemInstruction,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.store.Put(ctx, sess); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}
	return sess, nil
}

func (s *chatService) Stream(ctx context.Context, sessionID, message string) (<-chan string, <-chan error, error) {
	const op = "ChatService.Stream"

	if strings.TrimSpace(message) == "" {
		return nil, nil, utils.E(utils.CodeInvalidArgument, op, "message is required", nil)
	}

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return nil, nil, utils.E(utils.CodeNotFound, op, "session not found or expired", err)
		}
		return nil, nil, utils.E(utils.CodeInternal, op, "failed to load session", err)
	}

	chunks, perrs := s.provider.StreamChat(ctx, sess.SystemInstruction, sess.History, message)

	out := make(chan string, 32)
	errs := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errs)

		var reply strings.Builder
		for chunks != nil || perrs != nil {
			select {
			case c, ok := <-chunks:
				if !ok {
					chunks = nil
					continue
				}
				reply.WriteString(c)
				// the reader may be gone; never block on a dead client
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			case e, ok := <-perrs:
				if !ok {
					perrs = nil
					continue
				}
				errs <- e
				return
			}
		}

		// persist the exchange so the next message sees it
		sess.History = append(sess.History,
			llm.Turn{Role: "user", Text: message},
			llm.Turn{Role: "model", Text: reply.String()},
		)
		if err := s.store.Put(context.WithoutCancel(ctx), sess); err != nil {
			s.log.WithField("session_id", sess.ID).WithError(err).Warn("failed to persist chat history")
		}
	}()

	return out, errs, nil
}
