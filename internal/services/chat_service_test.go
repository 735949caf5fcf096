package services_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/auditlens/auditlens/internal/providers/llm"
	"github.com/auditlens/auditlens/internal/services"
	"github.com/auditlens/auditlens/internal/sessions"
	"github.com/auditlens/auditlens/internal/utils"
)

// fakeChatProvider streams pre-baked chunks (then an optional error) and
// records what it was asked.
type fakeChatProvider struct {
	gotSystem  string
	gotHistory []llm.Turn
	gotMessage string
	chunks     []string
	err        error
}

func (f *fakeChatProvider) GenerateJSON(context.Context, string, []llm.Part, map[string]any) (*llm.GenerateResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeChatProvider) StreamChat(_ context.Context, system string, history []llm.Turn, message string) (<-chan string, <-chan error) {
	f.gotSystem = system
	f.gotHistory = history
	f.gotMessage = message

	out := make(chan string, len(f.chunks))
	errs := make(chan error, 1)
	for _, c := range f.chunks {
		out <- c
	}
	if f.err != nil {
		errs <- f.err
	}
	close(out)
	close(errs)
	return out, errs
}

func (f *fakeChatProvider) Model() string { return "fake-model" }
func (f *fakeChatProvider) Close() error  { return nil }

func newChatService(p llm.Provider, store sessions.Store) services.ChatService {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return services.NewChatService(p, store, log)
}

func TestChatCreate(t *testing.T) {
	store := sessions.NewMemoryStore(time.Hour)
	svc := newChatService(&fakeChatProvider{}, store)

	sess, err := svc.Create(context.Background(), "you answer questions about this audit report")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("expected a session id")
	}

	got, err := store.Get(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("session not stored: %v", err)
	}
	if got.SystemInstruction != "you answer questions about this audit report" {
		t.Errorf("stored session = %+v", got)
	}
}

func TestChatStream_RelaysAndPersistsHistory(t *testing.T) {
	store := sessions.NewMemoryStore(time.Hour)
	p := &fakeChatProvider{chunks: []string{"Hello", " there"}}
	svc := newChatService(p, store)

	sess, err := svc.Create(context.Background(), "brief")
	if err != nil {
		t.Fatal(err)
	}

	chunks, errs, err := svc.Stream(context.Background(), sess.ID, "what is the worst issue?")
	if err != nil {
		t.Fatalf("stream: %v", err)
	}

	var reply string
	for c := range chunks {
		reply += c
	}
	if e := <-errs; e != nil {
		t.Fatalf("unexpected stream error: %v", e)
	}
	if reply != "Hello there" {
		t.Errorf("reply = %q", reply)
	}
	if p.gotSystem != "brief" || p.gotMessage != "what is the worst issue?" {
		t.Errorf("provider saw system=%q message=%q", p.gotSystem, p.gotMessage)
	}

	// once the chunk channel closes the exchange is in the store
	got, err := store.Get(context.Background(), sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.History) != 2 {
		t.Fatalf("history = %+v, want user+model turns", got.History)
	}
	if got.History[0].Role != "user" || got.History[1].Role != "model" || got.History[1].Text != "Hello there" {
		t.Errorf("history = %+v", got.History)
	}
}

func TestChatStream_SecondMessageReplaysHistory(t *testing.T) {
	store := sessions.NewMemoryStore(time.Hour)
	p := &fakeChatProvider{chunks: []string{"first answer"}}
	svc := newChatService(p, store)

	sess, _ := svc.Create(context.Background(), "brief")

	chunks, errs, err := svc.Stream(context.Background(), sess.ID, "one")
	if err != nil {
		t.Fatal(err)
	}
	for range chunks {
	}
	<-errs

	chunks, errs, err = svc.Stream(context.Background(), sess.ID, "two")
	if err != nil {
		t.Fatal(err)
	}
	for range chunks {
	}
	<-errs

	if len(p.gotHistory) != 2 {
		t.Fatalf("second call saw %d history turns, want 2", len(p.gotHistory))
	}
	if p.gotHistory[0].Text != "one" || p.gotHistory[1].Text != "first answer" {
		t.Errorf("history = %+v", p.gotHistory)
	}
}

func TestChatStream_Validation(t *testing.T) {
	store := sessions.NewMemoryStore(time.Hour)
	svc := newChatService(&fakeChatProvider{}, store)

	_, _, err := svc.Stream(context.Background(), "whatever", "   ")
	if !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("blank message: code = %v, want INVALID_ARGUMENT", err)
	}

	_, _, err = svc.Stream(context.Background(), "no-such-session", "hi")
	if !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("missing session: code = %v, want NOT_FOUND", err)
	}
}

func TestChatStream_ClientGoneMidReplyUnblocksRelay(t *testing.T) {
	store := sessions.NewMemoryStore(time.Hour)

	// a reply much longer than the relay's channel buffer
	long := make([]string, 100)
	for i := range long {
		long[i] = "chunk"
	}
	p := &fakeChatProvider{chunks: long}
	svc := newChatService(p, store)

	sess, _ := svc.Create(context.Background(), "brief")

	ctx, cancel := context.WithCancel(context.Background())
	chunks, _, err := svc.Stream(ctx, sess.ID, "hi")
	if err != nil {
		t.Fatal(err)
	}

	// the client disconnects without reading anything
	cancel()

	// the relay must exit and close its channel instead of blocking forever
	// on the full buffer
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-chunks:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("relay still blocked after context cancellation")
		}
	}
}

func TestChatStream_ProviderErrorDoesNotPersist(t *testing.T) {
	store := sessions.NewMemoryStore(time.Hour)
	p := &fakeChatProvider{err: errors.New("stream died")}
	svc := newChatService(p, store)

	sess, _ := svc.Create(context.Background(), "brief")

	chunks, errs, err := svc.Stream(context.Background(), sess.ID, "hi")
	if err != nil {
		t.Fatal(err)
	}
	for range chunks {
	}
	if e := <-errs; e == nil {
		t.Fatal("expected a relayed stream error")
	}

	got, _ := store.Get(context.Background(), sess.ID)
	if len(got.History) != 0 {
		t.Errorf("failed exchange must not be persisted, history = %+v", got.History)
	}
}
