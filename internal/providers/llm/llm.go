package llm

import "context"

// Part is one element of a multimodal request: either text or inline bytes.
type Part struct {
	Text string
	Blob *Blob
}

type Blob struct {
	MIMEType string
	Data     []byte
}

func TextPart(s string) Part            { return Part{Text: s} }
func BlobPart(mime string, b []byte) Part { return Part{Blob: &Blob{MIMEType: mime, Data: b}} }

type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

type GenerateResult struct {
	Text  string
	Usage Usage
}

// Turn is one entry of a chat history.
type Turn struct {
	Role string `json:"role"` // "user" | "model"
	Text string `json:"text"`
}

type Provider interface {
	// GenerateJSON sends parts under a system instruction with a strict JSON
	// response schema and returns the model's raw text.
	GenerateJSON(ctx context.Context, system string, parts []Part, schema map[string]any) (*GenerateResult, error)

	// StreamChat replays history and streams the reply to message as
	// incremental text chunks.
	StreamChat(ctx context.Context, system string, history []Turn, message string) (chunks <-chan string, errs <-chan error)

	// Model names the underlying analysis model, used for pricing.
	Model() string

	Close() error
}
