package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Gemini talks to the hosted Gemini API with an API key.
type Gemini struct {
	client        *genai.Client
	analysisModel string
	chatModel     string
}

func NewGemini(ctx context.Context, apiKey, analysisModel, chatModel string) (*Gemini, error) {
	if analysisModel == "" {
		analysisModel = "gemini-2.5-flash"
	}
	if chatModel == "" {
		chatModel = analysisModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Gemini{client: client, analysisModel: analysisModel, chatModel: chatModel}, nil
}

func (g *Gemini) Model() string { return g.analysisModel }

func (g *Gemini) Close() error { return g.client.Close() }

func (g *Gemini) GenerateJSON(ctx context.Context, system string, parts []Part, schema map[string]any) (*GenerateResult, error) {
	m := g.client.GenerativeModel(g.analysisModel)
	m.GenerationConfig.ResponseMIMEType = "application/json"
	if s := toSchema(schema); s != nil {
		m.GenerationConfig.ResponseSchema = s
	}
	if system != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := m.GenerateContent(ctx, toGenaiParts(parts)...)
	if err != nil {
		return nil, Classify(g.analysisModel, err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, Classify(g.analysisModel, err)
	}

	res := &GenerateResult{Text: text}
	if u := resp.UsageMetadata; u != nil {
		res.Usage = Usage{
			InputTokens:  int64(u.PromptTokenCount),
			OutputTokens: int64(u.CandidatesTokenCount),
		}
	}
	return res, nil
}

func (g *Gemini) StreamChat(ctx context.Context, system string, history []Turn, message string) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		m := g.client.GenerativeModel(g.chatModel)
		if system != "" {
			m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
		}

		cs := m.StartChat()
		cs.History = toGenaiHistory(history)

		it := cs.SendMessageStream(ctx, genai.Text(message))
		for {
			resp, err := it.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				errs <- Classify(g.chatModel, err)
				return
			}

			for _, cand := range resp.Candidates {
				if cand.Content == nil {
					continue
				}
				for _, part := range cand.Content.Parts {
					if t, ok := part.(genai.Text); ok && string(t) != "" {
						select {
						case out <- string(t):
						case <-ctx.Done():
							return
						}
					}
				}
			}
		}
	}()

	return out, errs
}

func toGenaiParts(parts []Part) []genai.Part {
	out := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.Blob != nil {
			out = append(out, genai.Blob{MIMEType: p.Blob.MIMEType, Data: p.Blob.Data})
			continue
		}
		if p.Text != "" {
			out = append(out, genai.Text(p.Text))
		}
	}
	return out
}

func toGenaiHistory(history []Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		role := t.Role
		if role != "model" {
			role = "user"
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(t.Text)}})
	}
	return out
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	cand := resp.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		if cand.FinishReason != genai.FinishReasonStop && cand.FinishReason != genai.FinishReasonUnspecified {
			return "", fmt.Errorf("response blocked, finish reason: %s", cand.FinishReason)
		}
		return "", fmt.Errorf("response has no content parts (finish reason: %s)", cand.FinishReason)
	}

	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("response text is empty")
	}
	return b.String(), nil
}
