package models

import (
	"time"

	"github.com/auditlens/auditlens/internal/transcript"
)

// AnalysisRequest is immutable once submitted to the orchestrator.
type AnalysisRequest struct {
	Media             []MediaItem
	SystemInstruction string
	ResponseSchema    map[string]any
}

type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

func (u *Usage) Add(o Usage) {
	u.InputTokens += o.InputTokens
	u.OutputTokens += o.OutputTokens
}

// PerItemResult is the outcome of one model call: one per time-based item,
// one for the whole static batch (Position is the submission index of the
// first item the call covered).
type PerItemResult struct {
	Success    bool
	Position   int // zero-based index into AnalysisRequest.Media
	Kind       MediaKind
	RawText    string
	Transcript string
	Issues     []Issue
	Usage      Usage
	Err        string
}

type StageTiming struct {
	Stage string    `json:"stage"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AggregateResult stitches every per-item result into one report.
// Transcripts always has one entry per submitted time-based item, in
// submission order; failed positions hold an empty string.
type AggregateResult struct {
	Issues            []Issue             `json:"issues"`
	Transcript        string              `json:"transcript"`
	Transcripts       []string            `json:"transcripts"`
	ParsedTranscripts [][]transcript.Line `json:"parsed_transcripts,omitempty"`
	Usage             Usage               `json:"usage"`
	CostUSD           float64             `json:"cost_usd"`
	Model             string              `json:"model"`
	Timeline          []StageTiming       `json:"timeline"`
	ItemsSubmitted    int                 `json:"items_submitted"`
	ItemsFailed       int                 `json:"items_failed"`
}
