package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/auditlens/auditlens/config"
	"github.com/auditlens/auditlens/internal/jsonx"
	"github.com/auditlens/auditlens/internal/models"
	"github.com/auditlens/auditlens/internal/prompt"
	"github.com/auditlens/auditlens/internal/providers/llm"
	"github.com/auditlens/auditlens/internal/refdata"
	"github.com/auditlens/auditlens/internal/scoring"
	"github.com/auditlens/auditlens/internal/transcript"
	"github.com/auditlens/auditlens/internal/utils"
)

// AnalysisService turns a heterogeneous batch of uploaded media into one
// AggregateResult despite each model call being independent and fallible.
//
// Time-based items (video/audio) get one call each, sequentially with a fixed
// inter-call delay so the provider's rate limiter is not tripped; static
// items (image/pdf) are batched into a single call with no documented size
// limit (the provider's own payload-limit error surfaces as that batch's
// failure). A failed call becomes a per-item failure record and never aborts
// sibling calls; only total failure escalates to an error.
type AnalysisService interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AggregateResult, error)
}

type analysisService struct {
	provider llm.Provider
	builder  *prompt.Builder
	prompts  *config.Prompts
	delay    time.Duration
	log      *logrus.Logger
}

func NewAnalysisService(provider llm.Provider, builder *prompt.Builder, prompts *config.Prompts, delay time.Duration, log *logrus.Logger) AnalysisService {
	return &analysisService{
		provider: provider,
		builder:  builder,
		prompts:  prompts,
		delay:    delay,
		log:      log,
	}
}

// itemPayload is the schema-conformant shape of one model response.
type itemPayload struct {
	Transcript string         `json:"transcript"`
	Issues     []models.Issue `json:"issues"`
}

type indexedItem struct {
	pos  int // zero-based position in the submitted media list
	item models.MediaItem
}

func (s *analysisService) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AggregateResult, error) {
	const op = "AnalysisService.Analyze"

	if len(req.Media) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "no media submitted", nil)
	}
	usable := 0
	for _, m := range req.Media {
		if m.HasContent() {
			usable++
		}
	}
	if usable == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "no media item has usable content", nil)
	}

	system := req.SystemInstruction
	if strings.TrimSpace(system) == "" {
		system = s.builder.System(prompt.Options{Media: req.Media})
	}

	uploadStart := time.Now()
	var timeBased, static []indexedItem
	for i, m := range req.Media {
		if m.Kind.TimeBased() {
			timeBased = append(timeBased, indexedItem{pos: i, item: m})
		} else {
			static = append(static, indexedItem{pos: i, item: m})
		}
	}
	uploadEnd := time.Now()

	analysisStart := time.Now()
	results := make([]models.PerItemResult, 0, len(timeBased)+1)
	rateLimited := 0

	calls := 0
	for i, it := range timeBased {
		// an empty item still gets a failure record and a transcript slot,
		// it just never reaches the provider
		if !it.item.HasContent() {
			s.log.WithFields(logrus.Fields{
				"position": it.pos,
				"kind":     it.item.Kind,
			}).Warn("media item has no content")
			results = append(results, models.PerItemResult{
				Position: it.pos, Kind: it.item.Kind, Err: "no content",
			})
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, utils.E(utils.CodeCancelled, op, "analysis cancelled", err)
		}
		if calls > 0 {
			select {
			case <-ctx.Done():
				return nil, utils.E(utils.CodeCancelled, op, "analysis cancelled", ctx.Err())
			case <-time.After(s.delay):
			}
		}
		calls++

		res, err := s.analyzeTimeBased(ctx, system, req.ResponseSchema, it, i, len(timeBased))
		if err != nil {
			if cerr := s.cancellation(ctx, op, err); cerr != nil {
				return nil, cerr
			}
			s.log.WithFields(logrus.Fields{
				"position": it.pos,
				"kind":     it.item.Kind,
				"error":    err.Error(),
			}).Warn("media analysis call failed")
			if llm.IsKind(err, llm.KindRateLimited) {
				rateLimited++
			}
			results = append(results, models.PerItemResult{
				Position: it.pos, Kind: it.item.Kind, Err: err.Error(),
			})
			continue
		}
		results = append(results, *res)
	}

	var staticUsable []indexedItem
	for _, it := range static {
		if !it.item.HasContent() {
			s.log.WithFields(logrus.Fields{
				"position": it.pos,
				"kind":     it.item.Kind,
			}).Warn("media item has no content")
			results = append(results, models.PerItemResult{
				Position: it.pos, Kind: it.item.Kind, Err: "no content",
			})
			continue
		}
		staticUsable = append(staticUsable, it)
	}
	if len(staticUsable) > 0 {
		res, err := s.analyzeStaticBatch(ctx, system, req.ResponseSchema, staticUsable)
		if err != nil {
			if cerr := s.cancellation(ctx, op, err); cerr != nil {
				return nil, cerr
			}
			s.log.WithFields(logrus.Fields{
				"items": len(staticUsable),
				"error": err.Error(),
			}).Warn("static media batch call failed")
			if llm.IsKind(err, llm.KindRateLimited) {
				rateLimited += len(staticUsable)
			}
			// one failure record per covered item keeps the all-failed
			// breakdown addressable by submission position
			for _, it := range staticUsable {
				results = append(results, models.PerItemResult{
					Position: it.pos, Kind: it.item.Kind, Err: err.Error(),
				})
			}
		} else {
			results = append(results, *res)
		}
	}
	analysisEnd := time.Now()

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	if succeeded == 0 {
		code := utils.CodeInternal
		if rateLimited > 0 && rateLimited == len(results) {
			// uniformly throttled, not broken: tell the client to back off
			code = utils.CodeUnavailable
		}
		return nil, utils.E(code, op, allFailedMessage(results), nil)
	}

	aggStart := time.Now()
	agg := s.assemble(req, timeBased, results)
	agg.Timeline = []models.StageTiming{
		{Stage: "upload", Start: uploadStart, End: uploadEnd},
		{Stage: "analysis", Start: analysisStart, End: analysisEnd},
		{Stage: "aggregation", Start: aggStart, End: time.Now()},
	}

	s.log.WithFields(logrus.Fields{
		"items_submitted": agg.ItemsSubmitted,
		"items_failed":    agg.ItemsFailed,
		"issues":          len(agg.Issues),
		"input_tokens":    agg.Usage.InputTokens,
		"output_tokens":   agg.Usage.OutputTokens,
		"cost_usd":        agg.CostUSD,
	}).Info("media analysis complete")

	return agg, nil
}

// cancellation converts a context-driven abort into the cancellation error;
// cancellation is not a partial-failure case.
func (s *analysisService) cancellation(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil || llm.IsKind(err, llm.KindCanceled) {
		return utils.E(utils.CodeCancelled, op, "analysis cancelled", err)
	}
	return nil
}

func (s *analysisService) analyzeTimeBased(ctx context.Context, system string, schema map[string]any, it indexedItem, videoIndex, total int) (*models.PerItemResult, error) {
	directive := fmt.Sprintf(
		"\n\nThis is time-based item %d of %d. Produce a transcript of this item alone, restarting timestamps at 00:00. Tag every issue in this response with \"video_index\": %d.",
		videoIndex+1, total, videoIndex)

	parts := []llm.Part{llm.BlobPart(it.item.DefaultMimeType(), it.item.Data)}
	if c := strings.TrimSpace(it.item.Comment); c != "" {
		parts = append(parts, llm.TextPart("Uploader note for this item: "+c))
	}

	gen, err := s.provider.GenerateJSON(ctx, system+directive, parts, schema)
	if err != nil {
		return nil, err
	}

	var payload itemPayload
	if err := jsonx.Decode(gen.Text, &payload); err != nil {
		return nil, err
	}

	vi := videoIndex
	for i := range payload.Issues {
		payload.Issues[i].VideoIndex = &vi
	}

	return &models.PerItemResult{
		Success:    true,
		Position:   it.pos,
		Kind:       it.item.Kind,
		RawText:    gen.Text,
		Transcript: payload.Transcript,
		Issues:     payload.Issues,
		Usage:      models.Usage{InputTokens: gen.Usage.InputTokens, OutputTokens: gen.Usage.OutputTokens},
	}, nil
}

func (s *analysisService) analyzeStaticBatch(ctx context.Context, system string, schema map[string]any, items []indexedItem) (*models.PerItemResult, error) {
	directive := fmt.Sprintf(
		"\n\nThe following %d items are static media (screenshots or PDF pages). Do not produce timestamps or a transcript; report issues only.",
		len(items))

	parts := make([]llm.Part, 0, len(items)*2)
	for i, it := range items {
		parts = append(parts, llm.TextPart(fmt.Sprintf("Static item %d (%s):", i+1, it.item.Kind)))
		parts = append(parts, llm.BlobPart(it.item.DefaultMimeType(), it.item.Data))
		if c := strings.TrimSpace(it.item.Comment); c != "" {
			parts = append(parts, llm.TextPart("Uploader note: "+c))
		}
	}

	gen, err := s.provider.GenerateJSON(ctx, system+directive, parts, schema)
	if err != nil {
		return nil, err
	}

	var payload itemPayload
	if err := jsonx.Decode(gen.Text, &payload); err != nil {
		return nil, err
	}

	// static issues carry no video_index, whatever the model claimed
	for i := range payload.Issues {
		payload.Issues[i].VideoIndex = nil
	}

	return &models.PerItemResult{
		Success:  true,
		Position: items[0].pos,
		Kind:     items[0].item.Kind,
		RawText:  gen.Text,
		Issues:   payload.Issues,
		Usage:    models.Usage{InputTokens: gen.Usage.InputTokens, OutputTokens: gen.Usage.OutputTokens},
	}, nil
}

func (s *analysisService) assemble(req models.AnalysisRequest, timeBased []indexedItem, results []models.PerItemResult) *models.AggregateResult {
	agg := &models.AggregateResult{
		Model:          s.provider.Model(),
		ItemsSubmitted: len(req.Media),
	}

	// index-aligned transcripts: failed positions stay ""
	if n := len(timeBased); n > 0 {
		agg.Transcripts = make([]string, n)
	}
	transcriptByPos := make(map[int]string)
	for _, r := range results {
		if !r.Success {
			agg.ItemsFailed++
			continue
		}
		agg.Issues = append(agg.Issues, r.Issues...)
		agg.Usage.Add(r.Usage)
		if r.Kind.TimeBased() {
			transcriptByPos[r.Position] = r.Transcript
		}
	}
	for i, it := range timeBased {
		agg.Transcripts[i] = transcriptByPos[it.pos]
	}

	switch len(agg.Transcripts) {
	case 0:
	case 1:
		agg.Transcript = agg.Transcripts[0]
	default:
		var b strings.Builder
		for i, t := range agg.Transcripts {
			if i > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(fmt.Sprintf("--- Video %d Transcript ---\n", i+1))
			b.WriteString(t)
		}
		agg.Transcript = b.String()
	}

	stampImpactSources(agg.Issues)

	for i := range agg.Issues {
		score, tier := scoring.Rank(agg.Issues[i])
		agg.Issues[i].Priority = score
		agg.Issues[i].PriorityTier = string(tier)
	}
	sort.SliceStable(agg.Issues, func(a, b int) bool {
		return agg.Issues[a].Priority > agg.Issues[b].Priority
	})

	if len(agg.Transcripts) > 0 {
		agg.ParsedTranscripts = make([][]transcript.Line, len(agg.Transcripts))
		for i, t := range agg.Transcripts {
			agg.ParsedTranscripts[i] = transcript.Parse(t)
		}
	}

	agg.CostUSD = s.prompts.Cost(s.provider.Model(), agg.Usage.InputTokens, agg.Usage.OutputTokens)
	return agg
}

// stampImpactSources applies the severity precedence: an APG pattern keeps
// the model's severity, a resolvable axe rule overwrites it with the rule's
// canonical impact, everything else is a WCAG heuristic.
func stampImpactSources(issues []models.Issue) {
	for i := range issues {
		is := &issues[i]
		switch {
		case strings.TrimSpace(is.APGPattern) != "":
			is.ImpactSource = models.ImpactSourceAPG
		default:
			if rule, ok := refdata.LookupAxeRule(is.AxeRuleID); ok && strings.TrimSpace(is.AxeRuleID) != "" {
				is.Severity = rule.Impact
				is.ImpactSource = models.ImpactSourceAxe
			} else {
				is.ImpactSource = models.ImpactSourceWCAG
			}
		}
	}
}

func allFailedMessage(results []models.PerItemResult) string {
	var b strings.Builder
	b.WriteString("all media analysis calls failed:")
	for _, r := range results {
		b.WriteString(fmt.Sprintf("\n- item %d (%s): %s", r.Position+1, r.Kind, r.Err))
	}
	return b.String()
}
