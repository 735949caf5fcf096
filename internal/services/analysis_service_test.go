package services_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/auditlens/auditlens/config"
	"github.com/auditlens/auditlens/internal/models"
	"github.com/auditlens/auditlens/internal/prompt"
	"github.com/auditlens/auditlens/internal/providers/llm"
	"github.com/auditlens/auditlens/internal/services"
	"github.com/auditlens/auditlens/internal/utils"
)

type fakeCall struct {
	text  string
	usage llm.Usage
	err   error
}

// fakeProvider replays queued responses in call order and records the system
// instruction of every call.
type fakeProvider struct {
	queue   []fakeCall
	systems []string
	onCall  func(n int)
}

func (f *fakeProvider) GenerateJSON(_ context.Context, system string, _ []llm.Part, _ map[string]any) (*llm.GenerateResult, error) {
	n := len(f.systems)
	f.systems = append(f.systems, system)
	if f.onCall != nil {
		f.onCall(n)
	}
	if n >= len(f.queue) {
		return nil, errors.New("unexpected extra call")
	}
	c := f.queue[n]
	if c.err != nil {
		return nil, c.err
	}
	return &llm.GenerateResult{Text: c.text, Usage: c.usage}, nil
}

func (f *fakeProvider) StreamChat(context.Context, string, []llm.Turn, string) (<-chan string, <-chan error) {
	ch := make(chan string)
	errs := make(chan error)
	close(ch)
	close(errs)
	return ch, errs
}

func (f *fakeProvider) Model() string { return "fake-model" }
func (f *fakeProvider) Close() error  { return nil }

func testPrompts() *config.Prompts {
	return &config.Prompts{Pricing: map[string]config.ModelRate{
		"default": {InputPerMTokens: 1, OutputPerMTokens: 2},
	}}
}

func newService(p llm.Provider, delay time.Duration) services.AnalysisService {
	log := logrus.New()
	log.SetOutput(io.Discard)
	b := prompt.NewBuilder("You audit recorded accessibility evidence.", "test-v1")
	return services.NewAnalysisService(p, b, testPrompts(), delay, log)
}

func video(id string) models.MediaItem {
	return models.MediaItem{ID: id, Kind: models.KindVideo, Data: []byte("v")}
}

func image(id string) models.MediaItem {
	return models.MediaItem{ID: id, Kind: models.KindImage, Data: []byte("i")}
}

func TestAnalyze_MixedMediaAggregates(t *testing.T) {
	p := &fakeProvider{queue: []fakeCall{
		{text: `{"transcript": "first recording", "issues": [{"title": "No focus ring", "severity": "Serious", "ease_of_fix": "Easy"}]}`,
			usage: llm.Usage{InputTokens: 10, OutputTokens: 5}},
		{text: `{"transcript": "second recording", "issues": []}`,
			usage: llm.Usage{InputTokens: 20, OutputTokens: 10}},
		{text: `{"issues": [{"title": "Low contrast button", "severity": "Minor", "ease_of_fix": "Easy"}]}`,
			usage: llm.Usage{InputTokens: 30, OutputTokens: 15}},
	}}
	svc := newService(p, 0)

	got, err := svc.Analyze(context.Background(), models.AnalysisRequest{
		Media: []models.MediaItem{video("v1"), video("v2"), image("img1")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(p.systems) != 3 {
		t.Fatalf("expected 3 provider calls, got %d", len(p.systems))
	}
	if !strings.Contains(p.systems[0], `"video_index": 0`) || !strings.Contains(p.systems[1], `"video_index": 1`) {
		t.Error("time-based directives must pin the video index")
	}
	if !strings.Contains(p.systems[2], "static media") {
		t.Error("static batch directive missing")
	}

	wantTranscripts := []string{"first recording", "second recording"}
	if len(got.Transcripts) != 2 || got.Transcripts[0] != wantTranscripts[0] || got.Transcripts[1] != wantTranscripts[1] {
		t.Errorf("transcripts = %v", got.Transcripts)
	}
	wantCombined := "--- Video 1 Transcript ---\nfirst recording\n\n--- Video 2 Transcript ---\nsecond recording"
	if got.Transcript != wantCombined {
		t.Errorf("combined transcript = %q", got.Transcript)
	}

	if len(got.Issues) != 2 {
		t.Fatalf("issues = %d, want 2", len(got.Issues))
	}
	if got.Issues[0].VideoIndex == nil || *got.Issues[0].VideoIndex != 0 {
		t.Error("video issue must carry video_index 0")
	}
	if got.Issues[1].VideoIndex != nil {
		t.Error("static issue must not carry a video_index")
	}
	// Serious/Easy scores 9 (P1); Minor/Easy scores 1 (P3)
	if got.Issues[0].Priority != 9 || got.Issues[0].PriorityTier != "P1" {
		t.Errorf("priority = %v/%s", got.Issues[0].Priority, got.Issues[0].PriorityTier)
	}
	if got.Issues[1].PriorityTier != "P3" {
		t.Errorf("tier = %s, want P3", got.Issues[1].PriorityTier)
	}
	if len(got.ParsedTranscripts) != 2 {
		t.Errorf("parsed transcripts = %d, want 2", len(got.ParsedTranscripts))
	}

	if got.Usage.InputTokens != 60 || got.Usage.OutputTokens != 30 {
		t.Errorf("usage = %+v", got.Usage)
	}
	if want := testPrompts().Cost("fake-model", 60, 30); got.CostUSD != want {
		t.Errorf("cost = %v, want %v", got.CostUSD, want)
	}

	if got.Model != "fake-model" || got.ItemsSubmitted != 3 || got.ItemsFailed != 0 {
		t.Errorf("metadata = %+v", got)
	}
	if len(got.Timeline) != 3 {
		t.Fatalf("timeline stages = %d, want 3", len(got.Timeline))
	}
	for i, stage := range []string{"upload", "analysis", "aggregation"} {
		if got.Timeline[i].Stage != stage {
			t.Errorf("timeline[%d] = %q, want %q", i, got.Timeline[i].Stage, stage)
		}
	}
}

func TestAnalyze_SingleVideoTranscriptVerbatim(t *testing.T) {
	p := &fakeProvider{queue: []fakeCall{
		{text: `{"transcript": "only recording", "issues": []}`},
	}}
	svc := newService(p, 0)

	got, err := svc.Analyze(context.Background(), models.AnalysisRequest{
		Media: []models.MediaItem{video("v1")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Transcript != "only recording" {
		t.Errorf("single transcript must be verbatim, got %q", got.Transcript)
	}
	if strings.Contains(got.Transcript, "---") {
		t.Error("no header expected for a single recording")
	}
}

func TestAnalyze_PartialFailureKeepsOrder(t *testing.T) {
	p := &fakeProvider{queue: []fakeCall{
		{err: errors.New("upstream exploded")},
		{text: `{"transcript": "survivor", "issues": []}`},
	}}
	svc := newService(p, 0)

	got, err := svc.Analyze(context.Background(), models.AnalysisRequest{
		Media: []models.MediaItem{video("v1"), video("v2")},
	})
	if err != nil {
		t.Fatalf("partial failure must not abort: %v", err)
	}
	if len(got.Transcripts) != 2 || got.Transcripts[0] != "" || got.Transcripts[1] != "survivor" {
		t.Errorf("transcripts = %v, failed slot must stay empty", got.Transcripts)
	}
	if got.ItemsFailed != 1 {
		t.Errorf("items_failed = %d, want 1", got.ItemsFailed)
	}
}

func TestAnalyze_DecodeFailureIsItemFailure(t *testing.T) {
	p := &fakeProvider{queue: []fakeCall{
		{text: "the model wandered off and answered in prose instead"},
		{text: `{"issues": []}`},
	}}
	svc := newService(p, 0)

	got, err := svc.Analyze(context.Background(), models.AnalysisRequest{
		Media: []models.MediaItem{video("v1"), image("img1")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ItemsFailed != 1 {
		t.Errorf("items_failed = %d, want 1", got.ItemsFailed)
	}
}

func TestAnalyze_AllFailed(t *testing.T) {
	p := &fakeProvider{queue: []fakeCall{
		{err: errors.New("video call failed")},
		{err: errors.New("batch call failed")},
	}}
	svc := newService(p, 0)

	_, err := svc.Analyze(context.Background(), models.AnalysisRequest{
		Media: []models.MediaItem{video("v1"), image("img1"), image("img2")},
	})
	if err == nil {
		t.Fatal("expected error when every call fails")
	}
	if !utils.IsCode(err, utils.CodeInternal) {
		t.Errorf("code = %v, want INTERNAL", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "all media analysis calls failed:") {
		t.Errorf("message = %q", msg)
	}
	for _, bullet := range []string{
		"- item 1 (video): video call failed",
		"- item 2 (image): batch call failed",
		"- item 3 (image): batch call failed",
	} {
		if !strings.Contains(msg, bullet) {
			t.Errorf("message missing %q:\n%s", bullet, msg)
		}
	}
}

func TestAnalyze_EmptyItemsBecomeFailures(t *testing.T) {
	p := &fakeProvider{queue: []fakeCall{
		{text: `{"transcript": "second slot", "issues": [{"title": "No captions", "severity": "Serious", "ease_of_fix": "Moderate"}]}`},
		{text: `{"issues": []}`},
	}}
	svc := newService(p, 0)

	got, err := svc.Analyze(context.Background(), models.AnalysisRequest{
		Media: []models.MediaItem{
			{ID: "v-empty", Kind: models.KindVideo}, // no payload
			video("v1"),
			{ID: "img-empty", Kind: models.KindImage}, // no payload
			image("img1"),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(p.systems) != 2 {
		t.Fatalf("expected 2 provider calls (empty items never sent), got %d", len(p.systems))
	}
	if got.ItemsSubmitted != 4 || got.ItemsFailed != 2 {
		t.Errorf("accounting = %d submitted / %d failed, want 4 / 2", got.ItemsSubmitted, got.ItemsFailed)
	}

	// one slot per submitted time-based item, empty payload or not
	if len(got.Transcripts) != 2 || got.Transcripts[0] != "" || got.Transcripts[1] != "second slot" {
		t.Errorf("transcripts = %v", got.Transcripts)
	}
	if len(got.Issues) != 1 || got.Issues[0].VideoIndex == nil || *got.Issues[0].VideoIndex != 1 {
		t.Errorf("video_index must count the empty submission, got %+v", got.Issues)
	}
}

func TestAnalyze_AllRateLimitedIsUnavailable(t *testing.T) {
	throttle := llm.Classify("fake-model", errors.New("googleapi: Error 429: quota exceeded"))
	p := &fakeProvider{queue: []fakeCall{
		{err: throttle},
		{err: throttle},
	}}
	svc := newService(p, 0)

	_, err := svc.Analyze(context.Background(), models.AnalysisRequest{
		Media: []models.MediaItem{video("v1"), video("v2")},
	})
	if !utils.IsCode(err, utils.CodeUnavailable) {
		t.Errorf("code = %v, want UNAVAILABLE when every call was throttled", err)
	}
}

func TestAnalyze_Validation(t *testing.T) {
	svc := newService(&fakeProvider{}, 0)

	_, err := svc.Analyze(context.Background(), models.AnalysisRequest{})
	if !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("empty media: code = %v, want INVALID_ARGUMENT", err)
	}

	_, err = svc.Analyze(context.Background(), models.AnalysisRequest{
		Media: []models.MediaItem{{Kind: models.KindImage}},
	})
	if !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("empty payloads: code = %v, want INVALID_ARGUMENT", err)
	}
}

func TestAnalyze_CancelledBeforeStart(t *testing.T) {
	p := &fakeProvider{}
	svc := newService(p, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Analyze(ctx, models.AnalysisRequest{
		Media: []models.MediaItem{video("v1")},
	})
	if !utils.IsCode(err, utils.CodeCancelled) {
		t.Errorf("code = %v, want CANCELLED", err)
	}
	if len(p.systems) != 0 {
		t.Errorf("no provider call expected, got %d", len(p.systems))
	}
}

func TestAnalyze_CancelledBetweenCalls(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &fakeProvider{
		queue: []fakeCall{
			{text: `{"transcript": "first", "issues": []}`},
			{text: `{"transcript": "never reached", "issues": []}`},
		},
		onCall: func(n int) {
			if n == 0 {
				cancel()
			}
		},
	}
	svc := newService(p, 0)

	_, err := svc.Analyze(ctx, models.AnalysisRequest{
		Media: []models.MediaItem{video("v1"), video("v2")},
	})
	if !utils.IsCode(err, utils.CodeCancelled) {
		t.Errorf("code = %v, want CANCELLED", err)
	}
	if len(p.systems) != 1 {
		t.Errorf("expected exactly 1 call before the abort, got %d", len(p.systems))
	}
}

func TestAnalyze_ImpactSourcePrecedence(t *testing.T) {
	p := &fakeProvider{queue: []fakeCall{
		{text: `{"issues": [
			{"title": "Broken tabs widget", "apg_pattern": "tabs", "axe_rule_id": "color-contrast", "severity": "Minor"},
			{"title": "Faint link text", "axe_rule_id": "color-contrast", "severity": "Minor"},
			{"title": "Odd heading order", "axe_rule_id": "definitely-not-a-rule", "severity": "Moderate"},
			{"title": "Confusing flow", "severity": "Critical"}
		]}`},
	}}
	svc := newService(p, 0)

	got, err := svc.Analyze(context.Background(), models.AnalysisRequest{
		Media: []models.MediaItem{image("img1")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Issues) != 4 {
		t.Fatalf("issues = %d, want 4", len(got.Issues))
	}

	byTitle := make(map[string]models.Issue, len(got.Issues))
	for _, is := range got.Issues {
		byTitle[is.Title] = is
	}

	apg := byTitle["Broken tabs widget"]
	if apg.ImpactSource != models.ImpactSourceAPG || apg.Severity != models.SeverityMinor {
		t.Errorf("apg issue = %s/%s, want apg-pattern-heuristic with model severity kept", apg.ImpactSource, apg.Severity)
	}

	axe := byTitle["Faint link text"]
	if axe.ImpactSource != models.ImpactSourceAxe || axe.Severity != models.SeveritySerious {
		t.Errorf("axe issue = %s/%s, want axe-core with canonical Serious impact", axe.ImpactSource, axe.Severity)
	}

	unknown := byTitle["Odd heading order"]
	if unknown.ImpactSource != models.ImpactSourceWCAG || unknown.Severity != models.SeverityModerate {
		t.Errorf("unknown rule issue = %s/%s, want wcag-heuristic with severity kept", unknown.ImpactSource, unknown.Severity)
	}

	bare := byTitle["Confusing flow"]
	if bare.ImpactSource != models.ImpactSourceWCAG || bare.Severity != models.SeverityCritical {
		t.Errorf("bare issue = %s/%s, want wcag-heuristic with severity kept", bare.ImpactSource, bare.Severity)
	}

	// highest derived priority leads the report
	if got.Issues[0].Title != "Confusing flow" {
		t.Errorf("issues not ordered by priority: %q first", got.Issues[0].Title)
	}
}

func TestAnalyze_CustomSystemInstructionWins(t *testing.T) {
	p := &fakeProvider{queue: []fakeCall{
		{text: `{"issues": []}`},
	}}
	svc := newService(p, 0)

	_, err := svc.Analyze(context.Background(), models.AnalysisRequest{
		Media:             []models.MediaItem{image("img1")},
		SystemInstruction: "CUSTOM AUDITOR BRIEF",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(p.systems[0], "CUSTOM AUDITOR BRIEF") {
		t.Errorf("system = %q, want the caller's instruction verbatim", p.systems[0])
	}
}

func TestAnalyze_BuilderFallbackWhenNoInstruction(t *testing.T) {
	p := &fakeProvider{queue: []fakeCall{
		{text: `{"issues": []}`},
	}}
	svc := newService(p, 0)

	_, err := svc.Analyze(context.Background(), models.AnalysisRequest{
		Media: []models.MediaItem{image("img1")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(p.systems[0], "You audit recorded accessibility evidence.") {
		t.Errorf("system = %q, want server-side prompt fallback", p.systems[0])
	}
}
