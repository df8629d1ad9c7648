package pipeline

import (
	"context"
	"errors"
	"testing"

	"call-insights-go/internal/logger"
	"call-insights-go/internal/transcription"
	"call-insights-go/internal/types"
)

type fakeBackend struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (f *fakeBackend) Complete(_ context.Context, systemPrompt, _ string) (string, error) {
	f.calls = append(f.calls, systemPrompt)
	if err := f.errs[systemPrompt]; err != nil {
		return "", err
	}
	return f.responses[systemPrompt], nil
}

type fakeSTT struct {
	res *transcription.Result
	err error
}

func (f *fakeSTT) Transcribe(context.Context, string) (*transcription.Result, error) {
	return f.res, f.err
}

func threeSegments() *transcription.Result {
	return &transcription.Result{
		Text: "full transcript",
		Segments: []transcription.Segment{
			{Start: 0.0, End: 4.2, Text: " Hello, thanks for calling. "},
			{Start: 4.2, End: 9.8, Text: "My card was charged twice!"},
			{Start: 9.8, End: 14.0, Text: "Let me fix that for you."},
		},
		Duration: 14,
	}
}

const goodSummary = "```json\n" + `{
  "summary": "Customer reported a duplicate charge, agent resolved it.",
  "sentiment": "Initially frustrated, satisfied by the end.",
  "sentiment_score": 6,
  "call_purpose": "Billing dispute",
  "speaker_insights": {"Customer": "frustrated but cooperative", "Agent": "calm and effective"},
  "Agent_rating": 9,
  "Customer_name": "Dana",
  "Agent_name": "NA",
  "action_items": [{"task": "Refund duplicate charge INC4455"}, "Send confirmation email"]
}` + "\n```"

const goodCallOuts = `[
  {"time_sec": 4.2, "label": "High Frustration", "description": "Customer reports double charge."},
  {"time_sec": "9.8", "label": "Resolution"},
  {"time_sec": 12, "label": "Commitment", "description": "Agent promises refund."}
]`

func TestRun_HappyPath(t *testing.T) {
	backend := &fakeBackend{responses: map[string]string{
		batchSentimentPrompt:  `["positive", "negative", "neutral"]`,
		summarizeSystemPrompt: goodSummary,
		callOutsPrompt:        goodCallOuts,
	}}
	engine := New(backend, &fakeSTT{res: threeSegments()}, logger.New())

	st, err := engine.Run(context.Background(), "call1.mp3")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if st.AudioPath != "call1.mp3" {
		t.Errorf("AudioPath = %q", st.AudioPath)
	}
	if st.Transcription != "full transcript" {
		t.Errorf("Transcription = %q", st.Transcription)
	}
	if st.AudioDuration != 14 {
		t.Errorf("AudioDuration = %d, want 14", st.AudioDuration)
	}

	wantSentiments := []string{"positive", "negative", "neutral"}
	if len(st.SentimentChunks) != 3 {
		t.Fatalf("len(SentimentChunks) = %d, want 3", len(st.SentimentChunks))
	}
	for i, c := range st.SentimentChunks {
		if c.Sentiment != wantSentiments[i] {
			t.Errorf("chunk %d sentiment = %q, want %q", i, c.Sentiment, wantSentiments[i])
		}
	}
	if st.SentimentChunks[0].Text != "Hello, thanks for calling." {
		t.Errorf("chunk text not trimmed: %q", st.SentimentChunks[0].Text)
	}

	if st.SentimentScore != 6 {
		t.Errorf("SentimentScore = %d, want 6", st.SentimentScore)
	}
	if st.CallPurpose != "Billing dispute" {
		t.Errorf("CallPurpose = %q", st.CallPurpose)
	}
	if st.SpeakerInsights["Agent"] != "calm and effective" {
		t.Errorf("SpeakerInsights = %v", st.SpeakerInsights)
	}
	if st.AgentRating != 9 || st.CustomerName != "Dana" || st.AgentName != "NA" {
		t.Errorf("rating/names = %d/%q/%q", st.AgentRating, st.CustomerName, st.AgentName)
	}
	if len(st.ActionItems) != 2 {
		t.Fatalf("len(ActionItems) = %d, want 2", len(st.ActionItems))
	}
	if st.ActionItems[1].Task() != "Send confirmation email" {
		t.Errorf("bare-string action item lost: %v", st.ActionItems[1])
	}

	// The middle call-out is missing "description" and must be dropped;
	// the remaining two keep their order.
	if len(st.CallOuts) != 2 {
		t.Fatalf("len(CallOuts) = %d, want 2", len(st.CallOuts))
	}
	if st.CallOuts[0].TimeSec != 4 || st.CallOuts[0].Label != "High Frustration" {
		t.Errorf("CallOuts[0] = %+v", st.CallOuts[0])
	}
	if st.CallOuts[1].TimeSec != 12 || st.CallOuts[1].Label != "Commitment" {
		t.Errorf("CallOuts[1] = %+v", st.CallOuts[1])
	}

	// Stages strictly ordered: sentiment, then summarize, then call-outs.
	wantOrder := []string{batchSentimentPrompt, summarizeSystemPrompt, callOutsPrompt}
	if len(backend.calls) != 3 {
		t.Fatalf("backend calls = %d, want 3", len(backend.calls))
	}
	for i, p := range wantOrder {
		if backend.calls[i] != p {
			t.Errorf("call %d was the wrong stage", i)
		}
	}
}

func TestRun_TranscriptionFailureIsFatal(t *testing.T) {
	backend := &fakeBackend{responses: map[string]string{}}
	engine := New(backend, &fakeSTT{err: errors.New("service unavailable")}, logger.New())

	if _, err := engine.Run(context.Background(), "missing.mp3"); err == nil {
		t.Fatal("Run should fail when transcription fails")
	}
	if len(backend.calls) != 0 {
		t.Errorf("no model call should happen after a fatal transcription failure, got %d", len(backend.calls))
	}
}

func TestRun_SummarizeGarbageSetsSentinels(t *testing.T) {
	backend := &fakeBackend{responses: map[string]string{
		batchSentimentPrompt:  `["neutral", "neutral", "neutral"]`,
		summarizeSystemPrompt: "I'm sorry, I can't help with that.",
		callOutsPrompt:        `[]`,
	}}
	engine := New(backend, &fakeSTT{res: threeSegments()}, logger.New())

	st, err := engine.Run(context.Background(), "call2.mp3")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.CallSummary != "Error parsing response." {
		t.Errorf("CallSummary = %q", st.CallSummary)
	}
	if st.SentimentScore != 0 || st.Sentiment != "" || st.CallPurpose != "" {
		t.Errorf("sentinels not applied: %+v", st)
	}
	if st.ActionItems != nil || st.SpeakerInsights != nil {
		t.Errorf("sentinels not applied: %+v", st)
	}
	// A failed summarize never stops the call-out stage.
	if st.CallOuts == nil {
		t.Error("CallOuts should be an empty list, not nil")
	}
}

func TestRun_SummarizePartialObjectDegradesFieldByField(t *testing.T) {
	backend := &fakeBackend{responses: map[string]string{
		batchSentimentPrompt:  `["neutral"]`,
		summarizeSystemPrompt: `{"summary": "short exchange", "sentiment_score": 8}`,
		callOutsPrompt:        `[]`,
	}}
	res := &transcription.Result{
		Text:     "hi",
		Segments: []transcription.Segment{{Start: 0, End: 1, Text: "hi"}},
		Duration: 1,
	}
	engine := New(backend, &fakeSTT{res: res}, logger.New())

	st, err := engine.Run(context.Background(), "call3.mp3")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.CallSummary != "short exchange" || st.SentimentScore != 8 {
		t.Errorf("present fields lost: %+v", st)
	}
	if st.CallPurpose != "Not detected" {
		t.Errorf("CallPurpose = %q, want default", st.CallPurpose)
	}
	if st.CustomerName != "Not detected" || st.AgentName != "Not detected" {
		t.Errorf("names = %q/%q, want defaults", st.CustomerName, st.AgentName)
	}
}

func TestClassifySegments_LengthMismatchAllNeutral(t *testing.T) {
	backend := &fakeBackend{responses: map[string]string{
		batchSentimentPrompt: `["positive", "negative"]`,
	}}
	engine := New(backend, &fakeSTT{}, logger.New())

	chunks := engine.classifySegments(context.Background(), threeSegments().Segments)
	for i, c := range chunks {
		if c.Sentiment != types.SentimentNeutral {
			t.Errorf("chunk %d = %q, want neutral", i, c.Sentiment)
		}
	}
}

func TestClassifySegments_CallFailureAllNeutral(t *testing.T) {
	backend := &fakeBackend{errs: map[string]error{
		batchSentimentPrompt: errors.New("rate limited"),
	}}
	engine := New(backend, &fakeSTT{}, logger.New())

	chunks := engine.classifySegments(context.Background(), threeSegments().Segments)
	if len(chunks) != 3 {
		t.Fatalf("len(chunks) = %d, want 3", len(chunks))
	}
	for i, c := range chunks {
		if c.Sentiment != types.SentimentNeutral {
			t.Errorf("chunk %d = %q, want neutral", i, c.Sentiment)
		}
	}
}

func TestCallOuts_NonArrayResponseIsEmpty(t *testing.T) {
	backend := &fakeBackend{responses: map[string]string{
		callOutsPrompt: `{"time_sec": 1, "label": "x", "description": "y"}`,
	}}
	engine := New(backend, &fakeSTT{}, logger.New())

	got := engine.callOuts(context.Background(), []types.SentimentChunk{{TimeSec: 1, Text: "x", Sentiment: "neutral"}})
	if len(got) != 0 {
		t.Errorf("callOuts = %v, want empty", got)
	}
}

func TestCallOuts_BadTimeValueDiscardsAll(t *testing.T) {
	// A time that survives neither the float nor the numeric-string cast
	// poisons the whole response: the stage returns an empty list rather
	// than keeping the elements that happened to parse.
	backend := &fakeBackend{responses: map[string]string{
		callOutsPrompt: `[
  {"time_sec": "not-a-number", "label": "Escalation", "description": "Customer asks for a manager."},
  {"time_sec": 3, "label": "Good", "description": "fine"}
]`,
	}}
	engine := New(backend, &fakeSTT{}, logger.New())

	got := engine.callOuts(context.Background(), []types.SentimentChunk{{TimeSec: 1, Text: "x", Sentiment: "neutral"}})
	if got == nil || len(got) != 0 {
		t.Errorf("callOuts = %v, want empty list", got)
	}
}

func TestCallOuts_CallFailureIsEmpty(t *testing.T) {
	backend := &fakeBackend{errs: map[string]error{
		callOutsPrompt: errors.New("model down"),
	}}
	engine := New(backend, &fakeSTT{}, logger.New())

	got := engine.callOuts(context.Background(), nil)
	if got == nil || len(got) != 0 {
		t.Errorf("callOuts = %v, want empty list", got)
	}
}

func TestActionItemsField_SinglePlainString(t *testing.T) {
	items := actionItemsField("call the customer back")
	if len(items) != 1 || items[0].Task() != "call the customer back" {
		t.Errorf("items = %v", items)
	}
	if actionItemsField(nil) != nil {
		t.Error("nil field should stay nil")
	}
}
