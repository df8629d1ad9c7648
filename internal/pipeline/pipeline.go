// Package pipeline runs the call-analysis pipeline: one audio file in, one
// finished State out. Stages execute strictly in order — transcribe,
// summarize, analyze call-outs — and each stage appends its own fields to a
// copy of its input. Only the transcription call can fail a run; every
// model-output problem downstream degrades to a documented sentinel.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"call-insights-go/internal/extract"
	"call-insights-go/internal/llm"
	"call-insights-go/internal/logger"
	"call-insights-go/internal/transcription"
	"call-insights-go/internal/types"
)

type Engine struct {
	model llm.Backend
	stt   transcription.Service
	log   *logrus.Entry
}

// New builds an engine bound to one model backend for the whole run.
func New(model llm.Backend, stt transcription.Service, log *logger.Logger) *Engine {
	return &Engine{
		model: model,
		stt:   stt,
		log:   log.WithField("module", "pipeline"),
	}
}

// Run executes the three stages for one audio file. The returned error is
// non-nil only when transcription itself fails; summarize and call-out
// degradation is visible solely in the State fields.
func (e *Engine) Run(ctx context.Context, audioPath string) (types.State, error) {
	st := types.State{AudioPath: audioPath}

	st, err := e.transcribe(ctx, st)
	if err != nil {
		return types.State{}, err
	}
	st = e.summarize(ctx, st)
	st = e.analyzeCallOuts(ctx, st)
	return st, nil
}

// transcribe populates Transcription, SentimentChunks and AudioDuration.
// The transcription call is fatal on failure; the sentiment sub-call is not.
func (e *Engine) transcribe(ctx context.Context, st types.State) (types.State, error) {
	res, err := e.stt.Transcribe(ctx, st.AudioPath)
	if err != nil {
		return types.State{}, fmt.Errorf("transcribe stage: %w", err)
	}

	out := st
	out.Transcription = res.Text
	out.SentimentChunks = e.classifySegments(ctx, res.Segments)
	out.AudioDuration = res.Duration
	return out, nil
}

// classifySegments issues one batch sentiment request for all segments.
// If the response cannot be parsed, or its length does not match the
// segment count, every segment is labeled neutral.
func (e *Engine) classifySegments(ctx context.Context, segments []transcription.Segment) []types.SentimentChunk {
	chunks := make([]types.SentimentChunk, len(segments))
	for i, s := range segments {
		chunks[i] = types.SentimentChunk{
			TimeSec:   math.Round(s.Start*100) / 100,
			Text:      strings.TrimSpace(s.Text),
			Sentiment: types.SentimentNeutral,
		}
	}
	if len(segments) == 0 {
		return chunks
	}

	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	resp, err := e.model.Complete(ctx, batchSentimentPrompt, "Segments: "+strings.Join(texts, " | "))
	if err != nil {
		e.log.WithError(err).Warn("batch sentiment call failed, defaulting to neutral")
		return chunks
	}

	var labels []string
	if err := json.Unmarshal([]byte(extract.StripFence(resp)), &labels); err != nil || len(labels) != len(segments) {
		e.log.WithField("labels", len(labels)).Warn("batch sentiment response unusable, defaulting to neutral")
		return chunks
	}
	for i, label := range labels {
		chunks[i].Sentiment = label
	}
	return chunks
}

// summarize derives the structured summary fields from the transcription.
// This stage always succeeds structurally: an unusable completion sets the
// documented failure sentinels, a partially-shaped one degrades field by
// field.
func (e *Engine) summarize(ctx context.Context, st types.State) types.State {
	out := st

	resp, err := e.model.Complete(ctx, summarizeSystemPrompt, st.Transcription)
	if err != nil {
		e.log.WithError(err).Warn("summarize call failed")
		return summaryFailure(out)
	}
	parsed, ok := extract.Object(resp)
	if !ok {
		e.log.Warn("summarize response had no parseable JSON object")
		return summaryFailure(out)
	}

	out.CallSummary = stringField(parsed, "summary", "No summary available.")
	out.Sentiment = stringField(parsed, "sentiment", "Not detected")
	out.SentimentScore = intField(parsed, "sentiment_score", 0)
	out.CallPurpose = stringField(parsed, "call_purpose", "Not detected")
	out.SpeakerInsights = insightsField(parsed["speaker_insights"])
	out.ActionItems = actionItemsField(parsed["action_items"])
	out.AgentRating = intField(parsed, "Agent_rating", 0)
	out.CustomerName = stringField(parsed, "Customer_name", "Not detected")
	out.AgentName = stringField(parsed, "Agent_name", "Not detected")
	return out
}

func summaryFailure(st types.State) types.State {
	out := st
	out.CallSummary = "Error parsing response."
	out.Sentiment = ""
	out.SentimentScore = 0
	out.CallPurpose = ""
	out.SpeakerInsights = nil
	out.ActionItems = nil
	out.AgentRating = 0
	out.CustomerName = ""
	out.AgentName = ""
	return out
}

// analyzeCallOuts extracts timestamped notable events from the sentiment
// chunks. The stage can never fail the pipeline: any error yields an empty
// call-out list.
func (e *Engine) analyzeCallOuts(ctx context.Context, st types.State) types.State {
	out := st
	out.CallOuts = e.callOuts(ctx, st.SentimentChunks)
	return out
}

func (e *Engine) callOuts(ctx context.Context, chunks []types.SentimentChunk) []types.CallOut {
	lines := make([]string, len(chunks))
	for i, c := range chunks {
		lines[i] = fmt.Sprintf("%vs: %s (Sentiment: %s)", c.TimeSec, c.Text, c.Sentiment)
	}
	transcript := strings.Join(lines, "\n")

	resp, err := e.model.Complete(ctx, callOutsPrompt, "Use the following transcription for analysis:\n\n"+transcript)
	if err != nil {
		e.log.WithError(err).Warn("call-out analysis failed")
		return []types.CallOut{}
	}

	elems, ok := extract.Array(resp)
	if !ok {
		e.log.Warn("call-out response was not a JSON array")
		return []types.CallOut{}
	}

	valid := make([]types.CallOut, 0, len(elems))
	for _, el := range elems {
		var item map[string]any
		if err := json.Unmarshal(el, &item); err != nil {
			continue
		}
		t, okTime := item["time_sec"]
		label, okLabel := item["label"]
		desc, okDesc := item["description"]
		if !okTime || !okLabel || !okDesc {
			continue
		}
		sec, ok := toSeconds(t)
		if !ok {
			e.log.Warn("call-out time value not coercible, discarding call-outs")
			return []types.CallOut{}
		}
		valid = append(valid, types.CallOut{
			TimeSec:     sec,
			Label:       toString(label),
			Description: toString(desc),
		})
	}
	return valid
}

// toSeconds coerces a time value to whole seconds via a float cast, as
// models emit numbers, numeric strings, or fractional seconds.
func toSeconds(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return int(f), true
	default:
		return 0, false
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func stringField(m map[string]any, key, fallback string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func intField(m map[string]any, key string, fallback int) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return int(f)
		}
	}
	return fallback
}

func insightsField(v any) map[string]string {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		out[k] = toString(val)
	}
	return out
}

// actionItemsField accepts the heterogeneous shapes models produce: a list
// of {"task": ...} objects, a list of bare strings, a mix, or one plain
// string for the whole field.
func actionItemsField(v any) []types.ActionItem {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return []types.ActionItem{{Text: t}}
	case []any:
		raw, err := json.Marshal(t)
		if err != nil {
			return nil
		}
		var items []types.ActionItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		return items
	default:
		return nil
	}
}
