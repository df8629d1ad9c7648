package types

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Sentiment labels produced by the batch classifier.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// SentimentChunk pairs one transcript segment with its classified sentiment.
type SentimentChunk struct {
	TimeSec   float64 `json:"time_sec"`
	Text      string  `json:"text"`
	Sentiment string  `json:"sentiment"`
}

// CallOut is a timestamped notable event extracted from the call.
type CallOut struct {
	TimeSec     int    `json:"time_sec"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// ActionItem is a follow-up task from the call summary. Models emit these
// in two shapes: a bare string, or an object such as {"task": "..."}.
// Both shapes are preserved as received; callers decide how to render them.
type ActionItem struct {
	// Text holds the bare-string form. Empty when Fields is set.
	Text string
	// Fields holds the object form, keyed as the model emitted it.
	Fields map[string]string
}

func (a *ActionItem) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Text = s
		a.Fields = nil
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("action item: %w", err)
	}
	a.Text = ""
	a.Fields = make(map[string]string, len(raw))
	for k, v := range raw {
		if sv, ok := v.(string); ok {
			a.Fields[k] = sv
		} else {
			a.Fields[k] = fmt.Sprint(v)
		}
	}
	return nil
}

func (a ActionItem) MarshalJSON() ([]byte, error) {
	if a.Fields != nil {
		return json.Marshal(a.Fields)
	}
	return json.Marshal(a.Text)
}

// Task returns the display text of the item: the "task" field when present,
// otherwise the bare string, otherwise any field value.
func (a ActionItem) Task() string {
	if t, ok := a.Fields["task"]; ok {
		return t
	}
	if a.Text != "" {
		return a.Text
	}
	for _, v := range a.Fields {
		return v
	}
	return ""
}

// StringValues returns every string carried by the item, for free-text
// scans. Order is deterministic: the "task" field first, then the
// remaining fields by key.
func (a ActionItem) StringValues() []string {
	if a.Fields == nil {
		if a.Text == "" {
			return nil
		}
		return []string{a.Text}
	}
	out := make([]string, 0, len(a.Fields))
	if t, ok := a.Fields["task"]; ok {
		out = append(out, t)
	}
	keys := make([]string, 0, len(a.Fields))
	for k := range a.Fields {
		if k != "task" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, a.Fields[k])
	}
	return out
}

// State is the record threaded through the pipeline for one audio file.
// It is append-only: each stage copies its input and fills in only the
// fields it owns.
type State struct {
	AudioPath       string            `json:"audio_path"`
	Transcription   string            `json:"transcription,omitempty"`
	SentimentChunks []SentimentChunk  `json:"sentiment_chunks,omitempty"`
	AudioDuration   int               `json:"audio_duration,omitempty"`
	CallSummary     string            `json:"call_summary,omitempty"`
	Sentiment       string            `json:"sentiment,omitempty"`
	SentimentScore  int               `json:"sentiment_score,omitempty"`
	CallPurpose     string            `json:"call_purpose,omitempty"`
	SpeakerInsights map[string]string `json:"speaker_insights,omitempty"`
	ActionItems     []ActionItem      `json:"action_items,omitempty"`
	AgentRating     int               `json:"Agent_rating,omitempty"`
	CustomerName    string            `json:"Customer_name,omitempty"`
	AgentName       string            `json:"Agent_name,omitempty"`
	CallOuts        []CallOut         `json:"call_outs,omitempty"`
}

// AnomalyResult is the outcome of one anomaly classification call.
// AnomalyCount is always derived from len(Reasons), never taken from the
// model's own arithmetic.
type AnomalyResult struct {
	IsAnomaly    bool     `json:"isAnomaly"`
	AnomalyCount int      `json:"anomalyCount"`
	Reasons      []string `json:"reasons"`
}
