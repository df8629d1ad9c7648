// Package anomaly flags fraud and PII-exposure patterns in call
// transcripts. The classifier is stateless and independent of the main
// pipeline: it runs over finished transcriptions, raw text, or individual
// utterances from a live session.
package anomaly

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"call-insights-go/internal/extract"
	"call-insights-go/internal/llm"
	"call-insights-go/internal/logger"
	"call-insights-go/internal/types"
)

const rubricPrompt = `
You are a strict JSON classifier. Given a call transcript, decide if it indicates one or more anomalies (possible fraud).
"Anomaly" includes:
  - Requests for or attempts to reveal sensitive personal data (PII): SSN, social security number, credit/debit card numbers, CVV, PIN, passwords, bank account/routing numbers, driver's license, passport, national ID, mother's maiden name, security questions, OTP/2FA codes, etc.
  - Repeated or suspicious attempts to obtain account/benefit/claim details.
  - Contradictory or inconsistent statements about identity, account, or intent.
  - Scripted scam-like patterns (IRS scam, IT support scam, insurance fraud, etc.).
  - Mismatch between caller-provided information and metadata/context (e.g., location).
  - Emotional manipulation, urgency, or pressure tactics to bypass normal flow.

Return ONLY a compact JSON object in this format:
{
  "isAnomaly": <true|false>,
  "anomalyCount": <number>,
  "reasons": ["<reason1>", "<reason2>", ...]
}

Rules:
- "isAnomaly" = true if at least one anomaly is found.
- "anomalyCount" = total number of distinct anomaly reasons.
- "reasons" = list of short, specific reasons such as:
    - "Sensitive info requested"
    - "Repeated attempts to extract account details"
    - "Contradictory statements"
    - "Possible scam pattern"
    - "Emotional pressure tactic"
- Keep reasons short and precise.
- Do NOT include any extra text.
`

type Classifier struct {
	model llm.Backend
	log   *logrus.Entry
}

func NewClassifier(model llm.Backend, log *logger.Logger) *Classifier {
	return &Classifier{
		model: model,
		log:   log.WithField("module", "anomaly"),
	}
}

// Classify runs the rubric over text. It never returns an error: any call
// or parse failure yields the zero result. AnomalyCount is always
// recomputed from the reasons; the model's own count is untrustworthy.
func (c *Classifier) Classify(ctx context.Context, text string) types.AnomalyResult {
	zero := types.AnomalyResult{Reasons: []string{}}

	resp, err := c.model.Complete(ctx, rubricPrompt, "Transcript: "+text+" Return JSON only.")
	if err != nil {
		c.log.WithError(err).Warn("anomaly classification call failed")
		return zero
	}
	parsed, ok := extract.Object(resp)
	if !ok {
		c.log.Warn("anomaly response had no parseable JSON object")
		return zero
	}

	result := types.AnomalyResult{
		IsAnomaly: parsed["isAnomaly"] == true,
		Reasons:   normalizeReasons(parsed["reasons"]),
	}
	result.AnomalyCount = len(result.Reasons)
	return result
}

// normalizeReasons accepts either a list of strings or one bare string,
// which models sometimes emit for a single finding.
func normalizeReasons(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, r := range t {
			if s, ok := r.(string); ok {
				out = append(out, s)
			} else if b, err := json.Marshal(r); err == nil {
				out = append(out, string(b))
			}
		}
		return out
	default:
		return []string{}
	}
}
