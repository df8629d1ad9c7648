// Package correct cleans up raw ASR output without changing its meaning.
package correct

import (
	"context"
	"fmt"

	"call-insights-go/internal/llm"
)

const editorPrompt = `
You are a careful, minimal copy editor for live transcripts.
- Fix grammar, punctuation, casing, and obvious ASR errors.
- Do NOT change meaning or add/remove facts.
- Preserve line breaks and speaker turns.
- Also remove common disfluencies (um/umm/uh/er/erm/eh/hmm/mmm/mm/ah, "uh-huh"/"mm-hmm",
and the phrases "I mean" and "you know" when they appear as fillers).
Return ONLY the corrected text.
`

type Corrector struct {
	model llm.Backend
}

func NewCorrector(model llm.Backend) *Corrector {
	return &Corrector{model: model}
}

// Correct returns the edited transcript. Unlike the pipeline stages this
// propagates failures: the caller decides whether a missing correction
// matters.
func (c *Corrector) Correct(ctx context.Context, text string) (string, error) {
	out, err := c.model.Complete(ctx, editorPrompt, text)
	if err != nil {
		return "", fmt.Errorf("auto-correct: %w", err)
	}
	return out, nil
}
