// Package stats keeps per-call statistics for reporting: durations,
// ratings, sentiment scores and anomaly findings, aggregated per agent.
package stats

import (
	"sync"
	"time"
)

// Record is one processed call. Re-processing the same file replaces the
// earlier record.
type Record struct {
	Filename       string    `json:"filename"`
	Agent          string    `json:"agent,omitempty"`
	Duration       int       `json:"duration"`
	AgentRating    int       `json:"agent_rating"`
	SentimentScore int       `json:"sentiment_score"`
	Anomaly        bool      `json:"anomaly"`
	AnomalyReasons []string  `json:"anomaly_reasons,omitempty"`
	ProcessedAt    time.Time `json:"processed_at"`
}

// AgentSummary aggregates the records handled by one agent.
type AgentSummary struct {
	Agent             string   `json:"agent"`
	CallsHandled      int      `json:"calls_handled"`
	AvgAgentRating    float64  `json:"avg_agent_rating"`
	AvgSentimentScore float64  `json:"avg_sentiment_score"`
	AvgDuration       float64  `json:"avg_duration"`
	AnomalyCount      int      `json:"anomaly_count"`
	AnomalyFiles      []string `json:"anomaly_files,omitempty"`
}

// Store is an in-memory statistics table keyed by filename.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewStore() *Store {
	return &Store{records: make(map[string]Record)}
}

// Upsert records one processed call, replacing any earlier entry for the
// same filename.
func (s *Store) Upsert(r Record) {
	if r.ProcessedAt.IsZero() {
		r.ProcessedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.Filename] = r
}

// AnomalyReasons returns the stored anomaly reasons for one file.
func (s *Store) AnomalyReasons(filename string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[filename]
	if !ok {
		return nil, false
	}
	return r.AnomalyReasons, true
}

// ByAgent aggregates per-agent summaries over the window [from, to].
// Zero times leave that side of the window open.
func (s *Store) ByAgent(from, to time.Time) []AgentSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type acc struct {
		calls, rating, score, duration, anomalies int
		files                                     []string
	}
	byAgent := map[string]*acc{}
	for _, r := range s.records {
		if !from.IsZero() && r.ProcessedAt.Before(from) {
			continue
		}
		if !to.IsZero() && r.ProcessedAt.After(to) {
			continue
		}
		a := byAgent[r.Agent]
		if a == nil {
			a = &acc{}
			byAgent[r.Agent] = a
		}
		a.calls++
		a.rating += r.AgentRating
		a.score += r.SentimentScore
		a.duration += r.Duration
		if r.Anomaly {
			a.anomalies++
			a.files = append(a.files, r.Filename)
		}
	}

	out := make([]AgentSummary, 0, len(byAgent))
	for agent, a := range byAgent {
		n := float64(a.calls)
		out = append(out, AgentSummary{
			Agent:             agent,
			CallsHandled:      a.calls,
			AvgAgentRating:    float64(a.rating) / n,
			AvgSentimentScore: float64(a.score) / n,
			AvgDuration:       float64(a.duration) / n,
			AnomalyCount:      a.anomalies,
			AnomalyFiles:      a.files,
		})
	}
	return out
}
