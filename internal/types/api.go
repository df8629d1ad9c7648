package types

// ProcessRequest asks for one or more catalogued audio files to be run
// through the pipeline with the chosen model backend.
type ProcessRequest struct {
	Filenames   []string `json:"filenames"`
	ModelOption string   `json:"model_option"`
}

// FileProcessResponse is the per-file projection of a finished State plus
// the artifacts derived from it.
type FileProcessResponse struct {
	CallSummary      string            `json:"call_summary"`
	Sentiment        string            `json:"sentiment"`
	SentimentScore   int               `json:"sentiment_score"`
	CallPurpose      string            `json:"call_purpose"`
	SpeakerInsights  map[string]string `json:"speaker_insights"`
	EmailSent        []string          `json:"email_sent"`
	ActionItems      []ActionItem      `json:"action_items,omitempty"`
	AgentRating      int               `json:"Agent_rating"`
	CustomerName     string            `json:"Customer_name"`
	AgentName        string            `json:"Agent_name"`
	SentimentChunks  []SentimentChunk  `json:"sentiment_chunks,omitempty"`
	CallOuts         []CallOut         `json:"call_outs"`
	AnomalyDetection AnomalyResult     `json:"anomaly_detection"`
	IncNumber        string            `json:"inc_number,omitempty"`
}

// BatchProcessResponse maps each requested filename to its result.
type BatchProcessResponse struct {
	Results map[string]FileProcessResponse `json:"results"`
}
