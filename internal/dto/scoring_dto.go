package dto

import (
	"strings"
	"time"

	"github.com/bandwise/bandwise-go-api/pkg/ai"
	"github.com/bandwise/bandwise-go-api/pkg/textstat"
)

// ScoringRequest is the payload for single, batch, and async scoring calls.
// Toggle fields are pointers so an omitted flag defaults to enabled.
type ScoringRequest struct {
	TaskType               string `json:"task_type" validate:"required,oneof=writing_task_1 writing_task_2 speaking_part_1 speaking_part_2 speaking_part_3"`
	Text                   string `json:"text" validate:"required"`
	Prompt                 string `json:"prompt"`
	Language               string `json:"language"`
	UserID                 string `json:"user_id"`
	SessionID              string `json:"session_id"`
	Provider               string `json:"provider" validate:"omitempty,oneof=openai anthropic mock"`
	EnableDetailedFeedback *bool  `json:"enable_detailed_feedback"`
	EnableFeatureAnalysis  *bool  `json:"enable_feature_analysis"`
}

// Normalize fills defaults and trims the submission.
func (r *ScoringRequest) Normalize() {
	r.Text = strings.TrimSpace(r.Text)
	r.Prompt = strings.TrimSpace(r.Prompt)
	if strings.TrimSpace(r.Language) == "" {
		r.Language = "en"
	}
}

// DetailedFeedbackEnabled defaults to true when the flag is omitted.
func (r *ScoringRequest) DetailedFeedbackEnabled() bool {
	return r.EnableDetailedFeedback == nil || *r.EnableDetailedFeedback
}

// FeatureAnalysisEnabled defaults to true when the flag is omitted.
func (r *ScoringRequest) FeatureAnalysisEnabled() bool {
	return r.EnableFeatureAnalysis == nil || *r.EnableFeatureAnalysis
}

// ScoringResponse is the aggregate returned to callers and stored (without
// feature analysis) in the result cache.
type ScoringResponse struct {
	OverallBandScore float64             `json:"overall_band_score"`
	Confidence       float64             `json:"confidence"`
	CriteriaScores   []ai.CriterionScore `json:"criteria_scores"`
	DetailedFeedback string              `json:"detailed_feedback,omitempty"`
	FeatureAnalysis  *textstat.Analysis  `json:"feature_analysis,omitempty"`
	ProcessingTime   float64             `json:"processing_time"`
	Provider         string              `json:"provider"`
	Model            string              `json:"model,omitempty"`
	TaskType         string              `json:"task_type"`
	Language         string              `json:"language"`
	Cached           bool                `json:"cached"`
	CreatedAt        time.Time           `json:"created_at"`
}

// BatchScoringRequest fans a list of submissions out with bounded concurrency.
type BatchScoringRequest struct {
	Submissions   []ScoringRequest `json:"submissions" validate:"required,min=1,max=50,dive"`
	MaxConcurrent int              `json:"max_concurrent" validate:"omitempty,min=1,max=10"`
}

// BatchItemError records a per-item failure without aborting the batch.
type BatchItemError struct {
	Index    int    `json:"index"`
	Provider string `json:"provider,omitempty"`
	Error    string `json:"error"`
}

// BatchScoringResponse preserves submission order: Results[i] corresponds to
// Submissions[i], with nil marking a failed item described in Errors.
type BatchScoringResponse struct {
	Results             []*ScoringResponse `json:"results"`
	TotalProcessingTime float64            `json:"total_processing_time"`
	SuccessfulCount     int                `json:"successful_count"`
	FailedCount         int                `json:"failed_count"`
	Errors              []BatchItemError   `json:"errors"`
}

// Async job statuses.
const (
	JobStatusQueued     = "queued"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
	JobStatusCancelled  = "cancelled"
)

// AsyncJobResponse is the job record returned on enqueue and poll. Result and
// Error are populated only in terminal states; a cancelled job never exposes
// a result even if the worker finished the call.
type AsyncJobResponse struct {
	JobID      string           `json:"job_id"`
	Status     string           `json:"status"`
	Result     *ScoringResponse `json:"result,omitempty"`
	Error      string           `json:"error,omitempty"`
	EnqueuedAt time.Time        `json:"enqueued_at"`
	StartedAt  *time.Time       `json:"started_at,omitempty"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
}

// ProvidersResponse is the introspection payload for GET /providers.
type ProvidersResponse struct {
	AvailableProviders []string                   `json:"available_providers"`
	ClientsInfo        map[string]ai.ProviderInfo `json:"clients_info"`
}

// ScoringStatsResponse exposes the orchestrator's process-local counters.
type ScoringStatsResponse struct {
	TotalRequests      int64   `json:"total_requests"`
	SuccessfulRequests int64   `json:"successful_requests"`
	FailedRequests     int64   `json:"failed_requests"`
	CacheHits          int64   `json:"cache_hits"`
	AvgProcessingTime  float64 `json:"avg_processing_time"`
}

// ScoreRecordResponse serializes one persisted scoring history row.
type ScoreRecordResponse struct {
	ID               uint                `json:"id"`
	UserID           string              `json:"user_id"`
	SessionID        string              `json:"session_id,omitempty"`
	TaskType         string              `json:"task_type"`
	Language         string              `json:"language"`
	Provider         string              `json:"provider"`
	Model            string              `json:"model,omitempty"`
	OverallBandScore float64             `json:"overall_band_score"`
	Confidence       float64             `json:"confidence"`
	CriteriaScores   []ai.CriterionScore `json:"criteria_scores"`
	WordCount        int                 `json:"word_count"`
	CreatedAt        time.Time           `json:"created_at"`
}

// ScoreHistoryResponse lists a page of a user's records with the user's
// total record count and an optional prediction.
type ScoreHistoryResponse struct {
	Records       []ScoreRecordResponse `json:"records"`
	TotalCount    int64                 `json:"total_count"`
	PredictedBand *float64              `json:"predicted_band,omitempty"`
}
