package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/bandwise/bandwise-go-api/internal/dto"
	"github.com/bandwise/bandwise-go-api/internal/models"
	"github.com/bandwise/bandwise-go-api/internal/repository"
	"github.com/bandwise/bandwise-go-api/pkg/ai"
)

// ErrUserIDRequired indicates a history lookup without a user id.
var ErrUserIDRequired = errors.New("user id is required")

// ErrModelNotTrained is returned by predictive models that have not been
// fitted to any data yet.
var ErrModelNotTrained = errors.New("predictive model is not trained")

// PredictiveModel estimates a learner's next band from their score history.
// No trained model ships with the service; implementations that have not
// been fitted must return ErrModelNotTrained so callers can omit the
// prediction rather than show a fabricated one.
type PredictiveModel interface {
	PredictBand(ctx context.Context, records []models.ScoreRecord) (float64, error)
}

// StubPredictiveModel is the placeholder implementation. It makes the gap
// between "interface exists" and "model is real" explicit.
type StubPredictiveModel struct{}

// PredictBand always reports that no model has been trained.
func (StubPredictiveModel) PredictBand(context.Context, []models.ScoreRecord) (float64, error) {
	return 0, ErrModelNotTrained
}

// ScoreHistoryService persists scoring outcomes and serves a user's history.
type ScoreHistoryService interface {
	Record(ctx context.Context, payload dto.ScoringRequest, response dto.ScoringResponse, wordCount int)
	History(ctx context.Context, userID string, limit, offset int) (dto.ScoreHistoryResponse, error)
}

type scoreHistoryService struct {
	records repository.ScoreRecordRepository
	model   PredictiveModel
	logger  zerolog.Logger
}

// NewScoreHistoryService builds the history service.
func NewScoreHistoryService(records repository.ScoreRecordRepository, model PredictiveModel, logger zerolog.Logger) ScoreHistoryService {
	if model == nil {
		model = StubPredictiveModel{}
	}
	return &scoreHistoryService{
		records: records,
		model:   model,
		logger:  logger.With().Str("component", "score_history_service").Logger(),
	}
}

// Record persists one fresh scoring outcome. History is advisory: failures
// are logged, never surfaced to the scoring caller.
func (s *scoreHistoryService) Record(ctx context.Context, payload dto.ScoringRequest, response dto.ScoringResponse, wordCount int) {
	if strings.TrimSpace(payload.UserID) == "" {
		return
	}

	criteria, err := json.Marshal(response.CriteriaScores)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to serialize criteria for history")
		return
	}

	record := models.ScoreRecord{
		UserID:           payload.UserID,
		SessionID:        payload.SessionID,
		TaskType:         response.TaskType,
		Language:         response.Language,
		Provider:         response.Provider,
		Model:            response.Model,
		OverallBandScore: response.OverallBandScore,
		Confidence:       response.Confidence,
		CriteriaScores:   datatypes.JSON(criteria),
		WordCount:        wordCount,
	}

	if err := s.records.Create(ctx, &record); err != nil {
		s.logger.Error().Err(err).Str("user_id", payload.UserID).Msg("failed to persist score record")
	}
}

// History lists a user's persisted scores, newest first, with a predicted
// band when a trained model is wired in.
func (s *scoreHistoryService) History(ctx context.Context, userID string, limit, offset int) (dto.ScoreHistoryResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return dto.ScoreHistoryResponse{}, ErrUserIDRequired
	}

	records, err := s.records.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return dto.ScoreHistoryResponse{}, err
	}

	total, err := s.records.CountByUser(ctx, userID)
	if err != nil {
		return dto.ScoreHistoryResponse{}, err
	}

	response := dto.ScoreHistoryResponse{
		Records:    make([]dto.ScoreRecordResponse, 0, len(records)),
		TotalCount: total,
	}
	for _, record := range records {
		response.Records = append(response.Records, newScoreRecordResponse(record))
	}

	if predicted, err := s.model.PredictBand(ctx, records); err == nil {
		response.PredictedBand = &predicted
	} else if !errors.Is(err, ErrModelNotTrained) {
		s.logger.Warn().Err(err).Msg("band prediction failed")
	}

	return response, nil
}

func newScoreRecordResponse(record models.ScoreRecord) dto.ScoreRecordResponse {
	var criteria []ai.CriterionScore
	if len(record.CriteriaScores) > 0 {
		_ = json.Unmarshal(record.CriteriaScores, &criteria)
	}

	return dto.ScoreRecordResponse{
		ID:               record.ID,
		UserID:           record.UserID,
		SessionID:        record.SessionID,
		TaskType:         record.TaskType,
		Language:         record.Language,
		Provider:         record.Provider,
		Model:            record.Model,
		OverallBandScore: record.OverallBandScore,
		Confidence:       record.Confidence,
		CriteriaScores:   criteria,
		WordCount:        record.WordCount,
		CreatedAt:        record.CreatedAt,
	}
}
