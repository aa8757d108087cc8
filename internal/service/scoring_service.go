package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bandwise/bandwise-go-api/internal/dto"
	"github.com/bandwise/bandwise-go-api/internal/observability"
	"github.com/bandwise/bandwise-go-api/pkg/ai"
	"github.com/bandwise/bandwise-go-api/pkg/textstat"
)

// ErrEmptySubmission indicates the submission contained no scoreable text
// once markup was stripped.
var ErrEmptySubmission = errors.New("submission text is empty")

// ScoringService orchestrates feature extraction, caching, provider
// selection, and batch fan-out for scoring requests.
type ScoringService interface {
	Score(ctx context.Context, payload dto.ScoringRequest) (dto.ScoringResponse, error)
	ScoreBatch(ctx context.Context, payload dto.BatchScoringRequest) (dto.BatchScoringResponse, error)
	Providers() dto.ProvidersResponse
	Stats() dto.ScoringStatsResponse
}

type scoringStats struct {
	total      int64
	successful int64
	failed     int64
	cacheHits  int64
	cumulative time.Duration
}

type scoringService struct {
	registry      *ai.Registry
	extractor     *textstat.Extractor
	cache         *ResultCache
	history       ScoreHistoryService
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
	tracer        trace.Tracer
	maxConcurrent int

	mu    sync.Mutex
	stats scoringStats
}

// NewScoringService constructs the orchestrator. The history service may be
// nil when no database is configured.
func NewScoringService(registry *ai.Registry, cache *ResultCache, history ScoreHistoryService, validate *validator.Validate, logger zerolog.Logger, defaultMaxConcurrent int) ScoringService {
	if defaultMaxConcurrent <= 0 {
		defaultMaxConcurrent = 3
	}

	return &scoringService{
		registry:      registry,
		extractor:     textstat.NewExtractor(),
		cache:         cache,
		history:       history,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "scoring_service").Logger(),
		tracer:        otel.Tracer("github.com/bandwise/bandwise-go-api/internal/service/scoring"),
		maxConcurrent: defaultMaxConcurrent,
	}
}

// Score runs one submission through the pipeline: cache check and feature
// extraction run side by side, then a provider call on cache miss, then a
// write-through. Feature analysis is attached regardless of where the scoring
// result came from.
func (s *scoringService) Score(ctx context.Context, payload dto.ScoringRequest) (dto.ScoringResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScoringResponse{}, err
	}

	payload.Normalize()
	text := strings.TrimSpace(s.sanitizer.Sanitize(payload.Text))
	if text == "" {
		return dto.ScoringResponse{}, ErrEmptySubmission
	}

	taskType := ai.TaskType(payload.TaskType)
	attrs := []attribute.KeyValue{
		attribute.String("scoring.task_type", payload.TaskType),
		attribute.String("scoring.language", payload.Language),
	}
	spanCtx, span := s.tracer.Start(ctx, "scoring.score", trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	s.countRequest()

	// Feature extraction has no ordering dependency on the cache check, so
	// both run concurrently; extraction must finish before assembly.
	var analysis *textstat.Analysis
	featuresReady := make(chan struct{})
	if payload.FeatureAnalysisEnabled() {
		go func() {
			defer close(featuresReady)
			result := s.extractor.Extract(text, payload.TaskType)
			analysis = &result
		}()
	} else {
		close(featuresReady)
	}

	fingerprint := Fingerprint(text, payload.TaskType, payload.Language, payload.Prompt)
	cached, hit := s.cache.Get(spanCtx, fingerprint)
	<-featuresReady

	if hit {
		observability.CacheLookups().WithLabelValues("hit").Inc()
		response := *cached
		response.Cached = true
		response.ProcessingTime = time.Since(start).Seconds()
		s.applyPresentation(&response, payload, analysis)
		s.countOutcome(true, false, time.Since(start))
		s.logger.Debug().Str("fingerprint", fingerprint).Msg("scoring cache hit")
		return response, nil
	}
	observability.CacheLookups().WithLabelValues("miss").Inc()

	scorer, err := s.registry.Select(payload.Provider)
	if err != nil {
		s.countOutcome(false, false, time.Since(start))
		span.RecordError(err)
		return dto.ScoringResponse{}, err
	}

	result, err := scorer.Score(spanCtx, ai.ScoringInput{
		TaskType: taskType,
		Text:     text,
		Prompt:   payload.Prompt,
		Language: payload.Language,
	})
	if err != nil {
		s.countOutcome(false, false, time.Since(start))
		observability.ScoringRequests().WithLabelValues(payload.TaskType, scorer.Name(), "error").Inc()
		span.RecordError(err)
		return dto.ScoringResponse{}, err
	}

	response := dto.ScoringResponse{
		OverallBandScore: result.OverallBand,
		Confidence:       result.Confidence,
		CriteriaScores:   result.Criteria,
		DetailedFeedback: result.Feedback,
		ProcessingTime:   time.Since(start).Seconds(),
		Provider:         scorer.Name(),
		Model:            result.Model,
		TaskType:         payload.TaskType,
		Language:         payload.Language,
		CreatedAt:        time.Now().UTC(),
	}

	s.cache.Set(spanCtx, fingerprint, response)

	if s.history != nil {
		s.history.Record(spanCtx, payload, response, len(textstat.Tokenize(text)))
	}

	s.applyPresentation(&response, payload, analysis)
	elapsed := time.Since(start)
	s.countOutcome(true, true, elapsed)
	observability.ScoringRequests().WithLabelValues(payload.TaskType, scorer.Name(), "ok").Inc()
	observability.ScoringLatency().WithLabelValues(payload.TaskType).Observe(elapsed.Seconds())

	return response, nil
}

// applyPresentation enforces the request's presentation toggles on a
// response, wherever it came from.
func (s *scoringService) applyPresentation(response *dto.ScoringResponse, payload dto.ScoringRequest, analysis *textstat.Analysis) {
	if payload.FeatureAnalysisEnabled() {
		response.FeatureAnalysis = analysis
	} else {
		response.FeatureAnalysis = nil
	}
	if !payload.DetailedFeedbackEnabled() {
		response.DetailedFeedback = ""
	}
}

// ScoreBatch fans the submissions out with bounded concurrency. Items fail
// independently; output order always matches input order.
func (s *scoringService) ScoreBatch(ctx context.Context, payload dto.BatchScoringRequest) (dto.BatchScoringResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.BatchScoringResponse{}, err
	}

	maxConcurrent := payload.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = s.maxConcurrent
	}
	if maxConcurrent > 10 {
		maxConcurrent = 10
	}

	start := time.Now()
	results := make([]*dto.ScoringResponse, len(payload.Submissions))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		itemErrs  []dto.BatchItemError
		succeeded int
	)
	semaphore := make(chan struct{}, maxConcurrent)

	for i := range payload.Submissions {
		wg.Add(1)
		go func(index int, submission dto.ScoringRequest) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			response, err := s.Score(ctx, submission)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				itemErr := dto.BatchItemError{Index: index, Error: err.Error()}
				var providerErr *ai.ProviderError
				if errors.As(err, &providerErr) {
					itemErr.Provider = providerErr.Provider
				}
				itemErrs = append(itemErrs, itemErr)
				return
			}
			results[index] = &response
			succeeded++
		}(i, payload.Submissions[i])
	}
	wg.Wait()

	sort.Slice(itemErrs, func(a, b int) bool { return itemErrs[a].Index < itemErrs[b].Index })
	if itemErrs == nil {
		itemErrs = []dto.BatchItemError{}
	}

	return dto.BatchScoringResponse{
		Results:             results,
		TotalProcessingTime: time.Since(start).Seconds(),
		SuccessfulCount:     succeeded,
		FailedCount:         len(payload.Submissions) - succeeded,
		Errors:              itemErrs,
	}, nil
}

// Providers reports which scorers are live.
func (s *scoringService) Providers() dto.ProvidersResponse {
	return dto.ProvidersResponse{
		AvailableProviders: s.registry.Available(),
		ClientsInfo:        s.registry.Info(),
	}
}

// Stats snapshots the process-local counters. They reset on restart.
func (s *scoringService) Stats() dto.ScoringStatsResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	finished := s.stats.successful + s.stats.failed
	avg := 0.0
	if finished > 0 {
		avg = s.stats.cumulative.Seconds() / float64(finished)
	}

	return dto.ScoringStatsResponse{
		TotalRequests:      s.stats.total,
		SuccessfulRequests: s.stats.successful,
		FailedRequests:     s.stats.failed,
		CacheHits:          s.stats.cacheHits,
		AvgProcessingTime:  avg,
	}
}

func (s *scoringService) countRequest() {
	s.mu.Lock()
	s.stats.total++
	s.mu.Unlock()
}

func (s *scoringService) countOutcome(success, fresh bool, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if success {
		s.stats.successful++
		if !fresh {
			s.stats.cacheHits++
		}
	} else {
		s.stats.failed++
	}
	s.stats.cumulative += elapsed
}
