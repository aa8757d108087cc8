package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bandwise/bandwise-go-api/internal/dto"
	"github.com/bandwise/bandwise-go-api/internal/observability"
	"github.com/bandwise/bandwise-go-api/pkg/ai"
)

const (
	jobKeyPrefix       = "job:"
	asyncRateKeyPrefix = "rate:async:"

	jobSubject    = "bandwise.scoring.jobs"
	jobQueueGroup = "scoring-workers"

	inProcessQueueSize = 256
)

// Async job lifecycle errors.
var (
	ErrJobNotFound       = errors.New("job not found")
	ErrJobNotCancellable = errors.New("job already finished")
	ErrRateLimited       = errors.New("async scoring rate limit exceeded")
	ErrQueueUnavailable  = errors.New("async scoring queue unavailable")
)

// jobRecord is the Redis representation of an async job. It carries the full
// request so any worker in the queue group can execute it.
type jobRecord struct {
	JobID      string               `json:"job_id"`
	Status     string               `json:"status"`
	Request    dto.ScoringRequest   `json:"request"`
	Result     *dto.ScoringResponse `json:"result,omitempty"`
	Error      string               `json:"error,omitempty"`
	EnqueuedAt time.Time            `json:"enqueued_at"`
	StartedAt  *time.Time           `json:"started_at,omitempty"`
	FinishedAt *time.Time           `json:"finished_at,omitempty"`
}

func (r jobRecord) response() dto.AsyncJobResponse {
	response := dto.AsyncJobResponse{
		JobID:      r.JobID,
		Status:     r.Status,
		Result:     r.Result,
		Error:      r.Error,
		EnqueuedAt: r.EnqueuedAt,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
	// A cancelled job never exposes a result, even when the worker raced the
	// cancellation and finished the provider call.
	if r.Status == dto.JobStatusCancelled {
		response.Result = nil
	}
	return response
}

// AsyncScoringService accepts scoring jobs for background execution and
// tracks their lifecycle: queued, in_progress, then completed, failed, or
// cancelled.
type AsyncScoringService interface {
	Enqueue(ctx context.Context, payload dto.ScoringRequest) (dto.AsyncJobResponse, error)
	Job(ctx context.Context, jobID string) (dto.AsyncJobResponse, error)
	Cancel(ctx context.Context, jobID string) (dto.AsyncJobResponse, error)
	Start(ctx context.Context) error
}

type asyncScoringService struct {
	client        *redis.Client
	nats          *nats.Conn
	scorer        ScoringService
	validator     *validator.Validate
	logger        zerolog.Logger
	jobTTL        time.Duration
	ratePerMinute int
	scoreTimeout  time.Duration
	local         chan string
}

// NewAsyncScoringService builds the task gate. The NATS connection may be
// nil; jobs then run on an in-process worker instead of the queue group.
func NewAsyncScoringService(client *redis.Client, natsConn *nats.Conn, scorer ScoringService, validate *validator.Validate, logger zerolog.Logger, jobTTL time.Duration, ratePerMinute int, scoreTimeout time.Duration) AsyncScoringService {
	if jobTTL <= 0 {
		jobTTL = 24 * time.Hour
	}
	if ratePerMinute <= 0 {
		ratePerMinute = 10
	}
	if scoreTimeout <= 0 {
		scoreTimeout = 30 * time.Second
	}

	return &asyncScoringService{
		client:        client,
		nats:          natsConn,
		scorer:        scorer,
		validator:     validate,
		logger:        logger.With().Str("component", "async_scoring_service").Logger(),
		jobTTL:        jobTTL,
		ratePerMinute: ratePerMinute,
		scoreTimeout:  scoreTimeout,
		local:         make(chan string, inProcessQueueSize),
	}
}

// Enqueue validates the submission, applies the per-category rate limit, and
// persists a queued job record before dispatching it to the workers.
func (s *asyncScoringService) Enqueue(ctx context.Context, payload dto.ScoringRequest) (dto.AsyncJobResponse, error) {
	if s.client == nil {
		return dto.AsyncJobResponse{}, ErrQueueUnavailable
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AsyncJobResponse{}, err
	}
	payload.Normalize()

	if err := s.checkRateLimit(ctx, payload); err != nil {
		return dto.AsyncJobResponse{}, err
	}

	record := jobRecord{
		JobID:      uuid.NewString(),
		Status:     dto.JobStatusQueued,
		Request:    payload,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := s.saveJob(ctx, record); err != nil {
		return dto.AsyncJobResponse{}, err
	}

	if err := s.dispatch(record.JobID); err != nil {
		record.Status = dto.JobStatusFailed
		record.Error = ErrQueueUnavailable.Error()
		now := time.Now().UTC()
		record.FinishedAt = &now
		_ = s.saveJob(ctx, record)
		return dto.AsyncJobResponse{}, ErrQueueUnavailable
	}

	observability.AsyncJobs().WithLabelValues(dto.JobStatusQueued).Inc()
	s.logger.Info().
		Str("job_id", record.JobID).
		Str("task_type", payload.TaskType).
		Msg("scoring job enqueued")

	return record.response(), nil
}

// Job returns the current lifecycle record for a job id.
func (s *asyncScoringService) Job(ctx context.Context, jobID string) (dto.AsyncJobResponse, error) {
	record, err := s.loadJob(ctx, jobID)
	if err != nil {
		return dto.AsyncJobResponse{}, err
	}
	return record.response(), nil
}

// Cancel marks a queued or running job cancelled. Finished jobs are
// immutable.
func (s *asyncScoringService) Cancel(ctx context.Context, jobID string) (dto.AsyncJobResponse, error) {
	record, err := s.loadJob(ctx, jobID)
	if err != nil {
		return dto.AsyncJobResponse{}, err
	}

	switch record.Status {
	case dto.JobStatusQueued, dto.JobStatusInProgress:
	default:
		return dto.AsyncJobResponse{}, ErrJobNotCancellable
	}

	now := time.Now().UTC()
	record.Status = dto.JobStatusCancelled
	record.Result = nil
	record.FinishedAt = &now
	if err := s.saveJob(ctx, record); err != nil {
		return dto.AsyncJobResponse{}, err
	}

	observability.AsyncJobs().WithLabelValues(dto.JobStatusCancelled).Inc()
	s.logger.Info().Str("job_id", jobID).Msg("scoring job cancelled")
	return record.response(), nil
}

// Start launches the worker loop and blocks until ctx is done. With a NATS
// connection the service joins a queue group so multiple instances share the
// load; otherwise a single in-process worker drains the local channel.
func (s *asyncScoringService) Start(ctx context.Context) error {
	if s.nats != nil {
		return s.consumeNATS(ctx)
	}
	return s.consumeLocal(ctx)
}

func (s *asyncScoringService) consumeNATS(ctx context.Context) error {
	sub, err := s.nats.QueueSubscribe(jobSubject, jobQueueGroup, func(msg *nats.Msg) {
		s.runJob(context.Background(), strings.TrimSpace(string(msg.Data)))
	})
	if err != nil {
		return fmt.Errorf("unable to subscribe to %s: %w", jobSubject, err)
	}

	s.logger.Info().Str("subject", jobSubject).Str("queue", jobQueueGroup).Msg("async workers subscribed")
	<-ctx.Done()
	return sub.Drain()
}

func (s *asyncScoringService) consumeLocal(ctx context.Context) error {
	s.logger.Info().Msg("async worker running in-process")
	for {
		select {
		case <-ctx.Done():
			return nil
		case jobID := <-s.local:
			s.runJob(context.Background(), jobID)
		}
	}
}

func (s *asyncScoringService) dispatch(jobID string) error {
	if s.nats != nil {
		return s.nats.Publish(jobSubject, []byte(jobID))
	}

	select {
	case s.local <- jobID:
		return nil
	default:
		return ErrQueueUnavailable
	}
}

// runJob executes one job end to end. Status transitions re-read the record
// so a cancellation observed mid-flight wins over the worker's result.
func (s *asyncScoringService) runJob(ctx context.Context, jobID string) {
	record, err := s.loadJob(ctx, jobID)
	if err != nil {
		s.logger.Warn().Err(err).Str("job_id", jobID).Msg("dropping unknown job")
		return
	}
	if record.Status != dto.JobStatusQueued {
		return
	}

	now := time.Now().UTC()
	record.Status = dto.JobStatusInProgress
	record.StartedAt = &now
	if err := s.saveJob(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("job_id", jobID).Msg("failed to mark job in progress")
		return
	}
	observability.AsyncJobs().WithLabelValues(dto.JobStatusInProgress).Inc()

	scoreCtx, cancel := context.WithTimeout(ctx, s.scoreTimeout)
	response, scoreErr := s.scorer.Score(scoreCtx, record.Request)
	cancel()

	current, err := s.loadJob(ctx, jobID)
	if err != nil {
		s.logger.Warn().Err(err).Str("job_id", jobID).Msg("job record expired mid-run")
		return
	}
	if current.Status == dto.JobStatusCancelled {
		return
	}

	finished := time.Now().UTC()
	current.FinishedAt = &finished
	if scoreErr != nil {
		current.Status = dto.JobStatusFailed
		current.Error = scoreErr.Error()
	} else {
		current.Status = dto.JobStatusCompleted
		current.Result = &response
	}

	if err := s.saveJob(ctx, current); err != nil {
		s.logger.Error().Err(err).Str("job_id", jobID).Msg("failed to persist job outcome")
		return
	}

	observability.AsyncJobs().WithLabelValues(current.Status).Inc()
	s.logger.Info().
		Str("job_id", jobID).
		Str("status", current.Status).
		Msg("scoring job finished")
}

// checkRateLimit enforces a fixed one-minute window per task category so a
// burst of writing jobs cannot starve speaking jobs, and vice versa.
func (s *asyncScoringService) checkRateLimit(ctx context.Context, payload dto.ScoringRequest) error {
	category := "speaking"
	if ai.TaskType(payload.TaskType).IsWriting() {
		category = "writing"
	}
	subject := strings.TrimSpace(payload.UserID)
	if subject == "" {
		subject = "anonymous"
	}
	key := asyncRateKeyPrefix + category + ":" + subject

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		s.logger.Warn().Err(err).Msg("rate limit check failed, allowing request")
		return nil
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, time.Minute).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to set rate limit window")
		}
	}
	if count > int64(s.ratePerMinute) {
		return ErrRateLimited
	}
	return nil
}

func (s *asyncScoringService) loadJob(ctx context.Context, jobID string) (jobRecord, error) {
	if s.client == nil {
		return jobRecord{}, ErrQueueUnavailable
	}

	payload, err := s.client.Get(ctx, jobKeyPrefix+jobID).Result()
	if err != nil {
		if err == redis.Nil {
			return jobRecord{}, ErrJobNotFound
		}
		return jobRecord{}, fmt.Errorf("unable to load job %s: %w", jobID, err)
	}

	var record jobRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return jobRecord{}, fmt.Errorf("unable to decode job %s: %w", jobID, err)
	}
	return record, nil
}

func (s *asyncScoringService) saveJob(ctx context.Context, record jobRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("unable to encode job %s: %w", record.JobID, err)
	}
	if err := s.client.Set(ctx, jobKeyPrefix+record.JobID, payload, s.jobTTL).Err(); err != nil {
		return fmt.Errorf("unable to store job %s: %w", record.JobID, err)
	}
	return nil
}
