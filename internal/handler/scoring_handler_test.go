package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/bandwise/bandwise-go-api/internal/dto"
	"github.com/bandwise/bandwise-go-api/internal/handler"
	"github.com/bandwise/bandwise-go-api/internal/middleware"
	"github.com/bandwise/bandwise-go-api/internal/service"
)

type mockScoringService struct {
	lastPayload dto.ScoringRequest
	response    dto.ScoringResponse
	batch       dto.BatchScoringResponse
	err         error
}

func (m *mockScoringService) Score(_ context.Context, payload dto.ScoringRequest) (dto.ScoringResponse, error) {
	m.lastPayload = payload
	if m.err != nil {
		return dto.ScoringResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockScoringService) ScoreBatch(_ context.Context, _ dto.BatchScoringRequest) (dto.BatchScoringResponse, error) {
	if m.err != nil {
		return dto.BatchScoringResponse{}, m.err
	}
	return m.batch, nil
}

func (m *mockScoringService) Providers() dto.ProvidersResponse {
	return dto.ProvidersResponse{AvailableProviders: []string{"mock"}}
}

func (m *mockScoringService) Stats() dto.ScoringStatsResponse {
	return dto.ScoringStatsResponse{TotalRequests: 3, SuccessfulRequests: 2, FailedRequests: 1}
}

type mockAsyncService struct {
	job dto.AsyncJobResponse
	err error
}

func (m *mockAsyncService) Enqueue(_ context.Context, _ dto.ScoringRequest) (dto.AsyncJobResponse, error) {
	if m.err != nil {
		return dto.AsyncJobResponse{}, m.err
	}
	return m.job, nil
}

func (m *mockAsyncService) Job(_ context.Context, _ string) (dto.AsyncJobResponse, error) {
	if m.err != nil {
		return dto.AsyncJobResponse{}, m.err
	}
	return m.job, nil
}

func (m *mockAsyncService) Cancel(_ context.Context, _ string) (dto.AsyncJobResponse, error) {
	if m.err != nil {
		return dto.AsyncJobResponse{}, m.err
	}
	return m.job, nil
}

func (m *mockAsyncService) Start(context.Context) error { return nil }

func newScoringApp(scoring service.ScoringService, async service.AsyncScoringService) *fiber.App {
	app := fiber.New()
	logger := zerolog.New(io.Discard)
	handler.NewScoringHandler(scoring, async, nil, logger).Register(app.Group("/api/v2/scoring"))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestScoringHandler_ScoreSuccess(t *testing.T) {
	svc := &mockScoringService{response: dto.ScoringResponse{
		OverallBandScore: 7.0,
		Provider:         "mock",
		TaskType:         "writing_task_2",
	}}
	app := newScoringApp(svc, nil)

	resp := postJSON(t, app, "/api/v2/scoring/score", dto.ScoringRequest{
		TaskType: "writing_task_2",
		Text:     "A sufficiently long essay about education.",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                `json:"success"`
		Data    dto.ScoringResponse `json:"data"`
		Message string              `json:"message"`
	}
	decodeResponse(t, resp, &body)

	require.True(t, body.Success)
	require.Equal(t, "submission scored", body.Message)
	require.Equal(t, 7.0, body.Data.OverallBandScore)
	require.Equal(t, "writing_task_2", svc.lastPayload.TaskType)
}

func TestScoringHandler_InvalidBody(t *testing.T) {
	app := newScoringApp(&mockScoringService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v2/scoring/score", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestScoringHandler_EmptySubmission(t *testing.T) {
	app := newScoringApp(&mockScoringService{err: service.ErrEmptySubmission}, nil)

	resp := postJSON(t, app, "/api/v2/scoring/score", dto.ScoringRequest{
		TaskType: "writing_task_2",
		Text:     "<p></p>",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestScoringHandler_BatchSuccess(t *testing.T) {
	score := dto.ScoringResponse{OverallBandScore: 6.0}
	svc := &mockScoringService{batch: dto.BatchScoringResponse{
		Results:         []*dto.ScoringResponse{&score, nil},
		SuccessfulCount: 1,
		FailedCount:     1,
		Errors:          []dto.BatchItemError{{Index: 1, Error: "boom"}},
	}}
	app := newScoringApp(svc, nil)

	resp := postJSON(t, app, "/api/v2/scoring/score/batch", dto.BatchScoringRequest{
		Submissions: []dto.ScoringRequest{{TaskType: "writing_task_2", Text: "one"}, {TaskType: "writing_task_2", Text: "two"}},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data dto.BatchScoringResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Len(t, body.Data.Results, 2)
	require.Nil(t, body.Data.Results[1])
	require.Equal(t, 1, body.Data.Errors[0].Index)
}

func TestScoringHandler_AsyncAccepted(t *testing.T) {
	async := &mockAsyncService{job: dto.AsyncJobResponse{JobID: "job-1", Status: dto.JobStatusQueued}}
	app := newScoringApp(&mockScoringService{}, async)

	resp := postJSON(t, app, "/api/v2/scoring/score/async", dto.ScoringRequest{
		TaskType: "writing_task_2",
		Text:     "queued essay",
	})
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var body struct {
		Data dto.AsyncJobResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "job-1", body.Data.JobID)
	require.Equal(t, dto.JobStatusQueued, body.Data.Status)
}

func TestScoringHandler_AsyncNotConfigured(t *testing.T) {
	app := newScoringApp(&mockScoringService{}, nil)

	resp := postJSON(t, app, "/api/v2/scoring/score/async", dto.ScoringRequest{
		TaskType: "writing_task_2",
		Text:     "queued essay",
	})
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestScoringHandler_AsyncJobNotFound(t *testing.T) {
	app := newScoringApp(&mockScoringService{}, &mockAsyncService{err: service.ErrJobNotFound})

	req := httptest.NewRequest(http.MethodGet, "/api/v2/scoring/score/async/missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestScoringHandler_AsyncRateLimited(t *testing.T) {
	app := newScoringApp(&mockScoringService{}, &mockAsyncService{err: service.ErrRateLimited})

	resp := postJSON(t, app, "/api/v2/scoring/score/async", dto.ScoringRequest{
		TaskType: "writing_task_2",
		Text:     "queued essay",
	})
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestScoringHandler_CancelConflict(t *testing.T) {
	app := newScoringApp(&mockScoringService{}, &mockAsyncService{err: service.ErrJobNotCancellable})

	req := httptest.NewRequest(http.MethodDelete, "/api/v2/scoring/score/async/job-1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestScoringHandler_ProvidersAndStats(t *testing.T) {
	app := newScoringApp(&mockScoringService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v2/scoring/providers", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var providers struct {
		Data dto.ProvidersResponse `json:"data"`
	}
	decodeResponse(t, resp, &providers)
	require.Contains(t, providers.Data.AvailableProviders, "mock")

	req = httptest.NewRequest(http.MethodGet, "/api/v2/scoring/stats", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stats struct {
		Data dto.ScoringStatsResponse `json:"data"`
	}
	decodeResponse(t, resp, &stats)
	require.Equal(t, int64(3), stats.Data.TotalRequests)
}

func TestScoringHandler_InternalErrorWithCorrelation(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.CorrelationID())
	logger := zerolog.New(io.Discard)
	handler.NewScoringHandler(&mockScoringService{err: errors.New("boom")}, nil, nil, logger).Register(app.Group("/api/v2/scoring"))

	body, err := json.Marshal(dto.ScoringRequest{TaskType: "writing_task_2", Text: "essay"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v2/scoring/score", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Correlation-ID", "corr-42")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "corr-42", resp.Header.Get("X-Correlation-ID"))
}

func TestScoringHandler_HistoryNotConfigured(t *testing.T) {
	app := newScoringApp(&mockScoringService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v2/scoring/history?user_id=user-1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
