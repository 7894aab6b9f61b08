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

	"github.com/noah-isme/gema-grader-api/internal/dto"
	"github.com/noah-isme/gema-grader-api/internal/handler"
	"github.com/noah-isme/gema-grader-api/internal/service"
)

type mockGradingService struct {
	lastAssignment string
	response       dto.GradingRunResponse
	err            error
}

func (m *mockGradingService) Run(_ context.Context, assignmentRef string) (dto.GradingRunResponse, error) {
	m.lastAssignment = assignmentRef
	if m.err != nil {
		return dto.GradingRunResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockGradingService) Get(_ context.Context, uid string) (dto.GradingRunResponse, error) {
	if m.err != nil {
		return dto.GradingRunResponse{}, m.err
	}
	if uid != m.response.UID {
		return dto.GradingRunResponse{}, service.ErrRunNotFound
	}
	return m.response, nil
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(body, target))
}

func gradingApp(svc service.GradingRunService) *fiber.App {
	app := fiber.New()
	handler.NewGradingHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1/grading"))
	return app
}

func TestGradingHandler_RunSuccess(t *testing.T) {
	svc := &mockGradingService{response: dto.GradingRunResponse{UID: "run-1", Planned: 3, Succeeded: 3}}
	app := gradingApp(svc)

	body, err := json.Marshal(dto.GradingRunRequest{AssignmentRef: "assignment-1"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/grading/runs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "assignment-1", svc.lastAssignment)

	var response struct {
		Success bool                   `json:"success"`
		Data    dto.GradingRunResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, "run-1", response.Data.UID)
	require.Equal(t, 3, response.Data.Succeeded)
}

func TestGradingHandler_RunAbortedReportsReason(t *testing.T) {
	svc := &mockGradingService{response: dto.GradingRunResponse{
		UID:         "run-2",
		Aborted:     true,
		AbortReason: "authorization failure reported by grading backend",
		Succeeded:   2,
		Failed:      1,
	}}
	app := gradingApp(svc)

	body, err := json.Marshal(dto.GradingRunRequest{AssignmentRef: "assignment-1"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/grading/runs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                   `json:"success"`
		Data    dto.GradingRunResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Data.Aborted)
	require.Contains(t, response.Message, "stopped early")
	// Partial results survive the abort.
	require.Equal(t, 2, response.Data.Succeeded)
}

func TestGradingHandler_RunMissingAssignmentRef(t *testing.T) {
	svc := &mockGradingService{}
	app := gradingApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/grading/runs", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Empty(t, svc.lastAssignment)
}

func TestGradingHandler_GetNotFound(t *testing.T) {
	svc := &mockGradingService{response: dto.GradingRunResponse{UID: "run-1"}}
	app := gradingApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/grading/runs/unknown", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGradingHandler_RunServiceFailure(t *testing.T) {
	svc := &mockGradingService{err: errors.New("boom")}
	app := gradingApp(svc)

	body, err := json.Marshal(dto.GradingRunRequest{AssignmentRef: "assignment-1"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/grading/runs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
