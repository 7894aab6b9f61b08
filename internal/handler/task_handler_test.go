package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-grader-api/internal/dto"
	"github.com/noah-isme/gema-grader-api/internal/handler"
	"github.com/noah-isme/gema-grader-api/internal/service"
)

type mockTaskService struct {
	lastCreate dto.TaskCreateRequest
	response   dto.TaskResponse
	err        error
}

func (m *mockTaskService) Create(_ context.Context, payload dto.TaskCreateRequest) (dto.TaskResponse, error) {
	m.lastCreate = payload
	if m.err != nil {
		return dto.TaskResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockTaskService) Get(_ context.Context, externalRef string) (dto.TaskResponse, error) {
	if m.err != nil {
		return dto.TaskResponse{}, m.err
	}
	if externalRef != m.response.ExternalRef {
		return dto.TaskResponse{}, service.ErrTaskNotFound
	}
	return m.response, nil
}

func taskApp(svc service.TaskService) *fiber.App {
	app := fiber.New()
	handler.NewTaskHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1/tasks"))
	return app
}

func TestTaskHandler_Create(t *testing.T) {
	svc := &mockTaskService{response: dto.TaskResponse{ID: 1, ExternalRef: "bio-q1"}}
	app := taskApp(svc)

	body, err := json.Marshal(dto.TaskCreateRequest{
		ExternalRef:      "bio-q1",
		Type:             "FREE_TEXT",
		ReferenceContent: "reference",
		TemplateContent:  "template",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "bio-q1", svc.lastCreate.ExternalRef)
}

func TestTaskHandler_CreateValidationError(t *testing.T) {
	svc := &mockTaskService{err: validator.New().Struct(dto.TaskCreateRequest{})}
	app := taskApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestTaskHandler_GetNotFound(t *testing.T) {
	svc := &mockTaskService{response: dto.TaskResponse{ExternalRef: "bio-q1"}}
	app := taskApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/tasks/unknown", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
