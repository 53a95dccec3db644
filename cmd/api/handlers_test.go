package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidscribe/vidscribe/internal/middleware"
	"github.com/vidscribe/vidscribe/internal/pipeline"
	"github.com/vidscribe/vidscribe/pkg/models"
)

type stubPipeline struct {
	createFn    func(in pipeline.CreateTaskInput) (*pipeline.CreateTaskResult, error)
	translateFn func(taskID, targetLanguage string) (*pipeline.TranslateResult, error)
	statusFn    func(taskID string) (*models.TaskDetail, error)
}

func (s *stubPipeline) CreateTask(ctx context.Context, in pipeline.CreateTaskInput) (*pipeline.CreateTaskResult, error) {
	return s.createFn(in)
}

func (s *stubPipeline) Translate(ctx context.Context, taskID, targetLanguage string) (*pipeline.TranslateResult, error) {
	return s.translateFn(taskID, targetLanguage)
}

func (s *stubPipeline) GetStatus(ctx context.Context, taskID string) (*models.TaskDetail, error) {
	return s.statusFn(taskID)
}

type stubPublisher struct {
	published []string
	err       error
}

func (s *stubPublisher) PublishResume(ctx context.Context, taskID string) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, taskID)
	return nil
}

func newTestRouter(api *API) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/v1/tasks/extract", api.extractTask)
	router.GET("/api/v1/tasks/:id", api.getTaskStatus)
	router.POST("/api/v1/tasks/translate", api.translateTask)
	router.POST("/api/v1/payments/webhook", api.paymentWebhook)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestExtractTask(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		api := &API{pipeline: &stubPipeline{
			createFn: func(in pipeline.CreateTaskInput) (*pipeline.CreateTaskResult, error) {
				assert.Equal(t, "https://youtu.be/abc", in.URL)
				assert.Equal(t, models.PlatformYouTube, in.Platform)
				return &pipeline.CreateTaskResult{ID: "task-1", Status: models.TaskStatusCompleted}, nil
			},
		}}
		router := newTestRouter(api)

		w := postJSON(t, router, "/api/v1/tasks/extract", gin.H{
			"url":      "https://youtu.be/abc",
			"platform": "youtube",
		})

		assert.Equal(t, http.StatusCreated, w.Code)

		var result pipeline.CreateTaskResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, "task-1", result.ID)
		assert.Equal(t, models.TaskStatusCompleted, result.Status)
	})

	t.Run("missing platform is rejected", func(t *testing.T) {
		api := &API{pipeline: &stubPipeline{}}
		router := newTestRouter(api)

		w := postJSON(t, router, "/api/v1/tasks/extract", gin.H{"url": "https://youtu.be/abc"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation error maps to 400", func(t *testing.T) {
		api := &API{pipeline: &stubPipeline{
			createFn: func(in pipeline.CreateTaskInput) (*pipeline.CreateTaskResult, error) {
				return nil, pipeline.ErrInvalidPlatform
			},
		}}
		router := newTestRouter(api)

		w := postJSON(t, router, "/api/v1/tasks/extract", gin.H{
			"url":      "https://vimeo.com/1",
			"platform": "vimeo",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("extraction failure maps to 500", func(t *testing.T) {
		api := &API{pipeline: &stubPipeline{
			createFn: func(in pipeline.CreateTaskInput) (*pipeline.CreateTaskResult, error) {
				return nil, assert.AnError
			},
		}}
		router := newTestRouter(api)

		w := postJSON(t, router, "/api/v1/tasks/extract", gin.H{
			"url":      "https://youtu.be/abc",
			"platform": "youtube",
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestGetTaskStatus(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		api := &API{pipeline: &stubPipeline{
			statusFn: func(taskID string) (*models.TaskDetail, error) {
				return &models.TaskDetail{
					Task:         &models.Task{ID: taskID, Status: models.TaskStatusCompleted},
					Translations: []*models.Translation{},
				}, nil
			},
		}}
		router := newTestRouter(api)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/tasks/task-1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var detail models.TaskDetail
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
		assert.Equal(t, "task-1", detail.Task.ID)
	})

	t.Run("not found", func(t *testing.T) {
		api := &API{pipeline: &stubPipeline{
			statusFn: func(taskID string) (*models.TaskDetail, error) {
				return nil, pipeline.ErrTaskNotFound
			},
		}}
		router := newTestRouter(api)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/tasks/missing", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTranslateTask(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		api := &API{pipeline: &stubPipeline{
			translateFn: func(taskID, targetLanguage string) (*pipeline.TranslateResult, error) {
				assert.Equal(t, "task-1", taskID)
				assert.Equal(t, "es", targetLanguage)
				return &pipeline.TranslateResult{
					ID:            "tr-1",
					TranslatedURL: "http://store.local/subtitles/task-1-es.srt",
				}, nil
			},
		}}
		router := newTestRouter(api)

		w := postJSON(t, router, "/api/v1/tasks/translate", gin.H{
			"task_id":         "task-1",
			"target_language": "es",
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		api := &API{pipeline: &stubPipeline{}}
		router := newTestRouter(api)

		w := postJSON(t, router, "/api/v1/tasks/translate", gin.H{"task_id": "task-1"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown task maps to 404", func(t *testing.T) {
		api := &API{pipeline: &stubPipeline{
			translateFn: func(taskID, targetLanguage string) (*pipeline.TranslateResult, error) {
				return nil, pipeline.ErrTaskNotFound
			},
		}}
		router := newTestRouter(api)

		w := postJSON(t, router, "/api/v1/tasks/translate", gin.H{
			"task_id":         "missing",
			"target_language": "es",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("task without subtitle maps to 400", func(t *testing.T) {
		api := &API{pipeline: &stubPipeline{
			translateFn: func(taskID, targetLanguage string) (*pipeline.TranslateResult, error) {
				return nil, pipeline.ErrNoSubtitle
			},
		}}
		router := newTestRouter(api)

		w := postJSON(t, router, "/api/v1/tasks/translate", gin.H{
			"task_id":         "task-1",
			"target_language": "es",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListTasksRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	middleware.SetJWTSecret("test-secret")

	api := &API{pipeline: &stubPipeline{}}
	router := gin.New()
	router.GET("/api/v1/tasks", middleware.JWTAuth(), api.listTasks)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/tasks", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPaymentWebhook(t *testing.T) {
	t.Run("queues resume and accepts", func(t *testing.T) {
		publisher := &stubPublisher{}
		api := &API{pipeline: &stubPipeline{}, queue: publisher}
		router := newTestRouter(api)

		w := postJSON(t, router, "/api/v1/payments/webhook", gin.H{"task_id": "task-1"})

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, []string{"task-1"}, publisher.published)
	})

	t.Run("missing task id is rejected", func(t *testing.T) {
		api := &API{pipeline: &stubPipeline{}, queue: &stubPublisher{}}
		router := newTestRouter(api)

		w := postJSON(t, router, "/api/v1/payments/webhook", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("publish failure maps to 500", func(t *testing.T) {
		api := &API{pipeline: &stubPipeline{}, queue: &stubPublisher{err: assert.AnError}}
		router := newTestRouter(api)

		w := postJSON(t, router, "/api/v1/payments/webhook", gin.H{"task_id": "task-1"})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
