package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vidscribe/vidscribe/internal/cache"
	"github.com/vidscribe/vidscribe/internal/database"
	"github.com/vidscribe/vidscribe/internal/middleware"
	"github.com/vidscribe/vidscribe/internal/pipeline"
	"github.com/vidscribe/vidscribe/pkg/models"
)

// TaskPipeline is the slice of the pipeline service the handlers need
type TaskPipeline interface {
	CreateTask(ctx context.Context, in pipeline.CreateTaskInput) (*pipeline.CreateTaskResult, error)
	Translate(ctx context.Context, taskID, targetLanguage string) (*pipeline.TranslateResult, error)
	GetStatus(ctx context.Context, taskID string) (*models.TaskDetail, error)
}

// ResumePublisher hands resume requests to the worker
type ResumePublisher interface {
	PublishResume(ctx context.Context, taskID string) error
}

type API struct {
	pipeline TaskPipeline
	repo     *database.Repository
	queue    ResumePublisher
	cache    *cache.Cache
}

type extractRequest struct {
	URL             string `json:"url"`
	Platform        string `json:"platform" binding:"required"`
	Lang            string `json:"lang"`
	Region          string `json:"region"`
	Keywords        string `json:"keywords"`
	PaymentRequired bool   `json:"payment_required"`
}

// Extract task endpoint. The response carries the final task state: the call
// blocks for the whole extraction unless payment is required first.
func (api *API) extractTask(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middleware.GetUserID(c)

	result, err := api.pipeline.CreateTask(c.Request.Context(), pipeline.CreateTaskInput{
		URL:             req.URL,
		Platform:        req.Platform,
		Lang:            req.Lang,
		Region:          req.Region,
		Keywords:        req.Keywords,
		UserID:          userID,
		PaymentRequired: req.PaymentRequired,
	})
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrURLRequired),
			errors.Is(err, pipeline.ErrPlatformRequired),
			errors.Is(err, pipeline.ErrInvalidPlatform):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Get task status endpoint
func (api *API) getTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	detail, err := api.pipeline.GetStatus(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, pipeline.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, detail)
}

type translateRequest struct {
	TaskID         string `json:"task_id" binding:"required"`
	TargetLanguage string `json:"target_language" binding:"required"`
}

// Translate task endpoint
func (api *API) translateTask(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := api.pipeline.Translate(c.Request.Context(), req.TaskID, req.TargetLanguage)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		case errors.Is(err, pipeline.ErrNoSubtitle):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Task has no subtitle to translate"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

type webhookRequest struct {
	TaskID string `json:"task_id" binding:"required"`
}

// Payment webhook endpoint. Accepts and queues the resume; the worker picks
// it up. Payment providers retry on non-2xx, so this only fails when the
// message cannot be queued at all.
func (api *API) paymentWebhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := api.queue.PublishResume(c.Request.Context(), req.TaskID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue resume"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "task_id": req.TaskID})
}

// List tasks endpoint. Requires authentication; callers see their own tasks.
func (api *API) listTasks(c *gin.Context) {
	limit := 20
	offset := 0

	if v, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && v >= 0 {
		offset = v
	}

	userID, _ := middleware.GetUserID(c)

	tasks, err := api.repo.ListTasks(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":  tasks,
		"limit":  limit,
		"offset": offset,
	})
}

// Health check endpoint
func (api *API) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := api.repo.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	status := gin.H{"status": "healthy"}
	if api.cache != nil {
		if err := api.cache.Ping(ctx); err != nil {
			status["cache"] = "unavailable"
		}
	}

	c.JSON(http.StatusOK, status)
}
