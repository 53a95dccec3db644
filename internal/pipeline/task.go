package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vidscribe/vidscribe/internal/database"
	"github.com/vidscribe/vidscribe/internal/extractor"
	"github.com/vidscribe/vidscribe/internal/metrics"
	"github.com/vidscribe/vidscribe/internal/storage"
	"github.com/vidscribe/vidscribe/internal/tracing"
	"github.com/vidscribe/vidscribe/pkg/models"
)

// CreateTaskInput carries one extraction request
type CreateTaskInput struct {
	URL      string
	Platform string
	Lang     string
	Region   string
	Keywords string
	UserID   string
	// PaymentRequired parks the task in payment_pending; the payment webhook
	// resumes it later via the queue.
	PaymentRequired bool
}

// CreateTaskResult is returned to the caller on success
type CreateTaskResult struct {
	ID         string      `json:"id"`
	Status     string      `json:"status"`
	Transcript string      `json:"transcript,omitempty"`
	VideoURL   string      `json:"video_url,omitempty"`
	Raw        interface{} `json:"raw,omitempty"`
}

// CreateTask validates the request, persists a pending task and runs the
// extraction inline. The call blocks for the full extraction; callers must
// tolerate multi-second to multi-minute latency.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (*CreateTaskResult, error) {
	span, ctx := tracing.StartSpan(ctx, "pipeline.CreateTask")
	defer span.Finish()
	tracing.SetTag(span, "platform", in.Platform)

	if in.Platform == "" {
		return nil, ErrPlatformRequired
	}
	if !models.ValidPlatform(in.Platform) {
		return nil, ErrInvalidPlatform
	}
	if in.URL == "" && in.Platform != models.PlatformTikTokDownload {
		return nil, ErrURLRequired
	}
	if in.URL == "" && in.Keywords == "" {
		return nil, ErrURLRequired
	}

	lang := in.Lang
	if lang == "" {
		lang = defaultLang
	}
	region := in.Region
	if region == "" {
		region = defaultRegion
	}

	sourceURL := in.URL
	if sourceURL == "" {
		// Keyword-based lookup for tiktok-download
		sourceURL = in.Keywords
	}

	serviceType := models.ServiceTypeExtractSubtitle
	if in.Platform == models.PlatformTikTokDownload {
		serviceType = models.ServiceTypeDownloadVideo
	}

	task := &models.Task{
		ID:          uuid.New().String(),
		URL:         sourceURL,
		Platform:    in.Platform,
		Status:      models.TaskStatusPending,
		ServiceType: serviceType,
		UserID:      in.UserID,
	}
	if in.PaymentRequired {
		task.Status = models.TaskStatusPaymentPending
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, err
	}

	metrics.TasksCreatedTotal.WithLabelValues(task.Platform).Inc()
	s.logger.LogTaskEvent(task.ID, task.Platform, task.Status)

	if in.PaymentRequired {
		return &CreateTaskResult{ID: task.ID, Status: models.TaskStatusPaymentPending}, nil
	}

	return s.runExtraction(ctx, task, lang, region)
}

// Resume restarts a task parked in payment_pending, typically from a payment
// webhook. It is idempotent: an unknown id or any other status is a silent
// no-op, so retried webhooks are harmless.
func (s *Service) Resume(ctx context.Context, taskID string) error {
	span, ctx := tracing.StartSpan(ctx, "pipeline.Resume")
	defer span.Finish()
	tracing.SetTag(span, "task_id", taskID)

	task, err := s.repo.GetTask(ctx, taskID)
	if errors.Is(err, database.ErrNotFound) {
		s.logger.WithTaskID(taskID).Warn("Resume requested for unknown task")
		return nil
	}
	if err != nil {
		return err
	}

	if task.Status != models.TaskStatusPaymentPending {
		// Already handled or in progress
		return nil
	}

	_, err = s.runExtraction(ctx, task, defaultLang, defaultRegion)
	return err
}

// runExtraction moves a task through processing and drives extraction,
// artifact storage and result persistence. On any failure the task is marked
// failed with the message captured verbatim and the error is returned.
func (s *Service) runExtraction(ctx context.Context, task *models.Task, lang, region string) (*CreateTaskResult, error) {
	logger := s.logger.WithTaskID(task.ID).WithPlatform(task.Platform)

	if err := s.repo.UpdateTaskStatus(ctx, task.ID, models.TaskStatusProcessing); err != nil {
		return nil, err
	}
	task.Status = models.TaskStatusProcessing
	s.invalidate(ctx, task.ID)

	metrics.TasksInProgress.Inc()
	defer metrics.TasksInProgress.Dec()

	input := task.URL
	if task.Platform == models.PlatformYouTube {
		// Unrecognized URL shapes fall through as-is; the backend reports
		// the failure and the task records it
		if id := parseYouTubeVideoID(task.URL); id != "" {
			input = id
		}
	}

	start := time.Now()
	result := s.extractor.Extract(ctx, input, task.Platform, lang, region)
	metrics.ExtractionDuration.WithLabelValues(task.Platform).Observe(time.Since(start).Seconds())

	if !result.Success {
		s.failTask(ctx, task, result.ErrorMessage)
		return nil, fmt.Errorf("extraction failed: %s", result.ErrorMessage)
	}

	transcript := result.SRTContent
	videoURL := result.VideoContentURL

	if transcript != "" {
		srtURL, err := s.store.SaveText(ctx, storage.SubtitlePath(task.ID, ""), transcript, "text/plain")
		if err != nil {
			s.failTask(ctx, task, err.Error())
			return nil, err
		}
		task.OriginalSrtURL = srtURL
		metrics.ArtifactBytesWritten.WithLabelValues("subtitle").Add(float64(len(transcript)))
	}

	if videoURL != "" {
		storedURL, err := s.fetchAndStoreVideo(ctx, task.ID, videoURL)
		if err != nil {
			s.failTask(ctx, task, err.Error())
			return nil, err
		}
		if storedURL != "" {
			videoURL = storedURL
		}
		// On a non-success fetch the unstored source URL is recorded instead
		task.VideoURL = videoURL
	}

	task.Status = models.TaskStatusCompleted
	applyMetadata(task, result.Metadata)
	if raw, ok := result.Raw.(map[string]interface{}); ok {
		task.VideoMetadata = raw
	}

	if err := s.repo.UpdateTaskResult(ctx, task); err != nil {
		// A rejected metadata field must not lose the completed result;
		// retry with the essential fields only
		logger.WithError(err).Warn("Result update rejected, retrying with core fields")
		if err := s.repo.UpdateTaskCore(ctx, task); err != nil {
			s.failTask(ctx, task, err.Error())
			return nil, err
		}
	}
	s.invalidate(ctx, task.ID)

	metrics.TasksCompletedTotal.WithLabelValues(models.TaskStatusCompleted).Inc()
	logger.LogTaskEvent(task.ID, task.Platform, models.TaskStatusCompleted)

	return &CreateTaskResult{
		ID:         task.ID,
		Status:     models.TaskStatusCompleted,
		Transcript: transcript,
		VideoURL:   videoURL,
		Raw:        result.Raw,
	}, nil
}

// fetchAndStoreVideo downloads video bytes from the backend-provided URL and
// stores them for a stable artifact URL. A non-success response is not fatal:
// it returns "" and the caller falls back to the source URL. Transport and
// storage errors are fatal for the task.
func (s *Service) fetchAndStoreVideo(ctx context.Context, taskID, videoURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create video request: %w", err)
	}

	resp, err := s.fetch.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read video body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}

	storedURL, err := s.store.SaveBytes(ctx, storage.VideoPath(taskID, "mp4"), data, contentType)
	if err != nil {
		return "", err
	}

	metrics.ArtifactBytesWritten.WithLabelValues("video").Add(float64(len(data)))
	return storedURL, nil
}

func (s *Service) failTask(ctx context.Context, task *models.Task, errMsg string) {
	if errMsg == "" {
		errMsg = "extraction failed"
	}

	if err := s.repo.MarkTaskFailed(ctx, task.ID, errMsg); err != nil {
		s.logger.WithTaskID(task.ID).ErrorWithErr("Failed to record task failure", err)
	}
	task.Status = models.TaskStatusFailed
	task.Error = errMsg
	s.invalidate(ctx, task.ID)

	metrics.TasksCompletedTotal.WithLabelValues(models.TaskStatusFailed).Inc()
	s.logger.LogTaskEvent(task.ID, task.Platform, models.TaskStatusFailed)
}

// applyMetadata copies only the fields the backend actually supplied; absent
// fields never overwrite and never block the rest.
func applyMetadata(task *models.Task, md *extractor.Metadata) {
	if md == nil {
		return
	}

	if md.Title != "" {
		task.VideoTitle = md.Title
	}
	if md.Author != "" {
		task.VideoAuthor = md.Author
	}
	if md.Description != "" {
		task.VideoDescription = md.Description
	}
	if md.LikeCount != nil {
		task.LikeCount = md.LikeCount
	}
	if md.ViewCount != nil {
		task.ViewCount = md.ViewCount
	}
	if md.ShareCount != nil {
		task.ShareCount = md.ShareCount
	}
	if md.CommentCount != nil {
		task.CommentCount = md.CommentCount
	}
	if md.Duration != nil {
		task.VideoDuration = md.Duration
	}
	if md.Thumbnail != "" {
		task.VideoThumbnail = md.Thumbnail
	}
}
