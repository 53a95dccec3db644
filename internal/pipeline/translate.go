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
	"github.com/vidscribe/vidscribe/internal/metrics"
	"github.com/vidscribe/vidscribe/internal/srt"
	"github.com/vidscribe/vidscribe/internal/storage"
	"github.com/vidscribe/vidscribe/internal/tracing"
	"github.com/vidscribe/vidscribe/pkg/models"
)

// TranslateResult is returned on a successful translation
type TranslateResult struct {
	ID            string `json:"id"`
	TranslatedURL string `json:"translated_url"`
}

// Translate produces a translated subtitle for a completed task. A new
// translation row is created for every call; duplicates per target language
// are allowed and tracked independently. Every failure after row creation
// marks the row failed, including a failed fetch of the original subtitle.
func (s *Service) Translate(ctx context.Context, taskID, targetLanguage string) (*TranslateResult, error) {
	span, ctx := tracing.StartSpan(ctx, "pipeline.Translate")
	defer span.Finish()
	tracing.SetTag(span, "task_id", taskID)
	tracing.SetTag(span, "target_language", targetLanguage)

	task, err := s.repo.GetTask(ctx, taskID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	if task.OriginalSrtURL == "" {
		return nil, ErrNoSubtitle
	}

	translation := &models.Translation{
		ID:             uuid.New().String(),
		TaskID:         taskID,
		TargetLanguage: targetLanguage,
		Status:         models.TranslationStatusProcessing,
	}
	if err := s.repo.CreateTranslation(ctx, translation); err != nil {
		return nil, err
	}

	logger := s.logger.WithTranslationID(translation.ID).WithTaskID(taskID)
	start := time.Now()

	srtContent, err := s.fetchText(ctx, task.OriginalSrtURL)
	if err != nil {
		s.failTranslation(ctx, translation, fmt.Sprintf("failed to fetch original srt: %v", err))
		return nil, fmt.Errorf("failed to fetch original srt: %w", err)
	}

	blocks := srt.Parse(srtContent)
	texts := srt.Texts(blocks)

	translated, err := s.translator.TranslateTexts(ctx, texts, targetLanguage)
	if err != nil {
		s.failTranslation(ctx, translation, err.Error())
		return nil, err
	}

	rebuilt := srt.Rebuild(blocks, translated)

	translatedURL, err := s.store.SaveText(ctx, storage.SubtitlePath(taskID, targetLanguage), rebuilt, "text/plain")
	if err != nil {
		s.failTranslation(ctx, translation, err.Error())
		return nil, err
	}
	metrics.ArtifactBytesWritten.WithLabelValues("subtitle").Add(float64(len(rebuilt)))

	if err := s.repo.CompleteTranslation(ctx, translation.ID, translatedURL); err != nil {
		// Best effort: the artifact is stored but the row must not stay
		// processing forever
		s.failTranslation(ctx, translation, err.Error())
		return nil, err
	}
	s.invalidate(ctx, taskID)

	metrics.TranslationsTotal.WithLabelValues(models.TranslationStatusCompleted).Inc()
	metrics.TranslationDuration.Observe(time.Since(start).Seconds())
	logger.LogTranslationEvent(translation.ID, taskID, targetLanguage, models.TranslationStatusCompleted)

	return &TranslateResult{ID: translation.ID, TranslatedURL: translatedURL}, nil
}

// fetchText retrieves a stored text artifact by URL
func (s *Service) fetchText(ctx context.Context, textURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, textURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.fetch.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

func (s *Service) failTranslation(ctx context.Context, translation *models.Translation, errMsg string) {
	if err := s.repo.MarkTranslationFailed(ctx, translation.ID, errMsg); err != nil {
		s.logger.WithTranslationID(translation.ID).ErrorWithErr("Failed to record translation failure", err)
	}
	s.invalidate(ctx, translation.TaskID)

	metrics.TranslationsTotal.WithLabelValues(models.TranslationStatusFailed).Inc()
	s.logger.LogTranslationEvent(translation.ID, translation.TaskID, translation.TargetLanguage, models.TranslationStatusFailed)
}
