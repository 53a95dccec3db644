package pipeline

import (
	"context"
	"errors"

	"github.com/vidscribe/vidscribe/internal/database"
	"github.com/vidscribe/vidscribe/pkg/models"
)

// GetStatus returns a task with all its translations in insertion order.
// Reads go through the status cache when one is configured; concurrent reads
// for the same task are collapsed into a single lookup.
func (s *Service) GetStatus(ctx context.Context, taskID string) (*models.TaskDetail, error) {
	v, err, _ := s.group.Do(taskID, func() (interface{}, error) {
		if s.cache != nil {
			detail, err := s.cache.GetTaskDetail(ctx, taskID)
			if err != nil {
				s.logger.WithTaskID(taskID).WithError(err).Warn("Status cache read failed")
			} else if detail != nil {
				return detail, nil
			}
		}

		task, err := s.repo.GetTask(ctx, taskID)
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		if err != nil {
			return nil, err
		}

		translations, err := s.repo.GetTranslationsByTaskID(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if translations == nil {
			translations = []*models.Translation{}
		}

		detail := &models.TaskDetail{Task: task, Translations: translations}
		if s.cache != nil {
			if err := s.cache.SetTaskDetail(ctx, detail, s.statusTTL); err != nil {
				s.logger.WithTaskID(taskID).WithError(err).Warn("Status cache write failed")
			}
		}

		return detail, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*models.TaskDetail), nil
}
