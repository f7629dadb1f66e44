package tags

import (
	"context"

	"notes-service/internal/model"
	"notes-service/internal/repository"
	svc "notes-service/internal/service"
)

var _ svc.TagService = (*service)(nil)

type service struct {
	tagRepository repository.TagRepository
}

// NewTagService создает сервис для работы с тегами
func NewTagService(tagRepository repository.TagRepository) svc.TagService {
	return &service{tagRepository: tagRepository}
}

// List возвращает все сохраненные теги
func (s *service) List(ctx context.Context) ([]model.Tag, error) {
	return s.tagRepository.GetAll(ctx)
}
