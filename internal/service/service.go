package service

import (
	"context"
	"time"

	"notes-service/internal/model"
)

// NoteService интерфейс для бизнес-логики работы с заметками
type NoteService interface {
	// List возвращает список всех заметок
	List(ctx context.Context) ([]model.Note, error)

	// ListByTag возвращает заметки с тегом tagID, ошибка если такого тега нет
	ListByTag(ctx context.Context, tagID int64) ([]model.Note, error)

	// ListSince возвращает заметки, созданные не раньше since
	ListSince(ctx context.Context, since time.Time) ([]model.Note, error)

	// Search возвращает заметки, у которых name или content содержит query
	Search(ctx context.Context, query string) ([]model.Note, error)

	// Create создает заметку: id игнорируется, время создания выставляется сервером
	Create(ctx context.Context, note model.Note) (model.Note, error)

	// Update заменяет name, content и теги заметки, id и время создания не меняются
	Update(ctx context.Context, note model.Note) (model.Note, error)

	// Delete удаляет заметку по id
	Delete(ctx context.Context, id int64) error
}

// TagService интерфейс для бизнес-логики работы с тегами
type TagService interface {
	// List возвращает список всех тегов
	List(ctx context.Context) ([]model.Tag, error)
}
