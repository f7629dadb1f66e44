package repository

import (
	"context"
	"fmt"
	"time"

	"notes-service/internal/model"
)

// Repository обобщенный интерфейс хранилища сущностей с идентификатором типа I
type Repository[I comparable, T any] interface {
	// GetByID возвращает сущность по id, found=false если строки нет (это не ошибка)
	GetByID(ctx context.Context, id I) (entity T, found bool, err error)

	// GetAll возвращает все сущности в порядке хранения
	GetAll(ctx context.Context) ([]T, error)

	// Save создает сущность без id или обновляет (merge) сущность с id
	Save(ctx context.Context, entity T) (T, error)

	// Remove удаляет только сохраненную сущность, для сущности без id ничего не делает
	Remove(ctx context.Context, entity T) error
}

// TagRepository интерфейс для работы с тегами в хранилище
type TagRepository interface {
	Repository[int64, model.Tag]

	// GetByName ищет тег по точному совпадению имени
	GetByName(ctx context.Context, name string) (model.Tag, bool, error)

	// GetOrCreate возвращает сохраненный тег по id или имени, создает его если не найден
	GetOrCreate(ctx context.Context, tag model.Tag) (model.Tag, error)

	// GetPersistedTagsFromList применяет GetOrCreate к каждому тегу с сохранением порядка
	GetPersistedTagsFromList(ctx context.Context, tags []model.Tag) ([]model.Tag, error)
}

// NoteRepository интерфейс для работы с заметками в хранилище
type NoteRepository interface {
	Repository[int64, model.Note]

	// GetByTag возвращает заметки, содержащие указанный сохраненный тег
	GetByTag(ctx context.Context, tag model.Tag) ([]model.Note, error)

	// GetSinceDateTime возвращает заметки с createdAt >= since
	GetSinceDateTime(ctx context.Context, since time.Time) ([]model.Note, error)

	// GetBySearch возвращает заметки, у которых name или content содержит query
	GetBySearch(ctx context.Context, query string) ([]model.Note, error)
}

// TxError оборачивает любую ошибку, из-за которой транзакция была откатана
type TxError struct {
	Op  string
	Err error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("%s: transaction rolled back: %v", e.Op, e.Err)
}

func (e *TxError) Unwrap() error {
	return e.Err
}

// WrapTx оборачивает ошибку в TxError, nil остается nil
func WrapTx(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TxError{Op: op, Err: err}
}
